package storage

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// dockerAvailable checks whether the Docker daemon is reachable.
// testcontainers-go panics when Docker is not installed, so probe first.
func dockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

// openPostgresStore starts a PostgreSQL container and opens a Store on it.
// The test is skipped when Docker is unavailable.
func openPostgresStore(t *testing.T) (*Store, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	if !dockerAvailable() {
		t.Skip("Docker not available, skipping PostgreSQL integration tests")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("dayboard"),
		postgres.WithUsername("dayboard"),
		postgres.WithPassword("dayboard"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ConnectionString: %v", err)
	}

	s, err := OpenWith(Options{Driver: DriverPostgres, DatabaseURL: url})
	if err != nil {
		t.Fatalf("OpenWith(postgres): %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, url
}

func TestPostgresStore(t *testing.T) {
	s, url := openPostgresStore(t)
	ctx := context.Background()

	if s.Driver() != DriverPostgres {
		t.Errorf("Driver = %q, want %q", s.Driver(), DriverPostgres)
	}
	if s.DBPath() != "" {
		t.Errorf("DBPath = %q, want empty for postgres", s.DBPath())
	}
	if err := s.Check(ctx); err != nil {
		t.Fatalf("Check: %v", err)
	}

	t.Run("migrations idempotent", func(t *testing.T) {
		s2, err := OpenWith(Options{Driver: DriverPostgres, DatabaseURL: url})
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		defer s2.Close()
		v, err := s2.AppliedMigrations(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(v) != 1 || v[0] != 1 {
			t.Errorf("AppliedMigrations = %v, want [1]", v)
		}
	})

	t.Run("journal", func(t *testing.T) {
		if _, err := s.LatestJournalEntry(ctx); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		for _, c := range []string{"one", "two"} {
			if _, err := s.InsertJournalEntry(ctx, JournalEntry{Content: c}); err != nil {
				t.Fatal(err)
			}
		}
		got, err := s.LatestJournalEntry(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got.Content != "two" {
			t.Errorf("latest = %q, want two", got.Content)
		}
	})

	t.Run("daily upsert", func(t *testing.T) {
		p := DailyPlan{Date: "2026-03-02", TopTasks: []TaskItem{{ID: "a", Text: "x"}}, Notes: "n1"}
		if _, err := s.UpsertDailyPlan(ctx, p); err != nil {
			t.Fatal(err)
		}
		p.TopTasks[0].Completed = true
		p.Notes = "n2"
		if _, err := s.UpsertDailyPlan(ctx, p); err != nil {
			t.Fatal(err)
		}
		got, err := s.DailyPlan(ctx, "2026-03-02")
		if err != nil {
			t.Fatal(err)
		}
		if got.Notes != "n2" || !got.TopTasks[0].Completed {
			t.Errorf("DailyPlan = %+v", got)
		}
	})

	t.Run("weekly range", func(t *testing.T) {
		if _, err := s.UpsertWeeklyPlan(ctx, WeeklyPlan{Date: "2026-03-02", Tasks: map[string][]string{"Monday": {"m"}}}); err != nil {
			t.Fatal(err)
		}
		got, err := s.WeeklyPlanInRange(ctx, "2026-03-02", "2026-03-08")
		if err != nil {
			t.Fatal(err)
		}
		if got.Tasks["Monday"][0] != "m" {
			t.Errorf("Monday = %q", got.Tasks["Monday"])
		}
	})

	t.Run("goals", func(t *testing.T) {
		if _, err := s.InsertSixWeekGoals(ctx, SixWeekGoals{Goals: []string{"g1", "g2"}}); err != nil {
			t.Fatal(err)
		}
		got, err := s.LatestSixWeekGoals(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Goals) != 2 {
			t.Errorf("Goals = %q", got.Goals)
		}
	})
}
