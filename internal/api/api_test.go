package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/dayboard/internal/planner"
	"github.com/kalambet/dayboard/internal/storage"
)

const testToken = "test-token-12345"

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

// brokenStore fails selected operations on top of a real store.
type brokenStore struct {
	*storage.Store
	checkErr error
	dailyErr error
	writeErr error
}

func (b *brokenStore) Check(ctx context.Context) error {
	if b.checkErr != nil {
		return b.checkErr
	}
	return b.Store.Check(ctx)
}

func (b *brokenStore) DailyPlan(ctx context.Context, date string) (storage.DailyPlan, error) {
	if b.dailyErr != nil {
		return storage.DailyPlan{}, b.dailyErr
	}
	return b.Store.DailyPlan(ctx, date)
}

func (b *brokenStore) UpsertDailyPlan(ctx context.Context, p storage.DailyPlan) (storage.DailyPlan, error) {
	if b.writeErr != nil {
		return storage.DailyPlan{}, b.writeErr
	}
	return b.Store.UpsertDailyPlan(ctx, p)
}

func (b *brokenStore) InsertJournalEntry(ctx context.Context, e storage.JournalEntry) (storage.JournalEntry, error) {
	if b.writeErr != nil {
		return storage.JournalEntry{}, b.writeErr
	}
	return b.Store.InsertJournalEntry(ctx, e)
}

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func setupHandler(t *testing.T, token string) (http.Handler, *storage.Store) {
	t.Helper()
	store := openTestStore(t)
	return NewHandler(Deps{Store: store, Clock: fixedClock{testNow}, Token: token}), store
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rr.Body.String(), err)
	}
	return v
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rr)["error"]
}

func TestHealth(t *testing.T) {
	h, _ := setupHandler(t, testToken)
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("body = %s", got)
	}
}

func TestAuth(t *testing.T) {
	h, _ := setupHandler(t, testToken)

	rr := serve(h, authReq(http.MethodGet, "/api/dashboard", "", ""))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rr.Code)
	}
	rr = serve(h, authReq(http.MethodGet, "/api/dashboard", "", "wrong"))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", rr.Code)
	}
	rr = serve(h, authReq(http.MethodGet, "/api/dashboard", "", testToken))
	if rr.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", rr.Code)
	}
}

func TestAuthDisabled(t *testing.T) {
	h, _ := setupHandler(t, "")
	rr := serve(h, authReq(http.MethodGet, "/api/dashboard", "", ""))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", rr.Code)
	}
}

func TestDatastoreCheck(t *testing.T) {
	h, _ := setupHandler(t, "")
	rr := serve(h, authReq(http.MethodGet, "/api/datastore-check", "", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	got := decode[DatastoreStatus](t, rr)
	if got.Status != "ok" || got.Message != "Datastore connection successful" {
		t.Errorf("body = %+v", got)
	}
}

func TestDatastoreCheck_Failure(t *testing.T) {
	store := &brokenStore{Store: openTestStore(t), checkErr: errors.New("relation \"journal_entries\" does not exist")}
	h := NewHandler(Deps{Store: store})

	rr := serve(h, authReq(http.MethodGet, "/api/datastore-check", "", ""))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	got := decode[DatastoreStatus](t, rr)
	if got.Status != "error" || !strings.Contains(got.Message, "does not exist") {
		t.Errorf("body = %+v", got)
	}
	if got.Details["driver"] != "sqlite" || got.Details["error"] == "" {
		t.Errorf("details = %v", got.Details)
	}
}

func TestDailyPlan_RoundTrip(t *testing.T) {
	h, store := setupHandler(t, "")

	rr := serve(h, authReq(http.MethodGet, "/api/daily-plan", "", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rr.Code)
	}
	draft := decode[planner.DailyDraft](t, rr)
	if len(draft.TopTasks) != 3 || len(draft.AdditionalTasks) != 1 {
		t.Errorf("default draft = %+v", draft)
	}

	body := `{"top_tasks":[{"text":"write"},{"text":" "},{"text":"run"}],"additional_tasks":[{"text":"call"}],"notes":"n"}`
	rr = serve(h, authReq(http.MethodPut, "/api/daily-plan", body, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT status = %d; body = %s", rr.Code, rr.Body.String())
	}

	p, err := store.DailyPlan(context.Background(), "2026-03-04")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.TopTasks) != 2 || p.TopTasks[1].Text != "run" || p.Notes != "n" {
		t.Errorf("stored = %+v", p)
	}
}

func TestDailyPlan_InvalidBody(t *testing.T) {
	h, _ := setupHandler(t, "")
	rr := serve(h, authReq(http.MethodPut, "/api/daily-plan", "{not json", ""))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestDailyPlan_FetchFailure(t *testing.T) {
	store := &brokenStore{Store: openTestStore(t), dailyErr: errors.New("timeout")}
	h := NewHandler(Deps{Store: store, Clock: fixedClock{testNow}})

	rr := serve(h, authReq(http.MethodGet, "/api/daily-plan", "", ""))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Failed to fetch daily plan. Please try again later." {
		t.Errorf("error = %q", msg)
	}
}

func TestDashboardAndToggle(t *testing.T) {
	h, store := setupHandler(t, "")
	ctx := context.Background()
	store.UpsertDailyPlan(ctx, storage.DailyPlan{
		Date:     "2026-03-04",
		TopTasks: []storage.TaskItem{{ID: "t1", Text: "A"}, {ID: "t2", Text: "B"}},
		Notes:    "keep",
	})
	store.InsertSixWeekGoals(ctx, storage.SixWeekGoals{Goals: []string{"g"}})

	rr := serve(h, authReq(http.MethodGet, "/api/dashboard", "", ""))
	v := decode[planner.View](t, rr)
	if v.Total != 2 || v.Progress != 0 || len(v.Goals) != 1 || len(v.Weekly) != 7 {
		t.Errorf("view = %+v", v)
	}

	rr = serve(h, authReq(http.MethodPost, "/api/dashboard/tasks/t2/toggle", "", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle status = %d; body = %s", rr.Code, rr.Body.String())
	}
	v = decode[planner.View](t, rr)
	if v.Completed != 1 || v.Progress != 50 {
		t.Errorf("after toggle = %d (%v)", v.Completed, v.Progress)
	}

	p, _ := store.DailyPlan(ctx, "2026-03-04")
	if !p.TopTasks[1].Completed || p.Notes != "keep" {
		t.Errorf("stored = %+v", p)
	}

	rr = serve(h, authReq(http.MethodPost, "/api/dashboard/tasks/nope/toggle", "", ""))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown toggle status = %d, want 404", rr.Code)
	}
}

func TestToggle_WriteFailure(t *testing.T) {
	store := &brokenStore{Store: openTestStore(t)}
	store.Store.UpsertDailyPlan(context.Background(), storage.DailyPlan{
		Date:     "2026-03-04",
		TopTasks: []storage.TaskItem{{ID: "t1", Text: "A"}},
	})
	store.writeErr = errors.New("read-only")
	h := NewHandler(Deps{Store: store, Clock: fixedClock{testNow}})

	rr := serve(h, authReq(http.MethodPost, "/api/dashboard/tasks/t1/toggle", "", ""))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Failed to update task status. Please try again." {
		t.Errorf("error = %q", msg)
	}
}

func TestToggle_DailyFetchFailure(t *testing.T) {
	store := &brokenStore{Store: openTestStore(t)}
	store.Store.UpsertDailyPlan(context.Background(), storage.DailyPlan{
		Date:     "2026-03-04",
		TopTasks: []storage.TaskItem{{ID: "t1", Text: "A"}},
	})
	store.dailyErr = errors.New("connection reset")
	h := NewHandler(Deps{Store: store, Clock: fixedClock{testNow}})

	rr := serve(h, authReq(http.MethodPost, "/api/dashboard/tasks/t1/toggle", "", ""))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Failed to fetch daily tasks. Please try again later." {
		t.Errorf("error = %q", msg)
	}

	p, _ := store.Store.DailyPlan(context.Background(), "2026-03-04")
	if p.TopTasks[0].Completed {
		t.Error("task toggled despite failed fetch")
	}
}

func TestDashboard_PartialFailure(t *testing.T) {
	store := &brokenStore{Store: openTestStore(t), dailyErr: errors.New("boom")}
	store.InsertSixWeekGoals(context.Background(), storage.SixWeekGoals{Goals: []string{"g"}})
	h := NewHandler(Deps{Store: store, Clock: fixedClock{testNow}})

	rr := serve(h, authReq(http.MethodGet, "/api/dashboard", "", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	v := decode[planner.View](t, rr)
	if v.Error != "Failed to fetch daily tasks. Please try again later." {
		t.Errorf("error = %q", v.Error)
	}
	if len(v.Goals) != 1 {
		t.Errorf("goals = %q, want applied despite daily failure", v.Goals)
	}
}

func TestWeeklyPlan(t *testing.T) {
	h, store := setupHandler(t, "")

	rr := serve(h, authReq(http.MethodGet, "/api/weekly-plan", "", ""))
	got := decode[WeeklyPlanBody](t, rr)
	if got.Week != "2026-03-02" || len(got.Tasks) != 7 {
		t.Errorf("GET = %+v", got)
	}

	rr = serve(h, authReq(http.MethodPut, "/api/weekly-plan", `{"tasks":{"Monday":["a",""],"Friday":["b"]}}`, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT status = %d; body = %s", rr.Code, rr.Body.String())
	}
	p, err := store.WeeklyPlanInRange(context.Background(), "2026-03-02", "2026-03-08")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Tasks["Monday"]) != 2 || p.Tasks["Friday"][0] != "b" {
		t.Errorf("stored = %+v", p.Tasks)
	}

	rr = serve(h, authReq(http.MethodPut, "/api/weekly-plan", `{"tasks":{"Caturday":["x"]}}`, ""))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown day status = %d, want 400", rr.Code)
	}
}

func TestSixWeekGoals(t *testing.T) {
	h, _ := setupHandler(t, "")

	rr := serve(h, authReq(http.MethodGet, "/api/six-week-goals", "", ""))
	if got := decode[GoalsBody](t, rr); len(got.Goals) != 1 || got.Goals[0] != "" {
		t.Errorf("default = %q", got.Goals)
	}

	rr = serve(h, authReq(http.MethodPost, "/api/six-week-goals", `{"goals":["a",""]}`, ""))
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST status = %d", rr.Code)
	}
	rr = serve(h, authReq(http.MethodGet, "/api/six-week-goals", "", ""))
	if got := decode[GoalsBody](t, rr); len(got.Goals) != 2 || got.Goals[0] != "a" {
		t.Errorf("after POST = %q", got.Goals)
	}

	rr = serve(h, authReq(http.MethodPost, "/api/six-week-goals", `{}`, ""))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing goals status = %d, want 400", rr.Code)
	}
}
