package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// --- Six-week goals ---

// InsertSixWeekGoals stores a new goals snapshot. Earlier snapshots are kept.
func (s *Store) InsertSixWeekGoals(ctx context.Context, g SixWeekGoals) (SixWeekGoals, error) {
	if g.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return SixWeekGoals{}, err
		}
		g.ID = id.String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	g.CreatedAt = g.CreatedAt.UTC()
	if g.Goals == nil {
		g.Goals = []string{}
	}

	goals, err := json.Marshal(g.Goals)
	if err != nil {
		return SixWeekGoals{}, fmt.Errorf("encoding goals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO six_week_goals (id, goals, created_at) VALUES (?, ?, ?)`),
		g.ID, string(goals), formatTime(g.CreatedAt),
	)
	if err != nil {
		return SixWeekGoals{}, err
	}
	return g, nil
}

// LatestSixWeekGoals returns the most recent goals snapshot, or ErrNotFound.
func (s *Store) LatestSixWeekGoals(ctx context.Context) (SixWeekGoals, error) {
	var g SixWeekGoals
	var goals, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, goals, created_at FROM six_week_goals
		ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&g.ID, &goals, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SixWeekGoals{}, ErrNotFound
	}
	if err != nil {
		return SixWeekGoals{}, err
	}
	if err := json.Unmarshal([]byte(goals), &g.Goals); err != nil {
		return SixWeekGoals{}, fmt.Errorf("decoding goals: %w", err)
	}
	t, err := parseTime("created_at", createdAt)
	if err != nil {
		return SixWeekGoals{}, err
	}
	g.CreatedAt = t
	return g, nil
}
