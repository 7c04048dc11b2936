package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// --- Daily plans ---

// UpsertDailyPlan writes p as the plan for p.Date, replacing any existing row.
func (s *Store) UpsertDailyPlan(ctx context.Context, p DailyPlan) (DailyPlan, error) {
	if p.Date == "" {
		return DailyPlan{}, fmt.Errorf("daily plan date is required")
	}
	if p.TopTasks == nil {
		p.TopTasks = []TaskItem{}
	}
	if p.AdditionalTasks == nil {
		p.AdditionalTasks = []TaskItem{}
	}
	top, err := json.Marshal(p.TopTasks)
	if err != nil {
		return DailyPlan{}, fmt.Errorf("encoding top tasks: %w", err)
	}
	additional, err := json.Marshal(p.AdditionalTasks)
	if err != nil {
		return DailyPlan{}, fmt.Errorf("encoding additional tasks: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO daily_plans (date, top_tasks, additional_tasks, notes, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			top_tasks = excluded.top_tasks,
			additional_tasks = excluded.additional_tasks,
			notes = excluded.notes,
			updated_at = excluded.updated_at`),
		p.Date, string(top), string(additional), p.Notes, formatTime(p.UpdatedAt),
	)
	if err != nil {
		return DailyPlan{}, err
	}
	return p, nil
}

// DailyPlan returns the plan stored for date, or ErrNotFound.
func (s *Store) DailyPlan(ctx context.Context, date string) (DailyPlan, error) {
	var p DailyPlan
	var top, additional, updatedAt string
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT date, top_tasks, additional_tasks, notes, updated_at
		FROM daily_plans WHERE date = ?`), date,
	).Scan(&p.Date, &top, &additional, &p.Notes, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return DailyPlan{}, ErrNotFound
	}
	if err != nil {
		return DailyPlan{}, err
	}
	if err := json.Unmarshal([]byte(top), &p.TopTasks); err != nil {
		return DailyPlan{}, fmt.Errorf("decoding top tasks: %w", err)
	}
	if err := json.Unmarshal([]byte(additional), &p.AdditionalTasks); err != nil {
		return DailyPlan{}, fmt.Errorf("decoding additional tasks: %w", err)
	}
	t, err := parseTime("updated_at", updatedAt)
	if err != nil {
		return DailyPlan{}, err
	}
	p.UpdatedAt = t
	return p, nil
}

// --- Weekly plans ---

// UpsertWeeklyPlan writes p as the plan for the week starting p.Date.
func (s *Store) UpsertWeeklyPlan(ctx context.Context, p WeeklyPlan) (WeeklyPlan, error) {
	if p.Date == "" {
		return WeeklyPlan{}, fmt.Errorf("weekly plan date is required")
	}
	if p.Tasks == nil {
		p.Tasks = map[string][]string{}
	}
	tasks, err := json.Marshal(p.Tasks)
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("encoding tasks: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO weekly_plans (date, tasks, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			tasks = excluded.tasks,
			updated_at = excluded.updated_at`),
		p.Date, string(tasks), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return WeeklyPlan{}, err
	}
	return p, nil
}

// WeeklyPlanInRange returns the first weekly plan whose date falls within
// [from, to] (inclusive, YYYY-MM-DD), or ErrNotFound.
func (s *Store) WeeklyPlanInRange(ctx context.Context, from, to string) (WeeklyPlan, error) {
	var p WeeklyPlan
	var tasks, updatedAt string
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT date, tasks, updated_at FROM weekly_plans
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC LIMIT 1`), from, to,
	).Scan(&p.Date, &tasks, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return WeeklyPlan{}, ErrNotFound
	}
	if err != nil {
		return WeeklyPlan{}, err
	}
	if err := json.Unmarshal([]byte(tasks), &p.Tasks); err != nil {
		return WeeklyPlan{}, fmt.Errorf("decoding tasks: %w", err)
	}
	t, err := parseTime("updated_at", updatedAt)
	if err != nil {
		return WeeklyPlan{}, err
	}
	p.UpdatedAt = t
	return p, nil
}
