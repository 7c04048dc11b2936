package planner

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kalambet/dayboard/internal/storage"
)

const (
	msgWeeklyFetchFailed = "Failed to fetch weekly plan. Please try again later."
	msgWeeklySaveFailed  = "Failed to save weekly plan. Please try again."
)

// WeeklyEditor edits the plan for the current week, keyed by its Monday.
type WeeklyEditor struct {
	store WeeklyStore
	opts  options

	mu     sync.Mutex
	state  State
	errMsg string
	week   string
	tasks  map[string][]string
}

// NewWeeklyEditor creates an editor with one blank task per day.
func NewWeeklyEditor(store WeeklyStore, opts ...Option) *WeeklyEditor {
	e := &WeeklyEditor{store: store, opts: buildOptions(opts), state: StateLoading}
	e.week, _ = WeekRange(e.opts.clock.Now())
	e.tasks = defaultWeek()
	return e
}

func defaultWeek() map[string][]string {
	m := make(map[string][]string, len(Weekdays))
	for _, d := range Weekdays {
		m[d] = []string{""}
	}
	return m
}

// Load reads the plan stored for the current week.
func (e *WeeklyEditor) Load(ctx context.Context) error {
	from, to := WeekRange(e.opts.clock.Now())
	p, err := e.store.WeeklyPlanInRange(ctx, from, to)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.week = from
	switch {
	case errors.Is(err, storage.ErrNotFound):
		e.tasks = defaultWeek()
	case err != nil:
		slog.Error("fetching weekly plan", "week", from, "error", err)
		e.state = StateError
		e.errMsg = msgWeeklyFetchFailed
		return err
	default:
		e.tasks = normalizeWeek(p.Tasks)
	}
	e.state = StateReady
	e.errMsg = ""
	return nil
}

// normalizeWeek copies tasks, giving every weekday at least one (blank) entry.
func normalizeWeek(tasks map[string][]string) map[string][]string {
	m := make(map[string][]string, len(Weekdays))
	for _, d := range Weekdays {
		if ts := tasks[d]; len(ts) > 0 {
			m[d] = append([]string(nil), ts...)
		} else {
			m[d] = []string{""}
		}
	}
	return m
}

// Week returns the Monday date key the editor writes to.
func (e *WeeklyEditor) Week() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.week
}

// Tasks returns a copy of the draft, keyed by weekday name.
func (e *WeeklyEditor) Tasks() map[string][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return normalizeWeek(e.tasks)
}

// State reports the editor lifecycle state.
func (e *WeeklyEditor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the last user-visible error message, or "".
func (e *WeeklyEditor) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

// SetTask replaces task i of day.
func (e *WeeklyEditor) SetTask(day string, i int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !isWeekday(day) {
		return ErrUnknownDay
	}
	if i < 0 || i >= len(e.tasks[day]) {
		return ErrIndexOutOfRange
	}
	e.tasks[day][i] = text
	return nil
}

// AddTask appends a blank task to day.
func (e *WeeklyEditor) AddTask(day string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !isWeekday(day) {
		return ErrUnknownDay
	}
	e.tasks[day] = append(e.tasks[day], "")
	return nil
}

// RemoveTask deletes task i of day. A day may end up with no tasks.
func (e *WeeklyEditor) RemoveTask(day string, i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !isWeekday(day) {
		return ErrUnknownDay
	}
	ts := e.tasks[day]
	if i < 0 || i >= len(ts) {
		return ErrIndexOutOfRange
	}
	e.tasks[day] = append(ts[:i:i], ts[i+1:]...)
	return nil
}

// SetDraft replaces the whole draft. Unknown day names are rejected.
func (e *WeeklyEditor) SetDraft(tasks map[string][]string) error {
	for day := range tasks {
		if !isWeekday(day) {
			return ErrUnknownDay
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	m := make(map[string][]string, len(Weekdays))
	for _, d := range Weekdays {
		m[d] = append([]string{}, tasks[d]...)
	}
	e.tasks = m
	return nil
}

// Save upserts the draft for the current week. Blank tasks are stored as-is.
func (e *WeeklyEditor) Save(ctx context.Context) error {
	e.mu.Lock()
	plan := storage.WeeklyPlan{Date: e.week, Tasks: make(map[string][]string, len(e.tasks))}
	for d, ts := range e.tasks {
		plan.Tasks[d] = append([]string{}, ts...)
	}
	e.state = StateSaving
	e.mu.Unlock()

	_, err := e.store.UpsertWeeklyPlan(ctx, plan)

	e.mu.Lock()
	if err != nil {
		slog.Error("saving weekly plan", "week", plan.Date, "error", err)
		e.state = StateError
		e.errMsg = msgWeeklySaveFailed
		e.mu.Unlock()
		return err
	}
	e.state = StateReady
	e.errMsg = ""
	e.mu.Unlock()

	e.opts.notify()
	return nil
}
