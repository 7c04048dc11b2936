package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/dayboard/internal/storage"
)

// NoTasksPlaceholder is shown for a weekday with no planned tasks.
const NoTasksPlaceholder = "No tasks"

const (
	msgDailyTasksFailed   = "Failed to fetch daily tasks. Please try again later."
	msgCurrentGoalsFailed = "Failed to fetch current goals. Please try again later."
	msgWeeklyTasksFailed  = "Failed to fetch weekly tasks. Please try again later."
	msgToggleFailed       = "Failed to update task status. Please try again."
)

// Task is a daily task as shown on the dashboard.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Top       bool   `json:"top"`
}

// DayTasks is one weekday of the weekly overview.
type DayTasks struct {
	Day   string   `json:"day"`
	Tasks []string `json:"tasks"`
	Empty bool     `json:"empty"`
}

// View is a snapshot of the dashboard.
type View struct {
	Date      string     `json:"date"`
	Week      string     `json:"week"`
	Tasks     []Task     `json:"tasks"`
	Completed int        `json:"completed"`
	Total     int        `json:"total"`
	Progress  float64    `json:"progress"`
	Goals     []string   `json:"goals"`
	Weekly    []DayTasks `json:"weekly"`
	Error     string     `json:"error,omitempty"`
	Errors    []string   `json:"errors,omitempty"`
}

// Aggregator combines today's tasks, current goals, and this week's plan.
type Aggregator struct {
	store DashboardStore
	opts  options

	mu     sync.Mutex
	date   string
	week   string
	tasks  []Task
	goals  []string
	weekly map[string][]string
	errMsg string
	errs   []string
	// dailyErr is the last daily fetch failure; a.tasks is stale while set.
	dailyErr error
}

// NewAggregator creates an empty aggregator. Call Refresh to populate it.
func NewAggregator(store DashboardStore, opts ...Option) *Aggregator {
	return &Aggregator{store: store, opts: buildOptions(opts)}
}

// Refresh fetches the three dashboard sources concurrently. A failing source
// does not prevent the others from being applied; all failures are joined
// into the returned error.
func (a *Aggregator) Refresh(ctx context.Context) error {
	now := a.opts.clock.Now()
	date := DateKey(now)
	from, to := WeekRange(now)

	var (
		daily     storage.DailyPlan
		goals     storage.SixWeekGoals
		weekly    storage.WeeklyPlan
		dailyErr  error
		goalsErr  error
		weeklyErr error
	)

	// Plain Group: one failing fetch must not cancel the others. Each
	// result is kept separately so every failure gets its own message.
	var g errgroup.Group
	g.Go(func() error {
		daily, dailyErr = a.store.DailyPlan(ctx, date)
		return missingOK(dailyErr)
	})
	g.Go(func() error {
		goals, goalsErr = a.store.LatestSixWeekGoals(ctx)
		return missingOK(goalsErr)
	})
	g.Go(func() error {
		weekly, weeklyErr = a.store.WeeklyPlanInRange(ctx, from, to)
		return missingOK(weeklyErr)
	})
	firstErr := g.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.date = date
	a.week = from

	var failures []error
	var messages []string

	switch {
	case errors.Is(dailyErr, storage.ErrNotFound):
		a.tasks = nil
		a.dailyErr = nil
	case dailyErr != nil:
		slog.Error("fetching daily tasks", "date", date, "error", dailyErr)
		failures = append(failures, fmt.Errorf("daily tasks: %w", dailyErr))
		messages = append(messages, msgDailyTasksFailed)
		a.dailyErr = dailyErr
	default:
		a.tasks = deriveTasks(daily)
		a.dailyErr = nil
	}

	switch {
	case errors.Is(goalsErr, storage.ErrNotFound):
		a.goals = nil
	case goalsErr != nil:
		slog.Error("fetching current goals", "error", goalsErr)
		failures = append(failures, fmt.Errorf("current goals: %w", goalsErr))
		messages = append(messages, msgCurrentGoalsFailed)
	default:
		a.goals = append([]string{}, goals.Goals...)
	}

	switch {
	case errors.Is(weeklyErr, storage.ErrNotFound):
		a.weekly = nil
	case weeklyErr != nil:
		slog.Error("fetching weekly tasks", "week", from, "error", weeklyErr)
		failures = append(failures, fmt.Errorf("weekly tasks: %w", weeklyErr))
		messages = append(messages, msgWeeklyTasksFailed)
	default:
		a.weekly = weekly.Tasks
	}

	a.errs = messages
	if len(messages) > 0 {
		a.errMsg = messages[len(messages)-1]
	} else {
		a.errMsg = ""
	}
	if firstErr == nil {
		return nil
	}
	return errors.Join(failures...)
}

// missingOK treats an absent record as a successful fetch.
func missingOK(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// deriveTasks flattens top tasks then additional tasks.
func deriveTasks(p storage.DailyPlan) []Task {
	tasks := make([]Task, 0, len(p.TopTasks)+len(p.AdditionalTasks))
	for _, t := range p.TopTasks {
		tasks = append(tasks, Task{ID: t.ID, Text: t.Text, Completed: t.Completed, Top: true})
	}
	for _, t := range p.AdditionalTasks {
		tasks = append(tasks, Task{ID: t.ID, Text: t.Text, Completed: t.Completed})
	}
	return tasks
}

// View returns a snapshot of the current dashboard state.
func (a *Aggregator) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	v := View{
		Date:   a.date,
		Week:   a.week,
		Tasks:  append([]Task{}, a.tasks...),
		Total:  len(a.tasks),
		Goals:  append([]string{}, a.goals...),
		Weekly: make([]DayTasks, 0, len(Weekdays)),
		Error:  a.errMsg,
		Errors: append([]string(nil), a.errs...),
	}
	for _, t := range a.tasks {
		if t.Completed {
			v.Completed++
		}
	}
	if v.Total > 0 {
		v.Progress = float64(v.Completed) / float64(v.Total) * 100
	}
	for _, day := range Weekdays {
		ts := a.weekly[day]
		if len(ts) == 0 {
			v.Weekly = append(v.Weekly, DayTasks{Day: day, Tasks: []string{NoTasksPlaceholder}, Empty: true})
			continue
		}
		v.Weekly = append(v.Weekly, DayTasks{Day: day, Tasks: append([]string{}, ts...)})
	}
	return v
}

// Err returns the last user-visible error message, or "".
func (a *Aggregator) Err() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

// Toggle flips the completion of task id and persists it. The stored plan is
// re-read so notes and edits made elsewhere are kept. A failed write keeps
// the local flip and sets an error message. When the last refresh could not
// read today's tasks, an unknown id yields ErrTasksUnavailable rather than
// ErrTaskNotFound.
func (a *Aggregator) Toggle(ctx context.Context, id string) error {
	a.mu.Lock()
	idx := a.indexOf(id)
	if idx < 0 {
		fetchErr := a.dailyErr
		a.mu.Unlock()
		if fetchErr != nil {
			return fmt.Errorf("%w: %w", ErrTasksUnavailable, fetchErr)
		}
		return ErrTaskNotFound
	}
	a.tasks[idx].Completed = !a.tasks[idx].Completed
	want := a.tasks[idx].Completed
	date := a.date
	a.mu.Unlock()

	p, err := a.store.DailyPlan(ctx, date)
	if errors.Is(err, storage.ErrNotFound) {
		a.revert(id, !want)
		return ErrTaskNotFound
	}
	if err != nil {
		slog.Error("reading daily plan for toggle", "date", date, "task", id, "error", err)
		a.setErr(msgToggleFailed)
		return err
	}

	if !setCompleted(&p, id, want) {
		a.revert(id, !want)
		return ErrTaskNotFound
	}

	if _, err := a.store.UpsertDailyPlan(ctx, p); err != nil {
		slog.Error("updating task status", "date", date, "task", id, "error", err)
		a.setErr(msgToggleFailed)
		return err
	}
	return nil
}

func (a *Aggregator) indexOf(id string) int {
	for i, t := range a.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (a *Aggregator) revert(id string, completed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i := a.indexOf(id); i >= 0 {
		a.tasks[i].Completed = completed
	}
}

func (a *Aggregator) setErr(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errMsg = msg
}

func setCompleted(p *storage.DailyPlan, id string, completed bool) bool {
	for i := range p.TopTasks {
		if p.TopTasks[i].ID == id {
			p.TopTasks[i].Completed = completed
			return true
		}
	}
	for i := range p.AdditionalTasks {
		if p.AdditionalTasks[i].ID == id {
			p.AdditionalTasks[i].Completed = completed
			return true
		}
	}
	return false
}
