package planner

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kalambet/dayboard/internal/storage"
)

const (
	msgGoalsFetchFailed = "Failed to fetch six week goals. Please try again later."
	msgGoalsSaveFailed  = "Failed to save six week goals. Please try again."
)

// GoalsEditor edits the current six-week goals. Saving always records a new
// snapshot.
type GoalsEditor struct {
	store GoalsStore
	opts  options

	mu     sync.Mutex
	state  State
	errMsg string
	goals  []string
}

// NewGoalsEditor creates an editor with a single blank goal.
func NewGoalsEditor(store GoalsStore, opts ...Option) *GoalsEditor {
	return &GoalsEditor{store: store, opts: buildOptions(opts), state: StateLoading, goals: []string{""}}
}

// Load reads the most recent goals snapshot.
func (e *GoalsEditor) Load(ctx context.Context) error {
	g, err := e.store.LatestSixWeekGoals(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case errors.Is(err, storage.ErrNotFound):
		e.goals = []string{""}
	case err != nil:
		slog.Error("fetching six week goals", "error", err)
		e.state = StateError
		e.errMsg = msgGoalsFetchFailed
		return err
	case g.Goals == nil:
		e.goals = []string{""}
	default:
		e.goals = append([]string{}, g.Goals...)
	}
	e.state = StateReady
	e.errMsg = ""
	return nil
}

// Goals returns a copy of the draft.
func (e *GoalsEditor) Goals() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.goals...)
}

// State reports the editor lifecycle state.
func (e *GoalsEditor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the last user-visible error message, or "".
func (e *GoalsEditor) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

// SetGoal replaces goal i.
func (e *GoalsEditor) SetGoal(i int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.goals) {
		return ErrIndexOutOfRange
	}
	e.goals[i] = text
	return nil
}

// AddGoal appends a blank goal.
func (e *GoalsEditor) AddGoal() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.goals = append(e.goals, "")
}

// RemoveGoal deletes goal i.
func (e *GoalsEditor) RemoveGoal(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.goals) {
		return ErrIndexOutOfRange
	}
	e.goals = append(e.goals[:i:i], e.goals[i+1:]...)
	return nil
}

// SetDraft replaces the whole goal list.
func (e *GoalsEditor) SetDraft(goals []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.goals = append([]string{}, goals...)
}

// Save inserts the draft as a new snapshot. Blank goals are stored as-is.
func (e *GoalsEditor) Save(ctx context.Context) error {
	e.mu.Lock()
	goals := append([]string{}, e.goals...)
	e.state = StateSaving
	e.mu.Unlock()

	_, err := e.store.InsertSixWeekGoals(ctx, storage.SixWeekGoals{Goals: goals})

	e.mu.Lock()
	if err != nil {
		slog.Error("saving six week goals", "error", err)
		e.state = StateError
		e.errMsg = msgGoalsSaveFailed
		e.mu.Unlock()
		return err
	}
	e.state = StateReady
	e.errMsg = ""
	e.mu.Unlock()

	e.opts.notify()
	return nil
}
