package planner

import (
	"context"
	"errors"

	"github.com/kalambet/dayboard/internal/storage"
)

// Sentinel errors returned by editor mutations and the aggregator.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownDay      = errors.New("unknown day")
	ErrTaskNotFound    = errors.New("task not found")

	// ErrTasksUnavailable is returned by Toggle when today's tasks could
	// not be read on the last refresh.
	ErrTasksUnavailable = errors.New("daily tasks unavailable")
)

// State is the lifecycle of an editor's record.
type State int

const (
	StateLoading State = iota
	StateReady
	StateSaving
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// DailyStore is the slice of storage.Store used for daily plans.
type DailyStore interface {
	DailyPlan(ctx context.Context, date string) (storage.DailyPlan, error)
	UpsertDailyPlan(ctx context.Context, p storage.DailyPlan) (storage.DailyPlan, error)
}

// WeeklyStore is the slice of storage.Store used for weekly plans.
type WeeklyStore interface {
	WeeklyPlanInRange(ctx context.Context, from, to string) (storage.WeeklyPlan, error)
	UpsertWeeklyPlan(ctx context.Context, p storage.WeeklyPlan) (storage.WeeklyPlan, error)
}

// GoalsStore is the slice of storage.Store used for six-week goals.
type GoalsStore interface {
	LatestSixWeekGoals(ctx context.Context) (storage.SixWeekGoals, error)
	InsertSixWeekGoals(ctx context.Context, g storage.SixWeekGoals) (storage.SixWeekGoals, error)
}

// JournalStore is the slice of storage.Store used for journal entries.
type JournalStore interface {
	LatestJournalEntry(ctx context.Context) (storage.JournalEntry, error)
	InsertJournalEntry(ctx context.Context, e storage.JournalEntry) (storage.JournalEntry, error)
}

// DashboardStore is everything the Aggregator reads and writes.
type DashboardStore interface {
	DailyStore
	WeeklyPlanInRange(ctx context.Context, from, to string) (storage.WeeklyPlan, error)
	LatestSixWeekGoals(ctx context.Context) (storage.SixWeekGoals, error)
}

// Option configures planner components.
type Option func(*options)

type options struct {
	clock    Clock
	onUpdate func()
}

func buildOptions(opts []Option) options {
	o := options{clock: SystemClock(nil)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the clock used to derive date keys and message expiry.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithOnUpdate registers a callback run after every successful save.
func WithOnUpdate(fn func()) Option {
	return func(o *options) { o.onUpdate = fn }
}

func (o options) notify() {
	if o.onUpdate != nil {
		o.onUpdate()
	}
}
