package planner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kalambet/dayboard/internal/storage"
)

var errBoom = errors.New("connection refused")

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock(t time.Time) *fixedClock { return &fixedClock{t: t} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// memStore is an in-memory gateway with per-operation error injection.
type memStore struct {
	mu sync.Mutex

	daily   map[string]storage.DailyPlan
	weekly  map[string]storage.WeeklyPlan
	goals   []storage.SixWeekGoals
	journal []storage.JournalEntry

	dailyErr, upsertDailyErr   error
	weeklyErr, upsertWeeklyErr error
	goalsErr, insertGoalsErr   error
	journalErr, insertJournal  error

	upserts int
}

func newMemStore() *memStore {
	return &memStore{
		daily:  make(map[string]storage.DailyPlan),
		weekly: make(map[string]storage.WeeklyPlan),
	}
}

func (m *memStore) DailyPlan(_ context.Context, date string) (storage.DailyPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dailyErr != nil {
		return storage.DailyPlan{}, m.dailyErr
	}
	p, ok := m.daily[date]
	if !ok {
		return storage.DailyPlan{}, storage.ErrNotFound
	}
	p.TopTasks = append([]storage.TaskItem{}, p.TopTasks...)
	p.AdditionalTasks = append([]storage.TaskItem{}, p.AdditionalTasks...)
	return p, nil
}

func (m *memStore) UpsertDailyPlan(_ context.Context, p storage.DailyPlan) (storage.DailyPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertDailyErr != nil {
		return storage.DailyPlan{}, m.upsertDailyErr
	}
	m.upserts++
	m.daily[p.Date] = p
	return p, nil
}

func (m *memStore) WeeklyPlanInRange(_ context.Context, from, to string) (storage.WeeklyPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.weeklyErr != nil {
		return storage.WeeklyPlan{}, m.weeklyErr
	}
	for date, p := range m.weekly {
		if date >= from && date <= to {
			return p, nil
		}
	}
	return storage.WeeklyPlan{}, storage.ErrNotFound
}

func (m *memStore) UpsertWeeklyPlan(_ context.Context, p storage.WeeklyPlan) (storage.WeeklyPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertWeeklyErr != nil {
		return storage.WeeklyPlan{}, m.upsertWeeklyErr
	}
	m.weekly[p.Date] = p
	return p, nil
}

func (m *memStore) LatestSixWeekGoals(context.Context) (storage.SixWeekGoals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.goalsErr != nil {
		return storage.SixWeekGoals{}, m.goalsErr
	}
	if len(m.goals) == 0 {
		return storage.SixWeekGoals{}, storage.ErrNotFound
	}
	return m.goals[len(m.goals)-1], nil
}

func (m *memStore) InsertSixWeekGoals(_ context.Context, g storage.SixWeekGoals) (storage.SixWeekGoals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertGoalsErr != nil {
		return storage.SixWeekGoals{}, m.insertGoalsErr
	}
	m.goals = append(m.goals, g)
	return g, nil
}

func (m *memStore) LatestJournalEntry(context.Context) (storage.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.journalErr != nil {
		return storage.JournalEntry{}, m.journalErr
	}
	if len(m.journal) == 0 {
		return storage.JournalEntry{}, storage.ErrNotFound
	}
	return m.journal[len(m.journal)-1], nil
}

func (m *memStore) InsertJournalEntry(_ context.Context, e storage.JournalEntry) (storage.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertJournal != nil {
		return storage.JournalEntry{}, m.insertJournal
	}
	m.journal = append(m.journal, e)
	return e, nil
}
