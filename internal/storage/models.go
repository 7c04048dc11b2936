package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// JournalEntry is a single free-form journal entry. Entries are append-only.
type JournalEntry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskItem is one task on a daily plan. ID is assigned when the task is first
// saved and survives edits and reorders.
type TaskItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// DailyPlan is keyed by calendar date (YYYY-MM-DD).
type DailyPlan struct {
	Date            string     `json:"date"`
	TopTasks        []TaskItem `json:"top_tasks"`
	AdditionalTasks []TaskItem `json:"additional_tasks"`
	Notes           string     `json:"notes"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// WeeklyPlan is keyed by the Monday (YYYY-MM-DD) of the week it covers.
// Tasks maps a weekday name ("Monday" … "Sunday") to its task list.
type WeeklyPlan struct {
	Date      string              `json:"date"`
	Tasks     map[string][]string `json:"tasks"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// SixWeekGoals is an insert-only snapshot of the current goal list.
type SixWeekGoals struct {
	ID        string    `json:"id"`
	Goals     []string  `json:"goals"`
	CreatedAt time.Time `json:"created_at"`
}
