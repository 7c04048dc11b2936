package planner

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kalambet/dayboard/internal/storage"
)

// TopTaskSlots is the number of top-priority task slots on a daily plan.
const TopTaskSlots = 3

const (
	msgDailyFetchFailed = "Failed to fetch daily plan. Please try again later."
	msgDailySaveFailed  = "Failed to save daily plan. Please try again."
)

// DailyDraft is the editable form of today's plan.
type DailyDraft struct {
	Date            string             `json:"date"`
	TopTasks        []storage.TaskItem `json:"top_tasks"`
	AdditionalTasks []storage.TaskItem `json:"additional_tasks"`
	Notes           string             `json:"notes"`
}

// DailyEditor edits the plan for today's date.
type DailyEditor struct {
	store DailyStore
	opts  options

	mu     sync.Mutex
	state  State
	errMsg string
	draft  DailyDraft
	saved  map[string]storage.TaskItem
}

// NewDailyEditor creates an editor with a default draft. Call Load to read
// the stored plan.
func NewDailyEditor(store DailyStore, opts ...Option) *DailyEditor {
	e := &DailyEditor{store: store, opts: buildOptions(opts), state: StateLoading}
	e.draft = defaultDailyDraft(e.today())
	return e
}

func (e *DailyEditor) today() string {
	return DateKey(e.opts.clock.Now())
}

func defaultDailyDraft(date string) DailyDraft {
	return DailyDraft{
		Date:            date,
		TopTasks:        make([]storage.TaskItem, TopTaskSlots),
		AdditionalTasks: make([]storage.TaskItem, 1),
	}
}

// Load reads today's plan. A missing plan yields the default draft.
func (e *DailyEditor) Load(ctx context.Context) error {
	date := e.today()
	p, err := e.store.DailyPlan(ctx, date)

	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case errors.Is(err, storage.ErrNotFound):
		e.draft = defaultDailyDraft(date)
		e.saved = nil
	case err != nil:
		slog.Error("fetching daily plan", "date", date, "error", err)
		e.state = StateError
		e.errMsg = msgDailyFetchFailed
		return err
	default:
		top := cloneTasks(p.TopTasks)
		for len(top) < TopTaskSlots {
			top = append(top, storage.TaskItem{})
		}
		e.draft = DailyDraft{Date: date, TopTasks: top, AdditionalTasks: cloneTasks(p.AdditionalTasks), Notes: p.Notes}
		e.saved = indexTasks(p)
	}
	e.state = StateReady
	e.errMsg = ""
	return nil
}

// Draft returns a copy of the current draft.
func (e *DailyEditor) Draft() DailyDraft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyDailyDraft(e.draft)
}

// State reports the editor lifecycle state.
func (e *DailyEditor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the last user-visible error message, or "".
func (e *DailyEditor) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

// SetTopTask replaces the text of top task i.
func (e *DailyEditor) SetTopTask(i int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.draft.TopTasks) {
		return ErrIndexOutOfRange
	}
	e.draft.TopTasks[i].Text = text
	return nil
}

// SetAdditionalTask replaces the text of additional task i.
func (e *DailyEditor) SetAdditionalTask(i int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.draft.AdditionalTasks) {
		return ErrIndexOutOfRange
	}
	e.draft.AdditionalTasks[i].Text = text
	return nil
}

// AddAdditionalTask appends a blank additional task.
func (e *DailyEditor) AddAdditionalTask() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.AdditionalTasks = append(e.draft.AdditionalTasks, storage.TaskItem{})
}

// RemoveAdditionalTask deletes additional task i.
func (e *DailyEditor) RemoveAdditionalTask(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.draft.AdditionalTasks) {
		return ErrIndexOutOfRange
	}
	e.draft.AdditionalTasks = append(e.draft.AdditionalTasks[:i], e.draft.AdditionalTasks[i+1:]...)
	return nil
}

// SetNotes replaces the free-form notes.
func (e *DailyEditor) SetNotes(notes string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.Notes = notes
}

// SetDraft replaces the whole draft. Top tasks are padded to TopTaskSlots.
func (e *DailyEditor) SetDraft(d DailyDraft) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d = copyDailyDraft(d)
	d.Date = e.draft.Date
	for len(d.TopTasks) < TopTaskSlots {
		d.TopTasks = append(d.TopTasks, storage.TaskItem{})
	}
	e.draft = d
}

// Save drops blank tasks, assigns IDs to new tasks, and upserts the plan for
// today. Completion flags of tasks already stored are preserved.
func (e *DailyEditor) Save(ctx context.Context) error {
	e.mu.Lock()
	draft := copyDailyDraft(e.draft)
	saved := e.saved
	e.state = StateSaving
	e.mu.Unlock()

	// Pick up completion toggled elsewhere since Load.
	if current, err := e.store.DailyPlan(ctx, draft.Date); err == nil {
		saved = indexTasks(current)
	} else if !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("re-reading daily plan before save", "date", draft.Date, "error", err)
	}

	plan := storage.DailyPlan{
		Date:            draft.Date,
		TopTasks:        prepareTasks(draft.TopTasks, saved),
		AdditionalTasks: prepareTasks(draft.AdditionalTasks, saved),
		Notes:           draft.Notes,
	}

	stored, err := e.store.UpsertDailyPlan(ctx, plan)

	e.mu.Lock()
	if err != nil {
		slog.Error("saving daily plan", "date", draft.Date, "error", err)
		e.state = StateError
		e.errMsg = msgDailySaveFailed
		e.mu.Unlock()
		return err
	}
	e.saved = indexTasks(stored)
	// Keep any edits made while the write was in flight; only stamp IDs.
	assignIDs(e.draft.TopTasks, draft.TopTasks, plan.TopTasks)
	assignIDs(e.draft.AdditionalTasks, draft.AdditionalTasks, plan.AdditionalTasks)
	e.state = StateReady
	e.errMsg = ""
	e.mu.Unlock()

	e.opts.notify()
	return nil
}

// prepareTasks returns the non-blank tasks with IDs assigned and completion
// carried over from saved.
func prepareTasks(tasks []storage.TaskItem, saved map[string]storage.TaskItem) []storage.TaskItem {
	out := make([]storage.TaskItem, 0, len(tasks))
	for _, t := range tasks {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		if t.ID == "" {
			t.ID = newTaskID()
			t.Completed = false
		} else if prev, ok := saved[t.ID]; ok {
			t.Completed = prev.Completed
		}
		out = append(out, t)
	}
	return out
}

// assignIDs copies IDs chosen during save back into the live draft for items
// that were new when the save started.
func assignIDs(live, snapshot, stored []storage.TaskItem) {
	byText := make(map[string][]string)
	for _, t := range stored {
		byText[t.Text] = append(byText[t.Text], t.ID)
	}
	for i := range snapshot {
		if snapshot[i].ID != "" || i >= len(live) || live[i].ID != "" {
			continue
		}
		ids := byText[snapshot[i].Text]
		if len(ids) == 0 || strings.TrimSpace(snapshot[i].Text) == "" {
			continue
		}
		live[i].ID = ids[0]
		byText[snapshot[i].Text] = ids[1:]
	}
}

func indexTasks(p storage.DailyPlan) map[string]storage.TaskItem {
	m := make(map[string]storage.TaskItem, len(p.TopTasks)+len(p.AdditionalTasks))
	for _, t := range p.TopTasks {
		m[t.ID] = t
	}
	for _, t := range p.AdditionalTasks {
		m[t.ID] = t
	}
	return m
}

func copyDailyDraft(d DailyDraft) DailyDraft {
	d.TopTasks = cloneTasks(d.TopTasks)
	d.AdditionalTasks = cloneTasks(d.AdditionalTasks)
	return d
}

func cloneTasks(tasks []storage.TaskItem) []storage.TaskItem {
	out := make([]storage.TaskItem, len(tasks))
	copy(out, tasks)
	return out
}

func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
