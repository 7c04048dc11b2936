package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kalambet/dayboard/internal/planner"
	"github.com/kalambet/dayboard/internal/storage"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var wednesday = time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)

type fakeResponder struct {
	text string
	err  error
}

func (f fakeResponder) Respond(context.Context, string) (string, error) {
	return f.text, f.err
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestModel(t *testing.T, r Responder) (Model, *storage.Store) {
	t.Helper()
	store := openStore(t)
	m := New(context.Background(), Deps{Store: store, Responder: r, Clock: fixedClock{wednesday}})
	m.journal.Cursor.SetMode(cursor.CursorStatic)
	m.input.Cursor.SetMode(cursor.CursorStatic)
	return m, store
}

// runCmd executes cmd, giving up on slow commands such as ticks.
func runCmd(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(500 * time.Millisecond):
		return nil
	}
}

// send applies msg and runs any returned command once, feeding its message
// back into the model. Batched commands are not followed.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	model := updated.(Model)
	if cmd == nil {
		return model
	}
	next := runCmd(cmd)
	switch next.(type) {
	case nil, tea.BatchMsg, tea.QuitMsg:
		return model
	}
	if _, ok := next.(clearMessageMsg); ok {
		return model
	}
	updated, _ = model.Update(next)
	return updated.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadAll(t *testing.T, m Model) Model {
	t.Helper()
	ctx := context.Background()
	m = send(t, m, refreshCmd(ctx, m.agg)())
	m = send(t, m, loadJournalCmd(ctx, m.composer)())
	for _, tab := range []Tab{TabDaily, TabWeekly, TabGoals} {
		m = send(t, m, loadEditorCmd(ctx, tab, m.editors[tab])())
	}
	return m
}

func TestNewModel(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if m.tab != TabOverview {
		t.Errorf("tab = %v, want Overview", m.tab)
	}
	found := false
	for _, p := range planner.Prompts {
		if p == m.prompt {
			found = true
		}
	}
	if !found {
		t.Errorf("prompt %q not in prompt list", m.prompt)
	}
	if m.Init() == nil {
		t.Error("Init should load data")
	}
}

func TestTabNavigation(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m = send(t, m, key("tab"))
	if m.tab != TabJournal {
		t.Fatalf("after tab: %v", m.tab)
	}
	if !m.journal.Focused() {
		t.Error("journal should be focused on the Journal tab")
	}

	m = send(t, m, key("esc"))
	if m.tab != TabOverview {
		t.Fatalf("after esc: %v", m.tab)
	}

	m = send(t, m, key("shift+tab"))
	if m.tab != TabGoals {
		t.Errorf("shift+tab should wrap to Goals, got %v", m.tab)
	}

	m = send(t, m, key("3"))
	if m.tab != TabDaily {
		t.Errorf("3 should jump to Daily, got %v", m.tab)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}

	// q is text on the journal tab.
	m = send(t, m, key("tab"))
	m = send(t, m, key("q"))
	if m.journal.Value() != "q" {
		t.Errorf("journal = %q, want q", m.journal.Value())
	}
}

func TestOverviewToggle(t *testing.T) {
	m, store := newTestModel(t, nil)
	_, err := store.UpsertDailyPlan(context.Background(), storage.DailyPlan{
		Date:            "2026-03-04",
		TopTasks:        []storage.TaskItem{{ID: "t1", Text: "Write"}},
		AdditionalTasks: []storage.TaskItem{{ID: "a1", Text: "Call"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	m = loadAll(t, m)

	m = send(t, m, key("j"))
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	m = send(t, m, key("j"))
	if m.cursor != 1 {
		t.Errorf("cursor should stop at last task, got %d", m.cursor)
	}

	m = send(t, m, key(" "))
	v := m.agg.View()
	if !v.Tasks[1].Completed || v.Completed != 1 {
		t.Errorf("view after toggle = %+v", v.Tasks)
	}
	p, _ := store.DailyPlan(context.Background(), "2026-03-04")
	if !p.AdditionalTasks[0].Completed {
		t.Error("toggle not persisted")
	}

	out := m.View()
	if !strings.Contains(out, "1/2 done") {
		t.Errorf("view missing progress:\n%s", out)
	}
}

func TestOverviewEmpty(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = loadAll(t, m)

	out := m.View()
	for _, want := range []string{"2026-03-04", "Week of 2026-03-02", planner.NoTasksPlaceholder, "No goals set"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
	// Space with no tasks is a no-op.
	if _, cmd := m.Update(key(" ")); cmd != nil {
		t.Error("toggle with no tasks should not issue a command")
	}
}

func TestJournalSave(t *testing.T) {
	m, store := newTestModel(t, nil)
	m = send(t, m, key("tab"))
	m.journal.SetValue("A good day.")

	m = send(t, m, key("ctrl+s"))
	if m.journal.Value() != "A good day." {
		t.Errorf("journal = %q, want the saved text kept for editing", m.journal.Value())
	}
	if m.composer.Draft() != "A good day." {
		t.Errorf("draft = %q", m.composer.Draft())
	}
	if m.latest.Content != "A good day." {
		t.Errorf("latest = %+v", m.latest)
	}
	e, err := store.LatestJournalEntry(context.Background())
	if err != nil || e.Content != "A good day." {
		t.Errorf("stored = %+v, %v", e, err)
	}
	if !strings.Contains(m.View(), planner.MsgJournalSaved) {
		t.Error("saved message not shown")
	}
}

func TestJournalSave_Empty(t *testing.T) {
	m, store := newTestModel(t, nil)
	m = send(t, m, key("tab"))
	m = send(t, m, key("ctrl+s"))

	if msg := m.composer.Message(); msg != planner.MsgJournalEmpty {
		t.Errorf("message = %q", msg)
	}
	if _, err := store.LatestJournalEntry(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected nothing stored, got %v", err)
	}
}

func TestJournalPrompt(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = send(t, m, key("tab"))
	m = send(t, m, key("ctrl+p"))
	if m.prompt == "" {
		t.Error("prompt should be set")
	}
}

func TestReflect(t *testing.T) {
	m, _ := newTestModel(t, fakeResponder{text: "You seem calm."})
	m = send(t, m, key("tab"))
	m.journal.SetValue("quiet morning")

	m = send(t, m, key("ctrl+g"))
	if m.reflecting {
		t.Error("reflecting should be cleared after the response")
	}
	if m.reflection != "You seem calm." {
		t.Errorf("reflection = %q", m.reflection)
	}
}

func TestReflect_Errors(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = send(t, m, key("tab"))
	m.journal.SetValue("x")
	m = send(t, m, key("ctrl+g"))
	if m.status != "API key is not configured" || !m.statusIsErr {
		t.Errorf("status = %q", m.status)
	}

	m, _ = newTestModel(t, fakeResponder{err: errors.New("503")})
	m = send(t, m, key("tab"))
	m.journal.SetValue("x")
	m = send(t, m, key("ctrl+g"))
	if !strings.HasPrefix(m.status, "Failed to generate AI response") {
		t.Errorf("status = %q", m.status)
	}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestGoalsEditAndSave(t *testing.T) {
	m, store := newTestModel(t, nil)
	m = loadAll(t, m)
	m = send(t, m, key("5"))

	m = send(t, m, key("e"))
	if !m.editing {
		t.Fatal("e should start editing")
	}
	m = typeText(t, m, "Run")
	m = send(t, m, key("enter"))
	if m.editing {
		t.Fatal("enter should finish editing")
	}

	m = send(t, m, key("a"))
	m = typeText(t, m, "Read")
	m = send(t, m, key("ctrl+s"))

	g, err := store.LatestSixWeekGoals(context.Background())
	if err != nil {
		t.Fatalf("goals not saved: %v", err)
	}
	if len(g.Goals) != 2 || g.Goals[0] != "Run" || g.Goals[1] != "Read" {
		t.Errorf("goals = %q", g.Goals)
	}
	if m.status != "Goals saved" {
		t.Errorf("status = %q", m.status)
	}
}

func TestEditCancel(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = loadAll(t, m)
	m = send(t, m, key("5"))

	m = send(t, m, key("e"))
	m = typeText(t, m, "discard me")
	m = send(t, m, key("esc"))

	if got := m.editors[TabGoals].Rows()[0].Text; got != "" {
		t.Errorf("goal = %q, want unchanged", got)
	}
}

func TestDailyEditorKeys(t *testing.T) {
	m, store := newTestModel(t, nil)
	m = loadAll(t, m)
	m = send(t, m, key("3"))

	m = send(t, m, key("e"))
	m = typeText(t, m, "Ship")
	m = send(t, m, key("enter"))

	// Top slots cannot be deleted.
	m = send(t, m, key("d"))
	if n := len(m.editors[TabDaily].Rows()); n != 5 {
		t.Errorf("rows = %d, want 5", n)
	}

	m = send(t, m, key("ctrl+s"))
	p, err := store.DailyPlan(context.Background(), "2026-03-04")
	if err != nil {
		t.Fatalf("daily plan not saved: %v", err)
	}
	if len(p.TopTasks) != 1 || p.TopTasks[0].Text != "Ship" || p.TopTasks[0].ID == "" {
		t.Errorf("top tasks = %+v", p.TopTasks)
	}
}

func TestDailySaveRefreshesOverview(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = loadAll(t, m)
	if n := len(m.agg.View().Tasks); n != 0 {
		t.Fatalf("tasks before save = %d", n)
	}
	m = send(t, m, key("3"))

	m = send(t, m, key("e"))
	m = typeText(t, m, "Ship")
	m = send(t, m, key("enter"))

	// The saved message only schedules a status clear; the overview must
	// already reflect the new plan when it arrives.
	updated, _ := m.Update(saveEditorCmd(context.Background(), TabDaily, m.editors[TabDaily])())
	m = updated.(Model)
	v := m.agg.View()
	if v.Total != 1 || v.Tasks[0].Text != "Ship" {
		t.Errorf("overview after save = %+v", v.Tasks)
	}
	if m.status != "Daily saved" {
		t.Errorf("status = %q", m.status)
	}
}

func TestStoreChangedRefreshes(t *testing.T) {
	m, _ := newTestModel(t, nil)
	_, cmd := m.Update(storeChangedMsg{})
	if cmd == nil {
		t.Fatal("store change should trigger a refresh")
	}
}

func TestWindowResize(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	if m.width != 100 || m.height != 40 {
		t.Errorf("size = %dx%d", m.width, m.height)
	}
}
