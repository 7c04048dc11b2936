package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kalambet/dayboard/internal/planner"
	"github.com/kalambet/dayboard/internal/storage"
)

// Tab identifies a screen of the dashboard.
type Tab int

const (
	TabOverview Tab = iota
	TabJournal
	TabDaily
	TabWeekly
	TabGoals
	numTabs
)

var tabNames = [numTabs]string{"Overview", "Journal", "Daily", "Weekly", "Goals"}

func (t Tab) String() string {
	if t < 0 || t >= numTabs {
		return "unknown"
	}
	return tabNames[t]
}

// Store is the persistence surface the dashboard needs.
type Store interface {
	planner.DashboardStore
	planner.WeeklyStore
	planner.GoalsStore
	planner.JournalStore
}

// Responder generates a reflection on a journal entry.
type Responder interface {
	Respond(ctx context.Context, entry string) (string, error)
}

// Deps holds the dependencies of the terminal dashboard.
type Deps struct {
	Store     Store
	Responder Responder     // optional; reflections are disabled when nil
	Clock     planner.Clock // optional
	DBPath    string        // optional; enables live refresh on writes
}

// Model is the root bubbletea model for the dayboard TUI.
type Model struct {
	ctx       context.Context
	clock     planner.Clock
	responder Responder

	agg      *planner.Aggregator
	composer *planner.Composer
	editors  map[Tab]rowEditor

	// UI state
	tab     Tab
	cursor  int // overview task cursor
	rowPos  map[Tab]int
	editing bool
	input   textinput.Model
	journal textarea.Model
	width   int
	height  int

	// Journal
	prompt     string
	latest     storage.JournalEntry
	reflecting bool
	reflection string

	// Status is a transient line shown in the footer.
	status      string
	statusIsErr bool
}

// New creates a Model. ctx bounds every datastore call the model issues.
func New(ctx context.Context, deps Deps) Model {
	clock := deps.Clock
	if clock == nil {
		clock = planner.SystemClock(nil)
	}
	opts := []planner.Option{planner.WithClock(clock)}
	agg := planner.NewAggregator(deps.Store, opts...)
	// Editor saves refresh the overview before their message is delivered.
	edOpts := []planner.Option{planner.WithClock(clock), planner.WithOnUpdate(func() { agg.Refresh(ctx) })}

	ta := textarea.New()
	ta.Placeholder = "Write about your day..."
	ta.ShowLineNumbers = false
	ta.SetWidth(72)
	ta.SetHeight(8)

	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60

	return Model{
		ctx:       ctx,
		clock:     clock,
		responder: deps.Responder,
		agg:       agg,
		composer:  planner.NewComposer(deps.Store, opts...),
		editors: map[Tab]rowEditor{
			TabDaily:  dailyRows{planner.NewDailyEditor(deps.Store, edOpts...)},
			TabWeekly: weeklyRows{planner.NewWeeklyEditor(deps.Store, edOpts...)},
			TabGoals:  goalsRows{planner.NewGoalsEditor(deps.Store, edOpts...)},
		},
		rowPos:  map[Tab]int{},
		input:   ti,
		journal: ta,
		prompt:  planner.RandomPrompt(),
	}
}

// Init loads every tab.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		refreshCmd(m.ctx, m.agg),
		loadJournalCmd(m.ctx, m.composer),
	}
	for _, tab := range []Tab{TabDaily, TabWeekly, TabGoals} {
		cmds = append(cmds, loadEditorCmd(m.ctx, tab, m.editors[tab]))
	}
	return tea.Batch(cmds...)
}

func refreshCmd(ctx context.Context, agg *planner.Aggregator) tea.Cmd {
	return func() tea.Msg {
		agg.Refresh(ctx)
		return dashboardLoadedMsg{}
	}
}

func toggleCmd(ctx context.Context, agg *planner.Aggregator, id string) tea.Cmd {
	return func() tea.Msg {
		return toggledMsg{id: id, err: agg.Toggle(ctx, id)}
	}
}

func loadJournalCmd(ctx context.Context, c *planner.Composer) tea.Cmd {
	return func() tea.Msg {
		e, err := c.Load(ctx)
		return journalLoadedMsg{entry: e, err: err}
	}
}

func saveJournalCmd(ctx context.Context, c *planner.Composer, text string) tea.Cmd {
	return func() tea.Msg {
		c.SetDraft(text)
		e, err := c.Save(ctx)
		return journalSavedMsg{entry: e, err: err}
	}
}

func reflectCmd(ctx context.Context, r Responder, text string) tea.Cmd {
	return func() tea.Msg {
		out, err := r.Respond(ctx, text)
		return reflectionMsg{text: out, err: err}
	}
}

func loadEditorCmd(ctx context.Context, tab Tab, ed rowEditor) tea.Cmd {
	return func() tea.Msg {
		return editorLoadedMsg{tab: tab, err: ed.Load(ctx)}
	}
}

func saveEditorCmd(ctx context.Context, tab Tab, ed rowEditor) tea.Cmd {
	return func() tea.Msg {
		return editorSavedMsg{tab: tab, err: ed.Save(ctx)}
	}
}

// clearAfterCmd redraws once d has passed so expired messages disappear.
func clearAfterCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearMessageMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if w := msg.Width - 4; w > 20 {
			m.journal.SetWidth(w)
			m.input.Width = w - 6
		}
		return m, nil

	case dashboardLoadedMsg:
		m.clampCursor()
		return m, nil

	case toggledMsg:
		if errors.Is(msg.err, planner.ErrTaskNotFound) {
			return m, refreshCmd(m.ctx, m.agg)
		}
		return m, nil

	case journalLoadedMsg:
		if msg.err == nil {
			m.latest = msg.entry
		}
		return m, nil

	case journalSavedMsg:
		if msg.err == nil {
			m.latest = msg.entry
		}
		return m, clearAfterCmd(planner.MessageTTL)

	case reflectionMsg:
		m.reflecting = false
		if msg.err != nil {
			m.setStatus("Failed to generate AI response. Please try again.", true)
			return m, clearAfterCmd(planner.MessageTTL)
		}
		m.reflection = msg.text
		return m, nil

	case editorLoadedMsg:
		m.clampRow(msg.tab)
		return m, nil

	case editorSavedMsg:
		if msg.err == nil {
			m.setStatus(msg.tab.String()+" saved", false)
			m.clampCursor()
		}
		return m, clearAfterCmd(planner.MessageTTL)

	case storeChangedMsg:
		return m, tea.Batch(refreshCmd(m.ctx, m.agg), loadJournalCmd(m.ctx, m.composer))

	case clearMessageMsg:
		m.status = ""
		m.statusIsErr = false
		return m, nil
	}

	if m.tab == TabJournal {
		var cmd tea.Cmd
		m.journal, cmd = m.journal.Update(msg)
		return m, cmd
	}
	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusIsErr = isErr
}

func (m *Model) clampCursor() {
	if n := len(m.agg.View().Tasks); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

func (m *Model) clampRow(tab Tab) {
	ed, ok := m.editors[tab]
	if !ok {
		return
	}
	n := len(ed.Rows())
	if m.rowPos[tab] >= n {
		m.rowPos[tab] = max(0, n-1)
	}
}

func (m Model) switchTab(t Tab) (Model, tea.Cmd) {
	m.tab = t
	m.editing = false
	m.input.Blur()
	if t == TabJournal {
		cmd := m.journal.Focus()
		return m, cmd
	}
	m.journal.Blur()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case KeyCtrlC:
		return m, tea.Quit
	case KeyTab:
		if !m.editing {
			return m.switchTab((m.tab + 1) % numTabs)
		}
	case KeyShiftTab:
		if !m.editing {
			return m.switchTab((m.tab + numTabs - 1) % numTabs)
		}
	}

	switch {
	case m.tab == TabJournal:
		return m.handleJournalKey(msg)
	case m.editing:
		return m.handleEditKey(msg)
	}

	if key == KeyQuit {
		return m, tea.Quit
	}
	if len(key) == 1 && key[0] >= '1' && key[0] < '1'+byte(numTabs) {
		return m.switchTab(Tab(key[0] - '1'))
	}

	if m.tab == TabOverview {
		return m.handleOverviewKey(key)
	}
	return m.handleEditorKey(key)
}

func (m Model) handleOverviewKey(key string) (tea.Model, tea.Cmd) {
	tasks := m.agg.View().Tasks
	switch key {
	case KeyDown, KeyJ:
		if m.cursor < len(tasks)-1 {
			m.cursor++
		}
	case KeyUp, KeyK:
		if m.cursor > 0 {
			m.cursor--
		}
	case KeySpace, KeyEnter:
		if m.cursor < len(tasks) {
			return m, toggleCmd(m.ctx, m.agg, tasks[m.cursor].ID)
		}
	case KeyRefresh:
		return m, refreshCmd(m.ctx, m.agg)
	}
	return m, nil
}

func (m Model) handleJournalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeySave:
		if m.composer.Saving() {
			return m, nil
		}
		return m, saveJournalCmd(m.ctx, m.composer, m.journal.Value())
	case KeyPrompt:
		m.prompt = m.composer.PickRandomPrompt()
		return m, nil
	case KeyReflect:
		if m.responder == nil {
			m.setStatus("API key is not configured", true)
			return m, clearAfterCmd(planner.MessageTTL)
		}
		text := strings.TrimSpace(m.journal.Value())
		if text == "" {
			text = m.latest.Content
		}
		if text == "" || m.reflecting {
			return m, nil
		}
		m.reflecting = true
		m.reflection = ""
		return m, reflectCmd(m.ctx, m.responder, text)
	case KeyEsc:
		return m.switchTab(TabOverview)
	}
	var cmd tea.Cmd
	m.journal, cmd = m.journal.Update(msg)
	return m, cmd
}

func (m Model) handleEditorKey(key string) (tea.Model, tea.Cmd) {
	ed := m.editors[m.tab]
	rows := ed.Rows()
	pos := m.rowPos[m.tab]

	switch key {
	case KeyDown, KeyJ:
		if pos < len(rows)-1 {
			m.rowPos[m.tab] = pos + 1
		}
	case KeyUp, KeyK:
		if pos > 0 {
			m.rowPos[m.tab] = pos - 1
		}
	case KeyEnter, KeyEdit:
		if pos < len(rows) {
			text := rows[pos].Text
			if rows[pos].Placeholder {
				text = ""
			}
			m.editing = true
			m.input.SetValue(text)
			m.input.CursorEnd()
			cmd := m.input.Focus()
			return m, cmd
		}
	case KeyAdd:
		i, err := ed.Add(pos)
		if err != nil {
			return m, nil
		}
		m.rowPos[m.tab] = i
		m.editing = true
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case KeyDelete:
		if err := ed.Remove(pos); err == nil {
			m.clampRow(m.tab)
		}
	case KeySave:
		return m, saveEditorCmd(m.ctx, m.tab, ed)
	case KeyRefresh:
		return m, loadEditorCmd(m.ctx, m.tab, ed)
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEnter:
		m.commitEdit()
		return m, nil
	case KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	case KeySave:
		m.commitEdit()
		return m, saveEditorCmd(m.ctx, m.tab, m.editors[m.tab])
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) commitEdit() {
	if err := m.editors[m.tab].Set(m.rowPos[m.tab], m.input.Value()); err != nil {
		m.setStatus(err.Error(), true)
	}
	m.editing = false
	m.input.Blur()
}
