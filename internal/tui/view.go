package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/kalambet/dayboard/internal/planner"
)

const barWidth = 24

// View renders the full screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.tab {
	case TabOverview:
		b.WriteString(m.renderOverview())
	case TabJournal:
		b.WriteString(m.renderJournal())
	default:
		b.WriteString(m.renderEditor())
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) wrapWidth() int {
	if m.width > 10 {
		return m.width - 4
	}
	return 76
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, numTabs+1)
	parts = append(parts, TitleStyle.Render("dayboard")+" ")
	for t := Tab(0); t < numTabs; t++ {
		label := fmt.Sprintf("%d %s", t+1, t)
		if t == m.tab {
			parts = append(parts, ActiveTabStyle.Render(label))
		} else {
			parts = append(parts, TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func progressBar(pct float64) string {
	full := int(pct / 100 * barWidth)
	if full > barWidth {
		full = barWidth
	}
	return BarFullStyle.Render(strings.Repeat("█", full)) +
		BarEmptyStyle.Render(strings.Repeat("░", barWidth-full))
}

func (m Model) renderOverview() string {
	v := m.agg.View()
	var b strings.Builder

	b.WriteString(SectionStyle.Render("Today " + v.Date))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %3.0f%%  %d/%d done\n", progressBar(v.Progress), v.Progress, v.Completed, v.Total)
	if len(v.Tasks) == 0 {
		b.WriteString(DimStyle.Render("  " + planner.NoTasksPlaceholder))
		b.WriteString("\n")
	}
	for i, t := range v.Tasks {
		check := "[ ]"
		text := t.Text
		if t.Completed {
			check = "[x]"
			text = DoneStyle.Render(text)
		}
		if t.Top {
			text += " " + TopMarkStyle.Render("★")
		}
		line := check + " " + text
		if i == m.cursor {
			line = SelectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(SectionStyle.Render("Six-week goals"))
	b.WriteString("\n")
	if len(v.Goals) == 0 {
		b.WriteString(DimStyle.Render("  No goals set"))
		b.WriteString("\n")
	}
	for _, g := range v.Goals {
		b.WriteString("  • " + g + "\n")
	}

	b.WriteString(SectionStyle.Render("Week of " + v.Week))
	b.WriteString("\n")
	for _, d := range v.Weekly {
		tasks := strings.Join(d.Tasks, ", ")
		if d.Empty {
			tasks = DimStyle.Render(tasks)
		}
		fmt.Fprintf(&b, "  %-10s %s\n", d.Day, tasks)
	}

	for _, e := range v.Errors {
		b.WriteString(ErrorStyle.Render(e))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderJournal() string {
	var b strings.Builder
	width := m.wrapWidth()

	b.WriteString(PromptStyle.Render(wordwrap.String(m.prompt, width)))
	b.WriteString("\n\n")
	b.WriteString(m.journal.View())
	b.WriteString("\n")

	if msg := m.composer.Message(); msg != "" {
		style := SuccessStyle
		if msg != planner.MsgJournalSaved {
			style = ErrorStyle
		}
		b.WriteString(style.Render(msg))
		b.WriteString("\n")
	}

	if m.reflecting {
		b.WriteString(DimStyle.Render("Reflecting..."))
		b.WriteString("\n")
	} else if m.reflection != "" {
		b.WriteString(SectionStyle.Render("Reflection"))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(m.reflection, width))
		b.WriteString("\n")
	}

	if m.latest.ID != "" {
		b.WriteString(SectionStyle.Render("Latest entry"))
		b.WriteString(" ")
		b.WriteString(DimStyle.Render(humanize.Time(m.latest.CreatedAt)))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(m.latest.Content, width))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderEditor() string {
	ed := m.editors[m.tab]
	var b strings.Builder

	switch ed.State() {
	case planner.StateLoading:
		return DimStyle.Render("Loading...")
	case planner.StateSaving:
		b.WriteString(DimStyle.Render("Saving..."))
		b.WriteString("\n")
	}

	if w, ok := ed.(weeklyRows); ok {
		b.WriteString(DimStyle.Render("Week of " + w.Week()))
		b.WriteString("\n")
	}

	pos := m.rowPos[m.tab]
	section := ""
	for i, r := range ed.Rows() {
		if r.Section != section {
			section = r.Section
			b.WriteString(SectionStyle.Render(section))
			b.WriteString("\n")
		}
		marker := "  "
		if i == pos {
			marker = SelectedStyle.Render("> ")
		}
		text := r.Text
		switch {
		case i == pos && m.editing:
			text = m.input.View()
		case r.Placeholder:
			text = DimStyle.Render(text)
		case text == "":
			text = DimStyle.Render("(blank)")
		}
		b.WriteString(marker + text + "\n")
	}

	if msg := ed.Err(); msg != "" {
		b.WriteString(ErrorStyle.Render(msg))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

type keyHelp struct{ key, desc string }

func (m Model) renderFooter() string {
	var keys []keyHelp
	switch {
	case m.tab == TabOverview:
		keys = []keyHelp{{"j/k", "move"}, {"space", "toggle"}, {"r", "refresh"}}
	case m.tab == TabJournal:
		keys = []keyHelp{{"ctrl+s", "save"}, {"ctrl+p", "new prompt"}, {"ctrl+g", "reflect"}, {"esc", "leave"}}
	case m.editing:
		keys = []keyHelp{{"enter", "done"}, {"esc", "cancel"}, {"ctrl+s", "save"}}
	default:
		keys = []keyHelp{{"j/k", "move"}, {"e", "edit"}, {"a", "add"}, {"d", "delete"}, {"ctrl+s", "save"}, {"r", "reload"}}
	}
	keys = append(keys, keyHelp{"tab", "next"}, keyHelp{"ctrl+c", "quit"})

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = FooterKeyStyle.Render(k.key) + " " + FooterDescStyle.Render(k.desc)
	}
	footer := strings.Join(parts, "  ")

	if m.status != "" {
		style := SuccessStyle
		if m.statusIsErr {
			style = ErrorStyle
		}
		footer = style.Render(m.status) + "\n" + footer
	}
	return footer
}
