package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/wordwrap"

	"github.com/kalambet/dayboard/internal/api"
	"github.com/kalambet/dayboard/internal/planner"
	"github.com/kalambet/dayboard/internal/storage"
)

const textWidth = 80

var (
	colorRed    = color.New(color.FgRed)
	colorGreen  = color.New(color.FgGreen)
	colorYellow = color.New(color.FgYellow)
	colorCyan   = color.New(color.FgCyan)
	colorBold   = color.New(color.Bold)
	colorTitle  = color.New(color.Bold, color.Underline)
	colorFaint  = color.New(color.Faint)
)

func colorize(c *color.Color, text string) string {
	if noColor {
		return text
	}
	return c.Sprint(text)
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(color.Error, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(color.Error, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(color.Error, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(color.Error, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(color.Error, colorize(colorCyan, "→ "+msg))
}

func checkbox(done bool) string {
	if done {
		return colorize(colorGreen, "[x]")
	}
	return "[ ]"
}

func printDashboard(w io.Writer, v planner.View) {
	fmt.Fprintln(w, colorize(colorTitle, "Today "+v.Date))
	fmt.Fprintf(w, "%d/%d done (%.0f%%)\n", v.Completed, v.Total, v.Progress)

	if len(v.Tasks) == 0 {
		fmt.Fprintln(w, colorize(colorFaint, "  no tasks planned"))
	} else {
		tbl := uitable.New()
		tbl.Separator = " "
		tbl.MaxColWidth = textWidth
		tbl.Wrap = true
		for _, t := range v.Tasks {
			mark := ""
			if t.Top {
				mark = colorize(colorYellow, "★")
			}
			tbl.AddRow(" ", checkbox(t.Completed), t.Text, mark, colorize(colorFaint, t.ID))
		}
		fmt.Fprintln(w, tbl)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, colorize(colorTitle, "Six-week goals"))
	printList(w, v.Goals)
	fmt.Fprintln(w)

	fmt.Fprintln(w, colorize(colorTitle, "Week of "+v.Week))
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = textWidth
	tbl.Wrap = true
	for _, d := range v.Weekly {
		tasks := strings.Join(d.Tasks, "; ")
		if d.Empty {
			tasks = colorize(colorFaint, tasks)
		}
		tbl.AddRow(colorize(colorBold, d.Day), tasks)
	}
	fmt.Fprintln(w, tbl)

	for _, msg := range v.Errors {
		fmt.Fprintln(w, colorize(colorRed, "✗ "+msg))
	}
}

func printList(w io.Writer, items []string) {
	n := 0
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			continue
		}
		n++
		fmt.Fprintf(w, "  %d. %s\n", n, it)
	}
	if n == 0 {
		fmt.Fprintln(w, colorize(colorFaint, "  none"))
	}
}

func printDailyPlan(w io.Writer, d planner.DailyDraft) {
	fmt.Fprintln(w, colorize(colorTitle, "Daily plan "+d.Date))
	tbl := uitable.New()
	tbl.Separator = " "
	tbl.MaxColWidth = textWidth
	tbl.Wrap = true
	for i, t := range d.TopTasks {
		tbl.AddRow(fmt.Sprintf("top %d", i+1), checkbox(t.Completed), t.Text)
	}
	for i, t := range d.AdditionalTasks {
		tbl.AddRow(fmt.Sprintf("task %d", i+1), checkbox(t.Completed), t.Text)
	}
	fmt.Fprintln(w, tbl)
	if d.Notes != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, colorize(colorBold, "Notes"))
		fmt.Fprintln(w, wordwrap.String(d.Notes, textWidth))
	}
}

func printWeeklyPlan(w io.Writer, body api.WeeklyPlanBody) {
	fmt.Fprintln(w, colorize(colorTitle, "Week of "+body.Week))
	for _, day := range planner.Weekdays {
		fmt.Fprintln(w, colorize(colorBold, day))
		tasks := body.Tasks[day]
		if len(tasks) == 0 {
			fmt.Fprintln(w, colorize(colorFaint, "  "+planner.NoTasksPlaceholder))
			continue
		}
		for _, t := range tasks {
			fmt.Fprintf(w, "  - %s\n", t)
		}
	}
}

func printJournalEntry(w io.Writer, e storage.JournalEntry, now time.Time) {
	stamp := fmt.Sprintf("%s (%s)", e.CreatedAt.Local().Format("Mon Jan 2 15:04"), humanize.RelTime(e.CreatedAt, now, "ago", "from now"))
	fmt.Fprintln(w, colorize(colorFaint, stamp))
	fmt.Fprintln(w, wordwrap.String(e.Content, textWidth))
}
