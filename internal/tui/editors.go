package tui

import (
	"context"
	"errors"

	"github.com/kalambet/dayboard/internal/planner"
)

var errFixedRow = errors.New("row cannot be removed")

// row is one editable line of a plan tab. Rows of the same section are
// rendered under a shared heading.
type row struct {
	Section     string
	Text        string
	Fixed       bool // cannot be removed
	Placeholder bool // stands in for an empty section
}

// rowEditor adapts a planner editor to a flat list of rows.
type rowEditor interface {
	Rows() []row
	Set(i int, text string) error
	// Add inserts a blank row in the section of row i and returns its index.
	Add(i int) (int, error)
	Remove(i int) error
	Load(ctx context.Context) error
	Save(ctx context.Context) error
	State() planner.State
	Err() string
}

const (
	sectionTop        = "Top 3"
	sectionAdditional = "Additional"
	sectionNotes      = "Notes"
	sectionGoals      = "Six-week goals"
)

type dailyRows struct {
	*planner.DailyEditor
}

type dailyKind int

const (
	kindTop dailyKind = iota
	kindAdditional
	kindNotes
)

func (d dailyRows) Rows() []row {
	draft := d.Draft()
	rows := make([]row, 0, len(draft.TopTasks)+len(draft.AdditionalTasks)+1)
	for _, t := range draft.TopTasks {
		rows = append(rows, row{Section: sectionTop, Text: t.Text, Fixed: true})
	}
	for _, t := range draft.AdditionalTasks {
		rows = append(rows, row{Section: sectionAdditional, Text: t.Text})
	}
	return append(rows, row{Section: sectionNotes, Text: draft.Notes, Fixed: true})
}

func (d dailyRows) locate(i int) (dailyKind, int, error) {
	draft := d.Draft()
	top, add := len(draft.TopTasks), len(draft.AdditionalTasks)
	switch {
	case i < 0 || i > top+add:
		return 0, 0, planner.ErrIndexOutOfRange
	case i < top:
		return kindTop, i, nil
	case i < top+add:
		return kindAdditional, i - top, nil
	default:
		return kindNotes, 0, nil
	}
}

func (d dailyRows) Set(i int, text string) error {
	kind, j, err := d.locate(i)
	if err != nil {
		return err
	}
	switch kind {
	case kindTop:
		return d.SetTopTask(j, text)
	case kindAdditional:
		return d.SetAdditionalTask(j, text)
	default:
		d.SetNotes(text)
		return nil
	}
}

// Add always appends to the additional tasks; the top slots are fixed.
func (d dailyRows) Add(i int) (int, error) {
	if _, _, err := d.locate(i); err != nil {
		return 0, err
	}
	d.AddAdditionalTask()
	draft := d.Draft()
	return len(draft.TopTasks) + len(draft.AdditionalTasks) - 1, nil
}

func (d dailyRows) Remove(i int) error {
	kind, j, err := d.locate(i)
	if err != nil {
		return err
	}
	if kind != kindAdditional {
		return errFixedRow
	}
	return d.RemoveAdditionalTask(j)
}

type weeklyRows struct {
	*planner.WeeklyEditor
}

func (w weeklyRows) Rows() []row {
	tasks := w.Tasks()
	var rows []row
	for _, day := range planner.Weekdays {
		if len(tasks[day]) == 0 {
			rows = append(rows, row{Section: day, Text: planner.NoTasksPlaceholder, Placeholder: true})
			continue
		}
		for _, t := range tasks[day] {
			rows = append(rows, row{Section: day, Text: t})
		}
	}
	return rows
}

// locate maps row i to its day and index within the day. j is -1 for the
// placeholder of an empty day.
func (w weeklyRows) locate(i int) (day string, j int, err error) {
	rows := w.Rows()
	if i < 0 || i >= len(rows) {
		return "", 0, planner.ErrIndexOutOfRange
	}
	day = rows[i].Section
	if rows[i].Placeholder {
		return day, -1, nil
	}
	for k := i - 1; k >= 0 && rows[k].Section == day; k-- {
		j++
	}
	return day, j, nil
}

func (w weeklyRows) Set(i int, text string) error {
	day, j, err := w.locate(i)
	if err != nil {
		return err
	}
	if j < 0 {
		if err := w.AddTask(day); err != nil {
			return err
		}
		j = 0
	}
	return w.SetTask(day, j, text)
}

func (w weeklyRows) Add(i int) (int, error) {
	day, j, err := w.locate(i)
	if err != nil {
		return 0, err
	}
	if err := w.AddTask(day); err != nil {
		return 0, err
	}
	if j < 0 {
		return i, nil
	}
	return i - j + len(w.Tasks()[day]) - 1, nil
}

func (w weeklyRows) Remove(i int) error {
	day, j, err := w.locate(i)
	if err != nil {
		return err
	}
	if j < 0 {
		return errFixedRow
	}
	return w.RemoveTask(day, j)
}

type goalsRows struct {
	*planner.GoalsEditor
}

func (g goalsRows) Rows() []row {
	goals := g.Goals()
	rows := make([]row, len(goals))
	for i, text := range goals {
		rows[i] = row{Section: sectionGoals, Text: text}
	}
	return rows
}

func (g goalsRows) Set(i int, text string) error {
	return g.SetGoal(i, text)
}

func (g goalsRows) Add(int) (int, error) {
	g.AddGoal()
	return len(g.Goals()) - 1, nil
}

func (g goalsRows) Remove(i int) error {
	return g.RemoveGoal(i)
}
