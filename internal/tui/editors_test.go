package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/kalambet/dayboard/internal/planner"
)

func loadedDaily(t *testing.T) dailyRows {
	t.Helper()
	ed := dailyRows{planner.NewDailyEditor(openStore(t), planner.WithClock(fixedClock{wednesday}))}
	if err := ed.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return ed
}

func loadedWeekly(t *testing.T) weeklyRows {
	t.Helper()
	ed := weeklyRows{planner.NewWeeklyEditor(openStore(t), planner.WithClock(fixedClock{wednesday}))}
	if err := ed.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return ed
}

func TestDailyRows_Layout(t *testing.T) {
	ed := loadedDaily(t)
	rows := ed.Rows()
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 3 top + 1 additional + notes", len(rows))
	}
	want := []string{sectionTop, sectionTop, sectionTop, sectionAdditional, sectionNotes}
	for i, r := range rows {
		if r.Section != want[i] {
			t.Errorf("row %d section = %q, want %q", i, r.Section, want[i])
		}
	}
}

func TestDailyRows_SetAddRemove(t *testing.T) {
	ed := loadedDaily(t)

	if err := ed.Set(1, "second"); err != nil {
		t.Fatal(err)
	}
	if err := ed.Set(4, "notes"); err != nil {
		t.Fatal(err)
	}
	i, err := ed.Add(0)
	if err != nil {
		t.Fatal(err)
	}
	if i != 4 {
		t.Errorf("Add index = %d, want 4", i)
	}
	if err := ed.Set(i, "extra"); err != nil {
		t.Fatal(err)
	}

	d := ed.Draft()
	if d.TopTasks[1].Text != "second" || d.Notes != "notes" || d.AdditionalTasks[1].Text != "extra" {
		t.Errorf("draft = %+v", d)
	}

	if err := ed.Remove(0); !errors.Is(err, errFixedRow) {
		t.Errorf("Remove(top) err = %v", err)
	}
	if err := ed.Remove(5); !errors.Is(err, errFixedRow) {
		t.Errorf("Remove(notes) err = %v", err)
	}
	if err := ed.Remove(3); err != nil {
		t.Fatal(err)
	}
	if got := ed.Draft().AdditionalTasks; len(got) != 1 || got[0].Text != "extra" {
		t.Errorf("additional = %+v", got)
	}
	if err := ed.Set(9, "x"); !errors.Is(err, planner.ErrIndexOutOfRange) {
		t.Errorf("Set out of range err = %v", err)
	}
}

func TestWeeklyRows_Placeholder(t *testing.T) {
	ed := loadedWeekly(t)
	if n := len(ed.Rows()); n != 7 {
		t.Fatalf("rows = %d, want one per day", n)
	}

	if err := ed.Remove(0); err != nil {
		t.Fatal(err)
	}
	rows := ed.Rows()
	if !rows[0].Placeholder || rows[0].Section != "Monday" {
		t.Fatalf("row 0 = %+v, want Monday placeholder", rows[0])
	}
	if err := ed.Remove(0); !errors.Is(err, errFixedRow) {
		t.Errorf("Remove(placeholder) err = %v", err)
	}

	if err := ed.Set(0, "plan"); err != nil {
		t.Fatal(err)
	}
	if got := ed.Tasks()["Monday"]; len(got) != 1 || got[0] != "plan" {
		t.Errorf("Monday = %q", got)
	}
}

func TestWeeklyRows_AddWithinDay(t *testing.T) {
	ed := loadedWeekly(t)

	// Row 2 is Wednesday's only task.
	i, err := ed.Add(2)
	if err != nil {
		t.Fatal(err)
	}
	if i != 3 {
		t.Errorf("Add index = %d, want 3", i)
	}
	if err := ed.Set(i, "review"); err != nil {
		t.Fatal(err)
	}
	rows := ed.Rows()
	if rows[3].Section != "Wednesday" || rows[3].Text != "review" {
		t.Errorf("row 3 = %+v", rows[3])
	}
	if rows[4].Section != "Thursday" {
		t.Errorf("row 4 = %+v", rows[4])
	}
}

func TestGoalsRows(t *testing.T) {
	ed := goalsRows{planner.NewGoalsEditor(openStore(t))}
	if err := ed.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	i, _ := ed.Add(0)
	if i != 1 {
		t.Errorf("Add index = %d", i)
	}
	ed.Set(1, "b")
	if err := ed.Remove(0); err != nil {
		t.Fatal(err)
	}
	if got := ed.Goals(); len(got) != 1 || got[0] != "b" {
		t.Errorf("goals = %q", got)
	}
}
