package seed

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/storage/sqlite"
	"github.com/julianstephens/studyflow/internal/validation"
)

func counter() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var seedNow = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

func TestDemoResolves(t *testing.T) {
	data, err := Demo().Resolve(seedNow, time.UTC, counter())
	if err != nil {
		t.Fatalf("demo seed does not resolve: %v", err)
	}
	if len(data.Tasks) != 3 || len(data.Slots) != 7 || len(data.Habits) != 2 {
		t.Fatalf("unexpected demo sizes: %d tasks, %d slots, %d habits", len(data.Tasks), len(data.Slots), len(data.Habits))
	}

	first := data.Tasks[0]
	if first.EstimatedMinutes != 240 || first.DurationEstimateMin != 180 || first.DurationUnit != models.DurationHours {
		t.Errorf("hours not normalized: %+v", first)
	}
	wantDeadline := time.Date(2026, 3, 12, 20, 0, 0, 0, time.UTC)
	if !first.Deadline.Equal(wantDeadline) {
		t.Errorf("deadline = %v, want %v", first.Deadline, wantDeadline)
	}
	if len(first.Checklist()) != 2 {
		t.Errorf("content focus lines = %v", first.Checklist())
	}
	for _, m := range first.Milestones {
		if m.ID == "" {
			t.Error("milestone id not assigned")
		}
	}

	// No due_time means end of day.
	if got := data.Tasks[1].Deadline; got.Hour() != 23 || got.Minute() != 59 {
		t.Errorf("default due time = %v", got)
	}

	weekly := data.Habits[1]
	if weekly.Weekday == nil || *weekly.Weekday != time.Sunday {
		t.Errorf("weekly habit weekday = %v", weekly.Weekday)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("tasks:\n  - subject: Math\n    colour: red\n"))
	if err == nil {
		t.Error("expected unknown field to be rejected")
	}
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document should parse: %v", err)
	}
	if len(f.Tasks) != 0 {
		t.Errorf("unexpected tasks %v", f.Tasks)
	}
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing deadline", `
tasks:
  - subject: Math
    title: Algebra
    difficulty: 2
    duration: {min: 30}
`},
		{"past deadline", `
tasks:
  - subject: Math
    title: Algebra
    deadline: "2020-01-01"
    difficulty: 2
    duration: {min: 30}
`},
		{"bad difficulty", `
tasks:
  - subject: Math
    title: Algebra
    due_in_days: 2
    difficulty: 9
    duration: {min: 30}
`},
		{"inverted slot", `
slots:
  - day: mon
    start: "21:00"
    end: "19:00"
`},
		{"bad weekday", `
slots:
  - day: someday
    start: "19:00"
    end: "21:00"
`},
		{"weekly habit without day", `
habits:
  - name: Review
    cadence: weekly
    minutes: 30
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if _, err := f.Resolve(seedNow, time.UTC, counter()); err == nil {
				t.Error("expected resolve to fail")
			}
		})
	}
}

func TestResolveWrapsValidationErrors(t *testing.T) {
	f, _ := Parse(strings.NewReader("habits:\n  - name: Review\n    cadence: weekly\n    minutes: 30\n"))
	_, err := f.Resolve(seedNow, time.UTC, counter())
	if !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("expected validation.ErrInvalid, got %v", err)
	}
}

func TestSlotEndOfDay(t *testing.T) {
	slot, err := Slot{Day: "sat", Start: "22:00", End: "24:00"}.resolve()
	if err != nil {
		t.Fatal(err)
	}
	if slot.EndMin != 24*60 || slot.Weekday != time.Saturday {
		t.Errorf("unexpected slot %+v", slot)
	}
}

func TestImport(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	defer store.Close()

	data, err := Demo().Resolve(seedNow, time.UTC, counter())
	if err != nil {
		t.Fatal(err)
	}
	if err := Import(store, data); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	tasks, _ := store.GetAllTasks()
	slots, _ := store.GetAllSlots()
	habits, _ := store.GetAllHabits(false)
	if len(tasks) != 3 || len(slots) != 7 || len(habits) != 2 {
		t.Errorf("stored %d tasks, %d slots, %d habits", len(tasks), len(slots), len(habits))
	}
}
