package seed

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
	"github.com/julianstephens/studyflow/internal/validation"
)

//go:embed demo.yaml
var demoYAML []byte

// Duration is an estimate range in the unit the user thinks in.
type Duration struct {
	Min  float64             `yaml:"min"`
	Max  float64             `yaml:"max"`
	Unit models.DurationUnit `yaml:"unit"`
}

// Task is the YAML form of a task. Either Deadline or DueInDays is set.
type Task struct {
	Subject         string             `yaml:"subject"`
	Title           string             `yaml:"title"`
	Deadline        string             `yaml:"deadline"`
	DueInDays       int                `yaml:"due_in_days"`
	DueTime         string             `yaml:"due_time"`
	Difficulty      int                `yaml:"difficulty"`
	Importance      int                `yaml:"importance"`
	Duration        Duration           `yaml:"duration"`
	ContentFocus    string             `yaml:"content_focus"`
	SuccessCriteria []string           `yaml:"success_criteria"`
	Milestones      []models.Milestone `yaml:"milestones"`
	Notes           string             `yaml:"notes"`
}

type Slot struct {
	Day   string `yaml:"day"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type Habit struct {
	Name    string              `yaml:"name"`
	Cadence models.HabitCadence `yaml:"cadence"`
	Weekday string              `yaml:"weekday"`
	Minutes int                 `yaml:"minutes"`
	Preset  models.HabitPreset  `yaml:"preset"`
}

// File is a seed document.
type File struct {
	Tasks  []Task  `yaml:"tasks"`
	Slots  []Slot  `yaml:"slots"`
	Habits []Habit `yaml:"habits"`
}

// Data is a seed file resolved into validated models.
type Data struct {
	Tasks  []models.Task
	Slots  []models.FreeSlot
	Habits []models.Habit
}

// Parse decodes a seed document, rejecting unknown keys.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return File{}, nil
		}
		return File{}, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return f, nil
}

// Demo returns the embedded demo seed.
func Demo() File {
	f, err := Parse(strings.NewReader(string(demoYAML)))
	if err != nil {
		panic(fmt.Sprintf("embedded demo seed is invalid: %v", err))
	}
	return f
}

// Resolve turns the document into models. Relative deadlines count from
// now in loc; every entry is validated before anything is returned.
func (f File) Resolve(now time.Time, loc *time.Location, newID func() string) (Data, error) {
	var data Data

	for i, t := range f.Tasks {
		task, err := t.resolve(now, loc)
		if err != nil {
			return Data{}, fmt.Errorf("task %d (%s): %w", i+1, t.Title, err)
		}
		task.ID = newID()
		for j := range task.Milestones {
			if task.Milestones[j].ID == "" {
				task.Milestones[j].ID = newID()
			}
		}
		task.CreatedAt = now
		task.UpdatedAt = now
		if err := validation.ValidateNewTask(task, now); err != nil {
			return Data{}, fmt.Errorf("task %d (%s): %w", i+1, t.Title, err)
		}
		data.Tasks = append(data.Tasks, task)
	}

	for i, s := range f.Slots {
		slot, err := s.resolve()
		if err != nil {
			return Data{}, fmt.Errorf("slot %d: %w", i+1, err)
		}
		slot.ID = newID()
		slot.CreatedAt = now
		if err := validation.ValidateSlot(slot); err != nil {
			return Data{}, fmt.Errorf("slot %d: %w", i+1, err)
		}
		data.Slots = append(data.Slots, slot)
	}

	for i, h := range f.Habits {
		habit := models.Habit{
			ID:        newID(),
			Name:      strings.TrimSpace(h.Name),
			Cadence:   h.Cadence,
			Minutes:   h.Minutes,
			Preset:    h.Preset,
			CreatedAt: now,
		}
		if habit.Cadence == "" {
			habit.Cadence = models.HabitDaily
		}
		if h.Weekday != "" {
			wd, err := utils.ParseWeekday(h.Weekday)
			if err != nil {
				return Data{}, fmt.Errorf("habit %d (%s): %w", i+1, h.Name, err)
			}
			habit.Weekday = &wd
		}
		if err := validation.ValidateHabit(habit); err != nil {
			return Data{}, fmt.Errorf("habit %d (%s): %w", i+1, h.Name, err)
		}
		data.Habits = append(data.Habits, habit)
	}

	return data, nil
}

func (t Task) resolve(now time.Time, loc *time.Location) (models.Task, error) {
	task := models.Task{
		Subject:         t.Subject,
		Title:           t.Title,
		Difficulty:      t.Difficulty,
		Importance:      t.Importance,
		ContentFocus:    strings.TrimRight(t.ContentFocus, "\n"),
		SuccessCriteria: t.SuccessCriteria,
		Milestones:      t.Milestones,
		Notes:           t.Notes,
	}

	switch {
	case t.Deadline != "":
		deadline, err := utils.ParseDeadline(t.Deadline, loc)
		if err != nil {
			return models.Task{}, err
		}
		task.Deadline = deadline
	case t.DueInDays > 0:
		dueMin := 23*60 + 59
		if t.DueTime != "" {
			m, err := utils.ParseTimeToMinutes(t.DueTime)
			if err != nil {
				return models.Task{}, fmt.Errorf("invalid due_time %q", t.DueTime)
			}
			dueMin = m
		}
		task.Deadline = utils.AtMinute(utils.StartOfDay(now, loc).AddDate(0, 0, t.DueInDays), dueMin, loc)
	default:
		return models.Task{}, fmt.Errorf("deadline or due_in_days is required")
	}

	maxValue := t.Duration.Max
	if maxValue == 0 {
		maxValue = t.Duration.Min
	}
	task.SetDuration(t.Duration.Min, maxValue, t.Duration.Unit)
	task.Normalize()
	return task, nil
}

func (s Slot) resolve() (models.FreeSlot, error) {
	wd, err := utils.ParseWeekday(s.Day)
	if err != nil {
		return models.FreeSlot{}, err
	}
	start, err := utils.ParseTimeToMinutes(s.Start)
	if err != nil {
		return models.FreeSlot{}, fmt.Errorf("invalid start %q", s.Start)
	}
	end, err := utils.ParseSlotEnd(s.End)
	if err != nil {
		return models.FreeSlot{}, err
	}
	return models.FreeSlot{Weekday: wd, StartMin: start, EndMin: end, Source: models.SlotSourceUser}, nil
}

// Importer is the slice of storage a seed writes to.
type Importer interface {
	AddTask(models.Task) error
	AddSlot(models.FreeSlot) error
	AddHabit(models.Habit) error
}

// Import stores resolved seed data.
func Import(store Importer, data Data) error {
	for _, t := range data.Tasks {
		if err := store.AddTask(t); err != nil {
			return fmt.Errorf("failed to add task %q: %w", t.Title, err)
		}
	}
	for _, s := range data.Slots {
		if err := store.AddSlot(s); err != nil {
			return fmt.Errorf("failed to add slot %s: %w", s, err)
		}
	}
	for _, h := range data.Habits {
		if err := store.AddHabit(h); err != nil {
			return fmt.Errorf("failed to add habit %q: %w", h.Name, err)
		}
	}
	return nil
}
