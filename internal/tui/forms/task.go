package forms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
	"github.com/julianstephens/studyflow/internal/validation"
)

// TaskFormModel holds the raw text of the task form.
type TaskFormModel struct {
	Subject         string
	Title           string
	Deadline        string
	Difficulty      int
	Importance      int
	DurationMin     string
	DurationMax     string
	Unit            models.DurationUnit
	ContentFocus    string
	SuccessCriteria string // one per line
	Notes           string
}

// NewTaskFormModel returns a blank form with sensible defaults.
func NewTaskFormModel() *TaskFormModel {
	return &TaskFormModel{Difficulty: 3, Unit: models.DurationMinutes}
}

// TaskFormFrom fills the form from an existing task for editing.
func TaskFormFrom(task models.Task, loc *time.Location) *TaskFormModel {
	fm := &TaskFormModel{
		Subject:         task.Subject,
		Title:           task.Title,
		Deadline:        task.Deadline.In(loc).Format(constants.DateTimeFormat),
		Difficulty:      task.Difficulty,
		Importance:      task.Importance,
		Unit:            task.DurationUnit,
		ContentFocus:    task.ContentFocus,
		SuccessCriteria: strings.Join(task.SuccessCriteria, "\n"),
		Notes:           task.Notes,
	}
	if fm.Unit == models.DurationHours {
		fm.DurationMin = strconv.FormatFloat(float64(task.DurationEstimateMin)/60, 'f', -1, 64)
		fm.DurationMax = strconv.FormatFloat(float64(task.DurationEstimateMax)/60, 'f', -1, 64)
	} else {
		fm.Unit = models.DurationMinutes
		fm.DurationMin = strconv.Itoa(task.DurationEstimateMin)
		fm.DurationMax = strconv.Itoa(task.DurationEstimateMax)
	}
	return fm
}

func positiveNumber(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if v <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
		return nil
	}
}

// NewTaskForm builds the add/edit form bound to fm.
func NewTaskForm(fm *TaskFormModel, loc *time.Location) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subject").
				Value(&fm.Subject).
				Validate(required("subject")),
			huh.NewInput().
				Title("Title").
				Value(&fm.Title).
				Validate(required("title")),
			huh.NewInput().
				Title("Deadline").
				Description("YYYY-MM-DD HH:MM or YYYY-MM-DD").
				Value(&fm.Deadline).
				Validate(func(s string) error {
					_, err := utils.ParseDeadline(s, loc)
					return err
				}),
			huh.NewSelect[int]().
				Title("Difficulty").
				Options(
					huh.NewOption("1 - trivial", 1),
					huh.NewOption("2 - easy", 2),
					huh.NewOption("3 - moderate", 3),
					huh.NewOption("4 - hard", 4),
					huh.NewOption("5 - very hard", 5),
				).
				Value(&fm.Difficulty),
			huh.NewSelect[int]().
				Title("Importance").
				Options(
					huh.NewOption("Unset", 0),
					huh.NewOption("1 - low", 1),
					huh.NewOption("2 - medium", 2),
					huh.NewOption("3 - high", 3),
				).
				Value(&fm.Importance),
		),
		huh.NewGroup(
			huh.NewSelect[models.DurationUnit]().
				Title("Estimate unit").
				Options(
					huh.NewOption("Minutes", models.DurationMinutes),
					huh.NewOption("Hours", models.DurationHours),
				).
				Value(&fm.Unit),
			huh.NewInput().
				Title("Estimate (min)").
				Value(&fm.DurationMin).
				Validate(positiveNumber),
			huh.NewInput().
				Title("Estimate (max)").
				Description("Leave empty to use the minimum").
				Value(&fm.DurationMax).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					return positiveNumber(s)
				}),
			huh.NewText().
				Title("Content focus").
				Description("One checklist item per line").
				Value(&fm.ContentFocus),
			huh.NewText().
				Title("Success criteria").
				Description("One per line").
				Value(&fm.SuccessCriteria),
			huh.NewInput().
				Title("Notes").
				Value(&fm.Notes),
		),
	).WithTheme(huh.ThemeDracula())
}

// Apply copies the form onto task, normalizes it and validates the shape.
// Deadline-in-the-future is left to the caller since edits may keep a past
// deadline.
func (fm *TaskFormModel) Apply(task *models.Task, loc *time.Location) error {
	deadline, err := utils.ParseDeadline(fm.Deadline, loc)
	if err != nil {
		return &validation.Error{Field: "deadline", Message: err.Error()}
	}
	minValue, err := strconv.ParseFloat(strings.TrimSpace(fm.DurationMin), 64)
	if err != nil {
		return &validation.Error{Field: "duration_estimate_min", Message: "must be a number"}
	}
	maxValue := minValue
	if s := strings.TrimSpace(fm.DurationMax); s != "" {
		if maxValue, err = strconv.ParseFloat(s, 64); err != nil {
			return &validation.Error{Field: "duration_estimate_max", Message: "must be a number"}
		}
	}

	task.Subject = fm.Subject
	task.Title = fm.Title
	task.Deadline = deadline
	task.Difficulty = fm.Difficulty
	task.Importance = fm.Importance
	task.ContentFocus = strings.TrimRight(fm.ContentFocus, "\n")
	task.SuccessCriteria = strings.Split(fm.SuccessCriteria, "\n")
	task.Notes = strings.TrimSpace(fm.Notes)
	task.SetDuration(minValue, maxValue, fm.Unit)
	task.Normalize()
	return validation.ValidateTask(*task)
}
