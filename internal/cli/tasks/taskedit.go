package tasks

import (
	"fmt"
	"time"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/tui/forms"
	"github.com/julianstephens/studyflow/internal/utils"
	"github.com/julianstephens/studyflow/internal/validation"
)

type TaskEditCmd struct {
	ID            string   `arg:"" help:"Task ID."`
	Subject       *string  `help:"New subject."`
	Title         *string  `help:"New title."`
	Deadline      *string  `short:"D" help:"New deadline."`
	Min           *float64 `help:"New lower duration estimate."`
	Max           *float64 `help:"New upper duration estimate."`
	Unit          *string  `short:"u" help:"Unit of --min/--max (minutes|hours)."`
	Difficulty    *int     `short:"d" help:"New difficulty (1-5)."`
	Importance    *int     `short:"i" help:"New importance (1-3, 0 to unset)."`
	Focus         *string  `help:"New content focus."`
	Criteria      []string `short:"c" help:"Replace success criteria (repeatable)."`
	ClearCriteria bool     `help:"Remove all success criteria."`
	Notes         *string  `help:"New notes."`
	Interactive   bool     `short:"I" help:"Edit the task with an interactive form."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find task: %w", err)
	}
	if task.DeletedAt != nil {
		return fmt.Errorf("task %s is deleted, restore it first", c.ID)
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	if c.Interactive {
		fm := forms.TaskFormFrom(task, loc)
		if err := forms.NewTaskForm(fm, loc).Run(); err != nil {
			return err
		}
		if err := fm.Apply(&task, loc); err != nil {
			return err
		}
	} else if err := c.apply(&task, loc); err != nil {
		return err
	}

	task.UpdatedAt = ctx.Clock()
	if err := validation.ValidateTask(task); err != nil {
		return err
	}
	if err := ctx.Store.UpdateTask(task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	fmt.Fprintf(ctx.Out(), "Updated task: %s (ID: %s)\n", task.DisplayName(), task.ID)
	return nil
}

func (c *TaskEditCmd) apply(task *models.Task, loc *time.Location) error {
	if c.Subject != nil {
		task.Subject = *c.Subject
	}
	if c.Title != nil {
		task.Title = *c.Title
	}
	if c.Deadline != nil {
		deadline, err := utils.ParseDeadline(*c.Deadline, loc)
		if err != nil {
			return err
		}
		task.Deadline = deadline
	}
	if c.Difficulty != nil {
		task.Difficulty = *c.Difficulty
	}
	if c.Importance != nil {
		task.Importance = *c.Importance
	}
	if c.Focus != nil {
		task.ContentFocus = *c.Focus
	}
	if c.ClearCriteria {
		task.SuccessCriteria = nil
	}
	if len(c.Criteria) > 0 {
		task.SuccessCriteria = c.Criteria
	}
	if c.Notes != nil {
		task.Notes = *c.Notes
	}

	if c.Min != nil || c.Max != nil || c.Unit != nil {
		unit := task.DurationUnit
		if c.Unit != nil {
			unit = models.DurationUnit(*c.Unit)
			if unit != models.DurationMinutes && unit != models.DurationHours {
				return fmt.Errorf("invalid unit %q (expected minutes or hours)", *c.Unit)
			}
		}
		divisor := 1.0
		if unit == models.DurationHours {
			divisor = 60
		}
		minValue := float64(task.DurationEstimateMin) / divisor
		maxValue := float64(task.DurationEstimateMax) / divisor
		if c.Min != nil {
			minValue = *c.Min
		}
		if c.Max != nil {
			maxValue = *c.Max
		}
		if minValue <= 0 {
			return fmt.Errorf("--min must be greater than zero")
		}
		task.SetDuration(minValue, maxValue, unit)
	}

	task.Normalize()
	return nil
}
