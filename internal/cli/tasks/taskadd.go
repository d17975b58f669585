package tasks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/tui/forms"
	"github.com/julianstephens/studyflow/internal/utils"
	"github.com/julianstephens/studyflow/internal/validation"
)

type TaskAddCmd struct {
	Subject     string   `arg:"" optional:"" help:"Subject, e.g. Math."`
	Title       string   `arg:"" optional:"" help:"What to study."`
	Deadline    string   `short:"D" help:"Deadline (YYYY-MM-DD, 'YYYY-MM-DD HH:MM' or RFC3339)."`
	Min         float64  `help:"Lower duration estimate."`
	Max         float64  `help:"Upper duration estimate. Defaults to --min."`
	Unit        string   `short:"u" help:"Unit of --min/--max (minutes|hours)." enum:"minutes,hours" default:"minutes"`
	Difficulty  int      `short:"d" help:"Difficulty (1-5)." default:"3"`
	Importance  int      `short:"i" help:"Importance (1-3, 0 to leave unset)." default:"0"`
	Focus       string   `help:"Content focus, one checklist item per line."`
	Criteria    []string `short:"c" help:"Success criterion (repeatable)."`
	Milestone   []string `short:"m" help:"Milestone as 'title:minutes' (repeatable)."`
	Notes       string   `help:"Free-form notes."`
	Timezone    string   `name:"deadline-tz" help:"Timezone the deadline is given in."`
	Interactive bool     `short:"I" help:"Fill the task in with an interactive form."`
}

func (c *TaskAddCmd) Validate() error {
	if c.Interactive {
		return nil
	}
	if strings.TrimSpace(c.Subject) == "" || strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("subject and title are required (or use --interactive)")
	}
	if c.Deadline == "" {
		return fmt.Errorf("--deadline is required")
	}
	if c.Min <= 0 {
		return fmt.Errorf("--min must be greater than zero")
	}
	if c.Max != 0 && c.Max < c.Min {
		return fmt.Errorf("--max must not be below --min")
	}
	return nil
}

// parseMilestones reads "title:minutes" pairs.
func parseMilestones(values []string) ([]models.Milestone, error) {
	var out []models.Milestone
	for _, v := range values {
		idx := strings.LastIndex(v, ":")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid milestone %q (expected title:minutes)", v)
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(v[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("invalid milestone minutes in %q: %w", v, err)
		}
		out = append(out, models.Milestone{
			ID:              uuid.New().String(),
			Title:           strings.TrimSpace(v[:idx]),
			MinutesEstimate: minutes,
		})
	}
	return out, nil
}

func (c *TaskAddCmd) build(ctx *cli.Context) (models.Task, error) {
	loc, err := ctx.Location()
	if err != nil {
		return models.Task{}, err
	}
	if c.Timezone != "" {
		if loc, err = utils.LoadLocation(c.Timezone); err != nil {
			return models.Task{}, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
	}

	now := ctx.Clock()
	task := models.Task{
		ID:        uuid.New().String(),
		Timezone:  c.Timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if c.Interactive {
		fm := forms.NewTaskFormModel()
		fm.Subject, fm.Title = c.Subject, c.Title
		if err := forms.NewTaskForm(fm, loc).Run(); err != nil {
			return models.Task{}, err
		}
		if err := fm.Apply(&task, loc); err != nil {
			return models.Task{}, err
		}
		return task, nil
	}

	deadline, err := utils.ParseDeadline(c.Deadline, loc)
	if err != nil {
		return models.Task{}, err
	}
	milestones, err := parseMilestones(c.Milestone)
	if err != nil {
		return models.Task{}, err
	}

	task.Subject = c.Subject
	task.Title = c.Title
	task.Deadline = deadline
	task.Difficulty = c.Difficulty
	task.Importance = c.Importance
	task.ContentFocus = c.Focus
	task.SuccessCriteria = c.Criteria
	task.Milestones = milestones
	task.Notes = c.Notes

	maxValue := c.Max
	if maxValue == 0 {
		maxValue = c.Min
	}
	task.SetDuration(c.Min, maxValue, models.DurationUnit(c.Unit))
	task.Normalize()
	return task, nil
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	task, err := c.build(ctx)
	if err != nil {
		return err
	}
	if err := validation.ValidateNewTask(task, ctx.Clock()); err != nil {
		return err
	}
	if err := ctx.Store.AddTask(task); err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	fmt.Fprintf(ctx.Out(), "Added task: %s (%s, ID: %s)\n",
		task.DisplayName(), utils.FormatMinutes(task.EstimatedMinutes), task.ID)
	return nil
}
