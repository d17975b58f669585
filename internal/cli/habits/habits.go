package habits

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
	"github.com/julianstephens/studyflow/internal/validation"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a recurring habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit (soft delete)."`
}

type HabitAddCmd struct {
	Name    string `arg:"" help:"Habit name."`
	Minutes int    `arg:"" help:"Minutes per occurrence."`
	Cadence string `short:"c" help:"Cadence (daily|weekly)." enum:"daily,weekly" default:"daily"`
	Weekday string `short:"w" help:"Weekday for weekly habits."`
	Preset  string `short:"p" help:"Focus preset (pomodoro|deep-work|focus-30)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(false)
	if err != nil {
		return fmt.Errorf("failed to list habits: %w", err)
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, strings.TrimSpace(c.Name)) {
			return fmt.Errorf("habit with name %q already exists", c.Name)
		}
	}

	habit := models.Habit{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(c.Name),
		Cadence:   models.HabitCadence(c.Cadence),
		Minutes:   c.Minutes,
		Preset:    models.HabitPreset(c.Preset),
		CreatedAt: ctx.Clock(),
	}
	if c.Weekday != "" {
		wd, err := utils.ParseWeekday(c.Weekday)
		if err != nil {
			return &validation.Error{Field: "weekday", Message: err.Error()}
		}
		habit.Weekday = &wd
	}
	if err := validation.ValidateHabit(habit); err != nil {
		return err
	}
	if err := ctx.Store.AddHabit(habit); err != nil {
		return fmt.Errorf("failed to add habit: %w", err)
	}

	fmt.Fprintf(ctx.Out(), "Added habit: %s (%s, ID: %s)\n", habit.Name, describe(habit), habit.ID)
	return nil
}

func describe(h models.Habit) string {
	when := "daily"
	if h.Cadence == models.HabitWeekly && h.Weekday != nil {
		when = "every " + h.Weekday.String()
	}
	s := fmt.Sprintf("%s, %s", when, utils.FormatMinutes(h.Minutes))
	if h.Preset != "" {
		s += ", " + string(h.Preset)
	}
	return s
}

type HabitListCmd struct {
	Deleted bool `help:"Include deleted habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(c.Deleted)
	if err != nil {
		return fmt.Errorf("failed to list habits: %w", err)
	}

	out := ctx.Out()
	if len(habits) == 0 {
		fmt.Fprintln(out, "No habits found.")
		return nil
	}
	for _, h := range habits {
		status := ""
		if h.DeletedAt != nil {
			status = " [DELETED]"
		}
		fmt.Fprintf(out, "- %s%s  (%s)  ID: %s\n", h.Name, status, describe(h), h.ID)
	}
	return nil
}

type HabitDeleteCmd struct {
	ID string `arg:"" help:"Habit ID to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Store.GetHabit(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find habit with ID %s: %w", c.ID, err)
	}
	if err := ctx.Store.DeleteHabit(c.ID); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	fmt.Fprintf(ctx.Out(), "Deleted habit: %s (ID: %s)\n", habit.Name, c.ID)
	return nil
}
