package tasks

import (
	"fmt"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/utils"
)

// TaskProgressCmd records minutes already studied outside the plan.
type TaskProgressCmd struct {
	ID      string `arg:"" help:"Task ID."`
	Minutes int    `arg:"" help:"Minutes studied."`
	Set     bool   `help:"Replace the recorded progress instead of adding to it."`
}

func (c *TaskProgressCmd) Run(ctx *cli.Context) error {
	if c.Minutes < 0 {
		return fmt.Errorf("minutes must not be negative")
	}
	task, err := ctx.Store.GetTask(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find task: %w", err)
	}

	if c.Set {
		task.ProgressMinutes = c.Minutes
	} else {
		task.ProgressMinutes += c.Minutes
	}
	task.UpdatedAt = ctx.Clock()
	task.Normalize()

	if err := ctx.Store.UpdateTask(task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	fmt.Fprintf(ctx.Out(), "%s: %s done, %s remaining\n", task.DisplayName(),
		utils.FormatMinutes(task.ProgressMinutes), utils.FormatMinutes(task.RemainingMinutes()))
	return nil
}
