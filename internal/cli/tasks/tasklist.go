package tasks

import (
	"fmt"
	"sort"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

type TaskListCmd struct {
	ShowDeleted bool   `help:"Include deleted tasks."`
	Subject     string `short:"s" help:"Only show tasks for this subject."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	var (
		tasks []models.Task
		err   error
	)
	if c.ShowDeleted {
		tasks, err = ctx.Store.GetAllTasksIncludingDeleted()
	} else {
		tasks, err = ctx.Store.GetAllTasks()
	}
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	out := ctx.Out()
	if len(tasks) == 0 {
		fmt.Fprintf(out, "No tasks found. Add one with '%s task add'.\n", constants.AppName)
		return nil
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Deadline.Before(tasks[j].Deadline)
	})

	shown := 0
	for _, t := range tasks {
		if c.Subject != "" && t.Subject != c.Subject {
			continue
		}
		shown++
		status := ""
		if t.DeletedAt != nil {
			status = " [deleted]"
		}
		fmt.Fprintf(out, "- %s%s\n", t.DisplayName(), status)
		fmt.Fprintf(out, "    ID: %s\n", t.ID)
		fmt.Fprintf(out, "    Due: %s  Difficulty: %d", t.Deadline.In(loc).Format(constants.DateTimeFormat), t.Difficulty)
		if t.Importance > 0 {
			fmt.Fprintf(out, "  Importance: %d", t.Importance)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "    Estimate: %s  Done: %s  Remaining: %s\n",
			utils.FormatMinutes(t.EstimatedMinutes),
			utils.FormatMinutes(t.ProgressMinutes),
			utils.FormatMinutes(t.RemainingMinutes()))
	}
	if shown == 0 {
		fmt.Fprintf(out, "No tasks for subject %q.\n", c.Subject)
	}
	return nil
}
