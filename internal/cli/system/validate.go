package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/storage"
	"github.com/julianstephens/studyflow/internal/validation"
)

type ValidateCmd struct {
	Strict bool `help:"Exit with an error when conflicts are found."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	out := ctx.Out()

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	validator := validation.New()

	fmt.Fprintln(out, "Validating tasks...")
	combined := validator.ValidateTasks(tasks)

	fmt.Fprintln(out, "Validating latest plan...")
	plan, err := ctx.Store.GetLatestPlan()
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fmt.Fprintln(out, "  No plan generated yet")
	case err != nil:
		return fmt.Errorf("failed to load plan: %w", err)
	default:
		planResult := validator.ValidatePlan(plan, tasks, settings)
		combined.Conflicts = append(combined.Conflicts, planResult.Conflicts...)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, combined.FormatReport())

	if cmd.Strict && combined.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found", len(combined.Conflicts))
	}
	return nil
}
