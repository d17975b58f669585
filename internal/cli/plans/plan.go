package plans

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/lock"
	"github.com/julianstephens/studyflow/internal/scheduler"
	"github.com/julianstephens/studyflow/internal/stats"
	"github.com/julianstephens/studyflow/internal/storage"
	"github.com/julianstephens/studyflow/internal/utils"
	"github.com/julianstephens/studyflow/internal/validation"
)

type PlanCmd struct {
	Generate PlanGenerateCmd `cmd:"" help:"Regenerate the study plan and print it." default:"1"`
	Show     PlanShowCmd     `cmd:"" help:"Print the latest (or a given) plan version."`
	History  PlanHistoryCmd  `cmd:"" help:"List stored plan versions."`
	Stats    PlanStatsCmd    `cmd:"" help:"Show progress on the latest plan."`
}

type PlanGenerateCmd struct {
	Quiet bool `short:"q" help:"Only print the summary line."`
}

func (c *PlanGenerateCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	result, err := ctx.Planner().Regenerate(context.Background())
	switch {
	case errors.Is(err, scheduler.ErrCannotPlan):
		return fmt.Errorf("%w: add at least one task ('%s task add') and one free slot ('%s slot add')",
			err, constants.AppName, constants.AppName)
	case errors.Is(err, lock.ErrLocked):
		return fmt.Errorf("%w; wait for it to finish and try again", err)
	case err != nil:
		return fmt.Errorf("failed to generate plan: %w", err)
	}

	out := ctx.Out()
	for _, adj := range result.Adjustments {
		fmt.Fprintf(out, "Tuned for feedback %q: %s %v → %v\n", adj.Label, adj.Type, adj.CurrentValue, adj.SuggestedValue)
	}

	plan := result.Plan
	if !c.Quiet {
		printPlan(out, plan, loc, true)
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Saved plan v%d: %d sessions, %d unscheduled, %d suggestions\n",
		plan.PlanVersion, len(plan.TrackedSessions()), len(plan.UnscheduledTasks), len(plan.Suggestions))
	return nil
}

type PlanShowCmd struct {
	Version int  `arg:"" optional:"" help:"Plan version (defaults to the latest)."`
	IDs     bool `help:"Show session IDs."`
}

func (c *PlanShowCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	plan, err := ctx.LatestPlan()
	if c.Version > 0 {
		plan, err = ctx.Store.GetPlan(c.Version)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("plan v%d not found (only the last %d versions are kept): %w", c.Version, constants.MaxPlanHistory, err)
		}
	}
	if err != nil {
		return err
	}

	printPlan(ctx.Out(), plan, loc, c.IDs)
	return nil
}

type PlanHistoryCmd struct{}

func (c *PlanHistoryCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	plans, err := ctx.Store.ListPlans()
	if err != nil {
		return fmt.Errorf("failed to list plans: %w", err)
	}

	out := ctx.Out()
	if len(plans) == 0 {
		fmt.Fprintln(out, "No plans generated yet.")
		return nil
	}
	for _, p := range plans {
		fmt.Fprintf(out, "v%-4d %s  %3d sessions  %2d unscheduled  %2d suggestions\n",
			p.Version, p.GeneratedAt.In(loc).Format(constants.DateTimeFormat),
			p.SessionCount, p.UnscheduledCount, p.SuggestionCount)
	}
	return nil
}

type PlanStatsCmd struct{}

func (c *PlanStatsCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	plan, err := ctx.LatestPlan()
	if err != nil {
		return err
	}

	st := stats.Compute(plan, ctx.Clock(), loc)
	out := ctx.Out()
	fmt.Fprintf(out, "Plan v%d\n", st.PlanVersion)
	fmt.Fprintf(out, "  Today:      %s done of %s planned\n", utils.FormatMinutes(st.Today.DoneMinutes), utils.FormatMinutes(st.Today.PlannedMinutes))
	fmt.Fprintf(out, "  This week:  %s done of %s planned\n", utils.FormatMinutes(st.Week.DoneMinutes), utils.FormatMinutes(st.Week.PlannedMinutes))
	fmt.Fprintf(out, "  Sessions:   %d done, %d skipped, %d total (%.0f%% complete)\n", st.Done, st.Skipped, st.Tracked, st.CompletionRate*100)
	if len(st.Subjects) > 0 {
		fmt.Fprintln(out, "\nBy subject:")
		for _, s := range st.Subjects {
			fmt.Fprintf(out, "  %-20s %2d sessions  %s / %s\n", s.Subject, s.Sessions,
				utils.FormatMinutes(s.DoneMinutes), utils.FormatMinutes(s.PlannedMinutes))
		}
	}

	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if result := validation.New().ValidatePlan(plan, tasks, settings); result.HasConflicts() {
		fmt.Fprintf(out, "\n⚠ %d conflict(s), run '%s validate' for details\n", len(result.Conflicts), constants.AppName)
	}
	return nil
}
