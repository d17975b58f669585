package plans

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/export"
	"github.com/julianstephens/studyflow/internal/gcal"
	"github.com/julianstephens/studyflow/internal/logger"
)

type ExportCmd struct {
	ICS  ExportICSCmd  `cmd:"" name:"ics" help:"Write the latest plan as an iCalendar file."`
	Gcal ExportGcalCmd `cmd:"" name:"gcal" help:"Push the latest plan to Google Calendar."`
}

type ExportICSCmd struct {
	Output string `short:"o" help:"Output file. Defaults to stdout." type:"path"`
}

func (c *ExportICSCmd) Run(ctx *cli.Context) error {
	plan, err := ctx.LatestPlan()
	if err != nil {
		return err
	}

	if c.Output == "" {
		return export.WriteICS(ctx.Out(), plan)
	}

	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Output, err)
	}
	if err := export.WriteICS(f, plan); err != nil {
		f.Close()
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}

	fmt.Fprintf(ctx.Out(), "Exported plan v%d (%d sessions) to %s\n", plan.PlanVersion, len(plan.TrackedSessions()), c.Output)
	return nil
}

type ExportGcalCmd struct {
	Calendar string `short:"c" help:"Calendar name. Defaults to the primary calendar."`
}

func (c *ExportGcalCmd) Run(ctx *cli.Context) error {
	plan, err := ctx.LatestPlan()
	if err != nil {
		return err
	}

	bg := context.Background()
	srv, err := gcal.NewService(bg, ctx.ConfigDir())
	if err != nil {
		return err
	}

	calendarID := ""
	if c.Calendar != "" {
		if calendarID, err = gcal.FindCalendar(bg, srv, c.Calendar); err != nil {
			return err
		}
	}

	report, err := gcal.NewSyncer(gcal.NewEventsAPI(srv), calendarID).Push(bg, plan, ctx.Clock())
	if err != nil {
		return fmt.Errorf("failed to sync calendar: %w", err)
	}
	logger.Info("Synced plan to Google Calendar", "version", plan.PlanVersion,
		"created", report.Created, "updated", report.Updated, "deleted", report.Deleted)

	fmt.Fprintf(ctx.Out(), "Synced plan v%d: %d created, %d updated, %d deleted, %d unchanged\n",
		plan.PlanVersion, report.Created, report.Updated, report.Deleted, report.Unchanged)
	return nil
}
