package plans

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/validation"
)

type FeedbackCmd struct {
	Label string `arg:"" help:"How the plan felt (too_dense|too_easy|need_more_time|evening_focus|custom)." enum:"too_dense,too_easy,need_more_time,evening_focus,custom"`
	Note  string `short:"n" help:"Free-form note. Required for custom."`
}

func (c *FeedbackCmd) Run(ctx *cli.Context) error {
	version, err := ctx.Store.LatestPlanVersion()
	if err != nil {
		return fmt.Errorf("failed to get plan version: %w", err)
	}

	f := models.Feedback{
		ID:          uuid.New().String(),
		Label:       models.FeedbackLabel(c.Label),
		Note:        c.Note,
		PlanVersion: version,
		SubmittedAt: ctx.Clock(),
	}
	if err := validation.ValidateFeedback(f); err != nil {
		return err
	}
	if err := ctx.Store.AddFeedback(f); err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	fmt.Fprintf(ctx.Out(), "Feedback recorded: %s. It applies on the next '%s plan'.\n", f.Label, constants.AppName)
	return nil
}
