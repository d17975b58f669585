package plans

import (
	"fmt"
	"strings"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/models"
)

type SessionCmd struct {
	Done  SessionDoneCmd  `cmd:"" help:"Mark a session done."`
	Skip  SessionSkipCmd  `cmd:"" help:"Mark a session skipped."`
	Reset SessionResetCmd `cmd:"" help:"Mark a session pending again."`
}

type SessionDoneCmd struct {
	ID string `arg:"" help:"Session ID or a unique prefix of it."`
}

func (c *SessionDoneCmd) Run(ctx *cli.Context) error {
	return setStatus(ctx, c.ID, models.StatusDone)
}

type SessionSkipCmd struct {
	ID string `arg:"" help:"Session ID or a unique prefix of it."`
}

func (c *SessionSkipCmd) Run(ctx *cli.Context) error {
	return setStatus(ctx, c.ID, models.StatusSkipped)
}

type SessionResetCmd struct {
	ID string `arg:"" help:"Session ID or a unique prefix of it."`
}

func (c *SessionResetCmd) Run(ctx *cli.Context) error {
	return setStatus(ctx, c.ID, models.StatusPending)
}

// resolveSession finds a session in plan by full id or unique prefix.
func resolveSession(plan models.PlanRecord, id string) (models.Session, error) {
	if i := plan.FindSession(id); i >= 0 {
		return plan.Sessions[i], nil
	}
	var matches []models.Session
	for _, s := range plan.Sessions {
		if strings.HasPrefix(s.ID, id) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return models.Session{}, fmt.Errorf("no session %q in plan v%d", id, plan.PlanVersion)
	case 1:
		return matches[0], nil
	default:
		return models.Session{}, fmt.Errorf("session prefix %q is ambiguous (%d matches)", id, len(matches))
	}
}

func setStatus(ctx *cli.Context, id string, status models.SessionStatus) error {
	plan, err := ctx.LatestPlan()
	if err != nil {
		return err
	}
	target, err := resolveSession(plan, id)
	if err != nil {
		return err
	}
	if target.IsBreak() {
		return fmt.Errorf("%s is a break, breaks do not track status", target.ID)
	}

	session, err := ctx.Store.UpdateSessionStatus(target.ID, status, ctx.Clock())
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	fmt.Fprintf(ctx.Out(), "%s %s · %s → %s\n", statusMark(session), session.Subject, session.Title, session.Status)
	return nil
}
