package settings

import (
	"fmt"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/utils"
	"github.com/julianstephens/studyflow/internal/validation"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	DailyLimit *int     `help:"Maximum focus minutes per day (30-600)."`
	Buffer     *float64 `help:"Share of slot time held back, 0-0.5."`
	Focus      *int     `help:"Preferred focus session length in minutes."`
	Rest       *int     `help:"Break length in minutes."`
	BreakLabel *string  `help:"Label shown on break sessions."`
	Timezone   *string  `name:"set-timezone" help:"IANA timezone used for planning."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	out := ctx.Out()

	if c.List {
		fmt.Fprintln(out, "Current Settings:")
		fmt.Fprintf(out, "  Daily Limit:   %s\n", utils.FormatMinutes(settings.DailyLimitMinutes))
		fmt.Fprintf(out, "  Buffer:        %.0f%%\n", settings.BufferPercent*100)
		fmt.Fprintf(out, "  Break Preset:  %s (%d/%d)\n", settings.BreakPreset.Label, settings.BreakPreset.Focus, settings.BreakPreset.Rest)
		fmt.Fprintf(out, "  Timezone:      %s\n", settings.Timezone)
		return nil
	}

	updated := false
	if c.DailyLimit != nil {
		settings.DailyLimitMinutes = *c.DailyLimit
		updated = true
	}
	if c.Buffer != nil {
		settings.BufferPercent = *c.Buffer
		updated = true
	}
	if c.Focus != nil {
		settings.BreakPreset.Focus = *c.Focus
		updated = true
	}
	if c.Rest != nil {
		settings.BreakPreset.Rest = *c.Rest
		updated = true
	}
	if c.BreakLabel != nil {
		settings.BreakPreset.Label = *c.BreakLabel
		updated = true
	}
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}

	if !updated {
		fmt.Fprintln(out, "No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := validation.ValidateSettings(settings); err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Fprintln(out, "Settings updated successfully.")
	return nil
}
