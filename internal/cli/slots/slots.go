package slots

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/scheduler"
	"github.com/julianstephens/studyflow/internal/utils"
	"github.com/julianstephens/studyflow/internal/validation"
)

type SlotCmd struct {
	Add    SlotAddCmd    `cmd:"" help:"Add a weekly free slot."`
	List   SlotListCmd   `cmd:"" help:"List free slots."`
	Delete SlotDeleteCmd `cmd:"" help:"Delete a free slot."`
}

type SlotAddCmd struct {
	Days  string `arg:"" help:"Comma-separated weekdays, e.g. mon,wed or 1,3."`
	Start string `arg:"" help:"Start time (HH:MM)."`
	End   string `arg:"" help:"End time (HH:MM, 24:00 for midnight)."`
}

func (c *SlotAddCmd) Run(ctx *cli.Context) error {
	weekdays, err := utils.ParseWeekdays(c.Days)
	if err != nil {
		return &validation.Error{Field: "day", Message: err.Error()}
	}
	start, err := utils.ParseTimeToMinutes(c.Start)
	if err != nil {
		return &validation.Error{Field: "start", Message: fmt.Sprintf("invalid time %q", c.Start)}
	}
	end, err := utils.ParseSlotEnd(c.End)
	if err != nil {
		return &validation.Error{Field: "end", Message: err.Error()}
	}

	now := ctx.Clock()
	added := make([]models.FreeSlot, 0, len(weekdays))
	for _, wd := range weekdays {
		slot := models.FreeSlot{
			ID:        uuid.New().String(),
			Weekday:   wd,
			StartMin:  start,
			EndMin:    end,
			Source:    models.SlotSourceUser,
			CreatedAt: now,
		}
		if err := validation.ValidateSlot(slot); err != nil {
			return err
		}
		added = append(added, slot)
	}

	for _, slot := range added {
		if err := ctx.Store.AddSlot(slot); err != nil {
			return fmt.Errorf("failed to add slot: %w", err)
		}
		fmt.Fprintf(ctx.Out(), "Added slot: %s (ID: %s)\n", slot, slot.ID)
	}
	return nil
}

type SlotListCmd struct {
	Normalized bool `short:"n" help:"Show slots after merging overlaps, as the planner sees them."`
}

func (c *SlotListCmd) Run(ctx *cli.Context) error {
	slots, err := ctx.Store.GetAllSlots()
	if err != nil {
		return fmt.Errorf("failed to list slots: %w", err)
	}

	out := ctx.Out()
	if len(slots) == 0 {
		fmt.Fprintf(out, "No free slots. Add one with '%s slot add mon 18:00 20:00'.\n", constants.AppName)
		return nil
	}

	var warnings []string
	if c.Normalized {
		slots, warnings = scheduler.NormalizeSlots(slots)
	} else {
		sort.SliceStable(slots, func(i, j int) bool {
			if slots[i].Weekday != slots[j].Weekday {
				return slots[i].Weekday < slots[j].Weekday
			}
			return slots[i].StartMin < slots[j].StartMin
		})
	}

	total := 0
	for _, s := range slots {
		total += s.CapacityMinutes()
		if c.Normalized {
			fmt.Fprintf(out, "- %s  (%s)\n", s, utils.FormatMinutes(s.CapacityMinutes()))
		} else {
			fmt.Fprintf(out, "- %s  (%s)  ID: %s\n", s, utils.FormatMinutes(s.CapacityMinutes()), s.ID)
		}
	}
	fmt.Fprintf(out, "\nWeekly free time: %s\n", utils.FormatMinutes(total))
	for _, w := range warnings {
		fmt.Fprintf(out, "⚠ %s\n", w)
	}
	return nil
}

type SlotDeleteCmd struct {
	ID string `arg:"" help:"Slot ID to delete."`
}

func (c *SlotDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.DeleteSlot(c.ID); err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	fmt.Fprintf(ctx.Out(), "Deleted slot with ID: %s\n", c.ID)
	return nil
}
