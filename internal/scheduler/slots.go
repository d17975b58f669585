package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
)

const (
	// MaxSlotMinutes caps a single normalized slot.
	MaxSlotMinutes = 180
	// PathologicalSlotMinutes is the length at which a slot is reported as suspicious.
	PathologicalSlotMinutes = 720
)

// NormalizeSlots drops inverted slots, caps long ones and merges overlapping
// or touching slots on the same weekday. Output is sorted by weekday then
// start and is stable under a second pass.
func NormalizeSlots(slots []models.FreeSlot) ([]models.FreeSlot, []string) {
	var warnings []string
	grouped := make(map[time.Weekday][]models.FreeSlot)

	for _, slot := range slots {
		if slot.EndMin <= slot.StartMin {
			warnings = append(warnings, fmt.Sprintf("Dropped slot %s: end is not after start", slot))
			continue
		}
		duration := slot.EndMin - slot.StartMin
		if duration >= PathologicalSlotMinutes {
			warnings = append(warnings, fmt.Sprintf("Slot %s is %d minutes long, capped at %d", slot, duration, MaxSlotMinutes))
		}
		if duration > MaxSlotMinutes {
			slot.EndMin = slot.StartMin + MaxSlotMinutes
		}
		grouped[slot.Weekday] = append(grouped[slot.Weekday], slot)
	}

	var out []models.FreeSlot
	for day := time.Sunday; day <= time.Saturday; day++ {
		daySlots := grouped[day]
		if len(daySlots) == 0 {
			continue
		}
		sort.SliceStable(daySlots, func(i, j int) bool {
			return daySlots[i].StartMin < daySlots[j].StartMin
		})

		merged := false
		current := daySlots[0]
		for _, slot := range daySlots[1:] {
			if slot.StartMin <= current.EndMin {
				if slot.EndMin > current.EndMin {
					current.EndMin = slot.EndMin
				}
				merged = true
				continue
			}
			out = append(out, capSlot(current))
			current = slot
		}
		out = append(out, capSlot(current))

		if merged {
			warnings = append(warnings, fmt.Sprintf("Merged duplicate slots on %s", day))
		}
	}
	return out, warnings
}

// capSlot keeps a merged run within MaxSlotMinutes.
func capSlot(slot models.FreeSlot) models.FreeSlot {
	if slot.EndMin-slot.StartMin > MaxSlotMinutes {
		slot.EndMin = slot.StartMin + MaxSlotMinutes
	}
	return slot
}
