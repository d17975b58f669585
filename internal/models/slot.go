package models

import (
	"fmt"
	"time"
)

type SlotSource string

const (
	SlotSourceUser SlotSource = "user"
	SlotSourceAuto SlotSource = "auto"
)

// FreeSlot is a recurring weekly window of availability. Times are minutes
// from midnight so that normalization can do arithmetic without parsing.
type FreeSlot struct {
	ID        string       `json:"id"`
	Weekday   time.Weekday `json:"weekday"`     // 0=Sunday..6=Saturday
	StartMin  int          `json:"start_min"`   // minutes from midnight
	EndMin    int          `json:"end_min"`     // minutes from midnight
	Source    SlotSource   `json:"source"`
	CreatedAt time.Time    `json:"created_at"`
}

// CapacityMinutes is the derived length of the slot.
func (s FreeSlot) CapacityMinutes() int {
	if s.EndMin <= s.StartMin {
		return 0
	}
	return s.EndMin - s.StartMin
}

// Start returns the start as HH:MM.
func (s FreeSlot) Start() string {
	return fmt.Sprintf("%02d:%02d", s.StartMin/60, s.StartMin%60)
}

// End returns the end as HH:MM.
func (s FreeSlot) End() string {
	return fmt.Sprintf("%02d:%02d", s.EndMin/60, s.EndMin%60)
}

func (s FreeSlot) String() string {
	return fmt.Sprintf("%s %s-%s", s.Weekday.String()[:3], s.Start(), s.End())
}
