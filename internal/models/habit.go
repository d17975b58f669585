package models

import "time"

type HabitCadence string

const (
	HabitDaily  HabitCadence = "daily"
	HabitWeekly HabitCadence = "weekly"
)

type HabitPreset string

const (
	PresetPomodoro HabitPreset = "pomodoro"
	PresetDeepWork HabitPreset = "deep-work"
	PresetFocus30  HabitPreset = "focus-30"
)

// Habit represents a recurring practice to schedule
type Habit struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Cadence   HabitCadence  `json:"cadence"`
	Weekday   *time.Weekday `json:"weekday,omitempty"` // required for weekly habits
	Minutes   int           `json:"minutes"`
	Preset    HabitPreset   `json:"preset,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	DeletedAt *time.Time    `json:"deleted_at,omitempty"`
}

// OccursOn reports whether the habit is due on the given weekday.
func (h Habit) OccursOn(day time.Weekday) bool {
	switch h.Cadence {
	case HabitDaily:
		return true
	case HabitWeekly:
		return h.Weekday != nil && *h.Weekday == day
	default:
		return false
	}
}
