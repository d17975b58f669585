package models

import (
	"math"
	"strings"
	"time"
)

type DurationUnit string

const (
	DurationMinutes DurationUnit = "minutes"
	DurationHours   DurationUnit = "hours"
)

// MinMilestoneMinutes is the smallest budget a milestone can carry
const MinMilestoneMinutes = 5

type Milestone struct {
	ID              string `json:"id" yaml:"id,omitempty"`
	Title           string `json:"title" yaml:"title"`
	MinutesEstimate int    `json:"minutes_estimate" yaml:"minutes"`
}

type Task struct {
	ID                  string       `json:"id"`
	Subject             string       `json:"subject"`
	Title               string       `json:"title"`
	Deadline            time.Time    `json:"deadline"`
	Timezone            string       `json:"timezone,omitempty"`
	Difficulty          int          `json:"difficulty"`           // 1-5
	DurationEstimateMin int          `json:"duration_estimate_min"` // minutes
	DurationEstimateMax int          `json:"duration_estimate_max"` // minutes
	DurationUnit        DurationUnit `json:"duration_unit"`         // unit the user entered
	EstimatedMinutes    int          `json:"estimated_minutes"`
	Importance          int          `json:"importance,omitempty"` // 0 = unset, else 1-3
	ContentFocus        string       `json:"content_focus,omitempty"`
	SuccessCriteria     []string     `json:"success_criteria"`
	Milestones          []Milestone  `json:"milestones,omitempty"`
	Notes               string       `json:"notes,omitempty"`
	ProgressMinutes     int          `json:"progress_minutes"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
	DeletedAt           *time.Time   `json:"deleted_at,omitempty"`
}

// ToMinutes converts a duration value in unit to whole minutes, never below 1.
func ToMinutes(value float64, unit DurationUnit) int {
	multiplier := 1.0
	if unit == DurationHours {
		multiplier = 60
	}
	minutes := int(math.Round(value * multiplier))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// SetDuration stores an estimate range given in unit, normalized to minutes.
// EstimatedMinutes always tracks the upper bound.
func (t *Task) SetDuration(minValue, maxValue float64, unit DurationUnit) {
	if unit != DurationHours {
		unit = DurationMinutes
	}
	minMinutes := ToMinutes(minValue, unit)
	maxMinutes := ToMinutes(maxValue, unit)
	if maxMinutes < minMinutes {
		maxMinutes = minMinutes
	}
	t.DurationUnit = unit
	t.DurationEstimateMin = minMinutes
	t.DurationEstimateMax = maxMinutes
	t.EstimatedMinutes = maxMinutes
}

// Normalize cleans user-entered fields in place.
func (t *Task) Normalize() {
	t.Subject = strings.TrimSpace(t.Subject)
	t.Title = strings.TrimSpace(t.Title)

	if t.DurationEstimateMax < t.DurationEstimateMin {
		t.DurationEstimateMax = t.DurationEstimateMin
	}
	if t.DurationEstimateMax > 0 {
		t.EstimatedMinutes = t.DurationEstimateMax
	}
	if t.DurationUnit == "" {
		t.DurationUnit = DurationMinutes
	}

	criteria := make([]string, 0, len(t.SuccessCriteria))
	for _, c := range t.SuccessCriteria {
		if c = strings.TrimSpace(c); c != "" {
			criteria = append(criteria, c)
		}
	}
	t.SuccessCriteria = criteria

	for i := range t.Milestones {
		t.Milestones[i].Title = strings.TrimSpace(t.Milestones[i].Title)
		if t.Milestones[i].MinutesEstimate < MinMilestoneMinutes {
			t.Milestones[i].MinutesEstimate = MinMilestoneMinutes
		}
	}
	if len(t.Milestones) == 0 {
		t.Milestones = nil
	}
	if t.ProgressMinutes < 0 {
		t.ProgressMinutes = 0
	}
}

// RemainingMinutes returns the minutes still to be planned.
func (t Task) RemainingMinutes() int {
	remaining := t.EstimatedMinutes - t.ProgressMinutes
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Checklist splits the content focus into non-empty lines.
func (t Task) Checklist() []string {
	if strings.TrimSpace(t.ContentFocus) == "" {
		return nil
	}
	var items []string
	for _, line := range strings.Split(t.ContentFocus, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

// DisplayName is "subject · title".
func (t Task) DisplayName() string {
	if t.Subject == "" {
		return t.Title
	}
	return t.Subject + " · " + t.Title
}
