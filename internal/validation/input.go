package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

// ErrInvalid is wrapped by every input validation error
var ErrInvalid = errors.New("invalid input")

const (
	MinTaskMinutes = 10
	MaxTaskMinutes = 600
	MinDifficulty  = 1
	MaxDifficulty  = 5
	MinImportance  = 1
	MaxImportance  = 3
	MaxSlotEndMin  = 24 * 60
)

// Error reports the first offending field of an input.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

func invalid(field, format string, args ...any) error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateNewTask checks a task before it is first stored. The deadline
// must still be ahead of now.
func ValidateNewTask(task models.Task, now time.Time) error {
	if err := ValidateTask(task); err != nil {
		return err
	}
	if !task.Deadline.After(now) {
		return invalid("deadline", "must be in the future")
	}
	return nil
}

// ValidateTask checks the shape of a normalized task.
func ValidateTask(task models.Task) error {
	if strings.TrimSpace(task.Subject) == "" {
		return invalid("subject", "is required")
	}
	if strings.TrimSpace(task.Title) == "" {
		return invalid("title", "is required")
	}
	if task.Deadline.IsZero() {
		return invalid("deadline", "is required")
	}
	if task.Timezone != "" && !utils.ValidateTimezone(task.Timezone) {
		return invalid("timezone", "unknown timezone %q", task.Timezone)
	}
	if task.Difficulty < MinDifficulty || task.Difficulty > MaxDifficulty {
		return invalid("difficulty", "must be between %d and %d", MinDifficulty, MaxDifficulty)
	}
	if task.Importance != 0 && (task.Importance < MinImportance || task.Importance > MaxImportance) {
		return invalid("importance", "must be between %d and %d", MinImportance, MaxImportance)
	}
	for _, field := range []struct {
		name  string
		value int
	}{
		{"duration_estimate_min", task.DurationEstimateMin},
		{"duration_estimate_max", task.DurationEstimateMax},
	} {
		if field.value < MinTaskMinutes || field.value > MaxTaskMinutes {
			return invalid(field.name, "must be between %d and %d minutes", MinTaskMinutes, MaxTaskMinutes)
		}
	}
	if task.DurationEstimateMax < task.DurationEstimateMin {
		return invalid("duration_estimate_max", "must not be below the minimum estimate")
	}
	if task.ProgressMinutes < 0 {
		return invalid("progress_minutes", "must not be negative")
	}
	for i, m := range task.Milestones {
		if strings.TrimSpace(m.Title) == "" {
			return invalid(fmt.Sprintf("milestones[%d].title", i), "is required")
		}
		if m.MinutesEstimate < models.MinMilestoneMinutes {
			return invalid(fmt.Sprintf("milestones[%d].minutes_estimate", i), "must be at least %d", models.MinMilestoneMinutes)
		}
	}
	return nil
}

// ValidateSlot checks a weekly free slot.
func ValidateSlot(slot models.FreeSlot) error {
	if slot.Weekday < time.Sunday || slot.Weekday > time.Saturday {
		return invalid("weekday", "must be between 0 (Sunday) and 6 (Saturday)")
	}
	if slot.StartMin < 0 || slot.StartMin >= MaxSlotEndMin {
		return invalid("start", "must be between 00:00 and 23:59")
	}
	if slot.EndMin > MaxSlotEndMin {
		return invalid("end", "must not pass midnight")
	}
	if slot.EndMin <= slot.StartMin {
		return invalid("end", "must be after start (%s)", slot.Start())
	}
	return nil
}

// ValidateHabit checks a habit definition.
func ValidateHabit(habit models.Habit) error {
	if strings.TrimSpace(habit.Name) == "" {
		return invalid("name", "is required")
	}
	if habit.Minutes <= 0 {
		return invalid("minutes", "must be positive")
	}
	switch habit.Cadence {
	case models.HabitDaily:
	case models.HabitWeekly:
		if habit.Weekday == nil {
			return invalid("weekday", "is required for weekly habits")
		}
		if *habit.Weekday < time.Sunday || *habit.Weekday > time.Saturday {
			return invalid("weekday", "must be between 0 (Sunday) and 6 (Saturday)")
		}
	default:
		return invalid("cadence", "must be daily or weekly")
	}
	switch habit.Preset {
	case "", models.PresetPomodoro, models.PresetDeepWork, models.PresetFocus30:
	default:
		return invalid("preset", "unknown preset %q", habit.Preset)
	}
	return nil
}

// ValidateSettings checks settings ranges.
func ValidateSettings(settings models.Settings) error {
	if settings.DailyLimitMinutes < constants.MinDailyLimitMin || settings.DailyLimitMinutes > constants.MaxDailyLimitMin {
		return invalid("daily_limit_minutes", "must be between %d and %d", constants.MinDailyLimitMin, constants.MaxDailyLimitMin)
	}
	if settings.BufferPercent < constants.MinBufferPercent || settings.BufferPercent > constants.MaxBufferPercent {
		return invalid("buffer_percent", "must be between %.2f and %.2f", constants.MinBufferPercent, constants.MaxBufferPercent)
	}
	if settings.BreakPreset.Focus <= 0 {
		return invalid("break_preset.focus", "must be positive")
	}
	if settings.BreakPreset.Rest < 0 {
		return invalid("break_preset.rest", "must not be negative")
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return invalid("timezone", "unknown timezone %q", settings.Timezone)
	}
	return nil
}

// ValidateFeedback checks a feedback entry.
func ValidateFeedback(f models.Feedback) error {
	for _, label := range models.ValidFeedbackLabels {
		if f.Label == label {
			if label == models.FeedbackCustom && strings.TrimSpace(f.Note) == "" {
				return invalid("note", "is required for custom feedback")
			}
			return nil
		}
	}
	return invalid("label", "unknown feedback label %q", f.Label)
}
