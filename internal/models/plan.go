package models

import "time"

type SuggestionType string

const (
	SuggestIncreaseFreeTime SuggestionType = "increase_free_time"
	SuggestReduceDuration   SuggestionType = "reduce_duration"
	SuggestExtendDeadline   SuggestionType = "extend_deadline"
	SuggestReduceBuffer     SuggestionType = "reduce_buffer"
	SuggestAdjustDailyLimit SuggestionType = "adjust_daily_limit"
)

type PlanSuggestion struct {
	Type    SuggestionType `json:"type"`
	Message string         `json:"message"`
	TaskID  string         `json:"task_id,omitempty"`
	HabitID string         `json:"habit_id,omitempty"`
}

// PlanRecord is one immutable generation of the study plan.
type PlanRecord struct {
	PlanVersion      int              `json:"plan_version"`
	Sessions         []Session        `json:"sessions"`
	UnscheduledTasks []Task           `json:"unscheduled_tasks"`
	Suggestions      []PlanSuggestion `json:"suggestions"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// FindSession returns the index of the session with id, or -1.
func (p PlanRecord) FindSession(id string) int {
	for i := range p.Sessions {
		if p.Sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// TrackedSessions returns the non-break sessions.
func (p PlanRecord) TrackedSessions() []Session {
	var out []Session
	for _, s := range p.Sessions {
		if !s.IsBreak() {
			out = append(out, s)
		}
	}
	return out
}
