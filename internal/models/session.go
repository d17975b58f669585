package models

import (
	"fmt"
	"time"
)

type SessionSource string

const (
	SourceTask  SessionSource = "task"
	SourceHabit SessionSource = "habit"
	SourceBreak SessionSource = "break"
)

type SessionStatus string

const (
	StatusPending SessionStatus = "pending"
	StatusDone    SessionStatus = "done"
	StatusSkipped SessionStatus = "skipped"
)

// ParseSessionStatus maps user input to a status.
func ParseSessionStatus(s string) (SessionStatus, error) {
	switch SessionStatus(s) {
	case StatusPending, StatusDone, StatusSkipped:
		return SessionStatus(s), nil
	}
	return "", fmt.Errorf("invalid session status %q (expected pending, done or skipped)", s)
}

// TaskSessionDetail is the payload of a study session.
type TaskSessionDetail struct {
	TaskID          string   `json:"task_id"`
	Checklist       []string `json:"checklist,omitempty"`
	SuccessCriteria []string `json:"success_criteria"`
	MilestoneTitle  string   `json:"milestone_title,omitempty"`
}

// HabitSessionDetail is the payload of a habit occurrence.
type HabitSessionDetail struct {
	HabitID         string   `json:"habit_id"`
	SuccessCriteria []string `json:"success_criteria"`
}

// BreakSessionDetail is the payload of a rest period.
type BreakSessionDetail struct {
	Label          string `json:"label"`
	AfterSessionID string `json:"after_session_id"`
}

// Session is one scheduled block. Exactly one of Task, Habit or Break is set
// and it must match Source.
type Session struct {
	ID            string        `json:"id"`
	Source        SessionSource `json:"source"`
	Subject       string        `json:"subject"`
	Title         string        `json:"title"`
	PlannedStart  time.Time     `json:"planned_start"`
	PlannedEnd    time.Time     `json:"planned_end"`
	Minutes       int           `json:"minutes"`
	BufferMinutes int           `json:"buffer_minutes"`
	Status        SessionStatus `json:"status"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	PlanVersion   int           `json:"plan_version"`

	Task  *TaskSessionDetail  `json:"task,omitempty"`
	Habit *HabitSessionDetail `json:"habit,omitempty"`
	Break *BreakSessionDetail `json:"break,omitempty"`
}

// Validate checks that the payload matches the source tag.
func (s Session) Validate() error {
	set := 0
	if s.Task != nil {
		set++
	}
	if s.Habit != nil {
		set++
	}
	if s.Break != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("session %s must carry exactly one payload, has %d", s.ID, set)
	}
	switch s.Source {
	case SourceTask:
		if s.Task == nil {
			return fmt.Errorf("task session %s has no task payload", s.ID)
		}
	case SourceHabit:
		if s.Habit == nil {
			return fmt.Errorf("habit session %s has no habit payload", s.ID)
		}
	case SourceBreak:
		if s.Break == nil {
			return fmt.Errorf("break session %s has no break payload", s.ID)
		}
	default:
		return fmt.Errorf("session %s has unknown source %q", s.ID, s.Source)
	}
	if !s.PlannedEnd.After(s.PlannedStart) {
		return fmt.Errorf("session %s ends before it starts", s.ID)
	}
	return nil
}

// IsBreak reports whether the session is a rest period.
func (s Session) IsBreak() bool {
	return s.Source == SourceBreak
}

// TaskID returns the linked task id, or "" for habit and break sessions.
func (s Session) TaskID() string {
	if s.Task == nil {
		return ""
	}
	return s.Task.TaskID
}

// HabitID returns the linked habit id, or "".
func (s Session) HabitID() string {
	if s.Habit == nil {
		return ""
	}
	return s.Habit.HabitID
}

// SuccessCriteria returns the criteria snapshot for task and habit sessions.
func (s Session) SuccessCriteria() []string {
	switch {
	case s.Task != nil:
		return s.Task.SuccessCriteria
	case s.Habit != nil:
		return s.Habit.SuccessCriteria
	}
	return nil
}

// SetStatus applies a status transition, stamping CompletedAt on done.
func (s *Session) SetStatus(status SessionStatus, at time.Time) error {
	if s.IsBreak() {
		return fmt.Errorf("break session %s does not track status", s.ID)
	}
	s.Status = status
	if status == StatusDone {
		t := at
		s.CompletedAt = &t
	} else {
		s.CompletedAt = nil
	}
	return nil
}
