package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictOverlappingSessions ConflictType = "overlapping_sessions"
	ConflictPastDeadline        ConflictType = "past_deadline"
	ConflictExceedsDailyLimit   ConflictType = "exceeds_daily_limit"
	ConflictMissingTaskID       ConflictType = "missing_task_id"
	ConflictDuplicateTaskTitle  ConflictType = "duplicate_task_title"
	ConflictMalformedSession    ConflictType = "malformed_session"
)

// Conflict represents a detected conflict in tasks or plans
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Session titles involved
	TimeRange   string   // Human-readable time range (if applicable)
	SessionIDs  []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator validates tasks and plans for conflicts
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateTasks flags active tasks sharing the same subject and title.
func (v *Validator) ValidateTasks(tasks []models.Task) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	ids := make(map[string][]string)
	var order []string
	for _, task := range tasks {
		if task.DeletedAt != nil {
			continue
		}
		key := strings.ToLower(task.DisplayName())
		if _, seen := ids[key]; !seen {
			order = append(order, key)
		}
		ids[key] = append(ids[key], task.ID)
	}

	for _, key := range order {
		if len(ids[key]) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateTaskTitle,
				Description: fmt.Sprintf("Duplicate task: \"%s\" (IDs: %v)", key, ids[key]),
				Items:       []string{key},
			})
		}
	}
	return result
}

// ValidatePlan checks a persisted plan against the current tasks and
// settings: sessions must not overlap, task sessions must not land after
// their deadline day, and no day may carry more focus minutes than the
// daily limit.
func (v *Validator) ValidatePlan(plan models.PlanRecord, tasks []models.Task, settings models.Settings) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		loc = time.UTC
	}

	taskMap := make(map[string]models.Task)
	for _, task := range tasks {
		taskMap[task.ID] = task
	}

	sessions := append([]models.Session(nil), plan.Sessions...)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].PlannedStart.Before(sessions[j].PlannedStart)
	})

	dailyMinutes := make(map[string]int)
	var days []string
	for _, s := range sessions {
		if err := s.Validate(); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMalformedSession,
				Description: err.Error(),
				SessionIDs:  []string{s.ID},
			})
			continue
		}

		date := utils.DateKey(s.PlannedStart, loc)
		if s.Source == models.SourceTask {
			task, ok := taskMap[s.TaskID()]
			if !ok {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictMissingTaskID,
					Description: fmt.Sprintf("%s: session \"%s\" references missing task ID: %s", date, s.Title, s.TaskID()),
					Date:        date,
					SessionIDs:  []string{s.ID},
				})
			} else if date > utils.DateKey(task.Deadline, loc) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type: ConflictPastDeadline,
					Description: fmt.Sprintf("%s: \"%s\" is planned after its deadline (%s)",
						date, task.DisplayName(), task.Deadline.In(loc).Format(constants.DateTimeFormat)),
					Date:       date,
					Items:      []string{task.DisplayName()},
					SessionIDs: []string{s.ID},
				})
			}
		}

		if !s.IsBreak() {
			if _, ok := dailyMinutes[date]; !ok {
				days = append(days, date)
			}
			dailyMinutes[date] += s.Minutes
		}
	}

	for i := 0; i < len(sessions); i++ {
		for j := i + 1; j < len(sessions); j++ {
			a, b := sessions[i], sessions[j]
			if !b.PlannedStart.Before(a.PlannedEnd) {
				break
			}
			date := utils.DateKey(a.PlannedStart, loc)
			timeRange := fmt.Sprintf("%s-%s",
				a.PlannedStart.In(loc).Format(constants.TimeFormat), a.PlannedEnd.In(loc).Format(constants.TimeFormat))
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOverlappingSessions,
				Description: fmt.Sprintf("%s: %s \"%s\" overlaps \"%s\"", date, timeRange, a.Title, b.Title),
				Date:        date,
				Items:       []string{a.Title, b.Title},
				TimeRange:   timeRange,
				SessionIDs:  []string{a.ID, b.ID},
			})
		}
	}

	for _, date := range days {
		if dailyMinutes[date] > settings.DailyLimitMinutes {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictExceedsDailyLimit,
				Description: fmt.Sprintf("%s: %s planned exceeds the %s daily limit",
					date, utils.FormatMinutes(dailyMinutes[date]), utils.FormatMinutes(settings.DailyLimitMinutes)),
				Date: date,
			})
		}
	}

	return result
}
