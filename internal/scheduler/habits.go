package scheduler

import (
	"fmt"

	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

const habitSubject = "Habit"

// scheduleHabits places every habit occurrence in the horizon before any
// task gets capacity. Days without room produce a suggestion instead.
func (a *allocator) scheduleHabits(habits []models.Habit) ([]models.Session, []models.PlanSuggestion) {
	var sessions []models.Session
	var suggestions []models.PlanSuggestion

	for _, b := range a.buckets {
		for _, habit := range habits {
			if habit.Minutes <= 0 || !habit.OccursOn(b.date.Weekday()) {
				continue
			}
			day := b.date.Format("Mon 2006-01-02")
			if !b.hasCapacity() {
				suggestions = append(suggestions, models.PlanSuggestion{
					Type:    models.SuggestIncreaseFreeTime,
					Message: fmt.Sprintf("No free time left on %s for habit %q.", day, habit.Name),
					HabitID: habit.ID,
				})
				continue
			}

			need := habit.Minutes
			for need > 0 {
				c := a.takeFromBucket(b, need, habit.Minutes, true)
				if c == nil {
					break
				}
				sessions = append(sessions, a.habitSession(habit, *c))
				need -= c.minutes
			}
			if need > 0 {
				suggestions = append(suggestions, models.PlanSuggestion{
					Type: models.SuggestIncreaseFreeTime,
					Message: fmt.Sprintf("Habit %q only got %s of %s on %s.",
						habit.Name, utils.FormatMinutes(habit.Minutes-need), utils.FormatMinutes(habit.Minutes), day),
					HabitID: habit.ID,
				})
			}
		}
	}
	return sessions, suggestions
}

func (a *allocator) habitSession(habit models.Habit, c chunk) models.Session {
	return models.Session{
		ID:            a.ids.NewID(),
		Source:        models.SourceHabit,
		Subject:       habitSubject,
		Title:         habit.Name,
		PlannedStart:  c.start,
		PlannedEnd:    c.end,
		Minutes:       c.minutes,
		BufferMinutes: a.bufferFor(c.minutes),
		Status:        models.StatusPending,
		PlanVersion:   a.version,
		Habit: &models.HabitSessionDetail{
			HabitID:         habit.ID,
			SuccessCriteria: []string{fmt.Sprintf("Kept up %s for %d minutes", habit.Name, habit.Minutes)},
		},
	}
}
