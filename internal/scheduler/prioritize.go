package scheduler

import (
	"sort"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
)

// PrioritizeTasks returns the tasks whose deadline is after now, ordered by
// earliest deadline, then higher importance, then higher difficulty, then
// larger estimate. Ties keep their input order.
func PrioritizeTasks(tasks []models.Task, now time.Time) []models.Task {
	var pending []models.Task
	for _, task := range tasks {
		if task.Deadline.After(now) {
			pending = append(pending, task)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if !a.Deadline.Equal(b.Deadline) {
			return a.Deadline.Before(b.Deadline)
		}
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		if a.Difficulty != b.Difficulty {
			return a.Difficulty > b.Difficulty
		}
		return a.EstimatedMinutes > b.EstimatedMinutes
	})
	return pending
}
