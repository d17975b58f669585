package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

const (
	// MinSessionMinutes is the shortest chunk carved unless the remainder is smaller.
	MinSessionMinutes = 25
	// MaxSessionMinutes is the longest single session.
	MaxSessionMinutes = 120
)

// chunk is a piece of time taken out of a bucket.
type chunk struct {
	start   time.Time
	end     time.Time
	minutes int
}

// allocator owns the buckets for one planning pass.
type allocator struct {
	buckets  []*dayBucket
	settings models.Settings
	loc      *time.Location
	version  int
	ids      IDGenerator
}

// takeFromBucket carves the next chunk from the first segment with room.
// Chunks shorter than MinSessionMinutes are skipped while more than that is
// still needed, unless allowShort is set.
func (a *allocator) takeFromBucket(b *dayBucket, remaining, preferred int, allowShort bool) *chunk {
	if b.used >= b.allowedMinutes || remaining <= 0 {
		return nil
	}
	if preferred <= 0 {
		preferred = MaxSessionMinutes
	}

	for _, seg := range b.segments {
		capacity := seg.capacity()
		if capacity <= 0 {
			continue
		}
		size := min(preferred, remaining, capacity, MaxSessionMinutes, b.allowedMinutes-b.used)
		if size <= 0 {
			continue
		}
		if size < MinSessionMinutes && remaining > MinSessionMinutes && !allowShort {
			continue
		}

		start := seg.start.Add(time.Duration(seg.used) * time.Minute)
		seg.used += size
		b.used += size
		return &chunk{
			start:   start,
			end:     start.Add(time.Duration(size) * time.Minute),
			minutes: size,
		}
	}
	return nil
}

// fill takes chunks from buckets in order until need minutes are placed or
// the buckets are exhausted. It returns the chunks and the minutes placed.
func (a *allocator) fill(buckets []*dayBucket, need, preferred int, allowShort bool) ([]chunk, int) {
	var chunks []chunk
	placed := 0
	for _, b := range buckets {
		for placed < need {
			c := a.takeFromBucket(b, need-placed, preferred, allowShort)
			if c == nil {
				break
			}
			chunks = append(chunks, *c)
			placed += c.minutes
		}
		if placed >= need {
			break
		}
	}
	return chunks, placed
}

// eligibleBuckets returns the buckets dated on or before the deadline's date.
func (a *allocator) eligibleBuckets(deadline time.Time) []*dayBucket {
	last := utils.StartOfDay(deadline, a.loc)
	var out []*dayBucket
	for _, b := range a.buckets {
		if !b.date.After(last) {
			out = append(out, b)
		}
	}
	return out
}

// taskResult is what the allocator produced for one task.
type taskResult struct {
	sessions    []models.Session
	leftover    int
	suggestions []models.PlanSuggestion
}

// allocateTask places the task's remaining minutes. Tasks with milestones are
// split so each session belongs to one milestone.
func (a *allocator) allocateTask(task models.Task) taskResult {
	var res taskResult
	remaining := task.RemainingMinutes()
	if remaining == 0 {
		return res
	}

	eligible := a.eligibleBuckets(task.Deadline)
	if len(eligible) == 0 {
		res.leftover = remaining
		res.suggestions = append(res.suggestions, models.PlanSuggestion{
			Type: models.SuggestIncreaseFreeTime,
			Message: fmt.Sprintf("No free time before %q is due on %s. Add slots before the deadline.",
				task.DisplayName(), task.Deadline.In(a.loc).Format("Mon 2006-01-02 15:04")),
			TaskID: task.ID,
		})
		return res
	}

	focus := a.settings.BreakPreset.Focus
	if len(task.Milestones) > 0 {
		milestoneShort := 0
		for _, m := range task.Milestones {
			if remaining <= 0 {
				break
			}
			budget := min(m.MinutesEstimate, remaining)
			chunks, placed := a.fill(eligible, budget, focus, true)
			for _, c := range chunks {
				res.sessions = append(res.sessions, a.taskSession(task, c, m.Title))
			}
			milestoneShort += budget - placed
			remaining -= placed
		}
		res.leftover = remaining
		if remaining > 0 && milestoneShort == 0 {
			res.suggestions = append(res.suggestions, models.PlanSuggestion{
				Type: models.SuggestReduceDuration,
				Message: fmt.Sprintf("Milestones of %q leave %s of the estimate unplanned. Add a milestone or lower the estimate.",
					task.DisplayName(), utils.FormatMinutes(remaining)),
				TaskID: task.ID,
			})
			return res
		}
	} else {
		chunks, placed := a.fill(eligible, remaining, focus, false)
		for _, c := range chunks {
			res.sessions = append(res.sessions, a.taskSession(task, c, ""))
		}
		remaining -= placed
		res.leftover = remaining
	}

	if res.leftover > 0 {
		res.suggestions = append(res.suggestions, models.PlanSuggestion{
			Type: models.SuggestReduceDuration,
			Message: fmt.Sprintf("%q is short %s before its deadline. Reduce the estimate or split the work.",
				task.DisplayName(), utils.FormatMinutes(res.leftover)),
			TaskID: task.ID,
		})
	}
	return res
}

func (a *allocator) taskSession(task models.Task, c chunk, milestone string) models.Session {
	criteria := append([]string{}, task.SuccessCriteria...)
	return models.Session{
		ID:            a.ids.NewID(),
		Source:        models.SourceTask,
		Subject:       task.Subject,
		Title:         task.Title,
		PlannedStart:  c.start,
		PlannedEnd:    c.end,
		Minutes:       c.minutes,
		BufferMinutes: a.bufferFor(c.minutes),
		Status:        models.StatusPending,
		PlanVersion:   a.version,
		Task: &models.TaskSessionDetail{
			TaskID:          task.ID,
			Checklist:       task.Checklist(),
			SuccessCriteria: criteria,
			MilestoneTitle:  milestone,
		},
	}
}

func (a *allocator) bufferFor(minutes int) int {
	return int(math.Round(float64(minutes) * a.settings.BufferPercent))
}
