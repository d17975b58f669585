package stats

import (
	"sort"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

// Window holds planned and completed focus minutes over a period.
type Window struct {
	PlannedMinutes int `json:"planned_minutes"`
	DoneMinutes    int `json:"done_minutes"`
}

// SubjectStats breaks the plan down by subject.
type SubjectStats struct {
	Subject        string `json:"subject"`
	Sessions       int    `json:"sessions"`
	PlannedMinutes int    `json:"planned_minutes"`
	DoneMinutes    int    `json:"done_minutes"`
}

// Stats summarizes progress on one plan version. Breaks never count.
type Stats struct {
	PlanVersion    int            `json:"plan_version"`
	Today          Window         `json:"today"`
	Week           Window         `json:"week"`
	Subjects       []SubjectStats `json:"subjects"`
	Tracked        int            `json:"tracked_sessions"`
	Done           int            `json:"done_sessions"`
	Skipped        int            `json:"skipped_sessions"`
	CompletionRate float64        `json:"completion_rate"` // done / tracked, 0 when nothing is tracked
}

// Compute summarizes plan as of now. Weeks start on Monday in loc.
func Compute(plan models.PlanRecord, now time.Time, loc *time.Location) Stats {
	st := Stats{PlanVersion: plan.PlanVersion, Subjects: []SubjectStats{}}

	today := utils.DateKey(now, loc)
	weekStart := startOfWeek(now, loc)
	weekEnd := weekStart.AddDate(0, 0, 7)

	bySubject := make(map[string]*SubjectStats)
	for _, s := range plan.Sessions {
		if s.IsBreak() {
			continue
		}
		st.Tracked++
		done := s.Status == models.StatusDone
		switch s.Status {
		case models.StatusDone:
			st.Done++
		case models.StatusSkipped:
			st.Skipped++
		}

		doneMinutes := 0
		if done {
			doneMinutes = s.Minutes
		}
		if utils.DateKey(s.PlannedStart, loc) == today {
			st.Today.PlannedMinutes += s.Minutes
			st.Today.DoneMinutes += doneMinutes
		}
		if !s.PlannedStart.Before(weekStart) && s.PlannedStart.Before(weekEnd) {
			st.Week.PlannedMinutes += s.Minutes
			st.Week.DoneMinutes += doneMinutes
		}

		sub, ok := bySubject[s.Subject]
		if !ok {
			sub = &SubjectStats{Subject: s.Subject}
			bySubject[s.Subject] = sub
		}
		sub.Sessions++
		sub.PlannedMinutes += s.Minutes
		sub.DoneMinutes += doneMinutes
	}

	for _, sub := range bySubject {
		st.Subjects = append(st.Subjects, *sub)
	}
	sort.Slice(st.Subjects, func(i, j int) bool {
		if st.Subjects[i].PlannedMinutes != st.Subjects[j].PlannedMinutes {
			return st.Subjects[i].PlannedMinutes > st.Subjects[j].PlannedMinutes
		}
		return st.Subjects[i].Subject < st.Subjects[j].Subject
	})

	if st.Tracked > 0 {
		st.CompletionRate = float64(st.Done) / float64(st.Tracked)
	}
	return st
}

func startOfWeek(now time.Time, loc *time.Location) time.Time {
	day := utils.StartOfDay(now, loc)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
