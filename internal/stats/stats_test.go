package stats

import (
	"math"
	"testing"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
)

func session(id, subject string, start time.Time, minutes int, status models.SessionStatus) models.Session {
	return models.Session{
		ID:           id,
		Source:       models.SourceTask,
		Subject:      subject,
		PlannedStart: start,
		PlannedEnd:   start.Add(time.Duration(minutes) * time.Minute),
		Minutes:      minutes,
		Status:       status,
		Task:         &models.TaskSessionDetail{TaskID: "t-" + subject},
	}
}

func TestCompute(t *testing.T) {
	loc := time.UTC
	// Wednesday
	now := time.Date(2026, 3, 11, 12, 0, 0, 0, loc)
	at := func(day, hour int) time.Time { return time.Date(2026, 3, day, hour, 0, 0, 0, loc) }

	plan := models.PlanRecord{
		PlanVersion: 3,
		Sessions: []models.Session{
			session("a", "Math", at(9, 19), 45, models.StatusDone),        // Monday this week
			session("b", "Math", at(11, 8), 30, models.StatusDone),        // today
			session("c", "Physics", at(11, 19), 60, models.StatusPending), // today
			session("d", "Physics", at(8, 19), 40, models.StatusSkipped),  // Sunday, last week
			session("e", "Math", at(16, 19), 20, models.StatusPending),    // next Monday
			{
				ID: "br", Source: models.SourceBreak, Subject: "Break", Minutes: 10,
				PlannedStart: at(11, 9), PlannedEnd: at(11, 9).Add(10 * time.Minute),
				Break: &models.BreakSessionDetail{Label: "rest", AfterSessionID: "b"},
			},
		},
	}

	st := Compute(plan, now, loc)

	if st.PlanVersion != 3 {
		t.Errorf("version = %d", st.PlanVersion)
	}
	if st.Today != (Window{PlannedMinutes: 90, DoneMinutes: 30}) {
		t.Errorf("today = %+v", st.Today)
	}
	if st.Week != (Window{PlannedMinutes: 135, DoneMinutes: 75}) {
		t.Errorf("week = %+v", st.Week)
	}
	if st.Tracked != 5 || st.Done != 2 || st.Skipped != 1 {
		t.Errorf("counts = tracked %d done %d skipped %d", st.Tracked, st.Done, st.Skipped)
	}
	if math.Abs(st.CompletionRate-0.4) > 1e-9 {
		t.Errorf("completion rate = %v, want 0.4", st.CompletionRate)
	}

	if len(st.Subjects) != 2 {
		t.Fatalf("expected 2 subjects, got %+v", st.Subjects)
	}
	if st.Subjects[0].Subject != "Physics" || st.Subjects[0].PlannedMinutes != 100 {
		t.Errorf("first subject = %+v", st.Subjects[0])
	}
	if st.Subjects[1].Subject != "Math" || st.Subjects[1].DoneMinutes != 75 || st.Subjects[1].Sessions != 3 {
		t.Errorf("second subject = %+v", st.Subjects[1])
	}
}

func TestComputeEmptyPlan(t *testing.T) {
	st := Compute(models.PlanRecord{}, time.Now(), time.UTC)
	if st.CompletionRate != 0 || st.Tracked != 0 {
		t.Errorf("unexpected stats for empty plan: %+v", st)
	}
	if st.Subjects == nil {
		t.Error("subjects should be an empty slice")
	}
}

func TestStartOfWeekSunday(t *testing.T) {
	sunday := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	got := startOfWeek(sunday, time.UTC)
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("startOfWeek(Sunday) = %v, want %v", got, want)
	}
}
