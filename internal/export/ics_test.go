package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/julianstephens/studyflow/internal/models"
)

func testPlan() models.PlanRecord {
	loc, _ := time.LoadLocation("Asia/Ho_Chi_Minh")
	start := time.Date(2026, 3, 9, 19, 0, 0, 0, loc)
	return models.PlanRecord{
		PlanVersion: 2,
		GeneratedAt: time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC),
		Sessions: []models.Session{
			{
				ID: "s-1", Source: models.SourceTask, Subject: "Toán", Title: "Ôn PT bậc 2",
				PlannedStart: start, PlannedEnd: start.Add(45 * time.Minute), Minutes: 45,
				Task: &models.TaskSessionDetail{TaskID: "t1", SuccessCriteria: []string{"Solve 10 exercises", "Explain Vieta"}},
			},
			{
				ID: "s-2", Source: models.SourceBreak, Subject: "Break", Title: "Deep work 45/10",
				PlannedStart: start.Add(45 * time.Minute), PlannedEnd: start.Add(55 * time.Minute), Minutes: 10,
				Break: &models.BreakSessionDetail{Label: "Deep work 45/10", AfterSessionID: "s-1"},
			},
			{
				ID: "s-3", Source: models.SourceHabit, Subject: "Habit", Title: "Vocabulary",
				PlannedStart: start.Add(55 * time.Minute), PlannedEnd: start.Add(70 * time.Minute), Minutes: 15,
				Habit: &models.HabitSessionDetail{HabitID: "h1"},
			},
		},
	}
}

func TestICS(t *testing.T) {
	out := ICS(testPlan())

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("output does not parse: %v\n%s", err, out)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events (breaks skipped), got %d", len(events))
	}

	first := events[0]
	if first.Id() != "s-1@studyflow" {
		t.Errorf("UID = %q", first.Id())
	}
	if got := first.GetProperty(ics.ComponentPropertySummary).Value; got != "Toán · Ôn PT bậc 2" {
		t.Errorf("SUMMARY = %q", got)
	}
	if got := first.GetProperty(ics.ComponentPropertyCategories).Value; got != "Toán" {
		t.Errorf("CATEGORIES = %q", got)
	}

	for _, want := range []string{
		"DTSTART:20260309T120000Z",
		"DTEND:20260309T124500Z",
		"DTSTAMP:20260309T080000Z",
		"COLOR:" + SubjectColor("Toán"),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestDescription(t *testing.T) {
	plan := testPlan()
	if got := Description(plan.Sessions[0]); got != "Solve 10 exercises • Explain Vieta" {
		t.Errorf("task description = %q", got)
	}
	if got := Description(plan.Sessions[2]); got != defaultDescription {
		t.Errorf("habit without criteria = %q", got)
	}
}

func TestSubjectColor(t *testing.T) {
	// "A" + "B" = 65 + 66 = 131, 131 % 6 = 5
	if got := SubjectColor("A B"); got != subjectPalette[5] {
		t.Errorf("SubjectColor(A B) = %s", got)
	}
	if SubjectColor("Math") != SubjectColor("Math") {
		t.Error("color must be stable")
	}
	if got := SubjectColor(""); got != subjectPalette[0] {
		t.Errorf("empty subject = %s", got)
	}
}

func TestWriteICS(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteICS(&buf, testPlan()); err != nil {
		t.Fatalf("WriteICS failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "BEGIN:VCALENDAR") {
		t.Errorf("unexpected output start: %q", buf.String()[:20])
	}
}
