package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

func newTestScheduler() *Scheduler {
	return New(WithIDGenerator(&SequenceGenerator{}))
}

func hasSuggestion(plan models.PlanRecord, typ models.SuggestionType, taskID string) bool {
	for _, s := range plan.Suggestions {
		if (typ == "" || s.Type == typ) && (taskID == "" || s.TaskID == taskID) {
			return true
		}
	}
	return false
}

// checkPlanInvariants asserts the properties every generated plan must hold.
func checkPlanInvariants(t *testing.T, in Input, plan models.PlanRecord) {
	t.Helper()
	loc, err := utils.LoadLocation(in.Settings.Timezone)
	if err != nil {
		t.Fatalf("Bad timezone: %v", err)
	}

	perDay := map[string]int{}
	perTask := map[string]int{}
	for i, s := range plan.Sessions {
		if err := s.Validate(); err != nil {
			t.Errorf("Invalid session: %v", err)
		}
		if s.PlanVersion != plan.PlanVersion {
			t.Errorf("Session %s has version %d, plan is %d", s.ID, s.PlanVersion, plan.PlanVersion)
		}
		if i > 0 && s.PlannedStart.Before(plan.Sessions[i-1].PlannedStart) {
			t.Errorf("Sessions out of order at %d", i)
		}
		if s.IsBreak() {
			continue
		}
		if s.Minutes < 1 || s.Minutes > MaxSessionMinutes {
			t.Errorf("Session %s has %d minutes", s.ID, s.Minutes)
		}
		perDay[utils.DateKey(s.PlannedStart, loc)] += s.Minutes
		perTask[s.TaskID()] += s.Minutes
	}

	for day, used := range perDay {
		if used > in.Settings.DailyLimitMinutes {
			t.Errorf("Day %s uses %d minutes, limit is %d", day, used, in.Settings.DailyLimitMinutes)
		}
	}

	unscheduled := map[string]bool{}
	for _, task := range plan.UnscheduledTasks {
		unscheduled[task.ID] = true
	}
	for _, task := range in.Tasks {
		deadlineDay := utils.DateKey(task.Deadline, loc)
		for _, s := range plan.Sessions {
			if s.TaskID() == task.ID && utils.DateKey(s.PlannedStart, loc) > deadlineDay {
				t.Errorf("Session %s for %s starts after the deadline day %s", s.ID, task.ID, deadlineDay)
			}
		}
		if perTask[task.ID]+task.ProgressMinutes == task.EstimatedMinutes || task.RemainingMinutes() == 0 {
			continue
		}
		if !unscheduled[task.ID] {
			t.Errorf("Task %s is short of its estimate but not unscheduled", task.ID)
		}
		if !hasSuggestion(plan, "", "") {
			t.Errorf("Task %s is unscheduled without suggestions", task.ID)
		}
	}
}

func TestGeneratePlan_QuadraticEquationsReview(t *testing.T) {
	loc := testLocation(t)
	now := at(t, loc, "2025-01-06 08:00") // Monday
	in := Input{
		Tasks: []models.Task{{
			ID:               "task-1",
			Subject:          "Toán",
			Title:            "Ôn PT bậc 2",
			Deadline:         now.AddDate(0, 0, 5),
			Difficulty:       4,
			EstimatedMinutes: 240,
			SuccessCriteria:  []string{"Solve 10 exercises"},
		}},
		Slots: []models.FreeSlot{
			slot(time.Monday, "19:00", "20:30"),
			slot(time.Wednesday, "19:30", "21:00"),
		},
		Settings: testSettings(),
		Now:      now,
	}

	plan, err := newTestScheduler().GeneratePlan(in)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	checkPlanInvariants(t, in, plan)

	if plan.PlanVersion != 1 {
		t.Errorf("Expected version 1, got %d", plan.PlanVersion)
	}

	var focus []models.Session
	for _, s := range plan.Sessions {
		if !s.IsBreak() {
			focus = append(focus, s)
		}
	}
	wantMinutes := []int{45, 31, 45, 31}
	if len(focus) != len(wantMinutes) {
		t.Fatalf("Expected %d study sessions, got %d", len(wantMinutes), len(focus))
	}
	for i, m := range wantMinutes {
		if focus[i].Minutes != m {
			t.Errorf("Session %d: expected %d minutes, got %d", i, m, focus[i].Minutes)
		}
		if focus[i].Minutes > 45 {
			t.Errorf("Session %d exceeds focus length", i)
		}
	}
	if focus[0].BufferMinutes != 7 {
		t.Errorf("Expected buffer round(45*0.15)=7, got %d", focus[0].BufferMinutes)
	}
	if got := focus[0].SuccessCriteria(); len(got) != 1 || got[0] != "Solve 10 exercises" {
		t.Errorf("Expected criteria snapshot, got %v", got)
	}
	if !focus[0].PlannedStart.Equal(at(t, loc, "2025-01-06 19:00")) {
		t.Errorf("Expected first session Monday 19:00, got %v", focus[0].PlannedStart)
	}
	// the second Monday session follows a 10 minute break
	if !focus[1].PlannedStart.Equal(at(t, loc, "2025-01-06 19:55")) {
		t.Errorf("Expected second session at 19:55, got %v", focus[1].PlannedStart)
	}
	if len(plan.Sessions) != 6 {
		t.Errorf("Expected 4 sessions and 2 breaks, got %d", len(plan.Sessions))
	}

	if len(plan.UnscheduledTasks) != 1 || plan.UnscheduledTasks[0].ID != "task-1" {
		t.Fatalf("Expected task-1 unscheduled, got %v", plan.UnscheduledTasks)
	}
	if !hasSuggestion(plan, models.SuggestReduceDuration, "task-1") {
		t.Errorf("Expected a reduce_duration suggestion, got %+v", plan.Suggestions)
	}
	if plan.Suggestions[0].Type != models.SuggestIncreaseFreeTime || plan.Suggestions[0].TaskID != "" {
		t.Errorf("Expected the global capacity suggestion first, got %+v", plan.Suggestions[0])
	}
}

func TestGeneratePlan_FitsWhenCapacityAllows(t *testing.T) {
	loc := testLocation(t)
	now := at(t, loc, "2025-01-06 08:00")
	in := Input{
		Tasks: []models.Task{
			{ID: "essay", Subject: "Văn", Title: "Essay", Deadline: now.AddDate(0, 0, 6), EstimatedMinutes: 120, ProgressMinutes: 30},
			{ID: "quiz", Subject: "Sử", Title: "Quiz prep", Deadline: now.AddDate(0, 0, 2), EstimatedMinutes: 60, Importance: 3},
		},
		Slots: []models.FreeSlot{
			slot(time.Monday, "18:00", "21:00"),
			slot(time.Tuesday, "18:00", "21:00"),
			slot(time.Thursday, "18:00", "21:00"),
		},
		Settings: testSettings(),
		Now:      now,
	}

	plan, err := newTestScheduler().GeneratePlan(in)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	checkPlanInvariants(t, in, plan)

	if len(plan.UnscheduledTasks) != 0 {
		t.Errorf("Expected everything scheduled, got %v", plan.UnscheduledTasks)
	}
	if len(plan.Suggestions) != 0 {
		t.Errorf("Expected no suggestions, got %+v", plan.Suggestions)
	}
	first := plan.Sessions[0]
	if first.TaskID() != "quiz" {
		t.Errorf("Expected the earlier deadline first, got %s", first.TaskID())
	}
}

func TestGeneratePlan_Milestones(t *testing.T) {
	loc := testLocation(t)
	now := at(t, loc, "2025-01-06 08:00")
	in := Input{
		Tasks: []models.Task{{
			ID:               "project",
			Subject:          "Lý",
			Title:            "Lab report",
			Deadline:         now.AddDate(0, 0, 3),
			EstimatedMinutes: 80,
			Milestones: []models.Milestone{
				{Title: "Collect data", MinutesEstimate: 50},
				{Title: "Write up", MinutesEstimate: 20},
			},
		}},
		Slots:    []models.FreeSlot{slot(time.Tuesday, "18:00", "21:00")},
		Settings: testSettings(),
		Now:      now,
	}

	plan, err := newTestScheduler().GeneratePlan(in)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	checkPlanInvariants(t, in, plan)

	minutesByMilestone := map[string]int{}
	for _, s := range plan.TrackedSessions() {
		minutesByMilestone[s.Task.MilestoneTitle] += s.Minutes
	}
	if minutesByMilestone["Collect data"] != 50 || minutesByMilestone["Write up"] != 20 {
		t.Errorf("Unexpected milestone split: %v", minutesByMilestone)
	}
	if minutesByMilestone[""] != 0 {
		t.Errorf("No session should be outside a milestone, got %d minutes", minutesByMilestone[""])
	}

	// 10 minutes are not covered by any milestone
	if len(plan.UnscheduledTasks) != 1 {
		t.Fatalf("Expected the task unscheduled for its uncovered minutes")
	}
	if !hasSuggestion(plan, models.SuggestReduceDuration, "project") {
		t.Errorf("Expected reduce_duration, got %+v", plan.Suggestions)
	}
}

func TestGeneratePlan_Habits(t *testing.T) {
	loc := testLocation(t)
	now := at(t, loc, "2025-01-06 08:00")
	wednesday := time.Wednesday
	in := Input{
		Tasks: []models.Task{{ID: "t", Title: "Reading", Deadline: now.AddDate(0, 0, 3), EstimatedMinutes: 30}},
		Slots: []models.FreeSlot{
			slot(time.Monday, "19:00", "20:00"),
			slot(time.Wednesday, "19:00", "20:00"),
		},
		Habits: []models.Habit{
			{ID: "vocab", Name: "Vocabulary", Cadence: models.HabitDaily, Minutes: 15},
			{ID: "review", Name: "Weekly review", Cadence: models.HabitWeekly, Weekday: &wednesday, Minutes: 20},
		},
		Settings: testSettings(),
		Now:      now,
	}

	plan, err := newTestScheduler().GeneratePlan(in)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	checkPlanInvariants(t, in, plan)

	counts := map[string]int{}
	for _, s := range plan.TrackedSessions() {
		if s.Source == models.SourceHabit {
			counts[s.HabitID()]++
			if s.Subject != "Habit" {
				t.Errorf("Expected habit subject, got %q", s.Subject)
			}
		}
	}
	if counts["vocab"] != 2 || counts["review"] != 1 {
		t.Errorf("Unexpected habit occurrences: %v", counts)
	}

	first := plan.Sessions[0]
	if first.HabitID() != "vocab" || !first.PlannedStart.Equal(at(t, loc, "2025-01-06 19:00")) {
		t.Errorf("Expected habits placed before tasks, got %+v", first)
	}
	if got := first.SuccessCriteria(); len(got) != 1 || got[0] != "Kept up Vocabulary for 15 minutes" {
		t.Errorf("Unexpected habit criteria %v", got)
	}
}

func TestGeneratePlan_HabitWithoutRoom(t *testing.T) {
	loc := testLocation(t)
	now := at(t, loc, "2025-01-06 21:00") // Monday slot already over
	in := Input{
		Tasks:    []models.Task{{ID: "t", Title: "Reading", Deadline: now.AddDate(0, 0, 1), EstimatedMinutes: 30}},
		Slots:    []models.FreeSlot{slot(time.Monday, "19:00", "20:00")},
		Habits:   []models.Habit{{ID: "vocab", Name: "Vocabulary", Cadence: models.HabitDaily, Minutes: 15}},
		Settings: testSettings(),
		Now:      now,
	}

	plan, err := newTestScheduler().GeneratePlan(in)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	checkPlanInvariants(t, in, plan)

	found := false
	for _, s := range plan.Suggestions {
		if s.HabitID == "vocab" && s.Type == models.SuggestIncreaseFreeTime {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a habit suggestion, got %+v", plan.Suggestions)
	}
	if len(plan.Sessions) != 0 {
		t.Errorf("Expected no sessions, got %d", len(plan.Sessions))
	}
}

func TestGeneratePlan_HabitsOnlyHorizon(t *testing.T) {
	loc := testLocation(t)
	now := at(t, loc, "2025-01-06 08:00")
	in := Input{
		Tasks:    []models.Task{{ID: "done", Title: "Old", Deadline: now.Add(-time.Hour), EstimatedMinutes: 30, ProgressMinutes: 30}},
		Slots:    []models.FreeSlot{slot(time.Monday, "19:00", "20:00")},
		Habits:   []models.Habit{{ID: "vocab", Name: "Vocabulary", Cadence: models.HabitDaily, Minutes: 15}},
		Settings: testSettings(),
		Now:      now,
	}

	plan, err := newTestScheduler().GeneratePlan(in)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	// Mondays 6, 13 and 20 fall within two weeks
	if got := len(plan.TrackedSessions()); got != 3 {
		t.Errorf("Expected 3 habit sessions over two weeks, got %d", got)
	}
	if len(plan.UnscheduledTasks) != 0 {
		t.Errorf("A finished overdue task needs no attention, got %v", plan.UnscheduledTasks)
	}
}

func TestGeneratePlan_OverdueAndNoEligibleDays(t *testing.T) {
	loc := testLocation(t)
	now := at(t, loc, "2025-01-07 08:00") // Tuesday
	in := Input{
		Tasks: []models.Task{
			{ID: "overdue", Title: "Late", Deadline: now.Add(-2 * time.Hour), EstimatedMinutes: 60},
			{ID: "tomorrow", Title: "Soon", Deadline: at(t, loc, "2025-01-08 07:00"), EstimatedMinutes: 30},
			{ID: "next-week", Title: "Later", Deadline: at(t, loc, "2025-01-13 23:00"), EstimatedMinutes: 30},
		},
		Slots:    []models.FreeSlot{slot(time.Monday, "19:00", "20:00")},
		Settings: testSettings(),
		Now:      now,
	}

	plan, err := newTestScheduler().GeneratePlan(in)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	checkPlanInvariants(t, in, plan)

	if !hasSuggestion(plan, models.SuggestExtendDeadline, "overdue") {
		t.Errorf("Expected extend_deadline for the overdue task")
	}
	if !hasSuggestion(plan, models.SuggestIncreaseFreeTime, "tomorrow") {
		t.Errorf("Expected increase_free_time for a task with no eligible day")
	}
	ids := map[string]bool{}
	for _, task := range plan.UnscheduledTasks {
		ids[task.ID] = true
	}
	if !ids["overdue"] || !ids["tomorrow"] || ids["next-week"] {
		t.Errorf("Unexpected unscheduled set %v", ids)
	}
}

func TestGeneratePlan_TuningSuggestions(t *testing.T) {
	loc := testLocation(t)
	now := at(t, loc, "2025-01-06 08:00")
	settings := testSettings()
	settings.DailyLimitMinutes = 30
	settings.BufferPercent = 0.25
	in := Input{
		Tasks:    []models.Task{{ID: "big", Title: "Thesis", Deadline: now.AddDate(0, 0, 1), EstimatedMinutes: 300}},
		Slots:    []models.FreeSlot{slot(time.Monday, "09:00", "12:00"), slot(time.Tuesday, "09:00", "12:00")},
		Settings: settings,
		Now:      now,
	}

	plan, err := newTestScheduler().GeneratePlan(in)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	checkPlanInvariants(t, in, plan)

	if !hasSuggestion(plan, models.SuggestReduceBuffer, "") {
		t.Errorf("Expected reduce_buffer, got %+v", plan.Suggestions)
	}
	if !hasSuggestion(plan, models.SuggestAdjustDailyLimit, "") {
		t.Errorf("Expected adjust_daily_limit, got %+v", plan.Suggestions)
	}
}

func TestGeneratePlan_Versioning(t *testing.T) {
	loc := testLocation(t)
	now := at(t, loc, "2025-01-06 08:00")
	in := Input{
		Tasks:           []models.Task{{ID: "t", Title: "Reading", Deadline: now.AddDate(0, 0, 3), EstimatedMinutes: 30}},
		Slots:           []models.FreeSlot{slot(time.Monday, "19:00", "20:00")},
		Settings:        testSettings(),
		Now:             now,
		PreviousVersion: 3,
	}

	plan, err := newTestScheduler().GeneratePlan(in)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if plan.PlanVersion != 4 {
		t.Errorf("Expected version 4, got %d", plan.PlanVersion)
	}
	if !plan.GeneratedAt.Equal(now) {
		t.Errorf("Expected GeneratedAt %v, got %v", now, plan.GeneratedAt)
	}
	checkPlanInvariants(t, in, plan)
}

func TestGeneratePlan_Deterministic(t *testing.T) {
	loc := testLocation(t)
	now := at(t, loc, "2025-01-06 08:00")
	in := Input{
		Tasks:    []models.Task{{ID: "t", Title: "Reading", Deadline: now.AddDate(0, 0, 9), EstimatedMinutes: 200}},
		Slots:    []models.FreeSlot{slot(time.Monday, "19:00", "21:00"), slot(time.Saturday, "08:00", "10:00")},
		Settings: testSettings(),
		Now:      now,
	}

	first, err := newTestScheduler().GeneratePlan(in)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	second, err := newTestScheduler().GeneratePlan(in)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if len(first.Sessions) != len(second.Sessions) {
		t.Fatalf("Session counts differ: %d vs %d", len(first.Sessions), len(second.Sessions))
	}
	for i := range first.Sessions {
		a, b := first.Sessions[i], second.Sessions[i]
		if a.ID != b.ID || !a.PlannedStart.Equal(b.PlannedStart) || a.Minutes != b.Minutes {
			t.Errorf("Session %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestGeneratePlan_Preconditions(t *testing.T) {
	now := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	s := newTestScheduler()

	_, err := s.GeneratePlan(Input{Slots: []models.FreeSlot{slot(time.Monday, "19:00", "20:00")}, Now: now})
	if !errors.Is(err, ErrNoTasks) || !errors.Is(err, ErrCannotPlan) {
		t.Errorf("Expected ErrNoTasks, got %v", err)
	}

	_, err = s.GeneratePlan(Input{Tasks: []models.Task{{ID: "t", Deadline: now.Add(time.Hour)}}, Now: now})
	if !errors.Is(err, ErrNoSlots) || !errors.Is(err, ErrCannotPlan) {
		t.Errorf("Expected ErrNoSlots, got %v", err)
	}

	_, err = s.GeneratePlan(Input{
		Tasks:    []models.Task{{ID: "t", Deadline: now.Add(time.Hour)}},
		Slots:    []models.FreeSlot{slot(time.Monday, "19:00", "20:00")},
		Settings: models.Settings{Timezone: "Mars/Olympus"},
		Now:      now,
	})
	if err == nil || errors.Is(err, ErrCannotPlan) {
		t.Errorf("Expected a timezone error, got %v", err)
	}
}
