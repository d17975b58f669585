package scheduler

import (
	"testing"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
)

func TestPrioritizeTasks(t *testing.T) {
	now := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	soon := now.Add(24 * time.Hour)
	later := now.Add(72 * time.Hour)

	tasks := []models.Task{
		{ID: "late", Deadline: later, Importance: 3},
		{ID: "past", Deadline: now.Add(-time.Hour)},
		{ID: "soon-low", Deadline: soon, Importance: 1},
		{ID: "soon-high-easy", Deadline: soon, Importance: 3, Difficulty: 1},
		{ID: "soon-high-hard-small", Deadline: soon, Importance: 3, Difficulty: 5, EstimatedMinutes: 30},
		{ID: "soon-high-hard-big", Deadline: soon, Importance: 3, Difficulty: 5, EstimatedMinutes: 90},
		{ID: "due-now", Deadline: now},
	}

	got := PrioritizeTasks(tasks, now)
	want := []string{"soon-high-hard-big", "soon-high-hard-small", "soon-high-easy", "soon-low", "late"}

	if len(got) != len(want) {
		t.Fatalf("Expected %d tasks, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestPrioritizeTasks_StableOnTies(t *testing.T) {
	now := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	deadline := now.Add(48 * time.Hour)
	tasks := []models.Task{
		{ID: "a", Deadline: deadline},
		{ID: "b", Deadline: deadline},
		{ID: "c", Deadline: deadline},
	}

	got := PrioritizeTasks(tasks, now)
	for i, id := range []string{"a", "b", "c"} {
		if got[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}
