package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
)

// ErrNotFound is returned when a record does not exist or is soft-deleted.
var ErrNotFound = errors.New("not found")

// PlanSummary describes one stored plan version without its sessions.
type PlanSummary struct {
	Version          int
	GeneratedAt      time.Time
	SessionCount     int
	UnscheduledCount int
	SuggestionCount  int
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Tasks
	AddTask(models.Task) error
	GetTask(id string) (models.Task, error)
	GetAllTasks() ([]models.Task, error)
	GetAllTasksIncludingDeleted() ([]models.Task, error)
	UpdateTask(models.Task) error
	DeleteTask(id string) error
	RestoreTask(id string) error

	// Free slots
	AddSlot(models.FreeSlot) error
	GetAllSlots() ([]models.FreeSlot, error)
	DeleteSlot(id string) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetAllHabits(includeDeleted bool) ([]models.Habit, error)
	DeleteHabit(id string) error

	// Plans
	// SavePlan stores a new plan version and prunes versions beyond the
	// retention limit.
	SavePlan(models.PlanRecord) error
	GetLatestPlan() (models.PlanRecord, error)
	GetPlan(version int) (models.PlanRecord, error)
	// LatestPlanVersion returns 0 when no plan has been saved yet.
	LatestPlanVersion() (int, error)
	ListPlans() ([]PlanSummary, error)
	// UpdateSessionStatus changes the status of a session in the latest plan
	// and returns the updated session.
	UpdateSessionStatus(sessionID string, status models.SessionStatus, at time.Time) (models.Session, error)

	// Feedback
	AddFeedback(models.Feedback) error
	GetLatestFeedback() (models.Feedback, error)
	GetAllFeedback() ([]models.Feedback, error)

	// Utils
	GetConfigPath() string
}
