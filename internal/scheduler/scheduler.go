package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

// DefaultHabitHorizonDays is how far ahead habits are planned when no task
// sets a later horizon.
const DefaultHabitHorizonDays = 14

var (
	ErrCannotPlan = errors.New("cannot generate plan")
	ErrNoTasks    = fmt.Errorf("%w: no tasks", ErrCannotPlan)
	ErrNoSlots    = fmt.Errorf("%w: no free slots", ErrCannotPlan)
)

// Input is everything one planning pass needs. The caller fetches it; the
// scheduler performs no I/O.
type Input struct {
	Tasks           []models.Task
	Slots           []models.FreeSlot
	Habits          []models.Habit
	Settings        models.Settings
	Now             time.Time
	PreviousVersion int // 0 when no plan exists yet
}

type Scheduler struct {
	ids   IDGenerator
	rules BreakRules
}

type Option func(*Scheduler)

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Scheduler) {
		s.ids = ids
	}
}

// WithBreakRules overrides the contiguity and long-focus thresholds.
func WithBreakRules(rules BreakRules) Option {
	return func(s *Scheduler) {
		s.rules = rules
	}
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		ids:   UUIDGenerator{},
		rules: DefaultBreakRules(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GeneratePlan builds the next plan version from the input.
func (s *Scheduler) GeneratePlan(in Input) (models.PlanRecord, error) {
	if len(in.Tasks) == 0 {
		return models.PlanRecord{}, ErrNoTasks
	}
	if len(in.Slots) == 0 {
		return models.PlanRecord{}, ErrNoSlots
	}

	settings := in.Settings
	models.ApplyDefaultSettings(&settings)
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return models.PlanRecord{}, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}

	version := max(in.PreviousVersion, 0) + 1
	now := ceilMinute(in.Now.In(loc))

	// Step 1: Normalize slots
	slots, warnings := NormalizeSlots(in.Slots)

	// Step 2: Split off tasks whose deadline already passed
	var unscheduled []models.Task
	var overdueSuggestions []models.PlanSuggestion
	for _, task := range in.Tasks {
		if task.Deadline.After(now) || task.RemainingMinutes() == 0 {
			continue
		}
		unscheduled = append(unscheduled, task)
		overdueSuggestions = append(overdueSuggestions, models.PlanSuggestion{
			Type: models.SuggestExtendDeadline,
			Message: fmt.Sprintf("%q was due %s with %s left. Extend the deadline to plan it.",
				task.DisplayName(), task.Deadline.In(loc).Format(constants.DateTimeFormat), utils.FormatMinutes(task.RemainingMinutes())),
			TaskID: task.ID,
		})
	}
	tasks := PrioritizeTasks(in.Tasks, now)

	// Step 3: Build day buckets up to the horizon
	horizon := planHorizon(now, tasks, len(in.Habits) > 0)
	buckets := buildBuckets(now, horizon, slots, settings, loc)

	alloc := &allocator{
		buckets:  buckets,
		settings: settings,
		loc:      loc,
		version:  version,
		ids:      s.ids,
	}

	var suggestions []models.PlanSuggestion
	demand := 0
	for _, task := range tasks {
		demand += task.RemainingMinutes()
	}
	if capacity := totalAllowed(buckets); demand > capacity {
		suggestions = append(suggestions, models.PlanSuggestion{
			Type: models.SuggestIncreaseFreeTime,
			Message: fmt.Sprintf("Tasks need %s but only %s of free time is available before the last deadline. Add more free slots.",
				utils.FormatMinutes(demand), utils.FormatMinutes(capacity)),
		})
	}
	for _, w := range warnings {
		suggestions = append(suggestions, models.PlanSuggestion{
			Type:    models.SuggestIncreaseFreeTime,
			Message: w,
		})
	}

	// Step 4: Habits take their time first
	sessions, habitSuggestions := alloc.scheduleHabits(in.Habits)
	suggestions = append(suggestions, habitSuggestions...)
	suggestions = append(suggestions, overdueSuggestions...)

	// Step 5: Allocate tasks in priority order
	for _, task := range tasks {
		res := alloc.allocateTask(task)
		sessions = append(sessions, res.sessions...)
		if res.leftover > 0 {
			unscheduled = append(unscheduled, task)
		}
		suggestions = append(suggestions, res.suggestions...)
	}

	if len(unscheduled) > 0 {
		suggestions = append(suggestions, tuningSuggestions(settings, buckets)...)
	}

	// Step 6: Insert breaks
	sessions = InsertBreaks(sessions, settings.BreakPreset, loc, s.rules, s.ids, version)

	if unscheduled == nil {
		unscheduled = []models.Task{}
	}
	if suggestions == nil {
		suggestions = []models.PlanSuggestion{}
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return models.PlanRecord{
		PlanVersion:      version,
		Sessions:         sessions,
		UnscheduledTasks: unscheduled,
		Suggestions:      suggestions,
		GeneratedAt:      in.Now,
	}, nil
}

// planHorizon is the latest pending deadline, or two weeks out when only
// habits need planning.
func planHorizon(now time.Time, tasks []models.Task, hasHabits bool) time.Time {
	horizon := now
	for _, task := range tasks {
		if task.Deadline.After(horizon) {
			horizon = task.Deadline
		}
	}
	if hasHabits {
		habitHorizon := now.AddDate(0, 0, DefaultHabitHorizonDays)
		if len(tasks) == 0 && habitHorizon.After(horizon) {
			horizon = habitHorizon
		}
	}
	return horizon
}

// tuningSuggestions points at settings that hold capacity back when work
// did not fit.
func tuningSuggestions(settings models.Settings, buckets []*dayBucket) []models.PlanSuggestion {
	var out []models.PlanSuggestion
	if settings.BufferPercent >= constants.ReduceBufferThreshold {
		out = append(out, models.PlanSuggestion{
			Type: models.SuggestReduceBuffer,
			Message: fmt.Sprintf("Buffer is %.0f%% of every slot. Lowering it frees time for unplanned tasks.",
				settings.BufferPercent*100),
		})
	}
	capped := 0
	for _, b := range buckets {
		if b.cappedByLimit {
			capped++
		}
	}
	if capped > 0 {
		out = append(out, models.PlanSuggestion{
			Type: models.SuggestAdjustDailyLimit,
			Message: fmt.Sprintf("The daily limit of %s cut %d day(s) short. Raise it to use more of your free slots.",
				utils.FormatMinutes(settings.DailyLimitMinutes), capped),
		})
	}
	return out
}

func ceilMinute(t time.Time) time.Time {
	truncated := t.Truncate(time.Minute)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(time.Minute)
}
