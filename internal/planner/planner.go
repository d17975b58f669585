package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/studyflow/internal/backup"
	"github.com/julianstephens/studyflow/internal/lock"
	"github.com/julianstephens/studyflow/internal/logger"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/optimizer"
	"github.com/julianstephens/studyflow/internal/scheduler"
	"github.com/julianstephens/studyflow/internal/storage"
)

// Backuper snapshots the store before a rebuild.
type Backuper interface {
	CreateBackup() (string, error)
}

// Result is the outcome of one regeneration.
type Result struct {
	Plan        models.PlanRecord
	Adjustments []optimizer.Adjustment
	BackupPath  string
}

// Service runs load -> tune -> generate -> save against a store.
type Service struct {
	store     storage.Provider
	scheduler *scheduler.Scheduler
	backups   Backuper
	lockDir   string
	timezone  string
	now       func() time.Time
}

type Option func(*Service)

// WithScheduler replaces the default scheduler.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(svc *Service) {
		svc.scheduler = s
	}
}

// WithBackups snapshots the store before every regeneration.
func WithBackups(b Backuper) Option {
	return func(svc *Service) {
		svc.backups = b
	}
}

// WithLockDir serializes regenerations across processes through a lockfile in dir.
func WithLockDir(dir string) Option {
	return func(svc *Service) {
		svc.lockDir = dir
	}
}

// WithTimezone overrides the stored timezone setting.
func WithTimezone(tz string) Option {
	return func(svc *Service) {
		svc.timezone = tz
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		svc.now = now
	}
}

func New(store storage.Provider, opts ...Option) *Service {
	svc := &Service{
		store:     store,
		scheduler: scheduler.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Inputs is the snapshot of stored state a plan is generated from.
type Inputs struct {
	Tasks          []models.Task
	Slots          []models.FreeSlot
	Habits         []models.Habit
	Settings       models.Settings
	CurrentVersion int
}

// LoadInputs reads tasks, slots, habits, settings and the current plan
// version concurrently.
func (s *Service) LoadInputs(ctx context.Context) (Inputs, error) {
	var in Inputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		tasks, err := s.store.GetAllTasks()
		if err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		in.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		slots, err := s.store.GetAllSlots()
		if err != nil {
			return fmt.Errorf("failed to load free slots: %w", err)
		}
		in.Slots = slots
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		habits, err := s.store.GetAllHabits(false)
		if err != nil {
			return fmt.Errorf("failed to load habits: %w", err)
		}
		in.Habits = habits
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		settings, err := s.store.GetSettings()
		if errors.Is(err, storage.ErrNotFound) {
			settings = models.DefaultSettings()
		} else if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		in.Settings = settings
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		version, err := s.store.LatestPlanVersion()
		if err != nil {
			return fmt.Errorf("failed to load plan version: %w", err)
		}
		in.CurrentVersion = version
		return nil
	})

	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	if s.timezone != "" {
		in.Settings.Timezone = s.timezone
	}
	return in, nil
}

// Regenerate builds and stores the next plan version. Capacity shortfalls
// surface as suggestions on the plan; scheduler.ErrCannotPlan is returned
// when there is nothing to plan with.
func (s *Service) Regenerate(ctx context.Context) (Result, error) {
	var result Result

	if s.lockDir != "" {
		l, err := lock.Acquire(s.lockDir)
		if err != nil {
			return result, err
		}
		defer func() {
			if err := l.Release(); err != nil {
				logger.Warn("Failed to release plan lock", "error", err)
			}
		}()
	}

	in, err := s.LoadInputs(ctx)
	if err != nil {
		return result, err
	}

	tuned, adjustments, err := optimizer.NewFeedbackAnalyzer(s.store).Tune(in.Settings)
	if err != nil {
		return result, err
	}
	for _, adj := range adjustments {
		logger.Debug("Applied feedback tuning", "label", adj.Label, "type", adj.Type,
			"from", adj.CurrentValue, "to", adj.SuggestedValue)
	}
	result.Adjustments = adjustments

	plan, err := s.scheduler.GeneratePlan(scheduler.Input{
		Tasks:           in.Tasks,
		Slots:           in.Slots,
		Habits:          in.Habits,
		Settings:        tuned,
		Now:             s.now(),
		PreviousVersion: in.CurrentVersion,
	})
	if err != nil {
		return result, err
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if s.backups != nil {
		path, err := s.backups.CreateBackup()
		switch {
		case errors.Is(err, backup.ErrNoDatabase):
		case err != nil:
			logger.Warn("Failed to back up before saving plan", "error", err)
		default:
			result.BackupPath = path
		}
	}

	if err := s.store.SavePlan(plan); err != nil {
		return result, fmt.Errorf("failed to save plan: %w", err)
	}

	logger.Info("Generated plan",
		"version", plan.PlanVersion,
		"sessions", len(plan.Sessions),
		"unscheduled", len(plan.UnscheduledTasks))
	for _, sg := range plan.Suggestions {
		logger.Debug("Plan suggestion", "type", sg.Type, "task", sg.TaskID, "habit", sg.HabitID, "message", sg.Message)
	}

	result.Plan = plan
	return result, nil
}
