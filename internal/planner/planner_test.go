package planner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/studyflow/internal/lock"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/scheduler"
	"github.com/julianstephens/studyflow/internal/storage/sqlite"
)

var testNow = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

type fakeBackups struct {
	calls int
	err   error
}

func (f *fakeBackups) CreateBackup() (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "/tmp/backup.db", nil
}

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	return store
}

func seedPlanInputs(t *testing.T, store *sqlite.Store) {
	t.Helper()
	task := models.Task{
		ID:               "t1",
		Subject:          "Math",
		Title:            "Quadratic equations",
		Deadline:         testNow.Add(72 * time.Hour),
		Difficulty:       3,
		EstimatedMinutes: 90,
	}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	for _, day := range []time.Weekday{time.Monday, time.Tuesday} {
		if err := store.AddSlot(models.FreeSlot{ID: day.String(), Weekday: day, StartMin: 18 * 60, EndMin: 21 * 60}); err != nil {
			t.Fatalf("AddSlot failed: %v", err)
		}
	}
}

func newTestService(store *sqlite.Store, opts ...Option) *Service {
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithScheduler(scheduler.New(scheduler.WithIDGenerator(&scheduler.SequenceGenerator{}))),
	}
	return New(store, append(base, opts...)...)
}

func TestLoadInputs(t *testing.T) {
	store := setupTestStore(t)
	seedPlanInputs(t, store)

	in, err := newTestService(store, WithTimezone("Asia/Ho_Chi_Minh")).LoadInputs(context.Background())
	if err != nil {
		t.Fatalf("LoadInputs failed: %v", err)
	}
	if len(in.Tasks) != 1 || len(in.Slots) != 2 || len(in.Habits) != 0 {
		t.Errorf("unexpected inputs: %d tasks, %d slots, %d habits", len(in.Tasks), len(in.Slots), len(in.Habits))
	}
	if in.Settings.Timezone != "Asia/Ho_Chi_Minh" {
		t.Errorf("timezone override not applied: %s", in.Settings.Timezone)
	}
	if in.CurrentVersion != 0 {
		t.Errorf("expected no plan yet, got version %d", in.CurrentVersion)
	}
}

func TestRegenerateSavesVersions(t *testing.T) {
	store := setupTestStore(t)
	seedPlanInputs(t, store)
	backups := &fakeBackups{}
	svc := newTestService(store, WithBackups(backups))

	for want := 1; want <= 2; want++ {
		res, err := svc.Regenerate(context.Background())
		if err != nil {
			t.Fatalf("Regenerate failed: %v", err)
		}
		if res.Plan.PlanVersion != want {
			t.Errorf("version = %d, want %d", res.Plan.PlanVersion, want)
		}
		if res.BackupPath == "" {
			t.Error("expected a backup path")
		}
	}
	if backups.calls != 2 {
		t.Errorf("expected 2 backups, got %d", backups.calls)
	}

	latest, err := store.GetLatestPlan()
	if err != nil {
		t.Fatalf("GetLatestPlan failed: %v", err)
	}
	if latest.PlanVersion != 2 || len(latest.Sessions) == 0 {
		t.Errorf("unexpected stored plan: version %d with %d sessions", latest.PlanVersion, len(latest.Sessions))
	}
}

func TestRegenerateAppliesFeedback(t *testing.T) {
	store := setupTestStore(t)
	seedPlanInputs(t, store)
	if err := store.AddFeedback(models.Feedback{ID: "f1", Label: models.FeedbackTooDense, SubmittedAt: testNow}); err != nil {
		t.Fatalf("AddFeedback failed: %v", err)
	}

	res, err := newTestService(store).Regenerate(context.Background())
	if err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	if len(res.Adjustments) != 1 {
		t.Fatalf("expected one adjustment, got %+v", res.Adjustments)
	}

	stored, err := store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if stored.BufferPercent != models.DefaultSettings().BufferPercent {
		t.Errorf("stored buffer changed to %v", stored.BufferPercent)
	}
}

func TestRegenerateWithoutInputs(t *testing.T) {
	store := setupTestStore(t)
	backups := &fakeBackups{}

	_, err := newTestService(store, WithBackups(backups)).Regenerate(context.Background())
	if !errors.Is(err, scheduler.ErrCannotPlan) {
		t.Errorf("expected ErrCannotPlan, got %v", err)
	}
	if backups.calls != 0 {
		t.Error("no backup should be taken when nothing is saved")
	}
}

func TestRegenerateHonorsLock(t *testing.T) {
	store := setupTestStore(t)
	seedPlanInputs(t, store)
	dir := t.TempDir()

	held, err := lock.Acquire(dir)
	if err != nil {
		t.Fatalf("failed to take lock: %v", err)
	}

	svc := newTestService(store, WithLockDir(dir))
	if _, err := svc.Regenerate(context.Background()); !errors.Is(err, lock.ErrLocked) {
		t.Errorf("expected ErrLocked while held, got %v", err)
	}

	if err := held.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Regenerate(context.Background()); err != nil {
		t.Errorf("Regenerate after release failed: %v", err)
	}
}

func TestRegenerateCanceled(t *testing.T) {
	store := setupTestStore(t)
	seedPlanInputs(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestService(store).Regenerate(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if v, _ := store.LatestPlanVersion(); v != 0 {
		t.Errorf("canceled regeneration saved version %d", v)
	}
}
