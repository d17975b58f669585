package system

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/studyflow/internal/backup"
	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/keyring"
	"github.com/julianstephens/studyflow/internal/storage"
	"github.com/julianstephens/studyflow/internal/utils"
	"github.com/julianstephens/studyflow/internal/validation"
)

type DoctorCmd struct{}

type checkLevel int

const (
	levelFail checkLevel = iota
	levelWarn
)

type check struct {
	name    string
	level   checkLevel
	needsDB bool
	sqlite  bool
	run     func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Database reachable", level: levelFail, run: checkDBReachable},
	{name: "Schema version", level: levelFail, needsDB: true, run: checkSchemaVersion},
	{name: "Backups present", level: levelWarn, sqlite: true, run: checkBackupsPresent},
	{name: "Settings", level: levelFail, needsDB: true, run: checkSettings},
	{name: "Data validation", level: levelFail, needsDB: true, run: checkValidation},
	{name: "Plan conflicts", level: levelWarn, needsDB: true, run: checkPlanConflicts},
	{name: "Clock/timezone", level: levelFail, run: checkClockTimezone},
	{name: "OS keyring", level: levelWarn, run: checkKeyring},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	out := ctx.Out()
	fmt.Fprintln(out, "Running diagnostics...")
	fmt.Fprintln(out)

	hasError := false
	dbReachable := false
	for _, c := range checks {
		if c.sqlite && !ctx.IsSQLite() {
			fmt.Fprintf(out, "⊘ %s: SKIPPED (not a SQLite store)\n", c.name)
			continue
		}
		if c.needsDB && !dbReachable {
			fmt.Fprintf(out, "⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		report(out, c, err)
		if err != nil && c.level == levelFail {
			hasError = true
		}
		if c.name == "Database reachable" && err == nil {
			dbReachable = true
		}
	}

	fmt.Fprintln(out)
	if hasError {
		fmt.Fprintln(out, "Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Fprintln(out, "All diagnostics passed!")
	return nil
}

func report(out io.Writer, c check, err error) {
	switch {
	case err == nil:
		fmt.Fprintf(out, "✓ %s: OK\n", c.name)
	case c.level == levelWarn:
		fmt.Fprintf(out, "⚠ %s: WARNING\n", c.name)
		fmt.Fprintf(out, "   %v\n", err)
	default:
		fmt.Fprintf(out, "❌ %s: FAIL\n", c.name)
		fmt.Fprintf(out, "   Error: %v\n", err)
	}
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	_, err := ctx.Store.LatestPlanVersion()
	return err
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	current, latest, err := m.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d; run '%s migrate'", current, latest, constants.AppName)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return validation.ValidateSettings(settings)
}

func checkValidation(ctx *cli.Context) error {
	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	for _, t := range tasks {
		if err := validation.ValidateTask(t); err != nil {
			return fmt.Errorf("task %s (%s): %w", t.ID, t.DisplayName(), err)
		}
	}
	if result := validation.New().ValidateTasks(tasks); result.HasConflicts() {
		return fmt.Errorf("%s", result.FormatReport())
	}

	slots, err := ctx.Store.GetAllSlots()
	if err != nil {
		return fmt.Errorf("failed to get slots: %w", err)
	}
	for _, s := range slots {
		if err := validation.ValidateSlot(s); err != nil {
			return fmt.Errorf("slot %s: %w", s.ID, err)
		}
	}

	habits, err := ctx.Store.GetAllHabits(false)
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	for _, h := range habits {
		if err := validation.ValidateHabit(h); err != nil {
			return fmt.Errorf("habit %s (%s): %w", h.ID, h.Name, err)
		}
	}
	return nil
}

func checkPlanConflicts(ctx *cli.Context) error {
	plan, err := ctx.Store.GetLatestPlan()
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get latest plan: %w", err)
	}
	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	for _, s := range plan.Sessions {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	if result := validation.New().ValidatePlan(plan, tasks, settings); result.HasConflicts() {
		return fmt.Errorf("plan v%d has %d conflict(s), run '%s validate'", plan.PlanVersion, len(result.Conflicts), constants.AppName)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Timezone != "" && !utils.ValidateTimezone(ctx.Timezone) {
		return fmt.Errorf("unknown --timezone %q", ctx.Timezone)
	}
	_, err := ctx.Location()
	return err
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring is not available; PostgreSQL credentials must come from %s or .pgpass", constants.ConnectionEnvVar)
	}
	return nil
}
