package system

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to migrate data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	out := ctx.Out()
	if c.Force {
		if !ctx.IsSQLite() {
			return fmt.Errorf("--force is only supported for SQLite storage")
		}
		dbPath := ctx.Store.GetConfigPath()
		if c.Source != "" {
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Fprintf(out, "Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Fprintf(out, "Migrating data from: %s\n", c.Source)
		source, err := cli.OpenStore(c.Source, cli.SourceFlag)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if err := copyStore(ctx, source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Fprintln(out, "Migration completed successfully!")
	}
	return nil
}

// copyStore copies every record from source into ctx.Store.
func copyStore(ctx *cli.Context, source storage.Provider) error {
	out := ctx.Out()
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	fmt.Fprintln(out, "  Migrating settings...")
	settings, err := source.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Fprintln(out, "  Migrating tasks...")
	tasks, err := source.GetAllTasksIncludingDeleted()
	if err != nil {
		return fmt.Errorf("failed to get tasks from source: %w", err)
	}
	for _, task := range tasks {
		if err := ctx.Store.AddTask(task); err != nil {
			return fmt.Errorf("failed to add task %s: %w", task.ID, err)
		}
	}
	fmt.Fprintf(out, "    Migrated %d tasks\n", len(tasks))

	fmt.Fprintln(out, "  Migrating slots...")
	slots, err := source.GetAllSlots()
	if err != nil {
		return fmt.Errorf("failed to get slots from source: %w", err)
	}
	for _, slot := range slots {
		if err := ctx.Store.AddSlot(slot); err != nil {
			return fmt.Errorf("failed to add slot %s: %w", slot.ID, err)
		}
	}
	fmt.Fprintf(out, "    Migrated %d slots\n", len(slots))

	fmt.Fprintln(out, "  Migrating habits...")
	habits, err := source.GetAllHabits(true)
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	for _, habit := range habits {
		if err := ctx.Store.AddHabit(habit); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", habit.ID, err)
		}
	}
	fmt.Fprintf(out, "    Migrated %d habits\n", len(habits))

	fmt.Fprintln(out, "  Migrating plans...")
	summaries, err := source.ListPlans()
	if err != nil {
		return fmt.Errorf("failed to list plans from source: %w", err)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Version < summaries[j].Version })
	for _, sum := range summaries {
		plan, err := source.GetPlan(sum.Version)
		if err != nil {
			return fmt.Errorf("failed to get plan v%d from source: %w", sum.Version, err)
		}
		if err := ctx.Store.SavePlan(plan); err != nil {
			return fmt.Errorf("failed to save plan v%d: %w", sum.Version, err)
		}
	}
	fmt.Fprintf(out, "    Migrated %d plans\n", len(summaries))

	fmt.Fprintln(out, "  Migrating feedback...")
	feedback, err := source.GetAllFeedback()
	if err != nil {
		return fmt.Errorf("failed to get feedback from source: %w", err)
	}
	for _, f := range feedback {
		if err := ctx.Store.AddFeedback(f); err != nil {
			return fmt.Errorf("failed to add feedback %s: %w", f.ID, err)
		}
	}
	fmt.Fprintf(out, "    Migrated %d feedback entries\n", len(feedback))
	return nil
}
