package system

import (
	"fmt"

	"github.com/julianstephens/studyflow/internal/cli"
)

// migrator is implemented by both SQL stores.
type migrator interface {
	Migrate() (int, error)
	SchemaVersion() (current, latest int, err error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return fmt.Errorf("storage backend does not support migrations")
	}

	count, err := m.Migrate()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	out := ctx.Out()
	if count == 0 {
		fmt.Fprintln(out, "No migrations to apply. Database is up to date.")
	} else {
		fmt.Fprintf(out, "Successfully applied %d migration(s).\n", count)
	}
	return nil
}
