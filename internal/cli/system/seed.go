package system

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/seed"
)

type SeedCmd struct {
	File   string `short:"f" help:"YAML seed file. Defaults to the built-in demo data." type:"existingfile"`
	DryRun bool   `help:"Validate the seed without storing it."`
}

func (c *SeedCmd) load() (seed.File, error) {
	if c.File == "" {
		return seed.Demo(), nil
	}
	f, err := os.Open(c.File)
	if err != nil {
		return seed.File{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return seed.Parse(f)
}

func (c *SeedCmd) Run(ctx *cli.Context) error {
	doc, err := c.load()
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	data, err := doc.Resolve(ctx.Clock(), loc, uuid.NewString)
	if err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}

	out := ctx.Out()
	if c.DryRun {
		fmt.Fprintf(out, "Seed is valid: %d tasks, %d slots, %d habits\n", len(data.Tasks), len(data.Slots), len(data.Habits))
		return nil
	}

	ctx.PerformAutomaticBackup()
	if err := seed.Import(ctx.Store, data); err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d tasks, %d slots, %d habits\n", len(data.Tasks), len(data.Slots), len(data.Habits))
	return nil
}
