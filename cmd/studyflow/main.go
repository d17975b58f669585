package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/cli/backups"
	"github.com/julianstephens/studyflow/internal/cli/habits"
	"github.com/julianstephens/studyflow/internal/cli/plans"
	"github.com/julianstephens/studyflow/internal/cli/settings"
	"github.com/julianstephens/studyflow/internal/cli/slots"
	"github.com/julianstephens/studyflow/internal/cli/system"
	"github.com/julianstephens/studyflow/internal/cli/tasks"
	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/errors"
	"github.com/julianstephens/studyflow/internal/logger"
)

type CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite path or PostgreSQL connection string. PostgreSQL passwords must come from the OS keyring, ${env_var} or .pgpass, never this flag." default:"${default_config}"`
	Debug    bool   `help:"Log debug output to stderr."`
	Timezone string `help:"Override the timezone setting for this run (IANA name)."`

	Init     system.InitCmd       `cmd:"" help:"Initialize studyflow storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Plan     plans.PlanCmd        `cmd:"" help:"Generate and inspect study plans."`
	Export   plans.ExportCmd      `cmd:"" help:"Export the latest plan."`
	Session  plans.SessionCmd     `cmd:"" help:"Track progress on planned sessions."`
	Feedback plans.FeedbackCmd    `cmd:"" help:"Tell the planner how the last plan felt."`
	Task     tasks.TaskCmd        `cmd:"" help:"Manage study tasks."`
	Slot     slots.SlotCmd        `cmd:"" help:"Manage weekly free slots."`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage recurring habits."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage secrets in the OS keyring."`
	Seed     system.SeedCmd       `cmd:"" help:"Import tasks, slots and habits from YAML."`
	Serve    system.ServeCmd      `cmd:"" help:"Serve the local JSON API."`
	Validate system.ValidateCmd   `cmd:"" help:"Validate tasks and the latest plan for conflicts."`
	Backup   backups.BackupCmd    `cmd:"" help:"Manage database backups."`
}

// skipLoad lists commands that open (or never touch) the store themselves.
var skipLoad = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
}

func newParser(app *CLI, stdout, stderr io.Writer) (*kong.Kong, error) {
	return kong.New(app,
		kong.Name(constants.AppName),
		kong.Description("Study plan scheduler: turns tasks, free time and habits into a dated session plan."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
			"env_var":        constants.ConnectionEnvVar,
			"serve_addr":     constants.DefaultServeAddr,
		},
	)
}

// run parses args, opens the resolved store and dispatches the selected command.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var app CLI
	parser, err := newParser(&app, stdout, stderr)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	location, source := cli.NewResolver().Resolve(app.Config)
	store, err := cli.OpenStore(location, source)
	if err != nil {
		return errors.Hint(err, fmt.Sprintf("see '%s keyring --help'", constants.AppName))
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:    store,
		Timezone: app.Timezone,
		Stdin:    stdin,
		Stdout:   stdout,
	}

	if err := logger.Init(logger.Config{Debug: app.Debug, ConfigDir: appCtx.ConfigDir()}); err != nil {
		fmt.Fprintf(stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Resolved store", "source", source, "sqlite", appCtx.IsSQLite())

	command := strings.Fields(ctx.Command())[0]
	if !skipLoad[command] {
		if err := store.Load(); err != nil {
			return err
		}
	}

	return ctx.Run(appCtx)
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		errors.Fatal(err)
	}
}
