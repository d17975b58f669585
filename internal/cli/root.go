package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/studyflow/internal/backup"
	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/keyring"
	"github.com/julianstephens/studyflow/internal/logger"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/planner"
	"github.com/julianstephens/studyflow/internal/storage"
	"github.com/julianstephens/studyflow/internal/storage/postgres"
	"github.com/julianstephens/studyflow/internal/storage/sqlite"
	"github.com/julianstephens/studyflow/internal/utils"
)

type Context struct {
	Store storage.Provider
	// Timezone overrides the stored timezone setting when set.
	Timezone string
	Now      func() time.Time
	Stdin    io.Reader
	Stdout   io.Writer
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Clock returns the current time in the effective timezone.
func (c *Context) Clock() time.Time {
	loc, err := c.Location()
	if err != nil {
		return c.now()
	}
	return c.now().In(loc)
}

func (c *Context) Out() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c *Context) In() io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return os.Stdin
}

// Location resolves --timezone, then the stored setting.
func (c *Context) Location() (*time.Location, error) {
	tz := c.Timezone
	if tz == "" {
		settings, err := c.Store.GetSettings()
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to get settings: %w", err)
		}
		tz = settings.Timezone
	}
	loc, err := utils.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// IsSQLite reports whether the store is the local single-file backend.
func (c *Context) IsSQLite() bool {
	_, ok := c.Store.(*sqlite.Store)
	return ok
}

// ConfigDir is where logs, backups, lockfiles and Google credentials live.
func (c *Context) ConfigDir() string {
	if c.IsSQLite() {
		return filepath.Dir(c.Store.GetConfigPath())
	}
	return DefaultConfigDir()
}

// DefaultConfigDir is the directory of the default sqlite path.
func DefaultConfigDir() string {
	path, err := utils.ExpandHome(constants.DefaultConfigPath)
	if err != nil {
		return "."
	}
	return filepath.Dir(path)
}

// Planner builds the regeneration service for this invocation.
func (c *Context) Planner() *planner.Service {
	opts := []planner.Option{
		planner.WithLockDir(c.ConfigDir()),
		planner.WithClock(c.now),
	}
	if c.Timezone != "" {
		opts = append(opts, planner.WithTimezone(c.Timezone))
	}
	if c.IsSQLite() {
		opts = append(opts, planner.WithBackups(backup.NewManager(c.Store.GetConfigPath())))
	}
	return planner.New(c.Store, opts...)
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil && !errors.Is(err, backup.ErrNoDatabase) {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// LatestPlan returns the newest plan with a hint when none exists.
func (c *Context) LatestPlan() (models.PlanRecord, error) {
	plan, err := c.Store.GetLatestPlan()
	if errors.Is(err, storage.ErrNotFound) {
		return plan, fmt.Errorf("no plan yet, run '%s plan' first: %w", constants.AppName, err)
	}
	return plan, err
}

// Confirm asks a yes/no question on Stdin. Anything but y/yes is no.
func (c *Context) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(c.Out(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(c.In())
	response, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// ConnectionSource names where the store location came from.
type ConnectionSource string

const (
	SourceEnv     ConnectionSource = "environment"
	SourceFlag    ConnectionSource = "flag"
	SourceKeyring ConnectionSource = "keyring"
	SourceDefault ConnectionSource = "default"
)

// Resolver finds the store location. Lookups are swappable for tests.
type Resolver struct {
	Getenv  func(string) string
	Keyring func() (string, error)
}

func NewResolver() Resolver {
	return Resolver{Getenv: os.Getenv, Keyring: keyring.GetConnectionString}
}

// Resolve applies the precedence env > explicit --config > keyring > default.
func (r Resolver) Resolve(flag string) (string, ConnectionSource) {
	if v := strings.TrimSpace(r.Getenv(constants.ConnectionEnvVar)); v != "" {
		return v, SourceEnv
	}
	if flag != "" && flag != constants.DefaultConfigPath {
		return flag, SourceFlag
	}
	if r.Keyring != nil {
		v, err := r.Keyring()
		switch {
		case err == nil && strings.TrimSpace(v) != "":
			return v, SourceKeyring
		case err != nil && !errors.Is(err, keyring.ErrNotFound):
			logger.Debug("Keyring lookup failed", "error", err)
		}
	}
	return constants.DefaultConfigPath, SourceDefault
}

// OpenStore builds the provider for location. PostgreSQL passwords are only
// accepted from secret sources, never from the command line.
func OpenStore(location string, source ConnectionSource) (storage.Provider, error) {
	if postgres.IsConnString(location) || strings.Contains(location, "host=") {
		if _, err := postgres.ValidateConnString(location); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, err
			}
			if source == SourceFlag || source == SourceDefault {
				return nil, fmt.Errorf("%w; store it with '%s keyring set', export %s, or use .pgpass",
					err, constants.AppName, constants.ConnectionEnvVar)
			}
		}
		return postgres.New(location), nil
	}

	path, err := utils.ExpandHome(location)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}
