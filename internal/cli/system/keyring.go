package system

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/studyflow/internal/cli"
	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/keyring"
	"github.com/julianstephens/studyflow/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show a stored secret (masked)."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
}

// KeyringSetCmd stores the database connection string or the API token.
type KeyringSetCmd struct {
	Value    string `arg:"" optional:"" help:"PostgreSQL connection string, or the API token with --api-token."`
	APIToken bool   `help:"Store the bearer token for 'serve' instead of a connection string."`
	Generate bool   `help:"Generate a random API token (with --api-token)."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	out := ctx.Out()
	if cmd.APIToken {
		token := cmd.Value
		if cmd.Generate {
			buf := make([]byte, 24)
			if _, err := rand.Read(buf); err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}
			token = hex.EncodeToString(buf)
		}
		if strings.TrimSpace(token) == "" {
			return errors.New("token must not be empty (pass one or use --generate)")
		}
		if err := keyring.Set(keyring.SecretAPIToken, token); err != nil {
			return fmt.Errorf("failed to store API token in keyring: %w", err)
		}
		fmt.Fprintln(out, "✓ API token stored in OS keyring")
		if cmd.Generate {
			fmt.Fprintf(out, "  Token: %s\n", token)
		}
		return nil
	}

	if !postgres.IsConnString(cmd.Value) && !strings.Contains(cmd.Value, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}
	if _, err := postgres.ValidateConnString(cmd.Value); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		fmt.Fprintln(out, "⚠️  Warning: Connection string contains embedded credentials.")
		fmt.Fprintln(out, "   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.Value); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	fmt.Fprintln(out, "✓ Connection string stored successfully in OS keyring")
	fmt.Fprintf(out, "  You can now use %s without the --config flag\n", constants.AppName)
	return nil
}

func secretFor(apiToken bool) (keyring.Secret, string) {
	if apiToken {
		return keyring.SecretAPIToken, "API token"
	}
	return keyring.SecretConnection, "connection string"
}

type KeyringGetCmd struct {
	APIToken bool `help:"Show the API token instead of the connection string."`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	secret, what := secretFor(cmd.APIToken)
	value, err := keyring.Get(secret)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use '%s keyring set' to store one", what, constants.AppName)
		}
		return fmt.Errorf("failed to retrieve %s from keyring: %w", what, err)
	}

	out := ctx.Out()
	if cmd.APIToken {
		fmt.Fprintf(out, "API token: %s****\n", value[:min(4, len(value))])
		return nil
	}
	fmt.Fprintln(out, "Connection string retrieved from keyring:")
	fmt.Fprintln(out, keyring.MaskPassword(value))
	return nil
}

type KeyringDeleteCmd struct {
	APIToken bool `help:"Delete the API token instead of the connection string."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	secret, what := secretFor(cmd.APIToken)
	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", what)
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", what, err)
	}
	fmt.Fprintf(ctx.Out(), "✓ %s deleted from OS keyring\n", strings.ToUpper(what[:1])+what[1:])
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	out := ctx.Out()
	if !keyring.IsAvailable() {
		fmt.Fprintln(out, "❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	fmt.Fprintln(out, "✓ OS keyring is available")

	for _, apiToken := range []bool{false, true} {
		secret, what := secretFor(apiToken)
		_, err := keyring.Get(secret)
		switch {
		case err == nil:
			fmt.Fprintf(out, "✓ %s is stored in keyring\n", what)
		case errors.Is(err, keyring.ErrNotFound):
			fmt.Fprintf(out, "ℹ No %s stored in keyring\n", what)
		default:
			fmt.Fprintf(out, "⚠ Could not read %s: %v\n", what, err)
		}
	}
	return nil
}
