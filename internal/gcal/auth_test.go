package gcal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/julianstephens/studyflow/internal/constants"
)

func TestRedirectURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "http://localhost:6789/oauth2callback"},
		{"urn:ietf:wg:oauth:2.0:oob", "http://localhost:6789/oauth2callback"},
		{"http://localhost", "http://localhost:6789"},
		{"http://127.0.0.1:8080/cb", "http://127.0.0.1:6789/cb"},
		{"https://example.com/cb", "https://example.com/cb"},
	}
	for _, tt := range tests {
		if got := redirectURL(tt.in); got != tt.want {
			t.Errorf("redirectURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfigMissingCredentials(t *testing.T) {
	if _, err := Config(t.TempDir()); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestConfigFromCredentials(t *testing.T) {
	dir := t.TempDir()
	creds := `{"installed":{"client_id":"id","client_secret":"secret","redirect_uris":["http://localhost"],
		"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	if err := os.WriteFile(filepath.Join(dir, constants.GoogleCredentialsFile), []byte(creds), 0600); err != nil {
		t.Fatal(err)
	}

	config, err := Config(dir)
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if config.ClientID != "id" || config.RedirectURL != "http://localhost:6789" {
		t.Errorf("unexpected config %+v", config)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", constants.GoogleTokenFile)
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)}

	if err := saveToken(path, tok); err != nil {
		t.Fatalf("saveToken failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file mode = %v", info.Mode().Perm())
	}

	got, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("tokenFromFile failed: %v", err)
	}
	if got.AccessToken != "a" || got.RefreshToken != "r" || !got.Expiry.Equal(tok.Expiry) {
		t.Errorf("token mismatch: %+v", got)
	}
}
