package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/logger"
)

// ErrNoCredentials means credentials.json is missing from the config dir.
var ErrNoCredentials = errors.New("google credentials not found")

const authTimeout = 5 * time.Minute

var scopes = []string{calendar.CalendarEventsScope, calendar.CalendarReadonlyScope}

// Config reads the OAuth client from <configDir>/credentials.json and pins
// localhost redirects to the callback port.
func Config(configDir string) (*oauth2.Config, error) {
	path := filepath.Join(configDir, constants.GoogleCredentialsFile)
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: place the OAuth client file at %s", ErrNoCredentials, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret file %s: %w", path, err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret file: %w", err)
	}
	config.RedirectURL = redirectURL(config.RedirectURL)
	return config, nil
}

// redirectURL forces localhost and out-of-band redirects onto the local
// callback listener.
func redirectURL(configured string) string {
	fallback := fmt.Sprintf("http://localhost:%s/oauth2callback", constants.GoogleAuthPort)
	if configured == "" || configured == "urn:ietf:wg:oauth:2.0:oob" {
		return fallback
	}
	u, err := url.Parse(configured)
	if err != nil {
		logger.Warn("Could not parse OAuth redirect URL", "url", configured, "error", err)
		return configured
	}
	if u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		logger.Warn("OAuth redirect is not a localhost callback", "url", configured)
		return configured
	}
	if u.Port() != constants.GoogleAuthPort {
		u.Host = net.JoinHostPort(u.Hostname(), constants.GoogleAuthPort)
	}
	return u.String()
}

// NewService returns an authenticated Calendar service, running the browser
// consent flow when no token is cached in configDir.
func NewService(ctx context.Context, configDir string) (*calendar.Service, error) {
	config, err := Config(configDir)
	if err != nil {
		return nil, err
	}

	tokenFile := filepath.Join(configDir, constants.GoogleTokenFile)
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		logger.Info("No cached Google token, starting authorization flow", "path", tokenFile)
		tok, err = tokenFromWeb(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		if err := saveToken(tokenFile, tok); err != nil {
			return nil, err
		}
	}

	source := config.TokenSource(ctx, tok)
	current, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh Google token: %w", err)
	}
	if current.AccessToken != tok.AccessToken || current.RefreshToken != tok.RefreshToken {
		if err := saveToken(tokenFile, current); err != nil {
			logger.Warn("Failed to save refreshed Google token", "error", err)
		}
	}

	srv, err := calendar.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Calendar service: %w", err)
	}
	return srv, nil
}

// tokenFromWeb runs the authorization code flow through a local callback server.
func tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", net.JoinHostPort("localhost", constants.GoogleAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", constants.GoogleAuthPort, err)
	}

	state := fmt.Sprintf("studyflow-%d", time.Now().UnixNano())
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("state") != state {
				http.Error(w, "State mismatch", http.StatusBadRequest)
				return
			}
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				select {
				case errCh <- errors.New("authorization code not found in redirect URL"):
				default:
				}
				return
			}
			fmt.Fprint(w, "Authentication successful! You can close this window.")
			select {
			case codeCh <- code:
			default:
			}
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	defer server.Close()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("callback server error: %w", err):
			default:
			}
		}
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open the following URL in your browser to authorize %s:\n%s\n", constants.AppName, authURL)

	select {
	case code := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := config.Exchange(exchangeCtx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, errors.New("authorization timed out, please try again")
	}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("failed to write OAuth token: %w", err)
	}
	logger.Debug("Saved Google token", "path", path)
	return nil
}
