package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/askmydocs/askdocs/internal/api"
	"github.com/askmydocs/askdocs/internal/config"
	"github.com/askmydocs/askdocs/internal/log"
	"github.com/askmydocs/askdocs/internal/session"
)

// Output colors.
var (
	successLabel = color.New(color.FgGreen, color.Bold)
	errorLabel   = color.New(color.FgRed, color.Bold)
	titleLabel   = color.New(color.FgMagenta, color.Bold)
	dimLabel     = color.New(color.Faint)
)

// errNotLoggedIn is returned by commands that need a session.
var errNotLoggedIn = errors.New("not logged in; run: askdocs login")

// runtime holds everything a command needs.
type runtime struct {
	cfg    *config.Config
	logger *log.Logger
	store  *session.Store
	client *api.Client
}

// bootstrap loads config and opens the logger, session and client.
// Precedence for the backend URL is flag, environment, file, default.
func bootstrap() (*runtime, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("finding home directory: %w", err)
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(home)
	}
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := log.NewLogger(cfg.LogPath(home), level)
	if err != nil {
		return nil, err
	}

	var storage session.Storage = session.NewMemoryStorage()
	if !ephemeral {
		if storage, err = session.NewSQLiteStorage(cfg.SessionPath(home)); err != nil {
			return nil, err
		}
	}
	store, err := session.NewStore(storage)
	if err != nil {
		storage.Close()
		return nil, err
	}

	client := api.New(cfg.API.BaseURL, store, api.WithExtension(cfg.Documents.Extension))
	logger.Debug(log.EventStarted, zap.String("api_url", cfg.API.BaseURL))

	return &runtime{cfg: cfg, logger: logger, store: store, client: client}, nil
}

// Close flushes the log and closes the session database.
func (r *runtime) Close() {
	_ = r.logger.Sync()
	_ = r.store.Close()
}

func (r *runtime) requireAuth() error {
	if !r.store.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

// fail turns a gateway error into the message shown to the user. A
// rejected token is cleared so the next command starts signed out.
func (r *runtime) fail(event string, err error) error {
	if errors.Is(err, api.ErrSessionExpired) {
		r.logger.Event(log.EventSessionExpired)
		if clearErr := r.store.Clear(); clearErr != nil {
			r.logger.Failure(log.EventLoggedOut, clearErr)
		}
	} else {
		r.logger.Failure(event, err)
	}
	return errors.New(api.UserMessage(err))
}
