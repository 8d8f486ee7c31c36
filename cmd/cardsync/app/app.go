// Package app provides the application context and dependency management
// for the cardsync CLI. It centralizes configuration, logging and the
// lazily built Syncer that commands share.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/cardsync"
	"github.com/agentstation/cardsync/internal/cmd/application"
	"github.com/agentstation/cardsync/internal/config"
	"github.com/agentstation/cardsync/pkg/errors"
)

// App represents the cardsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Syncer instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	syncer cardsync.Syncer
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the requested output format, or "" to auto-detect.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// NoColor reports whether colored output is disabled.
func (a *App) NoColor() bool {
	return a.config.ColorDisabled()
}

// Quiet reports whether only errors and warnings should be printed.
func (a *App) Quiet() bool {
	return a.config.Quiet
}

// Syncer returns the syncer, creating it lazily from the settings file, the
// environment and global flags. This is thread-safe and ensures only one
// instance is created.
func (a *App) Syncer() (cardsync.Syncer, error) {
	a.mu.RLock()
	if a.syncer != nil {
		s := a.syncer
		a.mu.RUnlock()
		return s, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.syncer != nil {
		return a.syncer, nil
	}

	settings, err := a.Settings()
	if err != nil {
		return nil, err
	}

	s, err := cardsync.New(buildSyncerOptions(settings)...)
	if err != nil {
		return nil, errors.WrapResource("create", "syncer", "", err)
	}
	s.OnPanelDone(a.logPanelDone)

	a.syncer = s
	return s, nil
}

// Settings loads and validates the panel settings with flag overrides
// applied.
func (a *App) Settings() (*config.Settings, error) {
	settings, err := config.Load(a.config.ConfigFile)
	if err != nil {
		return nil, err
	}
	if len(a.config.Panels) > 0 {
		settings.Panels = a.config.Panels
	}
	if a.config.Snapshot != "" {
		settings.Snapshot = a.config.Snapshot
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	a.logger.Debug().
		Str("file", settings.File).
		Strs("panels", settings.Panels).
		Str("snapshot", settings.Snapshot).
		Msg("Loaded settings")
	return settings, nil
}

// Shutdown performs graceful shutdown of the application. Panel requests
// stop with the command context, so there is nothing left to release.
func (a *App) Shutdown(_ context.Context) error {
	return nil
}

func (a *App) logPanelDone(r cardsync.PanelResult) {
	event := a.logger.Info()
	if r.Err != nil {
		event = a.logger.Error().Err(r.Err)
	}
	event.Str("panel", r.Panel).
		Int("users", r.Users).
		Int("cards", r.Cards).
		Dur("duration", r.Duration).
		Msg("Panel finished")
}

// buildSyncerOptions constructs syncer options from loaded settings.
func buildSyncerOptions(s *config.Settings) []cardsync.Option {
	return []cardsync.Option{
		cardsync.WithPanels(s.Panels...),
		cardsync.WithCredentials(s.Login, s.Password),
		cardsync.WithTimeout(s.Timeout),
		cardsync.WithCardDelay(s.CardDelay),
		cardsync.WithPagePause(s.PagePause),
		cardsync.WithConcurrency(s.Concurrency),
		cardsync.WithSnapshotPath(s.Snapshot),
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithSyncer sets a custom syncer instance (useful for testing).
func WithSyncer(s cardsync.Syncer) Option {
	return func(a *App) error {
		a.syncer = s
		return nil
	}
}
