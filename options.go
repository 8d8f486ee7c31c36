package cardsync

import (
	"time"

	"github.com/agentstation/cardsync/pkg/constants"
	"github.com/agentstation/cardsync/pkg/errors"
)

// config holds the settings shared by every run of a Syncer
type config struct {
	panels       []string
	login        string
	password     string
	timeout      time.Duration
	cardDelay    time.Duration
	pagePause    time.Duration
	concurrency  int
	snapshotPath string
}

func defaultConfig() *config {
	return &config{
		timeout:      constants.DefaultHTTPTimeout,
		cardDelay:    constants.CardCreateDelay,
		pagePause:    constants.PagePause,
		concurrency:  constants.MaxConcurrentPanels,
		snapshotPath: constants.DefaultSnapshotFile,
	}
}

// Option is a function that configures a Syncer
type Option func(*config) error

// WithPanels sets the panel addresses. A bare host is reached over HTTP.
func WithPanels(addresses ...string) Option {
	return func(c *config) error {
		c.panels = append([]string(nil), addresses...)
		return nil
	}
}

// WithCredentials sets the digest authentication credentials shared by all
// panels.
func WithCredentials(login, password string) Option {
	return func(c *config) error {
		c.login = login
		c.password = password
		return nil
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return errors.NewValidationError("timeout", d, "must be positive")
		}
		c.timeout = d
		return nil
	}
}

// WithCardDelay sets the pause taken before each card creation
func WithCardDelay(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return errors.NewValidationError("card_delay", d, "must not be negative")
		}
		c.cardDelay = d
		return nil
	}
}

// WithPagePause sets the pause taken between search pages
func WithPagePause(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return errors.NewValidationError("page_pause", d, "must not be negative")
		}
		c.pagePause = d
		return nil
	}
}

// WithConcurrency limits how many panels are processed at once
func WithConcurrency(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return errors.NewValidationError("concurrency", n, "must be at least 1")
		}
		c.concurrency = n
		return nil
	}
}

// WithSnapshotPath sets the snapshot file location
func WithSnapshotPath(path string) Option {
	return func(c *config) error {
		if path != "" {
			c.snapshotPath = path
		}
		return nil
	}
}

// RunOption configures one operation
type RunOption func(*runOptions)

type runOptions struct {
	filter string
	dryRun bool
}

func newRunOptions(opts ...RunOption) *runOptions {
	o := &runOptions{filter: constants.DefaultNamePrefix}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFilter sets the employee name the operation is scoped to. New
// employees are named after it with a running number.
func WithFilter(name string) RunOption {
	return func(o *runOptions) {
		o.filter = name
	}
}

// WithDryRun computes plans without changing any panel.
func WithDryRun(enabled bool) RunOption {
	return func(o *runOptions) {
		o.dryRun = enabled
	}
}
