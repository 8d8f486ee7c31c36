// Package cardsync synchronizes MIFARE card sets with the employee and card
// directory of one or more Hikvision access-control panels over ISAPI.
//
// Every operation fans out one independent unit of work per panel. Units run
// concurrently, never share state and never cancel each other; inside a unit
// all requests are sequential. The per-panel outcomes are collected in a
// Report once every unit has finished.
package cardsync

import (
	"context"
	"fmt"

	"github.com/agentstation/cardsync/internal/isapi"
	"github.com/agentstation/cardsync/pkg/errors"
)

// Syncer runs card operations against a fixed set of panels.
type Syncer interface {
	// Sync makes every panel hold exactly the desired hexadecimal cards for
	// employees matching the filter, then verifies live card counts.
	Sync(ctx context.Context, desiredHex []string, opts ...RunOption) (*Report, error)

	// Add writes hexadecimal cards to every panel without diffing.
	Add(ctx context.Context, cardHexes []string, opts ...RunOption) (*Report, error)

	// Clear deletes every employee matching the filter, with their cards.
	Clear(ctx context.Context, opts ...RunOption) (*Report, error)

	// Count reports live employee and card counts per panel.
	Count(ctx context.Context) (*Report, error)

	// Owner looks up the employee holding a hexadecimal card on every panel.
	Owner(ctx context.Context, cardHex string) (*Report, error)

	// OnPanelDone registers a callback run as each panel finishes.
	OnPanelDone(PanelDoneHook)
}

// Compile-time interface check to ensure proper implementation.
var _ Syncer = (*syncer)(nil)

// syncer is the internal implementation of the Syncer interface
type syncer struct {
	config *config
	hooks  *hooks
}

// New creates a Syncer. At least one panel must be configured.
func New(opts ...Option) (Syncer, error) {
	s := &syncer{
		config: defaultConfig(),
		hooks:  newHooks(),
	}

	for _, opt := range opts {
		if err := opt(s.config); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	if len(s.config.panels) == 0 {
		return nil, errors.NewConfigError("cardsync", "no panels configured", nil)
	}
	return s, nil
}

// OnPanelDone registers a callback run as each panel finishes. Callbacks may
// be invoked concurrently from different panels.
func (s *syncer) OnPanelDone(fn PanelDoneHook) {
	s.hooks.OnPanelDone(fn)
}

// client creates the ISAPI client for one panel.
func (s *syncer) client(address string) (*isapi.Client, error) {
	return isapi.NewClient(address, s.config.login, s.config.password,
		isapi.WithTimeout(s.config.timeout),
		isapi.WithCardDelay(s.config.cardDelay),
	)
}
