package cardsync

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/cardsync/internal/isapi"
	"github.com/agentstation/cardsync/pkg/errors"
	"github.com/agentstation/cardsync/pkg/logging"
)

// unit is one panel's work. It fills in result and returns the error that
// failed the panel, if any.
type unit func(ctx context.Context, client *isapi.Client, result *PanelResult) error

// fanOut runs work once per configured panel with bounded concurrency and
// returns the results in panel order. A failing panel records its error and
// leaves the other panels running.
func (s *syncer) fanOut(ctx context.Context, stage string, work unit) []PanelResult {
	logger := logging.FromContext(ctx)
	results := make([]PanelResult, len(s.config.panels))

	var g errgroup.Group
	g.SetLimit(s.config.concurrency)

	for i, address := range s.config.panels {
		g.Go(func() error {
			start := time.Now()
			result := &results[i]
			result.Panel = address

			panelCtx := logging.WithPanel(ctx, address)
			panelLogger := logging.FromContext(panelCtx)
			panelLogger.Info().Msg("Panel started")

			client, err := s.client(address)
			if err == nil {
				err = work(panelCtx, client, result)
			}
			if err != nil {
				result.fail(errors.NewSyncError(address, stage, err))
				panelLogger.Error().Err(err).Msg("Panel failed")
			} else {
				panelLogger.Info().Msg("Panel done")
			}

			result.Duration = time.Since(start)
			s.hooks.triggerPanelDone(*result)
			return nil
		})
	}

	_ = g.Wait()
	logger.Debug().
		Int("panels", len(results)).
		Msg("All panels finished")
	return results
}

// recordCounts reads the live counts of every panel after the units
// finished. A panel whose counts cannot be read fails unless it already did.
func (s *syncer) recordCounts(ctx context.Context, results []PanelResult) {
	var g errgroup.Group
	g.SetLimit(s.config.concurrency)

	for i := range results {
		g.Go(func() error {
			result := &results[i]
			client, err := s.client(result.Panel)
			if err == nil {
				result.Users, err = client.CountUsers(ctx)
			}
			if err == nil {
				result.Cards, err = client.CountCards(ctx)
			}
			if err != nil && result.Err == nil {
				result.fail(errors.NewSyncError(result.Panel, "verify", err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
