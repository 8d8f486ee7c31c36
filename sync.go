package cardsync

import (
	"context"
	"time"

	"github.com/agentstation/cardsync/internal/directory"
	"github.com/agentstation/cardsync/internal/isapi"
	"github.com/agentstation/cardsync/internal/provision"
	"github.com/agentstation/cardsync/internal/reconcile"
	"github.com/agentstation/cardsync/pkg/cardid"
	"github.com/agentstation/cardsync/pkg/logging"
)

// Sync makes every panel hold exactly desiredHex for employees matching the
// filter. The snapshot is read once before the panels start and written once
// after all of them report a live card count equal to the desired count.
func (s *syncer) Sync(ctx context.Context, desiredHex []string, opts ...RunOption) (*Report, error) {
	start := time.Now()
	options := newRunOptions(opts...)
	ctx = logging.WithOperation(ctx, OperationSync)
	logger := logging.FromContext(ctx)

	desired, err := cardid.NormalizeHex(desiredHex)
	if err != nil {
		return nil, err
	}

	previous := s.loadSnapshot(ctx)
	logger.Info().
		Str("filter", options.filter).
		Int("desired", len(desired)).
		Int("snapshot", len(previous)).
		Int("panels", len(s.config.panels)).
		Bool("dry_run", options.dryRun).
		Msg("Synchronizing cards")

	report := &Report{
		Operation:    OperationSync,
		Filter:       options.filter,
		DryRun:       options.dryRun,
		Desired:      len(desired),
		SnapshotPath: s.config.snapshotPath,
	}

	report.Panels = s.fanOut(ctx, OperationSync, func(ctx context.Context, client *isapi.Client, result *PanelResult) error {
		engine := reconcile.New(client,
			reconcile.WithSnapshot(previous),
			reconcile.WithPagePause(s.config.pagePause),
		)
		var err error
		if options.dryRun {
			result.Sync, err = engine.DryRun(ctx, desiredHex, options.filter)
		} else {
			result.Sync, err = engine.Synchronize(ctx, desiredHex, options.filter)
		}
		return err
	})

	if !options.dryRun {
		s.recordCounts(ctx, report.Panels)
		s.verify(ctx, report, len(desired))
		if report.OK() {
			if err := s.saveSnapshot(desired); err != nil {
				report.Duration = time.Since(start)
				return report, err
			}
			report.SnapshotWritten = true
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

// verify marks every panel whose live card count equals want.
func (s *syncer) verify(ctx context.Context, report *Report, want int) {
	logger := logging.FromContext(ctx)
	for i := range report.Panels {
		p := &report.Panels[i]
		p.Verified = p.Err == nil && p.Cards == want
		if p.Verified {
			logger.Info().Str("panel", p.Panel).Int("cards", p.Cards).Msg("Card count matches")
		} else {
			logger.Warn().Str("panel", p.Panel).Int("cards", p.Cards).Int("desired", want).Msg("Card count does not match")
		}
	}
}

// Add writes cardHexes to every panel, filling free slots of employees
// matching the filter before creating new employees.
func (s *syncer) Add(ctx context.Context, cardHexes []string, opts ...RunOption) (*Report, error) {
	start := time.Now()
	options := newRunOptions(opts...)
	ctx = logging.WithOperation(ctx, OperationAdd)

	if _, err := cardid.NormalizeHex(cardHexes); err != nil {
		return nil, err
	}

	report := &Report{Operation: OperationAdd, Filter: options.filter}
	report.Panels = s.fanOut(ctx, OperationAdd, func(ctx context.Context, client *isapi.Client, result *PanelResult) error {
		engine := reconcile.New(client, reconcile.WithPagePause(s.config.pagePause))
		var err error
		result.Assignments, err = engine.CreateCards(ctx, cardHexes, options.filter)
		return err
	})
	s.recordCounts(ctx, report.Panels)

	report.Duration = time.Since(start)
	return report, nil
}

// Clear deletes every employee matching the filter, and their cards, on every
// panel.
func (s *syncer) Clear(ctx context.Context, opts ...RunOption) (*Report, error) {
	start := time.Now()
	options := newRunOptions(opts...)
	ctx = logging.WithOperation(ctx, OperationClear)

	report := &Report{Operation: OperationClear, Filter: options.filter}
	report.Panels = s.fanOut(ctx, OperationClear, func(ctx context.Context, client *isapi.Client, result *PanelResult) error {
		if options.dryRun {
			slots, err := directory.New(client, directory.WithPagePause(s.config.pagePause)).ListAllUsers(ctx, options.filter)
			result.Cleared = len(slots)
			return err
		}
		var err error
		result.Cleared, err = provision.New(client).ClearUsers(ctx, options.filter)
		return err
	})
	report.DryRun = options.dryRun
	s.recordCounts(ctx, report.Panels)

	report.Duration = time.Since(start)
	return report, nil
}
