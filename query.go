package cardsync

import (
	"context"
	"time"

	"github.com/agentstation/cardsync/internal/directory"
	"github.com/agentstation/cardsync/internal/isapi"
	"github.com/agentstation/cardsync/pkg/cardid"
	"github.com/agentstation/cardsync/pkg/errors"
	"github.com/agentstation/cardsync/pkg/logging"
)

// Count reads live employee and card counts from every panel.
func (s *syncer) Count(ctx context.Context) (*Report, error) {
	start := time.Now()
	ctx = logging.WithOperation(ctx, OperationCount)

	report := &Report{Operation: OperationCount}
	report.Panels = s.fanOut(ctx, OperationCount, func(ctx context.Context, client *isapi.Client, result *PanelResult) error {
		var err error
		if result.Users, err = client.CountUsers(ctx); err != nil {
			return err
		}
		result.Cards, err = client.CountCards(ctx)
		return err
	})

	report.Duration = time.Since(start)
	return report, nil
}

// Owner finds the employee holding cardHex on every panel. A panel without
// the card reports an empty owner and does not fail.
func (s *syncer) Owner(ctx context.Context, cardHex string) (*Report, error) {
	start := time.Now()
	ctx = logging.WithOperation(ctx, OperationOwner)

	cardNo, err := cardid.HexToDecimal(cardHex)
	if err != nil {
		return nil, err
	}

	report := &Report{Operation: OperationOwner}
	report.Panels = s.fanOut(ctx, OperationOwner, func(ctx context.Context, client *isapi.Client, result *PanelResult) error {
		scanner := directory.New(client, directory.WithPagePause(s.config.pagePause))
		owner, err := scanner.FindCardOwner(ctx, cardNo)
		if errors.IsNotFound(err) {
			return nil
		}
		result.Owner = owner
		return err
	})

	report.Duration = time.Since(start)
	return report, nil
}
