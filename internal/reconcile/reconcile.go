// Package reconcile computes and applies the card changes that make a panel
// hold exactly a desired card set.
//
// Deletions run first so freed slots can take new cards. Additions fill the
// free slots of existing employees before new employees are created. The
// panel's limit of five cards per employee holds throughout.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/cardsync/internal/directory"
	"github.com/agentstation/cardsync/internal/isapi"
	"github.com/agentstation/cardsync/internal/provision"
	"github.com/agentstation/cardsync/pkg/cardid"
	"github.com/agentstation/cardsync/pkg/constants"
	"github.com/agentstation/cardsync/pkg/errors"
	"github.com/agentstation/cardsync/pkg/logging"
)

// Engine reconciles one panel.
type Engine struct {
	panel       isapi.Panel
	scanner     *directory.Scanner
	provisioner *provision.Provisioner
	snapshot    []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithSnapshot supplies the card set recorded by the last verified run. It is
// trusted only when its size equals the panel's live card count.
func WithSnapshot(cards []string) Option {
	return func(e *Engine) {
		e.snapshot = cards
	}
}

// WithScanner replaces the default directory scanner.
func WithScanner(s *directory.Scanner) Option {
	return func(e *Engine) {
		if s != nil {
			e.scanner = s
		}
	}
}

// WithPagePause sets the pause the default scanner takes between pages.
func WithPagePause(d time.Duration) Option {
	return func(e *Engine) {
		e.scanner = directory.New(e.panel, directory.WithPagePause(d))
	}
}

// New creates an engine for panel.
func New(panel isapi.Panel, opts ...Option) *Engine {
	e := &Engine{
		panel:       panel,
		scanner:     directory.New(panel),
		provisioner: provision.New(panel),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plan computes the changes Synchronize would apply without applying them.
func (e *Engine) Plan(ctx context.Context, desiredHex []string, filter string) (*Plan, error) {
	plan, _, err := e.plan(ctx, desiredHex, filter)
	return plan, err
}

func (e *Engine) plan(ctx context.Context, desiredHex []string, filter string) (*Plan, []string, error) {
	desired, err := cardid.NormalizeHex(desiredHex)
	if err != nil {
		return nil, nil, err
	}

	current, fromSnapshot, warning, err := e.currentCards(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	var warnings []string
	if warning != "" {
		logging.FromContext(ctx).Warn().Msg(warning)
		warnings = append(warnings, warning)
	}

	plan, err := newPlan(current, desired, fromSnapshot)
	if err != nil {
		return nil, nil, err
	}
	logging.FromContext(ctx).Info().
		Int("current", len(plan.Current)).
		Int("desired", len(plan.Desired)).
		Int("delete", len(plan.ToDelete)).
		Int("add", len(plan.ToAdd)).
		Bool("snapshot", plan.SnapshotUsed).
		Msg("Computed plan")
	return plan, warnings, nil
}

// DryRun computes the plan and reports it as a result without touching the
// panel.
func (e *Engine) DryRun(ctx context.Context, desiredHex []string, filter string) (*Result, error) {
	start := time.Now()
	plan, warnings, err := e.plan(ctx, desiredHex, filter)
	if err != nil {
		return nil, err
	}
	return &Result{
		Plan:     plan,
		NoOp:     plan.Empty(),
		DryRun:   true,
		Warnings: warnings,
		Duration: time.Since(start),
	}, nil
}

// Synchronize makes the panel's cards matching filter equal the desired set.
// The first failed deletion or addition aborts the run; the returned result
// reports what was applied until then and a later run converges.
func (e *Engine) Synchronize(ctx context.Context, desiredHex []string, filter string) (*Result, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	plan, warnings, err := e.plan(ctx, desiredHex, filter)
	if err != nil {
		return nil, err
	}
	result := &Result{Plan: plan, Warnings: warnings}
	defer func() { result.Duration = time.Since(start) }()

	if plan.Empty() {
		result.NoOp = true
		logger.Info().Msg("No cards to remove or add")
		return result, nil
	}

	if len(plan.ToDelete) > 0 {
		logger.Info().Int("cards", len(plan.ToDelete)).Msg("Removing cards")
		for _, cardNo := range plan.ToDelete {
			if err := e.panel.DeleteCard(ctx, cardNo); err != nil {
				return result, err
			}
			result.Deleted = append(result.Deleted, cardNo)
		}
	}

	if len(plan.ToAdd) > 0 {
		logger.Info().Int("cards", len(plan.ToAdd)).Msg("Adding cards")
		result.Assignments, err = e.CreateCards(ctx, plan.ToAdd, filter)
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

// CreateCards adds hexadecimal cards without diffing. Free slots of employees
// matching filter are filled first, in panel order; the remaining cards go to
// new employees numbered after the panel's match count for filter.
func (e *Engine) CreateCards(ctx context.Context, hexIDs []string, filter string) ([]provision.Assignment, error) {
	decimals, err := cardid.NormalizeHex(hexIDs)
	if err != nil {
		return nil, err
	}
	remaining, err := cardid.ToHex(decimals)
	if err != nil {
		return nil, err
	}
	if len(remaining) == 0 {
		return nil, nil
	}

	slots, total, err := e.scanner.FindUsersWithFreeSlots(ctx, filter, len(remaining))
	if err != nil {
		return nil, err
	}

	var assignments []provision.Assignment
	for _, slot := range slots {
		if len(remaining) == 0 {
			break
		}
		n := min(slot.Free, len(remaining))
		a, err := e.provisioner.Assign(ctx, slot.EmployeeID, remaining[:n])
		if len(a.Cards) > 0 {
			assignments = append(assignments, a)
		}
		if err != nil {
			return assignments, err
		}
		remaining = remaining[n:]
	}

	if len(remaining) > 0 {
		created, err := e.provisioner.AddUsersAndCards(ctx, remaining, namePrefix(filter), total)
		assignments = append(assignments, created...)
		if err != nil {
			return assignments, err
		}
	}
	return assignments, nil
}

// currentCards returns the panel's current card set, from the snapshot when
// its size matches the live count and from a full scan otherwise.
func (e *Engine) currentCards(ctx context.Context, filter string) ([]string, bool, string, error) {
	if len(e.snapshot) > 0 {
		live, err := e.panel.CountCards(ctx)
		if err != nil {
			return nil, false, "", errors.WrapResource("count", "card", "", err)
		}
		if live == len(e.snapshot) {
			current, err := cardid.NormalizeDecimal(e.snapshot)
			if err != nil {
				return nil, false, "", err
			}
			return current, true, "", nil
		}
		warning := fmt.Sprintf("snapshot holds %d cards but panel reports %d, scanning", len(e.snapshot), live)
		current, err := e.scanner.ListAllCards(ctx, filter)
		return current, false, warning, err
	}

	logging.FromContext(ctx).Info().Msg("Reading existing cards")
	current, err := e.scanner.ListAllCards(ctx, filter)
	return current, false, "", err
}

func namePrefix(filter string) string {
	if filter == "" {
		return constants.DefaultNamePrefix
	}
	return filter
}
