// Package provision creates employees and distributes cards over their slots.
package provision

import (
	"context"
	"fmt"
	"strconv"

	"github.com/agentstation/cardsync/internal/isapi"
	"github.com/agentstation/cardsync/pkg/constants"
	"github.com/agentstation/cardsync/pkg/errors"
	"github.com/agentstation/cardsync/pkg/logging"
)

// Assignment records which cards went to which employee.
type Assignment struct {
	EmployeeID string   `json:"employee_id" yaml:"employee_id"`
	Created    bool     `json:"created" yaml:"created"`
	Cards      []string `json:"cards" yaml:"cards"`
}

// Provisioner writes employees and cards to one panel.
type Provisioner struct {
	panel isapi.Panel
}

// New creates a provisioner for panel.
func New(panel isapi.Panel) *Provisioner {
	return &Provisioner{panel: panel}
}

// EmployeeName returns the generated name of the n-th employee for prefix.
func EmployeeName(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}

// AddUsersAndCards creates employees named prefix+(start+1), prefix+(start+2)
// and so on, giving each up to five of the hexadecimal cards in input order.
// An empty card list creates nothing. The employee number doubles as its
// name.
func (p *Provisioner) AddUsersAndCards(ctx context.Context, cardHexes []string, prefix string, start int) ([]Assignment, error) {
	var assignments []Assignment
	number := start
	for remaining := cardHexes; len(remaining) > 0; {
		number++
		name := EmployeeName(prefix, number)
		if err := p.panel.CreateEmployee(ctx, name, name); err != nil {
			return assignments, err
		}

		batch := remaining[:min(constants.MaxCardsPerEmployee, len(remaining))]
		remaining = remaining[len(batch):]

		assignment := Assignment{EmployeeID: name, Created: true}
		for _, hex := range batch {
			if err := p.panel.CreateCard(ctx, hex, name); err != nil {
				return append(assignments, assignment), err
			}
			assignment.Cards = append(assignment.Cards, hex)
		}
		assignments = append(assignments, assignment)

		logging.FromContext(logging.WithEmployee(ctx, name)).Info().
			Int("cards", len(assignment.Cards)).
			Msg("Provisioned employee")
	}
	return assignments, nil
}

// Assign adds hexadecimal cards to an existing employee. The caller
// guarantees the employee has enough free slots.
func (p *Provisioner) Assign(ctx context.Context, employeeID string, cardHexes []string) (Assignment, error) {
	if len(cardHexes) > constants.MaxCardsPerEmployee {
		return Assignment{EmployeeID: employeeID}, fmt.Errorf("%w: %d cards for %s", errors.ErrSlotLimit, len(cardHexes), employeeID)
	}

	assignment := Assignment{EmployeeID: employeeID}
	for _, hex := range cardHexes {
		if err := p.panel.CreateCard(ctx, hex, employeeID); err != nil {
			return assignment, err
		}
		assignment.Cards = append(assignment.Cards, hex)
	}

	logging.FromContext(logging.WithEmployee(ctx, employeeID)).Debug().
		Int("cards", len(assignment.Cards)).
		Msg("Filled free slots")
	return assignment, nil
}

// ClearUsers deletes every employee matching filter, and with them their
// cards, by repeatedly reading the first search page until it reports NO
// MATCH. It returns the number of employees deleted. An employee that is
// still listed after its deletion aborts the run.
func (p *Provisioner) ClearUsers(ctx context.Context, filter string) (int, error) {
	logger := logging.FromContext(ctx)
	deleted := make(map[string]struct{})

	for {
		page, err := p.panel.SearchUsers(ctx, filter, isapi.FirstPage())
		if err != nil {
			return len(deleted), errors.WrapResource("search", "employee", "", err)
		}
		if page.Status == isapi.NoMatch || len(page.Items) == 0 {
			break
		}

		for _, e := range page.Items {
			if _, seen := deleted[e.EmployeeNo]; seen {
				return len(deleted), errors.WrapResource("delete", "employee", e.EmployeeNo,
					fmt.Errorf("employee still listed after deletion"))
			}
			if err := p.panel.DeleteEmployee(ctx, e.EmployeeNo); err != nil {
				return len(deleted), err
			}
			deleted[e.EmployeeNo] = struct{}{}
		}
		logger.Debug().
			Int("deleted", len(deleted)).
			Msg("Cleared employee page")
	}

	logger.Info().
		Str("filter", filter).
		Int("deleted", len(deleted)).
		Msg("Cleared employees")
	return len(deleted), nil
}
