// Package isapi implements a client for the access-control part of the
// Hikvision ISAPI REST interface: paged user and card search, record
// creation, deletion and counters.
package isapi

import "context"

// Panel is the set of ISAPI calls the directory scanner, the provisioner and
// the reconciliation engine rely on. Client is the HTTP implementation.
type Panel interface {
	// Address returns the panel address as configured.
	Address() string

	SearchUsers(ctx context.Context, filter string, cursor Cursor) (*Page[Employee], error)
	SearchCards(ctx context.Context, cursor Cursor) (*Page[Card], error)
	CountUsers(ctx context.Context) (int, error)
	CountCards(ctx context.Context) (int, error)

	CreateEmployee(ctx context.Context, id, name string) error
	// CreateCard records a card given in hexadecimal for an existing employee.
	CreateCard(ctx context.Context, cardHex, employeeID string) error
	DeleteEmployee(ctx context.Context, id string) error
	// DeleteCard removes a card given in canonical decimal form.
	DeleteCard(ctx context.Context, cardNo string) error
}

var _ Panel = (*Client)(nil)
