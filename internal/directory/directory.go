// Package directory walks the paginated user and card searches of a panel.
package directory

import (
	"context"
	"strings"
	"time"

	"github.com/agentstation/cardsync/internal/isapi"
	"github.com/agentstation/cardsync/pkg/cardid"
	"github.com/agentstation/cardsync/pkg/constants"
	"github.com/agentstation/cardsync/pkg/errors"
	"github.com/agentstation/cardsync/pkg/logging"
)

// Slot is an employee with the number of cards it can still take.
type Slot struct {
	EmployeeID string `json:"employee_id" yaml:"employee_id"`
	Free       int    `json:"free" yaml:"free"`
}

// Scanner iterates searches page by page. All requests are sequential.
type Scanner struct {
	panel     isapi.Panel
	pagePause time.Duration
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithPagePause sets the pause taken before requesting the page after a MORE
// page. Zero disables it.
func WithPagePause(d time.Duration) Option {
	return func(s *Scanner) {
		if d >= 0 {
			s.pagePause = d
		}
	}
}

// New creates a scanner over panel.
func New(panel isapi.Panel, opts ...Option) *Scanner {
	s := &Scanner{panel: panel, pagePause: constants.PagePause}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// walk fetches pages until one reports NO MATCH or OK, handing every page
// that carries records to visit. visit returns false to stop early.
func walk[T any](ctx context.Context, pause time.Duration, resource string,
	fetch func(isapi.Cursor) (*isapi.Page[T], error),
	visit func(*isapi.Page[T]) bool,
) error {
	logger := logging.FromContext(ctx)
	cursor := isapi.FirstPage()
	for {
		page, err := fetch(cursor)
		if err != nil {
			return errors.WrapResource("search", resource, "", err)
		}
		logger.Debug().
			Str("resource", resource).
			Int("position", cursor.Position).
			Int("items", len(page.Items)).
			Int("total", page.TotalMatches).
			Stringer("status", page.Status).
			Msg("Fetched page")

		if page.Status != isapi.NoMatch && !visit(page) {
			return nil
		}
		if page.Done() {
			return nil
		}

		cursor = cursor.Next()
		if err := isapi.Sleep(ctx, pause); err != nil {
			return err
		}
	}
}

// ListAllUsers returns every employee matching filter with its free slots.
func (s *Scanner) ListAllUsers(ctx context.Context, filter string) ([]Slot, error) {
	var slots []Slot
	err := walk(ctx, s.pagePause, "employee",
		func(c isapi.Cursor) (*isapi.Page[isapi.Employee], error) {
			return s.panel.SearchUsers(ctx, filter, c)
		},
		func(p *isapi.Page[isapi.Employee]) bool {
			for _, e := range p.Items {
				slots = append(slots, Slot{EmployeeID: e.EmployeeNo, Free: e.FreeSlots()})
			}
			return true
		})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// ListAllCards returns the decimal number of every card whose employeeNo
// contains employeeFilter, exactly as the panel reports it. An empty filter
// returns all cards.
func (s *Scanner) ListAllCards(ctx context.Context, employeeFilter string) ([]string, error) {
	var cards []string
	err := walk(ctx, s.pagePause, "card",
		func(c isapi.Cursor) (*isapi.Page[isapi.Card], error) {
			return s.panel.SearchCards(ctx, c)
		},
		func(p *isapi.Page[isapi.Card]) bool {
			for _, c := range p.Items {
				if employeeFilter != "" && !strings.Contains(c.EmployeeNo, employeeFilter) {
					continue
				}
				cards = append(cards, c.CardNo)
			}
			return true
		})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// FindCardOwner returns the employee holding the card with decimal number
// cardNo, or a NotFoundError.
func (s *Scanner) FindCardOwner(ctx context.Context, cardNo string) (string, error) {
	want := canonical(cardNo)
	owner := ""
	err := walk(ctx, s.pagePause, "card",
		func(c isapi.Cursor) (*isapi.Page[isapi.Card], error) {
			return s.panel.SearchCards(ctx, c)
		},
		func(p *isapi.Page[isapi.Card]) bool {
			for _, c := range p.Items {
				if canonical(c.CardNo) == want {
					owner = c.EmployeeNo
					return false
				}
			}
			return true
		})
	if err != nil {
		return "", err
	}
	if owner == "" {
		return "", errors.NewNotFoundError("card", want)
	}
	return owner, nil
}

// FindUsersWithFreeSlots returns employees matching filter that hold fewer
// than five cards, in panel order, and the panel's total match count. When
// need is positive the walk stops once the accumulated free slots reach it.
func (s *Scanner) FindUsersWithFreeSlots(ctx context.Context, filter string, need int) ([]Slot, int, error) {
	var (
		slots []Slot
		free  int
		total int
	)
	err := walk(ctx, s.pagePause, "employee",
		func(c isapi.Cursor) (*isapi.Page[isapi.Employee], error) {
			page, err := s.panel.SearchUsers(ctx, filter, c)
			if err == nil {
				total = page.TotalMatches
			}
			return page, err
		},
		func(p *isapi.Page[isapi.Employee]) bool {
			for _, e := range p.Items {
				if n := e.FreeSlots(); n > 0 {
					slots = append(slots, Slot{EmployeeID: e.EmployeeNo, Free: n})
					free += n
				}
			}
			return need <= 0 || free < need
		})
	if err != nil {
		return nil, 0, err
	}

	logging.FromContext(ctx).Debug().
		Int("employees", len(slots)).
		Int("free", free).
		Int("total", total).
		Msg("Found employees with free slots")
	return slots, total, nil
}

// canonical pads a panel card number to the fixed width, keeping values that
// are not decimal as they are.
func canonical(cardNo string) string {
	if c, err := cardid.Canonical(cardNo); err == nil {
		return c
	}
	return cardNo
}
