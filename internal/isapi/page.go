package isapi

import (
	"github.com/agentstation/cardsync/pkg/constants"
	"github.com/agentstation/cardsync/pkg/errors"
)

// Status is the outcome of one search page.
type Status int

const (
	// NoMatch means the position is past the last record or nothing matched.
	NoMatch Status = iota
	// LastPage means the page holds the final records of the result set.
	LastPage
	// MorePages means further records follow this page.
	MorePages
)

// Wire values of responseStatusStrg.
const (
	statusNoMatch = "NO MATCH"
	statusOK      = "OK"
	statusMore    = "MORE"
)

// String returns the wire form of the status.
func (s Status) String() string {
	switch s {
	case NoMatch:
		return statusNoMatch
	case LastPage:
		return statusOK
	case MorePages:
		return statusMore
	default:
		return "UNKNOWN"
	}
}

// ParseStatus maps a responseStatusStrg value to a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case statusNoMatch:
		return NoMatch, nil
	case statusOK:
		return LastPage, nil
	case statusMore:
		return MorePages, nil
	default:
		return NoMatch, errors.NewParseError("json", "responseStatusStrg", "unknown search status "+s, nil)
	}
}

// Page is one page of a paginated search.
type Page[T any] struct {
	Status       Status
	Items        []T
	TotalMatches int
}

// Done reports whether no further page should be requested.
func (p *Page[T]) Done() bool {
	return p.Status != MorePages
}

// Cursor addresses a page of a search.
type Cursor struct {
	Position   int
	MaxResults int
}

// FirstPage returns the cursor of the first page with the panel page size.
func FirstPage() Cursor {
	return Cursor{Position: 0, MaxResults: constants.PageSize}
}

// Next returns the cursor of the page after c.
func (c Cursor) Next() Cursor {
	return Cursor{Position: c.Position + c.MaxResults, MaxResults: c.MaxResults}
}

func (c Cursor) cond(filter string) SearchCond {
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = constants.PageSize
	}
	return SearchCond{
		SearchID:             "0",
		MaxResults:           maxResults,
		SearchResultPosition: c.Position,
		FuzzySearch:          filter,
	}
}
