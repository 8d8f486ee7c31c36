package isapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentstation/cardsync/internal/transport"
	"github.com/agentstation/cardsync/pkg/cardid"
	"github.com/agentstation/cardsync/pkg/constants"
	"github.com/agentstation/cardsync/pkg/errors"
	"github.com/agentstation/cardsync/pkg/logging"
)

// Endpoints relative to the ISAPI base URL.
const (
	EndpointUserSearch = "AccessControl/UserInfo/Search"
	EndpointUserRecord = "AccessControl/UserInfo/Record"
	EndpointUserDelete = "AccessControl/UserInfo/Delete"
	EndpointUserCount  = "AccessControl/UserInfo/Count"
	EndpointCardSearch = "AccessControl/CardInfo/Search"
	EndpointCardRecord = "AccessControl/CardInfo/Record"
	EndpointCardDelete = "AccessControl/CardInfo/Delete"
	EndpointCardCount  = "AccessControl/CardInfo/Count"
)

// Client is a stateless ISAPI client bound to one panel.
type Client struct {
	address   string
	baseURL   string
	transport *transport.Client
	cardDelay time.Duration
	now       func() time.Time
}

// NewClient creates a client for the panel at address using digest
// authentication with the given credentials.
func NewClient(address, username, password string, opts ...Option) (*Client, error) {
	base, err := BaseURL(address)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	auth := o.auth
	if auth == nil {
		auth = &transport.DigestAuth{Username: username, Password: password}
	}
	topts := []transport.Option{transport.WithTimeout(o.timeout)}
	if o.transport != nil {
		topts = append(topts, transport.WithRoundTripper(o.transport))
	}

	return &Client{
		address:   address,
		baseURL:   base,
		transport: transport.New(address, auth, topts...),
		cardDelay: o.cardDelay,
		now:       o.now,
	}, nil
}

// BaseURL derives the ISAPI root from a panel address. A bare host is reached
// over plain HTTP; an address carrying a scheme keeps it.
func BaseURL(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", errors.NewValidationError("panel", address, "address is empty")
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	u, err := url.Parse(address)
	if err != nil || u.Host == "" {
		return "", errors.NewValidationError("panel", address, "invalid panel address")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.NewValidationError("panel", address, "unsupported scheme "+u.Scheme)
	}
	return strings.TrimRight(address, "/") + "/ISAPI/", nil
}

// Address returns the panel address as configured.
func (c *Client) Address() string {
	return c.address
}

// BaseURL returns the ISAPI root this client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) url(endpoint string) string {
	return c.baseURL + endpoint + "?format=json"
}

func (c *Client) call(ctx context.Context, method, endpoint string, body, target any) error {
	return c.transport.Do(ctx, method, c.url(endpoint), endpoint, body, target)
}

// record sends a mutating call and checks the ISAPI status envelope.
func (c *Client) record(ctx context.Context, method, endpoint string, body any) error {
	var status transport.StatusEnvelope
	if err := c.call(ctx, method, endpoint, body, &status); err != nil {
		return err
	}
	return status.Err(c.address, endpoint, http.StatusOK)
}

// SearchUsers fetches one page of employees. A non-empty filter is sent as
// fuzzySearch.
func (c *Client) SearchUsers(ctx context.Context, filter string, cursor Cursor) (*Page[Employee], error) {
	req := UserSearchRequest{UserInfoSearchCond: cursor.cond(filter)}
	var resp UserSearchResponse
	if err := c.call(ctx, http.MethodPost, EndpointUserSearch, req, &resp); err != nil {
		return nil, err
	}

	status, err := ParseStatus(resp.UserInfoSearch.ResponseStatusStrg)
	if err != nil {
		return nil, err
	}
	return &Page[Employee]{
		Status:       status,
		Items:        resp.UserInfoSearch.UserInfo,
		TotalMatches: resp.UserInfoSearch.TotalMatches,
	}, nil
}

// SearchCards fetches one page of cards.
func (c *Client) SearchCards(ctx context.Context, cursor Cursor) (*Page[Card], error) {
	req := CardSearchRequest{CardInfoSearchCond: cursor.cond("")}
	var resp CardSearchResponse
	if err := c.call(ctx, http.MethodPost, EndpointCardSearch, req, &resp); err != nil {
		return nil, err
	}

	status, err := ParseStatus(resp.CardInfoSearch.ResponseStatusStrg)
	if err != nil {
		return nil, err
	}
	return &Page[Card]{
		Status:       status,
		Items:        resp.CardInfoSearch.CardInfo,
		TotalMatches: resp.CardInfoSearch.TotalMatches,
	}, nil
}

// CountUsers returns the number of employees stored on the panel.
func (c *Client) CountUsers(ctx context.Context) (int, error) {
	var resp UserCountResponse
	if err := c.call(ctx, http.MethodGet, EndpointUserCount, nil, &resp); err != nil {
		return 0, err
	}
	return resp.UserInfoCount.UserNumber, nil
}

// CountCards returns the number of cards stored on the panel.
func (c *Client) CountCards(ctx context.Context) (int, error) {
	var resp CardCountResponse
	if err := c.call(ctx, http.MethodGet, EndpointCardCount, nil, &resp); err != nil {
		return 0, err
	}
	return resp.CardInfoCount.CardNumber, nil
}

// CreateEmployee records a normal user with access through door 1, valid from
// now for ten years.
func (c *Client) CreateEmployee(ctx context.Context, id, name string) error {
	begin := c.now()
	end := begin.AddDate(constants.ValidityYears, 0, 0)

	req := UserRecordRequest{UserInfo: UserRecord{
		EmployeeNo:      id,
		Name:            name,
		UserType:        UserTypeNormal,
		LocalUIRight:    false,
		MaxOpenDoorTime: 0,
		RightPlan:       []RightPlan{{DoorNo: constants.DoorNo}},
		Valid: Validity{
			Enable:    true,
			BeginTime: begin.Format(TimeLayout),
			EndTime:   end.Format(TimeLayout),
			TimeType:  TimeTypeLocal,
		},
		UserVerifyMode: "",
	}}

	logging.FromContext(ctx).Debug().
		Str("employee", id).
		Msg("Creating employee")
	if err := c.record(ctx, http.MethodPost, EndpointUserRecord, req); err != nil {
		return errors.WrapResource("create", "employee", id, err)
	}
	return nil
}

// CreateCard records a card for an existing employee. The card number is
// given in hexadecimal and stored in decimal form. Every call is preceded by
// the configured card delay; panels reject rapid consecutive card records
// with 401.
func (c *Client) CreateCard(ctx context.Context, cardHex, employeeID string) error {
	cardNo, err := cardid.HexToDecimal(cardHex)
	if err != nil {
		return err
	}
	if err := Sleep(ctx, c.cardDelay); err != nil {
		return err
	}

	req := CardRecordRequest{CardInfo: Card{
		EmployeeNo: employeeID,
		CardNo:     cardNo,
		CardType:   CardTypeNormal,
	}}

	logging.FromContext(ctx).Debug().
		Str("employee", employeeID).
		Str("card", cardNo).
		Msg("Creating card")
	if err := c.record(ctx, http.MethodPost, EndpointCardRecord, req); err != nil {
		return errors.WrapResource("create", "card", cardNo, err)
	}
	return nil
}

// DeleteEmployee removes an employee together with its cards.
func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	var req UserDeleteRequest
	req.UserInfoDelCond.EmployeeNoList = []EmployeeRef{{EmployeeNo: id}}
	if err := c.record(ctx, http.MethodPut, EndpointUserDelete, req); err != nil {
		return errors.WrapResource("delete", "employee", id, err)
	}
	return nil
}

// DeleteCard removes one card by its decimal number.
func (c *Client) DeleteCard(ctx context.Context, cardNo string) error {
	var req CardDeleteRequest
	req.CardInfoDelCond.CardNoList = []CardRef{{CardNo: cardNo}}
	if err := c.record(ctx, http.MethodPut, EndpointCardDelete, req); err != nil {
		return errors.WrapResource("delete", "card", cardNo, err)
	}
	return nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
