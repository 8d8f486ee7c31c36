package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/agentstation/cardsync/pkg/constants"
	pkgerrors "github.com/agentstation/cardsync/pkg/errors"
)

// Client provides JSON-over-HTTP calls against a single panel.
type Client struct {
	http  *http.Client
	panel string
}

// Option configures a Client.
type Option func(*options)

type options struct {
	timeout   time.Duration
	transport http.RoundTripper
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRoundTripper replaces the base round tripper that authentication wraps.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// New creates a transport client for the named panel. Certificate
// verification is disabled because panels ship with self-signed certificates.
func New(panel string, auth Authenticator, opts ...Option) *Client {
	o := &options{timeout: constants.DefaultHTTPTimeout}
	for _, opt := range opts {
		opt(o)
	}

	base := o.transport
	if base == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // panels use self-signed certificates
		base = tr
	}
	if auth == nil {
		auth = &NoAuth{}
	}

	return &Client{
		http:  &http.Client{Timeout: o.timeout, Transport: auth.Wrap(base)},
		panel: panel,
	}
}

// Panel returns the panel address this client talks to.
func (c *Client) Panel() string {
	return c.panel
}

// Do sends body as JSON (when non-nil) and decodes the JSON answer into target
// (when non-nil). Non-success statuses come back as *errors.APIError.
func (c *Client) Do(ctx context.Context, method, url, endpoint string, body, target any) error {
	var reader io.Reader
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return pkgerrors.WrapParse("json", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return pkgerrors.WrapResource("create", "request", method+" "+endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &pkgerrors.TransportError{
			Panel:    c.panel,
			Endpoint: endpoint,
			Timeout:  isTimeout(err),
			Err:      err,
		}
	}

	return DecodeResponse(resp, c.panel, endpoint, target)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
