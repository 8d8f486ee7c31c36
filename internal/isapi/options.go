package isapi

import (
	"net/http"
	"time"

	"github.com/agentstation/cardsync/internal/transport"
	"github.com/agentstation/cardsync/pkg/constants"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	timeout   time.Duration
	cardDelay time.Duration
	now       func() time.Time
	transport http.RoundTripper
	auth      transport.Authenticator
}

func defaultOptions() *options {
	return &options{
		timeout:   constants.DefaultHTTPTimeout,
		cardDelay: constants.CardCreateDelay,
		now:       time.Now,
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithCardDelay sets the pause taken before every card creation.
// Zero disables it.
func WithCardDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.cardDelay = d
		}
	}
}

// WithClock sets the clock used for employee validity windows.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRoundTripper replaces the base HTTP round tripper.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithAuthenticator replaces digest authentication.
func WithAuthenticator(auth transport.Authenticator) Option {
	return func(o *options) {
		o.auth = auth
	}
}
