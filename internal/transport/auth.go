package transport

import (
	"net/http"

	"github.com/icholy/digest"
)

// Authenticator wraps a round tripper with an authentication scheme.
type Authenticator interface {
	Wrap(rt http.RoundTripper) http.RoundTripper
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Wrap implements the Authenticator interface for NoAuth.
func (a *NoAuth) Wrap(rt http.RoundTripper) http.RoundTripper {
	return rt
}

// DigestAuth implements HTTP digest authentication, the scheme ISAPI panels
// require. The challenge is cached by the transport, so only the first
// request to a panel pays for the extra 401 round trip.
type DigestAuth struct {
	Username string
	Password string
}

// Wrap implements the Authenticator interface for DigestAuth.
func (a *DigestAuth) Wrap(rt http.RoundTripper) http.RoundTripper {
	return &digest.Transport{
		Username:  a.Username,
		Password:  a.Password,
		Transport: rt,
	}
}
