package transport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cardsync/internal/transport"
	"github.com/agentstation/cardsync/pkg/errors"
)

func TestClientDoSendsJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"n":1}`, string(body))
		_, _ = w.Write([]byte(`{"echo":"ok"}`))
	}))
	defer server.Close()

	client := transport.New("panel", &transport.NoAuth{})
	var out struct {
		Echo string `json:"echo"`
	}
	err := client.Do(context.Background(), http.MethodPost, server.URL, "echo", map[string]int{"n": 1}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Echo)
	assert.Equal(t, "panel", client.Panel())
}

func TestClientDoErrors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		err := transport.New("p", nil).Do(context.Background(), http.MethodGet, server.URL, "count", nil, nil)
		require.Error(t, err)
		assert.True(t, errors.IsUnauthorized(err))
	})

	t.Run("status envelope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"statusCode":6,"statusString":"Invalid Content","subStatusCode":"employeeNoAlreadyExist","errorMsg":"duplicate"}`))
		}))
		defer server.Close()

		err := transport.New("p", nil).Do(context.Background(), http.MethodPost, server.URL, "record", struct{}{}, nil)
		var apiErr *errors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 400, apiErr.StatusCode)
		assert.Equal(t, "employeeNoAlreadyExist", apiErr.SubStatusCode)
		assert.Equal(t, "duplicate", apiErr.Message)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"UserInfoSearch": {`))
		}))
		defer server.Close()

		var out map[string]any
		err := transport.New("p", nil).Do(context.Background(), http.MethodGet, server.URL, "search", nil, &out)
		var parseErr *errors.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "json", parseErr.Format)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := transport.New("p", nil, transport.WithTimeout(20*time.Millisecond))
		err := client.Do(context.Background(), http.MethodGet, server.URL, "count", nil, nil)
		require.Error(t, err)
		assert.True(t, errors.IsTimeout(err))
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		err := transport.New("p", nil).Do(context.Background(), http.MethodGet, url, "count", nil, nil)
		var trErr *errors.TransportError
		require.ErrorAs(t, err, &trErr)
		assert.False(t, trErr.Timeout)
	})
}

func TestStatusEnvelopeErr(t *testing.T) {
	ok := &transport.StatusEnvelope{StatusCode: 1, StatusString: "OK"}
	assert.NoError(t, ok.Err("p", "e", 200))

	empty := &transport.StatusEnvelope{}
	assert.NoError(t, empty.Err("p", "e", 200))

	bad := &transport.StatusEnvelope{StatusCode: 4, StatusString: "Invalid Operation", SubStatusCode: "notSupport"}
	err := bad.Err("p", "e", 200)
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "notSupport", apiErr.SubStatusCode)
}
