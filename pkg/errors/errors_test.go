package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/agentstation/cardsync/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "card",
			ID:       "2246014900",
		}
		assert.Equal(t, "card with ID 2246014900 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("employee", "user7")
		wrapped := fmt.Errorf("lookup: %w", base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("card", "XYZ", "not a hexadecimal number")
		assert.Equal(t, "validation failed for field card: not a hexadecimal number", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "no panels"}
		assert.Equal(t, "validation failed: no panels", err.Error())
	})
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		unauthorized bool
		unavailable  bool
	}{
		{name: "unauthorized", status: 401, unauthorized: true},
		{name: "forbidden", status: 403, unauthorized: true},
		{name: "server error", status: 503, unavailable: true},
		{name: "bad request", status: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pkgerrors.NewAPIError("10.0.0.5", tt.status, "failed")
			assert.Equal(t, tt.unauthorized, pkgerrors.IsUnauthorized(err))
			assert.Equal(t, tt.unavailable, pkgerrors.IsPanelUnavailable(err))
		})
	}

	t.Run("status envelope", func(t *testing.T) {
		err := &pkgerrors.APIError{
			Panel:         "10.0.0.5",
			Endpoint:      "AccessControl/CardInfo/Record",
			StatusCode:    400,
			StatusString:  "Invalid Content",
			SubStatusCode: "cardNoAlreadyExist",
		}
		assert.Contains(t, err.Error(), "cardNoAlreadyExist")
		assert.Contains(t, err.Error(), "status 400")
	})
}

func TestTransportError(t *testing.T) {
	base := errors.New("i/o timeout")
	err := &pkgerrors.TransportError{Panel: "10.0.0.5", Endpoint: "x", Timeout: true, Err: base}
	assert.True(t, pkgerrors.IsTimeout(err))
	assert.ErrorIs(t, err, base)

	err = &pkgerrors.TransportError{Panel: "10.0.0.5", Endpoint: "x", Err: base}
	assert.False(t, pkgerrors.IsTimeout(err))
	assert.Contains(t, err.Error(), "failed")
}

func TestSyncError(t *testing.T) {
	base := pkgerrors.NewAPIError("10.0.0.5", 401, "denied")
	err := pkgerrors.NewSyncError("10.0.0.5", "delete", base)
	assert.Equal(t, "sync error for panel 10.0.0.5 during delete: "+base.Error(), err.Error())
	assert.True(t, pkgerrors.IsUnauthorized(err))

	var apiErr *pkgerrors.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestWrapHelpers(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapIO("read", "dump.txt", nil))
	assert.Nil(t, pkgerrors.WrapResource("create", "card", "1", nil))
	assert.Nil(t, pkgerrors.WrapParse("json", "", nil))
	assert.Nil(t, pkgerrors.WrapValidation("field", nil))

	base := errors.New("boom")
	err := pkgerrors.WrapResource("delete", "card", "0123456789", base)
	assert.Equal(t, "failed to delete card 0123456789: boom", err.Error())
	assert.ErrorIs(t, err, base)

	err = pkgerrors.WrapIO("write", "dump.txt", base)
	assert.Equal(t, "IO error during write of dump.txt: boom", err.Error())

	err = pkgerrors.WrapParse("json", "", base)
	assert.Equal(t, "json parse error: boom", err.Error())
}
