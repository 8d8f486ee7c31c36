package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/agentstation/cardsync/pkg/errors"
)

// StatusEnvelope is the generic ISAPI status body returned by record and
// delete calls, and by every call that fails.
type StatusEnvelope struct {
	RequestURL    string `json:"requestURL,omitempty"`
	StatusCode    int    `json:"statusCode"`
	StatusString  string `json:"statusString"`
	SubStatusCode string `json:"subStatusCode"`
	ErrorCode     int    `json:"errorCode,omitempty"`
	ErrorMsg      string `json:"errorMsg,omitempty"`
}

// StatusOK is the ISAPI statusCode reported on success.
const StatusOK = 1

// Err converts a non-OK envelope into an *errors.APIError. A zero StatusCode
// means the body carried no envelope and is treated as success.
func (s *StatusEnvelope) Err(panel, endpoint string, httpStatus int) error {
	if s.StatusCode == 0 || s.StatusCode == StatusOK {
		return nil
	}
	return &errors.APIError{
		Panel:         panel,
		Endpoint:      endpoint,
		StatusCode:    httpStatus,
		StatusString:  s.StatusString,
		SubStatusCode: s.SubStatusCode,
		Message:       s.ErrorMsg,
	}
}

// DecodeResponse decodes a JSON response into the target structure.
func DecodeResponse(resp *http.Response, panel, endpoint string, target any) error {
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &errors.APIError{
			Panel:      panel,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
		var envelope StatusEnvelope
		if json.Unmarshal(body, &envelope) == nil && envelope.StatusString != "" {
			apiErr.StatusString = envelope.StatusString
			apiErr.SubStatusCode = envelope.SubStatusCode
			apiErr.Message = envelope.ErrorMsg
		}
		return apiErr
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", endpoint, err)
	}
	return nil
}
