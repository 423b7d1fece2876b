package restclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// APIError is a non-2xx response from the backend. Message carries the
// server's structured error message when one could be parsed, the HTTP
// status text otherwise.
type APIError struct {
	StatusCode int
	Message    string
}

func newAPIError(code int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: code}

	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := flattenMessage(payload.Message); msg != "" {
			apiErr.Message = msg
		} else if payload.Error != "" {
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(code)
	}
	return apiErr
}

// flattenMessage renders the envelope's message field, which is a plain
// string on most failures but a field→message map on validation errors.
func flattenMessage(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var fields map[string]string
	if json.Unmarshal(raw, &fields) == nil && len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, key+": "+fields[key])
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// IsAPIError unwraps err into an *APIError if the backend answered with one.
func IsAPIError(err error) (*APIError, bool) {
	if apiErr, ok := errors.Cause(err).(*APIError); ok {
		return apiErr, true
	}
	return nil, false
}
