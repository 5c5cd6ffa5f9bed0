package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Payphone-Digital/storefront/pkg/circuit"
)

// ErrCircuitOpen is returned without contacting the upstream while its
// breaker is open.
var ErrCircuitOpen = circuit.ErrCircuitOpen

// APIError is a non-2xx upstream response.
type APIError struct {
	StatusCode int
	Message    string
	// Data is the raw "data" member of the error body. For 422 responses it
	// maps field names to messages.
	Data json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.StatusCode, e.Message)
}

// IsValidation reports whether the upstream rejected the request payload.
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

// IsUnauthorized reports whether the upstream refused the access token.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports a 404 from the upstream.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// FieldErrors decodes Data as a field to message map. It returns nil when
// Data has another shape.
func (e *APIError) FieldErrors() map[string]string {
	if len(e.Data) == 0 {
		return nil
	}
	var fields map[string]string
	if err := json.Unmarshal(e.Data, &fields); err != nil {
		return nil
	}
	return fields
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// retryable reports whether a failed attempt may be repeated.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

// breakerFailure counts transport errors and 5xx against the breaker. 4xx
// responses are the caller's fault.
func breakerFailure(err error) bool {
	return retryable(err)
}
