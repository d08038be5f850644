package backend

import (
	"errors"
	"fmt"
)

// ErrDecode wraps failures to decode a backend response body. Callers can
// distinguish it from transport errors with errors.Is.
var ErrDecode = errors.New("malformed backend response")

// APIError is a non-2xx response from the backend or the upload endpoint.
type APIError struct {
	StatusCode int
	Body       string // truncated response body, for the error message only
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// IsAPIError extracts an *APIError from an error chain.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
