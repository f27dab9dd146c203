package google

import (
	"fmt"
	"net/http"
)

// Legacy web service status values.
const (
	StatusOK             = "OK"
	StatusZeroResults    = "ZERO_RESULTS"
	StatusInvalidRequest = "INVALID_REQUEST"
	StatusOverQueryLimit = "OVER_QUERY_LIMIT"
	StatusRequestDenied  = "REQUEST_DENIED"
	StatusUnknownError   = "UNKNOWN_ERROR"
)

// StatusError is returned when the legacy endpoint answers 200 with a status
// other than OK or ZERO_RESULTS.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("google: places status %s", e.Status)
	}
	return fmt.Sprintf("google: places status %s: %s", e.Status, e.Message)
}

// Temporary reports whether the provider may accept the same request later.
func (e *StatusError) Temporary() bool {
	return e.Status == StatusOverQueryLimit || e.Status == StatusUnknownError
}

// HTTPError is returned for any non-200 response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("google: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the status code is a throttling or server-side
// failure.
func (e *HTTPError) Temporary() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
