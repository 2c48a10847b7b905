package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured is returned before any network call when no API key is set.
	ErrNotConfigured = errors.New("gateway api key not configured")
	// ErrMalformedPayload wraps every decode or shape failure of a gateway response.
	ErrMalformedPayload = errors.New("malformed gateway payload")
)

// HTTPStatusError reports a non-2xx response from the gateway.
// Endpoint is the request path only; the API key never appears in it.
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "gateway status error"
	}
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("gateway %s failed: %s", e.Endpoint, status)
}

// IsNotFound reports whether err carries a 404 from the gateway.
func IsNotFound(err error) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

func malformed(endpoint string, err error) error {
	if err == nil {
		return fmt.Errorf("gateway %s: %w", endpoint, ErrMalformedPayload)
	}
	return fmt.Errorf("gateway %s: %w: %v", endpoint, ErrMalformedPayload, err)
}
