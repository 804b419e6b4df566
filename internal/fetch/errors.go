package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrTimedOut is returned when every allowed attempt timed out.
	ErrTimedOut = errors.New("timed out")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// StatusError is returned when the server answers with a non-2xx status.
// It is a permanent failure and never retried.
type StatusError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code received.
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}
