package scholarbib

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited indicates Scholar answered 429 Too Many Requests.
	ErrRateLimited = errors.New("scholar rate limit exceeded")

	// ErrUnavailable indicates Scholar answered 503 Service Unavailable.
	ErrUnavailable = errors.New("scholar service unavailable")

	// ErrRetriesExhausted is returned once every attempt of a request failed.
	ErrRetriesExhausted = errors.New("scholar request retries exhausted")
)

// StatusError is a non-200 response from Scholar.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scholar returned HTTP %d for %s", e.StatusCode, e.URL)
}

// Unwrap maps the status codes the fetcher treats specially onto sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	}
	return nil
}

func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
