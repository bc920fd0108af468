package triplestore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrTimeout is returned when the triplestore did not answer in time.
	ErrTimeout = errors.New("triplestore request timed out")
	// ErrUnavailable is returned when the triplestore could not be reached.
	ErrUnavailable = errors.New("triplestore unavailable")
)

// UpstreamError is a non-2xx answer from the triplestore.
type UpstreamError struct {
	Operation string
	Status    int
	Body      string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s - status: %d", e.Operation, e.Status)
	}
	return fmt.Sprintf("%s - status: %d, response: %q", e.Operation, e.Status, e.Body)
}

// newHTTPError builds an UpstreamError from a response.
func newHTTPError(operation string, status int, body []byte) error {
	return &UpstreamError{Operation: operation, Status: status, Body: strings.TrimSpace(string(body))}
}

// statusIsOK checks whether a status code is a success response.
func statusIsOK(status int) bool {
	return status >= 200 && status <= 299
}

// classify wraps a transport error as ErrTimeout or ErrUnavailable.
func classify(operation string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %v", operation, ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return fmt.Errorf("%s: %w: %v", operation, ErrUnavailable, err)
}
