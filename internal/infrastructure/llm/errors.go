package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kirillkom/resume-router/internal/infrastructure/resilience"
)

// StatusError is a non-2xx answer from an LLM backend.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	if e == nil {
		return "llm status error"
	}
	msg := fmt.Sprintf("%s status %d", e.Provider, e.StatusCode)
	if text := http.StatusText(e.StatusCode); text != "" {
		msg += " " + text
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.Err }

// ErrEmptyCompletion is returned when the backend answers without any text.
var ErrEmptyCompletion = errors.New("empty completion")

// countsAsBackendFailure keeps client mistakes, empty answers and caller cancellation out of the breaker.
func countsAsBackendFailure(err error) bool {
	if err == nil {
		return false
	}
	// An empty answer is a reachable backend; the classifier reports it as unparseable.
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrEmptyCompletion) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || resilience.IsCircuitOpen(err) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return isBackendStatus(statusErr.StatusCode)
	}

	return true
}

func isBackendStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	default:
		return statusCode >= http.StatusInternalServerError
	}
}
