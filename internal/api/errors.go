package api

import (
	"fmt"
	"net/http"
)

// NetworkError wraps a transport-level failure: no connectivity,
// timeout, DNS. Retryable by the orchestrator's policy.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response with its body preserved for
// diagnostics. The orchestrator decides retryability from Status.
type ServerError struct {
	Op     string
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.Status, e.Body)
}

// Retryable reports whether the orchestrator's backoff policy applies:
// 404 (job not yet materialized or page beyond data) and 5xx.
func (e *ServerError) Retryable() bool {
	return e.Status == http.StatusNotFound || e.Status >= 500
}

// DecodeError is a response that arrived but did not match the expected
// shape. Never retried: an unparseable contract does not fix itself.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
