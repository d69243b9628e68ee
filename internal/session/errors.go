package session

import (
	"errors"
	"fmt"
)

// Operation-level errors. Everything an operation can fail with is one of
// these (or wraps one); raw protocol errors never cross the session
// boundary.
var (
	// ErrNotConnected is returned when an operation is invoked on a
	// session with no open connection.
	ErrNotConnected = errors.New("session: not connected")

	// ErrInvalidInput is returned when a required field is missing or
	// malformed. Surfaced immediately, never retried, and guaranteed to
	// be raised before any network request.
	ErrInvalidInput = errors.New("session: invalid input")

	// ErrAccountNotFound means the node reports no such account.
	// Informational, non-fatal.
	ErrAccountNotFound = errors.New("session: account not found")

	// ErrHistoryUnavailable means the node returned no transaction field
	// at all, as opposed to an empty-but-valid list.
	ErrHistoryUnavailable = errors.New("session: transaction history unavailable")

	// ErrSubmissionTimeout means validation was not observed within the
	// bounded wait window. The transaction's true outcome is unknown;
	// this is deliberately distinct from a rejection.
	ErrSubmissionTimeout = errors.New("session: transaction validation not observed in time")

	// errConnClosed resolves in-flight requests when the connection is
	// torn down underneath them.
	errConnClosed = errors.New("session: connection closed")
)

// ConnectionError wraps a transport-level failure: node unreachable,
// dropped socket, write failure. Retryable by reconnecting.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("session: connection failure: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// APIError is an error response from the node, in the ledger's flat
// websocket error format.
type APIError struct {
	Name    string // e.g. "actNotFound"
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("session: node error %s (%d): %s", e.Name, e.Code, e.Message)
}

// SubmissionError is a transaction rejected by the ledger. The node's
// result code is carried verbatim.
type SubmissionError struct {
	ResultCode string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("session: transaction submission failed: %s", e.ResultCode)
}
