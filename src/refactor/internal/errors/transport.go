package errors

import (
	"fmt"
	"time"
)

// TransportError indicates that the language server subprocess is unreachable,
// crashed, or its pipes are broken.
type TransportError struct {
	Op  string
	Err error
}

// Error is an implementation of the error interface.
func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transport: %s", e.Op)
	}
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError indicates a malformed frame, unparseable JSON, or a response
// carrying an id that matches no pending request.
type ProtocolError struct {
	Reason string
	Err    error
}

// Error is an implementation of the error interface.
func (e *ProtocolError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("protocol: %s", e.Reason)
	}
	return fmt.Sprintf("protocol: %s: %v", e.Reason, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates that no response arrived within the deadline.
// It does not imply the operation failed server side; the outcome is unknown.
type TimeoutError struct {
	Method  string
	Timeout time.Duration
}

// Error is an implementation of the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %q timed out after %v", e.Method, e.Timeout)
}
