package errors

import stderr "errors"

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(msg string) error {
	return stderr.New(msg)
}

var (
	// SessionNotReadyError reports that an operation was attempted before the initialize handshake completed.
	SessionNotReadyError = New("session is not ready")
	// SessionTerminatedError reports that the language server process is no longer running.
	SessionTerminatedError = New("session terminated")
)

// IsRetryable reports whether the caller may safely re-issue the operation on a fresh session.
// Timeouts are excluded: a timed out request may still have completed server side.
func IsRetryable(e error) bool {
	var transport *TransportError
	return stderr.As(e, &transport)
}
