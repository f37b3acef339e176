package errors

import (
	"fmt"

	"go.lsp.dev/uri"
)

// DocumentNotFoundError indicates that a document is not currently open.
type DocumentNotFoundError struct {
	URI uri.URI
}

// Error is an implementation of the error interface.
func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %q not open", e.URI)
}

// DocumentSizeLimitError indicates that a document exceeds the configured size limit.
type DocumentSizeLimitError struct {
	URI  uri.URI
	Size int64
}

// Error is an implementation of the error interface.
func (e *DocumentSizeLimitError) Error() string {
	return fmt.Sprintf("document %q size of %d bytes exceeds permitted limit", e.URI, e.Size)
}

// FileSystemError indicates a failed filesystem operation (missing path,
// permission denied, disk full). The underlying os error is preserved so
// callers can distinguish the cause with errors.Is.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

// Error is an implementation of the error interface.
func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FileSystemError) Unwrap() error {
	return e.Err
}

// ValidationError indicates an out of bounds position, a malformed URI, or a
// malformed plan structure.
type ValidationError struct {
	Reason string
}

// Error is an implementation of the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Reason)
}
