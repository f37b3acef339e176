package errors

import (
	"fmt"

	"github.com/gofrs/uuid"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// PlanNotFoundError indicates that no plan exists for the given id.
type PlanNotFoundError struct {
	UUID uuid.UUID
}

// Error is an implementation of the error interface.
func (e *PlanNotFoundError) Error() string {
	return fmt.Sprintf("plan %q not found", e.UUID)
}

// PlanStateError indicates an attempted transition that the plan lifecycle
// does not allow, such as applying a plan that was never approved.
type PlanStateError struct {
	UUID uuid.UUID
	From string
	To   string
}

// Error is an implementation of the error interface.
func (e *PlanStateError) Error() string {
	return fmt.Sprintf("plan %q cannot transition from %s to %s", e.UUID, e.From, e.To)
}

// StalePlanError indicates that a document changed after its plan was
// generated, making the plan's positions unsafe to apply.
type StalePlanError struct {
	URI            uri.URI
	PlanVersion    int32
	CurrentVersion int32
}

// Error is an implementation of the error interface.
func (e *StalePlanError) Error() string {
	return fmt.Sprintf("plan for %q is stale: computed against version %d, document is at version %d", e.URI, e.PlanVersion, e.CurrentVersion)
}

// EditConflictError indicates two overlapping edit ranges within one file.
type EditConflictError struct {
	URI    uri.URI
	First  protocol.Range
	Second protocol.Range
}

// Error is an implementation of the error interface.
func (e *EditConflictError) Error() string {
	return fmt.Sprintf("overlapping edits in %q: %d:%d-%d:%d and %d:%d-%d:%d",
		e.URI,
		e.First.Start.Line, e.First.Start.Character, e.First.End.Line, e.First.End.Character,
		e.Second.Start.Line, e.Second.Start.Character, e.Second.End.Line, e.Second.End.Character)
}
