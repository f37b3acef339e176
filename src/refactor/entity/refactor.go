// Package entity contains the domain types for the refactor service.
package entity

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// SessionState tracks the lifecycle of the language server subprocess.
type SessionState int32

const (
	// SessionStateStarting indicates the subprocess is being spawned.
	SessionStateStarting SessionState = iota
	// SessionStateInitializing indicates the initialize handshake is in flight.
	SessionStateInitializing
	// SessionStateReady indicates the session accepts requests.
	SessionStateReady
	// SessionStateShuttingDown indicates a shutdown was requested.
	SessionStateShuttingDown
	// SessionStateTerminated indicates the subprocess has exited.
	SessionStateTerminated
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	switch s {
	case SessionStateStarting:
		return "Starting"
	case SessionStateInitializing:
		return "Initializing"
	case SessionStateReady:
		return "Ready"
	case SessionStateShuttingDown:
		return "ShuttingDown"
	case SessionStateTerminated:
		return "Terminated"
	}
	return "Unknown"
}

// Session represents the single language server session for a workspace root.
// Exactly one Session exists per workspace for the process lifetime.
type Session struct {
	UUID               uuid.UUID       `json:"uuid" zap:"uuid"`
	WorkspaceRoot      string          `json:"workspaceRoot" zap:"workspaceRoot"`
	RootURI            uri.URI         `json:"rootUri" zap:"rootUri"`
	Command            string          `json:"command" zap:"command"`
	PID                int             `json:"pid" zap:"pid"`
	ServerCapabilities json.RawMessage `json:"-" zap:"-"`
}

// OpenDocument is a file the language server currently has open, together
// with the version counter that position-based queries are valid against.
type OpenDocument struct {
	URI        uri.URI
	Path       string
	LanguageID protocol.LanguageIdentifier
	Version    int32
	Text       string
	// ContentHash is the hash of Text, used to detect externally observed
	// changes without resending full content.
	ContentHash string
}

// PlanState tracks the lifecycle of an edit plan.
type PlanState int32

const (
	// PlanStateProposed is the initial state of any plan produced by a
	// read-only planning operation.
	PlanStateProposed PlanState = iota
	// PlanStateApproved is entered only through an explicit external signal.
	PlanStateApproved
	// PlanStateApplied is terminal; set only after a successful staged commit.
	PlanStateApplied
	// PlanStateDiscarded is terminal; set when approval is withheld or
	// application fails validation.
	PlanStateDiscarded
)

// String implements fmt.Stringer.
func (s PlanState) String() string {
	switch s {
	case PlanStateProposed:
		return "Proposed"
	case PlanStateApproved:
		return "Approved"
	case PlanStateApplied:
		return "Applied"
	case PlanStateDiscarded:
		return "Discarded"
	}
	return "Unknown"
}

// EditPlan is a declarative, not-yet-applied description of file edits. A plan
// in Proposed or Approved state must never mutate a file.
type EditPlan struct {
	UUID  uuid.UUID
	Label string
	// Edits holds the ordered edit set per file.
	Edits map[uri.URI][]protocol.TextEdit
	// SourceVersions records the document version each file's edit set was
	// computed against. Application is rejected if the live version differs.
	SourceVersions map[uri.URI]int32
	State          PlanState
	// Preview is a human-reviewable diff rendering for the approval step.
	Preview string
	// DiscardReason records why a Discarded plan never applied.
	DiscardReason string
	CreatedAt     time.Time
}

// Files returns the URIs touched by the plan.
func (p *EditPlan) Files() []uri.URI {
	files := make([]uri.URI, 0, len(p.Edits))
	for u := range p.Edits {
		files = append(files, u)
	}
	return files
}

// ApplyResult reports the outcome of a successful plan application.
type ApplyResult struct {
	PlanUUID      uuid.UUID         `json:"plan"`
	ModifiedFiles []string          `json:"modifiedFiles"`
	FileVersions  map[uri.URI]int32 `json:"fileVersions"`
}
