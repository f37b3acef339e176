// Package model holds the repository layer representations of domain types.
package model

import (
	"time"

	"github.com/gofrs/uuid"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Plan is the repository layer model for an edit plan.
type Plan struct {
	UUID           uuid.UUID
	Label          string
	Edits          map[uri.URI][]protocol.TextEdit
	SourceVersions map[uri.URI]int32
	State          int32
	Preview        string
	CreatedAt      time.Time
	DiscardReason  string
}
