// Package factory holds user-defined test data factories.
package factory

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/refactor-tools/refactor-lsp/src/refactor/entity"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// UUID is a user-defined factory for a random uuid.UUID.
func UUID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

// TextEdit is a factory for a single-line TextEdit.
func TextEdit(line, start, end uint32, newText string) protocol.TextEdit {
	return protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: start},
			End:   protocol.Position{Line: line, Character: end},
		},
		NewText: newText,
	}
}

// ProposedPlan is a factory for an EditPlan in Proposed state over one file.
func ProposedPlan(u uri.URI, version int32, edits ...protocol.TextEdit) *entity.EditPlan {
	return &entity.EditPlan{
		UUID:           UUID(),
		Label:          "test plan",
		Edits:          map[uri.URI][]protocol.TextEdit{u: edits},
		SourceVersions: map[uri.URI]int32{u: version},
		State:          entity.PlanStateProposed,
		CreatedAt:      time.Now(),
	}
}

// ApprovedPlan is a factory for an EditPlan in Approved state over one file.
func ApprovedPlan(u uri.URI, version int32, edits ...protocol.TextEdit) *entity.EditPlan {
	plan := ProposedPlan(u, version, edits...)
	plan.State = entity.PlanStateApproved
	return plan
}

// OpenDocument is a factory for an open document at version 1.
func OpenDocument(u uri.URI, text string) *entity.OpenDocument {
	return &entity.OpenDocument{
		URI:        u,
		Path:       u.Filename(),
		LanguageID: "python",
		Version:    1,
		Text:       text,
	}
}
