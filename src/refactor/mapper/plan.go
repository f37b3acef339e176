package mapper

import (
	"fmt"

	"github.com/refactor-tools/refactor-lsp/src/refactor/entity"
	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
	"github.com/refactor-tools/refactor-lsp/src/refactor/model"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// WorkspaceEditToEdits normalizes the two WorkspaceEdit shapes (a changes map
// or a documentChanges array) into a per-file edit map. Every target must be a
// local file URI; resource operations (file create/rename/delete) and non-file
// schemes are rejected, since silently dropping part of a plan would break
// all-or-nothing application.
func WorkspaceEditToEdits(edit *protocol.WorkspaceEdit) (map[uri.URI][]protocol.TextEdit, error) {
	if edit == nil {
		return nil, &refactorerrors.ValidationError{Reason: "workspace edit is missing"}
	}

	result := make(map[uri.URI][]protocol.TextEdit)
	switch {
	case len(edit.Changes) > 0:
		for u, edits := range edit.Changes {
			result[u] = append(result[u], edits...)
		}
	case len(edit.DocumentChanges) > 0:
		for _, change := range edit.DocumentChanges {
			if change.TextDocument.URI == "" {
				return nil, &refactorerrors.ValidationError{Reason: "document change without a text document identifier"}
			}
			u := change.TextDocument.URI
			result[u] = append(result[u], change.Edits...)
		}
	default:
		return nil, &refactorerrors.ValidationError{Reason: "workspace edit has neither changes nor documentChanges"}
	}

	for u, edits := range result {
		if _, err := URIToPath(u); err != nil {
			return nil, err
		}
		if len(edits) == 0 {
			return nil, &refactorerrors.ValidationError{Reason: fmt.Sprintf("empty edit set for %q", u)}
		}
	}
	return result, nil
}

// PlanToModel converts an EditPlan entity to its repository model.
func PlanToModel(p *entity.EditPlan) *model.Plan {
	return &model.Plan{
		UUID:           p.UUID,
		Label:          p.Label,
		Edits:          copyEdits(p.Edits),
		SourceVersions: copyVersions(p.SourceVersions),
		State:          int32(p.State),
		Preview:        p.Preview,
		DiscardReason:  p.DiscardReason,
		CreatedAt:      p.CreatedAt,
	}
}

// ModelToPlan converts a repository model back to an EditPlan entity.
func ModelToPlan(m *model.Plan) *entity.EditPlan {
	return &entity.EditPlan{
		UUID:           m.UUID,
		Label:          m.Label,
		Edits:          copyEdits(m.Edits),
		SourceVersions: copyVersions(m.SourceVersions),
		State:          entity.PlanState(m.State),
		Preview:        m.Preview,
		DiscardReason:  m.DiscardReason,
		CreatedAt:      m.CreatedAt,
	}
}

func copyEdits(in map[uri.URI][]protocol.TextEdit) map[uri.URI][]protocol.TextEdit {
	out := make(map[uri.URI][]protocol.TextEdit, len(in))
	for u, edits := range in {
		copied := make([]protocol.TextEdit, len(edits))
		copy(copied, edits)
		out[u] = copied
	}
	return out
}

func copyVersions(in map[uri.URI]int32) map[uri.URI]int32 {
	out := make(map[uri.URI]int32, len(in))
	for u, v := range in {
		out[u] = v
	}
	return out
}
