package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/refactor-tools/refactor-lsp/src/refactor/entity"
	"github.com/refactor-tools/refactor-lsp/src/refactor/factory"
	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
)

func sampleEdit(newText string) protocol.TextEdit {
	return protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 0, Character: 1},
		},
		NewText: newText,
	}
}

func TestWorkspaceEditToEdits(t *testing.T) {
	t.Run("should normalize the changes map", func(t *testing.T) {
		edits, err := WorkspaceEditToEdits(&protocol.WorkspaceEdit{
			Changes: map[uri.URI][]protocol.TextEdit{
				"file:///a.py": {sampleEdit("x")},
			},
		})
		require.NoError(t, err)
		require.Contains(t, edits, uri.URI("file:///a.py"))
		assert.Len(t, edits["file:///a.py"], 1)
	})

	t.Run("should normalize documentChanges", func(t *testing.T) {
		edits, err := WorkspaceEditToEdits(&protocol.WorkspaceEdit{
			DocumentChanges: []protocol.TextDocumentEdit{
				{
					TextDocument: protocol.OptionalVersionedTextDocumentIdentifier{
						TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///b.py"},
					},
					Edits: []protocol.TextEdit{sampleEdit("x"), sampleEdit("y")},
				},
			},
		})
		require.NoError(t, err)
		assert.Len(t, edits["file:///b.py"], 2)
	})

	tests := []struct {
		name string
		edit *protocol.WorkspaceEdit
	}{
		{name: "nil edit", edit: nil},
		{name: "empty edit", edit: &protocol.WorkspaceEdit{}},
		{
			name: "document change without identifier",
			edit: &protocol.WorkspaceEdit{
				DocumentChanges: []protocol.TextDocumentEdit{
					{Edits: []protocol.TextEdit{sampleEdit("x")}},
				},
			},
		},
		{
			name: "empty edit set for a file",
			edit: &protocol.WorkspaceEdit{
				Changes: map[uri.URI][]protocol.TextEdit{"file:///a.py": {}},
			},
		},
		{
			name: "change keyed by an untitled document URI",
			edit: &protocol.WorkspaceEdit{
				Changes: map[uri.URI][]protocol.TextEdit{"untitled:Untitled-1": {sampleEdit("x")}},
			},
		},
		{
			name: "document change with a non-file scheme",
			edit: &protocol.WorkspaceEdit{
				DocumentChanges: []protocol.TextDocumentEdit{
					{
						TextDocument: protocol.OptionalVersionedTextDocumentIdentifier{
							TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "https://example.com/a.py"},
						},
						Edits: []protocol.TextEdit{sampleEdit("x")},
					},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run("should reject a "+tt.name, func(t *testing.T) {
			_, err := WorkspaceEditToEdits(tt.edit)
			var validation *refactorerrors.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestPlanModelRoundTrip(t *testing.T) {
	plan := factory.ProposedPlan("file:///a.py", 3, sampleEdit("y"))
	plan.Preview = "--- /a.py"
	plan.DiscardReason = "approval withheld"

	stored := PlanToModel(plan)
	restored := ModelToPlan(stored)

	assert.Equal(t, plan.UUID, restored.UUID)
	assert.Equal(t, plan.Edits, restored.Edits)
	assert.Equal(t, plan.SourceVersions, restored.SourceVersions)
	assert.Equal(t, entity.PlanStateProposed, restored.State)
	assert.Equal(t, plan.Preview, restored.Preview)
	assert.Equal(t, plan.DiscardReason, restored.DiscardReason)

	// Conversion copies; mutating the model must not touch the entity.
	stored.Edits["file:///a.py"][0].NewText = "mutated"
	assert.Equal(t, "y", plan.Edits["file:///a.py"][0].NewText)
}
