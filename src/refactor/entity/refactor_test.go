package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "Ready", SessionStateReady.String())
	assert.Equal(t, "ShuttingDown", SessionStateShuttingDown.String())
	assert.Equal(t, "Unknown", SessionState(99).String())

	assert.Equal(t, "Proposed", PlanStateProposed.String())
	assert.Equal(t, "Discarded", PlanStateDiscarded.String())
	assert.Equal(t, "Unknown", PlanState(99).String())
}

func TestEditPlanFiles(t *testing.T) {
	plan := &EditPlan{
		Edits: map[uri.URI][]protocol.TextEdit{
			"file:///a.py": {},
			"file:///b.py": {},
		},
	}
	assert.ElementsMatch(t, []uri.URI{"file:///a.py", "file:///b.py"}, plan.Files())
}
