package refactor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/config"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/refactor-tools/refactor-lsp/src/refactor/controller/docsync"
	"github.com/refactor-tools/refactor-lsp/src/refactor/controller/docsync/docsyncmock"
	"github.com/refactor-tools/refactor-lsp/src/refactor/controller/editapply"
	"github.com/refactor-tools/refactor-lsp/src/refactor/controller/editapply/editapplymock"
	"github.com/refactor-tools/refactor-lsp/src/refactor/entity"
	"github.com/refactor-tools/refactor-lsp/src/refactor/factory"
	"github.com/refactor-tools/refactor-lsp/src/refactor/gateway/langserver/langservermock"
	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
	"github.com/refactor-tools/refactor-lsp/src/refactor/internal/fs"
	"github.com/refactor-tools/refactor-lsp/src/refactor/repository/planstore"
	"github.com/refactor-tools/refactor-lsp/src/refactor/repository/planstore/planstoremock"
)

type mocks struct {
	gateway *langservermock.MockGateway
	docs    *docsyncmock.MockSynchronizer
	applier *editapplymock.MockApplier
	plans   *planstoremock.MockRepository
}

func newMockedController(t *testing.T) (Controller, *mocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &mocks{
		gateway: langservermock.NewMockGateway(ctrl),
		docs:    docsyncmock.NewMockSynchronizer(ctrl),
		applier: editapplymock.NewMockApplier(ctrl),
		plans:   planstoremock.NewMockRepository(ctrl),
	}
	c := New(Params{
		Lifecycle: fxtest.NewLifecycle(t),
		Logger:    zap.NewNop().Sugar(),
		Stats:     tally.NewTestScope("testing", nil),
		Gateway:   m.gateway,
		Documents: m.docs,
		Applier:   m.applier,
		Plans:     m.plans,
	})
	return c, m
}

func openDoc(path string) *entity.OpenDocument {
	return factory.OpenDocument(uri.File(path), "def calc_sum(x):\n    return x\n")
}

func TestLocateDefinition(t *testing.T) {
	ctx := context.Background()
	path := "/workspace/a.py"
	pos := protocol.Position{Line: 0, Character: 5}

	tests := []struct {
		name     string
		response string
		found    bool
		line     uint32
	}{
		{name: "array of locations", response: `[{"uri":"file:///workspace/a.py","range":{"start":{"line":3,"character":0},"end":{"line":3,"character":8}}}]`, found: true, line: 3},
		{name: "single location", response: `{"uri":"file:///workspace/a.py","range":{"start":{"line":7,"character":0},"end":{"line":7,"character":8}}}`, found: true, line: 7},
		{name: "null result", response: `null`, found: false},
		{name: "empty array", response: `[]`, found: false},
	}
	for _, tt := range tests {
		t.Run("should handle a "+tt.name, func(t *testing.T) {
			c, m := newMockedController(t)
			m.docs.EXPECT().Open(gomock.Any(), path).Return(openDoc(path), nil)
			m.gateway.EXPECT().Request(gomock.Any(), protocol.MethodTextDocumentDefinition, gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, _, result interface{}) error {
					*result.(*json.RawMessage) = json.RawMessage(tt.response)
					return nil
				})

			location, err := c.LocateDefinition(ctx, path, pos)
			require.NoError(t, err)
			if !tt.found {
				assert.Nil(t, location)
				return
			}
			require.NotNil(t, location)
			assert.Equal(t, tt.line, location.Range.Start.Line)
		})
	}

	t.Run("should propagate a transport failure", func(t *testing.T) {
		c, m := newMockedController(t)
		m.docs.EXPECT().Open(gomock.Any(), path).Return(openDoc(path), nil)
		m.gateway.EXPECT().Request(gomock.Any(), protocol.MethodTextDocumentDefinition, gomock.Any(), gomock.Any()).
			Return(&refactorerrors.TransportError{Op: "writing request"})

		_, err := c.LocateDefinition(ctx, path, pos)
		var transportErr *refactorerrors.TransportError
		assert.ErrorAs(t, err, &transportErr)
	})
}

func TestDescribeSymbol(t *testing.T) {
	ctx := context.Background()
	path := "/workspace/a.py"
	pos := protocol.Position{Line: 0, Character: 5}

	t.Run("should decode hover contents", func(t *testing.T) {
		c, m := newMockedController(t)
		m.docs.EXPECT().Open(gomock.Any(), path).Return(openDoc(path), nil)
		m.gateway.EXPECT().Request(gomock.Any(), protocol.MethodTextDocumentHover, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _, result interface{}) error {
				*result.(*json.RawMessage) = json.RawMessage(`{"contents":{"kind":"markdown","value":"def calc_sum(x)"}}`)
				return nil
			})

		hover, err := c.DescribeSymbol(ctx, path, pos)
		require.NoError(t, err)
		require.NotNil(t, hover)
		assert.Equal(t, "def calc_sum(x)", hover.Contents.Value)
	})

	t.Run("should report no hover as not found", func(t *testing.T) {
		c, m := newMockedController(t)
		m.docs.EXPECT().Open(gomock.Any(), path).Return(openDoc(path), nil)
		m.gateway.EXPECT().Request(gomock.Any(), protocol.MethodTextDocumentHover, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _, result interface{}) error {
				*result.(*json.RawMessage) = json.RawMessage(`null`)
				return nil
			})

		hover, err := c.DescribeSymbol(ctx, path, pos)
		require.NoError(t, err)
		assert.Nil(t, hover)
	})
}

func TestProposeRenameValidation(t *testing.T) {
	t.Run("should reject an empty new name", func(t *testing.T) {
		c, _ := newMockedController(t)
		_, err := c.ProposeRename(context.Background(), "/workspace/a.py", protocol.Position{}, "")
		var validation *refactorerrors.ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("should reject a rename touching an unsaved document", func(t *testing.T) {
		path := "/workspace/a.py"
		c, m := newMockedController(t)
		m.docs.EXPECT().Open(gomock.Any(), path).Return(openDoc(path), nil)
		m.gateway.EXPECT().Request(gomock.Any(), protocol.MethodTextDocumentRename, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _, result interface{}) error {
				*result.(*protocol.WorkspaceEdit) = protocol.WorkspaceEdit{
					Changes: map[uri.URI][]protocol.TextEdit{
						"untitled:Untitled-1": {factory.TextEdit(0, 0, 1, "y")},
					},
				}
				return nil
			})

		_, err := c.ProposeRename(context.Background(), path, protocol.Position{}, "y")
		var validation *refactorerrors.ValidationError
		assert.ErrorAs(t, err, &validation)
	})
}

func TestApplyPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("should refuse a plan that was never approved", func(t *testing.T) {
		c, m := newMockedController(t)
		plan := factory.ProposedPlan("file:///a.py", 1, factory.TextEdit(0, 0, 1, "y"))
		m.plans.EXPECT().Get(gomock.Any(), plan.UUID).Return(plan, nil)

		_, err := c.ApplyPlan(ctx, plan.UUID)
		var stateErr *refactorerrors.PlanStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "Proposed", stateErr.From)
	})

	t.Run("should discard the plan when staging fails", func(t *testing.T) {
		c, m := newMockedController(t)
		plan := factory.ProposedPlan("file:///a.py", 1, factory.TextEdit(0, 0, 1, "y"))
		plan.State = entity.PlanStateApproved

		stale := &refactorerrors.StalePlanError{URI: "file:///a.py", PlanVersion: 1, CurrentVersion: 2}
		m.plans.EXPECT().Get(gomock.Any(), plan.UUID).Return(plan, nil)
		m.applier.EXPECT().Apply(gomock.Any(), plan).Return(nil, stale)
		m.plans.EXPECT().Discard(gomock.Any(), plan.UUID, stale.Error()).Return(plan, nil)

		_, err := c.ApplyPlan(ctx, plan.UUID)
		assert.ErrorIs(t, err, stale)
	})

	t.Run("should mark the plan applied on success", func(t *testing.T) {
		c, m := newMockedController(t)
		plan := factory.ProposedPlan("file:///a.py", 1, factory.TextEdit(0, 0, 1, "y"))
		plan.State = entity.PlanStateApproved

		result := &entity.ApplyResult{PlanUUID: plan.UUID}
		m.plans.EXPECT().Get(gomock.Any(), plan.UUID).Return(plan, nil)
		m.applier.EXPECT().Apply(gomock.Any(), plan).Return(result, nil)
		m.plans.EXPECT().MarkApplied(gomock.Any(), plan.UUID).Return(plan, nil)

		got, err := c.ApplyPlan(ctx, plan.UUID)
		require.NoError(t, err)
		assert.Equal(t, result, got)
	})
}

func TestDiagnosticsCache(t *testing.T) {
	t.Run("should store the last published set per file", func(t *testing.T) {
		c, _ := newMockedController(t)
		impl := c.(*controller)

		u := uri.File("/workspace/a.py")
		impl.diagnostics.set(u, []protocol.Diagnostic{{Message: "unused variable"}})
		impl.diagnostics.set(u, []protocol.Diagnostic{{Message: "syntax error"}})

		diags, err := c.Diagnostics("/workspace/a.py")
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, "syntax error", diags[0].Message)
	})
}

// TestRenameEndToEnd drives a rename through the real synchronizer, applier,
// and plan store, with only the language server stubbed.
func TestRenameEndToEnd(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	gw := langservermock.NewMockGateway(ctrl)

	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.py")
	bPath := filepath.Join(dir, "b.py")
	require.NoError(t, os.WriteFile(aPath, []byte("def calc_sum(x):\n    return x\n"), 0644))
	require.NoError(t, os.WriteFile(bPath, []byte("from a import calc_sum\nprint(calc_sum(2))\n"), 0644))
	aURI := uri.File(aPath)
	bURI := uri.File(bPath)

	gw.EXPECT().Notify(gomock.Any(), protocol.MethodTextDocumentDidOpen, gomock.Any()).Return(nil).Times(2)
	gw.EXPECT().Notify(gomock.Any(), protocol.MethodTextDocumentDidChange, gomock.Any()).Return(nil).Times(2)
	gw.EXPECT().Request(gomock.Any(), protocol.MethodTextDocumentRename, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _, result interface{}) error {
			*result.(*protocol.WorkspaceEdit) = protocol.WorkspaceEdit{
				Changes: map[uri.URI][]protocol.TextEdit{
					aURI: {factory.TextEdit(0, 4, 12, "calculate_total")},
					bURI: {
						factory.TextEdit(0, 14, 22, "calculate_total"),
						factory.TextEdit(1, 6, 14, "calculate_total"),
					},
				},
			}
			return nil
		})

	provider, err := config.NewYAML(config.Source(strings.NewReader("docsync:\n  maxFileSizeBytes: 0\n  watchExternalChanges: false")))
	require.NoError(t, err)
	scope := tally.NewTestScope("testing", nil)
	logger := zap.NewNop().Sugar()
	filesystem := fs.New()

	documents, err := docsync.New(docsync.Params{
		Config:    provider,
		Lifecycle: fxtest.NewLifecycle(t),
		Logger:    logger,
		Stats:     scope,
		Gateway:   gw,
		FS:        filesystem,
	})
	require.NoError(t, err)

	applier := editapply.New(editapply.Params{
		Logger:    logger,
		Stats:     scope,
		Documents: documents,
		FS:        filesystem,
	})

	c := New(Params{
		Lifecycle: fxtest.NewLifecycle(t),
		Logger:    logger,
		Stats:     scope,
		Gateway:   gw,
		Documents: documents,
		Applier:   applier,
		Plans:     planstore.New(scope),
	})

	plan, err := c.ProposeRename(ctx, aPath, protocol.Position{Line: 0, Character: 4}, "calculate_total")
	require.NoError(t, err)
	assert.Equal(t, entity.PlanStateProposed, plan.State)
	assert.Len(t, plan.Edits, 2)
	assert.Equal(t, int32(1), plan.SourceVersions[aURI])
	assert.Equal(t, int32(1), plan.SourceVersions[bURI])
	assert.Contains(t, plan.Preview, "calculate_total")

	// Nothing is written while the plan awaits approval.
	onDisk, err := os.ReadFile(aPath)
	require.NoError(t, err)
	assert.Equal(t, "def calc_sum(x):\n    return x\n", string(onDisk))

	_, err = c.ApprovePlan(ctx, plan.UUID)
	require.NoError(t, err)

	result, err := c.ApplyPlan(ctx, plan.UUID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{aPath, bPath}, result.ModifiedFiles)
	assert.Equal(t, int32(2), result.FileVersions[aURI])
	assert.Equal(t, int32(2), result.FileVersions[bURI])

	aContent, err := os.ReadFile(aPath)
	require.NoError(t, err)
	bContent, err := os.ReadFile(bPath)
	require.NoError(t, err)
	assert.Equal(t, "def calculate_total(x):\n    return x\n", string(aContent))
	assert.Equal(t, "from a import calculate_total\nprint(calculate_total(2))\n", string(bContent))
	assert.NotContains(t, string(aContent), "calc_sum")
	assert.NotContains(t, string(bContent), "calc_sum")

	stored, err := c.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, entity.PlanStateApplied, stored[0].State)
}
