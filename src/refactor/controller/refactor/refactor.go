// Package refactor implements the code navigation and modification
// operations exposed to the tool layer: symbol queries, rename planning, and
// the plan approval workflow.
package refactor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/refactor-tools/refactor-lsp/src/refactor/controller/docsync"
	"github.com/refactor-tools/refactor-lsp/src/refactor/controller/editapply"
	"github.com/refactor-tools/refactor-lsp/src/refactor/entity"
	"github.com/refactor-tools/refactor-lsp/src/refactor/gateway/langserver"
	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
	"github.com/refactor-tools/refactor-lsp/src/refactor/mapper"
	"github.com/refactor-tools/refactor-lsp/src/refactor/repository/planstore"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module is an fx module providing the refactor controller.
var Module = fx.Provide(New)

// Controller exposes the operations of the tool surface. Position arguments
// are zero-based line and character offsets, character measured in UTF-16
// code units as on the wire.
type Controller interface {
	// LocateDefinition resolves the definition site of the symbol at the
	// position. A nil location with nil error means the server found none.
	LocateDefinition(ctx context.Context, path string, pos protocol.Position) (*protocol.Location, error)
	// FindReferences lists every reference to the symbol at the position.
	FindReferences(ctx context.Context, path string, pos protocol.Position, includeDeclaration bool) ([]protocol.Location, error)
	// DescribeSymbol returns hover information for the symbol at the
	// position. A nil result with nil error means the server had none.
	DescribeSymbol(ctx context.Context, path string, pos protocol.Position) (*protocol.Hover, error)
	// ProposeRename asks the server to plan a rename and stores the result as
	// a Proposed plan. No file is modified.
	ProposeRename(ctx context.Context, path string, pos protocol.Position, newName string) (*entity.EditPlan, error)
	// ListCodeActions lists the actions available for a range, optionally
	// filtered by kind.
	ListCodeActions(ctx context.Context, path string, rng protocol.Range, only []protocol.CodeActionKind) ([]protocol.CodeAction, error)
	// ApprovePlan moves a Proposed plan to Approved.
	ApprovePlan(ctx context.Context, id uuid.UUID) (*entity.EditPlan, error)
	// DiscardPlan moves a Proposed or Approved plan to Discarded.
	DiscardPlan(ctx context.Context, id uuid.UUID, reason string) (*entity.EditPlan, error)
	// ApplyPlan applies an Approved plan. A staging failure discards the
	// plan and leaves every file untouched.
	ApplyPlan(ctx context.Context, id uuid.UUID) (*entity.ApplyResult, error)
	// ListPlans returns all stored plans.
	ListPlans(ctx context.Context) ([]*entity.EditPlan, error)
	// Diagnostics returns the last published diagnostics for a document.
	Diagnostics(path string) ([]protocol.Diagnostic, error)
}

// Params define values to be used by the controller.
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
	Stats     tally.Scope
	Gateway   langserver.Gateway
	Documents docsync.Synchronizer
	Applier   editapply.Applier
	Plans     planstore.Repository
}

type controller struct {
	logger    *zap.SugaredLogger
	stats     tally.Scope
	gateway   langserver.Gateway
	documents docsync.Synchronizer
	applier   editapply.Applier
	plans     planstore.Repository

	diagnostics *diagnosticsCache
}

// New creates the refactor controller and starts the diagnostics listener.
func New(p Params) Controller {
	c := &controller{
		logger:      p.Logger.With("component", "refactor"),
		stats:       p.Stats.SubScope("refactor"),
		gateway:     p.Gateway,
		documents:   p.Documents,
		applier:     p.Applier,
		plans:       p.Plans,
		diagnostics: newDiagnosticsCache(),
	}

	// The listener exits on its own when the session terminates and the
	// subscription channel closes.
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go c.consumeDiagnostics(p.Gateway.Subscribe(protocol.MethodTextDocumentPublishDiagnostics))
			return nil
		},
	})
	return c
}

func (c *controller) LocateDefinition(ctx context.Context, path string, pos protocol.Position) (*protocol.Location, error) {
	doc, err := c.documents.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	err = c.gateway.Request(ctx, protocol.MethodTextDocumentDefinition, &protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Position:     pos,
	}, &raw)
	if err != nil {
		return nil, err
	}

	location, err := decodeLocation(raw)
	if err != nil {
		return nil, err
	}
	c.stats.Counter("definitions_located").Inc(1)
	return location, nil
}

func (c *controller) FindReferences(ctx context.Context, path string, pos protocol.Position, includeDeclaration bool) ([]protocol.Location, error) {
	doc, err := c.documents.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	var locations []protocol.Location
	err = c.gateway.Request(ctx, protocol.MethodTextDocumentReferences, &protocol.ReferenceParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
			Position:     pos,
		},
		Context: protocol.ReferenceContext{IncludeDeclaration: includeDeclaration},
	}, &locations)
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (c *controller) DescribeSymbol(ctx context.Context, path string, pos protocol.Position) (*protocol.Hover, error) {
	doc, err := c.documents.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	err = c.gateway.Request(ctx, protocol.MethodTextDocumentHover, &protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Position:     pos,
	}, &raw)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}

	var hover protocol.Hover
	if err := json.Unmarshal(raw, &hover); err != nil {
		return nil, &refactorerrors.ProtocolError{Reason: "decoding hover result", Err: err}
	}
	return &hover, nil
}

func (c *controller) ProposeRename(ctx context.Context, path string, pos protocol.Position, newName string) (*entity.EditPlan, error) {
	if newName == "" {
		return nil, &refactorerrors.ValidationError{Reason: "new name is empty"}
	}

	doc, err := c.documents.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	var edit protocol.WorkspaceEdit
	err = c.gateway.Request(ctx, protocol.MethodTextDocumentRename, &protocol.RenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
			Position:     pos,
		},
		NewName: newName,
	}, &edit)
	if err != nil {
		return nil, err
	}

	plan, err := c.buildPlan(ctx, fmt.Sprintf("rename to %s", newName), &edit)
	if err != nil {
		return nil, err
	}

	c.stats.Counter("plans_proposed").Inc(1)
	c.logger.Infow("rename plan proposed", "plan", plan.UUID, "newName", newName, "files", len(plan.Edits))
	return plan, nil
}

// buildPlan normalizes a WorkspaceEdit into a Proposed plan with a rendered
// preview. Every touched file is opened so its version can be pinned.
func (c *controller) buildPlan(ctx context.Context, label string, edit *protocol.WorkspaceEdit) (*entity.EditPlan, error) {
	edits, err := mapper.WorkspaceEditToEdits(edit)
	if err != nil {
		return nil, err
	}

	plan := &entity.EditPlan{
		UUID:           uuid.Must(uuid.NewV4()),
		Label:          label,
		Edits:          edits,
		SourceVersions: make(map[uri.URI]int32, len(edits)),
		State:          entity.PlanStateProposed,
		CreatedAt:      time.Now(),
	}

	for u := range edits {
		if _, err := c.documents.Open(ctx, u.Filename()); err != nil {
			return nil, err
		}
		version, ok := c.documents.Version(u)
		if !ok {
			return nil, &refactorerrors.DocumentNotFoundError{URI: u}
		}
		plan.SourceVersions[u] = version
	}

	preview, err := c.applier.Preview(plan)
	if err != nil {
		return nil, err
	}
	plan.Preview = preview

	return c.plans.Create(ctx, plan)
}

func (c *controller) ListCodeActions(ctx context.Context, path string, rng protocol.Range, only []protocol.CodeActionKind) ([]protocol.CodeAction, error) {
	doc, err := c.documents.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	var actions []protocol.CodeAction
	err = c.gateway.Request(ctx, protocol.MethodTextDocumentCodeAction, &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Range:        rng,
		Context: protocol.CodeActionContext{
			Diagnostics: c.diagnostics.get(doc.URI),
			Only:        only,
		},
	}, &actions)
	if err != nil {
		return nil, err
	}
	return actions, nil
}

func (c *controller) ApprovePlan(ctx context.Context, id uuid.UUID) (*entity.EditPlan, error) {
	plan, err := c.plans.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	c.logger.Infow("plan approved", "plan", id)
	return plan, nil
}

func (c *controller) DiscardPlan(ctx context.Context, id uuid.UUID, reason string) (*entity.EditPlan, error) {
	plan, err := c.plans.Discard(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	c.logger.Infow("plan discarded", "plan", id, "reason", reason)
	return plan, nil
}

func (c *controller) ApplyPlan(ctx context.Context, id uuid.UUID) (*entity.ApplyResult, error) {
	plan, err := c.plans.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.State != entity.PlanStateApproved {
		return nil, &refactorerrors.PlanStateError{UUID: id, From: plan.State.String(), To: entity.PlanStateApplied.String()}
	}

	result, err := c.applier.Apply(ctx, plan)
	if err != nil {
		// A failed application can never be retried against moved files.
		if _, derr := c.plans.Discard(ctx, id, err.Error()); derr != nil {
			c.logger.Errorw("discarding failed plan", "plan", id, "error", derr)
		}
		return nil, err
	}

	if _, err := c.plans.MarkApplied(ctx, id); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *controller) ListPlans(ctx context.Context) ([]*entity.EditPlan, error) {
	return c.plans.List(ctx)
}

// decodeLocation handles the two shapes a definition response may take: a
// single location or an array of locations, of which the first is taken.
func decodeLocation(raw json.RawMessage) (*protocol.Location, error) {
	if isNull(raw) {
		return nil, nil
	}

	var locations []protocol.Location
	if err := json.Unmarshal(raw, &locations); err == nil {
		if len(locations) == 0 {
			return nil, nil
		}
		return &locations[0], nil
	}

	var location protocol.Location
	if err := json.Unmarshal(raw, &location); err != nil {
		return nil, &refactorerrors.ProtocolError{Reason: "decoding definition result", Err: err}
	}
	return &location, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
