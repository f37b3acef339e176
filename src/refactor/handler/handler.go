// Package handler exposes the tool surface over framed JSON on standard
// streams. Dispatch runs over a closed table keyed by a fixed operation
// enumeration; there is no dynamic handler registration.
package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/refactor-tools/refactor-lsp/src/refactor/controller/refactor"
	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
	"github.com/refactor-tools/refactor-lsp/src/refactor/internal/wire"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module is an fx module providing the tool handler.
var Module = fx.Provide(New)

// Op enumerates the operations of the tool surface.
type Op string

// The complete operation set. Requests naming any other method are rejected.
const (
	OpLocateDefinition Op = "refactor/locateDefinition"
	OpFindReferences   Op = "refactor/findReferences"
	OpDescribeSymbol   Op = "refactor/describeSymbol"
	OpProposeRename    Op = "refactor/proposeRename"
	OpListCodeActions  Op = "refactor/listCodeActions"
	OpApprovePlan      Op = "refactor/approvePlan"
	OpDiscardPlan      Op = "refactor/discardPlan"
	OpApplyPlan        Op = "refactor/applyPlan"
	OpListPlans        Op = "refactor/listPlans"
	OpDiagnostics      Op = "refactor/diagnostics"
)

type opFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// Handler serves framed tool requests from a reader and writes framed
// responses to a writer.
type Handler struct {
	logger  *zap.SugaredLogger
	stats   tally.Scope
	table   map[Op]opFunc
	writeMu sync.Mutex
}

// Params define values to be used by the handler.
type Params struct {
	fx.In

	Logger     *zap.SugaredLogger
	Stats      tally.Scope
	Controller refactor.Controller
}

// New creates the handler with its full dispatch table.
func New(p Params) *Handler {
	h := &Handler{
		logger: p.Logger.With("component", "handler"),
		stats:  p.Stats.SubScope("handler"),
	}
	c := p.Controller
	h.table = map[Op]opFunc{
		OpLocateDefinition: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var req positionRequest
			if err := unmarshalParams(raw, &req); err != nil {
				return nil, err
			}
			location, err := c.LocateDefinition(ctx, req.File, req.position())
			if err != nil {
				return nil, err
			}
			if location == nil {
				return notFoundResult{Found: false}, nil
			}
			return locationResult{Found: true, Location: location}, nil
		},
		OpFindReferences: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var req referencesRequest
			if err := unmarshalParams(raw, &req); err != nil {
				return nil, err
			}
			locations, err := c.FindReferences(ctx, req.File, req.position(), req.IncludeDeclaration)
			if err != nil {
				return nil, err
			}
			if locations == nil {
				locations = []protocol.Location{}
			}
			return locations, nil
		},
		OpDescribeSymbol: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var req positionRequest
			if err := unmarshalParams(raw, &req); err != nil {
				return nil, err
			}
			hover, err := c.DescribeSymbol(ctx, req.File, req.position())
			if err != nil {
				return nil, err
			}
			if hover == nil {
				return notFoundResult{Found: false}, nil
			}
			return hoverResult{Found: true, Hover: hover}, nil
		},
		OpProposeRename: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var req renameRequest
			if err := unmarshalParams(raw, &req); err != nil {
				return nil, err
			}
			plan, err := c.ProposeRename(ctx, req.File, req.position(), req.NewName)
			if err != nil {
				return nil, err
			}
			return planToPayload(plan), nil
		},
		OpListCodeActions: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var req codeActionRequest
			if err := unmarshalParams(raw, &req); err != nil {
				return nil, err
			}
			actions, err := c.ListCodeActions(ctx, req.File, req.Range, req.kinds())
			if err != nil {
				return nil, err
			}
			if actions == nil {
				actions = []protocol.CodeAction{}
			}
			return actions, nil
		},
		OpApprovePlan: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			id, err := unmarshalPlanID(raw)
			if err != nil {
				return nil, err
			}
			plan, err := c.ApprovePlan(ctx, id)
			if err != nil {
				return nil, err
			}
			return planToPayload(plan), nil
		},
		OpDiscardPlan: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var req discardRequest
			if err := unmarshalParams(raw, &req); err != nil {
				return nil, err
			}
			id, err := parsePlanID(req.Plan)
			if err != nil {
				return nil, err
			}
			plan, err := c.DiscardPlan(ctx, id, req.Reason)
			if err != nil {
				return nil, err
			}
			return planToPayload(plan), nil
		},
		OpApplyPlan: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			id, err := unmarshalPlanID(raw)
			if err != nil {
				return nil, err
			}
			return c.ApplyPlan(ctx, id)
		},
		OpListPlans: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			plans, err := c.ListPlans(ctx)
			if err != nil {
				return nil, err
			}
			payloads := make([]*planPayload, 0, len(plans))
			for _, plan := range plans {
				payloads = append(payloads, planToPayload(plan))
			}
			return payloads, nil
		},
		OpDiagnostics: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var req fileRequest
			if err := unmarshalParams(raw, &req); err != nil {
				return nil, err
			}
			diags, err := c.Diagnostics(req.File)
			if err != nil {
				return nil, err
			}
			if diags == nil {
				diags = []protocol.Diagnostic{}
			}
			return diags, nil
		},
	}
	return h
}

// Serve reads framed requests until the reader is exhausted. Each request is
// answered with exactly one framed response carrying the request's id.
func (h *Handler) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	for {
		msg, err := wire.Read(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if msg.ID == nil || msg.Method == "" {
			h.logger.Warnw("dropping message that is not a request", "method", msg.Method)
			continue
		}
		h.dispatch(ctx, msg, w)
	}
}

func (h *Handler) dispatch(ctx context.Context, msg *wire.Message, w io.Writer) {
	op := Op(msg.Method)
	fn, ok := h.table[op]
	if !ok {
		h.respond(w, wire.NewErrorResponse(msg.ID, wire.CodeMethodNotFound, fmt.Sprintf("unknown operation %q", msg.Method)))
		return
	}

	h.stats.Tagged(map[string]string{"op": string(op)}).Counter("requests").Inc(1)
	result, err := fn(ctx, msg.Params)
	if err != nil {
		h.logger.Warnw("operation failed", "op", op, "error", err)
		h.respond(w, wire.NewErrorResponse(msg.ID, errorCode(err), err.Error()))
		return
	}

	response, err := wire.NewResponse(msg.ID, result)
	if err != nil {
		h.respond(w, wire.NewErrorResponse(msg.ID, wire.CodeInternalError, err.Error()))
		return
	}
	h.respond(w, response)
}

func (h *Handler) respond(w io.Writer, msg *wire.Message) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if err := wire.Write(w, msg); err != nil {
		h.logger.Errorw("writing response failed", "error", err)
	}
}

// errorCode maps the error taxonomy onto wire codes.
func errorCode(err error) int64 {
	var validation *refactorerrors.ValidationError
	if errors.As(err, &validation) {
		return wire.CodeInvalidParams
	}
	var notFound *refactorerrors.PlanNotFoundError
	if errors.As(err, &notFound) {
		return wire.CodeInvalidParams
	}
	return wire.CodeInternalError
}
