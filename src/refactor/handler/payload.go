package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/refactor-tools/refactor-lsp/src/refactor/entity"
	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
	"go.lsp.dev/protocol"
)

type fileRequest struct {
	File string `json:"file"`
}

type positionRequest struct {
	File   string `json:"file"`
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
}

func (r *positionRequest) position() protocol.Position {
	return protocol.Position{Line: r.Line, Character: r.Column}
}

type referencesRequest struct {
	positionRequest
	IncludeDeclaration bool `json:"includeDeclaration"`
}

type renameRequest struct {
	positionRequest
	NewName string `json:"newName"`
}

type codeActionRequest struct {
	File  string         `json:"file"`
	Range protocol.Range `json:"range"`
	Only  []string       `json:"only,omitempty"`
}

func (r *codeActionRequest) kinds() []protocol.CodeActionKind {
	if len(r.Only) == 0 {
		return nil
	}
	kinds := make([]protocol.CodeActionKind, 0, len(r.Only))
	for _, k := range r.Only {
		kinds = append(kinds, protocol.CodeActionKind(k))
	}
	return kinds
}

type planRequest struct {
	Plan string `json:"plan"`
}

type discardRequest struct {
	Plan   string `json:"plan"`
	Reason string `json:"reason,omitempty"`
}

type notFoundResult struct {
	Found bool `json:"found"`
}

type locationResult struct {
	Found    bool               `json:"found"`
	Location *protocol.Location `json:"location"`
}

type hoverResult struct {
	Found bool            `json:"found"`
	Hover *protocol.Hover `json:"hover"`
}

// planPayload is the external rendering of an edit plan. Edits are keyed by
// file path rather than URI for the tool caller's convenience.
type planPayload struct {
	Plan          string                         `json:"plan"`
	Label         string                         `json:"label"`
	State         string                         `json:"state"`
	Edits         map[string][]protocol.TextEdit `json:"edits"`
	Versions      map[string]int32               `json:"sourceVersions"`
	Preview       string                         `json:"preview,omitempty"`
	DiscardReason string                         `json:"discardReason,omitempty"`
	CreatedAt     time.Time                      `json:"createdAt"`
}

func planToPayload(plan *entity.EditPlan) *planPayload {
	edits := make(map[string][]protocol.TextEdit, len(plan.Edits))
	for u, fileEdits := range plan.Edits {
		edits[u.Filename()] = fileEdits
	}
	versions := make(map[string]int32, len(plan.SourceVersions))
	for u, v := range plan.SourceVersions {
		versions[u.Filename()] = v
	}
	return &planPayload{
		Plan:          plan.UUID.String(),
		Label:         plan.Label,
		State:         plan.State.String(),
		Edits:         edits,
		Versions:      versions,
		Preview:       plan.Preview,
		DiscardReason: plan.DiscardReason,
		CreatedAt:     plan.CreatedAt,
	}
}

func unmarshalParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return &refactorerrors.ValidationError{Reason: "missing params"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &refactorerrors.ValidationError{Reason: fmt.Sprintf("malformed params: %v", err)}
	}
	return nil
}

func unmarshalPlanID(raw json.RawMessage) (uuid.UUID, error) {
	var req planRequest
	if err := unmarshalParams(raw, &req); err != nil {
		return uuid.Nil, err
	}
	return parsePlanID(req.Plan)
}

func parsePlanID(s string) (uuid.UUID, error) {
	id, err := uuid.FromString(s)
	if err != nil {
		return uuid.Nil, &refactorerrors.ValidationError{Reason: fmt.Sprintf("malformed plan id %q", s)}
	}
	return id, nil
}
