// Package planstore is the in-memory repository for edit plans. It is the
// single authority on plan lifecycle transitions: callers never mutate a
// plan's state directly.
package planstore

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/refactor-tools/refactor-lsp/src/refactor/entity"
	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
	"github.com/refactor-tools/refactor-lsp/src/refactor/mapper"
	"github.com/refactor-tools/refactor-lsp/src/refactor/model"
	"github.com/uber-go/tally"
	"go.uber.org/fx"
)

// Module is an fx module providing the plan repository.
var Module = fx.Provide(New)

// Repository is an entity-scoped repository for edit plans.
type Repository interface {
	// Create stores a new plan in Proposed state and returns it.
	Create(ctx context.Context, plan *entity.EditPlan) (*entity.EditPlan, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.EditPlan, error)
	// Approve moves a Proposed plan to Approved.
	Approve(ctx context.Context, id uuid.UUID) (*entity.EditPlan, error)
	// MarkApplied moves an Approved plan to the terminal Applied state.
	MarkApplied(ctx context.Context, id uuid.UUID) (*entity.EditPlan, error)
	// Discard moves a Proposed or Approved plan to the terminal Discarded state.
	Discard(ctx context.Context, id uuid.UUID, reason string) (*entity.EditPlan, error)
	List(ctx context.Context) ([]*entity.EditPlan, error)
}

type repository struct {
	mu       sync.Mutex
	memstore map[uuid.UUID]*model.Plan
	stats    tally.Scope
}

// New returns a repository to a key-value plan data store.
func New(stats tally.Scope) Repository {
	return &repository{
		memstore: make(map[uuid.UUID]*model.Plan),
		stats:    stats.SubScope("planstore"),
	}
}

func (r *repository) Create(ctx context.Context, plan *entity.EditPlan) (*entity.EditPlan, error) {
	if plan == nil {
		return nil, refactorerrors.New("can't save nil plan")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := mapper.PlanToModel(plan)
	stored.State = int32(entity.PlanStateProposed)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.memstore[stored.UUID] = stored
	r.stats.Counter("plans_created").Inc(1)
	r.stats.Gauge("plans_stored").Update(float64(len(r.memstore)))
	return mapper.ModelToPlan(stored), nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*entity.EditPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.memstore[id]
	if !ok {
		return nil, &refactorerrors.PlanNotFoundError{UUID: id}
	}
	return mapper.ModelToPlan(stored), nil
}

func (r *repository) Approve(ctx context.Context, id uuid.UUID) (*entity.EditPlan, error) {
	return r.transition(id, entity.PlanStateProposed, entity.PlanStateApproved)
}

func (r *repository) MarkApplied(ctx context.Context, id uuid.UUID) (*entity.EditPlan, error) {
	return r.transition(id, entity.PlanStateApproved, entity.PlanStateApplied)
}

func (r *repository) Discard(ctx context.Context, id uuid.UUID, reason string) (*entity.EditPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.memstore[id]
	if !ok {
		return nil, &refactorerrors.PlanNotFoundError{UUID: id}
	}

	from := entity.PlanState(stored.State)
	if from != entity.PlanStateProposed && from != entity.PlanStateApproved {
		return nil, &refactorerrors.PlanStateError{UUID: id, From: from.String(), To: entity.PlanStateDiscarded.String()}
	}

	stored.State = int32(entity.PlanStateDiscarded)
	stored.DiscardReason = reason
	r.stats.Counter("plans_discarded").Inc(1)
	return mapper.ModelToPlan(stored), nil
}

func (r *repository) List(ctx context.Context) ([]*entity.EditPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plans := make([]*entity.EditPlan, 0, len(r.memstore))
	for _, stored := range r.memstore {
		plans = append(plans, mapper.ModelToPlan(stored))
	}
	return plans, nil
}

func (r *repository) transition(id uuid.UUID, from, to entity.PlanState) (*entity.EditPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.memstore[id]
	if !ok {
		return nil, &refactorerrors.PlanNotFoundError{UUID: id}
	}
	if entity.PlanState(stored.State) != from {
		return nil, &refactorerrors.PlanStateError{UUID: id, From: entity.PlanState(stored.State).String(), To: to.String()}
	}

	stored.State = int32(to)
	r.stats.Counter("plans_" + to.String()).Inc(1)
	return mapper.ModelToPlan(stored), nil
}
