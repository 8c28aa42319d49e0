// Package memory provides an in-memory, serialisable implementation of
// dao.Store used for tests and ephemeral environments.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/dao"
	"github.com/viant/budgetflow/service/dao/criteria"
	"github.com/viant/budgetflow/service/dao/store"
)

type state struct {
	projects  *store.MemoryStore[string, model.Project]
	lineItems *store.MemoryStore[string, model.LineItem]
	requests  *store.MemoryStore[string, model.ExecutionRequest]
	steps     *store.MemoryStore[string, model.ApprovalStep]
}

func newState() *state {
	return &state{
		projects:  store.NewMemoryStore[string, model.Project](func(p *model.Project) string { return p.ID }, (*model.Project).Clone),
		lineItems: store.NewMemoryStore[string, model.LineItem](func(l *model.LineItem) string { return l.ID }, (*model.LineItem).Clone),
		requests:  store.NewMemoryStore[string, model.ExecutionRequest](func(r *model.ExecutionRequest) string { return r.ID }, (*model.ExecutionRequest).Clone),
		steps:     store.NewMemoryStore[string, model.ApprovalStep](func(s *model.ApprovalStep) string { return s.ID }, (*model.ApprovalStep).Clone),
	}
}

func (s *state) clone() *state {
	return &state{
		projects:  s.projects.Clone(),
		lineItems: s.lineItems.Clone(),
		requests:  s.requests.Clone(),
		steps:     s.steps.Clone(),
	}
}

// Service is a dao.Store keeping all rows in memory.  Writers are serialised
// and work on a private copy that replaces the shared state only when the
// unit of work succeeds.
type Service struct {
	mux   sync.RWMutex
	state *state
}

var _ dao.Store = (*Service)(nil)

// New creates an empty store.
func New() *Service {
	return &Service{state: newState()}
}

// RunInTx executes fn within a transactional copy of the store state.
func (s *Service) RunInTx(ctx context.Context, fn func(ctx context.Context, tx dao.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mux.Lock()
	defer s.mux.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Service) View(ctx context.Context, fn func(ctx context.Context, r dao.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mux.RLock()
	snapshot := s.state
	s.mux.RUnlock()
	// committed states are never mutated in place, so the snapshot is stable
	return fn(ctx, &transaction{state: snapshot, readOnly: true})
}

func (s *Service) Close() error { return nil }

type transaction struct {
	state    *state
	readOnly bool
}

func (t *transaction) Project(_ context.Context, id string) (*model.Project, error) {
	if ret := t.state.projects.Load(id); ret != nil {
		return ret, nil
	}
	return nil, dao.NotFound("project", id)
}

func (t *transaction) LineItem(_ context.Context, id string) (*model.LineItem, error) {
	if ret := t.state.lineItems.Load(id); ret != nil {
		return ret, nil
	}
	return nil, dao.NotFound("line item", id)
}

func (t *transaction) LineItems(_ context.Context, projectID string) ([]*model.LineItem, error) {
	return t.state.lineItems.List(func(l *model.LineItem) bool { return l.ProjectID == projectID }), nil
}

func (t *transaction) Request(_ context.Context, id string) (*model.ExecutionRequest, error) {
	if ret := t.state.requests.Load(id); ret != nil {
		return ret, nil
	}
	return nil, dao.NotFound("execution request", id)
}

func (t *transaction) Requests(_ context.Context, parameters ...*dao.Parameter) ([]*model.ExecutionRequest, error) {
	ret := t.state.requests.List(func(r *model.ExecutionRequest) bool {
		return criteria.MatchRequest(r, parameters)
	})
	return store.SortBy(ret, requestBefore), nil
}

func (t *transaction) CountRequestNumbers(_ context.Context, prefix string) (int, error) {
	return t.state.requests.Count(func(r *model.ExecutionRequest) bool {
		return strings.HasPrefix(r.RequestNumber, prefix)
	}), nil
}

func (t *transaction) Step(_ context.Context, id string) (*model.ApprovalStep, error) {
	if ret := t.state.steps.Load(id); ret != nil {
		return ret, nil
	}
	return nil, dao.NotFound("approval step", id)
}

func (t *transaction) Steps(_ context.Context, requestID string) ([]*model.ApprovalStep, error) {
	ret := t.state.steps.List(func(s *model.ApprovalStep) bool { return s.RequestID == requestID })
	return store.SortBy(ret, func(a, b *model.ApprovalStep) bool { return a.Step < b.Step }), nil
}

func (t *transaction) PendingSteps(_ context.Context, role string) ([]*model.PendingApproval, error) {
	var ret []*model.PendingApproval
	for _, step := range t.state.steps.List(func(s *model.ApprovalStep) bool {
		return s.ApproverRole == role && s.Status == model.StepPending
	}) {
		request := t.state.requests.Load(step.RequestID)
		if request == nil || request.Status != model.RequestPending || request.CurrentStep != step.Step {
			continue
		}
		ret = append(ret, &model.PendingApproval{Step: step, Request: request})
	}
	return store.SortBy(ret, func(a, b *model.PendingApproval) bool {
		return requestBefore(a.Request, b.Request)
	}), nil
}

func (t *transaction) InsertProject(_ context.Context, project *model.Project) error {
	if err := t.checkInsert(project == nil, idOf(project, func(p *model.Project) string { return p.ID })); err != nil {
		return err
	}
	if t.state.projects.Has(project.ID) {
		return dao.ErrDuplicate
	}
	t.state.projects.Save(project)
	return nil
}

func (t *transaction) InsertLineItem(_ context.Context, item *model.LineItem) error {
	if err := t.checkInsert(item == nil, idOf(item, func(l *model.LineItem) string { return l.ID })); err != nil {
		return err
	}
	if t.state.lineItems.Has(item.ID) {
		return dao.ErrDuplicate
	}
	if !t.state.projects.Has(item.ProjectID) {
		return dao.NotFound("project", item.ProjectID)
	}
	t.state.lineItems.Save(item)
	return nil
}

func (t *transaction) InsertRequest(_ context.Context, request *model.ExecutionRequest) error {
	if err := t.checkInsert(request == nil, idOf(request, func(r *model.ExecutionRequest) string { return r.ID })); err != nil {
		return err
	}
	if t.state.requests.Has(request.ID) {
		return dao.ErrDuplicate
	}
	if t.state.requests.Count(func(r *model.ExecutionRequest) bool { return r.RequestNumber == request.RequestNumber }) > 0 {
		return dao.ErrDuplicate
	}
	t.state.requests.Save(request)
	return nil
}

func (t *transaction) InsertStep(_ context.Context, step *model.ApprovalStep) error {
	if err := t.checkInsert(step == nil, idOf(step, func(s *model.ApprovalStep) string { return s.ID })); err != nil {
		return err
	}
	if t.state.steps.Has(step.ID) {
		return dao.ErrDuplicate
	}
	if !t.state.requests.Has(step.RequestID) {
		return dao.NotFound("execution request", step.RequestID)
	}
	t.state.steps.Save(step)
	return nil
}

func (t *transaction) UpdateProject(_ context.Context, project *model.Project) error {
	if err := t.checkUpdate(project == nil); err != nil {
		return err
	}
	if !t.state.projects.Has(project.ID) {
		return dao.NotFound("project", project.ID)
	}
	t.state.projects.Save(project)
	return nil
}

func (t *transaction) UpdateLineItem(_ context.Context, item *model.LineItem) error {
	if err := t.checkUpdate(item == nil); err != nil {
		return err
	}
	if !t.state.lineItems.Has(item.ID) {
		return dao.NotFound("line item", item.ID)
	}
	t.state.lineItems.Save(item)
	return nil
}

func (t *transaction) UpdateRequest(_ context.Context, request *model.ExecutionRequest) error {
	if err := t.checkUpdate(request == nil); err != nil {
		return err
	}
	if !t.state.requests.Has(request.ID) {
		return dao.NotFound("execution request", request.ID)
	}
	t.state.requests.Save(request)
	return nil
}

func (t *transaction) DecideStep(_ context.Context, step *model.ApprovalStep) error {
	if err := t.checkUpdate(step == nil); err != nil {
		return err
	}
	stored := t.state.steps.Load(step.ID)
	if stored == nil {
		return dao.NotFound("approval step", step.ID)
	}
	if stored.Status != model.StepPending {
		return dao.AlreadyDecided(step.ID)
	}
	t.state.steps.Save(step)
	return nil
}

func (t *transaction) SkipSteps(_ context.Context, requestID string, after int, at time.Time) (int, error) {
	if t.readOnly {
		return 0, errReadOnly
	}
	return t.state.steps.Update(func(s *model.ApprovalStep) bool {
		return s.RequestID == requestID && s.Step > after && s.Status == model.StepPending
	}, func(s *model.ApprovalStep) {
		s.Status = model.StepSkipped
		decidedAt := at
		s.DecidedAt = &decidedAt
	}), nil
}

func (t *transaction) checkInsert(isNil bool, id string) error {
	if err := t.checkUpdate(isNil); err != nil {
		return err
	}
	if id == "" {
		return dao.ErrInvalidID
	}
	return nil
}

func (t *transaction) checkUpdate(isNil bool) error {
	if t.readOnly {
		return errReadOnly
	}
	if isNil {
		return dao.ErrNilEntity
	}
	return nil
}

func idOf[T any](v *T, fn func(*T) string) string {
	if v == nil {
		return ""
	}
	return fn(v)
}

func requestBefore(a, b *model.ExecutionRequest) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.RequestNumber < b.RequestNumber
}
