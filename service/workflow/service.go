package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/viant/budgetflow/internal/clock"
	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/dao"
	"github.com/viant/budgetflow/service/gate"
	"github.com/viant/budgetflow/service/ledger"
	"github.com/viant/budgetflow/service/notify"
	"github.com/viant/budgetflow/tracing"
)

// Service is the approval workflow orchestrator.
type Service struct {
	store      dao.Store
	ledger     *ledger.Service
	directory  gate.Directory
	dispatcher notify.Dispatcher
	logger     *zap.Logger
}

// New creates an orchestrator.
func New(store dao.Store, ledgerService *ledger.Service, directory gate.Directory, options ...Option) *Service {
	ret := &Service{
		store:      store,
		ledger:     ledgerService,
		directory:  directory,
		dispatcher: notify.Nop,
		logger:     zap.NewNop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// decision is the state loaded and validated before any write.
type decision struct {
	actor    *model.Actor
	step     *model.ApprovalStep
	request  *model.ExecutionRequest
	lineItem *model.LineItem
}

func (d *decision) final() bool { return d.step.Step == d.request.TotalSteps }

// Approve records a positive decision on stepID.  Intermediate steps only
// advance the request; the final step re-checks the budget and commits the
// amount to the ledger.
func (s *Service) Approve(ctx context.Context, stepID, actorID, note string) (result *Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "workflow.approve", tracing.KindInternal)
	span.WithAttributes(map[string]string{"step_id": stepID, "actor_id": actorID})
	defer func() { tracing.EndSpan(span, err) }()

	actor, err := s.directory.Lookup(ctx, actorID)
	if err != nil {
		return nil, err
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx dao.Tx) error {
		d, err := s.load(ctx, tx, stepID, actor)
		if err != nil {
			return err
		}
		if d.final() {
			result, err = s.approveFinal(ctx, tx, d, note)
		} else {
			result, err = s.approveIntermediate(ctx, tx, d, note)
		}
		return err
	})
	if err != nil {
		s.logger.Info("approval refused",
			zap.String("step_id", stepID),
			zap.String("actor", actorID),
			zap.String("kind", string(model.KindOf(err))),
			zap.Error(err))
		return nil, err
	}
	span.WithAttributes(map[string]string{"request_number": result.Request.RequestNumber})
	s.notifyApproved(ctx, actor, result)
	return result, nil
}

// Reject records a negative decision on stepID, skips the rest of the chain
// and releases the reservation.  A reason is mandatory.
func (s *Service) Reject(ctx context.Context, stepID, actorID, reason string) (result *Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "workflow.reject", tracing.KindInternal)
	span.WithAttributes(map[string]string{"step_id": stepID, "actor_id": actorID})
	defer func() { tracing.EndSpan(span, err) }()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, model.NewError(model.KindValidation, "rejection reason is required")
	}
	actor, err := s.directory.Lookup(ctx, actorID)
	if err != nil {
		return nil, err
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx dao.Tx) error {
		d, err := s.load(ctx, tx, stepID, actor)
		if err != nil {
			return err
		}
		result, err = s.reject(ctx, tx, d, reason)
		return err
	})
	if err != nil {
		s.logger.Info("rejection refused",
			zap.String("step_id", stepID),
			zap.String("actor", actorID),
			zap.String("kind", string(model.KindOf(err))),
			zap.Error(err))
		return nil, err
	}
	span.WithAttributes(map[string]string{"request_number": result.Request.RequestNumber})

	event := notify.NewEvent(notify.TopicRequestRejected, result.Request)
	event.Step = result.Step.Step
	event.ActorID = actor.ID
	event.Reason = reason
	notify.Send(ctx, s.logger, s.dispatcher, event)
	return result, nil
}

// ListPending returns the steps the actor can decide right now, oldest
// request first.
func (s *Service) ListPending(ctx context.Context, actorID string) (pending []*model.PendingApproval, err error) {
	ctx, span := tracing.StartSpan(ctx, "workflow.list_pending", tracing.KindInternal)
	span.WithAttributes(map[string]string{"actor_id": actorID})
	defer func() { tracing.EndSpan(span, err) }()

	actor, err := s.directory.Lookup(ctx, actorID)
	if err != nil {
		return nil, err
	}
	err = s.store.View(ctx, func(ctx context.Context, r dao.Reader) error {
		pending, err = r.PendingSteps(ctx, gate.NormalizeRole(actor.Role))
		return err
	})
	return pending, err
}

// load reads the step, request and line item and runs every precondition
// shared by approve and reject.
func (s *Service) load(ctx context.Context, tx dao.Tx, stepID string, actor *model.Actor) (*decision, error) {
	step, err := tx.Step(ctx, stepID)
	if err != nil {
		return nil, err
	}
	request, err := tx.Request(ctx, step.RequestID)
	if err != nil {
		return nil, err
	}
	lineItem, err := tx.LineItem(ctx, request.LineItemID)
	if err != nil {
		return nil, err
	}
	if !gate.Authorize(actor, step) {
		return nil, model.NewError(model.KindRoleMismatch,
			"actor %s with role %s cannot decide step %d requiring %s", actor.ID, actor.Role, step.Step, step.ApproverRole)
	}
	if step.Decided() {
		return nil, model.NewError(model.KindAlreadyDecided, "step %d of %s is already %s", step.Step, request.RequestNumber, step.Status)
	}
	state, err := request.State()
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", request.RequestNumber, err)
	}
	if awaiting, ok := state.Step(); !ok || awaiting != step.Step {
		return nil, model.NewError(model.KindStepOutOfOrder,
			"step %d of %s is not actionable, request is %s", step.Step, request.RequestNumber, state)
	}
	return &decision{actor: actor, step: step, request: request, lineItem: lineItem}, nil
}

func (s *Service) approveIntermediate(ctx context.Context, tx dao.Tx, d *decision, note string) (*Result, error) {
	now := clock.Now()
	if err := s.decide(ctx, tx, d, model.StepApproved, note); err != nil {
		return nil, err
	}
	if err := d.request.Transition(model.AwaitingStep(d.step.Step+1), now); err != nil {
		return nil, err
	}
	if err := tx.UpdateRequest(ctx, d.request); err != nil {
		return nil, err
	}
	steps, err := tx.Steps(ctx, d.request.ID)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Message:  fmt.Sprintf("step %d approved", d.step.Step),
		Request:  d.request,
		Step:     d.step,
		LineItem: d.lineItem,
	}
	for _, candidate := range steps {
		if candidate.Step == d.request.CurrentStep {
			result.NextRole = candidate.ApproverRole
		}
	}
	s.logger.Debug("step approved",
		zap.String("request_number", d.request.RequestNumber),
		zap.Int("step", d.step.Step),
		zap.String("actor", d.actor.ID))
	return result, nil
}

func (s *Service) approveFinal(ctx context.Context, tx dao.Tx, d *decision, note string) (*Result, error) {
	if available := d.lineItem.Available(); d.request.Amount.GreaterThan(available) {
		return nil, model.NewError(model.KindInsufficientBudget,
			"amount %s of %s exceeds remaining budget %s", d.request.Amount, d.request.RequestNumber, available)
	}
	if err := s.decide(ctx, tx, d, model.StepApproved, note); err != nil {
		return nil, err
	}
	if err := d.request.Transition(model.Approved(), clock.Now()); err != nil {
		return nil, err
	}
	if err := tx.UpdateRequest(ctx, d.request); err != nil {
		return nil, err
	}
	movement, err := s.ledger.Commit(ctx, tx, d.lineItem.ID, d.request.Amount)
	if err != nil {
		return nil, err
	}
	project, err := s.ledger.Rollup(ctx, tx, d.request.ProjectID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("request approved",
		zap.String("request_number", d.request.RequestNumber),
		zap.String("amount", d.request.Amount.String()),
		zap.String("actor", d.actor.ID))
	return &Result{
		Message:  fmt.Sprintf("request %s approved", d.request.RequestNumber),
		Request:  d.request,
		Step:     d.step,
		LineItem: movement.LineItem,
		Project:  project,
	}, nil
}

func (s *Service) reject(ctx context.Context, tx dao.Tx, d *decision, reason string) (*Result, error) {
	now := clock.Now()
	if err := s.decide(ctx, tx, d, model.StepRejected, reason); err != nil {
		return nil, err
	}
	if _, err := tx.SkipSteps(ctx, d.request.ID, d.step.Step, now); err != nil {
		return nil, err
	}
	d.request.RejectionReason = reason
	if err := d.request.Transition(model.Rejected(), now); err != nil {
		return nil, err
	}
	if err := tx.UpdateRequest(ctx, d.request); err != nil {
		return nil, err
	}
	movement, err := s.ledger.Release(ctx, tx, d.lineItem.ID, d.request.Amount)
	if err != nil {
		return nil, err
	}
	s.logger.Info("request rejected",
		zap.String("request_number", d.request.RequestNumber),
		zap.Int("step", d.step.Step),
		zap.String("actor", d.actor.ID))
	return &Result{
		Message:  fmt.Sprintf("request %s rejected", d.request.RequestNumber),
		Request:  d.request,
		Step:     d.step,
		LineItem: movement.LineItem,
	}, nil
}

// decide writes the decision; the store refuses it if a concurrent
// transaction decided the step first.
func (s *Service) decide(ctx context.Context, tx dao.Tx, d *decision, status model.StepStatus, text string) error {
	decidedAt := clock.Now()
	d.step.Status = status
	d.step.ApproverID = d.actor.ID
	d.step.Decision = strings.TrimSpace(text)
	d.step.DecidedAt = &decidedAt
	return tx.DecideStep(ctx, d.step)
}

func (s *Service) notifyApproved(ctx context.Context, actor *model.Actor, result *Result) {
	topic := notify.TopicStepApproved
	if result.Request.Status == model.RequestApproved {
		topic = notify.TopicRequestApproved
	}
	event := notify.NewEvent(topic, result.Request)
	event.Step = result.Step.Step
	event.ActorID = actor.ID
	event.NextRole = result.NextRole
	notify.Send(ctx, s.logger, s.dispatcher, event)
}
