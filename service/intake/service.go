// Package intake validates and creates execution requests together with
// their pre-built approval chain and ledger reservation.
package intake

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/viant/budgetflow/internal/clock"
	"github.com/viant/budgetflow/internal/idgen"
	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/chain"
	"github.com/viant/budgetflow/service/dao"
	"github.com/viant/budgetflow/service/ledger"
)

// Input is the closed field set accepted when creating a request.
type Input struct {
	ProjectID     string          `json:"projectId" validate:"required"`
	LineItemID    string          `json:"lineItemId" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"positive_decimal,amount_scale"`
	ExecutionDate time.Time       `json:"executionDate" validate:"required"`
	Purpose       string          `json:"purpose" validate:"required,max=1000"`
	RequestType   string          `json:"requestType,omitempty"`
}

// Created is the outcome of a successful intake.
type Created struct {
	Request  *model.ExecutionRequest
	Steps    []*model.ApprovalStep
	LineItem *model.LineItem
}

// Service creates execution requests.
type Service struct {
	ledger    *ledger.Service
	chains    *chain.Registry
	validator *validator.Validate
	logger    *zap.Logger
}

// New creates an intake service.
func New(ledgerService *ledger.Service, chains *chain.Registry, options ...Option) (*Service, error) {
	vld, err := newValidator()
	if err != nil {
		return nil, err
	}
	ret := &Service{ledger: ledgerService, chains: chains, validator: vld, logger: zap.NewNop()}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

// Create validates input and writes the request, its approval steps and
// the ledger reservation using tx.  Any failure leaves tx unusable for
// commit; the caller aborts the whole unit of work.
func (s *Service) Create(ctx context.Context, tx dao.Tx, requester *model.Actor, input *Input) (*Created, error) {
	if requester == nil || requester.ID == "" {
		return nil, model.NewError(model.KindValidation, "requester is required")
	}
	if err := s.validate(input); err != nil {
		return nil, err
	}
	aChain, ok := s.chains.Lookup(input.RequestType)
	if !ok {
		return nil, model.NewError(model.KindValidation, "unknown request type %q", input.RequestType)
	}
	item, err := tx.LineItem(ctx, input.LineItemID)
	if err != nil {
		return nil, err
	}
	if item.ProjectID != input.ProjectID {
		return nil, model.NewError(model.KindValidation, "line item %s does not belong to project %s", item.ID, input.ProjectID)
	}
	if !item.Active {
		return nil, model.NewError(model.KindValidation, "line item %s is inactive", item.ID)
	}
	if input.Amount.GreaterThan(item.Available()) {
		return nil, model.NewError(model.KindInsufficientBudget,
			"amount %s exceeds remaining budget %s", input.Amount, item.Available())
	}

	now := clock.Now()
	number, err := nextNumber(ctx, tx, now.Year())
	if err != nil {
		return nil, err
	}
	request := &model.ExecutionRequest{
		ID:            idgen.New(),
		RequestNumber: number,
		RequestType:   aChain.Type,
		ProjectID:     item.ProjectID,
		LineItemID:    item.ID,
		Amount:        input.Amount,
		ExecutionDate: input.ExecutionDate,
		Purpose:       strings.TrimSpace(input.Purpose),
		Status:        model.RequestPending,
		CurrentStep:   1,
		TotalSteps:    aChain.Len(),
		RequestedBy:   requester.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err = tx.InsertRequest(ctx, request); err != nil {
		return nil, err
	}

	steps := make([]*model.ApprovalStep, 0, aChain.Len())
	for i, role := range aChain.Roles {
		step := &model.ApprovalStep{
			ID:           idgen.New(),
			RequestID:    request.ID,
			Step:         i + 1,
			ApproverRole: role,
			Status:       model.StepPending,
			CreatedAt:    now,
		}
		if err = tx.InsertStep(ctx, step); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}

	movement, err := s.ledger.Reserve(ctx, tx, item.ID, input.Amount)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("execution request created",
		zap.String("request_number", request.RequestNumber),
		zap.String("line_item", item.ID),
		zap.String("amount", request.Amount.String()),
		zap.Int("steps", len(steps)))
	return &Created{Request: request, Steps: steps, LineItem: movement.LineItem}, nil
}
