package budgetflow

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/viant/budgetflow/internal/clock"
	"github.com/viant/budgetflow/internal/idgen"
	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/dao"
	"github.com/viant/budgetflow/tracing"
)

// ProjectInput describes a new project.
type ProjectInput struct {
	Code   string          `json:"code,omitempty"`
	Name   string          `json:"name"`
	Budget decimal.Decimal `json:"budget"`
}

// LineItemInput describes a new budget line item.
type LineItemInput struct {
	ProjectID string          `json:"projectId"`
	Category  string          `json:"category,omitempty"`
	Name      string          `json:"name"`
	Budget    decimal.Decimal `json:"budget"`
}

// RequestDetail is a request together with its approval chain.
type RequestDetail struct {
	Request *model.ExecutionRequest `json:"request"`
	Steps   []*model.ApprovalStep   `json:"steps"`
}

// CreateProject registers a project with its total budget.
func (s *Service) CreateProject(ctx context.Context, input *ProjectInput) (project *model.Project, err error) {
	ctx, span := tracing.StartSpan(ctx, "budgetflow.create_project", tracing.KindInternal)
	defer func() { tracing.EndSpan(span, err) }()

	if input == nil || strings.TrimSpace(input.Name) == "" {
		return nil, model.NewError(model.KindValidation, "project name is required")
	}
	if input.Budget.IsNegative() {
		return nil, model.NewError(model.KindValidation, "project budget cannot be negative, got %s", input.Budget)
	}
	now := clock.Now()
	project = &model.Project{
		ID:              idgen.New(),
		Code:            strings.TrimSpace(input.Code),
		Name:            strings.TrimSpace(input.Name),
		CurrentBudget:   input.Budget,
		ExecutedAmount:  decimal.Zero,
		RemainingBudget: input.Budget,
		ExecutionRate:   decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx dao.Tx) error {
		return tx.InsertProject(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// CreateLineItem adds an active line item to a project.
func (s *Service) CreateLineItem(ctx context.Context, input *LineItemInput) (item *model.LineItem, err error) {
	ctx, span := tracing.StartSpan(ctx, "budgetflow.create_line_item", tracing.KindInternal)
	defer func() { tracing.EndSpan(span, err) }()

	if input == nil || strings.TrimSpace(input.Name) == "" {
		return nil, model.NewError(model.KindValidation, "line item name is required")
	}
	if input.Budget.IsNegative() {
		return nil, model.NewError(model.KindValidation, "line item budget cannot be negative, got %s", input.Budget)
	}
	now := clock.Now()
	item = &model.LineItem{
		ID:                     idgen.New(),
		ProjectID:              input.ProjectID,
		Category:               strings.TrimSpace(input.Category),
		Name:                   strings.TrimSpace(input.Name),
		CurrentBudget:          input.Budget,
		ExecutedAmount:         decimal.Zero,
		PendingExecutionAmount: decimal.Zero,
		Active:                 true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	item.Recompute()
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx dao.Tx) error {
		if _, err := tx.Project(ctx, input.ProjectID); err != nil {
			return err
		}
		if err := tx.InsertLineItem(ctx, item); err != nil {
			return err
		}
		_, err := s.ledger.Rollup(ctx, tx, input.ProjectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SetLineItemActive includes or excludes a line item from its project's
// totals and recomputes them.
func (s *Service) SetLineItemActive(ctx context.Context, lineItemID string, active bool) (project *model.Project, err error) {
	ctx, span := tracing.StartSpan(ctx, "budgetflow.set_line_item_active", tracing.KindInternal)
	defer func() { tracing.EndSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx dao.Tx) error {
		item, err := tx.LineItem(ctx, lineItemID)
		if err != nil {
			return err
		}
		item.Active = active
		item.UpdatedAt = clock.Now()
		if err = tx.UpdateLineItem(ctx, item); err != nil {
			return err
		}
		project, err = s.ledger.Rollup(ctx, tx, item.ProjectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Project returns a project by id.
func (s *Service) Project(ctx context.Context, id string) (project *model.Project, err error) {
	err = s.store.View(ctx, func(ctx context.Context, r dao.Reader) error {
		project, err = r.Project(ctx, id)
		return err
	})
	return project, err
}

// LineItem returns a line item by id.
func (s *Service) LineItem(ctx context.Context, id string) (item *model.LineItem, err error) {
	err = s.store.View(ctx, func(ctx context.Context, r dao.Reader) error {
		item, err = r.LineItem(ctx, id)
		return err
	})
	return item, err
}

// LineItems returns the line items of a project.
func (s *Service) LineItems(ctx context.Context, projectID string) (items []*model.LineItem, err error) {
	err = s.store.View(ctx, func(ctx context.Context, r dao.Reader) error {
		if _, err := r.Project(ctx, projectID); err != nil {
			return err
		}
		items, err = r.LineItems(ctx, projectID)
		return err
	})
	return items, err
}

// Request returns a request with its approval steps.
func (s *Service) Request(ctx context.Context, id string) (detail *RequestDetail, err error) {
	err = s.store.View(ctx, func(ctx context.Context, r dao.Reader) error {
		request, err := r.Request(ctx, id)
		if err != nil {
			return err
		}
		steps, err := r.Steps(ctx, id)
		if err != nil {
			return err
		}
		detail = &RequestDetail{Request: request, Steps: steps}
		return nil
	})
	return detail, err
}

// Requests returns requests matching parameters, oldest first.
func (s *Service) Requests(ctx context.Context, parameters ...*dao.Parameter) (requests []*model.ExecutionRequest, err error) {
	err = s.store.View(ctx, func(ctx context.Context, r dao.Reader) error {
		requests, err = r.Requests(ctx, parameters...)
		return err
	})
	return requests, err
}
