package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/viant/budgetflow/internal/clock"
	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/dao"
)

// Service applies reserve, commit, release and rollup to the store.
type Service struct {
	logger *zap.Logger
}

// New creates a ledger service.
func New(options ...Option) *Service {
	ret := &Service{logger: zap.NewNop()}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Reserve places an advisory reservation of amount on a line item.  It
// fails with InsufficientBudget when amount exceeds the live balance; the
// executed amount and budget are never touched.
func (s *Service) Reserve(ctx context.Context, tx dao.Tx, lineItemID string, amount decimal.Decimal) (*Movement, error) {
	if !amount.IsPositive() {
		return nil, model.NewError(model.KindValidation, "reservation amount must be positive, got %s", amount)
	}
	item, err := tx.LineItem(ctx, lineItemID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(item.Available()) {
		return nil, model.NewError(model.KindInsufficientBudget,
			"amount %s exceeds remaining budget %s of line item %s", amount, item.Available(), item.Name)
	}
	reserve(item, amount, clock.Now())
	if err = tx.UpdateLineItem(ctx, item); err != nil {
		return nil, err
	}
	return &Movement{LineItem: item}, nil
}

// Commit debits amount from a line item and clears the matching
// reservation.
func (s *Service) Commit(ctx context.Context, tx dao.Tx, lineItemID string, amount decimal.Decimal) (*Movement, error) {
	item, err := tx.LineItem(ctx, lineItemID)
	if err != nil {
		return nil, err
	}
	clamped := commit(item, amount, clock.Now())
	if err = tx.UpdateLineItem(ctx, item); err != nil {
		return nil, err
	}
	s.reportClamp(ctx, "commit", item, amount, clamped)
	return &Movement{LineItem: item, Clamped: clamped}, nil
}

// Release drops a reservation of amount from a line item.
func (s *Service) Release(ctx context.Context, tx dao.Tx, lineItemID string, amount decimal.Decimal) (*Movement, error) {
	item, err := tx.LineItem(ctx, lineItemID)
	if err != nil {
		return nil, err
	}
	clamped := release(item, amount, clock.Now())
	if err = tx.UpdateLineItem(ctx, item); err != nil {
		return nil, err
	}
	s.reportClamp(ctx, "release", item, amount, clamped)
	return &Movement{LineItem: item, Clamped: clamped}, nil
}

// Rollup recomputes the project's totals from all of its active line items.
// It is a full, idempotent recomputation rather than a delta update.
func (s *Service) Rollup(ctx context.Context, tx dao.Tx, projectID string) (*model.Project, error) {
	project, err := tx.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	items, err := tx.LineItems(ctx, projectID)
	if err != nil {
		return nil, err
	}
	rollup(project, items, clock.Now())
	if err = tx.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Service) reportClamp(_ context.Context, operation string, item *model.LineItem, amount decimal.Decimal, clamped bool) {
	if !clamped {
		return
	}
	s.logger.Warn("pending execution amount clamped at zero",
		zap.String("operation", operation),
		zap.String("line_item", item.ID),
		zap.String("amount", amount.String()))
}
