package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/viant/budgetflow/model"
)

// Movement describes the outcome of a ledger operation on one line item.
type Movement struct {
	LineItem *model.LineItem
	// Clamped is true when the pending reservation would have gone negative
	// and was floored at zero.
	Clamped bool
}

func reserve(item *model.LineItem, amount decimal.Decimal, at time.Time) {
	item.PendingExecutionAmount = item.PendingExecutionAmount.Add(amount)
	item.UpdatedAt = at
}

func release(item *model.LineItem, amount decimal.Decimal, at time.Time) bool {
	var clamped bool
	item.PendingExecutionAmount, clamped = model.NonNegative(item.PendingExecutionAmount.Sub(amount))
	item.UpdatedAt = at
	return clamped
}

func commit(item *model.LineItem, amount decimal.Decimal, at time.Time) bool {
	before := item.Available()
	item.ExecutedAmount = item.ExecutedAmount.Add(amount)
	clamped := release(item, amount, at)
	item.RemainingBeforeExec = before
	item.RemainingAfterExec = item.Available()
	item.ExecutionRate = model.ExecutionRate(item.ExecutedAmount, item.CurrentBudget)
	return clamped
}

func rollup(project *model.Project, items []*model.LineItem, at time.Time) {
	executed := decimal.Zero
	for _, item := range items {
		if !item.Active {
			continue
		}
		executed = executed.Add(item.ExecutedAmount)
	}
	project.ExecutedAmount = executed
	project.RemainingBudget = project.CurrentBudget.Sub(executed)
	project.ExecutionRate = model.ExecutionRate(executed, project.CurrentBudget)
	project.UpdatedAt = at
}
