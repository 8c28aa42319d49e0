package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a leaf budget category tracking current, executed and pending
// amounts.  It belongs to exactly one project.
type LineItem struct {
	ID                     string          `json:"id" yaml:"id"`
	ProjectID              string          `json:"projectId" yaml:"projectId"`
	Category               string          `json:"category,omitempty" yaml:"category,omitempty"`
	Name                   string          `json:"name" yaml:"name"`
	CurrentBudget          decimal.Decimal `json:"currentBudget" yaml:"currentBudget"`
	ExecutedAmount         decimal.Decimal `json:"executedAmount" yaml:"executedAmount"`
	PendingExecutionAmount decimal.Decimal `json:"pendingExecutionAmount" yaml:"pendingExecutionAmount"` // advisory reservation, never negative
	// RemainingBeforeExec and RemainingAfterExec hold the balance before and
	// after the most recent commit.
	RemainingBeforeExec decimal.Decimal `json:"remainingBeforeExec" yaml:"remainingBeforeExec"`
	RemainingAfterExec  decimal.Decimal `json:"remainingAfterExec" yaml:"remainingAfterExec"`
	ExecutionRate       decimal.Decimal `json:"executionRate" yaml:"executionRate"`
	Active              bool            `json:"active" yaml:"active"`
	CreatedAt           time.Time       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt" yaml:"updatedAt"`
}

// Available returns the live spendable balance: CurrentBudget - ExecutedAmount.
func (l *LineItem) Available() decimal.Decimal {
	return l.CurrentBudget.Sub(l.ExecutedAmount)
}

// Recompute refreshes the derived balance fields of an item that has not
// been executed against yet.
func (l *LineItem) Recompute() {
	l.RemainingBeforeExec = l.Available()
	l.RemainingAfterExec = l.RemainingBeforeExec
	l.ExecutionRate = ExecutionRate(l.ExecutedAmount, l.CurrentBudget)
}

// Clone returns a copy of the line item.
func (l *LineItem) Clone() *LineItem {
	if l == nil {
		return nil
	}
	ret := *l
	return &ret
}
