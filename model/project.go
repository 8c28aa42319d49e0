package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project aggregates the financial totals of its active line items.
type Project struct {
	ID              string          `json:"id" yaml:"id"`
	Code            string          `json:"code,omitempty" yaml:"code,omitempty"`
	Name            string          `json:"name" yaml:"name"`
	CurrentBudget   decimal.Decimal `json:"currentBudget" yaml:"currentBudget"`
	ExecutedAmount  decimal.Decimal `json:"executedAmount" yaml:"executedAmount"`
	RemainingBudget decimal.Decimal `json:"remainingBudget" yaml:"remainingBudget"` // CurrentBudget - ExecutedAmount
	ExecutionRate   decimal.Decimal `json:"executionRate" yaml:"executionRate"`     // percent
	CreatedAt       time.Time       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	ret := *p
	return &ret
}
