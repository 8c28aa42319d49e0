package workflow

import "github.com/viant/budgetflow/model"

// Result is the outcome of a decision.
type Result struct {
	Message  string                  `json:"message"`
	Request  *model.ExecutionRequest `json:"request"`
	Step     *model.ApprovalStep     `json:"step"`
	LineItem *model.LineItem         `json:"lineItem,omitempty"`
	Project  *model.Project          `json:"project,omitempty"` // set after a final approval
	// NextRole is the role awaited after an intermediate approval.
	NextRole string `json:"nextRole,omitempty"`
}
