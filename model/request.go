package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the persisted status of an execution request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// ExecutionRequest is a request to spend against one budget line item.
//
// Status and CurrentStep are persisted fields; they change only through
// Transition so that a terminal request never points at a step.
type ExecutionRequest struct {
	ID              string          `json:"id" yaml:"id"`
	RequestNumber   string          `json:"requestNumber" yaml:"requestNumber"` // EXE-YYYY-NNNN
	RequestType     string          `json:"requestType" yaml:"requestType"`
	ProjectID       string          `json:"projectId" yaml:"projectId"`
	LineItemID      string          `json:"lineItemId" yaml:"lineItemId"`
	Amount          decimal.Decimal `json:"amount" yaml:"amount"`
	ExecutionDate   time.Time       `json:"executionDate" yaml:"executionDate"`
	Purpose         string          `json:"purpose" yaml:"purpose"`
	Status          RequestStatus   `json:"status" yaml:"status"`
	CurrentStep     int             `json:"currentStep" yaml:"currentStep"` // 0 once terminal
	TotalSteps      int             `json:"totalSteps" yaml:"totalSteps"`
	RequestedBy     string          `json:"requestedBy" yaml:"requestedBy"`
	RejectionReason string          `json:"rejectionReason,omitempty" yaml:"rejectionReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" yaml:"updatedAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
}

// State decodes the persisted status into the tagged lifecycle state.
func (r *ExecutionRequest) State() (State, error) {
	return StateOf(r.Status, r.CurrentStep, r.TotalSteps)
}

// Transition moves the request to next.  Terminal requests are immutable,
// and awaiting states may only advance forward within the chain.
func (r *ExecutionRequest) Transition(next State, at time.Time) error {
	current, err := r.State()
	if err != nil {
		return err
	}
	if current.Terminal() {
		return fmt.Errorf("request %s is %s and cannot move to %s", r.RequestNumber, current, next)
	}
	if step, ok := next.Step(); ok {
		if step != current.step+1 || step > r.TotalSteps {
			return fmt.Errorf("request %s cannot move from %s to %s", r.RequestNumber, current, next)
		}
		r.CurrentStep = step
	} else {
		r.CurrentStep = 0
		completedAt := at
		r.CompletedAt = &completedAt
	}
	r.Status = next.Status()
	r.UpdatedAt = at
	return nil
}

// Clone returns a copy of the request.
func (r *ExecutionRequest) Clone() *ExecutionRequest {
	if r == nil {
		return nil
	}
	ret := *r
	if r.CompletedAt != nil {
		completedAt := *r.CompletedAt
		ret.CompletedAt = &completedAt
	}
	return &ret
}
