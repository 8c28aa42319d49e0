package model

import "time"

// StepStatus is the status of a single approval step.
type StepStatus string

const (
	StepPending  StepStatus = "PENDING"
	StepApproved StepStatus = "APPROVED"
	StepRejected StepStatus = "REJECTED"
	StepSkipped  StepStatus = "SKIPPED"
)

// ApprovalStep is one role-gated decision point within a request's chain.
type ApprovalStep struct {
	ID           string     `json:"id" yaml:"id"`
	RequestID    string     `json:"requestId" yaml:"requestId"`
	Step         int        `json:"step" yaml:"step"` // 1..N, fixed at creation
	ApproverRole string     `json:"approverRole" yaml:"approverRole"`
	Status       StepStatus `json:"status" yaml:"status"`
	ApproverID   string     `json:"approverId,omitempty" yaml:"approverId,omitempty"`
	Decision     string     `json:"decision,omitempty" yaml:"decision,omitempty"` // note or rejection reason
	DecidedAt    *time.Time `json:"decidedAt,omitempty" yaml:"decidedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" yaml:"createdAt"`
}

// Decided reports whether the step has left PENDING.
func (s *ApprovalStep) Decided() bool { return s.Status != StepPending }

// Clone returns a copy of the step.
func (s *ApprovalStep) Clone() *ApprovalStep {
	if s == nil {
		return nil
	}
	ret := *s
	if s.DecidedAt != nil {
		decidedAt := *s.DecidedAt
		ret.DecidedAt = &decidedAt
	}
	return &ret
}

// PendingApproval is an actionable step together with its request.
type PendingApproval struct {
	Step    *ApprovalStep     `json:"step"`
	Request *ExecutionRequest `json:"request"`
}
