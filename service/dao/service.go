package dao

import (
	"context"
	"time"

	"github.com/viant/budgetflow/model"
)

// Reader exposes the read side of a transaction.  Missing entities are
// reported with model.KindNotFound errors.
type Reader interface {
	Project(ctx context.Context, id string) (*model.Project, error)

	LineItem(ctx context.Context, id string) (*model.LineItem, error)

	// LineItems returns the line items of a project ordered by creation.
	LineItems(ctx context.Context, projectID string) ([]*model.LineItem, error)

	Request(ctx context.Context, id string) (*model.ExecutionRequest, error)

	// Requests returns requests matching all parameters, oldest first.
	Requests(ctx context.Context, parameters ...*Parameter) ([]*model.ExecutionRequest, error)

	// CountRequestNumbers counts requests whose number starts with prefix.
	CountRequestNumbers(ctx context.Context, prefix string) (int, error)

	Step(ctx context.Context, id string) (*model.ApprovalStep, error)

	// Steps returns the chain of a request ordered by step.
	Steps(ctx context.Context, requestID string) ([]*model.ApprovalStep, error)

	// PendingSteps returns actionable steps for role: the step is PENDING, it
	// is the request's current step and the request is PENDING.  Results are
	// ordered by request creation time.
	PendingSteps(ctx context.Context, role string) ([]*model.PendingApproval, error)
}

// Writer exposes the write side of a transaction.
type Writer interface {
	InsertProject(ctx context.Context, project *model.Project) error

	InsertLineItem(ctx context.Context, item *model.LineItem) error

	InsertRequest(ctx context.Context, request *model.ExecutionRequest) error

	InsertStep(ctx context.Context, step *model.ApprovalStep) error

	UpdateProject(ctx context.Context, project *model.Project) error

	UpdateLineItem(ctx context.Context, item *model.LineItem) error

	UpdateRequest(ctx context.Context, request *model.ExecutionRequest) error

	// DecideStep persists a decision on a step that is still PENDING in the
	// store.  It fails with model.KindAlreadyDecided when another transaction
	// decided the step first.
	DecideStep(ctx context.Context, step *model.ApprovalStep) error

	// SkipSteps marks every PENDING step of requestID with a number greater
	// than after as SKIPPED and returns how many were changed.
	SkipSteps(ctx context.Context, requestID string, after int, at time.Time) (int, error)
}

// Tx is a read-write unit of work.
type Tx interface {
	Reader
	Writer
}

// Store runs atomic, isolated units of work.  When fn returns an error none
// of its writes are visible to other transactions.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	View(ctx context.Context, fn func(ctx context.Context, r Reader) error) error

	Close() error
}
