package notify

import (
	"context"
	"time"

	"github.com/viant/budgetflow/internal/clock"
	"github.com/viant/budgetflow/internal/idgen"
	"github.com/viant/budgetflow/model"
)

// Standard event topics.
const (
	TopicRequestCreated  = "request.created"
	TopicStepApproved    = "step.approved"
	TopicRequestApproved = "request.approved"
	TopicRequestRejected = "request.rejected"
)

// Event describes a workflow fact worth telling people about.
type Event struct {
	ID            string    `json:"id"`
	Topic         string    `json:"topic"`
	RequestID     string    `json:"requestId"`
	RequestNumber string    `json:"requestNumber"`
	ProjectID     string    `json:"projectId"`
	Amount        string    `json:"amount"`
	Step          int       `json:"step,omitempty"`
	NextRole      string    `json:"nextRole,omitempty"` // role expected to act next
	ActorID       string    `json:"actorId,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewEvent builds an event for request.
func NewEvent(topic string, request *model.ExecutionRequest) *Event {
	return &Event{
		ID:            idgen.New(),
		Topic:         topic,
		RequestID:     request.ID,
		RequestNumber: request.RequestNumber,
		ProjectID:     request.ProjectID,
		Amount:        request.Amount.String(),
		OccurredAt:    clock.Now(),
	}
}

// Dispatcher delivers events.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *Event) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, event *Event) error

func (f DispatcherFunc) Dispatch(ctx context.Context, event *Event) error { return f(ctx, event) }

// Nop discards every event.
var Nop Dispatcher = DispatcherFunc(func(context.Context, *Event) error { return nil })
