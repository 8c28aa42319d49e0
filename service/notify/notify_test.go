package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/viant/budgetflow/model"
)

type recorder struct {
	mux    sync.Mutex
	events []*Event
	fail   int
	panics int
}

func (r *recorder) Dispatch(_ context.Context, event *Event) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.panics > 0 {
		r.panics--
		panic("mail relay down")
	}
	if r.fail > 0 {
		r.fail--
		return errors.New("unavailable")
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) count() int {
	r.mux.Lock()
	defer r.mux.Unlock()
	return len(r.events)
}

func testRequest() *model.ExecutionRequest {
	return &model.ExecutionRequest{ID: "r1", RequestNumber: "EXE-2026-0001", ProjectID: "p1", Amount: decimal.NewFromInt(10)}
}

func TestQueue(t *testing.T) {
	type testCase struct {
		name        string
		fail        int
		panics      int
		maxRetries  int
		delivered   int
		deadLetters int
	}

	tests := []testCase{
		{name: "delivered first time", maxRetries: 2, delivered: 1},
		{name: "delivered after retry", fail: 2, maxRetries: 2, delivered: 1},
		{name: "dead letter", fail: 5, maxRetries: 1, deadLetters: 1},
		{name: "delivered after panic", panics: 1, maxRetries: 2, delivered: 1},
		{name: "panicking target dead letter", panics: 5, maxRetries: 1, deadLetters: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target := &recorder{fail: tc.fail, panics: tc.panics}
			queue := NewQueue(target, QueueConfig{Buffer: 4, MaxRetries: tc.maxRetries, RetryDelay: time.Millisecond}, nil)
			require.NoError(t, queue.Dispatch(context.Background(), NewEvent(TopicRequestCreated, testRequest())))
			require.NoError(t, queue.Close(context.Background()))

			assert.Equal(t, tc.delivered, target.count())
			assert.Len(t, queue.DeadLetters(), tc.deadLetters)
			assert.ErrorIs(t, queue.Dispatch(context.Background(), NewEvent(TopicRequestCreated, testRequest())), ErrQueueClosed)
		})
	}
}

func TestQueue_Full(t *testing.T) {
	block := make(chan struct{})
	target := DispatcherFunc(func(context.Context, *Event) error {
		<-block
		return nil
	})
	queue := NewQueue(target, QueueConfig{Buffer: 1}, nil)
	ctx := context.Background()

	require.NoError(t, queue.Dispatch(ctx, NewEvent(TopicRequestCreated, testRequest())))
	// the worker may already hold the first event; fill the buffer
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = queue.Dispatch(ctx, NewEvent(TopicRequestCreated, testRequest()))
	}
	assert.ErrorIs(t, err, ErrQueueFull)
	close(block)
	require.NoError(t, queue.Close(ctx))
}

func TestSend_SwallowsFailures(t *testing.T) {
	failing := DispatcherFunc(func(context.Context, *Event) error { return errors.New("smtp down") })
	panicking := DispatcherFunc(func(context.Context, *Event) error { panic("boom") })

	assert.NotPanics(t, func() {
		Send(context.Background(), zap.NewNop(), failing, NewEvent(TopicRequestApproved, testRequest()))
		Send(context.Background(), zap.NewNop(), panicking, NewEvent(TopicRequestApproved, testRequest()))
		Send(context.Background(), zap.NewNop(), nil, NewEvent(TopicRequestApproved, testRequest()))
	})
}

func TestFanout(t *testing.T) {
	first, second := &recorder{}, &recorder{fail: 1}
	err := Fanout{first, nil, second}.Dispatch(context.Background(), NewEvent(TopicStepApproved, testRequest()))
	assert.Error(t, err)
	assert.Equal(t, 1, first.count())
	assert.Equal(t, 0, second.count())
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	journal, err := NewJournal(ctx, "mem://localhost/budgetflow/journal")
	require.NoError(t, err)

	event := NewEvent(TopicRequestRejected, testRequest())
	event.Reason = "budget concerns"
	require.NoError(t, journal.Dispatch(ctx, event))

	events, err := journal.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
	assert.Equal(t, "budget concerns", events[0].Reason)
	assert.Equal(t, "EXE-2026-0001", events[0].RequestNumber)
}
