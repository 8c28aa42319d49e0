package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/viant/budgetflow/internal/logging"
)

// QueueConfig configures asynchronous delivery.
type QueueConfig struct {
	Buffer     int           `json:"buffer" yaml:"buffer" toml:"buffer"`
	MaxRetries int           `json:"maxRetries" yaml:"maxRetries" toml:"max_retries"`
	RetryDelay time.Duration `json:"retryDelay" yaml:"retryDelay" toml:"retry_delay"`
}

// DefaultQueueConfig returns standard queue settings.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Buffer:     100,
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
	}
}

// ErrQueueFull is returned when the buffer cannot accept another event.
var ErrQueueFull = errors.New("notify: queue full")

// ErrQueueClosed is returned by Dispatch after Close.
var ErrQueueClosed = errors.New("notify: queue closed")

// Queue hands events to a background worker that delivers them to target
// with retries.  Events exhausting their retries are counted as dead
// letters.
type Queue struct {
	target   Dispatcher
	config   QueueConfig
	logger   *zap.Logger
	events   chan *Event
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mux      sync.RWMutex
	closed   bool
	dlqMux   sync.Mutex
	dlq      []*Event
}

// NewQueue starts a queue delivering to target.
func NewQueue(target Dispatcher, config QueueConfig, logger *zap.Logger) *Queue {
	if config.Buffer <= 0 {
		config.Buffer = DefaultQueueConfig().Buffer
	}
	ret := &Queue{
		target: target,
		config: config,
		logger: logging.OrNop(logger),
		events: make(chan *Event, config.Buffer),
		done:   make(chan struct{}),
	}
	ret.wg.Add(1)
	go ret.run()
	return ret
}

// Dispatch enqueues event without blocking.
func (q *Queue) Dispatch(_ context.Context, event *Event) error {
	q.mux.RLock()
	defer q.mux.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits until queued events are delivered
// or ctx is done.
func (q *Queue) Close(ctx context.Context) error {
	q.mux.Lock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
	q.mux.Unlock()

	finished := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		q.stopOnce.Do(func() { close(q.done) })
		return ctx.Err()
	}
}

// Size returns the number of queued events.
func (q *Queue) Size() int { return len(q.events) }

// DeadLetters returns events that could not be delivered.
func (q *Queue) DeadLetters() []*Event {
	q.dlqMux.Lock()
	defer q.dlqMux.Unlock()
	return append([]*Event(nil), q.dlq...)
}

func (q *Queue) run() {
	defer q.wg.Done()
	for event := range q.events {
		q.deliver(event)
	}
}

func (q *Queue) deliver(event *Event) {
	var err error
	for attempt := 0; attempt <= q.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(q.config.RetryDelay):
			case <-q.done:
				attempt = q.config.MaxRetries
			}
		}
		if err = q.attempt(event); err == nil {
			return
		}
	}
	q.logger.Warn("notification moved to dead letters",
		zap.String("topic", event.Topic),
		zap.String("request_number", event.RequestNumber),
		zap.Error(err))
	q.dlqMux.Lock()
	q.dlq = append(q.dlq, event)
	q.dlqMux.Unlock()
}

// attempt delivers event once; a panicking target counts as a failed attempt.
func (q *Queue) attempt(event *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notify: dispatcher panicked: %v", r)
		}
	}()
	return q.target.Dispatch(context.Background(), event)
}
