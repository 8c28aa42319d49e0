package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Fanout delivers every event to all dispatchers, collecting failures.
type Fanout []Dispatcher

func (f Fanout) Dispatch(ctx context.Context, event *Event) error {
	var errs []error
	for _, d := range f {
		if d == nil {
			continue
		}
		if err := d.Dispatch(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Logger writes events to a zap logger.
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates a log dispatcher.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Dispatch(_ context.Context, event *Event) error {
	l.logger.Info("notification",
		zap.String("topic", event.Topic),
		zap.String("request_number", event.RequestNumber),
		zap.Int("step", event.Step),
		zap.String("next_role", event.NextRole),
		zap.String("actor", event.ActorID))
	return nil
}

// Send dispatches event through d, logging and swallowing any failure or
// panic so the caller's outcome is never affected.
func Send(ctx context.Context, logger *zap.Logger, d Dispatcher, event *Event) {
	if d == nil || event == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("notification dispatcher panicked",
				zap.String("topic", event.Topic),
				zap.String("request_number", event.RequestNumber),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()
	if err := d.Dispatch(ctx, event); err != nil {
		logger.Warn("notification dispatch failed",
			zap.String("topic", event.Topic),
			zap.String("request_number", event.RequestNumber),
			zap.Error(err))
	}
}
