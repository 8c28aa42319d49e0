package workflow

import (
	"go.uber.org/zap"

	"github.com/viant/budgetflow/internal/logging"
	"github.com/viant/budgetflow/service/notify"
)

type Option func(s *Service)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(logger) }
}

// WithDispatcher sets the notification dispatcher.
func WithDispatcher(dispatcher notify.Dispatcher) Option {
	return func(s *Service) { s.dispatcher = dispatcher }
}
