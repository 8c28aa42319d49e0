package intake

import (
	"go.uber.org/zap"

	"github.com/viant/budgetflow/internal/logging"
)

type Option func(s *Service)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(logger) }
}
