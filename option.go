package budgetflow

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/chain"
	"github.com/viant/budgetflow/service/dao"
	"github.com/viant/budgetflow/service/gate"
	"github.com/viant/budgetflow/service/notify"
	"github.com/viant/budgetflow/tracing"
)

// Option configures a Service.
type Option func(s *Service)

// WithConfig replaces the configuration used to build defaults.
func WithConfig(cfg *Config) Option {
	return func(s *Service) { s.config = cfg }
}

// WithStore sets the transactional store; the service does not own it
// unless no store was given and one is opened from the configuration.
func WithStore(store dao.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithDirectory sets the actor directory.
func WithDirectory(directory gate.Directory) Option {
	return func(s *Service) { s.directory = directory }
}

// WithActors registers actors in a static directory.
func WithActors(actors ...*model.Actor) Option {
	return func(s *Service) { s.actors = append(s.actors, actors...) }
}

// WithChains sets the approval chains per request type, overriding the
// configured ones.
func WithChains(chains ...*chain.Chain) Option {
	return func(s *Service) { s.chains = chains }
}

// WithDispatcher adds a notification dispatcher.
func WithDispatcher(dispatcher notify.Dispatcher) Option {
	return func(s *Service) { s.dispatchers = append(s.dispatchers, dispatcher) }
}

// WithLogger sets the logger shared by all components.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTracing configures the stdout span exporter.  Close shuts it down.
// Only the first initialisation in a process takes effect.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.initErr = err
			return
		}
		s.tracing = true
	}
}

// WithTracingExporter configures tracing with a custom exporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.initErr = err
			return
		}
		s.tracing = true
	}
}
