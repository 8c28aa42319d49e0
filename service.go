package budgetflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/viant/budgetflow/internal/logging"
	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/chain"
	"github.com/viant/budgetflow/service/dao"
	"github.com/viant/budgetflow/service/dao/memory"
	"github.com/viant/budgetflow/service/dao/sqldb"
	"github.com/viant/budgetflow/service/gate"
	"github.com/viant/budgetflow/service/intake"
	"github.com/viant/budgetflow/service/ledger"
	"github.com/viant/budgetflow/service/notify"
	"github.com/viant/budgetflow/service/workflow"
	"github.com/viant/budgetflow/tracing"
)

// Service wires the store, ledger, intake, workflow and notification
// components behind a single API.
type Service struct {
	config      *Config
	store       dao.Store
	ownsStore   bool
	directory   gate.Directory
	actors      []*model.Actor
	chains      []*chain.Chain
	dispatchers []notify.Dispatcher
	dispatcher  notify.Dispatcher
	queue       *notify.Queue
	logger      *zap.Logger
	ledger      *ledger.Service
	intake      *intake.Service
	workflow    *workflow.Service
	tracing     bool
	initErr     error
}

// New creates a service.  Without options it runs on an in-memory store with
// the default approval chain.
func New(ctx context.Context, options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(ret)
	}
	if ret.initErr != nil {
		_ = ret.Close(ctx)
		return nil, ret.initErr
	}
	if err := ret.init(ctx); err != nil {
		_ = ret.Close(ctx)
		return nil, err
	}
	return ret, nil
}

// NewFromConfig creates a service from cfg; options are applied on top.
func NewFromConfig(ctx context.Context, cfg *Config, options ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Tracing.Enabled {
		options = append([]Option{WithTracing(cfg.Tracing.ServiceName, "", cfg.Tracing.OutputFile)}, options...)
	}
	return New(ctx, append([]Option{WithConfig(cfg)}, options...)...)
}

func (s *Service) init(ctx context.Context) (err error) {
	if s.logger == nil {
		if s.logger, err = logging.New(s.config.Logging); err != nil {
			return err
		}
	}
	if s.store == nil {
		if s.store, err = openStore(ctx, s.config.Store); err != nil {
			return err
		}
		s.ownsStore = true
	}
	if s.directory == nil {
		actors := append(append([]*model.Actor{}, s.config.Actors...), s.actors...)
		if s.directory, err = gate.NewStaticDirectory(actors...); err != nil {
			return err
		}
	} else if len(s.actors) > 0 {
		return fmt.Errorf("WithActors cannot be combined with a custom directory")
	}
	if len(s.chains) == 0 {
		s.chains = s.config.Chains
	}
	chains, err := chain.NewRegistry(s.chains...)
	if err != nil {
		return err
	}
	if err = s.initNotify(ctx); err != nil {
		return err
	}
	s.ledger = ledger.New(ledger.WithLogger(s.logger.Named("ledger")))
	if s.intake, err = intake.New(s.ledger, chains, intake.WithLogger(s.logger.Named("intake"))); err != nil {
		return err
	}
	s.workflow = workflow.New(s.store, s.ledger, s.directory,
		workflow.WithLogger(s.logger.Named("workflow")),
		workflow.WithDispatcher(s.dispatcher))
	return nil
}

func (s *Service) initNotify(ctx context.Context) error {
	sinks := notify.Fanout{notify.NewLogger(s.logger.Named("notify"))}
	if s.config.Notify.JournalURL != "" {
		journal, err := notify.NewJournal(ctx, s.config.Notify.JournalURL)
		if err != nil {
			return err
		}
		sinks = append(sinks, journal)
	}
	sinks = append(sinks, s.dispatchers...)
	s.dispatcher = sinks
	if s.config.Notify.Async {
		s.queue = notify.NewQueue(sinks, s.config.Notify.Queue, s.logger.Named("notify"))
		s.dispatcher = s.queue
	}
	return nil
}

func openStore(ctx context.Context, cfg StoreConfig) (dao.Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return memory.New(), nil
	case DriverSQLite, DriverPgx:
		store, err := sqldb.Open(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
}

// Store returns the underlying store.
func (s *Service) Store() dao.Store { return s.store }

// Directory returns the actor directory.
func (s *Service) Directory() gate.Directory { return s.directory }

// CreateRequest validates input and creates a PENDING request at step 1
// together with its approval chain and ledger reservation.
func (s *Service) CreateRequest(ctx context.Context, requesterID string, input *intake.Input) (created *intake.Created, err error) {
	ctx, span := tracing.StartSpan(ctx, "budgetflow.create_request", tracing.KindInternal)
	span.WithAttributes(map[string]string{"actor_id": requesterID})
	defer func() { tracing.EndSpan(span, err) }()

	requester, err := s.directory.Lookup(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx dao.Tx) error {
		var err error
		created, err = s.intake.Create(ctx, tx, requester, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	span.WithAttributes(map[string]string{"request_number": created.Request.RequestNumber})
	s.logger.Info("execution request created",
		zap.String("request_number", created.Request.RequestNumber),
		zap.String("amount", created.Request.Amount.String()),
		zap.String("actor", requesterID))

	event := notify.NewEvent(notify.TopicRequestCreated, created.Request)
	event.Step = created.Request.CurrentStep
	event.ActorID = requesterID
	if len(created.Steps) > 0 {
		event.NextRole = created.Steps[0].ApproverRole
	}
	notify.Send(ctx, s.logger, s.dispatcher, event)
	return created, nil
}

// ListPendingApprovals returns the steps actorID may decide now, oldest
// request first.
func (s *Service) ListPendingApprovals(ctx context.Context, actorID string) ([]*model.PendingApproval, error) {
	return s.workflow.ListPending(ctx, actorID)
}

// Approve approves stepID on behalf of actorID.
func (s *Service) Approve(ctx context.Context, stepID, actorID, note string) (*workflow.Result, error) {
	return s.workflow.Approve(ctx, stepID, actorID, note)
}

// Reject rejects stepID on behalf of actorID; reason is required.
func (s *Service) Reject(ctx context.Context, stepID, actorID, reason string) (*workflow.Result, error) {
	return s.workflow.Reject(ctx, stepID, actorID, reason)
}

// DeadLetters returns notifications the async queue gave up on.
func (s *Service) DeadLetters() []*notify.Event {
	if s.queue == nil {
		return nil
	}
	return s.queue.DeadLetters()
}

// Close drains pending notifications, closes a store opened by the service
// and shuts down tracing the service installed.
func (s *Service) Close(ctx context.Context) error {
	var errs []error
	if s.queue != nil {
		errs = append(errs, s.queue.Close(ctx))
	}
	if s.ownsStore && s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if s.tracing {
		errs = append(errs, tracing.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
