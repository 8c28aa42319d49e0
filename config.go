package budgetflow

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/viant/budgetflow/internal/logging"
	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/chain"
	"github.com/viant/budgetflow/service/notify"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// Config is a serialisable representation of the service configuration.
// It can be loaded from YAML or TOML; the zero value of each section falls
// back to DefaultConfig.
type Config struct {
	Store   StoreConfig    `json:"store" yaml:"store" toml:"store"`
	Chains  []*chain.Chain `json:"chains,omitempty" yaml:"chains,omitempty" toml:"chains,omitempty"`
	Actors  []*model.Actor `json:"actors,omitempty" yaml:"actors,omitempty" toml:"actors,omitempty"`
	Notify  NotifyConfig   `json:"notify" yaml:"notify" toml:"notify"`
	Logging logging.Config `json:"logging" yaml:"logging" toml:"logging"`
	Tracing TracingConfig  `json:"tracing" yaml:"tracing" toml:"tracing"`
}

// StoreConfig selects the transactional store.
type StoreConfig struct {
	Driver string `json:"driver" yaml:"driver" toml:"driver"`
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty" toml:"dsn,omitempty"`
}

// NotifyConfig configures notification sinks.  Events are always logged;
// JournalURL adds a file journal and Async delivers through a queue.
type NotifyConfig struct {
	JournalURL string             `json:"journalURL,omitempty" yaml:"journalURL,omitempty" toml:"journal_url,omitempty"`
	Async      bool               `json:"async,omitempty" yaml:"async,omitempty" toml:"async,omitempty"`
	Queue      notify.QueueConfig `json:"queue" yaml:"queue" toml:"queue"`
}

// TracingConfig enables the stdout span exporter.
type TracingConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty" toml:"service_name,omitempty"`
	OutputFile  string `json:"outputFile,omitempty" yaml:"outputFile,omitempty" toml:"output_file,omitempty"`
}

// DefaultConfig returns an in-memory configuration with the standard
// approval chain and no actors.
func DefaultConfig() *Config {
	return &Config{
		Store:   StoreConfig{Driver: DriverMemory},
		Chains:  []*chain.Chain{chain.Default()},
		Notify:  NotifyConfig{Queue: notify.DefaultQueueConfig()},
		Logging: logging.DefaultConfig(),
		Tracing: TracingConfig{ServiceName: "budgetflow"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPgx:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for driver %s", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported store.driver %q", c.Store.Driver))
	}
	if _, err := chain.NewRegistry(c.Chains...); err != nil {
		errs = append(errs, err)
	}
	seen := map[string]bool{}
	for i, actor := range c.Actors {
		switch {
		case actor == nil || actor.ID == "":
			errs = append(errs, fmt.Errorf("actors[%d].id is required", i))
		case strings.TrimSpace(actor.Role) == "":
			errs = append(errs, fmt.Errorf("actor %s has no role", actor.ID))
		case seen[actor.ID]:
			errs = append(errs, fmt.Errorf("duplicate actor %s", actor.ID))
		default:
			seen[actor.ID] = true
		}
	}
	if c.Notify.Async {
		if c.Notify.Queue.Buffer <= 0 {
			errs = append(errs, fmt.Errorf("notify.queue.buffer must be > 0"))
		}
		if c.Notify.Queue.MaxRetries < 0 {
			errs = append(errs, fmt.Errorf("notify.queue.maxRetries must be >= 0"))
		}
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML or TOML configuration from URL, layering it over
// DefaultConfig.  The format is chosen by extension.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	data = []byte(expandEnv(string(data)))
	cfg := DefaultConfig()
	switch ext := strings.ToLower(path.Ext(URL)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if len(cfg.Chains) == 0 {
		cfg.Chains = []*chain.Chain{chain.Default()}
	}
	return cfg, cfg.Validate()
}
