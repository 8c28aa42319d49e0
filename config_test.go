package budgetflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/chain"
)

const yamlConfig = `
store:
  driver: sqlite
  dsn: /tmp/budgetflow/test.db
chains:
  - type: EXECUTION
    roles: [MANAGER, CFO, ADMIN]
  - type: petty
    roles: [manager]
actors:
  - id: mike
    role: MANAGER
notify:
  async: true
  queue:
    buffer: 10
    maxRetries: 1
    retryDelay: 50ms
logging:
  level: debug
  format: json
`

const tomlConfig = `
[store]
driver = "memory"

[[actors]]
id = "carol"
role = "CFO"

[notify]
journal_url = "mem://localhost/journal"

[tracing]
enabled = false
service_name = "budget"
`

func TestLoadConfig(t *testing.T) {
	type testCase struct {
		name    string
		file    string
		content string
		check   func(t *testing.T, cfg *Config)
		wantErr bool
	}

	tests := []testCase{
		{
			name: "yaml", file: "budgetflow.yaml", content: yamlConfig,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DriverSQLite, cfg.Store.Driver)
				require.Len(t, cfg.Chains, 2)
				assert.Equal(t, []string{"manager"}, cfg.Chains[1].Roles)
				require.Len(t, cfg.Actors, 1)
				assert.True(t, cfg.Notify.Async)
				assert.Equal(t, 50*time.Millisecond, cfg.Notify.Queue.RetryDelay)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "toml", file: "budgetflow.toml", content: tomlConfig,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DriverMemory, cfg.Store.Driver)
				assert.Equal(t, []*chain.Chain{chain.Default()}, cfg.Chains)
				assert.Equal(t, "carol", cfg.Actors[0].ID)
				assert.Equal(t, "mem://localhost/journal", cfg.Notify.JournalURL)
				assert.Equal(t, "budget", cfg.Tracing.ServiceName)
				assert.Equal(t, "info", cfg.Logging.Level)
			},
		},
		{
			name: "env expansion", file: "env.yaml", content: "store:\n  driver: sqlite\n  dsn: ${env.BUDGETFLOW_TEST_DSN}\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/var/lib/budgetflow/b.db", cfg.Store.DSN)
			},
		},
		{name: "unknown extension", file: "budgetflow.ini", content: "a=b", wantErr: true},
		{name: "invalid driver", file: "bad.yaml", content: "store:\n  driver: mysql\n", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("BUDGETFLOW_TEST_DSN", "/var/lib/budgetflow/b.db")
			location := filepath.Join(t.TempDir(), tc.file)
			require.NoError(t, os.WriteFile(location, []byte(tc.content), 0o644))
			cfg, err := LoadConfig(context.Background(), location)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	type testCase struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}
	tests := []testCase{
		{name: "default", mutate: func(cfg *Config) {}},
		{name: "sqlite without dsn", mutate: func(cfg *Config) { cfg.Store.Driver = DriverSQLite }, wantErr: true},
		{name: "empty chain", mutate: func(cfg *Config) { cfg.Chains = []*chain.Chain{{Type: "X"}} }, wantErr: true},
		{name: "duplicate chain", mutate: func(cfg *Config) { cfg.Chains = append(cfg.Chains, chain.Default()) }, wantErr: true},
		{name: "actor without role", mutate: func(cfg *Config) { cfg.Actors = append(cfg.Actors, &model.Actor{ID: "x"}) }, wantErr: true},
		{name: "async without buffer", mutate: func(cfg *Config) { cfg.Notify.Async = true; cfg.Notify.Queue.Buffer = 0 }, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
