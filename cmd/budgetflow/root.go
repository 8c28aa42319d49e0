package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/viant/budgetflow"
)

var (
	flagConfig  string
	flagActor   string
	flagDataDir string
	flagJSON    bool
)

var rootCmd = &cobra.Command{
	Use:           "budgetflow",
	Short:         "Construction budget approval workflow",
	Long:          "Track project budgets and move execution requests through their approval chain.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	homeDir, _ := os.UserHomeDir()
	defaultDataDir := filepath.Join(homeDir, ".budgetflow")

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", os.Getenv("BUDGETFLOW_CONFIG"), "Configuration file (yaml or toml), defaults to budgetflow.yaml in --data-dir")
	rootCmd.PersistentFlags().StringVarP(&flagActor, "actor", "a", os.Getenv("BUDGETFLOW_ACTOR"), "Acting user id")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", defaultDataDir, "SQLite data directory when no config is given")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print results as JSON")
}

// loadConfig reads --config, then budgetflow.yaml or budgetflow.toml in
// --data-dir, and finally falls back to a sqlite store in --data-dir with no
// actors.
func loadConfig(ctx context.Context) (*budgetflow.Config, error) {
	if flagConfig != "" {
		return budgetflow.LoadConfig(ctx, flagConfig)
	}
	for _, name := range []string{"budgetflow.yaml", "budgetflow.yml", "budgetflow.toml"} {
		location := filepath.Join(flagDataDir, name)
		if _, err := os.Stat(location); err == nil {
			return budgetflow.LoadConfig(ctx, location)
		}
	}
	cfg := budgetflow.DefaultConfig()
	cfg.Store = budgetflow.StoreConfig{Driver: budgetflow.DriverSQLite, DSN: filepath.Join(flagDataDir, "budgetflow.db")}
	cfg.Logging.Level = "warn"
	return cfg, nil
}

// withService opens the service for the duration of fn.
func withService(cmd *cobra.Command, fn func(ctx context.Context, srv *budgetflow.Service) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	srv, err := budgetflow.NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := srv.Close(ctx); err == nil {
			err = cErr
		}
	}()
	return fn(ctx, srv)
}

func requireActor() (string, error) {
	if flagActor == "" {
		return "", fmt.Errorf("--actor (or BUDGETFLOW_ACTOR) is required")
	}
	return flagActor, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
