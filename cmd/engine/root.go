package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fintechjobs-engine/internal/config"

	"github.com/spf13/cobra"
)

const (
	envDataDir = "FINTECHJOBS_DATA_DIR"
	dbFile     = "fintechjobs.db"
)

var (
	flagDataDir string
	flagConfig  string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "engine",
		Short:         "engine finds entry-level fintech positions and the HR contacts to apply to.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default $"+envDataDir+" or .)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default <data-dir>/config.yml)")

	root.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newPositionsCmd(),
		newDraftsCmd(),
		newPruneCmd(),
		newSecretsCmd(),
		newConfigCmd(),
	)
	return root
}

func Execute(ctx context.Context) error {
	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

// env is what every command resolves before doing work.
type env struct {
	DataDir string
	CfgPath string
	Cfg     config.Config
}

func dataDir() string {
	if d := strings.TrimSpace(flagDataDir); d != "" {
		return d
	}
	if d := strings.TrimSpace(os.Getenv(envDataDir)); d != "" {
		return d
	}
	return "."
}

// loadEnv bootstraps the data dir, loads config.yml (bootstrapped from
// defaults on first use) and overlays companies.yml when present.
func loadEnv() (env, error) {
	dir := dataDir()
	path := strings.TrimSpace(flagConfig)
	if path == "" {
		p, err := config.EnsureUserConfig(dir)
		if err != nil {
			return env{}, fmt.Errorf("config bootstrap failed: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return env{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	companies := filepath.Join(filepath.Dir(path), "companies.yml")
	if err := config.OverlayCompanies(&cfg, companies); err != nil {
		return env{}, fmt.Errorf("companies overlay (%s): %w", companies, err)
	}
	if flagDataDir != "" {
		cfg.App.DataDir = flagDataDir
	}
	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		return env{}, err
	}
	return env{DataDir: cfg.App.DataDir, CfgPath: path, Cfg: cfg}, nil
}

func (e env) dbPath() string { return filepath.Join(e.DataDir, dbFile) }
