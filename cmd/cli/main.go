package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"tax-credit-model/internal/config"
	"tax-credit-model/internal/logging"
	"tax-credit-model/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cli",
	Short: "Simulate 45V hydrogen tax credits against historical grid data",
	Long: `Buy grid electricity for an electrolyzer every quarter hour, convert it to
hydrogen and classify each step into a 45V clean hydrogen credit tier.

Generation data is read from JSON-lines files (one generation record per
line). Runs are stored in the backend selected by the config file or
STORAGE_DRIVER.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to YAML config (optional)")
	rootCmd.PersistentFlags().String("log-level", "", "Override log level (debug, info, warn, error)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// env bundles what every subcommand loads first.
type env struct {
	cfg *config.Config
	log *logrus.Logger
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.Log.Level
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		level = v
	}
	return &env{cfg: cfg, log: logging.New(level, cfg.Log.Format)}, nil
}

func (e *env) openStore(ctx context.Context) (store.Store, error) {
	s, err := store.Open(ctx, e.cfg.Storage.StoreOptions(), e.log)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", e.cfg.Storage.Driver, err)
	}
	return s, nil
}
