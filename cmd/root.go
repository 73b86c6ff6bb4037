package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/infinity-soul/risk-cli/internal/config"
	"github.com/infinity-soul/risk-cli/internal/engine"
	"github.com/infinity-soul/risk-cli/internal/riskvec"
	"github.com/infinity-soul/risk-cli/internal/store"
)

var cfg *config.Config

// Shared flags available on the analysis commands.
var (
	flagVertical string
	flagBaseline float64
	flagWeights  string
)

var rootCmd = &cobra.Command{
	Use:   "risk-cli",
	Short: "Risk vector analysis and premium rating engine",
	Long:  "Normalizes client profiles, computes multi-dimensional risk vectors, recommends premiums, and aggregates cohorts and portfolios for insurance and campus verticals.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagVertical, "vertical", "", "risk vertical: insurance or campus (default from config)")
	rootCmd.PersistentFlags().Float64Var(&flagBaseline, "baseline", 0, "baseline premium (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagWeights, "weights", "", "YAML weight override file")
}

// newEngine builds an Engine from config plus command-line overrides.
func newEngine() (*engine.Engine, error) {
	return newEngineFor(activeVertical())
}

// newEngineFor builds an Engine for an explicit vertical, for commands
// that default the vertical differently.
func newEngineFor(vertical string) (*engine.Engine, error) {
	baseline := cfg.Engine.BaselinePremium
	if flagBaseline != 0 {
		baseline = flagBaseline
	}

	var weights *riskvec.WeightTable
	weightsFile := cfg.Engine.WeightsFile
	if flagWeights != "" {
		weightsFile = flagWeights
	}
	if weightsFile != "" {
		base, err := riskvec.DefaultsFor(vertical)
		if err != nil {
			return nil, err
		}
		merged, err := riskvec.LoadFile(weightsFile, base)
		if err != nil {
			return nil, err
		}
		weights = &merged
	}

	return engine.New(engine.Config{
		Vertical:          vertical,
		BaselinePremium:   baseline,
		FlagThreshold:     cfg.Engine.FlagThreshold,
		LossRatioEstimate: cfg.Engine.LossRatioEstimate,
		Weights:           weights,
	})
}

// openStore opens the configured assessment store backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return store.NewSQLite(cfg.Store.SQLitePath)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
