package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/infinity-soul/risk-cli/internal/ingest"
	"github.com/infinity-soul/risk-cli/internal/model"
)

var (
	batchFile string
	batchSave bool
	batchJSON bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze a batch of client profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		payloads, err := ingest.ReadFile(batchFile)
		if err != nil {
			return err
		}

		e, err := newEngine()
		if err != nil {
			return err
		}

		res, err := e.AnalyzeBatchParallel(ctx, payloads, cfg.Batch.MaxConcurrent)
		if err != nil {
			return err
		}

		if batchSave {
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return err
			}

			assessments := make([]model.Assessment, len(res.Analyses))
			now := time.Now().UTC()
			for i, a := range res.Analyses {
				assessments[i] = model.Assessment{
					Vertical:  e.Vertical(),
					Profile:   a.Profile,
					Vector:    a.Vector,
					Premium:   a.Premium,
					CreatedAt: now,
				}
			}
			n, err := st.SaveAssessments(ctx, assessments)
			if err != nil {
				return err
			}
			zap.L().Info("batch saved", zap.Int64("assessments", n))
		}

		if batchJSON {
			return printJSON(res)
		}

		fmt.Printf("Analyzed %d profiles (%d flagged at threshold %.2f)\n",
			res.CohortStats.Total, res.CohortStats.Flagged, res.CohortStats.FlagThreshold)
		if res.CohortStats.AverageRisk != nil {
			fmt.Printf("Average overall risk: %.4f\n", *res.CohortStats.AverageRisk)
		}
		for _, a := range res.Analyses {
			name := a.Profile.Name
			if name == "" {
				name = fmt.Sprintf("record %d", a.Index)
			}
			money.Printf("  %-30s risk %.4f  premium $%.2f\n", name, a.Vector.OverallRisk, a.Premium.AdjustedPremium)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "profiles file (.json or .xlsx)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "persist assessments to the configured store")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output JSON")
	batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
