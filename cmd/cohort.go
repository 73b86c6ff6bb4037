package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/infinity-soul/risk-cli/internal/ingest"
)

var (
	cohortFile      string
	cohortThreshold float64
	cohortJSON      bool
)

var cohortCmd = &cobra.Command{
	Use:   "cohort",
	Short: "Analyze a campus cohort and flag at-risk individuals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("cohort"); err != nil {
			return err
		}

		payloads, err := ingest.ReadFile(cohortFile)
		if err != nil {
			return err
		}

		e, err := newEngineFor(cohortVertical())
		if err != nil {
			return err
		}

		res, err := e.AnalyzeCampusCohort(payloads, cohortThreshold)
		if err != nil {
			return err
		}

		if cohortJSON {
			return printJSON(res)
		}

		fmt.Printf("Cohort of %d (%d flagged at threshold %.2f)\n",
			res.Summary.Total, res.Summary.Flagged, res.Summary.FlagThreshold)
		if res.Summary.AverageRisk != nil {
			fmt.Printf("Average overall risk: %.4f\n", *res.Summary.AverageRisk)
		}
		for _, f := range res.Flagged {
			name := f.Name
			if name == "" {
				name = fmt.Sprintf("record %d", f.Index)
			}
			fmt.Printf("  %-30s risk %.4f\n", name, f.Vector.OverallRisk)
			for _, iv := range f.Interventions {
				fmt.Printf("    - %s\n", iv)
			}
		}
		if len(res.Summary.Recommendations) > 0 {
			fmt.Printf("Recommendations:\n  %s\n", strings.Join(res.Summary.Recommendations, "\n  "))
		}
		return nil
	},
}

// cohortVertical defaults to the campus vertical unless --vertical was
// given, without touching the shared flag state.
func cohortVertical() string {
	if flagVertical != "" {
		return flagVertical
	}
	return "campus"
}

func init() {
	cohortCmd.Flags().StringVar(&cohortFile, "file", "", "cohort profiles file (.json or .xlsx)")
	cohortCmd.Flags().Float64Var(&cohortThreshold, "threshold", 0, "flag threshold (default 0.6)")
	cohortCmd.Flags().BoolVar(&cohortJSON, "json", false, "output JSON")
	cohortCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(cohortCmd)
}
