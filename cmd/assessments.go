package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/infinity-soul/risk-cli/internal/store"
)

var (
	listVertical string
	listMinRisk  float64
	listLimit    int
	listOffset   int
	listJSON     bool
)

var assessmentsCmd = &cobra.Command{
	Use:   "assessments",
	Short: "Inspect stored assessments",
}

var assessmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored assessments",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("assessments"); err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		list, err := st.ListAssessments(ctx, store.AssessmentFilter{
			Vertical: listVertical,
			MinRisk:  listMinRisk,
			Limit:    listLimit,
			Offset:   listOffset,
		})
		if err != nil {
			return err
		}

		if listJSON {
			return printJSON(list)
		}

		fmt.Printf("%d assessments\n", len(list))
		for _, a := range list {
			name := a.Profile.Name
			if name == "" {
				name = "(unnamed)"
			}
			money.Printf("  %s  %-10s %-25s risk %.4f  premium $%.2f  %s\n",
				a.ID, a.Vertical, name, a.Vector.OverallRisk,
				a.Premium.AdjustedPremium, a.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var assessmentsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one stored assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("assessments"); err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		a, err := st.GetAssessment(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(a)
	},
}

func init() {
	assessmentsListCmd.Flags().StringVar(&listVertical, "filter-vertical", "", "filter by vertical")
	assessmentsListCmd.Flags().Float64Var(&listMinRisk, "min-risk", 0, "minimum overall risk")
	assessmentsListCmd.Flags().IntVar(&listLimit, "limit", 0, "max rows (default 100)")
	assessmentsListCmd.Flags().IntVar(&listOffset, "offset", 0, "row offset")
	assessmentsListCmd.Flags().BoolVar(&listJSON, "json", false, "output JSON")

	assessmentsCmd.AddCommand(assessmentsListCmd)
	assessmentsCmd.AddCommand(assessmentsGetCmd)
	rootCmd.AddCommand(assessmentsCmd)
}
