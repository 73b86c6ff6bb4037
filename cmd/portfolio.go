package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/infinity-soul/risk-cli/internal/engine"
	"github.com/infinity-soul/risk-cli/internal/ingest"
)

var (
	portfolioFile string
	portfolioJSON bool
	portfolioCSV  bool
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Segment an insurance portfolio into underwriting tiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("portfolio"); err != nil {
			return err
		}

		payloads, err := ingest.ReadFile(portfolioFile)
		if err != nil {
			return err
		}

		e, err := newEngine()
		if err != nil {
			return err
		}

		res, err := e.AnalyzeInsurancePortfolio(payloads)
		if err != nil {
			return err
		}

		if portfolioJSON {
			return printJSON(res)
		}
		if portfolioCSV {
			return writePortfolioCSV(os.Stdout, res)
		}

		fmt.Printf("Portfolio of %d policies\n", res.Summary.PolicyCount)
		money.Printf("Average premium: $%.2f\n", res.Summary.AveragePremium)
		fmt.Printf("Estimated loss ratio: %.2f\n", res.Summary.EstimatedLossRatio)

		printSegment("Preferred", res.Segmentation.Preferred, res.Analyses)
		printSegment("Standard", res.Segmentation.Standard, res.Analyses)
		printSegment("Non-preferred", res.Segmentation.NonPreferred, res.Analyses)

		for _, rec := range res.Summary.Recommendations {
			fmt.Printf("  * %s\n", rec)
		}
		return nil
	},
}

func writePortfolioCSV(w io.Writer, res *engine.PortfolioResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"segment", "index", "name", "overall_risk", "premium"}); err != nil {
		return eris.Wrap(err, "portfolio: write csv")
	}
	write := func(segment string, entries []engine.SegmentEntry) error {
		for _, entry := range entries {
			a := res.Analyses[entry.Index]
			row := []string{
				segment,
				strconv.Itoa(entry.Index),
				a.Profile.Name,
				strconv.FormatFloat(a.Vector.OverallRisk, 'f', 4, 64),
				strconv.FormatFloat(entry.Premium, 'f', 2, 64),
			}
			if err := cw.Write(row); err != nil {
				return eris.Wrap(err, "portfolio: write csv")
			}
		}
		return nil
	}
	if err := write("preferred", res.Segmentation.Preferred); err != nil {
		return err
	}
	if err := write("standard", res.Segmentation.Standard); err != nil {
		return err
	}
	if err := write("nonpreferred", res.Segmentation.NonPreferred); err != nil {
		return err
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "portfolio: write csv")
}

func printSegment(label string, entries []engine.SegmentEntry, analyses []engine.Analysis) {
	fmt.Printf("%s (%d):\n", label, len(entries))
	for _, entry := range entries {
		name := analyses[entry.Index].Profile.Name
		if name == "" {
			name = fmt.Sprintf("record %d", entry.Index)
		}
		money.Printf("  %-30s premium $%.2f\n", name, entry.Premium)
	}
}

func init() {
	portfolioCmd.Flags().StringVar(&portfolioFile, "file", "", "policy profiles file (.json or .xlsx)")
	portfolioCmd.Flags().BoolVar(&portfolioJSON, "json", false, "output JSON")
	portfolioCmd.Flags().BoolVar(&portfolioCSV, "csv", false, "output CSV")
	portfolioCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(portfolioCmd)
}
