package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/infinity-soul/risk-cli/internal/engine"
	"github.com/infinity-soul/risk-cli/internal/ingest"
)

var (
	analyzeFile string
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single client profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		payloads, err := ingest.ReadFile(analyzeFile)
		if err != nil {
			return err
		}
		if len(payloads) != 1 {
			return eris.Errorf("analyze: expected one profile in %s, found %d (use batch for multiple)", analyzeFile, len(payloads))
		}

		e, err := newEngine()
		if err != nil {
			return err
		}

		analysis, err := e.Analyze(payloads[0])
		if err != nil {
			return err
		}

		if analyzeJSON {
			return printJSON(analysis)
		}
		printAnalysis(analysis)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "client profile file (.json or .xlsx)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output JSON")
	analyzeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(analyzeCmd)
}

// money formats a dollar amount with thousands separators.
var money = message.NewPrinter(language.AmericanEnglish)

func printAnalysis(a *engine.Analysis) {
	if a.Profile.Name != "" {
		fmt.Printf("Client: %s\n", a.Profile.Name)
	}
	fmt.Printf("Risk vector:\n")
	fmt.Printf("  loss probability        %.4f\n", a.Vector.LossProbability)
	fmt.Printf("  emotional volatility    %.4f\n", a.Vector.EmotionalVolatility)
	fmt.Printf("  stability score         %.4f\n", a.Vector.StabilityScore)
	fmt.Printf("  behavioral consistency  %.4f\n", a.Vector.BehavioralConsistency)
	fmt.Printf("  overall risk            %.4f  (%s)\n", a.Vector.OverallRisk, a.Vector.Band())
	fmt.Printf("Premium:\n")
	money.Printf("  coverage limit    $%.0f\n", a.Premium.CoverageLimit)
	fmt.Printf("  rate              %.4f\n", a.Premium.Rate)
	money.Printf("  adjusted premium  $%.2f\n", a.Premium.AdjustedPremium)
}
