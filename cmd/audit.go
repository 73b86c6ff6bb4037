package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/infinity-soul/risk-cli/internal/audit"
)

var (
	auditDomain string
	auditJSON   bool
	auditOutput string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run an external security audit of a business domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("audit"); err != nil {
			return err
		}

		auditor := audit.New(cfg.Audit)
		report, err := auditor.Run(cmd.Context(), auditDomain)
		if err != nil {
			return err
		}

		if auditJSON || auditOutput != "" {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return eris.Wrap(err, "audit: marshal report")
			}
			if auditOutput != "" {
				if err := os.WriteFile(auditOutput, data, 0644); err != nil {
					return eris.Wrapf(err, "audit: write %s", auditOutput)
				}
				fmt.Printf("Results written to %s\n", auditOutput)
			} else {
				fmt.Println(string(data))
			}
		} else {
			printAuditReport(report)
		}

		// Non-zero exit signals automation that the target needs remediation.
		if report.RiskLevel == "HIGH" || report.RiskLevel == "CRITICAL" {
			return eris.Errorf("audit: %s risk level for %s", report.RiskLevel, report.Domain)
		}
		return nil
	},
}

func printAuditReport(r *audit.Report) {
	fmt.Printf("Security audit: %s\n", r.Domain)
	fmt.Printf("Score: %d/100  Risk level: %s\n", r.Score, r.RiskLevel)

	if len(r.Issues) == 0 {
		fmt.Println("No security issues detected")
	} else {
		fmt.Printf("Issues (%d):\n", len(r.Issues))
		for _, issue := range r.Issues {
			fmt.Printf("  [%s] %s (-%d)\n", issue.Severity, issue.Message, issue.Impact)
		}
	}

	if len(r.Recommendations) > 0 {
		fmt.Println("Recommendations:")
		for i, rec := range r.Recommendations {
			fmt.Printf("  %d. %s\n", i+1, rec)
		}
	}
	fmt.Printf("Insurance: %s\n", r.InsuranceRecommendation)
}

func init() {
	auditCmd.Flags().StringVar(&auditDomain, "domain", "", "domain to audit (e.g. example.com)")
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "output JSON")
	auditCmd.Flags().StringVar(&auditOutput, "output", "", "write JSON results to file")
	auditCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(auditCmd)
}
