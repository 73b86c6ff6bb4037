package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/infinity-soul/risk-cli/internal/riskvec"
)

var weightsExportPath string

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Inspect and validate weight tables",
}

var weightsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active weight table as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("weights"); err != nil {
			return err
		}

		table, err := resolveWeights()
		if err != nil {
			return err
		}
		data, err := riskvec.Dump(table)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var weightsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a YAML weight override file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("weights"); err != nil {
			return err
		}

		base, err := riskvec.DefaultsFor(activeVertical())
		if err != nil {
			return err
		}
		if _, err := riskvec.LoadFile(args[0], base); err != nil {
			return err
		}
		fmt.Printf("%s: valid\n", args[0])
		return nil
	},
}

var weightsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the vertical's default weight table to a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("weights"); err != nil {
			return err
		}

		table, err := riskvec.DefaultsFor(activeVertical())
		if err != nil {
			return err
		}
		data, err := riskvec.Dump(table)
		if err != nil {
			return err
		}
		if err := os.WriteFile(weightsExportPath, data, 0644); err != nil {
			return eris.Wrapf(err, "weights: write %s", weightsExportPath)
		}
		fmt.Printf("Wrote %s weights to %s\n", activeVertical(), weightsExportPath)
		return nil
	},
}

func activeVertical() string {
	if flagVertical != "" {
		return flagVertical
	}
	return cfg.Engine.Vertical
}

// resolveWeights returns the vertical's defaults with any configured
// override file merged on top.
func resolveWeights() (riskvec.WeightTable, error) {
	base, err := riskvec.DefaultsFor(activeVertical())
	if err != nil {
		return riskvec.WeightTable{}, err
	}

	weightsFile := cfg.Engine.WeightsFile
	if flagWeights != "" {
		weightsFile = flagWeights
	}
	if weightsFile == "" {
		return base, nil
	}
	return riskvec.LoadFile(weightsFile, base)
}

func init() {
	weightsExportCmd.Flags().StringVar(&weightsExportPath, "output", "weights.yaml", "output file path")

	weightsCmd.AddCommand(weightsShowCmd)
	weightsCmd.AddCommand(weightsValidateCmd)
	weightsCmd.AddCommand(weightsExportCmd)
	rootCmd.AddCommand(weightsCmd)
}
