package main

import (
	"github.com/spf13/cobra"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/analysis"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

var (
	analyzeInputs models.SystemInputs
	noAdvice      bool
	jsonOutput    bool
)

// analyzeCmd computes metrics for a single set of inputs
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute solar pumping metrics and advice",
	Long: `Compute solar energy, water demand, diesel and money saved and CO2 offset
for the given site inputs, then ask the configured model for advice.

Inputs outside the supported ranges are rejected:
  temperature    0-50 °C
  sunlight       0-14 hours/day
  population     100-10000
  diesel-price   >= 0 per liter`,
	Example: `  solarwaterflow analyze --temperature 30 --sunlight 10 --population 2500 --diesel-price 1.2
  solarwaterflow analyze --no-advice --json`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeInputs.Temperature, "temperature", 25, "Ambient temperature in °C")
	analyzeCmd.Flags().Float64Var(&analyzeInputs.SunlightHours, "sunlight", 8, "Sunlight hours per day")
	analyzeCmd.Flags().IntVar(&analyzeInputs.Population, "population", 1000, "Population served")
	analyzeCmd.Flags().Float64Var(&analyzeInputs.DieselPrice, "diesel-price", 1.2, "Diesel price per liter")
	analyzeCmd.Flags().BoolVar(&noAdvice, "no-advice", false, "Skip the advisory request")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the analysis as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var advisor analysis.Advisor
	if !noAdvice {
		var err error
		advisor, err = buildAdvisor(ctx, cfg, logger)
		if err != nil {
			return err
		}
	}

	out, err := analysis.New(advisor, logger).Analyze(ctx, analyzeInputs, advisor != nil)
	if err != nil {
		return err
	}

	if jsonOutput {
		return renderJSON(cmd.OutOrStdout(), out)
	}
	return renderText(cmd.OutOrStdout(), out)
}
