package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/advisory"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/analysis"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/config"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/logging"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "solarwaterflow",
	Short: "Solar-powered water pumping cost and carbon calculator",
	Long: `solarwaterflow estimates solar output, water demand, diesel savings and
CO2 offset for a community water pumping site, and can ask a language model
for short operational advice.

Commands:
  analyze  - compute metrics for one set of inputs
  serve    - expose the calculator as an HTTP API
  consume  - process pump-site readings from Kafka into InfluxDB`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logFormat != "" {
			cfg.Logging.Format = logFormat
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: json or console")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(consumeCmd)
}

// buildAdvisor returns nil when advice is disabled. A missing credential is
// returned as a *config.ConfigurationError.
func buildAdvisor(ctx context.Context, c *config.Config, log *zap.Logger) (analysis.Advisor, error) {
	if !c.Advisory.Enabled {
		return nil, nil
	}

	apiKey, err := config.ResolveAPIKey(c.Advisory, c.Variant)
	if err != nil {
		return nil, err
	}
	completer, err := advisory.NewCompleter(ctx, c.Advisory, apiKey)
	if err != nil {
		return nil, err
	}
	return advisory.NewClient(completer, advisory.OptionsFrom(c.Advisory, c.Variant), log), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) && cfgErr.Remediation != "" {
			fmt.Fprintln(os.Stderr, "Fix:", cfgErr.Remediation)
		}
		os.Exit(1)
	}
}
