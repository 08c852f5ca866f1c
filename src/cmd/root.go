package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/username/salespulse/src/config"
	"github.com/username/salespulse/src/logger"
)

var rootCmd = &cobra.Command{
	Use:   "salespulse",
	Short: "Sales analytics pipeline for pipe-delimited transaction logs",
	Long: `salespulse ingests a pipe-delimited sales transaction log, validates and
optionally filters it, computes aggregate analytics (revenue, region/product/
customer/time-series breakdowns, peak-day and low-performer detection),
enriches records with external product catalog metadata and persists the
enriched dataset plus a textual report.

Run a one-off analysis:
  salespulse analyze --input sales_data.txt

Or serve the pipeline over HTTP:
  salespulse serve`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Failures are reported once, here.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initApp)
}

// initApp loads configuration and the logger before any command runs.
func initApp() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
}
