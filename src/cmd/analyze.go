package cmd

import (
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"

	"github.com/username/salespulse/src/config"
	"github.com/username/salespulse/src/logger"
	"github.com/username/salespulse/src/parsers"
	"github.com/username/salespulse/src/processors"
	"github.com/username/salespulse/src/services"
)

var (
	analyzeInput        string
	analyzeOptionsFile  string
	analyzeRegion       string
	analyzeMinAmount    float64
	analyzeMaxAmount    float64
	analyzeTop          int
	analyzeLowThreshold int
	analyzeSnapshot     string
	analyzeReport       string
	analyzeCatalogURL   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the sales analytics pipeline once",
	Long: `Runs the full pipeline against a sales data file: parse, validate,
filter, analyze, enrich against the product catalog, write the enriched
snapshot and the text report.

Flags win over the YAML options file, which wins over environment defaults.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "path to the pipe-delimited sales data file")
	analyzeCmd.Flags().StringVar(&analyzeOptionsFile, "options", "", "path to a YAML run-options file")
	analyzeCmd.Flags().StringVar(&analyzeRegion, "region", "", "only analyze transactions from this region")
	analyzeCmd.Flags().Float64Var(&analyzeMinAmount, "min-amount", 0, "minimum transaction amount (inclusive)")
	analyzeCmd.Flags().Float64Var(&analyzeMaxAmount, "max-amount", 0, "maximum transaction amount (inclusive)")
	analyzeCmd.Flags().IntVar(&analyzeTop, "top", 0, "number of top-selling products to report")
	analyzeCmd.Flags().IntVar(&analyzeLowThreshold, "low-threshold", 0, "quantity threshold for low-performing products")
	analyzeCmd.Flags().StringVar(&analyzeSnapshot, "snapshot", "", "path for the enriched snapshot file")
	analyzeCmd.Flags().StringVar(&analyzeReport, "report", "", "path for the text report file")
	analyzeCmd.Flags().StringVar(&analyzeCatalogURL, "catalog-url", "", "product catalog endpoint")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	params, catalogURL, err := resolveRunParams(cmd)
	if err != nil {
		return err
	}

	resultCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	pipeline := services.NewPipelineService(
		parsers.NewSalesParser(),
		processors.NewValidationProcessor(),
		processors.NewAnalyticsProcessor(),
		services.NewCatalogService(catalogURL, config.Cfg.CatalogTimeout),
		services.NewEnrichmentService(),
		services.NewSnapshotService(),
		services.NewReportService(),
		resultCache,
	)

	result, err := pipeline.Run(cmd.Context(), params)
	if err != nil {
		logger.L.Error("Pipeline run failed", "error", err)
		return fmt.Errorf("analysis failed, check the input file and try again: %w", err)
	}

	fmt.Printf("Run %s complete.\n", result.RunID)
	fmt.Printf("  Records read:      %d\n", result.Summary.TotalInput)
	fmt.Printf("  Invalid:           %d\n", result.Summary.InvalidCount)
	fmt.Printf("  Analyzed:          %d\n", result.Summary.FinalCount)
	fmt.Printf("  Total revenue:     %.2f\n", result.TotalRevenue)
	fmt.Printf("  Catalog products:  %d\n", result.CatalogSize)
	fmt.Printf("  Enriched:          %d/%d (%.1f%%)\n", result.MatchedCount, len(result.Enriched), result.MatchRate)
	if result.SnapshotPath != "" {
		fmt.Printf("  Snapshot:          %s\n", result.SnapshotPath)
	}
	if result.ReportPath != "" {
		fmt.Printf("  Report:            %s\n", result.ReportPath)
	}
	return nil
}

// resolveRunParams layers configuration: env defaults, then the YAML options
// file, then explicitly set flags.
func resolveRunParams(cmd *cobra.Command) (services.RunParams, string, error) {
	params := services.RunParams{
		InputPath:             config.Cfg.SalesDataPath,
		TopProductsLimit:      config.Cfg.TopProductsLimit,
		LowPerformerThreshold: config.Cfg.LowPerformerThreshold,
		SnapshotPath:          config.Cfg.EnrichedSnapshotPath,
		ReportPath:            config.Cfg.ReportPath,
	}
	catalogURL := config.Cfg.CatalogURL

	if analyzeOptionsFile != "" {
		opts, err := config.LoadRunOptions(analyzeOptionsFile)
		if err != nil {
			return params, catalogURL, err
		}
		if opts.InputPath != "" {
			params.InputPath = opts.InputPath
		}
		if opts.Region != "" {
			params.Region = opts.Region
		}
		if opts.MinAmount != nil {
			params.MinAmount = opts.MinAmount
		}
		if opts.MaxAmount != nil {
			params.MaxAmount = opts.MaxAmount
		}
		if opts.TopProductsLimit > 0 {
			params.TopProductsLimit = opts.TopProductsLimit
		}
		if opts.LowPerformerThreshold > 0 {
			params.LowPerformerThreshold = opts.LowPerformerThreshold
		}
		if opts.SnapshotPath != "" {
			params.SnapshotPath = opts.SnapshotPath
		}
		if opts.ReportPath != "" {
			params.ReportPath = opts.ReportPath
		}
		if opts.CatalogURL != "" {
			catalogURL = opts.CatalogURL
		}
	}

	flags := cmd.Flags()
	if analyzeInput != "" {
		params.InputPath = analyzeInput
	}
	if analyzeRegion != "" {
		params.Region = analyzeRegion
	}
	if flags.Changed("min-amount") {
		minAmount := analyzeMinAmount
		params.MinAmount = &minAmount
	}
	if flags.Changed("max-amount") {
		maxAmount := analyzeMaxAmount
		params.MaxAmount = &maxAmount
	}
	if analyzeTop > 0 {
		params.TopProductsLimit = analyzeTop
	}
	if analyzeLowThreshold > 0 {
		params.LowPerformerThreshold = analyzeLowThreshold
	}
	if analyzeSnapshot != "" {
		params.SnapshotPath = analyzeSnapshot
	}
	if analyzeReport != "" {
		params.ReportPath = analyzeReport
	}
	if analyzeCatalogURL != "" {
		catalogURL = analyzeCatalogURL
	}

	return params, catalogURL, nil
}
