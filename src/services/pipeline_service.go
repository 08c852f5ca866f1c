package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/salespulse/src/logger"
	"github.com/username/salespulse/src/parsers"
	"github.com/username/salespulse/src/processors"
	"github.com/username/salespulse/src/utils"
)

const (
	ckLatestPipelineResult = "latest_pipeline_result"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type pipelineServiceImpl struct {
	parser      *parsers.SalesParser
	validator   *processors.ValidationProcessor
	analytics   *processors.AnalyticsProcessor
	catalog     ProductCatalog
	enricher    *EnrichmentService
	snapshots   *SnapshotService
	reports     *ReportService
	resultCache *cache.Cache
}

func NewPipelineService(
	parser *parsers.SalesParser,
	validator *processors.ValidationProcessor,
	analytics *processors.AnalyticsProcessor,
	catalog ProductCatalog,
	enricher *EnrichmentService,
	snapshots *SnapshotService,
	reports *ReportService,
	resultCache *cache.Cache,
) PipelineService {
	return &pipelineServiceImpl{
		parser:      parser,
		validator:   validator,
		analytics:   analytics,
		catalog:     catalog,
		enricher:    enricher,
		snapshots:   snapshots,
		reports:     reports,
		resultCache: resultCache,
	}
}

// Run executes the pipeline against the sales file at params.InputPath.
func (s *pipelineServiceImpl) Run(ctx context.Context, params RunParams) (*PipelineResult, error) {
	lines, err := parsers.ReadSalesData(params.InputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	return s.run(ctx, lines, params)
}

// RunFromReader executes the pipeline against raw sales data from r, e.g. an
// uploaded file.
func (s *pipelineServiceImpl) RunFromReader(ctx context.Context, r io.Reader, params RunParams) (*PipelineResult, error) {
	lines, err := parsers.ReadSalesLines(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	return s.run(ctx, lines, params)
}

func (s *pipelineServiceImpl) run(ctx context.Context, lines []string, params RunParams) (*PipelineResult, error) {
	startTime := time.Now()
	runID := uuid.NewString()
	logger.L.Info("Pipeline run START", "runID", runID, "rawLines", len(lines))

	if params.TopProductsLimit <= 0 {
		params.TopProductsLimit = processors.DefaultTopProducts
	}
	if params.LowPerformerThreshold <= 0 {
		params.LowPerformerThreshold = processors.DefaultLowPerformerThreshold
	}

	transactions := s.parser.Parse(lines)
	logger.L.Info("Parsed sales data", "runID", runID, "parsed", len(transactions), "dropped", len(lines)-len(transactions))

	valid, filterOptions, summary := s.validator.Process(transactions, processors.FilterParams{
		Region:    params.Region,
		MinAmount: params.MinAmount,
		MaxAmount: params.MaxAmount,
	})

	result := &PipelineResult{
		RunID:         runID,
		GeneratedAt:   startTime,
		Summary:       summary,
		FilterOptions: filterOptions,
		TotalRevenue:  s.analytics.TotalRevenue(valid),
		RegionSales:   s.analytics.RegionWiseSales(valid),
		TopProducts:   s.analytics.TopSellingProducts(valid, params.TopProductsLimit),
		LowProducts:   s.analytics.LowPerformingProducts(valid, params.LowPerformerThreshold),
		Customers:     s.analytics.CustomerAnalysis(valid),
		DailyTrend:    s.analytics.DailySalesTrend(valid),
	}
	if peak, ok := s.analytics.FindPeakSalesDay(valid); ok {
		result.PeakDay = &peak
	}

	// A catalog failure degrades to an empty mapping; every record then comes
	// out unmatched and the run still completes.
	products, err := s.catalog.FetchAllProducts(ctx)
	if err != nil {
		logger.L.Warn("Catalog fetch failed, enriching without product metadata", "runID", runID, "error", err)
		products = nil
	}
	result.CatalogSize = len(products)

	mapping := s.enricher.BuildProductMapping(products)
	result.Enriched = s.enricher.Enrich(valid, mapping)
	for _, et := range result.Enriched {
		if et.APIMatch {
			result.MatchedCount++
		}
	}
	if len(result.Enriched) > 0 {
		result.MatchRate = utils.RoundFloat(float64(result.MatchedCount)/float64(len(result.Enriched))*100, 2)
	}
	logger.L.Info("Enrichment complete", "runID", runID,
		"matched", result.MatchedCount, "total", len(result.Enriched), "matchRate", result.MatchRate)

	if params.SnapshotPath != "" {
		if err := s.snapshots.WriteEnriched(params.SnapshotPath, result.Enriched); err != nil {
			return nil, err
		}
		result.SnapshotPath = params.SnapshotPath
	}

	if params.ReportPath != "" {
		if err := s.reports.WriteReport(params.ReportPath, result); err != nil {
			return nil, err
		}
		result.ReportPath = params.ReportPath
	}

	s.resultCache.Set(ckLatestPipelineResult, result, cache.NoExpiration)
	logger.L.Info("Pipeline run END", "runID", runID, "duration", time.Since(startTime))
	return result, nil
}

// LatestResult returns the most recent pipeline result, if any run has
// completed since startup.
func (s *pipelineServiceImpl) LatestResult() (*PipelineResult, bool) {
	if cached, found := s.resultCache.Get(ckLatestPipelineResult); found {
		return cached.(*PipelineResult), true
	}
	return nil, false
}
