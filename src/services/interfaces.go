package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/username/salespulse/src/models"
)

var (
	ErrParsingFailed      = errors.New("parsing sales data failed")
	ErrCatalogUnavailable = errors.New("product catalog unavailable")
	ErrSnapshotFailed     = errors.New("failed to persist enriched snapshot")
	ErrReportFailed       = errors.New("failed to persist sales report")
	ErrNoResult           = errors.New("no analysis result available")
)

// RunParams are the fully resolved settings for one pipeline run. Callers
// (CLI, HTTP handler) resolve config defaults, YAML options and flags before
// constructing them.
type RunParams struct {
	InputPath             string
	Region                string
	MinAmount             *float64
	MaxAmount             *float64
	TopProductsLimit      int
	LowPerformerThreshold int
	SnapshotPath          string // empty disables the snapshot side effect
	ReportPath            string // empty disables the report file
}

// PipelineResult holds everything one pipeline run produced.
type PipelineResult struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Summary       models.ValidationSummary `json:"summary"`
	FilterOptions models.FilterOptions     `json:"filter_options"`

	TotalRevenue float64                `json:"total_revenue"`
	RegionSales  []models.RegionStats   `json:"region_sales"`
	TopProducts  []models.ProductStats  `json:"top_products"`
	LowProducts  []models.ProductStats  `json:"low_products"`
	Customers    []models.CustomerStats `json:"customers"`
	DailyTrend   []models.DaySales      `json:"daily_trend"`
	PeakDay      *models.PeakDay        `json:"peak_day"` // nil when there is no data

	CatalogSize  int                          `json:"catalog_size"`
	Enriched     []models.EnrichedTransaction `json:"enriched"`
	MatchedCount int                          `json:"matched_count"`
	MatchRate    float64                      `json:"match_rate"`

	SnapshotPath string `json:"snapshot_path,omitempty"`
	ReportPath   string `json:"report_path,omitempty"`
}

// PipelineService runs the sales analytics pipeline end to end and retains
// the latest result for the read endpoints.
type PipelineService interface {
	Run(ctx context.Context, params RunParams) (*PipelineResult, error)
	RunFromReader(ctx context.Context, r io.Reader, params RunParams) (*PipelineResult, error)
	LatestResult() (*PipelineResult, bool)
}

// ProductCatalog fetches the external product catalog. Implementations must
// degrade gracefully; a fetch failure is an error here, but the pipeline
// treats it as an empty catalog.
type ProductCatalog interface {
	FetchAllProducts(ctx context.Context) ([]models.CatalogProduct, error)
}
