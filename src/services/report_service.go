package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/username/salespulse/src/logger"
)

// ReportService renders a pipeline result as a human-readable text report.
// The report is derived purely from the analytics views plus the enrichment
// success rate.
type ReportService struct{}

func NewReportService() *ReportService {
	return &ReportService{}
}

const reportRule = "========================================"

// BuildReport renders the full text report for one pipeline run.
func (s *ReportService) BuildReport(result *PipelineResult) string {
	var b strings.Builder

	fmt.Fprintln(&b, reportRule)
	fmt.Fprintln(&b, "        SALES ANALYTICS REPORT")
	fmt.Fprintln(&b, reportRule)
	fmt.Fprintf(&b, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(&b, "Generated at: %s\n\n", result.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintln(&b, "-- Input Summary --")
	fmt.Fprintf(&b, "Records read: %d\n", result.Summary.TotalInput)
	fmt.Fprintf(&b, "Invalid records: %d\n", result.Summary.InvalidCount)
	fmt.Fprintf(&b, "Removed by region filter: %d\n", result.Summary.FilteredByRegion)
	fmt.Fprintf(&b, "Removed by amount filter: %d\n", result.Summary.FilteredByAmount)
	fmt.Fprintf(&b, "Records analyzed: %d\n\n", result.Summary.FinalCount)

	fmt.Fprintln(&b, "-- Revenue --")
	fmt.Fprintf(&b, "Total revenue: %.2f\n\n", result.TotalRevenue)

	fmt.Fprintln(&b, "-- Region-wise Sales --")
	if len(result.RegionSales) == 0 {
		fmt.Fprintln(&b, "No sales data available.")
	}
	for _, r := range result.RegionSales {
		fmt.Fprintf(&b, "%-15s total=%.2f transactions=%d share=%.2f%%\n",
			r.Region, r.TotalSales, r.TransactionCount, r.Percentage)
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "-- Top %d Products by Quantity --\n", len(result.TopProducts))
	for i, p := range result.TopProducts {
		fmt.Fprintf(&b, "%d. %s qty=%d revenue=%.2f\n", i+1, p.ProductName, p.TotalQty, p.TotalRevenue)
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "-- Customer Analysis --")
	for _, c := range result.Customers {
		fmt.Fprintf(&b, "%-10s spent=%.2f purchases=%d avg_order=%.2f products=%s\n",
			c.CustomerID, c.TotalSpent, c.PurchaseCount, c.AvgOrderValue, strings.Join(c.ProductsBought, ", "))
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "-- Daily Sales Trend --")
	for _, d := range result.DailyTrend {
		fmt.Fprintf(&b, "%s revenue=%.2f transactions=%d unique_customers=%d\n",
			d.Date, d.Revenue, d.TransactionCount, d.UniqueCustomers)
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "-- Peak Sales Day --")
	if result.PeakDay != nil {
		fmt.Fprintf(&b, "%s revenue=%.2f transactions=%d\n\n",
			result.PeakDay.Date, result.PeakDay.Revenue, result.PeakDay.TransactionCount)
	} else {
		fmt.Fprintf(&b, "No sales data available.\n\n")
	}

	fmt.Fprintln(&b, "-- Low-performing Products --")
	if len(result.LowProducts) == 0 {
		fmt.Fprintln(&b, "None.")
	}
	for _, p := range result.LowProducts {
		fmt.Fprintf(&b, "%s qty=%d revenue=%.2f\n", p.ProductName, p.TotalQty, p.TotalRevenue)
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "-- Enrichment --")
	fmt.Fprintf(&b, "Catalog products: %d\n", result.CatalogSize)
	fmt.Fprintf(&b, "Matched: %d/%d (%.1f%%)\n", result.MatchedCount, len(result.Enriched), result.MatchRate)
	fmt.Fprintln(&b, reportRule)

	return b.String()
}

// WriteReport renders the report and persists it in one write through a
// single handle.
func (s *ReportService) WriteReport(path string, result *PipelineResult) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: creating directory %s: %v", ErrReportFailed, dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrReportFailed, path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(s.BuildReport(result)); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrReportFailed, path, err)
	}

	logger.L.Info("Sales report written", "path", path)
	return nil
}
