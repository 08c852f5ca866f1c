package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/salespulse/src/logger"
	"github.com/username/salespulse/src/models"
	"github.com/username/salespulse/src/services"
	"github.com/username/salespulse/src/utils"
)

// ReportHandler serves the analytics views of the latest completed pipeline
// run.
type ReportHandler struct {
	pipelineService services.PipelineService
}

func NewReportHandler(service services.PipelineService) *ReportHandler {
	return &ReportHandler{
		pipelineService: service,
	}
}

// latest fetches the cached result or answers 404 when no run has completed.
func (h *ReportHandler) latest(w http.ResponseWriter) (*services.PipelineResult, bool) {
	result, ok := h.pipelineService.LatestResult()
	if !ok {
		utils.SendJSONError(w, "no analysis run has completed yet", http.StatusNotFound)
		return nil, false
	}
	return result, true
}

// HandleGetSummary returns the full latest result with ETag support.
func (h *ReportHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	latest, ok := h.latest(w)
	if !ok {
		return
	}

	// The cached result is shared across requests; normalize a shallow copy
	// so concurrent reads never observe a write.
	result := *latest
	if result.RegionSales == nil {
		result.RegionSales = []models.RegionStats{}
	}
	if result.TopProducts == nil {
		result.TopProducts = []models.ProductStats{}
	}
	if result.LowProducts == nil {
		result.LowProducts = []models.ProductStats{}
	}
	if result.Customers == nil {
		result.Customers = []models.CustomerStats{}
	}
	if result.DailyTrend == nil {
		result.DailyTrend = []models.DaySales{}
	}
	if result.Enriched == nil {
		result.Enriched = []models.EnrichedTransaction{}
	}

	currentETag, etagErr := utils.GenerateETag(&result)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for pipeline result", "runID", result.RunID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, clientETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(clientETag) == quotedETag {
				logger.L.Debug("ETag match for pipeline result", "runID", result.RunID)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	writeJSON(w, &result)
}

func (h *ReportHandler) HandleGetRegions(w http.ResponseWriter, r *http.Request) {
	if result, ok := h.latest(w); ok {
		writeJSON(w, orEmpty(result.RegionSales))
	}
}

func (h *ReportHandler) HandleGetTopProducts(w http.ResponseWriter, r *http.Request) {
	if result, ok := h.latest(w); ok {
		writeJSON(w, orEmpty(result.TopProducts))
	}
}

func (h *ReportHandler) HandleGetLowProducts(w http.ResponseWriter, r *http.Request) {
	if result, ok := h.latest(w); ok {
		writeJSON(w, orEmpty(result.LowProducts))
	}
}

func (h *ReportHandler) HandleGetCustomers(w http.ResponseWriter, r *http.Request) {
	if result, ok := h.latest(w); ok {
		writeJSON(w, orEmpty(result.Customers))
	}
}

func (h *ReportHandler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	if result, ok := h.latest(w); ok {
		writeJSON(w, orEmpty(result.DailyTrend))
	}
}

// HandleGetPeakDay answers 404 when the analyzed set was empty; that is the
// explicit no-data signal.
func (h *ReportHandler) HandleGetPeakDay(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w)
	if !ok {
		return
	}
	if result.PeakDay == nil {
		utils.SendJSONError(w, "no sales data available", http.StatusNotFound)
		return
	}
	writeJSON(w, result.PeakDay)
}

// HandleGetFilterOptions serves the pre-filter diagnostic: distinct regions
// and the observed amount range of the valid set.
func (h *ReportHandler) HandleGetFilterOptions(w http.ResponseWriter, r *http.Request) {
	if result, ok := h.latest(w); ok {
		writeJSON(w, result.FilterOptions)
	}
}

// HandleGetEnrichment serves the enrichment outcome of the latest run.
func (h *ReportHandler) HandleGetEnrichment(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w)
	if !ok {
		return
	}
	writeJSON(w, map[string]interface{}{
		"catalog_size":  result.CatalogSize,
		"matched_count": result.MatchedCount,
		"total":         len(result.Enriched),
		"match_rate":    result.MatchRate,
		"transactions":  orEmpty(result.Enriched),
	})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}

// orEmpty keeps empty views rendering as [] instead of null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
