package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/salespulse/src/config"
	"github.com/username/salespulse/src/logger"
	"github.com/username/salespulse/src/services"
	"github.com/username/salespulse/src/utils"
)

type AnalyzeHandler struct {
	pipelineService services.PipelineService
}

func NewAnalyzeHandler(service services.PipelineService) *AnalyzeHandler {
	return &AnalyzeHandler{
		pipelineService: service,
	}
}

// HandleAnalyze accepts a multipart sales-file upload, runs the full pipeline
// on it and returns the result. Optional form fields: region, min_amount,
// max_amount, top, low_threshold.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	params, err := runParamsFromForm(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing analyze request", "filename", fileHeader.Filename, "region", params.Region)
	result, err := h.pipelineService.RunFromReader(r.Context(), file, params)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			logger.L.Warn("Analyze failed while parsing sales data", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing sales file: %v", err), http.StatusBadRequest)
		} else {
			logger.L.Error("Internal error processing analyze request", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while analyzing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding JSON response for analyze result", "error", err)
	}
}

// runParamsFromForm resolves per-run parameters from form fields on top of
// the configured defaults.
func runParamsFromForm(r *http.Request) (services.RunParams, error) {
	params := services.RunParams{
		Region:                r.FormValue("region"),
		TopProductsLimit:      config.Cfg.TopProductsLimit,
		LowPerformerThreshold: config.Cfg.LowPerformerThreshold,
		SnapshotPath:          config.Cfg.EnrichedSnapshotPath,
		ReportPath:            config.Cfg.ReportPath,
	}

	if v := r.FormValue("min_amount"); v != "" {
		minAmount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return params, fmt.Errorf("invalid min_amount %q", v)
		}
		params.MinAmount = &minAmount
	}
	if v := r.FormValue("max_amount"); v != "" {
		maxAmount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return params, fmt.Errorf("invalid max_amount %q", v)
		}
		params.MaxAmount = &maxAmount
	}
	if v := r.FormValue("top"); v != "" {
		top, err := strconv.Atoi(v)
		if err != nil || top <= 0 {
			return params, fmt.Errorf("invalid top %q", v)
		}
		params.TopProductsLimit = top
	}
	if v := r.FormValue("low_threshold"); v != "" {
		threshold, err := strconv.Atoi(v)
		if err != nil || threshold <= 0 {
			return params, fmt.Errorf("invalid low_threshold %q", v)
		}
		params.LowPerformerThreshold = threshold
	}

	return params, nil
}
