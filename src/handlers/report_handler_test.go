package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/salespulse/src/config"
	"github.com/username/salespulse/src/logger"
	"github.com/username/salespulse/src/models"
	"github.com/username/salespulse/src/services"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{
		TopProductsLimit:      5,
		LowPerformerThreshold: 10,
		MaxUploadSizeBytes:    10 << 20,
	}
	os.Exit(m.Run())
}

// stubPipelineService serves a canned result to the handlers under test.
type stubPipelineService struct {
	result *services.PipelineResult
	runErr error
}

func (s *stubPipelineService) Run(ctx context.Context, params services.RunParams) (*services.PipelineResult, error) {
	if s.runErr != nil {
		return nil, s.runErr
	}
	return s.result, nil
}

func (s *stubPipelineService) RunFromReader(ctx context.Context, r io.Reader, params services.RunParams) (*services.PipelineResult, error) {
	if s.runErr != nil {
		return nil, s.runErr
	}
	return s.result, nil
}

func (s *stubPipelineService) LatestResult() (*services.PipelineResult, bool) {
	if s.result == nil {
		return nil, false
	}
	return s.result, true
}

func sampleResult() *services.PipelineResult {
	peak := models.PeakDay{Date: "2024-01-15", Revenue: 126.0, TransactionCount: 2}
	return &services.PipelineResult{
		RunID:        "run-1",
		Summary:      models.ValidationSummary{TotalInput: 4, FinalCount: 4},
		TotalRevenue: 350,
		RegionSales: []models.RegionStats{
			{Region: "North", TotalSales: 300, TransactionCount: 3, Percentage: 85.71},
			{Region: "South", TotalSales: 50, TransactionCount: 1, Percentage: 14.29},
		},
		TopProducts: []models.ProductStats{
			{ProductName: "Mouse", TotalQty: 5, TotalRevenue: 200},
		},
		Customers: []models.CustomerStats{
			{CustomerID: "C001", TotalSpent: 100, PurchaseCount: 2, AvgOrderValue: 50, ProductsBought: []string{"Mouse"}},
		},
		DailyTrend: []models.DaySales{
			{Date: "2024-01-15", Revenue: 126, TransactionCount: 2, UniqueCustomers: 2},
		},
		PeakDay:      &peak,
		CatalogSize:  100,
		MatchedCount: 2,
		MatchRate:    50,
	}
}

func TestReportHandler_NoRunYet(t *testing.T) {
	h := NewReportHandler(&stubPipelineService{})

	endpoints := map[string]http.HandlerFunc{
		"summary":    h.HandleGetSummary,
		"regions":    h.HandleGetRegions,
		"peak-day":   h.HandleGetPeakDay,
		"filters":    h.HandleGetFilterOptions,
		"enrichment": h.HandleGetEnrichment,
	}
	for name, handler := range endpoints {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler(rr, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusNotFound, rr.Code)
			assert.Contains(t, rr.Body.String(), "no analysis run has completed yet")
		})
	}
}

func TestReportHandler_GetSummary(t *testing.T) {
	h := NewReportHandler(&stubPipelineService{result: sampleResult()})

	rr := httptest.NewRecorder()
	h.HandleGetSummary(rr, httptest.NewRequest(http.MethodGet, "/api/report/summary", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var got services.PipelineResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.InDelta(t, 350.0, got.TotalRevenue, 1e-9)
	// Views absent from the stub come back as [], never null.
	assert.Contains(t, rr.Body.String(), `"low_products":[]`)

	// A matching If-None-Match short-circuits to 304.
	req := httptest.NewRequest(http.MethodGet, "/api/report/summary", nil)
	req.Header.Set("If-None-Match", etag)
	rr2 := httptest.NewRecorder()
	h.HandleGetSummary(rr2, req)
	assert.Equal(t, http.StatusNotModified, rr2.Code)
	assert.Empty(t, rr2.Body.String())
}

func TestReportHandler_Views(t *testing.T) {
	h := NewReportHandler(&stubPipelineService{result: sampleResult()})

	t.Run("regions", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleGetRegions(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var regions []models.RegionStats
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &regions))
		require.Len(t, regions, 2)
		assert.Equal(t, "North", regions[0].Region)
	})

	t.Run("low products render as empty array", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleGetLowProducts(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]\n", rr.Body.String())
	})

	t.Run("peak day", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleGetPeakDay(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var peak models.PeakDay
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &peak))
		assert.Equal(t, "2024-01-15", peak.Date)
	})

	t.Run("enrichment", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleGetEnrichment(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.EqualValues(t, 100, body["catalog_size"])
		assert.EqualValues(t, 2, body["matched_count"])
		assert.EqualValues(t, 50, body["match_rate"])
	})
}

// The cached result is shared by every read handler; the summary endpoint
// must not write its nil-slice normalization back into it.
func TestReportHandler_GetSummaryLeavesCachedResultUntouched(t *testing.T) {
	result := sampleResult()
	result.LowProducts = nil
	result.Enriched = nil
	h := NewReportHandler(&stubPipelineService{result: result})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := httptest.NewRecorder()
			h.HandleGetSummary(rr, httptest.NewRequest(http.MethodGet, "/api/report/summary", nil))
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), `"low_products":[]`)
			assert.Contains(t, rr.Body.String(), `"enriched":[]`)
		}()
	}
	wg.Wait()

	assert.Nil(t, result.LowProducts)
	assert.Nil(t, result.Enriched)
}

func TestReportHandler_PeakDayMissing(t *testing.T) {
	result := sampleResult()
	result.PeakDay = nil
	h := NewReportHandler(&stubPipelineService{result: result})

	rr := httptest.NewRecorder()
	h.HandleGetPeakDay(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "no sales data available")
}

func multipartUpload(t *testing.T, fields map[string]string, fileContents string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", "sales_data.txt")
	require.NoError(t, err)
	_, err = io.Copy(fw, strings.NewReader(fileContents))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAnalyzeHandler(t *testing.T) {
	t.Run("successful upload returns the result", func(t *testing.T) {
		h := NewAnalyzeHandler(&stubPipelineService{result: sampleResult()})

		body, contentType := multipartUpload(t, map[string]string{"region": "North"}, "header\nT1|2024-01-15|P101|Mouse|2|25.50|C001|North\n")
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)

		rr := httptest.NewRecorder()
		h.HandleAnalyze(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var got services.PipelineResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "run-1", got.RunID)
	})

	t.Run("missing file field is a bad request", func(t *testing.T) {
		h := NewAnalyzeHandler(&stubPipelineService{result: sampleResult()})

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("region", "North"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rr := httptest.NewRecorder()
		h.HandleAnalyze(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "'file' field")
	})

	t.Run("invalid form parameter is a bad request", func(t *testing.T) {
		h := NewAnalyzeHandler(&stubPipelineService{result: sampleResult()})

		body, contentType := multipartUpload(t, map[string]string{"min_amount": "abc"}, "data")
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)

		rr := httptest.NewRecorder()
		h.HandleAnalyze(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid min_amount")
	})

	t.Run("parse failure maps to bad request", func(t *testing.T) {
		h := NewAnalyzeHandler(&stubPipelineService{runErr: services.ErrParsingFailed})

		body, contentType := multipartUpload(t, nil, "data")
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)

		rr := httptest.NewRecorder()
		h.HandleAnalyze(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("other failures map to internal server error", func(t *testing.T) {
		h := NewAnalyzeHandler(&stubPipelineService{runErr: services.ErrSnapshotFailed})

		body, contentType := multipartUpload(t, nil, "data")
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)

		rr := httptest.NewRecorder()
		h.HandleAnalyze(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
