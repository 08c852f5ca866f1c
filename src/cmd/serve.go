package cmd

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/username/salespulse/src/config"
	"github.com/username/salespulse/src/handlers"
	"github.com/username/salespulse/src/logger"
	"github.com/username/salespulse/src/parsers"
	"github.com/username/salespulse/src/processors"
	"github.com/username/salespulse/src/services"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sales analytics pipeline over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer() {
	logger.L.Info("salespulse server starting...")

	logger.L.Info("Initializing result cache...")
	resultCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	catalogService := services.NewCatalogService(config.Cfg.CatalogURL, config.Cfg.CatalogTimeout)
	pipelineService := services.NewPipelineService(
		parsers.NewSalesParser(),
		processors.NewValidationProcessor(),
		processors.NewAnalyticsProcessor(),
		catalogService,
		services.NewEnrichmentService(),
		services.NewSnapshotService(),
		services.NewReportService(),
		resultCache,
	)

	analyzeHandler := handlers.NewAnalyzeHandler(pipelineService)
	reportHandler := handlers.NewReportHandler(pipelineService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/analyze", analyzeHandler.HandleAnalyze)
	apiRouter.HandleFunc("GET /api/report/summary", reportHandler.HandleGetSummary)
	apiRouter.HandleFunc("GET /api/report/regions", reportHandler.HandleGetRegions)
	apiRouter.HandleFunc("GET /api/report/products/top", reportHandler.HandleGetTopProducts)
	apiRouter.HandleFunc("GET /api/report/products/low", reportHandler.HandleGetLowProducts)
	apiRouter.HandleFunc("GET /api/report/customers", reportHandler.HandleGetCustomers)
	apiRouter.HandleFunc("GET /api/report/trend", reportHandler.HandleGetTrend)
	apiRouter.HandleFunc("GET /api/report/peak-day", reportHandler.HandleGetPeakDay)
	apiRouter.HandleFunc("GET /api/report/filters", reportHandler.HandleGetFilterOptions)
	apiRouter.HandleFunc("GET /api/report/enrichment", reportHandler.HandleGetEnrichment)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "salespulse backend is running"})
		} else if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
