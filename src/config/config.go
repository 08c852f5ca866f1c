package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port                  string
	LogLevel              string
	SalesDataPath         string
	CatalogURL            string
	CatalogTimeout        time.Duration
	EnrichedSnapshotPath  string
	ReportPath            string
	TopProductsLimit      int
	LowPerformerThreshold int
	MaxUploadSizeBytes    int64
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:                  getEnv("PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		SalesDataPath:         getEnv("SALES_DATA_PATH", "sales_data.txt"),
		CatalogURL:            getEnv("CATALOG_URL", "https://dummyjson.com/products?limit=100"),
		CatalogTimeout:        getEnvAsDuration("CATALOG_TIMEOUT", 5*time.Second),
		EnrichedSnapshotPath:  getEnv("ENRICHED_SNAPSHOT_PATH", "data/enriched_sales_data.txt"),
		ReportPath:            getEnv("REPORT_PATH", "output/sales_report.txt"),
		TopProductsLimit:      getEnvAsInt("TOP_PRODUCTS_LIMIT", 5),
		LowPerformerThreshold: getEnvAsInt("LOW_PERFORMER_THRESHOLD", 10),
		MaxUploadSizeBytes:    maxUploadSizeBytes,
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, CatalogURL=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.CatalogURL)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
