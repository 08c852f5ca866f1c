package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/username/salespulse/src/logger"
	"github.com/username/salespulse/src/models"
)

// catalogResponse mirrors the product catalog JSON envelope.
type catalogResponse struct {
	Products []models.CatalogProduct `json:"products"`
	Total    int                     `json:"total"`
}

// catalogServiceImpl implements ProductCatalog against the HTTP catalog API.
type catalogServiceImpl struct {
	httpClient http.Client
	catalogURL string
}

// NewCatalogService creates a catalog client with a bounded timeout. The
// single blocking network call of a pipeline run happens here.
func NewCatalogService(catalogURL string, timeout time.Duration) ProductCatalog {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &catalogServiceImpl{
		httpClient: http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		catalogURL: catalogURL,
	}
}

// FetchAllProducts GETs the catalog endpoint and decodes the products array.
// Any network, HTTP or JSON failure is returned as an error; callers decide
// whether to degrade to an empty catalog.
func (s *catalogServiceImpl) FetchAllProducts(ctx context.Context) ([]models.CatalogProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.catalogURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building catalog request: %v", ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: catalog API returned status %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	var payload catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode catalog response: %v", ErrCatalogUnavailable, err)
	}

	logger.L.Info("Fetched product catalog", "products", len(payload.Products), "url", s.catalogURL)
	return payload.Products, nil
}
