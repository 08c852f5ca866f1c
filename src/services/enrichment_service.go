package services

import (
	"strconv"

	"github.com/username/salespulse/src/logger"
	"github.com/username/salespulse/src/models"
)

// EnrichmentService joins transactions to externally fetched product metadata
// by a numeric key derived from the ProductID.
type EnrichmentService struct{}

func NewEnrichmentService() *EnrichmentService {
	return &EnrichmentService{}
}

// BuildProductMapping indexes catalog products by their numeric id. Entries
// without an id are skipped.
func (s *EnrichmentService) BuildProductMapping(products []models.CatalogProduct) map[int]models.ProductInfo {
	mapping := make(map[int]models.ProductInfo, len(products))
	for _, p := range products {
		if p.ID == nil {
			logger.L.Debug("Skipping catalog entry without id", "title", p.Title)
			continue
		}
		mapping[*p.ID] = models.ProductInfo{
			Category: p.Category,
			Brand:    p.Brand,
			Rating:   p.Rating,
		}
	}
	return mapping
}

// Enrich attaches catalog metadata to every transaction, in input order.
// A record that cannot be matched, or whose enrichment fails unexpectedly,
// comes out unmatched; the batch never aborts.
func (s *EnrichmentService) Enrich(transactions []models.Transaction, mapping map[int]models.ProductInfo) []models.EnrichedTransaction {
	enriched := make([]models.EnrichedTransaction, 0, len(transactions))
	for _, tx := range transactions {
		enriched = append(enriched, s.enrichOne(tx, mapping))
	}
	return enriched
}

// enrichOne enriches a single transaction. Per-record faults are isolated:
// a panic here degrades the record to the unmatched state.
func (s *EnrichmentService) enrichOne(tx models.Transaction, mapping map[int]models.ProductInfo) (result models.EnrichedTransaction) {
	result = models.EnrichedTransaction{Transaction: tx}

	defer func() {
		if r := recover(); r != nil {
			logger.L.Warn("Recovered from enrichment failure, marking transaction unmatched",
				"transactionID", tx.TransactionID, "panic", r)
			result = models.EnrichedTransaction{Transaction: tx}
		}
	}()

	key, ok := DeriveCatalogKey(tx.ProductID)
	if !ok {
		return result
	}

	info, found := mapping[key]
	if !found {
		return result
	}

	category := info.Category
	brand := info.Brand
	rating := info.Rating
	result.APICategory = &category
	result.APIBrand = &brand
	result.APIRating = &rating
	result.APIMatch = true
	return result
}

// DeriveCatalogKey strips the single-character prefix of a ProductID
// (e.g. P101 -> 101) and parses the remainder as an integer. A remainder that
// is not purely numeric means no match.
func DeriveCatalogKey(productID string) (int, bool) {
	if len(productID) < 2 {
		return 0, false
	}
	suffix := productID[1:]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return id, true
}
