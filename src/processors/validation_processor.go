package processors

import (
	"sort"

	"github.com/username/salespulse/src/logger"
	"github.com/username/salespulse/src/models"
)

// FilterParams are the optional narrowing criteria applied after validation.
// A nil amount bound means unbounded on that side; an empty Region disables
// the region filter. Both bounds are inclusive.
type FilterParams struct {
	Region    string
	MinAmount *float64
	MaxAmount *float64
}

// ValidationProcessor validates parsed transactions and applies the optional
// region and amount filters.
type ValidationProcessor struct{}

func NewValidationProcessor() *ValidationProcessor {
	return &ValidationProcessor{}
}

// Process validates transactions and filters the valid subset. Filters run in
// a fixed order: region first, then amount. It returns the final working set,
// the pre-filter diagnostic of available regions and amount range, and the
// reduction summary.
func (p *ValidationProcessor) Process(transactions []models.Transaction, params FilterParams) ([]models.Transaction, models.FilterOptions, models.ValidationSummary) {
	summary := models.ValidationSummary{TotalInput: len(transactions)}

	var valid []models.Transaction
	for _, tx := range transactions {
		if !isValid(tx) {
			summary.InvalidCount++
			continue
		}
		valid = append(valid, tx)
	}

	options := DescribeFilterOptions(valid)
	logger.L.Info("Validation complete",
		"totalInput", summary.TotalInput,
		"valid", len(valid),
		"invalid", summary.InvalidCount,
		"regions", options.Regions)

	if params.Region != "" {
		before := len(valid)
		var kept []models.Transaction
		for _, tx := range valid {
			if tx.Region == params.Region {
				kept = append(kept, tx)
			}
		}
		valid = kept
		summary.FilteredByRegion = before - len(valid)
		logger.L.Info("Region filter applied", "region", params.Region, "removed", summary.FilteredByRegion, "remaining", len(valid))
	}

	if params.MinAmount != nil || params.MaxAmount != nil {
		before := len(valid)
		var kept []models.Transaction
		for _, tx := range valid {
			if amountWithinBounds(tx.Amount(), params.MinAmount, params.MaxAmount) {
				kept = append(kept, tx)
			}
		}
		valid = kept
		summary.FilteredByAmount = before - len(valid)
		logger.L.Info("Amount filter applied", "removed", summary.FilteredByAmount, "remaining", len(valid))
	}

	summary.FinalCount = len(valid)
	return valid, options, summary
}

// DescribeFilterOptions reports the distinct regions present and the observed
// amount range across a transaction set. It backs the pre-filter diagnostic
// and the filter discovery endpoint.
func DescribeFilterOptions(transactions []models.Transaction) models.FilterOptions {
	regionSet := make(map[string]struct{})
	var options models.FilterOptions

	for _, tx := range transactions {
		regionSet[tx.Region] = struct{}{}

		amount := tx.Amount()
		if !options.HasAmounts {
			options.MinAmount = amount
			options.MaxAmount = amount
			options.HasAmounts = true
			continue
		}
		if amount < options.MinAmount {
			options.MinAmount = amount
		}
		if amount > options.MaxAmount {
			options.MaxAmount = amount
		}
	}

	options.Regions = make([]string, 0, len(regionSet))
	for region := range regionSet {
		options.Regions = append(options.Regions, region)
	}
	sort.Strings(options.Regions)

	return options
}

// isValid applies every validation predicate. The specific failing predicate
// is not retained; invalid records are only counted.
func isValid(tx models.Transaction) bool {
	if tx.TransactionID == "" || tx.Date == "" || tx.ProductID == "" || tx.ProductName == "" ||
		tx.CustomerID == "" || tx.Region == "" {
		return false
	}
	if tx.TransactionID[0] != 'T' || tx.ProductID[0] != 'P' || tx.CustomerID[0] != 'C' {
		return false
	}
	if tx.Quantity <= 0 || tx.UnitPrice <= 0 {
		return false
	}
	return true
}

func amountWithinBounds(amount float64, min, max *float64) bool {
	if min != nil && amount < *min {
		return false
	}
	if max != nil && amount > *max {
		return false
	}
	return true
}
