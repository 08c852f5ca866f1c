package processors

import (
	"sort"

	"github.com/username/salespulse/src/models"
	"github.com/username/salespulse/src/utils"
)

const (
	// DefaultTopProducts is the default list length for top-selling products.
	DefaultTopProducts = 5
	// DefaultLowPerformerThreshold marks products whose total quantity sold
	// is strictly below it as low performers.
	DefaultLowPerformerThreshold = 10
)

// AnalyticsProcessor computes the aggregate views over a validated transaction
// set. Every method is a pure function of its input.
type AnalyticsProcessor struct{}

func NewAnalyticsProcessor() *AnalyticsProcessor {
	return &AnalyticsProcessor{}
}

// TotalRevenue sums Amount over all transactions. Returns 0.0 on empty input.
func (p *AnalyticsProcessor) TotalRevenue(transactions []models.Transaction) float64 {
	total := 0.0
	for _, tx := range transactions {
		total += tx.Amount()
	}
	return total
}

// RegionWiseSales groups sales by region, ordered by total sales descending.
// Percentages are of the grand total, rounded to 2 decimals, and 0.0 when the
// grand total is 0.
func (p *AnalyticsProcessor) RegionWiseSales(transactions []models.Transaction) []models.RegionStats {
	index := make(map[string]int)
	var stats []models.RegionStats

	for _, tx := range transactions {
		i, ok := index[tx.Region]
		if !ok {
			i = len(stats)
			index[tx.Region] = i
			stats = append(stats, models.RegionStats{Region: tx.Region})
		}
		stats[i].TotalSales += tx.Amount()
		stats[i].TransactionCount++
	}

	overallTotal := 0.0
	for _, s := range stats {
		overallTotal += s.TotalSales
	}
	for i := range stats {
		if overallTotal > 0 {
			stats[i].Percentage = utils.RoundFloat(stats[i].TotalSales/overallTotal*100, 2)
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalSales > stats[j].TotalSales
	})
	return stats
}

// TopSellingProducts returns the n products with the highest total quantity
// sold, descending. Ties keep grouping-insertion order.
func (p *AnalyticsProcessor) TopSellingProducts(transactions []models.Transaction, n int) []models.ProductStats {
	stats := groupByProduct(transactions)
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalQty > stats[j].TotalQty
	})
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// LowPerformingProducts returns products whose total quantity sold is strictly
// below threshold, ordered by quantity ascending.
func (p *AnalyticsProcessor) LowPerformingProducts(transactions []models.Transaction, threshold int) []models.ProductStats {
	var low []models.ProductStats
	for _, s := range groupByProduct(transactions) {
		if s.TotalQty < threshold {
			low = append(low, s)
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		return low[i].TotalQty < low[j].TotalQty
	})
	return low
}

// CustomerAnalysis groups purchases by customer, ordered by total spent
// descending. Products bought are deduplicated and alphabetically sorted.
func (p *AnalyticsProcessor) CustomerAnalysis(transactions []models.Transaction) []models.CustomerStats {
	index := make(map[string]int)
	var stats []models.CustomerStats
	products := make(map[string]map[string]struct{})

	for _, tx := range transactions {
		i, ok := index[tx.CustomerID]
		if !ok {
			i = len(stats)
			index[tx.CustomerID] = i
			stats = append(stats, models.CustomerStats{CustomerID: tx.CustomerID})
			products[tx.CustomerID] = make(map[string]struct{})
		}
		stats[i].TotalSpent += tx.Amount()
		stats[i].PurchaseCount++
		products[tx.CustomerID][tx.ProductName] = struct{}{}
	}

	for i := range stats {
		if stats[i].PurchaseCount > 0 {
			stats[i].AvgOrderValue = utils.RoundFloat(stats[i].TotalSpent/float64(stats[i].PurchaseCount), 2)
		}

		// Accumulate into a set for uniqueness, then materialize as a sorted
		// sequence for determinism.
		bought := make([]string, 0, len(products[stats[i].CustomerID]))
		for name := range products[stats[i].CustomerID] {
			bought = append(bought, name)
		}
		sort.Strings(bought)
		stats[i].ProductsBought = bought
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalSpent > stats[j].TotalSpent
	})
	return stats
}

// DailySalesTrend groups sales by date, ordered chronologically ascending.
// Dates sort lexically because the input format is lexically sortable.
func (p *AnalyticsProcessor) DailySalesTrend(transactions []models.Transaction) []models.DaySales {
	index := make(map[string]int)
	var trend []models.DaySales
	customers := make(map[string]map[string]struct{})

	for _, tx := range transactions {
		i, ok := index[tx.Date]
		if !ok {
			i = len(trend)
			index[tx.Date] = i
			trend = append(trend, models.DaySales{Date: tx.Date})
			customers[tx.Date] = make(map[string]struct{})
		}
		trend[i].Revenue += tx.Amount()
		trend[i].TransactionCount++
		customers[tx.Date][tx.CustomerID] = struct{}{}
	}

	for i := range trend {
		trend[i].UniqueCustomers = len(customers[trend[i].Date])
	}

	sort.SliceStable(trend, func(i, j int) bool {
		return trend[i].Date < trend[j].Date
	})
	return trend
}

// FindPeakSalesDay returns the date with the highest revenue. The second
// return value is false when there is no data. Revenue ties resolve to the
// date first encountered in the input.
func (p *AnalyticsProcessor) FindPeakSalesDay(transactions []models.Transaction) (models.PeakDay, bool) {
	index := make(map[string]int)
	var daily []models.PeakDay

	for _, tx := range transactions {
		i, ok := index[tx.Date]
		if !ok {
			i = len(daily)
			index[tx.Date] = i
			daily = append(daily, models.PeakDay{Date: tx.Date})
		}
		daily[i].Revenue += tx.Amount()
		daily[i].TransactionCount++
	}

	if len(daily) == 0 {
		return models.PeakDay{}, false
	}

	peak := daily[0]
	for _, day := range daily[1:] {
		if day.Revenue > peak.Revenue {
			peak = day
		}
	}
	return peak, true
}

// groupByProduct aggregates quantity and revenue per product name, preserving
// first-seen order. Shared by the top-seller and low-performer views so both
// operate on an identical grouping.
func groupByProduct(transactions []models.Transaction) []models.ProductStats {
	index := make(map[string]int)
	var stats []models.ProductStats

	for _, tx := range transactions {
		i, ok := index[tx.ProductName]
		if !ok {
			i = len(stats)
			index[tx.ProductName] = i
			stats = append(stats, models.ProductStats{ProductName: tx.ProductName})
		}
		stats[i].TotalQty += tx.Quantity
		stats[i].TotalRevenue += tx.Amount()
	}
	return stats
}
