package parsers

import (
	"strconv"
	"strings"

	"github.com/username/salespulse/src/logger"
	"github.com/username/salespulse/src/models"
)

// expectedFieldCount is the number of pipe-separated fields per sales row:
// TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region
const expectedFieldCount = 8

// SalesParser converts raw pipe-delimited lines into Transaction records.
type SalesParser struct{}

func NewSalesParser() *SalesParser {
	return &SalesParser{}
}

// Parse turns raw lines into Transactions, preserving input order.
// Lines with the wrong field count or non-numeric Quantity/UnitPrice are
// dropped without surfacing an error; reporting dropped rows is the caller's
// concern.
func (p *SalesParser) Parse(lines []string) []models.Transaction {
	var transactions []models.Transaction

	for _, line := range lines {
		parts := strings.Split(line, "|")
		if len(parts) != expectedFieldCount {
			logger.L.Debug("Skipping malformed row", "fieldCount", len(parts))
			continue
		}

		// Commas inside product names would collide with grouping separators
		// downstream, so they become spaces.
		productName := strings.ReplaceAll(parts[3], ",", " ")

		// Strip grouping separators before numeric conversion.
		quantityStr := strings.ReplaceAll(parts[4], ",", "")
		unitPriceStr := strings.ReplaceAll(parts[5], ",", "")

		quantity, err := strconv.Atoi(quantityStr)
		if err != nil {
			logger.L.Debug("Skipping row with invalid quantity", "transactionID", parts[0], "quantity", parts[4])
			continue
		}

		unitPrice, err := strconv.ParseFloat(unitPriceStr, 64)
		if err != nil {
			logger.L.Debug("Skipping row with invalid unit price", "transactionID", parts[0], "unitPrice", parts[5])
			continue
		}

		transactions = append(transactions, models.Transaction{
			TransactionID: parts[0],
			Date:          parts[1],
			ProductID:     parts[2],
			ProductName:   productName,
			Quantity:      quantity,
			UnitPrice:     unitPrice,
			CustomerID:    parts[6],
			Region:        parts[7],
		})
	}

	return transactions
}
