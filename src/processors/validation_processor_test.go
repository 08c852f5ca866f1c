package processors

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/salespulse/src/logger"
	"github.com/username/salespulse/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func tx(id, date, productID, name string, qty int, price float64, customerID, region string) models.Transaction {
	return models.Transaction{
		TransactionID: id,
		Date:          date,
		ProductID:     productID,
		ProductName:   name,
		Quantity:      qty,
		UnitPrice:     price,
		CustomerID:    customerID,
		Region:        region,
	}
}

func TestValidationProcessor_Validation(t *testing.T) {
	processor := NewValidationProcessor()

	valid := tx("T1", "2024-01-01", "P101", "Widget", 3, 100, "C1", "North")

	invalid := []models.Transaction{
		tx("", "2024-01-01", "P101", "Widget", 3, 100, "C1", "North"),   // missing transaction id
		tx("T2", "", "P101", "Widget", 3, 100, "C1", "North"),           // missing date
		tx("T3", "2024-01-01", "P101", "", 3, 100, "C1", "North"),       // missing product name
		tx("T4", "2024-01-01", "P101", "Widget", 3, 100, "C1", ""),      // missing region
		tx("X5", "2024-01-01", "P101", "Widget", 3, 100, "C1", "North"), // bad transaction prefix
		tx("T6", "2024-01-01", "Q101", "Widget", 3, 100, "C1", "North"), // bad product prefix
		tx("T7", "2024-01-01", "P101", "Widget", 3, 100, "D1", "North"), // bad customer prefix
		tx("T8", "2024-01-01", "P101", "Widget", 0, 100, "C1", "North"), // zero quantity
		tx("T9", "2024-01-01", "P101", "Widget", 3, -5, "C1", "North"),  // negative price
	}

	input := append([]models.Transaction{valid}, invalid...)
	final, _, summary := processor.Process(input, FilterParams{})

	require.Len(t, final, 1)
	assert.Equal(t, "T1", final[0].TransactionID)
	assert.Equal(t, len(input), summary.TotalInput)
	assert.Equal(t, len(invalid), summary.InvalidCount)
	assert.Equal(t, 0, summary.FilteredByRegion)
	assert.Equal(t, 0, summary.FilteredByAmount)
	assert.Equal(t, 1, summary.FinalCount)
}

func TestValidationProcessor_Filters(t *testing.T) {
	processor := NewValidationProcessor()

	input := []models.Transaction{
		tx("T1", "2024-01-01", "P101", "Widget", 3, 100, "C1", "North"), // 300
		tx("T2", "2024-01-01", "P102", "Gadget", 1, 50, "C2", "South"),  // 50
		tx("T3", "2024-01-02", "P103", "Gizmo", 2, 400, "C3", "North"),  // 800
		tx("T4", "2024-01-02", "P104", "Doodad", 1, 20, "C4", "North"),  // 20
	}

	t.Run("region filter runs before amount filter", func(t *testing.T) {
		minAmount := 100.0
		maxAmount := 500.0
		final, _, summary := processor.Process(input, FilterParams{
			Region:    "North",
			MinAmount: &minAmount,
			MaxAmount: &maxAmount,
		})

		require.Len(t, final, 1)
		assert.Equal(t, "T1", final[0].TransactionID)
		assert.Equal(t, 1, summary.FilteredByRegion) // T2
		assert.Equal(t, 2, summary.FilteredByAmount) // T3 over, T4 under
		assert.Equal(t, 1, summary.FinalCount)
	})

	t.Run("amount bounds are inclusive", func(t *testing.T) {
		minAmount := 50.0
		maxAmount := 300.0
		final, _, summary := processor.Process(input, FilterParams{
			MinAmount: &minAmount,
			MaxAmount: &maxAmount,
		})

		require.Len(t, final, 2)
		assert.Equal(t, "T1", final[0].TransactionID)
		assert.Equal(t, "T2", final[1].TransactionID)
		assert.Equal(t, 2, summary.FilteredByAmount)
	})

	t.Run("diagnostic describes pre-filter valid set", func(t *testing.T) {
		_, options, _ := processor.Process(input, FilterParams{Region: "South"})

		assert.Equal(t, []string{"North", "South"}, options.Regions)
		assert.True(t, options.HasAmounts)
		assert.Equal(t, 20.0, options.MinAmount)
		assert.Equal(t, 800.0, options.MaxAmount)
	})
}

func TestDescribeFilterOptions_Empty(t *testing.T) {
	options := DescribeFilterOptions(nil)

	assert.Empty(t, options.Regions)
	assert.False(t, options.HasAmounts)
	assert.Equal(t, 0.0, options.MinAmount)
	assert.Equal(t, 0.0, options.MaxAmount)
}
