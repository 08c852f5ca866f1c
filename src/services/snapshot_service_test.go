package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/salespulse/src/models"
)

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestSnapshotService_RoundTrip(t *testing.T) {
	snapshots := NewSnapshotService()
	path := filepath.Join(t.TempDir(), "data", "enriched_sales_data.txt")

	original := []models.EnrichedTransaction{
		{
			Transaction: models.Transaction{
				TransactionID: "T1", Date: "2024-01-01", ProductID: "P101",
				ProductName: "Widget Deluxe", Quantity: 3, UnitPrice: 1250.5,
				CustomerID: "C1", Region: "North",
			},
			APICategory: strPtr("tools"),
			APIBrand:    strPtr("Acme"),
			APIRating:   floatPtr(4.5),
			APIMatch:    true,
		},
		{
			Transaction: models.Transaction{
				TransactionID: "T2", Date: "2024-01-02", ProductID: "P999",
				ProductName: "Gadget", Quantity: 1, UnitPrice: 50,
				CustomerID: "C2", Region: "South",
			},
		},
	}

	require.NoError(t, snapshots.WriteEnriched(path, original))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, SnapshotHeader, lines[0])
	assert.Equal(t, "T1|2024-01-01|P101|Widget Deluxe|3|1250.5|C1|North|tools|Acme|4.5|true", lines[1])
	assert.Equal(t, "T2|2024-01-02|P999|Gadget|1|50|C2|South||||false", lines[2])

	restored, err := snapshots.ReadEnriched(path)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestSnapshotService_WriteEmptyBatch(t *testing.T) {
	snapshots := NewSnapshotService()
	path := filepath.Join(t.TempDir(), "enriched.txt")

	require.NoError(t, snapshots.WriteEnriched(path, nil))

	restored, err := snapshots.ReadEnriched(path)
	require.NoError(t, err)
	assert.Empty(t, restored)
}

func TestSnapshotService_ReadSkipsMalformedRows(t *testing.T) {
	snapshots := NewSnapshotService()
	path := filepath.Join(t.TempDir(), "enriched.txt")

	content := SnapshotHeader + "\n" +
		"T1|2024-01-01|P101|Widget|3|100\n" +
		"T2|2024-01-02|P102|Gadget|1|50|C2|South||||false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	restored, err := snapshots.ReadEnriched(path)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, "T2", restored[0].TransactionID)
}

func TestSnapshotService_ReadMissingFile(t *testing.T) {
	snapshots := NewSnapshotService()

	_, err := snapshots.ReadEnriched(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
