package services

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/username/salespulse/src/logger"
	"github.com/username/salespulse/src/models"
)

// SnapshotHeader is the first line of the enriched snapshot file.
const SnapshotHeader = "TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region|API_Category|API_Brand|API_Rating|API_Match"

const snapshotFieldCount = 12

// SnapshotService persists the enriched dataset as a pipe-delimited flat file
// and reads it back.
type SnapshotService struct{}

func NewSnapshotService() *SnapshotService {
	return &SnapshotService{}
}

// WriteEnriched writes header plus one row per record. The whole batch is
// prepared up front and written through a single handle. Nil API fields are
// rendered as empty strings, the match flag as its textual form.
func (s *SnapshotService) WriteEnriched(path string, enriched []models.EnrichedTransaction) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: creating directory %s: %v", ErrSnapshotFailed, dir, err)
		}
	}

	var b strings.Builder
	b.WriteString(SnapshotHeader)
	b.WriteByte('\n')
	for _, et := range enriched {
		b.WriteString(formatSnapshotRow(et))
		b.WriteByte('\n')
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrSnapshotFailed, path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrSnapshotFailed, path, err)
	}

	logger.L.Info("Enriched snapshot written", "path", path, "records", len(enriched))
	return nil
}

// ReadEnriched loads a previously written snapshot. Rows with an unexpected
// field count are skipped with a warning.
func (s *SnapshotService) ReadEnriched(path string) ([]models.EnrichedTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer f.Close()

	var enriched []models.EnrichedTransaction
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 || line == "" {
			continue // header
		}

		et, ok := parseSnapshotRow(line)
		if !ok {
			logger.L.Warn("Skipping malformed snapshot row", "path", path, "line", lineNo)
			continue
		}
		enriched = append(enriched, et)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	return enriched, nil
}

func formatSnapshotRow(et models.EnrichedTransaction) string {
	fields := []string{
		et.TransactionID,
		et.Date,
		et.ProductID,
		et.ProductName,
		strconv.Itoa(et.Quantity),
		strconv.FormatFloat(et.UnitPrice, 'g', -1, 64),
		et.CustomerID,
		et.Region,
		emptyIfNilString(et.APICategory),
		emptyIfNilString(et.APIBrand),
		emptyIfNilFloat(et.APIRating),
		strconv.FormatBool(et.APIMatch),
	}
	return strings.Join(fields, "|")
}

func parseSnapshotRow(line string) (models.EnrichedTransaction, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != snapshotFieldCount {
		return models.EnrichedTransaction{}, false
	}

	quantity, err := strconv.Atoi(parts[4])
	if err != nil {
		return models.EnrichedTransaction{}, false
	}
	unitPrice, err := strconv.ParseFloat(parts[5], 64)
	if err != nil {
		return models.EnrichedTransaction{}, false
	}
	match, err := strconv.ParseBool(parts[11])
	if err != nil {
		return models.EnrichedTransaction{}, false
	}

	et := models.EnrichedTransaction{
		Transaction: models.Transaction{
			TransactionID: parts[0],
			Date:          parts[1],
			ProductID:     parts[2],
			ProductName:   parts[3],
			Quantity:      quantity,
			UnitPrice:     unitPrice,
			CustomerID:    parts[6],
			Region:        parts[7],
		},
		APIMatch: match,
	}

	if parts[8] != "" {
		category := parts[8]
		et.APICategory = &category
	}
	if parts[9] != "" {
		brand := parts[9]
		et.APIBrand = &brand
	}
	if parts[10] != "" {
		rating, err := strconv.ParseFloat(parts[10], 64)
		if err != nil {
			return models.EnrichedTransaction{}, false
		}
		et.APIRating = &rating
	}

	return et, true
}

func emptyIfNilString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func emptyIfNilFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
