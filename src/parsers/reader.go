package parsers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/username/salespulse/src/logger"
)

// ReadSalesData reads the pipe-delimited sales file at path and returns its
// data lines: header skipped, whitespace trimmed, blank lines dropped.
// A missing file is recoverable; it yields an empty record set, not an error.
func ReadSalesData(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.L.Warn("Sales data file not found, continuing with empty record set", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open sales data file %s: %w", path, err)
	}
	defer f.Close()

	return ReadSalesLines(f)
}

// ReadSalesLines reads raw sales data from r, handling encoding fallback the
// same way ReadSalesData does for files.
func ReadSalesLines(r io.Reader) ([]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read sales data: %w", err)
	}

	text, err := decodeWithFallback(raw)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(text, "\n")

	var cleaned []string
	for i, line := range lines {
		if i == 0 {
			continue // header row
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return cleaned, nil
}

// decodeWithFallback tries UTF-8 first, then CP1252 and Latin-1. Legacy
// exports of the sales log carry one of the single-byte encodings; CP1252
// goes first because both decoders accept every byte value, so only the
// first arm is ever reached.
func decodeWithFallback(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		decoded, err := cm.NewDecoder().Bytes(raw)
		if err != nil {
			logger.L.Debug("Decoding attempt failed, trying next encoding", "encoding", cm.String(), "error", err)
			continue
		}
		logger.L.Info("Sales data decoded with fallback encoding", "encoding", cm.String())
		return string(decoded), nil
	}

	return "", errors.New("unable to decode sales data with supported encodings")
}
