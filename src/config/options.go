package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunOptions holds per-run pipeline settings loaded from an optional YAML file.
// Zero values mean "not set"; callers overlay these on top of the AppConfig
// defaults and let explicit CLI flags win over both.
type RunOptions struct {
	InputPath             string   `yaml:"input_path"`
	Region                string   `yaml:"region"`
	MinAmount             *float64 `yaml:"min_amount"`
	MaxAmount             *float64 `yaml:"max_amount"`
	TopProductsLimit      int      `yaml:"top_products_limit"`
	LowPerformerThreshold int      `yaml:"low_performer_threshold"`
	SnapshotPath          string   `yaml:"snapshot_path"`
	ReportPath            string   `yaml:"report_path"`
	CatalogURL            string   `yaml:"catalog_url"`
}

// LoadRunOptions reads and parses a YAML run-options file.
func LoadRunOptions(path string) (*RunOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run options file %s: %w", path, err)
	}

	var opts RunOptions
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("failed to parse run options file %s: %w", path, err)
	}

	if opts.TopProductsLimit < 0 {
		return nil, fmt.Errorf("run options file %s: top_products_limit must not be negative", path)
	}
	if opts.LowPerformerThreshold < 0 {
		return nil, fmt.Errorf("run options file %s: low_performer_threshold must not be negative", path)
	}

	return &opts, nil
}
