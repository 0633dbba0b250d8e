// Package output assembles and persists the final verification package.
package output

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/compliancehq/kyc-verifier/internal/classify"
	"github.com/compliancehq/kyc-verifier/internal/pipeline"
	"github.com/compliancehq/kyc-verifier/internal/prepare"
)

// Package is the persisted result of one verification run.
type Package struct {
	PackageID        string               `json:"package_id"`
	CreatedAt        string               `json:"created_at"`
	ProcessingMethod string               `json:"processing_method"`
	TotalFiles       int                  `json:"total_files"`
	FileCategories   CategoryCounts       `json:"file_categories"`
	CategorizedFiles classify.Categorized `json:"categorized_files"`
	FileMetadata     []prepare.FileRecord `json:"file_metadata"`
	FlowResults      pipeline.FinalPackage `json:"flow_results"`
	AgentsUsed       []string             `json:"agents_used"`
	PackageStatus    string               `json:"package_status"`
}

// CategoryCounts summarizes how many inputs fell into each bucket.
type CategoryCounts struct {
	Images    int `json:"images"`
	Documents int `json:"documents"`
	Other     int `json:"other"`
}

var agentsUsed = []string{
	"document_processor",
	"kyc_analyst",
	"risk_assessor",
}

// Build assembles a Package from a prepared input set and pipeline results.
func Build(prep prepare.Result, results pipeline.FinalPackage, now time.Time) Package {
	return Package{
		PackageID:        fmt.Sprintf("KYC_FLOW_%s", now.Format("20060102_150405")),
		CreatedAt:        now.Format(time.RFC3339),
		ProcessingMethod: "multi_agent_pipeline",
		TotalFiles:       len(prep.Metadata),
		FileCategories: CategoryCounts{
			Images:    len(prep.Categorized.Images),
			Documents: len(prep.Categorized.Documents),
			Other:     len(prep.Categorized.Other),
		},
		CategorizedFiles: prep.Categorized,
		FileMetadata:     prep.Metadata,
		FlowResults:      results,
		AgentsUsed:       agentsUsed,
		PackageStatus:    "COMPLETED",
	}
}

// Sink writes verification packages to disk as indented JSON.
type Sink struct {
	logger *slog.Logger
}

func NewSink(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{logger: logger}
}

// Write persists pkg to path, creating parent directories as needed.
func (s *Sink) Write(pkg Package, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding package: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing package: %w", err)
	}

	s.logger.Info("output.package.written",
		"path", path,
		"package_id", pkg.PackageID,
		"bytes", len(data))
	return nil
}

// Load reads a previously written package back from disk.
func Load(path string) (Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Package{}, fmt.Errorf("reading package: %w", err)
	}
	var pkg Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return Package{}, fmt.Errorf("decoding package: %w", err)
	}
	return pkg, nil
}
