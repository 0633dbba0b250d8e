// Package prepare turns input file paths into document-content records ready
// for the verification pipeline.
package prepare

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/compliancehq/kyc-verifier/internal/classify"
	"github.com/compliancehq/kyc-verifier/internal/content"
	"github.com/compliancehq/kyc-verifier/internal/metadata"
)

// DocumentContent is the per-document record consumed by the pipeline.
// TextContent is bounded by the extraction config and is never empty for
// records that enter the pipeline.
type DocumentContent struct {
	FileName    string `json:"file_name"`
	FilePath    string `json:"file_path"`
	FileType    string `json:"file_type"`
	TextContent string `json:"text_content"`
}

// FileRecord is a metadata record optionally enriched with PDF analysis.
type FileRecord struct {
	metadata.Record
	PDF             *content.PDFAnalysis `json:"pdf_analysis,omitempty"`
	ExtractionError string               `json:"extraction_error,omitempty"`
}

// Result is the outcome of preparing a batch of paths.
type Result struct {
	Documents   []DocumentContent
	Metadata    []FileRecord
	Categorized classify.Categorized
}

// Preparer builds DocumentContent records from file paths.
type Preparer struct {
	metadata *metadata.Extractor
	content  *content.Extractor
	logger   *slog.Logger
}

func NewPreparer(m *metadata.Extractor, c *content.Extractor, logger *slog.Logger) *Preparer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preparer{metadata: m, content: c, logger: logger}
}

// Prepare categorizes paths, extracts metadata and content, and returns the
// records whose text survived extraction. Missing files are logged and
// skipped; extraction failures degrade the record, never the batch.
func (p *Preparer) Prepare(paths []string) Result {
	res := Result{
		Documents:   []DocumentContent{},
		Metadata:    []FileRecord{},
		Categorized: classify.ByType(paths),
	}

	p.logger.Info("prepare.start",
		"files", len(paths),
		"documents", len(res.Categorized.Documents),
		"images", len(res.Categorized.Images),
		"other", len(res.Categorized.Other),
	)

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			p.logger.Warn("prepare.file_missing", "path", path)
			continue
		}

		rec := FileRecord{Record: p.metadata.Extract(path)}

		isPDF := strings.EqualFold(filepath.Ext(path), ".pdf")
		if isPDF {
			analysis, err := p.content.ExtractPDF(path)
			if err != nil {
				rec.ExtractionError = err.Error()
			} else {
				rec.PDF = analysis
			}
		}
		res.Metadata = append(res.Metadata, rec)

		doc := DocumentContent{
			FileName: rec.FileName,
			FilePath: rec.FilePath,
			FileType: rec.FileType,
		}
		switch {
		case rec.PDF != nil:
			doc.TextContent = rec.PDF.TextContent
		case rec.FileType == "Text File":
			text, err := p.content.ExtractText(path)
			if err != nil {
				p.logger.Warn("prepare.read_failed", "path", path, "error", err)
				text = fmt.Sprintf("[Error reading file: %v]", err)
			}
			doc.TextContent = text
		}

		if doc.TextContent == "" {
			p.logger.Warn("prepare.empty_content", "path", path, "file_type", rec.FileType)
			continue
		}
		res.Documents = append(res.Documents, doc)
	}

	p.logger.Info("prepare.done", "prepared", len(res.Documents), "metadata_records", len(res.Metadata))
	return res
}
