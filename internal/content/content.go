// Package content extracts text and structure from document files.
//
// PDF extraction attempts a structure-aware primary strategy (pdfcpu content
// streams) and falls back to a raw byte scan when the primary fails. Plain
// text files are read and truncated. Extraction never aborts a batch; the
// caller decides what to do with a failed file.
package content

import (
	"log/slog"
	"strings"
)

// Config holds content extraction settings.
type Config struct {
	// MaxTextLength bounds extracted text, in runes. Defaults to 5000.
	MaxTextLength int
}

func (c *Config) defaults() {
	if c.MaxTextLength <= 0 {
		c.MaxTextLength = 5000
	}
}

// Extractor extracts document content for pipeline preparation.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Truncate bounds s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
