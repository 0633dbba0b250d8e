package content

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFAnalysis is the result of extracting a PDF file.
type PDFAnalysis struct {
	TotalPages       int          `json:"total_pages"`
	HasText          bool         `json:"has_text"`
	HasImages        bool         `json:"has_images"`
	TotalImages      int          `json:"total_images"`
	TextContent      string       `json:"text_content"`
	PageDetails      []PageDetail `json:"page_details,omitempty"`
	ExtractionMethod string       `json:"extraction_method"`
	CharacterCount   int          `json:"character_count"`
	WordCount        int          `json:"word_count"`
}

// PageDetail summarizes a single PDF page.
type PageDetail struct {
	PageNumber int  `json:"page_number"`
	TextLength int  `json:"text_length"`
	HasText    bool `json:"has_text"`
	ImageCount int  `json:"image_count"`
}

// Extraction method names recorded in PDFAnalysis.
const (
	MethodPDFCPU  = "pdfcpu"
	MethodRawScan = "rawscan_fallback"
)

// ExtractPDF analyzes a PDF with the primary strategy, falling back to a raw
// content scan if the primary fails. Both failing returns a combined error.
func (e *Extractor) ExtractPDF(path string) (*PDFAnalysis, error) {
	analysis, err := e.extractWithPDFCPU(path)
	if err == nil {
		return analysis, nil
	}
	e.logger.Warn("content.pdf.primary_failed", "path", path, "error", err)

	analysis, ferr := e.extractRawScan(path)
	if ferr == nil {
		return analysis, nil
	}
	e.logger.Error("content.pdf.fallback_failed", "path", path, "error", ferr)
	return nil, fmt.Errorf("pdf extraction failed: pdfcpu: %v; rawscan: %w", err, ferr)
}

// extractWithPDFCPU walks page content streams for text and image XObjects.
func (e *Extractor) extractWithPDFCPU(path string) (*PDFAnalysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("content.pdf.close_failed", "path", path, "error", cerr)
		}
	}()

	pctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	analysis := &PDFAnalysis{
		TotalPages:       pctx.PageCount,
		ExtractionMethod: MethodPDFCPU,
	}

	var full strings.Builder
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		pageText := pageContentText(pctx, pageNr)

		pageImages := 0
		if pctx.Optimize != nil {
			pageImages = len(pdfcpu.ImageObjNrs(pctx, pageNr))
		}
		analysis.TotalImages += pageImages

		analysis.PageDetails = append(analysis.PageDetails, PageDetail{
			PageNumber: pageNr,
			TextLength: len(pageText),
			HasText:    strings.TrimSpace(pageText) != "",
			ImageCount: pageImages,
		})

		full.WriteString(pageText)
		full.WriteByte('\n')
	}

	text := full.String()
	analysis.HasText = strings.TrimSpace(text) != ""
	analysis.HasImages = analysis.TotalImages > 0
	analysis.CharacterCount = len(text)
	analysis.WordCount = wordCount(text)
	analysis.TextContent = Truncate(text, e.cfg.MaxTextLength)
	return analysis, nil
}

// pageContentText decodes one page's content stream into plain text.
// Stream read errors yield an empty page rather than failing the document.
func pageContentText(pctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}

// literalRe matches PDF string literals: (text), with escapes allowed inside.
var literalRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)

// textFromContentStream walks text-showing operators (Tj, TJ, ') and the
// positioning operators that imply separators (Td, TD, T*).
func textFromContentStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			appendLiterals(&sb, line, "")
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			appendLiterals(&sb, line, "\n")
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return normalizeExtracted(sb.String())
}

func appendLiterals(sb *strings.Builder, line []byte, prefix string) {
	for _, m := range literalRe.FindAllSubmatch(line, -1) {
		text := decodeLiteral(m[1])
		if text == "" {
			continue
		}
		sb.WriteString(prefix)
		sb.WriteString(text)
	}
}

// decodeLiteral resolves PDF string escapes, including octal codes.
func decodeLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(c)
		default:
			if c >= '0' && c <= '7' {
				val := int(c - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				if val > 0 && val < 256 {
					sb.WriteByte(byte(val))
				}
			}
		}
	}
	return sb.String()
}

var multiSpaceRe = regexp.MustCompile(`[ \t]{2,}`)

func normalizeExtracted(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = multiSpaceRe.ReplaceAllString(strings.TrimRight(l, " \t"), " ")
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// extractRawScan recovers literal text directly from the file bytes. It only
// sees uncompressed content streams, which is exactly the situation where the
// structured reader tends to have failed on a damaged cross-reference table.
func (e *Extractor) extractRawScan(path string) (*PDFAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%s: not a PDF file", path)
	}

	var sb strings.Builder
	for _, m := range rawShowTextRe.FindAllSubmatch(data, -1) {
		text := decodeLiteral(m[1])
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}

	text := normalizeExtracted(sb.String())
	if text == "" {
		return nil, fmt.Errorf("%s: no text content recovered", path)
	}

	return &PDFAnalysis{
		TotalPages:       countPageObjects(data),
		HasText:          true,
		TextContent:      Truncate(text, e.cfg.MaxTextLength),
		ExtractionMethod: MethodRawScan,
		CharacterCount:   len(text),
		WordCount:        wordCount(text),
	}, nil
}

// rawShowTextRe matches "(literal) Tj" sequences anywhere in the file.
var rawShowTextRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*Tj`)

var pageObjRe = regexp.MustCompile(`/Type\s*/Page[^s]`)

func countPageObjects(data []byte) int {
	return len(pageObjRe.FindAll(data, -1))
}
