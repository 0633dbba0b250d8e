package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"under bound unchanged", "short", 10, "short"},
		{"at bound unchanged", "exact", 5, "exact"},
		{"over bound marked", "abcdefgh", 5, "abcde..."},
		{"multibyte counted in runes", "éééééé", 4, "éééé..."},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}
}

func TestExtractText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	long := strings.Repeat("x", 6000)
	require.NoError(t, os.WriteFile(path, []byte(long), 0o644))

	e := NewExtractor(Config{}, nil)
	got, err := e.ExtractText(path)
	require.NoError(t, err)
	assert.Len(t, got, 5003) // 5000 runes + "..."
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestExtractText_MissingFile(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.ExtractText(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}

func TestTextFromContentStream(t *testing.T) {
	stream := []byte("BT\n/F1 12 Tf\n(Full Name: Jane Smith) Tj\n0 -14 Td\n(PEP Status: No) Tj\nT*\n[(Source) -250 (of Funds)] TJ\nET\n")
	got := textFromContentStream(stream)

	assert.Contains(t, got, "Full Name: Jane Smith")
	assert.Contains(t, got, "PEP Status: No")
	assert.Contains(t, got, "Sourceof Funds")
}

func TestDecodeLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"escaped parens", `a\(b\)c`, "a(b)c"},
		{"newline and tab", `x\ny\tz`, "x\ny\tz"},
		{"octal space", `a\040b`, "a b"},
		{"backslash", `a\\b`, `a\b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeLiteral([]byte(tt.in)))
		})
	}
}

func TestExtractPDF_FallbackOnBrokenXref(t *testing.T) {
	// Minimal body with no cross-reference table: the structured reader cannot
	// parse it, but the raw scan recovers the uncompressed literals.
	raw := "%PDF-1.4\n1 0 obj\n<< /Type /Page >>\nstream\nBT (Account Holder: Jane Smith) Tj ET\nendstream\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	e := NewExtractor(Config{}, nil)
	analysis, err := e.ExtractPDF(path)
	require.NoError(t, err)

	assert.Equal(t, MethodRawScan, analysis.ExtractionMethod)
	assert.True(t, analysis.HasText)
	assert.Contains(t, analysis.TextContent, "Account Holder: Jane Smith")
	assert.Equal(t, 1, analysis.TotalPages)
}

func TestExtractPDF_BothStrategiesFail(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, no pdf header"), 0o644))

	e := NewExtractor(Config{}, nil)
	_, err := e.ExtractPDF(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf extraction failed")
}
