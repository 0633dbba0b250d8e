package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/compliancehq/kyc-verifier/internal/classify"
)

func TestByType(t *testing.T) {
	tests := []struct {
		name          string
		paths         []string
		wantDocuments []string
		wantImages    []string
		wantOther     []string
	}{
		{
			name:          "mixed batch",
			paths:         []string{"a.pdf", "b.PNG", "c.txt", "d.bin", "e.docx"},
			wantDocuments: []string{"a.pdf", "c.txt", "e.docx"},
			wantImages:    []string{"b.PNG"},
			wantOther:     []string{"d.bin"},
		},
		{
			name:          "no extension goes to other",
			paths:         []string{"README", "notes"},
			wantDocuments: []string{},
			wantImages:    []string{},
			wantOther:     []string{"README", "notes"},
		},
		{
			name:          "empty input yields empty non-nil buckets",
			paths:         nil,
			wantDocuments: []string{},
			wantImages:    []string{},
			wantOther:     []string{},
		},
		{
			name:          "all image extensions",
			paths:         []string{"x.jpg", "y.jpeg", "z.gif", "w.bmp", "v.tiff"},
			wantDocuments: []string{},
			wantImages:    []string{"x.jpg", "y.jpeg", "z.gif", "w.bmp", "v.tiff"},
			wantOther:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify.ByType(tt.paths)
			assert.Equal(t, tt.wantDocuments, got.Documents)
			assert.Equal(t, tt.wantImages, got.Images)
			assert.Equal(t, tt.wantOther, got.Other)
		})
	}
}
