// Package classify sorts input paths into coarse categories by extension.
package classify

import (
	"path/filepath"

	"github.com/compliancehq/kyc-verifier/constants"
)

// Categorized groups file paths by category.
type Categorized struct {
	Documents []string `json:"documents"`
	Images    []string `json:"images"`
	Other     []string `json:"other"`
}

// ByType categorizes file paths into documents, images, and other.
func ByType(paths []string) Categorized {
	c := Categorized{
		Documents: []string{},
		Images:    []string{},
		Other:     []string{},
	}
	for _, path := range paths {
		ext := filepath.Ext(path)
		switch {
		case constants.IsImageExt(ext):
			c.Images = append(c.Images, path)
		case constants.IsDocumentExt(ext):
			c.Documents = append(c.Documents, path)
		default:
			c.Other = append(c.Other, path)
		}
	}
	return c
}
