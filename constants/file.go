package constants

import "strings"

// ImageExtensions holds the extensions classified as images.
var ImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"tiff": {},
}

// DocumentExtensions holds the extensions classified as documents.
var DocumentExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"txt":  {},
	"xlsx": {},
	"xls":  {},
	"pptx": {},
}

// fileTypeNames maps extensions to the human-readable type recorded in metadata.
var fileTypeNames = map[string]string{
	"pdf":  "PDF Document",
	"doc":  "Word Document",
	"docx": "Word Document",
	"txt":  "Text File",
	"xlsx": "Excel Spreadsheet",
	"xls":  "Excel Spreadsheet",
	"pptx": "PowerPoint Presentation",
	"jpg":  "Image",
	"jpeg": "Image",
	"png":  "Image",
	"gif":  "Image",
	"bmp":  "Image",
	"tiff": "Image",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FileTypeName returns the human-readable file type for an extension,
// or "Unknown" for anything outside the known set.
func FileTypeName(ext string) string {
	if name, ok := fileTypeNames[NormalizeExt(ext)]; ok {
		return name
	}
	return "Unknown"
}

// IsImageExt reports whether the extension belongs to the image set.
func IsImageExt(ext string) bool {
	_, ok := ImageExtensions[NormalizeExt(ext)]
	return ok
}

// IsDocumentExt reports whether the extension belongs to the document set.
func IsDocumentExt(ext string) bool {
	_, ok := DocumentExtensions[NormalizeExt(ext)]
	return ok
}
