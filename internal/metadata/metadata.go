// Package metadata reads file statistics and image properties for input files.
package metadata

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	// Registered decoders for image dimension probing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/compliancehq/kyc-verifier/constants"
)

// Record is the per-file metadata captured before pipeline execution.
type Record struct {
	FileName     string     `json:"file_name,omitempty"`
	FilePath     string     `json:"file_path"`
	FileSize     int64      `json:"file_size,omitempty"`
	FileSizeMB   float64    `json:"file_size_mb,omitempty"`
	FileExt      string     `json:"file_extension,omitempty"`
	CreatedDate  string     `json:"created_date,omitempty"`
	ModifiedDate string     `json:"modified_date,omitempty"`
	FileType     string     `json:"file_type,omitempty"`
	Image        *ImageInfo `json:"image_metadata,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// ImageInfo holds probed image properties.
type ImageInfo struct {
	Dimensions string `json:"dimensions,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Format     string `json:"format,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Extractor reads file metadata. Failures produce error-marker records, never errors.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract builds a metadata record for path. A missing or unreadable file
// yields a record carrying only the path and an error marker.
func (e *Extractor) Extract(path string) Record {
	info, err := os.Stat(path)
	if err != nil {
		e.logger.Warn("metadata.stat_failed", "path", path, "error", err)
		return Record{
			FilePath: path,
			Error:    fmt.Sprintf("failed to extract metadata: %v", err),
		}
	}

	ext := filepath.Ext(path)
	rec := Record{
		FileName:     filepath.Base(path),
		FilePath:     path,
		FileSize:     info.Size(),
		FileSizeMB:   roundMB(info.Size()),
		FileExt:      ext,
		CreatedDate:  info.ModTime().Format(time.RFC3339),
		ModifiedDate: info.ModTime().Format(time.RFC3339),
		FileType:     constants.FileTypeName(ext),
	}

	if constants.IsImageExt(ext) {
		rec.Image = e.probeImage(path)
	}
	return rec
}

func (e *Extractor) probeImage(path string) *ImageInfo {
	f, err := os.Open(path)
	if err != nil {
		return &ImageInfo{Error: fmt.Sprintf("could not read image metadata: %v", err)}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("metadata.image_close_failed", "path", path, "error", cerr)
		}
	}()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		e.logger.Warn("metadata.image_probe_failed", "path", path, "error", err)
		return &ImageInfo{Error: fmt.Sprintf("could not read image metadata: %v", err)}
	}
	return &ImageInfo{
		Dimensions: fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		Width:      cfg.Width,
		Height:     cfg.Height,
		Format:     format,
	}
}

func roundMB(size int64) float64 {
	return math.Round(float64(size)/(1024*1024)*100) / 100
}
