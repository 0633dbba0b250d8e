package metadata_test

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliancehq/kyc-verifier/internal/metadata"
)

func TestExtract_TextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statement.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello kyc"), 0o644))

	rec := metadata.NewExtractor(nil).Extract(path)

	assert.Empty(t, rec.Error)
	assert.Equal(t, "statement.txt", rec.FileName)
	assert.Equal(t, path, rec.FilePath)
	assert.Equal(t, int64(9), rec.FileSize)
	assert.Equal(t, ".txt", rec.FileExt)
	assert.Equal(t, "Text File", rec.FileType)
	assert.NotEmpty(t, rec.ModifiedDate)
	assert.Nil(t, rec.Image)
}

func TestExtract_MissingFile(t *testing.T) {
	rec := metadata.NewExtractor(nil).Extract(filepath.Join(t.TempDir(), "nope.pdf"))

	assert.NotEmpty(t, rec.Error)
	assert.Empty(t, rec.FileName)
	assert.Empty(t, rec.FileType)
}

func TestExtract_ImageDimensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "passport.png")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 12, 8))))
	require.NoError(t, f.Close())

	rec := metadata.NewExtractor(nil).Extract(path)

	require.NotNil(t, rec.Image)
	assert.Empty(t, rec.Image.Error)
	assert.Equal(t, "12x8", rec.Image.Dimensions)
	assert.Equal(t, 12, rec.Image.Width)
	assert.Equal(t, 8, rec.Image.Height)
	assert.Equal(t, "png", rec.Image.Format)
	assert.Equal(t, "Image", rec.FileType)
}

func TestExtract_CorruptImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))

	rec := metadata.NewExtractor(nil).Extract(path)

	require.NotNil(t, rec.Image)
	assert.NotEmpty(t, rec.Image.Error)
	// Probe failure degrades the image block only, not the record.
	assert.Empty(t, rec.Error)
	assert.Equal(t, "broken.png", rec.FileName)
}
