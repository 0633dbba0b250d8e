package content

import (
	"fmt"
	"os"
)

// ExtractText reads a plain text file, truncated to the configured bound.
func (e *Extractor) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return Truncate(string(data), e.cfg.MaxTextLength), nil
}
