package common_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliancehq/kyc-verifier/internal/common"
)

// clearEnv blanks the variables LoadConfig reads so tests see defaults
// regardless of the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_MODEL", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_TEMPERATURE",
		"OPENAI_TIMEOUT", "OPENAI_MAX_RETRIES", "OPENAI_RETRY_BACKOFF",
		"PIPELINE_STAGE_TIMEOUT", "EXTRACTION_MAX_TEXT_LENGTH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := common.LoadConfig()

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Equal(t, 5000, cfg.Extraction.MaxTextLength)
	assert.Equal(t, time.Duration(0), cfg.Pipeline.StageTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestApplyFile_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  model: gpt-4o
  timeout: 90s
pipeline:
  stage_timeout: 2m
extraction:
  max_text_length: 8000
`), 0o644))

	clearEnv(t)
	cfg := common.LoadConfig()
	require.NoError(t, cfg.ApplyFile(path))

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Pipeline.StageTimeout)
	assert.Equal(t, 8000, cfg.Extraction.MaxTextLength)

	// Keys the file omits keep their environment-derived values.
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
}

func TestApplyFile_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  timeout: soon\n"), 0o644))

	cfg := common.LoadConfig()
	assert.Error(t, cfg.ApplyFile(path))
}

func TestApplyFile_MissingFile(t *testing.T) {
	cfg := common.LoadConfig()
	assert.Error(t, cfg.ApplyFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestValidate(t *testing.T) {
	cfg := common.LoadConfig()
	cfg.Extraction.MaxTextLength = 0
	assert.Error(t, cfg.Validate())

	cfg = common.LoadConfig()
	cfg.LLM.MaxRetries = -1
	assert.Error(t, cfg.Validate())
}
