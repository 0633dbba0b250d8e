package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Config holds all application configuration
type Config struct {
	LLM        LLMConfig
	Pipeline   PipelineConfig
	Extraction ExtractionConfig
}

// LLMConfig holds analysis-engine configuration
type LLMConfig struct {
	Model        string
	APIKey       string
	BaseURL      string
	Temperature  float32
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// PipelineConfig holds verification-pipeline configuration
type PipelineConfig struct {
	// StageTimeout bounds each engine-backed stage; 0 disables the bound.
	StageTimeout time.Duration
}

// ExtractionConfig holds document-content extraction configuration
type ExtractionConfig struct {
	// MaxTextLength bounds text_content carried into the pipeline, in runes.
	MaxTextLength int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:       getEnv("OPENAI_API_KEY", ""),
			BaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature:  getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:      getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			MaxRetries:   getEnvAsInt("OPENAI_MAX_RETRIES", 2),
			RetryBackoff: getEnvAsDuration("OPENAI_RETRY_BACKOFF", 2*time.Second),
		},
		Pipeline: PipelineConfig{
			StageTimeout: getEnvAsDuration("PIPELINE_STAGE_TIMEOUT", 0),
		},
		Extraction: ExtractionConfig{
			MaxTextLength: getEnvAsInt("EXTRACTION_MAX_TEXT_LENGTH", 5000),
		},
	}
}

// fileConfig is the YAML shape of an optional config file. Zero values are
// treated as unset and leave the environment-derived value alone.
type fileConfig struct {
	LLM struct {
		Model        string  `yaml:"model"`
		APIKey       string  `yaml:"api_key"`
		BaseURL      string  `yaml:"base_url"`
		Temperature  float32 `yaml:"temperature"`
		Timeout      string  `yaml:"timeout"`
		MaxRetries   int     `yaml:"max_retries"`
		RetryBackoff string  `yaml:"retry_backoff"`
	} `yaml:"llm"`
	Pipeline struct {
		StageTimeout string `yaml:"stage_timeout"`
	} `yaml:"pipeline"`
	Extraction struct {
		MaxTextLength int `yaml:"max_text_length"`
	} `yaml:"extraction"`
}

// ApplyFile overlays values from a YAML config file onto the config.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.LLM.Model != "" {
		c.LLM.Model = fc.LLM.Model
	}
	if fc.LLM.APIKey != "" {
		c.LLM.APIKey = fc.LLM.APIKey
	}
	if fc.LLM.BaseURL != "" {
		c.LLM.BaseURL = fc.LLM.BaseURL
	}
	if fc.LLM.Temperature != 0 {
		c.LLM.Temperature = fc.LLM.Temperature
	}
	if fc.LLM.MaxRetries != 0 {
		c.LLM.MaxRetries = fc.LLM.MaxRetries
	}
	if fc.Extraction.MaxTextLength != 0 {
		c.Extraction.MaxTextLength = fc.Extraction.MaxTextLength
	}
	if err := overlayDuration(&c.LLM.Timeout, fc.LLM.Timeout); err != nil {
		return fmt.Errorf("llm.timeout: %w", err)
	}
	if err := overlayDuration(&c.LLM.RetryBackoff, fc.LLM.RetryBackoff); err != nil {
		return fmt.Errorf("llm.retry_backoff: %w", err)
	}
	if err := overlayDuration(&c.Pipeline.StageTimeout, fc.Pipeline.StageTimeout); err != nil {
		return fmt.Errorf("pipeline.stage_timeout: %w", err)
	}
	return nil
}

func overlayDuration(dst *time.Duration, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Extraction.MaxTextLength <= 0 {
		return NewAppError("CONFIG_ERROR", "extraction max text length must be positive", ErrInvalidInput)
	}
	if c.LLM.MaxRetries < 0 {
		return NewAppError("CONFIG_ERROR", "llm max retries must not be negative", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
