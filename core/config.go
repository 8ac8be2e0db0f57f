package core

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// OCR engines selectable through OCR_ENGINE.
const (
	OCREngineTesseract = "tesseract"
	OCREngineVision    = "vision"
	OCREngineNone      = "none"
)

// Defaults for the summarization pipeline.
const (
	DefaultBaseURL                 = "https://api.deepseek.com/v1"
	DefaultModel                   = "deepseek-chat"
	DefaultAITimeoutSeconds        = 180
	DefaultMaxCharsPerChunk        = 15000
	DefaultMaxCombinedSummaryChars = 20000
	DefaultChunkDelayMS            = 500
	DefaultHistoryDB               = "pdfsummarizer.db"
	DefaultSettingsFile            = "pdfsummarizer.yaml"
)

// Config holds all configuration values
type Config struct {
	// Credentials. Never persisted.
	DeepSeekAPIKey  string
	GoogleVisionKey string

	// LLM endpoint
	BaseLLMURL string
	Model      string
	AITimeout  time.Duration

	// Pipeline thresholds
	MaxCharsPerChunk        int
	MaxCombinedSummaryChars int
	ChunkDelay              time.Duration

	// OCR
	OCREngine      string
	TesseractPath  string
	PdfImagesPath  string
	OCRMaxImageDim int

	// Local files
	HistoryDB    string
	SettingsFile string
	LogFile      string
	LogLevel     string
	DevMode      bool
}

// LoadConfig loads configuration from environment variables with sensible defaults.
// A missing DEEPSEEK_API_KEY is not an error here: requests fail individually
// with a missing_credential result so history and settings commands still work.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DeepSeekAPIKey:  strings.TrimSpace(os.Getenv("DEEPSEEK_API_KEY")),
		GoogleVisionKey: strings.TrimSpace(os.Getenv("GOOGLE_VISION_API_KEY")),

		BaseLLMURL: GetEnvOrDefault("LLM_BASE_URL", DefaultBaseURL),
		Model:      GetEnvOrDefault("LLM_MODEL", DefaultModel),
		AITimeout:  ParseDurationEnv("AI_TIMEOUT", DefaultAITimeoutSeconds),

		MaxCharsPerChunk:        ParseIntEnv("MAX_CHARS_PER_CHUNK", DefaultMaxCharsPerChunk),
		MaxCombinedSummaryChars: ParseIntEnv("MAX_COMBINED_SUMMARY_CHARS", DefaultMaxCombinedSummaryChars),
		ChunkDelay:              time.Duration(ParseIntEnv("CHUNK_DELAY_MS", DefaultChunkDelayMS)) * time.Millisecond,

		OCREngine:      strings.ToLower(GetEnvOrDefault("OCR_ENGINE", OCREngineTesseract)),
		TesseractPath:  GetEnvOrDefault("TESSERACT_PATH", "tesseract"),
		PdfImagesPath:  GetEnvOrDefault("PDFIMAGES_PATH", "pdfimages"),
		OCRMaxImageDim: ParseIntEnv("OCR_MAX_IMAGE_DIM", 2000),

		HistoryDB:    GetEnvOrDefault("HISTORY_DB", DefaultHistoryDB),
		SettingsFile: GetEnvOrDefault("SETTINGS_FILE", DefaultSettingsFile),
		LogFile:      os.Getenv("LOG_FILE"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		DevMode:      ParseBoolEnv("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. It returns a *ConfigError describing the first problem.
func (c *Config) Validate() error {
	if c.MaxCharsPerChunk <= 0 {
		return ErrInvalidValue("MAX_CHARS_PER_CHUNK", fmt.Sprint(c.MaxCharsPerChunk), "must be a positive integer")
	}
	if c.MaxCombinedSummaryChars <= 0 {
		return ErrInvalidValue("MAX_COMBINED_SUMMARY_CHARS", fmt.Sprint(c.MaxCombinedSummaryChars), "must be a positive integer")
	}
	if c.ChunkDelay < 0 {
		return ErrInvalidValue("CHUNK_DELAY_MS", c.ChunkDelay.String(), "must not be negative")
	}
	if c.AITimeout <= 0 {
		return ErrInvalidValue("AI_TIMEOUT", c.AITimeout.String(), "must be a positive number of seconds")
	}
	if err := ValidateURL(c.BaseLLMURL); err != nil {
		return err
	}
	switch c.OCREngine {
	case OCREngineTesseract, OCREngineNone:
	case OCREngineVision:
		if c.GoogleVisionKey == "" {
			return ErrMissingAuth("vision")
		}
	default:
		return ErrInvalidValue("OCR_ENGINE", c.OCREngine, "must be one of tesseract, vision, none")
	}
	return nil
}

// HasAPIKey reports whether a DeepSeek credential is configured.
func (c *Config) HasAPIKey() bool {
	return c.DeepSeekAPIKey != ""
}

// GetHTTPClient returns an HTTP client for outbound API calls with the given timeout.
func GetHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
