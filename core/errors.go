package core

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeInvalidURL    = "INVALID_URL"
	ErrCodeMissingAuth   = "MISSING_AUTH"
	ErrCodeInvalidValue  = "INVALID_VALUE"
	ErrCodeInvalidPages  = "INVALID_PAGES"
	ErrCodeMissingFolder = "MISSING_FOLDER"
)

// ErrInvalidURL returns an error for an unusable endpoint URL.
func ErrInvalidURL(raw string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidURL,
		Message: fmt.Sprintf("Invalid LLM_BASE_URL '%s': %s", raw, reason),
		Action:  "Set LLM_BASE_URL to a valid URL (e.g., https://api.deepseek.com/v1)",
	}
}

// ErrMissingAuth returns an error for missing authentication credentials
func ErrMissingAuth(service string) *ConfigError {
	var action string
	switch service {
	case "deepseek":
		action = "Set DEEPSEEK_API_KEY in your .env file or environment"
	case "vision":
		action = "Set GOOGLE_VISION_API_KEY or choose OCR_ENGINE=tesseract"
	default:
		action = fmt.Sprintf("Set the required API key for %s in your .env file", service)
	}
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: fmt.Sprintf("Missing authentication credentials for %s", service),
		Action:  action,
	}
}

// ErrInvalidValue returns an error for an out-of-range setting.
func ErrInvalidValue(name, value, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf("Invalid %s '%s': %s", name, value, reason),
		Action:  fmt.Sprintf("Fix %s in your .env file or environment", name),
	}
}

// ErrMissingFolder returns an error when no PDF folder was given or remembered.
func ErrMissingFolder() *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingFolder,
		Message: "No PDF folder selected",
		Action:  "Pass a folder argument or run once with a folder so it is remembered",
	}
}

// ValidateURL checks that raw is an absolute http(s) URL.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrInvalidURL(raw, "empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL(raw, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL(raw, "scheme must be http or https")
	}
	if u.Host == "" {
		return ErrInvalidURL(raw, "missing host")
	}
	return nil
}

// IsConfigError checks if an error is a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
