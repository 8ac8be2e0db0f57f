package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces sensitive values in log output.
const RedactedPlaceholder = "[REDACTED]"

var sensitivePatterns = []*regexp.Regexp{
	// DeepSeek and OpenAI style keys: sk-..., sk-proj-...
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9_-]{20,})`),
	// Google API keys (Vision OCR)
	regexp.MustCompile(`(AIza[a-zA-Z0-9_-]{35})`),
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),
	// Vision requests carry the key as a query parameter.
	regexp.MustCompile(`([?&]key=)[^&\s"]+`),
	regexp.MustCompile(`(?i)(api_key\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(apikey\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(token\s*[:=]\s*[^\s,;]{8,})`),
}

// sensitiveFieldNames are substrings of field or env var names whose values are never logged.
var sensitiveFieldNames = []string{
	"API_KEY",
	"APIKEY",
	"VISION_KEY",
	"TOKEN",
	"SECRET",
	"PASSWORD",
	"AUTHORIZATION",
}

// RedactSensitiveData replaces credentials found in value.
//
// Example:
//
//	RedactSensitiveData("using key sk-abcdefghijklmnopqrstuv") // "using key [REDACTED]"
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return result
}

// IsSensitiveField reports whether a field name indicates a credential.
func IsSensitiveField(fieldName string) bool {
	upper := strings.ToUpper(strings.ReplaceAll(fieldName, "-", "_"))
	for _, name := range sensitiveFieldNames {
		if strings.Contains(upper, name) {
			return true
		}
	}
	return false
}

// ContainsSensitiveData reports whether value matches any credential pattern.
func ContainsSensitiveData(value string) bool {
	if value == "" {
		return false
	}
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}
