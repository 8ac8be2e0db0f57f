package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// ParseLogLevelString parses a level name case-insensitively.
// Unknown or empty input returns ok=false and the default level.
//
// Valid levels: debug, info, warn, warning, error.
func ParseLogLevelString(levelStr string, defaultLevel zapcore.Level) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return defaultLevel, false
	}
}
