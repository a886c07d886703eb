package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// ParseLevel parses a LOG_LEVEL value. Empty or unknown values fall back to
// debug in development and info otherwise.
func ParseLevel(s string, isDev bool) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	if isDev {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// ValidLevel reports whether s names a level ParseLevel understands.
// Empty is valid.
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}
