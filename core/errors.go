package core

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration problem the operator can fix.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // What to change to resolve it
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeInvalidValue    = "INVALID_VALUE"
	ErrCodeOutOfRange      = "OUT_OF_RANGE"
	ErrCodeUnknownStyle    = "UNKNOWN_STYLE"
	ErrCodeDataDirUnusable = "DATA_DIR_UNUSABLE"
)

// ErrInvalidValue returns an error for a value that could not be interpreted.
func ErrInvalidValue(varName, value, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf("Invalid %s '%s': %s", varName, value, reason),
		Action:  fmt.Sprintf("Fix %s in your .env file or environment", varName),
	}
}

// ErrOutOfRange returns an error for a numeric setting outside its bounds.
func ErrOutOfRange(varName string, value, min, max int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeOutOfRange,
		Message: fmt.Sprintf("%s=%d is out of range", varName, value),
		Action:  fmt.Sprintf("Set %s between %d and %d", varName, min, max),
	}
}

// ErrUnknownPreloadStyle returns an error for a PRELOAD_STYLES entry that names no style.
func ErrUnknownPreloadStyle(style string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeUnknownStyle,
		Message: fmt.Sprintf("PRELOAD_STYLES names unknown style '%s'", style),
		Action:  "Use a comma separated subset of: pixar, cartoon, comic, ghibli",
	}
}

// ErrDataDirUnusable returns an error when the data directory cannot be created.
func ErrDataDirUnusable(dir string, cause error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeDataDirUnusable,
		Message: fmt.Sprintf("Cannot use data directory %s: %v", dir, cause),
		Action:  "Set DATA_DIR to a writable location",
	}
}

// IsConfigError checks if an error is (or wraps) a ConfigError and returns it if so
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
