package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces redacted values.
const RedactedPlaceholder = "[REDACTED]"

// Values that are secrets wherever they appear.
var sensitivePatterns = []*regexp.Regexp{
	// bcrypt hashes
	regexp.MustCompile(`\$2[abxy]\$\d{2}\$[./A-Za-z0-9]{53}`),
	// bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/=-]{16,}`),
	// API keys and access tokens
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9_-]{20,})`),
	regexp.MustCompile(`(?i)(hf_[a-zA-Z0-9]{30,})`),
	// password=..., "token": "..." and similar pairs
	regexp.MustCompile(`(?i)"?(password|secret|token|api_?key)"?\s*[:=]\s*"?[^\s,;"&}]+"?`),
}

// Field names whose values are always redacted.
var sensitiveFieldNames = []string{
	"PASSWORD",
	"PASSWD",
	"SECRET",
	"TOKEN",
	"API_KEY",
	"APIKEY",
	"AUTHORIZATION",
	"COOKIE",
}

// RedactSensitiveData replaces every secret-looking substring of value.
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	for _, pattern := range sensitivePatterns {
		value = pattern.ReplaceAllString(value, RedactedPlaceholder)
	}
	return value
}

// IsSensitiveField reports whether a field or header name holds a secret,
// e.g. "password", "password_hash" or "Authorization".
func IsSensitiveField(name string) bool {
	upper := strings.ToUpper(name)
	for _, s := range sensitiveFieldNames {
		if strings.Contains(upper, s) {
			return true
		}
	}
	return false
}

// ContainsSensitiveData reports whether value matches any secret pattern.
func ContainsSensitiveData(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}
