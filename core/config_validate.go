package core

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/KK-2k06/DreamInk/logging"
)

// Bounds for numeric settings.
const (
	MinPort          = 1
	MaxPort          = 65535
	MinSDConcurrency = 1
	MaxSDConcurrency = 16
	MinBcryptCost    = 10
	MaxBcryptCost    = 31
)

var preloadable = map[string]bool{
	"pixar":   true,
	"cartoon": true,
	"comic":   true,
	"ghibli":  true,
}

var sdDevices = map[string]bool{
	"auto": true,
	"cuda": true,
	"cpu":  true,
}

// ValidateConfig checks ranges and enumerations. It does not touch the filesystem;
// see the validation package for startup checks against disk.
func ValidateConfig(cfg *Config) error {
	if cfg.Port < MinPort || cfg.Port > MaxPort {
		return ErrOutOfRange("PORT", cfg.Port, MinPort, MaxPort)
	}
	if cfg.SDMaxConcurrent < MinSDConcurrency || cfg.SDMaxConcurrent > MaxSDConcurrency {
		return ErrOutOfRange("SD_MAX_CONCURRENT", cfg.SDMaxConcurrent, MinSDConcurrency, MaxSDConcurrency)
	}
	if cfg.BcryptCost < MinBcryptCost || cfg.BcryptCost > MaxBcryptCost {
		return ErrOutOfRange("BCRYPT_COST", cfg.BcryptCost, MinBcryptCost, MaxBcryptCost)
	}
	if cfg.RequestTimeoutSecs <= 0 {
		return ErrInvalidValue("REQUEST_TIMEOUT_SECONDS", fmt.Sprint(cfg.RequestTimeoutSecs), "must be positive")
	}
	if cfg.ShutdownTimeoutSec <= 0 {
		return ErrInvalidValue("SHUTDOWN_TIMEOUT_SECONDS", fmt.Sprint(cfg.ShutdownTimeoutSec), "must be positive")
	}
	if cfg.MaxUploadMB <= 0 {
		return ErrInvalidValue("MAX_UPLOAD_MB", fmt.Sprint(cfg.MaxUploadMB), "must be positive")
	}
	if cfg.HistoryRetentionDays < 0 {
		return ErrInvalidValue("HISTORY_RETENTION_DAYS", fmt.Sprint(cfg.HistoryRetentionDays), "must not be negative")
	}
	if cfg.SigninMaxAttempts <= 0 {
		return ErrInvalidValue("SIGNIN_MAX_ATTEMPTS", fmt.Sprint(cfg.SigninMaxAttempts), "must be positive")
	}
	if !sdDevices[strings.ToLower(cfg.SDDevice)] {
		return ErrInvalidValue("SD_DEVICE", cfg.SDDevice, "expected auto, cuda or cpu")
	}
	for name, sum := range map[string]string{
		"PIXAR_MODEL_SHA256":   cfg.PixarModelSHA256,
		"CARTOON_MODEL_SHA256": cfg.CartoonModelSHA256,
		"COMIC_MODEL_SHA256":   cfg.ComicModelSHA256,
	} {
		if sum != "" && !validSHA256(sum) {
			return ErrInvalidValue(name, sum, "expected 64 hex characters")
		}
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		return ErrInvalidValue("LOG_LEVEL", cfg.LogLevel, "expected debug, info, warn or error")
	}
	for _, s := range cfg.PreloadStyles {
		if s == "" {
			continue
		}
		if !preloadable[s] {
			return ErrUnknownPreloadStyle(s)
		}
	}
	return nil
}

func validSHA256(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
