package sdruntime

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// VerifyModelChecksum validates a model file's SHA256 checksum against
// expected (lowercase hex). An empty expected value only checks the file exists.
//
// Returns:
//   - nil if checksum matches
//   - ErrModelNotFound if file doesn't exist
//   - ErrModelCorrupted if checksum mismatch
//   - wrapped error for other I/O failures
func VerifyModelChecksum(modelPath, expected string) error {
	if _, err := os.Stat(modelPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return fmt.Errorf("failed to access model file: %w", err)
	}
	if expected == "" {
		return nil
	}

	actual, err := CalculateChecksum(modelPath)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}
	if actual != strings.ToLower(expected) {
		return fmt.Errorf("%w: %s: expected %s, got %s", ErrModelCorrupted, filepath.Base(modelPath), expected, actual)
	}
	return nil
}

// CalculateChecksum computes the SHA256 hash of a file.
// It streams the file in chunks to avoid loading the entire file into memory,
// making it suitable for large model files (several GB).
//
// Returns the lowercase hex-encoded SHA256 hash string.
func CalculateChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrModelNotFound, filePath)
		}
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()

	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// IsModelCorrupted checks if an error indicates model corruption.
// This is a convenience function for error handling.
func IsModelCorrupted(err error) bool {
	return errors.Is(err, ErrModelCorrupted)
}

// IsModelNotFound checks if an error indicates a missing model file.
// This is a convenience function for error handling.
func IsModelNotFound(err error) bool {
	return errors.Is(err, ErrModelNotFound)
}
