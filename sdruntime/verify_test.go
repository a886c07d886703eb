package sdruntime

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeModel(t *testing.T, name string, content []byte) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	sum := sha256.Sum256(content)
	return path, hex.EncodeToString(sum[:])
}

func TestCalculateChecksum(t *testing.T) {
	path, want := writeModel(t, "test.txt", []byte("Hello, World!"))

	got, err := CalculateChecksum(path)
	if err != nil {
		t.Fatalf("CalculateChecksum returned error: %v", err)
	}
	if got != want {
		t.Errorf("Checksum mismatch: expected %s, got %s", want, got)
	}
}

func TestCalculateChecksum_NonExistentFile(t *testing.T) {
	_, err := CalculateChecksum("/nonexistent/path/to/file.txt")
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got: %v", err)
	}
}

func TestVerifyModelChecksum(t *testing.T) {
	path, sum := writeModel(t, "dreamshaper_8.safetensors", []byte("weights"))

	tests := []struct {
		name     string
		path     string
		expected string
		wantErr  error
	}{
		{"matching checksum", path, sum, nil},
		{"uppercase checksum", path, strings.ToUpper(sum), nil},
		{"no checksum configured", path, "", nil},
		{"mismatch", path, strings.Repeat("0", 64), ErrModelCorrupted},
		{"missing file", filepath.Join(t.TempDir(), "nope.safetensors"), "", ErrModelNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyModelChecksum(tt.path, tt.expected)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("VerifyModelChecksum() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyModelChecksum() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsModelHelpers(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), ErrModelCorrupted)
	if !IsModelCorrupted(wrapped) {
		t.Error("IsModelCorrupted should match wrapped ErrModelCorrupted")
	}
	if IsModelNotFound(wrapped) {
		t.Error("IsModelNotFound should not match ErrModelCorrupted")
	}
	if !IsModelNotFound(ErrModelNotFound) {
		t.Error("IsModelNotFound should match ErrModelNotFound")
	}
}
