package core

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetDataDirectory_ReturnsNonEmpty(t *testing.T) {
	if dir := GetDataDirectory(); dir == "" {
		t.Error("GetDataDirectory() returned empty string")
	}
}

func TestGetDataDirectory_PlatformAppropriate(t *testing.T) {
	dir := GetDataDirectory()

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(dir, AppName) {
			t.Errorf("Windows path %q should contain %q", dir, AppName)
		}
	default:
		if !strings.HasSuffix(dir, ".dreamink") {
			t.Errorf("Unix path %q should end with .dreamink", dir)
		}
	}
}

func TestEnsureDir_CreatesNested(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	// Second call is a no-op.
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() second call error = %v", err)
	}
}
