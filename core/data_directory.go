package core

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the application name used in data directory paths.
const AppName = "DreamInk"

// GetDataDirectory returns the platform-specific data directory path.
//
// Paths by platform:
//   - Windows: %APPDATA%/DreamInk
//   - Linux/macOS: ~/.dreamink
//
// Does NOT create the directory - callers should use EnsureDir for that.
func GetDataDirectory() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return AppName
			}
			return filepath.Join(home, "AppData", "Roaming", AppName)
		}
		return filepath.Join(appData, AppName)
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return ".dreamink"
		}
		return filepath.Join(home, ".dreamink")
	}
}

// EnsureDir creates dir (owner-only permissions) if it doesn't exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return ErrDataDirUnusable(dir, err)
	}
	return nil
}
