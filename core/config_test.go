package core

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.Port != 3001 {
		t.Errorf("Port = %d, want 3001", cfg.Port)
	}
	if cfg.SDMaxConcurrent != 1 {
		t.Errorf("SDMaxConcurrent = %d, want 1", cfg.SDMaxConcurrent)
	}
	if !cfg.StyleNetSerialize {
		t.Error("StyleNetSerialize should default to true")
	}
	if cfg.HistoryAsync {
		t.Error("HistoryAsync should default to false")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if want := filepath.Join(dir, "dreamink.db"); cfg.DBPath != want {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, want)
	}
	if cfg.RequestTimeout() != 300*time.Second {
		t.Errorf("RequestTimeout() = %v, want 300s", cfg.RequestTimeout())
	}
	if cfg.MaxUploadBytes() != 20<<20 {
		t.Errorf("MaxUploadBytes() = %d, want %d", cfg.MaxUploadBytes(), 20<<20)
	}
}

func TestParseConfig_PreloadStylesNormalized(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("PRELOAD_STYLES", " Pixar ,GHIBLI")

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if len(cfg.PreloadStyles) != 2 || cfg.PreloadStyles[0] != "pixar" || cfg.PreloadStyles[1] != "ghibli" {
		t.Errorf("PreloadStyles = %v, want [pixar ghibli]", cfg.PreloadStyles)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		wantCode string
	}{
		{"port too high", "PORT", "70000", ErrCodeOutOfRange},
		{"zero concurrency", "SD_MAX_CONCURRENT", "0", ErrCodeOutOfRange},
		{"weak bcrypt", "BCRYPT_COST", "4", ErrCodeOutOfRange},
		{"bad device", "SD_DEVICE", "tpu", ErrCodeInvalidValue},
		{"unknown preload", "PRELOAD_STYLES", "oil", ErrCodeUnknownStyle},
		{"negative retention", "HISTORY_RETENTION_DAYS", "-1", ErrCodeInvalidValue},
		{"bad log level", "LOG_LEVEL", "verbose", ErrCodeInvalidValue},
		{"malformed port", "PORT", "abc", ErrCodeInvalidValue},
		{"malformed bool", "AUTH_ONLY", "maybe", ErrCodeInvalidValue},
		{"short checksum", "PIXAR_MODEL_SHA256", "abc123", ErrCodeInvalidValue},
		{"non-hex checksum", "COMIC_MODEL_SHA256", strings.Repeat("z", 64), ErrCodeInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATA_DIR", t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := ParseConfig()
			if err == nil {
				t.Fatal("ParseConfig() expected error")
			}
			if code := GetErrorCode(err); code != tt.wantCode {
				t.Errorf("GetErrorCode() = %q, want %q (err: %v)", code, tt.wantCode, err)
			}
		})
	}
}

func TestParseConfig_MalformedValueIsConfigError(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("PORT", "abc")

	_, err := ParseConfig()
	if got := ExitCodeFor(err); got != ExitCodeConfig {
		t.Fatalf("ExitCodeFor(%v) = %d, want %d", err, got, ExitCodeConfig)
	}
	if msg := err.Error(); !strings.Contains(msg, "PORT") || !strings.Contains(msg, "'abc'") {
		t.Errorf("error %q should name PORT and the bad value", msg)
	}
}

func TestParseConfig_SDDeviceNormalized(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("SD_DEVICE", " CPU ")

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.SDDevice != "cpu" {
		t.Errorf("SDDevice = %q, want cpu", cfg.SDDevice)
	}
}

func TestConfig_ModelPath(t *testing.T) {
	cfg := &Config{ModelDir: "/models", ComicModelPath: "/custom/comic.safetensors"}

	tests := []struct {
		style string
		want  string
	}{
		{"pixar", filepath.Join("/models", "classic_anim_diffusion.safetensors")},
		{"cartoon", filepath.Join("/models", "classic_anim_diffusion.safetensors")},
		{"comic", "/custom/comic.safetensors"},
		{"ghibli", filepath.Join("/models", "AnimeGANv3_large_Ghibli_c1_e299.onnx")},
		{"oil", ""},
	}
	for _, tt := range tests {
		if got := cfg.ModelPath(tt.style); got != tt.want {
			t.Errorf("ModelPath(%q) = %q, want %q", tt.style, got, tt.want)
		}
	}
}

func TestParseConfig_ModelChecksum(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	sum := strings.Repeat("AB", 32)
	t.Setenv("CARTOON_MODEL_SHA256", " "+sum+" ")

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	tests := []struct {
		style string
		want  string
	}{
		{"cartoon", strings.ToLower(sum)},
		{"pixar", ""},
		{"comic", ""},
		{"ghibli", ""},
	}
	for _, tt := range tests {
		if got := cfg.ModelChecksum(tt.style); got != tt.want {
			t.Errorf("ModelChecksum(%q) = %q, want %q", tt.style, got, tt.want)
		}
	}
}
