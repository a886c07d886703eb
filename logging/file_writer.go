package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults.
const (
	DefaultMaxSizeMB  = 50
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 14
)

// FileWriterConfig controls log rotation. Zero fields take the defaults.
type FileWriterConfig struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	LocalTime  bool
}

// DefaultFileWriterConfig returns the rotation settings used by the server.
func DefaultFileWriterConfig() FileWriterConfig {
	return FileWriterConfig{
		MaxSizeMB:  DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAgeDays: DefaultMaxAgeDays,
		Compress:   true,
	}
}

// FileWriter is a rotating log file. It implements zapcore.WriteSyncer.
type FileWriter struct {
	lj *lumberjack.Logger
}

// NewFileWriter creates the parent directory of path and returns a rotating
// writer for it. The file itself is opened on first write.
func NewFileWriter(path string, cfg FileWriterConfig) (*FileWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	cfg = applyFileWriterDefaults(cfg)
	return &FileWriter{lj: &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  cfg.LocalTime,
	}}, nil
}

func (w *FileWriter) Write(p []byte) (int, error) { return w.lj.Write(p) }

// Sync is a no-op; lumberjack writes straight to the file.
func (w *FileWriter) Sync() error { return nil }

// Rotate closes the current file and starts a new one.
func (w *FileWriter) Rotate() error { return w.lj.Rotate() }

// Close closes the current file.
func (w *FileWriter) Close() error { return w.lj.Close() }

// Path returns the active log file path.
func (w *FileWriter) Path() string { return w.lj.Filename }

func applyFileWriterDefaults(cfg FileWriterConfig) FileWriterConfig {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = DefaultMaxSizeMB
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = DefaultMaxBackups
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = DefaultMaxAgeDays
	}
	return cfg
}
