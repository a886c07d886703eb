// Package logging builds the server's zap logger: console and rotated file
// output, secret redaction, and the field groups used for transform logs.
package logging

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects output format, level and destination.
type Config struct {
	// Development switches the console to coloured text and the default
	// level to debug.
	Development bool
	// Level overrides the default level ("debug", "info", "warn", "error").
	Level string
	// FilePath is the JSON log file. Empty logs to the console only.
	FilePath string
	// Rotation configures lumberjack for FilePath.
	Rotation FileWriterConfig
}

// Logger owns the zap logger and its file writer.
//
//	logger, err := logging.New(logging.Config{Development: true, FilePath: "dreamink.log"})
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//	logger.Info("server started", zap.Int("port", 3001))
type Logger struct {
	zap   *zap.Logger
	level zap.AtomicLevel
	file  *FileWriter
	cfg   Config
}

// New builds a Logger from cfg. Every entry passes through the redacting
// core, including those written through Zap().
func New(cfg Config) (*Logger, error) {
	return newLogger(cfg, zapcore.Lock(os.Stdout))
}

func newLogger(cfg Config, console zapcore.WriteSyncer) (*Logger, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level, cfg.Development))

	var file *FileWriter
	if cfg.FilePath != "" {
		fw, err := NewFileWriter(cfg.FilePath, cfg.Rotation)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = fw
	}

	var fileSink zapcore.WriteSyncer
	if file != nil {
		fileSink = file
	}
	core := NewRedactingCore(NewMultiCore(level, console, fileSink, cfg.Development))

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	return &Logger{
		zap:   zap.New(core, opts...),
		level: level,
		file:  file,
		cfg:   cfg,
	}, nil
}

// Zap returns the underlying logger handed to the rest of the server.
func (l *Logger) Zap() *zap.Logger { return l.zap }

// Named returns a child zap logger for a subsystem, e.g. "router" or "db".
func (l *Logger) Named(name string) *zap.Logger { return l.zap.Named(name) }

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zap.Debug(msg, fields...) }

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...zap.Field) { l.zap.Info(msg, fields...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...zap.Field) { l.zap.Warn(msg, fields...) }

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zap.Error(msg, fields...) }

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level zapcore.Level) { l.level.SetLevel(level) }

// Level returns the current level.
func (l *Logger) Level() zapcore.Level { return l.level.Level() }

// IsDevelopment reports whether the logger was built for development.
func (l *Logger) IsDevelopment() bool { return l.cfg.Development }

// FilePath returns the log file path, or "" for console-only logging.
func (l *Logger) FilePath() string { return l.cfg.FilePath }

// StdLog returns a standard library logger that writes at error level,
// for http.Server.ErrorLog.
func (l *Logger) StdLog() *log.Logger {
	std, err := zap.NewStdLogAt(l.zap, zapcore.ErrorLevel)
	if err != nil {
		return zap.NewStdLog(l.zap)
	}
	return std
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
