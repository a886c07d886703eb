package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferedLogger(t *testing.T, cfg Config) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := newLogger(cfg, zapcore.AddSync(&buf))
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l, &buf
}

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogger_ProductionJSON(t *testing.T) {
	l, buf := newBufferedLogger(t, Config{})

	l.Debug("hidden")
	l.Named("router").Info("dispatch", zap.String("style", "oil"))

	lines := decodeLines(t, buf.Bytes())
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (debug filtered at info)", len(lines))
	}
	entry := lines[0]
	if entry[FieldMessage] != "dispatch" || entry["style"] != "oil" {
		t.Errorf("entry = %v", entry)
	}
	if entry[FieldSource] != "router" {
		t.Errorf("logger name = %v, want router", entry[FieldSource])
	}
	if entry[FieldLevel] != "info" {
		t.Errorf("level = %v", entry[FieldLevel])
	}
}

func TestLogger_DevelopmentDefaultsToDebug(t *testing.T) {
	l, buf := newBufferedLogger(t, Config{Development: true})
	if l.Level() != zapcore.DebugLevel {
		t.Errorf("Level() = %v, want debug", l.Level())
	}
	l.Debug("state transition")
	if !strings.Contains(buf.String(), "state transition") {
		t.Errorf("debug entry missing from console: %q", buf.String())
	}
	if !l.IsDevelopment() {
		t.Error("IsDevelopment() = false")
	}
}

func TestLogger_LevelOverrideAndSetLevel(t *testing.T) {
	l, buf := newBufferedLogger(t, Config{Development: true, Level: "warn"})
	l.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info written at warn level: %q", buf.String())
	}
	l.SetLevel(zapcore.InfoLevel)
	l.Info("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Error("SetLevel did not take effect")
	}
}

func TestLogger_Redaction(t *testing.T) {
	l, buf := newBufferedLogger(t, Config{})
	hash := "$2a$12$" + strings.Repeat("a", 53)

	l.Zap().With(zap.String("authorization", "Bearer abc")).Info("signin",
		zap.String("password", "hunter2"),
		zap.String("detail", "stored "+hash),
		zap.Error(errors.New("login failed: password=hunter2")),
		zap.String("email", "ana@example.com"),
	)

	out := buf.String()
	for _, secret := range []string{"hunter2", hash, "Bearer abc"} {
		if strings.Contains(out, secret) {
			t.Errorf("secret %q leaked: %s", secret, out)
		}
	}
	entry := decodeLines(t, buf.Bytes())[0]
	if entry["password"] != RedactedPlaceholder || entry["authorization"] != RedactedPlaceholder {
		t.Errorf("sensitive fields not redacted: %v", entry)
	}
	if entry["email"] != "ana@example.com" {
		t.Errorf("email = %v, want untouched", entry["email"])
	}
}

func TestLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dreamink.log")
	l, _ := newBufferedLogger(t, Config{FilePath: path})

	l.Info("server started", zap.Int("port", 3001))
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := decodeLines(t, data)
	if len(lines) != 1 || lines[0]["port"] != float64(3001) {
		t.Errorf("file lines = %v", lines)
	}
	if l.FilePath() != path {
		t.Errorf("FilePath() = %q", l.FilePath())
	}
}

func TestLogger_StdLog(t *testing.T) {
	l, buf := newBufferedLogger(t, Config{})
	l.StdLog().Print("http: TLS handshake error")

	lines := decodeLines(t, buf.Bytes())
	if len(lines) != 1 || lines[0][FieldLevel] != "error" {
		t.Errorf("lines = %v, want one error entry", lines)
	}
}

func TestLogger_NilSync(t *testing.T) {
	var l *Logger
	if err := l.Sync(); err != nil {
		t.Errorf("nil Sync() = %v", err)
	}
}
