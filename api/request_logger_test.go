package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("hello")) })
	mux.HandleFunc("/boom", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) })
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })
	h := middleware.RequestID(RequestLogger(logger, "/health")(mux))

	for _, path := range []string{"/ok", "/boom", "/missing", "/health"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.FilterMessage("HTTP request").All()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3 (skip path excluded)", len(entries))
	}

	want := []struct {
		level  zapcore.Level
		status int64
	}{
		{zapcore.InfoLevel, 200},
		{zapcore.ErrorLevel, 500},
		{zapcore.WarnLevel, 404},
	}
	for i, e := range entries {
		fields := e.ContextMap()
		if e.Level != want[i].level || fields["status"] != want[i].status {
			t.Errorf("entry %d: level %v status %v, want %v %d", i, e.Level, fields["status"], want[i].level, want[i].status)
		}
		if fields["request_id"] == "" {
			t.Errorf("entry %d has no request id", i)
		}
	}
	if entries[0].ContextMap()["bytes"] != int64(5) {
		t.Errorf("bytes = %v, want 5", entries[0].ContextMap()["bytes"])
	}
}
