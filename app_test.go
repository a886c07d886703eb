package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestNewAppAuthOnly(t *testing.T) {
	cfg := testConfig(t)
	a, err := newApp(context.Background(), cfg, createTestLoggerMain(t))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(func() { _ = a.mgr.Shutdown() })

	want := []string{"http", "database", "logger"}
	if got := a.mgr.RegisteredHandlers(); !slices.Equal(got, want) {
		t.Errorf("handlers = %v, want %v", got, want)
	}

	h := a.server.Handler

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/signup",
		`{"firstName":"Ana","lastName":"Lima","email":"Ana@Example.com","password":"pw"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body)
	}

	rec = do(http.MethodPost, "/api/signin", `{"email":"ana@example.com","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d, body %s", rec.Code, rec.Body)
	}
	var acct struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &acct); err != nil {
		t.Fatal(err)
	}
	if acct.ID == 0 || acct.Email != "ana@example.com" {
		t.Errorf("account = %+v", acct)
	}

	rec = do(http.MethodGet, "/api/history/1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("history status = %d, body %s", rec.Code, rec.Body)
	}

	rec = do(http.MethodPost, "/api/style/ghibli", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("style status = %d, want 503", rec.Code)
	}

	rec = do(http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Errorf("stats status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestNewAppBadDatabasePath(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBPath = t.TempDir() // a directory cannot be opened as a database

	if _, err := newApp(context.Background(), cfg, createTestLoggerMain(t)); err == nil {
		t.Fatal("expected an error opening a directory as the database")
	}
}

func TestServeStopsOnStopChannel(t *testing.T) {
	cfg := testConfig(t)
	a, err := newApp(context.Background(), cfg, createTestLoggerMain(t))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}

	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- a.serve(stop) }()

	time.Sleep(50 * time.Millisecond)
	close(stop)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after stop was closed")
	}
	if !a.mgr.IsShuttingDown() {
		t.Error("manager should be shut down")
	}
}
