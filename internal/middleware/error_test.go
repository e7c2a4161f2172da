package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorHandler_NoPanic(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	w := httptest.NewRecorder()
	ErrorHandler(zap.NewNop())(handler).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestErrorHandler_PanicRecovery(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.ErrorLevel)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	w := httptest.NewRecorder()
	ErrorHandler(zap.New(core))(handler).ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/expand", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success {
		t.Error("Expected success false")
	}
	if body.Path != "/api/v1/expand" {
		t.Errorf("path = %q", body.Path)
	}
	if body.Message == "boom" {
		t.Error("panic value must not leak to the client")
	}
	if logs.FilterMessage("panic_recovered").Len() != 1 {
		t.Error("expected panic_recovered log entry")
	}
}
