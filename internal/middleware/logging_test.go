package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
		wantViolation int
	}{
		{"GET request", "GET", "/api/v1/users/alice/tasks/occurrences", http.StatusOK, 0},
		{"POST request", "POST", "/api/v1/expand", http.StatusCreated, 0},
		{"404 request", "GET", "/notfound", http.StatusNotFound, 0},
		{"rate limited", "GET", "/api/v1/expand", http.StatusTooManyRequests, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			core, logs := observer.New(zap.InfoLevel)

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})
			w := httptest.NewRecorder()
			Logging(zap.New(core))(handler).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.handlerStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.handlerStatus)
			}
			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("expected one http_request entry, got %d", len(entries))
			}
			if got := entries[0].ContextMap()["status_code"]; got != int64(tt.handlerStatus) {
				t.Errorf("logged status_code = %v, want %d", got, tt.handlerStatus)
			}
			if got := logs.FilterMessage("rate_limit_violation").Len(); got != tt.wantViolation {
				t.Errorf("rate_limit_violation entries = %d, want %d", got, tt.wantViolation)
			}
		})
	}
}

func TestLoggingResponseWriter(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.InfoLevel)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("test"))
	})
	w := httptest.NewRecorder()
	Logging(zap.New(core))(handler).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	fields := logs.All()[0].ContextMap()
	if fields["status_code"] != int64(http.StatusCreated) {
		t.Errorf("status_code = %v, want first written status", fields["status_code"])
	}
	if fields["bytes"] != int64(4) {
		t.Errorf("bytes = %v, want 4", fields["bytes"])
	}
}

func TestLoggingRouteTemplate(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.InfoLevel)

	r := mux.NewRouter()
	r.Use(Logging(zap.New(core)))
	r.HandleFunc("/users/{owner}/tasks/{id}/occurrences", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/users/bob/tasks/42/occurrences", nil))

	if got := logs.All()[0].ContextMap()["route"]; got != "/users/{owner}/tasks/{id}/occurrences" {
		t.Errorf("route = %v", got)
	}
}
