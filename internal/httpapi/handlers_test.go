package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// captureHandler records log records for assertion in tests.
type captureHandler struct {
	mu    sync.Mutex
	attrs []map[string]slog.Value
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := make(map[string]slog.Value)
	m["msg"] = slog.StringValue(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.attrs = append(h.attrs, m)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func newTestServer(t *testing.T, check CheckFunc, logger *slog.Logger) *httptest.Server {
	t.Helper()

	srv := NewServer(":0", NewMux(check), logger)
	ts := httptest.NewServer(srv.Handler)

	t.Cleanup(ts.Close)
	return ts
}

func mustGetJSON[T any](t *testing.T, client *http.Client, url string, out *T) *http.Response {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	t.Run("ok without check", func(t *testing.T) {
		ts := newTestServer(t, nil, nil)

		var body map[string]string
		resp := mustGetJSON(t, ts.Client(), ts.URL+"/healthz", &body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d; want 200", resp.StatusCode)
		}
		if body["status"] != "ok" {
			t.Errorf("status field = %q; want ok", body["status"])
		}
	})

	t.Run("ok when check passes", func(t *testing.T) {
		var called atomic.Bool
		ts := newTestServer(t, func(context.Context) error { called.Store(true); return nil }, nil)

		var body map[string]string
		resp := mustGetJSON(t, ts.Client(), ts.URL+"/healthz", &body)
		if resp.StatusCode != http.StatusOK || !called.Load() {
			t.Errorf("status = %d called = %v", resp.StatusCode, called.Load())
		}
	})

	t.Run("503 when check fails", func(t *testing.T) {
		ts := newTestServer(t, func(context.Context) error { return errors.New("db down") }, nil)

		var body map[string]string
		resp := mustGetJSON(t, ts.Client(), ts.URL+"/healthz", &body)
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("status = %d; want 503", resp.StatusCode)
		}
		if body["error"] != http.StatusText(http.StatusServiceUnavailable) {
			t.Errorf("error = %q", body["error"])
		}
	})

	t.Run("POST is not allowed", func(t *testing.T) {
		ts := newTestServer(t, nil, nil)
		resp, err := ts.Client().Post(ts.URL+"/healthz", "application/json", nil)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("status = %d; want 405", resp.StatusCode)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	handler := &captureHandler{}
	logger := slog.New(handler)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	mux.HandleFunc("GET /plain", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	h := requestLogger(logger, mux)

	for _, path := range []string{"/teapot", "/plain"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.attrs) != 2 {
		t.Fatalf("records = %d; want 2", len(handler.attrs))
	}
	tests := []struct {
		path   string
		status int64
	}{
		{"/teapot", http.StatusTeapot},
		{"/plain", http.StatusOK},
	}
	for i, tt := range tests {
		rec := handler.attrs[i]
		if rec["msg"].String() != "http request" {
			t.Errorf("msg = %q", rec["msg"].String())
		}
		if rec["path"].String() != tt.path {
			t.Errorf("path = %q; want %q", rec["path"].String(), tt.path)
		}
		if rec["status"].Int64() != tt.status {
			t.Errorf("status = %d; want %d", rec["status"].Int64(), tt.status)
		}
		if rec["method"].String() != http.MethodGet {
			t.Errorf("method = %q", rec["method"].String())
		}
	}
}
