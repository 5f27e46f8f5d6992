package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoggingMiddleware_RecordsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"ft-1"}`))
	})
	handler := NewLoggingMiddleware(logger)(next)

	req := httptest.NewRequest(http.MethodPost, "/focus-time", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-123"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("ログのJSONデコードに失敗: %v", err)
	}

	if entry["msg"] != "http_request" {
		t.Errorf("msg = %v, want %q", entry["msg"], "http_request")
	}
	if entry["method"] != http.MethodPost {
		t.Errorf("method = %v, want %q", entry["method"], http.MethodPost)
	}
	if entry["path"] != "/focus-time" {
		t.Errorf("path = %v, want %q", entry["path"], "/focus-time")
	}
	if entry["status"] != float64(http.StatusCreated) {
		t.Errorf("status = %v, want %d", entry["status"], http.StatusCreated)
	}
	if entry["bytes"] != float64(len(`{"id":"ft-1"}`)) {
		t.Errorf("bytes = %v, want %d", entry["bytes"], len(`{"id":"ft-1"}`))
	}
	if entry["user_id"] != "user-123" {
		t.Errorf("user_id = %v, want %q", entry["user_id"], "user-123")
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("duration_msフィールドがログに含まれていない")
	}
}

func TestLoggingMiddleware_ServerError_LogsAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := NewLoggingMiddleware(logger)(next)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/habits", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("ログのJSONデコードに失敗: %v", err)
	}
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want %q", entry["level"], "ERROR")
	}
}
