package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/focustrack/internal/middleware"
)

// --- テストヘルパー ---

// withUserID はテスト用にユーザーIDをコンテキストに注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// decodeBody はレスポンスボディを任意の型にデコードするヘルパー。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// parseIssueList は422レスポンスのmessageフィールドをパースするヘルパー。
func parseIssueList(t *testing.T, w *httptest.ResponseRecorder) []map[string]string {
	t.Helper()
	var body struct {
		Message []map[string]string `json:"message"`
	}
	decodeBody(t, w, &body)
	return body.Message
}
