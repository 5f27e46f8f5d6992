package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/focustrack/internal/middleware"
	"github.com/hitoshi/focustrack/internal/model"
)

// --- モック定義 ---

// mockTokenVerifier はmiddleware.TokenVerifierのモック実装。
type mockTokenVerifier struct {
	verifyTokenFn func(token string) (string, error)
}

func (m *mockTokenVerifier) VerifyToken(token string) (string, error) {
	if m.verifyTokenFn != nil {
		return m.verifyTokenFn(token)
	}
	return "", errors.New("invalid token")
}

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func newTestRouter(t *testing.T, verifier middleware.TokenVerifier) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		TokenVerifier:     verifier,
		RateLimiter:       rl,
		CORSAllowedOrigin: "http://localhost:3000",
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		HealthChecker:     &mockHealthChecker{},
		AppInfo: AppInfo{
			Name:        "focustrack",
			Description: "focus time and habit tracking API",
			Version:     "1.0.0",
		},
		AuthService: &mockAuthService{
			loginURLFn: func() string { return "https://github.com/login/oauth/authorize?client_id=abc" },
		},
		FocusTimeService: &mockFocusTimeService{},
		HabitService: &mockHabitService{
			listFn: func(ctx context.Context, userID string) ([]model.HabitWithState, error) {
				if userID != "user-123" {
					t.Errorf("userID = %q, want %q", userID, "user-123")
				}
				return []model.HabitWithState{}, nil
			},
		},
	})
}

func TestRouter_RootEndpoint_Public(t *testing.T) {
	router := newTestRouter(t, &mockTokenVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]string
	decodeBody(t, w, &body)
	if body["name"] != "focustrack" {
		t.Errorf("name = %q, want %q", body["name"], "focustrack")
	}
	if body["version"] != "1.0.0" {
		t.Errorf("version = %q, want %q", body["version"], "1.0.0")
	}
}

func TestRouter_AuthEndpoint_Public(t *testing.T) {
	router := newTestRouter(t, &mockTokenVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]string
	decodeBody(t, w, &body)
	if body["redirectUrl"] == "" {
		t.Error("redirectUrl should not be empty")
	}
}

func TestRouter_HealthzEndpoint_Public(t *testing.T) {
	router := newTestRouter(t, &mockTokenVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_ProtectedRoutes_RequireBearerToken(t *testing.T) {
	router := newTestRouter(t, &mockTokenVerifier{})

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/habits"},
		{http.MethodPost, "/habits"},
		{http.MethodGet, "/habits/habit-1/metrics?date=2024-01-01"},
		{http.MethodDelete, "/habits/habit-1"},
		{http.MethodPatch, "/habits/habit-1/toggle"},
		{http.MethodPost, "/focus-time"},
		{http.MethodGet, "/focus-time?date=2024-01-01"},
		{http.MethodGet, "/focus-time/metrics?date=2024-01-01"},
	}

	for _, route := range protected {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRouter_ProtectedRoute_ValidToken(t *testing.T) {
	verifier := &mockTokenVerifier{
		verifyTokenFn: func(token string) (string, error) {
			if token != "valid-token" {
				return "", errors.New("invalid token")
			}
			return "user-123", nil
		},
	}
	router := newTestRouter(t, verifier)

	req := httptest.NewRequest(http.MethodGet, "/habits", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestRouter_HealthzEndpoint_DBDown_Returns503(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	router := NewRouter(&RouterDeps{
		TokenVerifier:     &mockTokenVerifier{},
		RateLimiter:       rl,
		CORSAllowedOrigin: "http://localhost:3000",
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		HealthChecker: &mockHealthChecker{
			pingFn: func(ctx context.Context) error {
				return errors.New("connection refused")
			},
		},
		AuthService:      &mockAuthService{},
		FocusTimeService: &mockFocusTimeService{},
		HabitService:     &mockHabitService{},
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, &mockTokenVerifier{})

	req := httptest.NewRequest(http.MethodOptions, "/habits", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
}

// 認証済みの日別一覧リクエストがミドルウェアチェーンを通過して
// サービスまで到達することを確認する。
func TestRouter_FocusTimeList_ReachesService(t *testing.T) {
	called := false
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	router := NewRouter(&RouterDeps{
		TokenVerifier: &mockTokenVerifier{
			verifyTokenFn: func(token string) (string, error) { return "user-123", nil },
		},
		RateLimiter:       rl,
		CORSAllowedOrigin: "http://localhost:3000",
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		AuthService:       &mockAuthService{},
		HabitService:      &mockHabitService{},
		FocusTimeService: &mockFocusTimeService{
			listForDayFn: func(ctx context.Context, userID string, date time.Time) ([]*model.FocusTime, error) {
				called = true
				return nil, nil
			},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/focus-time?date=2024-01-15", nil)
	req.Header.Set("Authorization", "Bearer any")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if !called {
		t.Error("ListForDay should be called")
	}
}
