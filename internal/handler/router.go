package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/focustrack/internal/middleware"
)

// HealthChecker はヘルスチェックで疎通確認する依存のインターフェース。
// *sql.DB がこれを満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// MetricsRecorder はハンドラー層が必要とするメトリクス記録の集約インターフェース。
type MetricsRecorder interface {
	middleware.HTTPMetricsRecorder
	LoginMetricsRecorder
	FocusTimeMetricsRecorder
	HabitMetricsRecorder
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	Logger            *slog.Logger

	// 監視
	Metrics        MetricsRecorder
	MetricsHandler http.Handler
	HealthChecker  HealthChecker

	// アプリケーション情報
	AppInfo AppInfo

	// 日付入力の解釈に使用するタイムゾーン。nilの場合はUTC。
	Location *time.Location

	// サービス
	AuthService      AuthServiceInterface
	FocusTimeService FocusTimeServiceInterface
	HabitService     HabitServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics
//
// 認証ルート（/ /auth /auth/callback /healthz /metrics）は
// Bearerトークン検証の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	metaHandler := NewMetaHandler(deps.AppInfo)
	authHandler := NewAuthHandler(deps.AuthService, deps.Metrics)
	focusTimeHandler := NewFocusTimeHandler(deps.FocusTimeService, deps.Metrics, deps.Location)
	habitHandler := NewHabitHandler(deps.HabitService, deps.Metrics, deps.Location)

	// --- 認証不要のルート ---

	r.Get("/", metaHandler.Root)
	r.Get("/healthz", newHealthHandler(deps.HealthChecker))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Bearer検証 → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		mutation := deps.RateLimiter.MutationMiddleware()

		// 習慣管理
		r.Route("/habits", func(r chi.Router) {
			r.Get("/", habitHandler.List)
			r.With(mutation).Post("/", habitHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/metrics", habitHandler.Metrics)
				r.With(mutation).Delete("/", habitHandler.Delete)
				r.With(mutation).Patch("/toggle", habitHandler.Toggle)
			})
		})

		// 集中時間記録
		r.Route("/focus-time", func(r chi.Router) {
			r.Get("/", focusTimeHandler.List)
			r.Get("/metrics", focusTimeHandler.Metrics)
			r.With(mutation).Post("/", focusTimeHandler.Create)
		})
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				middleware.WriteErrorMessage(w, http.StatusServiceUnavailable, "unhealthy")
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
