package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/focustrack/internal/auth"
	"github.com/hitoshi/focustrack/internal/middleware"
	"github.com/hitoshi/focustrack/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// LoginURL はOAuth認証URLを生成する。
	LoginURL() string
	// CompleteLogin は認可コードを交換しセッショントークンを発行する。
	CompleteLogin(ctx context.Context, code string) (*auth.LoginResult, error)
}

// LoginMetricsRecorder はログイン結果のメトリクス記録インターフェース。
type LoginMetricsRecorder interface {
	RecordLogin(success bool)
}

// AuthHandler はOAuth認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics LoginMetricsRecorder
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilを許容する。
func NewAuthHandler(service AuthServiceInterface, metrics LoginMetricsRecorder) *AuthHandler {
	return &AuthHandler{
		service: service,
		metrics: metrics,
	}
}

// loginURLResponse はOAuth認証開始レスポンス。
type loginURLResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

// loginResultResponse はログイン完了レスポンス。
type loginResultResponse struct {
	ID        string `json:"id"`
	AvatarURL string `json:"avatarUrl"`
	Name      string `json:"name"`
	Token     string `json:"token"`
}

// Login はOAuthフローを開始するためのリダイレクトURLを返す。
// リダイレクト自体はクライアントが行う。
// GET /auth
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, loginURLResponse{
		RedirectURL: h.service.LoginURL(),
	})
}

// Callback はOAuthコールバックを処理する。
// プロバイダーが報告した失敗は生のペイロードのまま400で返す。
// それ以外の失敗は詳細を隠して500で返す。
// GET /auth/callback?code=xxx
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	result, err := h.service.CompleteLogin(r.Context(), code)
	if err != nil {
		h.recordLogin(false)

		var upstream *model.UpstreamError
		if errors.As(err, &upstream) {
			middleware.WriteUpstreamError(w, upstream)
			return
		}

		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	h.recordLogin(true)

	writeJSON(w, http.StatusOK, loginResultResponse{
		ID:        result.ID,
		AvatarURL: result.AvatarURL,
		Name:      result.Name,
		Token:     result.Token,
	})
}

func (h *AuthHandler) recordLogin(success bool) {
	if h.metrics != nil {
		h.metrics.RecordLogin(success)
	}
}
