// Package auth はOAuth認証フローとセッショントークンの発行・検証を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdP（GitHub, Google等）に対応するための抽象化。
type OAuthProvider interface {
	// LoginURL はOAuth認証URLを生成する。
	LoginURL() string
	// ExchangeCode は認可コードをトークンに交換し、ユーザープロフィールを取得する。
	ExchangeCode(ctx context.Context, code string) (*ProviderUser, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	TokenSecret []byte        // セッショントークンの署名鍵
	TokenExpiry time.Duration // セッショントークンの有効期間
}

// LoginResult はログイン完了時にクライアントへ返す情報。
type LoginResult struct {
	ID        string
	Name      string
	AvatarURL string
	Token     string
}

// Service は認証に関するビジネスロジックを提供する。
// ユーザーはこのシステムには永続化せず、プロバイダーのIDを
// 署名付きトークンに埋め込むだけのステートレス構成をとる。
type Service struct {
	oauth  OAuthProvider
	config ServiceConfig
}

// NewService はServiceを生成する。
func NewService(oauth OAuthProvider, config ServiceConfig) *Service {
	return &Service{
		oauth:  oauth,
		config: config,
	}
}

// LoginURL はOAuth認証URLを生成する。
func (s *Service) LoginURL() string {
	return s.oauth.LoginURL()
}

// CompleteLogin はOAuthコールバックを処理する。
// 認可コードをアクセストークンに交換し、プロバイダーのプロフィールを取得し、
// ユーザーIDを埋め込んだ署名付きセッショントークンを発行する。
// プロバイダーが報告した失敗はmodel.UpstreamErrorとしてそのまま伝播する。
func (s *Service) CompleteLogin(ctx context.Context, code string) (*LoginResult, error) {
	user, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	token, err := IssueToken(user.ID, s.config.TokenSecret, s.config.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return &LoginResult{
		ID:        user.ID,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Token:     token,
	}, nil
}

// VerifyToken はセッショントークンを検証し、ユーザーIDを返す。
// 全ての保護ルートの前段ミドルウェアから呼び出される。
func (s *Service) VerifyToken(token string) (string, error) {
	return VerifyToken(token, s.config.TokenSecret)
}
