package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hitoshi/focustrack/internal/model"
)

const (
	defaultGitHubAuthorizeURL = "https://github.com/login/oauth/authorize"
	defaultGitHubTokenURL     = "https://github.com/login/oauth/access_token"
	defaultGitHubUserURL      = "https://api.github.com/user"
)

// GitHubOAuthConfig はGitHub OAuthプロバイダーの設定。
type GitHubOAuthConfig struct {
	ClientID     string
	ClientSecret string

	// テスト用にオーバーライド可能なURL
	AuthorizeURL string
	TokenURL     string
	UserURL      string
}

// GitHubOAuthProvider はGitHub OAuth 2.0による認証を提供する。
type GitHubOAuthProvider struct {
	config GitHubOAuthConfig
}

// NewGitHubOAuthProvider はGitHubOAuthProviderを生成する。
func NewGitHubOAuthProvider(config GitHubOAuthConfig) *GitHubOAuthProvider {
	if config.AuthorizeURL == "" {
		config.AuthorizeURL = defaultGitHubAuthorizeURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultGitHubTokenURL
	}
	if config.UserURL == "" {
		config.UserURL = defaultGitHubUserURL
	}
	return &GitHubOAuthProvider{config: config}
}

// LoginURL はGitHub OAuthの認証URLを生成する。
func (p *GitHubOAuthProvider) LoginURL() string {
	params := url.Values{
		"client_id": {p.config.ClientID},
	}
	return p.config.AuthorizeURL + "?" + params.Encode()
}

// githubTokenResponse はGitHubのトークンエンドポイントのレスポンス。
// GitHubはエラー時もHTTP 200でerrorフィールドを含むボディを返すことがある。
type githubTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
}

// githubUser はGitHubのユーザーエンドポイントのレスポンス。
type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// ProviderUser はプロバイダーから取得したユーザープロフィール。
type ProviderUser struct {
	ID        string
	Name      string
	AvatarURL string
}

// ExchangeCode は認可コードをアクセストークンに交換し、ユーザープロフィールを取得する。
// プロバイダーがエラーを報告した場合はmodel.UpstreamErrorを返す
// （生のペイロードをそのまま保持し、呼び出し側が400として返す）。
func (p *GitHubOAuthProvider) ExchangeCode(ctx context.Context, code string) (*ProviderUser, error) {
	accessToken, err := p.exchangeToken(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := p.fetchUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &ProviderUser{
		ID:        strconv.FormatInt(user.ID, 10),
		Name:      name,
		AvatarURL: user.AvatarURL,
	}, nil
}

// exchangeToken は認可コードをアクセストークンに交換する。
func (p *GitHubOAuthProvider) exchangeToken(ctx context.Context, code string) (string, error) {
	data := url.Values{
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &model.UpstreamError{StatusCode: resp.StatusCode, Payload: json.RawMessage(body)}
	}

	var tokenResp githubTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	// GitHubは不正な認可コードでも200を返すため、errorフィールドで判定する
	if tokenResp.Error != "" {
		return "", &model.UpstreamError{StatusCode: resp.StatusCode, Payload: json.RawMessage(body)}
	}

	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}

	return tokenResp.AccessToken, nil
}

// fetchUser はアクセストークンでGitHubのユーザープロフィールを取得する。
func (p *GitHubOAuthProvider) fetchUser(ctx context.Context, accessToken string) (*githubUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &model.UpstreamError{StatusCode: resp.StatusCode, Payload: json.RawMessage(body)}
	}

	var user githubUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}

	if user.ID == 0 {
		return nil, fmt.Errorf("empty id in user response")
	}

	return &user, nil
}

// compile-time interface check
var _ OAuthProvider = (*GitHubOAuthProvider)(nil)
