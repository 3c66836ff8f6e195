package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// IdentityClaim は外部IdPで検証済みのユーザー情報を表す。
// Emailが紐付けの唯一のキーとなる。
type IdentityClaim struct {
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
	Provider       string // "google" 等
}

// IdentityVerifier は外部IdPのアクセストークンを検証済みクレームに解決するインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type IdentityVerifier interface {
	// VerifyAccessToken はアクセストークンをIdPに照会し、ユーザー情報を取得する。
	VerifyAccessToken(ctx context.Context, accessToken string) (*IdentityClaim, error)
}

// GoogleVerifierConfig はGoogle IdPアダプタの設定。
type GoogleVerifierConfig struct {
	// テスト用にオーバーライド可能なURL
	UserInfoURL string
}

// GoogleVerifier はGoogleのuserinfoエンドポイントでアクセストークンを検証する。
type GoogleVerifier struct {
	config GoogleVerifierConfig
}

// NewGoogleVerifier はGoogleVerifierを生成する。
func NewGoogleVerifier(config GoogleVerifierConfig) *GoogleVerifier {
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultGoogleUserInfoURL
	}
	return &GoogleVerifier{config: config}
}

// googleUserInfo はGoogleのユーザー情報エンドポイントのレスポンス。
type googleUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// VerifyAccessToken はアクセストークンでGoogleのユーザー情報を取得する。
// トークンが無効な場合はGoogle側が非200を返すため、そのままエラーとする。
func (v *GoogleVerifier) VerifyAccessToken(ctx context.Context, accessToken string) (*IdentityClaim, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user info response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo googleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info response: %w", err)
	}

	if userInfo.Sub == "" {
		return nil, fmt.Errorf("empty sub in user info response")
	}

	return &IdentityClaim{
		ProviderUserID: userInfo.Sub,
		Email:          userInfo.Email,
		Name:           userInfo.Name,
		AvatarURL:      userInfo.Picture,
		Provider:       "google",
	}, nil
}

// compile-time interface check
var _ IdentityVerifier = (*GoogleVerifier)(nil)
