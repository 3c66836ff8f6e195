// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// accountIDContextKey はリクエストコンテキストにアカウントIDを格納するためのキー。
var accountIDContextKey = contextKey("account_id")

// TokenVerifier はベアラートークンの検証に必要なインターフェース。
// auth.TokenIssuerの部分集合として定義する。
type TokenVerifier interface {
	Verify(token string) (accountID string, err error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 認証済みアカウントIDをリクエストコンテキストに注入する。
// ヘッダー欠落・形式不正・署名不正・期限切れはいずれも401 Unauthorizedを返す。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取り出す
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w)
				return
			}

			// 2. トークンの署名と有効期限を検証
			accountID, err := verifier.Verify(token)
			if err != nil {
				slog.Debug("token verification failed",
					slog.String("error", err.Error()),
				)
				writeUnauthorized(w)
				return
			}

			// 3. 認証済みアカウントIDをコンテキストに注入
			ctx := context.WithValue(r.Context(), accountIDContextKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダーからBearerトークンを抽出する。
// スキーム名の大文字小文字は区別しない。
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// AccountIDFromContext はリクエストコンテキストからアカウントIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func AccountIDFromContext(ctx context.Context) (string, error) {
	accountID, ok := ctx.Value(accountIDContextKey).(string)
	if !ok || accountID == "" {
		return "", fmt.Errorf("account ID not found in context")
	}
	return accountID, nil
}

// ContextWithAccountID はコンテキストにアカウントIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDContextKey, accountID)
}
