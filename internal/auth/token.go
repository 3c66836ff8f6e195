package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer は署名付きベアラートークンの発行と検証を行う。
// 署名鍵はプロセス全体の設定として起動時に1回注入され、実行中に変更されない。
// 失効リストは持たない。漏洩時は有効期限切れを待つか鍵のローテーションで対処する。
type TokenIssuer struct {
	secret []byte
	maxAge time.Duration
}

// NewTokenIssuer はTokenIssuerを生成する。
// maxAgeSecondsはトークンの有効期間（秒）を指定する。
func NewTokenIssuer(secret string, maxAgeSeconds int) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		maxAge: time.Duration(maxAgeSeconds) * time.Second,
	}
}

// Issue はアカウントIDと絶対有効期限を埋め込んだHS256署名トークンを発行する。
func (t *TokenIssuer) Issue(accountID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.maxAge)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、埋め込まれたアカウントIDを返す。
// 署名不正・形式不正・期限切れはすべてエラーとして扱う。
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.secret, nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token claims")
	}

	return claims.Subject, nil
}
