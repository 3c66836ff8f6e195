// Package model はドメインモデルを定義する。
package model

import "time"

// Account はサービス利用アカウントを表す。
// パスワード登録とGoogle OAuthの両方で作成されうる。
// emailは全アカウントを通じて一意であり、外部IdPとの紐付けキーを兼ねる。
type Account struct {
	ID              string
	FullName        string
	Email           string
	PasswordHash    string // argon2idエンコード済みハッシュ。平文は保持しない。
	GoogleID        string // 外部IdP（Google）のsubject。未連携の場合は空。
	ProfileImageURL string
	EmailVerified   bool // OAuth経由で作成されたアカウントはtrue
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Summary はAPIレスポンス用のアカウント概要を返す。
// パスワードハッシュは含めない。
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:              a.ID,
		FullName:        a.FullName,
		Email:           a.Email,
		ProfileImageURL: a.ProfileImageURL,
		EmailVerified:   a.EmailVerified,
		CreatedAt:       a.CreatedAt,
	}
}

// AccountSummary は認証レスポンスに含めるアカウント情報。
type AccountSummary struct {
	ID              string    `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	EmailVerified   bool      `json:"emailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
}
