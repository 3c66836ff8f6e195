// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, story, storage, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeEmptyQuery         = "EMPTY_QUERY"
	ErrCodeInvalidDateRange   = "INVALID_DATE_RANGE"
	ErrCodeInvalidStoryID     = "INVALID_STORY_ID"
	ErrCodeStoryNotFound      = "STORY_NOT_FOUND"
	ErrCodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	ErrCodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidIdentity    = "INVALID_IDENTITY"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeUploadFailed       = "UPLOAD_FAILED"
)

// NewMissingFieldError は必須フィールド未指定エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("必須項目が指定されていません: %s", field),
		Category: "validation",
		Action:   "すべての必須項目を入力してください。",
	}
}

// NewInvalidRequestError はリクエスト形式不正エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "正しい形式でリクエストしてください。",
	}
}

// NewEmptyQueryError は検索クエリ未指定エラーを生成する。
func NewEmptyQueryError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyQuery,
		Message:  "検索クエリが指定されていません。",
		Category: "validation",
		Action:   "queryパラメータに検索語を指定してください。",
	}
}

// NewInvalidDateRangeError は日付範囲の指定が不正な場合のエラーを生成する。
func NewInvalidDateRangeError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDateRange,
		Message:  fmt.Sprintf("日付範囲の指定が不正です: %s", reason),
		Category: "validation",
		Action:   "startDateとendDateにはエポックミリ秒の数値を指定してください。",
	}
}

// NewInvalidStoryIDError は記録IDの形式不正エラーを生成する。
func NewInvalidStoryIDError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStoryID,
		Message:  fmt.Sprintf("記録IDの形式が不正です: %s", id),
		Category: "validation",
		Action:   "正しい記録IDを指定してください。",
	}
}

// NewStoryNotFoundError は旅行記録未検出エラーを生成する。
// 他ユーザー所有の記録への操作も存在秘匿のため同一のエラーを返す。
func NewStoryNotFoundError(storyID string) *APIError {
	return &APIError{
		Code:     ErrCodeStoryNotFound,
		Message:  fmt.Sprintf("指定された旅行記録が見つかりません: %s", storyID),
		Category: "story",
		Action:   "記録IDを確認してください。",
	}
}

// NewDuplicateAccountError はメールアドレス重複エラーを生成する。
func NewDuplicateAccountError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateAccount,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewAccountNotFoundError はアカウント未検出エラーを生成する。
func NewAccountNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeAccountNotFound,
		Message:  "アカウントが見つかりません。",
		Category: "auth",
		Action:   "メールアドレスを確認するか、アカウントを作成してください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewInvalidIdentityError は外部IdPのID情報が不完全な場合のエラーを生成する。
func NewInvalidIdentityError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidIdentity,
		Message:  "外部プロバイダーからメールアドレスを取得できませんでした。",
		Category: "auth",
		Action:   "プロバイダー側でメールアドレスの公開を許可してください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewUploadFailedError は画像アップロード失敗エラーを生成する。
func NewUploadFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUploadFailed,
		Message:  fmt.Sprintf("画像のアップロードに失敗しました: %s", reason),
		Category: "storage",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
