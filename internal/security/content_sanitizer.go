// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は旅行記録のタイトル・本文・訪問地名といった
// プレーンテキストフィールドからHTMLを除去し、XSS攻撃などの
// セキュリティリスクからユーザーを保護する。
// bluemondayライブラリの厳格ポリシーを使用し、すべてのタグを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はテキストコンテンツのサニタイズ機能のインターフェースを定義する。
// 旅行記録の保存前（作成・編集）に使用される。
type ContentSanitizerService interface {
	// Sanitize は入力からすべてのHTMLタグを除去したプレーンテキストを返す。
	// script, img, a等のタグはタグのみ除去され、内包テキストは保持される。
	// HTMLエンティティは元の文字に復元される（記録はプレーンテキストとして保存するため）。
	// 前後の空白は取り除かれる。
	// 空文字列の入力には空文字列を返す。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicy（許可タグなし）を使用するため、入力に含まれるすべての
// HTMLタグとon*イベント属性が除去される。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からすべてのHTMLタグを除去したプレーンテキストを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	stripped := s.policy.Sanitize(raw)
	// StrictPolicyは残存テキストをHTMLエスケープして返すが、
	// 保存先はプレーンテキストフィールドなのでエンティティを復元する。
	return strings.TrimSpace(html.UnescapeString(stripped))
}
