// Package model はドメインモデルを定義する。
package model

import "time"

// PlaceholderImageURL は写真未指定時に使用する既定の画像パス。
// 編集時に写真が省略された場合も直前の写真ではなくこのパスへ戻る。
const PlaceholderImageURL = "/assets/placeholder.png"

// Story は1件の旅行記録を表す。
// OwnerIDは作成時に確定し、以後変更されない。
type Story struct {
	ID               string
	OwnerID          string
	Title            string
	Narrative        string
	VisitedLocations []string // 入力順を保持する。重複は許容する。
	ImageURL         string
	VisitedDate      time.Time // 日付精度。エポックミリ秒から変換して保存する。
	IsFavourite      bool
	CreatedOn        time.Time
	UpdatedAt        time.Time
}
