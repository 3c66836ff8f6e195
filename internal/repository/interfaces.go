// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/travelbook/internal/model"
)

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
// アカウント作成の競合時にPostgresの一意インデックス違反から変換される。
var ErrDuplicateEmail = errors.New("email already registered")

// AccountRepository はアカウントデータの永続化インターフェース。
type AccountRepository interface {
	// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Account, error)

	// FindByEmail はメールアドレスでアカウントを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Account, error)

	// Create はアカウントを作成する。
	// メールアドレスが既に登録されている場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, account *model.Account) error

	// Update はアカウントの可変フィールド（氏名、GoogleID、プロフィール画像等）を更新する。
	Update(ctx context.Context, account *model.Account) error
}

// StoryRepository は旅行記録データの永続化インターフェース。
// 一覧・検索・期間フィルタはすべてお気に入り優先の順序で返す。
type StoryRepository interface {
	// Create は旅行記録を作成する。
	Create(ctx context.Context, story *model.Story) error

	// FindByID は所有者を問わず指定IDの記録を取得する。公開共有の読み取り用。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Story, error)

	// FindByOwnerAndID は所有者スコープで記録を取得する。
	// IDが存在しても所有者が一致しない場合はnilを返す。
	FindByOwnerAndID(ctx context.Context, ownerID, id string) (*model.Story, error)

	// ListByOwner は所有者の全記録をお気に入り優先・作成順で返す。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Story, error)

	// Update は可変フィールドを上書き更新する。所有者スコープで適用される。
	Update(ctx context.Context, story *model.Story) error

	// Delete は所有者スコープで記録を削除する。
	Delete(ctx context.Context, ownerID, id string) error

	// Search はtitle・narrative・訪問地のいずれかにqueryを部分一致（大文字小文字無視）で
	// 含む所有者の記録を返す。
	Search(ctx context.Context, ownerID, query string) ([]*model.Story, error)

	// ListByDateRange はvisited_dateが[start, end]（両端含む）の所有者の記録を返す。
	ListByDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]*model.Story, error)
}
