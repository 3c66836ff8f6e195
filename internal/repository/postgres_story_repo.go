package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/travelbook/internal/model"
)

// PostgresStoryRepo はPostgreSQLを使用した旅行記録リポジトリ。
type PostgresStoryRepo struct {
	db *sql.DB
}

// NewPostgresStoryRepo はPostgresStoryRepoを生成する。
func NewPostgresStoryRepo(db *sql.DB) *PostgresStoryRepo {
	return &PostgresStoryRepo{db: db}
}

const storyColumns = `id, owner_id, title, narrative, visited_locations, image_url, visited_date, is_favourite, created_on, updated_at`

// favouritesFirst は全一覧系クエリ共通の並び順。
// お気に入りを先頭に、その中では作成順（挿入順）を保つ。
const favouritesFirst = ` ORDER BY is_favourite DESC, created_on ASC, id ASC`

// scanStories は複数行をmodel.Storyのスライスに読み取る。
func scanStories(rows *sql.Rows) ([]*model.Story, error) {
	defer rows.Close()

	var stories []*model.Story
	for rows.Next() {
		story := &model.Story{}
		err := rows.Scan(
			&story.ID, &story.OwnerID, &story.Title, &story.Narrative,
			pq.Array(&story.VisitedLocations), &story.ImageURL, &story.VisitedDate,
			&story.IsFavourite, &story.CreatedOn, &story.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, rows.Err()
}

// scanStory は1行をmodel.Storyに読み取る。見つからない場合はnilを返す。
func scanStory(row *sql.Row) (*model.Story, error) {
	story := &model.Story{}
	err := row.Scan(
		&story.ID, &story.OwnerID, &story.Title, &story.Narrative,
		pq.Array(&story.VisitedLocations), &story.ImageURL, &story.VisitedDate,
		&story.IsFavourite, &story.CreatedOn, &story.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return story, nil
}

// Create は旅行記録を作成する。
func (r *PostgresStoryRepo) Create(ctx context.Context, story *model.Story) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stories (id, owner_id, title, narrative, visited_locations, image_url, visited_date, is_favourite, created_on, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		story.ID, story.OwnerID, story.Title, story.Narrative,
		pq.Array(story.VisitedLocations), story.ImageURL, story.VisitedDate,
		story.IsFavourite, story.CreatedOn, story.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert story: %w", err)
	}
	return nil
}

// FindByID は所有者を問わず指定IDの記録を取得する。見つからない場合はnilを返す。
func (r *PostgresStoryRepo) FindByID(ctx context.Context, id string) (*model.Story, error) {
	story, err := scanStory(r.db.QueryRowContext(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find story: %w", err)
	}
	return story, nil
}

// FindByOwnerAndID は所有者スコープで記録を取得する。
// IDが存在しても所有者が一致しない場合はnilを返す。
func (r *PostgresStoryRepo) FindByOwnerAndID(ctx context.Context, ownerID, id string) (*model.Story, error) {
	story, err := scanStory(r.db.QueryRowContext(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find story by owner: %w", err)
	}
	return story, nil
}

// ListByOwner は所有者の全記録をお気に入り優先・作成順で返す。
func (r *PostgresStoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Story, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE owner_id = $1`+favouritesFirst,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return scanStories(rows)
}

// Update は可変フィールドを上書き更新する。所有者スコープで適用される。
func (r *PostgresStoryRepo) Update(ctx context.Context, story *model.Story) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE stories
		 SET title = $3, narrative = $4, visited_locations = $5, image_url = $6,
		     visited_date = $7, is_favourite = $8, updated_at = $9
		 WHERE id = $1 AND owner_id = $2`,
		story.ID, story.OwnerID, story.Title, story.Narrative,
		pq.Array(story.VisitedLocations), story.ImageURL, story.VisitedDate,
		story.IsFavourite, story.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update story: %w", err)
	}
	return nil
}

// Delete は所有者スコープで記録を削除する。
func (r *PostgresStoryRepo) Delete(ctx context.Context, ownerID, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM stories WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

// Search はtitle・narrative・訪問地のいずれかにqueryを部分一致（大文字小文字無視）で
// 含む所有者の記録を返す。
func (r *PostgresStoryRepo) Search(ctx context.Context, ownerID, query string) ([]*model.Story, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM stories
		 WHERE owner_id = $1
		   AND (title ILIKE $2
		        OR narrative ILIKE $2
		        OR EXISTS (SELECT 1 FROM unnest(visited_locations) AS loc WHERE loc ILIKE $2))`+favouritesFirst,
		ownerID, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search stories: %w", err)
	}
	return scanStories(rows)
}

// ListByDateRange はvisited_dateが[start, end]（両端含む）の所有者の記録を返す。
func (r *PostgresStoryRepo) ListByDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]*model.Story, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM stories
		 WHERE owner_id = $1 AND visited_date >= $2 AND visited_date <= $3`+favouritesFirst,
		ownerID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to filter stories by date: %w", err)
	}
	return scanStories(rows)
}

// escapeLike はLIKEパターンのメタ文字をエスケープする。
// 検索語はリテラルとしてのみ一致させる。
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

// compile-time interface check
var _ StoryRepository = (*PostgresStoryRepo)(nil)
