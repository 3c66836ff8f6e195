// Package story は旅行記録のCRUD・検索・期間フィルタのドメインロジックを提供する。
package story

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/travelbook/internal/model"
	"github.com/hitoshi/travelbook/internal/repository"
)

// Sanitizer はユーザー入力テキストのサニタイズインターフェース。
// security.ContentSanitizerの部分集合として定義する。
type Sanitizer interface {
	Sanitize(raw string) string
}

// ImageCleaner は参照されなくなった写真のベストエフォート削除インターフェース。
// storage.Serviceの部分集合として定義する。
type ImageCleaner interface {
	Cleanup(ctx context.Context, photoURL string)
}

// Metrics は記録作成のメトリクス記録インターフェース。
type Metrics interface {
	RecordStoryCreated()
}

// Input は作成・編集リクエストの入力フィールド。
type Input struct {
	Title             string
	Narrative         string
	VisitedLocations  []string
	ImageURL          string // 編集時は省略可。省略時はプレースホルダーに戻る。
	VisitedDateMillis *int64 // エポックミリ秒
}

// Service は旅行記録のサービス層。
// すべての読み書きは所有者スコープで行い、所有者不一致は存在秘匿のため
// 未検出と同一のエラーとして報告する。
type Service struct {
	repo      repository.StoryRepository
	sanitizer Sanitizer
	images    ImageCleaner
	metrics   Metrics
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(repo repository.StoryRepository, sanitizer Sanitizer, images ImageCleaner, metrics Metrics) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		images:    images,
		metrics:   metrics,
	}
}

// Create は新規の旅行記録を作成する。
// title・narrative・visitedLocations・imageUrl・visitedDateはすべて必須。
// isFavouriteはfalse、createdOnは現在時刻で初期化される。
func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*model.Story, error) {
	if err := s.validate(in, true); err != nil {
		return nil, err
	}

	now := time.Now()
	story := &model.Story{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		Title:            s.sanitizer.Sanitize(in.Title),
		Narrative:        s.sanitizer.Sanitize(in.Narrative),
		VisitedLocations: s.sanitizeLocations(in.VisitedLocations),
		ImageURL:         in.ImageURL,
		VisitedDate:      dateFromMillis(*in.VisitedDateMillis),
		IsFavourite:      false,
		CreatedOn:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordStoryCreated()
	}

	return story, nil
}

// List は所有者の全記録をお気に入り優先で返す。
func (s *Service) List(ctx context.Context, ownerID string) ([]*model.Story, error) {
	stories, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

// Update は記録の可変フィールドを置き換える。
// imageUrlのみ省略可能で、省略時は直前の写真ではなくプレースホルダーに戻る。
// 所有者不一致・未検出はStoryNotFoundを返す。
func (s *Service) Update(ctx context.Context, ownerID, storyID string, in Input) (*model.Story, error) {
	if err := s.validate(in, false); err != nil {
		return nil, err
	}

	story, err := s.ownedStory(ctx, ownerID, storyID)
	if err != nil {
		return nil, err
	}

	imageURL := in.ImageURL
	if imageURL == "" {
		imageURL = model.PlaceholderImageURL
	}

	story.Title = s.sanitizer.Sanitize(in.Title)
	story.Narrative = s.sanitizer.Sanitize(in.Narrative)
	story.VisitedLocations = s.sanitizeLocations(in.VisitedLocations)
	story.ImageURL = imageURL
	story.VisitedDate = dateFromMillis(*in.VisitedDateMillis)
	story.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to update story: %w", err)
	}

	return story, nil
}

// SetFavourite はお気に入りフラグを設定する。同値への設定は冪等。
func (s *Service) SetFavourite(ctx context.Context, ownerID, storyID string, isFavourite bool) (*model.Story, error) {
	story, err := s.ownedStory(ctx, ownerID, storyID)
	if err != nil {
		return nil, err
	}

	story.IsFavourite = isFavourite
	story.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to update story: %w", err)
	}

	return story, nil
}

// Delete は記録を削除し、参照していた写真のベストエフォート削除を起動する。
// 写真の削除失敗は記録の削除を失敗させない。
func (s *Service) Delete(ctx context.Context, ownerID, storyID string) error {
	story, err := s.ownedStory(ctx, ownerID, storyID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, ownerID, storyID); err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}

	if s.images != nil {
		s.images.Cleanup(ctx, story.ImageURL)
	}

	return nil
}

// Search はtitle・narrative・訪問地への部分一致（大文字小文字無視）で記録を検索する。
// 空のクエリはバリデーションエラー。
func (s *Service) Search(ctx context.Context, ownerID, query string) ([]*model.Story, error) {
	if strings.TrimSpace(query) == "" {
		return nil, model.NewEmptyQueryError()
	}

	stories, err := s.repo.Search(ctx, ownerID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search stories: %w", err)
	}
	return stories, nil
}

// FilterByDateRange はvisitedDateが[start, end]（両端含む）の記録を返す。
// 境界はエポックミリ秒の文字列で受け取り、数値として解釈できない場合は
// 不正な日付と比較せずバリデーションエラーとして返す。
func (s *Service) FilterByDateRange(ctx context.Context, ownerID, startMillis, endMillis string) ([]*model.Story, error) {
	start, err := parseMillis(startMillis)
	if err != nil {
		return nil, model.NewInvalidDateRangeError("startDate")
	}
	end, err := parseMillis(endMillis)
	if err != nil {
		return nil, model.NewInvalidDateRangeError("endDate")
	}

	stories, err := s.repo.ListByDateRange(ctx, ownerID, dateFromMillis(start), dateFromMillis(end))
	if err != nil {
		return nil, fmt.Errorf("failed to filter stories: %w", err)
	}
	return stories, nil
}

// GetPublic は所有者を問わず記録を1件取得する。共有リンクの読み取り用。
func (s *Service) GetPublic(ctx context.Context, storyID string) (*model.Story, error) {
	story, err := s.repo.FindByID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to find story: %w", err)
	}
	if story == nil {
		return nil, model.NewStoryNotFoundError(storyID)
	}
	return story, nil
}

// ownedStory は所有者スコープで記録を1件取得する。
// 未検出・所有者不一致に加え、UUIDとして解釈できないIDも存在しないIDとして
// StoryNotFoundを返す。不正なIDはデータベースに到達させない。
func (s *Service) ownedStory(ctx context.Context, ownerID, storyID string) (*model.Story, error) {
	if _, err := uuid.Parse(storyID); err != nil {
		return nil, model.NewStoryNotFoundError(storyID)
	}

	story, err := s.repo.FindByOwnerAndID(ctx, ownerID, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to find story: %w", err)
	}
	if story == nil {
		return nil, model.NewStoryNotFoundError(storyID)
	}
	return story, nil
}

// validate は入力フィールドの必須チェックを行う。
// requireImageがfalseの場合、imageUrlの省略を許す（編集時）。
func (s *Service) validate(in Input, requireImage bool) error {
	if strings.TrimSpace(in.Title) == "" {
		return model.NewMissingFieldError("title")
	}
	if strings.TrimSpace(in.Narrative) == "" {
		return model.NewMissingFieldError("story")
	}
	if len(in.VisitedLocations) == 0 {
		return model.NewMissingFieldError("visitedLocation")
	}
	if requireImage && strings.TrimSpace(in.ImageURL) == "" {
		return model.NewMissingFieldError("imageUrl")
	}
	if in.VisitedDateMillis == nil {
		return model.NewMissingFieldError("visitedDate")
	}
	return nil
}

// sanitizeLocations は各訪問地名をサニタイズする。入力順と重複は保持する。
func (s *Service) sanitizeLocations(locations []string) []string {
	out := make([]string, len(locations))
	for i, loc := range locations {
		out[i] = s.sanitizer.Sanitize(loc)
	}
	return out
}

// dateFromMillis はエポックミリ秒をUTCの日付（時刻切り捨て）に変換する。
func dateFromMillis(millis int64) time.Time {
	t := time.UnixMilli(millis).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseMillis はエポックミリ秒の文字列を解析する。
func parseMillis(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
