package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/travelbook/internal/middleware"
	"github.com/hitoshi/travelbook/internal/model"
	"github.com/hitoshi/travelbook/internal/story"
)

// StoryServiceInterface は旅行記録ハンドラーが必要とするサービスインターフェース。
type StoryServiceInterface interface {
	Create(ctx context.Context, ownerID string, in story.Input) (*model.Story, error)
	List(ctx context.Context, ownerID string) ([]*model.Story, error)
	Update(ctx context.Context, ownerID, storyID string, in story.Input) (*model.Story, error)
	SetFavourite(ctx context.Context, ownerID, storyID string, isFavourite bool) (*model.Story, error)
	Delete(ctx context.Context, ownerID, storyID string) error
	Search(ctx context.Context, ownerID, query string) ([]*model.Story, error)
	FilterByDateRange(ctx context.Context, ownerID, startMillis, endMillis string) ([]*model.Story, error)
	GetPublic(ctx context.Context, storyID string) (*model.Story, error)
}

// StoryHandler は旅行記録のHTTPハンドラー。
type StoryHandler struct {
	service StoryServiceInterface
}

// NewStoryHandler はStoryHandlerを生成する。
func NewStoryHandler(service StoryServiceInterface) *StoryHandler {
	return &StoryHandler{service: service}
}

// storyRequest は記録の作成・編集リクエストのボディ。
// visitedDateはエポックミリ秒。編集時はimageUrlのみ省略可。
type storyRequest struct {
	Title           string   `json:"title"`
	Story           string   `json:"story"`
	VisitedLocation []string `json:"visitedLocation"`
	ImageURL        string   `json:"imageUrl"`
	VisitedDate     *int64   `json:"visitedDate"`
}

// favouriteRequest はお気に入り更新リクエストのボディ。
type favouriteRequest struct {
	IsFavourite bool `json:"isFavourite"`
}

// storyResponse は1件の記録のAPIレスポンス。
type storyResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Story           string   `json:"story"`
	VisitedLocation []string `json:"visitedLocation"`
	ImageURL        string   `json:"imageUrl"`
	VisitedDate     int64    `json:"visitedDate"` // エポックミリ秒
	IsFavourite     bool     `json:"isFavourite"`
	CreatedOn       string   `json:"createdOn"` // RFC 3339
}

// storiesResponse は記録一覧のAPIレスポンス。
type storiesResponse struct {
	Stories []storyResponse `json:"stories"`
}

// messageResponse は削除などの確認メッセージレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// toStoryResponse はドメインモデルをAPIレスポンスに変換する。
func toStoryResponse(s *model.Story) storyResponse {
	return storyResponse{
		ID:              s.ID,
		Title:           s.Title,
		Story:           s.Narrative,
		VisitedLocation: s.VisitedLocations,
		ImageURL:        s.ImageURL,
		VisitedDate:     s.VisitedDate.UnixMilli(),
		IsFavourite:     s.IsFavourite,
		CreatedOn:       s.CreatedOn.UTC().Format(time.RFC3339),
	}
}

// toStoriesResponse は記録のスライスをAPIレスポンスに変換する。
func toStoriesResponse(stories []*model.Story) storiesResponse {
	out := storiesResponse{Stories: make([]storyResponse, len(stories))}
	for i, s := range stories {
		out.Stories[i] = toStoryResponse(s)
	}
	return out
}

// toInput はリクエストボディをサービス層の入力に変換する。
func (req storyRequest) toInput() story.Input {
	return story.Input{
		Title:             req.Title,
		Narrative:         req.Story,
		VisitedLocations:  req.VisitedLocation,
		ImageURL:          req.ImageURL,
		VisitedDateMillis: req.VisitedDate,
	}
}

// Create は新規の旅行記録を作成する。
// POST /add-travel-story
func (h *StoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	created, err := h.service.Create(r.Context(), accountID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toStoryResponse(created))
}

// List は自分の記録一覧をお気に入り優先で返す。
// GET /get-all-stories
func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	stories, err := h.service.List(r.Context(), accountID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStoriesResponse(stories))
}

// Update は記録を編集する。
// PUT /edit-story/:id
func (h *StoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	updated, err := h.service.Update(r.Context(), accountID, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStoryResponse(updated))
}

// SetFavourite はお気に入りフラグを更新する。
// PUT /update-is-favourite/:id
func (h *StoryHandler) SetFavourite(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req favouriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	updated, err := h.service.SetFavourite(r.Context(), accountID, chi.URLParam(r, "id"), req.IsFavourite)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStoryResponse(updated))
}

// Delete は記録を削除する。参照していた写真はベストエフォートで削除される。
// DELETE /delete-story/:id
func (h *StoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), accountID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "旅行記録を削除しました。"})
}

// Search はタイトル・本文・訪問地の部分一致で記録を検索する。
// GET /search?query=
func (h *StoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	stories, err := h.service.Search(r.Context(), accountID, r.URL.Query().Get("query"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStoriesResponse(stories))
}

// FilterByDateRange は訪問日の範囲（エポックミリ秒、両端含む）で記録を絞り込む。
// GET /travel-stories-filter?startDate=&endDate=
func (h *StoryHandler) FilterByDateRange(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	q := r.URL.Query()
	stories, err := h.service.FilterByDateRange(r.Context(), accountID, q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStoriesResponse(stories))
}

// GetPublic は共有リンク用に記録を1件返す。認証不要。
// GET /api/story/:id
func (h *StoryHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(storyID); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidStoryIDError(storyID))
		return
	}

	s, err := h.service.GetPublic(r.Context(), storyID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStoryResponse(s))
}
