package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/travelbook/internal/middleware"
	"github.com/hitoshi/travelbook/internal/model"
	"github.com/hitoshi/travelbook/internal/story"
)

type mockStoryService struct {
	createFunc       func(ctx context.Context, ownerID string, in story.Input) (*model.Story, error)
	listFunc         func(ctx context.Context, ownerID string) ([]*model.Story, error)
	updateFunc       func(ctx context.Context, ownerID, storyID string, in story.Input) (*model.Story, error)
	setFavouriteFunc func(ctx context.Context, ownerID, storyID string, isFavourite bool) (*model.Story, error)
	deleteFunc       func(ctx context.Context, ownerID, storyID string) error
	searchFunc       func(ctx context.Context, ownerID, query string) ([]*model.Story, error)
	filterFunc       func(ctx context.Context, ownerID, startMillis, endMillis string) ([]*model.Story, error)
	getPublicFunc    func(ctx context.Context, storyID string) (*model.Story, error)
}

func (m *mockStoryService) Create(ctx context.Context, ownerID string, in story.Input) (*model.Story, error) {
	return m.createFunc(ctx, ownerID, in)
}

func (m *mockStoryService) List(ctx context.Context, ownerID string) ([]*model.Story, error) {
	return m.listFunc(ctx, ownerID)
}

func (m *mockStoryService) Update(ctx context.Context, ownerID, storyID string, in story.Input) (*model.Story, error) {
	return m.updateFunc(ctx, ownerID, storyID, in)
}

func (m *mockStoryService) SetFavourite(ctx context.Context, ownerID, storyID string, isFavourite bool) (*model.Story, error) {
	return m.setFavouriteFunc(ctx, ownerID, storyID, isFavourite)
}

func (m *mockStoryService) Delete(ctx context.Context, ownerID, storyID string) error {
	return m.deleteFunc(ctx, ownerID, storyID)
}

func (m *mockStoryService) Search(ctx context.Context, ownerID, query string) ([]*model.Story, error) {
	return m.searchFunc(ctx, ownerID, query)
}

func (m *mockStoryService) FilterByDateRange(ctx context.Context, ownerID, startMillis, endMillis string) ([]*model.Story, error) {
	return m.filterFunc(ctx, ownerID, startMillis, endMillis)
}

func (m *mockStoryService) GetPublic(ctx context.Context, storyID string) (*model.Story, error) {
	return m.getPublicFunc(ctx, storyID)
}

func sampleStory() *model.Story {
	return &model.Story{
		ID:               "11111111-2222-3333-4444-555555555555",
		OwnerID:          "account-1",
		Title:            "屋久島縦走",
		Narrative:        "縄文杉まで歩いた。",
		VisitedLocations: []string{"屋久島"},
		ImageURL:         "https://bucket.s3.ap-northeast-1.amazonaws.com/stories/a.jpg",
		VisitedDate:      time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		IsFavourite:      true,
		CreatedOn:        time.Date(2025, 1, 16, 9, 30, 0, 0, time.UTC),
	}
}

// authedRequest は認証済みコンテキスト付きのリクエストを生成する。
func authedRequest(method, target string, body *bytes.Buffer) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.ContextWithAccountID(req.Context(), "account-1"))
}

// withURLParam はchiのURLパラメータをリクエストコンテキストに注入する。
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// TestCreateStoryHandler_Success は記録作成が201と作成済み記録を返すことを検証する。
func TestCreateStoryHandler_Success(t *testing.T) {
	svc := &mockStoryService{
		createFunc: func(_ context.Context, ownerID string, in story.Input) (*model.Story, error) {
			if ownerID != "account-1" {
				t.Errorf("unexpected owner: %s", ownerID)
			}
			if in.Narrative != "縄文杉まで歩いた。" {
				t.Errorf("unexpected narrative: %s", in.Narrative)
			}
			if in.VisitedDateMillis == nil || *in.VisitedDateMillis != 1736899200000 {
				t.Errorf("unexpected visited date: %v", in.VisitedDateMillis)
			}
			return sampleStory(), nil
		},
	}
	h := NewStoryHandler(svc)

	body := `{"title":"屋久島縦走","story":"縄文杉まで歩いた。","visitedLocation":["屋久島"],"imageUrl":"https://bucket.s3.ap-northeast-1.amazonaws.com/stories/a.jpg","visitedDate":1736899200000}`
	req := authedRequest(http.MethodPost, "/add-travel-story", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	var resp storyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.VisitedDate != 1736899200000 {
		t.Errorf("expected visitedDate in epoch millis, got %d", resp.VisitedDate)
	}
	if !resp.IsFavourite {
		t.Errorf("unexpected response: %+v", resp)
	}
}

// TestCreateStoryHandler_RequiresAuthentication は未認証リクエストが401になることを検証する。
func TestCreateStoryHandler_RequiresAuthentication(t *testing.T) {
	h := NewStoryHandler(&mockStoryService{})

	req := httptest.NewRequest(http.MethodPost, "/add-travel-story", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

// TestCreateStoryHandler_MissingField はサービスのバリデーションエラーが400になることを検証する。
func TestCreateStoryHandler_MissingField(t *testing.T) {
	svc := &mockStoryService{
		createFunc: func(_ context.Context, _ string, _ story.Input) (*model.Story, error) {
			return nil, model.NewMissingFieldError("title")
		},
	}
	h := NewStoryHandler(svc)

	req := authedRequest(http.MethodPost, "/add-travel-story", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != model.ErrCodeMissingField {
		t.Errorf("expected code MISSING_FIELD, got %s", body.Code)
	}
}

// TestListStoriesHandler は一覧取得のレスポンス形式を検証する。
func TestListStoriesHandler(t *testing.T) {
	svc := &mockStoryService{
		listFunc: func(_ context.Context, ownerID string) ([]*model.Story, error) {
			return []*model.Story{sampleStory()}, nil
		},
	}
	h := NewStoryHandler(svc)

	req := authedRequest(http.MethodGet, "/get-all-stories", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp storiesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Stories) != 1 || resp.Stories[0].Title != "屋久島縦走" {
		t.Errorf("unexpected stories: %+v", resp.Stories)
	}
}

// TestUpdateStoryHandler_NotFound は未所有・未検出の編集が404になることを検証する。
func TestUpdateStoryHandler_NotFound(t *testing.T) {
	svc := &mockStoryService{
		updateFunc: func(_ context.Context, _, storyID string, _ story.Input) (*model.Story, error) {
			return nil, model.NewStoryNotFoundError(storyID)
		},
	}
	h := NewStoryHandler(svc)

	req := authedRequest(http.MethodPut, "/edit-story/missing-id", bytes.NewBufferString(`{"title":"x"}`))
	req = withURLParam(req, "id", "missing-id")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != model.ErrCodeStoryNotFound {
		t.Errorf("expected code STORY_NOT_FOUND, got %s", body.Code)
	}
}

// TestSetFavouriteHandler はお気に入り更新のパラメータ受け渡しを検証する。
func TestSetFavouriteHandler(t *testing.T) {
	svc := &mockStoryService{
		setFavouriteFunc: func(_ context.Context, ownerID, storyID string, isFavourite bool) (*model.Story, error) {
			if storyID != "story-1" || !isFavourite {
				t.Errorf("unexpected args: %s %v", storyID, isFavourite)
			}
			return sampleStory(), nil
		},
	}
	h := NewStoryHandler(svc)

	req := authedRequest(http.MethodPut, "/update-is-favourite/story-1", bytes.NewBufferString(`{"isFavourite":true}`))
	req = withURLParam(req, "id", "story-1")
	rec := httptest.NewRecorder()

	h.SetFavourite(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

// TestDeleteStoryHandler は削除成功が200と確認メッセージを返すことを検証する。
func TestDeleteStoryHandler(t *testing.T) {
	deleted := false
	svc := &mockStoryService{
		deleteFunc: func(_ context.Context, ownerID, storyID string) error {
			deleted = true
			return nil
		},
	}
	h := NewStoryHandler(svc)

	req := authedRequest(http.MethodDelete, "/delete-story/story-1", nil)
	req = withURLParam(req, "id", "story-1")
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !deleted {
		t.Error("expected service delete to be called")
	}

	var resp messageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message == "" {
		t.Error("expected confirmation message")
	}
}

// TestSearchHandler_EmptyQuery は空クエリが400になることを検証する。
func TestSearchHandler_EmptyQuery(t *testing.T) {
	svc := &mockStoryService{
		searchFunc: func(_ context.Context, _, query string) ([]*model.Story, error) {
			return nil, model.NewEmptyQueryError()
		},
	}
	h := NewStoryHandler(svc)

	req := authedRequest(http.MethodGet, "/search", nil)
	rec := httptest.NewRecorder()

	h.Search(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != model.ErrCodeEmptyQuery {
		t.Errorf("expected code EMPTY_QUERY, got %s", body.Code)
	}
}

// TestFilterHandler_MalformedBounds は不正な日付境界が400になることを検証する。
func TestFilterHandler_MalformedBounds(t *testing.T) {
	svc := &mockStoryService{
		filterFunc: func(_ context.Context, _, startMillis, endMillis string) ([]*model.Story, error) {
			if startMillis != "abc" {
				t.Errorf("unexpected start bound: %s", startMillis)
			}
			return nil, model.NewInvalidDateRangeError("startDate")
		},
	}
	h := NewStoryHandler(svc)

	req := authedRequest(http.MethodGet, "/travel-stories-filter?startDate=abc&endDate=1739577600000", nil)
	rec := httptest.NewRecorder()

	h.FilterByDateRange(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != model.ErrCodeInvalidDateRange {
		t.Errorf("expected code INVALID_DATE_RANGE, got %s", body.Code)
	}
}

// TestGetPublicHandler_MalformedID は不正なUUIDが400になることを検証する。
func TestGetPublicHandler_MalformedID(t *testing.T) {
	svc := &mockStoryService{
		getPublicFunc: func(_ context.Context, _ string) (*model.Story, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	h := NewStoryHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/story/not-a-uuid", nil)
	req = withURLParam(req, "id", "not-a-uuid")
	rec := httptest.NewRecorder()

	h.GetPublic(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != model.ErrCodeInvalidStoryID {
		t.Errorf("expected code INVALID_STORY_ID, got %s", body.Code)
	}
}

// TestGetPublicHandler_Success は共有リンク読み取りが認証なしで200を返すことを検証する。
func TestGetPublicHandler_Success(t *testing.T) {
	svc := &mockStoryService{
		getPublicFunc: func(_ context.Context, storyID string) (*model.Story, error) {
			return sampleStory(), nil
		},
	}
	h := NewStoryHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/story/11111111-2222-3333-4444-555555555555", nil)
	req = withURLParam(req, "id", "11111111-2222-3333-4444-555555555555")
	rec := httptest.NewRecorder()

	h.GetPublic(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp storyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "11111111-2222-3333-4444-555555555555" {
		t.Errorf("unexpected story: %+v", resp)
	}
}
