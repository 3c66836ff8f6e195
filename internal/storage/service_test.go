package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hitoshi/travelbook/internal/model"
)

// --- モック ---

type mockObjectStore struct {
	putFn    func(ctx context.Context, key string, data []byte, contentType string) error
	removeFn func(ctx context.Context, key string) error

	removedKeys []string
}

func (m *mockObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if m.putFn != nil {
		return m.putFn(ctx, key, data, contentType)
	}
	return nil
}

func (m *mockObjectStore) Remove(ctx context.Context, key string) error {
	m.removedKeys = append(m.removedKeys, key)
	if m.removeFn != nil {
		return m.removeFn(ctx, key)
	}
	return nil
}

const testBaseURL = "https://bucket.s3.ap-northeast-1.amazonaws.com"

// --- テスト ---

// Uploadがstories/配下のキーで保存し公開URLを返すことを検証
func TestService_Upload(t *testing.T) {
	var putKey, putType string
	store := &mockObjectStore{
		putFn: func(ctx context.Context, key string, data []byte, contentType string) error {
			putKey = key
			putType = contentType
			return nil
		},
	}
	svc := NewService(store, testBaseURL, t.TempDir(), nil)

	url, err := svc.Upload(context.Background(), []byte("fake-jpeg"), "image/jpeg")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if !strings.HasPrefix(putKey, "stories/") {
		t.Errorf("expected key under stories/, got %q", putKey)
	}
	if !strings.HasSuffix(putKey, ".jpg") {
		t.Errorf("expected .jpg extension, got %q", putKey)
	}
	if putType != "image/jpeg" {
		t.Errorf("expected content type to be forwarded, got %q", putType)
	}
	if url != testBaseURL+"/"+putKey {
		t.Errorf("expected public URL %q, got %q", testBaseURL+"/"+putKey, url)
	}
}

// 画像以外のContent-Typeが拒否されることを検証
func TestService_Upload_UnsupportedContentType(t *testing.T) {
	svc := NewService(&mockObjectStore{}, testBaseURL, t.TempDir(), nil)

	_, err := svc.Upload(context.Background(), []byte("<svg/>"), "image/svg+xml")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRequest {
		t.Errorf("expected INVALID_REQUEST error, got %v", err)
	}
}

// プロバイダー失敗がUploadFailedとして返ることを検証
func TestService_Upload_ProviderFailure(t *testing.T) {
	store := &mockObjectStore{
		putFn: func(ctx context.Context, key string, data []byte, contentType string) error {
			return errors.New("connection reset")
		},
	}
	svc := NewService(store, testBaseURL, t.TempDir(), nil)

	_, err := svc.Upload(context.Background(), []byte("fake"), "image/png")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUploadFailed {
		t.Errorf("expected UPLOAD_FAILED error, got %v", err)
	}
}

// リモートURLのCleanupがURLから導出したキーで1回だけ削除することを検証
func TestService_Cleanup_RemoteURL(t *testing.T) {
	store := &mockObjectStore{}
	svc := NewService(store, testBaseURL, t.TempDir(), nil)

	svc.Cleanup(context.Background(), testBaseURL+"/stories/abc.jpg")

	if len(store.removedKeys) != 1 {
		t.Fatalf("expected exactly 1 remote delete, got %d", len(store.removedKeys))
	}
	if store.removedKeys[0] != "stories/abc.jpg" {
		t.Errorf("expected key stories/abc.jpg, got %q", store.removedKeys[0])
	}
}

// プレースホルダー画像のCleanupがリモート削除もローカル削除も行わないことを検証
func TestService_Cleanup_Placeholder(t *testing.T) {
	store := &mockObjectStore{}
	dir := t.TempDir()
	placeholder := filepath.Join(dir, "placeholder.png")
	if err := os.WriteFile(placeholder, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService(store, testBaseURL, dir, nil)
	svc.Cleanup(context.Background(), model.PlaceholderImageURL)

	if len(store.removedKeys) != 0 {
		t.Errorf("expected no remote delete for placeholder, got %v", store.removedKeys)
	}
	if _, err := os.Stat(placeholder); err != nil {
		t.Errorf("expected placeholder file to survive cleanup: %v", err)
	}
}

// ローカルアセットURLのCleanupがファイルを削除することを検証
func TestService_Cleanup_LocalAsset(t *testing.T) {
	store := &mockObjectStore{}
	dir := t.TempDir()
	local := filepath.Join(dir, "photo-1.jpg")
	if err := os.WriteFile(local, []byte("jpg"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService(store, testBaseURL, dir, nil)
	svc.Cleanup(context.Background(), "http://localhost:8080/assets/photo-1.jpg")

	if len(store.removedKeys) != 0 {
		t.Errorf("expected no remote delete for local asset, got %v", store.removedKeys)
	}
	if _, err := os.Stat(local); !os.IsNotExist(err) {
		t.Error("expected local asset file to be removed")
	}
}

// リモート削除の失敗が呼び出し元に伝播しないことを検証
func TestService_Cleanup_FailureIsSwallowed(t *testing.T) {
	store := &mockObjectStore{
		removeFn: func(ctx context.Context, key string) error {
			return errors.New("503 slow down")
		},
	}
	svc := NewService(store, testBaseURL, t.TempDir(), nil)

	// panicせず戻ればよい。失敗はログとメトリクスにのみ記録される。
	svc.Cleanup(context.Background(), testBaseURL+"/stories/abc.jpg")
}

// 外部ドメインのURLが無視されることを検証
func TestService_Cleanup_ForeignURL(t *testing.T) {
	store := &mockObjectStore{}
	svc := NewService(store, testBaseURL, t.TempDir(), nil)

	svc.Cleanup(context.Background(), "https://other-cdn.example.com/stories/abc.jpg")

	if len(store.removedKeys) != 0 {
		t.Errorf("expected no delete for foreign URL, got %v", store.removedKeys)
	}
}
