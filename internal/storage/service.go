package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/travelbook/internal/model"
)

// storyImageFolder はアップロード画像を保存する論理フォルダ。
const storyImageFolder = "stories"

// extByContentType は許可する画像Content-Typeとオブジェクトキーの拡張子の対応。
var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// CleanupMetrics は画像ライフサイクルのメトリクス記録インターフェース。
type CleanupMetrics interface {
	RecordImageUpload()
	RecordImageCleanupFailure()
}

// Service は写真のアップロードと参照解除後の削除を管理する。
//
// 削除はベストエフォートで行う: オブジェクトストアへの削除が失敗しても
// 親操作（記録の削除）は成功させ、孤児オブジェクトを許容する。
// サードパーティ呼び出しの失敗でユーザー操作をブロックしないための方針であり、
// トランザクション保証ではない。
type Service struct {
	store         ObjectStore
	publicBaseURL string // 例: https://bucket.s3.region.amazonaws.com
	assetsDir     string // ローカル配信アセットのディレクトリ
	metrics       CleanupMetrics
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(store ObjectStore, publicBaseURL, assetsDir string, metrics CleanupMetrics) *Service {
	return &Service{
		store:         store,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		assetsDir:     assetsDir,
		metrics:       metrics,
	}
}

// Upload は画像をリモートストアに保存し、公開URLを返す。
// Content-Typeが画像でない場合とプロバイダー失敗はエラーを返す。
// 失敗したアップロードのURLを記録に保存してはならない。
func (s *Service) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	ext, ok := extByContentType[contentType]
	if !ok {
		return "", model.NewInvalidRequestError(fmt.Sprintf("unsupported content type: %s", contentType))
	}
	if len(data) == 0 {
		return "", model.NewMissingFieldError("image")
	}

	key := path.Join(storyImageFolder, uuid.New().String()+ext)

	if err := s.store.Put(ctx, key, data, contentType); err != nil {
		return "", model.NewUploadFailedError(err.Error())
	}

	if s.metrics != nil {
		s.metrics.RecordImageUpload()
	}

	return s.publicBaseURL + "/" + key, nil
}

// Cleanup は参照されなくなった写真を削除する。
//
// photoURLの形状で削除先を判定する:
//   - リモートストアの公開URL配下 → URLパスからキーを導出してリモート削除
//   - ローカルアセットパス（/assets/）→ ローカルファイルを削除
//   - プレースホルダー・外部URL → 何もしない
//
// 失敗はログとメトリクスに記録するのみで、呼び出し元には伝播しない。
func (s *Service) Cleanup(ctx context.Context, photoURL string) {
	if photoURL == "" || photoURL == model.PlaceholderImageURL {
		return
	}

	if key, ok := s.remoteKeyFromURL(photoURL); ok {
		if err := s.store.Remove(ctx, key); err != nil {
			s.recordCleanupFailure(photoURL, err)
		}
		return
	}

	if name, ok := localAssetFromURL(photoURL); ok {
		if err := os.Remove(filepath.Join(s.assetsDir, name)); err != nil && !os.IsNotExist(err) {
			s.recordCleanupFailure(photoURL, err)
		}
		return
	}

	slog.Debug("skipping cleanup for foreign photo URL",
		slog.String("photo_url", photoURL),
	)
}

// remoteKeyFromURL は公開URLからオブジェクトキーを導出する。
func (s *Service) remoteKeyFromURL(photoURL string) (string, bool) {
	if !strings.HasPrefix(photoURL, s.publicBaseURL+"/") {
		return "", false
	}
	key := strings.TrimPrefix(photoURL, s.publicBaseURL+"/")
	if key == "" {
		return "", false
	}
	return key, true
}

// localAssetFromURL はローカルアセットURLからファイル名を導出する。
// パストラバーサルを防ぐためベース名のみを使用する。
func localAssetFromURL(photoURL string) (string, bool) {
	u, err := url.Parse(photoURL)
	if err != nil {
		return "", false
	}
	if !strings.HasPrefix(u.Path, "/assets/") {
		return "", false
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "assets" {
		return "", false
	}
	return name, true
}

// recordCleanupFailure は削除失敗をログとメトリクスに記録する。
func (s *Service) recordCleanupFailure(photoURL string, err error) {
	slog.Warn("image cleanup failed",
		slog.String("photo_url", photoURL),
		slog.String("error", err.Error()),
	)
	if s.metrics != nil {
		s.metrics.RecordImageCleanupFailure()
	}
}
