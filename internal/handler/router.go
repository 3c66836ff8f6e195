package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/travelbook/internal/metrics"
	"github.com/hitoshi/travelbook/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string // 空の場合はCORSミドルウェアを適用しない
	RateLimiter       *middleware.RateLimiter
	Metrics           middleware.HTTPMetrics
	Logger            *slog.Logger

	// サービス
	AuthService   AuthServiceInterface
	StoryService  StoryServiceInterface
	ImageUploader ImageUploader

	// 画像アップロードの最大サイズ（バイト）
	UploadMaxSize int64

	// 静的アセット（プレースホルダー画像など）のディレクトリ
	AssetsDir string

	// Prometheusスクレイプ用
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → (CORS) → Metrics → Logging
//	→ [保護ルートのみ] Auth → RateLimit(General)
//
// アカウント作成・ログイン・OAuth・画像アップロード・共有リンク読み取りは認証不要。
// 画像アップロードはIP単位の専用レート制限を通す。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.CORSAllowedOrigin != "" {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	}
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	storyHandler := NewStoryHandler(deps.StoryService)
	imageHandler := NewImageHandler(deps.ImageUploader, deps.UploadMaxSize)

	// --- 認証不要のルート ---

	r.Post("/create-account", authHandler.CreateAccount)
	r.Post("/login", authHandler.Login)
	r.Post("/oauth/google", authHandler.OAuthGoogle)

	// 画像アップロード（IP単位の専用レート制限）
	r.With(deps.RateLimiter.UploadMiddleware()).Post("/image-upload", imageHandler.Upload)

	// 共有リンクによる公開読み取り
	r.Get("/api/story/{id}", storyHandler.GetPublic)

	// プレースホルダー画像などの静的アセット
	if deps.AssetsDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(deps.AssetsDir))))
	}

	// ヘルスチェックと監視
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// アカウント
		r.Get("/get-user", authHandler.GetAccount)

		// 旅行記録
		r.Post("/add-travel-story", storyHandler.Create)
		r.Get("/get-all-stories", storyHandler.List)
		r.Put("/edit-story/{id}", storyHandler.Update)
		r.Put("/update-is-favourite/{id}", storyHandler.SetFavourite)
		r.Delete("/delete-story/{id}", storyHandler.Delete)

		// 検索・絞り込み
		r.Get("/search", storyHandler.Search)
		r.Get("/travel-stories-filter", storyHandler.FilterByDateRange)
	})

	return r
}
