package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Token
	TokenSecret string
	TokenMaxAge int // セッショントークンの有効期間（秒）

	// Object Storage
	S3Bucket        string
	S3Region        string
	S3Endpoint      string // 互換プロバイダー向けのエンドポイント上書き。空の場合はAWS既定。
	S3PublicBaseURL string // 公開URLのベース。削除時のURL形状判定にも使用する。

	// Local assets
	AssetsDir string

	// Upload
	UploadMaxSize int64

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitUpload  int

	// Server
	ServerPort string
	BaseURL    string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
	if cfg.TokenSecret == "" {
		missing = append(missing, "TOKEN_SECRET")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	if cfg.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}

	cfg.S3Region = os.Getenv("S3_REGION")
	if cfg.S3Region == "" {
		missing = append(missing, "S3_REGION")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TokenMaxAge = getEnvInt("TOKEN_MAX_AGE", 72*3600)
	cfg.S3Endpoint = getEnvString("S3_ENDPOINT", "")
	cfg.S3PublicBaseURL = strings.TrimSuffix(
		getEnvString("S3_PUBLIC_BASE_URL",
			fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)),
		"/",
	)
	cfg.AssetsDir = getEnvString("ASSETS_DIR", "./assets")
	cfg.UploadMaxSize = getEnvInt64("UPLOAD_MAX_SIZE", 25*1024*1024)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitUpload = getEnvInt("RATE_LIMIT_UPLOAD", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}
