// Package storage は写真のリモートオブジェクトストアへの保存と削除を提供する。
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore はオブジェクトストアへの最小限の操作インターフェース。
// S3互換プロバイダーとテスト用フェイクの両方が実装する。
type ObjectStore interface {
	// Put はオブジェクトを保存する。
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Remove はオブジェクトを削除する。対象が存在しない場合もエラーとしない。
	Remove(ctx context.Context, key string) error
}

// S3Config はS3ストアの設定。
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // 互換プロバイダー向けの上書き。空の場合はAWS既定。
}

// S3Store はAWS S3（および互換プロバイダー）を使用したObjectStore実装。
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store はAWS既定の認証チェーンでS3クライアントを初期化する。
// Endpointが指定された場合はパススタイルアドレッシングに切り替える。
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Put はオブジェクトを保存する。
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// Remove はオブジェクトを削除する。
// S3のDeleteObjectは対象が存在しなくても成功するため、冪等に扱える。
func (s *S3Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ObjectStore = (*S3Store)(nil)
