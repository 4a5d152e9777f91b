package utils

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"path"
	"time"

	"doclib/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// S3Storage stores blobs in an S3 compatible bucket and serves them
// through presigned URLs.
type S3Storage struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	logger *zap.Logger
}

// NewS3Storage connects and makes sure the bucket exists
func NewS3Storage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*S3Storage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.S3Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.S3Bucket, minio.MakeBucketOptions{Region: cfg.S3Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.S3Bucket, err)
		}
		logger.Info("Bucket created", zap.String("bucket", cfg.S3Bucket))
	}

	expiry := cfg.S3URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &S3Storage{client: client, bucket: cfg.S3Bucket, expiry: expiry, logger: logger}, nil
}

func (s *S3Storage) Name() string { return "s3" }

func (s *S3Storage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error) {
	name, err := BlobName(file.Filename)
	if err != nil {
		return nil, err
	}
	key := path.Join(folder, name)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnableToOpenFile, err)
	}
	defer src.Close()

	info, err := s.client.PutObject(ctx, s.bucket, key, src, file.Size, minio.PutObjectOptions{
		ContentType: extensionTypes[path.Ext(name)],
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	s.logger.Debug("Blob stored", zap.String("bucket", s.bucket), zap.String("key", key))
	return &UploadResult{
		URL:  fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key),
		Key:  key,
		Size: info.Size,
	}, nil
}

// Delete succeeds for missing objects as S3 deletes are idempotent.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

func (s *S3Storage) Serve(ctx context.Context, key, _ string) (*Download, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.expiry, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}
	return &Download{RedirectURL: u.String()}, nil
}
