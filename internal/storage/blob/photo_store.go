package blob

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ballotworks/electoral-api/internal/config"
	"github.com/ballotworks/electoral-api/internal/logger"
)

// PhotoStore keeps candidate and voter profile photos in an S3-compatible
// object store. Database rows only carry the object key.
type PhotoStore struct {
	client *minio.Client
	bucket string
	log    *log.Logger
}

// NewPhotoStore connects to the object store and ensures the bucket exists
func NewPhotoStore(ctx context.Context, cfg *config.Config) (*PhotoStore, error) {
	log := logger.Blob()

	client, err := minio.New(cfg.Blob.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Blob.AccessKey, cfg.Blob.SecretKey, ""),
		Secure: cfg.Blob.UseSSL,
	})
	if err != nil {
		log.Error("failed to create object store client", "error", err)
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Blob.Bucket)
	if err != nil {
		log.Error("failed to check bucket existence", "bucket", cfg.Blob.Bucket, "error", err)
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Blob.Bucket, minio.MakeBucketOptions{}); err != nil {
			log.Error("failed to create bucket", "bucket", cfg.Blob.Bucket, "error", err)
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Info("created photo bucket", "bucket", cfg.Blob.Bucket)
	}

	log.Info("connected to object store", "endpoint", cfg.Blob.Endpoint, "bucket", cfg.Blob.Bucket)

	return &PhotoStore{
		client: client,
		bucket: cfg.Blob.Bucket,
		log:    log,
	}, nil
}

// Put streams a photo into the store under a generated key and returns the
// key for persistence.
func (s *PhotoStore) Put(ctx context.Context, prefix string, reader io.Reader, size int64, contentType string) (string, error) {
	key := fmt.Sprintf("%s/%s", prefix, uuid.New().String())

	s.log.Debug("uploading photo", "key", key, "size", size)

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.log.Error("failed to upload photo", "key", key, "error", err)
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	s.log.Info("photo uploaded", "key", key)
	return key, nil
}

// Get returns a reader for the stored photo. The caller must close it.
func (s *PhotoStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.log.Debug("fetching photo", "key", key)

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		s.log.Error("failed to fetch photo", "key", key, "error", err)
		return nil, fmt.Errorf("failed to fetch photo: %w", err)
	}

	return obj, nil
}

// PresignedURL returns a short-lived download URL for the stored photo
func (s *PhotoStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		s.log.Error("failed to presign photo URL", "key", key, "error", err)
		return "", fmt.Errorf("failed to presign photo URL: %w", err)
	}

	return u.String(), nil
}

// Remove deletes a stored photo
func (s *PhotoStore) Remove(ctx context.Context, key string) error {
	s.log.Debug("removing photo", "key", key)

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.log.Error("failed to remove photo", "key", key, "error", err)
		return fmt.Errorf("failed to remove photo: %w", err)
	}

	s.log.Info("photo removed", "key", key)
	return nil
}
