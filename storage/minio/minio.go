// Package minio implements object-store media storage for deployments that
// keep uploads off the application host.
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds the MinIO connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Storage stores media files as objects in a MinIO bucket.
type Storage struct {
	client *minio.Client
	bucket string
}

// NewStorage connects to MinIO and ensures the bucket exists.
func NewStorage(cfg Config) (*Storage, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket '%s': %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket '%s': %w", cfg.Bucket, err)
		}
	}

	return &Storage{client: client, bucket: cfg.Bucket}, nil
}

// Save uploads an object under path.
func (s *Storage) Save(ctx context.Context, path string, file io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, path, file, size, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to upload object '%s': %w", path, err)
	}
	return nil
}

// Get opens an object for reading.
func (s *Storage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object '%s': %w", path, err)
	}
	// GetObject is lazy; Stat forces the first round-trip so a missing
	// object errors here rather than on first read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("failed to stat object '%s': %w", path, err)
	}
	return obj, nil
}

// Delete removes an object.
func (s *Storage) Delete(ctx context.Context, path string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object '%s': %w", path, err)
	}
	return nil
}

// Exists reports whether an object is present.
func (s *Storage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Health checks the bucket is reachable.
func (s *Storage) Health(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

func (s *Storage) Name() string {
	return "minio"
}
