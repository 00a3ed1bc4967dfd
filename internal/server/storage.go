package server

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// ObjectStore is the narrow slice of object storage this service needs.
// MinioStore is the production implementation; tests substitute fakes to
// inject storage failures.
type ObjectStore interface {
	// Put writes data under key with the given content type.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// RemoveMany deletes the given keys. Keys that no longer exist are
	// treated as already deleted, not as failures, so a retried folder
	// delete can re-attempt keys removed on the previous pass.
	RemoveMany(ctx context.Context, keys []string) error

	// SignedURL returns a pre-authorized, time-limited GET link for key.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// MinioStore implements ObjectStore against a single MinIO/S3 bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *MinioStore) RemoveMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		objects <- minio.ObjectInfo{Key: k}
	}
	close(objects)

	var failed []string
	for rErr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		if rErr.Err == nil {
			continue
		}
		if minio.ToErrorResponse(rErr.Err).Code == "NoSuchKey" {
			continue
		}
		failed = append(failed, rErr.ObjectName)
	}
	if len(failed) > 0 {
		return fmt.Errorf("remove objects: %d of %d failed, first %q", len(failed), len(keys), failed[0])
	}
	return nil
}

func (s *MinioStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}
