// Package mirror copies written outputs into an S3-compatible bucket.
package mirror

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/retry"
)

// Storage provides an S3-compatible mirror backend using MinIO.
// Objects are stored in a single bucket under an optional key prefix.
type Storage struct {
	client     *minio.Client
	bucketName string
	prefix     string
	strategy   retry.Strategy
}

// NewStorage creates a new Storage instance connected to the specified MinIO server.
// If the bucket does not exist, it will be created automatically.
func NewStorage(ctx context.Context, endpoint, accessKey, secretKey, bucketName, prefix string, useSSL bool, s retry.Strategy) (*Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Storage{
		client:     client,
		bucketName: bucketName,
		prefix:     prefix,
		strategy:   s,
	}, nil
}

// Upload copies the local file at localPath to the object key derived from
// rel, retrying according to the configured strategy. It returns the object name.
func (s *Storage) Upload(ctx context.Context, rel, localPath string) (string, error) {
	objectName := ObjectName(s.prefix, rel)

	err := retry.Do(func() error {
		_, err := s.client.FPutObject(ctx, s.bucketName, objectName, localPath, minio.PutObjectOptions{
			ContentType: ContentType(localPath),
		})
		return err
	}, s.strategy)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	return objectName, nil
}

// ObjectName joins prefix and a filesystem-relative path into a slash-separated key.
func ObjectName(prefix, rel string) string {
	key := strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if prefix == "" {
		return key
	}

	return path.Join(strings.Trim(prefix, "/"), key)
}

// ContentType returns the MIME type for the supported image extensions.
func ContentType(name string) string {
	switch filepath.Ext(name) {
	case ".png":
		return "image/png"
	case ".jpg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
