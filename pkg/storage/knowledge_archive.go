package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// KnowledgeArchive keeps a durable copy of every knowledge document uploaded
// to the assistant platform, so bots can be rebuilt without re-scraping.
type KnowledgeArchive interface {
	ArchiveDocument(ctx context.Context, botID, filename string, data []byte, contentType string) (string, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// MinioArchive implements KnowledgeArchive on MinIO/S3 compatible storage.
type MinioArchive struct {
	client *minio.Client
	bucket string
}

// NewMinioArchive connects to MinIO and ensures the bucket exists.
func NewMinioArchive(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioArchive{client: client, bucket: bucket}, nil
}

// ArchiveDocument stores one knowledge document under the bot's prefix and
// returns the object key.
func (m *MinioArchive) ArchiveDocument(ctx context.Context, botID, filename string, data []byte, contentType string) (string, error) {
	key := path.Join("knowledge", botID, filename)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("archive document: %w", err)
	}
	return key, nil
}

// PresignGet generates a pre-signed GET URL for an archived document.
func (m *MinioArchive) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return url.String(), nil
}

// Delete removes an archived document.
func (m *MinioArchive) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// ReadAll is a convenience for callers holding a reader of bounded size.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("document exceeds %d byte limit", limit)
	}
	return data, nil
}
