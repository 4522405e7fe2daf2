package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
)

const publicURLBase = "https://storage.googleapis.com"

// GCSBlobStore stores images as publicly readable objects in a Google
// Cloud Storage bucket.
type GCSBlobStore struct {
	client *gcs.Client
	bucket string
	logger *zap.Logger
}

// NewGCSBlobStore connects to GCS using ambient credentials.
func NewGCSBlobStore(ctx context.Context, bucket string, logger *zap.Logger) (*GCSBlobStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	logger.Info("gcs blob store initialized", zap.String("bucket", bucket))

	return &GCSBlobStore{client: client, bucket: bucket, logger: logger}, nil
}

// Upload writes the object and returns its public URL.
func (s *GCSBlobStore) Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", objectName, err)
	}

	return fmt.Sprintf("%s/%s/%s", publicURLBase, s.bucket, objectName), nil
}

// Download reads an object back by name and returns its bytes together
// with the stored content type.
func (s *GCSBlobStore) Download(ctx context.Context, objectName string) ([]byte, string, error) {
	r, err := s.client.Bucket(s.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("open object %s: %w", objectName, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read object %s: %w", objectName, err)
	}

	return data, r.Attrs.ContentType, nil
}

// Delete removes the object addressed by a URL previously returned from
// Upload, or by a bare object name. Foreign URLs are rejected rather
// than silently ignored.
func (s *GCSBlobStore) Delete(ctx context.Context, url string) error {
	objectName := strings.TrimPrefix(url, fmt.Sprintf("%s/%s/", publicURLBase, s.bucket))
	if objectName == "" || strings.Contains(objectName, "://") {
		return fmt.Errorf("malformed object url %q", url)
	}

	if err := s.client.Bucket(s.bucket).Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("delete object %s: %w", objectName, err)
	}

	return nil
}

// Close releases the underlying client.
func (s *GCSBlobStore) Close() error {
	return s.client.Close()
}
