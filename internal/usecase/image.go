package usecase

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/plateful/restaurant-review-api/internal/core/port"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// ImageService validates uploads and stores them in the blob store
// under collision-free object names.
type ImageService struct {
	store    port.BlobStore
	maxBytes int64
}

// NewImageService constructs ImageService. maxBytes bounds accepted
// uploads; non-positive values fall back to 5 MiB.
func NewImageService(store port.BlobStore, maxBytes int64) *ImageService {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &ImageService{store: store, maxBytes: maxBytes}
}

// Upload validates the file and stores it under the given folder.
// Returns the public URL of the stored object.
func (s *ImageService) Upload(ctx context.Context, folder, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidImage, s.maxBytes)
	}

	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("%w: unsupported content type %q", ErrInvalidImage, contentType)
	}
	if s.store == nil {
		return "", fmt.Errorf("%w: image storage not configured", ErrInvalidImage)
	}

	objectName := path.Join(folder, uuid.NewString()+ext)
	url, err := s.store.Upload(ctx, objectName, contentType, data)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	return url, nil
}

// Fetch reads a stored object back by name, returning its bytes and
// content type. Any storage failure surfaces as a not-found.
func (s *ImageService) Fetch(ctx context.Context, objectName string) ([]byte, string, error) {
	if s.store == nil || strings.TrimSpace(objectName) == "" {
		return nil, "", ErrImageNotFound
	}

	data, contentType, err := s.store.Download(ctx, objectName)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrImageNotFound, objectName)
	}

	return data, contentType, nil
}

// Delete removes a previously uploaded object by its public URL.
// Deleting a blank URL is a no-op.
func (s *ImageService) Delete(ctx context.Context, url string) error {
	if s.store == nil || strings.TrimSpace(url) == "" {
		return nil
	}
	if err := s.store.Delete(ctx, url); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
