package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestImageServiceFetchRoundTrip(t *testing.T) {
	store := newStubBlobStore()
	svc := NewImageService(store, 0)

	url, err := svc.Upload(context.Background(), "uploads", "image/jpeg", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	name := strings.TrimPrefix(url, "https://blobs.test/")
	data, contentType, err := svc.Fetch(context.Background(), name)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("data = %q, want %q", data, "jpeg-bytes")
	}
	if contentType == "" {
		t.Error("content type missing")
	}
}

func TestImageServiceFetchMissing(t *testing.T) {
	svc := NewImageService(newStubBlobStore(), 0)

	if _, _, err := svc.Fetch(context.Background(), "uploads/nope.jpg"); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("Fetch missing: err = %v, want ErrImageNotFound", err)
	}
}

func TestImageServiceFetchWithoutStore(t *testing.T) {
	svc := NewImageService(nil, 0)

	if _, _, err := svc.Fetch(context.Background(), "uploads/a.jpg"); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("Fetch without store: err = %v, want ErrImageNotFound", err)
	}
}
