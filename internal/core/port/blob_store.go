package port

import "context"

// BlobStore abstracts the image storage backend. Upload returns the
// public URL of the stored object; Delete accepts that URL or a bare
// object name; Download returns the object bytes and content type.
type BlobStore interface {
	Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error)
	Download(ctx context.Context, objectName string) ([]byte, string, error)
	Delete(ctx context.Context, url string) error
}
