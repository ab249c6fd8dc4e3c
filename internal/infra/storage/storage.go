package storage

import "context"

// UploadResult is what callers persist alongside an image row: the public URL
// and the object key needed to destroy the blob later.
type UploadResult struct {
	URL      string
	PublicID string
}

// ImageStore is the media pipeline boundary. Implementations talk to blob
// storage; the listing service only ever sees URLs and handles.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, contentType, folder, publicID string) (UploadResult, error)
	DestroyOne(ctx context.Context, folder, publicID string) error
	DestroyMany(ctx context.Context, folder string, publicIDs []string) error
}
