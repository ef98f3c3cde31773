package storage

import (
	"context"
	"io"
	"time"
)

// Default expiry duration for presigned URLs.
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations. It backs
// the voice note archive: raw audio clips are written here before
// transcription and kept afterwards.
type FileStorage interface {
	// UploadObject writes an object directly to the storage provider.
	UploadObject(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
