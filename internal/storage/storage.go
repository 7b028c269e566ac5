package storage

import (
	"context"
	"time"
)

// Default expiry for presigned URLs handed to browsers.
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage abstracts the object store holding club logos and user avatars.
// Clients upload and download directly against presigned URLs; the API server
// never proxies image bytes.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL accepting a PUT of
	// the object. The uploader must send the same Content-Type header.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL allowing a GET of
	// the object.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object, e.g. when a club replaces its logo.
	DeleteObject(ctx context.Context, objectKey string) error
}
