package storage

import (
	"context"
	"io"
)

// UploadResult describes where a banner image landed. Location is the public
// URL the banner is served from; ETag identifies the stored content revision.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores tournament banner images in an object bucket. Keys are
// bucket-relative paths ("banners/tournament_7_....png"); uploading to an
// existing key overwrites it.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Delete removes a previously uploaded banner. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error

	// GetPublicURL maps a stored key to the URL clients fetch it from.
	// Returns "" for an empty key.
	GetPublicURL(key string) string
}
