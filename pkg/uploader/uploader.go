package uploader

import (
	"context"
	"errors"
)

// Upload limits enforced before the buffer ever leaves the process.
const MaxImageSize = 5 * 1024 * 1024 // 5MB

var (
	ErrTooLarge      = errors.New("file exceeds the 5MB limit")
	ErrNotAnImage    = errors.New("only image files are allowed")
	ErrNotConfigured = errors.New("image host is not configured")
)

// Uploader is a minimal abstraction for the external image host used for
// avatars. It intentionally hides concrete providers to preserve
// dependency direction.
type Uploader interface {
	// UploadImage pushes an in-memory image buffer and returns its hosted URL.
	UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error)
}
