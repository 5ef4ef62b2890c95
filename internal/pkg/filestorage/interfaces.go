package filestorage

import (
	"context"
	"io"
)

// Storage stores generated files under slash-separated keys such as "reports/8A-1f2e.xlsx".
// Missing keys are reported as apperrors.ErrResourceNotFound.
type Storage interface {
	// Upload writes data under key, replacing any existing object
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error

	// Download opens the object stored under key; the caller closes it
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored under key
	Exists(ctx context.Context, key string) (bool, error)
}
