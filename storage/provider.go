package storage

import (
	"context"
	"io"
)

// Provider is the media store abstraction: originals and thumbnails are
// addressed by a relative path such as "uploads/<name>".
type Provider interface {
	// Save writes a file under the given path.
	Save(ctx context.Context, path string, file io.Reader, size int64) error

	// Get opens a stored file for reading.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a stored file.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a file is present.
	Exists(ctx context.Context, path string) (bool, error)

	// Health checks that the backing store is reachable.
	Health(ctx context.Context) error

	// Name returns the provider name.
	Name() string
}
