package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrNotFound = errors.New("blob not found")

// Store is the blob-storage boundary: namespaced paths in, public retrieval
// paths out. Implementations must treat Put as create-or-replace and Remove
// of a missing path as ErrNotFound.
type Store interface {
	Put(ctx context.Context, path string, r io.Reader) error

	Remove(ctx context.Context, path string) error

	// Walk visits every stored blob under prefix with its last-modified
	// time. Visit order is unspecified.
	Walk(ctx context.Context, prefix string, fn func(path string, modTime time.Time) error) error

	// PublicPath maps a blob path to the public-facing path recorded on
	// attachment rows.
	PublicPath(path string) string

	// FromPublicPath is the inverse of PublicPath. It reports false when
	// the given path is not under this store's public prefix.
	FromPublicPath(public string) (string, bool)
}
