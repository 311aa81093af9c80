// Package storage defines the engine's narrow storage contracts: a
// path-addressed blob store for massif and checkpoint data, and a
// minimal key-value store. Concrete bindings to a
// cloud blob service are out of scope; callers wire a real
// implementation behind these interfaces.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by BlobStore.Get and KVStore.Get when the key
// has no stored value.
var ErrNotFound = errors.New("storage: not found")

// ErrAlreadyExists is returned by BlobStore.Put when failIfExists is set
// and the key is already populated.
var ErrAlreadyExists = errors.New("storage: already exists")

// BlobStore is the append-mostly object store backing massif and
// checkpoint blobs. Paths are produced by massifs.FormatStoragePath.
type BlobStore interface {
	// Get retrieves the full contents stored at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// GetRange retrieves up to n bytes starting at offset. n < 0 means
	// read to the end.
	GetRange(ctx context.Context, path string, offset int64, n int64) ([]byte, error)

	// Put stores data at path. If failIfExists is true, Put returns
	// ErrAlreadyExists rather than overwriting an existing object.
	Put(ctx context.Context, path string, data []byte, failIfExists bool) error

	// Head reports whether an object exists at path and its size.
	Head(ctx context.Context, path string) (size int64, exists bool, err error)
}

// KVStore is a minimal durable key-value interface. The sequenced-index
// cache (package cache) does not use it; it keeps its rows in SQLite.
// Implementations need not support range scans.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
