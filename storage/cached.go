package storage

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedBlobStore wraps a BlobStore with an in-process LRU read cache,
// so repeat reads of a log's hot tail massif (the sequencer re-opens it
// on every Append, readers re-fetch it on every query) don't each incur
// a network or disk round trip.
type CachedBlobStore struct {
	BlobStore
	cache *lru.Cache[string, []byte]
}

// NewCachedBlobStore wraps inner with an LRU cache holding up to size
// blobs.
func NewCachedBlobStore(inner BlobStore, size int) (*CachedBlobStore, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachedBlobStore{BlobStore: inner, cache: cache}, nil
}

// Get serves from cache when present, otherwise falls through to inner
// and populates the cache.
func (c *CachedBlobStore) Get(ctx context.Context, path string) ([]byte, error) {
	if v, ok := c.cache.Get(path); ok {
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	}
	data, err := c.BlobStore.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(path, data)
	return data, nil
}

// Put writes through to inner and invalidates any cached copy, so the
// next Get re-reads the authoritative bytes rather than serving a stale
// pre-append version of a still-growing massif tail.
func (c *CachedBlobStore) Put(ctx context.Context, path string, data []byte, failIfExists bool) error {
	if err := c.BlobStore.Put(ctx, path, data, failIfExists); err != nil {
		return err
	}
	c.cache.Remove(path)
	return nil
}
