// Package cache implements the per-log sequenced-index cache: a compact
// contentHash -> (idtimestamp, mmrIndex, massifHeight) index that answers
// "has this been sequenced, and where?" without reading the massif blob,
// bounded to one massif's worth of rows and evicted FIFO by idtimestamp.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/scitt-community/merklelog-engine/ids"
	"github.com/scitt-community/merklelog-engine/massifs"
	"github.com/scitt-community/merklelog-engine/mmr"
	"github.com/scitt-community/merklelog-engine/telemetry"
)

const schema = `
CREATE TABLE IF NOT EXISTS sequenced_index (
    content_hash  BLOB PRIMARY KEY,
    idtimestamp   INTEGER NOT NULL,
    mmr_index     INTEGER NOT NULL,
    massif_height INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sequenced_index_idtimestamp ON sequenced_index(idtimestamp);
`

// IndexEntry is one resolved sequencing location for a content hash.
type IndexEntry struct {
	ContentHash  ids.ContentHash
	IdTimestamp  ids.IdTimestamp
	MMRIndex     uint64
	MassifHeight uint8
}

// Cache is a per-log SequencedIndex: {logId}/rangersequence in the
// spec's durable-object naming, backed here by one SQLite database per
// log.
type Cache struct {
	db  *sql.DB
	log telemetry.Logger
}

// Open opens or creates the SQLite database at path and ensures its
// schema, per the "ensureSchema is idempotent and guarded" requirement.
func Open(path string, log telemetry.Logger) (*Cache, error) {
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db, log: log}, nil
}

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("cache: apply schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ingest enumerates leaves [start, start+count) of the massif blob data
// for (massifHeight, massifIndex) and upserts their sequenced-index
// entries, then evicts oldest-by-idtimestamp entries exceeding capacity
// 2^(massifHeight-1).
func (c *Cache) Ingest(ctx context.Context, data []byte, massifHeight uint8, massifIndex uint64, start, count uint64) error {
	enum, err := massifs.NewLeafEnumerator(data, massifHeight, start, count, massifs.LeafFields{
		IdTimestamp: true,
		ValueBytes:  true,
	})
	if err != nil {
		return fmt.Errorf("cache: enumerate leaves: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cache: begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO sequenced_index (content_hash, idtimestamp, mmr_index, massif_height)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("cache: prepare upsert: %w", err)
	}
	defer stmt.Close()

	firstLeaf := mmr.MassifFirstLeafIndex(massifHeight, massifIndex)

	for {
		entry, ok := enum.Next()
		if !ok {
			break
		}
		globalLeafIndex := firstLeaf + entry.Ordinal
		mmrIndex := mmr.MMRIndexFromLeafIndex(globalLeafIndex)

		if _, err := stmt.ExecContext(ctx, entry.ValueBytes, entry.IdTimestamp, mmrIndex, massifHeight); err != nil {
			return fmt.Errorf("cache: upsert entry: %w", err)
		}
	}

	capacity := massifs.LeafCountForHeight(massifHeight)
	if err := evictOldest(ctx, tx, capacity); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cache: commit transaction: %w", err)
	}
	return nil
}

// evictOldest deletes rows oldest-by-idtimestamp until the table holds
// at most capacity rows.
func evictOldest(ctx context.Context, tx *sql.Tx, capacity uint64) error {
	var rowCount uint64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sequenced_index`).Scan(&rowCount); err != nil {
		return fmt.Errorf("cache: count rows: %w", err)
	}
	if rowCount <= capacity {
		return nil
	}
	excess := rowCount - capacity
	_, err := tx.ExecContext(ctx, `
		DELETE FROM sequenced_index
		WHERE content_hash IN (
			SELECT content_hash FROM sequenced_index ORDER BY idtimestamp ASC LIMIT ?
		)`, excess)
	if err != nil {
		return fmt.Errorf("cache: evict oldest: %w", err)
	}
	return nil
}

// Resolve looks up a content hash's sequencing location by primary key.
// A nil entry and nil error means not found.
func (c *Cache) Resolve(ctx context.Context, contentHash ids.ContentHash) (*IndexEntry, error) {
	var e IndexEntry
	e.ContentHash = contentHash
	var massifHeight uint64

	err := c.db.QueryRowContext(ctx, `
		SELECT idtimestamp, mmr_index, massif_height
		FROM sequenced_index WHERE content_hash = ?`, contentHash[:],
	).Scan(&e.IdTimestamp, &e.MMRIndex, &massifHeight)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache: resolve: %w", err)
	}
	e.MassifHeight = uint8(massifHeight)
	return &e, nil
}

// ResolveFound reports only whether contentHash has been sequenced,
// satisfying the sequencer package's narrower Resolver interface.
func (c *Cache) ResolveFound(ctx context.Context, contentHash ids.ContentHash) (bool, error) {
	entry, err := c.Resolve(ctx, contentHash)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

// SequencerResolver adapts Cache to sequencer.Resolver's narrower
// (found bool, err error) shape without that package needing to depend
// on cache.IndexEntry.
type SequencerResolver struct {
	*Cache
}

func (r SequencerResolver) Resolve(ctx context.Context, contentHash ids.ContentHash) (bool, error) {
	return r.Cache.ResolveFound(ctx, contentHash)
}
