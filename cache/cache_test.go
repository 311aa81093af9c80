package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scitt-community/merklelog-engine/ids"
	"github.com/scitt-community/merklelog-engine/massifs"
	"github.com/scitt-community/merklelog-engine/mmr"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")
	c, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// buildMassifBlob writes n leaves, with idtimestamps idBase..idBase+n-1
// and distinct content hashes, into a freshly-sized massif blob for
// massifHeight.
func buildMassifBlob(massifHeight uint8, n uint64, idBase uint64, valueBase byte) []byte {
	end := massifs.PeakStackEnd(massifHeight)
	buf := make([]byte, end)
	leafTable := buf[massifs.LeafTableStartByteOffset(massifHeight):]
	for k := uint64(0); k < n; k++ {
		value := [32]byte{valueBase + byte(k)}
		massifs.PutLeafRecord(leafTable, k, idBase+k, value[:], nil, nil, nil)
	}
	return buf
}

func TestIngestAndResolve(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	const massifHeight uint8 = 3 // capacity 4
	blob := buildMassifBlob(massifHeight, 4, 0, 10)

	require.NoError(t, c.Ingest(ctx, blob, massifHeight, 0, 0, 4))

	var want ids.ContentHash
	want[0] = 11 // leaf ordinal 1's value
	entry, err := c.Resolve(ctx, want)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, ids.IdTimestamp(1), entry.IdTimestamp)
	assert.Equal(t, massifHeight, entry.MassifHeight)
	assert.Equal(t, mmr.MMRIndexFromLeafIndex(1), entry.MMRIndex)
}

func TestResolveMiss(t *testing.T) {
	c := openTestCache(t)
	entry, err := c.Resolve(context.Background(), ids.ContentHash{0xFF})
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestCapacityEvictionFIFO(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	const massifHeight uint8 = 3 // capacity 4
	massif0 := buildMassifBlob(massifHeight, 4, 0, 10)
	require.NoError(t, c.Ingest(ctx, massif0, massifHeight, 0, 0, 4))

	// massif 1 holds 2 more leaves for the same log; ingesting them
	// pushes total rows to 6, over the 4-row capacity, so the two
	// oldest (idtimestamp 0 and 1) must be evicted.
	massif1 := buildMassifBlob(massifHeight, 2, 4, 20)
	require.NoError(t, c.Ingest(ctx, massif1, massifHeight, 1, 0, 2))

	var rowCount int
	require.NoError(t, c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sequenced_index`).Scan(&rowCount))
	assert.Equal(t, 4, rowCount)

	var evicted ids.ContentHash
	evicted[0] = 10 // idtimestamp 0's value from massif 0
	entry, err := c.Resolve(ctx, evicted)
	require.NoError(t, err)
	assert.Nil(t, entry, "oldest entry should have been FIFO-evicted")

	// the newest ingested entries must still resolve.
	var newest ids.ContentHash
	newest[0] = 21 // massif1 ordinal 1's value (idtimestamp 5)
	entry, err = c.Resolve(ctx, newest)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, ids.IdTimestamp(5), entry.IdTimestamp)
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, ensureSchema(c.db))
	require.NoError(t, ensureSchema(c.db))
}

func TestOpenDoesNotCreateParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	_, err := os.Stat(dir)
	require.Error(t, err)

	path := filepath.Join(dir, "index.db")
	_, err = Open(path, nil)
	// Open does not create parent directories (unlike the teacher's
	// Store.Open); the caller is responsible for the log's data
	// directory existing. This documents that boundary rather than
	// asserting success.
	assert.Error(t, err)
}
