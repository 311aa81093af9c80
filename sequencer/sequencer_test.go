package sequencer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scitt-community/merklelog-engine/ids"
	"github.com/scitt-community/merklelog-engine/massifs"
	"github.com/scitt-community/merklelog-engine/queue"
	"github.com/scitt-community/merklelog-engine/storage"
)

type zeroTail struct{}

func (zeroTail) TailMassifIndex(ctx context.Context, logId ids.LogId) (uint64, error) {
	return 0, nil
}

type fakeResolver struct {
	found map[ids.ContentHash]bool
}

func (r fakeResolver) Resolve(ctx context.Context, h ids.ContentHash) (bool, error) {
	return r.found[h], nil
}

func fixedClock(t int64) queue.Clock { return func() int64 { return t } }

func TestSequenceBatchCommitsAndAcks(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemBlobStore()
	writer := NewMassifWriter(store, xorHasher{}, 3)
	s := NewSequencer(writer, zeroTail{}, nil, nil, "poller-1", 3)

	logId := ids.NewLogId()
	shard := queue.NewShard(0, 100, 64, nil, fixedClock(1000))

	hash := ids.ContentHash{0x01}
	seq, err := shard.Enqueue(logId, hash, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seq)

	resp, err := shard.Pull("poller-1", 10, 60000)
	require.NoError(t, err)
	require.Len(t, resp.LogGroups, 1)

	require.NoError(t, s.SequenceBatch(ctx, shard, resp))

	stats := shard.Stats()
	assert.Equal(t, 0, stats.Pending)

	path := massifs.FormatStoragePath(logId.String(), 3, 0, massifs.KindMassif)
	data, err := store.Get(ctx, path)
	require.NoError(t, err)
	leafTableStart := massifs.LeafTableStartByteOffset(3)
	assert.Equal(t, hash[:], massifs.LeafValueBytes(data[leafTableStart:], 0))
}

func TestSequenceBatchSkipsAlreadySequenced(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemBlobStore()
	writer := NewMassifWriter(store, xorHasher{}, 3)

	logId := ids.NewLogId()
	hash := ids.ContentHash{0x02}
	resolver := fakeResolver{found: map[ids.ContentHash]bool{hash: true}}
	s := NewSequencer(writer, zeroTail{}, resolver, nil, "poller-1", 3)

	shard := queue.NewShard(0, 100, 64, nil, fixedClock(1000))
	_, err := shard.Enqueue(logId, hash, nil)
	require.NoError(t, err)

	resp, err := shard.Pull("poller-1", 10, 60000)
	require.NoError(t, err)

	require.NoError(t, s.SequenceBatch(ctx, shard, resp))

	// already-sequenced entry is acked off the queue without ever being
	// written to a massif blob.
	stats := shard.Stats()
	assert.Equal(t, 0, stats.Pending)

	path := massifs.FormatStoragePath(logId.String(), 3, 0, massifs.KindMassif)
	_, err = store.Get(ctx, path)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
