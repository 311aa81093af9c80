package queue

import (
	"time"

	buffer "github.com/globocom/go-buffer"

	"github.com/scitt-community/merklelog-engine/ids"
	"github.com/scitt-community/merklelog-engine/telemetry"
)

// enqueueItem is one statement waiting to be admitted to a shard via a
// BatchEnqueuer.
type enqueueItem struct {
	logId       ids.LogId
	contentHash ids.ContentHash
	extras      []byte
}

// shardPusher adapts a Manager to go-buffer's flush callback, routing
// each flushed item to its log's shard.
type shardPusher struct {
	mgr *Manager
	log telemetry.Logger
}

func (p shardPusher) Push(items []interface{}) {
	for _, raw := range items {
		item, ok := raw.(enqueueItem)
		if !ok {
			continue
		}
		shard := p.mgr.ShardFor(item.logId.String())
		if _, err := shard.Enqueue(item.logId, item.contentHash, item.extras); err != nil {
			p.log.Warnw("batched enqueue failed", "logId", item.logId.String(), "error", err)
		}
	}
}

// BatchEnqueuer buffers Submit calls and admits them to their shards in
// flushes, trading a small bounded latency for decoupling callers from
// the shards. Each flushed item still goes through its own
// Shard.Enqueue call.
type BatchEnqueuer struct {
	buf *buffer.Buffer
}

// NewBatchEnqueuer constructs a BatchEnqueuer that flushes to mgr every
// flushInterval, or after size submissions, whichever comes first.
func NewBatchEnqueuer(mgr *Manager, log telemetry.Logger, size int, flushInterval time.Duration) *BatchEnqueuer {
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	b := buffer.New(
		buffer.WithSize(size),
		buffer.WithFlushInterval(flushInterval),
		buffer.WithPusher(shardPusher{mgr: mgr, log: log}),
	)
	return &BatchEnqueuer{buf: b}
}

// Submit queues a statement through the batcher; it is admitted to its
// shard on the next flush rather than synchronously.
func (b *BatchEnqueuer) Submit(logId ids.LogId, contentHash ids.ContentHash, extras []byte) {
	b.buf.Push(enqueueItem{logId: logId, contentHash: contentHash, extras: extras})
}

// Close flushes any buffered items and stops the background flush timer.
func (b *BatchEnqueuer) Close() error {
	return b.buf.Close()
}
