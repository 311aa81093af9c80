package sequencer

import (
	"context"
	"errors"

	"github.com/avast/retry-go/v4"
	"github.com/scitt-community/merklelog-engine/ids"
	"github.com/scitt-community/merklelog-engine/queue"
	"github.com/scitt-community/merklelog-engine/telemetry"
)

// TailLocator resolves the massif index a log's sequencer should start
// writing at; in production this comes from scanning the object store
// for the highest existing massif under the log's prefix.
type TailLocator interface {
	TailMassifIndex(ctx context.Context, logId ids.LogId) (uint64, error)
}

// Resolver answers "has this content hash already been sequenced?",
// backed by the per-log sequenced-index cache. A batch re-pulled after
// its ack was lost (but whose blob write already landed) is filtered
// through this before Append, rather than relying on MassifWriter to
// detect the replay itself: by the time a stale lease expires and the
// batch is re-pulled, the writer's own tail bookkeeping has already
// moved past the offsets those entries occupy, so it has nothing left
// to compare against.
type Resolver interface {
	Resolve(ctx context.Context, contentHash ids.ContentHash) (found bool, err error)
}

// Sequencer drains pulled log groups from a queue shard and commits them
// to their log's massif blobs, acking on success.
type Sequencer struct {
	writer   *MassifWriter
	locate   TailLocator
	resolve  Resolver
	log      telemetry.Logger
	pollerId string
	retries  uint
}

// NewSequencer constructs a Sequencer. retries bounds the number of
// blob-write attempts per log group. When they are used up, the error is
// logged and the group is left unacked, so its lease expires and it is
// pulled again; no entry is moved to dead letters.
// resolve may be nil, in which case no already-sequenced filtering is
// performed.
func NewSequencer(writer *MassifWriter, locate TailLocator, resolve Resolver, log telemetry.Logger, pollerId string, retries uint) *Sequencer {
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	return &Sequencer{writer: writer, locate: locate, resolve: resolve, log: log.With("pollerId", pollerId), pollerId: pollerId, retries: retries}
}

// SequenceBatch drains one Pull response from shard, committing every
// log group and acking what it successfully wrote. A blob-write failure
// for one group does not block the others; it leaves that group's lease
// to expire so it is re-pulled.
func (s *Sequencer) SequenceBatch(ctx context.Context, shard *queue.Shard, resp queue.PullResponse) error {
	for _, group := range resp.LogGroups {
		if err := s.sequenceGroup(ctx, shard, group); err != nil {
			s.log.Warnw("failed to sequence log group", "logId", group.LogId.String(), "error", err)
		}
	}
	return nil
}

func (s *Sequencer) sequenceGroup(ctx context.Context, shard *queue.Shard, group queue.LogGroup) error {
	tailIndex, err := s.locate.TailMassifIndex(ctx, group.LogId)
	if err != nil {
		return err
	}

	entries := group.Entries
	if s.resolve != nil {
		entries = s.filterAlreadySequenced(ctx, entries)
	}
	if len(entries) == 0 {
		_, err := shard.Ack(s.pollerId, group.LogId, group.SeqLo, len(group.Entries), 0, 0)
		return err
	}

	writes := make([]LeafWrite, len(entries))
	for i, e := range entries {
		writes[i] = LeafWrite{
			IdTimestamp: ids.IdTimestamp(e.EnqueuedAtMs),
			ValueBytes:  e.ContentHash,
		}
	}

	var results []CommitResult
	err = retry.Do(
		func() error {
			var writeErr error
			results, writeErr = s.writer.Append(ctx, group.LogId, tailIndex, writes)
			return writeErr
		},
		retry.Attempts(s.retries),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			// a content mismatch at an already-written offset never
			// succeeds on retry, so it is returned at once instead of
			// burning attempts; the group is left unacked.
			return !errors.Is(err, ErrLeafConflict)
		}),
	)
	if err != nil {
		return err
	}

	leavesCommitted := 0
	for _, r := range results {
		leavesCommitted += r.LeavesWritten
	}
	if leavesCommitted == 0 {
		return nil
	}

	firstLeafIndex := results[0].FirstLeafIndex
	massifHeight := results[0].MassifHeight

	// Ack the full original range: entries filtered out as already
	// sequenced are as done as the ones just written, they just don't
	// get an accurate leafIndex recorded in the recent-entries ring.
	_, err = shard.Ack(s.pollerId, group.LogId, group.SeqLo, len(group.Entries), firstLeafIndex, massifHeight)
	return err
}

// filterAlreadySequenced drops entries whose content hash the per-log
// cache already reports as sequenced, so a batch re-pulled after a lost
// ack does not get written to the massif a second time.
func (s *Sequencer) filterAlreadySequenced(ctx context.Context, entries []queue.PendingEntry) []queue.PendingEntry {
	out := entries[:0:0]
	for _, e := range entries {
		found, err := s.resolve.Resolve(ctx, e.ContentHash)
		if err != nil {
			s.log.Warnw("resolve check failed, treating as not yet sequenced", "error", err)
			out = append(out, e)
			continue
		}
		if !found {
			out = append(out, e)
		}
	}
	return out
}
