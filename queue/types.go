// Package queue implements the sharded sequencing queue: a durable,
// single-writer-per-shard pending entry store that routes enqueue/pull/
// ack traffic for each log to exactly one shard.
package queue

import (
	"errors"

	"github.com/scitt-community/merklelog-engine/ids"
)

// PendingEntry is a statement waiting to be sequenced into a log's
// massif blob.
type PendingEntry struct {
	Seq          uint64
	LogId        ids.LogId
	ContentHash  ids.ContentHash
	Extras       []byte
	EnqueuedAtMs int64
}

// Lease grants a poller exclusive visibility of a seq range until it
// expires.
type Lease struct {
	PollerId    string
	ExpiresAtMs int64
}

// RecentEntry is a bounded observability record retained after an entry
// leaves pending, whether by ack or (in future) dead-lettering.
type RecentEntry struct {
	Seq          uint64
	LogId        ids.LogId
	ContentHash  ids.ContentHash
	EnqueuedAtMs int64
	AckedAtMs    int64 // 0 if not yet acked
	LeafIndex    uint64
	MassifIndex  uint64
	HasLeaf      bool
}

// LogGroup is a contiguous run of pending entries for one log, as
// returned by Pull.
type LogGroup struct {
	LogId   ids.LogId
	SeqLo   uint64
	SeqHi   uint64
	Entries []PendingEntry
}

// PullResponse is the result of a Pull call.
type PullResponse struct {
	Version     int
	LeaseExpiry int64
	LogGroups   []LogGroup
}

// QueueStats reports shard-level health.
type QueueStats struct {
	Pending            int
	DeadLetters        int
	OldestEntryAgeMs   int64
	HasOldestEntry     bool
	ActivePollers      int
	PullerLimitReached bool
	AvgAckLatencyMs    float64
}

// DeadLetter is a pending entry moved out of the sequencing path because
// of a LeafConflict or repeated failure.
type DeadLetter struct {
	Entry  PendingEntry
	Reason string
}

var (
	// ErrQueueFull is returned by Enqueue when the shard is at capacity.
	ErrQueueFull = errors.New("queue: full")

	// ErrNotLeasedByCaller is returned by Ack when the caller does not
	// hold a current lease covering the acked range.
	ErrNotLeasedByCaller = errors.New("queue: range not leased by caller")

	// ErrPollerLimitReached is returned by Pull when MAX_POLLERS distinct
	// leasing pollers are already active.
	ErrPollerLimitReached = errors.New("queue: poller limit reached")

	// ErrInvalidShard is returned when a shard index is out of [0, N).
	ErrInvalidShard = errors.New("queue: invalid shard index")
)

// QueueFullError carries the backpressure details a caller needs to
// retry sensibly.
type QueueFullError struct {
	PendingCount      int
	MaxPending        int
	RetryAfterSeconds int
}

func (e *QueueFullError) Error() string { return ErrQueueFull.Error() }
func (e *QueueFullError) Unwrap() error { return ErrQueueFull }

// RetryAfterSeconds computes the backpressure retry hint from fill ratio.
func RetryAfterSeconds(pendingCount, maxPending int) int {
	if maxPending <= 0 {
		return 30
	}
	ratio := float64(pendingCount) / float64(maxPending)
	switch {
	case ratio >= 1.0:
		return 30
	case ratio >= 0.9:
		return 10
	default:
		return 5
	}
}
