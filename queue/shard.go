package queue

import (
	"sort"
	"sync"

	movingaverage "github.com/RobinUS2/golang-moving-average"

	"github.com/scitt-community/merklelog-engine/ids"
	"github.com/scitt-community/merklelog-engine/telemetry"
)

// ackLatencyWindow bounds how many recent ack latencies feed the
// smoothed Stats.AvgAckLatencyMs figure.
const ackLatencyWindow = 128

// Clock returns the current time in milliseconds since the Unix epoch.
// Tests substitute a deterministic clock.
type Clock func() int64

const recentCapacity = 1024

// Shard is a single-writer durable sequencing queue instance. All
// methods serialize on an internal mutex: the spec models a shard as a
// single-threaded cooperative task runtime, and a mutex gives the same
// external guarantee without requiring callers to run on one goroutine.
type Shard struct {
	mu sync.Mutex

	index      int
	maxPending int
	maxPollers int
	log        telemetry.Logger
	now        Clock

	nextSeq     uint64
	pending     map[uint64]PendingEntry
	leases      map[string]leaseRange // pollerId -> range
	leasedSeqs  map[uint64]string     // seq -> pollerId holding a live lease
	recent      []RecentEntry         // ring buffer, oldest first
	recentStart int                   // not updated; appendRecent trims recent from the front
	deadLetters []DeadLetter
	ackLatency  *movingaverage.MovingAverage
}

type leaseRange struct {
	pollerId string
	seqLo    uint64
	seqHi    uint64
	expires  int64
}

// NewShard constructs an empty shard. maxPending and maxPollers must be
// positive; log may be nil (noop logging is used).
func NewShard(index, maxPending, maxPollers int, log telemetry.Logger, now Clock) *Shard {
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	return &Shard{
		index:      index,
		maxPending: maxPending,
		maxPollers: maxPollers,
		log:        log.With("shard", ShardName(index)),
		now:        now,
		pending:    make(map[uint64]PendingEntry),
		leases:     make(map[string]leaseRange),
		leasedSeqs: make(map[uint64]string),
		ackLatency: movingaverage.New(ackLatencyWindow),
	}
}

// Enqueue admits a new pending entry, or fails with QueueFullError.
func (s *Shard) Enqueue(logId ids.LogId, contentHash ids.ContentHash, extras []byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) >= s.maxPending {
		err := &QueueFullError{
			PendingCount:      len(s.pending),
			MaxPending:        s.maxPending,
			RetryAfterSeconds: RetryAfterSeconds(len(s.pending), s.maxPending),
		}
		s.log.Warnw("enqueue rejected: queue full", "pendingCount", err.PendingCount, "maxPending", err.MaxPending)
		return 0, err
	}

	seq := s.nextSeq
	s.nextSeq++

	entry := PendingEntry{
		Seq:          seq,
		LogId:        logId,
		ContentHash:  contentHash,
		Extras:       extras,
		EnqueuedAtMs: s.now(),
	}
	s.pending[seq] = entry
	s.appendRecent(RecentEntry{
		Seq:          seq,
		LogId:        logId,
		ContentHash:  contentHash,
		EnqueuedAtMs: entry.EnqueuedAtMs,
	})
	return seq, nil
}

// Pull selects up to batchSize unleased (or lease-expired) entries in
// seq order, groups them contiguously by log, and installs a lease.
func (s *Shard) Pull(pollerId string, batchSize int, visibilityMs int64) (PullResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expireLeases(now)

	if _, active := s.leases[pollerId]; !active && s.countActivePollers(now) >= s.maxPollers {
		return PullResponse{}, ErrPollerLimitReached
	}

	seqs := make([]uint64, 0, len(s.pending))
	for seq := range s.pending {
		if _, leased := s.leasedSeqs[seq]; leased {
			continue
		}
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	if len(seqs) > batchSize {
		seqs = seqs[:batchSize]
	}

	if len(seqs) == 0 {
		return PullResponse{Version: 1, LeaseExpiry: now, LogGroups: nil}, nil
	}

	groups := groupContiguousByLog(s.pending, seqs)

	expiresAt := now + visibilityMs
	for _, seq := range seqs {
		s.leasedSeqs[seq] = pollerId
	}
	s.leases[pollerId] = leaseRange{
		pollerId: pollerId,
		seqLo:    seqs[0],
		seqHi:    seqs[len(seqs)-1],
		expires:  expiresAt,
	}

	return PullResponse{Version: 1, LeaseExpiry: expiresAt, LogGroups: groups}, nil
}

// groupContiguousByLog groups seqs (already sorted ascending) into
// per-log runs where both logId and seq contiguity hold.
func groupContiguousByLog(pending map[uint64]PendingEntry, seqs []uint64) []LogGroup {
	var groups []LogGroup
	var cur *LogGroup

	for _, seq := range seqs {
		e := pending[seq]
		if cur != nil && cur.LogId == e.LogId && seq == cur.SeqHi+1 {
			cur.SeqHi = seq
			cur.Entries = append(cur.Entries, e)
			continue
		}
		if cur != nil {
			groups = append(groups, *cur)
		}
		cur = &LogGroup{LogId: e.LogId, SeqLo: seq, SeqHi: seq, Entries: []PendingEntry{e}}
	}
	if cur != nil {
		groups = append(groups, *cur)
	}
	return groups
}

// Ack deletes up to limit pending entries for logId starting at seqLo,
// provided pollerId holds a covering lease. It records leaf/massif
// indices derived from firstLeafIndex for observability.
func (s *Shard) Ack(pollerId string, logId ids.LogId, seqLo uint64, limit int, firstLeafIndex uint64, massifHeight uint8) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expireLeases(now)

	lr, ok := s.leases[pollerId]
	if !ok || seqLo < lr.seqLo || seqLo > lr.seqHi {
		return 0, ErrNotLeasedByCaller
	}

	acked := 0
	seq := seqLo
	for acked < limit {
		entry, exists := s.pending[seq]
		if !exists {
			// already acked by a prior, retried call: idempotent no-op
			seq++
			if seq > lr.seqHi {
				break
			}
			continue
		}
		if entry.LogId != logId {
			break
		}
		leafIndex := firstLeafIndex + uint64(acked)
		massifIndex := leafIndex
		if massifHeight > 0 {
			massifIndex = leafIndex >> massifHeight
		}
		delete(s.pending, seq)
		delete(s.leasedSeqs, seq)
		s.markRecentAcked(seq, now, leafIndex, massifIndex)
		s.ackLatency.Add(float64(now - entry.EnqueuedAtMs))

		acked++
		seq++
		if seq > lr.seqHi {
			break
		}
	}

	if acked == 0 && limit > 0 {
		// nothing left for this poller's lease at seqLo: treat as an
		// already-applied replay rather than an error.
		return 0, nil
	}
	return acked, nil
}

// Stats reports current shard health.
func (s *Shard) Stats() QueueStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expireLeases(now)

	stats := QueueStats{
		Pending:            len(s.pending),
		DeadLetters:        len(s.deadLetters),
		ActivePollers:      s.countActivePollers(now),
		PullerLimitReached: s.countActivePollers(now) >= s.maxPollers,
		AvgAckLatencyMs:    s.ackLatency.Avg(),
	}
	var oldest int64
	for _, e := range s.pending {
		if !stats.HasOldestEntry || e.EnqueuedAtMs < oldest {
			oldest = e.EnqueuedAtMs
			stats.HasOldestEntry = true
		}
	}
	if stats.HasOldestEntry {
		stats.OldestEntryAgeMs = now - oldest
	}
	return stats
}

// RecentEntries returns up to limit most-recently-appended observability
// records, newest last.
func (s *Shard) RecentEntries(limit int) []RecentEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := make([]RecentEntry, limit)
	copy(out, s.recent[len(s.recent)-limit:])
	return out
}

func (s *Shard) appendRecent(e RecentEntry) {
	s.recent = append(s.recent, e)
	if len(s.recent) > recentCapacity {
		s.recent = s.recent[len(s.recent)-recentCapacity:]
	}
}

func (s *Shard) markRecentAcked(seq uint64, ackedAt int64, leafIndex, massifIndex uint64) {
	for i := len(s.recent) - 1; i >= 0; i-- {
		if s.recent[i].Seq == seq {
			s.recent[i].AckedAtMs = ackedAt
			s.recent[i].LeafIndex = leafIndex
			s.recent[i].MassifIndex = massifIndex
			s.recent[i].HasLeaf = true
			return
		}
	}
}

func (s *Shard) expireLeases(now int64) {
	for pollerId, lr := range s.leases {
		if lr.expires <= now {
			for seq, holder := range s.leasedSeqs {
				if holder == pollerId {
					delete(s.leasedSeqs, seq)
				}
			}
			delete(s.leases, pollerId)
		}
	}
}

func (s *Shard) countActivePollers(now int64) int {
	n := 0
	for _, lr := range s.leases {
		if lr.expires > now {
			n++
		}
	}
	return n
}
