package queue

import (
	"github.com/scitt-community/merklelog-engine/config"
	"github.com/scitt-community/merklelog-engine/telemetry"
)

// Manager owns the fixed-size shard set for a process and routes logs
// to shards by Djb2 hashing.
type Manager struct {
	shards []*Shard
}

// NewManager constructs N shards per cfg.ShardCount.
func NewManager(cfg config.QueueConfig, log telemetry.Logger, now Clock) *Manager {
	n := cfg.ShardCount
	if n < 1 {
		n = 1
	}
	m := &Manager{shards: make([]*Shard, n)}
	for i := 0; i < n; i++ {
		m.shards[i] = NewShard(i, cfg.MaxPending, cfg.MaxPollers, log, now)
	}
	return m
}

// Count returns the number of shards.
func (m *Manager) Count() int { return len(m.shards) }

// ShardFor returns the shard owning logId.
func (m *Manager) ShardFor(logId string) *Shard {
	return m.shards[ShardIndex(logId, len(m.shards))]
}

// Shard returns shard i, or an error if out of range.
func (m *Manager) Shard(i int) (*Shard, error) {
	if i < 0 || i >= len(m.shards) {
		return nil, ErrInvalidShard
	}
	return m.shards[i], nil
}

// All returns every shard, index order.
func (m *Manager) All() []*Shard { return m.shards }
