// Package config parses the engine's environment-variable knobs.
package config

import (
	"os"
	"strconv"

	"github.com/scitt-community/merklelog-engine/telemetry"
)

// QueueConfig holds the queue's operator-tunable bounds.
type QueueConfig struct {
	ShardCount int
	MaxPending int
	MaxPollers int
}

const (
	defaultShardCount = 1
	defaultMaxPending = 10000
	defaultMaxPollers = 64
)

// LoadQueueConfig reads QUEUE_SHARD_COUNT, MAX_PENDING and MAX_POLLERS
// from the environment. A missing value falls back to its default
// silently; an unparsable or non-positive value falls back to its default
// and is logged as a warning rather than failing startup.
func LoadQueueConfig(log telemetry.Logger) QueueConfig {
	return QueueConfig{
		ShardCount: envInt(log, "QUEUE_SHARD_COUNT", defaultShardCount),
		MaxPending: envInt(log, "MAX_PENDING", defaultMaxPending),
		MaxPollers: envInt(log, "MAX_POLLERS", defaultMaxPollers),
	}
}

func envInt(log telemetry.Logger, name string, def int) int {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		if log != nil {
			log.Warnw("invalid env value, using default", "name", name, "value", raw, "default", def)
		}
		return def
	}
	return v
}
