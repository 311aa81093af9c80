// Package sequencer turns pulled queue batches into durable massif blob
// writes: the single per-log writer that owns leaf and MMR interior
// node placement.
package sequencer

import (
	"errors"

	"github.com/scitt-community/merklelog-engine/ids"
)

// LeafWrite is one entry ready to be committed to a log's massif blob.
type LeafWrite struct {
	IdTimestamp ids.IdTimestamp
	ValueBytes  [32]byte // committed content hash
	Extra1      [24]byte
	Extra2      [32]byte
	Extra3      [32]byte
}

// CommitResult reports what one MassifWriter.Append call wrote into one
// massif, for the caller to ack against the originating shard. Append
// returns one CommitResult per massif it touched.
type CommitResult struct {
	LogId          ids.LogId
	LeavesWritten  int
	FirstLeafIndex uint64
	MassifHeight   uint8
}

// Hasher computes MMR interior node values. Node hashing is a pluggable
// concern: the engine commits opaque 32-byte values and never
// interprets them.
type Hasher interface {
	// Node combines a left and right child value into their parent.
	Node(left, right [32]byte) [32]byte
}

var (
	// ErrLeafConflict is returned when a write at an already-occupied
	// leaf offset carries a different contentHash than what is stored.
	ErrLeafConflict = errors.New("sequencer: leaf conflict")

	// ErrWrongLog is returned when a write targets a massif blob for a
	// different log than the one it was opened for.
	ErrWrongLog = errors.New("sequencer: massif blob belongs to a different log")
)
