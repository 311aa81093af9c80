// Package ids defines the engine's scalar identifier types: LogId,
// ContentHash and IdTimestamp.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
)

// LogId is an opaque 16-byte log identifier backed by a UUID. Its
// string form is the canonical hyphenated hex form.
type LogId uuid.UUID

// NewLogId generates a fresh random LogId.
func NewLogId() LogId {
	return LogId(uuid.New())
}

// ParseLogId parses the canonical string form of a LogId.
func ParseLogId(s string) (LogId, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return LogId{}, err
	}
	return LogId(u), nil
}

func (id LogId) String() string { return uuid.UUID(id).String() }

// Bytes returns the 16 raw identifier bytes.
func (id LogId) Bytes() []byte {
	b := uuid.UUID(id)
	return b[:]
}

// ContentHash is the 32-byte SHA-256 of a signed statement's bytes: the
// committed value stored in a leaf record.
type ContentHash [32]byte

// ErrBadContentHashSize is returned when decoding a ContentHash from a
// byte slice of the wrong length.
var ErrBadContentHashSize = errors.New("ids: content hash must be 32 bytes")

// HashContent computes the ContentHash of a signed statement's bytes.
func HashContent(statement []byte) ContentHash {
	return ContentHash(sha256.Sum256(statement))
}

// ContentHashFromBytes decodes a ContentHash from exactly 32 bytes.
func ContentHashFromBytes(b []byte) (ContentHash, error) {
	if len(b) != 32 {
		return ContentHash{}, ErrBadContentHashSize
	}
	var h ContentHash
	copy(h[:], b)
	return h, nil
}

func (h ContentHash) String() string { return hex.EncodeToString(h[:]) }

// IdTimestamp is a 64-bit, sortable, monotonically nondecreasing
// identifier assigned at enqueue time.
type IdTimestamp uint64
