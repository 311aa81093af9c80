// Package mmr implements the pure arithmetic of a Merkle Mountain Range:
// conversion between leaf indices and MMR indices, node height, peak
// enumeration and the index-only inclusion proof path.
//
// None of this package does I/O. Every function is a closed-form or
// logarithmic-time computation over node positions; nothing here ever
// materializes a tree. The approach follows the mimblewimble pmmr.rs
// construction: post-order traversal (children first, left to right) of
// a binary tree is identical to MMR append order, so navigating the
// tree is pure binary arithmetic on the flat position sequence.
//
// # IndexHeight
//
// The height of a node is recovered from its one-based position by
// repeatedly jumping to the leftmost node of the same height (the
// largest perfect subtree preceding it) until an "all ones" position is
// reached; the popcount of that position minus one is the height. This
// is the single function most of the rest of the package builds on.
//
// # Spurs
//
// When an MMR is split into fixed-capacity chunks ("massifs" in this
// engine), each chunk after the first depends on interior nodes
// computed from earlier chunks. The count of those dependent nodes for
// a given leaf is its "spur sum" — counting, for each power of two, how
// many ancestor nodes are carried forward. massifFirstLeaf uses the
// same arithmetic to locate the first MMR index belonging to a given
// massif.
package mmr

import "errors"

// ErrOutOfRange is returned by U64 shl/shr when the shift amount falls
// outside [0,63].
var ErrOutOfRange = errors.New("mmr: shift amount out of range [0,63]")
