// Package massifs defines the fixed-shape, bit-exact binary layout of a
// massif blob (the on-disk unit of a Merkle Mountain Range chunk), its
// storage path grammar, and the leaf record format used within it.
package massifs

import (
	"errors"

	"github.com/scitt-community/merklelog-engine/bloom"
	"github.com/scitt-community/merklelog-engine/mmr"
)

// Fixed region sizes, in bytes. Every massif blob, regardless of height,
// begins with the same StartHeader/IndexHeader/BloomBitsets/Frontier
// prefix shape; only BloomBitsets and LeafTable scale with leaf count.
const (
	StartHeaderBytes   = 256
	IndexHeaderBytes   = bloom.HeaderBytesV1 // 32, "bloom header v1"
	FrontierStateBytes = 544                 // Urkle v1 frontier, opaque to this package
	LeafRecordBytes    = 128
	MaxMmrHeight       = 64
	PeakStackBytes     = MaxMmrHeight * 32 // 2048, fixed regardless of massifHeight

	// BloomBitsPerElement and BloomHashRounds size and configure the
	// per-massif bloom bitsets; the filter count (4, parallel filters) and
	// header shape are fixed by the bloom package itself.
	BloomBitsPerElement = 10
	BloomHashRounds     = 4
)

var (
	ErrBadMassifHeight = errors.New("massifs: massifHeight must be in [1,64]")
	ErrBlobTooShort    = errors.New("massifs: blob shorter than its fixed regions require")
)

// LeafCountForHeight returns the fixed per-massif leaf capacity
// 2^(massifHeight-1).
func LeafCountForHeight(massifHeight uint8) uint64 {
	return mmr.LeafCountForMassifHeight(massifHeight)
}

// bloomBitsetsBytes returns the BloomBitsets region size for a massif
// with the given leaf capacity: 4*ceil(mBits/8), with mBits derived from
// leafCount by BloomBitsPerElement.
func bloomBitsetsBytes(leafCount uint64) uint32 {
	mBits := bloom.MBitsSafeCast(bloom.MBitsV1(leafCount, BloomBitsPerElement))
	return uint32(bloom.RegionBytesV1(mBits)) - IndexHeaderBytes
}

// indexDataBytes returns the combined size of the BloomBitsets,
// FrontierState and LeafTable regions for a massif with the given leaf
// capacity. The 256-byte StartHeader and the 32-byte IndexHeader are not
// included; PeakStackEnd adds them separately.
func indexDataBytes(leafCount uint64) uint64 {
	return uint64(bloomBitsetsBytes(leafCount)) + FrontierStateBytes + leafCount*LeafRecordBytes
}

// LeafTableStartByteOffset returns the byte offset of the first leaf
// record: everything before the leaf table (StartHeader, IndexHeader,
// BloomBitsets, FrontierState).
func LeafTableStartByteOffset(massifHeight uint8) uint64 {
	leafCount := LeafCountForHeight(massifHeight)
	return StartHeaderBytes + IndexHeaderBytes + uint64(bloomBitsetsBytes(leafCount)) + FrontierStateBytes
}

// PeakStackStartByteOffset returns the byte offset of the peak stack
// region: the leaf table start plus the leaf table itself.
func PeakStackStartByteOffset(massifHeight uint8) uint64 {
	leafCount := LeafCountForHeight(massifHeight)
	return LeafTableStartByteOffset(massifHeight) + leafCount*LeafRecordBytes
}

// PeakStackEnd returns the byte offset of the first byte after the
// fixed-shape prefix (StartHeader through PeakStack) for a massif of the
// given height: the boundary past which only 32-byte append-region
// entries (MMR nodes) are ever written.
func PeakStackEnd(massifHeight uint8) uint64 {
	leafCount := LeafCountForHeight(massifHeight)
	return StartHeaderBytes + IndexHeaderBytes + indexDataBytes(leafCount) + PeakStackBytes
}

// MassifLogEntries returns the count of 32-byte MMR nodes appended past
// the fixed prefix of a blob of length blobLen, for a massif of the
// given height. It fails with ErrBlobTooShort if blobLen is less than
// the fixed prefix size; per invariant I1, (blobLen - PeakStackEnd(h))
// must be a multiple of 32.
func MassifLogEntries(blobLen uint64, massifHeight uint8) (uint64, error) {
	if massifHeight == 0 || massifHeight > MaxMmrHeight {
		return 0, ErrBadMassifHeight
	}
	end := PeakStackEnd(massifHeight)
	if blobLen < end {
		return 0, ErrBlobTooShort
	}
	return (blobLen - end) / 32, nil
}
