package massifs

import "encoding/binary"

// Leaf record field offsets within a 128-byte record, per the fixed
// layout: idtimestamp(8) | valueBytes(32) | extra1(24) | extra2(32) | extra3(32).
const (
	leafIdTimestampOff = 0
	leafIdTimestampLen = 8
	leafValueOff       = leafIdTimestampOff + leafIdTimestampLen
	leafValueLen       = 32
	leafExtra1Off      = leafValueOff + leafValueLen
	leafExtra1Len      = 24
	leafExtra2Off      = leafExtra1Off + leafExtra1Len
	leafExtra2Len      = 32
	leafExtra3Off      = leafExtra2Off + leafExtra2Len
	leafExtra3Len      = 32
)

// LeafRecordOffset returns the byte offset, within a leaf table, of the
// record for leaf ordinal k.
func LeafRecordOffset(k uint64) uint64 {
	return k * LeafRecordBytes
}

// PutLeafRecord encodes a leaf record at ordinal k into leafTable.
// valueBytes must be exactly 32 bytes; extra1 is truncated/zero-padded to
// 24 bytes, extra2 and extra3 to 32 bytes each.
func PutLeafRecord(leafTable []byte, k uint64, idTimestamp uint64, valueBytes, extra1, extra2, extra3 []byte) {
	off := LeafRecordOffset(k)
	rec := leafTable[off : off+LeafRecordBytes]

	binary.BigEndian.PutUint64(rec[leafIdTimestampOff:leafIdTimestampOff+leafIdTimestampLen], idTimestamp)
	copy(rec[leafValueOff:leafValueOff+leafValueLen], valueBytes)

	clear(rec[leafExtra1Off : leafExtra1Off+leafExtra1Len])
	copy(rec[leafExtra1Off:leafExtra1Off+leafExtra1Len], extra1)
	clear(rec[leafExtra2Off : leafExtra2Off+leafExtra2Len])
	copy(rec[leafExtra2Off:leafExtra2Off+leafExtra2Len], extra2)
	clear(rec[leafExtra3Off : leafExtra3Off+leafExtra3Len])
	copy(rec[leafExtra3Off:leafExtra3Off+leafExtra3Len], extra3)
}

// LeafIdTimestamp reads the big-endian idtimestamp of leaf ordinal k.
func LeafIdTimestamp(leafTable []byte, k uint64) uint64 {
	off := LeafRecordOffset(k) + leafIdTimestampOff
	return binary.BigEndian.Uint64(leafTable[off : off+leafIdTimestampLen])
}

// LeafValueBytes returns a non-owning subview of the committed value for
// leaf ordinal k.
func LeafValueBytes(leafTable []byte, k uint64) []byte {
	off := LeafRecordOffset(k) + leafValueOff
	return leafTable[off : off+leafValueLen]
}

// LeafExtra1 returns a non-owning subview of extra1 for leaf ordinal k.
func LeafExtra1(leafTable []byte, k uint64) []byte {
	off := LeafRecordOffset(k) + leafExtra1Off
	return leafTable[off : off+leafExtra1Len]
}

// LeafExtra2 returns a non-owning subview of extra2 for leaf ordinal k.
func LeafExtra2(leafTable []byte, k uint64) []byte {
	off := LeafRecordOffset(k) + leafExtra2Off
	return leafTable[off : off+leafExtra2Len]
}

// LeafExtra3 returns a non-owning subview of extra3 for leaf ordinal k.
func LeafExtra3(leafTable []byte, k uint64) []byte {
	off := LeafRecordOffset(k) + leafExtra3Off
	return leafTable[off : off+leafExtra3Len]
}
