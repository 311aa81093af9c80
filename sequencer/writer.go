package sequencer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/scitt-community/merklelog-engine/bloom"
	"github.com/scitt-community/merklelog-engine/ids"
	"github.com/scitt-community/merklelog-engine/massifs"
	"github.com/scitt-community/merklelog-engine/mmr"
	"github.com/scitt-community/merklelog-engine/storage"
)

// MassifWriter is the single per-log writer responsible for placing
// leaves and MMR interior nodes into a log's tail massif blob.
type MassifWriter struct {
	store        storage.BlobStore
	hasher       Hasher
	massifHeight uint8
}

// NewMassifWriter constructs a writer bound to store, hashing interior
// nodes with hasher, for logs of the given massif height.
func NewMassifWriter(store storage.BlobStore, hasher Hasher, massifHeight uint8) *MassifWriter {
	return &MassifWriter{store: store, hasher: hasher, massifHeight: massifHeight}
}

// tailState describes the currently open massif blob for a log.
type tailState struct {
	massifIndex       uint64
	data              []byte
	leavesAlreadyHere uint64
	capacity          uint64
	path              string
}

// openTail loads (or creates) the massif blob for logId at massifIndex;
// it does not look at later massif indices.
func (w *MassifWriter) openTail(ctx context.Context, logId ids.LogId, massifIndex uint64) (*tailState, error) {
	capacity := massifs.LeafCountForHeight(w.massifHeight)
	path := massifs.FormatStoragePath(logId.String(), uint64(w.massifHeight), massifIndex, massifs.KindMassif)

	data, err := w.store.Get(ctx, path)
	if err == storage.ErrNotFound {
		data = w.newMassifBlob()
		return &tailState{massifIndex: massifIndex, data: data, leavesAlreadyHere: 0, capacity: capacity, path: path}, nil
	}
	if err != nil {
		return nil, err
	}

	n, err := massifs.MassifLogEntries(uint64(len(data)), w.massifHeight)
	if err != nil {
		return nil, err
	}
	leaves := leavesFromAppendEntries(n, capacity)
	return &tailState{massifIndex: massifIndex, data: data, leavesAlreadyHere: leaves, capacity: capacity, path: path}, nil
}

// newMassifBlob allocates a zero-valued blob with every fixed region
// present at its correct size, ready to accept its first leaf.
func (w *MassifWriter) newMassifBlob() []byte {
	leafCount := massifs.LeafCountForHeight(w.massifHeight)
	end := massifs.PeakStackEnd(w.massifHeight)
	buf := make([]byte, end)

	mBits := bloom.MBitsSafeCast(bloom.MBitsV1(leafCount, massifs.BloomBitsPerElement))
	hdr := bloom.HeaderV1{BitOrder: bloom.BitOrderLSB0, K: massifs.BloomHashRounds, MBits: mBits}
	_ = bloom.EncodeHeaderV1(buf[massifs.StartHeaderBytes:massifs.StartHeaderBytes+massifs.IndexHeaderBytes], hdr)

	return buf
}

// leavesFromAppendEntries inverts the append-region node count back to a
// leaf count, by replaying the MMR "add leaf" carry procedure. Bounded
// by capacity, which is the realistic size of one massif.
func leavesFromAppendEntries(entries uint64, capacity uint64) uint64 {
	var nodes uint64
	var leaves uint64
	for leaves < capacity && nodes < entries {
		nodes += 1 + mmr.SpurHeightLeaf(leaves)
		leaves++
	}
	return leaves
}

// Append writes up to len(writes) leaves into the log's current tail
// massif(s), rolling over to a new massif when the tail fills, and
// persists every touched blob. It returns the per-massif commit results
// in write order.
func (w *MassifWriter) Append(ctx context.Context, logId ids.LogId, startMassifIndex uint64, writes []LeafWrite) ([]CommitResult, error) {
	var results []CommitResult
	massifIndex := startMassifIndex
	remaining := writes

	for len(remaining) > 0 {
		tail, err := w.openTail(ctx, logId, massifIndex)
		if err != nil {
			return results, err
		}

		firstLeafOfTail := mmr.MassifFirstLeafIndex(w.massifHeight, massifIndex)
		leafTableStart := massifs.LeafTableStartByteOffset(w.massifHeight)
		leafCountAvailable := tail.capacity - tail.leavesAlreadyHere

		batch := remaining
		if uint64(len(batch)) > leafCountAvailable {
			batch = batch[:leafCountAvailable]
		}

		for i, lw := range batch {
			k := tail.leavesAlreadyHere + uint64(i)
			leafIndex := firstLeafOfTail + k

			if err := w.putOrCheckLeaf(tail.data, leafTableStart, k, lw); err != nil {
				return results, err
			}
			if err := w.appendInteriorNodes(tail, leafIndex, lw.ValueBytes); err != nil {
				return results, err
			}
		}

		if err := w.store.Put(ctx, tail.path, tail.data, false); err != nil {
			return results, err
		}

		results = append(results, CommitResult{
			LogId:          logId,
			LeavesWritten:  len(batch),
			FirstLeafIndex: firstLeafOfTail + tail.leavesAlreadyHere,
			MassifHeight:   w.massifHeight,
		})

		remaining = remaining[len(batch):]
		massifIndex++
	}

	return results, nil
}

// putOrCheckLeaf writes a leaf record at ordinal k, or, if a record
// already occupies that ordinal, verifies the existing content hash
// matches (idempotent retry) and fails with ErrLeafConflict otherwise.
func (w *MassifWriter) putOrCheckLeaf(blob []byte, leafTableStart, k uint64, lw LeafWrite) error {
	leafTable := blob[leafTableStart:]
	off := massifs.LeafRecordOffset(k)
	existing := leafTable[off : off+massifs.LeafRecordBytes]
	if !isZero(existing) {
		if !bytes.Equal(massifs.LeafValueBytes(leafTable, k), lw.ValueBytes[:]) {
			return fmt.Errorf("%w: leaf ordinal %d", ErrLeafConflict, k)
		}
		return nil
	}
	massifs.PutLeafRecord(leafTable, k, uint64(lw.IdTimestamp), lw.ValueBytes[:], lw.Extra1[:], lw.Extra2[:], lw.Extra3[:])
	return nil
}

// appendInteriorNodes grows the blob's append-only MMR log region by
// 1+trailing-ones(local leaf ordinal) 32-byte node values: the leaf's
// own node, then one parent per completed pair, climbing the PeakStack
// slot for each height until it reaches a height with no pending
// partner to pair against.
func (w *MassifWriter) appendInteriorNodes(tail *tailState, leafIndex uint64, leafValue [32]byte) error {
	local := leafIndex - mmr.MassifFirstLeafIndex(w.massifHeight, tail.massifIndex)

	node := leafValue
	tail.data = append(tail.data, node[:]...)

	carries := mmr.SpurHeightLeaf(local)
	var height uint64
	for ; height < carries; height++ {
		sibling := w.peakAt(tail, height)
		node = w.hasher.Node(sibling, node)
		tail.data = append(tail.data, node[:]...)
	}
	w.setPeakAt(tail, height, node)
	return nil
}

// peakAt and setPeakAt manage the blob's fixed PeakStack region as an
// array of one pending-node slot per height.
func (w *MassifWriter) peakAt(tail *tailState, height uint64) [32]byte {
	off := massifs.PeakStackStartByteOffset(w.massifHeight) + height*32
	var v [32]byte
	copy(v[:], tail.data[off:off+32])
	return v
}

func (w *MassifWriter) setPeakAt(tail *tailState, height uint64, v [32]byte) {
	off := massifs.PeakStackStartByteOffset(w.massifHeight) + height*32
	copy(tail.data[off:off+32], v[:])
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
