package mmr

import "errors"

// ErrIndexOutOfRange is returned when an inclusion proof is requested
// for an MMR index beyond the last committed index.
var ErrIndexOutOfRange = errors.New("mmr: index out of range")

// InclusionProofPath returns the zero-based MMR indices of the sibling
// nodes on the path from node i up to its containing peak, for an MMR
// whose last committed index is mmrLastIndex. Callers resolve these
// indices to hashes against their own node storage; this package never
// touches node values.
func InclusionProofPath(mmrLastIndex uint64, i uint64) ([]uint64, error) {
	if i > mmrLastIndex {
		return nil, ErrIndexOutOfRange
	}

	var path []uint64
	g := IndexHeight(i)

	for {
		siblingOffset := uint64(2) << g

		var iSibling uint64
		if IndexHeight(i+1) > g {
			iSibling = i - siblingOffset + 1
			i++
		} else {
			iSibling = i + siblingOffset - 1
			i += siblingOffset
		}

		if iSibling > mmrLastIndex {
			return path, nil
		}

		path = append(path, iSibling)
		g++
	}
}

// PeakIndexForProof returns the index, in a peaks-highest-first
// accumulator for an MMR of size mmrSize, of the peak committing a node
// whose inclusion proof has length proofLen and whose own height is
// heightIndex. For leaf proofs, heightIndex is 0.
func PeakIndexForProof(mmrSize uint64, proofLen int, heightIndex uint8) int {
	peakMap := PeaksBitmap(mmrSize)
	return PeakIndex(peakMap, int(heightIndex)+proofLen)
}
