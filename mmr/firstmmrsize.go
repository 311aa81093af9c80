package mmr

// FirstMMRSize returns the first complete MMR size that contains the
// given mmrIndex. MMR sizes are not contiguous over mmrIndex because of
// the interior "backfill" nodes added alongside each leaf, so this walk
// is the safe way to recover a size from an index.
func FirstMMRSize(mmrIndex uint64) uint64 {
	i := mmrIndex
	h0 := IndexHeight(i)
	h1 := IndexHeight(i + 1)
	for h0 < h1 {
		i++
		h0 = h1
		h1 = IndexHeight(i + 1)
	}
	return i + 1
}
