package mmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMMRIndexFromLeafIndex(t *testing.T) {
	want := []uint64{0, 1, 3, 4, 7, 8, 10, 11, 15, 16, 18, 19, 22, 23, 25, 26, 31, 32, 34, 35, 38}
	for leafIndex, w := range want {
		assert.Equal(t, w, MMRIndexFromLeafIndex(uint64(leafIndex)), "leafIndex=%d", leafIndex)
	}
}

func TestMMRIndexInvariants(t *testing.T) {
	assert.Equal(t, uint64(0), MMRIndexFromLeafIndex(0))
	assert.Equal(t, uint64(1), MMRIndexFromLeafIndex(1))
	assert.Equal(t, uint64(3), MMRIndexFromLeafIndex(2))
}

func TestMassifFirstLeaf(t *testing.T) {
	// massifHeight=3 -> capacity 4 leaves/massif; massif 1's first leaf is
	// global leaf 4, whose MMR index is 7 (see TestMMRIndexFromLeafIndex).
	assert.Equal(t, uint64(7), MassifFirstLeaf(3, 1))

	for i := uint64(0); i < 5; i++ {
		assert.Less(t, MassifFirstLeaf(3, i), MassifFirstLeaf(3, i+1))
	}
}

func TestFirstMMRSize(t *testing.T) {
	want := []uint64{1, 3, 3, 4, 7, 7, 7, 8, 10, 10, 11}
	for mmrIndex, w := range want {
		assert.Equal(t, w, FirstMMRSize(uint64(mmrIndex)), "mmrIndex=%d", mmrIndex)
	}
}
