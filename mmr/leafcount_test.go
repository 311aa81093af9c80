package mmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeafCountForMassifHeight(t *testing.T) {
	assert.Equal(t, uint64(1), LeafCountForMassifHeight(1))
	assert.Equal(t, uint64(4), LeafCountForMassifHeight(3))
	assert.Equal(t, uint64(1<<20), LeafCountForMassifHeight(21))
}

func TestLeafCountRoundTrip(t *testing.T) {
	for leafIndex := uint64(0); leafIndex < 32; leafIndex++ {
		mmrIndex := MMRIndexFromLeafIndex(leafIndex)
		size := FirstMMRSize(mmrIndex)
		assert.Equal(t, leafIndex+1, LeafCount(size), "leafIndex=%d", leafIndex)
	}
}
