package mmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpurSumHeight(t *testing.T) {
	cases := map[uint64]uint64{5: 26, 4: 11, 3: 4}
	for height, want := range cases {
		assert.Equal(t, want, SpurSumHeight(height), "height=%d", height)
	}
}

func TestSpurHeightLeaf(t *testing.T) {
	want := []uint64{0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0, 4, 0, 1}
	for leafIndex, w := range want {
		assert.Equal(t, w, SpurHeightLeaf(uint64(leafIndex)), "leafIndex=%d", leafIndex)
	}
}

func TestLeafMinusSpurSum(t *testing.T) {
	want := []uint64{0, 1, 1, 2, 1, 2, 2, 3, 1, 2, 2, 3, 2, 3, 3, 4, 1, 2}
	for leafIndex, w := range want {
		assert.Equal(t, w, LeafMinusSpurSum(uint64(leafIndex)), "leafIndex=%d", leafIndex)
	}
}
