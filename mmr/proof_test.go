package mmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInclusionProofPathLeaf(t *testing.T) {
	// MMR of size 11 (mmrLastIndex 10); leaf at mmr index 0 proves against
	// siblings 1 and 5, reaching the peak at mmr index 6.
	path, err := InclusionProofPath(10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 5}, path)
}

func TestInclusionProofPathOutOfRange(t *testing.T) {
	_, err := InclusionProofPath(5, 9)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestPeaksOrdering(t *testing.T) {
	peaks := Peaks(18)
	require.Equal(t, []uint64{15, 18}, peaks)
}
