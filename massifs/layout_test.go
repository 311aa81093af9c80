package massifs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeakStackEndMonotonic(t *testing.T) {
	for h := uint8(1); h < 20; h++ {
		assert.Less(t, PeakStackEnd(h), PeakStackEnd(h+1), "height=%d", h)
	}
}

func TestMassifLogEntries(t *testing.T) {
	h := uint8(3)
	end := PeakStackEnd(h)

	n, err := MassifLogEntries(end, h)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	n, err = MassifLogEntries(end+3*32, h)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	_, err = MassifLogEntries(end-1, h)
	require.ErrorIs(t, err, ErrBlobTooShort)
}

func TestLeafTableStartByteOffsetFormula(t *testing.T) {
	for h := uint8(1); h < 10; h++ {
		leafCount := LeafCountForHeight(h)
		want := uint64(StartHeaderBytes) + IndexHeaderBytes + uint64(bloomBitsetsBytes(leafCount)) + FrontierStateBytes
		assert.Equal(t, want, LeafTableStartByteOffset(h), "height=%d", h)
	}
}
