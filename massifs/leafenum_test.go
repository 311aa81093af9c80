package massifs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeafEnumeratorMatchesDirectRead(t *testing.T) {
	h := uint8(3) // capacity 4 leaves
	leafCount := LeafCountForHeight(h)
	tableStart := LeafTableStartByteOffset(h)
	buf := make([]byte, tableStart+leafCount*LeafRecordBytes)
	table := buf[tableStart:]

	value := make([]byte, 32)
	for k := uint64(0); k < leafCount; k++ {
		value[0] = byte(k)
		PutLeafRecord(table, k, 1000+k, value, nil, nil, nil)
	}

	enumerator, err := NewLeafEnumerator(buf, h, 1, 2, LeafFields{IdTimestamp: true, ValueBytes: true})
	require.NoError(t, err)

	var got []LeafEntry
	for {
		e, ok := enumerator.Next()
		if !ok {
			break
		}
		got = append(got, e)
	}
	require.Len(t, got, 2)

	for i, e := range got {
		k := uint64(1 + i)
		assert.Equal(t, 1000+k, e.IdTimestamp)
		assert.Equal(t, LeafValueBytes(table, k), e.ValueBytes)
	}
}

func TestLeafEnumeratorOutOfBounds(t *testing.T) {
	h := uint8(3)
	_, err := NewLeafEnumerator(make([]byte, 1), h, 3, 2, LeafFields{})
	require.ErrorIs(t, err, ErrLeafRangeOutOfBounds)
}
