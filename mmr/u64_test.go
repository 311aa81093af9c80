package mmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU64Wrap(t *testing.T) {
	var max U64 = ^U64(0)
	assert.Equal(t, U64(0), max.Add(1))
	assert.Equal(t, max, U64(0).Sub(1))
}

func TestU64ShiftOutOfRange(t *testing.T) {
	_, err := U64(1).Shl(64)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = U64(1).Shr(64)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = U64(1).Shl(-1)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestU64ShiftInRange(t *testing.T) {
	v, err := U64(1).Shl(63)
	require.NoError(t, err)
	assert.Equal(t, U64(1)<<63, v)

	v, err = (U64(1) << 63).Shr(63)
	require.NoError(t, err)
	assert.Equal(t, U64(1), v)
}

func TestU64Mask(t *testing.T) {
	assert.Equal(t, U64(0), U64(0xff).Mask(0))
	assert.Equal(t, U64(0x0f), U64(0xff).Mask(4))
	assert.Equal(t, U64(0xff), U64(0xff).Mask(64))
}
