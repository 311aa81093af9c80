package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogIdRoundTrip(t *testing.T) {
	id := NewLogId()
	parsed, err := ParseLogId(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.Len(t, id.Bytes(), 16)
}

func TestParseLogIdBad(t *testing.T) {
	_, err := ParseLogId("not-a-uuid")
	assert.Error(t, err)
}

func TestContentHash(t *testing.T) {
	h := HashContent([]byte("hello"))
	assert.Len(t, h.String(), 64)

	h2, err := ContentHashFromBytes(h[:])
	require.NoError(t, err)
	assert.Equal(t, h, h2)

	_, err = ContentHashFromBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrBadContentHashSize)
}
