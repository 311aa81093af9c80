package mmr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJumpLeftPerfect(t *testing.T) {
	cases := map[uint64]uint64{13: 6, 10: 3, 6: 3, 18: 3}
	for pos, want := range cases {
		assert.Equal(t, want, JumpLeftPerfect(pos), "pos=%d", pos)
	}
}

func TestJumpRightSibling(t *testing.T) {
	cases := map[uint64]uint64{10: 13, 6: 9, 1: 2, 4: 5, 8: 9, 11: 12, 16: 17, 3: 6, 18: 21}
	for pos, want := range cases {
		assert.Equal(t, want, JumpRightSibling(pos), "pos=%d", pos)
	}
}

func TestIndexHeight(t *testing.T) {
	cases := map[uint64]uint64{9: 1, 11: 0, 12: 1, 13: 2, 21: 2}
	for i, want := range cases {
		assert.Equal(t, want, IndexHeight(i), "i=%d", i)
	}
}

func TestPosHeight(t *testing.T) {
	cases := map[uint64]uint64{10: 1, 12: 0, 13: 1, 14: 2, 22: 2, 15: 3}
	for pos, want := range cases {
		assert.Equal(t, want, PosHeight(pos), "pos=%d", pos)
	}
}

func TestLeftChild(t *testing.T) {
	type want struct {
		pos uint64
		ok  bool
	}
	cases := map[uint64]want{
		3:  {1, true},
		7:  {3, true},
		6:  {4, true},
		14: {10, true},
		8:  {0, false},
		1:  {0, false},
		2:  {0, false},
	}
	for pos, w := range cases {
		got, ok := LeftChild(pos)
		assert.Equal(t, w.pos, got, "pos=%d", pos)
		assert.Equal(t, w.ok, ok, "pos=%d", pos)
	}
}

func TestBitLength64(t *testing.T) {
	cases := map[uint64]uint64{13: 4, math.MaxUint64: 64, 1: 1, 2: 2, 3: 2}
	for num, want := range cases {
		assert.Equal(t, want, BitLength64(num), "num=%d", num)
	}
}
