package mmr

import "math/bits"

// BitLength64 returns the number of bits needed to represent num (0 for
// num==0), i.e. floor(log2(num))+1.
func BitLength64(num uint64) uint64 { return uint64(bits.Len64(num)) }

// Log2Uint64 efficiently computes log base 2 of num.
func Log2Uint64(num uint64) uint64 { return uint64(bits.Len64(num) - 1) }

// AllOnes reports whether num, in binary, is all ones (num+1 is a power
// of two): this identifies a "perfect peak" position.
func AllOnes(num uint64) bool {
	return (uint64(1)<<bits.OnesCount64(num) - 1) == num
}
