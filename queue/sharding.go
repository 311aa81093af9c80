package queue

import "strconv"

// Djb2 computes the djb2 hash of s over its UTF-8 bytes, modulo 2^32.
// This is deliberately non-cryptographic and must never be replaced
// without a coordinated reshard of all shard state.
func Djb2(s string) uint32 {
	var h uint32 = 5381
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}

// ShardIndex returns the shard index for logId given N shards.
func ShardIndex(logId string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(Djb2(logId) % uint32(n))
}

// ShardName returns the canonical name of shard i.
func ShardName(i int) string {
	return "shard-" + strconv.Itoa(i)
}
