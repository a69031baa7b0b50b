package ml

import "math/bits"

// MurmurHash3 x86 32-bit. The training side hashes n-grams with mmh3 and
// the feature indices baked into the model depend on every bit of the
// result, so this must match the reference algorithm exactly. All
// arithmetic is uint32 with wraparound.

const (
	murmurC1 = 0xcc9e2d51
	murmurC2 = 0x1b873593
)

// Murmur3Sum32 hashes data with the given seed. It is defined for every
// byte sequence including the empty one.
func Murmur3Sum32(data []byte, seed uint32) uint32 {
	h := seed
	blocks := len(data) / 4

	for i := 0; i < blocks; i++ {
		k := uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
		k *= murmurC1
		k = bits.RotateLeft32(k, 15)
		k *= murmurC2
		h ^= k
		h = bits.RotateLeft32(h, 13)
		h = h*5 + 0xe6546b64
	}

	// tail: 1-3 leftover bytes, no block mix
	var k uint32
	tail := data[blocks*4:]
	switch len(tail) {
	case 3:
		k ^= uint32(tail[2]) << 16
		fallthrough
	case 2:
		k ^= uint32(tail[1]) << 8
		fallthrough
	case 1:
		k ^= uint32(tail[0])
		k *= murmurC1
		k = bits.RotateLeft32(k, 15)
		k *= murmurC2
		h ^= k
	}

	// finalization avalanche
	h ^= uint32(len(data))
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// HashToken hashes a token string over its UTF-8 bytes with seed 0, the
// convention used for every feature index in this repo.
func HashToken(token string) uint32 {
	return Murmur3Sum32([]byte(token), 0)
}
