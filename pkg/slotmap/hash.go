package slotmap

import (
	"encoding/binary"
	"math/bits"
)

// Component A: a deterministic, non-cryptographic 32-bit hash of a byte
// key. It is not required to be collision-resistant, only referentially
// transparent and endian-stable for a given platform word order — the
// same algorithm and 32-bit fetches are used regardless of length, so two
// runs on the same machine always agree.
//
// The mixing constants and the length-banded structure (0-4, 5-12, 13-24,
// >24 bytes) mirror a well known 32-bit string hash: two multiplicative
// constants combined through a rotate-multiply combiner (mix32) and a
// shift-xor-multiply finalizer (avalanche32), with the long-input path
// tracking three running states that are periodically byte-swapped and
// permuted.
const (
	hashC1 = 0xcc9e2d51
	hashC2 = 0x1b873593
)

// hash returns Component A's 32-bit hash of key. It never allocates and
// never returns an error: every byte sequence, including the empty one,
// has a well defined hash (the table itself rejects the empty key as a
// key, not the hash function).
func hash(key []byte) uint32 {
	n := len(key)

	switch {
	case n <= 4:
		return hashLen0to4(key)
	case n <= 12:
		return hashLen5to12(key)
	case n <= 24:
		return hashLen13to24(key)
	default:
		return hashLong(key)
	}
}

func fetch32(b []byte) uint32 {
	return binary.NativeEndian.Uint32(b)
}

func rotate32(val uint32, shift uint) uint32 {
	if shift == 0 {
		return val
	}

	return bits.RotateLeft32(val, -int(shift))
}

// avalanche32 is the finalizer: a 32-to-32 bit integer hash.
func avalanche32(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16

	return h
}

// mix32 is the combiner used throughout: h <- rotr(h ^ (rotr(a*c1,17)*c2), 19)*5 + 0xe6546b64,
// where rotr is rotate32, a right rotation.
func mix32(a, h uint32) uint32 {
	a *= hashC1
	a = rotate32(a, 17)
	a *= hashC2
	h ^= a
	h = rotate32(h, 19)

	return h*5 + 0xe6546b64
}

func hashLen0to4(s []byte) uint32 {
	var b uint32

	c := uint32(9)

	for _, ch := range s {
		b = b*hashC1 + uint32(int8(ch))
		c ^= b
	}

	return avalanche32(mix32(b, mix32(uint32(len(s)), c)))
}

func hashLen5to12(s []byte) uint32 {
	n := uint32(len(s))
	a := n
	b := a * 5
	c := uint32(9)
	d := b

	a += fetch32(s)
	b += fetch32(s[n-4:])
	c += fetch32(s[(n>>1)&4:])

	return avalanche32(mix32(c, mix32(b, mix32(a, d))))
}

func hashLen13to24(s []byte) uint32 {
	n := uint32(len(s))

	a := fetch32(s[n>>1-4:])
	b := fetch32(s[4:])
	c := fetch32(s[n-8:])
	d := fetch32(s[n>>1:])
	e := fetch32(s)
	f := fetch32(s[n-4:])
	h := n

	return avalanche32(mix32(f, mix32(e, mix32(d, mix32(c, mix32(b, mix32(a, h)))))))
}

func hashLong(s []byte) uint32 {
	n := uint32(len(s))

	h := n
	g := hashC1 * h
	f := g

	a0 := rotate32(fetch32(s[n-4:])*hashC1, 17) * hashC2
	a1 := rotate32(fetch32(s[n-8:])*hashC1, 17) * hashC2
	a2 := rotate32(fetch32(s[n-16:])*hashC1, 17) * hashC2
	a3 := rotate32(fetch32(s[n-12:])*hashC1, 17) * hashC2
	a4 := rotate32(fetch32(s[n-20:])*hashC1, 17) * hashC2

	h ^= a0
	h = rotate32(h, 19)
	h = h*5 + 0xe6546b64
	h ^= a2
	h = rotate32(h, 19)
	h = h*5 + 0xe6546b64

	g ^= a1
	g = rotate32(g, 19)
	g = g*5 + 0xe6546b64
	g ^= a3
	g = rotate32(g, 19)
	g = g*5 + 0xe6546b64

	f += a4
	f = rotate32(f, 19)
	f = f*5 + 0xe6546b64

	iters := (n - 1) / 20

	for range iters {
		b0 := rotate32(fetch32(s)*hashC1, 17) * hashC2
		b1 := fetch32(s[4:])
		b2 := rotate32(fetch32(s[8:])*hashC1, 17) * hashC2
		b3 := rotate32(fetch32(s[12:])*hashC1, 17) * hashC2
		b4 := fetch32(s[16:])

		h ^= b0
		h = rotate32(h, 18)
		h = h*5 + 0xe6546b64

		f += b1
		f = rotate32(f, 19)
		f *= hashC1

		g += b2
		g = rotate32(g, 18)
		g = g*5 + 0xe6546b64

		h ^= b3 + b1
		h = rotate32(h, 19)
		h = h*5 + 0xe6546b64

		g ^= b4
		g = bits.ReverseBytes32(g) * 5

		h += b4 * 5
		h = bits.ReverseBytes32(h)

		f += b0

		// PERMUTE3(f, h, g): rotate the three running states.
		f, h, g = g, f, h

		s = s[20:]
	}

	g = rotate32(g, 11) * hashC1
	g = rotate32(g, 17) * hashC1
	f = rotate32(f, 11) * hashC1
	f = rotate32(f, 17) * hashC1
	h = rotate32(h+g, 19)
	h = h*5 + 0xe6546b64
	h = rotate32(h, 17) * hashC1
	h = rotate32(h+f, 19)
	h = h*5 + 0xe6546b64
	h = rotate32(h, 17) * hashC1

	return h
}
