package ecs

import "math/bits"

// bitset is a growable set of small non-negative integers (component ids).
type bitset []uint64

func (b *bitset) set(i int) {
	word := i / 64
	for len(*b) <= word {
		*b = append(*b, 0)
	}
	(*b)[word] |= 1 << uint(i%64)
}

func (b *bitset) unset(i int) {
	word := i / 64
	if word >= len(*b) {
		return
	}
	(*b)[word] &^= 1 << uint(i%64)
}

func (b bitset) has(i int) bool {
	word := i / 64
	if word >= len(b) {
		return false
	}
	return b[word]&(1<<uint(i%64)) != 0
}

func (b bitset) count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

func (b *bitset) reset() {
	clear(*b)
}

// each calls fn for every member in ascending order
func (b bitset) each(fn func(i int)) {
	for word, w := range b {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			fn(word*64 + bit)
			w &^= 1 << uint(bit)
		}
	}
}

// or adds every member of other to b.
func (b *bitset) or(other bitset) {
	for len(*b) < len(other) {
		*b = append(*b, 0)
	}
	for i, w := range other {
		(*b)[i] |= w
	}
}
