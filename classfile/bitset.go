package classfile

import "math/bits"

// bitSet is a set of code offsets backed by a bitmap.
type bitSet struct {
	words []uint64
}

func newBitSet(maxVal int) *bitSet {
	return &bitSet{words: make([]uint64, (maxVal+64)/64)}
}

func (b *bitSet) set(val int) {
	word := val / 64
	if word >= len(b.words) {
		grown := make([]uint64, word+1)
		copy(grown, b.words)
		b.words = grown
	}
	b.words[word] |= 1 << (val % 64)
}

func (b *bitSet) has(val int) bool {
	word := val / 64
	if val < 0 || word >= len(b.words) {
		return false
	}
	return b.words[word]&(1<<(val%64)) != 0
}

// andNot returns the members of b that are not in other.
func (b *bitSet) andNot(other *bitSet) *bitSet {
	out := &bitSet{words: make([]uint64, len(b.words))}
	for i, w := range b.words {
		if i < len(other.words) {
			w &^= other.words[i]
		}
		out.words[i] = w
	}
	return out
}

// slice returns the members in ascending order.
func (b *bitSet) slice() []int {
	var out []int
	for i, word := range b.words {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			out = append(out, i*64+bit)
			word &^= 1 << bit
		}
	}
	return out
}

func (b *bitSet) count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}
