package bitset

// BitSet is a fixed-size set of small non-negative integers.
type BitSet []uint64

func NewBitSet(len uint64) BitSet {
	words := (len + 63) / 64
	return make(BitSet, words)
}

func (b BitSet) IsSet(index uint64) bool {
	return b[index/64]&(uint64(1)<<(index%64)) != 0
}

func (b BitSet) Set(index uint64) {
	b[index/64] |= uint64(1) << (index % 64)
}

// Clone returns an independent copy of b.
func (b BitSet) Clone() BitSet {
	c := make(BitSet, len(b))
	copy(c, b)
	return c
}

// With returns a copy of b with index set. b itself is left untouched, so a
// set can be shared by every partial path that extends from it.
func (b BitSet) With(index uint64) BitSet {
	c := b.Clone()
	c.Set(index)
	return c
}
