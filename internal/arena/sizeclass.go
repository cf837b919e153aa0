package arena

import "math/bits"

// SizeClass identifies one of the 9 power-of-two segment sizes a minipage
// can be partitioned into.
type SizeClass struct {
	Exp uint8
}

// classForBytes returns the size class that should serve a request of n
// bytes, clamped up to MinSizeClassExp. ok is false when n is zero or when
// the request exceeds the largest size class and must go through the
// big-alloc path instead.
func classForBytes(n uint32) (SizeClass, bool) {
	if n == 0 {
		return SizeClass{}, false
	}
	e := exponentCeil(n)
	if e < MinSizeClassExp {
		e = MinSizeClassExp
	}
	if e > MaxSizeClassExp {
		return SizeClass{}, false
	}
	return SizeClass{Exp: uint8(e)}, true
}

// exponentCeil returns ceil(log2(n)) for n >= 1.
func exponentCeil(n uint32) int {
	return bits.Len32(n - 1)
}

// SegmentBytes is 2^Exp.
func (c SizeClass) SegmentBytes() uint32 {
	return 1 << c.Exp
}

// SegmentsPerMinipage is the number of segments of this class that fit in
// one 2048-byte minipage.
func (c SizeClass) SegmentsPerMinipage() uint32 {
	return MinipageBytes / c.SegmentBytes()
}

// Idx is this class's position in the [MinSizeClassExp, MaxSizeClassExp]
// range, used to index per-class tables.
func (c SizeClass) Idx() int {
	return int(c.Exp) - MinSizeClassExp
}

func sizeClassFromIdx(idx int) SizeClass {
	return SizeClass{Exp: uint8(idx + MinSizeClassExp)}
}
