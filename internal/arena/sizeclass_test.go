package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassForBytes(t *testing.T) {
	_, ok := classForBytes(0)
	assert.False(t, ok, "zero-byte request must be rejected")

	c, ok := classForBytes(1)
	assert.True(t, ok)
	assert.Equal(t, uint8(MinSizeClassExp), c.Exp, "sub-minimum requests clamp up to the minimum class")

	c, ok = classForBytes(8)
	assert.True(t, ok)
	assert.Equal(t, uint8(3), c.Exp)

	c, ok = classForBytes(9)
	assert.True(t, ok)
	assert.Equal(t, uint8(4), c.Exp, "9 bytes needs the 16-byte class")

	c, ok = classForBytes(2048)
	assert.True(t, ok)
	assert.Equal(t, uint8(11), c.Exp, "exactly 2^MAX fits the small-alloc path")

	_, ok = classForBytes(2049)
	assert.False(t, ok, "anything past 2^MAX routes to the big-alloc path")
}

func TestSizeClassArithmetic(t *testing.T) {
	c := SizeClass{Exp: 3}
	assert.Equal(t, uint32(8), c.SegmentBytes())
	assert.Equal(t, uint32(256), c.SegmentsPerMinipage())
	assert.Equal(t, 0, c.Idx())

	c = SizeClass{Exp: 11}
	assert.Equal(t, uint32(2048), c.SegmentBytes())
	assert.Equal(t, uint32(1), c.SegmentsPerMinipage())
	assert.Equal(t, NumSizeClasses-1, c.Idx())
}

func TestBitmapByteIdxUsesFloor(t *testing.T) {
	// segment 8 sits at the first bit of byte 1, not byte 2: floor(8/8)=1.
	assert.Equal(t, uint32(1), bitmapByteIdx(8))
	assert.Equal(t, uint8(0), bitmapBitIdx(8))
	assert.Equal(t, uint32(0), bitmapByteIdx(7))
	assert.Equal(t, uint8(7), bitmapBitIdx(7))
}
