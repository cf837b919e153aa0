package arena

// MiniPageHeader describes one 2048-byte minipage: the size class it
// serves, its occupancy bitmap (bit 1 = free), the link to the
// previously-created header of the same class (for enumeration, e.g.
// DotGraph), and whether it currently sits on its class's free-minipages
// stack.
type MiniPageHeader struct {
	exp         uint8
	next        int32 // index of the previously-created header for this class, or -1
	bitmap      [bitmapBytes]byte
	onFreeStack bool
}

func newMiniPageHeader(c SizeClass, prevHead int32) MiniPageHeader {
	h := MiniPageHeader{exp: c.Exp, next: prevHead, onFreeStack: true}
	h.markAllFree(c)
	return h
}

func (h *MiniPageHeader) markAllFree(c SizeClass) {
	n := c.SegmentsPerMinipage()
	for i := uint32(0); i < n; i++ {
		h.setFree(i, true)
	}
}

// setFree writes the occupancy bit for segmentIdx.
func (h *MiniPageHeader) setFree(segmentIdx uint32, free bool) {
	byteIdx := bitmapByteIdx(segmentIdx)
	bit := bitmapBitIdx(segmentIdx)
	if free {
		h.bitmap[byteIdx] |= 1 << bit
	} else {
		h.bitmap[byteIdx] &^= 1 << bit
	}
}

// isFree reads the occupancy bit for segmentIdx.
func (h *MiniPageHeader) isFree(segmentIdx uint32) bool {
	byteIdx := bitmapByteIdx(segmentIdx)
	bit := bitmapBitIdx(segmentIdx)
	return h.bitmap[byteIdx]&(1<<bit) != 0
}

func (h *MiniPageHeader) sizeClass() SizeClass {
	return SizeClass{Exp: h.exp}
}
