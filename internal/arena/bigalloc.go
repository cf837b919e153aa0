package arena

// bigAllocHeaderSize is the fixed footprint reserved immediately before a
// big allocation's user range for its header bookkeeping, mirroring the
// original design where the header is packed inline ahead of the range it
// describes.
const bigAllocHeaderSize = 16

// bigAllocHeader describes one allocation larger than the maximum size
// class. Headers are never removed from the list; a freed header is
// reused by a later request that fits, via first-fit search from the head.
type bigAllocHeader struct {
	exp           uint8
	next          int32 // index into engine.bigAllocHeaders, or -1
	free          bool
	sizeBytes     uint32
	startMinipage uint32 // index, in alloc-start-relative minipage units
}

// computeBigAllocSize rounds a request up to a whole number of minipage
// slots and returns the usable size of the resulting header plus the
// number of minipage slots consumed.
func computeBigAllocSize(n uint32) (sizeBytes, requiredMinipages uint32) {
	total := uint32(bigAllocHeaderSize) + n
	requiredMinipages = (total + MinipageBytes - 1) / MinipageBytes
	sizeBytes = requiredMinipages*MinipageBytes - bigAllocHeaderSize
	return sizeBytes, requiredMinipages
}

func (h *bigAllocHeader) userOffset() uint32 {
	return h.startMinipage*MinipageBytes + bigAllocHeaderSize
}

func (h *bigAllocHeader) contains(offset uint32) bool {
	start := h.userOffset()
	return offset >= start && offset < start+h.sizeBytes
}
