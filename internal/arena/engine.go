package arena

import (
	"unsafe"

	"github.com/alligator-go/alligator/internal/hostmem"
	"github.com/alligator-go/alligator/internal/obs"
)

// Engine orchestrates initialization, size-class classification, minipage
// selection, segment selection, big-alloc search/creation, and
// deallocation routing over one hostmem.Region.
//
// Engine is not safe for concurrent use: the design assumes a single
// execution context with exclusive access to the managed region, matching
// the WebAssembly MVP memory model (see SPEC_FULL.md §5). A caller that
// needs a process-wide handle holds a *Engine and calls its methods
// directly; no locking is performed internally.
type Engine struct {
	region hostmem.Region
	logger *obs.Logger

	metricsEnabled bool
	didInit        bool

	meta *MetaPage

	bigAllocHeaders []bigAllocHeader
	bigAllocHead    int32 // index into bigAllocHeaders, or -1

	nextAllocPtr uint32 // offset from host base, alloc-start-relative plus MetaPageSize

	classHeads    [NumSizeClasses]int32 // head of all-minipages-for-class list, or -1
	freshMinipage [NumSizeClasses]int32 // current "fresh" minipage for class, or -1
	freshCount    [NumSizeClasses]uint64
	reusedCount   [NumSizeClasses]uint64

	lastFail FailCause
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithMetrics enables the optional metrics block.
func WithMetrics() Option {
	return func(e *Engine) { e.metricsEnabled = true }
}

// WithLogger attaches a logger used to report failure causes.
func WithLogger(l *obs.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an Engine over region. The managed region is not
// touched until the first Alloc call.
func NewEngine(region hostmem.Region, opts ...Option) *Engine {
	e := &Engine{region: region, bigAllocHead: -1}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ensureInit grows the region to its cap and lays out the Meta Page on the
// first allocation request.
func (e *Engine) ensureInit() bool {
	if e.didInit {
		return true
	}
	if _, ok := e.region.Grow(RegionCapPages); !ok {
		e.fail(HostGrowFail)
		return false
	}
	e.meta = newMetaPage(MaxMinipages, e.metricsEnabled)
	for i := range e.classHeads {
		e.classHeads[i] = -1
		e.freshMinipage[i] = -1
	}
	e.nextAllocPtr = MetaPageSize
	e.didInit = true
	return true
}

// Alloc returns a pointer into the managed region, or the null AllocAddr on
// failure (zero size, oversize-below-policy, grow failure, cap reached, or
// an internal contract breach).
func (e *Engine) Alloc(size uint32) AllocAddr {
	if size == 0 {
		e.fail(NoZeroAlloc)
		return AllocAddr{}
	}
	if !e.ensureInit() {
		return AllocAddr{}
	}
	class, ok := classForBytes(size)
	if !ok {
		return e.allocBig(size)
	}
	return e.allocSmall(class)
}

func (e *Engine) allocSmall(c SizeClass) AllocAddr {
	idx := c.Idx()
	mpIdx, ok := e.selectMinipage(c)
	if !ok {
		return AllocAddr{}
	}

	segIdx, ok := e.meta.freeSegments[idx].Pop()
	if !ok {
		e.fail(FreeMiniPagesContractBreach)
		return AllocAddr{}
	}

	header := &e.meta.headers[mpIdx]
	header.setFree(segIdx, false)
	e.recordHeapWrite(1)

	if int32(mpIdx) == e.freshMinipage[idx] {
		e.freshCount[idx]++
	} else {
		e.reusedCount[idx]++
	}

	if e.meta.freeSegments[idx].Empty() {
		e.meta.freeMinipages[idx].Pop()
		header.onFreeStack = false
		if int32(mpIdx) == e.freshMinipage[idx] {
			e.freshMinipage[idx] = -1
		}
	}

	if e.meta.metrics != nil {
		e.meta.metrics.recordAlloc(c)
	}

	offset := MetaPageSize + mpIdx*MinipageBytes + segIdx*c.SegmentBytes()
	return AllocAddr{addr: offset}
}

// selectMinipage implements the fresh-vs-reused selection policy.
func (e *Engine) selectMinipage(c SizeClass) (uint32, bool) {
	idx := c.Idx()

	var useFresh bool
	if e.reusedCount[idx] == 0 {
		useFresh = false
	} else {
		ratio := float64(e.freshCount[idx]) / float64(e.reusedCount[idx])
		useFresh = ratio < freshReusedRatio
	}

	if useFresh {
		return e.addMinipageCurrent(c)
	}

	mpIdx, ok := e.meta.freeMinipages[idx].Peek()
	if !ok {
		return e.addMinipageCurrent(c)
	}
	if e.meta.freeSegments[idx].Empty() {
		e.populateFreeSegments(mpIdx, &e.meta.headers[mpIdx], c)
	}
	return mpIdx, true
}

func (e *Engine) addMinipageCurrent(c SizeClass) (uint32, bool) {
	mpIdx, ok := e.addMinipage(c)
	if !ok {
		return 0, false
	}
	e.freshMinipage[c.Idx()] = int32(mpIdx)
	e.populateFreeSegments(mpIdx, &e.meta.headers[mpIdx], c)
	return mpIdx, true
}

// addMinipage materializes a new minipage for c, as described in
// SPEC_FULL.md §4.7.
func (e *Engine) addMinipage(c SizeClass) (uint32, bool) {
	if e.nextAllocPtr+MinipageBytes > RegionCapBytes {
		e.fail(AddMiniPageNoSpace)
		return 0, false
	}
	idx := c.Idx()
	mpIdx := (e.nextAllocPtr - MetaPageSize) / MinipageBytes

	e.meta.headers[mpIdx] = newMiniPageHeader(c, e.classHeads[idx])
	e.classHeads[idx] = int32(mpIdx)
	e.meta.freeMinipages[idx].Push(mpIdx)
	e.nextAllocPtr += MinipageBytes

	if e.meta.metrics != nil {
		e.meta.metrics.totalMinipages++
	}
	e.recordHeapWrite(bitmapBytes)
	return mpIdx, true
}

// populateFreeSegments implements the free-segments update of
// SPEC_FULL.md §4.6: scan the bitmap ascending and push every free index.
func (e *Engine) populateFreeSegments(mpIdx uint32, header *MiniPageHeader, c SizeClass) (uint32, bool) {
	idx := c.Idx()
	n := c.SegmentsPerMinipage()
	first, found := uint32(0), false
	for s := uint32(0); s < n; s++ {
		if header.isFree(s) {
			e.meta.freeSegments[idx].Push(s)
			if !found {
				first, found = s, true
			}
		}
	}
	e.recordHeapRead(bitmapBytes)
	return first, found
}

func (e *Engine) allocBig(size uint32) AllocAddr {
	for i := e.bigAllocHead; i != -1; i = e.bigAllocHeaders[i].next {
		h := &e.bigAllocHeaders[i]
		if h.free && h.sizeBytes >= size {
			h.free = false
			if e.meta.metrics != nil {
				e.meta.metrics.recordAlloc(SizeClass{Exp: h.exp})
			}
			return e.bigAllocUserAddr(h)
		}
	}
	return e.createBigAlloc(size)
}

func (e *Engine) bigAllocUserAddr(h *bigAllocHeader) AllocAddr {
	return AllocAddr{addr: MetaPageSize + h.userOffset()}
}

func (e *Engine) createBigAlloc(size uint32) AllocAddr {
	sizeBytes, requiredMinipages := computeBigAllocSize(size)
	requiredBytes := requiredMinipages * MinipageBytes
	if e.nextAllocPtr+requiredBytes > RegionCapBytes {
		e.fail(AddMiniPageNoSpace)
		return AllocAddr{}
	}

	startMinipage := (e.nextAllocPtr - MetaPageSize) / MinipageBytes
	exp := exponentCeil(size)

	h := bigAllocHeader{
		exp: uint8(exp), next: e.bigAllocHead, free: false,
		sizeBytes: sizeBytes, startMinipage: startMinipage,
	}
	e.bigAllocHeaders = append(e.bigAllocHeaders, h)
	newIdx := int32(len(e.bigAllocHeaders) - 1)
	e.bigAllocHead = newIdx

	for i := startMinipage; i < startMinipage+requiredMinipages; i++ {
		if i < uint32(len(e.meta.bigAllocFlags)) {
			e.meta.bigAllocFlags[i] = int32(startMinipage)
		}
	}
	e.nextAllocPtr += requiredBytes

	if e.meta.metrics != nil {
		e.meta.metrics.totalMinipages += requiredMinipages
		e.meta.metrics.recordAlloc(SizeClass{Exp: uint8(exp)})
	}
	e.recordHeapWrite(requiredMinipages)

	return e.bigAllocUserAddr(&e.bigAllocHeaders[newIdx])
}

// Dealloc releases a pointer previously returned by Alloc. Invalid
// pointers and double frees are silently ignored; failure causes are
// logged when the engine was constructed with WithLogger.
func (e *Engine) Dealloc(p AllocAddr) {
	if p.IsNull() || !e.didInit {
		return
	}
	offset := allocStartOffset(p)
	mpIdx := minipageIndexForOffset(offset)

	if mpIdx < uint32(len(e.meta.bigAllocFlags)) && e.meta.bigAllocFlags[mpIdx] >= 0 {
		e.deallocBig(offset)
		return
	}
	if mpIdx >= uint32(len(e.meta.headers)) {
		return
	}

	header := &e.meta.headers[mpIdx]
	c := header.sizeClass()
	segIdx := segmentIndexForOffset(offset, c)
	e.recordHeapRead(1)

	if header.isFree(segIdx) {
		return // double free: no-op
	}
	header.setFree(segIdx, true)
	e.recordHeapWrite(1)

	idx := c.Idx()
	if cur, ok := e.meta.freeMinipages[idx].Peek(); ok && cur == mpIdx {
		e.meta.freeSegments[idx].Push(segIdx)
	} else if !header.onFreeStack {
		e.meta.freeMinipages[idx].Push(mpIdx)
		header.onFreeStack = true
	}

	if e.meta.metrics != nil {
		e.meta.metrics.recordDealloc(c)
	}
}

func (e *Engine) deallocBig(offset uint32) {
	for i := e.bigAllocHead; i != -1; i = e.bigAllocHeaders[i].next {
		h := &e.bigAllocHeaders[i]
		if !h.free && h.contains(offset) {
			h.free = true
			if e.meta.metrics != nil {
				e.meta.metrics.recordDealloc(SizeClass{Exp: h.exp})
			}
			return
		}
	}
	e.fail(BigDeallocHeaderNotFound)
}

// Realloc allocates newSize, copies min(old, new) bytes from p, and frees
// p. Returns the null AllocAddr if the new allocation fails.
func (e *Engine) Realloc(p AllocAddr, newSize uint32) AllocAddr {
	if p.IsNull() {
		return e.Alloc(newSize)
	}
	oldSize := e.sizeOf(p)
	np := e.Alloc(newSize)
	if np.IsNull() {
		return AllocAddr{}
	}

	copyLen := oldSize
	if newSize < copyLen {
		copyLen = newSize
	}
	base := e.region.Base()
	copy(base[np.addr:np.addr+copyLen], base[p.addr:p.addr+copyLen])
	e.recordHeapRead(uint32(copyLen))
	e.recordHeapWrite(uint32(copyLen))

	e.Dealloc(p)
	return np
}

func (e *Engine) sizeOf(p AllocAddr) uint32 {
	offset := allocStartOffset(p)
	mpIdx := minipageIndexForOffset(offset)
	if mpIdx < uint32(len(e.meta.bigAllocFlags)) && e.meta.bigAllocFlags[mpIdx] >= 0 {
		for i := e.bigAllocHead; i != -1; i = e.bigAllocHeaders[i].next {
			h := &e.bigAllocHeaders[i]
			if h.contains(offset) {
				return h.sizeBytes
			}
		}
		return 0
	}
	return e.meta.headers[mpIdx].sizeClass().SegmentBytes()
}

func (e *Engine) recordHeapRead(n uint32) {
	if e.meta != nil && e.meta.metrics != nil {
		e.meta.metrics.heapBytesRead += uint64(n)
	}
}

func (e *Engine) recordHeapWrite(n uint32) {
	if e.meta != nil && e.meta.metrics != nil {
		e.meta.metrics.heapBytesWrite += uint64(n)
	}
}

// Ptr converts an AllocAddr to a raw pointer into the region, for the
// C-ABI front end. It returns nil for the null address.
func (e *Engine) Ptr(a AllocAddr) unsafe.Pointer {
	if a.IsNull() {
		return nil
	}
	base := e.region.Base()
	return unsafe.Pointer(&base[a.addr])
}

// AddrFromPtr is the inverse of Ptr.
func (e *Engine) AddrFromPtr(p unsafe.Pointer) AllocAddr {
	if p == nil {
		return AllocAddr{}
	}
	base := e.region.Base()
	offset := uint32(uintptr(p) - uintptr(unsafe.Pointer(&base[0])))
	return AllocAddr{addr: offset}
}
