package arena

// MetaPage houses all of the engine's bookkeeping tables: one header slot
// per possible minipage, one optional big-alloc flag per minipage index,
// and per-size-class free-minipages and free-segments stacks. It is
// created once, on the first allocation request.
//
// Unlike the design this was distilled from, these tables are native Go
// values rather than bytes packed into the managed region itself — Go has
// no idiomatic equivalent of casting a raw buffer to a struct layout, the
// same way a SlabCache keeps its SlabPage bookkeeping outside the byte
// buffer it manages rather than packed inside it. MetaPageSize still
// reserves the equivalent address space so minipage indexing is
// unaffected.
type MetaPage struct {
	headers       []MiniPageHeader
	bigAllocFlags []int32 // -1 = not part of a big allocation
	freeMinipages [NumSizeClasses]*Stack[uint32]
	freeSegments  [NumSizeClasses]*Stack[uint32]
	metrics       *Metrics
}

func newMetaPage(maxMinipages uint32, metricsEnabled bool) *MetaPage {
	mp := &MetaPage{
		headers:       make([]MiniPageHeader, maxMinipages),
		bigAllocFlags: make([]int32, maxMinipages),
	}
	for i := range mp.bigAllocFlags {
		mp.bigAllocFlags[i] = -1
	}
	for idx := 0; idx < NumSizeClasses; idx++ {
		c := sizeClassFromIdx(idx)
		mp.freeMinipages[idx] = NewStack[uint32](maxMinipages)
		mp.freeSegments[idx] = NewStack[uint32](c.SegmentsPerMinipage())
	}
	if metricsEnabled {
		mp.metrics = newMetrics()
	}
	return mp
}
