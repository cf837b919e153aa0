// Package arena implements the minipage/size-class allocator that manages
// one contiguous host-provided linear memory region.
package arena

// Bit-exact constants for the managed region and its bookkeeping.
const (
	// PageBytes is the host-level unit of growth.
	PageBytes = 65536

	// MinipageBytes is the size of one minipage, and also the size
	// reserved at offset 0 of the managed region for the Meta Page.
	MinipageBytes = 2048

	// MinSizeClassExp and MaxSizeClassExp bound the size-class exponent
	// range; segment sizes run from 2^MinSizeClassExp to 2^MaxSizeClassExp
	// bytes. Requests above 2^MaxSizeClassExp route to the big-alloc path.
	MinSizeClassExp = 3
	MaxSizeClassExp = 11
	NumSizeClasses  = MaxSizeClassExp - MinSizeClassExp + 1

	// RegionCapPages is the fixed logical cap on the managed region.
	RegionCapPages = 200
	RegionCapBytes = RegionCapPages * PageBytes
	MaxMinipages   = RegionCapBytes / MinipageBytes

	// MetaPageSize is the size of the reserved region at offset 0. The
	// Meta Page's actual bookkeeping tables live as native Go values (see
	// DESIGN.md); this constant only reserves the equivalent address
	// space so minipage index 0 begins immediately after it, matching the
	// original design's addressing.
	MetaPageSize = MinipageBytes

	// freshReusedRatio is the threshold the fresh-vs-reused selection
	// policy compares fresh_count/reused_count against.
	freshReusedRatio = 1.0

	// bitmapBytes is the fixed size of a minipage header's occupancy
	// bitmap, sized generously enough to cover the smallest size class's
	// segment count (256 segments) regardless of which class a given
	// header serves.
	bitmapBytes = 257
)
