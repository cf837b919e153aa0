package arena

import (
	"fmt"
	"strings"
)

const bigAllocMetricsIdx = NumSizeClasses

// Metrics holds the optional bookkeeping counters named by the engine's
// contract: allocations and deallocations per size class (one extra bucket
// for big allocations), total minipages created, and heap byte traffic
// from bookkeeping reads/writes plus the bytes Realloc copies.
type Metrics struct {
	totalAllocs    [NumSizeClasses + 1]uint64
	totalDeallocs  [NumSizeClasses + 1]uint64
	totalMinipages uint32
	heapBytesRead  uint64
	heapBytesWrite uint64
}

func newMetrics() *Metrics {
	return &Metrics{}
}

func metricsIdx(c SizeClass) int {
	if int(c.Exp) > MaxSizeClassExp {
		return bigAllocMetricsIdx
	}
	return c.Idx()
}

func (m *Metrics) recordAlloc(c SizeClass) {
	m.totalAllocs[metricsIdx(c)]++
}

func (m *Metrics) recordDealloc(c SizeClass) {
	m.totalDeallocs[metricsIdx(c)]++
}

// Snapshot is a point-in-time, read-only copy of the metrics counters.
type Snapshot struct {
	TotalAllocs    [NumSizeClasses + 1]uint64
	TotalDeallocs  [NumSizeClasses + 1]uint64
	TotalMinipages uint32
	HeapBytesRead  uint64
	HeapBytesWrite uint64
}

// Metrics returns a snapshot of the engine's counters. ok is false when the
// engine was constructed without WithMetrics.
func (e *Engine) Metrics() (Snapshot, bool) {
	if e.meta == nil || e.meta.metrics == nil {
		return Snapshot{}, false
	}
	m := e.meta.metrics
	return Snapshot{
		TotalAllocs:    m.totalAllocs,
		TotalDeallocs:  m.totalDeallocs,
		TotalMinipages: m.totalMinipages,
		HeapBytesRead:  m.heapBytesRead,
		HeapBytesWrite: m.heapBytesWrite,
	}, true
}

// FreshReusedStats is a per-size-class snapshot of fresh vs reused
// allocation counts, independent of the metrics block — the engine
// maintains these counters unconditionally to drive the selection policy.
type FreshReusedStats struct {
	Fresh  [NumSizeClasses]uint64
	Reused [NumSizeClasses]uint64
}

// FreshReusedStats returns the current fresh/reused counters.
func (e *Engine) FreshReusedStats() FreshReusedStats {
	return FreshReusedStats{Fresh: e.freshCount, Reused: e.reusedCount}
}

// DotGraph renders a graphviz dump of every minipage chain, grouped by
// size class, for debugging and bench-systematic's -dot flag.
func (e *Engine) DotGraph() string {
	var b strings.Builder
	b.WriteString("digraph alligator {\n")
	for idx := 0; idx < NumSizeClasses; idx++ {
		c := sizeClassFromIdx(idx)
		fmt.Fprintf(&b, "  subgraph cluster_%d {\n    label=\"class %d (%d bytes)\";\n", c.Exp, c.Exp, c.SegmentBytes())
		for i := e.classHeads[idx]; i != -1; {
			h := &e.meta.headers[i]
			fmt.Fprintf(&b, "    mp%d [label=\"mp%d\\nonFreeStack=%v\"];\n", i, i, h.onFreeStack)
			if h.next != -1 {
				fmt.Fprintf(&b, "    mp%d -> mp%d;\n", i, h.next)
			}
			i = h.next
		}
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")
	return b.String()
}
