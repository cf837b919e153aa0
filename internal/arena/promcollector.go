package arena

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PromCollector adapts an Engine's metrics snapshot to prometheus.Collector
// so a long-running benchmark process can expose it under /metrics. The
// engine itself has no metrics-server concern; this is purely an
// exposition adapter.
type PromCollector struct {
	engine *Engine

	allocsDesc    *prometheus.Desc
	deallocsDesc  *prometheus.Desc
	minipagesDesc *prometheus.Desc
	heapReadDesc  *prometheus.Desc
	heapWriteDesc *prometheus.Desc
}

// NewPromCollector wraps e for Prometheus exposition.
func NewPromCollector(e *Engine) *PromCollector {
	return &PromCollector{
		engine:        e,
		allocsDesc:    prometheus.NewDesc("alligator_allocs_total", "Total allocations per size class.", []string{"size_class"}, nil),
		deallocsDesc:  prometheus.NewDesc("alligator_deallocs_total", "Total deallocations per size class.", []string{"size_class"}, nil),
		minipagesDesc: prometheus.NewDesc("alligator_minipages_total", "Total minipages created.", nil, nil),
		heapReadDesc:  prometheus.NewDesc("alligator_heap_bytes_read_total", "Total bytes read from allocator bookkeeping and by Realloc copies.", nil, nil),
		heapWriteDesc: prometheus.NewDesc("alligator_heap_bytes_write_total", "Total bytes written to allocator bookkeeping and by Realloc copies.", nil, nil),
	}
}

func (c *PromCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocsDesc
	ch <- c.deallocsDesc
	ch <- c.minipagesDesc
	ch <- c.heapReadDesc
	ch <- c.heapWriteDesc
}

func (c *PromCollector) Collect(ch chan<- prometheus.Metric) {
	snap, ok := c.engine.Metrics()
	if !ok {
		return
	}
	for idx := 0; idx < NumSizeClasses; idx++ {
		label := strconv.Itoa(int(sizeClassFromIdx(idx).SegmentBytes()))
		ch <- prometheus.MustNewConstMetric(c.allocsDesc, prometheus.CounterValue, float64(snap.TotalAllocs[idx]), label)
		ch <- prometheus.MustNewConstMetric(c.deallocsDesc, prometheus.CounterValue, float64(snap.TotalDeallocs[idx]), label)
	}
	ch <- prometheus.MustNewConstMetric(c.allocsDesc, prometheus.CounterValue, float64(snap.TotalAllocs[bigAllocMetricsIdx]), "big")
	ch <- prometheus.MustNewConstMetric(c.deallocsDesc, prometheus.CounterValue, float64(snap.TotalDeallocs[bigAllocMetricsIdx]), "big")
	ch <- prometheus.MustNewConstMetric(c.minipagesDesc, prometheus.CounterValue, float64(snap.TotalMinipages))
	ch <- prometheus.MustNewConstMetric(c.heapReadDesc, prometheus.CounterValue, float64(snap.HeapBytesRead))
	ch <- prometheus.MustNewConstMetric(c.heapWriteDesc, prometheus.CounterValue, float64(snap.HeapBytesWrite))
}
