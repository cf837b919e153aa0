// Command bench-systematic drives the allocator through every size class in
// turn: for each class it allocates a run of segments, frees five-sixths of
// them immediately and the remainder at the end, then emits a CSV report
// row. Grounded on the systematic benchmark this design was distilled from.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"

	"github.com/alligator-go/alligator/internal/arena"
	"github.com/alligator-go/alligator/internal/hostmem"
	"github.com/alligator-go/alligator/internal/obs"
)

func main() {
	minClass := flag.Int("min-class", arena.MinSizeClassExp, "minimum size class exponent")
	maxClass := flag.Int("max-class", arena.MaxSizeClassExp, "maximum size class exponent")
	pageMult := flag.Int("pages", 4, "minipages worth of segments to allocate per class")
	csvHeader := flag.Bool("csv-header", true, "emit the CSV header row")
	onlyHeader := flag.Bool("only-csv-header", false, "print the header row and exit")
	dotPath := flag.String("dot", "", "write a graphviz dump of the final minipage chains to this path")
	flag.Parse()

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{
		"iteration", "total_alloc_bytes", "total_minipages", "heap_bytes_write",
		"heap_bytes_read", "total_allocs", "total_deallocs", "fresh_allocs", "reused_allocs",
	}
	if *csvHeader || *onlyHeader {
		w.Write(header)
	}
	if *onlyHeader {
		return
	}

	region, err := hostmem.NewNative(arena.RegionCapPages)
	if err != nil {
		obs.Fatal("mmap host region", obs.Err(err))
	}
	engine := arena.NewEngine(region, arena.WithMetrics())

	iteration := 0
	for exp := *minClass; exp <= *maxClass; exp++ {
		c := arena.SizeClass{Exp: uint8(exp)}
		segBytes := c.SegmentBytes()
		total := c.SegmentsPerMinipage() * uint32(*pageMult)

		addrs := make([]arena.AllocAddr, total)
		for i := uint32(0); i < total; i++ {
			addrs[i] = engine.Alloc(segBytes)
			if i%6 != 0 {
				engine.Dealloc(addrs[i])
			}
		}
		for i, addr := range addrs {
			if uint32(i)%6 == 0 {
				engine.Dealloc(addr)
			}
		}

		iteration++
		writeReport(w, engine, iteration)
	}

	if *dotPath != "" {
		if err := os.WriteFile(*dotPath, []byte(engine.DotGraph()), 0o644); err != nil {
			obs.Error("write dot graph", obs.Err(err), obs.String("path", *dotPath))
		}
	}
}

func writeReport(w *csv.Writer, e *arena.Engine, iteration int) {
	snap, _ := e.Metrics()
	stats := e.FreshReusedStats()

	var fresh, reused, allocs, deallocs uint64
	for i := 0; i < arena.NumSizeClasses; i++ {
		fresh += stats.Fresh[i]
		reused += stats.Reused[i]
	}
	for _, v := range snap.TotalAllocs {
		allocs += v
	}
	for _, v := range snap.TotalDeallocs {
		deallocs += v
	}

	w.Write([]string{
		fmt.Sprintf("%d", iteration),
		fmt.Sprintf("%d", snap.TotalMinipages*arena.MinipageBytes),
		fmt.Sprintf("%d", snap.TotalMinipages),
		fmt.Sprintf("%d", snap.HeapBytesWrite),
		fmt.Sprintf("%d", snap.HeapBytesRead),
		fmt.Sprintf("%d", allocs),
		fmt.Sprintf("%d", deallocs),
		fmt.Sprintf("%d", fresh),
		fmt.Sprintf("%d", reused),
	})
	w.Flush()
}
