// Command bench-random drives the allocator with a uniform size
// distribution across size classes: 40% of allocations are held onto
// ("freed later"), and with 10% probability per iteration one randomly
// chosen entry of the pending set is freed, emitting a CSV report row
// periodically. Grounded on the
// random benchmark this design was distilled from.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"

	"github.com/alligator-go/alligator/internal/arena"
	"github.com/alligator-go/alligator/internal/hostmem"
	"github.com/alligator-go/alligator/internal/obs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	iterations := flag.Int("iterations", 2000, "number of allocation iterations to run")
	reportEvery := flag.Int("report-every", 100, "emit a CSV row every N iterations")
	seed := flag.Int64("seed", 1, "random seed")
	csvHeader := flag.Bool("csv-header", true, "emit the CSV header row")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics at this address (e.g. :9090) while the run proceeds")
	flag.Parse()

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	if *csvHeader {
		w.Write([]string{
			"iteration", "total_alloc_bytes", "total_minipages", "heap_bytes_write",
			"heap_bytes_read", "total_allocs", "total_deallocs", "fresh_allocs", "reused_allocs",
		})
	}

	region, err := hostmem.NewNative(arena.RegionCapPages)
	if err != nil {
		obs.Fatal("mmap host region", obs.Err(err))
	}
	engine := arena.NewEngine(region, arena.WithMetrics())
	rng := rand.New(rand.NewSource(*seed))

	if *metricsAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(arena.NewPromCollector(engine))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				obs.Error("metrics server stopped", obs.Err(err))
			}
		}()
	}

	var pending []arena.AllocAddr

	for i := 1; i <= *iterations; i++ {
		exp := arena.MinSizeClassExp + rng.Intn(arena.NumSizeClasses)
		c := arena.SizeClass{Exp: uint8(exp)}
		addr := engine.Alloc(c.SegmentBytes())

		if rng.Intn(100) < 40 {
			pending = append(pending, addr)
		} else {
			engine.Dealloc(addr)
		}

		if len(pending) > 0 && rng.Intn(100) < 10 {
			j := rng.Intn(len(pending))
			engine.Dealloc(pending[j])
			pending[j] = pending[len(pending)-1]
			pending = pending[:len(pending)-1]
		}

		if i%*reportEvery == 0 {
			writeReport(w, engine, i)
		}
	}

	for _, addr := range pending {
		engine.Dealloc(addr)
	}
	writeReport(w, engine, *iterations)
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
