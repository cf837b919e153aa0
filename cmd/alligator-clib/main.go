// Command alligator-clib exports a C ABI front end (alligator_alloc,
// alligator_realloc, alligator_dealloc) over the allocator engine, for
// linking into non-Go callers, grounded on the alloc/realloc/dealloc
// extern "C" wrappers this design was distilled from.
package main

import "C"

import (
	"sync"
	"unsafe"

	"github.com/alligator-go/alligator/internal/arena"
	"github.com/alligator-go/alligator/internal/hostmem"
	"github.com/alligator-go/alligator/internal/obs"
)

var (
	engineOnce sync.Once
	engine     *arena.Engine
)

func getEngine() *arena.Engine {
	engineOnce.Do(func() {
		region, err := hostmem.NewNative(arena.RegionCapPages)
		if err != nil {
			obs.Fatal("mmap host region for C ABI front end", obs.Err(err))
		}
		engine = arena.NewEngine(region, arena.WithLogger(obs.DefaultLogger("alligator-clib")))
	})
	return engine
}

//export alligator_alloc
func alligator_alloc(size C.size_t) unsafe.Pointer {
	return getEngine().Ptr(getEngine().Alloc(uint32(size)))
}

//export alligator_realloc
func alligator_realloc(ptr unsafe.Pointer, newSize C.size_t) unsafe.Pointer {
	e := getEngine()
	return e.Ptr(e.Realloc(e.AddrFromPtr(ptr), uint32(newSize)))
}

//export alligator_dealloc
func alligator_dealloc(ptr unsafe.Pointer) {
	e := getEngine()
	e.Dealloc(e.AddrFromPtr(ptr))
}

func main() {}
