package hostmem

import (
	"fmt"

	"github.com/wasmerio/wasmer-go/wasmer"
)

// Wasmer backs a Region with a real WebAssembly linear memory instance,
// driven through wasmer-go (grounded on wasm/executor.go's use of the same
// engine/store setup), so the allocator can run against an actual
// memory.size/memory.grow pair instead of a simulation.
type Wasmer struct {
	memory *wasmer.Memory
}

// NewWasmer creates a standalone WASM memory with the given minimum and
// maximum page counts, outside of any module instantiation.
func NewWasmer(minPages, maxPages uint32) (*Wasmer, error) {
	limits, err := wasmer.NewLimits(minPages, maxPages)
	if err != nil {
		return nil, fmt.Errorf("wasmer memory limits: %w", err)
	}
	store := wasmer.NewStore(wasmer.NewEngine())
	memType := wasmer.NewMemoryType(limits)
	return &Wasmer{memory: wasmer.NewMemory(store, memType)}, nil
}

func (w *Wasmer) Size() uint32 {
	return uint32(w.memory.Size())
}

func (w *Wasmer) Grow(delta uint32) (uint32, bool) {
	prev := w.Size()
	if !w.memory.Grow(wasmer.Pages(delta)) {
		return prev, false
	}
	return prev, true
}

func (w *Wasmer) Base() []byte {
	return w.memory.Data()[:w.memory.DataSize()]
}
