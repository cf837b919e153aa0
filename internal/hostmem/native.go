//go:build !js || !wasm

package hostmem

import (
	"fmt"
	"syscall"
)

// Native backs a Region with a single anonymous mmap sized to a fixed
// logical capacity up front; Grow only ever advances a logical page
// counter within that mapping, it never re-mmaps. This mirrors the
// teacher's own mmap-backed provider (kernel/threads/sab/hal_native.go),
// adapted from a file-backed shared mapping to an anonymous one since this
// region is process-private.
type Native struct {
	data     []byte
	capPages uint32
	curPages uint32
}

// NewNative mmaps capPages worth of anonymous memory.
func NewNative(capPages uint32) (*Native, error) {
	size := int(capPages) * PageBytes
	data, err := syscall.Mmap(-1, 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_ANON|syscall.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap native host region: %w", err)
	}
	return &Native{data: data, capPages: capPages}, nil
}

func (n *Native) Size() uint32 { return n.curPages }

func (n *Native) Grow(delta uint32) (uint32, bool) {
	if n.curPages+delta > n.capPages {
		return n.curPages, false
	}
	prev := n.curPages
	n.curPages += delta
	return prev, true
}

func (n *Native) Base() []byte {
	return n.data[:n.curPages*PageBytes]
}

// Close unmaps the region.
func (n *Native) Close() error {
	if n.data == nil {
		return nil
	}
	err := syscall.Munmap(n.data)
	n.data = nil
	return err
}
