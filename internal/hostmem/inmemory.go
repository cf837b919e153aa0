package hostmem

// InMemory backs a Region with a plain growable byte slice, grounded on the
// teacher's InMemoryProvider (kernel/threads/sab/hal_memory.go) — useful
// for fast unit tests that don't need a real mmap.
type InMemory struct {
	data     []byte
	capPages uint32
	curPages uint32
}

// NewInMemory creates an in-memory region with the given logical cap.
func NewInMemory(capPages uint32) *InMemory {
	return &InMemory{capPages: capPages}
}

func (m *InMemory) Size() uint32 { return m.curPages }

func (m *InMemory) Grow(delta uint32) (uint32, bool) {
	if m.curPages+delta > m.capPages {
		return m.curPages, false
	}
	prev := m.curPages
	m.curPages += delta
	m.data = append(m.data, make([]byte, delta*PageBytes)...)
	return prev, true
}

func (m *InMemory) Base() []byte { return m.data }
