package hostmem

import "testing"

func TestInMemoryGrowAndBase(t *testing.T) {
	m := NewInMemory(4)

	prev, ok := m.Grow(2)
	if !ok {
		t.Fatalf("grow within cap should succeed")
	}
	if prev != 0 {
		t.Fatalf("expected previous page count 0, got %d", prev)
	}
	if m.Size() != 2 {
		t.Fatalf("expected size 2, got %d", m.Size())
	}
	if len(m.Base()) != 2*PageBytes {
		t.Fatalf("expected base length %d, got %d", 2*PageBytes, len(m.Base()))
	}
}

func TestInMemoryGrowPastCapFails(t *testing.T) {
	m := NewInMemory(1)

	if _, ok := m.Grow(2); ok {
		t.Fatalf("grow past cap should fail")
	}
	if m.Size() != 0 {
		t.Fatalf("a failed grow must not change the page count")
	}
}

func TestInMemoryWriteReadRoundTrip(t *testing.T) {
	m := NewInMemory(1)
	if _, ok := m.Grow(1); !ok {
		t.Fatalf("grow failed")
	}

	base := m.Base()
	copy(base[100:105], []byte{1, 2, 3, 4, 5})

	base = m.Base()
	for i, want := range []byte{1, 2, 3, 4, 5} {
		if base[100+i] != want {
			t.Fatalf("byte %d: want %d, got %d", i, want, base[100+i])
		}
	}
}
