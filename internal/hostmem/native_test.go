package hostmem

import "testing"

func TestNativeGrowAndBase(t *testing.T) {
	n, err := NewNative(4)
	if err != nil {
		t.Fatalf("mmap failed: %v", err)
	}
	defer n.Close()

	prev, ok := n.Grow(3)
	if !ok {
		t.Fatalf("grow within cap should succeed")
	}
	if prev != 0 {
		t.Fatalf("expected previous page count 0, got %d", prev)
	}
	if n.Size() != 3 {
		t.Fatalf("expected size 3, got %d", n.Size())
	}
	if len(n.Base()) != 3*PageBytes {
		t.Fatalf("expected base length %d, got %d", 3*PageBytes, len(n.Base()))
	}
}

func TestNativeGrowPastCapFails(t *testing.T) {
	n, err := NewNative(1)
	if err != nil {
		t.Fatalf("mmap failed: %v", err)
	}
	defer n.Close()

	if _, ok := n.Grow(2); ok {
		t.Fatalf("grow past cap should fail")
	}
}

func TestNativeCloseIsIdempotent(t *testing.T) {
	n, err := NewNative(1)
	if err != nil {
		t.Fatalf("mmap failed: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got: %v", err)
	}
}
