package bufferpool

import "testing"

func TestAcquireFloat32ZeroedAndSized(t *testing.T) {
	b := AcquireFloat32(16)
	if len(b.Data) != 16 {
		t.Fatalf("expected 16 elements, got %d", len(b.Data))
	}
	for _, v := range b.Data {
		if v != 0 {
			t.Fatal("expected a freshly acquired buffer to be zeroed")
		}
	}
	b.Data[3] = 42
	b.Release()

	b2 := AcquireFloat32(8)
	for _, v := range b2.Data {
		if v != 0 {
			t.Fatal("expected a reused buffer to be re-zeroed")
		}
	}
}

func TestAcquireUint8GrowsWhenLarger(t *testing.T) {
	b := AcquireUint8(4)
	b.Release()
	b2 := AcquireUint8(100)
	if len(b2.Data) != 100 {
		t.Fatalf("expected growth to 100 elements, got %d", len(b2.Data))
	}
}
