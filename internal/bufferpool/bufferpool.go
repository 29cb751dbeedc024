// Package bufferpool provides typed flat scratch buffers recycled
// through process-wide sync.Pools. No pipeline stage acquires its
// buffers from this package; each stage allocates its own slices. The
// flat-slice-per-resource shape mirrors the teacher's
// internal/raster.FrameBuffer; sync.Pool adds reuse across jobs.
package bufferpool

import "sync"

var (
	float32Pool sync.Pool
	uint32Pool  sync.Pool
	uint8Pool   sync.Pool
)

// Float32Buffer is a reusable []float32 scratch buffer (height maps,
// vertex coordinate staging).
type Float32Buffer struct{ Data []float32 }

// AcquireFloat32 returns a buffer with at least n elements, zeroed.
func AcquireFloat32(n int) *Float32Buffer {
	if v := float32Pool.Get(); v != nil {
		b := v.(*Float32Buffer)
		b.Data = growFloat32(b.Data, n)
		return b
	}
	return &Float32Buffer{Data: make([]float32, n)}
}

// Release returns b to the pool. Callers must not use b after calling
// this on every exit path, including error returns.
func (b *Float32Buffer) Release() {
	float32Pool.Put(b)
}

func growFloat32(data []float32, n int) []float32 {
	if cap(data) < n {
		data = make([]float32, n)
	} else {
		data = data[:n]
	}
	for i := range data {
		data[i] = 0
	}
	return data
}

// Uint32Buffer is a reusable []uint32 scratch buffer (component labels,
// triangle index staging).
type Uint32Buffer struct{ Data []uint32 }

func AcquireUint32(n int) *Uint32Buffer {
	if v := uint32Pool.Get(); v != nil {
		b := v.(*Uint32Buffer)
		b.Data = growUint32(b.Data, n)
		return b
	}
	return &Uint32Buffer{Data: make([]uint32, n)}
}

func (b *Uint32Buffer) Release() {
	uint32Pool.Put(b)
}

func growUint32(data []uint32, n int) []uint32 {
	if cap(data) < n {
		data = make([]uint32, n)
	} else {
		data = data[:n]
	}
	for i := range data {
		data[i] = 0
	}
	return data
}

// Uint8Buffer is a reusable []uint8 scratch buffer (palette indices,
// region masks packed as 0/1).
type Uint8Buffer struct{ Data []uint8 }

func AcquireUint8(n int) *Uint8Buffer {
	if v := uint8Pool.Get(); v != nil {
		b := v.(*Uint8Buffer)
		b.Data = growUint8(b.Data, n)
		return b
	}
	return &Uint8Buffer{Data: make([]uint8, n)}
}

func (b *Uint8Buffer) Release() {
	uint8Pool.Put(b)
}

func growUint8(data []uint8, n int) []uint8 {
	if cap(data) < n {
		data = make([]uint8, n)
	} else {
		data = data[:n]
	}
	for i := range data {
		data[i] = 0
	}
	return data
}
