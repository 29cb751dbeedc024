package stlwrite

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"bookmark-generator/internal/mathutil"
	"bookmark-generator/internal/mesh"
)

func singleTriangle() mesh.Geometry {
	return mesh.Geometry{
		Vertices: []mathutil.Vec3{
			{0, 0, 0},
			{1, 0, 0},
			{0, 1, 0},
		},
		Triangles: []mesh.Triangle{{0, 1, 2}},
	}
}

func TestWriteProducesExpectedByteLength(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, singleTriangle()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := headerSize + 4 + 50*1
	if buf.Len() != want {
		t.Fatalf("expected %d bytes, got %d", want, buf.Len())
	}
}

func TestWriteEncodesTriangleCountAndVertices(t *testing.T) {
	var buf bytes.Buffer
	g := singleTriangle()
	if err := Write(&buf, g); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := buf.Bytes()

	count := binary.LittleEndian.Uint32(data[headerSize : headerSize+4])
	if count != 1 {
		t.Fatalf("expected triangle count 1, got %d", count)
	}

	facet := data[headerSize+4:]
	readFloat := func(off int) float32 {
		bits := binary.LittleEndian.Uint32(facet[off : off+4])
		return math.Float32frombits(bits)
	}

	// normal (0,0,1) for this CCW triangle in the XY plane.
	nx, ny, nz := readFloat(0), readFloat(4), readFloat(8)
	if nx != 0 || ny != 0 || nz != 1 {
		t.Fatalf("unexpected normal: %v %v %v", nx, ny, nz)
	}

	// first vertex at origin.
	vx, vy, vz := readFloat(12), readFloat(16), readFloat(20)
	if vx != 0 || vy != 0 || vz != 0 {
		t.Fatalf("unexpected first vertex: %v %v %v", vx, vy, vz)
	}
}

func TestWriteFileRoundTripsToDisk(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/out.stl"
	if err := WriteFile(path, singleTriangle()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}
