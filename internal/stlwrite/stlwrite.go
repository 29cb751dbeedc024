// Package stlwrite encodes a mesh.Geometry as a binary STL file. The
// writer mirrors the little-endian, fixed-layout binary encoding the
// teacher's internal/bmd.reader uses for decoding (encoding/binary,
// explicit field-by-field layout, no reflection), run in reverse.
package stlwrite

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"bookmark-generator/internal/mathutil"
	"bookmark-generator/internal/mesh"
)

// headerSize is the fixed, conventionally-unused ASCII preamble every
// binary STL file starts with.
const headerSize = 80

// Write encodes g as binary STL to w.
func Write(w io.Writer, g mesh.Geometry) error {
	bw := bufio.NewWriter(w)

	var header [headerSize]byte
	copy(header[:], "bookmark-generator binary STL export")
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("stlwrite: header: %w", err)
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(g.Triangles))); err != nil {
		return fmt.Errorf("stlwrite: triangle count: %w", err)
	}

	for _, tri := range g.Triangles {
		a := g.Vertices[tri[0]]
		b := g.Vertices[tri[1]]
		c := g.Vertices[tri[2]]
		n := faceNormal(a, b, c)

		if err := writeVec3(bw, n); err != nil {
			return err
		}
		if err := writeVec3(bw, a); err != nil {
			return err
		}
		if err := writeVec3(bw, b); err != nil {
			return err
		}
		if err := writeVec3(bw, c); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil {
			return fmt.Errorf("stlwrite: attribute byte count: %w", err)
		}
	}

	return bw.Flush()
}

// WriteFile creates path and writes g to it as binary STL.
func WriteFile(path string, g mesh.Geometry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stlwrite: create %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, g); err != nil {
		return fmt.Errorf("stlwrite: %s: %w", path, err)
	}
	return nil
}

func writeVec3(w io.Writer, v mathutil.Vec3) error {
	coords := [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
	return binary.Write(w, binary.LittleEndian, coords)
}

func faceNormal(a, b, c mathutil.Vec3) mathutil.Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}
