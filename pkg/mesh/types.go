// Package mesh holds indexed triangle meshes and merges many of them,
// each with its own world transform, into one combined buffer.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshbake/pkg/math"
)

// ErrInvalidMesh is returned for malformed vertex or index data.
var ErrInvalidMesh = errors.New("invalid mesh")

// MaxIndex16Vertices is the vertex count at which combined meshes switch to
// 32-bit indices.
const MaxIndex16Vertices = 65536

// IndexFormat is the width of a combined mesh's index buffer.
type IndexFormat int

const (
	Index16 IndexFormat = iota
	Index32
)

func (f IndexFormat) String() string {
	if f == Index32 {
		return "uint32"
	}
	return "uint16"
}

// IndexFormatFor returns Index32 when vertexCount reaches 65536, else Index16.
func IndexFormatFor(vertexCount int) IndexFormat {
	if vertexCount >= MaxIndex16Vertices {
		return Index32
	}
	return Index16
}

// Mesh is an indexed triangle list in local space.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3 // empty or one per position
	UVs       []math.Vec2 // empty or one per position, in [0,1]
	Indices   []uint32    // three per triangle
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// HasGeometry reports whether the mesh has at least one triangle.
func (m *Mesh) HasGeometry() bool {
	return m != nil && len(m.Positions) > 0 && len(m.Indices) >= 3
}

// Validate checks attribute lengths and index ranges.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return fmt.Errorf("%w: %s has %d normals for %d positions", ErrInvalidMesh, m.Name, len(m.Normals), n)
	}
	if len(m.UVs) != 0 && len(m.UVs) != n {
		return fmt.Errorf("%w: %s has %d uvs for %d positions", ErrInvalidMesh, m.Name, len(m.UVs), n)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %s index count %d is not a multiple of 3", ErrInvalidMesh, m.Name, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: %s index %d = %d out of range (%d vertices)", ErrInvalidMesh, m.Name, i, idx, n)
		}
	}
	return nil
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Size returns Max - Min.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Combined is the merged world-space mesh produced by Combine.
type Combined struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	UV0       []math.Vec2 // atlas-space texture coordinates
	UV1       []math.Vec2 // lightmap coordinates

	// Exactly one of Indices16 and Indices32 is set, per IndexFormat.
	IndexFormat IndexFormat
	Indices16   []uint16
	Indices32   []uint32

	Bounds Bounds
}

// VertexCount returns the number of vertices.
func (c *Combined) VertexCount() int {
	return len(c.Positions)
}

// IndexCount returns the number of indices.
func (c *Combined) IndexCount() int {
	if c.IndexFormat == Index32 {
		return len(c.Indices32)
	}
	return len(c.Indices16)
}

// Index returns index i widened to uint32.
func (c *Combined) Index(i int) uint32 {
	if c.IndexFormat == Index32 {
		return c.Indices32[i]
	}
	return uint32(c.Indices16[i])
}
