package mesh

import (
	"fmt"

	"github.com/Faultbox/meshbake/pkg/math"
)

// Entry is one instance to merge: a shared mesh, its world transform, and
// the UVs to write for it. Nil UVs keep the mesh's own coordinates.
type Entry struct {
	Mesh      *Mesh
	Transform math.Mat4
	UVs       []math.Vec2
}

// Combine merges every entry into one buffer. Positions are transformed to
// world space, normals by the inverse-transpose, and indices are offset by
// the running vertex count. Entries whose transform mirrors geometry get
// their triangle winding reversed. The index width follows IndexFormatFor.
func Combine(entries []Entry) (*Combined, error) {
	totalVerts, totalIdx := 0, 0
	for i, e := range entries {
		if e.Mesh == nil {
			return nil, fmt.Errorf("%w: entry %d has no mesh", ErrInvalidMesh, i)
		}
		if err := e.Mesh.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if e.UVs != nil && len(e.UVs) != e.Mesh.VertexCount() {
			return nil, fmt.Errorf("%w: entry %d has %d uvs for %d vertices", ErrInvalidMesh, i, len(e.UVs), e.Mesh.VertexCount())
		}
		totalVerts += e.Mesh.VertexCount()
		totalIdx += len(e.Mesh.Indices)
	}

	out := &Combined{
		Positions:   make([]math.Vec3, 0, totalVerts),
		Normals:     make([]math.Vec3, 0, totalVerts),
		UV0:         make([]math.Vec2, 0, totalVerts),
		IndexFormat: IndexFormatFor(totalVerts),
	}
	indices := make([]uint32, 0, totalIdx)

	bounds := Bounds{
		Min: math.Vec3{X: 1e30, Y: 1e30, Z: 1e30},
		Max: math.Vec3{X: -1e30, Y: -1e30, Z: -1e30},
	}

	for _, e := range entries {
		m := e.Mesh
		base := uint32(len(out.Positions))
		normalMatrix := e.Transform.NormalMatrix()
		reverseWinding := e.Transform.Determinant3() < 0

		normals := m.Normals
		if len(normals) == 0 {
			normals = ComputeNormals(m.Positions, m.Indices)
		}

		for i, p := range m.Positions {
			wp := e.Transform.TransformPoint(p)
			bounds.Min = bounds.Min.Min(wp)
			bounds.Max = bounds.Max.Max(wp)
			out.Positions = append(out.Positions, wp)
			out.Normals = append(out.Normals, normalMatrix.TransformDirection(normals[i]).Normalize())
		}

		switch {
		case e.UVs != nil:
			out.UV0 = append(out.UV0, e.UVs...)
		case len(m.UVs) != 0:
			out.UV0 = append(out.UV0, m.UVs...)
		default:
			out.UV0 = append(out.UV0, make([]math.Vec2, m.VertexCount())...)
		}

		for t := 0; t+2 < len(m.Indices); t += 3 {
			a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
			if reverseWinding {
				b, c = c, b
			}
			indices = append(indices, base+a, base+b, base+c)
		}
	}

	if totalVerts == 0 {
		bounds = Bounds{}
	}
	out.Bounds = bounds

	if out.IndexFormat == Index32 {
		out.Indices32 = indices
	} else {
		out.Indices16 = make([]uint16, len(indices))
		for i, idx := range indices {
			out.Indices16[i] = uint16(idx)
		}
	}

	out.UV1 = GenerateLightmapUVs(out.Positions, out.Normals, out.Bounds)
	return out, nil
}

// ComputeNormals returns area-weighted smooth vertex normals.
func ComputeNormals(positions []math.Vec3, indices []uint32) []math.Vec3 {
	normals := make([]math.Vec3, len(positions))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		p0, p1, p2 := positions[i0], positions[i1], positions[i2]
		// Cross product length is twice the triangle area
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		normals[i0] = normals[i0].Add(n)
		normals[i1] = normals[i1].Add(n)
		normals[i2] = normals[i2].Add(n)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}
