package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshbake/pkg/math"
)

// Box unwrap layout: a 3x2 grid, one column per axis, top row for the
// positive face and bottom row for the negative face.
const (
	lightmapCols   = 3
	lightmapRows   = 2
	lightmapMargin = 0.02 // fraction of a cell left empty on each side
)

// GenerateLightmapUVs returns a box-projected secondary UV set. Each vertex
// is assigned to the cube face of its normal's dominant axis and sign, then
// projected onto that face's remaining two axes, normalized by bounds, into
// the face's cell of a 3x2 grid. The result is independent of the atlas UVs.
func GenerateLightmapUVs(positions, normals []math.Vec3, bounds Bounds) []math.Vec2 {
	size := bounds.Size()
	cellW := float32(1) / lightmapCols
	cellH := float32(1) / lightmapRows

	uvs := make([]math.Vec2, len(positions))
	for i, p := range positions {
		var n math.Vec3
		if i < len(normals) {
			n = normals[i]
		}
		axis, negative := dominantAxis(n)

		var s, t float32
		switch axis {
		case 0:
			s = unit(p.Z, bounds.Min.Z, size.Z)
			t = unit(p.Y, bounds.Min.Y, size.Y)
		case 1:
			s = unit(p.X, bounds.Min.X, size.X)
			t = unit(p.Z, bounds.Min.Z, size.Z)
		default:
			s = unit(p.X, bounds.Min.X, size.X)
			t = unit(p.Y, bounds.Min.Y, size.Y)
		}

		row := 0
		if negative {
			row = 1
		}
		x0 := float32(axis)*cellW + lightmapMargin*cellW
		y0 := float32(row)*cellH + lightmapMargin*cellH
		inner := float32(1 - 2*lightmapMargin)
		uvs[i] = math.Vec2{
			X: x0 + s*cellW*inner,
			Y: y0 + t*cellH*inner,
		}
	}
	return uvs
}

// dominantAxis returns 0, 1 or 2 for X, Y or Z and whether that component
// is negative. A zero normal maps to +Y.
func dominantAxis(n math.Vec3) (axis int, negative bool) {
	ax, ay, az := math32.Abs(n.X), math32.Abs(n.Y), math32.Abs(n.Z)
	switch {
	case ax == 0 && ay == 0 && az == 0:
		return 1, false
	case ax >= ay && ax >= az:
		return 0, n.X < 0
	case ay >= az:
		return 1, n.Y < 0
	default:
		return 2, n.Z < 0
	}
}

// unit maps v from [lo, lo+extent] into [0,1]; a flat extent maps to 0.5.
func unit(v, lo, extent float32) float32 {
	if extent <= 1e-9 {
		return 0.5
	}
	return math32.Min(math32.Max((v-lo)/extent, 0), 1)
}
