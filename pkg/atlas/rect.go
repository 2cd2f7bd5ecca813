package atlas

import (
	"image"

	"github.com/Faultbox/meshbake/pkg/math"
)

// Rect is a placement in normalized atlas space. Y grows with image rows,
// the same orientation as glTF texture coordinates.
type Rect struct {
	XMin, YMin, XMax, YMax float32
}

// Normalize converts integer pixel bounds in a size x size atlas to a Rect.
func Normalize(p image.Rectangle, size int) Rect {
	s := float32(size)
	return Rect{
		XMin: float32(p.Min.X) / s,
		YMin: float32(p.Min.Y) / s,
		XMax: float32(p.Max.X) / s,
		YMax: float32(p.Max.Y) / s,
	}
}

// Width returns the normalized width.
func (r Rect) Width() float32 { return r.XMax - r.XMin }

// Height returns the normalized height.
func (r Rect) Height() float32 { return r.YMax - r.YMin }

// Overlaps reports whether r and o share interior area. Touching edges do
// not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.XMin < o.XMax && o.XMin < r.XMax &&
		r.YMin < o.YMax && o.YMin < r.YMax
}

// RemapUVs maps per-vertex UVs from local [0,1] space into r:
// u' = lerp(r.XMin, r.XMax, u), v' = lerp(r.YMin, r.YMax, v).
// The input slice is not modified.
func RemapUVs(uvs []math.Vec2, r Rect) []math.Vec2 {
	out := make([]math.Vec2, len(uvs))
	for i, uv := range uvs {
		out[i] = math.Vec2{
			X: math.Lerp(r.XMin, r.XMax, uv.X),
			Y: math.Lerp(r.YMin, r.YMax, uv.Y),
		}
	}
	return out
}
