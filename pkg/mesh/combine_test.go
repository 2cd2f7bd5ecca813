package mesh

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Faultbox/meshbake/pkg/math"
)

// quad returns a unit quad in the XY plane facing +Z.
func quad(name string) *Mesh {
	return &Mesh{
		Name: name,
		Positions: []math.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 1, Y: 1, Z: 0},
		},
		Normals: []math.Vec3{{Z: 1}, {Z: 1}, {Z: 1}, {Z: 1}},
		UVs:     []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}},
		Indices: []uint32{0, 1, 2, 2, 1, 3},
	}
}

// pointCloud returns a mesh with n vertices and a single triangle.
func pointCloud(n int) *Mesh {
	return &Mesh{
		Name:      "cloud",
		Positions: make([]math.Vec3, n),
		Indices:   []uint32{0, 1, 2},
	}
}

func TestIndexFormatFor(t *testing.T) {
	tests := []struct {
		verts int
		want  IndexFormat
	}{
		{0, Index16},
		{3, Index16},
		{65535, Index16},
		{65536, Index32},
		{200000, Index32},
	}
	for _, tt := range tests {
		if got := IndexFormatFor(tt.verts); got != tt.want {
			t.Errorf("IndexFormatFor(%d) = %v, want %v", tt.verts, got, tt.want)
		}
	}
}

func TestCombineIndexWidthBoundary(t *testing.T) {
	tests := []struct {
		name  string
		sizes []int
		want  IndexFormat
	}{
		{"65535 single", []int{65535}, Index16},
		{"65536 single", []int{65536}, Index32},
		{"65535 split", []int{40000, 25535}, Index16},
		{"65536 split", []int{40000, 25536}, Index32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []Entry
			total := 0
			for _, n := range tt.sizes {
				entries = append(entries, Entry{Mesh: pointCloud(n), Transform: math.Identity()})
				total += n
			}

			c, err := Combine(entries)
			if err != nil {
				t.Fatalf("Combine: %v", err)
			}
			if c.VertexCount() != total {
				t.Fatalf("vertex count = %d, want %d", c.VertexCount(), total)
			}
			if c.IndexFormat != tt.want {
				t.Errorf("index format = %v, want %v", c.IndexFormat, tt.want)
			}
			if tt.want == Index16 && (c.Indices16 == nil || c.Indices32 != nil) {
				t.Error("expected only 16-bit indices to be set")
			}
			if tt.want == Index32 && (c.Indices32 == nil || c.Indices16 != nil) {
				t.Error("expected only 32-bit indices to be set")
			}
		})
	}
}

func TestCombineOffsetsIndicesAndTransforms(t *testing.T) {
	shared := quad("shared")
	entries := []Entry{
		{Mesh: shared, Transform: math.Identity()},
		{Mesh: shared, Transform: math.Translate(10, 0, 0)},
		{Mesh: quad("other"), Transform: math.Scale(2, 2, 2)},
	}

	c, err := Combine(entries)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	if c.VertexCount() != 12 {
		t.Fatalf("vertex count = %d, want 12", c.VertexCount())
	}
	if c.IndexCount() != 18 {
		t.Fatalf("index count = %d, want 18", c.IndexCount())
	}

	// Second instance starts at vertex 4 and is translated
	if got := c.Index(6); got != 4 {
		t.Errorf("first index of second entry = %d, want 4", got)
	}
	if got := c.Positions[5]; got != (math.Vec3{X: 11, Y: 0, Z: 0}) {
		t.Errorf("translated vertex = %v, want (11,0,0)", got)
	}
	// Third entry is scaled
	if got := c.Positions[11]; got != (math.Vec3{X: 2, Y: 2, Z: 0}) {
		t.Errorf("scaled vertex = %v, want (2,2,0)", got)
	}
	if got := c.Index(17); got != 11 {
		t.Errorf("last index = %d, want 11", got)
	}

	wantBounds := Bounds{Min: math.Vec3{}, Max: math.Vec3{X: 11, Y: 2, Z: 0}}
	if c.Bounds != wantBounds {
		t.Errorf("bounds = %v, want %v", c.Bounds, wantBounds)
	}
}

func TestCombineUsesEntryUVs(t *testing.T) {
	q := quad("q")
	remapped := []math.Vec2{{X: 0.5, Y: 0.5}, {X: 1, Y: 0.5}, {X: 0.5, Y: 1}, {X: 1, Y: 1}}

	c, err := Combine([]Entry{
		{Mesh: q, Transform: math.Identity(), UVs: remapped},
		{Mesh: q, Transform: math.Identity()},
	})
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	for i := range remapped {
		if c.UV0[i] != remapped[i] {
			t.Errorf("uv %d = %v, want %v", i, c.UV0[i], remapped[i])
		}
		if c.UV0[4+i] != q.UVs[i] {
			t.Errorf("uv %d (own) = %v, want %v", 4+i, c.UV0[4+i], q.UVs[i])
		}
	}
	// Source mesh untouched
	if q.UVs[0] != (math.Vec2{}) {
		t.Errorf("source uv modified: %v", q.UVs[0])
	}
}

func TestCombineRejectsUVMismatch(t *testing.T) {
	_, err := Combine([]Entry{{Mesh: quad("q"), Transform: math.Identity(), UVs: []math.Vec2{{}}}})
	if !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("expected ErrInvalidMesh, got %v", err)
	}
}

func TestCombineRejectsBadIndices(t *testing.T) {
	bad := quad("bad")
	bad.Indices = []uint32{0, 1, 9}
	_, err := Combine([]Entry{{Mesh: bad, Transform: math.Identity()}})
	if !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("expected ErrInvalidMesh, got %v", err)
	}
}

func TestCombineMirroredTransformReversesWinding(t *testing.T) {
	c, err := Combine([]Entry{{Mesh: quad("q"), Transform: math.Scale(-1, 1, 1)}})
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	want := []uint32{0, 2, 1, 2, 3, 1}
	for i, w := range want {
		if got := c.Index(i); got != w {
			t.Errorf("index %d = %d, want %d", i, got, w)
		}
	}
}

func TestCombineTransformsNormals(t *testing.T) {
	rot := math.QuatFromEuler(0, 90, 0)
	c, err := Combine([]Entry{{Mesh: quad("q"), Transform: math.TRS(math.Vec3{X: 5}, rot, math.Vec3{X: 1, Y: 1, Z: 1})}})
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	// +Z rotated 90 degrees about Y becomes +X
	if !c.Normals[0].ApproxEqual(math.Vec3{X: 1}, 1e-5) {
		t.Errorf("normal = %v, want (1,0,0)", c.Normals[0])
	}
}

func TestCombineComputesMissingNormals(t *testing.T) {
	q := quad("q")
	q.Normals = nil
	c, err := Combine([]Entry{{Mesh: q, Transform: math.Identity()}})
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	for i, n := range c.Normals {
		if !n.ApproxEqual(math.Vec3{Z: 1}, 1e-5) {
			t.Errorf("normal %d = %v, want (0,0,1)", i, n)
		}
	}
}

func TestGenerateLightmapUVsInUnitSquare(t *testing.T) {
	c, err := Combine([]Entry{
		{Mesh: quad("a"), Transform: math.Identity()},
		{Mesh: quad("b"), Transform: math.TRS(math.Vec3{Y: 3}, math.QuatFromEuler(90, 0, 0), math.Vec3{X: 1, Y: 1, Z: 1})},
		{Mesh: quad("c"), Transform: math.Scale(-1, 1, -1)},
	})
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	if len(c.UV1) != c.VertexCount() {
		t.Fatalf("uv1 count = %d, want %d", len(c.UV1), c.VertexCount())
	}
	for i, uv := range c.UV1 {
		if uv.X < 0 || uv.X > 1 || uv.Y < 0 || uv.Y > 1 {
			t.Errorf("uv1 %d = %v outside unit square", i, uv)
		}
	}
}

func TestGenerateLightmapUVsSeparatesFaces(t *testing.T) {
	positions := []math.Vec3{{X: 0.5, Y: 0.5, Z: 0.5}, {X: 0.5, Y: 0.5, Z: 0.5}}
	normals := []math.Vec3{{Z: 1}, {Z: -1}}
	bounds := Bounds{Max: math.Vec3{X: 1, Y: 1, Z: 1}}

	uvs := GenerateLightmapUVs(positions, normals, bounds)

	// +Z goes to the top row of the third column, -Z to the bottom row
	if uvs[0].X < 2.0/3 || uvs[0].Y >= 0.5 {
		t.Errorf("+Z uv = %v, want third column top row", uvs[0])
	}
	if uvs[1].X < 2.0/3 || uvs[1].Y < 0.5 {
		t.Errorf("-Z uv = %v, want third column bottom row", uvs[1])
	}
}

func TestWriteGLBReadBack(t *testing.T) {
	c, err := Combine([]Entry{
		{Mesh: quad("a"), Transform: math.Identity()},
		{Mesh: quad("b"), Transform: math.Translate(2, 0, 0)},
	})
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	path := filepath.Join(t.TempDir(), "combined.glb")
	if err := WriteGLB(c, "Combined", path); err != nil {
		t.Fatalf("WriteGLB: %v", err)
	}

	m, err := ReadGLTF(path)
	if err != nil {
		t.Fatalf("ReadGLTF: %v", err)
	}
	if m.VertexCount() != c.VertexCount() {
		t.Errorf("vertex count = %d, want %d", m.VertexCount(), c.VertexCount())
	}
	if len(m.Indices) != c.IndexCount() {
		t.Errorf("index count = %d, want %d", len(m.Indices), c.IndexCount())
	}
	if m.Positions[5] != c.Positions[5] {
		t.Errorf("position 5 = %v, want %v", m.Positions[5], c.Positions[5])
	}
	if m.UVs[3] != c.UV0[3] {
		t.Errorf("uv 3 = %v, want %v", m.UVs[3], c.UV0[3])
	}
}
