package mesh

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshbake/pkg/math"
)

// ReadGLTF loads the first primitive of the first mesh in a .gltf or .glb
// file. Only triangle lists are accepted. Missing indices are generated.
func ReadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return nil, fmt.Errorf("%w: %s has no mesh primitives", ErrInvalidMesh, path)
	}

	gm := doc.Meshes[0]
	prim := gm.Primitives[0]
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("%w: %s primitive mode %v is not a triangle list", ErrInvalidMesh, path, prim.Mode)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no POSITION attribute", ErrInvalidMesh, path)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	m := &Mesh{Name: gm.Name, Positions: make([]math.Vec3, len(positions))}
	for i, p := range positions {
		m.Positions[i] = math.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		m.Normals = make([]math.Vec3, len(normals))
		for i, n := range normals {
			m.Normals[i] = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("reading texcoords: %w", err)
		}
		m.UVs = make([]math.Vec2, len(uvs))
		for i, uv := range uvs {
			m.UVs[i] = math.Vec2{X: uv[0], Y: uv[1]}
		}
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
		m.Indices = indices
	} else {
		m.Indices = make([]uint32, len(m.Positions))
		for i := range m.Indices {
			m.Indices[i] = uint32(i)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteGLB saves a combined mesh as a binary glTF with POSITION, NORMAL,
// TEXCOORD_0 (atlas) and TEXCOORD_1 (lightmap). The index accessor keeps the
// combined mesh's index width.
func WriteGLB(c *Combined, name, path string) error {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "meshbake"

	positions := make([][3]float32, len(c.Positions))
	for i, p := range c.Positions {
		positions[i] = [3]float32{p.X, p.Y, p.Z}
	}
	normals := make([][3]float32, len(c.Normals))
	for i, n := range c.Normals {
		normals[i] = [3]float32{n.X, n.Y, n.Z}
	}

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	uv0Accessor := modeler.WriteTextureCoord(doc, toArray2(c.UV0))
	uv1Accessor := modeler.WriteTextureCoord(doc, toArray2(c.UV1))

	var indicesAccessor uint32
	if c.IndexFormat == Index32 {
		indicesAccessor = modeler.WriteIndices(doc, c.Indices32)
	} else {
		indicesAccessor = modeler.WriteIndices(doc, c.Indices16)
	}

	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION:   posAccessor,
			gltf.NORMAL:     normalAccessor,
			gltf.TEXCOORD_0: uv0Accessor,
			gltf.TEXCOORD_1: uv1Accessor,
		},
		Indices: gltf.Index(indicesAccessor),
	}

	doc.Meshes = []*gltf.Mesh{{Name: name, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func toArray2(uvs []math.Vec2) [][2]float32 {
	out := make([][2]float32, len(uvs))
	for i, uv := range uvs {
		out[i] = [2]float32{uv.X, uv.Y}
	}
	return out
}
