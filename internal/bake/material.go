package bake

import (
	"image"

	"github.com/Faultbox/meshbake/pkg/math"
	"github.com/Faultbox/meshbake/pkg/mesh"
)

// Material is the set of source images one object is rendered with.
// Images are read-only; the baker never writes into them.
type Material struct {
	Name   string
	Images map[ChannelKind]*image.NRGBA

	// NormalPacked marks a normal image stored with X in alpha instead of red.
	NormalPacked bool
}

// NewMaterial creates an empty material.
func NewMaterial(name string) *Material {
	return &Material{Name: name, Images: make(map[ChannelKind]*image.NRGBA)}
}

// Image returns the image for kind k, or nil.
func (m *Material) Image(k ChannelKind) *image.NRGBA {
	if m == nil {
		return nil
	}
	return m.Images[k]
}

// SourceObject is one selected object: shared geometry placed in the world
// with a material. Several objects may point at the same Mesh.
type SourceObject struct {
	Name      string
	Mesh      *mesh.Mesh
	Transform math.Mat4 // local to world; a singular matrix is rejected
	Material  *Material
}

// uniqueMesh is a mesh used by one or more objects, in first-seen order.
type uniqueMesh struct {
	mesh     *mesh.Mesh
	material *Material
	owner    string // first object seen with this mesh
	uvs      []math.Vec2
}

func (u *uniqueMesh) name() string {
	if u.mesh.Name != "" {
		return u.mesh.Name
	}
	return u.owner
}
