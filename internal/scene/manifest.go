// Package scene loads a bake selection from a YAML scene manifest.
//
// A manifest names meshes and materials once and places them as objects:
//
//	meshes:
//	  crate: {path: meshes/crate.glb}
//	materials:
//	  wood: {albedo: textures/wood.png, normal: textures/wood_n.tga, normal_packed: true}
//	objects:
//	  - {name: crate_a, mesh: crate, material: wood, position: [0, 0, 0]}
//
// Relative paths resolve against the manifest's directory.
package scene

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshbake/pkg/math"
)

var (
	ErrUnknownMesh      = errors.New("unknown mesh")
	ErrUnknownMaterial  = errors.New("unknown material")
	ErrInvalidTransform = errors.New("invalid transform")
)

// Manifest is the on-disk scene description.
type Manifest struct {
	Meshes    map[string]MeshEntry     `yaml:"meshes"`
	Materials map[string]MaterialEntry `yaml:"materials"`
	Objects   []ObjectEntry            `yaml:"objects"`
}

// MeshEntry points at a glTF or GLB file.
type MeshEntry struct {
	Path string `yaml:"path"`
}

// MaterialEntry lists the source image of each channel. Empty means absent.
type MaterialEntry struct {
	Albedo       string `yaml:"albedo"`
	Normal       string `yaml:"normal"`
	NormalPacked bool   `yaml:"normal_packed"`
	Specular     string `yaml:"specular"`
	Metallic     string `yaml:"metallic"`
	AO           string `yaml:"ao"`
}

// ObjectEntry places a mesh with a material.
type ObjectEntry struct {
	Name     string    `yaml:"name"`
	Mesh     string    `yaml:"mesh"`
	Material string    `yaml:"material"`
	Position []float32 `yaml:"position,flow"`
	Rotation []float32 `yaml:"rotation,flow"` // quaternion x,y,z,w or Euler degrees x,y,z
	Scale    []float32 `yaml:"scale,flow"`    // x,y,z or one uniform value
}

// ReadManifest parses the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// ParseManifest parses manifest YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Transform returns the object's local-to-world matrix.
func (o ObjectEntry) Transform() (math.Mat4, error) {
	var t math.Vec3
	switch len(o.Position) {
	case 0:
	case 3:
		t = math.Vec3{X: o.Position[0], Y: o.Position[1], Z: o.Position[2]}
	default:
		return math.Mat4{}, fmt.Errorf("%w: position needs 3 values, got %d", ErrInvalidTransform, len(o.Position))
	}

	r := math.QuatIdentity()
	switch len(o.Rotation) {
	case 0:
	case 3:
		r = math.QuatFromEuler(o.Rotation[0], o.Rotation[1], o.Rotation[2])
	case 4:
		r = math.Quat{X: o.Rotation[0], Y: o.Rotation[1], Z: o.Rotation[2], W: o.Rotation[3]}
		if r.IsZero() {
			return math.Mat4{}, fmt.Errorf("%w: zero rotation quaternion", ErrInvalidTransform)
		}
		r = r.Normalize()
	default:
		return math.Mat4{}, fmt.Errorf("%w: rotation needs 3 or 4 values, got %d", ErrInvalidTransform, len(o.Rotation))
	}

	s := math.Vec3{X: 1, Y: 1, Z: 1}
	switch len(o.Scale) {
	case 0:
	case 1:
		s = math.Vec3{X: o.Scale[0], Y: o.Scale[0], Z: o.Scale[0]}
	case 3:
		s = math.Vec3{X: o.Scale[0], Y: o.Scale[1], Z: o.Scale[2]}
	default:
		return math.Mat4{}, fmt.Errorf("%w: scale needs 1 or 3 values, got %d", ErrInvalidTransform, len(o.Scale))
	}
	if s.X == 0 || s.Y == 0 || s.Z == 0 {
		return math.Mat4{}, fmt.Errorf("%w: zero scale", ErrInvalidTransform)
	}

	return math.TRS(t, r, s), nil
}
