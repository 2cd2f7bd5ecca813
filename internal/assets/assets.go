// Package assets persists bake output: atlas images, the combined mesh and
// the material that binds them.
package assets

import (
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/meshbake/pkg/mesh"
)

var (
	// ErrUnknownHandle is returned when a handle was not issued by the store.
	ErrUnknownHandle = errors.New("unknown asset handle")
	// ErrWrongKind is returned when a handle refers to the wrong kind of asset.
	ErrWrongKind = errors.New("wrong asset kind")
	// ErrUnsupportedFormat is returned for image paths with no encoder.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Kind identifies what a handle refers to.
type Kind int

const (
	KindImage Kind = iota + 1
	KindMesh
	KindMaterial
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindMesh:
		return "mesh"
	case KindMaterial:
		return "material"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Handle refers to a persisted asset. Path is relative to the store root.
type Handle struct {
	Kind Kind
	Path string
}

// IsZero reports whether h was never assigned.
func (h Handle) IsZero() bool {
	return h == Handle{}
}

func (h Handle) String() string {
	if h.IsZero() {
		return "<none>"
	}
	return h.Kind.String() + ":" + h.Path
}

// Store is where a bake writes its results. Every method is fatal to the
// bake on error; partial output is left in place.
type Store interface {
	// SaveImage persists img at path and returns its handle.
	SaveImage(img image.Image, path string) (Handle, error)
	// SetImageLinear marks an image as holding linear (non-color) data.
	SetImageLinear(h Handle) error
	// SaveMesh persists the combined mesh at path.
	SaveMesh(m *mesh.Combined, path string) (Handle, error)
	// CreateMaterial creates a material using the named shader.
	CreateMaterial(shader, path string) (Handle, error)
	// SetMaterialImage binds an image to a material slot.
	SetMaterialImage(mat Handle, slot string, img Handle) error
	// SetMaterialKeyword enables a shader feature keyword on a material.
	SetMaterialKeyword(mat Handle, name string) error
}

// Material is the persisted form of a material.
type Material struct {
	Shader   string            `yaml:"shader"`
	Slots    map[string]string `yaml:"slots,omitempty"`
	Keywords []string          `yaml:"keywords,omitempty"`
}

// ImageMeta is the import sidecar written next to every image.
type ImageMeta struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Linear bool `yaml:"linear"`
}

func checkKind(h Handle, want Kind) error {
	if h.IsZero() {
		return fmt.Errorf("%w: empty handle", ErrUnknownHandle)
	}
	if h.Kind != want {
		return fmt.Errorf("%w: %s is not a %s", ErrWrongKind, h, want)
	}
	return nil
}

func addKeyword(keywords []string, name string) []string {
	for _, k := range keywords {
		if k == name {
			return keywords
		}
	}
	return append(keywords, name)
}
