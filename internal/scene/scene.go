package scene

import (
	"fmt"
	"path/filepath"

	"github.com/Faultbox/meshbake/internal/bake"
	"github.com/Faultbox/meshbake/internal/texture"
	"github.com/Faultbox/meshbake/pkg/mesh"
)

// Scene is a loaded selection ready to bake.
type Scene struct {
	Path    string
	Objects []bake.SourceObject

	// Loaded assets by manifest key. Objects naming the same key share
	// one pointer.
	Meshes    map[string]*mesh.Mesh
	Materials map[string]*bake.Material
}

// Load reads a manifest and the meshes and images its objects use. Images
// go through cache, so scenes loaded with the same cache share them.
func Load(path string, cache *texture.Cache) (*Scene, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("loading scene %s: %w", path, err)
	}
	if cache == nil {
		cache = texture.NewCache()
	}

	l := &loader{
		dir:      filepath.Dir(path),
		manifest: m,
		cache:    cache,
		scene: &Scene{
			Path:      path,
			Meshes:    make(map[string]*mesh.Mesh),
			Materials: make(map[string]*bake.Material),
		},
	}
	for i, o := range m.Objects {
		obj, err := l.object(i, o)
		if err != nil {
			return nil, fmt.Errorf("loading scene %s: %w", path, err)
		}
		l.scene.Objects = append(l.scene.Objects, obj)
	}
	return l.scene, nil
}

type loader struct {
	dir      string
	manifest *Manifest
	cache    *texture.Cache
	scene    *Scene
}

func (l *loader) object(i int, o ObjectEntry) (bake.SourceObject, error) {
	name := o.Name
	if name == "" {
		name = fmt.Sprintf("object%d", i)
	}

	xf, err := o.Transform()
	if err != nil {
		return bake.SourceObject{}, fmt.Errorf("object %q: %w", name, err)
	}
	msh, err := l.mesh(o.Mesh)
	if err != nil {
		return bake.SourceObject{}, fmt.Errorf("object %q: %w", name, err)
	}
	mat, err := l.material(o.Material)
	if err != nil {
		return bake.SourceObject{}, fmt.Errorf("object %q: %w", name, err)
	}

	return bake.SourceObject{Name: name, Mesh: msh, Transform: xf, Material: mat}, nil
}

// mesh loads a mesh key once.
func (l *loader) mesh(key string) (*mesh.Mesh, error) {
	if m, ok := l.scene.Meshes[key]; ok {
		return m, nil
	}
	entry, ok := l.manifest.Meshes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMesh, key)
	}

	m, err := mesh.ReadGLTF(l.resolve(entry.Path))
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", key, err)
	}
	m.Name = key
	l.scene.Meshes[key] = m
	return m, nil
}

// material loads a material key once. An empty key leaves the object
// without a material.
func (l *loader) material(key string) (*bake.Material, error) {
	if key == "" {
		return nil, nil
	}
	if m, ok := l.scene.Materials[key]; ok {
		return m, nil
	}
	entry, ok := l.manifest.Materials[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterial, key)
	}

	mat := bake.NewMaterial(key)
	mat.NormalPacked = entry.NormalPacked
	sources := []struct {
		kind bake.ChannelKind
		path string
	}{
		{bake.Albedo, entry.Albedo},
		{bake.Normal, entry.Normal},
		{bake.Specular, entry.Specular},
		{bake.Metallic, entry.Metallic},
		{bake.AO, entry.AO},
	}
	for _, src := range sources {
		if src.path == "" {
			continue
		}
		img, err := l.cache.Get(l.resolve(src.path))
		if err != nil {
			return nil, fmt.Errorf("material %q %v: %w", key, src.kind, err)
		}
		mat.Images[src.kind] = img
	}

	l.scene.Materials[key] = mat
	return mat, nil
}

func (l *loader) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(l.dir, p)
}
