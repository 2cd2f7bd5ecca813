package assets

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/HugoSmits86/nativewebp"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshbake/pkg/mesh"
)

// MetaSuffix is appended to an image path to name its import sidecar.
const MetaSuffix = ".meta.yaml"

// FileStore writes assets under a root directory. Images are encoded by
// extension (.png or .webp), meshes as GLB and materials as YAML.
type FileStore struct {
	root string

	mu        sync.Mutex
	images    map[string]ImageMeta
	materials map[string]*Material
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &FileStore{
		root:      dir,
		images:    make(map[string]ImageMeta),
		materials: make(map[string]*Material),
	}, nil
}

// Root returns the store's root directory.
func (s *FileStore) Root() string {
	return s.root
}

// Abs returns the on-disk path of a handle.
func (s *FileStore) Abs(h Handle) string {
	return filepath.Join(s.root, filepath.FromSlash(h.Path))
}

// SaveImage encodes img as PNG or lossless WebP and writes its sidecar.
func (s *FileStore) SaveImage(img image.Image, path string) (Handle, error) {
	var encode func(io.Writer, image.Image) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encode = png.Encode
	case ".webp":
		encode = func(w io.Writer, img image.Image) error {
			return nativewebp.Encode(w, img, nil)
		}
	default:
		return Handle{}, fmt.Errorf("saving %s: %w", path, ErrUnsupportedFormat)
	}

	h := Handle{Kind: KindImage, Path: filepath.ToSlash(path)}
	full := s.Abs(h)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return Handle{}, fmt.Errorf("creating dir for %s: %w", path, err)
	}

	f, err := os.Create(full)
	if err != nil {
		return Handle{}, fmt.Errorf("creating %s: %w", path, err)
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return Handle{}, fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Handle{}, fmt.Errorf("writing %s: %w", path, err)
	}

	size := img.Bounds().Size()
	meta := ImageMeta{Width: size.X, Height: size.Y}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[h.Path] = meta
	if err := writeYAML(full+MetaSuffix, meta); err != nil {
		return Handle{}, err
	}
	return h, nil
}

// SetImageLinear rewrites the image's sidecar with linear set.
func (s *FileStore) SetImageLinear(h Handle) error {
	if err := checkKind(h, KindImage); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.images[h.Path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	meta.Linear = true
	s.images[h.Path] = meta
	return writeYAML(s.Abs(h)+MetaSuffix, meta)
}

// SaveMesh writes the combined mesh as a binary glTF file.
func (s *FileStore) SaveMesh(m *mesh.Combined, path string) (Handle, error) {
	h := Handle{Kind: KindMesh, Path: filepath.ToSlash(path)}
	full := s.Abs(h)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return Handle{}, fmt.Errorf("creating dir for %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := mesh.WriteGLB(m, name, full); err != nil {
		return Handle{}, fmt.Errorf("saving mesh %s: %w", path, err)
	}
	return h, nil
}

// CreateMaterial writes a new material file with no bindings.
func (s *FileStore) CreateMaterial(shader, path string) (Handle, error) {
	h := Handle{Kind: KindMaterial, Path: filepath.ToSlash(path)}
	mat := &Material{Shader: shader, Slots: make(map[string]string)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials[h.Path] = mat
	if err := s.writeMaterial(h, mat); err != nil {
		return Handle{}, err
	}
	return h, nil
}

// SetMaterialImage binds img to slot and rewrites the material file. The
// stored reference is relative to the material's directory.
func (s *FileStore) SetMaterialImage(mat Handle, slot string, img Handle) error {
	if err := checkKind(mat, KindMaterial); err != nil {
		return err
	}
	if err := checkKind(img, KindImage); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[mat.Path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, mat)
	}
	if _, ok := s.images[img.Path]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, img)
	}

	ref, err := filepath.Rel(filepath.Dir(s.Abs(mat)), s.Abs(img))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", img, err)
	}
	m.Slots[slot] = filepath.ToSlash(ref)
	return s.writeMaterial(mat, m)
}

// SetMaterialKeyword adds a keyword once and rewrites the material file.
func (s *FileStore) SetMaterialKeyword(mat Handle, name string) error {
	if err := checkKind(mat, KindMaterial); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.materials[mat.Path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, mat)
	}
	m.Keywords = addKeyword(m.Keywords, name)
	return s.writeMaterial(mat, m)
}

func (s *FileStore) writeMaterial(h Handle, m *Material) error {
	full := s.Abs(h)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("creating dir for %s: %w", h.Path, err)
	}
	return writeYAML(full, m)
}

// ReadMaterial loads a material file written by FileStore.
func ReadMaterial(path string) (*Material, error) {
	var m Material
	if err := readYAML(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadImageMeta loads the sidecar of the image at imagePath.
func ReadImageMeta(imagePath string) (*ImageMeta, error) {
	var meta ImageMeta
	if err := readYAML(imagePath+MetaSuffix, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
