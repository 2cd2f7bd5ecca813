package assets

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/Faultbox/meshbake/pkg/mesh"
)

// Call is one recorded Store method invocation.
type Call struct {
	Method string
	Path   string
	Slot   string
	Name   string
}

// MemoryStore keeps every asset in memory and records each call.
// Set Fail to make the named method return an error.
type MemoryStore struct {
	mu sync.Mutex

	Calls     []Call
	Images    map[string]image.Image
	Linear    map[string]bool
	Meshes    map[string]*mesh.Combined
	Materials map[string]*Material

	Fail map[string]error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Images:    make(map[string]image.Image),
		Linear:    make(map[string]bool),
		Meshes:    make(map[string]*mesh.Combined),
		Materials: make(map[string]*Material),
		Fail:      make(map[string]error),
	}
}

// Count returns how many times method was called.
func (s *MemoryStore) Count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (s *MemoryStore) record(c Call) error {
	s.Calls = append(s.Calls, c)
	return s.Fail[c.Method]
}

func (s *MemoryStore) SaveImage(img image.Image, path string) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path = filepath.ToSlash(path)
	if err := s.record(Call{Method: "SaveImage", Path: path}); err != nil {
		return Handle{}, err
	}
	s.Images[path] = img
	return Handle{Kind: KindImage, Path: path}, nil
}

func (s *MemoryStore) SetImageLinear(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Method: "SetImageLinear", Path: h.Path}); err != nil {
		return err
	}
	if err := checkKind(h, KindImage); err != nil {
		return err
	}
	if _, ok := s.Images[h.Path]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	s.Linear[h.Path] = true
	return nil
}

func (s *MemoryStore) SaveMesh(m *mesh.Combined, path string) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path = filepath.ToSlash(path)
	if err := s.record(Call{Method: "SaveMesh", Path: path}); err != nil {
		return Handle{}, err
	}
	s.Meshes[path] = m
	return Handle{Kind: KindMesh, Path: path}, nil
}

func (s *MemoryStore) CreateMaterial(shader, path string) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path = filepath.ToSlash(path)
	if err := s.record(Call{Method: "CreateMaterial", Path: path, Name: shader}); err != nil {
		return Handle{}, err
	}
	s.Materials[path] = &Material{Shader: shader, Slots: make(map[string]string)}
	return Handle{Kind: KindMaterial, Path: path}, nil
}

func (s *MemoryStore) SetMaterialImage(mat Handle, slot string, img Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Method: "SetMaterialImage", Path: mat.Path, Slot: slot, Name: img.Path}); err != nil {
		return err
	}
	m, err := s.material(mat)
	if err != nil {
		return err
	}
	if err := checkKind(img, KindImage); err != nil {
		return err
	}
	m.Slots[slot] = img.Path
	return nil
}

func (s *MemoryStore) SetMaterialKeyword(mat Handle, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Method: "SetMaterialKeyword", Path: mat.Path, Name: name}); err != nil {
		return err
	}
	m, err := s.material(mat)
	if err != nil {
		return err
	}
	m.Keywords = addKeyword(m.Keywords, name)
	return nil
}

func (s *MemoryStore) material(h Handle) (*Material, error) {
	if err := checkKind(h, KindMaterial); err != nil {
		return nil, err
	}
	m, ok := s.Materials[h.Path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return m, nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
