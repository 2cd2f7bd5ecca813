// Package bake merges a selection of objects into one mesh and one set of
// packed channel atlases.
//
// A bake runs as a single synchronous pipeline:
//
//	Idle -> Validating -> BakingAlbedo -> Remapping -> BakingChannels -> Combining -> Done
//
// with Failed reachable from every state. The albedo pass decides the atlas
// layout; every other channel reuses it so one UV set addresses all atlases.
package bake

import (
	"fmt"
	"path"
	"runtime"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/assets"
	"github.com/Faultbox/meshbake/internal/config"
	"github.com/Faultbox/meshbake/pkg/atlas"
	"github.com/Faultbox/meshbake/pkg/mesh"
)

// State is a stage of a bake.
type State int

const (
	Idle State = iota
	Validating
	BakingAlbedo
	Remapping
	BakingChannels
	Combining
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case BakingAlbedo:
		return "baking albedo"
	case Remapping:
		return "remapping"
	case BakingChannels:
		return "baking channels"
	case Combining:
		return "combining"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Baker.
type Options struct {
	Bake   config.BakeConfig
	Output config.OutputConfig
	Store  assets.Store
	Logger *zap.Logger // nil discards
}

// Result describes a finished bake.
type Result struct {
	Channels     []ChannelKind // baked, in pass order
	Atlases      map[ChannelKind]*atlas.Atlas
	ImageHandles map[ChannelKind]assets.Handle

	// One entry per unique mesh, in first-seen order.
	Placements  []atlas.Rect
	UniqueNames []string
	TargetSize  int // albedo tile edge after equalization

	Objects    int
	Mesh       *mesh.Combined
	Material   assets.Handle
	MeshHandle assets.Handle // zero when the mesh is not saved
}

// Baker runs bakes with fixed options. It keeps no data between bakes and
// is not safe for concurrent use.
type Baker struct {
	opts  Options
	log   *zap.Logger
	state State

	// OnTransition, when set, is called on every state change.
	OnTransition func(from, to State)
}

// New creates a Baker. The store is required.
func New(opts Options) (*Baker, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("bake: no asset store")
	}
	if !atlas.ValidSize(opts.Bake.AtlasSize) {
		return nil, fmt.Errorf("bake: %w: %d", atlas.ErrUnsupportedSize, opts.Bake.AtlasSize)
	}
	if opts.Bake.MaxUniqueMeshes <= 0 {
		opts.Bake.MaxUniqueMeshes = config.Default().Bake.MaxUniqueMeshes
	}
	if opts.Bake.Workers <= 0 {
		opts.Bake.Workers = runtime.NumCPU()
	}
	if opts.Output.ImageFormat == "" {
		opts.Output.ImageFormat = config.FormatPNG
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Baker{opts: opts, log: log}, nil
}

// State returns the stage the last bake reached.
func (b *Baker) State() State {
	return b.state
}

// Passes returns the channels a bake will produce, in order.
func (b *Baker) Passes() []ChannelKind {
	passes := []ChannelKind{Albedo}
	if b.opts.Bake.BakeSpecular {
		if b.opts.Bake.Workflow == config.WorkflowMetallic {
			passes = append(passes, Metallic)
		} else {
			passes = append(passes, Specular)
		}
	}
	if b.opts.Bake.BakeNormals {
		passes = append(passes, Normal)
	}
	if b.opts.Bake.BakeAO {
		passes = append(passes, AO)
	}
	return passes
}

// Bake merges objects into one mesh and one atlas per channel, writing the
// results through the store.
func (b *Baker) Bake(objects []SourceObject) (*Result, error) {
	b.state = Idle
	p := &pipeline{
		b:       b,
		objects: objects,
		byMesh:  make(map[*mesh.Mesh]*uniqueMesh),
		result: &Result{
			Atlases:      make(map[ChannelKind]*atlas.Atlas),
			ImageHandles: make(map[ChannelKind]assets.Handle),
			Objects:      len(objects),
		},
	}

	steps := []struct {
		state State
		run   func() error
	}{
		{Validating, p.validate},
		{BakingAlbedo, p.bakeAlbedo},
		{Remapping, p.remap},
		{BakingChannels, p.bakeChannels},
		{Combining, p.combine},
	}
	for _, step := range steps {
		b.transition(step.state)
		if err := step.run(); err != nil {
			b.transition(Failed)
			b.log.Error("bake failed", zap.Error(err))
			return nil, err
		}
	}
	b.transition(Done)

	b.log.Info("bake complete",
		zap.Int("objects", len(objects)),
		zap.Int("unique_meshes", len(p.uniques)),
		zap.Int("vertices", p.result.Mesh.VertexCount()),
		zap.Stringer("index_format", p.result.Mesh.IndexFormat),
		zap.Int("atlases", len(p.result.Atlases)))
	return p.result, nil
}

func (b *Baker) transition(to State) {
	from := b.state
	b.state = to
	b.log.Debug("state", zap.Stringer("from", from), zap.Stringer("to", to))
	if b.OnTransition != nil {
		b.OnTransition(from, to)
	}
}

// outputPath joins a file name to the output folder. Store paths always
// use forward slashes.
func (b *Baker) outputPath(name string) string {
	if b.opts.Output.Folder == "" {
		return name
	}
	return path.Join(b.opts.Output.Folder, name)
}
