package bake

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/assets"
	"github.com/Faultbox/meshbake/pkg/atlas"
	"github.com/Faultbox/meshbake/pkg/imagebuf"
	"github.com/Faultbox/meshbake/pkg/mesh"
)

// pipeline holds the working data of one Bake call.
type pipeline struct {
	b       *Baker
	objects []SourceObject

	uniques []*uniqueMesh
	byMesh  map[*mesh.Mesh]*uniqueMesh

	material     assets.Handle
	layout       []image.Rectangle // albedo pixel bounds, one per unique mesh
	albedoTarget int

	result *Result
}

func (p *pipeline) fail(obj string, kind ChannelKind, err error) error {
	return &Error{State: p.b.state, Object: obj, Channel: kind, Err: err}
}

// validate checks the selection and groups objects by shared mesh. It has
// no side effects outside the pipeline.
func (p *pipeline) validate() error {
	cfg := p.b.opts.Bake

	if len(p.objects) < 2 {
		return p.fail("", 0, fmt.Errorf("%w: got %d", ErrInsufficientSelection, len(p.objects)))
	}

	for _, obj := range p.objects {
		if obj.Material == nil || !obj.Mesh.HasGeometry() {
			return p.fail(obj.Name, 0, ErrMissingRenderData)
		}
		if err := obj.Mesh.Validate(); err != nil {
			return p.fail(obj.Name, 0, fmt.Errorf("%w: %w", ErrMissingRenderData, err))
		}
		if obj.Transform.Determinant3() == 0 {
			return p.fail(obj.Name, 0, fmt.Errorf("%w: transform collapses the mesh", ErrMissingRenderData))
		}
		if len(obj.Mesh.UVs) != obj.Mesh.VertexCount() {
			return p.fail(obj.Name, 0, fmt.Errorf("%w: mesh %q has no texture coordinates", ErrMissingRenderData, obj.Mesh.Name))
		}

		u, seen := p.byMesh[obj.Mesh]
		if !seen {
			u = &uniqueMesh{mesh: obj.Mesh, material: obj.Material, owner: obj.Name}
			p.byMesh[obj.Mesh] = u
			p.uniques = append(p.uniques, u)
			continue
		}
		if u.material != obj.Material {
			if cfg.RejectDivergentMaterials {
				return p.fail(obj.Name, 0, fmt.Errorf("%w: %q uses %q, %q uses %q",
					ErrDivergentMaterial, u.owner, u.material.Name, obj.Name, obj.Material.Name))
			}
			p.b.log.Warn("shared mesh has a different material, keeping the first",
				zap.String("mesh", u.name()),
				zap.String("kept_object", u.owner),
				zap.String("kept_material", u.material.Name),
				zap.String("object", obj.Name),
				zap.String("material", obj.Material.Name))
		}
	}

	if len(p.uniques) > cfg.MaxUniqueMeshes {
		return p.fail("", 0, fmt.Errorf("%w: %d unique meshes, limit is %d",
			ErrTooManyUniqueSources, len(p.uniques), cfg.MaxUniqueMeshes))
	}

	for _, u := range p.uniques {
		if u.material.Image(Albedo) == nil {
			return p.fail(u.owner, Albedo, fmt.Errorf("%w: material %q has no albedo image", ErrMissingRequiredChannel, u.material.Name))
		}
		p.result.UniqueNames = append(p.result.UniqueNames, u.name())
	}

	p.b.log.Debug("selection valid",
		zap.Int("objects", len(p.objects)),
		zap.Int("unique_meshes", len(p.uniques)))
	return nil
}

// bakeAlbedo creates the output material and packs the albedo atlas, which
// fixes the layout for every other channel.
func (p *pipeline) bakeAlbedo() error {
	opts := p.b.opts
	mat, err := opts.Store.CreateMaterial(ShaderFor(opts.Bake.Workflow), p.b.outputPath(MaterialFileName(opts.Output.Suffix)))
	if err != nil {
		return p.fail("", 0, fmt.Errorf("creating material: %w", err))
	}
	p.material = mat
	p.result.Material = mat

	return p.bakeChannel(Albedo)
}

// remap moves every unique mesh's UVs into its albedo placement. Objects
// sharing a mesh share the result.
func (p *pipeline) remap() error {
	for i, u := range p.uniques {
		u.uvs = atlas.RemapUVs(u.mesh.UVs, p.result.Placements[i])
	}
	return nil
}

func (p *pipeline) bakeChannels() error {
	for _, kind := range p.b.Passes() {
		if kind == Albedo {
			continue
		}
		if err := p.bakeChannel(kind); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) bakeChannel(kind ChannelKind) error {
	opts := p.b.opts
	size := opts.Bake.AtlasSize

	images := p.collect(kind)

	target := TargetSize(images, size)
	switch {
	case kind == Albedo:
		p.albedoTarget = target
	case target < p.albedoTarget:
		p.b.log.Warn("channel sources are smaller than the albedo tiles, upscaling",
			zap.Stringer("channel", kind),
			zap.Int("target", target),
			zap.Int("albedo_target", p.albedoTarget))
		target = p.albedoTarget
	case target > p.albedoTarget:
		p.b.log.Debug("rescaling channel to albedo footprint",
			zap.Stringer("channel", kind),
			zap.Int("target", target),
			zap.Int("albedo_target", p.albedoTarget))
		target = p.albedoTarget
	}

	filled := 0
	for i, img := range images {
		if img != nil {
			continue
		}
		fill, err := DefaultFill(kind)
		if err != nil {
			return p.fail(p.uniques[i].owner, kind, err)
		}
		images[i] = imagebuf.CreateSolidImage(target, target, fill)
		filled++
	}

	images, err := Equalize(images, target, opts.Bake.Workers)
	if err != nil {
		return p.fail("", kind, err)
	}

	var at *atlas.Atlas
	if kind == Albedo {
		at, err = atlas.Pack(images, size)
		if err == nil {
			p.layout = at.Pixels
			p.result.Placements = at.Placements
			p.result.TargetSize = target
		}
	} else {
		at, err = atlas.Compose(images, p.layout, size)
	}
	if err != nil {
		return p.fail("", kind, err)
	}

	if err := p.save(kind, at); err != nil {
		return err
	}

	p.b.log.Info("channel baked",
		zap.Stringer("channel", kind),
		zap.Int("tiles", len(images)),
		zap.Int("tile_size", target),
		zap.Int("defaulted", filled),
		zap.Int("atlas_size", size))
	return nil
}

// collect returns one source image per unique mesh, nil where the material
// has none. Packed normal maps are restored here, once, into new buffers.
func (p *pipeline) collect(kind ChannelKind) []*image.NRGBA {
	images := make([]*image.NRGBA, len(p.uniques))
	for i, u := range p.uniques {
		img := u.material.Image(kind)
		if img != nil && kind == Normal && u.material.NormalPacked {
			img = imagebuf.RestoreNormalChannel(img)
		}
		images[i] = img
	}
	return images
}

// save writes the atlas and binds it to the material.
func (p *pipeline) save(kind ChannelKind, at *atlas.Atlas) error {
	opts := p.b.opts
	store := opts.Store

	name, err := FileName(kind, opts.Output.Suffix, opts.Output.ImageFormat)
	if err != nil {
		return p.fail("", kind, err)
	}
	slot, err := SlotFor(kind)
	if err != nil {
		return p.fail("", kind, err)
	}
	linear, err := IsLinear(kind, opts.Bake.LegacySpecularSRGB)
	if err != nil {
		return p.fail("", kind, err)
	}
	keyword, err := KeywordFor(kind)
	if err != nil {
		return p.fail("", kind, err)
	}

	h, err := store.SaveImage(at.Image, p.b.outputPath(name))
	if err != nil {
		return p.fail("", kind, fmt.Errorf("saving %s: %w", name, err))
	}
	if linear {
		if err := store.SetImageLinear(h); err != nil {
			return p.fail("", kind, fmt.Errorf("marking %s linear: %w", name, err))
		}
	}
	if err := store.SetMaterialImage(p.material, slot, h); err != nil {
		return p.fail("", kind, fmt.Errorf("binding %s: %w", slot, err))
	}
	if keyword != "" {
		if err := store.SetMaterialKeyword(p.material, keyword); err != nil {
			return p.fail("", kind, fmt.Errorf("enabling %s: %w", keyword, err))
		}
	}

	p.result.Atlases[kind] = at
	p.result.ImageHandles[kind] = h
	p.result.Channels = append(p.result.Channels, kind)
	return nil
}

// combine merges every object, instancing included, with its mesh's
// remapped UVs.
func (p *pipeline) combine() error {
	entries := make([]mesh.Entry, len(p.objects))
	for i, obj := range p.objects {
		entries[i] = mesh.Entry{
			Mesh:      obj.Mesh,
			Transform: obj.Transform,
			UVs:       p.byMesh[obj.Mesh].uvs,
		}
	}

	combined, err := mesh.Combine(entries)
	if err != nil {
		return p.fail("", 0, err)
	}
	p.result.Mesh = combined

	opts := p.b.opts
	if !opts.Output.SaveMesh {
		return nil
	}
	h, err := opts.Store.SaveMesh(combined, p.b.outputPath(MeshFileName(opts.Output.Suffix)))
	if err != nil {
		return p.fail("", 0, fmt.Errorf("saving mesh: %w", err))
	}
	p.result.MeshHandle = h
	return nil
}
