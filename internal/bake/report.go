package bake

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Report summarizes a bake for humans and tooling.
type Report struct {
	AtlasSize    int              `yaml:"atlas_size"`
	TileSize     int              `yaml:"tile_size"`
	Objects      int              `yaml:"objects"`
	UniqueMeshes int              `yaml:"unique_meshes"`
	Vertices     int              `yaml:"vertices"`
	Indices      int              `yaml:"indices"`
	IndexFormat  string           `yaml:"index_format"`
	Material     string           `yaml:"material"`
	Mesh         string           `yaml:"mesh,omitempty"`
	Channels     []ChannelReport  `yaml:"channels"`
	Placements   []PlacementEntry `yaml:"placements"`
}

// ChannelReport names the atlas written for one channel.
type ChannelReport struct {
	Kind  string `yaml:"kind"`
	Image string `yaml:"image"`
}

// PlacementEntry is one unique mesh's atlas rectangle.
type PlacementEntry struct {
	Mesh   string     `yaml:"mesh"`
	Rect   [4]float32 `yaml:"rect,flow"`   // xmin, ymin, xmax, ymax
	Pixels [4]int     `yaml:"pixels,flow"` // x0, y0, x1, y1
}

// NewReport builds a report from a finished bake.
func NewReport(res *Result) *Report {
	albedo := res.Atlases[Albedo]
	r := &Report{
		TileSize:     res.TargetSize,
		Objects:      res.Objects,
		UniqueMeshes: len(res.Placements),
		Material:     res.Material.Path,
		Mesh:         res.MeshHandle.Path,
	}
	if albedo != nil {
		r.AtlasSize = albedo.Size
	}
	if res.Mesh != nil {
		r.Vertices = res.Mesh.VertexCount()
		r.Indices = res.Mesh.IndexCount()
		r.IndexFormat = res.Mesh.IndexFormat.String()
	}
	for _, k := range res.Channels {
		r.Channels = append(r.Channels, ChannelReport{Kind: k.String(), Image: res.ImageHandles[k].Path})
	}
	for i, pl := range res.Placements {
		entry := PlacementEntry{Rect: [4]float32{pl.XMin, pl.YMin, pl.XMax, pl.YMax}}
		if i < len(res.UniqueNames) {
			entry.Mesh = res.UniqueNames[i]
		}
		if albedo != nil && i < len(albedo.Pixels) {
			px := albedo.Pixels[i]
			entry.Pixels = [4]int{px.Min.X, px.Min.Y, px.Max.X, px.Max.Y}
		}
		r.Placements = append(r.Placements, entry)
	}
	return r
}

// WriteReport writes r as YAML to path.
func WriteReport(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
