// Package config handles bake configuration loading and management.
package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/meshbake/pkg/atlas"
)

// Workflows select which reflectance channel is baked after albedo.
const (
	WorkflowSpecular = "specular"
	WorkflowMetallic = "metallic"
)

// Atlas image encodings.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Config holds all bake settings.
type Config struct {
	Bake    BakeConfig    `yaml:"bake"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// BakeConfig controls which channels are baked and how.
type BakeConfig struct {
	AtlasSize                int    `yaml:"atlas_size"`
	Workflow                 string `yaml:"workflow"` // specular | metallic
	BakeNormals              bool   `yaml:"bake_normals"`
	BakeSpecular             bool   `yaml:"bake_specular"` // covers metallic in the metallic workflow
	BakeAO                   bool   `yaml:"bake_ao"`
	MaxUniqueMeshes          int    `yaml:"max_unique_meshes"`
	LegacySpecularSRGB       bool   `yaml:"legacy_specular_srgb"` // keep specular/metallic atlases in sRGB
	RejectDivergentMaterials bool   `yaml:"reject_divergent_materials"`
	Workers                  int    `yaml:"workers"` // 0 = NumCPU
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Root        string `yaml:"root"`
	Folder      string `yaml:"folder"`
	Suffix      string `yaml:"suffix"`
	ImageFormat string `yaml:"image_format"` // png | webp
	SaveMesh    bool   `yaml:"save_mesh"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Bake: BakeConfig{
			AtlasSize:       2048,
			Workflow:        WorkflowSpecular,
			BakeNormals:     true,
			BakeSpecular:    true,
			BakeAO:          false,
			MaxUniqueMeshes: 16,
			Workers:         0,
		},
		Output: OutputConfig{
			Root:        ".",
			Folder:      "Baked",
			Suffix:      "",
			ImageFormat: FormatPNG,
			SaveMesh:    true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that would make a bake fail later.
func (c *Config) Validate() error {
	if !atlas.ValidSize(c.Bake.AtlasSize) {
		return fmt.Errorf("bake.atlas_size %d: must be one of %v", c.Bake.AtlasSize, atlas.SupportedSizes)
	}
	switch c.Bake.Workflow {
	case WorkflowSpecular, WorkflowMetallic:
	default:
		return fmt.Errorf("bake.workflow %q: must be %q or %q", c.Bake.Workflow, WorkflowSpecular, WorkflowMetallic)
	}
	if c.Bake.MaxUniqueMeshes < 1 {
		return fmt.Errorf("bake.max_unique_meshes %d: must be at least 1", c.Bake.MaxUniqueMeshes)
	}
	if c.Bake.Workers < 0 {
		return fmt.Errorf("bake.workers %d: must not be negative", c.Bake.Workers)
	}
	switch c.Output.ImageFormat {
	case FormatPNG, FormatWebP:
	default:
		return fmt.Errorf("output.image_format %q: must be %q or %q", c.Output.ImageFormat, FormatPNG, FormatWebP)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level %q: %w", c.Logging.Level, err)
	}
	return nil
}
