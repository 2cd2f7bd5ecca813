package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test bake defaults
	if cfg.Bake.AtlasSize != 2048 {
		t.Errorf("expected atlas size 2048, got %d", cfg.Bake.AtlasSize)
	}
	if cfg.Bake.Workflow != WorkflowSpecular {
		t.Errorf("expected specular workflow, got %s", cfg.Bake.Workflow)
	}
	if !cfg.Bake.BakeNormals || !cfg.Bake.BakeSpecular {
		t.Error("expected normals and specular to be baked by default")
	}
	if cfg.Bake.BakeAO {
		t.Error("expected ao to be off by default")
	}
	if cfg.Bake.MaxUniqueMeshes != 16 {
		t.Errorf("expected max unique meshes 16, got %d", cfg.Bake.MaxUniqueMeshes)
	}

	// Test output defaults
	if cfg.Output.Folder != "Baked" {
		t.Errorf("expected folder 'Baked', got %s", cfg.Output.Folder)
	}
	if cfg.Output.ImageFormat != FormatPNG {
		t.Errorf("expected png format, got %s", cfg.Output.ImageFormat)
	}
	if !cfg.Output.SaveMesh {
		t.Error("expected save_mesh to be true by default")
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "meshbake.yaml")

	yamlContent := `
bake:
  atlas_size: 4096
  workflow: metallic
  bake_normals: false
  bake_ao: true
  max_unique_meshes: 8
  legacy_specular_srgb: true
  workers: 3

output:
  root: "/tmp/out"
  folder: "Merged"
  suffix: "_lod0"
  image_format: webp
  save_mesh: false

logging:
  level: "debug"
  log_file: "bake.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Bake.AtlasSize != 4096 {
		t.Errorf("expected atlas size 4096, got %d", cfg.Bake.AtlasSize)
	}
	if cfg.Bake.Workflow != WorkflowMetallic {
		t.Errorf("expected metallic workflow, got %s", cfg.Bake.Workflow)
	}
	if cfg.Bake.BakeNormals {
		t.Error("expected bake_normals to be false")
	}
	if !cfg.Bake.BakeSpecular {
		t.Error("expected bake_specular to keep its default")
	}
	if !cfg.Bake.BakeAO || !cfg.Bake.LegacySpecularSRGB {
		t.Error("expected bake_ao and legacy_specular_srgb to be true")
	}
	if cfg.Bake.MaxUniqueMeshes != 8 || cfg.Bake.Workers != 3 {
		t.Errorf("expected 8 meshes and 3 workers, got %d and %d", cfg.Bake.MaxUniqueMeshes, cfg.Bake.Workers)
	}

	if cfg.Output.Root != "/tmp/out" || cfg.Output.Folder != "Merged" || cfg.Output.Suffix != "_lod0" {
		t.Errorf("unexpected output config: %+v", cfg.Output)
	}
	if cfg.Output.ImageFormat != FormatWebP {
		t.Errorf("expected webp, got %s", cfg.Output.ImageFormat)
	}
	if cfg.Output.SaveMesh {
		t.Error("expected save_mesh to be false")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "bake.log" {
		t.Errorf("expected log file 'bake.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
bake:
  atlas_size: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "meshbake.yaml")
	if err := os.WriteFile(configPath, []byte("bake:\n  atlas_sise: 1024\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	err := loadFromFile(Default(), configPath)
	if err == nil || !strings.Contains(err.Error(), "atlas_sise") {
		t.Errorf("expected error naming the unknown key, got %v", err)
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "meshbake.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if cfg.Bake.AtlasSize != 2048 {
		t.Errorf("defaults changed by empty file: %+v", cfg.Bake)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/meshbake.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errHas string
	}{
		{"default", func(c *Config) {}, ""},
		{"atlas 8192", func(c *Config) { c.Bake.AtlasSize = 8192 }, ""},
		{"atlas 3000", func(c *Config) { c.Bake.AtlasSize = 3000 }, "atlas_size"},
		{"atlas 256", func(c *Config) { c.Bake.AtlasSize = 256 }, "atlas_size"},
		{"metallic", func(c *Config) { c.Bake.Workflow = WorkflowMetallic }, ""},
		{"bad workflow", func(c *Config) { c.Bake.Workflow = "pbr" }, "workflow"},
		{"zero meshes", func(c *Config) { c.Bake.MaxUniqueMeshes = 0 }, "max_unique_meshes"},
		{"negative workers", func(c *Config) { c.Bake.Workers = -2 }, "workers"},
		{"webp", func(c *Config) { c.Output.ImageFormat = FormatWebP }, ""},
		{"tga", func(c *Config) { c.Output.ImageFormat = "tga" }, "image_format"},
		{"warn level", func(c *Config) { c.Logging.Level = "warn" }, ""},
		{"bad level", func(c *Config) { c.Logging.Level = "chatty" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errHas == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errHas) {
				t.Errorf("expected error mentioning %q, got %v", tt.errHas, err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "meshbake.yaml")
	if err := os.WriteFile(configPath, []byte("bake:\n  atlas_size: 1024\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find meshbake.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { flagDebug = false },
		},
		{
			name:  "atlas size flag",
			setup: func() { flagAtlasSize = 1024 },
			verify: func(cfg *Config) {
				if cfg.Bake.AtlasSize != 1024 {
					t.Errorf("expected atlas size 1024, got %d", cfg.Bake.AtlasSize)
				}
			},
			teardown: func() { flagAtlasSize = 0 },
		},
		{
			name: "output flags",
			setup: func() {
				flagOutput = "/srv/out"
				flagFolder = "Atlas"
				flagSuffix = "_v2"
				flagFormat = FormatWebP
			},
			verify: func(cfg *Config) {
				if cfg.Output.Root != "/srv/out" || cfg.Output.Folder != "Atlas" || cfg.Output.Suffix != "_v2" {
					t.Errorf("unexpected output config: %+v", cfg.Output)
				}
				if cfg.Output.ImageFormat != FormatWebP {
					t.Errorf("expected webp, got %s", cfg.Output.ImageFormat)
				}
			},
			teardown: func() {
				flagOutput, flagFolder, flagSuffix, flagFormat = "", "", "", ""
			},
		},
		{
			name: "channel toggles",
			setup: func() {
				flagNoNormals = true
				flagAO = true
				flagNoMesh = true
			},
			verify: func(cfg *Config) {
				if cfg.Bake.BakeNormals {
					t.Error("expected normals to be disabled")
				}
				if !cfg.Bake.BakeAO {
					t.Error("expected ao to be enabled")
				}
				if cfg.Output.SaveMesh {
					t.Error("expected save_mesh to be disabled")
				}
			},
			teardown: func() {
				flagNoNormals, flagAO, flagNoMesh = false, false, false
			},
		},
		{
			name:  "workers flag zero is kept",
			setup: func() { flagWorkers = 0 },
			verify: func(cfg *Config) {
				if cfg.Bake.Workers != 0 {
					t.Errorf("expected 0 workers, got %d", cfg.Bake.Workers)
				}
			},
			teardown: func() { flagWorkers = -1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			cfg.Bake.Workers = 7
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "meshbake.yaml")

	yamlContent := `
bake:
  atlas_size: 1024
  max_unique_meshes: 4
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	flagConfig = configPath
	flagAtlasSize = 4096
	defer func() {
		flagConfig = ""
		flagAtlasSize = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Atlas size from flag, not file
	if cfg.Bake.AtlasSize != 4096 {
		t.Errorf("expected atlas size 4096 from flag, got %d", cfg.Bake.AtlasSize)
	}
	// Mesh limit from file since no flag override
	if cfg.Bake.MaxUniqueMeshes != 4 {
		t.Errorf("expected max unique meshes 4 from file, got %d", cfg.Bake.MaxUniqueMeshes)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "meshbake.yaml")
	if err := os.WriteFile(configPath, []byte("bake:\n  atlas_size: 1000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	flagConfig = configPath
	defer func() { flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected validation error for atlas size 1000")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "meshbake.yaml")

	cfg := Default()
	cfg.Bake.Workflow = WorkflowMetallic
	cfg.Output.Suffix = "_x"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Bake.Workflow != WorkflowMetallic || loaded.Output.Suffix != "_x" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestSaveToRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshbake.yaml")

	cfg := Default()
	cfg.Output.ImageFormat = "jpeg"
	if err := cfg.SaveTo(path); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("invalid config should not be written, stat: %v", err)
	}
}

func TestSave(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if ConfigDir() == "" {
		t.Skip("no config dir on this platform")
	}

	path, err := Default().Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(path) != "meshbake.yaml" {
		t.Errorf("path = %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved config missing: %v", err)
	}
}
