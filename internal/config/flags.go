package config

import "flag"

var (
	flagConfig    string
	flagDebug     bool
	flagAtlasSize int
	flagWorkflow  string
	flagSuffix    string
	flagOutput    string
	flagFolder    string
	flagFormat    string
	flagMaxMeshes int
	flagNoNormals bool
	flagAO        bool
	flagNoMesh    bool
	flagLogFile   string
)

// Negative means the flag was not given.
var flagWorkers = -1

// RegisterFlags binds the config override flags to fs. Call it on each
// subcommand's flag set before parsing.
func RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&flagConfig, "config", "", "Path to config file")
	fs.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	fs.IntVar(&flagAtlasSize, "atlas-size", 0, "Atlas edge length (512, 1024, 2048, 4096, 8192)")
	fs.StringVar(&flagWorkflow, "workflow", "", "Reflectance workflow: specular or metallic")
	fs.StringVar(&flagSuffix, "suffix", "", "Suffix appended to every output file name")
	fs.StringVar(&flagOutput, "output", "", "Output root directory")
	fs.StringVar(&flagFolder, "folder", "", "Output folder under the root")
	fs.StringVar(&flagFormat, "format", "", "Atlas image format: png or webp")
	fs.IntVar(&flagWorkers, "workers", -1, "Parallel workers (0 = NumCPU)")
	fs.IntVar(&flagMaxMeshes, "max-meshes", 0, "Maximum number of unique meshes")
	fs.BoolVar(&flagNoNormals, "no-normals", false, "Skip the normal map atlas")
	fs.BoolVar(&flagAO, "ao", false, "Bake the occlusion atlas")
	fs.BoolVar(&flagNoMesh, "no-mesh", false, "Do not write the combined mesh")
	fs.StringVar(&flagLogFile, "log-file", "", "Write logs to this file as well")
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if flagDebug {
		cfg.Logging.Level = "debug"
	}
	if flagAtlasSize > 0 {
		cfg.Bake.AtlasSize = flagAtlasSize
	}
	if flagWorkflow != "" {
		cfg.Bake.Workflow = flagWorkflow
	}
	if flagSuffix != "" {
		cfg.Output.Suffix = flagSuffix
	}
	if flagOutput != "" {
		cfg.Output.Root = flagOutput
	}
	if flagFolder != "" {
		cfg.Output.Folder = flagFolder
	}
	if flagFormat != "" {
		cfg.Output.ImageFormat = flagFormat
	}
	if flagWorkers >= 0 {
		cfg.Bake.Workers = flagWorkers
	}
	if flagMaxMeshes > 0 {
		cfg.Bake.MaxUniqueMeshes = flagMaxMeshes
	}
	if flagNoNormals {
		cfg.Bake.BakeNormals = false
	}
	if flagAO {
		cfg.Bake.BakeAO = true
	}
	if flagNoMesh {
		cfg.Output.SaveMesh = false
	}
	if flagLogFile != "" {
		cfg.Logging.LogFile = flagLogFile
	}
}
