// meshbake merges the objects of a scene manifest into one mesh and one set
// of packed texture atlases.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/bake"
	"github.com/Faultbox/meshbake/internal/batch"
	"github.com/Faultbox/meshbake/internal/config"
	"github.com/Faultbox/meshbake/internal/logger"
	"github.com/Faultbox/meshbake/internal/scene"
	"github.com/Faultbox/meshbake/internal/texture"
	"github.com/Faultbox/meshbake/pkg/atlas"
	"github.com/Faultbox/meshbake/pkg/mesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "bake":
		cmdBake(args)
	case "batch":
		cmdBatch(args)
	case "inspect", "info":
		cmdInspect(args)
	case "init":
		cmdInit(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshbake - merge meshes and their textures into one mesh and atlas set

Usage:
  meshbake <command> [options]

Commands:
  bake <scene.yaml>                  Bake one scene into the output folder
  batch <dir|scene.yaml>...          Bake many scenes, one output folder each
  inspect <scene.yaml>               Show what a bake would produce
  init [file]                        Write the default config (to the user config dir if no file)
  help                               Show this help

Common options:
  -config <file>      Config file (default ./meshbake.yaml)
  -atlas-size <n>     Atlas edge length: 512, 1024, 2048, 4096, 8192
  -workflow <name>    specular or metallic
  -output <dir>       Output root directory
  -folder <name>      Output folder under the root
  -suffix <s>         Suffix appended to every output file name
  -format <png|webp>  Atlas image format
  -debug              Debug logging

Examples:
  meshbake bake props.yaml
  meshbake bake -atlas-size 4096 -format webp -suffix _lod0 props.yaml
  meshbake batch -jobs 4 scenes/
  meshbake inspect props.yaml`)
}

// setup parses flags and initializes config and logging for a command.
func setup(name string, args []string, extra func(*flag.FlagSet)) (*config.Config, *flag.FlagSet) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	config.RegisterFlags(fs)
	if extra != nil {
		extra(fs)
	}
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.InitFromConfig(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, fs
}

func cmdBake(args []string) {
	cfg, fs := setup("bake", args, nil)
	defer logger.Sync()

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshbake bake [options] <scene.yaml>")
		os.Exit(1)
	}

	out, err := batch.BakeScene(cfg, fs.Arg(0), nil, logger.Named("bake"))
	if err != nil {
		logger.Log.Error("bake failed", zap.Error(err))
		os.Exit(1)
	}

	res := out.Result
	fmt.Printf("Output:   %s\n", out.Dir)
	fmt.Printf("Objects:  %d (%d unique meshes)\n", res.Objects, len(res.Placements))
	fmt.Printf("Mesh:     %d vertices, %d indices (%s)\n", res.Mesh.VertexCount(), res.Mesh.IndexCount(), res.Mesh.IndexFormat)
	fmt.Printf("Tiles:    %dpx in a %dpx atlas\n", res.TargetSize, cfg.Bake.AtlasSize)
	for _, k := range res.Channels {
		fmt.Printf("  %-9s %s\n", k, res.ImageHandles[k].Path)
	}
	fmt.Printf("Material: %s\n", res.Material.Path)
	fmt.Printf("Report:   %s\n", out.ReportPath)
}

func cmdBatch(args []string) {
	var jobs *int
	cfg, fs := setup("batch", args, func(fs *flag.FlagSet) {
		jobs = fs.Int("jobs", 0, "Scenes baked at once (0 = NumCPU)")
	})
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshbake batch [options] <dir|scene.yaml>...")
		os.Exit(1)
	}

	scenes, err := batch.FindScenes(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(scenes) == 0 {
		fmt.Fprintln(os.Stderr, "No scene manifests found")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := batch.Run(ctx, batch.Options{
		Config: cfg,
		Jobs:   *jobs,
		Logger: logger.Named("batch"),
	}, scenes)

	summaryPath := filepath.Join(cfg.Output.Root, cfg.Output.Folder, "BatchReport"+cfg.Output.Suffix+".yaml")
	if err := batch.WriteSummary(summaryPath, results); err != nil {
		logger.Log.Error("writing summary", zap.Error(err))
	}

	summary := batch.Summarize(results)
	for _, r := range results {
		if r.Success {
			fmt.Printf("  ok    %s -> %s (%v)\n", r.Scene, r.Output, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Printf("  FAIL  %s: %s\n", r.Scene, r.Error)
		}
	}
	fmt.Printf("\n%d scenes, %d succeeded, %d failed\n", summary.Scenes, summary.Succeeded, summary.Failed)
	fmt.Printf("Summary: %s\n", summaryPath)

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

func cmdInspect(args []string) {
	cfg, fs := setup("inspect", args, nil)
	defer logger.Sync()

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshbake inspect [options] <scene.yaml>")
		os.Exit(1)
	}

	s, err := scene.Load(fs.Arg(0), texture.NewCache())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Group by shared mesh in first-seen order, as a bake does
	var order []*mesh.Mesh
	materials := make(map[*mesh.Mesh]*bake.Material)
	users := make(map[*mesh.Mesh]int)
	vertices := 0
	for _, obj := range s.Objects {
		if obj.Mesh == nil {
			continue
		}
		if _, ok := users[obj.Mesh]; !ok {
			order = append(order, obj.Mesh)
			materials[obj.Mesh] = obj.Material
		}
		users[obj.Mesh]++
		vertices += obj.Mesh.VertexCount()
	}

	fmt.Printf("Scene:    %s\n", s.Path)
	fmt.Printf("Objects:  %d\n", len(s.Objects))
	fmt.Printf("Meshes:   %d unique (limit %d)\n", len(order), cfg.Bake.MaxUniqueMeshes)
	fmt.Printf("Vertices: %d combined (%s indices)\n", vertices, mesh.IndexFormatFor(vertices))
	fmt.Println()

	var albedos []*image.NRGBA
	for _, m := range order {
		mat := materials[m]
		name := "(none)"
		if mat != nil {
			name = mat.Name
		}
		fmt.Printf("  %-16s %5d verts  x%d  material %s\n", m.Name, m.VertexCount(), users[m], name)
		for _, k := range bake.ChannelKinds {
			if img := mat.Image(k); img != nil {
				fmt.Printf("      %-9s %dx%d\n", k, img.Bounds().Dx(), img.Bounds().Dy())
			}
		}
		albedos = append(albedos, mat.Image(bake.Albedo))
	}
	fmt.Println()

	for _, img := range albedos {
		if img == nil {
			fmt.Println("Layout:   not possible, a material has no albedo image")
			return
		}
	}
	target := bake.TargetSize(albedos, cfg.Bake.AtlasSize)
	sizes := make([]image.Point, len(albedos))
	for i := range sizes {
		sizes[i] = image.Pt(target, target)
	}
	if _, err := atlas.Layout(sizes, cfg.Bake.AtlasSize); err != nil {
		fmt.Printf("Layout:   %d tiles of %dpx do not fit %dpx: %v\n", len(sizes), target, cfg.Bake.AtlasSize, err)
		return
	}
	fmt.Printf("Layout:   %d tiles of %dpx fit a %dpx atlas\n", len(sizes), target, cfg.Bake.AtlasSize)
}

func cmdInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("f", false, "Overwrite an existing file")
	fs.Parse(args)

	cfg := config.Default()
	path := filepath.Join(config.ConfigDir(), config.FileName)
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "%s exists, use -f to overwrite\n", path)
		os.Exit(1)
	}

	var err error
	if fs.NArg() > 0 {
		err = cfg.SaveTo(path)
	} else {
		path, err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Log.Info("config written", zap.String("path", path))
	fmt.Printf("Wrote %s\n", path)
}
