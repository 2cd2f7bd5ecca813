package batch

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/config"
	"github.com/Faultbox/meshbake/internal/texture"
)

// Options configures a batch run.
type Options struct {
	Config   *config.Config
	Jobs     int // scenes baked at once, 0 = NumCPU
	Logger   *zap.Logger
	Progress time.Duration // progress log interval, 0 = 2s
}

// Result holds the outcome of one scene.
type Result struct {
	Scene        string        `yaml:"scene"`
	Output       string        `yaml:"output,omitempty"`
	Success      bool          `yaml:"success"`
	Error        string        `yaml:"error,omitempty"`
	UniqueMeshes int           `yaml:"unique_meshes,omitempty"`
	Vertices     int           `yaml:"vertices,omitempty"`
	Duration     time.Duration `yaml:"duration"`
}

// Run bakes every scene on a worker pool. Each scene writes into its own
// folder, <output.folder>/<scene name>, so runs never share output files.
// Images are decoded once and shared across scenes. Scenes not yet started
// when ctx is done are reported as failed.
func Run(ctx context.Context, opts Options, scenes []string) []Result {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Jobs
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	interval := opts.Progress
	if interval <= 0 {
		interval = 2 * time.Second
	}

	total := len(scenes)
	results := make([]Result, total)
	cache := texture.NewCache()
	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("progress", zap.Int64("done", p), zap.Int("total", total), zap.Float64("scenes_per_sec", rate))
				}
			}
		}
	}()

	// Worker pool
	work := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				if err := ctx.Err(); err != nil {
					results[idx] = Result{Scene: scenes[idx], Error: err.Error()}
				} else {
					results[idx] = processScene(opts.Config, scenes[idx], cache, log)
				}
				processed.Add(1)
			}
		}()
	}

	for i := range scenes {
		work <- i
	}
	close(work)

	wg.Wait()
	close(done)

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	log.Info("batch complete",
		zap.Int("scenes", total),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)))
	return results
}

func processScene(base *config.Config, path string, cache *texture.Cache, log *zap.Logger) Result {
	start := time.Now()
	cfg := *base
	cfg.Output.Folder = filepath.Join(base.Output.Folder, SceneName(path))

	out, err := BakeScene(&cfg, path, cache, log)
	if err != nil {
		log.Warn("scene failed", zap.String("scene", path), zap.Error(err))
		return Result{Scene: path, Error: err.Error(), Duration: time.Since(start)}
	}
	return Result{
		Scene:        path,
		Output:       out.Dir,
		Success:      true,
		UniqueMeshes: out.Report.UniqueMeshes,
		Vertices:     out.Report.Vertices,
		Duration:     time.Since(start),
	}
}

// SceneName returns the manifest file name without extension.
func SceneName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FindScenes expands directories into the manifests they contain
// (*.yaml, *.yml, not recursive). Files are kept as given. The result is
// sorted within each directory.
func FindScenes(args []string) ([]string, error) {
	var scenes []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			scenes = append(scenes, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}
			found = append(found, filepath.Join(arg, e.Name()))
		}
		sort.Strings(found)
		scenes = append(scenes, found...)
	}
	return scenes, nil
}
