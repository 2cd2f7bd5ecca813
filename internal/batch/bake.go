// Package batch bakes scene manifests, alone or many at once on a worker
// pool.
package batch

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/assets"
	"github.com/Faultbox/meshbake/internal/bake"
	"github.com/Faultbox/meshbake/internal/config"
	"github.com/Faultbox/meshbake/internal/scene"
	"github.com/Faultbox/meshbake/internal/texture"
)

// Output is what BakeScene produced.
type Output struct {
	Result     *bake.Result
	Report     *bake.Report
	ReportPath string
	Dir        string // absolute output folder
}

// BakeScene loads one manifest, bakes it into cfg.Output and writes the
// bake report next to the atlases.
func BakeScene(cfg *config.Config, path string, cache *texture.Cache, log *zap.Logger) (*Output, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s, err := scene.Load(path, cache)
	if err != nil {
		return nil, err
	}

	store, err := assets.NewFileStore(cfg.Output.Root)
	if err != nil {
		return nil, err
	}

	b, err := bake.New(bake.Options{
		Bake:   cfg.Bake,
		Output: cfg.Output,
		Store:  store,
		Logger: log.With(zap.String("scene", filepath.Base(path))),
	})
	if err != nil {
		return nil, err
	}

	res, err := b.Bake(s.Objects)
	if err != nil {
		return nil, fmt.Errorf("baking %s: %w", path, err)
	}

	out := &Output{
		Result: res,
		Report: bake.NewReport(res),
		Dir:    filepath.Join(store.Root(), cfg.Output.Folder),
	}
	out.ReportPath = filepath.Join(out.Dir, bake.ReportFileName(cfg.Output.Suffix))
	if err := bake.WriteReport(out.ReportPath, out.Report); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	return out, nil
}
