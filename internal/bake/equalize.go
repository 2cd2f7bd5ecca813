package bake

import (
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshbake/pkg/atlas"
	"github.com/Faultbox/meshbake/pkg/imagebuf"
)

// TargetSize returns the common tile edge for a channel: the smallest image
// width, capped at atlasSize. Nil entries are ignored; with no images the
// result is atlasSize.
func TargetSize(images []*image.NRGBA, atlasSize int) int {
	target := atlasSize
	for _, img := range images {
		if img == nil {
			continue
		}
		target = min(target, img.Bounds().Dx())
	}
	return target
}

// Equalize returns images rescaled to target x target. Images already that
// size are passed through; others are resampled in parallel, at most
// workers at a time. Sources are never modified.
func Equalize(images []*image.NRGBA, target, workers int) ([]*image.NRGBA, error) {
	if target <= 0 {
		return nil, fmt.Errorf("equalize: %w: target %d", atlas.ErrEmptyImage, target)
	}

	out := make([]*image.NRGBA, len(images))
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, img := range images {
		g.Go(func() error {
			size := img.Bounds().Size()
			if size.X <= 0 || size.Y <= 0 {
				return fmt.Errorf("image %d: %w", i, atlas.ErrEmptyImage)
			}
			if size.X == target && size.Y == target {
				out[i] = img
				return nil
			}
			out[i] = imagebuf.RescaleBilinear(img, target, target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
