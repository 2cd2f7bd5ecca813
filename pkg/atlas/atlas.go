// Package atlas packs equally sized source images into one square atlas and
// remaps mesh UVs into the packed sub-rectangles.
//
// Placement is split into two pure stages: Layout computes integer pixel
// bounds from sizes alone, Compose draws images at those bounds. Pack runs
// both. Callers that already own a layout (every channel after the first in
// a bake) call Compose directly so all channels share one layout.
package atlas

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"sort"

	"golang.org/x/image/draw"
)

// Atlas errors.
var (
	ErrPackingOverflow = errors.New("images do not fit in atlas")
	ErrUnsupportedSize = errors.New("unsupported atlas size")
	ErrEmptyImage      = errors.New("image has zero area")
)

// SupportedSizes lists the atlas edge lengths accepted by Pack.
var SupportedSizes = []int{512, 1024, 2048, 4096, 8192}

// ValidSize reports whether size is one of SupportedSizes.
func ValidSize(size int) bool {
	return slices.Contains(SupportedSizes, size)
}

// Atlas is one packed square canvas and the placement of every input image.
type Atlas struct {
	Image *image.NRGBA
	Size  int
	// Placements are normalized to [0,1] atlas space, in input order.
	Placements []Rect
	// Pixels are the integer bounds of each input, in input order.
	Pixels []image.Rectangle
}

// Pack places images into a size x size canvas and draws them.
// Placement order matches input order.
func Pack(images []*image.NRGBA, size int) (*Atlas, error) {
	sizes := make([]image.Point, len(images))
	for i, img := range images {
		sizes[i] = img.Bounds().Size()
	}

	pixels, err := Layout(sizes, size)
	if err != nil {
		return nil, err
	}
	return Compose(images, pixels, size)
}

// Layout computes non-overlapping pixel bounds for the given sizes inside a
// size x size square using a shelf packer. Items are visited tallest first;
// ties keep input order, so the result is deterministic. The returned slice
// is in input order.
func Layout(sizes []image.Point, size int) ([]image.Rectangle, error) {
	if !ValidSize(size) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSize, size)
	}

	total := 0
	for i, s := range sizes {
		if s.X <= 0 || s.Y <= 0 {
			return nil, fmt.Errorf("image %d: %w", i, ErrEmptyImage)
		}
		if s.X > size || s.Y > size {
			return nil, fmt.Errorf("%w: image %d is %dx%d, atlas is %d", ErrPackingOverflow, i, s.X, s.Y, size)
		}
		total += s.X * s.Y
	}
	if total > size*size {
		return nil, fmt.Errorf("%w: %d px of images, %d px of atlas", ErrPackingOverflow, total, size*size)
	}

	order := make([]int, len(sizes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sizes[order[a]].Y > sizes[order[b]].Y
	})

	alloc := newShelfAllocator(size, size)
	out := make([]image.Rectangle, len(sizes))
	for _, idx := range order {
		s := sizes[idx]
		x, y, ok := alloc.allocate(s.X, s.Y)
		if !ok {
			return nil, fmt.Errorf("%w: no room for image %d (%dx%d)", ErrPackingOverflow, idx, s.X, s.Y)
		}
		out[idx] = image.Rect(x, y, x+s.X, y+s.Y)
	}
	return out, nil
}

// Compose draws images at the given pixel bounds into a new size x size
// canvas. Each image must match its bounds exactly.
func Compose(images []*image.NRGBA, pixels []image.Rectangle, size int) (*Atlas, error) {
	if len(images) != len(pixels) {
		return nil, fmt.Errorf("atlas: %d images for %d placements", len(images), len(pixels))
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	placements := make([]Rect, len(pixels))
	for i, img := range images {
		p := pixels[i]
		if img.Bounds().Size() != p.Size() {
			return nil, fmt.Errorf("atlas: image %d is %v, placement is %v", i, img.Bounds().Size(), p.Size())
		}
		if !p.In(canvas.Bounds()) {
			return nil, fmt.Errorf("%w: placement %d %v outside %dx%d", ErrPackingOverflow, i, p, size, size)
		}
		draw.Draw(canvas, p, img, img.Bounds().Min, draw.Src)
		placements[i] = Normalize(p, size)
	}

	return &Atlas{
		Image:      canvas,
		Size:       size,
		Placements: placements,
		Pixels:     slices.Clone(pixels),
	}, nil
}

// shelfAllocator places rectangles left to right in horizontal shelves.
// A shelf's height is fixed by its first item; later items must be no taller,
// which holds when items arrive tallest first.
type shelfAllocator struct {
	width   int
	height  int
	shelves []shelf
}

type shelf struct {
	y      int // top of the shelf
	height int // height of the first (tallest) item
	x      int // next free column
}

func newShelfAllocator(width, height int) *shelfAllocator {
	return &shelfAllocator{width: width, height: height}
}

// allocate returns the top-left corner for a w x h item, or ok=false.
func (a *shelfAllocator) allocate(w, h int) (x, y int, ok bool) {
	for i := range a.shelves {
		s := &a.shelves[i]
		if s.x+w > a.width || h > s.height {
			continue
		}
		x, y = s.x, s.y
		s.x += w
		return x, y, true
	}

	newY := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		newY = last.y + last.height
	}
	if newY+h > a.height || w > a.width {
		return -1, -1, false
	}

	a.shelves = append(a.shelves, shelf{y: newY, height: h, x: w})
	return 0, newY, true
}
