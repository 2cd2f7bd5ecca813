// Package imagebuf provides pixel-level operations on NRGBA buffers:
// solid fills, normal-map channel restoration and bilinear rescaling.
//
// Every function returns a new buffer and leaves its input untouched.
package imagebuf

import (
	"image"
	"image/color"
	"runtime"
	"sync"

	"golang.org/x/image/draw"
)

// parallelRows is the buffer height above which fills are split across
// goroutines.
const parallelRows = 256

// CreateSolidImage allocates a width x height buffer filled with c.
func CreateSolidImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return img
	}

	// Fill the first row, then copy it down.
	row := img.Pix[:width*4]
	for i := 0; i < len(row); i += 4 {
		row[i] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = c.A
	}

	forRows(height, func(y0, y1 int) {
		for y := max(y0, 1); y < y1; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+width*4], row)
		}
	})
	return img
}

// RestoreNormalChannel converts a normal map stored in the packed
// alpha-as-red layout into a standard tangent-space normal image: alpha is
// copied into red and the result is made opaque.
//
// The substitution is one-way. Applying it to its own output overwrites red
// with 255 and corrupts the map.
func RestoreNormalChannel(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	forRows(b.Dy(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < b.Dx(); x++ {
				si := img.PixOffset(b.Min.X+x, b.Min.Y+y)
				di := dst.PixOffset(x, y)
				dst.Pix[di] = img.Pix[si+3]
				dst.Pix[di+1] = img.Pix[si+1]
				dst.Pix[di+2] = img.Pix[si+2]
				dst.Pix[di+3] = 255
			}
		}
	})
	return dst
}

// RescaleBilinear resamples img to width x height with bilinear filtering.
// Each of the four channels is interpolated on its own, so color stored
// under zero alpha survives. A same-size request returns a copy.
func RescaleBilinear(img image.Image, width, height int) *image.NRGBA {
	src, ok := img.(*image.NRGBA)
	if !ok {
		src = Clone(img)
	}
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		return Clone(src)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(rawView(dst), dst.Bounds(), rawView(src), src.Bounds(), draw.Src, nil)
	return dst
}

// rawView shares m's pixels as an RGBA image. RGBA to RGBA scaling works on
// the stored bytes directly, which skips the premultiply step an NRGBA
// source goes through.
func rawView(m *image.NRGBA) *image.RGBA {
	return &image.RGBA{Pix: m.Pix, Stride: m.Stride, Rect: m.Rect}
}

// Clone converts any image to a zero-origin NRGBA copy. NRGBA sources are
// copied byte for byte.
func Clone(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if s, ok := src.(*image.NRGBA); ok {
		n := b.Dx() * 4
		for y := 0; y < b.Dy(); y++ {
			si := s.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+n], s.Pix[si:si+n])
		}
		return dst
	}
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Equal reports whether two images have the same size and pixels.
func Equal(a, b *image.NRGBA) bool {
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	ab, bb := a.Bounds(), b.Bounds()
	for y := 0; y < ab.Dy(); y++ {
		ai := a.PixOffset(ab.Min.X, ab.Min.Y+y)
		bi := b.PixOffset(bb.Min.X, bb.Min.Y+y)
		n := ab.Dx() * 4
		for k := 0; k < n; k++ {
			if a.Pix[ai+k] != b.Pix[bi+k] {
				return false
			}
		}
	}
	return true
}

// forRows runs fn over [0, rows) split into contiguous bands, one per CPU,
// when the buffer is tall enough to be worth it.
func forRows(rows int, fn func(y0, y1 int)) {
	workers := runtime.NumCPU()
	if rows < parallelRows || workers < 2 {
		fn(0, rows)
		return
	}

	band := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < rows; y0 += band {
		y1 := min(y0+band, rows)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(y0, y1)
		}()
	}
	wg.Wait()
}
