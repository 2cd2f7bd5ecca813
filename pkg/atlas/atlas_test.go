package atlas

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/Faultbox/meshbake/pkg/imagebuf"
)

func solid(w, h int, v uint8) *image.NRGBA {
	return imagebuf.CreateSolidImage(w, h, color.NRGBA{R: v, G: v, B: v, A: 255})
}

func checkLayout(t *testing.T, sizes []image.Point, pixels []image.Rectangle, size int) {
	t.Helper()
	if len(pixels) != len(sizes) {
		t.Fatalf("got %d placements for %d images", len(pixels), len(sizes))
	}
	bounds := image.Rect(0, 0, size, size)
	for i, p := range pixels {
		if p.Size() != sizes[i] {
			t.Errorf("placement %d size = %v, want %v", i, p.Size(), sizes[i])
		}
		if !p.In(bounds) {
			t.Errorf("placement %d %v outside atlas %v", i, p, bounds)
		}
		for j := i + 1; j < len(pixels); j++ {
			if p.Overlaps(pixels[j]) {
				t.Errorf("placements %d %v and %d %v overlap", i, p, j, pixels[j])
			}
		}
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name  string
		sizes []image.Point
		size  int
	}{
		{"single", []image.Point{{512, 512}}, 512},
		{"four quadrants", []image.Point{{256, 256}, {256, 256}, {256, 256}, {256, 256}}, 512},
		{"mixed heights", []image.Point{{100, 50}, {200, 300}, {300, 100}, {50, 50}, {400, 200}}, 1024},
		{"many small", repeat(image.Point{64, 64}, 256), 1024},
		{"wide and flat", []image.Point{{1024, 10}, {1024, 10}, {512, 512}}, 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pixels, err := Layout(tt.sizes, tt.size)
			if err != nil {
				t.Fatalf("Layout: %v", err)
			}
			checkLayout(t, tt.sizes, pixels, tt.size)
		})
	}
}

func TestLayoutDeterministic(t *testing.T) {
	sizes := []image.Point{{128, 64}, {64, 128}, {256, 256}, {64, 64}, {128, 128}}

	first, err := Layout(sizes, 512)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Layout(sizes, 512)
		if err != nil {
			t.Fatalf("Layout: %v", err)
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d placement %d = %v, want %v", i, j, again[j], first[j])
			}
		}
	}
}

func TestLayoutOverflow(t *testing.T) {
	tests := []struct {
		name  string
		sizes []image.Point
		size  int
	}{
		{"total area", repeat(image.Point{512, 512}, 5), 1024},
		{"too large", []image.Point{{1024, 1024}}, 512},
		{"fragmented", []image.Point{{300, 300}, {300, 300}}, 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Layout(tt.sizes, tt.size)
			if !errors.Is(err, ErrPackingOverflow) {
				t.Errorf("expected ErrPackingOverflow, got %v", err)
			}
		})
	}
}

func TestLayoutUnsupportedSize(t *testing.T) {
	_, err := Layout([]image.Point{{10, 10}}, 1000)
	if !errors.Is(err, ErrUnsupportedSize) {
		t.Errorf("expected ErrUnsupportedSize, got %v", err)
	}
}

func TestLayoutEmptyImage(t *testing.T) {
	_, err := Layout([]image.Point{{0, 10}}, 512)
	if !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
}

func TestPackDrawsImagesAtPlacements(t *testing.T) {
	images := []*image.NRGBA{solid(256, 256, 10), solid(256, 256, 20), solid(256, 256, 30)}

	a, err := Pack(images, 512)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if a.Size != 512 || a.Image.Bounds().Dx() != 512 {
		t.Fatalf("atlas size = %d (%v)", a.Size, a.Image.Bounds())
	}
	if len(a.Placements) != len(images) {
		t.Fatalf("got %d placements, want %d", len(a.Placements), len(images))
	}

	for i, p := range a.Pixels {
		want := uint8(10 * (i + 1))
		c := a.Image.NRGBAAt(p.Min.X+p.Dx()/2, p.Min.Y+p.Dy()/2)
		if c.R != want {
			t.Errorf("image %d center = %d, want %d", i, c.R, want)
		}
	}

	for i := range a.Placements {
		for j := i + 1; j < len(a.Placements); j++ {
			if a.Placements[i].Overlaps(a.Placements[j]) {
				t.Errorf("normalized placements %d and %d overlap", i, j)
			}
		}
	}
}

func TestPackTwo512InAtlas2048(t *testing.T) {
	a, err := Pack([]*image.NRGBA{solid(512, 512, 1), solid(512, 512, 2)}, 2048)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	for i, p := range a.Pixels {
		if p.Dx() != 512 || p.Dy() != 512 {
			t.Errorf("image %d footprint = %v, want 512x512", i, p.Size())
		}
		r := a.Placements[i]
		if r.Width() != 0.25 || r.Height() != 0.25 {
			t.Errorf("image %d normalized = %vx%v, want 0.25x0.25", i, r.Width(), r.Height())
		}
	}
}

func TestComposeRejectsMismatchedSizes(t *testing.T) {
	_, err := Compose([]*image.NRGBA{solid(64, 64, 1)}, []image.Rectangle{image.Rect(0, 0, 32, 32)}, 512)
	if err == nil {
		t.Error("expected error for image/placement size mismatch")
	}
}

func TestComposeReusesLayout(t *testing.T) {
	albedo, err := Pack([]*image.NRGBA{solid(128, 128, 1), solid(128, 128, 2)}, 512)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	normal, err := Compose([]*image.NRGBA{solid(128, 128, 3), solid(128, 128, 4)}, albedo.Pixels, 512)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	for i := range albedo.Placements {
		if albedo.Placements[i] != normal.Placements[i] {
			t.Errorf("placement %d differs: %v vs %v", i, albedo.Placements[i], normal.Placements[i])
		}
	}
}

func TestValidSize(t *testing.T) {
	for _, s := range SupportedSizes {
		if !ValidSize(s) {
			t.Errorf("ValidSize(%d) = false", s)
		}
	}
	for _, s := range []int{0, 256, 1000, 16384} {
		if ValidSize(s) {
			t.Errorf("ValidSize(%d) = true", s)
		}
	}
}

func repeat(p image.Point, n int) []image.Point {
	out := make([]image.Point, n)
	for i := range out {
		out[i] = p
	}
	return out
}
