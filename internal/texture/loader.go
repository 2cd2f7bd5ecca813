// Package texture decodes source material images from disk into NRGBA
// buffers and caches them by path.
package texture

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/meshbake/pkg/imagebuf"
)

// ErrUnsupportedFormat is returned for file extensions with no registered decoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Extensions lists the file extensions Load accepts.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".tga", ".bmp", ".webp"}

// Supported reports whether path has a decodable image extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load reads and decodes the image at path into a zero-origin NRGBA buffer.
func Load(path string) (*image.NRGBA, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("texture: %w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}

	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n, nil
	}
	return imagebuf.Clone(img), nil
}
