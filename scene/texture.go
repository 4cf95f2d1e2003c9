package scene

import (
	"fmt"
	"image"
	stddraw "image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Texture holds CPU-side pixel data for a 2D texture.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format, row-major, top row first.
	Pixels []byte
}

// imageExts are the LDR formats LoadTexture can decode.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// IsImageFile reports whether path has an extension LoadTexture understands.
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// LoadTexture reads a PNG, JPEG, BMP or TIFF file and converts it to RGBA8.
// Images wider or taller than maxSize are downscaled to fit; maxSize <= 0
// disables the limit.
func LoadTexture(path string, maxSize int) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	tex := TextureFromImage(path, img, maxSize)
	return tex, nil
}

// TextureFromImage converts any image to an RGBA8 texture.
func TextureFromImage(name string, img image.Image, maxSize int) *Texture {
	bounds := img.Bounds()
	w, h := fitSize(bounds.Dx(), bounds.Dy(), maxSize)

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == bounds.Dx() && h == bounds.Dy() {
		stddraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, stddraw.Src)
	} else {
		logger.Debugf("downscaling %s from %dx%d to %dx%d", name, bounds.Dx(), bounds.Dy(), w, h)
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), img, bounds, draw.Src, nil)
	}

	return &Texture{
		Name:   name,
		Width:  w,
		Height: h,
		Pixels: rgba.Pix,
	}
}

func fitSize(w, h, maxSize int) (int, int) {
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return w, h
	}
	if w >= h {
		nh := h * maxSize / w
		if nh < 1 {
			nh = 1
		}
		return maxSize, nh
	}
	nw := w * maxSize / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxSize
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values.
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
	}
}
