package opengl

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// ReadFramebuffer copies the default framebuffer into an image with the top
// row first and every pixel opaque.
func ReadFramebuffer(width, height int) *image.NRGBA {
	pixels := make([]byte, width*height*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	FlipRows(img.Pix, pixels, width*4, height)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

// FlipRows copies src into dst reversing the row order.
func FlipRows(dst, src []byte, stride, rows int) {
	for y := 0; y < rows; y++ {
		copy(dst[y*stride:(y+1)*stride], src[(rows-1-y)*stride:(rows-y)*stride])
	}
}

// TakeScreenshot writes the current frame to dir as a timestamped PNG and
// returns the file path.
func TakeScreenshot(dir string, width, height int) (string, error) {
	img := ReadFramebuffer(width, height)
	name := filepath.Join(dir, fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405")))

	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	logger.Noticef("saved screenshot %s", name)
	return name, nil
}
