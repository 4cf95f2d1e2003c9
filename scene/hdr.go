package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	stdmath "math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrBadHDR = errors.New("scene: malformed Radiance HDR")

// Largest panorama DecodeHDR accepts: 32768 texels on a side and 16384x8192
// texels in total.
const (
	MaxHDRDimension = 32768
	MaxHDRPixels    = 16384 * 8192
)

// HDRImage is linear float RGB, three floats per pixel, row-major.
type HDRImage struct {
	Width  int
	Height int
	Pixels []float32
}

// IsHDRFile reports whether path looks like a Radiance HDR file.
func IsHDRFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".hdr")
}

// LoadHDR decodes a Radiance RGBE file and flips it so the bottom row comes
// first, which is the orientation the equirectangular capture expects.
func LoadHDR(path string) (*HDRImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hdr %q: %w", path, err)
	}
	defer f.Close()

	img, err := DecodeHDR(f)
	if err != nil {
		return nil, fmt.Errorf("decode hdr %q: %w", path, err)
	}
	img.FlipVertical()
	return img, nil
}

// DecodeHDR reads a Radiance RGBE stream with the top row first.
// Flat, old-style run-length and adaptive run-length scanlines are accepted.
func DecodeHDR(r io.Reader) (*HDRImage, error) {
	br := bufio.NewReader(r)

	magic, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: missing signature", ErrBadHDR)
	}
	magic = strings.TrimSpace(magic)
	if magic != "#?RADIANCE" && magic != "#?RGBE" {
		return nil, fmt.Errorf("%w: signature %q", ErrBadHDR, magic)
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated header", ErrBadHDR)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "FORMAT="); ok && v != "32-bit_rle_rgbe" {
			return nil, fmt.Errorf("%w: unsupported format %q", ErrBadHDR, v)
		}
	}

	resLine, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: missing resolution", ErrBadHDR)
	}
	width, height, bottomUp, err := parseResolution(resLine)
	if err != nil {
		return nil, err
	}

	// Rows are appended as they decode so a truncated file never costs the
	// full declared size.
	img := &HDRImage{
		Width:  width,
		Height: height,
		Pixels: make([]float32, 0, min(width*height*3, 1<<20)),
	}
	scan := make([]byte, width*4)
	row := make([]float32, width*3)
	for y := 0; y < height; y++ {
		if err := readScanline(br, scan); err != nil {
			return nil, fmt.Errorf("%w: scanline %d: %v", ErrBadHDR, y, err)
		}
		for x := 0; x < width; x++ {
			rgbeToFloat(scan[x*4:x*4+4], row[x*3:x*3+3])
		}
		img.Pixels = append(img.Pixels, row...)
	}
	if bottomUp {
		img.FlipVertical()
	}
	return img, nil
}

func parseResolution(line string) (w, h int, bottomUp bool, err error) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[2] != "+X" {
		return 0, 0, false, fmt.Errorf("%w: resolution %q", ErrBadHDR, strings.TrimSpace(line))
	}
	switch fields[0] {
	case "-Y":
	case "+Y":
		bottomUp = true
	default:
		return 0, 0, false, fmt.Errorf("%w: resolution %q", ErrBadHDR, strings.TrimSpace(line))
	}
	h, errH := strconv.Atoi(fields[1])
	w, errW := strconv.Atoi(fields[3])
	if errH != nil || errW != nil || w <= 0 || h <= 0 {
		return 0, 0, false, fmt.Errorf("%w: resolution %q", ErrBadHDR, strings.TrimSpace(line))
	}
	if w > MaxHDRDimension || h > MaxHDRDimension || w > MaxHDRPixels/h {
		return 0, 0, false, fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", ErrBadHDR, w, h, MaxHDRPixels)
	}
	return w, h, bottomUp, nil
}

func readScanline(br *bufio.Reader, scan []byte) error {
	width := len(scan) / 4
	if width < 8 || width > 0x7fff {
		return readFlat(br, scan, 0)
	}

	head := make([]byte, 4)
	if _, err := io.ReadFull(br, head); err != nil {
		return err
	}
	if head[0] != 2 || head[1] != 2 || head[2]&0x80 != 0 {
		copy(scan, head)
		return readFlat(br, scan, 1)
	}
	if int(head[2])<<8|int(head[3]) != width {
		return errors.New("scanline width mismatch")
	}

	// Adaptive RLE: each of the four channels is encoded separately.
	for ch := 0; ch < 4; ch++ {
		for x := 0; x < width; {
			count, err := br.ReadByte()
			if err != nil {
				return err
			}
			if count > 128 {
				n := int(count) - 128
				if x+n > width {
					return errors.New("run overflows scanline")
				}
				v, err := br.ReadByte()
				if err != nil {
					return err
				}
				for i := 0; i < n; i++ {
					scan[(x+i)*4+ch] = v
				}
				x += n
			} else {
				n := int(count)
				if n == 0 || x+n > width {
					return errors.New("bad literal run")
				}
				for i := 0; i < n; i++ {
					v, err := br.ReadByte()
					if err != nil {
						return err
					}
					scan[(x+i)*4+ch] = v
				}
				x += n
			}
		}
	}
	return nil
}

// readFlat fills scan from pixel start on, expanding old-style runs
// (1,1,1,n repeats the previous pixel n << shift times).
func readFlat(br *bufio.Reader, scan []byte, start int) error {
	width := len(scan) / 4
	shift := uint(0)
	px := make([]byte, 4)
	for x := start; x < width; {
		if _, err := io.ReadFull(br, px); err != nil {
			return err
		}
		if px[0] == 1 && px[1] == 1 && px[2] == 1 {
			if x == 0 {
				return errors.New("run without previous pixel")
			}
			n := int(px[3]) << shift
			if x+n > width {
				return errors.New("run overflows scanline")
			}
			prev := scan[(x-1)*4 : x*4]
			for i := 0; i < n; i++ {
				copy(scan[(x+i)*4:], prev)
			}
			x += n
			shift += 8
			continue
		}
		copy(scan[x*4:], px)
		x++
		shift = 0
	}
	return nil
}

func rgbeToFloat(rgbe []byte, out []float32) {
	if rgbe[3] == 0 {
		out[0], out[1], out[2] = 0, 0, 0
		return
	}
	f := float32(stdmath.Ldexp(1, int(rgbe[3])-(128+8)))
	out[0] = float32(rgbe[0]) * f
	out[1] = float32(rgbe[1]) * f
	out[2] = float32(rgbe[2]) * f
}

// FlipVertical reverses the row order in place.
func (img *HDRImage) FlipVertical() {
	stride := img.Width * 3
	tmp := make([]float32, stride)
	for top, bottom := 0, img.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := img.Pixels[top*stride : (top+1)*stride]
		b := img.Pixels[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// At returns the RGB value of pixel (x, y).
func (img *HDRImage) At(x, y int) [3]float32 {
	i := (y*img.Width + x) * 3
	return [3]float32{img.Pixels[i], img.Pixels[i+1], img.Pixels[i+2]}
}

// BlackHDR is a 1x1 black image used when an environment cannot be decoded.
func BlackHDR() *HDRImage {
	return &HDRImage{Width: 1, Height: 1, Pixels: make([]float32, 3)}
}
