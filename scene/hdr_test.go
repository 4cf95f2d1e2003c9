package scene

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hdrHeader(w, h int) string {
	return fmt.Sprintf("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\nEXPOSURE=1.0\n\n-Y %d +X %d\n", h, w)
}

// 1.0 encodes as mantissa 128 with exponent 129, 2.0 as 128 with 130.
var (
	rgbeOne = []byte{128, 128, 128, 129}
	rgbeTwo = []byte{128, 0, 0, 130}
)

func TestDecodeHDRFlat(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(hdrHeader(2, 2))
	buf.Write(rgbeOne)
	buf.Write(rgbeTwo)
	buf.Write([]byte{0, 0, 0, 0})
	buf.Write(rgbeOne)

	img, err := DecodeHDR(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, [3]float32{1, 1, 1}, img.At(0, 0))
	assert.Equal(t, [3]float32{2, 0, 0}, img.At(1, 0))
	assert.Equal(t, [3]float32{0, 0, 0}, img.At(0, 1))
}

func TestDecodeHDROldRLE(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(hdrHeader(4, 1))
	buf.Write(rgbeTwo)
	buf.Write([]byte{1, 1, 1, 3})

	img, err := DecodeHDR(&buf)
	require.NoError(t, err)
	for x := 0; x < 4; x++ {
		assert.Equal(t, [3]float32{2, 0, 0}, img.At(x, 0))
	}
}

func TestDecodeHDRAdaptiveRLE(t *testing.T) {
	const w = 8
	var buf bytes.Buffer
	buf.WriteString(hdrHeader(w, 1))
	buf.Write([]byte{2, 2, 0, w})
	// red: literal run with increasing mantissas
	buf.WriteByte(w)
	for x := 0; x < w; x++ {
		buf.WriteByte(byte(16 * (x + 1)))
	}
	// green and blue: zero
	buf.Write([]byte{128 + w, 0})
	buf.Write([]byte{128 + w, 0})
	// exponent: 2^0 after bias
	buf.Write([]byte{128 + w, 136})

	img, err := DecodeHDR(&buf)
	require.NoError(t, err)
	for x := 0; x < w; x++ {
		assert.Equal(t, [3]float32{float32(16 * (x + 1)), 0, 0}, img.At(x, 0))
	}
}

func TestDecodeHDRBottomUp(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("#?RGBE\n\n+Y 2 +X 1\n")
	buf.Write(rgbeOne)
	buf.Write(rgbeTwo)

	img, err := DecodeHDR(&buf)
	require.NoError(t, err)
	// the first stored row is the bottom one
	assert.Equal(t, [3]float32{2, 0, 0}, img.At(0, 0))
	assert.Equal(t, [3]float32{1, 1, 1}, img.At(0, 1))
}

func TestDecodeHDRErrors(t *testing.T) {
	cases := map[string]string{
		"signature":  "P6\n\n-Y 1 +X 1\n",
		"format":     "#?RADIANCE\nFORMAT=32-bit_rle_xyze\n\n-Y 1 +X 1\n",
		"resolution": "#?RADIANCE\n\n-Y 1 -X 1\n",
		"truncated":  hdrHeader(2, 2),
		"huge":       hdrHeader(2000000000, 2000000000),
		"too wide":   hdrHeader(MaxHDRDimension+1, 1),
		"too many":   hdrHeader(MaxHDRDimension, MaxHDRDimension),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeHDR(bytes.NewBufferString(input))
			assert.ErrorIs(t, err, ErrBadHDR)
		})
	}
}

func TestDecodeHDRLargeHeaderTruncated(t *testing.T) {
	_, err := DecodeHDR(bytes.NewBufferString(hdrHeader(16384, 8192)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadHDR)
	assert.Contains(t, err.Error(), "scanline 0")
}

func TestLoadHDRFlips(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(hdrHeader(1, 2))
	buf.Write(rgbeOne)
	buf.Write(rgbeTwo)

	path := filepath.Join(t.TempDir(), "env.hdr")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	assert.True(t, IsHDRFile(path))

	img, err := LoadHDR(path)
	require.NoError(t, err)
	assert.Equal(t, [3]float32{2, 0, 0}, img.At(0, 0))
	assert.Equal(t, [3]float32{1, 1, 1}, img.At(0, 1))

	_, err = LoadHDR(filepath.Join(t.TempDir(), "missing.hdr"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
