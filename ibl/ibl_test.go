package ibl

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbr-viewer/pbr"
)

func testBundle(t *testing.T) *Bundle {
	t.Helper()
	cube := func(size, levels int) *CubeEnv {
		env, err := NewEmptyCubeEnv(size, levels)
		require.NoError(t, err)
		for i := range env.All() {
			env.All()[i] = float32(i%97) * 0.25
		}
		return env
	}
	lut := BRDFLut{Size: 4, Data: make([]float32, 4*4*2)}
	for i := range lut.Data {
		lut.Data[i] = float32(i) / 32
	}
	return &Bundle{
		Cubemap:    cube(8, 1),
		Irradiance: cube(2, 1),
		Prefilter:  cube(8, pbr.MaxMipLevels),
		BRDF:       lut,
	}
}

func TestCubeLayout(t *testing.T) {
	env, err := NewEmptyCubeEnv(16, pbr.MaxMipLevels)
	require.NoError(t, err)

	assert.Equal(t, (16*16+8*8+4*4+2*2+1)*6*Channels, len(env.All()))
	for lvl, want := range []int{16, 8, 4, 2, 1} {
		assert.Equal(t, want, env.Size(lvl))
		assert.Len(t, env.Face(lvl, CubeMapNegativeZ), want*want*Channels)
	}

	// faces are views into the shared slice
	env.Face(1, CubeMapPositiveY)[0] = 7
	offset := (16*16*6 + 8*8*2) * Channels
	assert.Equal(t, float32(7), env.All()[offset])
}

func TestNewCubeEnvRejectsWrongLength(t *testing.T) {
	_, err := NewCubeEnv(make([]float32, 10), 4, 1)
	assert.Error(t, err)
	_, err = NewEmptyCubeEnv(0, 1)
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4Fast, CompressionLZ4} {
		b := testBundle(t)
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, b, c))

		out, err := Decode(&buf)
		require.NoError(t, err, "compression %d", c)
		assert.Equal(t, b.Sizes(), out.Sizes())
		assert.Equal(t, b.Prefilter.All(), out.Prefilter.All())
		assert.Equal(t, b.Irradiance.All(), out.Irradiance.All())
		assert.Equal(t, b.BRDF.Data, out.BRDF.Data)
		assert.Equal(t, pbr.MaxMipLevels, out.Prefilter.Levels)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}))
	assert.ErrorIs(t, err, ErrCorrupt)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testBundle(t), CompressionNone))
	truncated := buf.Bytes()[:buf.Len()/2]
	_, err = Decode(bytes.NewReader(truncated))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func encodedHeader(t *testing.T, cubes ...cubeHeader) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	h := header{Check: MagicNumber, Version: Version1, Compression: CompressionNone}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, h))
	for _, ch := range cubes {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, ch))
	}
	return &buf
}

func TestDecodeRejectsOversizedCube(t *testing.T) {
	buf := encodedHeader(t, cubeHeader{Size: maxSize, Levels: maxLevels})
	_, err := Decode(buf)
	require.ErrorIs(t, err, ErrCorrupt)
	assert.Contains(t, err.Error(), "budget")
}

func TestDecodeTruncatedCubeData(t *testing.T) {
	// 2048^2 texels declared with no data behind the header.
	buf := encodedHeader(t, cubeHeader{Size: 2048, Levels: 1})
	_, err := Decode(buf)
	require.ErrorIs(t, err, ErrCorrupt)
	assert.Contains(t, err.Error(), "cube data")
}

func TestBundleValidate(t *testing.T) {
	b := testBundle(t)
	sizes := pbr.Sizes{Cubemap: 8, Irradiance: 2, Prefilter: 8, BRDF: 4}
	require.NoError(t, b.Validate(sizes, pbr.MaxMipLevels))

	wrong := sizes
	wrong.Prefilter = 16
	assert.ErrorIs(t, b.Validate(wrong, pbr.MaxMipLevels), ErrCorrupt)
	assert.ErrorIs(t, b.Validate(sizes, pbr.MaxMipLevels-1), ErrCorrupt)

	flat, err := NewEmptyCubeEnv(8, 1)
	require.NoError(t, err)
	b.Prefilter = flat
	assert.ErrorIs(t, b.Validate(sizes, pbr.MaxMipLevels), ErrCorrupt)
}

func TestCacheLoadMismatchedBundle(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir)
	require.NoError(t, cache.Store("sky", testBundle(t)))

	b, err := cache.Load("sky")
	require.NoError(t, err)
	want := pbr.Sizes{Cubemap: 1024, Irradiance: 32, Prefilter: 256, BRDF: 512}
	assert.ErrorIs(t, b.Validate(want, pbr.MaxMipLevels), ErrCorrupt)
}

func TestCacheMissThenHit(t *testing.T) {
	dir := t.TempDir()
	hdr := filepath.Join(dir, "sky.hdr")
	require.NoError(t, os.WriteFile(hdr, []byte("#?RADIANCE\n"), 0o644))

	sizes := pbr.Sizes{Cubemap: 8, Irradiance: 2, Prefilter: 8, BRDF: 4}
	key, err := Key(hdr, sizes)
	require.NoError(t, err)

	cache := NewCache(filepath.Join(dir, "cache"))
	_, err = cache.Load(key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.Store(key, testBundle(t)))
	b, err := cache.Load(key)
	require.NoError(t, err)
	assert.Equal(t, sizes, b.Sizes())

	require.NoError(t, cache.Evict(key))
	_, err = cache.Load(key)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, cache.Evict(key))
}

func TestKeyChanges(t *testing.T) {
	dir := t.TempDir()
	hdr := filepath.Join(dir, "sky.hdr")
	require.NoError(t, os.WriteFile(hdr, []byte("a"), 0o644))

	sizes := pbr.Sizes{Cubemap: 1024, Irradiance: 32, Prefilter: 256, BRDF: 512}
	k1, err := Key(hdr, sizes)
	require.NoError(t, err)

	sizes.Irradiance = 64
	k2, err := Key(hdr, sizes)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(hdr, later, later))
	k3, err := Key(hdr, sizes)
	require.NoError(t, err)
	assert.NotEqual(t, k2, k3)

	_, err = Key(filepath.Join(dir, "missing.hdr"), sizes)
	assert.Error(t, err)
}
