package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1024, cfg.Environment.CubemapSize)
	assert.Equal(t, 32, cfg.Environment.IrradianceSize)
	assert.Equal(t, 256, cfg.Environment.PrefilterSize)
	assert.Equal(t, 512, cfg.Environment.BRDFSize)
	assert.Equal(t, float32(1.75), cfg.Model.Scale)
	assert.Equal(t, float32(2), cfg.Render.Scale)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.toml")
	data := `
[environment]
hdr = "sky.hdr"
irradiance_size = 64

[render]
mode = "roughness"
fxaa = false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sky.hdr", cfg.Environment.HDR)
	assert.Equal(t, 64, cfg.Environment.IrradianceSize)
	assert.Equal(t, 1024, cfg.Environment.CubemapSize)
	assert.Equal(t, "roughness", cfg.Render.Mode)
	assert.False(t, cfg.Render.FXAA)
	assert.True(t, cfg.Render.Bloom)
}

func TestLoadReplacesTextureTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte("[material.textures]\nalbedo = \"a.png\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"albedo": "a.png"}, cfg.Material.Textures)

	empty := filepath.Join(dir, "empty.toml")
	require.NoError(t, os.WriteFile(empty, []byte("[material.textures]\n"), 0o644))
	cfg, err = Load(empty)
	require.NoError(t, err)
	assert.Empty(t, cfg.Material.Textures)

	other := filepath.Join(dir, "other.toml")
	require.NoError(t, os.WriteFile(other, []byte("[material]\nmetalness = 0\n"), 0o644))
	cfg, err = Load(other)
	require.NoError(t, err)
	assert.Equal(t, Default().Material.Textures, cfg.Material.Textures)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render]\nmdoe = \"albedo\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Environment.PrefilterSize = 0
	cfg.Render.Mode = "sparkles"
	cfg.Render.Scale = 3
	cfg.Material.Textures = map[string]string{"glow": "x.png"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefilter_size")
	assert.Contains(t, err.Error(), "sparkles")
	assert.Contains(t, err.Error(), "render.scale")
	assert.Contains(t, err.Error(), "glow")

	cfg = Default()
	cfg.Log.Packages = map[string]string{"watch": "chatty"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.packages.watch")

	cfg = Default()
	cfg.Lights.Radius = 0
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lights.radius")
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Camera.Orbital = true
	data, err := cfg.Encode()
	require.NoError(t, err)

	var out Config
	require.NoError(t, Decode(data, &out))
	assert.Equal(t, cfg, out)
}

func TestRenderScaleIndex(t *testing.T) {
	assert.Equal(t, 0, RenderScaleIndex(0.5))
	assert.Equal(t, 2, RenderScaleIndex(2))
	assert.Equal(t, -1, RenderScaleIndex(1.5))
}
