package pbr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type releaseLog struct {
	released []Texture
}

func (r *releaseLog) ReleaseTexture(tex Texture) {
	r.released = append(r.released, tex)
}

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial(Color8{255, 0, 0, 255}, 10, 200, nil)

	assert.Equal(t, Color8{255, 0, 0, 255}, m.Properties[Albedo].Color)
	assert.Equal(t, Color8{128, 128, 255, 255}, m.Properties[Normals].Color)
	assert.Equal(t, Color8{10, 0, 0, 0}, m.Properties[Metalness].Color)
	assert.Equal(t, Color8{200, 0, 0, 0}, m.Properties[Roughness].Color)
	assert.Equal(t, Color8{255, 255, 255, 255}, m.Properties[Occlusion].Color)
	assert.Equal(t, Color8{}, m.Properties[Emission].Color)
	assert.Equal(t, Color8{}, m.Properties[Height].Color)

	for _, kind := range AllProperties() {
		assert.False(t, m.Properties[kind].UseTexture, kind.String())
		assert.Zero(t, m.Properties[kind].Texture, kind.String())
	}
}

func TestSetTextureIsIndependent(t *testing.T) {
	for _, p := range AllProperties() {
		m := NewMaterial(White, 0, 0, nil)
		before := m.Properties

		require.NoError(t, m.SetTexture(p, 42))
		for _, q := range AllProperties() {
			if q == p {
				assert.True(t, m.Properties[q].UseTexture)
				assert.Equal(t, Texture(42), m.Properties[q].Texture)
				continue
			}
			assert.Equal(t, before[q], m.Properties[q], "setting %s changed %s", p, q)
		}

		require.NoError(t, m.UnsetTexture(p))
		assert.Equal(t, before, m.Properties, "unset %s", p)
	}
}

func TestUnsetTextureReleases(t *testing.T) {
	log := &releaseLog{}
	m := NewMaterial(White, 0, 0, log)
	require.NoError(t, m.SetTexture(Normals, 7))

	require.NoError(t, m.UnsetTexture(Normals))
	assert.Equal(t, []Texture{7}, log.released)

	// second unset is a no-op
	require.NoError(t, m.UnsetTexture(Normals))
	assert.Equal(t, []Texture{7}, log.released)
}

func TestSetTextureReplacesPrevious(t *testing.T) {
	log := &releaseLog{}
	m := NewMaterial(White, 0, 0, log)
	require.NoError(t, m.SetTexture(Albedo, 1))
	require.NoError(t, m.SetTexture(Albedo, 2))

	assert.Equal(t, []Texture{1}, log.released)
	assert.Equal(t, Texture(2), m.Properties[Albedo].Texture)

	// re-setting the same handle does not free it
	require.NoError(t, m.SetTexture(Albedo, 2))
	assert.Equal(t, []Texture{1}, log.released)
}

func TestSetTextureRejectsBadInput(t *testing.T) {
	m := NewMaterial(White, 0, 0, nil)
	assert.ErrorIs(t, m.SetTexture(PropertyKind(9), 1), ErrUnknownProperty)
	assert.ErrorIs(t, m.UnsetTexture(PropertyKind(-1)), ErrUnknownProperty)
	assert.Error(t, m.SetTexture(Albedo, 0))
	assert.False(t, m.Properties[Albedo].UseTexture)
}

func TestUnloadReleasesOnlyAttached(t *testing.T) {
	log := &releaseLog{}
	m := NewMaterial(White, 0, 0, log)
	require.NoError(t, m.SetTexture(Albedo, 3))
	require.NoError(t, m.SetTexture(Height, 9))

	m.Unload()
	assert.ElementsMatch(t, []Texture{3, 9}, log.released)
	assert.Empty(t, m.Textures())

	m.Unload()
	assert.Len(t, log.released, 2)
}

func TestPropertyKindNames(t *testing.T) {
	assert.Equal(t, "ao.useSampler", Occlusion.FlagUniform())
	assert.Equal(t, "albedo.color", Albedo.ColorUniform())
	assert.Equal(t, "height.sampler", Height.SamplerUniform())
	assert.Equal(t, 3, Albedo.Unit())
	assert.Equal(t, 9, Height.Unit())

	k, err := ParsePropertyKind("Occlusion")
	require.NoError(t, err)
	assert.Equal(t, Occlusion, k)
	_, err = ParsePropertyKind("specular")
	assert.ErrorIs(t, err, ErrUnknownProperty)
}
