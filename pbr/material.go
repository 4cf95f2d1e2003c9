package pbr

import "fmt"

// Texture is a GPU texture handle. Zero means no texture.
type Texture uint32

// TextureReleaser frees textures owned by a material.
type TextureReleaser interface {
	ReleaseTexture(tex Texture)
}

// TextureReleaserFunc adapts a plain function to TextureReleaser.
type TextureReleaserFunc func(tex Texture)

func (f TextureReleaserFunc) ReleaseTexture(tex Texture) { f(tex) }

// Property is one material channel. When UseTexture is set the shader samples
// Texture, otherwise it uses Color.
type Property struct {
	Texture    Texture
	UseTexture bool
	Color      Color8
}

// Material holds the seven channels of a metallic/roughness material.
type Material struct {
	Properties [NumProperties]Property

	releaser TextureReleaser
}

// NewMaterial fills every channel with its default constant. Metalness and
// roughness are stored in the red channel.
func NewMaterial(albedo Color8, metalness, roughness uint8, releaser TextureReleaser) *Material {
	m := &Material{releaser: releaser}
	m.Properties[Albedo].Color = albedo
	m.Properties[Normals].Color = Color8{128, 128, 255, 255}
	m.Properties[Metalness].Color = Color8{metalness, 0, 0, 0}
	m.Properties[Roughness].Color = Color8{roughness, 0, 0, 0}
	m.Properties[Occlusion].Color = Color8{255, 255, 255, 255}
	m.Properties[Emission].Color = Color8{0, 0, 0, 0}
	m.Properties[Height].Color = Color8{0, 0, 0, 0}
	return m
}

// SetColor changes the constant fallback of a channel.
func (m *Material) SetColor(kind PropertyKind, c Color8) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownProperty, int(kind))
	}
	m.Properties[kind].Color = c
	return nil
}

// SetTexture attaches tex to kind and enables sampling. A texture the channel
// already owned is released first. Other channels are untouched.
func (m *Material) SetTexture(kind PropertyKind, tex Texture) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownProperty, int(kind))
	}
	if tex == 0 {
		return fmt.Errorf("pbr: set %s: zero texture handle", kind)
	}
	p := &m.Properties[kind]
	if p.UseTexture && p.Texture != tex {
		m.release(p.Texture)
	}
	p.Texture = tex
	p.UseTexture = true
	return nil
}

// UnsetTexture releases the channel's texture and falls back to its color.
// It is a no-op when no texture is attached.
func (m *Material) UnsetTexture(kind PropertyKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownProperty, int(kind))
	}
	p := &m.Properties[kind]
	if !p.UseTexture {
		return nil
	}
	m.release(p.Texture)
	p.Texture = 0
	p.UseTexture = false
	return nil
}

// Unload releases every attached texture. Unloading twice is safe.
func (m *Material) Unload() {
	for _, kind := range AllProperties() {
		_ = m.UnsetTexture(kind)
	}
}

// Textures returns the attached texture handles keyed by channel.
func (m *Material) Textures() map[PropertyKind]Texture {
	out := make(map[PropertyKind]Texture)
	for _, kind := range AllProperties() {
		if p := m.Properties[kind]; p.UseTexture {
			out[kind] = p.Texture
		}
	}
	return out
}

func (m *Material) release(tex Texture) {
	if tex != 0 && m.releaser != nil {
		m.releaser.ReleaseTexture(tex)
	}
}
