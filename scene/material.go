package scene

import "pbr-viewer/pbr"

// ModelMaterial collects the PBR inputs a model file references: decoded
// textures per channel and constant factors. The viewer turns it into a
// GPU material.
type ModelMaterial struct {
	Name     string
	Textures map[pbr.PropertyKind]*Texture

	// Constant fallbacks, nil when the file does not specify them.
	Albedo    *pbr.Color8
	Metalness *uint8
	Roughness *uint8
}

func NewModelMaterial(name string) *ModelMaterial {
	return &ModelMaterial{
		Name:     name,
		Textures: make(map[pbr.PropertyKind]*Texture),
	}
}

// SetTexture records tex for kind, ignoring nil textures.
func (m *ModelMaterial) SetTexture(kind pbr.PropertyKind, tex *Texture) {
	if tex != nil {
		m.Textures[kind] = tex
	}
}

func unitToByte(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}
