package opengl

import (
	"fmt"

	"pbr-viewer/pbr"
	"pbr-viewer/scene"
)

// MaterialPBR is a material bound to the environment whose program draws it.
type MaterialPBR struct {
	*pbr.Material
	Env           *Environment
	ParallaxScale float32
}

// SetupMaterialPBR creates a material with every channel on its constant.
// Textures attached later are deleted by the material.
func SetupMaterialPBR(env *Environment, albedo pbr.Color8, metalness, roughness uint8) *MaterialPBR {
	return &MaterialPBR{
		Material:      pbr.NewMaterial(albedo, metalness, roughness, pbr.TextureReleaserFunc(DeleteTexture)),
		Env:           env,
		ParallaxScale: 0.05,
	}
}

// SetMaterialTexturePBR attaches tex to one channel. The material takes
// ownership of the handle.
func SetMaterialTexturePBR(mat *MaterialPBR, kind pbr.PropertyKind, tex pbr.Texture) error {
	if err := mat.SetTexture(kind, tex); err != nil {
		return err
	}
	logger.Debugf("material: %s texture %d attached", kind, tex)
	return nil
}

// UnsetMaterialTexturePBR deletes the channel's texture and reverts it to
// its constant color.
func UnsetMaterialTexturePBR(mat *MaterialPBR, kind pbr.PropertyKind) error {
	return mat.UnsetTexture(kind)
}

// UnloadMaterialPBR deletes every attached texture.
func UnloadMaterialPBR(mat *MaterialPBR) {
	if mat == nil {
		return
	}
	mat.Unload()
}

// LoadMaterialTexturePBR reads path and attaches it to kind.
func LoadMaterialTexturePBR(mat *MaterialPBR, kind pbr.PropertyKind, path string, maxSize int) error {
	tex, err := LoadMaterialTexture(path, maxSize)
	if err != nil {
		return fmt.Errorf("material %s: %w", kind, err)
	}
	if err := SetMaterialTexturePBR(mat, kind, tex); err != nil {
		DeleteTexture(tex)
		return err
	}
	return nil
}

// ApplyModelMaterial uploads the textures and constants a model file
// referenced. Channels the file did not mention are left alone.
func ApplyModelMaterial(mat *MaterialPBR, mm *scene.ModelMaterial) error {
	if mm == nil {
		return nil
	}
	if mm.Albedo != nil {
		_ = mat.SetColor(pbr.Albedo, *mm.Albedo)
	}
	if mm.Metalness != nil {
		_ = mat.SetColor(pbr.Metalness, pbr.Color8{R: *mm.Metalness})
	}
	if mm.Roughness != nil {
		_ = mat.SetColor(pbr.Roughness, pbr.Color8{R: *mm.Roughness})
	}
	for _, kind := range pbr.AllProperties() {
		src, ok := mm.Textures[kind]
		if !ok || src == nil {
			continue
		}
		tex, err := UploadTexture(src)
		if err != nil {
			return fmt.Errorf("material %s: %w", kind, err)
		}
		if err := SetMaterialTexturePBR(mat, kind, tex); err != nil {
			DeleteTexture(tex)
			return err
		}
	}
	return nil
}
