package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-viewer/ibl"
	"pbr-viewer/pbr"
	"pbr-viewer/scene"
)

// UploadTexture uploads an RGBA8 scene.Texture with a full mip chain and
// returns its handle. The OpenGL context must be current.
func UploadTexture(tex *scene.Texture) (pbr.Texture, error) {
	if tex == nil {
		return 0, fmt.Errorf("nil texture")
	}
	if len(tex.Pixels) == 0 || len(tex.Pixels) != tex.Width*tex.Height*4 {
		return 0, fmt.Errorf("texture %q has no valid pixel data", tex.Name)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(tex.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return pbr.Texture(id), nil
}

// LoadMaterialTexture reads an image file and uploads it.
func LoadMaterialTexture(path string, maxSize int) (pbr.Texture, error) {
	tex, err := scene.LoadTexture(path, maxSize)
	if err != nil {
		return 0, err
	}
	return UploadTexture(tex)
}

// DeleteTexture frees a texture handle. Zero is ignored.
func DeleteTexture(tex pbr.Texture) {
	if tex == 0 {
		return
	}
	id := uint32(tex)
	gl.DeleteTextures(1, &id)
}

// uploadHDR creates the RGB32F equirectangular source texture.
func uploadHDR(img *scene.HDRImage) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB32F,
		int32(img.Width), int32(img.Height), 0,
		gl.RGB, gl.FLOAT, gl.Ptr(img.Pixels))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id
}

// newCubemap allocates an RGB16F cubemap with levels mips. When mipmapped is
// set the minification filter samples between mips.
func newCubemap(size, levels int, mipmapped bool) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	for level := 0; level < levels; level++ {
		s := int32(pbr.PrefilterMipSize(size, level))
		for face := 0; face < 6; face++ {
			gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), int32(level), gl.RGB16F,
				s, s, 0, gl.RGB, gl.FLOAT, nil)
		}
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	if levels > 1 {
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_BASE_LEVEL, 0)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAX_LEVEL, int32(levels-1))
	}
	if mipmapped {
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return id
}

// uploadCubeEnv creates a cubemap from baked data. Environments with a single
// level get their mip chain generated on the GPU when mipmapped is set.
func uploadCubeEnv(env *ibl.CubeEnv, mipmapped bool) uint32 {
	id := newCubemap(env.Size(0), env.Levels, mipmapped || env.Levels > 1)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	for level := 0; level < env.Levels; level++ {
		s := int32(env.Size(level))
		for face := 0; face < 6; face++ {
			data := env.Face(level, ibl.CubeMapFace(face))
			gl.TexSubImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), int32(level),
				0, 0, s, s, gl.RGB, gl.FLOAT, gl.Ptr(data))
		}
	}
	if mipmapped && env.Levels == 1 {
		gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	}
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return id
}

// readCubeEnv copies every face of every level back to the CPU.
func readCubeEnv(tex uint32, size, levels int) (*ibl.CubeEnv, error) {
	env, err := ibl.NewEmptyCubeEnv(size, levels)
	if err != nil {
		return nil, err
	}
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	for level := 0; level < levels; level++ {
		for face := 0; face < 6; face++ {
			data := env.Face(level, ibl.CubeMapFace(face))
			gl.GetTexImage(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), int32(level),
				gl.RGB, gl.FLOAT, gl.Ptr(data))
		}
	}
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return env, nil
}

// newBRDFTexture allocates the RG16F lookup table, optionally filled.
func newBRDFTexture(size int, data []float32) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RG16F, int32(size), int32(size), 0, gl.RG, gl.FLOAT, ptr)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id
}

func readBRDF(tex uint32, size int) ibl.BRDFLut {
	lut := ibl.BRDFLut{Size: size, Data: make([]float32, size*size*2)}
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RG, gl.FLOAT, gl.Ptr(lut.Data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return lut
}
