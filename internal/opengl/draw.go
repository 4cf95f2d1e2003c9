package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-viewer/math"
	"pbr-viewer/pbr"
	"pbr-viewer/scene"
)

// DrawModel draws every mesh of model with mat at the given placement. The
// transform is scale, then rotation of rotationAngle degrees about
// rotationAxis, then translation.
func DrawModel(model *GPUModel, mat *MaterialPBR, position, rotationAxis math.Vec3, rotationAngle float32, scale math.Vec3) {
	env := mat.Env
	gl.UseProgram(env.PBRShader)

	for _, kind := range pbr.AllProperties() {
		p := mat.Properties[kind]
		c := p.Color.Normalize()
		gl.Uniform3f(env.colorLocs[kind], c[0], c[1], c[2])
		gl.Uniform1i(env.flagLocs[kind], boolToInt32(p.UseTexture))
	}
	gl.Uniform1f(env.parallaxLoc, mat.ParallaxScale)

	transform := math.Mat4Model(position, rotationAxis, rotationAngle, scale)
	setMat4(env.modelLoc, transform)
	setMat4(env.mvpLoc, transform.Mul(env.view).Mul(env.projection))

	bindTexture(pbr.UnitIrradiance, gl.TEXTURE_CUBE_MAP, env.IrradianceID)
	bindTexture(pbr.UnitPrefilter, gl.TEXTURE_CUBE_MAP, env.PrefilterID)
	bindTexture(pbr.UnitBRDF, gl.TEXTURE_2D, env.BRDFID)
	for _, kind := range pbr.AllProperties() {
		if p := mat.Properties[kind]; p.UseTexture {
			bindTexture(kind.Unit(), gl.TEXTURE_2D, uint32(p.Texture))
		}
	}

	for _, mesh := range model.Meshes {
		mesh.draw()
	}

	bindTexture(pbr.UnitIrradiance, gl.TEXTURE_CUBE_MAP, 0)
	bindTexture(pbr.UnitPrefilter, gl.TEXTURE_CUBE_MAP, 0)
	bindTexture(pbr.UnitBRDF, gl.TEXTURE_2D, 0)
	for _, kind := range pbr.AllProperties() {
		if mat.Properties[kind].UseTexture {
			bindTexture(kind.Unit(), gl.TEXTURE_2D, 0)
		}
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.UseProgram(0)
}

// DrawSkybox draws the environment behind everything already in the depth
// buffer. Ambient mode shows the irradiance map instead of the sky.
func DrawSkybox(env *Environment, mode pbr.BackgroundMode, cam *scene.Camera) {
	tex := env.CubemapID
	if mode == pbr.BackgroundAmbient {
		tex = env.IrradianceID
	}

	gl.DepthFunc(gl.LEQUAL)
	gl.Disable(gl.CULL_FACE)

	gl.UseProgram(env.SkyShader)
	setMat4(env.skyViewLoc, cam.View())
	setMat4(env.skyProjectionLoc, env.projection)
	gl.Uniform1i(env.skyModeLoc, int32(mode))
	gl.Uniform1f(env.skyBlurLoc, blurLOD(env.Sizes.Cubemap))

	bindTexture(0, gl.TEXTURE_CUBE_MAP, tex)
	RenderCube()
	bindTexture(0, gl.TEXTURE_CUBE_MAP, 0)
	gl.UseProgram(0)
}

func bindTexture(unit int, target, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(target, tex)
}
