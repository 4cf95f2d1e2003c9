package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-viewer/math"
	"pbr-viewer/pbr"
)

// CreateLight binds a new light to the next free slot of env's lights array
// and uploads it. Exhaustion is reported as by pbr.NewLight and nothing is
// uploaded.
func CreateLight(alloc *pbr.LightAllocator, env *Environment, typ pbr.LightType, position, target math.Vec3, color pbr.Color8) (*pbr.Light, error) {
	light, err := pbr.NewLight(alloc, typ, position, target, color)
	if err != nil {
		logger.Warningf("light not created: %v", err)
		return light, err
	}
	UpdateLightValues(env, light)
	logger.Debugf("created %s light in slot %d", typ, light.Slot)
	return light, nil
}

// UpdateLightValues uploads the five values of light's slot. Unbound lights
// are ignored.
func UpdateLightValues(env *Environment, light *pbr.Light) {
	if light.Slot < 0 || light.Slot >= pbr.MaxLights {
		return
	}
	u := light.Uniforms()
	if env.DirtyTracking {
		if last := env.lastLight[light.Slot]; last != nil && *last == u {
			return
		}
	}

	locs := env.lightLocs[light.Slot]
	gl.UseProgram(env.PBRShader)
	gl.Uniform1i(locs.enabled, u.Enabled)
	gl.Uniform1i(locs.typ, u.Type)
	gl.Uniform3fv(locs.position, 1, &u.Position[0])
	gl.Uniform3fv(locs.target, 1, &u.Target[0])
	gl.Uniform4fv(locs.color, 1, &u.Color[0])

	env.lastLight[light.Slot] = &u
}
