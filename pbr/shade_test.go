package pbr

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"

	"pbr-viewer/math"
)

func redSphereApex(lights ...Light) ShadeInput {
	return ShadeInput{
		Albedo:    Color8{255, 0, 0, 255}.Vec3(),
		Metalness: 0,
		Roughness: 128.0 / 255.0,
		Occlusion: 1,
		Normal:    math.Vec3Up,
		WorldPos:  math.NewVec3(0, 1, 0),
		ViewPos:   math.NewVec3(0, 4, 0),
		Lights:    lights,
	}
}

func whitePointAbove() Light {
	return Light{
		Enabled:  true,
		Type:     LightPoint,
		Position: math.NewVec3(0, 2, 0),
		Color:    White,
	}
}

func TestShadeFlatRedSphere(t *testing.T) {
	c := Shade(redSphereApex(whitePointAbove()))

	assert.Greater(t, c.X, float32(0))
	assert.Greater(t, c.X, c.Y)
	assert.Greater(t, c.X, c.Z)
	assert.LessOrEqual(t, c.X, float32(1))
}

func TestShadeDisabledLightContributesNothing(t *testing.T) {
	off := Light{
		Enabled:  false,
		Type:     LightPoint,
		Position: math.NewVec3(1, 3, 0),
		Color:    Color8{0, 255, 0, 255},
	}
	with := Shade(redSphereApex(whitePointAbove(), off))
	without := Shade(redSphereApex(whitePointAbove()))
	assert.Equal(t, without, with)

	only := Shade(redSphereApex(off))
	none := Shade(redSphereApex())
	assert.Equal(t, none, only)
}

func TestShadeIgnoresLightsPastCapacity(t *testing.T) {
	lights := make([]Light, MaxLights)
	for i := range lights {
		lights[i] = Light{Type: LightPoint, Position: math.NewVec3(0, 5, 0)}
	}
	base := Shade(redSphereApex(lights...))
	extra := Shade(redSphereApex(append(lights, whitePointAbove())...))
	assert.Equal(t, base, extra)
}

// specularLobeRatio is the specular response 20 degrees off the mirror
// direction relative to the peak.
func specularLobeRatio(roughness float32) float32 {
	n := math.Vec3Up
	f0 := math.Vec3One
	v := math.NewVec3(0, 1, 1).Normalize()
	mirror := v.Negate().Reflect(n)

	off := math.Mat4RotationAxis(math.Vec3Right, 20*math.Deg2Rad).MulDir(mirror)

	peak := SpecularBRDF(n, v, mirror, roughness, f0).X * n.Dot(mirror)
	side := SpecularBRDF(n, v, off, roughness, f0).X * math.Max(n.Dot(off), 0)
	return side / peak
}

func TestSmoothMetalHasNarrowerLobe(t *testing.T) {
	smooth := specularLobeRatio(0)
	rough := specularLobeRatio(1)
	assert.Less(t, smooth, rough)
	assert.Less(t, smooth, float32(0.01))
}

func TestShadeSmoothVsRoughMetal(t *testing.T) {
	in := ShadeInput{
		Albedo:    math.Vec3One,
		Metalness: 1,
		Occlusion: 1,
		Normal:    math.Vec3Up,
		ViewPos:   math.NewVec3(0, 3, 3),
		Lights: []Light{{
			Enabled:  true,
			Type:     LightDirectional,
			Position: math.NewVec3(0, 3, -3),
			Color:    White,
		}},
	}
	in.Roughness = 0
	smoothPeak := Shade(in)
	in.Roughness = 1
	roughPeak := Shade(in)
	// at the mirror direction the smooth surface is brighter
	assert.Greater(t, smoothPeak.X, roughPeak.X)
}

func TestDirectionalLightIgnoresDistance(t *testing.T) {
	near := Light{Enabled: true, Type: LightDirectional, Position: math.NewVec3(0, 2, 0), Color: White}
	far := near
	far.Position = math.NewVec3(0, 20, 0)

	a := Shade(redSphereApex(near))
	b := Shade(redSphereApex(far))
	assert.InDelta(t, a.X, b.X, 1e-5)

	legacy := redSphereApex(far)
	legacy.LegacyDirectional = true
	c := Shade(legacy)
	assert.Less(t, c.X, b.X)
}

func TestShadeRenderModes(t *testing.T) {
	in := redSphereApex(whitePointAbove())
	in.Emission = math.NewVec3(0.1, 0.2, 0.3)
	in.Irradiance = math.NewVec3(0.5, 0.5, 0.5)

	in.Mode = RenderAlbedo
	assert.Equal(t, in.Albedo, Shade(in))
	in.Mode = RenderNormals
	assert.Equal(t, math.Vec3Up, Shade(in))
	in.Mode = RenderEmission
	assert.Equal(t, in.Emission, Shade(in))
	in.Mode = RenderIrradiance
	assert.Equal(t, in.Irradiance, Shade(in))
	in.Mode = RenderRoughness
	assert.InDelta(t, 128.0/255.0, Shade(in).X, 1e-6)
}

func TestShadeIBLAddsAmbient(t *testing.T) {
	in := redSphereApex()
	dark := Shade(in)

	in.UseIBL = true
	in.Irradiance = math.NewVec3(1, 1, 1)
	in.Prefiltered = math.NewVec3(1, 1, 1)
	in.BRDF = [2]float32{0.9, 0.05}
	lit := Shade(in)
	assert.Greater(t, lit.X, dark.X)
}

func TestTonemap(t *testing.T) {
	c := Tonemap(math.NewVec3(0, 1, 1e6))
	assert.Equal(t, float32(0), c.X)
	assert.InDelta(t, stdmath.Pow(0.5, 1/2.2), c.Y, 1e-5)
	assert.InDelta(t, 1, c.Z, 1e-3)
}

func TestOcclusionMasksEverything(t *testing.T) {
	in := redSphereApex(whitePointAbove())
	in.Occlusion = 0
	assert.Equal(t, math.Vec3Zero, Shade(in))
}
