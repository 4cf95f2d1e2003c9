package pbr

import (
	stdmath "math"

	"pbr-viewer/math"
)

// MinRoughness keeps the GGX distribution finite for perfectly smooth
// surfaces. The fragment program clamps with the same constant.
const MinRoughness = 0.04

// ShadeInput is everything the fragment program reads for one fragment,
// with textures already resolved to values.
type ShadeInput struct {
	Albedo    math.Vec3
	Metalness float32
	Roughness float32
	Occlusion float32
	Emission  math.Vec3

	Normal   math.Vec3
	WorldPos math.Vec3
	ViewPos  math.Vec3

	Lights []Light

	// Environment samples. Ignored when UseIBL is false.
	UseIBL      bool
	Irradiance  math.Vec3
	Prefiltered math.Vec3
	BRDF        [2]float32

	LegacyDirectional bool
	Mode              RenderMode
}

// Shade evaluates the fragment stage on the CPU and returns the color the
// program would write.
func Shade(in ShadeInput) math.Vec3 {
	n := in.Normal.Normalize()
	v := in.ViewPos.Sub(in.WorldPos).Normalize()
	roughness := math.Clamp(in.Roughness, MinRoughness, 1)
	metalness := math.Clamp(in.Metalness, 0, 1)

	f0 := math.Vec3{X: 0.04, Y: 0.04, Z: 0.04}.Lerp(in.Albedo, metalness)

	lo := math.Vec3Zero
	for i, l := range in.Lights {
		if i >= MaxLights {
			break
		}
		if !l.Enabled {
			continue
		}
		lo = lo.Add(directLight(l, in, n, v, f0, roughness, metalness))
	}

	nDotV := math.Max(n.Dot(v), 0)
	f := FresnelSchlickRoughness(nDotV, f0, roughness)
	kD := math.Vec3One.Sub(f).Mul(1 - metalness)

	var ambient math.Vec3
	if in.UseIBL {
		diffuse := in.Irradiance.MulVec(in.Albedo)
		specular := in.Prefiltered.MulVec(f.Mul(in.BRDF[0]).AddScalar(in.BRDF[1]))
		ambient = kD.MulVec(diffuse).Add(specular)
	} else {
		ambient = in.Albedo.Mul(0.03)
	}

	switch in.Mode {
	case RenderAlbedo:
		return in.Albedo
	case RenderNormals:
		return n
	case RenderMetalness:
		return math.Vec3One.Mul(metalness)
	case RenderRoughness:
		return math.Vec3One.Mul(roughness)
	case RenderAmbientOcclusion:
		return math.Vec3One.Mul(in.Occlusion)
	case RenderEmission:
		return in.Emission
	case RenderLighting:
		return lo
	case RenderFresnel:
		return f
	case RenderIrradiance:
		return in.Irradiance
	case RenderReflection:
		return in.Prefiltered
	}

	color := ambient.Add(lo).Mul(in.Occlusion).Add(in.Emission)
	return Tonemap(color)
}

func directLight(l Light, in ShadeInput, n, v, f0 math.Vec3, roughness, metalness float32) math.Vec3 {
	var lDir math.Vec3
	attenuation := float32(1)
	if l.Type == LightPoint || in.LegacyDirectional {
		toLight := l.Position.Sub(in.WorldPos)
		dist := toLight.Length()
		lDir = toLight.Normalize()
		if dist > 0 {
			attenuation = 1 / (dist * dist)
		}
	} else {
		lDir = l.Direction().Negate()
	}
	radiance := l.Color.Vec3().Mul(attenuation)

	nDotL := math.Max(n.Dot(lDir), 0)
	if nDotL == 0 {
		return math.Vec3Zero
	}
	h := v.Add(lDir).Normalize()
	f := FresnelSchlick(math.Max(h.Dot(v), 0), f0)
	specular := SpecularBRDF(n, v, lDir, roughness, f0)
	kD := math.Vec3One.Sub(f).Mul(1 - metalness)

	diffuse := kD.MulVec(in.Albedo).Mul(1 / stdmath.Pi)
	return diffuse.Add(specular).MulVec(radiance).Mul(nDotL)
}

// SpecularBRDF is the Cook-Torrance term D·G·F / (4·NdotV·NdotL).
func SpecularBRDF(n, v, l math.Vec3, roughness float32, f0 math.Vec3) math.Vec3 {
	roughness = math.Clamp(roughness, MinRoughness, 1)
	h := v.Add(l).Normalize()
	d := DistributionGGX(n, h, roughness)
	g := GeometrySmith(n, v, l, roughness)
	f := FresnelSchlick(math.Max(h.Dot(v), 0), f0)
	denom := 4*math.Max(n.Dot(v), 0)*math.Max(n.Dot(l), 0) + 0.001
	return f.Mul(d * g / denom)
}

func DistributionGGX(n, h math.Vec3, roughness float32) float32 {
	a := roughness * roughness
	a2 := a * a
	nDotH := math.Max(n.Dot(h), 0)
	denom := nDotH*nDotH*(a2-1) + 1
	return a2 / (stdmath.Pi * denom * denom)
}

func GeometrySchlickGGX(nDotV, roughness float32) float32 {
	r := roughness + 1
	k := r * r / 8
	return nDotV / (nDotV*(1-k) + k)
}

func GeometrySmith(n, v, l math.Vec3, roughness float32) float32 {
	nDotV := math.Max(n.Dot(v), 0)
	nDotL := math.Max(n.Dot(l), 0)
	return GeometrySchlickGGX(nDotV, roughness) * GeometrySchlickGGX(nDotL, roughness)
}

func FresnelSchlick(cosTheta float32, f0 math.Vec3) math.Vec3 {
	p := float32(stdmath.Pow(float64(1-math.Clamp(cosTheta, 0, 1)), 5))
	return f0.Add(math.Vec3One.Sub(f0).Mul(p))
}

// FresnelSchlickRoughness damps the grazing boost on rough surfaces.
func FresnelSchlickRoughness(cosTheta float32, f0 math.Vec3, roughness float32) math.Vec3 {
	p := float32(stdmath.Pow(float64(1-math.Clamp(cosTheta, 0, 1)), 5))
	g := 1 - roughness
	maxF := math.Vec3{X: math.Max(g, f0.X), Y: math.Max(g, f0.Y), Z: math.Max(g, f0.Z)}
	return f0.Add(maxF.Sub(f0).Mul(p))
}

// Tonemap applies Reinhard followed by gamma 2.2.
func Tonemap(c math.Vec3) math.Vec3 {
	c = c.DivVec(c.AddScalar(1))
	return c.Pow(1 / 2.2)
}
