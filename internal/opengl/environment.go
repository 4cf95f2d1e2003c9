package opengl

import (
	"errors"
	"fmt"
	"math/bits"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-viewer/ibl"
	"pbr-viewer/math"
	"pbr-viewer/pbr"
	"pbr-viewer/scene"
)

// ErrEnvironmentDegraded is returned together with a usable environment when
// the HDR source could not be decoded and a black one was used instead.
var ErrEnvironmentDegraded = errors.New("opengl: environment degraded")

var ErrInvalidSize = pbr.ErrInvalidSize

// EnvironmentSizes are the capture resolutions plus the host framebuffer
// size restored once the passes are done.
type EnvironmentSizes struct {
	pbr.Sizes
	ViewportWidth  int
	ViewportHeight int
}

// ShadingOptions are the per-frame feature flags of the PBR program.
type ShadingOptions struct {
	RenderMode    pbr.RenderMode
	NormalMapping bool
	IBL           bool
}

type lightLocations struct {
	enabled, typ, position, target, color int32
}

// Environment owns the image based lighting maps and every program that
// renders with them.
type Environment struct {
	Path  string
	Sizes pbr.Sizes

	PBRShader        uint32
	SkyShader        uint32
	cubeShader       uint32
	irradianceShader uint32
	prefilterShader  uint32
	brdfShader       uint32

	CubemapID    uint32
	IrradianceID uint32
	PrefilterID  uint32
	BRDFID       uint32

	// FromCache is set when the maps were uploaded from the bake cache.
	FromCache         bool
	LegacyDirectional bool
	DirtyTracking     bool

	// PBR program
	mvpLoc           int32
	modelLoc         int32
	viewPosLoc       int32
	renderModeLoc    int32
	normalMappingLoc int32
	useIBLLoc        int32
	legacyDirLoc     int32
	parallaxLoc      int32
	colorLocs        [pbr.NumProperties]int32
	flagLocs         [pbr.NumProperties]int32
	lightLocs        [pbr.MaxLights]lightLocations
	lastLight        [pbr.MaxLights]*pbr.LightUniforms

	// Sky program
	skyViewLoc       int32
	skyProjectionLoc int32
	skyResolutionLoc int32
	skyModeLoc       int32
	skyBlurLoc       int32

	view       math.Mat4
	projection math.Mat4
	viewPos    math.Vec3
}

type envOptions struct {
	cacheDir          string
	legacyDirectional bool
	dirtyTracking     bool
}

type EnvOption func(*envOptions)

// WithCache stores and reuses baked maps under dir.
func WithCache(dir string) EnvOption {
	return func(o *envOptions) { o.cacheDir = dir }
}

// WithLegacyDirectional attenuates directional lights by distance like point
// lights.
func WithLegacyDirectional(enabled bool) EnvOption {
	return func(o *envOptions) { o.legacyDirectional = enabled }
}

// WithDirtyTracking skips light uploads whose values did not change.
func WithDirtyTracking(enabled bool) EnvOption {
	return func(o *envOptions) { o.dirtyTracking = enabled }
}

// LoadEnvironment compiles the programs and renders the cubemap, irradiance,
// prefiltered specular and BRDF maps for the HDR file at path. A file that
// fails to decode yields a black environment and an error wrapping
// ErrEnvironmentDegraded; every other error returns a nil environment.
func LoadEnvironment(path string, sizes EnvironmentSizes, opts ...EnvOption) (*Environment, error) {
	if err := sizes.Validate(); err != nil {
		return nil, err
	}
	var o envOptions
	for _, opt := range opts {
		opt(&o)
	}

	env := &Environment{
		Path:              path,
		Sizes:             sizes.Sizes,
		LegacyDirectional: o.legacyDirectional,
		DirtyTracking:     o.dirtyTracking,
		view:              math.Mat4Identity(),
		projection:        pbr.DefaultProjection(aspect(sizes.ViewportWidth, sizes.ViewportHeight)),
	}
	if err := env.compile(); err != nil {
		UnloadEnvironment(env)
		return nil, err
	}
	env.bindSamplers()

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)

	var degraded error
	img, err := scene.LoadHDR(path)
	if err != nil {
		logger.Warningf("environment %s: %v, using a black sky", path, err)
		degraded = fmt.Errorf("%w: %v", ErrEnvironmentDegraded, err)
		img = scene.BlackHDR()
	}

	var cache *ibl.Cache
	var key string
	if o.cacheDir != "" && degraded == nil {
		cache = ibl.NewCache(o.cacheDir)
		if key, err = ibl.Key(path, sizes.Sizes); err != nil {
			logger.Warningf("environment cache disabled: %v", err)
			cache = nil
		}
	}

	if cache != nil {
		bundle, err := cache.Load(key)
		if err == nil {
			err = bundle.Validate(sizes.Sizes, pbr.MaxMipLevels)
		}
		switch {
		case err == nil:
			env.upload(bundle)
			env.FromCache = true
		case errors.Is(err, ibl.ErrCacheMiss):
			logger.Debugf("environment cache miss for %s", path)
		default:
			logger.Warningf("discarding cached environment: %v", err)
			_ = cache.Evict(key)
		}
	}

	if !env.FromCache {
		if err := env.render(img); err != nil {
			UnloadEnvironment(env)
			return nil, err
		}
		if cache != nil {
			bundle, err := env.readBack()
			if err == nil {
				err = cache.Store(key, bundle)
			}
			if err != nil {
				logger.Warningf("could not cache environment: %v", err)
			}
		}
	}

	env.restoreDefaults(sizes.ViewportWidth, sizes.ViewportHeight)
	logger.Infof("loaded environment %s (cubemap %d, irradiance %d, prefilter %d, brdf %d, cached %v)",
		path, env.Sizes.Cubemap, env.Sizes.Irradiance, env.Sizes.Prefilter, env.Sizes.BRDF, env.FromCache)
	return env, degraded
}

func (env *Environment) compile() error {
	programs := []struct {
		name       string
		dst        *uint32
		vert, frag string
	}{
		{"pbr", &env.PBRShader, pbrVertSrc, pbrFragSrc},
		{"skybox", &env.SkyShader, skyVertSrc, skyFragSrc},
		{"cubemap", &env.cubeShader, cubeVertSrc, equirectFragSrc},
		{"irradiance", &env.irradianceShader, cubeVertSrc, irradianceFragSrc},
		{"prefilter", &env.prefilterShader, cubeVertSrc, prefilterFragSrc},
		{"brdf", &env.brdfShader, brdfVertSrc, brdfFragSrc},
	}
	for _, p := range programs {
		prog, err := newProgram(p.vert, p.frag)
		if err != nil {
			return fmt.Errorf("%s shader: %w", p.name, err)
		}
		*p.dst = prog
	}

	prog := env.PBRShader
	env.mvpLoc = uniform(prog, "mvp\x00")
	env.modelLoc = uniform(prog, "mMatrix\x00")
	env.viewPosLoc = uniform(prog, "viewPos\x00")
	env.renderModeLoc = uniform(prog, "renderMode\x00")
	env.normalMappingLoc = uniform(prog, "useNormalMapping\x00")
	env.useIBLLoc = uniform(prog, "useIBL\x00")
	env.legacyDirLoc = uniform(prog, "legacyDirectional\x00")
	env.parallaxLoc = uniform(prog, "parallaxScale\x00")
	for _, kind := range pbr.AllProperties() {
		env.colorLocs[kind] = uniformName(prog, kind.ColorUniform())
		env.flagLocs[kind] = uniformName(prog, kind.FlagUniform())
	}
	for i := range env.lightLocs {
		names := pbr.SlotNames(i)
		env.lightLocs[i] = lightLocations{
			enabled:  uniform(prog, names.Enabled),
			typ:      uniform(prog, names.Type),
			position: uniform(prog, names.Position),
			target:   uniform(prog, names.Target),
			color:    uniform(prog, names.Color),
		}
	}

	sky := env.SkyShader
	env.skyViewLoc = uniform(sky, "view\x00")
	env.skyProjectionLoc = uniform(sky, "projection\x00")
	env.skyResolutionLoc = uniform(sky, "resolution\x00")
	env.skyModeLoc = uniform(sky, "skyMode\x00")
	env.skyBlurLoc = uniform(sky, "blurLod\x00")
	return nil
}

func (env *Environment) bindSamplers() {
	gl.UseProgram(env.PBRShader)
	gl.Uniform1i(uniform(env.PBRShader, "irradianceMap\x00"), pbr.UnitIrradiance)
	gl.Uniform1i(uniform(env.PBRShader, "prefilterMap\x00"), pbr.UnitPrefilter)
	gl.Uniform1i(uniform(env.PBRShader, "brdfLUT\x00"), pbr.UnitBRDF)
	for _, kind := range pbr.AllProperties() {
		gl.Uniform1i(uniformName(env.PBRShader, kind.SamplerUniform()), int32(kind.Unit()))
	}
	gl.Uniform1i(env.legacyDirLoc, boolToInt32(env.LegacyDirectional))
	gl.Uniform1i(env.normalMappingLoc, 1)
	gl.Uniform1i(env.useIBLLoc, 1)

	gl.UseProgram(env.SkyShader)
	gl.Uniform1i(uniform(env.SkyShader, "environmentMap\x00"), 0)

	gl.UseProgram(env.cubeShader)
	gl.Uniform1i(uniform(env.cubeShader, "equirectangularMap\x00"), 0)

	gl.UseProgram(env.irradianceShader)
	gl.Uniform1i(uniform(env.irradianceShader, "environmentMap\x00"), 0)

	gl.UseProgram(env.prefilterShader)
	gl.Uniform1i(uniform(env.prefilterShader, "environmentMap\x00"), 0)
	gl.UseProgram(0)
}

// ── Capture passes ────────────────────────────────────────────────────────────

func (env *Environment) render(img *scene.HDRImage) error {
	hdr := uploadHDR(img)
	defer gl.DeleteTextures(1, &hdr)

	ct := newCaptureTarget(env.Sizes.Cubemap)
	defer ct.Destroy()

	views := pbr.CaptureViews()
	proj := pbr.CaptureProjection()

	// 1. equirectangular panorama to cubemap, then a mip chain for BlurSky
	env.CubemapID = newCubemap(env.Sizes.Cubemap, 1, true)
	gl.UseProgram(env.cubeShader)
	setMat4(uniform(env.cubeShader, "projection\x00"), proj)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, hdr)
	if err := renderFaces(ct, env.cubeShader, env.CubemapID, 0, views); err != nil {
		return fmt.Errorf("cubemap pass: %w", err)
	}
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, env.CubemapID)
	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)

	// 2. diffuse irradiance
	ct.resize(env.Sizes.Irradiance)
	env.IrradianceID = newCubemap(env.Sizes.Irradiance, 1, false)
	gl.UseProgram(env.irradianceShader)
	setMat4(uniform(env.irradianceShader, "projection\x00"), proj)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, env.CubemapID)
	if err := renderFaces(ct, env.irradianceShader, env.IrradianceID, 0, views); err != nil {
		return fmt.Errorf("irradiance pass: %w", err)
	}

	// 3. prefiltered specular, one roughness per mip
	env.PrefilterID = newCubemap(env.Sizes.Prefilter, pbr.MaxMipLevels, true)
	gl.UseProgram(env.prefilterShader)
	setMat4(uniform(env.prefilterShader, "projection\x00"), proj)
	gl.Uniform1f(uniform(env.prefilterShader, "sourceSize\x00"), float32(env.Sizes.Cubemap))
	roughnessLoc := uniform(env.prefilterShader, "roughness\x00")
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, env.CubemapID)
	for mip := 0; mip < pbr.MaxMipLevels; mip++ {
		ct.resize(pbr.PrefilterMipSize(env.Sizes.Prefilter, mip))
		gl.Uniform1f(roughnessLoc, pbr.PrefilterRoughness(mip, pbr.MaxMipLevels))
		if err := renderFaces(ct, env.prefilterShader, env.PrefilterID, int32(mip), views); err != nil {
			return fmt.Errorf("prefilter pass mip %d: %w", mip, err)
		}
	}

	// 4. split-sum BRDF lookup table
	env.BRDFID = newBRDFTexture(env.Sizes.BRDF, nil)
	ct.resize(env.Sizes.BRDF)
	if err := ct.attach2D(env.BRDFID); err != nil {
		return fmt.Errorf("brdf pass: %w", err)
	}
	gl.UseProgram(env.brdfShader)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	RenderQuad()

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return nil
}

// renderFaces draws the unit cube once per face into tex at mip.
func renderFaces(ct *captureTarget, prog, tex uint32, mip int32, views [6]math.Mat4) error {
	viewLoc := uniform(prog, "view\x00")
	for face, view := range views {
		setMat4(viewLoc, view)
		if err := ct.attachCubeFace(face, tex, mip); err != nil {
			return err
		}
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		RenderCube()
	}
	return nil
}

// restoreDefaults is the last pass: the default framebuffer and viewport are
// rebound and every environment program gets the viewer projection.
func (env *Environment) restoreDefaults(width, height int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if width > 0 && height > 0 {
		gl.Viewport(0, 0, int32(width), int32(height))
	}
	proj := pbr.DefaultProjection(aspect(width, height))
	for _, prog := range []uint32{env.cubeShader, env.SkyShader, env.irradianceShader, env.prefilterShader} {
		gl.UseProgram(prog)
		setMat4(uniform(prog, "projection\x00"), proj)
	}
	gl.UseProgram(env.SkyShader)
	gl.Uniform2f(env.skyResolutionLoc, float32(width), float32(height))
	gl.UseProgram(0)
	env.projection = proj
}

func (env *Environment) upload(b *ibl.Bundle) {
	env.CubemapID = uploadCubeEnv(b.Cubemap, true)
	env.IrradianceID = uploadCubeEnv(b.Irradiance, false)
	env.PrefilterID = uploadCubeEnv(b.Prefilter, true)
	env.BRDFID = newBRDFTexture(b.BRDF.Size, b.BRDF.Data)
}

func (env *Environment) readBack() (*ibl.Bundle, error) {
	cubemap, err := readCubeEnv(env.CubemapID, env.Sizes.Cubemap, 1)
	if err != nil {
		return nil, err
	}
	irradiance, err := readCubeEnv(env.IrradianceID, env.Sizes.Irradiance, 1)
	if err != nil {
		return nil, err
	}
	prefilter, err := readCubeEnv(env.PrefilterID, env.Sizes.Prefilter, pbr.MaxMipLevels)
	if err != nil {
		return nil, err
	}
	return &ibl.Bundle{
		Cubemap:    cubemap,
		Irradiance: irradiance,
		Prefilter:  prefilter,
		BRDF:       readBRDF(env.BRDFID, env.Sizes.BRDF),
	}, nil
}

// ── Per-frame state ───────────────────────────────────────────────────────────

// UpdateEnvironmentValues uploads the camera position and the sky resolution
// and records the camera matrices used by the draw calls.
func UpdateEnvironmentValues(env *Environment, cam *scene.Camera, width, height int) {
	env.view = cam.View()
	env.projection = cam.Projection(aspect(width, height))
	env.viewPos = cam.Position

	gl.UseProgram(env.PBRShader)
	setVec3(env.viewPosLoc, cam.Position)

	gl.UseProgram(env.SkyShader)
	gl.Uniform2f(env.skyResolutionLoc, float32(width), float32(height))
	gl.UseProgram(0)
}

// SetShading uploads the render mode and feature flags.
func (env *Environment) SetShading(opts ShadingOptions) {
	gl.UseProgram(env.PBRShader)
	gl.Uniform1i(env.renderModeLoc, int32(opts.RenderMode))
	gl.Uniform1i(env.normalMappingLoc, boolToInt32(opts.NormalMapping))
	gl.Uniform1i(env.useIBLLoc, boolToInt32(opts.IBL))
	gl.UseProgram(0)
}

func (env *Environment) View() math.Mat4       { return env.view }
func (env *Environment) Projection() math.Mat4 { return env.projection }

// UnloadEnvironment releases every program and map and zeroes the handles.
func UnloadEnvironment(env *Environment) {
	if env == nil {
		return
	}
	for _, prog := range []*uint32{
		&env.PBRShader, &env.SkyShader, &env.cubeShader,
		&env.irradianceShader, &env.prefilterShader, &env.brdfShader,
	} {
		if *prog != 0 {
			gl.DeleteProgram(*prog)
			*prog = 0
		}
	}
	for _, tex := range []*uint32{&env.CubemapID, &env.IrradianceID, &env.PrefilterID, &env.BRDFID} {
		if *tex != 0 {
			gl.DeleteTextures(1, tex)
			*tex = 0
		}
	}
	env.lastLight = [pbr.MaxLights]*pbr.LightUniforms{}
	logger.Debugf("unloaded environment %s", env.Path)
}

// blurLOD picks the environment mip shown in BlurSky mode, roughly a 16
// texel face whatever the base size.
func blurLOD(size int) float32 {
	lod := bits.Len(uint(size)) - 1 - 4
	if lod < 0 {
		return 0
	}
	return float32(lod)
}

func aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}
