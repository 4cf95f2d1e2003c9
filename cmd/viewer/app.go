package main

import (
	"fmt"
	"strings"

	"pbr-viewer/config"
	"pbr-viewer/core"
	"pbr-viewer/internal/opengl"
	"pbr-viewer/math"
	"pbr-viewer/pbr"
	"pbr-viewer/scene"
	"pbr-viewer/watch"
)

const maxTextureSize = 4096

const (
	tagEnvironment = "environment"
	tagModel       = "model"
	tagTexture     = "texture:"
)

var (
	clearColor = pbr.Color8{R: 80, G: 80, B: 80, A: 255}

	lightColors = [pbr.MaxLights]pbr.Color8{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, B: 255, A: 255},
	}
)

// App is the interactive viewer: one environment, one material, one model
// and four lights orbiting it.
type App struct {
	cfg    config.Config
	window *core.Window
	camera *scene.Camera

	env      *opengl.Environment
	material *opengl.MaterialPBR
	model    *opengl.GPUModel
	alloc    *pbr.LightAllocator
	lights   []*pbr.Light
	gizmos   *opengl.Gizmos
	post     *opengl.PostProcessFBO
	watcher  *watch.Watcher

	renderMode pbr.RenderMode
	background pbr.BackgroundMode
	scaleIndex int
	channel    pbr.PropertyKind

	showGrid   bool
	showGizmos bool
	showSkybox bool
	normalMaps bool
	ibl        bool

	hovered    int
	lightAngle float32
	modelAngle float32
	screenshot bool

	input  inputState
	status *StatusOverlay
}

// NewApp opens the window and loads everything cfg names. The returned app
// owns the GL context; Close releases it.
func NewApp(cfg config.Config) (_ *App, err error) {
	a := &App{
		cfg:        cfg,
		alloc:      pbr.NewLightAllocator(),
		scaleIndex: config.RenderScaleIndex(cfg.Render.Scale),
		showGrid:   cfg.Render.Grid,
		showGizmos: cfg.Render.Gizmos,
		showSkybox: cfg.Render.Skybox,
		normalMaps: cfg.Render.NormalMaps,
		ibl:        cfg.Render.IBL,
		hovered:    -1,
		status:     &StatusOverlay{},
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.renderMode, err = pbr.ParseRenderMode(cfg.Render.Mode); err != nil {
		return nil, err
	}
	if a.background, err = pbr.ParseBackgroundMode(cfg.Render.Background); err != nil {
		return nil, err
	}

	wcfg := core.DefaultWindowConfig()
	wcfg.Title = "pbr-viewer"
	wcfg.Width, wcfg.Height = cfg.Window.Width, cfg.Window.Height
	wcfg.MinWidth, wcfg.MinHeight = cfg.Window.MinWidth, cfg.Window.MinHeight
	wcfg.VSync = cfg.Window.VSync
	wcfg.Samples = cfg.Window.Samples
	if a.window, err = core.NewWindow(wcfg); err != nil {
		return nil, err
	}
	if err = opengl.Init(); err != nil {
		return nil, err
	}

	a.camera = scene.NewCamera(vec3(cfg.Camera.Position), vec3(cfg.Camera.Target), cfg.Camera.FOV)
	if cfg.Camera.Orbital {
		a.camera.Mode = scene.CameraOrbital
	}

	fbW, fbH := a.window.GetFramebufferSize()
	a.env, err = opengl.LoadEnvironment(cfg.Environment.HDR, environmentSizes(cfg, fbW, fbH), a.envOptions()...)
	if a.env == nil {
		return nil, err
	}
	if err != nil {
		logger.Warning(err)
	}

	model, err := scene.LoadModel(cfg.Model.Path, maxTextureSize)
	if err != nil {
		return nil, err
	}
	a.model = opengl.NewGPUModel(model)
	a.forgetModelTextures(model.Material)
	a.setupMaterial()

	if err = a.createLights(); err != nil {
		return nil, err
	}

	if a.gizmos, err = opengl.NewGizmos(10, 1); err != nil {
		return nil, err
	}

	rw, rh := a.renderSize(fbW, fbH)
	if a.post, err = opengl.NewPostProcessFBO(rw, rh); err != nil {
		return nil, err
	}
	a.post.FXAA = cfg.Render.FXAA
	a.post.Vignette = cfg.Render.Vignette
	a.post.BloomEnabled = cfg.Render.Bloom

	if cfg.Watch {
		if err = a.startWatching(); err != nil {
			return nil, err
		}
	}

	logger.Noticef("viewing %s in %s", cfg.Model.Path, cfg.Environment.HDR)
	return a, nil
}

func (a *App) envOptions() []opengl.EnvOption {
	opts := []opengl.EnvOption{
		opengl.WithLegacyDirectional(a.cfg.Lights.LegacyDirectional),
		opengl.WithDirtyTracking(a.cfg.Lights.DirtyTracking),
	}
	if a.cfg.Environment.CacheDir != "" {
		opts = append(opts, opengl.WithCache(a.cfg.Environment.CacheDir))
	}
	return opts
}

// setupMaterial builds a fresh material on the current environment from the
// configured constants, the model's own textures and the configured texture
// paths, in that order.
func (a *App) setupMaterial() {
	m := a.cfg.Material
	albedo := pbr.Color8{R: m.Albedo[0], G: m.Albedo[1], B: m.Albedo[2], A: 255}
	a.material = opengl.SetupMaterialPBR(a.env, albedo, m.Metalness, m.Roughness)
	a.material.ParallaxScale = m.ParallaxScale

	if a.model != nil {
		if err := opengl.ApplyModelMaterial(a.material, a.model.Model.Material); err != nil {
			logger.Warning(err)
		}
	}
	for name, path := range m.Textures {
		kind, err := pbr.ParsePropertyKind(name)
		if err != nil {
			logger.Warning(err)
			continue
		}
		if err := opengl.LoadMaterialTexturePBR(a.material, kind, path, maxTextureSize); err != nil {
			logger.Warning(err)
		}
	}
}

// forgetModelTextures drops configured texture paths for every channel the
// model file provides itself.
func (a *App) forgetModelTextures(mm *scene.ModelMaterial) {
	if mm == nil {
		return
	}
	for kind := range mm.Textures {
		delete(a.cfg.Material.Textures, kind.String())
	}
}

func (a *App) createLights() error {
	l := a.cfg.Lights
	target := math.Vec3Zero
	specs := []struct {
		typ pbr.LightType
		pos math.Vec3
	}{
		{pbr.LightPoint, math.Vec3{X: l.Distance, Y: l.Height}},
		{pbr.LightPoint, math.Vec3{Y: l.Height, Z: l.Distance}},
		{pbr.LightPoint, math.Vec3{X: -l.Distance, Y: l.Height}},
		{pbr.LightDirectional, math.Vec3{Y: l.Height * 2, Z: -l.Distance}},
	}
	for i, s := range specs {
		light, err := opengl.CreateLight(a.alloc, a.env, s.typ, s.pos, target, lightColors[i])
		if err != nil {
			return err
		}
		a.lights = append(a.lights, light)
	}
	return nil
}

// ── Frame loop ────────────────────────────────────────────────────────────────

// Run draws frames until the window is closed.
func (a *App) Run() {
	last := a.window.Time()
	for !a.window.ShouldClose() {
		now := a.window.Time()
		dt := float32(now - last)
		last = now

		a.window.PollEvents()
		a.handleDrops()
		a.handleWatchEvents()
		a.handleInput()

		a.camera.Update(dt)
		a.modelAngle += a.cfg.Model.RotateSpeed * dt

		a.render()
		a.updateStatus(dt)
		a.window.SwapBuffers()
	}
}

// modelTransform is the configured placement plus the accumulated spin.
func (a *App) modelTransform() core.Transform {
	m := a.cfg.Model
	t := core.NewTransform()
	if axis := vec3(m.RotationAxis); axis.LengthSqr() > 0 {
		t.RotationAxis = axis
	}
	t.RotationDeg = m.RotationDeg + a.modelAngle
	t.Scale = math.Vec3{X: m.Scale, Y: m.Scale, Z: m.Scale}
	return t
}

func (a *App) renderSize(fbW, fbH int) (int, int) {
	s := config.RenderScales[a.scaleIndex]
	w, h := int(float32(fbW)*s), int(float32(fbH)*s)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func (a *App) render() {
	fbW, fbH := a.window.GetFramebufferSize()
	if fbW == 0 || fbH == 0 {
		return
	}
	rw, rh := a.renderSize(fbW, fbH)
	if err := a.post.Resize(rw, rh); err != nil {
		logger.Error(err)
		return
	}

	opengl.UpdateEnvironmentValues(a.env, a.camera, rw, rh)
	a.env.SetShading(opengl.ShadingOptions{
		RenderMode:    a.renderMode,
		NormalMapping: a.normalMaps,
		IBL:           a.ibl,
	})
	for _, light := range a.lights {
		opengl.UpdateLightValues(a.env, light)
	}

	a.post.Begin(clearColor.Normalize())
	a.gizmos.SetCamera(a.env.View(), a.env.Projection())
	if a.showGrid {
		a.gizmos.DrawGrid()
	}

	t := a.modelTransform()
	opengl.DrawModel(a.model, a.material, t.Position, t.RotationAxis, t.RotationDeg, t.Scale)

	if a.showGizmos {
		for i, light := range a.lights {
			a.gizmos.DrawLight(light, a.cfg.Lights.Radius, i == a.hovered)
		}
	}
	if a.showSkybox {
		opengl.DrawSkybox(a.env, a.background, a.camera)
	}

	a.post.Blit(fbW, fbH)

	if a.screenshot {
		a.screenshot = false
		if _, err := opengl.TakeScreenshot(a.cfg.Render.Screenshots, fbW, fbH); err != nil {
			logger.Error(err)
		}
	}
}

// ── Asset replacement ─────────────────────────────────────────────────────────

func (a *App) handleDrops() {
	for _, path := range a.window.DroppedFiles() {
		if err := a.openAsset(path); err != nil {
			logger.Error(err)
		}
	}
}

func (a *App) openAsset(path string) error {
	switch kind := scene.ClassifyAsset(path); kind {
	case scene.AssetEnvironment:
		return a.reloadEnvironment(path)
	case scene.AssetModel:
		return a.reloadModel(path)
	case scene.AssetImage:
		return a.applyImage(a.channel, path)
	default:
		return fmt.Errorf("%s: unsupported file type", path)
	}
}

// reloadEnvironment swaps in the environment of path. The material is
// rebuilt on the new programs and every light is uploaded again into its
// slot. The old environment stays when the new one cannot be built.
func (a *App) reloadEnvironment(path string) error {
	fbW, fbH := a.window.GetFramebufferSize()
	env, err := opengl.LoadEnvironment(path, environmentSizes(a.cfg, fbW, fbH), a.envOptions()...)
	if env == nil {
		return err
	}
	if err != nil {
		logger.Warning(err)
	}

	opengl.UnloadMaterialPBR(a.material)
	opengl.UnloadEnvironment(a.env)
	a.retarget(a.cfg.Environment.HDR, path, tagEnvironment)
	a.env = env
	a.cfg.Environment.HDR = path

	a.setupMaterial()
	for _, light := range a.lights {
		opengl.UpdateLightValues(a.env, light)
	}
	return nil
}

func (a *App) reloadModel(path string) error {
	model, err := scene.LoadModel(path, maxTextureSize)
	if err != nil {
		return err
	}
	a.model.Unload()
	a.model = opengl.NewGPUModel(model)
	a.retarget(a.cfg.Model.Path, path, tagModel)
	a.cfg.Model.Path = path

	if mm := model.Material; mm != nil {
		a.forgetModelTextures(mm)
		if err := opengl.ApplyModelMaterial(a.material, mm); err != nil {
			return err
		}
	}
	logger.Noticef("loaded model %s (%d meshes, %d vertices)", path, len(model.Meshes), model.VertexCount())
	return nil
}

func (a *App) applyImage(kind pbr.PropertyKind, path string) error {
	if err := opengl.LoadMaterialTexturePBR(a.material, kind, path, maxTextureSize); err != nil {
		return err
	}
	if a.cfg.Material.Textures == nil {
		a.cfg.Material.Textures = make(map[string]string)
	}
	a.retarget(a.cfg.Material.Textures[kind.String()], path, tagTexture+kind.String())
	a.cfg.Material.Textures[kind.String()] = path
	logger.Noticef("%s texture set to %s", kind, path)
	return nil
}

// ── Hot reload ────────────────────────────────────────────────────────────────

func (a *App) startWatching() error {
	w, err := watch.New(watch.DefaultDebounce)
	if err != nil {
		return err
	}
	a.watcher = w

	add := func(path, tag string) {
		if err := w.Add(path, tag); err != nil {
			logger.Warningf("not watching %s: %v", path, err)
		}
	}
	add(a.cfg.Environment.HDR, tagEnvironment)
	add(a.cfg.Model.Path, tagModel)
	for name, path := range a.cfg.Material.Textures {
		add(path, tagTexture+name)
	}
	logger.Infof("watching %d files", len(w.Watched()))
	return nil
}

// retarget moves a watch from oldPath to newPath.
func (a *App) retarget(oldPath, newPath, tag string) {
	if a.watcher == nil || oldPath == newPath {
		return
	}
	if oldPath != "" {
		_ = a.watcher.Remove(oldPath)
	}
	if err := a.watcher.Add(newPath, tag); err != nil {
		logger.Warningf("not watching %s: %v", newPath, err)
	}
}

// handleWatchEvents applies every change reported since the last frame
// without blocking.
func (a *App) handleWatchEvents() {
	if a.watcher == nil {
		return
	}
	for {
		select {
		case ev, ok := <-a.watcher.Events():
			if !ok {
				a.watcher = nil
				return
			}
			logger.Infof("%s changed", ev.Path)
			if err := a.reload(ev); err != nil {
				logger.Error(err)
			}
		case err := <-a.watcher.Errors():
			logger.Warningf("watch: %v", err)
		default:
			return
		}
	}
}

func (a *App) reload(ev watch.Event) error {
	switch {
	case ev.Tag == tagEnvironment:
		return a.reloadEnvironment(ev.Path)
	case ev.Tag == tagModel:
		return a.reloadModel(ev.Path)
	case strings.HasPrefix(ev.Tag, tagTexture):
		kind, err := pbr.ParsePropertyKind(strings.TrimPrefix(ev.Tag, tagTexture))
		if err != nil {
			return err
		}
		return a.applyImage(kind, ev.Path)
	}
	return fmt.Errorf("watch: unknown tag %q", ev.Tag)
}

// ── Teardown ──────────────────────────────────────────────────────────────────

// Close releases every GPU resource and the window. It is safe on a
// partially initialized app.
func (a *App) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
		a.watcher = nil
	}
	if a.window == nil {
		return
	}
	if a.post != nil {
		a.post.Destroy()
	}
	if a.gizmos != nil {
		a.gizmos.Destroy()
	}
	a.model.Unload()
	opengl.UnloadMaterialPBR(a.material)
	opengl.UnloadEnvironment(a.env)
	opengl.ReleasePrimitives()
	a.window.Destroy()
	a.window = nil
}

func vec3(v [3]float32) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
