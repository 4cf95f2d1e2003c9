package main

import (
	"pbr-viewer/config"
	"pbr-viewer/core"
	"pbr-viewer/math"
	"pbr-viewer/pbr"
	"pbr-viewer/scene"
)

const (
	orbitSpeed = 0.005
	zoomSpeed  = 0.25
)

var renderModeKeys = [pbr.NumRenderModes]int{
	core.KeyF1, core.KeyF2, core.KeyF3, core.KeyF4, core.KeyF5, core.KeyF6,
	core.KeyF7, core.KeyF8, core.KeyF9, core.KeyF10, core.KeyF11,
}

var channelKeys = [pbr.NumProperties]int{
	core.Key1, core.Key2, core.Key3, core.Key4, core.Key5, core.Key6, core.Key7,
}

// inputState remembers the cursor and buttons of the previous frame so drags
// and clicks can be told apart.
type inputState struct {
	lastX, lastY float64
	primed       bool
	leftWasDown  bool
}

func (a *App) handleInput() {
	a.handleKeys()
	a.handleMouse()
}

func (a *App) handleKeys() {
	w := a.window
	if w.IsKeyPressed(core.KeyEscape) {
		w.Handle.SetShouldClose(true)
	}

	for i, key := range renderModeKeys {
		if w.IsKeyPressed(key) {
			a.renderMode = pbr.RenderMode(i)
			logger.Infof("render mode %s", a.renderMode)
		}
	}
	for i, key := range channelKeys {
		if w.IsKeyPressed(key) {
			a.channel = pbr.PropertyKind(i)
			logger.Infof("dropped images go to %s", a.channel)
		}
	}

	toggles := []struct {
		key  int
		name string
		flag *bool
	}{
		{core.KeyG, "grid", &a.showGrid},
		{core.KeyL, "light gizmos", &a.showGizmos},
		{core.KeyK, "skybox", &a.showSkybox},
		{core.KeyX, "fxaa", &a.post.FXAA},
		{core.KeyN, "bloom", &a.post.BloomEnabled},
		{core.KeyV, "vignette", &a.post.Vignette},
	}
	for _, t := range toggles {
		if w.IsKeyPressed(t.key) {
			*t.flag = !*t.flag
			logger.Infof("%s %v", t.name, *t.flag)
		}
	}

	if w.IsKeyPressed(core.KeyB) {
		a.background = a.background.Next()
		logger.Infof("background %s", a.background)
	}
	if w.IsKeyPressed(core.KeyC) {
		a.toggleCameraMode()
	}
	if w.IsKeyPressed(core.KeyR) {
		a.resetCamera()
	}
	if w.IsKeyPressed(core.KeyY) && a.scaleIndex < len(config.RenderScales)-1 {
		a.scaleIndex++
		logger.Infof("render scale %gx", config.RenderScales[a.scaleIndex])
	}
	if w.IsKeyPressed(core.KeyH) && a.scaleIndex > 0 {
		a.scaleIndex--
		logger.Infof("render scale %gx", config.RenderScales[a.scaleIndex])
	}
	if w.IsKeyPressed(core.KeyF12) {
		a.screenshot = true
	}
}

// toggleCameraMode switches between the free and orbital cameras, each with
// its own framing, and restarts the model rotation.
func (a *App) toggleCameraMode() {
	c := a.camera
	if c.Mode == scene.CameraFree {
		c.Mode = scene.CameraOrbital
		c.Position = math.Vec3{X: 3.5, Y: 2.5, Z: 3.5}
		c.Target = math.Vec3{Y: 1}
	} else {
		c.Mode = scene.CameraFree
		c.Position = math.Vec3{X: 3.5, Y: 3, Z: 3.5}
		c.Target = math.Vec3{Y: 0.5}
	}
	a.modelAngle = 0
	logger.Infof("camera %s", c.Mode)
}

func (a *App) resetCamera() {
	a.camera.Mode = scene.CameraFree
	a.camera.Position = vec3(a.cfg.Camera.Position)
	a.camera.Target = vec3(a.cfg.Camera.Target)
}

func (a *App) handleMouse() {
	w := a.window
	x, y := w.GetCursorPos()
	if !a.input.primed {
		a.input.lastX, a.input.lastY = x, y
		a.input.primed = true
	}
	dx := float32(x - a.input.lastX)
	dy := float32(y - a.input.lastY)
	a.input.lastX, a.input.lastY = x, y

	if w.IsMouseButtonDown(core.MouseButtonRight) && dx != 0 {
		a.orbitLights(dx * a.cfg.Lights.Speed)
	}
	if w.IsMouseButtonDown(core.MouseButtonMiddle) {
		a.camera.Orbit(-dx*orbitSpeed, dy*orbitSpeed)
	}
	if scroll := w.ScrollDelta(); scroll != 0 {
		a.camera.Zoom(float32(scroll) * zoomSpeed)
	}

	a.hovered = a.pickLight(x, y)

	left := w.IsMouseButtonDown(core.MouseButtonLeft)
	if left && !a.input.leftWasDown && a.hovered >= 0 {
		light := a.lights[a.hovered]
		light.Enabled = !light.Enabled
		logger.Infof("light %d enabled %v", light.Slot, light.Enabled)
	}
	a.input.leftWasDown = left
}

// orbitLights turns the light ring by delta degrees around the origin.
func (a *App) orbitLights(delta float32) {
	a.lightAngle += delta
	for i, light := range a.lights {
		light.Position = pbr.OrbitPosition(light.Position, a.lightAngle, i, a.cfg.Lights.Distance)
	}
}

// pickLight returns the index of the nearest light gizmo under the cursor,
// or -1.
func (a *App) pickLight(x, y float64) int {
	if !a.showGizmos {
		return -1
	}
	winW, winH := a.window.Width, a.window.Height
	if winW == 0 || winH == 0 {
		return -1
	}
	fbW, fbH := a.window.GetFramebufferSize()
	ray := scene.ScreenToRay(float32(x), float32(y), float32(winW), float32(winH),
		a.camera.View(), a.camera.Projection(aspectRatio(fbW, fbH)))

	hit, best := -1, float32(0)
	for i, light := range a.lights {
		if t, ok := scene.RaySphere(ray, light.Position, a.cfg.Lights.Radius); ok && (hit < 0 || t < best) {
			hit, best = i, t
		}
	}
	return hit
}

func aspectRatio(w, h int) float32 {
	if w <= 0 || h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}
