package main

import (
	"fmt"
	"strings"

	"pbr-viewer/config"
)

const statusInterval = 0.5

// StatusOverlay collects status lines and shows them in the window title.
type StatusOverlay struct {
	lines   []string
	elapsed float32
	frames  int
}

func (so *StatusOverlay) AddLine(format string, args ...interface{}) {
	so.lines = append(so.lines, fmt.Sprintf(format, args...))
}

func (so *StatusOverlay) Clear() {
	so.lines = so.lines[:0]
}

func (so *StatusOverlay) Text() string {
	return strings.Join(so.lines, " | ")
}

// updateStatus refreshes the title twice a second.
func (a *App) updateStatus(dt float32) {
	so := a.status
	so.elapsed += dt
	so.frames++
	if so.elapsed < statusInterval {
		return
	}

	so.Clear()
	so.AddLine("pbr-viewer")
	so.AddLine("%.0f fps", float32(so.frames)/so.elapsed)
	so.AddLine("mode %s", a.renderMode)
	so.AddLine("background %s", a.background)
	so.AddLine("camera %s", a.camera.Mode)
	so.AddLine("scale %gx", config.RenderScales[a.scaleIndex])
	so.AddLine("channel %s", a.channel)
	if a.env.FromCache {
		so.AddLine("cached lighting")
	}
	a.window.SetTitle(so.Text())

	so.elapsed = 0
	so.frames = 0
}
