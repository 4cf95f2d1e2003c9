package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	keyPressed map[int]bool
	dropped    []string
	scrollY    float64
}

type WindowConfig struct {
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
	Title     string
	Resizable bool
	VSync     bool
	Samples   int
	// Hidden creates the context without showing a window.
	Hidden bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     1440,
		Height:    810,
		MinWidth:  960,
		MinHeight: 540,
		Title:     "rPBR",
		Resizable: true,
		VSync:     true,
		Samples:   4,
	}
}

// NewWindow opens a window with a current OpenGL 4.1 core context.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))
	if config.Hidden {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}
	if config.Samples > 0 {
		glfw.WindowHint(glfw.Samples, config.Samples)
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	if config.MinWidth > 0 && config.MinHeight > 0 {
		handle.SetSizeLimits(config.MinWidth, config.MinHeight, glfw.DontCare, glfw.DontCare)
	}

	window := &Window{
		Handle:     handle,
		Width:      config.Width,
		Height:     config.Height,
		Title:      config.Title,
		keyPressed: make(map[int]bool),
	}

	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
	})
	handle.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Press {
			window.keyPressed[int(key)] = true
		}
	})
	handle.SetDropCallback(func(w *glfw.Window, names []string) {
		window.dropped = append(window.dropped, names...)
	})
	handle.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		window.scrollY += yoff
	})

	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

// PollEvents clears the per-frame input edges and pumps the event queue.
func (w *Window) PollEvents() {
	for k := range w.keyPressed {
		delete(w.keyPressed, k)
	}
	w.scrollY = 0
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

// IsKeyPressed reports a key that went down since the last PollEvents.
func (w *Window) IsKeyPressed(key int) bool {
	return w.keyPressed[key]
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) IsMouseButtonDown(button int) bool {
	return w.Handle.GetMouseButton(glfw.MouseButton(button)) == glfw.Press
}

func (w *Window) GetCursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

// ScrollDelta is the vertical wheel movement since the last PollEvents.
func (w *Window) ScrollDelta() float64 {
	return w.scrollY
}

// DroppedFiles drains the list of paths dropped onto the window.
func (w *Window) DroppedFiles() []string {
	files := w.dropped
	w.dropped = nil
	return files
}

func (w *Window) Time() float64 {
	return glfw.GetTime()
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

const (
	MouseButtonLeft   = int(glfw.MouseButtonLeft)
	MouseButtonRight  = int(glfw.MouseButtonRight)
	MouseButtonMiddle = int(glfw.MouseButtonMiddle)
)

const (
	Key1      = int(glfw.Key1)
	Key2      = int(glfw.Key2)
	Key3      = int(glfw.Key3)
	Key4      = int(glfw.Key4)
	Key5      = int(glfw.Key5)
	Key6      = int(glfw.Key6)
	Key7      = int(glfw.Key7)
	KeyB      = int(glfw.KeyB)
	KeyC      = int(glfw.KeyC)
	KeyG      = int(glfw.KeyG)
	KeyH      = int(glfw.KeyH)
	KeyK      = int(glfw.KeyK)
	KeyL      = int(glfw.KeyL)
	KeyN      = int(glfw.KeyN)
	KeyR      = int(glfw.KeyR)
	KeyV      = int(glfw.KeyV)
	KeyX      = int(glfw.KeyX)
	KeyY      = int(glfw.KeyY)
	KeyEscape = int(glfw.KeyEscape)
	KeyF1     = int(glfw.KeyF1)
	KeyF2     = int(glfw.KeyF2)
	KeyF3     = int(glfw.KeyF3)
	KeyF4     = int(glfw.KeyF4)
	KeyF5     = int(glfw.KeyF5)
	KeyF6     = int(glfw.KeyF6)
	KeyF7     = int(glfw.KeyF7)
	KeyF8     = int(glfw.KeyF8)
	KeyF9     = int(glfw.KeyF9)
	KeyF10    = int(glfw.KeyF10)
	KeyF11    = int(glfw.KeyF11)
	KeyF12    = int(glfw.KeyF12)
)
