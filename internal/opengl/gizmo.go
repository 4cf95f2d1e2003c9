package opengl

import (
	"fmt"
	stdmath "math"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-viewer/core"
	"pbr-viewer/math"
	"pbr-viewer/pbr"
	"pbr-viewer/scene"
)

// LightOffset grows the sphere while the cursor hovers it.
const LightOffset = 0.03

var darkGray = pbr.Color8{R: 80, G: 80, B: 80, A: 255}

// Gizmos draws unlit helper geometry: the ground grid and the light markers.
type Gizmos struct {
	program uint32
	mvpLoc  int32
	tintLoc int32

	sphere *scene.Mesh
	circle *scene.Mesh
	line   *scene.Mesh
	grid   *scene.Mesh

	viewProj math.Mat4
}

func NewGizmos(gridDivisions int, gridSpacing float32) (*Gizmos, error) {
	prog, err := newProgram(lineVertSrc, lineFragSrc)
	if err != nil {
		return nil, fmt.Errorf("gizmo shader: %w", err)
	}
	g := &Gizmos{
		program:  prog,
		mvpLoc:   uniform(prog, "mvp\x00"),
		tintLoc:  uniform(prog, "tint\x00"),
		sphere:   scene.CreateSphere(1, 16, 16),
		circle:   scene.CreateCircle(36),
		line:     scene.CreateLine(math.Vec3Zero, math.Vec3One),
		grid:     scene.CreateGrid(gridDivisions, gridSpacing),
		viewProj: math.Mat4Identity(),
	}
	for _, m := range []*scene.Mesh{g.sphere, g.circle, g.line, g.grid} {
		UploadMesh(m)
	}
	return g, nil
}

// SetCamera records the matrices used by the following draws.
func (g *Gizmos) SetCamera(view, proj math.Mat4) {
	g.viewProj = view.Mul(proj)
}

func (g *Gizmos) DrawGrid() {
	g.draw(g.grid, math.Mat4Identity(), core.ColorWhite)
}

// DrawLight draws the light as a sphere of the given radius in its color,
// gray when disabled. Directional lights add a line to their target and a
// ring marker of the same radius there.
func (g *Gizmos) DrawLight(light *pbr.Light, radius float32, hovered bool) {
	color := pbr.Gray
	if light.Enabled {
		color = light.Color
	}
	sphere := radius
	if hovered {
		sphere += LightOffset
	}
	g.draw(g.sphere, math.Mat4Scale(math.Vec3{X: sphere, Y: sphere, Z: sphere}).Mul(math.Mat4Translation(light.Position)), toColor(color))

	if light.Type != pbr.LightDirectional {
		return
	}
	lineColor := darkGray
	if light.Enabled {
		lineColor = light.Color
	}
	g.setLine(light.Position, light.Target)
	g.draw(g.line, math.Mat4Identity(), toColor(lineColor))

	ring := math.Mat4Scale(math.Vec3{X: radius, Y: radius, Z: radius})
	at := math.Mat4Translation(light.Target)
	for _, rot := range []math.Mat4{
		math.Mat4Identity(),
		math.Mat4RotationAxis(math.Vec3Right, stdmath.Pi/2),
		math.Mat4RotationAxis(math.Vec3Front, stdmath.Pi/2),
	} {
		g.draw(g.circle, ring.Mul(rot).Mul(at), toColor(lineColor))
	}
}

func (g *Gizmos) setLine(a, b math.Vec3) {
	g.line.Vertices[0].Position = a
	g.line.Vertices[1].Position = b
	gpu := UploadMesh(g.line)
	stride := int(unsafe.Sizeof(core.Vertex{}))
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, 2*stride, gl.Ptr(g.line.Vertices))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (g *Gizmos) draw(mesh *scene.Mesh, model math.Mat4, tint core.Color) {
	gpu := UploadMesh(mesh)
	if gpu == nil {
		return
	}
	gl.UseProgram(g.program)
	setMat4(g.mvpLoc, model.Mul(g.viewProj))
	gl.Uniform4f(g.tintLoc, tint.R, tint.G, tint.B, tint.A)
	gpu.draw()
	gl.UseProgram(0)
}

func (g *Gizmos) Destroy() {
	for _, m := range []*scene.Mesh{g.sphere, g.circle, g.line, g.grid} {
		ReleaseMesh(m)
	}
	if g.program != 0 {
		gl.DeleteProgram(g.program)
		g.program = 0
	}
}

func toColor(c pbr.Color8) core.Color {
	n := c.Normalize()
	return core.Color{R: n[0], G: n[1], B: n[2], A: n[3]}
}
