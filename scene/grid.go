package scene

import (
	"pbr-viewer/core"
	"pbr-viewer/math"
)

// CreateGrid builds a flat grid mesh rendered as GL_LINES with one unit per
// cell. The X axis line is red and the Z axis line is blue.
func CreateGrid(divisions int, spacing float32) *Mesh {
	if divisions < 1 {
		divisions = 1
	}

	half := float32(divisions) * spacing / 2

	gray := core.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
	red := core.Color{R: 0.8, G: 0.15, B: 0.15, A: 1}
	blue := core.Color{R: 0.15, G: 0.35, B: 0.9, A: 1}

	var vertices []core.Vertex
	var indices []uint32

	addLine := func(a, b math.Vec3, c core.Color) {
		base := uint32(len(vertices))
		vertices = append(vertices,
			core.Vertex{Position: a, Normal: math.Vec3Up, Color: c},
			core.Vertex{Position: b, Normal: math.Vec3Up, Color: c},
		)
		indices = append(indices, base, base+1)
	}

	for i := 0; i <= divisions; i++ {
		p := -half + float32(i)*spacing
		cz, cx := gray, gray
		if divisions%2 == 0 && i == divisions/2 {
			cz, cx = blue, red
		}
		addLine(math.Vec3{X: p, Z: -half}, math.Vec3{X: p, Z: half}, cz)
		addLine(math.Vec3{X: -half, Z: p}, math.Vec3{X: half, Z: p}, cx)
	}

	m := CreateMeshFromData("Grid", vertices, indices)
	m.DrawMode = DrawLines
	return m
}
