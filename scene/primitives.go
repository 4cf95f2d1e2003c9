package scene

import (
	stdmath "math"

	"pbr-viewer/core"
	"pbr-viewer/math"
)

// CreateSphere generates a UV-sphere mesh with tangents.
func CreateSphere(radius float32, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	var vertices []core.Vertex
	var indices []uint32

	for ring := 0; ring <= rings; ring++ {
		phi := float64(ring) * stdmath.Pi / float64(rings)
		sinPhi := float32(stdmath.Sin(phi))
		cosPhi := float32(stdmath.Cos(phi))

		for seg := 0; seg <= segments; seg++ {
			theta := float64(seg) * 2.0 * stdmath.Pi / float64(segments)
			sinTheta := float32(stdmath.Sin(theta))
			cosTheta := float32(stdmath.Cos(theta))

			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       math.Vec2{X: float32(seg) / float32(segments), Y: float32(ring) / float32(rings)},
				Color:    core.ColorWhite,
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)

			indices = append(indices, current, next, current+1)
			indices = append(indices, current+1, next, next+1)
		}
	}

	m := CreateMeshFromData("Sphere", vertices, indices)
	ComputeTangents(m)
	return m
}

// CreateLine is a single segment from a to b.
func CreateLine(a, b math.Vec3) *Mesh {
	m := CreateMeshFromData("Line", []core.Vertex{
		{Position: a, Normal: math.Vec3Up, Color: core.ColorWhite},
		{Position: b, Normal: math.Vec3Up, Color: core.ColorWhite},
	}, []uint32{0, 1})
	m.DrawMode = DrawLines
	return m
}

// CreateCircle is a unit circle in the XZ plane drawn as a line loop.
func CreateCircle(segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	vertices := make([]core.Vertex, segments)
	indices := make([]uint32, segments)
	for i := range vertices {
		a := float64(i) * 2 * stdmath.Pi / float64(segments)
		vertices[i] = core.Vertex{
			Position: math.Vec3{X: float32(stdmath.Cos(a)), Z: float32(stdmath.Sin(a))},
			Normal:   math.Vec3Up,
			Color:    core.ColorWhite,
		}
		indices[i] = uint32(i)
	}
	m := CreateMeshFromData("Circle", vertices, indices)
	m.DrawMode = DrawLineLoop
	return m
}
