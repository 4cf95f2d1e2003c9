package scene

import (
	"pbr-viewer/core"
	"pbr-viewer/math"
)

// DrawMode controls the OpenGL primitive type used when rendering a mesh.
type DrawMode int

const (
	DrawTriangles DrawMode = iota // gl.TRIANGLES (default)
	DrawLines                     // gl.LINES, pairs of indices form segments
	DrawLineLoop                  // gl.LINE_LOOP
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	DrawMode DrawMode

	Bounds AABB

	// GPUData is set by the renderer backend (an *opengl.GPUMesh).
	GPUData interface{}
}

// CreateMeshFromData builds a Mesh and pre-computes its bounds.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	if len(vertices) > 0 {
		m.Bounds = computeBounds(vertices)
	}
	return m
}

func computeBounds(vertices []core.Vertex) AABB {
	min := vertices[0].Position
	max := vertices[0].Position
	for _, v := range vertices[1:] {
		p := v.Position
		min = math.Vec3{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = math.Vec3{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	return AABB{Min: min, Max: max}
}

// Model is a set of meshes loaded from one file together with whatever
// material inputs the file referenced.
type Model struct {
	Name     string
	Meshes   []*Mesh
	Material *ModelMaterial
}

// Bounds is the union of every mesh's bounds.
func (m *Model) Bounds() AABB {
	if len(m.Meshes) == 0 {
		return AABB{}
	}
	b := m.Meshes[0].Bounds
	for _, mesh := range m.Meshes[1:] {
		b.Min = math.Vec3{X: math.Min(b.Min.X, mesh.Bounds.Min.X), Y: math.Min(b.Min.Y, mesh.Bounds.Min.Y), Z: math.Min(b.Min.Z, mesh.Bounds.Min.Z)}
		b.Max = math.Vec3{X: math.Max(b.Max.X, mesh.Bounds.Max.X), Y: math.Max(b.Max.Y, mesh.Bounds.Max.Y), Z: math.Max(b.Max.Z, mesh.Bounds.Max.Z)}
	}
	return b
}

// VertexCount sums vertices over all meshes.
func (m *Model) VertexCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += len(mesh.Vertices)
	}
	return n
}
