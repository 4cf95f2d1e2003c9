package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbr-viewer/core"
	"pbr-viewer/math"
)

func TestComputeTangentsAlignsWithUV(t *testing.T) {
	n := math.Vec3{Z: 1}
	m := CreateMeshFromData("tri", []core.Vertex{
		{Position: math.Vec3{}, Normal: n, UV: math.Vec2{}},
		{Position: math.Vec3{X: 1}, Normal: n, UV: math.Vec2{X: 1}},
		{Position: math.Vec3{Y: 1}, Normal: n, UV: math.Vec2{Y: 1}},
	}, []uint32{0, 1, 2})

	ComputeTangents(m)
	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Tangent.X, eps)
		assert.InDelta(t, 1, v.Bitangent.Y, eps)
		assert.InDelta(t, 0, v.Tangent.Dot(v.Normal), eps)
	}
}

func TestComputeTangentsMirroredUV(t *testing.T) {
	n := math.Vec3{Z: 1}
	m := CreateMeshFromData("tri", []core.Vertex{
		{Position: math.Vec3{}, Normal: n, UV: math.Vec2{Y: 1}},
		{Position: math.Vec3{X: 1}, Normal: n, UV: math.Vec2{X: 1, Y: 1}},
		{Position: math.Vec3{Y: 1}, Normal: n, UV: math.Vec2{}},
	}, []uint32{0, 1, 2})

	ComputeTangents(m)
	// V runs down the triangle, so the bitangent flips
	assert.InDelta(t, -1, m.Vertices[0].Bitangent.Y, eps)
}

func TestComputeTangentsDegenerateUV(t *testing.T) {
	m := CreateMeshFromData("flat", []core.Vertex{
		{Position: math.Vec3{}, Normal: math.Vec3Up},
		{Position: math.Vec3{X: 1}, Normal: math.Vec3Up},
		{Position: math.Vec3{Z: 1}, Normal: math.Vec3Up},
	}, []uint32{0, 1, 2})

	ComputeTangents(m)
	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Tangent.Length(), eps)
		assert.InDelta(t, 0, v.Tangent.Dot(v.Normal), eps)
	}
}

func TestSphereBounds(t *testing.T) {
	s := CreateSphere(2, 16, 8)
	assert.Equal(t, DrawTriangles, s.DrawMode)
	assert.InDelta(t, 4, s.Bounds.Size().Y, eps)
	assert.InDelta(t, 0, s.Bounds.Center().Length(), 1e-3)
	assert.Len(t, s.Indices, 16*8*6)
}

func TestGridAndGizmoShapes(t *testing.T) {
	g := CreateGrid(10, 1)
	assert.Equal(t, DrawLines, g.DrawMode)
	assert.Len(t, g.Indices, 11*2*2)
	assert.InDelta(t, 10, g.Bounds.Size().X, eps)

	c := CreateCircle(24)
	assert.Equal(t, DrawLineLoop, c.DrawMode)
	assert.Len(t, c.Vertices, 24)
	for _, v := range c.Vertices {
		assert.InDelta(t, 1, v.Position.Length(), eps)
	}

	l := CreateLine(math.Vec3Zero, math.Vec3Up)
	require.Len(t, l.Vertices, 2)
	assert.Equal(t, DrawLines, l.DrawMode)
}

func TestModelBounds(t *testing.T) {
	a := CreateMeshFromData("a", []core.Vertex{{Position: math.Vec3{X: -1}}, {Position: math.Vec3{Y: 2}}}, nil)
	b := CreateMeshFromData("b", []core.Vertex{{Position: math.Vec3{Z: 3}}}, nil)
	m := &Model{Meshes: []*Mesh{a, b}}

	box := m.Bounds()
	assert.Equal(t, math.Vec3{X: -1}, box.Min)
	assert.Equal(t, math.Vec3{Y: 2, Z: 3}, box.Max)
	assert.Equal(t, 3, m.VertexCount())
}
