package core

import (
	"pbr-viewer/math"
)

// Color is a linear float color.
type Color struct {
	R, G, B, A float32
}

var ColorWhite = Color{1, 1, 1, 1}

// Vertex is the interleaved layout uploaded to the GPU. Attribute locations
// follow field order: 0 position, 1 normal, 2 uv, 3 color, 4 tangent,
// 5 bitangent.
type Vertex struct {
	Position  math.Vec3
	Normal    math.Vec3
	UV        math.Vec2
	Color     Color
	Tangent   math.Vec3
	Bitangent math.Vec3
}

// Transform places a model in the world. Rotation is an axis and an angle in
// degrees, applied between scale and translation.
type Transform struct {
	Position     math.Vec3
	RotationAxis math.Vec3
	RotationDeg  float32
	Scale        math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position:     math.Vec3Zero,
		RotationAxis: math.Vec3Up,
		Scale:        math.Vec3One,
	}
}
