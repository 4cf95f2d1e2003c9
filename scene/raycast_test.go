package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbr-viewer/math"
)

func TestScreenToRayThroughCenter(t *testing.T) {
	c := NewCamera(math.Vec3{Z: 5}, math.Vec3Zero, 60)
	ray := ScreenToRay(400, 300, 800, 600, c.View(), c.Projection(800.0/600.0))

	assert.InDelta(t, 0, ray.Direction.X, eps)
	assert.InDelta(t, 0, ray.Direction.Y, eps)
	assert.InDelta(t, -1, ray.Direction.Z, eps)

	d, ok := RaySphere(ray, math.Vec3Zero, 1)
	require.True(t, ok)
	assert.InDelta(t, 0, ray.At(d).Z-1, 1e-3)
}

func TestScreenToRayCorner(t *testing.T) {
	c := NewCamera(math.Vec3{Z: 5}, math.Vec3Zero, 60)
	ray := ScreenToRay(0, 0, 800, 600, c.View(), c.Projection(800.0/600.0))
	// top-left of the window points up and to the left
	assert.Less(t, ray.Direction.X, float32(0))
	assert.Greater(t, ray.Direction.Y, float32(0))
}

func TestRaySphere(t *testing.T) {
	ray := Ray{Origin: math.Vec3{X: -5}, Direction: math.Vec3{X: 1}}

	d, ok := RaySphere(ray, math.Vec3Zero, 1)
	require.True(t, ok)
	assert.InDelta(t, 4, d, eps)

	_, ok = RaySphere(ray, math.Vec3{Y: 3}, 1)
	assert.False(t, ok)

	// behind the origin
	_, ok = RaySphere(ray, math.Vec3{X: -10}, 1)
	assert.False(t, ok)

	// from inside the sphere the far side is returned
	inside := Ray{Origin: math.Vec3Zero, Direction: math.Vec3{X: 1}}
	d, ok = RaySphere(inside, math.Vec3Zero, 2)
	require.True(t, ok)
	assert.InDelta(t, 2, d, eps)
}

func TestRayAABB(t *testing.T) {
	box := AABB{Min: math.Vec3{X: -1, Y: -1, Z: -1}, Max: math.Vec3{X: 1, Y: 1, Z: 1}}
	ray := Ray{Origin: math.Vec3{X: 0.2, Y: 0.3, Z: 5}, Direction: math.Vec3{Z: -1}}

	d, ok := RayAABB(ray, box)
	require.True(t, ok)
	assert.InDelta(t, 4, d, eps)

	miss := Ray{Origin: math.Vec3{X: 3, Z: 5}, Direction: math.Vec3{Z: -1}}
	_, ok = RayAABB(miss, box)
	assert.False(t, ok)
}
