package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pbr-viewer/math"
)

const eps = 1e-4

func newTestCamera() *Camera {
	return NewCamera(math.Vec3{X: 3.5, Y: 3, Z: 3.5}, math.Vec3{Y: 0.5}, 60)
}

func TestCameraOrbitKeepsDistance(t *testing.T) {
	c := newTestCamera()
	before := c.Position.Distance(c.Target)

	c.Orbit(0.7, 0.2)
	assert.InDelta(t, before, c.Position.Distance(c.Target), eps)
	assert.NotEqual(t, math.Vec3{X: 3.5, Y: 3, Z: 3.5}, c.Position)

	c.Orbit(-0.7, -0.2)
	assert.InDelta(t, 3.5, c.Position.X, 1e-3)
	assert.InDelta(t, 3, c.Position.Y, 1e-3)
	assert.InDelta(t, 3.5, c.Position.Z, 1e-3)
}

func TestCameraPitchClamped(t *testing.T) {
	c := newTestCamera()
	c.Orbit(0, 10)
	_, _, pitch := c.spherical()
	assert.InDelta(t, maxPitch, pitch, 1e-3)
}

func TestCameraZoom(t *testing.T) {
	c := newTestCamera()
	d := c.Position.Distance(c.Target)
	c.Zoom(1)
	assert.InDelta(t, d-1, c.Position.Distance(c.Target), 1e-3)

	c.Zoom(100)
	assert.InDelta(t, minDistance, c.Position.Distance(c.Target), 1e-3)
}

func TestCameraPanMovesTarget(t *testing.T) {
	c := newTestCamera()
	offset := c.Position.Sub(c.Target)
	c.Pan(1, 0.5)
	assert.NotEqual(t, math.Vec3{Y: 0.5}, c.Target)
	got := c.Position.Sub(c.Target)
	assert.InDelta(t, offset.X, got.X, eps)
	assert.InDelta(t, offset.Y, got.Y, eps)
	assert.InDelta(t, offset.Z, got.Z, eps)
}

func TestCameraUpdateOnlyInOrbitalMode(t *testing.T) {
	c := newTestCamera()
	start := c.Position
	c.Update(1)
	assert.Equal(t, start, c.Position)

	c.Mode = CameraOrbital
	c.Update(1)
	assert.NotEqual(t, start, c.Position)
	assert.Equal(t, "orbital", c.Mode.String())
}

func TestCameraViewProjectionCentersTarget(t *testing.T) {
	c := newTestCamera()
	clip := c.Target.ToVec4(1).MulMat(c.ViewProjection(16.0 / 9.0))
	ndc := clip.ToVec3DivW()
	assert.InDelta(t, 0, ndc.X, eps)
	assert.InDelta(t, 0, ndc.Y, eps)
}
