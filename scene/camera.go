package scene

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"

	"pbr-viewer/math"
)

type CameraMode int

const (
	// CameraFree is driven by the mouse only.
	CameraFree CameraMode = iota
	// CameraOrbital slowly circles the target on its own.
	CameraOrbital
)

func (m CameraMode) String() string {
	if m == CameraOrbital {
		return "orbital"
	}
	return "free"
}

const (
	maxPitch    = 1.5
	minDistance = 0.25
)

// Camera is a look-at camera orbiting Target. FOV is the vertical field of
// view in degrees.
type Camera struct {
	Position math.Vec3
	Target   math.Vec3
	Up       math.Vec3
	FOV      float32
	Near     float32
	Far      float32
	Mode     CameraMode

	// OrbitSpeed is the yaw rate in radians per second in orbital mode.
	OrbitSpeed float32
}

func NewCamera(position, target math.Vec3, fov float32) *Camera {
	return &Camera{
		Position:   position,
		Target:     target,
		Up:         math.Vec3Up,
		FOV:        fov,
		Near:       0.01,
		Far:        1000,
		OrbitSpeed: 0.5,
	}
}

func (c *Camera) View() math.Mat4 {
	return math.Mat4LookAt(c.Position, c.Target, c.Up)
}

func (c *Camera) Projection(aspect float32) math.Mat4 {
	return math.Mat4PerspectiveDeg(c.FOV, aspect, c.Near, c.Far)
}

func (c *Camera) ViewProjection(aspect float32) math.Mat4 {
	return c.View().Mul(c.Projection(aspect))
}

// Forward is the unit vector from the eye towards the target.
func (c *Camera) Forward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// spherical returns the eye offset from the target as distance, yaw around
// +Y and pitch above the XZ plane.
func (c *Camera) spherical() (dist, yaw, pitch float32) {
	off := c.Position.Sub(c.Target)
	// mgl32 works Z-up, so feed it the offset rotated into that frame.
	r, theta, phi := mgl32.CartesianToSpherical(mgl32.Vec3{off.Z, off.X, off.Y})
	if r == 0 {
		return 0, 0, 0
	}
	return r, phi, stdmath.Pi/2 - theta
}

func (c *Camera) setSpherical(dist, yaw, pitch float32) {
	pitch = math.Clamp(pitch, -maxPitch, maxPitch)
	if dist < minDistance {
		dist = minDistance
	}
	v := mgl32.SphericalToCartesian(dist, stdmath.Pi/2-pitch, yaw)
	c.Position = c.Target.Add(math.Vec3{X: v[1], Y: v[2], Z: v[0]})
}

// Orbit rotates the eye around the target, keeping the distance.
func (c *Camera) Orbit(deltaYaw, deltaPitch float32) {
	dist, yaw, pitch := c.spherical()
	c.setSpherical(dist, yaw+deltaYaw, pitch+deltaPitch)
}

// Zoom moves the eye towards the target by delta world units.
func (c *Camera) Zoom(delta float32) {
	dist, yaw, pitch := c.spherical()
	c.setSpherical(dist-delta, yaw, pitch)
}

// Pan slides eye and target together in the view plane.
func (c *Camera) Pan(dx, dy float32) {
	forward := c.Forward()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward)
	offset := right.Mul(dx).Add(up.Mul(dy))
	c.Position = c.Position.Add(offset)
	c.Target = c.Target.Add(offset)
}

// Update advances the automatic motion of orbital mode.
func (c *Camera) Update(dt float32) {
	if c.Mode == CameraOrbital {
		c.Orbit(c.OrbitSpeed*dt, 0)
	}
}
