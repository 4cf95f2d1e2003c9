package pbr

import "pbr-viewer/math"

// Color8 is an 8-bit per channel RGBA color, the unit materials and lights
// are authored in.
type Color8 struct {
	R, G, B, A uint8
}

var (
	White = Color8{255, 255, 255, 255}
	Black = Color8{0, 0, 0, 255}
	Gray  = Color8{130, 130, 130, 255}
)

// Normalize maps every channel to [0, 1] by dividing by 255.
func (c Color8) Normalize() [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

// Vec3 returns the normalized RGB channels.
func (c Color8) Vec3() math.Vec3 {
	n := c.Normalize()
	return math.Vec3{X: n[0], Y: n[1], Z: n[2]}
}

// Scale multiplies the RGB channels by f, clamping to 255. Alpha is kept.
func (c Color8) Scale(f float32) Color8 {
	s := func(v uint8) uint8 {
		return uint8(math.Clamp(float32(v)*f+0.5, 0, 255))
	}
	return Color8{s(c.R), s(c.G), s(c.B), c.A}
}

// Denormalize is the inverse of Normalize, rounding to the nearest step.
func Denormalize(v [4]float32) Color8 {
	d := func(f float32) uint8 {
		return uint8(math.Clamp(f*255+0.5, 0, 255))
	}
	return Color8{d(v[0]), d(v[1]), d(v[2]), d(v[3])}
}
