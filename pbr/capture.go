package pbr

import (
	"errors"
	"fmt"

	"pbr-viewer/math"
)

const (
	// MaxMipLevels is the number of prefiltered specular mips.
	MaxMipLevels = 5
	// MaxReflectionLOD is the highest mip the shader samples.
	MaxReflectionLOD = MaxMipLevels - 1

	CaptureFOV  = 90
	CaptureNear = 0.01
	CaptureFar  = 1000

	// DefaultFOV is restored on every environment shader after capture.
	DefaultFOV  = 60
	DefaultNear = 0.01
	DefaultFar  = 1000
)

var ErrInvalidSize = errors.New("pbr: texture size must be positive")

// CaptureFace is one cube face: the look direction and the up vector used to
// build its view matrix from the origin.
type CaptureFace struct {
	Target math.Vec3
	Up     math.Vec3
}

// CaptureFaces lists the faces in GL order (+X, -X, +Y, -Y, +Z, -Z).
var CaptureFaces = [6]CaptureFace{
	{math.Vec3{X: 1}, math.Vec3{Y: -1}},
	{math.Vec3{X: -1}, math.Vec3{Y: -1}},
	{math.Vec3{Y: 1}, math.Vec3{Z: 1}},
	{math.Vec3{Y: -1}, math.Vec3{Z: -1}},
	{math.Vec3{Z: 1}, math.Vec3{Y: -1}},
	{math.Vec3{Z: -1}, math.Vec3{Y: -1}},
}

// CaptureViews returns the six face view matrices in GL face order.
func CaptureViews() [6]math.Mat4 {
	var views [6]math.Mat4
	for i, f := range CaptureFaces {
		views[i] = math.Mat4LookAt(math.Vec3Zero, f.Target, f.Up)
	}
	return views
}

// CaptureProjection is the 90 degree square projection shared by every face.
func CaptureProjection() math.Mat4 {
	return math.Mat4PerspectiveDeg(CaptureFOV, 1, CaptureNear, CaptureFar)
}

// DefaultProjection is the viewer projection for the given aspect ratio.
func DefaultProjection(aspect float32) math.Mat4 {
	return math.Mat4PerspectiveDeg(DefaultFOV, aspect, DefaultNear, DefaultFar)
}

// PrefilterMipSize halves base per level, never going below 1.
func PrefilterMipSize(base, mip int) int {
	size := base >> uint(mip)
	if size < 1 {
		return 1
	}
	return size
}

// PrefilterRoughness maps a mip level to the GGX roughness it is filtered at.
func PrefilterRoughness(mip, levels int) float32 {
	if levels <= 1 {
		return 0
	}
	return float32(mip) / float32(levels-1)
}

// Sizes are the texel resolutions of the four precomputed maps.
type Sizes struct {
	Cubemap    int
	Irradiance int
	Prefilter  int
	BRDF       int
}

func (s Sizes) Validate() error {
	check := func(name string, v int) error {
		if v <= 0 {
			return fmt.Errorf("%w: %s = %d", ErrInvalidSize, name, v)
		}
		return nil
	}
	return errors.Join(
		check("cubemap", s.Cubemap),
		check("irradiance", s.Irradiance),
		check("prefilter", s.Prefilter),
		check("brdf", s.BRDF),
	)
}
