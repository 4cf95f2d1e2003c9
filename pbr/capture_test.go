package pbr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pbr-viewer/math"
)

func TestPrefilterMipSizes(t *testing.T) {
	sizes := make([]int, MaxMipLevels)
	for mip := range sizes {
		sizes[mip] = PrefilterMipSize(256, mip)
	}
	assert.Equal(t, []int{256, 128, 64, 32, 16}, sizes)

	// small bases floor at one texel
	assert.Equal(t, 1, PrefilterMipSize(4, 3))
	assert.Equal(t, 1, PrefilterMipSize(1, 4))
	assert.Equal(t, 2, PrefilterMipSize(5, 1))
}

func TestPrefilterRoughness(t *testing.T) {
	assert.Equal(t, float32(0), PrefilterRoughness(0, MaxMipLevels))
	assert.Equal(t, float32(0.25), PrefilterRoughness(1, MaxMipLevels))
	assert.Equal(t, float32(1), PrefilterRoughness(MaxMipLevels-1, MaxMipLevels))
	assert.Equal(t, float32(0), PrefilterRoughness(0, 1))
}

func TestCaptureViewsLookDownEachAxis(t *testing.T) {
	views := CaptureViews()
	for i, face := range CaptureFaces {
		// the face target lands on the -Z axis of view space
		p := views[i].MulVec3(face.Target)
		assert.InDelta(t, 0, p.X, 1e-5, "face %d", i)
		assert.InDelta(t, 0, p.Y, 1e-5, "face %d", i)
		assert.InDelta(t, -1, p.Z, 1e-5, "face %d", i)

		// and the up vector on +Y
		u := views[i].MulDir(face.Up)
		assert.InDelta(t, 1, u.Y, 1e-5, "face %d", i)
	}
}

func TestCaptureProjectionIsSquare(t *testing.T) {
	p := CaptureProjection()
	assert.InDelta(t, 1, p[0][0], 1e-5)
	assert.InDelta(t, 1, p[1][1], 1e-5)
	assert.Equal(t, float32(-1), p[2][3])
}

func TestSizesValidate(t *testing.T) {
	assert.NoError(t, Sizes{1024, 32, 256, 512}.Validate())

	err := Sizes{1024, 0, 256, -1}.Validate()
	assert.ErrorIs(t, err, ErrInvalidSize)
	assert.Contains(t, err.Error(), "irradiance")
	assert.Contains(t, err.Error(), "brdf")
}

func TestDefaultProjectionAspect(t *testing.T) {
	p := DefaultProjection(2)
	assert.InDelta(t, p[1][1]/2, p[0][0], 1e-5)
	assert.NotEqual(t, math.Mat4{}, p)
}
