package pbr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbr-viewer/math"
)

func TestLightAllocatorMonotonic(t *testing.T) {
	alloc := NewLightAllocator()
	assert.Equal(t, MaxLights, alloc.Capacity())
	for want := 0; want < MaxLights; want++ {
		slot, err := alloc.Allocate()
		require.NoError(t, err)
		assert.Equal(t, want, slot)
		assert.Equal(t, want+1, alloc.Count())
	}

	slot, err := alloc.Allocate()
	assert.ErrorIs(t, err, ErrLightSlotsExhausted)
	assert.Equal(t, -1, slot)
	assert.Equal(t, MaxLights, alloc.Count())
}

func TestLightAllocatorsAreIndependent(t *testing.T) {
	a, b := NewLightAllocator(), NewLightAllocator()
	_, err := a.Allocate()
	require.NoError(t, err)
	slot, err := b.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 0, slot)
}

func TestNewLightExhaustion(t *testing.T) {
	alloc := NewLightAllocator()
	white := Color8{255, 255, 255, 255}
	for want := 0; want < MaxLights; want++ {
		l, err := NewLight(alloc, LightPoint, math.Vec3{X: 1}, math.Vec3{}, white)
		require.NoError(t, err)
		assert.True(t, l.Enabled)
		assert.Equal(t, want, l.Slot)
	}

	extra, err := NewLight(alloc, LightDirectional, math.Vec3{Y: 1}, math.Vec3{}, white)
	assert.ErrorIs(t, err, ErrLightSlotsExhausted)
	require.NotNil(t, extra)
	assert.False(t, extra.Enabled)
	assert.Equal(t, -1, extra.Slot)
	assert.Equal(t, LightDirectional, extra.Type)
	assert.Equal(t, int32(0), extra.Uniforms().Enabled)
	assert.Equal(t, MaxLights, alloc.Count())
}

func TestLightDirection(t *testing.T) {
	l := Light{Position: math.NewVec3(0, 4, 0), Target: math.NewVec3(0, 0, 0)}
	assert.Equal(t, math.NewVec3(0, -1, 0), l.Direction())

	l.Position = math.NewVec3(3, 0, 4)
	d := l.Direction()
	assert.InDelta(t, 1, d.Length(), 1e-6)
	assert.InDelta(t, -0.6, d.X, 1e-6)
	assert.InDelta(t, -0.8, d.Z, 1e-6)
}

func TestSlotNames(t *testing.T) {
	n := SlotNames(2)
	assert.Equal(t, "lights[2].enabled\x00", n.Enabled)
	assert.Equal(t, "lights[2].color\x00", n.Color)

	// two-digit slots format correctly
	assert.Equal(t, "lights[12].position\x00", SlotNames(12).Position)
}

func TestLightUniforms(t *testing.T) {
	l := Light{
		Enabled:  true,
		Type:     LightPoint,
		Position: math.NewVec3(1, 2, 3),
		Color:    Color8{255, 0, 128, 255},
	}
	u := l.Uniforms()
	assert.Equal(t, int32(1), u.Enabled)
	assert.Equal(t, int32(1), u.Type)
	assert.Equal(t, [3]float32{1, 2, 3}, u.Position)
	assert.InDelta(t, 128.0/255.0, u.Color[2], 1e-6)

	l.Enabled = false
	assert.Equal(t, int32(0), l.Uniforms().Enabled)
}

func TestColorRoundTrip(t *testing.T) {
	for _, v := range []uint8{0, 1, 127, 128, 254, 255} {
		c := Color8{v, 255 - v, v, 255}
		n := c.Normalize()
		for _, f := range n {
			assert.GreaterOrEqual(t, f, float32(0))
			assert.LessOrEqual(t, f, float32(1))
		}
		assert.Equal(t, c, Denormalize(n))
	}
	assert.Equal(t, [4]float32{0, 0, 0, 1}, Black.Normalize())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, White.Normalize())
}

func TestOrbitPosition(t *testing.T) {
	const eps = 1e-5
	start := []math.Vec3{{X: 3.5, Y: 1}, {Y: 1, Z: 3.5}, {X: -3.5, Y: 1}, {Y: 2, Z: -3.5}}
	for i, want := range start {
		got := OrbitPosition(math.Vec3{Y: want.Y}, 0, i, 3.5)
		assert.InDelta(t, want.X, got.X, eps)
		assert.InDelta(t, want.Y, got.Y, eps)
		assert.InDelta(t, want.Z, got.Z, eps)
	}

	// a quarter turn moves light 0 to where light 1 started
	got := OrbitPosition(math.Vec3{Y: 1}, 90, 0, 3.5)
	assert.InDelta(t, 0, got.X, eps)
	assert.InDelta(t, 3.5, got.Z, eps)
}
