package pbr

import (
	"errors"
	"fmt"
	stdmath "math"

	"pbr-viewer/math"
)

// MaxLights is the size of the lights array in the shading program.
const MaxLights = 4

var ErrLightSlotsExhausted = errors.New("pbr: all light slots are in use")

// LightType values match the constants in the fragment program.
type LightType int

const (
	LightDirectional LightType = iota
	LightPoint
)

func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	}
	return fmt.Sprintf("LightType(%d)", int(t))
}

// Light is a directional or point light bound to one slot of the shader's
// lights array. Slot is assigned once and never changes.
type Light struct {
	Enabled  bool
	Type     LightType
	Position math.Vec3
	Target   math.Vec3
	Color    Color8
	Slot     int
}

// NewLight binds a light to the next free slot of alloc. When every slot is
// taken the light comes back disabled with Slot -1, alongside the allocator's
// error, so callers can keep it around without it ever reaching the shader.
func NewLight(alloc *LightAllocator, typ LightType, position, target math.Vec3, color Color8) (*Light, error) {
	light := &Light{
		Type:     typ,
		Position: position,
		Target:   target,
		Color:    color,
		Slot:     -1,
	}
	slot, err := alloc.Allocate()
	if err != nil {
		return light, err
	}
	light.Slot = slot
	light.Enabled = true
	return light, nil
}

// LightUniforms are the five values uploaded for a light slot.
type LightUniforms struct {
	Enabled  int32
	Type     int32
	Position [3]float32
	Target   [3]float32
	Color    [4]float32
}

func (l *Light) Uniforms() LightUniforms {
	u := LightUniforms{
		Type:     int32(l.Type),
		Position: l.Position.Array(),
		Target:   l.Target.Array(),
		Color:    l.Color.Normalize(),
	}
	if l.Enabled {
		u.Enabled = 1
	}
	return u
}

// Direction is the normalized vector the light travels along. For point
// lights it points from the light towards the target.
func (l *Light) Direction() math.Vec3 {
	return l.Target.Sub(l.Position).Normalize()
}

// LightSlotNames are the uniform names of one element of the lights array.
type LightSlotNames struct {
	Enabled, Type, Position, Target, Color string
}

// SlotNames formats the uniform names for slot i. Names carry a trailing
// NUL so they can be passed to gl.Str directly.
func SlotNames(i int) LightSlotNames {
	return LightSlotNames{
		Enabled:  fmt.Sprintf("lights[%d].enabled\x00", i),
		Type:     fmt.Sprintf("lights[%d].type\x00", i),
		Position: fmt.Sprintf("lights[%d].position\x00", i),
		Target:   fmt.Sprintf("lights[%d].target\x00", i),
		Color:    fmt.Sprintf("lights[%d].color\x00", i),
	}
}

// LightAllocator hands out shader light slots in increasing order. Slots are
// never returned; a light is retired by disabling it.
type LightAllocator struct {
	capacity int
	next     int
}

func NewLightAllocator() *LightAllocator {
	return &LightAllocator{capacity: MaxLights}
}

// Allocate returns the next free slot index.
func (a *LightAllocator) Allocate() (int, error) {
	if a.next >= a.capacity {
		return -1, fmt.Errorf("%w (max %d)", ErrLightSlotsExhausted, a.capacity)
	}
	slot := a.next
	a.next++
	return slot, nil
}

// Count reports how many slots have been handed out.
func (a *LightAllocator) Count() int {
	return a.next
}

func (a *LightAllocator) Capacity() int {
	return a.capacity
}

// OrbitPosition places light i of a ring on the XZ circle of radius
// distance, spaced 90 degrees apart starting at angleDeg. Y is kept.
func OrbitPosition(current math.Vec3, angleDeg float32, i int, distance float32) math.Vec3 {
	a := (angleDeg + 90*float32(i)) * math.Deg2Rad
	return math.Vec3{
		X: distance * float32(stdmath.Cos(float64(a))),
		Y: current.Y,
		Z: distance * float32(stdmath.Sin(float64(a))),
	}
}
