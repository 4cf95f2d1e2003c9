package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func fromMgl(m mgl32.Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 16; i++ {
		out[i/4][i%4] = m[i]
	}
	return out
}

func assertMat(t *testing.T, want, got Mat4) {
	t.Helper()
	assert.Truef(t, want.ApproxEqual(got, eps), "want %v\n got %v", want, got)
}

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	assert.Equal(t, NewVec3(5, 7, 9), v1.Add(v2))
	assert.Equal(t, NewVec3(3, 3, 3), v2.Sub(v1))
	assert.Equal(t, NewVec3(2, 4, 6), v1.Mul(2))
	assert.Equal(t, float32(32), v1.Dot(v2))
	assert.Equal(t, Vec3Front, Vec3Right.Cross(Vec3Up))
	assert.Equal(t, NewVec3(4, 10, 18), v1.MulVec(v2))
}

func TestVec3Normalize(t *testing.T) {
	n := NewVec3(3, 0, 0).Normalize()
	assert.Equal(t, NewVec3(1, 0, 0), n)
	assert.InDelta(t, 1, n.Length(), eps)

	// zero stays zero instead of producing NaN
	assert.Equal(t, Vec3Zero, Vec3Zero.Normalize())
}

func TestVec3Reflect(t *testing.T) {
	r := NewVec3(1, -1, 0).Reflect(Vec3Up)
	assert.Equal(t, NewVec3(1, 1, 0), r)
}

func TestMat4Identity(t *testing.T) {
	m := Mat4Identity()
	v := NewVec3(1, 2, 3)
	assert.Equal(t, v, m.MulVec3(v))
	assert.Equal(t, m, m.Mul(Mat4Identity()))
}

func TestMat4Translation(t *testing.T) {
	m := Mat4Translation(NewVec3(10, 20, 30))
	assert.Equal(t, NewVec3(10, 20, 30), m.MulVec3(Vec3Zero))
	// directions ignore translation
	assert.Equal(t, Vec3Up, m.MulDir(Vec3Up))
	assertMat(t, fromMgl(mgl32.Translate3D(10, 20, 30)), m)
}

func TestMat4Scale(t *testing.T) {
	m := Mat4Scale(NewVec3(2, 3, 4))
	assert.Equal(t, NewVec3(2, 3, 4), m.MulVec3(Vec3One))
	assertMat(t, fromMgl(mgl32.Scale3D(2, 3, 4)), m)
}

func TestMat4RotationAxis(t *testing.T) {
	m := Mat4RotationAxis(Vec3Up, math.Pi/2)
	r := m.MulVec3(Vec3Right)
	assert.InDelta(t, 0, r.X, eps)
	assert.InDelta(t, 0, r.Y, eps)
	assert.InDelta(t, -1, r.Z, eps)

	axis := NewVec3(1, 2, 3)
	n := axis.Normalize()
	want := mgl32.HomogRotate3D(0.7, mgl32.Vec3{n.X, n.Y, n.Z})
	assertMat(t, fromMgl(want), Mat4RotationAxis(axis, 0.7))

	assert.Equal(t, Mat4Identity(), Mat4RotationAxis(Vec3Zero, 1))
}

func TestMat4Perspective(t *testing.T) {
	got := Mat4PerspectiveDeg(60, 16.0/9.0, 0.01, 1000)
	want := mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, 0.01, 1000)
	assertMat(t, fromMgl(want), got)

	// 90 degrees at aspect 1 is the cube capture projection
	capture := Mat4PerspectiveDeg(90, 1, 0.01, 1000)
	assert.InDelta(t, 1, capture[0][0], eps)
	assert.InDelta(t, 1, capture[1][1], eps)
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(3.5, 3, 3.5)
	target := NewVec3(0, 0.5, 0)
	got := Mat4LookAt(eye, target, Vec3Up)
	want := mgl32.LookAtV(mgl32.Vec3{3.5, 3, 3.5}, mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{0, 1, 0})
	assertMat(t, fromMgl(want), got)

	// the eye lands on the origin of view space
	p := got.MulVec3(eye)
	assert.InDelta(t, 0, p.Length(), eps)
}

func TestMat4ModelComposition(t *testing.T) {
	pos := NewVec3(1, 2, 3)
	got := Mat4Model(pos, Vec3Up, 90, NewVec3(2, 2, 2))

	want := mgl32.Translate3D(1, 2, 3).
		Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})).
		Mul4(mgl32.Scale3D(2, 2, 2))
	assertMat(t, fromMgl(want), got)

	// scale first, then rotate, then translate
	p := got.MulVec3(Vec3Right)
	assert.InDelta(t, 1, p.X, eps)
	assert.InDelta(t, 2, p.Y, eps)
	assert.InDelta(t, 1, p.Z, eps)
}

func TestMat4Inverse(t *testing.T) {
	m := Mat4Model(NewVec3(4, -2, 7), NewVec3(1, 1, 0), 33, NewVec3(1.5, 2, 0.5))
	inv, ok := m.Inverse()
	require.True(t, ok)
	assertMat(t, Mat4Identity(), m.Mul(inv))
	assertMat(t, Mat4Identity(), inv.Mul(m))

	want := fromMgl(mgl32.Mat4(flatten(m)).Inv())
	assertMat(t, want, inv)

	view := Mat4LookAt(NewVec3(3.5, 3, 3.5), NewVec3(0, 0.5, 0), Vec3Up)
	viewInv, ok := view.Inverse()
	require.True(t, ok)
	assertMat(t, Mat4Identity(), view.Mul(viewInv))
}

func TestMat4InverseSingular(t *testing.T) {
	_, ok := Mat4Scale(NewVec3(1, 0, 1)).Inverse()
	assert.False(t, ok)
}

func TestMat4NormalMatrix(t *testing.T) {
	m := Mat4Scale(NewVec3(2, 1, 1)).Mul(Mat4Translation(NewVec3(5, 5, 5)))
	n := m.NormalMatrix()
	assert.InDelta(t, 0.5, n[0][0], eps)
	assert.InDelta(t, 1, n[1][1], eps)
	// translation never leaks into normals
	assert.Equal(t, Vec3Zero, n.MulDir(Vec3Zero))
	assert.InDelta(t, 0, n[3][0], eps)
}

func TestMat4Transpose(t *testing.T) {
	m := Mat4Translation(NewVec3(1, 2, 3))
	tr := m.Transpose()
	assert.Equal(t, float32(1), tr[0][3])
	assert.Equal(t, m, tr.Transpose())
}

func TestQuaternionToMat4(t *testing.T) {
	s := float32(math.Sin(math.Pi / 4))
	c := float32(math.Cos(math.Pi / 4))
	q := NewQuaternion(0, s, 0, c).Normalize()
	assertMat(t, Mat4RotationAxis(Vec3Up, math.Pi/2), q.ToMat4())
	assert.Equal(t, QuaternionIdentity(), Quaternion{}.Normalize())
}

func flatten(m Mat4) [16]float32 {
	var out [16]float32
	for i := 0; i < 16; i++ {
		out[i] = m[i/4][i%4]
	}
	return out
}
