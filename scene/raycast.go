package scene

import (
	stdmath "math"

	"pbr-viewer/math"
)

// Ray represents a ray in 3D space. Direction is unit length.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// ScreenToRay converts a window-space cursor position (origin top-left) into
// a world-space ray through the near and far planes.
func ScreenToRay(mouseX, mouseY, width, height float32, view, proj math.Mat4) Ray {
	ndcX := (2.0*mouseX)/width - 1.0
	ndcY := 1.0 - (2.0*mouseY)/height

	inv, ok := view.Mul(proj).Inverse()
	if !ok {
		return Ray{Direction: math.Vec3{Z: -1}}
	}
	near := math.Vec4{X: ndcX, Y: ndcY, Z: -1, W: 1}.MulMat(inv).ToVec3DivW()
	far := math.Vec4{X: ndcX, Y: ndcY, Z: 1, W: 1}.MulMat(inv).ToVec3DivW()

	return Ray{
		Origin:    near,
		Direction: far.Sub(near).Normalize(),
	}
}

// RaySphere returns the distance to the first intersection in front of the
// ray origin.
func RaySphere(ray Ray, center math.Vec3, radius float32) (float32, bool) {
	oc := ray.Origin.Sub(center)
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := float32(stdmath.Sqrt(float64(disc)))
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// RayAABB tests ray-AABB intersection with the slab method.
func RayAABB(ray Ray, box AABB) (float32, bool) {
	invDir := math.Vec3{
		X: 1.0 / ray.Direction.X,
		Y: 1.0 / ray.Direction.Y,
		Z: 1.0 / ray.Direction.Z,
	}

	t1 := (box.Min.X - ray.Origin.X) * invDir.X
	t2 := (box.Max.X - ray.Origin.X) * invDir.X
	t3 := (box.Min.Y - ray.Origin.Y) * invDir.Y
	t4 := (box.Max.Y - ray.Origin.Y) * invDir.Y
	t5 := (box.Min.Z - ray.Origin.Z) * invDir.Z
	t6 := (box.Max.Z - ray.Origin.Z) * invDir.Z

	tmin := math.Max(math.Max(math.Min(t1, t2), math.Min(t3, t4)), math.Min(t5, t6))
	tmax := math.Min(math.Min(math.Max(t1, t2), math.Max(t3, t4)), math.Max(t5, t6))

	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
