package scene

import "pbr-viewer/math"

// ComputeTangents generates per-vertex tangent and bitangent vectors for
// tangent-space normal mapping. Triangles with a degenerate UV area are
// skipped; vertices left without a tangent get an arbitrary one
// perpendicular to the normal.
func ComputeTangents(m *Mesh) {
	if m.DrawMode != DrawTriangles {
		return
	}
	for i := range m.Vertices {
		m.Vertices[i].Tangent = math.Vec3{}
		m.Vertices[i].Bitangent = math.Vec3{}
	}

	accum := func(i0, i1, i2 uint32) {
		v0 := m.Vertices[i0]
		v1 := m.Vertices[i1]
		v2 := m.Vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)

		du1 := v1.UV.X - v0.UV.X
		dv1 := v1.UV.Y - v0.UV.Y
		du2 := v2.UV.X - v0.UV.X
		dv2 := v2.UV.Y - v0.UV.Y

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			return
		}
		r := 1.0 / denom

		t := e1.Mul(dv2 * r).Sub(e2.Mul(dv1 * r))
		b := e2.Mul(du1 * r).Sub(e1.Mul(du2 * r))

		for _, i := range [3]uint32{i0, i1, i2} {
			m.Vertices[i].Tangent = m.Vertices[i].Tangent.Add(t)
			m.Vertices[i].Bitangent = m.Vertices[i].Bitangent.Add(b)
		}
	}

	if len(m.Indices) > 0 {
		for i := 0; i+2 < len(m.Indices); i += 3 {
			accum(m.Indices[i], m.Indices[i+1], m.Indices[i+2])
		}
	} else {
		for i := 0; i+2 < len(m.Vertices); i += 3 {
			accum(uint32(i), uint32(i+1), uint32(i+2))
		}
	}

	// Gram-Schmidt against the normal, keeping the bitangent's handedness.
	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := m.Vertices[i].Tangent
		b := m.Vertices[i].Bitangent

		t = t.Sub(n.Mul(n.Dot(t)))
		if t.LengthSqr() < 1e-8 {
			if abs(n.X) < 0.9 {
				t = math.Vec3{X: 1}.Sub(n.Mul(n.X))
			} else {
				t = math.Vec3{Y: 1}.Sub(n.Mul(n.Y))
			}
		}
		t = t.Normalize()
		m.Vertices[i].Tangent = t

		bitangent := n.Cross(t)
		if b.LengthSqr() > 1e-8 && bitangent.Dot(b) < 0 {
			bitangent = bitangent.Negate()
		}
		m.Vertices[i].Bitangent = bitangent
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
