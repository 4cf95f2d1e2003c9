package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pbr-viewer/core"
	"pbr-viewer/math"
	"pbr-viewer/pbr"
)

// objFace is an already-triangulated face (three vertex references).
type objFace struct {
	vIdx, vtIdx, vnIdx [3]int // 0-based position / UV / normal indices (-1 = absent)
}

type objVertexRef struct{ v, vt, vn int }

// LoadOBJ parses a Wavefront .obj file into one Mesh per object/group.
// The first material referenced through "usemtl" becomes the model material.
// Texture V coordinates are flipped so images can be uploaded top row first.
func LoadOBJ(path string, maxTextureSize int) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)

	var positions []math.Vec3
	var normals []math.Vec3
	var uvs []math.Vec2

	materials := map[string]*ModelMaterial{}

	type objObject struct {
		name    string
		matName string
		faces   []objFace
	}

	var objects []objObject
	cur := &objObject{name: "default"}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v", "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj %q line %d: %w", path, lineNo, err)
			}
			if fields[0] == "v" {
				positions = append(positions, v)
			} else {
				normals = append(normals, v)
			}

		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("obj %q line %d: short texture coordinate", path, lineNo)
			}
			u, errU := strconv.ParseFloat(fields[1], 32)
			v, errV := strconv.ParseFloat(fields[2], 32)
			if errU != nil || errV != nil {
				return nil, fmt.Errorf("obj %q line %d: bad texture coordinate", path, lineNo)
			}
			uvs = append(uvs, math.Vec2{X: float32(u), Y: 1 - float32(v)})

		case "o", "g":
			if len(cur.faces) > 0 {
				objects = append(objects, *cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &objObject{name: name, matName: cur.matName}

		case "usemtl":
			if len(fields) > 1 {
				cur.matName = fields[1]
			}

		case "mtllib":
			if len(fields) > 1 {
				mtlPath := filepath.Join(dir, strings.Join(fields[1:], " "))
				loaded, err := loadMTL(mtlPath, dir, maxTextureSize)
				if err != nil {
					logger.Warningf("mtllib %s: %v", mtlPath, err)
					continue
				}
				for k, v := range loaded {
					materials[k] = v
				}
			}

		case "f":
			if len(fields) < 4 {
				continue
			}
			fverts := make([]objVertexRef, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				fverts = append(fverts, parseFaceVertex(tok, len(positions), len(uvs), len(normals)))
			}
			// Fan triangulation: 0-1-2, 0-2-3, 0-3-4, ...
			for i := 1; i+1 < len(fverts); i++ {
				f0, f1, f2 := fverts[0], fverts[i], fverts[i+1]
				cur.faces = append(cur.faces, objFace{
					vIdx:  [3]int{f0.v, f1.v, f2.v},
					vtIdx: [3]int{f0.vt, f1.vt, f2.vt},
					vnIdx: [3]int{f0.vn, f1.vn, f2.vn},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}

	if len(cur.faces) > 0 {
		objects = append(objects, *cur)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", path)
	}

	model := &Model{Name: modelName(path)}
	for _, obj := range objects {
		mesh := buildMeshFromOBJ(obj.name, obj.faces, positions, normals, uvs)
		ComputeTangents(mesh)
		model.Meshes = append(model.Meshes, mesh)

		if model.Material == nil {
			if mat, ok := materials[obj.matName]; ok {
				model.Material = mat
			}
		}
	}
	return model, nil
}

func parseVec3(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	var c [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math.Vec3{}, err
		}
		c[i] = float32(f)
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// parseFaceVertex parses one face vertex token: "v", "v/vt", "v//vn", "v/vt/vn".
// Returns 0-based indices (-1 if absent). Negative indices count back from
// the current end of each pool.
func parseFaceVertex(tok string, nv, nvt, nvn int) objVertexRef {
	parseIdx := func(s string, n int) int {
		if s == "" {
			return -1
		}
		i, err := strconv.Atoi(s)
		if err != nil || i == 0 {
			return -1
		}
		if i > 0 {
			return i - 1
		}
		return n + i
	}
	parts := strings.Split(tok, "/")
	res := objVertexRef{v: -1, vt: -1, vn: -1}
	if len(parts) > 0 {
		res.v = parseIdx(parts[0], nv)
	}
	if len(parts) > 1 {
		res.vt = parseIdx(parts[1], nvt)
	}
	if len(parts) > 2 {
		res.vn = parseIdx(parts[2], nvn)
	}
	return res
}

// buildMeshFromOBJ converts parsed face data into a deduplicated Mesh.
func buildMeshFromOBJ(
	name string,
	faces []objFace,
	positions []math.Vec3,
	normals []math.Vec3,
	uvs []math.Vec2,
) *Mesh {
	vertMap := map[objVertexRef]uint32{}
	var vertices []core.Vertex
	var indices []uint32

	safePos := func(i int) math.Vec3 {
		if i >= 0 && i < len(positions) {
			return positions[i]
		}
		return math.Vec3Zero
	}
	safeNorm := func(i int) math.Vec3 {
		if i >= 0 && i < len(normals) {
			return normals[i]
		}
		return math.Vec3Up
	}
	safeUV := func(i int) math.Vec2 {
		if i >= 0 && i < len(uvs) {
			return uvs[i]
		}
		return math.Vec2{}
	}

	for _, face := range faces {
		for c := 0; c < 3; c++ {
			k := objVertexRef{face.vIdx[c], face.vtIdx[c], face.vnIdx[c]}
			if idx, ok := vertMap[k]; ok {
				indices = append(indices, idx)
				continue
			}
			idx := uint32(len(vertices))
			vertices = append(vertices, core.Vertex{
				Position: safePos(k.v),
				Normal:   safeNorm(k.vn),
				UV:       safeUV(k.vt),
				Color:    core.ColorWhite,
			})
			vertMap[k] = idx
			indices = append(indices, idx)
		}
	}

	if len(normals) == 0 {
		generateSmoothNormals(vertices, indices)
	}

	return CreateMeshFromData(name, vertices, indices)
}

// generateSmoothNormals computes area-weighted normals and writes them to the vertex slice.
func generateSmoothNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]math.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0 := vertices[i0].Position
		v1 := vertices[i1].Position
		v2 := vertices[i2].Position
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if accum[i].LengthSqr() > 0 {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}

// ── MTL loader ───────────────────────────────────────────────────────────────

// mtlMaps maps MTL texture statements to material channels. Pm, Pr and Ke
// come from the PBR extension to the format.
var mtlMaps = map[string]pbr.PropertyKind{
	"map_Kd":   pbr.Albedo,
	"map_Bump": pbr.Normals,
	"map_bump": pbr.Normals,
	"bump":     pbr.Normals,
	"norm":     pbr.Normals,
	"map_Pm":   pbr.Metalness,
	"map_Pr":   pbr.Roughness,
	"map_Ka":   pbr.Occlusion,
	"map_Ke":   pbr.Emission,
	"disp":     pbr.Height,
}

func loadMTL(path, dir string, maxTextureSize int) (map[string]*ModelMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mats := map[string]*ModelMaterial{}
	var cur *ModelMaterial

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		if fields[0] == "newmtl" {
			if len(fields) > 1 {
				cur = NewModelMaterial(fields[1])
				mats[fields[1]] = cur
			}
			continue
		}
		if cur == nil {
			continue
		}

		switch fields[0] {
		case "Kd":
			if c, err := parseVec3(fields[1:]); err == nil {
				col := pbr.Color8{R: unitToByte(c.X), G: unitToByte(c.Y), B: unitToByte(c.Z), A: 255}
				cur.Albedo = &col
			}
		case "Pm", "Pr":
			if len(fields) < 2 {
				continue
			}
			v, err := strconv.ParseFloat(fields[1], 32)
			if err != nil {
				continue
			}
			b := unitToByte(float32(v))
			if fields[0] == "Pm" {
				cur.Metalness = &b
			} else {
				cur.Roughness = &b
			}
		default:
			kind, ok := mtlMaps[fields[0]]
			if !ok || len(fields) < 2 {
				continue
			}
			// Options such as "-bm 1.0" precede the file name.
			texPath := filepath.Join(dir, fields[len(fields)-1])
			tex, err := LoadTexture(texPath, maxTextureSize)
			if err != nil {
				logger.Warningf("material %s: %v", cur.Name, err)
				continue
			}
			cur.SetTexture(kind, tex)
		}
	}

	return mats, scanner.Err()
}
