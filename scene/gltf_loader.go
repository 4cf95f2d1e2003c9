package scene

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"pbr-viewer/core"
	"pbr-viewer/math"
	"pbr-viewer/pbr"
)

// LoadGLTF opens a .glb or .gltf file. The node hierarchy is baked into the
// vertex data so the result is a flat list of meshes in model space. The
// material of the first primitive that has one becomes the model material.
func LoadGLTF(path string, maxTextureSize int) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	l := &gltfLoader{
		doc:     doc,
		dir:     filepath.Dir(path),
		maxSize: maxTextureSize,
		images:  make(map[int]image.Image),
	}

	model := &Model{Name: modelName(path)}
	for _, root := range l.roots() {
		l.walk(model, root, math.Mat4Identity())
	}
	if len(model.Meshes) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", path)
	}
	return model, nil
}

type gltfLoader struct {
	doc     *gltf.Document
	dir     string
	maxSize int

	images   map[int]image.Image
	material *int
}

// roots returns the nodes of the default scene, or every parentless node
// when the document has none.
func (l *gltfLoader) roots() []int {
	doc := l.doc
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (l *gltfLoader) walk(model *Model, nodeIdx int, parent math.Mat4) {
	if nodeIdx < 0 || nodeIdx >= len(l.doc.Nodes) {
		return
	}
	gn := l.doc.Nodes[nodeIdx]
	world := nodeMatrix(gn).Mul(parent)

	if gn.Mesh != nil && *gn.Mesh < len(l.doc.Meshes) {
		gm := l.doc.Meshes[*gn.Mesh]
		for pi, prim := range gm.Primitives {
			m, err := l.loadPrimitive(gm.Name, pi, prim, world)
			if err != nil {
				logger.Warningf("gltf: mesh %d prim %d: %v", *gn.Mesh, pi, err)
				continue
			}
			model.Meshes = append(model.Meshes, m)
			if model.Material == nil && prim.Material != nil {
				model.Material = l.loadMaterial(*prim.Material)
			}
		}
	}
	for _, c := range gn.Children {
		l.walk(model, c, world)
	}
}

// nodeMatrix returns the node's local transform in row-vector order.
func nodeMatrix(gn *gltf.Node) math.Mat4 {
	if gn.Matrix != gltf.DefaultMatrix && gn.Matrix != [16]float64{} {
		// glTF stores column-major with column vectors, which is the same
		// memory layout as a row-vector Mat4.
		var m math.Mat4
		for i := 0; i < 16; i++ {
			m[i/4][i%4] = float32(gn.Matrix[i])
		}
		return m
	}
	t := gn.TranslationOrDefault()
	s := gn.ScaleOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]
	rot := math.NewQuaternion(float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3])).Normalize()
	return math.Mat4Scale(math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])}).
		Mul(rot.ToMat4()).
		Mul(math.Mat4Translation(math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])}))
}

// loadPrimitive converts one glTF mesh primitive into a Mesh, transformed by world.
func (l *gltfLoader) loadPrimitive(meshName string, primIdx int, prim *gltf.Primitive, world math.Mat4) (*Mesh, error) {
	doc := l.doc
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("unsupported primitive mode %d", prim.Mode)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	normalMat := world.NormalMatrix()
	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: world.MulVec3(math.Vec3{X: p[0], Y: p[1], Z: p[2]}),
			Normal:   math.Vec3Up,
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = normalMat.MulDir(math.Vec3{X: n[0], Y: n[1], Z: n[2]}).Normalize()
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	m := CreateMeshFromData(name, verts, indices)
	if len(normals) == 0 && len(indices) > 0 {
		generateSmoothNormals(m.Vertices, m.Indices)
	}
	ComputeTangents(m)
	return m, nil
}

// loadMaterial maps a glTF metallic-roughness material onto the seven
// channels. The packed metallic-roughness image is split into separate
// metalness (blue) and roughness (green) textures.
func (l *gltfLoader) loadMaterial(idx int) *ModelMaterial {
	if idx < 0 || idx >= len(l.doc.Materials) {
		return nil
	}
	gm := l.doc.Materials[idx]
	mat := NewModelMaterial(gm.Name)

	if p := gm.PBRMetallicRoughness; p != nil {
		cf := p.BaseColorFactorOrDefault()
		albedo := pbr.Color8{
			R: unitToByte(float32(cf[0])), G: unitToByte(float32(cf[1])),
			B: unitToByte(float32(cf[2])), A: unitToByte(float32(cf[3])),
		}
		metal := unitToByte(float32(p.MetallicFactorOrDefault()))
		rough := unitToByte(float32(p.RoughnessFactorOrDefault()))
		mat.Albedo, mat.Metalness, mat.Roughness = &albedo, &metal, &rough

		if p.BaseColorTexture != nil {
			mat.SetTexture(pbr.Albedo, l.texture(p.BaseColorTexture.Index, -1))
		}
		if p.MetallicRoughnessTexture != nil {
			mat.SetTexture(pbr.Metalness, l.texture(p.MetallicRoughnessTexture.Index, 2))
			mat.SetTexture(pbr.Roughness, l.texture(p.MetallicRoughnessTexture.Index, 1))
		}
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		mat.SetTexture(pbr.Normals, l.texture(*gm.NormalTexture.Index, -1))
	}
	if gm.OcclusionTexture != nil && gm.OcclusionTexture.Index != nil {
		mat.SetTexture(pbr.Occlusion, l.texture(*gm.OcclusionTexture.Index, 0))
	}
	if gm.EmissiveTexture != nil {
		mat.SetTexture(pbr.Emission, l.texture(gm.EmissiveTexture.Index, -1))
	}
	return mat
}

// texture resolves a glTF texture index. channel selects a single channel
// broadcast to RGB, or -1 for the full image.
func (l *gltfLoader) texture(texIdx, channel int) *Texture {
	doc := l.doc
	if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		return nil
	}
	src := *doc.Textures[texIdx].Source
	img, err := l.image(src)
	if err != nil {
		logger.Warningf("gltf: image %d: %v", src, err)
		return nil
	}
	name := doc.Images[src].Name
	if name == "" {
		name = fmt.Sprintf("gltf_img_%d", src)
	}
	tex := TextureFromImage(name, img, l.maxSize)
	if channel >= 0 {
		extractChannel(tex, channel)
	}
	return tex
}

func (l *gltfLoader) image(src int) (image.Image, error) {
	if img, ok := l.images[src]; ok {
		return img, nil
	}
	if src < 0 || src >= len(l.doc.Images) {
		return nil, fmt.Errorf("image index out of range")
	}
	gi := l.doc.Images[src]

	var raw []byte
	var err error
	switch {
	case gi.BufferView != nil:
		raw, err = modeler.ReadBufferView(l.doc, l.doc.BufferViews[*gi.BufferView])
	case gi.IsEmbeddedResource():
		raw, err = gi.MarshalData()
	case gi.URI != "":
		var tex *Texture
		tex, err = LoadTexture(filepath.Join(l.dir, gi.URI), 0)
		if err == nil {
			img := textureImage(tex)
			l.images[src] = img
			return img, nil
		}
	default:
		err = fmt.Errorf("image has no data")
	}
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	l.images[src] = img
	return img, nil
}

func textureImage(tex *Texture) *image.RGBA {
	return &image.RGBA{
		Pix:    tex.Pixels,
		Stride: tex.Width * 4,
		Rect:   image.Rect(0, 0, tex.Width, tex.Height),
	}
}

// extractChannel copies channel c into R, G and B.
func extractChannel(tex *Texture, c int) {
	for i := 0; i+3 < len(tex.Pixels); i += 4 {
		v := tex.Pixels[i+c]
		tex.Pixels[i], tex.Pixels[i+1], tex.Pixels[i+2] = v, v, v
	}
}
