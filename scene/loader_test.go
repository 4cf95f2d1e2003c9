package scene

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbr-viewer/pbr"
)

const quadOBJ = `# unit quad
mtllib quad.mtl
o Quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl Painted
f 1/1/1 2/2/1 3/3/1 4/4/1
`

const quadMTL = `newmtl Painted
Kd 1 0 0
Pm 0.5
Pr 1
map_Kd albedo.png
map_Bump -bm 1.0 normals.png
map_Ke missing.png
`

func TestLoadOBJ(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.obj"), []byte(quadOBJ), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.mtl"), []byte(quadMTL), 0o644))
	writePNG(t, filepath.Join(dir, "albedo.png"), 2, 2, color.RGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(dir, "normals.png"), 2, 2, color.RGBA{R: 128, G: 128, B: 255, A: 255})

	model, err := LoadModel(filepath.Join(dir, "quad.obj"), 0)
	require.NoError(t, err)
	assert.Equal(t, "quad", model.Name)
	require.Len(t, model.Meshes, 1)

	mesh := model.Meshes[0]
	assert.Equal(t, "Quad", mesh.Name)
	assert.Len(t, mesh.Vertices, 4)
	assert.Len(t, mesh.Indices, 6)

	// V is flipped so the top image row maps to v = 0
	assert.InDelta(t, 1, mesh.Vertices[0].UV.Y, eps)
	assert.InDelta(t, 0, mesh.Vertices[3].UV.Y, eps)
	assert.InDelta(t, 1, mesh.Vertices[0].Tangent.Length(), eps)

	mat := model.Material
	require.NotNil(t, mat)
	assert.Equal(t, "Painted", mat.Name)
	require.NotNil(t, mat.Albedo)
	assert.Equal(t, pbr.Color8{R: 255, A: 255}, *mat.Albedo)
	assert.Equal(t, uint8(128), *mat.Metalness)
	assert.Equal(t, uint8(255), *mat.Roughness)
	assert.Contains(t, mat.Textures, pbr.Albedo)
	assert.Contains(t, mat.Textures, pbr.Normals)
	assert.NotContains(t, mat.Textures, pbr.Emission)
}

func TestLoadOBJWithoutNormals(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 0 -1\nf 1 2 3\n"
	path := filepath.Join(t.TempDir(), "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	model, err := LoadOBJ(path, 0)
	require.NoError(t, err)
	assert.Nil(t, model.Material)
	n := model.Meshes[0].Vertices[0].Normal
	assert.InDelta(t, 1, n.Y, eps)
}

func TestLoadOBJNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	path := filepath.Join(t.TempDir(), "neg.obj")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	model, err := LoadOBJ(path, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1, model.Meshes[0].Vertices[1].Position.X, eps)
}

func TestLoadOBJErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadOBJ(filepath.Join(dir, "none.obj"), 0)
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.obj")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n"), 0o644))
	_, err = LoadOBJ(empty, 0)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.obj")
	require.NoError(t, os.WriteFile(bad, []byte("v 1 two 3\n"), 0o644))
	_, err = LoadOBJ(bad, 0)
	assert.Error(t, err)

	_, err = LoadModel(filepath.Join(dir, "model.fbx"), 0)
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestLoadGLTFBakesNodeTransform(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "offset", Mesh: gltf.Index(0), Translation: [3]float64{0, 2, 0}}}
	doc.Scenes[0].Nodes = []int{0}

	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))

	model, err := LoadModel(path, 0)
	require.NoError(t, err)
	require.Len(t, model.Meshes, 1)
	m := model.Meshes[0]
	assert.Len(t, m.Indices, 3)
	assert.InDelta(t, 2, m.Vertices[0].Position.Y, eps)
	assert.InDelta(t, 3, m.Vertices[2].Position.Y, eps)
	// normals are rebuilt when the file has none
	assert.InDelta(t, 1, m.Vertices[0].Normal.Z, eps)
}

func TestClassifyAsset(t *testing.T) {
	cases := map[string]AssetKind{
		"sky/pinetree.HDR":   AssetEnvironment,
		"models/dwarf.obj":   AssetModel,
		"models/helmet.glb":  AssetModel,
		"models/helmet.gltf": AssetModel,
		"tex/albedo.png":     AssetImage,
		"tex/normals.JPG":    AssetImage,
		"tex/height.tiff":    AssetImage,
		"notes.txt":          AssetUnknown,
		"no_extension":       AssetUnknown,
	}
	for path, want := range cases {
		assert.Equal(t, want, ClassifyAsset(path), path)
	}
	assert.Equal(t, "environment", AssetEnvironment.String())
	assert.Equal(t, "unknown", AssetKind(42).String())
}
