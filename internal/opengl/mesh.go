package opengl

import (
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-viewer/core"
	"pbr-viewer/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO         uint32
	VBO         uint32
	EBO         uint32
	IndexCount  int32
	VertexCount int32
	HasIndices  bool
	Primitive   uint32
}

// GPUModel is a scene.Model with every mesh uploaded.
type GPUModel struct {
	Model  *scene.Model
	Meshes []*GPUMesh
}

// NewGPUModel uploads every non-empty mesh of model.
func NewGPUModel(model *scene.Model) *GPUModel {
	gm := &GPUModel{Model: model}
	for _, mesh := range model.Meshes {
		if gpu := UploadMesh(mesh); gpu != nil {
			gm.Meshes = append(gm.Meshes, gpu)
		}
	}
	return gm
}

// Unload releases the buffers of every mesh.
func (gm *GPUModel) Unload() {
	if gm == nil {
		return
	}
	for _, mesh := range gm.Model.Meshes {
		ReleaseMesh(mesh)
	}
	gm.Meshes = nil
}

// UploadMesh creates the VAO for mesh, or returns the one already attached.
// Attribute locations follow core.Vertex field order.
func UploadMesh(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := mesh.GPUData.(*GPUMesh); ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount:  int32(len(mesh.Indices)),
		VertexCount: int32(len(mesh.Vertices)),
		HasIndices:  len(mesh.Indices) > 0,
		Primitive:   primitiveFor(mesh.DrawMode),
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		size   int32
		offset uintptr
	}{
		{3, unsafe.Offsetof(v.Position)},
		{3, unsafe.Offsetof(v.Normal)},
		{2, unsafe.Offsetof(v.UV)},
		{4, unsafe.Offsetof(v.Color)},
		{3, unsafe.Offsetof(v.Tangent)},
		{3, unsafe.Offsetof(v.Bitangent)},
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), a.size, gl.FLOAT, false, stride, gl.PtrOffset(int(a.offset)))
	}

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	mesh.GPUData = gpu
	return gpu
}

// ReleaseMesh deletes the buffers attached to mesh.
func ReleaseMesh(mesh *scene.Mesh) {
	gpu, ok := mesh.GPUData.(*GPUMesh)
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &gpu.VAO)
	gl.DeleteBuffers(1, &gpu.VBO)
	if gpu.HasIndices {
		gl.DeleteBuffers(1, &gpu.EBO)
	}
	mesh.GPUData = nil
}

func (gpu *GPUMesh) draw() {
	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(gpu.Primitive, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gpu.Primitive, 0, gpu.VertexCount)
	}
	gl.BindVertexArray(0)
}

func primitiveFor(mode scene.DrawMode) uint32 {
	switch mode {
	case scene.DrawLines:
		return gl.LINES
	case scene.DrawLineLoop:
		return gl.LINE_LOOP
	}
	return gl.TRIANGLES
}
