package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// ── Unit cube and screen quad ─────────────────────────────────────────────────

var (
	cubeVAO, cubeVBO uint32
	quadVAO, quadVBO uint32
)

// cubeVertices: position, normal, uv for the 36 vertices of a [-1, 1] cube.
var cubeVertices = []float32{
	// back
	-1, -1, -1, 0, 0, -1, 0, 0,
	1, 1, -1, 0, 0, -1, 1, 1,
	1, -1, -1, 0, 0, -1, 1, 0,
	1, 1, -1, 0, 0, -1, 1, 1,
	-1, -1, -1, 0, 0, -1, 0, 0,
	-1, 1, -1, 0, 0, -1, 0, 1,
	// front
	-1, -1, 1, 0, 0, 1, 0, 0,
	1, -1, 1, 0, 0, 1, 1, 0,
	1, 1, 1, 0, 0, 1, 1, 1,
	1, 1, 1, 0, 0, 1, 1, 1,
	-1, 1, 1, 0, 0, 1, 0, 1,
	-1, -1, 1, 0, 0, 1, 0, 0,
	// left
	-1, 1, 1, -1, 0, 0, 1, 0,
	-1, 1, -1, -1, 0, 0, 1, 1,
	-1, -1, -1, -1, 0, 0, 0, 1,
	-1, -1, -1, -1, 0, 0, 0, 1,
	-1, -1, 1, -1, 0, 0, 0, 0,
	-1, 1, 1, -1, 0, 0, 1, 0,
	// right
	1, 1, 1, 1, 0, 0, 1, 0,
	1, -1, -1, 1, 0, 0, 0, 1,
	1, 1, -1, 1, 0, 0, 1, 1,
	1, -1, -1, 1, 0, 0, 0, 1,
	1, 1, 1, 1, 0, 0, 1, 0,
	1, -1, 1, 1, 0, 0, 0, 0,
	// bottom
	-1, -1, -1, 0, -1, 0, 0, 1,
	1, -1, -1, 0, -1, 0, 1, 1,
	1, -1, 1, 0, -1, 0, 1, 0,
	1, -1, 1, 0, -1, 0, 1, 0,
	-1, -1, 1, 0, -1, 0, 0, 0,
	-1, -1, -1, 0, -1, 0, 0, 1,
	// top
	-1, 1, -1, 0, 1, 0, 0, 1,
	1, 1, 1, 0, 1, 0, 1, 0,
	1, 1, -1, 0, 1, 0, 1, 1,
	1, 1, 1, 0, 1, 0, 1, 0,
	-1, 1, -1, 0, 1, 0, 0, 1,
	-1, 1, 1, 0, 1, 0, 0, 0,
}

// quadVertices: position, uv of a fullscreen triangle strip.
var quadVertices = []float32{
	-1, 1, 0, 0, 1,
	-1, -1, 0, 0, 0,
	1, 1, 0, 1, 1,
	1, -1, 0, 1, 0,
}

// RenderCube draws the unit cube, creating its VAO on first use.
func RenderCube() {
	if cubeVAO == 0 {
		gl.GenVertexArrays(1, &cubeVAO)
		gl.GenBuffers(1, &cubeVBO)
		gl.BindVertexArray(cubeVAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, cubeVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(cubeVertices)*4, gl.Ptr(cubeVertices), gl.STATIC_DRAW)

		const stride = 8 * 4
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
		gl.EnableVertexAttribArray(2)
		gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(6*4))
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
		gl.BindVertexArray(0)
	}

	gl.BindVertexArray(cubeVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)
}

// RenderQuad draws a quad covering the viewport, creating its VAO on first use.
func RenderQuad() {
	if quadVAO == 0 {
		gl.GenVertexArrays(1, &quadVAO)
		gl.GenBuffers(1, &quadVBO)
		gl.BindVertexArray(quadVAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, quadVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

		const stride = 5 * 4
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
		gl.BindVertexArray(0)
	}

	gl.BindVertexArray(quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

// ReleasePrimitives deletes the shared cube and quad buffers.
func ReleasePrimitives() {
	if cubeVAO != 0 {
		gl.DeleteVertexArrays(1, &cubeVAO)
		gl.DeleteBuffers(1, &cubeVBO)
		cubeVAO, cubeVBO = 0, 0
	}
	if quadVAO != 0 {
		gl.DeleteVertexArrays(1, &quadVAO)
		gl.DeleteBuffers(1, &quadVBO)
		quadVAO, quadVBO = 0, 0
	}
}
