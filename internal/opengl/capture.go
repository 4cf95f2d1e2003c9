package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// captureTarget is the framebuffer every environment pass renders into. The
// depth renderbuffer is reallocated whenever the target size changes.
type captureTarget struct {
	FBO  uint32
	RBO  uint32
	Size int32
}

func newCaptureTarget(size int) *captureTarget {
	ct := &captureTarget{}
	gl.GenFramebuffers(1, &ct.FBO)
	gl.GenRenderbuffers(1, &ct.RBO)
	ct.resize(size)
	return ct
}

// resize binds the target and gives the depth buffer size×size storage.
func (ct *captureTarget) resize(size int) {
	ct.Size = int32(size)
	gl.BindFramebuffer(gl.FRAMEBUFFER, ct.FBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, ct.RBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, ct.Size, ct.Size)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, ct.RBO)
	gl.Viewport(0, 0, ct.Size, ct.Size)
}

// attachCubeFace routes color output to one face of a cubemap mip.
func (ct *captureTarget) attachCubeFace(face int, tex uint32, mip int32) error {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
		gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), tex, mip)
	return ct.check()
}

func (ct *captureTarget) attach2D(tex uint32) error {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	return ct.check()
}

func (ct *captureTarget) check() error {
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("capture FBO incomplete: status=0x%X", status)
	}
	return nil
}

// Destroy frees GPU resources and rebinds the default framebuffer.
func (ct *captureTarget) Destroy() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if ct.RBO != 0 {
		gl.DeleteRenderbuffers(1, &ct.RBO)
		ct.RBO = 0
	}
	if ct.FBO != 0 {
		gl.DeleteFramebuffers(1, &ct.FBO)
		ct.FBO = 0
	}
}
