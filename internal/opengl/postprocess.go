package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// PostProcessFBO is an off-screen target the frame is rendered into at the
// render scale, resolved to the window with FXAA, bloom and vignette.
// Its input is already tone mapped, so the composite works in display space.
type PostProcessFBO struct {
	FBO      uint32
	ColorTex uint32 // RGBA16F
	DepthTex uint32 // DEPTH_COMPONENT32F
	Width    int32
	Height   int32

	// Composite shader
	prog        uint32
	screenLoc   int32 // unit 0
	bloomTexLoc int32 // unit 1
	texelLoc    int32
	fxaaLoc     int32
	hasBloomLoc int32
	bloomStrLoc int32
	vignetteLoc int32

	quadVAO uint32 // empty VAO for the fullscreen triangle

	// Bloom ping-pong FBOs at half resolution
	bloomFBO        [2]uint32
	bloomTex        [2]uint32
	bloomW          int32
	bloomH          int32
	brightProg      uint32
	brightThreshLoc int32
	blurProg        uint32
	blurDirLoc      int32

	FXAA     bool
	Vignette bool

	BloomEnabled   bool
	BloomThreshold float32 // luminance cut-off in display space
	BloomStrength  float32
	BloomPasses    int // H+V blur pairs
}

// ── Shaders ───────────────────────────────────────────────────────────────────

// ppVertSrc is a fullscreen triangle via gl_VertexID.
const ppVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

// ppFragSrc: FXAA on the scene, bloom added on top, then the vignette.
const ppFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D screenTex;
uniform sampler2D bloomTex;
uniform vec2      texelSize;
uniform bool      useFXAA;
uniform bool      hasBloom;
uniform float     bloomStrength;
uniform bool      useVignette;

#define FXAA_SPAN_MAX   8.0
#define FXAA_REDUCE_MUL (1.0 / 8.0)
#define FXAA_REDUCE_MIN (1.0 / 128.0)

vec3 fxaa(vec2 uv) {
    vec3 luma = vec3(0.299, 0.587, 0.114);
    float lumaNW = dot(texture(screenTex, uv + vec2(-1.0, -1.0) * texelSize).rgb, luma);
    float lumaNE = dot(texture(screenTex, uv + vec2( 1.0, -1.0) * texelSize).rgb, luma);
    float lumaSW = dot(texture(screenTex, uv + vec2(-1.0,  1.0) * texelSize).rgb, luma);
    float lumaSE = dot(texture(screenTex, uv + vec2( 1.0,  1.0) * texelSize).rgb, luma);
    float lumaM  = dot(texture(screenTex, uv).rgb, luma);

    float lumaMin = min(lumaM, min(min(lumaNW, lumaNE), min(lumaSW, lumaSE)));
    float lumaMax = max(lumaM, max(max(lumaNW, lumaNE), max(lumaSW, lumaSE)));

    vec2 dir = vec2(-((lumaNW + lumaNE) - (lumaSW + lumaSE)),
                      (lumaNW + lumaSW) - (lumaNE + lumaSE));
    float dirReduce = max((lumaNW + lumaNE + lumaSW + lumaSE) * 0.25 * FXAA_REDUCE_MUL, FXAA_REDUCE_MIN);
    float rcpDirMin = 1.0 / (min(abs(dir.x), abs(dir.y)) + dirReduce);
    dir = clamp(dir * rcpDirMin, vec2(-FXAA_SPAN_MAX), vec2(FXAA_SPAN_MAX)) * texelSize;

    vec3 rgbA = 0.5 * (texture(screenTex, uv + dir * (1.0 / 3.0 - 0.5)).rgb +
                       texture(screenTex, uv + dir * (2.0 / 3.0 - 0.5)).rgb);
    vec3 rgbB = rgbA * 0.5 + 0.25 * (texture(screenTex, uv - dir * 0.5).rgb +
                                     texture(screenTex, uv + dir * 0.5).rgb);
    float lumaB = dot(rgbB, luma);
    if (lumaB < lumaMin || lumaB > lumaMax) return rgbA;
    return rgbB;
}

void main() {
    vec3 color = useFXAA ? fxaa(fragUV) : texture(screenTex, fragUV).rgb;

    if (hasBloom) {
        color += texture(bloomTex, fragUV).rgb * bloomStrength;
    }

    if (useVignette) {
        vec2 d = fragUV - 0.5;
        float v = 1.0 - smoothstep(0.25, 0.8, length(d));
        color *= mix(0.6, 1.0, v);
    }

    outColor = vec4(clamp(color, 0.0, 1.0), 1.0);
}
` + "\x00"

// ppBrightFragSrc extracts pixels whose luminance exceeds the threshold.
const ppBrightFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D hdrBuffer;
uniform float     threshold;

void main() {
    vec3  color = texture(hdrBuffer, fragUV).rgb;
    float luma  = dot(color, vec3(0.2126, 0.7152, 0.0722));
    outColor = vec4(color * smoothstep(threshold, 1.0, luma), 1.0);
}
` + "\x00"

// ppBlurFragSrc is a single-axis 5-tap Gaussian.
// texelDir = (1/w, 0) for horizontal, (0, 1/h) for vertical.
const ppBlurFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D blurTex;
uniform vec2      texelDir;

void main() {
    const float w[5] = float[](0.0625, 0.25, 0.375, 0.25, 0.0625);
    vec3 result = vec3(0.0);
    for (int i = -2; i <= 2; i++) {
        result += texture(blurTex, fragUV + float(i) * texelDir).rgb * w[i + 2];
    }
    outColor = vec4(result, 1.0);
}
` + "\x00"

// ── Constructor ───────────────────────────────────────────────────────────────

func NewPostProcessFBO(width, height int) (*PostProcessFBO, error) {
	pp := &PostProcessFBO{
		FXAA:           true,
		Vignette:       true,
		BloomThreshold: 0.75,
		BloomStrength:  0.35,
		BloomPasses:    4,
	}

	prog, err := newProgram(ppVertSrc, ppFragSrc)
	if err != nil {
		return nil, fmt.Errorf("post-process shader: %w", err)
	}
	pp.prog = prog
	pp.screenLoc = uniform(prog, "screenTex\x00")
	pp.bloomTexLoc = uniform(prog, "bloomTex\x00")
	pp.texelLoc = uniform(prog, "texelSize\x00")
	pp.fxaaLoc = uniform(prog, "useFXAA\x00")
	pp.hasBloomLoc = uniform(prog, "hasBloom\x00")
	pp.bloomStrLoc = uniform(prog, "bloomStrength\x00")
	pp.vignetteLoc = uniform(prog, "useVignette\x00")

	gl.UseProgram(prog)
	gl.Uniform1i(pp.screenLoc, 0)
	gl.Uniform1i(pp.bloomTexLoc, 1)

	gl.GenVertexArrays(1, &pp.quadVAO)

	if err := pp.allocFBO(width, height); err != nil {
		pp.Destroy()
		return nil, err
	}
	if err := pp.EnableBloom(); err != nil {
		pp.Destroy()
		return nil, err
	}
	return pp, nil
}

// ── Bloom ─────────────────────────────────────────────────────────────────────

// EnableBloom compiles the bright-pass and blur shaders and creates the
// half-resolution ping-pong FBOs.
func (pp *PostProcessFBO) EnableBloom() error {
	if pp.brightProg != 0 {
		pp.BloomEnabled = true
		return nil
	}

	bp, err := newProgram(ppVertSrc, ppBrightFragSrc)
	if err != nil {
		return fmt.Errorf("bright-pass shader: %w", err)
	}
	pp.brightProg = bp
	pp.brightThreshLoc = uniform(bp, "threshold\x00")
	gl.UseProgram(bp)
	gl.Uniform1i(uniform(bp, "hdrBuffer\x00"), 0)

	blp, err := newProgram(ppVertSrc, ppBlurFragSrc)
	if err != nil {
		gl.DeleteProgram(bp)
		pp.brightProg = 0
		return fmt.Errorf("blur shader: %w", err)
	}
	pp.blurProg = blp
	pp.blurDirLoc = uniform(blp, "texelDir\x00")
	gl.UseProgram(blp)
	gl.Uniform1i(uniform(blp, "blurTex\x00"), 0)

	pp.allocBloomFBOs()
	pp.BloomEnabled = true
	return nil
}

func (pp *PostProcessFBO) allocBloomFBOs() {
	pp.bloomW = max(pp.Width/2, 1)
	pp.bloomH = max(pp.Height/2, 1)
	for i := 0; i < 2; i++ {
		gl.GenTextures(1, &pp.bloomTex[i])
		gl.BindTexture(gl.TEXTURE_2D, pp.bloomTex[i])
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F,
			pp.bloomW, pp.bloomH, 0, gl.RGBA, gl.HALF_FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.BindTexture(gl.TEXTURE_2D, 0)

		gl.GenFramebuffers(1, &pp.bloomFBO[i])
		gl.BindFramebuffer(gl.FRAMEBUFFER, pp.bloomFBO[i])
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
			gl.TEXTURE_2D, pp.bloomTex[i], 0)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
}

func (pp *PostProcessFBO) freeBloomFBOs() {
	for i := 0; i < 2; i++ {
		if pp.bloomFBO[i] != 0 {
			gl.DeleteFramebuffers(1, &pp.bloomFBO[i])
			pp.bloomFBO[i] = 0
		}
		if pp.bloomTex[i] != 0 {
			gl.DeleteTextures(1, &pp.bloomTex[i])
			pp.bloomTex[i] = 0
		}
	}
}

// ── Main FBO lifecycle ────────────────────────────────────────────────────────

func (pp *PostProcessFBO) allocFBO(width, height int) error {
	pp.Width = int32(max(width, 1))
	pp.Height = int32(max(height, 1))

	gl.GenTextures(1, &pp.ColorTex)
	gl.BindTexture(gl.TEXTURE_2D, pp.ColorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F,
		pp.Width, pp.Height, 0, gl.RGBA, gl.HALF_FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenTextures(1, &pp.DepthTex)
	gl.BindTexture(gl.TEXTURE_2D, pp.DepthTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F,
		pp.Width, pp.Height, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &pp.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, pp.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
		gl.TEXTURE_2D, pp.ColorTex, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT,
		gl.TEXTURE_2D, pp.DepthTex, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("post-process FBO incomplete: status=0x%X", status)
	}
	return nil
}

func (pp *PostProcessFBO) freeFBO() {
	if pp.FBO != 0 {
		gl.DeleteFramebuffers(1, &pp.FBO)
		pp.FBO = 0
	}
	if pp.ColorTex != 0 {
		gl.DeleteTextures(1, &pp.ColorTex)
		pp.ColorTex = 0
	}
	if pp.DepthTex != 0 {
		gl.DeleteTextures(1, &pp.DepthTex)
		pp.DepthTex = 0
	}
}

// Resize recreates the targets when the render size changed.
func (pp *PostProcessFBO) Resize(width, height int) error {
	if int32(width) == pp.Width && int32(height) == pp.Height {
		return nil
	}
	pp.freeFBO()
	if err := pp.allocFBO(width, height); err != nil {
		return err
	}
	if pp.brightProg != 0 {
		pp.freeBloomFBOs()
		pp.allocBloomFBOs()
	}
	logger.Debugf("post-process target resized to %dx%d", pp.Width, pp.Height)
	return nil
}

// Begin binds the off-screen target and clears it.
func (pp *PostProcessFBO) Begin(clear [4]float32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, pp.FBO)
	gl.Viewport(0, 0, pp.Width, pp.Height)
	gl.ClearColor(clear[0], clear[1], clear[2], clear[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
}

// Destroy frees all GPU resources owned by this object.
func (pp *PostProcessFBO) Destroy() {
	pp.freeFBO()
	pp.freeBloomFBOs()
	for _, prog := range []*uint32{&pp.brightProg, &pp.blurProg, &pp.prog} {
		if *prog != 0 {
			gl.DeleteProgram(*prog)
			*prog = 0
		}
	}
	if pp.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &pp.quadVAO)
		pp.quadVAO = 0
	}
}

// ── Blit ──────────────────────────────────────────────────────────────────────

// Blit resolves the target to the default framebuffer of size
// screenW×screenH. With bloom it runs bright-pass, ping-pong blur, composite.
func (pp *PostProcessFBO) Blit(screenW, screenH int) {
	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(pp.quadVAO)

	bloom := pp.BloomEnabled && pp.brightProg != 0
	if bloom {
		gl.BindFramebuffer(gl.FRAMEBUFFER, pp.bloomFBO[0])
		gl.Viewport(0, 0, pp.bloomW, pp.bloomH)
		gl.UseProgram(pp.brightProg)
		gl.Uniform1f(pp.brightThreshLoc, pp.BloomThreshold)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, pp.ColorTex)
		gl.DrawArrays(gl.TRIANGLES, 0, 3)

		// Each H+V pair ends back in bloomTex[0].
		src, dst := 0, 1
		gl.UseProgram(pp.blurProg)
		for i := 0; i < pp.BloomPasses*2; i++ {
			gl.BindFramebuffer(gl.FRAMEBUFFER, pp.bloomFBO[dst])
			if i%2 == 0 {
				gl.Uniform2f(pp.blurDirLoc, 1.0/float32(pp.bloomW), 0)
			} else {
				gl.Uniform2f(pp.blurDirLoc, 0, 1.0/float32(pp.bloomH))
			}
			gl.BindTexture(gl.TEXTURE_2D, pp.bloomTex[src])
			gl.DrawArrays(gl.TRIANGLES, 0, 3)
			src, dst = dst, src
		}
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(screenW), int32(screenH))
	gl.UseProgram(pp.prog)
	gl.Uniform2f(pp.texelLoc, 1.0/float32(pp.Width), 1.0/float32(pp.Height))
	gl.Uniform1i(pp.fxaaLoc, boolToInt32(pp.FXAA))
	gl.Uniform1i(pp.vignetteLoc, boolToInt32(pp.Vignette))
	gl.Uniform1i(pp.hasBloomLoc, boolToInt32(bloom))
	gl.Uniform1f(pp.bloomStrLoc, pp.BloomStrength)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, pp.ColorTex)
	if bloom {
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, pp.bloomTex[0])
	}
	gl.DrawArrays(gl.TRIANGLES, 0, 3)

	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.Enable(gl.DEPTH_TEST)
}
