package ibl

import (
	"fmt"

	"pbr-viewer/pbr"
)

type CubeMapFace int

// Faces in GL order, matching pbr.CaptureFaces.
const (
	CubeMapPositiveX = CubeMapFace(iota)
	CubeMapNegativeX
	CubeMapPositiveY
	CubeMapNegativeY
	CubeMapPositiveZ
	CubeMapNegativeZ
)

// Channels per cubemap texel (RGB).
const Channels = 3

// CubeEnv is a cubemap with a mip chain stored as one float RGB slice:
// level 0 faces +X..-Z, then level 1, and so on.
type CubeEnv struct {
	Levels   int
	BaseSize int
	faces    [][6][]float32
	sizes    []int
	data     []float32
}

// NewCubeEnv slices data into faces. data must hold CubePixels(size, levels)
// RGB texels.
func NewCubeEnv(data []float32, size, levels int) (*CubeEnv, error) {
	if levels <= 0 {
		levels = 1
	}
	if size <= 0 {
		return nil, fmt.Errorf("ibl: cube size must be positive, got %d", size)
	}
	if want := CubePixels(size, levels) * Channels; len(data) != want {
		return nil, fmt.Errorf("ibl: cube data has %d floats, want %d", len(data), want)
	}

	faces := make([][6][]float32, levels)
	sizes := make([]int, levels)
	offset := 0
	for lvl := 0; lvl < levels; lvl++ {
		lvlSize := pbr.PrefilterMipSize(size, lvl)
		stride := lvlSize * lvlSize * Channels
		for f := 0; f < 6; f++ {
			faces[lvl][f] = data[offset : offset+stride : offset+stride]
			offset += stride
		}
		sizes[lvl] = lvlSize
	}

	return &CubeEnv{
		Levels:   levels,
		BaseSize: size,
		faces:    faces,
		sizes:    sizes,
		data:     data,
	}, nil
}

// NewEmptyCubeEnv allocates a zeroed cubemap ready to be filled by readback.
func NewEmptyCubeEnv(size, levels int) (*CubeEnv, error) {
	if levels <= 0 {
		levels = 1
	}
	if size <= 0 {
		return nil, fmt.Errorf("ibl: cube size must be positive, got %d", size)
	}
	return NewCubeEnv(make([]float32, CubePixels(size, levels)*Channels), size, levels)
}

func (env *CubeEnv) All() []float32 {
	return env.data
}

func (env *CubeEnv) Face(level int, face CubeMapFace) []float32 {
	return env.faces[level][face]
}

func (env *CubeEnv) Size(level int) int {
	return env.sizes[level]
}

// CubePixels counts the texels of all faces across levels.
func CubePixels(size, levels int) int {
	sum := 0
	for lvl := 0; lvl < levels; lvl++ {
		s := pbr.PrefilterMipSize(size, lvl)
		sum += s * s * 6
	}
	return sum
}

// BRDFLut is the split-sum lookup table, two floats (scale, bias) per texel.
type BRDFLut struct {
	Size int
	Data []float32
}

// Bundle is the output of the four precomputation passes.
type Bundle struct {
	Cubemap    *CubeEnv
	Irradiance *CubeEnv
	Prefilter  *CubeEnv
	BRDF       BRDFLut
}

// Sizes reports the resolutions the bundle was baked at.
func (b *Bundle) Sizes() pbr.Sizes {
	return pbr.Sizes{
		Cubemap:    b.Cubemap.BaseSize,
		Irradiance: b.Irradiance.BaseSize,
		Prefilter:  b.Prefilter.BaseSize,
		BRDF:       b.BRDF.Size,
	}
}

// Validate checks that a decoded bundle matches the sizes it is about to be
// uploaded at. The prefiltered cube must carry prefilterLevels mips and the
// other two cubes a single level.
func (b *Bundle) Validate(sizes pbr.Sizes, prefilterLevels int) error {
	if b.Cubemap == nil || b.Irradiance == nil || b.Prefilter == nil {
		return fmt.Errorf("%w: bundle is missing a cubemap", ErrCorrupt)
	}
	if got := b.Sizes(); got != sizes {
		return fmt.Errorf("%w: bundle sizes %+v, want %+v", ErrCorrupt, got, sizes)
	}
	if b.Cubemap.Levels != 1 || b.Irradiance.Levels != 1 {
		return fmt.Errorf("%w: cubemap has %d levels and irradiance %d, want 1",
			ErrCorrupt, b.Cubemap.Levels, b.Irradiance.Levels)
	}
	if b.Prefilter.Levels != prefilterLevels {
		return fmt.Errorf("%w: prefilter has %d levels, want %d", ErrCorrupt, b.Prefilter.Levels, prefilterLevels)
	}
	if want := b.BRDF.Size * b.BRDF.Size * 2; len(b.BRDF.Data) != want {
		return fmt.Errorf("%w: brdf has %d floats, want %d", ErrCorrupt, len(b.BRDF.Data), want)
	}
	return nil
}
