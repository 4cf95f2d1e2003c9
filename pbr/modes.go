package pbr

import (
	"fmt"
	"strings"
)

// RenderMode selects which shading quantity the fragment program outputs.
type RenderMode int

const (
	RenderDefault RenderMode = iota
	RenderAlbedo
	RenderNormals
	RenderMetalness
	RenderRoughness
	RenderAmbientOcclusion
	RenderEmission
	RenderLighting
	RenderFresnel
	RenderIrradiance
	RenderReflection

	NumRenderModes = 11
)

var renderModeNames = [NumRenderModes]string{
	"default", "albedo", "normals", "metalness", "roughness", "ao",
	"emission", "lighting", "fresnel", "irradiance", "reflection",
}

func (m RenderMode) String() string {
	if m < 0 || m >= NumRenderModes {
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
	return renderModeNames[m]
}

func ParseRenderMode(s string) (RenderMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range renderModeNames {
		if name == s {
			return RenderMode(i), nil
		}
	}
	return RenderDefault, fmt.Errorf("pbr: unknown render mode %q", s)
}

// BackgroundMode selects what the skybox shows.
type BackgroundMode int

const (
	BackgroundSky BackgroundMode = iota
	BackgroundBlurSky
	BackgroundAmbient

	NumBackgroundModes = 3
)

var backgroundNames = [NumBackgroundModes]string{"sky", "blursky", "ambient"}

func (m BackgroundMode) String() string {
	if m < 0 || m >= NumBackgroundModes {
		return fmt.Sprintf("BackgroundMode(%d)", int(m))
	}
	return backgroundNames[m]
}

// Next cycles through the background modes.
func (m BackgroundMode) Next() BackgroundMode {
	return (m + 1) % NumBackgroundModes
}

func ParseBackgroundMode(s string) (BackgroundMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range backgroundNames {
		if name == s {
			return BackgroundMode(i), nil
		}
	}
	return BackgroundSky, fmt.Errorf("pbr: unknown background mode %q", s)
}
