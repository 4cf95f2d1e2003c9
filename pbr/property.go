package pbr

import (
	"errors"
	"fmt"
	"strings"
)

// PropertyKind names one of the seven material channels.
type PropertyKind int

const (
	Albedo PropertyKind = iota
	Normals
	Metalness
	Roughness
	Occlusion
	Emission
	Height

	NumProperties = 7
)

// Texture units reserved for the environment maps. Material channels follow
// from FirstMaterialUnit in PropertyKind order.
const (
	UnitIrradiance    = 0
	UnitPrefilter     = 1
	UnitBRDF          = 2
	FirstMaterialUnit = 3
	NumTextureUnits   = FirstMaterialUnit + NumProperties
)

var ErrUnknownProperty = errors.New("pbr: unknown material property")

var propertyNames = [NumProperties]string{
	Albedo:    "albedo",
	Normals:   "normals",
	Metalness: "metalness",
	Roughness: "roughness",
	Occlusion: "ao",
	Emission:  "emission",
	Height:    "height",
}

// AllProperties lists every kind in texture-unit order.
func AllProperties() []PropertyKind {
	return []PropertyKind{Albedo, Normals, Metalness, Roughness, Occlusion, Emission, Height}
}

func (k PropertyKind) Valid() bool {
	return k >= 0 && k < NumProperties
}

// String is also the name of the GLSL struct that carries the channel.
func (k PropertyKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("PropertyKind(%d)", int(k))
	}
	return propertyNames[k]
}

// Unit is the fixed texture unit the channel's sampler reads from.
func (k PropertyKind) Unit() int {
	return FirstMaterialUnit + int(k)
}

// Uniform names for the channel's color, sampler and flag.
func (k PropertyKind) ColorUniform() string   { return k.String() + ".color" }
func (k PropertyKind) SamplerUniform() string { return k.String() + ".sampler" }
func (k PropertyKind) FlagUniform() string    { return k.String() + ".useSampler" }

// ParsePropertyKind accepts the GLSL name plus "occlusion" as an alias.
func ParsePropertyKind(s string) (PropertyKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "occlusion" {
		return Occlusion, nil
	}
	for i, name := range propertyNames {
		if name == s {
			return PropertyKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProperty, s)
}
