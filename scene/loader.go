package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"pbr-viewer/log"
)

var logger = log.New("scene")

var ErrUnsupportedModel = errors.New("scene: unsupported model format")

// IsModelFile reports whether LoadModel accepts path.
func IsModelFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj", ".gltf", ".glb":
		return true
	}
	return false
}

// LoadModel loads an OBJ or glTF file. Textures the file references are
// decoded and downscaled to maxTextureSize (0 keeps the source size).
func LoadModel(path string, maxTextureSize int) (*Model, error) {
	var (
		model *Model
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		model, err = LoadOBJ(path, maxTextureSize)
	case ".gltf", ".glb":
		model, err = LoadGLTF(path, maxTextureSize)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, path)
	}
	if err != nil {
		return nil, err
	}
	logger.Infof("loaded model %s: %d meshes, %d vertices", model.Name, len(model.Meshes), model.VertexCount())
	return model, nil
}

func modelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// AssetKind classifies a file dropped on or watched by the viewer.
type AssetKind int

const (
	AssetUnknown AssetKind = iota
	AssetEnvironment
	AssetModel
	AssetImage
)

func (k AssetKind) String() string {
	switch k {
	case AssetEnvironment:
		return "environment"
	case AssetModel:
		return "model"
	case AssetImage:
		return "image"
	}
	return "unknown"
}

// ClassifyAsset decides what a file is by its extension.
func ClassifyAsset(path string) AssetKind {
	switch {
	case IsHDRFile(path):
		return AssetEnvironment
	case IsModelFile(path):
		return AssetModel
	case IsImageFile(path):
		return AssetImage
	}
	return AssetUnknown
}
