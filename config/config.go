package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"pbr-viewer/log"
	"pbr-viewer/pbr"
)

// Config is the full viewer configuration. Zero values never reach the
// renderer: Load starts from Default and overlays the file on top.
type Config struct {
	Window      WindowConfig      `toml:"window"`
	Environment EnvironmentConfig `toml:"environment"`
	Model       ModelConfig       `toml:"model"`
	Material    MaterialConfig    `toml:"material"`
	Camera      CameraConfig      `toml:"camera"`
	Lights      LightsConfig      `toml:"lights"`
	Render      RenderConfig      `toml:"render"`
	Log         LogConfig         `toml:"log"`
	Watch       bool              `toml:"watch"`
}

type WindowConfig struct {
	Width     int  `toml:"width"`
	Height    int  `toml:"height"`
	MinWidth  int  `toml:"min_width"`
	MinHeight int  `toml:"min_height"`
	VSync     bool `toml:"vsync"`
	Samples   int  `toml:"samples"`
}

type EnvironmentConfig struct {
	HDR            string `toml:"hdr"`
	CubemapSize    int    `toml:"cubemap_size"`
	IrradianceSize int    `toml:"irradiance_size"`
	PrefilterSize  int    `toml:"prefilter_size"`
	BRDFSize       int    `toml:"brdf_size"`
	CacheDir       string `toml:"cache_dir"`
}

type ModelConfig struct {
	Path         string     `toml:"path"`
	Scale        float32    `toml:"scale"`
	RotationAxis [3]float32 `toml:"rotation_axis"`
	RotationDeg  float32    `toml:"rotation_deg"`
	RotateSpeed  float32    `toml:"rotate_speed"`
}

// MaterialConfig lists the constant fallbacks and the optional texture
// paths, keyed by channel name.
type MaterialConfig struct {
	Albedo        [3]uint8          `toml:"albedo"`
	Metalness     uint8             `toml:"metalness"`
	Roughness     uint8             `toml:"roughness"`
	ParallaxScale float32           `toml:"parallax_scale"`
	Textures      map[string]string `toml:"textures"`
}

type CameraConfig struct {
	FOV      float32    `toml:"fov"`
	Position [3]float32 `toml:"position"`
	Target   [3]float32 `toml:"target"`
	Orbital  bool       `toml:"orbital"`
}

type LightsConfig struct {
	Distance          float32 `toml:"distance"`
	Height            float32 `toml:"height"`
	Radius            float32 `toml:"radius"`
	Speed             float32 `toml:"speed"`
	DirtyTracking     bool    `toml:"dirty_tracking"`
	LegacyDirectional bool    `toml:"legacy_directional"`
}

type RenderConfig struct {
	Scale       float32 `toml:"scale"`
	Mode        string  `toml:"mode"`
	Background  string  `toml:"background"`
	FXAA        bool    `toml:"fxaa"`
	Bloom       bool    `toml:"bloom"`
	Vignette    bool    `toml:"vignette"`
	Grid        bool    `toml:"grid"`
	Gizmos      bool    `toml:"gizmos"`
	Skybox      bool    `toml:"skybox"`
	NormalMaps  bool    `toml:"normal_maps"`
	IBL         bool    `toml:"ibl"`
	Screenshots string  `toml:"screenshots"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// Packages overrides the level of single package loggers, e.g.
	// watch = "debug".
	Packages map[string]string `toml:"packages,omitempty"`
}

// RenderScales are the supersampling factors selectable at runtime.
var RenderScales = []float32{0.5, 1, 2}

func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:     1440,
			Height:    810,
			MinWidth:  960,
			MinHeight: 540,
			VSync:     true,
			Samples:   4,
		},
		Environment: EnvironmentConfig{
			HDR:            "resources/textures/hdr/pinetree.hdr",
			CubemapSize:    1024,
			IrradianceSize: 32,
			PrefilterSize:  256,
			BRDFSize:       512,
		},
		Model: ModelConfig{
			Path:         "resources/models/dwarf.obj",
			Scale:        1.75,
			RotationAxis: [3]float32{0, 1, 0},
		},
		Material: MaterialConfig{
			Albedo:        [3]uint8{255, 255, 255},
			Metalness:     255,
			Roughness:     255,
			ParallaxScale: 0.05,
			Textures: map[string]string{
				"albedo":    "resources/textures/dwarf/dwarf_albedo.png",
				"normals":   "resources/textures/dwarf/dwarf_normals.png",
				"metalness": "resources/textures/dwarf/dwarf_metalness.png",
				"roughness": "resources/textures/dwarf/dwarf_roughness.png",
			},
		},
		Camera: CameraConfig{
			FOV:      60,
			Position: [3]float32{3.5, 3, 3.5},
			Target:   [3]float32{0, 0.5, 0},
		},
		Lights: LightsConfig{
			Distance: 3.5,
			Height:   1,
			Radius:   0.05,
			Speed:    0.1,
		},
		Render: RenderConfig{
			Scale:       2,
			Mode:        pbr.RenderDefault.String(),
			Background:  pbr.BackgroundSky.String(),
			FXAA:        true,
			Bloom:       true,
			Vignette:    true,
			Gizmos:      true,
			Skybox:      true,
			NormalMaps:  true,
			IBL:         true,
			Screenshots: ".",
		},
		Log: LogConfig{Level: "notice"},
	}
}

// Load reads path over the defaults. Unknown keys are rejected so typos do
// not silently fall back to a default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode overlays TOML data onto cfg. A [material.textures] table in data
// replaces the texture map as a whole instead of merging into it.
func Decode(data []byte, cfg *Config) error {
	var tables struct {
		Material struct {
			Textures *map[string]string `toml:"textures"`
		} `toml:"material"`
	}
	if err := toml.Unmarshal(data, &tables); err == nil && tables.Material.Textures != nil {
		cfg.Material.Textures = nil
	}
	return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
}

func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate rejects sizes that would make a capture pass degenerate and
// unknown mode names.
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	positive("window.width", c.Window.Width)
	positive("window.height", c.Window.Height)
	positive("environment.cubemap_size", c.Environment.CubemapSize)
	positive("environment.irradiance_size", c.Environment.IrradianceSize)
	positive("environment.prefilter_size", c.Environment.PrefilterSize)
	positive("environment.brdf_size", c.Environment.BRDFSize)

	if c.Model.Scale <= 0 {
		errs = append(errs, fmt.Errorf("model.scale must be positive, got %g", c.Model.Scale))
	}
	if c.Lights.Radius <= 0 {
		errs = append(errs, fmt.Errorf("lights.radius must be positive, got %g", c.Lights.Radius))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov must be in (0, 180), got %g", c.Camera.FOV))
	}
	if _, err := pbr.ParseRenderMode(c.Render.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := pbr.ParseBackgroundMode(c.Render.Background); err != nil {
		errs = append(errs, err)
	}
	if RenderScaleIndex(c.Render.Scale) < 0 {
		errs = append(errs, fmt.Errorf("render.scale must be one of %v, got %g", RenderScales, c.Render.Scale))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	for name, level := range c.Log.Packages {
		if _, err := log.ParseLevel(level); err != nil {
			errs = append(errs, fmt.Errorf("log.packages.%s: %w", name, err))
		}
	}
	for name := range c.Material.Textures {
		if _, err := pbr.ParsePropertyKind(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RenderScaleIndex returns the position of s in RenderScales, or -1.
func RenderScaleIndex(s float32) int {
	for i, v := range RenderScales {
		if v == s {
			return i
		}
	}
	return -1
}
