package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"pbr-viewer/config"
	"pbr-viewer/core"
	"pbr-viewer/internal/opengl"
	"pbr-viewer/pbr"
)

func viewFlags() []cli.Flag {
	flags := []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "TOML configuration file",
		},
		cli.StringFlag{
			Name:  "hdr",
			Usage: "equirectangular Radiance HDR environment",
		},
		cli.StringFlag{
			Name:  "model, m",
			Usage: "OBJ or glTF model",
		},
		cli.StringFlag{
			Name:  "cache",
			Usage: "directory for baked lighting maps",
		},
		cli.BoolFlag{
			Name:  "watch, w",
			Usage: "reload assets when they change on disk",
		},
		cli.BoolFlag{
			Name:  "legacy-directional",
			Usage: "attenuate directional lights by distance",
		},
	}
	for _, kind := range pbr.AllProperties() {
		flags = append(flags, cli.StringFlag{
			Name:  kind.String(),
			Usage: fmt.Sprintf("%s texture", kind),
		})
	}
	return flags
}

// loadConfig reads --config when given and applies the command line
// overrides on top.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if v := ctx.String("hdr"); v != "" {
		cfg.Environment.HDR = v
	}
	if v := ctx.String("model"); v != "" {
		cfg.Model.Path = v
	}
	if v := ctx.String("cache"); v != "" {
		cfg.Environment.CacheDir = v
	}
	if ctx.Bool("watch") {
		cfg.Watch = true
	}
	if ctx.Bool("legacy-directional") {
		cfg.Lights.LegacyDirectional = true
	}
	for _, kind := range pbr.AllProperties() {
		if v := ctx.String(kind.String()); v != "" {
			if cfg.Material.Textures == nil {
				cfg.Material.Textures = make(map[string]string)
			}
			cfg.Material.Textures[kind.String()] = v
		}
	}
	return cfg, cfg.Validate()
}

// View opens the interactive viewer.
func View(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	setupLogging(ctx, cfg)
	if err != nil {
		return err
	}

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	app.Run()
	return nil
}

// Bake renders the lighting maps with a hidden window and stores them.
func Bake(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	setupLogging(ctx, cfg)
	if err != nil {
		return err
	}
	out := ctx.String("out")
	if out == "" {
		return errors.New("bake: --out is required")
	}

	wcfg := core.DefaultWindowConfig()
	wcfg.Hidden = true
	wcfg.Width, wcfg.Height = 64, 64
	wcfg.MinWidth, wcfg.MinHeight = 0, 0
	window, err := core.NewWindow(wcfg)
	if err != nil {
		return err
	}
	defer window.Destroy()
	if err := opengl.Init(); err != nil {
		return err
	}
	defer opengl.ReleasePrimitives()

	env, err := opengl.LoadEnvironment(cfg.Environment.HDR, environmentSizes(cfg, wcfg.Width, wcfg.Height),
		opengl.WithCache(out))
	if err != nil {
		opengl.UnloadEnvironment(env)
		return fmt.Errorf("bake %s: %w", cfg.Environment.HDR, err)
	}
	defer opengl.UnloadEnvironment(env)

	if env.FromCache {
		logger.Noticef("%s is already baked in %s", cfg.Environment.HDR, out)
	} else {
		logger.Noticef("baked %s into %s", cfg.Environment.HDR, out)
	}
	return nil
}

// PrintConfig writes the effective configuration to stdout.
func PrintConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	setupLogging(ctx, cfg)
	if err != nil {
		return err
	}
	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func environmentSizes(cfg config.Config, width, height int) opengl.EnvironmentSizes {
	return opengl.EnvironmentSizes{
		Sizes: pbr.Sizes{
			Cubemap:    cfg.Environment.CubemapSize,
			Irradiance: cfg.Environment.IrradianceSize,
			Prefilter:  cfg.Environment.PrefilterSize,
			BRDF:       cfg.Environment.BRDFSize,
		},
		ViewportWidth:  width,
		ViewportHeight: height,
	}
}
