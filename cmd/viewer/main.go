package main

import (
	"os"

	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "pbr-viewer"
	app.Usage = "inspect models with physically based rendering and image based lighting"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "view",
			Usage: "open the interactive viewer",
			Description: `
Load an HDR environment and a model, precompute the image based lighting maps
and render the model with the configured material.

Drop .hdr, .obj, .gltf, .glb or image files on the window to replace the
environment, the model or the selected material channel.`,
			Flags:  viewFlags(),
			Action: View,
		},
		{
			Name:  "bake",
			Usage: "precompute the lighting maps of an HDR environment into the cache",
			Description: `
Render the cubemap, irradiance, prefiltered specular and BRDF maps off screen
and store them in the cache directory so later views start instantly.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "TOML configuration file",
				},
				cli.StringFlag{
					Name:  "hdr",
					Usage: "equirectangular Radiance HDR file",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: ".pbr-cache",
					Usage: "cache directory",
				},
			},
			Action: Bake,
		},
		{
			Name:  "config",
			Usage: "print the effective configuration as TOML",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "TOML configuration file",
				},
			},
			Action: PrintConfig,
		},
	}
	app.Flags = append(app.Flags, viewFlags()...)
	app.Action = View

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
