package main

import (
	"github.com/urfave/cli"

	"pbr-viewer/config"
	"pbr-viewer/log"
)

var logger = log.New("viewer")

func setupLogging(ctx *cli.Context, cfg config.Config) {
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	} else {
		logger.Warning(err)
	}

	log.ResetPackageLevels()
	for name, s := range cfg.Log.Packages {
		if level, err := log.ParseLevel(s); err == nil {
			log.SetPackageLevel(name, level)
		} else {
			logger.Warningf("log.packages.%s: %v", name, err)
		}
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
