package cmd

import (
	"github.com/sensorsim/go-bdpt-renderer/log"
	"github.com/urfave/cli"
)

var logger = log.New("bdpt")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
