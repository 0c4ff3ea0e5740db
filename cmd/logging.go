package cmd

import (
	"github.com/urfave/cli"

	"github.com/df07/go-tiled-renderer/pkg/log"
)

var logger = log.New("cmd")

// verbosity maps -v and -vv, given globally or to the command, to a log level
func verbosity(ctx *cli.Context) log.Level {
	switch {
	case ctx.Bool("vv") || ctx.GlobalBool("vv"):
		return log.Debug
	case ctx.Bool("v") || ctx.GlobalBool("v"):
		return log.Info
	default:
		return log.Notice
	}
}

func setupLogging(level log.Level) {
	log.SetLevel(level)
}
