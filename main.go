package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/df07/go-tiled-renderer/cmd"
	"github.com/df07/go-tiled-renderer/pkg/renderer"
)

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "go-tiled-renderer"
	app.Usage = "render scenes with parallel tiled Monte Carlo light transport"
	app.Version = "0.1.0"
	app.ArgsUsage = "<scene.yaml|scene.toml|image.hdr>"
	app.Flags = renderFlags()
	app.Action = cmd.Render
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene or preview an HDR image",
			Description: `
Render a YAML or TOML scene description with the integrator and sampler it
configures. The result is written next to the scene file as a linear Radiance
HDR image and a tone mapped PNG.

Given an HDR image instead, report its statistics and write a tone mapped PNG
preview next to it.

Press Ctrl+C to stop a running render.`,
			ArgsUsage: "<scene.yaml|scene.toml|image.hdr>",
			Flags:     renderFlags(),
			Action:    cmd.Render,
		},
	}
	return app
}

// renderFlags are accepted both by the render command and by the app itself,
// which renders the file given without a command
func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "threads, t",
			Value: cmd.DefaultThreads,
			Usage: "number of render workers",
		},
		cli.IntFlag{
			Name:  "block-size",
			Value: renderer.DefaultBlockSize,
			Usage: "tile edge length in pixels",
		},
		cli.StringFlag{
			Name:  "traversal",
			Value: renderer.TraversalSpiral.String(),
			Usage: "tile order, spiral or scanline",
		},
		cli.BoolFlag{
			Name:  "no-gui",
			Usage: "disable the progress preview",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Exit(1)
	}
}
