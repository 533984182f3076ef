package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/sensorsim/go-bdpt-renderer/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "go-bdpt-renderer"
	app.Usage = "render synthetic sensor images using bidirectional path tracing"
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
			Name:  "render",
			Usage: "render the demo scene to a PNG file",
			Description: `
Build the built-in demo scene, trace it with the bidirectional path
tracer and write the averaged exposure as a PNG image.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 800,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 600,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "spp",
					Value: 20,
					Usage: "samples per pixel",
				},
				cli.IntFlag{
					Name:  "camera-bounces",
					Value: 10,
					Usage: "max bounces on the camera sub-path",
				},
				cli.IntFlag{
					Name:  "light-bounces",
					Value: 10,
					Usage: "max bounces on the light sub-path",
				},
				cli.IntFlag{
					Name:  "max-path-length",
					Value: 8,
					Usage: "max vertices in a connected path",
				},
				cli.IntFlag{
					Name:  "cores",
					Value: 16,
					Usage: "number of render goroutines",
				},
				cli.Float64Flag{
					Name:  "gamma",
					Value: 0.5,
					Usage: "gamma exponent applied on image readout",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "random seed for the per-goroutine samplers",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			},
			Action: cmd.RenderFrame,
		},
	}

	app.Run(os.Args)
}
