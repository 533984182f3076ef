package cmd

import (
	"image/png"
	"os"

	"github.com/urfave/cli"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
	"github.com/sensorsim/go-bdpt-renderer/pkg/renderer"
	"github.com/sensorsim/go-bdpt-renderer/pkg/sensor"
)

// RenderFrame renders the built-in demo scene to a PNG file.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	params := renderer.NewParams()
	params.Width = ctx.Int("width")
	params.Height = ctx.Int("height")
	params.SamplesPerPixel = ctx.Int("spp")
	params.CameraBounces = ctx.Int("camera-bounces")
	params.LightBounces = ctx.Int("light-bounces")
	params.MaxPathLength = ctx.Int("max-path-length")
	params.Cores = ctx.Int("cores")
	params.Gamma = ctx.Float64("gamma")
	params.Seed = ctx.Int64("seed")

	sc, err := buildDemoScene()
	if err != nil {
		return err
	}

	vp := sensor.LookAt(
		core.Vec3{X: 0, Y: 2.2, Z: -8},
		core.Vec3{X: 0, Y: 1.2, Z: 0},
		core.Vec3{X: 0, Y: -1, Z: 0},
	)
	cam := sensor.NewPinholeCamera(vp, params.Width, params.Height)

	rend := renderer.NewBDPTRenderer(sc, params)
	stats := rend.Render(cam)

	out := ctx.String("out")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err = png.Encode(f, cam.Image(params.Gamma)); err != nil {
		return err
	}
	logger.Noticef("wrote %s", out)

	stats.Write(os.Stdout)
	return nil
}
