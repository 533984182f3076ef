// Package sensor defines the imaging surface the renderer deposits
// radiance on. A sensor hands out primary rays carrying a pixel index
// and receives radiance back through the matching return ray.
package sensor

import (
	"image"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

// RenderRay is a ray tagged with the pixel index it belongs to, so a
// sensor can place incoming radiance without tracking extra state.
type RenderRay struct {
	Origin core.Vec3
	Dir    core.Vec3
	Index  int
}

// At returns the point at parameter t along the ray.
func (r RenderRay) At(t float64) core.Vec3 {
	return r.Origin.Add(r.Dir.Multiply(t))
}

// Sensor is an imaging device. Init clears the accumulation buffer,
// GetRay produces a jittered primary ray for a pixel, Hit deposits the
// radiance carried by a completed path, Stop averages the accumulated
// samples, and Image reads the result out as an 8-bit frame.
type Sensor interface {
	Init(width, height int)
	GetRay(x, y int, s *core.RandomSampler) RenderRay
	Hit(radiance core.Vec3, back RenderRay, out *RenderRay)
	Stop()
	Image(gamma float64) *image.RGBA
}
