package sensor

import (
	"image"
	"image/color"
	"math"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

const (
	minObjectHeight = 0.001
	minAspect       = 0.1
)

// ViewPoint is a sensor pose: a world position and an orthonormal frame
// whose axes are the sensor's right/left, up, and forward directions.
type ViewPoint struct {
	Position core.Vec3
	Rotation core.Mat3
}

// NewViewPoint builds a pose from a position and the three frame axes.
// The rotation maps sensor-space vectors into world space.
func NewViewPoint(position, xdir, ydir, zdir core.Vec3) ViewPoint {
	return ViewPoint{
		Position: position,
		Rotation: core.Mat3{M: [3][3]float64{
			{xdir.X, ydir.X, zdir.X},
			{xdir.Y, ydir.Y, zdir.Y},
			{xdir.Z, ydir.Z, zdir.Z},
		}},
	}
}

// LookAt builds a pose at position looking toward target with the given
// up hint.
func LookAt(position, target, up core.Vec3) ViewPoint {
	forward := target.Subtract(position).Normalize()
	left := forward.Cross(up).Normalize()
	trueUp := left.Cross(forward)
	return NewViewPoint(position, left, trueUp, forward)
}

// PinholeCamera images the scene through a single point. Rays leave the
// camera position toward a jittered spot on the focal plane; radiance is
// accumulated per pixel and averaged when the exposure stops.
type PinholeCamera struct {
	viewPoint ViewPoint
	width     int
	height    int
	halfW     float64
	halfH     float64
	focus     float64

	pixels  []core.Vec3
	weights []float64
}

// NewPinholeCamera creates a camera with the given resolution, a focal
// plane matched to that resolution and a 60 degree vertical field of
// view.
func NewPinholeCamera(vp ViewPoint, width, height int) *PinholeCamera {
	c := &PinholeCamera{viewPoint: vp}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c.width, c.height = width, height
	c.pixels = make([]core.Vec3, width*height)
	c.weights = make([]float64, width*height)
	c.AdjustToResolution()
	c.SetYFoV(60.0)
	return c
}

// SetViewPoint repositions the camera.
func (c *PinholeCamera) SetViewPoint(vp ViewPoint) {
	c.viewPoint = vp
}

// AdjustToResolution sizes the focal plane so one plane unit covers one
// pixel.
func (c *PinholeCamera) AdjustToResolution() {
	c.halfH = 0.5 * float64(c.height)
	c.halfW = 0.5 * float64(c.width)
}

// SetRealHeight sizes the focal plane in world units from a physical
// sensor height and aspect ratio.
func (c *PinholeCamera) SetRealHeight(height, aspect float64) {
	c.halfH = math.Max(minObjectHeight, height)
	c.halfW = math.Max(minAspect, aspect) * c.halfH
}

// SetYFoV fixes the focal distance from a vertical field of view in
// degrees. Values outside (0, 180) leave the focus unchanged.
func (c *PinholeCamera) SetYFoV(yFovDeg float64) {
	if yFovDeg > 0 && yFovDeg < 180 {
		c.focus = c.halfH / math.Tan(0.5*yFovDeg*math.Pi/180.0)
	}
}

// Focus returns the focal distance in focal-plane units.
func (c *PinholeCamera) Focus() float64 {
	return c.focus
}

// Init clears the accumulation buffer for a new exposure.
func (c *PinholeCamera) Init(width, height int) {
	if width >= 1 && height >= 1 && (width != c.width || height != c.height) {
		c.width, c.height = width, height
		c.pixels = make([]core.Vec3, width*height)
		c.weights = make([]float64, width*height)
		c.AdjustToResolution()
	}
	for i := range c.pixels {
		c.pixels[i] = core.Vec3{}
		c.weights[i] = 0
	}
}

// GetRay returns a primary ray through pixel (x, y), jittered uniformly
// within the pixel footprint.
func (c *PinholeCamera) GetRay(x, y int, s *core.RandomSampler) RenderRay {
	px := float64(x) + 0.5 - c.halfW + s.Float64() - 0.5
	py := float64(y) + 0.5 - c.halfH + s.Float64() - 0.5
	local := core.Vec3{X: px, Y: py, Z: c.focus}.Normalize()
	return RenderRay{
		Origin: c.viewPoint.Position,
		Dir:    c.viewPoint.Rotation.TransformVec(local),
		Index:  y*c.width + x,
	}
}

// Hit accumulates radiance into the pixel the return ray points back to.
func (c *PinholeCamera) Hit(radiance core.Vec3, back RenderRay, out *RenderRay) {
	if out == nil {
		return
	}
	id := out.Index
	if id < 0 || id >= len(c.pixels) {
		return
	}
	c.pixels[id] = c.pixels[id].Add(radiance)
	c.weights[id]++
}

// Stop averages the accumulated samples in place.
func (c *PinholeCamera) Stop() {
	for i := range c.pixels {
		if c.weights[i] >= 0.5 {
			c.pixels[i] = c.pixels[i].Multiply(1.0 / c.weights[i])
		}
		c.weights[i] = 1
	}
}

// Impression returns the averaged radiance at pixel (x, y), or zero for
// out-of-range coordinates.
func (c *PinholeCamera) Impression(x, y int) core.Vec3 {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return core.Vec3{}
	}
	return c.pixels[y*c.width+x]
}

// Image maps the averaged buffer to an 8-bit frame, applying the gamma
// exponent per channel before quantization.
func (c *PinholeCamera) Image(gamma float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			v := c.pixels[y*c.width+x].GammaCorrect(gamma).Clamp(0, 1)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(v.X*255.0 + 0.5),
				G: uint8(v.Y*255.0 + 0.5),
				B: uint8(v.Z*255.0 + 0.5),
				A: 255,
			})
		}
	}
	return img
}
