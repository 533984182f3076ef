package renderer

// Params bundles every knob of a render run. Zero values are not
// meaningful; start from NewParams and override.
type Params struct {
	// Image dimensions in pixels.
	Width  int
	Height int

	// SamplesPerPixel is the number of primary rays traced per pixel.
	SamplesPerPixel int

	// CameraBounces and LightBounces bound the camera and light
	// sub-path lengths, excluding the origin vertex of each walk.
	CameraBounces int
	LightBounces  int

	// MaxPathLength bounds the number of surface vertices in any
	// complete connected path.
	MaxPathLength int

	// LightDistanceAttenuation selects the falloff law for light
	// transport: 1 for linear, 2 for quadratic, anything else for none.
	LightDistanceAttenuation int

	// LightScale multiplies every sampled light radiance.
	LightScale float64

	// LightMinDistance clamps the attenuation distance so nearby lights
	// do not blow up the inverse laws.
	LightMinDistance float64

	// RayCutPixValue is the radiance intensity below which a transport
	// path stops contributing and is cut.
	RayCutPixValue float64

	// Cores is the number of render goroutines; it is clamped to the
	// image height at render time.
	Cores int

	// Gamma is the exponent applied per channel on image readout.
	Gamma float64

	// Seed feeds the per-goroutine samplers. A fixed seed with a fixed
	// core count reproduces the frame exactly.
	Seed int64
}

// NewParams returns the default render configuration.
func NewParams() Params {
	return Params{
		Width:                    800,
		Height:                   600,
		SamplesPerPixel:          20,
		CameraBounces:            10,
		LightBounces:             10,
		MaxPathLength:            8,
		LightDistanceAttenuation: 1,
		LightScale:               100,
		LightMinDistance:         0.01,
		RayCutPixValue:           0.002,
		Cores:                    16,
		Gamma:                    0.5,
		Seed:                     1,
	}
}
