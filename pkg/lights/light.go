// Package lights describes the emitters of the scene. Lights are sampled
// by power through the scene's weighted CDF and traced bidirectionally:
// the renderer both emits rays from them and connects path vertices back
// to them.
package lights

import (
	"math"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

// RenderLight is the interface every emitter implements
type RenderLight interface {
	// Power returns the scalar weight used for light importance sampling
	Power() float64

	// Position returns the light origin used for connections
	Position() core.Vec3

	// RandomRay emits a ray from the light using the caller's sampler
	// and returns its origin, direction, emission pdf and radiance
	RandomRay(s *core.RandomSampler) (origin, dir core.Vec3, pdf float64, radiance core.Vec3)

	// RadianceAlongRay returns the pdf and radiance emitted along a
	// known direction, used when connecting a camera vertex straight to
	// the light
	RadianceAlongRay(dir core.Vec3) (pdf float64, radiance core.Vec3)

	// AttenuationDistance returns the range beyond which the light
	// contributes nothing. Lights without a range return +Inf.
	AttenuationDistance() float64
}

// AttenuationFactor computes the distance falloff for a light at
// distance d. Without a finite attenuation distance law 1 is 1/d, law 2
// is 1/d^2 and anything else is constant, with d clamped below by
// minDistance. With a finite attenuation distance attD, law 1 is the
// relative remainder rD = max(1 - d/attD, 0), law 2 its square root, and
// anything else a step that is 1 inside the range.
func AttenuationFactor(d, attD float64, law int, minDistance float64) float64 {
	if math.IsInf(attD, 1) {
		if d < minDistance {
			d = minDistance
		}
		switch law {
		case 1:
			return 1.0 / d
		case 2:
			return 1.0 / (d * d)
		default:
			return 1.0
		}
	}

	switch law {
	case 1:
		return math.Max(1.0-d/attD, 0.0)
	case 2:
		return math.Sqrt(math.Max(1.0-d/attD, 0.0))
	default:
		if d < attD {
			return 1.0
		}
		return 0.0
	}
}
