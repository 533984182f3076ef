package lights

import (
	"math"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

// PointLight emits uniformly in all directions from a single position.
// Range bounds the light's reach; zero or negative means unbounded.
type PointLight struct {
	position  core.Vec3
	intensity core.Vec3
	rng       float64
	power     float64
}

// NewPointLight creates a point light at the given position with the
// given RGB intensity and range
func NewPointLight(position, intensity core.Vec3, rng float64) *PointLight {
	return &PointLight{
		position:  position,
		intensity: intensity,
		rng:       rng,
		power:     intensity.Power(),
	}
}

// Power returns the Rec. 709 weighted intensity used for light sampling
func (l *PointLight) Power() float64 {
	return l.power
}

// Position returns the light origin
func (l *PointLight) Position() core.Vec3 {
	return l.position
}

// Intensity returns the RGB intensity
func (l *PointLight) Intensity() core.Vec3 {
	return l.intensity
}

// RandomRay emits a uniformly distributed direction over the sphere
func (l *PointLight) RandomRay(s *core.RandomSampler) (origin, dir core.Vec3, pdf float64, radiance core.Vec3) {
	return l.position, s.UniformSphere(), 1.0 / (4.0 * math.Pi), l.intensity
}

// RadianceAlongRay returns the isotropic emission for any direction
func (l *PointLight) RadianceAlongRay(core.Vec3) (pdf float64, radiance core.Vec3) {
	return 1.0 / (4.0 * math.Pi), l.intensity
}

// AttenuationDistance returns the light range, or +Inf when unbounded
func (l *PointLight) AttenuationDistance() float64 {
	if l.rng <= 0 {
		return math.Inf(1)
	}
	return l.rng
}

var _ RenderLight = (*PointLight)(nil)
