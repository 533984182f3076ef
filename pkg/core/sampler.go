package core

import (
	"math"
	"math/rand"
)

// RandomSampler generates the random numbers and directions used during
// path sampling. Each render goroutine owns its own sampler so sampling
// is deterministic for a fixed goroutine count and seed.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler seeded with the given value
func NewRandomSampler(seed int64) *RandomSampler {
	return &RandomSampler{random: rand.New(rand.NewSource(seed))}
}

// Float64 returns a random value in [0, 1)
func (s *RandomSampler) Float64() float64 {
	return s.random.Float64()
}

// onb builds an orthonormal basis around the normal and maps the local
// coordinates (x, y, z) into world space, z along the normal.
func onb(normal Vec3, x, y, z float64) Vec3 {
	var nt Vec3
	if math.Abs(normal.X) > 0.1 {
		nt = NewVec3(0, 1, 0)
	} else {
		nt = NewVec3(1, 0, 0)
	}
	tangent := nt.Cross(normal).Normalize()
	bitangent := normal.Cross(tangent)
	return tangent.Multiply(x).Add(bitangent.Multiply(y)).Add(normal.Multiply(z))
}

// UniformHemisphere generates a direction uniformly distributed over the
// hemisphere around the normal (cosine of the polar angle is uniform)
func (s *RandomSampler) UniformHemisphere(normal Vec3) Vec3 {
	cosTheta := s.random.Float64()
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	phi := 2.0 * math.Pi * s.random.Float64()
	return onb(normal, sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
}

// CosineSqrtHemisphere generates a cosine-weighted direction around the
// normal, cos(theta) = sqrt(u)
func (s *RandomSampler) CosineSqrtHemisphere(normal Vec3) Vec3 {
	cosTheta := math.Sqrt(s.random.Float64())
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	phi := 2.0 * math.Pi * s.random.Float64()
	return onb(normal, sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
}

// GGXHemisphere generates a half-vector around the normal distributed
// according to the GGX normal distribution with the given alpha squared
func (s *RandomSampler) GGXHemisphere(normal Vec3, alpha2 float64) Vec3 {
	u := s.random.Float64()
	cosTheta := math.Sqrt((1.0 - u) / (1.0 - (1.0-alpha2)*u))
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	phi := 2.0 * math.Pi * s.random.Float64()
	return onb(normal, sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
}

// UniformSphere generates a direction uniformly distributed over the unit
// sphere using rejection sampling
func (s *RandomSampler) UniformSphere() Vec3 {
	for {
		v := Vec3{
			X: 2.0*s.random.Float64() - 1.0,
			Y: 2.0*s.random.Float64() - 1.0,
			Z: 2.0*s.random.Float64() - 1.0,
		}
		l2 := v.LengthSquared()
		if l2 > 1e-12 && l2 <= 1.0 {
			return v.Multiply(1.0 / math.Sqrt(l2))
		}
	}
}
