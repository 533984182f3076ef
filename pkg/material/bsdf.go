package material

import (
	"math"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

// MinDielectricsF0 is the reflectance at normal incidence assumed for
// all dielectric surfaces
const MinDielectricsF0 = 0.04

// ggxD evaluates the GGX normal distribution for the given cosine and
// squared-roughness alpha
func ggxD(cos, alpha float64) float64 {
	cos2 := cos * cos
	alpha2 := alpha * alpha
	d := lerp(1.0, alpha2, cos2)
	return alpha2 / (math.Pi * d * d)
}

// ggxLambda is the Smith lambda term of the GGX distribution
func ggxLambda(a float64) float64 {
	return 0.5 * (math.Sqrt(1.0+1.0/(a*a)) - 1.0)
}

// smithG1 is the Smith masking term for one direction
func smithG1(cos, alpha float64) float64 {
	if alpha <= 0.0 && cos >= 0.99 {
		return 1.0
	}
	a := cos / (alpha * math.Sqrt(1.0-cos*cos))
	return 1.0 / (1.0 + ggxLambda(a))
}

// smithG2 combines shadowing and masking, height-correlated
func smithG2(shadow, mask float64) float64 {
	p := shadow * mask
	return p / (shadow + mask - p)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 {
	return clamp(v, 0.0, 1.0)
}

// schlickFresnel evaluates the Schlick approximation per channel for the
// given base reflectance and half-vector cosine
func schlickFresnel(f0 core.Vec3, vDotH float64) core.Vec3 {
	t := math.Pow(clamp01(1.0-vDotH), 5.0)
	return core.Vec3{
		X: lerp(t, 1.0, f0.X),
		Y: lerp(t, 1.0, f0.Y),
		Z: lerp(t, 1.0, f0.Z),
	}
}

// bsdfData gathers everything the GGX model needs at one surface point
type bsdfData struct {
	in     core.Vec3
	out    core.Vec3
	normal core.Vec3
	half   core.Vec3

	color          core.Vec4 // base color with alpha
	isTransmissive bool

	metallic float64
	alpha    float64 // roughness squared

	eta float64
}

// evaluateSampled computes the BRDF factor for a direction produced by
// importance sampling. The sampling pdf is folded in, so the returned
// factor already includes the division by the lobe selection probability
// nonSpecP and, for the specular lobe, the GGX density.
func (d *bsdfData) evaluateSampled(specular, transmitted bool, nonSpecP float64) core.Vec3 {
	var h core.Vec3
	if !transmitted {
		h = d.out.Subtract(d.in).Normalize()
	} else {
		h = d.half
	}

	vDotN := clamp(math.Abs(d.in.Dot(d.normal)), 0.0001, 1.0)
	lDotN := clamp(math.Abs(d.out.Dot(d.normal)), 0.0001, 1.0)
	nDotH := math.Abs(d.normal.Dot(h))
	vDotH := math.Abs(d.in.Dot(h))
	lDotH := math.Abs(d.out.Dot(h))

	color := d.color.Vec3()
	cDiff := color.Multiply(1.0 - d.metallic)
	f0 := core.Vec3{
		X: lerp(MinDielectricsF0, color.X, d.metallic),
		Y: lerp(MinDielectricsF0, color.Y, d.metallic),
		Z: lerp(MinDielectricsF0, color.Z, d.metallic),
	}
	f := schlickFresnel(f0, vDotH)

	g := smithG2(smithG1(vDotN, d.alpha), smithG1(lDotN, d.alpha))
	specScale := 0.25 * g / (vDotN * lDotN)
	var fSpec core.Vec3
	if transmitted {
		fSpec = core.Vec3{
			X: math.Max(0, (1.0-f.X)*specScale),
			Y: math.Max(0, (1.0-f.Y)*specScale),
			Z: math.Max(0, (1.0-f.Z)*specScale),
		}
	} else {
		fSpec = core.Vec3{
			X: math.Max(0, f.X*specScale),
			Y: math.Max(0, f.Y*specScale),
			Z: math.Max(0, f.Z*specScale),
		}
	}

	if specular {
		return fSpec.Multiply(4.0 * lDotH * vDotN / nDotH / lDotN / (1.0 - nonSpecP))
	}
	if transmitted {
		return fSpec.Multiply(4.0 * lDotH * vDotN / nDotH / lDotN / nonSpecP)
	}

	fDiff := core.Vec3{
		X: (1.0 - f.X) * cDiff.X / math.Pi,
		Y: (1.0 - f.Y) * cDiff.Y / math.Pi,
		Z: (1.0 - f.Z) * cDiff.Z / math.Pi,
	}
	return fDiff.Multiply(math.Pi / lDotN / nonSpecP)
}

// evaluateDirect computes the full BRDF for a fixed pair of directions,
// used for deterministic light connections
func (d *bsdfData) evaluateDirect() core.Vec3 {
	vDotN := -d.in.Dot(d.normal)
	lDotN := d.out.Dot(d.normal)

	h := d.out.Subtract(d.in).Normalize()
	vDotH := math.Abs(d.in.Dot(h))
	nDotH := math.Abs(d.normal.Dot(h))

	color := d.color.Vec3()
	f0 := core.Vec3{
		X: lerp(MinDielectricsF0, color.X, d.metallic),
		Y: lerp(MinDielectricsF0, color.Y, d.metallic),
		Z: lerp(MinDielectricsF0, color.Z, d.metallic),
	}
	f := schlickFresnel(f0, vDotH)

	if vDotN <= 0.0 || lDotN <= 0.0 {
		return core.Vec3{}
	}

	cDiff := color.Multiply(1.0 - d.metallic)
	fDiff := core.Vec3{
		X: (1.0 - f.X) * cDiff.X / math.Pi,
		Y: (1.0 - f.Y) * cDiff.Y / math.Pi,
		Z: (1.0 - f.Z) * cDiff.Z / math.Pi,
	}

	dTerm := ggxD(clamp01(nDotH), d.alpha)
	g := smithG2(smithG1(vDotN, d.alpha), smithG1(lDotN, d.alpha))
	specScale := 0.25 * dTerm * g / (vDotN * lDotN)
	fSpec := core.Vec3{
		X: math.Max(0, f.X*specScale),
		Y: math.Max(0, f.Y*specScale),
		Z: math.Max(0, f.Z*specScale),
	}

	return fDiff.Add(fSpec)
}

// sampleIndirect picks one of the diffuse, transmission or specular lobes
// proportionally to the view angle, samples an outgoing direction from it
// and returns the pdf-folded BRDF factor. A zero factor with ok = false
// means the sample was rejected.
func (d *bsdfData) sampleIndirect(s *core.RandomSampler) (brdf core.Vec3, ok bool) {
	vDotN := -d.in.Dot(d.normal)

	if vDotN < 0.0 {
		if !d.isTransmissive {
			return core.Vec3{}, false
		}
		d.normal = d.normal.Negate()
	}

	nonSpecP := 0.8*math.Abs(vDotN) + 0.1

	rnd := s.Float64()
	if rnd < nonSpecP {
		if rnd < nonSpecP*(1.0-d.color.W) {
			// transmission lobe
			eta := d.eta
			if vDotN < 0.0 {
				eta = 1.0 / eta
			}

			d.half = s.GGXHemisphere(d.normal, d.alpha*d.alpha).Normalize()
			out, refracted := d.in.Refract(d.half, eta)
			if !refracted || d.normal.Dot(out) >= 0.0 {
				return core.Vec3{}, false
			}
			d.out = out.Normalize()
			return d.evaluateSampled(false, true, nonSpecP), true
		}

		// diffuse lobe
		d.out = s.CosineSqrtHemisphere(d.normal).Normalize()
		return d.evaluateSampled(false, false, nonSpecP), true
	}

	// specular lobe
	d.half = s.GGXHemisphere(d.normal, d.alpha*d.alpha).Normalize()
	out := d.in.Reflect(d.half)
	if d.normal.Dot(out) <= 0.0 {
		return core.Vec3{}, false
	}
	d.out = out.Normalize()
	return d.evaluateSampled(true, false, nonSpecP), true
}
