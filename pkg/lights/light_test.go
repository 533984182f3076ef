package lights

import (
	"math"
	"testing"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

func TestAttenuationFactor_UnboundedLaws(t *testing.T) {
	inf := math.Inf(1)

	if got := AttenuationFactor(4.0, inf, 1, 0.01); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("law 1 at d=4: expected 0.25, got %g", got)
	}
	if got := AttenuationFactor(4.0, inf, 2, 0.01); math.Abs(got-0.0625) > 1e-12 {
		t.Errorf("law 2 at d=4: expected 0.0625, got %g", got)
	}
	if got := AttenuationFactor(4.0, inf, 0, 0.01); got != 1.0 {
		t.Errorf("constant law: expected 1, got %g", got)
	}
}

func TestAttenuationFactor_MinDistanceClamp(t *testing.T) {
	inf := math.Inf(1)

	// Distances under the clamp behave like the clamp itself, keeping
	// the inverse laws finite near the light.
	at := AttenuationFactor(1e-9, inf, 2, 0.01)
	ref := AttenuationFactor(0.01, inf, 2, 0.01)
	if at != ref {
		t.Errorf("clamped attenuation: expected %g, got %g", ref, at)
	}
}

func TestAttenuationFactor_BoundedLaws(t *testing.T) {
	// At half range the remainder is 0.5.
	if got := AttenuationFactor(5.0, 10.0, 1, 0.01); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("bounded law 1: expected 0.5, got %g", got)
	}
	if got := AttenuationFactor(5.0, 10.0, 2, 0.01); math.Abs(got-math.Sqrt(0.5)) > 1e-12 {
		t.Errorf("bounded law 2: expected sqrt(0.5), got %g", got)
	}
	// The step law is 1 inside the range, 0 outside.
	if got := AttenuationFactor(5.0, 10.0, 0, 0.01); got != 1.0 {
		t.Errorf("step law inside range: expected 1, got %g", got)
	}
	if got := AttenuationFactor(15.0, 10.0, 0, 0.01); got != 0.0 {
		t.Errorf("step law outside range: expected 0, got %g", got)
	}
	// Past the range the linear laws bottom out at zero.
	if got := AttenuationFactor(15.0, 10.0, 1, 0.01); got != 0.0 {
		t.Errorf("bounded law 1 outside range: expected 0, got %g", got)
	}
}

func TestPointLight_EmissionAndPdf(t *testing.T) {
	l := NewPointLight(core.NewVec3(1, 2, 3), core.NewVec3(2, 4, 8), 0)
	s := core.NewRandomSampler(42)

	origin, dir, pdf, radiance := l.RandomRay(s)
	if origin != l.Position() {
		t.Errorf("ray origin: expected %v, got %v", l.Position(), origin)
	}
	if math.Abs(dir.Length()-1.0) > 1e-9 {
		t.Errorf("ray direction not unit length: %g", dir.Length())
	}
	if math.Abs(pdf-1.0/(4.0*math.Pi)) > 1e-12 {
		t.Errorf("emission pdf: expected 1/4pi, got %g", pdf)
	}
	if radiance != l.Intensity() {
		t.Errorf("emitted radiance: expected %v, got %v", l.Intensity(), radiance)
	}

	pdf2, rad2 := l.RadianceAlongRay(core.NewVec3(0, 1, 0))
	if pdf2 != pdf || rad2 != radiance {
		t.Error("directional query should match the isotropic emission")
	}
}

func TestPointLight_PowerWeighting(t *testing.T) {
	white := NewPointLight(core.Vec3{}, core.NewVec3(1, 1, 1), 0)
	if math.Abs(white.Power()-1.0) > 1e-12 {
		t.Errorf("white light power: expected 1, got %g", white.Power())
	}

	green := NewPointLight(core.Vec3{}, core.NewVec3(0, 1, 0), 0)
	red := NewPointLight(core.Vec3{}, core.NewVec3(1, 0, 0), 0)
	if green.Power() <= red.Power() {
		t.Error("green should outweigh red in the power heuristic")
	}
}

func TestPointLight_Range(t *testing.T) {
	unbounded := NewPointLight(core.Vec3{}, core.NewVec3(1, 1, 1), 0)
	if !math.IsInf(unbounded.AttenuationDistance(), 1) {
		t.Errorf("range 0 should be unbounded, got %g", unbounded.AttenuationDistance())
	}
	bounded := NewPointLight(core.Vec3{}, core.NewVec3(1, 1, 1), 25.0)
	if bounded.AttenuationDistance() != 25.0 {
		t.Errorf("expected range 25, got %g", bounded.AttenuationDistance())
	}
}
