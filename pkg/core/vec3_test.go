package core

import (
	"math"
	"testing"
)

func TestVec3_Reflect(t *testing.T) {
	n := NewVec3(0, 1, 0)
	v := NewVec3(1, -1, 0).Normalize()
	r := v.Reflect(n)
	expected := NewVec3(1, 1, 0).Normalize()
	if r.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Reflect: expected %v, got %v", expected, r)
	}
}

func TestVec3_RefractStraightThrough(t *testing.T) {
	n := NewVec3(0, 1, 0)
	v := NewVec3(0, -1, 0)
	r, ok := v.Refract(n, 1.0)
	if !ok {
		t.Fatal("refraction at eta 1 should always succeed")
	}
	if r.Subtract(v).Length() > 1e-12 {
		t.Errorf("eta 1 refraction should not bend the ray: got %v", r)
	}
}

func TestVec3_RefractTotalInternal(t *testing.T) {
	n := NewVec3(0, 1, 0)
	// Grazing incidence from the dense side.
	v := NewVec3(1, -0.1, 0).Normalize()
	if _, ok := v.Refract(n, 1.5); ok {
		t.Error("expected total internal reflection at grazing incidence with eta > 1")
	}
}

func TestVec3_RefractSnell(t *testing.T) {
	n := NewVec3(0, 1, 0)
	eta := 1.0 / 1.5
	v := NewVec3(1, -1, 0).Normalize()
	r, ok := v.Refract(n, eta)
	if !ok {
		t.Fatal("expected refraction into the denser medium to succeed")
	}
	sinIn := math.Abs(v.X)
	sinOut := math.Abs(r.Normalize().X)
	if math.Abs(sinOut-eta*sinIn) > 1e-12 {
		t.Errorf("Snell's law violated: sin_out %g, expected %g", sinOut, eta*sinIn)
	}
}

func TestVec3_IntensityAndPower(t *testing.T) {
	v := NewVec3(1, 1, 1)
	if math.Abs(v.Intensity()-1.0) > 1e-12 {
		t.Errorf("white intensity: expected 1, got %g", v.Intensity())
	}
	if math.Abs(v.Power()-1.0) > 1e-12 {
		t.Errorf("white power: expected 1, got %g", v.Power())
	}
	g := NewVec3(0, 1, 0)
	if g.Intensity() <= NewVec3(1, 0, 0).Intensity() {
		t.Error("green should weigh more than red in the intensity sum")
	}
}

func TestVec3_GammaCorrect(t *testing.T) {
	v := NewVec3(0.25, 1.0, 0.0).GammaCorrect(0.5)
	expected := NewVec3(0.5, 1.0, 0.0)
	if v.Subtract(expected).Length() > 1e-12 {
		t.Errorf("gamma 0.5: expected %v, got %v", expected, v)
	}
}

func TestVec3_MaxAbsComponent(t *testing.T) {
	if got := NewVec3(-5, 2, 3).MaxAbsComponent(); got != 5 {
		t.Errorf("expected 5, got %g", got)
	}
}
