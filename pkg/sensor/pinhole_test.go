package sensor

import (
	"math"
	"testing"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

func forwardViewPoint() ViewPoint {
	return NewViewPoint(
		core.NewVec3(0, 0, -5),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, 0, 1),
	)
}

func TestPinholeCamera_CenterRayLooksForward(t *testing.T) {
	cam := NewPinholeCamera(forwardViewPoint(), 100, 100)
	s := core.NewRandomSampler(42)

	// The center pixel ray can jitter at most half a pixel off axis.
	ray := cam.GetRay(50, 50, s)
	if ray.Origin != core.NewVec3(0, 0, -5) {
		t.Errorf("ray origin: expected the camera position, got %v", ray.Origin)
	}
	if ray.Dir.Z < 0.99 {
		t.Errorf("center ray should look along +z, got %v", ray.Dir)
	}
	if math.Abs(ray.Dir.Length()-1.0) > 1e-9 {
		t.Errorf("ray direction not unit length: %g", ray.Dir.Length())
	}
	if ray.Index != 50*100+50 {
		t.Errorf("pixel index: expected %d, got %d", 50*100+50, ray.Index)
	}
}

func TestPinholeCamera_CornerRaysDiverge(t *testing.T) {
	cam := NewPinholeCamera(forwardViewPoint(), 100, 100)
	s := core.NewRandomSampler(42)

	left := cam.GetRay(0, 50, s)
	right := cam.GetRay(99, 50, s)
	if left.Dir.X >= 0 {
		t.Errorf("leftmost column should have negative x direction, got %v", left.Dir)
	}
	if right.Dir.X <= 0 {
		t.Errorf("rightmost column should have positive x direction, got %v", right.Dir)
	}
}

func TestPinholeCamera_FieldOfView(t *testing.T) {
	cam := NewPinholeCamera(forwardViewPoint(), 200, 100)
	cam.SetYFoV(90.0)
	// At 90 degrees the focal distance equals the half height.
	if math.Abs(cam.Focus()-50.0) > 1e-9 {
		t.Errorf("focus at 90 degree fov: expected 50, got %g", cam.Focus())
	}

	// Out-of-range values leave the focus untouched.
	cam.SetYFoV(0)
	cam.SetYFoV(180)
	if math.Abs(cam.Focus()-50.0) > 1e-9 {
		t.Errorf("invalid fov changed the focus to %g", cam.Focus())
	}
}

func TestPinholeCamera_AccumulateAndAverage(t *testing.T) {
	cam := NewPinholeCamera(forwardViewPoint(), 4, 4)
	cam.Init(4, 4)

	out := RenderRay{Index: 5}
	cam.Hit(core.NewVec3(1, 2, 3), RenderRay{}, &out)
	cam.Hit(core.NewVec3(3, 2, 1), RenderRay{}, &out)
	cam.Stop()

	got := cam.Impression(1, 1)
	expected := core.NewVec3(2, 2, 2)
	if got.Subtract(expected).Length() > 1e-12 {
		t.Errorf("averaged pixel: expected %v, got %v", expected, got)
	}

	// Pixels that never saw a sample stay black.
	if black := cam.Impression(0, 0); black.Length() != 0 {
		t.Errorf("untouched pixel should be zero, got %v", black)
	}
}

func TestPinholeCamera_HitIgnoresBadIndices(t *testing.T) {
	cam := NewPinholeCamera(forwardViewPoint(), 2, 2)
	cam.Init(2, 2)

	cam.Hit(core.NewVec3(1, 1, 1), RenderRay{}, nil)
	out := RenderRay{Index: -1}
	cam.Hit(core.NewVec3(1, 1, 1), RenderRay{}, &out)
	out.Index = 100
	cam.Hit(core.NewVec3(1, 1, 1), RenderRay{}, &out)

	cam.Stop()
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if cam.Impression(x, y).Length() != 0 {
				t.Fatalf("pixel (%d,%d) was written by an invalid hit", x, y)
			}
		}
	}
}

func TestPinholeCamera_ImageGamma(t *testing.T) {
	cam := NewPinholeCamera(forwardViewPoint(), 2, 1)
	cam.Init(2, 1)

	out := RenderRay{Index: 0}
	cam.Hit(core.NewVec3(0.25, 0.25, 0.25), RenderRay{}, &out)
	cam.Stop()

	img := cam.Image(0.5)
	r, _, _, _ := img.At(0, 0).RGBA()
	// 0.25^0.5 = 0.5 maps to 128.
	if got := int(r >> 8); got < 127 || got > 129 {
		t.Errorf("gamma mapped value: expected ~128, got %d", got)
	}

	a := img.RGBAAt(1, 0)
	if a.R != 0 || a.G != 0 || a.B != 0 || a.A != 255 {
		t.Errorf("empty pixel should be opaque black, got %v", a)
	}
}

func TestLookAt_FrameOrthonormal(t *testing.T) {
	vp := LookAt(core.NewVec3(1, 2, 3), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))
	fwd := vp.Rotation.TransformVec(core.NewVec3(0, 0, 1))
	expected := core.NewVec3(-1, -2, -3).Normalize()
	if fwd.Subtract(expected).Length() > 1e-9 {
		t.Errorf("forward axis: expected %v, got %v", expected, fwd)
	}

	x := vp.Rotation.TransformVec(core.NewVec3(1, 0, 0))
	y := vp.Rotation.TransformVec(core.NewVec3(0, 1, 0))
	if math.Abs(x.Dot(y)) > 1e-9 || math.Abs(x.Dot(fwd)) > 1e-9 {
		t.Error("rotation axes are not orthogonal")
	}
}
