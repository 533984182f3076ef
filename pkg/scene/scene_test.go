package scene

import (
	"math"
	"testing"

	"github.com/sensorsim/go-bdpt-renderer/pkg/accel"
	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
	"github.com/sensorsim/go-bdpt-renderer/pkg/lights"
	"github.com/sensorsim/go-bdpt-renderer/pkg/material"
)

// quad in the XY plane at z=0, facing -Z towards a camera at negative z
func testQuad(id, matID int) *RenderMesh {
	m := NewRenderMesh(id, 4, 2, 1, matID)
	m.SetVertices([]core.Vec3{
		{X: -1, Y: -1, Z: 0},
		{X: 1, Y: -1, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: -1, Y: 1, Z: 0},
	})
	m.SetTexCoords(0, []core.Vec2{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	})
	m.SetFaces([][3]uint32{{0, 2, 1}, {0, 3, 2}})
	return m
}

func TestRenderScene_CommitAndIntersect(t *testing.T) {
	sc := NewRenderScene()
	sc.Allocate(1, 1, 1, 0, 0)
	sc.SetMesh(0, testQuad(0, 0))
	sc.SetInstance(0, core.IdentityMat4(), 0)
	sc.SetMaterial(0, material.NewDiffuseColor(core.NewVec4(0.5, 0.5, 0.5, 1)))

	var problems []string
	if err := sc.Commit(&problems); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if len(problems) != 0 {
		t.Errorf("unexpected commit problems: %v", problems)
	}

	q := &accel.RayQuery{
		Origin: core.Vec3{X: 0.25, Y: -0.25, Z: -3},
		Dir:    core.Vec3{Z: 1},
		TFar:   math.MaxFloat64,
	}
	hit, ok := sc.Intersect(q)
	if !ok {
		t.Fatal("expected the quad to be hit")
	}
	if math.Abs(hit.T-3.0) > 1e-9 {
		t.Errorf("hit distance: expected 3, got %g", hit.T)
	}

	var sp core.SurfacePoint
	mat := sc.ResolveHit(hit, &sp)
	if mat == nil {
		t.Fatal("ResolveHit returned no material")
	}
	expected := core.Vec3{X: 0.25, Y: -0.25, Z: 0}
	if sp.Position.Subtract(expected).Length() > 1e-9 {
		t.Errorf("hit position: expected %v, got %v", expected, sp.Position)
	}
	if math.Abs(math.Abs(sp.Normal.Z)-1.0) > 1e-9 {
		t.Errorf("quad normal should be along z, got %v", sp.Normal)
	}
	if _, ok := sp.TexCoord(0); !ok {
		t.Error("texture channel 0 should be defined")
	}
	if _, ok := sp.TexCoord(1); ok {
		t.Error("texture channel 1 should not exist")
	}
}

func TestRenderScene_FallbackForUnsetMaterial(t *testing.T) {
	sc := NewRenderScene()
	sc.Allocate(1, 1, 1, 0, 0)
	sc.SetMesh(0, testQuad(0, 0))
	sc.SetInstance(0, core.IdentityMat4(), 0)
	// Slot 0 deliberately left empty.

	var problems []string
	if err := sc.Commit(&problems); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if len(problems) == 0 {
		t.Error("expected a problem report for the unset material")
	}

	q := &accel.RayQuery{Origin: core.Vec3{Z: -3}, Dir: core.Vec3{Z: 1}, TFar: math.MaxFloat64}
	hit, ok := sc.Intersect(q)
	if !ok {
		t.Fatal("expected a hit")
	}
	var sp core.SurfacePoint
	mat := sc.ResolveHit(hit, &sp)
	brdf := mat.GetBrdf(core.Vec3{Z: 1}, &sp, core.Vec3{Z: -1}, false)
	if brdf.Subtract(core.MissingMaterialColor).Length() > 1e-9 {
		t.Errorf("expected the loud fallback color, got %v", brdf)
	}
}

func TestRenderScene_SilentOutOfRangeSetters(t *testing.T) {
	sc := NewRenderScene()
	sc.Allocate(1, 1, 1, 1, 1)

	// None of these may panic or change anything.
	sc.SetMesh(-1, testQuad(0, 0))
	sc.SetMesh(5, testQuad(0, 0))
	sc.SetInstance(7, core.IdentityMat4(), 0)
	sc.SetMaterial(3, material.NewDiffuseColor(core.NewVec4(1, 1, 1, 1)))
	sc.SetLight(2, lights.NewPointLight(core.Vec3{}, core.NewVec3(1, 1, 1), 0))
	sc.SetTexture(9, nil)

	// The fallback slot is not assignable either.
	fallback := sc.Material(1)
	sc.SetMaterial(1, material.NewDiffuseColor(core.NewVec4(0, 0, 0, 1)))
	if sc.Material(1) != fallback {
		t.Error("the fallback slot must not be writable")
	}
}

func TestRenderScene_AllInvalidInstancesFailCommit(t *testing.T) {
	sc := NewRenderScene()
	sc.Allocate(1, 2, 1, 0, 0)
	// No meshes installed; both instances point at nothing.
	sc.SetInstance(0, core.IdentityMat4(), 0)
	sc.SetInstance(1, core.IdentityMat4(), 5)

	var problems []string
	if err := sc.Commit(&problems); err == nil {
		t.Fatal("commit with no valid instances should fail")
	}
}

func TestRenderScene_PartialInvalidInstancesSurvive(t *testing.T) {
	sc := NewRenderScene()
	sc.Allocate(1, 2, 1, 0, 0)
	sc.SetMesh(0, testQuad(0, 0))
	sc.SetInstance(0, core.IdentityMat4(), 0)
	sc.SetInstance(1, core.IdentityMat4(), 9) // dangling mesh reference

	var problems []string
	if err := sc.Commit(&problems); err != nil {
		t.Fatalf("commit with one valid instance should succeed: %v", err)
	}
	if len(problems) == 0 {
		t.Error("expected a report about the invalid instance")
	}
}

func TestRenderScene_LightSampling(t *testing.T) {
	sc := NewRenderScene()
	sc.Allocate(1, 1, 1, 0, 2)
	sc.SetMesh(0, testQuad(0, 0))
	sc.SetInstance(0, core.IdentityMat4(), 0)
	sc.SetLight(0, lights.NewPointLight(core.Vec3{}, core.NewVec3(1, 1, 1), 0))
	sc.SetLight(1, lights.NewPointLight(core.Vec3{}, core.NewVec3(3, 3, 3), 0))

	if err := sc.Commit(nil); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	// The second light carries three quarters of the power.
	if pdf := sc.LightPdf(1); math.Abs(pdf-0.75) > 1e-12 {
		t.Errorf("light 1 pdf: expected 0.75, got %g", pdf)
	}
	l, pdf := sc.SampleLight(0.9)
	if l != sc.Light(1) {
		t.Error("u = 0.9 should select the stronger light")
	}
	if math.Abs(pdf-0.75) > 1e-12 {
		t.Errorf("selection pdf: expected 0.75, got %g", pdf)
	}
}

func TestRenderMesh_NormalSynthesis(t *testing.T) {
	m := testQuad(0, 0)
	if !m.Commit(-1) {
		t.Fatal("commit failed")
	}
	// Faces wind clockwise seen from +Z, so the synthesized normals
	// point along -Z.
	for i, n := range m.Normals {
		if math.Abs(n.Length()-1.0) > 1e-9 {
			t.Errorf("normal %d not unit length: %g", i, n.Length())
		}
		if math.Abs(math.Abs(n.Z)-1.0) > 1e-9 {
			t.Errorf("normal %d should be along z, got %v", i, n)
		}
	}
}

func TestRenderMesh_TangentsFollowUV(t *testing.T) {
	// Counter-clockwise quad facing +Z with U along +X and V along +Y.
	m := NewRenderMesh(0, 4, 2, 1, 0)
	m.SetVertices([]core.Vec3{
		{X: -1, Y: -1, Z: 0},
		{X: 1, Y: -1, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: -1, Y: 1, Z: 0},
	})
	m.SetTexCoords(0, []core.Vec2{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	})
	m.SetFaces([][3]uint32{{0, 1, 2}, {0, 2, 3}})

	// Channel 0 is the normal-map channel, so tangents follow its UVs.
	if !m.Commit(0) {
		t.Fatal("commit failed")
	}
	for i, tan := range m.Tangents {
		v := tan.Vec3()
		if math.Abs(v.Length()-1.0) > 1e-9 {
			t.Errorf("tangent %d not unit length: %g", i, v.Length())
		}
		// U grows along +X on this quad.
		if math.Abs(v.X-1.0) > 1e-6 {
			t.Errorf("tangent %d should follow the U axis, got %v", i, v)
		}
		if tan.W != 1.0 {
			t.Errorf("tangent %d handedness: expected +1, got %g", i, tan.W)
		}
	}
}

func TestRenderMesh_AxisTangentsOrthogonal(t *testing.T) {
	m := testQuad(0, 0)
	if !m.Commit(-1) {
		t.Fatal("commit failed")
	}
	for i, tan := range m.Tangents {
		if math.Abs(tan.Vec3().Dot(m.Normals[i])) > 1e-9 {
			t.Errorf("tangent %d not orthogonal to its normal", i)
		}
	}
}

func TestUniformBackground_RadianceAndAverage(t *testing.T) {
	bg := NewUniformBackground(core.NewVec3(0.2, 0.4, 0.6))
	dirs := []core.Vec3{
		{X: 1}, {Y: -1}, {X: 0.5, Y: 0.5, Z: -0.7},
	}
	for _, d := range dirs {
		if bg.Radiance(d) != core.NewVec3(0.2, 0.4, 0.6) {
			t.Errorf("radiance toward %v: got %v", d, bg.Radiance(d))
		}
	}
	if bg.Average() != core.NewVec3(0.2, 0.4, 0.6) {
		t.Errorf("uniform average should equal the radiance, got %v", bg.Average())
	}

	def := NewDefaultBackground()
	if def.Radiance(core.Vec3{X: 1}) != core.NewVec3(100, 100, 100) {
		t.Errorf("default background radiance: got %v", def.Radiance(core.Vec3{X: 1}))
	}
}
