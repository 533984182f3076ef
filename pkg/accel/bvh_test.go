package accel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

// unit square in the XY plane at z=0, facing +Z
func quadMesh() *MeshBVH {
	positions := []core.Vec3{
		{X: -1, Y: -1, Z: 0},
		{X: 1, Y: -1, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: -1, Y: 1, Z: 0},
	}
	faces := [][3]uint32{{0, 1, 2}, {0, 2, 3}}
	return NewMeshBVH(positions, faces)
}

func TestMeshBVH_HitAndMiss(t *testing.T) {
	mesh := quadMesh()

	hit, ok := mesh.Intersect(core.Vec3{X: 0.25, Y: 0.25, Z: -5}, core.Vec3{X: 0, Y: 0, Z: 1}, 0, math.MaxFloat64)
	if !ok {
		t.Fatal("expected a hit through the quad center")
	}
	if math.Abs(hit.T-5.0) > 1e-9 {
		t.Errorf("hit distance: expected 5, got %g", hit.T)
	}

	if _, ok = mesh.Intersect(core.Vec3{X: 3, Y: 3, Z: -5}, core.Vec3{X: 0, Y: 0, Z: 1}, 0, math.MaxFloat64); ok {
		t.Error("expected a miss outside the quad")
	}

	// Parallel ray never hits.
	if _, ok = mesh.Intersect(core.Vec3{X: 0, Y: 0, Z: -5}, core.Vec3{X: 1, Y: 0, Z: 0}, 0, math.MaxFloat64); ok {
		t.Error("expected a miss for a parallel ray")
	}
}

func TestMeshBVH_TRangeExclusive(t *testing.T) {
	mesh := quadMesh()

	// Hit lies exactly at tfar, interval is exclusive.
	if _, ok := mesh.Intersect(core.Vec3{X: 0, Y: 0, Z: -5}, core.Vec3{X: 0, Y: 0, Z: 1}, 0, 5.0); ok {
		t.Error("hit at t == tfar should be rejected")
	}
	// Hit lies exactly at tnear.
	if _, ok := mesh.Intersect(core.Vec3{X: 0, Y: 0, Z: -5}, core.Vec3{X: 0, Y: 0, Z: 1}, 5.0, math.MaxFloat64); ok {
		t.Error("hit at t == tnear should be rejected")
	}
	if _, ok := mesh.Intersect(core.Vec3{X: 0, Y: 0, Z: -5}, core.Vec3{X: 0, Y: 0, Z: 1}, 4.9, 5.1); !ok {
		t.Error("hit inside (tnear, tfar) should be accepted")
	}
}

func TestMeshBVH_Barycentrics(t *testing.T) {
	positions := []core.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	mesh := NewMeshBVH(positions, [][3]uint32{{0, 1, 2}})

	hit, ok := mesh.Intersect(core.Vec3{X: 0.3, Y: 0.4, Z: -1}, core.Vec3{X: 0, Y: 0, Z: 1}, 0, math.MaxFloat64)
	if !ok {
		t.Fatal("expected a hit")
	}
	// u weights vertex 1, v weights vertex 2.
	if math.Abs(hit.U-0.3) > 1e-9 || math.Abs(hit.V-0.4) > 1e-9 {
		t.Errorf("barycentrics: expected (0.3, 0.4), got (%g, %g)", hit.U, hit.V)
	}
}

func TestMeshBVH_ManyTriangles(t *testing.T) {
	// Enough triangles to force interior nodes, each a small square at
	// a distinct x offset.
	rng := rand.New(rand.NewSource(42))
	var positions []core.Vec3
	var faces [][3]uint32
	const n = 100
	for i := 0; i < n; i++ {
		x := float64(i) * 2.0
		base := uint32(len(positions))
		positions = append(positions,
			core.Vec3{X: x - 0.5, Y: -0.5, Z: 0},
			core.Vec3{X: x + 0.5, Y: -0.5, Z: 0},
			core.Vec3{X: x, Y: 0.5, Z: 0},
		)
		faces = append(faces, [3]uint32{base, base + 1, base + 2})
	}
	mesh := NewMeshBVH(positions, faces)

	for trial := 0; trial < 50; trial++ {
		target := rng.Intn(n)
		origin := core.Vec3{X: float64(target) * 2.0, Y: 0, Z: -3}
		hit, ok := mesh.Intersect(origin, core.Vec3{X: 0, Y: 0, Z: 1}, 0, math.MaxFloat64)
		if !ok {
			t.Fatalf("expected a hit on triangle %d", target)
		}
		if int(hit.PrimID) != target {
			t.Errorf("expected primitive %d, got %d", target, hit.PrimID)
		}
	}
}

func TestTwoLevelBVH_InstanceTransform(t *testing.T) {
	mesh := quadMesh()

	// Two instances of the same quad at different depths; the nearer one
	// must win and report its instance id.
	instances := []*Instance{
		{Mesh: mesh, GeomID: 0, InstID: 0, Transform: core.TranslationMat4(core.Vec3{Z: 10})},
		{Mesh: mesh, GeomID: 0, InstID: 1, Transform: core.TranslationMat4(core.Vec3{Z: 4})},
	}
	bvh := NewTwoLevelBVH(instances)

	q := &RayQuery{Origin: core.Vec3{Z: 0}, Dir: core.Vec3{Z: 1}, TNear: 0, TFar: math.MaxFloat64}
	hit, ok := bvh.Intersect(q)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.InstID != 1 {
		t.Errorf("expected the nearer instance 1, got %d", hit.InstID)
	}
	if math.Abs(hit.T-4.0) > 1e-9 {
		t.Errorf("world-space hit distance: expected 4, got %g", hit.T)
	}
}

func TestTwoLevelBVH_ScaledInstanceKeepsWorldT(t *testing.T) {
	mesh := quadMesh()
	// Scaling the instance must not distort the world-space t.
	instances := []*Instance{
		{Mesh: mesh, GeomID: 0, InstID: 0,
			Transform: core.TranslationMat4(core.Vec3{Z: 6}).Multiply(core.ScaleMat4(core.Vec3{X: 0.5, Y: 0.5, Z: 0.5}))},
	}
	bvh := NewTwoLevelBVH(instances)

	q := &RayQuery{Origin: core.Vec3{Z: 0}, Dir: core.Vec3{Z: 1}, TNear: 0, TFar: math.MaxFloat64}
	hit, ok := bvh.Intersect(q)
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(hit.T-6.0) > 1e-9 {
		t.Errorf("world-space hit distance: expected 6, got %g", hit.T)
	}
}
