// Package accel provides ray-scene intersection. The renderer only
// depends on the Intersector contract, so the default two-level BVH can
// be swapped for another backend without touching path sampling.
package accel

import "github.com/sensorsim/go-bdpt-renderer/pkg/core"

// InvalidID marks an unset geometry, instance or primitive id in a Hit
const InvalidID = -1

// RayQuery describes a ray segment to intersect. TNear and TFar bound the
// accepted hit parameter range; callers move TNear forward to skip past
// masked surfaces.
type RayQuery struct {
	Origin core.Vec3
	Dir    core.Vec3
	TNear  float64
	TFar   float64
}

// At returns the point at parameter t along the query ray
func (q *RayQuery) At(t float64) core.Vec3 {
	return q.Origin.Add(q.Dir.Multiply(t))
}

// Hit reports a ray-surface intersection. U and V are the barycentric
// coordinates of the hit inside the primitive.
type Hit struct {
	GeomID int
	InstID int
	PrimID int
	U, V   float64
	T      float64
}

// Intersector finds the nearest intersection of a ray with the committed
// scene geometry. A miss returns ok = false and a Hit with invalid ids.
type Intersector interface {
	Intersect(q *RayQuery) (Hit, bool)
}
