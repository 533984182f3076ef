package accel

import (
	"sort"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

// Instance places a mesh BVH in the world. Transform maps mesh space to
// world space; rays are intersected after mapping through the inverse
// with an unnormalized direction, so hit parameters stay in world
// parametrization.
type Instance struct {
	Mesh      *MeshBVH
	GeomID    int
	InstID    int
	Transform core.Mat4

	inverse core.Mat4
	bounds  AABB
}

// TwoLevelBVH is the default Intersector: an instance-level BVH over
// world-space bounds, with per-mesh triangle BVHs below it.
type TwoLevelBVH struct {
	instances []*Instance
	root      *topNode
}

type topNode struct {
	bounds    AABB
	left      *topNode
	right     *topNode
	instances []*Instance // nil for internal nodes
}

// NewTwoLevelBVH builds the top-level hierarchy over the given instances.
// Instances with no triangles are skipped.
func NewTwoLevelBVH(instances []*Instance) *TwoLevelBVH {
	kept := make([]*Instance, 0, len(instances))
	for _, inst := range instances {
		if inst.Mesh == nil || inst.Mesh.root == nil {
			continue
		}
		inst.inverse = inst.Transform.Inverse()
		inst.bounds = worldBounds(inst.Mesh.Bounds(), inst.Transform)
		kept = append(kept, inst)
	}

	bvh := &TwoLevelBVH{instances: kept}
	if len(kept) > 0 {
		bvh.root = buildTopNode(kept)
	}
	return bvh
}

// worldBounds bounds the transformed corners of a mesh-local box
func worldBounds(local AABB, transform core.Mat4) AABB {
	corners := local.Corners()
	points := make([]core.Vec3, len(corners))
	for i, c := range corners {
		points[i] = transform.TransformPoint(c)
	}
	return NewAABBFromPoints(points...)
}

func buildTopNode(instances []*Instance) *topNode {
	bounds := instances[0].bounds
	for _, inst := range instances[1:] {
		bounds = bounds.Union(inst.bounds)
	}

	if len(instances) <= 2 {
		return &topNode{bounds: bounds, instances: instances}
	}

	axis := bounds.LongestAxis()
	sort.Slice(instances, func(i, j int) bool {
		ci := instances[i].bounds.Center()
		cj := instances[j].bounds.Center()
		switch axis {
		case 0:
			return ci.X < cj.X
		case 1:
			return ci.Y < cj.Y
		default:
			return ci.Z < cj.Z
		}
	})

	mid := len(instances) / 2
	return &topNode{
		bounds: bounds,
		left:   buildTopNode(instances[:mid]),
		right:  buildTopNode(instances[mid:]),
	}
}

// Intersect finds the nearest hit over all instances within the query's
// (TNear, TFar) range
func (bvh *TwoLevelBVH) Intersect(q *RayQuery) (Hit, bool) {
	best := Hit{GeomID: InvalidID, InstID: InvalidID, PrimID: InvalidID, T: q.TFar}
	if bvh.root == nil {
		return best, false
	}
	found := bvh.intersectNode(bvh.root, q, &best)
	return best, found
}

func (bvh *TwoLevelBVH) intersectNode(node *topNode, q *RayQuery, best *Hit) bool {
	if !node.bounds.Hit(q.Origin, q.Dir, q.TNear, best.T) {
		return false
	}

	if node.instances != nil {
		found := false
		for _, inst := range node.instances {
			localOrg := inst.inverse.TransformPoint(q.Origin)
			localDir := inst.inverse.TransformDirection(q.Dir)
			if hit, ok := inst.Mesh.Intersect(localOrg, localDir, q.TNear, best.T); ok {
				best.GeomID = inst.GeomID
				best.InstID = inst.InstID
				best.PrimID = hit.PrimID
				best.U = hit.U
				best.V = hit.V
				best.T = hit.T
				found = true
			}
		}
		return found
	}

	foundLeft := bvh.intersectNode(node.left, q, best)
	foundRight := bvh.intersectNode(node.right, q, best)
	return foundLeft || foundRight
}
