package accel

import (
	"sort"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

// Leaf threshold: nodes with this many or fewer triangles become leaves
const leafThreshold = 8

// MeshBVH is a bounding volume hierarchy over the triangles of a single
// mesh, built once at scene commit and shared by all instances of the
// mesh. Rays are intersected in mesh-local space.
type MeshBVH struct {
	positions []core.Vec3
	faces     [][3]uint32
	root      *meshNode
	bounds    AABB
}

type meshNode struct {
	bounds AABB
	left   *meshNode
	right  *meshNode
	tris   []int32 // triangle indices for leaf nodes, nil for internal
}

// NewMeshBVH builds a BVH over the given triangle list. The position and
// face slices are referenced, not copied, and must stay immutable.
func NewMeshBVH(positions []core.Vec3, faces [][3]uint32) *MeshBVH {
	bvh := &MeshBVH{positions: positions, faces: faces}
	if len(faces) == 0 {
		return bvh
	}

	tris := make([]int32, len(faces))
	bounds := make([]AABB, len(faces))
	for i := range faces {
		tris[i] = int32(i)
		f := faces[i]
		bounds[i] = NewAABBFromPoints(positions[f[0]], positions[f[1]], positions[f[2]])
	}

	bvh.root = buildMeshNode(tris, bounds)
	bvh.bounds = bvh.root.bounds
	return bvh
}

// Bounds returns the mesh-local bounding box of all triangles
func (bvh *MeshBVH) Bounds() AABB {
	return bvh.bounds
}

// buildMeshNode recursively builds nodes with a median split along the
// longest axis, the same strategy the top-level instance BVH uses
func buildMeshNode(tris []int32, bounds []AABB) *meshNode {
	nodeBounds := bounds[tris[0]]
	for _, t := range tris[1:] {
		nodeBounds = nodeBounds.Union(bounds[t])
	}

	if len(tris) <= leafThreshold {
		return &meshNode{bounds: nodeBounds, tris: tris}
	}

	axis := nodeBounds.LongestAxis()
	sort.Slice(tris, func(i, j int) bool {
		ci := bounds[tris[i]].Center()
		cj := bounds[tris[j]].Center()
		switch axis {
		case 0:
			return ci.X < cj.X
		case 1:
			return ci.Y < cj.Y
		default:
			return ci.Z < cj.Z
		}
	})

	mid := len(tris) / 2
	return &meshNode{
		bounds: nodeBounds,
		left:   buildMeshNode(tris[:mid], bounds),
		right:  buildMeshNode(tris[mid:], bounds),
	}
}

// Intersect finds the nearest triangle hit within (tNear, tFar). The hit
// carries the triangle index and barycentric U, V.
func (bvh *MeshBVH) Intersect(origin, dir core.Vec3, tNear, tFar float64) (Hit, bool) {
	if bvh.root == nil {
		return Hit{GeomID: InvalidID, InstID: InvalidID, PrimID: InvalidID}, false
	}
	best := Hit{GeomID: InvalidID, InstID: InvalidID, PrimID: InvalidID, T: tFar}
	found := bvh.intersectNode(bvh.root, origin, dir, tNear, &best)
	return best, found
}

func (bvh *MeshBVH) intersectNode(node *meshNode, origin, dir core.Vec3, tNear float64, best *Hit) bool {
	if !node.bounds.Hit(origin, dir, tNear, best.T) {
		return false
	}

	if node.tris != nil {
		found := false
		for _, tri := range node.tris {
			if t, u, v, ok := bvh.intersectTriangle(int(tri), origin, dir, tNear, best.T); ok {
				best.PrimID = int(tri)
				best.U = u
				best.V = v
				best.T = t
				found = true
			}
		}
		return found
	}

	foundLeft := bvh.intersectNode(node.left, origin, dir, tNear, best)
	foundRight := bvh.intersectNode(node.right, origin, dir, tNear, best)
	return foundLeft || foundRight
}

// intersectTriangle performs the Moller-Trumbore test against one triangle
func (bvh *MeshBVH) intersectTriangle(tri int, origin, dir core.Vec3, tNear, tFar float64) (t, u, v float64, ok bool) {
	f := bvh.faces[tri]
	v0 := bvh.positions[f[0]]
	v1 := bvh.positions[f[1]]
	v2 := bvh.positions[f[2]]

	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)
	h := dir.Cross(edge2)
	a := edge1.Dot(h)

	// Ray parallel to the triangle plane
	if a > -1e-12 && a < 1e-12 {
		return 0, 0, 0, false
	}

	invA := 1.0 / a
	s := origin.Subtract(v0)
	u = s.Dot(h) * invA
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v = dir.Dot(q) * invA
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = edge2.Dot(q) * invA
	if t <= tNear || t >= tFar {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
