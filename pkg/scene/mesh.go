package scene

import (
	"math"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

// RenderMesh stores triangle geometry as typed per-attribute slices:
// positions, normals, tangents with handedness, per-channel texture
// coordinates and the face index list. Normals and tangents missing at
// commit are synthesized from the geometry.
type RenderMesh struct {
	ID    int
	MatID int

	Positions []core.Vec3
	Normals   []core.Vec3
	Tangents  []core.Vec4
	TexCoords [][]core.Vec2 // one slice per texture channel, nil when undefined
	Faces     [][3]uint32

	normalsDefined  bool
	tangentsDefined bool
	committed       bool
}

// NewRenderMesh allocates a mesh with the given vertex, face and texture
// channel counts
func NewRenderMesh(id, vertN, faceN, texChannelsN, matID int) *RenderMesh {
	return &RenderMesh{
		ID:        id,
		MatID:     matID,
		Positions: make([]core.Vec3, vertN),
		Normals:   make([]core.Vec3, vertN),
		Tangents:  make([]core.Vec4, vertN),
		TexCoords: make([][]core.Vec2, texChannelsN),
		Faces:     make([][3]uint32, faceN),
	}
}

// SetVertices copies the vertex positions
func (m *RenderMesh) SetVertices(v []core.Vec3) {
	copy(m.Positions, v)
}

// SetNormals copies the vertex normals and marks them as provided
func (m *RenderMesh) SetNormals(n []core.Vec3) {
	copy(m.Normals, n)
	m.normalsDefined = true
}

// SetTangents copies the vertex tangents and marks them as provided
func (m *RenderMesh) SetTangents(t []core.Vec4) {
	copy(m.Tangents, t)
	m.tangentsDefined = true
}

// SetTexCoords installs the texture coordinates for one channel
func (m *RenderMesh) SetTexCoords(channel int, tc []core.Vec2) {
	if channel < 0 || channel >= len(m.TexCoords) {
		return
	}
	uv := make([]core.Vec2, len(m.Positions))
	copy(uv, tc)
	m.TexCoords[channel] = uv
}

// SetFaces copies the triangle index list
func (m *RenderMesh) SetFaces(f [][3]uint32) {
	copy(m.Faces, f)
}

// IsValid reports whether the mesh has geometry to render
func (m *RenderMesh) IsValid() bool {
	return len(m.Positions) > 0 && len(m.Faces) > 0
}

// Commit validates the mesh and synthesizes any missing normals and
// tangents. normalTexCh is the texture channel of the material's normal
// map; when it holds texture coordinates the tangents follow the UV
// layout, otherwise they are axis-aligned picks against the normal.
func (m *RenderMesh) Commit(normalTexCh int) bool {
	if !m.IsValid() {
		return false
	}
	if m.committed {
		return true
	}

	if !m.normalsDefined {
		m.computeNormals()
	}
	if !m.tangentsDefined {
		if normalTexCh >= 0 && normalTexCh < len(m.TexCoords) && m.TexCoords[normalTexCh] != nil {
			m.computeTangentsFromUV(normalTexCh)
		} else {
			m.computeTangents()
		}
	}
	m.committed = true
	return true
}

// computeNormals accumulates face normals onto the vertices and
// normalizes the result
func (m *RenderMesh) computeNormals() {
	for i := range m.Normals {
		m.Normals[i] = core.Vec3{Z: core.Epsilon}
	}
	for _, f := range m.Faces {
		p0 := m.Positions[f[0]]
		p1 := m.Positions[f[1]]
		p2 := m.Positions[f[2]]
		n := p1.Subtract(p0).Cross(p2.Subtract(p1))
		if n.LengthSquared() > core.Epsilon {
			n = n.Normalize()
		}
		for _, vi := range f {
			m.Normals[vi] = m.Normals[vi].Add(n)
		}
	}
	for i := range m.Normals {
		m.Normals[i] = m.Normals[i].Normalize()
	}
	m.normalsDefined = true
}

// computeTangentsFromUV derives per-vertex tangents from the UV layout of
// the given texture channel: the positional derivatives along U and V
// are accumulated per vertex, orthogonalized against the normal, and the
// handedness is taken from the accumulated V direction.
func (m *RenderMesh) computeTangentsFromUV(channel int) {
	uvs := m.TexCoords[channel]
	tv := make([]core.Vec3, len(m.Positions))
	bv := make([]core.Vec3, len(m.Positions))

	for _, f := range m.Faces {
		v0 := m.Positions[f[1]].Subtract(m.Positions[f[0]])
		v1 := m.Positions[f[2]].Subtract(m.Positions[f[0]])
		t0 := uvs[f[1]].Subtract(uvs[f[0]])
		t1 := uvs[f[2]].Subtract(uvs[f[0]])

		det := t0.X*t1.Y - t1.X*t0.Y
		if det < core.Epsilon {
			continue
		}
		r := 1.0 / det
		udir := v0.Multiply(r * t1.Y).Subtract(v1.Multiply(r * t0.Y))
		vdir := v1.Multiply(r * t0.X).Subtract(v0.Multiply(r * t1.X))

		for _, vi := range f {
			tv[vi] = tv[vi].Add(udir)
			bv[vi] = bv[vi].Add(vdir)
		}
	}

	for i := range m.Positions {
		n := m.Normals[i]
		tan := tv[i].Subtract(n.Multiply(n.Dot(tv[i])))
		if tan.Length() <= core.Epsilon {
			m.Tangents[i] = axisTangent(n)
		} else {
			tan = tan.Normalize()
			w := 1.0
			if n.Cross(tan).Dot(bv[i]) < 0 {
				w = -1.0
			}
			m.Tangents[i] = core.Vec4{X: tan.X, Y: tan.Y, Z: tan.Z, W: w}
		}
	}
	m.tangentsDefined = true
}

// computeTangents assigns axis-aligned tangents when no UV layout exists
func (m *RenderMesh) computeTangents() {
	for i := range m.Positions {
		m.Tangents[i] = axisTangent(m.Normals[i])
	}
	m.tangentsDefined = true
}

// axisTangent picks a world axis not parallel to the normal so tangents
// over a smooth surface stay aligned
func axisTangent(n core.Vec3) core.Vec4 {
	var t core.Vec3
	switch {
	case n.Z < 0.95 && n.Z > -0.95:
		t = core.Vec3{Z: 1}.Cross(n)
	case n.Y < 0.95 && n.Y > -0.95:
		t = core.Vec3{Y: 1}.Cross(n)
	default:
		t = core.Vec3{X: 1}.Cross(n)
	}
	t = t.Normalize()
	return core.Vec4{X: t.X, Y: t.Y, Z: t.Z, W: 1}
}

// TexCoord interpolates the texture coordinates of one channel at the
// given barycentric coordinates
func (m *RenderMesh) TexCoord(bary core.Vec3, faceID, channel int) (core.Vec2, bool) {
	if faceID < 0 || faceID >= len(m.Faces) || channel < 0 || channel >= len(m.TexCoords) || m.TexCoords[channel] == nil {
		return core.Vec2{}, false
	}
	f := m.Faces[faceID]
	uvs := m.TexCoords[channel]
	u0, u1, u2 := uvs[f[0]], uvs[f[1]], uvs[f[2]]
	return core.Vec2{
		X: u0.X*bary.X + u1.X*bary.Y + u2.X*bary.Z,
		Y: u0.Y*bary.X + u1.Y*bary.Y + u2.Y*bary.Z,
	}, true
}

// SurfacePointAt fills sp with the interpolated world-space shading frame
// at the barycentric coordinates already stored in sp.Bary. transform
// maps mesh space to world space and normM is its normal matrix.
func (m *RenderMesh) SurfacePointAt(sp *core.SurfacePoint, transform core.Mat4, normM core.Mat3) {
	sp.ResetTextureNormal()
	b := sp.Bary
	f := m.Faces[sp.PrimID]

	p0, p1, p2 := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
	pos := p0.Multiply(b.X).Add(p1.Multiply(b.Y)).Add(p2.Multiply(b.Z))

	n := m.Normals[f[0]].Multiply(b.X).
		Add(m.Normals[f[1]].Multiply(b.Y)).
		Add(m.Normals[f[2]].Multiply(b.Z))

	t0, t1, t2 := m.Tangents[f[0]], m.Tangents[f[1]], m.Tangents[f[2]]
	tan := core.Vec3{
		X: t0.X*b.X + t1.X*b.Y + t2.X*b.Z,
		Y: t0.Y*b.X + t1.Y*b.Y + t2.Y*b.Z,
		Z: t0.Z*b.X + t1.Z*b.Y + t2.Z*b.Z,
	}
	handedness := 1.0
	if t0.W*b.X+t1.W*b.Y+t2.W*b.Z < 0 {
		handedness = -1.0
	}

	n = normalizeIfNeeded(n)
	tan = tan.Subtract(n.Multiply(n.Dot(tan)))
	tan = normalizeIfNeeded(tan)
	bn := n.Cross(tan).Multiply(handedness)

	sp.Position = transform.TransformPoint(pos)
	sp.Normal = normM.TransformVec(n).Normalize()
	wt := normM.TransformVec(tan).Normalize()
	sp.Tangent = core.Vec4{X: wt.X, Y: wt.Y, Z: wt.Z, W: handedness}
	sp.Binormal = normM.TransformVec(bn).Normalize()

	geomN := p1.Subtract(p0).Cross(p2.Subtract(p0))
	sp.GeomNormal = normM.TransformVec(geomN).Normalize()

	if len(sp.TexCoords) != len(m.TexCoords) {
		sp.TexCoords = make([]core.Vec2, len(m.TexCoords))
		sp.TexDefined = make([]bool, len(m.TexCoords))
	}
	for ch := range m.TexCoords {
		uv, ok := m.TexCoord(b, sp.PrimID, ch)
		sp.TexCoords[ch] = uv
		sp.TexDefined[ch] = ok
	}
}

// normalizeIfNeeded normalizes v unless it is already near unit length
func normalizeIfNeeded(v core.Vec3) core.Vec3 {
	l2 := v.LengthSquared()
	if l2 == 0 {
		return v
	}
	if d := l2 - 1.0; d > -1e-12 && d < 1e-12 {
		return v
	}
	return v.Multiply(1.0 / math.Sqrt(l2))
}
