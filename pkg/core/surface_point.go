package core

import "math"

// SurfacePoint carries the full geometric state of a surface-ray
// intersection: position, shading frame, barycentrics and the ids needed
// to resolve per-channel texture coordinates.
type SurfacePoint struct {
	Position Vec3
	Normal   Vec3
	Tangent  Vec4 // W holds the handedness of the frame
	Binormal Vec3

	// GeomNormal is the world-space face normal of the hit triangle,
	// untouched by vertex interpolation or normal textures
	GeomNormal Vec3

	// Barycentric coordinates of the hit inside its triangle
	Bary Vec3

	// Interpolated texture coordinates, one entry per texture channel.
	// TexDefined marks the channels the mesh actually carries.
	TexCoords  []Vec2
	TexDefined []bool

	InstanceID int
	PrimID     int

	// Set once the shading frame has been perturbed by a normal texture
	texNormApplied bool
}

// TexCoord returns the texture coordinates for the given channel. The
// second return value reports whether the channel exists on the mesh.
func (sp *SurfacePoint) TexCoord(channel int) (Vec2, bool) {
	if channel < 0 || channel >= len(sp.TexCoords) || !sp.TexDefined[channel] {
		return Vec2{}, false
	}
	return sp.TexCoords[channel], true
}

// ResetTextureNormal clears the perturbation flag so a reused point can
// accept a new frame
func (sp *SurfacePoint) ResetTextureNormal() {
	sp.texNormApplied = false
}

// ApplyTextureNormal perturbs the shading frame by a tangent-space normal
// read from a texture and rebuilds an orthonormal basis around it. The
// perturbation is applied at most once per intersection.
func (sp *SurfacePoint) ApplyTextureNormal(texNorm Vec3) {
	if sp.texNormApplied {
		return
	}
	tangent := sp.Tangent.Vec3()
	n := tangent.Multiply(texNorm.X).
		Add(sp.Binormal.Multiply(texNorm.Y)).
		Add(sp.Normal.Multiply(texNorm.Z))

	sp.Normal = normalizeIfNeeded(n)
	t := normalizeIfNeeded(sp.Binormal.Cross(sp.Normal))
	sp.Tangent = Vec4{X: t.X, Y: t.Y, Z: t.Z, W: sp.Tangent.W}
	sp.Binormal = sp.Normal.Cross(t).Multiply(sp.Tangent.W)
	sp.texNormApplied = true
}

// normalizeIfNeeded normalizes v unless it is already close to unit length
func normalizeIfNeeded(v Vec3) Vec3 {
	l2 := v.LengthSquared()
	if l2 == 0 {
		return v
	}
	if diff := l2 - 1.0; diff > -1e-12 && diff < 1e-12 {
		return v
	}
	return v.Multiply(1.0 / math.Sqrt(l2))
}
