// Package material implements the surface models used by the renderer:
// a glTF-style physically based material, a measured-optics mirror
// material driven by complex refractive index tables, and a plain
// diffuse material used as the fallback for unset slots.
package material

import "github.com/sensorsim/go-bdpt-renderer/pkg/core"

// Material is the contract every surface model implements. Directions
// follow the tracing convention: in points towards the surface, out away
// from it, both in world space.
//
// DefineNextDirection and GetRayAndBrdf take the caller's sampler so each
// render goroutine keeps its own deterministic random stream.
type Material interface {
	// ModifyFrame perturbs the shading frame at sp by the material's
	// normal texture, if it has one. Must be called before any BRDF
	// evaluation at the point.
	ModifyFrame(sp *core.SurfacePoint)

	// DefineNextDirection samples an outgoing direction for the incident
	// direction in
	DefineNextDirection(in core.Vec3, sp *core.SurfacePoint, s *core.RandomSampler) core.Vec3

	// GetBrdf evaluates the reflectance factor between in and out.
	// With impSmpScale the result is divided by the material's
	// importance-sampling probability for out.
	GetBrdf(in core.Vec3, sp *core.SurfacePoint, out core.Vec3, impSmpScale bool) core.Vec3

	// GetRayAndBrdf samples the next direction and evaluates the BRDF in
	// one call. With inv the BRDF is evaluated for transport running from
	// a light source towards the camera. The emitted radiance at sp is
	// returned alongside.
	GetRayAndBrdf(in core.Vec3, sp *core.SurfacePoint, s *core.RandomSampler, inv bool) (out, brdf, emitted core.Vec3)

	// GetEmissivity returns the radiance emitted at the given texture
	// coordinates and whether the material emits at all
	GetEmissivity(texCoord core.Vec2) (core.Vec3, bool)

	// IsMasked reports whether the surface is cut out at sp, making the
	// intersection transparent to rays
	IsMasked(sp *core.SurfacePoint) bool

	// NormalTextureChannel returns the texture coordinate channel of the
	// normal map, or -1
	NormalTextureChannel() int

	// EmissivityTextureChannel returns the texture coordinate channel of
	// the emissive map, or -1
	EmissivityTextureChannel() int

	// SetTextures binds the scene's texture set. Called once at commit.
	SetTextures(textures []*BitmapTexture)
}

// baseMaterial carries the shared texture binding and the default
// answers for materials that do not use a capability
type baseMaterial struct {
	textures []*BitmapTexture
}

func (b *baseMaterial) SetTextures(textures []*BitmapTexture) {
	b.textures = textures
}

// texture returns the bound texture for a map id, or nil when the id is
// out of range
func (b *baseMaterial) texture(mapID int) *BitmapTexture {
	if mapID < 0 || mapID >= len(b.textures) {
		return nil
	}
	return b.textures[mapID]
}

func (b *baseMaterial) NormalTextureChannel() int { return -1 }

func (b *baseMaterial) EmissivityTextureChannel() int { return -1 }

func (b *baseMaterial) GetEmissivity(core.Vec2) (core.Vec3, bool) {
	return core.Vec3{}, false
}

func (b *baseMaterial) IsMasked(*core.SurfacePoint) bool { return false }

// sampleRayAndBrdf is the default GetRayAndBrdf composition: sample the
// next direction, then evaluate the BRDF, with negated and swapped
// arguments when transport runs from the light side
func sampleRayAndBrdf(m Material, in core.Vec3, sp *core.SurfacePoint, s *core.RandomSampler, inv bool) (out, brdf, emitted core.Vec3) {
	out = m.DefineNextDirection(in, sp, s)

	if !inv {
		brdf = m.GetBrdf(in, sp, out, true)
	} else {
		brdf = m.GetBrdf(out.Negate(), sp, in.Negate(), true)
	}

	if etc := m.EmissivityTextureChannel(); etc >= 0 {
		if uv, ok := sp.TexCoord(etc); ok {
			emitted, _ = m.GetEmissivity(uv)
		}
	}
	return out, brdf, emitted
}
