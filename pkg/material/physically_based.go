package material

import "github.com/sensorsim/go-bdpt-renderer/pkg/core"

// AlphaMode controls how the base color alpha is interpreted
type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

// TextureSlot references a bound texture: the map id into the scene's
// texture set, the texture coordinate channel and a UV transform applied
// in homogeneous coordinates.
type TextureSlot struct {
	MapID     int
	Channel   int
	Transform core.Mat3
}

// NewTextureSlot returns an unbound slot with an identity UV transform
func NewTextureSlot() TextureSlot {
	return TextureSlot{MapID: -1, Transform: core.IdentityMat3()}
}

// transformUV applies the slot's UV transform
func (s TextureSlot) transformUV(uv core.Vec2) core.Vec2 {
	t := s.Transform.TransformVec(core.Vec3{X: uv.X, Y: uv.Y, Z: 1.0})
	return core.Vec2{X: t.X, Y: t.Y}
}

// PbrParams are the glTF-style parameters of a physically based material
type PbrParams struct {
	BaseColorFactor   core.Vec4
	MetallicFactor    float64
	RoughnessFactor   float64
	EmissiveFactor    core.Vec3
	Ior               float64
	DoubleSided       bool
	AlphaMode         AlphaMode
	AlphaCutoff       float64
	OcclusionStrength float64
	NormalScale       float64

	BaseColor            TextureSlot
	MetallicRoughness    TextureSlot
	Occlusion            TextureSlot
	OcclusionSeparateMap bool
	Normal               TextureSlot
	Emissive             TextureSlot
}

// NewPbrParams returns parameters with the usual glTF defaults
func NewPbrParams() PbrParams {
	return PbrParams{
		BaseColorFactor:   core.Vec4{X: 1, Y: 1, Z: 1, W: 1},
		MetallicFactor:    1.0,
		RoughnessFactor:   1.0,
		Ior:               1.5,
		AlphaCutoff:       0.5,
		OcclusionStrength: 1.0,
		NormalScale:       1.0,
		BaseColor:         NewTextureSlot(),
		MetallicRoughness: NewTextureSlot(),
		Occlusion:         NewTextureSlot(),
		Normal:            NewTextureSlot(),
		Emissive:          NewTextureSlot(),
	}
}

// PhysicallyBased is the glTF-style metallic-roughness material: a GGX
// microfacet specular lobe with Smith height-correlated shadowing over a
// Lambertian base, optional transmission for blended or double-sided
// surfaces, and the full set of texture maps.
type PhysicallyBased struct {
	baseMaterial
	params PbrParams
}

// NewPhysicallyBased creates the material from its parameters
func NewPhysicallyBased(params PbrParams) *PhysicallyBased {
	return &PhysicallyBased{params: params}
}

// Params returns the material parameters
func (m *PhysicallyBased) Params() PbrParams {
	return m.params
}

func (m *PhysicallyBased) NormalTextureChannel() int {
	if m.params.Normal.MapID < 0 {
		return -1
	}
	return m.params.Normal.Channel
}

func (m *PhysicallyBased) EmissivityTextureChannel() int {
	if m.params.Emissive.MapID < 0 {
		return -1
	}
	return m.params.Emissive.Channel
}

// baseColorAt reads the base color texture at sp and applies the color
// factors. Unbound maps read as white.
func (m *PhysicallyBased) baseColorAt(sp *core.SurfacePoint) core.Vec4 {
	rgba := core.Vec4{X: 1, Y: 1, Z: 1, W: 1}
	if tex := m.texture(m.params.BaseColor.MapID); tex != nil {
		if uv, ok := sp.TexCoord(m.params.BaseColor.Channel); ok {
			tuv := m.params.BaseColor.transformUV(uv)
			rgba = tex.Texture(tuv.X, tuv.Y)
		}
	}
	f := m.params.BaseColorFactor
	return core.Vec4{X: rgba.X * f.X, Y: rgba.Y * f.Y, Z: rgba.Z * f.Z, W: rgba.W * f.W}
}

// occMetRoughAt reads occlusion, metallic and roughness at sp. Metallic
// sits in the blue channel and roughness in green, per glTF packing.
func (m *PhysicallyBased) occMetRoughAt(sp *core.SurfacePoint) (occlusion, metallic, roughness float64) {
	occlusion = 1.0
	metallic = m.params.MetallicFactor
	roughness = m.params.RoughnessFactor

	if tex := m.texture(m.params.MetallicRoughness.MapID); tex != nil {
		if uv, ok := sp.TexCoord(m.params.MetallicRoughness.Channel); ok {
			tuv := m.params.MetallicRoughness.transformUV(uv)
			t := tex.Texture(tuv.X, tuv.Y)
			occlusion *= t.X
			metallic *= t.Z
			roughness *= t.Y
		}
	}

	if m.params.OcclusionSeparateMap {
		if tex := m.texture(m.params.Occlusion.MapID); tex != nil {
			if uv, ok := sp.TexCoord(m.params.Occlusion.Channel); ok {
				tuv := m.params.Occlusion.transformUV(uv)
				occlusion = tex.Texture(tuv.X, tuv.Y).X
			}
		}
	}
	return occlusion, metallic, roughness
}

// occludeColor darkens a color by the occlusion value scaled by the
// occlusion strength
func (m *PhysicallyBased) occludeColor(occlusion float64, color core.Vec4) core.Vec4 {
	s := m.params.OcclusionStrength
	return core.Vec4{
		X: lerp(color.X, occlusion*color.X, s),
		Y: lerp(color.Y, occlusion*color.Y, s),
		Z: lerp(color.Z, occlusion*color.Z, s),
		W: color.W,
	}
}

// bsdfDataAt fills the shared BSDF inputs at sp
func (m *PhysicallyBased) bsdfDataAt(in core.Vec3, sp *core.SurfacePoint) bsdfData {
	data := bsdfData{in: in, normal: sp.Normal}

	data.color = m.baseColorAt(sp)
	if m.params.AlphaMode != AlphaBlend {
		data.color.W = 1.0
	}
	data.isTransmissive = m.params.DoubleSided || data.color.W < 1.0

	occ, met, rough := m.occMetRoughAt(sp)
	data.color = m.occludeColor(occ, data.color)
	data.metallic = met
	roughness := clamp(rough, 0.00001, 0.99999)
	data.alpha = roughness * roughness
	return data
}

func (m *PhysicallyBased) ModifyFrame(sp *core.SurfacePoint) {
	texNorm := core.Vec3{X: 0, Y: 0, Z: 1}

	if tex := m.texture(m.params.Normal.MapID); tex != nil {
		if uv, ok := sp.TexCoord(m.params.Normal.Channel); ok {
			tuv := m.params.Normal.transformUV(uv)
			t := tex.Texture(tuv.X, tuv.Y)
			if t.Z <= 0.5 {
				t.Z = 0.5 + 1e-7
			}
			texNorm = core.Vec3{
				X: (2.0*t.X - 1.0) * m.params.NormalScale,
				Y: (2.0*t.Y - 1.0) * m.params.NormalScale,
				Z: 2.0*t.Z - 1.0,
			}.Normalize()
		}
	}
	sp.ApplyTextureNormal(texNorm)
}

func (m *PhysicallyBased) DefineNextDirection(_ core.Vec3, sp *core.SurfacePoint, s *core.RandomSampler) core.Vec3 {
	return s.UniformHemisphere(sp.Normal).Normalize()
}

func (m *PhysicallyBased) GetBrdf(in core.Vec3, sp *core.SurfacePoint, out core.Vec3, _ bool) core.Vec3 {
	data := m.bsdfDataAt(in, sp)
	data.out = out

	if in.Dot(sp.Normal) > 0.0 && data.isTransmissive {
		data.normal = data.normal.Negate()
	}
	return data.evaluateDirect()
}

func (m *PhysicallyBased) GetRayAndBrdf(in core.Vec3, sp *core.SurfacePoint, s *core.RandomSampler, _ bool) (out, brdf, emitted core.Vec3) {
	data := m.bsdfDataAt(in, sp)

	ior := m.params.Ior
	if m.params.DoubleSided {
		ior = 1.0
	}
	data.eta = 1.0 / ior

	if b, ok := data.sampleIndirect(s); ok {
		brdf = b
		out = data.out
	}

	if etc := m.EmissivityTextureChannel(); etc >= 0 {
		if uv, ok := sp.TexCoord(etc); ok {
			emitted, _ = m.GetEmissivity(uv)
		}
	}
	return out, brdf, emitted
}

func (m *PhysicallyBased) GetEmissivity(texCoord core.Vec2) (core.Vec3, bool) {
	tex := m.texture(m.params.Emissive.MapID)
	if tex == nil {
		return core.Vec3{}, false
	}
	uv := m.params.Emissive.transformUV(texCoord)
	t := tex.Texture(uv.X, uv.Y)
	f := m.params.EmissiveFactor
	return core.Vec3{X: t.X * f.X, Y: t.Y * f.Y, Z: t.Z * f.Z}, true
}

func (m *PhysicallyBased) IsMasked(sp *core.SurfacePoint) bool {
	if m.params.AlphaMode != AlphaMask {
		return false
	}

	alpha := m.params.BaseColorFactor.W
	if alpha < m.params.AlphaCutoff {
		return true
	}

	if tex := m.texture(m.params.BaseColor.MapID); tex != nil {
		tc := tex.TextureAt(sp, m.params.BaseColor.Channel)
		alpha *= tc.W
	}
	return alpha < m.params.AlphaCutoff
}

var _ Material = (*PhysicallyBased)(nil)
