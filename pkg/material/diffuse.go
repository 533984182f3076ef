package material

import "github.com/sensorsim/go-bdpt-renderer/pkg/core"

// DiffuseColor is a flat Lambertian material with an optional color map.
// It doubles as the fallback installed in unset material slots, where its
// loud magenta albedo makes missing assignments obvious.
type DiffuseColor struct {
	baseMaterial
	color        core.Vec4
	colorMap     int
	colorChannel int
}

// NewDiffuseColor creates the material with the given RGBA color
func NewDiffuseColor(color core.Vec4) *DiffuseColor {
	return &DiffuseColor{color: color, colorMap: -1}
}

// NewFallback returns the material substituted for unset material slots
func NewFallback() *DiffuseColor {
	c := core.MissingMaterialColor
	return NewDiffuseColor(core.Vec4{X: c.X, Y: c.Y, Z: c.Z, W: 1})
}

// SetColor replaces the material color
func (m *DiffuseColor) SetColor(color core.Vec4) {
	m.color = color
}

// SetColorMap binds a color texture and its coordinate channel
func (m *DiffuseColor) SetColorMap(mapID, channel int) {
	m.colorMap = mapID
	m.colorChannel = channel
}

func (m *DiffuseColor) ModifyFrame(sp *core.SurfacePoint) {
	sp.ApplyTextureNormal(core.Vec3{X: 0, Y: 0, Z: 1})
}

func (m *DiffuseColor) DefineNextDirection(_ core.Vec3, sp *core.SurfacePoint, s *core.RandomSampler) core.Vec3 {
	return s.UniformHemisphere(sp.Normal)
}

// GetBrdf returns the albedo unscaled. The Lambertian 1/pi cancels
// against the uniform hemisphere sampling pdf under the renderer's
// importance-scaling convention.
func (m *DiffuseColor) GetBrdf(_ core.Vec3, sp *core.SurfacePoint, _ core.Vec3, _ bool) core.Vec3 {
	albedo := m.color
	if tex := m.texture(m.colorMap); tex != nil {
		if uv, ok := sp.TexCoord(m.colorChannel); ok {
			tc := tex.Texture(uv.X, uv.Y)
			albedo = core.Vec4{
				X: albedo.X * tc.X,
				Y: albedo.Y * tc.Y,
				Z: albedo.Z * tc.Z,
				W: albedo.W * tc.W,
			}
		}
	}
	return albedo.Vec3()
}

func (m *DiffuseColor) GetRayAndBrdf(in core.Vec3, sp *core.SurfacePoint, s *core.RandomSampler, inv bool) (out, brdf, emitted core.Vec3) {
	return sampleRayAndBrdf(m, in, sp, s, inv)
}

var _ Material = (*DiffuseColor)(nil)
