package material

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

// Wavelengths of the red, green and blue rendering channels in meters
var rgbWavelengths = [3]float64{650e-9, 510e-9, 440e-9}

// correctionShift is how far a mirrored direction is pushed back above
// the geometric face plane when interpolated normals bend it below
const correctionShift = 0.1

// IorSample is one measured point of a complex refractive index curve
type IorSample struct {
	Wavelength float64
	N          float64
	K          float64
}

// IorTable stores measured complex refractive indices indexed by
// temperature, each row sorted by wavelength. Lookups pick the closest
// temperature row and interpolate linearly in wavelength, clamping
// outside the measured range.
type IorTable struct {
	temperatures []float64
	rows         [][]IorSample
}

// NewIorTable creates an empty table
func NewIorTable() *IorTable {
	return &IorTable{}
}

// AddRow adds the measured samples for one temperature. Samples are
// sorted by wavelength on insert.
func (t *IorTable) AddRow(temperature float64, samples []IorSample) {
	row := make([]IorSample, len(samples))
	copy(row, samples)
	sort.Slice(row, func(i, j int) bool { return row[i].Wavelength < row[j].Wavelength })
	t.temperatures = append(t.temperatures, temperature)
	t.rows = append(t.rows, row)
}

// Ior returns the interpolated complex refractive index at the given
// temperature and wavelength. An empty table returns vacuum.
func (t *IorTable) Ior(temperature, wavelength float64) (n, k float64) {
	if len(t.rows) == 0 {
		return 1.0, 0.0
	}

	closest := 0
	best := math.Abs(t.temperatures[0] - temperature)
	for i, temp := range t.temperatures[1:] {
		if d := math.Abs(temp - temperature); d < best {
			best = d
			closest = i + 1
		}
	}

	row := t.rows[closest]
	if len(row) == 0 {
		return 1.0, 0.0
	}
	if wavelength <= row[0].Wavelength {
		return row[0].N, row[0].K
	}
	if last := row[len(row)-1]; wavelength >= last.Wavelength {
		return last.N, last.K
	}

	hi := sort.Search(len(row), func(i int) bool { return row[i].Wavelength >= wavelength })
	lo := hi - 1
	span := row[hi].Wavelength - row[lo].Wavelength
	if span <= 0 {
		return row[lo].N, row[lo].K
	}
	f := (wavelength - row[lo].Wavelength) / span
	return lerp(row[lo].N, row[hi].N, f), lerp(row[lo].K, row[hi].K, f)
}

// fresnelReflection returns the reflectances for p- and s-polarized light
// hitting a surface with complex refractive index n at the given cosine
func fresnelReflection(n complex128, cosTheta float64) (termP, termS float64) {
	n2 := n * n
	cosTheta = math.Abs(cosTheta)
	cos2 := cosTheta * cosTheta
	sin2 := 1.0 - cos2

	root := cmplx.Sqrt(n2 - complex(sin2, 0))
	cosC := complex(cosTheta, 0)

	ratioP := (n2*cosC - root) / (n2*cosC + root)
	termP = real(ratioP * cmplx.Conj(ratioP))

	ratioS := (cosC - root) / (cosC + root)
	termS = real(ratioS * cmplx.Conj(ratioS))
	return termP, termS
}

// MeasuredOptical renders surfaces from measured optical data: an ideal
// mirror whose per-channel reflectance comes from Fresnel equations over
// a complex refractive index table, evaluated at the asset temperature.
type MeasuredOptical struct {
	baseMaterial
	iors        *IorTable
	temperature float64
}

// NewMeasuredOptical creates the material from its IOR table and the
// asset temperature in Kelvin
func NewMeasuredOptical(iors *IorTable, temperature float64) *MeasuredOptical {
	return &MeasuredOptical{iors: iors, temperature: temperature}
}

func (m *MeasuredOptical) ModifyFrame(sp *core.SurfacePoint) {
	sp.ApplyTextureNormal(core.Vec3{X: 0, Y: 0, Z: 1})
}

// DefineNextDirection mirrors the incident direction about the shading
// normal. Interpolated normals can bend the mirror direction below the
// geometric face; such directions are pushed back above the face plane.
func (m *MeasuredOptical) DefineNextDirection(in core.Vec3, sp *core.SurfacePoint, _ *core.RandomSampler) core.Vec3 {
	out := in.Reflect(sp.Normal)

	if correction := out.Dot(sp.GeomNormal); correction < correctionShift {
		out = out.Add(sp.GeomNormal.Multiply(correctionShift - correction)).Normalize()
	}
	return out
}

// fresnelBrdf evaluates the per-channel unpolarized Fresnel reflectance
// divided by the incident cosine
func (m *MeasuredOptical) fresnelBrdf(cos float64) core.Vec3 {
	var out [3]float64
	for i, wl := range rgbWavelengths {
		n, k := m.iors.Ior(m.temperature, wl)
		termP, termS := fresnelReflection(complex(n, k), cos)
		out[i] = 0.5 * (termP + termS) / math.Abs(cos)
	}
	return core.Vec3{X: out[0], Y: out[1], Z: out[2]}
}

// GetBrdf is nonzero only for mirror pairs: the outgoing cosine must
// match the incident one within 1e-6
func (m *MeasuredOptical) GetBrdf(in core.Vec3, sp *core.SurfacePoint, out core.Vec3, _ bool) core.Vec3 {
	if m.iors == nil {
		return core.Vec3{}
	}

	cos := -in.Dot(sp.Normal)
	if math.Abs(out.Dot(sp.Normal)-cos) > 1e-6 {
		return core.Vec3{}
	}
	return m.fresnelBrdf(cos)
}

func (m *MeasuredOptical) GetRayAndBrdf(in core.Vec3, sp *core.SurfacePoint, s *core.RandomSampler, _ bool) (out, brdf, emitted core.Vec3) {
	out = m.DefineNextDirection(in, sp, s)
	if m.iors == nil {
		return out, core.Vec3{}, core.Vec3{}
	}

	cos := out.Dot(sp.Normal)
	return out, m.fresnelBrdf(cos), core.Vec3{}
}

var _ Material = (*MeasuredOptical)(nil)
