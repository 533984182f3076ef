// Package renderer implements a bidirectional path tracer. Each pixel
// sample traces one sub-path from the camera and one from a sampled
// light, then connects every light vertex to every camera vertex that
// passes a visibility test.
package renderer

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sensorsim/go-bdpt-renderer/log"
	"github.com/sensorsim/go-bdpt-renderer/pkg/accel"
	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
	"github.com/sensorsim/go-bdpt-renderer/pkg/lights"
	"github.com/sensorsim/go-bdpt-renderer/pkg/material"
	"github.com/sensorsim/go-bdpt-renderer/pkg/scene"
	"github.com/sensorsim/go-bdpt-renderer/pkg/sensor"
)

// epsAcc scales the geometric epsilon for ray offsets away from a
// surface point.
const epsAcc = 3.0

var logger = log.New("renderer")

// pathPart is one vertex of a camera or light sub-path: the surface
// state, the sampled outgoing ray and the transport accumulated from
// the walk origin up to this vertex.
type pathPart struct {
	surf      core.SurfacePoint
	mat       material.Material
	outRay    core.Vec3
	outRad    core.Vec3
	outFactor core.Vec3
}

// BDPTRenderer drives the bidirectional render of one scene. It is not
// safe to share a renderer between concurrent Render calls; the render
// itself fans out over Params.Cores goroutines internally.
type BDPTRenderer struct {
	params Params
	scene  *scene.RenderScene

	cpBuf [][]pathPart
	lpBuf [][]pathPart

	curRow int64
	stats  Stats
}

// NewBDPTRenderer creates a renderer for the given committed scene.
func NewBDPTRenderer(sc *scene.RenderScene, params Params) *BDPTRenderer {
	return &BDPTRenderer{params: params, scene: sc}
}

// Stats returns the counters of the last render.
func (r *BDPTRenderer) Stats() *Stats {
	return &r.stats
}

// maxAbs returns the largest absolute component of v, never below one
// so epsilon offsets keep a sane floor near the origin.
func maxAbs(v core.Vec3) float64 {
	m := v.MaxAbsComponent()
	if m < 1 {
		return 1
	}
	return m
}

// newQuery builds a ray query with the origin shifted forward along the
// direction to step over the surface the ray leaves from.
func newQuery(origin, dir core.Vec3) accel.RayQuery {
	delta := epsAcc * core.Epsilon * maxAbs(origin)
	return accel.RayQuery{
		Origin: origin.Add(dir.Multiply(delta)),
		Dir:    dir,
		TNear:  0,
		TFar:   math.MaxFloat64,
	}
}

// sceneIntersect finds the nearest intersection whose material is not
// masked at the hit point, skipping masked hits by advancing tnear past
// them. The retrace is bounded so a degenerate masked surface cannot
// loop forever.
func (r *BDPTRenderer) sceneIntersect(q *accel.RayQuery, sp *core.SurfacePoint) (material.Material, bool) {
	t1 := q.TFar
	for itr := 10; itr > 0; itr-- {
		r.stats.addRay()
		hit, ok := r.scene.Intersect(q)
		if !ok {
			return nil, false
		}
		mat := r.scene.ResolveHit(hit, sp)
		if !mat.IsMasked(sp) {
			return mat, true
		}
		org := q.At(hit.T)
		v := maxAbs(org)
		if hit.T > v {
			v = hit.T
		}
		q.TNear = hit.T + epsAcc*core.Epsilon*v
		q.TFar = t1
		if q.TFar <= q.TNear {
			return nil, false
		}
	}
	return nil, false
}

func (r *BDPTRenderer) lightAttenuation(d, attD float64) float64 {
	return lights.AttenuationFactor(d, attD, r.params.LightDistanceAttenuation, r.params.LightMinDistance)
}

// computePath walks a sub-path of at most maxN vertices starting at
// origin O in direction R. For the camera walk (inv true) emission found
// along the way accumulates into rad; for the light walk rad0 is the
// radiance leaving the light and each vertex stores the radiance it
// forwards, with the walk cut once that drops below the pixel cut
// threshold. Returns the vertex count and whether the walk left the
// scene.
func (r *BDPTRenderer) computePath(p []pathPart, maxN int, o, dir, rad0 core.Vec3, rad *core.Vec3, inv bool, attD float64, s *core.RandomSampler) (int, bool) {
	p[0].surf.Position = o
	p[0].mat = nil
	p[0].outRay = dir
	p[0].outRad = rad0
	p[0].outFactor = core.Vec3{X: 1, Y: 1, Z: 1}

	rDterm := 1.0
	n := 1
	for i := 1; i < maxN; i++ {
		q := newQuery(p[i-1].surf.Position, p[i-1].outRay)
		mat, ok := r.sceneIntersect(&q, &p[i].surf)
		if !ok {
			return n, true
		}
		p[i].mat = mat
		mat.ModifyFrame(&p[i].surf)
		out, brdf, erad := mat.GetRayAndBrdf(p[i-1].outRay, &p[i].surf, s, inv)
		p[i].outRay = out

		var ct float64
		if inv {
			ct = math.Abs(out.Dot(p[i].surf.Normal))
		} else {
			ct = math.Abs(p[i-1].outRay.Dot(p[i].surf.Normal))
		}
		p[i].outFactor = p[i-1].outFactor.MultiplyVec(brdf).Multiply(ct)

		if inv {
			*rad = rad.Add(p[i].outFactor.MultiplyVec(erad))
			p[i].outRad = core.Vec3{}
		} else {
			if i == 1 {
				d := p[i].surf.Position.Subtract(p[i-1].surf.Position).Length()
				rDterm = r.lightAttenuation(d, attD)
			}
			p[i].outRad = p[i].outFactor.MultiplyVec(rad0).Multiply(rDterm)
			if p[i].outRad.Intensity() < r.params.RayCutPixValue {
				break
			}
		}
		n++
	}
	return n, false
}

// tryComputeLightPath samples a light and walks a sub-path away from it.
func (r *BDPTRenderer) tryComputeLightPath(tid int, s *core.RandomSampler) (lights.RenderLight, int) {
	l, _ := r.scene.SampleLight(s.Float64())
	if l == nil {
		return nil, 0
	}
	o, dir, _, radiance := l.RandomRay(s)
	radiance = radiance.Multiply(r.params.LightScale)
	n, _ := r.computePath(r.lpBuf[tid], r.params.LightBounces+1, o, dir, radiance, nil, false, l.AttenuationDistance(), s)
	return l, n
}

// isConnected reports whether nothing but the surfaces a and b lie on
// blocks the segment between them. Points closer than the epsilon
// offset count as trivially connected, and an occluder hit landing on b
// itself still connects.
func (r *BDPTRenderer) isConnected(a, b core.Vec3) bool {
	dir := b.Subtract(a)
	length := dir.Length()
	safe := 2 * epsAcc * core.Epsilon * maxAbs(a)
	if length <= safe {
		return true
	}
	dir = dir.Multiply(1 / length)

	far := length + 0.1*length
	if safe > 0.1*length {
		far = length + safe
	}
	q := accel.RayQuery{Origin: a, Dir: dir, TNear: safe, TFar: far}
	r.stats.addShadowRay()
	var sp core.SurfacePoint
	if _, ok := r.sceneIntersect(&q, &sp); !ok {
		return true
	}
	sd := sp.Position.Subtract(b).LengthSquared()
	safeB := 10 * core.Epsilon * maxAbs(b)
	return sd <= safeB*safeB
}

// computePaths traces the camera and light sub-paths for one pixel
// sample and gathers all their contributions. camRay is filled with the
// return ray the sensor uses to place the radiance. The result is
// normalized by the number of contributing transport terms.
func (r *BDPTRenderer) computePaths(o, dir core.Vec3, camRay *sensor.RenderRay, tid int, s *core.RandomSampler) core.Vec3 {
	var lpSource lights.RenderLight
	lpLen := 0
	if r.scene.LightCount() > 0 {
		lpSource, lpLen = r.tryComputeLightPath(tid, s)
	}

	var radiance core.Vec3
	cp := r.cpBuf[tid]
	cpLen, cpExit := r.computePath(cp, r.params.CameraBounces+1, o, dir, core.Vec3{}, &radiance, true, math.MaxFloat64, s)

	camRay.Dir = dir.Negate()
	if cpLen == 1 {
		camRay.Origin = o.Add(dir)
	} else {
		camRay.Origin = cp[1].surf.Position
	}

	totalPN := 0
	if cpExit && r.scene.Background() != nil && cpLen <= r.params.MaxPathLength {
		bg := r.scene.Background().Radiance(cp[cpLen-1].outRay)
		radiance = radiance.Add(bg.MultiplyVec(cp[cpLen-1].outFactor))
		totalPN++
	} else if radiance.Intensity() > core.Epsilon {
		totalPN++
	}

	connected := false
	if lpSource != nil {
		lp := r.lpBuf[tid]
		for i := 0; i < lpLen; i++ {
			lRad := lp[i].outRad
			lPos := lp[i].surf.Position
			for j := 1; j < cpLen && i+j <= r.params.MaxPathLength; j++ {
				cPos := cp[j].surf.Position
				lcDir := cPos.Subtract(lPos).Normalize()
				if i == 0 {
					_, lRad = lpSource.RadianceAlongRay(lcDir)
					lsc := r.lightAttenuation(cPos.Subtract(lPos).Length(), lpSource.AttenuationDistance())
					lRad = lRad.Multiply(r.params.LightScale * lsc)
				}
				c := math.Abs(lcDir.Dot(cp[j].surf.Normal))
				// Cheap upper bound before the BRDF evaluation.
				pre := lRad.Multiply(c).MultiplyVec(cp[j-1].outFactor)
				if pre.Intensity() < r.params.RayCutPixValue {
					continue
				}
				r.stats.addConnTried()
				outV := cp[j-1].outRay.Negate()
				brdf := cp[j].mat.GetBrdf(lcDir, &cp[j].surf, outV, false).Multiply(c)
				lc := brdf.MultiplyVec(cp[j-1].outFactor).MultiplyVec(lRad)
				if lc.Intensity() < r.params.RayCutPixValue {
					continue
				}
				if !r.isConnected(lPos, cPos) {
					continue
				}
				radiance = radiance.Add(lc)
				connected = true
				r.stats.addConnMade()
			}
		}
	}
	if connected {
		totalPN++
	}

	if totalPN > 0 {
		radiance = radiance.Multiply(1.0 / float64(totalPN))
	}
	return radiance
}

// renderRows claims image rows off the shared counter until none are
// left, tracing every pixel sample of each claimed row.
func (r *BDPTRenderer) renderRows(dev sensor.Sensor, tid int, s *core.RandomSampler) {
	width, height := r.params.Width, r.params.Height
	for {
		row := int(atomic.AddInt64(&r.curRow, 1)) - 1
		if row >= height {
			return
		}
		for x := 0; x < width; x++ {
			for k := 0; k < r.params.SamplesPerPixel; k++ {
				ray := dev.GetRay(x, row, s)
				ret := sensor.RenderRay{Index: ray.Index}
				rad := r.computePaths(ray.Origin, ray.Dir, &ret, tid, s)
				dev.Hit(rad, ret, &ray)
			}
		}
		r.stats.addRow()
		if row%50 == 0 {
			logger.Infof("rendered row %d of %d", row, height)
		}
	}
}

// Render traces the whole frame onto the sensor and leaves the averaged
// exposure in it. Each goroutine owns a sampler seeded from Params.Seed
// and its goroutine id, so a fixed seed and core count reproduce the
// frame exactly.
func (r *BDPTRenderer) Render(dev sensor.Sensor) *Stats {
	start := time.Now()
	r.stats = Stats{}

	coresN := r.params.Cores
	if coresN < 1 {
		coresN = 1
	}
	if coresN > r.params.Height {
		coresN = r.params.Height
	}

	cpn := r.params.CameraBounces + 1
	lpn := r.params.LightBounces + 1
	backing := make([]pathPart, (cpn+lpn)*coresN)
	r.cpBuf = make([][]pathPart, coresN)
	r.lpBuf = make([][]pathPart, coresN)
	for i := 0; i < coresN; i++ {
		off := i * (cpn + lpn)
		r.cpBuf[i] = backing[off : off+cpn]
		r.lpBuf[i] = backing[off+cpn : off+cpn+lpn]
	}

	atomic.StoreInt64(&r.curRow, 0)
	dev.Init(r.params.Width, r.params.Height)

	logger.Infof("rendering %dx%d, %d samples per pixel on %d cores",
		r.params.Width, r.params.Height, r.params.SamplesPerPixel, coresN)

	var wg sync.WaitGroup
	for tid := 0; tid < coresN; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			s := core.NewRandomSampler(r.params.Seed ^ int64(tid))
			r.renderRows(dev, tid, s)
		}(tid)
	}
	wg.Wait()

	dev.Stop()
	r.stats.Elapsed = time.Since(start)
	logger.Infof("render finished in %s", r.stats.Elapsed.Round(time.Millisecond))
	return &r.stats
}
