// Package scene assembles meshes, instances, materials, textures and
// lights into a committed, intersectable world. Slots are allocated up
// front and filled with setters; Commit validates everything, installs
// fallbacks, synthesizes missing vertex attributes and builds the
// acceleration structure.
package scene

import (
	"fmt"

	"github.com/sensorsim/go-bdpt-renderer/pkg/accel"
	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
	"github.com/sensorsim/go-bdpt-renderer/pkg/lights"
	"github.com/sensorsim/go-bdpt-renderer/pkg/material"
)

// RenderScene owns every entity of the world to render
type RenderScene struct {
	meshes    []*RenderMesh
	instances []*RenderInstance
	materials []material.Material
	textures  []*material.BitmapTexture
	lights    []lights.RenderLight

	background Background

	lightSampler *core.DistanceRandom
	intersector  accel.Intersector
	committed    bool
}

// NewRenderScene creates an empty scene
func NewRenderScene() *RenderScene {
	return &RenderScene{}
}

// Allocate reserves the entity slots. One extra material slot is added
// for the fallback substituted wherever a slot stays unset.
func (s *RenderScene) Allocate(meshN, instN, matN, textN, lightN int) {
	s.meshes = make([]*RenderMesh, max(meshN, 0))
	s.instances = make([]*RenderInstance, max(instN, 0))

	s.materials = make([]material.Material, matN+1)
	s.materials[matN] = material.NewFallback()

	s.textures = make([]*material.BitmapTexture, max(textN, 0))
	s.lights = make([]lights.RenderLight, max(lightN, 0))
	s.committed = false
}

// SetMesh installs a mesh. Out-of-range ids are ignored.
func (s *RenderScene) SetMesh(meshID int, m *RenderMesh) {
	if meshID < 0 || meshID >= len(s.meshes) {
		return
	}
	m.ID = meshID
	s.meshes[meshID] = m
}

// SetInstance installs an instance of a mesh under the given transform.
// Out-of-range ids are ignored.
func (s *RenderScene) SetInstance(instID int, transform core.Mat4, meshID int) {
	if instID < 0 || instID >= len(s.instances) {
		return
	}
	ri := &RenderInstance{InstID: instID, MeshID: meshID}
	ri.SetTransform(transform)
	s.instances[instID] = ri
}

// SetMaterial installs a material. The fallback slot cannot be replaced.
func (s *RenderScene) SetMaterial(matID int, m material.Material) {
	if matID < 0 || matID >= len(s.materials)-1 {
		return
	}
	s.materials[matID] = m
}

// SetLight installs a light. Out-of-range ids are ignored.
func (s *RenderScene) SetLight(lightID int, l lights.RenderLight) {
	if lightID < 0 || lightID >= len(s.lights) {
		return
	}
	s.lights[lightID] = l
}

// SetTexture installs a texture. Out-of-range ids are ignored.
func (s *RenderScene) SetTexture(texID int, t *material.BitmapTexture) {
	if texID < 0 || texID >= len(s.textures) {
		return
	}
	s.textures[texID] = t
}

// SetBackground installs the scene background, nil for none
func (s *RenderScene) SetBackground(b Background) {
	s.background = b
}

// Background returns the scene background, nil when unset
func (s *RenderScene) Background() Background {
	return s.background
}

// LightCount returns the number of light slots
func (s *RenderScene) LightCount() int {
	return len(s.lights)
}

// Light returns the light in the given slot
func (s *RenderScene) Light(i int) lights.RenderLight {
	return s.lights[i]
}

// Commit prepares the scene for tracing: resolves material references
// with the fallback where needed, commits meshes, discards invalid
// instances, binds textures, builds the light sampling CDF and the
// acceleration structure. Problems worth reporting are appended to log.
// Commit fails only when nothing remains to render.
func (s *RenderScene) Commit(log *[]string) error {
	if s.committed {
		return nil
	}

	report := func(msg string) {
		if log != nil {
			*log = append(*log, msg)
		}
	}

	fallbackID := len(s.materials) - 1
	for i, m := range s.meshes {
		if m == nil {
			report(fmt.Sprintf("mesh slot %d is empty", i))
			continue
		}
		normChID := -1
		if m.MatID >= 0 && m.MatID < len(s.materials) {
			if mat := s.materials[m.MatID]; mat != nil {
				normChID = mat.NormalTextureChannel()
			} else {
				report(fmt.Sprintf("mesh %d refers to undefined material %d", i, m.MatID))
				m.MatID = fallbackID
			}
		} else {
			m.MatID = fallbackID
		}
		if !m.Commit(normChID) {
			report(fmt.Sprintf("mesh %d is inconsistent", i))
		}
	}

	invalid := 0
	for _, ri := range s.instances {
		if ri == nil {
			invalid++
			continue
		}
		if ri.MeshID < 0 || ri.MeshID >= len(s.meshes) ||
			s.meshes[ri.MeshID] == nil || !s.meshes[ri.MeshID].IsValid() {
			ri.MeshID = -1
			invalid++
		}
	}
	if invalid > 0 {
		report(fmt.Sprintf("%d from %d instances are invalid", invalid, len(s.instances)))
	}
	if invalid == len(s.instances) {
		return fmt.Errorf("scene commit: no valid instances to render")
	}

	for i, m := range s.materials {
		if m == nil {
			s.materials[i] = s.materials[fallbackID]
			m = s.materials[i]
		}
		m.SetTextures(s.textures)
	}

	s.lightSampler = core.NewDistanceRandom(len(s.lights))
	for i, l := range s.lights {
		if l != nil {
			s.lightSampler.SetDistance(i, l.Power())
		}
	}
	if len(s.lights) > 0 {
		s.lightSampler.Calculate()
	}

	s.buildIntersector()
	s.committed = true
	return nil
}

// buildIntersector sets up the two-level BVH over all valid instances
func (s *RenderScene) buildIntersector() {
	meshBVHs := make([]*accel.MeshBVH, len(s.meshes))
	for i, m := range s.meshes {
		if m != nil && m.IsValid() {
			meshBVHs[i] = accel.NewMeshBVH(m.Positions, m.Faces)
		}
	}

	var instances []*accel.Instance
	for _, ri := range s.instances {
		if ri == nil || ri.MeshID < 0 || meshBVHs[ri.MeshID] == nil {
			continue
		}
		instances = append(instances, &accel.Instance{
			Mesh:      meshBVHs[ri.MeshID],
			GeomID:    ri.MeshID,
			InstID:    ri.InstID,
			Transform: ri.Transform,
		})
	}
	s.intersector = accel.NewTwoLevelBVH(instances)
}

// Intersect finds the nearest hit for the query. The scene must be
// committed first.
func (s *RenderScene) Intersect(q *accel.RayQuery) (accel.Hit, bool) {
	return s.intersector.Intersect(q)
}

// SampleLight picks a light proportionally to its power using a uniform
// value in [0, 1) and returns it with its selection probability
func (s *RenderScene) SampleLight(u float64) (lights.RenderLight, float64) {
	if s.lightSampler == nil || len(s.lights) == 0 {
		return nil, 0
	}
	id := s.lightSampler.Random(u)
	if id < 0 {
		return nil, 0
	}
	return s.lights[id], s.lightSampler.Pdf(id)
}

// LightPdf returns the selection probability of the given light slot
func (s *RenderScene) LightPdf(i int) float64 {
	if s.lightSampler == nil {
		return 0
	}
	return s.lightSampler.Pdf(i)
}

// ResolveHit fills sp with the world-space surface state of a hit and
// returns the material at that surface
func (s *RenderScene) ResolveHit(hit accel.Hit, sp *core.SurfacePoint) material.Material {
	m := s.meshes[hit.GeomID]
	ri := s.instances[hit.InstID]

	sp.InstanceID = hit.InstID
	sp.PrimID = hit.PrimID
	sp.Bary = core.Vec3{X: 1.0 - hit.U - hit.V, Y: hit.U, Z: hit.V}
	m.SurfacePointAt(sp, ri.Transform, ri.NormalMatrix())
	return s.materials[m.MatID]
}

// Material returns the material in the given slot
func (s *RenderScene) Material(i int) material.Material {
	return s.materials[i]
}
