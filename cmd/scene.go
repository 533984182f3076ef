package cmd

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
	"github.com/sensorsim/go-bdpt-renderer/pkg/lights"
	"github.com/sensorsim/go-bdpt-renderer/pkg/material"
	"github.com/sensorsim/go-bdpt-renderer/pkg/scene"
)

// newPlaneMesh builds a two-triangle square of the given half extent in
// the XZ plane, facing +Y, with texture channel 0 tiled uvScale times.
func newPlaneMesh(id, matID int, halfExtent, uvScale float64) *scene.RenderMesh {
	m := scene.NewRenderMesh(id, 4, 2, 1, matID)
	m.SetVertices([]core.Vec3{
		{X: -halfExtent, Y: 0, Z: -halfExtent},
		{X: halfExtent, Y: 0, Z: -halfExtent},
		{X: halfExtent, Y: 0, Z: halfExtent},
		{X: -halfExtent, Y: 0, Z: halfExtent},
	})
	m.SetTexCoords(0, []core.Vec2{
		{X: 0, Y: 0},
		{X: uvScale, Y: 0},
		{X: uvScale, Y: uvScale},
		{X: 0, Y: uvScale},
	})
	m.SetFaces([][3]uint32{{0, 2, 1}, {0, 3, 2}})
	return m
}

// newQuadMesh builds a unit square in the XY plane facing -Z, centered
// at the origin. Scaled and oriented through its instance transform.
func newQuadMesh(id, matID int) *scene.RenderMesh {
	m := scene.NewRenderMesh(id, 4, 2, 0, matID)
	m.SetVertices([]core.Vec3{
		{X: -0.5, Y: -0.5, Z: 0},
		{X: 0.5, Y: -0.5, Z: 0},
		{X: 0.5, Y: 0.5, Z: 0},
		{X: -0.5, Y: 0.5, Z: 0},
	})
	m.SetFaces([][3]uint32{{0, 2, 1}, {0, 3, 2}})
	return m
}

// newSphereMesh builds a latitude-longitude sphere around the origin.
func newSphereMesh(id, matID int, radius float64, stacks, slices int) *scene.RenderMesh {
	vertN := (stacks + 1) * (slices + 1)
	faceN := stacks * slices * 2
	m := scene.NewRenderMesh(id, vertN, faceN, 1, matID)

	verts := make([]core.Vec3, 0, vertN)
	norms := make([]core.Vec3, 0, vertN)
	uvs := make([]core.Vec2, 0, vertN)
	for st := 0; st <= stacks; st++ {
		phi := math.Pi * float64(st) / float64(stacks)
		for sl := 0; sl <= slices; sl++ {
			theta := 2 * math.Pi * float64(sl) / float64(slices)
			n := core.Vec3{
				X: math.Sin(phi) * math.Cos(theta),
				Y: math.Cos(phi),
				Z: math.Sin(phi) * math.Sin(theta),
			}
			verts = append(verts, n.Multiply(radius))
			norms = append(norms, n)
			uvs = append(uvs, core.Vec2{
				X: float64(sl) / float64(slices),
				Y: float64(st) / float64(stacks),
			})
		}
	}

	faces := make([][3]uint32, 0, faceN)
	cols := uint32(slices + 1)
	for st := 0; st < stacks; st++ {
		for sl := 0; sl < slices; sl++ {
			a := uint32(st)*cols + uint32(sl)
			b := a + 1
			c := a + cols
			d := c + 1
			faces = append(faces, [3]uint32{a, b, d}, [3]uint32{a, d, c})
		}
	}

	m.SetVertices(verts)
	m.SetNormals(norms)
	m.SetTexCoords(0, uvs)
	m.SetFaces(faces)
	return m
}

// checkerTexture renders a two-tone checkerboard bitmap.
func checkerTexture(size, squares int, a, b color.RGBA) *material.BitmapTexture {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := size / squares
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if ((x/cell)+(y/cell))%2 == 0 {
				img.SetRGBA(x, y, a)
			} else {
				img.SetRGBA(x, y, b)
			}
		}
	}
	return material.NewBitmapTexture(img)
}

// aluminumIorTable returns measured complex refractive indices of
// aluminum at room temperature for the three render wavelengths.
func aluminumIorTable() *material.IorTable {
	t := material.NewIorTable()
	t.AddRow(293.0, []material.IorSample{
		{Wavelength: 440e-9, N: 0.59, K: 5.30},
		{Wavelength: 510e-9, N: 0.82, K: 6.08},
		{Wavelength: 650e-9, N: 1.47, K: 7.79},
	})
	return t
}

// buildDemoScene assembles the built-in showcase: a checkered ground
// plane, a rough dielectric and a metallic sphere, an aluminum mirror
// panel and two point lights.
func buildDemoScene() (*scene.RenderScene, error) {
	sc := scene.NewRenderScene()
	sc.Allocate(4, 4, 4, 1, 2)

	sc.SetMesh(0, newPlaneMesh(0, 0, 10, 8))
	sc.SetMesh(1, newSphereMesh(1, 1, 1.0, 24, 48))
	sc.SetMesh(2, newSphereMesh(2, 2, 1.0, 24, 48))
	sc.SetMesh(3, newQuadMesh(3, 3))

	sc.SetInstance(0, core.IdentityMat4(), 0)
	sc.SetInstance(1, core.TranslationMat4(core.Vec3{X: -1.6, Y: 1.0, Z: 0.5}), 1)
	sc.SetInstance(2, core.TranslationMat4(core.Vec3{X: 1.6, Y: 1.0, Z: -0.5}), 2)
	panel := core.TranslationMat4(core.Vec3{X: 0, Y: 2.0, Z: 4.0}).
		Multiply(core.RotationMat4(core.Vec3{X: 0, Y: 1, Z: 0}, math.Pi)).
		Multiply(core.ScaleMat4(core.Vec3{X: 6, Y: 4, Z: 1}))
	sc.SetInstance(3, panel, 3)

	sc.SetTexture(0, checkerTexture(256, 8,
		color.RGBA{R: 230, G: 230, B: 230, A: 255},
		color.RGBA{R: 40, G: 40, B: 40, A: 255}))

	ground := material.NewPbrParams()
	ground.MetallicFactor = 0.0
	ground.RoughnessFactor = 0.9
	ground.BaseColor.MapID = 0
	sc.SetMaterial(0, material.NewPhysicallyBased(ground))

	red := material.NewPbrParams()
	red.BaseColorFactor = core.Vec4{X: 0.75, Y: 0.12, Z: 0.08, W: 1}
	red.MetallicFactor = 0.0
	red.RoughnessFactor = 0.5
	sc.SetMaterial(1, material.NewPhysicallyBased(red))

	metal := material.NewPbrParams()
	metal.BaseColorFactor = core.Vec4{X: 0.9, Y: 0.85, Z: 0.7, W: 1}
	metal.MetallicFactor = 1.0
	metal.RoughnessFactor = 0.15
	sc.SetMaterial(2, material.NewPhysicallyBased(metal))

	sc.SetMaterial(3, material.NewMeasuredOptical(aluminumIorTable(), 293.0))

	sc.SetLight(0, lights.NewPointLight(
		core.Vec3{X: -4, Y: 6, Z: -4}, core.Vec3{X: 1, Y: 1, Z: 1}, 0))
	sc.SetLight(1, lights.NewPointLight(
		core.Vec3{X: 5, Y: 5, Z: -2}, core.Vec3{X: 0.6, Y: 0.6, Z: 0.7}, 0))

	sc.SetBackground(scene.NewUniformBackground(core.Vec3{X: 60, Y: 70, Z: 90}))

	var problems []string
	if err := sc.Commit(&problems); err != nil {
		return nil, fmt.Errorf("commit demo scene: %w", err)
	}
	for _, p := range problems {
		logger.Warningf("scene: %s", p)
	}
	return sc, nil
}
