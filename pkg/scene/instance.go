package scene

import "github.com/sensorsim/go-bdpt-renderer/pkg/core"

// RenderInstance places a mesh in the world under an affine transform.
// MeshID is set to -1 at commit when the reference is invalid.
type RenderInstance struct {
	InstID int
	MeshID int

	Transform    core.Mat4
	normalMatrix core.Mat3
}

// SetTransform installs the mesh-to-world transform and caches its
// normal matrix
func (ri *RenderInstance) SetTransform(t core.Mat4) {
	ri.Transform = t
	ri.normalMatrix = t.NormalMatrix()
}

// NormalMatrix returns the cached inverse-transpose of the transform
func (ri *RenderInstance) NormalMatrix() core.Mat3 {
	return ri.normalMatrix
}
