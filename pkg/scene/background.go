package scene

import "github.com/sensorsim/go-bdpt-renderer/pkg/core"

// Background supplies the radiance for rays that leave the scene without
// hitting any geometry
type Background interface {
	// Radiance returns the emitted radiance along the escaping direction
	Radiance(dir core.Vec3) core.Vec3

	// Average returns the mean radiance over all directions
	Average() core.Vec3
}

// UniformBackground emits the same radiance in every direction
type UniformBackground struct {
	radiance core.Vec3
}

// NewUniformBackground creates a background with the given radiance
func NewUniformBackground(radiance core.Vec3) *UniformBackground {
	return &UniformBackground{radiance: radiance}
}

// NewDefaultBackground creates the standard uniform background with
// radiance 100 in every channel
func NewDefaultBackground() *UniformBackground {
	return NewUniformBackground(core.Vec3{X: 100, Y: 100, Z: 100})
}

func (b *UniformBackground) Radiance(core.Vec3) core.Vec3 {
	return b.radiance
}

func (b *UniformBackground) Average() core.Vec3 {
	return b.radiance
}
