package material

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/sensorsim/go-bdpt-renderer/pkg/core"
)

// neutralTexel is returned for unset textures and out-of-range fetches
var neutralTexel = core.Vec4{X: 0.5, Y: 0.5, Z: 0.5, W: 1.0}

// BitmapTexture is an RGBA bitmap sampled with repeat addressing and
// bilinear filtering. Values are returned normalized to [0, 1].
type BitmapTexture struct {
	pix    []uint8 // RGBA, 4 bytes per texel
	width  int
	height int
}

// NewBitmapTexture converts any decoded image into a texture. The source
// is drawn into a plain RGBA raster first so sampling never touches the
// original pixel format.
func NewBitmapTexture(img image.Image) *BitmapTexture {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)
	return &BitmapTexture{pix: rgba.Pix, width: rgba.Rect.Dx(), height: rgba.Rect.Dy()}
}

// NewScaledBitmapTexture converts and resamples an image to the given
// size using Catmull-Rom interpolation
func NewScaledBitmapTexture(img image.Image, w, h int) *BitmapTexture {
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(rgba, rgba.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return &BitmapTexture{pix: rgba.Pix, width: w, height: h}
}

// Width returns the texture width in texels
func (t *BitmapTexture) Width() int { return t.width }

// Height returns the texture height in texels
func (t *BitmapTexture) Height() int { return t.height }

// TexelFetch returns the texel at integer coordinates without filtering
func (t *BitmapTexture) TexelFetch(x, y int) core.Vec4 {
	if t == nil || t.pix == nil || x < 0 || x >= t.width || y < 0 || y >= t.height {
		return neutralTexel
	}
	i := (y*t.width + x) * 4
	const s = 1.0 / 255.0
	return core.Vec4{
		X: float64(t.pix[i]) * s,
		Y: float64(t.pix[i+1]) * s,
		Z: float64(t.pix[i+2]) * s,
		W: float64(t.pix[i+3]) * s,
	}
}

// Texture samples the bitmap at normalized coordinates with repeat
// addressing and bilinear filtering
func (t *BitmapTexture) Texture(u, v float64) core.Vec4 {
	if t == nil || t.pix == nil {
		return neutralTexel
	}

	u -= math.Floor(u - 0.5/float64(t.width))
	v -= math.Floor(v - 0.5/float64(t.height))
	u *= float64(t.width)
	v *= float64(t.height)

	iu := int(u)
	iv := int(v)
	kui := u - float64(iu)
	kvi := v - float64(iv)
	ku := 1.0 - kui
	kv := 1.0 - kvi

	l := iu % t.width
	r := (iu + 1) % t.width
	b := iv % t.height
	top := (iv + 1) % t.height

	bl := t.TexelFetch(l, b)
	br := t.TexelFetch(r, b)
	tl := t.TexelFetch(l, top)
	tr := t.TexelFetch(r, top)

	return core.Vec4{
		X: bl.X*ku*kv + br.X*kui*kv + tl.X*ku*kvi + tr.X*kui*kvi,
		Y: bl.Y*ku*kv + br.Y*kui*kv + tl.Y*ku*kvi + tr.Y*kui*kvi,
		Z: bl.Z*ku*kv + br.Z*kui*kv + tl.Z*ku*kvi + tr.Z*kui*kvi,
		W: bl.W*ku*kv + br.W*kui*kv + tl.W*ku*kvi + tr.W*kui*kvi,
	}
}

// TextureAt samples the bitmap at the surface point's coordinates for the
// given texture channel
func (t *BitmapTexture) TextureAt(sp *core.SurfacePoint, channel int) core.Vec4 {
	uv, ok := sp.TexCoord(channel)
	if !ok {
		return neutralTexel
	}
	return t.Texture(uv.X, uv.Y)
}
