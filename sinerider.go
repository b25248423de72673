package sinerider

import (
	"image/color"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// Vec2 is a point or offset in world units. World Y grows upward.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Rect is an axis-aligned box spanning [X, X+Width] by [Y, Y+Height].
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) is inside r or on its edge.
func (r Rect) Contains(x, y float64) bool {
	return PointInRect(Vec2{x, y}, r, true)
}

func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Circle is a circle in world space.
type Circle struct {
	X, Y, Radius float64
}

// Range bounds a randomized parameter such as a snowflake's drift.
type Range struct {
	Min, Max float64
}

// Random returns a uniform value in [Min, Max].
func (r Range) Random() float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rand.Float64()*(r.Max-r.Min)
}

// Color is a straight-alpha colour with components in [0, 1]. Level data
// writes colours as hex strings; see ParseHexColor.
type Color struct {
	R, G, B, A float64
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// Lerp mixes c toward o by t.
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		R: lerp(c.R, o.R, t),
		G: lerp(c.G, o.G, t),
		B: lerp(c.B, o.B, t),
		A: lerp(c.A, o.A, t),
	}
}

// toRGBA premultiplies c for Ebitengine.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R) * a * 255),
		G: uint8(clamp01(c.G) * a * 255),
		B: uint8(clamp01(c.B) * a * 255),
		A: uint8(a * 255),
	}
}

// BlendMode names the compositing operations the renderer uses.
type BlendMode uint8

const (
	BlendNormal     BlendMode = iota // source-over
	BlendAdd                         // lighter; coloured lantern glow
	BlendErase                       // destination-out; cuts light holes in darkness
	BlendSourceAtop                  // paints only over existing alpha
)

// EbitenBlend maps b to its ebiten.Blend.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendSourceAtop:
		return ebiten.BlendSourceAtop
	}
	return ebiten.BlendSourceOver
}

// whitePixel is a shared 1x1 white image; scaled and tinted, it fills
// rectangles without a per-frame allocation.
var whitePixel = sync.OnceValue(func() *ebiten.Image {
	img := ebiten.NewImage(1, 1)
	img.Fill(color.White)
	return img
})

// fillRect fills a pixel-space rectangle of dst with c.
func fillRect(dst *ebiten.Image, x, y, w, h float64, c Color) {
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	a := float32(clamp01(c.A))
	op.ColorScale.Scale(float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a)
	dst.DrawImage(whitePixel(), &op)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
