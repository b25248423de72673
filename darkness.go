package sinerider

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Light is a lantern that shines through a Darkness overlay.
type Light struct {
	// Target, if set, makes the light follow this entity's world position.
	Target EntityID
	// Position is the light's world position, or its offset from Target.
	Position Vec2
	// Radius is the lit radius in world units.
	Radius float64
	// Intensity controls how much darkness the light removes, in [0, 1].
	Intensity float64
	// Enabled determines whether this light is drawn.
	Enabled bool
	// Color tints the lit area. Zero value or white means no tint.
	Color Color
}

// DefaultDarknessColor is the overlay colour used by NewDarkness.
var DefaultDarknessColor = Color{R: 0.004, G: 0.002, B: 0, A: 1}

// Darkness is the post-process of the level's render buffer. Each frame it
// fills an overlay with Color at the current opacity, erases feathered
// circles at every enabled light, and paints the overlay over the buffer
// with source-atop so only pixels already drawn are darkened.
//
// Darkness is attached to the lighting entity as its behaviour; the
// buffer's PostProcess is set to Darkness.PostProcess.
type Darkness struct {
	Color Color

	opacity     float64
	lights      []*Light
	scene       *Scene
	overlay     *ebiten.Image
	ow, oh      int
	circleCache map[int]*ebiten.Image
	imgOp       ebiten.DrawImageOptions
}

// NewDarkness creates a fully transparent darkness effect.
func NewDarkness() *Darkness {
	return &Darkness{Color: DefaultDarknessColor}
}

// SetOpacity sets the overlay opacity, clamped to [0, 1].
func (d *Darkness) SetOpacity(a float64) { d.opacity = clamp01(a) }

// Opacity returns the current overlay opacity.
func (d *Darkness) Opacity() float64 { return d.opacity }

// AddLight adds a light.
func (d *Darkness) AddLight(l *Light) {
	d.lights = append(d.lights, l)
}

// RemoveLight removes a light.
func (d *Darkness) RemoveLight(l *Light) {
	for i, existing := range d.lights {
		if existing == l {
			d.lights = append(d.lights[:i], d.lights[i+1:]...)
			return
		}
	}
}

// ClearLights removes all lights.
func (d *Darkness) ClearLights() {
	d.lights = d.lights[:0]
}

// Lights returns the current light list. The returned slice MUST NOT be mutated.
func (d *Darkness) Lights() []*Light {
	return d.lights
}

// Awake binds the effect to its scene for resolving light targets.
func (d *Darkness) Awake(e *Entity) error {
	d.scene = e.Scene()
	return nil
}

// Destroy releases the overlay and cached light textures.
func (d *Darkness) Destroy(*Entity) error {
	if d.overlay != nil {
		d.overlay.Deallocate()
		d.overlay = nil
	}
	for _, img := range d.circleCache {
		img.Deallocate()
	}
	d.circleCache = nil
	d.lights = nil
	return nil
}

// PostProcess darkens img in place.
func (d *Darkness) PostProcess(img *ebiten.Image, width, height int) {
	if d.opacity <= 0 {
		return
	}
	if d.overlay == nil || d.ow != width || d.oh != height {
		if d.overlay != nil {
			d.overlay.Deallocate()
		}
		d.overlay = ebiten.NewImage(width, height)
		d.ow, d.oh = width, height
	}

	overlay := d.overlay
	overlay.Clear()
	c := d.Color
	overlay.Fill(color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(d.opacity * 255),
	})

	var sc *Scope
	if d.scene != nil {
		sc = d.scene.Scope()
	}
	op := &d.imgOp
	for _, l := range d.lights {
		if !l.Enabled || l.Radius <= 0 {
			continue
		}
		x, y, r := d.lightOnScreen(l, sc)
		if r <= 0 {
			continue
		}
		circle := d.getCircle(r)
		size := float64(circle.Bounds().Dx())
		intensity := float32(clamp01(l.Intensity))

		op.GeoM.Reset()
		op.GeoM.Scale(2*r/size, 2*r/size)
		op.GeoM.Translate(x-r, y-r)

		// Erase pass: punch a hole in the darkness.
		op.ColorScale.Reset()
		op.ColorScale.Scale(intensity, intensity, intensity, intensity)
		op.Blend = BlendErase.EbitenBlend()
		overlay.DrawImage(circle, op)

		// Tint pass: additive glow for coloured lanterns.
		if lc := l.Color; lc != (Color{}) && lc != ColorWhite {
			tint := intensity * 0.3
			op.ColorScale.Reset()
			op.ColorScale.Scale(float32(lc.R)*tint, float32(lc.G)*tint, float32(lc.B)*tint, tint)
			op.Blend = BlendAdd.EbitenBlend()
			overlay.DrawImage(circle, op)
		}
	}

	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = BlendSourceAtop.EbitenBlend()
	img.DrawImage(overlay, op)
}

// lightOnScreen projects a light's centre and radius into pixels.
func (d *Darkness) lightOnScreen(l *Light, sc *Scope) (x, y, r float64) {
	p := l.Position
	if !l.Target.IsZero() && d.scene != nil {
		t := d.scene.get(l.Target)
		if t == nil {
			return 0, 0, 0
		}
		p = t.WorldPosition().Add(l.Position)
	}
	if sc == nil {
		return p.X, p.Y, l.Radius
	}
	x, y = sc.WorldToScreen(p)
	return x, y, l.Radius * sc.PixelsPerUnit()
}

// getCircle returns a cached circle texture for the given radius, generating
// one if it doesn't exist. Radius is quantized to the nearest integer to
// avoid generating separate textures for tiny differences.
func (d *Darkness) getCircle(radius float64) *ebiten.Image {
	key := max(int(math.Ceil(radius)), 1)
	if d.circleCache == nil {
		d.circleCache = make(map[int]*ebiten.Image)
	}
	if img, ok := d.circleCache[key]; ok {
		return img
	}
	img := generateCircle(float64(key))
	d.circleCache[key] = img
	return img
}

// generateCircle creates a feathered white circle image with the given radius.
// Uses smoothstep falloff and premultiplied alpha.
func generateCircle(radius float64) *ebiten.Image {
	size := max(int(math.Ceil(radius*2)), 1)
	img := ebiten.NewImage(size, size)
	pix := make([]byte, size*size*4)

	cx, cy := radius, radius
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			dist := math.Sqrt(dx*dx+dy*dy) / radius

			var alpha float64
			if dist < 1 {
				// smoothstep: 1 at center, 0 at edge
				t := 1 - dist
				alpha = t * t * (3 - 2*t)
			}

			a := uint8(alpha * 255)
			off := (y*size + x) * 4
			pix[off+0] = a
			pix[off+1] = a
			pix[off+2] = a
			pix[off+3] = a
		}
	}
	img.WritePixels(pix)
	return img
}

// DarknessOpacity returns the overlay opacity for a walker at horizontal
// position x: min(0.9, (x/20)^2).
func DarknessOpacity(x float64) float64 {
	return math.Min(0.9, math.Pow(x/20, 2))
}

// WalkerDarkOpacity returns the dark-mode opacity applied to walkers for a
// given overlay opacity: opacity^5.
func WalkerDarkOpacity(opacity float64) float64 {
	return math.Pow(opacity, 5)
}
