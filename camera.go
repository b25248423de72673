package sinerider

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// cameraScroll eases X, Y and Zoom toward a ScrollTo target, in that
// order in tweens.
type cameraScroll struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera maps world space (Y up, world units) onto the primary surface
// (Y down, pixels). It is attached to the level as an entity behaviour and
// advances its follow and scroll animations on tick.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the number of pixels per world unit.
	Zoom float64
	// Viewport is the screen-space rectangle the camera renders into.
	Viewport Rect

	fov float64

	follow       EntityID
	followOffset Vec2
	followLerp   float64

	view, inv [6]float64
	dirty     bool

	scroll *cameraScroll
}

// NewCamera creates a Camera centered on (x, y) showing fov world units
// across the viewport's shorter side.
func NewCamera(x, y, fov float64, viewport Rect) *Camera {
	c := &Camera{X: x, Y: y, Zoom: 1, Viewport: viewport, dirty: true}
	c.SetFOV(fov)
	return c
}

// SetFOV sets the zoom so fov world units fit the viewport's shorter side.
func (c *Camera) SetFOV(fov float64) {
	if fov > 0 {
		c.fov = fov
	}
	side := math.Min(c.Viewport.Width, c.Viewport.Height)
	if fov > 0 && side > 0 {
		c.Zoom = side / fov
		c.dirty = true
	}
}

// FOV returns the world units visible across the viewport's shorter side.
func (c *Camera) FOV() float64 {
	return math.Min(c.Viewport.Width, c.Viewport.Height) / c.Zoom
}

// Follow makes the camera track an entity with the given offset and lerp
// factor. A lerp of 1.0 snaps immediately; lower values give smoother
// following.
func (c *Camera) Follow(id EntityID, offset Vec2, lerp float64) {
	c.follow = id
	c.followOffset = offset
	c.followLerp = lerp
}

// Following returns the tracked entity, or NoEntity.
func (c *Camera) Following() EntityID { return c.follow }

// ScrollTo animates the camera to the given world position and zoom over
// duration seconds. A zoom of 0 keeps the current zoom.
func (c *Camera) ScrollTo(x, y, zoom float64, duration float32, easeFn ease.TweenFunc) {
	if zoom <= 0 {
		zoom = c.Zoom
	}
	if easeFn == nil {
		easeFn = ease.InOutQuad
	}
	c.scroll = &cameraScroll{tweens: [3]*gween.Tween{
		gween.New(float32(c.X), float32(x), duration, easeFn),
		gween.New(float32(c.Y), float32(y), duration, easeFn),
		gween.New(float32(c.Zoom), float32(zoom), duration, easeFn),
	}}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool { return c.scroll != nil }

// Tick advances Follow and ScrollTo.
func (c *Camera) Tick(e *Entity, sc *Scope) error {
	c.update(e.Scene(), sc.DT)
	return nil
}

// Resize fits the viewport to the new surface, keeping the field of view.
func (c *Camera) Resize(_ *Entity, width, height int) error {
	c.Viewport = Rect{Width: float64(width), Height: float64(height)}
	c.SetFOV(c.fov)
	c.dirty = true
	return nil
}

func (c *Camera) update(s *Scene, dt float64) {
	prevX, prevY, prevZoom := c.X, c.Y, c.Zoom

	if target := s.get(c.follow); target != nil {
		p := target.WorldPosition().Add(c.followOffset)
		c.X += (p.X - c.X) * c.followLerp
		c.Y += (p.Y - c.Y) * c.followLerp
	}

	if st := c.scroll; st != nil {
		fields := [3]*float64{&c.X, &c.Y, &c.Zoom}
		finished := true
		for i, tw := range st.tweens {
			if st.done[i] {
				continue
			}
			v, done := tw.Update(float32(dt))
			*fields[i] = float64(v)
			st.done[i] = done
			finished = finished && done
		}
		if finished {
			c.scroll = nil
		}
	}

	if c.X != prevX || c.Y != prevY || c.Zoom != prevZoom {
		c.dirty = true
	}
}

// matrices returns the world-to-screen affine and its inverse:
// translate to the viewport centre, scale by (Zoom, -Zoom), then translate
// by (-X, -Y). The negative Y scale turns world Y-up into screen Y-down.
func (c *Camera) matrices() (view, inv [6]float64) {
	if c.dirty {
		z := c.Zoom
		cx := c.Viewport.X + c.Viewport.Width/2
		cy := c.Viewport.Y + c.Viewport.Height/2
		c.view = [6]float64{z, 0, 0, -z, cx - z*c.X, cy + z*c.Y}
		c.inv = invertAffine(c.view)
		c.dirty = false
	}
	return c.view, c.inv
}

// WorldToScreen maps a world point to pixels.
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	view, _ := c.matrices()
	return transformPoint(view, wx, wy)
}

// ScreenToWorld maps a pixel to world units.
func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	_, inv := c.matrices()
	return transformPoint(inv, sx, sy)
}

// VisibleBounds returns the world-space rectangle the camera shows.
func (c *Camera) VisibleBounds() Rect {
	x0, y0 := c.ScreenToWorld(c.Viewport.X, c.Viewport.Y+c.Viewport.Height)
	x1, y1 := c.ScreenToWorld(c.Viewport.X+c.Viewport.Width, c.Viewport.Y)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// MarkDirty must be called after X, Y or Zoom are set directly.
func (c *Camera) MarkDirty() {
	c.dirty = true
}
