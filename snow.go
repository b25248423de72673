package sinerider

import (
	"image/color"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// flake holds per-flake simulation state. Managed by SnowFall.
type flake struct {
	x, y   float64
	vx, vy float64
	life   float64
	size   float64
	alpha  float64
}

const defaultMaxFlakes = 512

// SnowFall is a world-space particle field of falling snow that covers the
// camera view. Flakes are pooled; new flakes are dropped when the pool is
// full.
type SnowFall struct {
	// Density is flakes spawned per second per world unit of view width.
	Density float64
	// Velocity is the mean flake velocity in world units per second.
	Velocity Vec2
	// MaxHeight caps the height flakes spawn at. Zero means no cap.
	MaxHeight float64
	// Jitter is the per-flake random spread applied to Velocity.
	Jitter Range

	flakes    []flake
	alive     int
	emitAccum float64
}

// NewSnowFall creates a snow field from its datum.
func NewSnowFall(d SnowDatum) *SnowFall {
	v := d.Velocity.Vec2()
	if v == (Vec2{}) {
		v = Vec2{0, -1}
	}
	return &SnowFall{
		Density:   d.Density,
		Velocity:  v,
		MaxHeight: d.MaxHeight,
		Jitter:    Range{Min: -0.3, Max: 0.3},
		flakes:    make([]flake, defaultMaxFlakes),
	}
}

// AliveCount returns the number of live flakes.
func (s *SnowFall) AliveCount() int { return s.alive }

// Reset kills every flake.
func (s *SnowFall) Reset() {
	s.alive = 0
	s.emitAccum = 0
}

func (s *SnowFall) Tick(_ *Entity, sc *Scope) error {
	s.update(sc.DT, viewOf(sc))
	return nil
}

// viewOf returns the world rectangle visible through the scope's camera.
func viewOf(sc *Scope) Rect {
	if sc.Camera != nil {
		return sc.Camera.VisibleBounds()
	}
	return Rect{Width: float64(sc.Width), Height: float64(sc.Height)}
}

// update advances flakes by dt seconds and spawns new ones along the top of
// view.
func (s *SnowFall) update(dt float64, view Rect) {
	i := 0
	for i < s.alive {
		f := &s.flakes[i]
		f.life -= dt
		f.x += f.vx * dt
		f.y += f.vy * dt
		if f.life <= 0 || f.y < view.Y {
			s.alive--
			s.flakes[i] = s.flakes[s.alive]
			continue
		}
		i++
	}

	if s.Density <= 0 || view.Width <= 0 {
		return
	}
	top := view.Y + view.Height
	if s.MaxHeight > 0 {
		top = min(top, s.MaxHeight)
	}
	fall := -s.Velocity.Y
	if fall <= 0 {
		fall = 1
	}
	s.emitAccum += s.Density * view.Width * dt
	for s.emitAccum >= 1 {
		s.emitAccum--
		if s.alive >= len(s.flakes) {
			continue
		}
		f := &s.flakes[s.alive]
		f.x = view.X + rand.Float64()*view.Width
		f.y = top
		f.vx = s.Velocity.X + s.Jitter.Random()
		f.vy = s.Velocity.Y + s.Jitter.Random()
		f.life = (top-view.Y)/fall + 1
		f.size = 0.05 + rand.Float64()*0.1
		f.alpha = 0.5 + rand.Float64()*0.5
		s.alive++
	}
}

func (s *SnowFall) Draw(_ *Entity, sc *Scope, dst *ebiten.Image) error {
	ppu := sc.PixelsPerUnit()
	for i := 0; i < s.alive; i++ {
		f := &s.flakes[i]
		x, y := sc.WorldToScreen(Vec2{f.x, f.y})
		a := uint8(f.alpha * 255)
		vector.DrawFilledCircle(dst, float32(x), float32(y), float32(max(f.size*ppu, 1)), color.RGBA{R: a, G: a, B: a, A: a}, true)
	}
	return nil
}
