package sinerider

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Sledder tuning, in world units and seconds.
const (
	sledGravity  = 9.8
	sledFriction = 0.05
	sledSize     = 1.5
)

// --- Sledder ---

// Sledder rides the graph while the level runs. When stopped it rests on
// the curve at its start position.
type Sledder struct {
	Name  string
	Asset string

	graph  *Graph
	assets Assets
	startX float64

	x, v  float64
	angle float64
	e     *Entity
}

// NewSledder creates a sledder starting at x on graph.
func NewSledder(name string, x float64, graph *Graph, assets Assets) *Sledder {
	return &Sledder{Name: name, graph: graph, assets: assets, startX: x, x: x}
}

// X returns the sledder's horizontal position.
func (s *Sledder) X() float64 { return s.x }

// Velocity returns the sledder's speed along x.
func (s *Sledder) Velocity() float64 { return s.v }

// Reset returns the sledder to its start position at rest.
func (s *Sledder) Reset() {
	s.x, s.v, s.angle = s.startX, 0, 0
	s.place(0)
}

func (s *Sledder) place(t float64) {
	if s.e == nil {
		return
	}
	y := 0.0
	if s.graph != nil {
		y, _ = s.graph.Eval(s.x, t)
		s.angle = math.Atan(s.graph.Slope(s.x, t))
	}
	s.e.SetPosition(Vec2{s.x, y})
}

func (s *Sledder) Awake(e *Entity) error {
	s.e = e
	s.Reset()
	return nil
}

func (s *Sledder) Tick(_ *Entity, sc *Scope) error {
	if !sc.Running {
		s.place(sc.T)
		return nil
	}
	slope := 0.0
	if s.graph != nil {
		slope = s.graph.Slope(s.x, sc.T)
	}
	angle := math.Atan(slope)
	s.v += -sledGravity * math.Sin(angle) * sc.DT
	s.v -= s.v * sledFriction * sc.DT
	s.x += s.v * math.Cos(angle) * sc.DT
	s.place(sc.T)
	return nil
}

var (
	sledderBody = color.RGBA{R: 200, G: 60, B: 50, A: 255}
	sledderSled = color.RGBA{R: 90, G: 55, B: 30, A: 255}
)

func (s *Sledder) Draw(e *Entity, sc *Scope, dst *ebiten.Image) error {
	p := e.WorldPosition()
	if img, ok := lookupImage(s.assets, s.Asset); ok {
		drawImageWorld(dst, img, sc, p.Add(Vec2{0, sledSize / 2}), sledSize, false, 1)
		return nil
	}
	ppu := sc.PixelsPerUnit()
	half := sledSize / 2
	cos, sin := math.Cos(s.angle), math.Sin(s.angle)
	ax, ay := sc.WorldToScreen(Vec2{p.X - half*cos, p.Y - half*sin})
	bx, by := sc.WorldToScreen(Vec2{p.X + half*cos, p.Y + half*sin})
	vector.StrokeLine(dst, float32(ax), float32(ay), float32(bx), float32(by), float32(0.15*ppu), sledderSled, true)
	hx, hy := sc.WorldToScreen(p.Add(Vec2{-sin * 0.5, cos * 0.5}))
	vector.DrawFilledCircle(dst, float32(hx), float32(hy), float32(0.35*ppu), sledderBody, true)
	return nil
}

// --- Walker ---

// followerSpacing is the gap between a walker and each follower.
const followerSpacing = 1.5

// Walker walks along x. With a Speed and a non-empty Range it patrols the
// range; Nudge moves it directly. Walkers in dark mode fade toward a
// silhouette as DarkModeOpacity rises.
type Walker struct {
	Name  string
	Asset string
	Speed float64
	Range [2]float64

	HasDarkMode     bool
	DarkModeOpacity float64

	// Followers are walkers trailing this one as child entities.
	Followers []*Walker

	assets Assets
	dir    float64
	input  float64
	e      *Entity
}

// NewWalker creates a walker.
func NewWalker(name string, speed float64, rng [2]float64, assets Assets) *Walker {
	return &Walker{Name: name, Speed: speed, Range: rng, assets: assets, dir: 1}
}

// Nudge moves the walker by dir (-1..1) times its speed on the next tick,
// overriding the patrol.
func (w *Walker) Nudge(dir float64) { w.input = max(-1, min(1, dir)) }

// Entity returns the walker's entity, or nil before it is awake.
func (w *Walker) Entity() *Entity { return w.e }

func (w *Walker) patrols() bool { return w.Speed > 0 && w.Range[1] > w.Range[0] }

func (w *Walker) Awake(e *Entity) error {
	w.e = e
	return nil
}

func (w *Walker) Tick(e *Entity, sc *Scope) error {
	speed := w.Speed
	if speed <= 0 {
		speed = 2
	}
	p := e.Transform.Position
	switch {
	case w.input != 0:
		p.X += w.input * speed * sc.DT
		w.input = 0
	case w.patrols():
		p.X += w.dir * w.Speed * sc.DT
		if p.X >= w.Range[1] {
			p.X, w.dir = w.Range[1], -1
		} else if p.X <= w.Range[0] {
			p.X, w.dir = w.Range[0], 1
		}
	default:
		return nil
	}
	if w.Range[1] > w.Range[0] {
		p.X = max(w.Range[0], min(w.Range[1], p.X))
	}
	e.SetPosition(p)
	return nil
}

var walkerColor = Color{R: 0.25, G: 0.35, B: 0.6, A: 1}

func (w *Walker) Draw(e *Entity, sc *Scope, dst *ebiten.Image) error {
	p := e.WorldPosition()
	dark := 0.0
	if w.HasDarkMode {
		dark = clamp01(w.DarkModeOpacity)
	}
	if img, ok := lookupImage(w.assets, w.Asset); ok {
		drawImageWorld(dst, img, sc, p.Add(Vec2{0, 1}), 2, w.dir < 0, 1-dark*0.8)
		return nil
	}
	c := Color{
		R: lerp(walkerColor.R, 0, dark),
		G: lerp(walkerColor.G, 0, dark),
		B: lerp(walkerColor.B, 0, dark),
		A: 1,
	}
	ppu := sc.PixelsPerUnit()
	fx, fy := sc.WorldToScreen(p)
	hx, hy := sc.WorldToScreen(p.Add(Vec2{0, 1.6}))
	vector.StrokeLine(dst, float32(fx), float32(fy), float32(hx), float32(hy), float32(0.4*ppu), c.toRGBA(), true)
	vector.DrawFilledCircle(dst, float32(hx), float32(hy), float32(0.3*ppu), c.toRGBA(), true)
	return nil
}

// --- Axes ---

// Axes draws the x and y axes with unit ticks across the camera view. Its
// entity is the level's fallback player anchor.
type Axes struct {
	Color Color
}

var axesColor = Color{R: 0, G: 0, B: 0, A: 0.35}

func (a *Axes) Draw(_ *Entity, sc *Scope, dst *ebiten.Image) error {
	if sc.Camera == nil {
		return nil
	}
	c := a.Color
	if c == (Color{}) {
		c = axesColor
	}
	clr := c.toRGBA()
	view := sc.Camera.VisibleBounds()
	x0, y0 := sc.WorldToScreen(Vec2{view.X, 0})
	x1, _ := sc.WorldToScreen(Vec2{view.X + view.Width, 0})
	vector.StrokeLine(dst, float32(x0), float32(y0), float32(x1), float32(y0), 2, clr, false)
	ax, ay0 := sc.WorldToScreen(Vec2{0, view.Y})
	_, ay1 := sc.WorldToScreen(Vec2{0, view.Y + view.Height})
	vector.StrokeLine(dst, float32(ax), float32(ay0), float32(ax), float32(ay1), 2, clr, false)

	step := axisStep(view.Width)
	for x := math.Ceil(view.X/step) * step; x <= view.X+view.Width; x += step {
		sx, sy := sc.WorldToScreen(Vec2{x, 0})
		vector.StrokeLine(dst, float32(sx), float32(sy-4), float32(sx), float32(sy+4), 1, clr, false)
	}
	for y := math.Ceil(view.Y/step) * step; y <= view.Y+view.Height; y += step {
		sx, sy := sc.WorldToScreen(Vec2{0, y})
		vector.StrokeLine(dst, float32(sx-4), float32(sy), float32(sx+4), float32(sy), 1, clr, false)
	}
	return nil
}

// axisStep picks a tick spacing giving roughly ten ticks across span.
func axisStep(span float64) float64 {
	if span <= 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		return 1
	}
	return math.Max(1, math.Pow(10, math.Floor(math.Log10(span/10))))
}

// --- Speech ---

// Speech is a bubble of text attached to an actor. It shows while the
// player is inside Domain, or always when Domain is empty, and hides after
// Duration seconds when Duration is set.
type Speech struct {
	Content  string
	Domain   [2]float64
	Duration float64

	shown   bool
	elapsed float64
}

// NewSpeech creates a speech bubble from its datum.
func NewSpeech(d SpeechDatum) *Speech {
	return &Speech{Content: d.Content, Domain: d.Domain, Duration: d.Duration}
}

// Showing reports whether the bubble is currently displayed.
func (s *Speech) Showing() bool { return s.shown }

func (s *Speech) Tick(_ *Entity, sc *Scope) error {
	in := s.Domain == [2]float64{} || (sc.Player.X >= s.Domain[0] && sc.Player.X <= s.Domain[1])
	if !in {
		s.shown, s.elapsed = false, 0
		return nil
	}
	s.elapsed += sc.DT
	s.shown = s.Duration <= 0 || s.elapsed <= s.Duration
	return nil
}

func (s *Speech) Draw(e *Entity, sc *Scope, dst *ebiten.Image) error {
	if !s.shown {
		return nil
	}
	x, y := sc.WorldToScreen(e.WorldPosition())
	drawLabel(dst, s.Content, x, y, labelBubble)
	return nil
}
