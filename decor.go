package sinerider

import (
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// --- Sky ---

// Sky fills the surface with a vertical gradient, or with an image when an
// asset is set and found.
type Sky struct {
	Stops []SkyStop
	Asset string

	assets   Assets
	gradient *ebiten.Image
	gh       int
}

// SkyStop is a parsed gradient stop.
type SkyStop struct {
	Offset float64
	Color  Color
}

// ParseSkyColors converts datum colour stops to sorted gradient stops.
func ParseSkyColors(colors SkyColors) ([]SkyStop, error) {
	stops := make([]SkyStop, 0, len(colors))
	for _, c := range colors {
		clr, err := ParseHexColor(c.Color)
		if err != nil {
			return nil, err
		}
		stops = append(stops, SkyStop{Offset: clamp01(c.Offset), Color: clr})
	}
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].Offset < stops[j].Offset })
	return stops, nil
}

// DefaultSkyStops is the alpine sky used when a level names no colours.
var DefaultSkyStops = []SkyStop{
	{Offset: 0, Color: Color{R: 0.55, G: 0.75, B: 0.95, A: 1}},
	{Offset: 1, Color: Color{R: 0.9, G: 0.95, B: 1, A: 1}},
}

// ColorAt samples the gradient at offset t in [0, 1].
func (s *Sky) ColorAt(t float64) Color {
	stops := s.Stops
	if len(stops) == 0 {
		stops = DefaultSkyStops
	}
	if t <= stops[0].Offset || len(stops) == 1 {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t <= b.Offset {
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Color
			}
			k := (t - a.Offset) / span
			return a.Color.Lerp(b.Color, k)
		}
	}
	return stops[len(stops)-1].Color
}

// gradientImage returns a 1 pixel wide gradient column of height h.
func (s *Sky) gradientImage(h int) *ebiten.Image {
	if s.gradient != nil && s.gh == h {
		return s.gradient
	}
	if s.gradient != nil {
		s.gradient.Deallocate()
	}
	pix := make([]byte, 4*h)
	for y := 0; y < h; y++ {
		c := s.ColorAt((float64(y) + 0.5) / float64(h)).toRGBA()
		pix[4*y], pix[4*y+1], pix[4*y+2], pix[4*y+3] = c.R, c.G, c.B, c.A
	}
	s.gradient = ebiten.NewImage(1, h)
	s.gradient.WritePixels(pix)
	s.gh = h
	return s.gradient
}

func (s *Sky) Draw(_ *Entity, _ *Scope, dst *ebiten.Image) error {
	b := dst.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}
	var op ebiten.DrawImageOptions
	if img, ok := lookupImage(s.assets, s.Asset); ok {
		ib := img.Bounds()
		scale := math.Max(float64(b.Dx())/float64(ib.Dx()), float64(b.Dy())/float64(ib.Dy()))
		op.GeoM.Scale(scale, scale)
		op.Filter = ebiten.FilterLinear
		dst.DrawImage(img, &op)
		return nil
	}
	op.GeoM.Scale(float64(b.Dx()), 1)
	dst.DrawImage(s.gradientImage(b.Dy()), &op)
	return nil
}

func (s *Sky) Destroy(*Entity) error {
	if s.gradient != nil {
		s.gradient.Deallocate()
		s.gradient = nil
	}
	return nil
}

// --- Clouds ---

// CloudRow drifts one cloud per height across the view, wrapping at the
// edges.
type CloudRow struct {
	Velocity float64
	Heights  []float64

	offset float64
}

// NewCloudRow creates a cloud row from its datum.
func NewCloudRow(d CloudsDatum) *CloudRow {
	return &CloudRow{Velocity: d.Velocity, Heights: d.Heights}
}

func (c *CloudRow) Tick(_ *Entity, sc *Scope) error {
	c.offset += c.Velocity * sc.DT
	return nil
}

var cloudColor = color.RGBA{R: 250, G: 250, B: 255, A: 235}

func (c *CloudRow) Draw(_ *Entity, sc *Scope, dst *ebiten.Image) error {
	view := viewOf(sc)
	if view.Width <= 0 {
		return nil
	}
	ppu := sc.PixelsPerUnit()
	span := view.Width + 8
	for i, h := range c.Heights {
		x := math.Mod(float64(i)*span/float64(len(c.Heights))+c.offset, span)
		if x < 0 {
			x += span
		}
		x += view.X - 4
		cx, cy := sc.WorldToScreen(Vec2{x, h})
		r := float32(ppu)
		vector.DrawFilledCircle(dst, float32(cx), float32(cy), r, cloudColor, true)
		vector.DrawFilledCircle(dst, float32(cx)-r, float32(cy)+r*0.3, r*0.7, cloudColor, true)
		vector.DrawFilledCircle(dst, float32(cx)+r, float32(cy)+r*0.3, r*0.75, cloudColor, true)
	}
	return nil
}

// --- Sprite ---

// Sprite is a decorative image in world space.
type Sprite struct {
	Asset string
	Size  float64
	Flip  bool

	assets Assets
}

func (s *Sprite) Draw(e *Entity, sc *Scope, dst *ebiten.Image) error {
	img, ok := lookupImage(s.assets, s.Asset)
	if !ok {
		return nil
	}
	size := s.Size
	if size <= 0 {
		size = 1
	}
	drawImageWorld(dst, img, sc, e.WorldPosition(), size, s.Flip, 1)
	return nil
}

// --- Sound ---

// SoundEmitter plays a level sound. With an empty domain it plays once when
// started; otherwise it plays each time the player enters the domain, or
// only the first time unless Loop is set.
type SoundEmitter struct {
	Asset  string
	Domain [2]float64
	Loop   bool

	sounds SoundPlayer
	inside bool
	plays  int
}

// Plays returns how many times the emitter has played.
func (s *SoundEmitter) Plays() int { return s.plays }

func (s *SoundEmitter) play() {
	s.plays++
	if s.sounds != nil {
		s.sounds.Play(s.Asset)
	}
}

func (s *SoundEmitter) Start(*Entity) error {
	if s.Domain == [2]float64{} {
		s.play()
	}
	return nil
}

func (s *SoundEmitter) Tick(_ *Entity, sc *Scope) error {
	if s.Domain == [2]float64{} {
		return nil
	}
	in := sc.Player.X >= s.Domain[0] && sc.Player.X <= s.Domain[1]
	if in && !s.inside && (s.Loop || s.plays == 0) {
		s.play()
	}
	s.inside = in
	return nil
}
