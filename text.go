package sinerider

import (
	"bytes"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

const labelFontSize = 14

var (
	fontOnce   sync.Once
	fontSource *text.GoTextFaceSource
	fontErr    error
)

// defaultFace returns the shared label face. A nil face means the font
// failed to parse and callers fall back to the debug font.
func defaultFace(size float64) text.Face {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	})
	if fontErr != nil {
		return nil
	}
	return &text.GoTextFace{Source: fontSource, Size: size}
}

type labelStyle uint8

const (
	labelPlain labelStyle = iota
	labelBubble
)

var (
	bubbleFill    = color.RGBA{R: 255, G: 255, B: 255, A: 230}
	bubbleOutline = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	labelInk      = color.RGBA{R: 20, G: 20, B: 20, A: 255}
)

// drawLabel draws s centred horizontally on (x, y), above the point for
// bubbles.
func drawLabel(dst *ebiten.Image, s string, x, y float64, style labelStyle) {
	drawLabelColor(dst, s, x, y, style, labelInk, labelFontSize)
}

func drawLabelColor(dst *ebiten.Image, s string, x, y float64, style labelStyle, ink color.Color, size float64) {
	face := defaultFace(size)
	var w, h float64
	if face != nil {
		w, h = text.Measure(s, face, size*1.2)
	} else {
		w, h = float64(len(s)*6), 16
	}
	left, top := x-w/2, y-h/2
	if style == labelBubble {
		const pad = 6
		top = y - h - 2*pad - 8
		vector.DrawFilledRect(dst, float32(left-pad), float32(top-pad), float32(w+2*pad), float32(h+2*pad), bubbleFill, true)
		vector.StrokeRect(dst, float32(left-pad), float32(top-pad), float32(w+2*pad), float32(h+2*pad), 1.5, bubbleOutline, true)
	}
	if face == nil {
		ebitenutil.DebugPrintAt(dst, s, int(left), int(top))
		return
	}
	op := &text.DrawOptions{}
	op.LineSpacing = size * 1.2
	op.GeoM.Translate(left, top)
	op.ColorScale.ScaleWithColor(ink)
	text.Draw(dst, s, face, op)
}

// --- Text ---

// Text is a label fixed in world space.
type Text struct {
	Value string
	Color Color
	Size  float64
}

func (t *Text) Draw(e *Entity, sc *Scope, dst *ebiten.Image) error {
	size := t.Size
	if size <= 0 {
		size = labelFontSize * 1.5
	}
	c := t.Color
	if c == (Color{}) {
		c = ColorBlack
	}
	x, y := sc.WorldToScreen(e.WorldPosition())
	drawLabelColor(dst, t.Value, x, y, labelPlain, c.toRGBA(), size)
	return nil
}

// --- TextBubble ---

// TextBubble is a hint anchored to a corner of the screen. Bubbles start
// hidden; the level toggles them each time a run stops.
type TextBubble struct {
	Content string
	// Place is one of top-left, top, top-right, left, center, right,
	// bottom-left, bottom, bottom-right. Default top-right.
	Place  string
	Domain [2]float64

	shown bool
}

// NewTextBubble creates a hidden bubble from its datum.
func NewTextBubble(d TextBubbleDatum) *TextBubble {
	place := d.Place
	if place == "" {
		place = "top-right"
	}
	return &TextBubble{Content: d.Content, Place: place, Domain: d.Domain}
}

// ToggleVisible flips whether the bubble is shown.
func (b *TextBubble) ToggleVisible() { b.shown = !b.shown }

// Shown reports whether the bubble is toggled on.
func (b *TextBubble) Shown() bool { return b.shown }

// Destroy hides the bubble.
func (b *TextBubble) Destroy(*Entity) error {
	b.shown = false
	return nil
}

func (b *TextBubble) anchor(w, h float64) (float64, float64) {
	const margin = 80
	x, y := w/2, h/2
	switch b.Place {
	case "top-left", "left", "bottom-left":
		x = margin * 2
	case "top-right", "right", "bottom-right":
		x = w - margin*2
	}
	switch b.Place {
	case "top-left", "top", "top-right":
		y = margin
	case "bottom-left", "bottom", "bottom-right":
		y = h - margin
	}
	return x, y
}

func (b *TextBubble) Draw(_ *Entity, sc *Scope, dst *ebiten.Image) error {
	if !b.shown {
		return nil
	}
	if b.Domain != [2]float64{} && (sc.Player.X < b.Domain[0] || sc.Player.X > b.Domain[1]) {
		return nil
	}
	bounds := dst.Bounds()
	x, y := b.anchor(float64(bounds.Dx()), float64(bounds.Dy()))
	drawLabel(dst, b.Content, x, y, labelBubble)
	return nil
}
