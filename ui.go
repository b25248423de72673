package sinerider

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/tanema/gween/ease"
)

// UI element names the level drives.
const (
	ElemExpressionEnvelope = "expressionEnvelope"
	ElemMathField          = "mathField"
	ElemMathFieldStatic    = "mathFieldStatic"
	ElemMathFieldLabel     = "mathFieldLabel"
	ElemRunButton          = "runButton"
	ElemRunButtonText      = "runButtonString"
	ElemStopButtonText     = "stopButtonString"
)

// UI classes and attributes.
const (
	ClassFlashShadow = "flash-shadow"
	ClassHidden      = "hidden"
	AttrValid        = "valid"
)

// Keyframe is one step of a UI animation.
type Keyframe struct {
	// OffsetY translates the element vertically in pixels.
	OffsetY float64
	Opacity float64
}

// AnimationOptions configures UI.Animate.
type AnimationOptions struct {
	Duration time.Duration
	Easing   ease.TweenFunc
	// Fill keeps the last keyframe applied after the animation ends.
	// Without it the element returns to its resting state.
	Fill bool
}

// Animation is a running UI animation.
type Animation interface {
	// OnFinish registers a callback delivered on a later tick.
	OnFinish(fn func())
	Done() bool
}

// UI is the editor surface the level manipulates.
type UI interface {
	SetText(element, text string)
	SetVisible(element string, visible bool)
	AddClass(element, class string)
	RemoveClass(element, class string)
	SetAttr(element, key, value string)
	Animate(element string, frames []Keyframe, opts AnimationOptions) Animation
}

// ElementState is the current state of one Panel element.
type ElementState struct {
	Text    string
	Visible bool
	Classes map[string]bool
	Attrs   map[string]string
	OffsetY float64
	Opacity float64
}

// HasClass reports whether the element carries class.
func (s *ElementState) HasClass(class string) bool { return s.Classes[class] }

// Panel is an in-memory UI. Elements are created on first use, visible and
// opaque. Animations advance on the panel's tick through its Animator, and
// the panel draws a compact editor overlay.
type Panel struct {
	elems map[string]*ElementState
	anim  Animator
}

// NewPanel creates an empty panel.
func NewPanel() *Panel {
	return &Panel{elems: make(map[string]*ElementState)}
}

// Element returns the state of name, creating it if needed.
func (p *Panel) Element(name string) *ElementState {
	if s, ok := p.elems[name]; ok {
		return s
	}
	s := &ElementState{
		Visible: true,
		Opacity: 1,
		Classes: make(map[string]bool),
		Attrs:   make(map[string]string),
	}
	p.elems[name] = s
	return s
}

func (p *Panel) SetText(element, text string) { p.Element(element).Text = text }

func (p *Panel) SetVisible(element string, visible bool) { p.Element(element).Visible = visible }

func (p *Panel) AddClass(element, class string) { p.Element(element).Classes[class] = true }

func (p *Panel) RemoveClass(element, class string) { delete(p.Element(element).Classes, class) }

func (p *Panel) SetAttr(element, key, value string) { p.Element(element).Attrs[key] = value }

// Animate tweens the element's offset and opacity through frames.
func (p *Panel) Animate(element string, frames []Keyframe, opts AnimationOptions) Animation {
	s := p.Element(element)
	vals := make([][]float64, len(frames))
	for i, f := range frames {
		vals[i] = []float64{f.OffsetY, f.Opacity}
	}
	t := p.anim.Animate(vals, float32(opts.Duration.Seconds()), opts.Easing, func(v []float64) {
		s.OffsetY, s.Opacity = v[0], v[1]
	})
	if !opts.Fill {
		t.OnFinish(func() { s.OffsetY, s.Opacity = 0, 1 })
	}
	return t
}

// Animating returns the number of running animations.
func (p *Panel) Animating() int { return p.anim.Len() }

// Update advances animations by dt seconds.
func (p *Panel) Update(dt float64) { p.anim.Update(float32(dt)) }

// Tick advances animations.
func (p *Panel) Tick(_ *Entity, sc *Scope) error {
	p.Update(sc.DT)
	return nil
}

// shown reports whether an element is visible and not hidden by class.
func (p *Panel) shown(name string) bool {
	s, ok := p.elems[name]
	return ok && s.Visible && !s.Classes[ClassHidden] && s.Opacity > 0.01
}

// Draw renders the expression editor and run button as debug text along
// the bottom of the surface.
func (p *Panel) Draw(_ *Entity, sc *Scope, dst *ebiten.Image) error {
	h := dst.Bounds().Dy()
	if p.shown(ElemExpressionEnvelope) {
		env := p.elems[ElemExpressionEnvelope]
		label := p.Element(ElemMathFieldLabel).Text
		text := label + p.Element(ElemMathField).Text
		if env.Attrs[AttrValid] == "false" {
			text += "  (invalid)"
		}
		y := h - 28 + int(env.OffsetY)
		fillRect(dst, 4, float64(y-2), float64(len(text)*6+8), 18, Color{A: clamp01(env.Opacity) * 160 / 255})
		ebitenutil.DebugPrintAt(dst, text, 8, y)
	}
	run := ElemRunButtonText
	if sc.Running {
		run = ElemStopButtonText
	}
	if p.shown(ElemRunButton) {
		ebitenutil.DebugPrintAt(dst, p.Element(run).Text, dst.Bounds().Dx()-72, h-26)
	}
	return nil
}

// String dumps element state, sorted by name.
func (p *Panel) String() string {
	names := make([]string, 0, len(p.elems))
	for n := range p.elems {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		s := p.elems[n]
		classes := make([]string, 0, len(s.Classes))
		for c := range s.Classes {
			classes = append(classes, c)
		}
		sort.Strings(classes)
		fmt.Fprintf(&b, "%s text=%q visible=%t classes=%v opacity=%.2f\n", n, s.Text, s.Visible, classes, s.Opacity)
	}
	return b.String()
}
