package sinerider

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// --- Kage shader sources ---
// All shaders use //kage:unit pixels as required by Ebitengine.

// sunsetShaderSrc darkens a day sky into a starry dusk as Sunset goes from
// 0 to 1.
const sunsetShaderSrc = `//kage:unit pixels
package main

var Size vec2
var Sunset float
var Time float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	uv := dstPos.xy / Size
	day := mix(vec3(0.55, 0.75, 0.95), vec3(0.98, 0.6, 0.35), Sunset)
	night := vec3(0.04, 0.04, 0.12)
	top := mix(day, night, Sunset*Sunset)
	bottom := mix(vec3(0.95, 0.9, 0.8), vec3(0.85, 0.35, 0.3), Sunset)
	c := mix(top, bottom, uv.y)
	cell := floor(dstPos.xy / 3)
	n := fract(sin(dot(cell, vec2(12.9898, 78.233))) * 43758.5453)
	twinkle := 0.75 + 0.25*sin(Time*3+n*40)
	star := step(0.997, n) * Sunset * Sunset * (1 - uv.y) * twinkle
	return vec4(c+vec3(star), 1)
}
`

// DefaultFieldExpression is the flow field the Constant Lake sky starts
// with.
const DefaultFieldExpression = "sin(x)/2"

// fieldSpacing is the world distance between flow field samples.
const fieldSpacing = 1.5

// ShaderSky is the Constant Lake background: a Kage sunset whose dusk
// follows the walker, overlaid with a flow field of the player's
// expression once the stars come out.
type ShaderSky struct {
	compiler ExpressionCompiler
	text     string
	expr     Expression

	sunset float64
	time   float64

	shader   *ebiten.Shader
	uniforms map[string]any
	size     []float32
	op       ebiten.DrawRectShaderOptions
}

// NewShaderSky creates the sky with DefaultFieldExpression.
func NewShaderSky(compiler ExpressionCompiler) *ShaderSky {
	if compiler == nil {
		compiler = ExprCompiler{}
	}
	s := &ShaderSky{
		compiler: compiler,
		uniforms: make(map[string]any, 3),
		size:     make([]float32, 2),
	}
	s.uniforms["Size"] = s.size
	s.SetExpression(DefaultFieldExpression)
	return s
}

// SetExpression replaces the flow field expression and reports whether it
// compiled. An invalid expression hides the field.
func (s *ShaderSky) SetExpression(text string) bool {
	s.text = text
	expr, err := s.compiler.Compile(text)
	if err != nil {
		s.expr = nil
		return false
	}
	s.expr = expr
	return true
}

// Expression returns the flow field expression text.
func (s *ShaderSky) Expression() string { return s.text }

// SetSunset sets how far the sky has darkened, in [0, 1].
func (s *ShaderSky) SetSunset(v float64) { s.sunset = clamp01(v) }

// Sunset returns the current sunset amount.
func (s *ShaderSky) Sunset() float64 { return s.sunset }

func (s *ShaderSky) Awake(*Entity) error {
	sh, err := ebiten.NewShader([]byte(sunsetShaderSrc))
	if err != nil {
		return fmt.Errorf("compile sunset shader: %w", err)
	}
	s.shader = sh
	return nil
}

func (s *ShaderSky) Tick(_ *Entity, sc *Scope) error {
	s.time += sc.DT
	return nil
}

var fieldColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func (s *ShaderSky) Draw(_ *Entity, sc *Scope, dst *ebiten.Image) error {
	b := dst.Bounds()
	if s.shader == nil {
		dst.Fill(color.RGBA{R: 140, G: 190, B: 240, A: 255})
	} else {
		s.size[0], s.size[1] = float32(b.Dx()), float32(b.Dy())
		s.uniforms["Sunset"] = float32(s.sunset)
		s.uniforms["Time"] = float32(s.time)
		s.op.Uniforms = s.uniforms
		dst.DrawRectShader(b.Dx(), b.Dy(), s.shader, &s.op)
	}
	if s.expr == nil || s.sunset < 0.5 {
		return nil
	}
	alpha := float32((s.sunset - 0.5) * 2)
	view := viewOf(sc)
	ppu := sc.PixelsPerUnit()
	clr := fieldColor
	clr.A = uint8(alpha * 200)
	clr.R, clr.G, clr.B = clr.A, clr.A, clr.A
	for x := math.Floor(view.X/fieldSpacing) * fieldSpacing; x <= view.X+view.Width; x += fieldSpacing {
		dy, err := s.expr.Eval(Vars{X: x, T: s.time})
		if err != nil {
			continue
		}
		dir := Vec2{1, dy}.Scale(1 / math.Hypot(1, dy))
		for y := math.Floor(view.Y/fieldSpacing) * fieldSpacing; y <= view.Y+view.Height; y += fieldSpacing {
			p := Vec2{x, y}
			ax, ay := sc.WorldToScreen(p)
			bx, by := sc.WorldToScreen(p.Add(dir.Scale(fieldSpacing * 0.4)))
			vector.StrokeLine(dst, float32(ax), float32(ay), float32(bx), float32(by), float32(max(0.05*ppu, 1)), clr, true)
		}
	}
	return nil
}

func (s *ShaderSky) Destroy(*Entity) error {
	if s.shader != nil {
		s.shader.Deallocate()
		s.shader = nil
	}
	return nil
}
