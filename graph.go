package sinerider

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/gogpu/gg"
	"github.com/hajimehoshi/ebiten/v2"
)

// graphSampleStep is the horizontal pixel distance between curve samples.
const graphSampleStep = 2

// Graph is the level's math curve. It compiles the player's expression,
// answers height queries for sledders and goals, and rasterizes the curve
// with gg into a surface-sized image. The raster is rebuilt only when the
// expression, time, camera or surface size changes.
type Graph struct {
	Color     Color
	LineWidth float64
	// Dashed draws the curve as a dashed line (hint graphs).
	Dashed bool
	// Param is passed to the expression as the variable a.
	Param float64
	// Static evaluates the curve at t = 0 regardless of the running time.
	Static bool

	compiler ExpressionCompiler
	text     string
	expr     Expression
	valid    bool
	err      error

	ctx      *gg.Context
	img      *ebiten.Image
	w, h     int
	rasterOK bool
	cacheKey uint64
	keyBuf   []byte
}

// NewGraph creates a graph for text. An invalid expression leaves the graph
// in the invalid state; it still constructs.
func NewGraph(compiler ExpressionCompiler, text string) *Graph {
	if compiler == nil {
		compiler = ExprCompiler{}
	}
	g := &Graph{
		Color:     Color{R: 0, G: 0, B: 0, A: 1},
		LineWidth: 3,
		compiler:  compiler,
	}
	g.SetExpression(text)
	return g
}

// SetExpression compiles text and reports whether it is valid. An invalid
// expression keeps the text but evaluates as flat ground at y = 0.
func (g *Graph) SetExpression(text string) bool {
	g.text = text
	g.expr, g.err = g.compiler.Compile(text)
	g.valid = g.err == nil
	if !g.valid {
		g.expr = nil
	}
	g.rasterOK = false
	return g.valid
}

// Expression returns the current expression text.
func (g *Graph) Expression() string { return g.text }

// Valid reports whether the current expression compiled.
func (g *Graph) Valid() bool { return g.valid }

// Err returns the last compile error.
func (g *Graph) Err() error { return g.err }

// Eval returns the curve height at x and time t. Invalid expressions and
// evaluation errors yield 0 and false.
func (g *Graph) Eval(x, t float64) (float64, bool) {
	if g.expr == nil {
		return 0, false
	}
	if g.Static {
		t = 0
	}
	y, err := g.expr.Eval(Vars{X: x, T: t, A: g.Param})
	if err != nil {
		return 0, false
	}
	return y, true
}

// Slope returns the curve's derivative at x by central difference.
func (g *Graph) Slope(x, t float64) float64 {
	const h = 1e-3
	y0, ok0 := g.Eval(x-h, t)
	y1, ok1 := g.Eval(x+h, t)
	if !ok0 || !ok1 {
		return 0
	}
	return (y1 - y0) / (2 * h)
}

// Resize reallocates the raster at the surface size.
func (g *Graph) Resize(_ *Entity, width, height int) error {
	return g.resize(width, height)
}

func (g *Graph) resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}
	if g.ctx == nil {
		g.ctx = gg.NewContext(width, height)
	} else if err := g.ctx.Resize(width, height); err != nil {
		return err
	}
	if g.img == nil || g.w != width || g.h != height {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(width, height)
	}
	g.w, g.h = width, height
	g.rasterOK = false
	return nil
}

// Draw rasterizes the curve if anything it depends on changed and draws it
// onto dst.
func (g *Graph) Draw(_ *Entity, sc *Scope, dst *ebiten.Image) error {
	b := dst.Bounds()
	if g.ctx == nil || g.w != b.Dx() || g.h != b.Dy() {
		if err := g.resize(b.Dx(), b.Dy()); err != nil {
			return err
		}
	}
	key := g.rasterKey(sc)
	if !g.rasterOK || key != g.cacheKey {
		if err := g.raster(sc); err != nil {
			return err
		}
		g.cacheKey = key
		g.rasterOK = true
	}
	dst.DrawImage(g.img, nil)
	return nil
}

// rasterKey hashes everything the raster depends on.
func (g *Graph) rasterKey(sc *Scope) uint64 {
	buf := g.keyBuf[:0]
	buf = append(buf, g.text...)
	put := func(v float64) {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	t := sc.T
	if g.Static {
		t = 0
	}
	put(t)
	put(g.Param)
	put(float64(g.w))
	put(float64(g.h))
	if cam := sc.Camera; cam != nil {
		put(cam.X)
		put(cam.Y)
		put(cam.Zoom)
	}
	g.keyBuf = buf
	return xxhash.Sum64(buf)
}

func (g *Graph) raster(sc *Scope) error {
	ctx := g.ctx
	ctx.Clear()
	if g.valid {
		c := g.Color
		ctx.SetRGBA(c.R, c.G, c.B, c.A)
		ctx.SetLineWidth(g.LineWidth)
		if g.Dashed {
			ctx.SetDash(8, 6)
		} else {
			ctx.ClearDash()
		}
		ctx.ClearPath()
		drawing := false
		for px := 0; px <= g.w; px += graphSampleStep {
			wx := float64(px)
			if sc.Camera != nil {
				wx, _ = sc.Camera.ScreenToWorld(float64(px), 0)
			}
			wy, ok := g.Eval(wx, sc.T)
			if !ok {
				drawing = false
				continue
			}
			sx, sy := sc.WorldToScreen(Vec2{wx, wy})
			if drawing {
				ctx.LineTo(sx, sy)
			} else {
				ctx.MoveTo(sx, sy)
				drawing = true
			}
		}
		if err := ctx.Stroke(); err != nil {
			return err
		}
	}
	if rgba, ok := ctx.Image().(*image.RGBA); ok {
		g.img.WritePixels(rgba.Pix)
	}
	return nil
}

// Destroy releases the raster.
func (g *Graph) Destroy(*Entity) error {
	if g.img != nil {
		g.img.Deallocate()
		g.img = nil
	}
	if g.ctx != nil {
		_ = g.ctx.Close()
		g.ctx = nil
	}
	return nil
}
