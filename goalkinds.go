package sinerider

import (
	"fmt"
	"sort"
)

// GoalFactory builds the kind-specific part of a goal from its datum.
type GoalFactory func(d GoalDatum) (GoalKind, error)

// GoalKinds maps goal kind tags to constructors. Level data naming a tag
// that is not registered fails to load with ErrUnknownKind.
var GoalKinds = map[string]GoalFactory{
	"fixed":   newFixedGoal,
	"path":    newPathGoal,
	"dynamic": newDynamicGoal,
}

// defaultGoalKind is used when a goal datum has no type.
const defaultGoalKind = "fixed"

func lookupGoalKind(tag string) (GoalFactory, bool) {
	if tag == "" {
		tag = defaultGoalKind
	}
	f, ok := GoalKinds[tag]
	return f, ok
}

// GoalKindNames returns the registered goal kind tags, sorted.
func GoalKindNames() []string {
	names := make([]string, 0, len(GoalKinds))
	for n := range GoalKinds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewGoalKind builds the kind named by d.Type.
func NewGoalKind(d GoalDatum) (GoalKind, error) {
	f, ok := lookupGoalKind(d.Type)
	if !ok {
		return nil, fmt.Errorf("goal kind %q: %w", d.Type, ErrUnknownKind)
	}
	return f(d)
}

// anySledderIn reports whether any sledder position lies in shape.
func anySledderIn(env *GoalEnv, shape HitShape) bool {
	for _, p := range env.sledders() {
		if shape.Contains(p) {
			return true
		}
	}
	return false
}

// --- fixed ---

// FixedGoal sits at a fixed world position.
type FixedGoal struct {
	shape HitShape
}

func newFixedGoal(d GoalDatum) (GoalKind, error) {
	size := d.Size
	if size <= 0 {
		size = 1
	}
	switch d.Shape {
	case "", "rect", "square":
		return &FixedGoal{shape: HitRect{Rect{X: d.X - size/2, Y: d.Y - size/2, Width: size, Height: size}}}, nil
	case "circle":
		return &FixedGoal{shape: HitCircle{Circle{X: d.X, Y: d.Y, Radius: size / 2}}}, nil
	default:
		return nil, fmt.Errorf("fixed goal shape %q: %w", d.Shape, ErrUnknownKind)
	}
}

func (g *FixedGoal) Name() string    { return "fixed" }
func (g *FixedGoal) Shape() HitShape { return g.shape }
func (g *FixedGoal) Reset(*GoalEnv)  {}

func (g *FixedGoal) Reached(env *GoalEnv, _ *Scope) bool {
	return anySledderIn(env, g.shape)
}

// --- path ---

const pathGoalSamples = 24

// PathGoal is a band following the curve from X to X+Width. A sledder must
// enter the band near its start and ride it to the end without leaving.
type PathGoal struct {
	x, width, thickness float64

	band     HitPolygon
	started  bool
	progress float64
}

func newPathGoal(d GoalDatum) (GoalKind, error) {
	g := &PathGoal{x: d.X, width: d.Width, thickness: d.Thickness}
	if g.width <= 0 {
		g.width = 5
	}
	if g.thickness <= 0 {
		g.thickness = 1
	}
	return g, nil
}

func (g *PathGoal) Name() string    { return "path" }
func (g *PathGoal) Shape() HitShape { return g.band }

// Progress returns how far along the path the current sledder is, in [0, 1].
func (g *PathGoal) Progress() float64 { return g.progress }

func (g *PathGoal) Reset(env *GoalEnv) {
	g.started = false
	g.progress = 0
	g.rebuild(env, 0)
}

// rebuild samples the curve into a closed band polygon: the upper edge left
// to right, then the lower edge right to left.
func (g *PathGoal) rebuild(env *GoalEnv, t float64) {
	if env == nil || env.Graph == nil {
		g.band = HitPolygon{}
		return
	}
	half := g.thickness / 2
	pts := g.band.Points[:0]
	if cap(pts) < 2*(pathGoalSamples+1) {
		pts = make([]Vec2, 0, 2*(pathGoalSamples+1))
	}
	for i := 0; i <= pathGoalSamples; i++ {
		x := g.x + g.width*float64(i)/pathGoalSamples
		y, _ := env.Graph.Eval(x, t)
		pts = append(pts, Vec2{x, y + half})
	}
	for i := pathGoalSamples; i >= 0; i-- {
		x := g.x + g.width*float64(i)/pathGoalSamples
		y, _ := env.Graph.Eval(x, t)
		pts = append(pts, Vec2{x, y - half})
	}
	g.band = HitPolygon{Points: pts}
}

func (g *PathGoal) Reached(env *GoalEnv, sc *Scope) bool {
	g.rebuild(env, sc.T)
	inside := false
	best := 0.0
	for _, p := range env.sledders() {
		if !g.band.Contains(p) {
			continue
		}
		inside = true
		best = max(best, clamp01((p.X-g.x)/g.width))
	}
	if !inside {
		g.started = false
		g.progress = 0
		return false
	}
	if !g.started {
		if best > 0.25 {
			return false
		}
		g.started = true
	}
	g.progress = max(g.progress, best)
	return g.progress >= 0.95
}

// --- dynamic ---

// DynamicGoal rests on the curve at X and moves with it.
type DynamicGoal struct {
	x, size float64
	circle  Circle
}

func newDynamicGoal(d GoalDatum) (GoalKind, error) {
	size := d.Size
	if size <= 0 {
		size = 1
	}
	return &DynamicGoal{x: d.X, size: size, circle: Circle{X: d.X, Y: d.Y + size/2, Radius: size / 2}}, nil
}

func (g *DynamicGoal) Name() string    { return "dynamic" }
func (g *DynamicGoal) Shape() HitShape { return HitCircle{g.circle} }

func (g *DynamicGoal) Reset(env *GoalEnv) { g.settle(env, 0) }

func (g *DynamicGoal) settle(env *GoalEnv, t float64) {
	if env == nil || env.Graph == nil {
		return
	}
	if y, ok := env.Graph.Eval(g.x, t); ok {
		g.circle.Y = y + g.size/2
	}
}

func (g *DynamicGoal) Reached(env *GoalEnv, sc *Scope) bool {
	g.settle(env, sc.T)
	return anySledderIn(env, HitCircle{g.circle})
}
