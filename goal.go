package sinerider

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// GoalState is the per-run state of a goal.
type GoalState uint8

const (
	GoalPending GoalState = iota
	GoalCompleted
	GoalFailed
)

func (s GoalState) String() string {
	switch s {
	case GoalPending:
		return "pending"
	case GoalCompleted:
		return "completed"
	case GoalFailed:
		return "failed"
	default:
		return fmt.Sprintf("GoalState(%d)", uint8(s))
	}
}

// OrderSentinel is the lowest order reported when no ordered goal is
// pending. It compares greater than every valid order label.
const OrderSentinel = "\U0010FFFF"

// Sound cue names played by the goal set.
const (
	SoundGoalSuccess  = "goal_success"
	SoundGoalFail     = "goal_fail"
	SoundLevelSuccess = "level_success"
)

// GoalKind is the kind-specific part of a goal: where it is and when a
// sledder reaches it.
type GoalKind interface {
	// Name returns the kind tag, e.g. "fixed".
	Name() string
	// Shape returns the goal's current world-space hit area.
	Shape() HitShape
	// Reached reports whether a sledder satisfies the goal this tick.
	Reached(env *GoalEnv, sc *Scope) bool
	// Reset restores the kind's per-run state.
	Reset(env *GoalEnv)
}

// GoalEnv is what goals can see of their level.
type GoalEnv struct {
	Scene *Scene
	Graph *Graph
	// Sledders returns the world positions of every sledder.
	Sledders func() []Vec2
}

func (env *GoalEnv) sledders() []Vec2 {
	if env == nil || env.Sledders == nil {
		return nil
	}
	return env.Sledders()
}

// Goal is an objective. It is attached to its entity as the behaviour and
// reports completion and failure to its GoalSet.
type Goal struct {
	Name string
	Kind GoalKind
	Env  *GoalEnv

	order string
	state GoalState
	set   *GoalSet
	id    EntityID
}

// NewGoal creates a pending goal. order is immutable; "" means unordered.
func NewGoal(name, order string, kind GoalKind) *Goal {
	return &Goal{Name: name, Kind: kind, order: order}
}

// Order returns the goal's sequencing label, or "" when unordered.
func (g *Goal) Order() string { return g.order }

// Ordered reports whether the goal participates in strict ordering.
func (g *Goal) Ordered() bool { return g.order != "" }

// State returns the goal's current state.
func (g *Goal) State() GoalState { return g.state }

// Completed reports whether the goal is completed.
func (g *Goal) Completed() bool { return g.state == GoalCompleted }

// Failed reports whether the goal has failed.
func (g *Goal) Failed() bool { return g.state == GoalFailed }

// Entity returns the handle of the goal's entity.
func (g *Goal) Entity() EntityID { return g.id }

// Available reports whether the goal may be completed now: it is pending
// and no lower-ordered goal is still pending.
func (g *Goal) Available() bool {
	if g.state != GoalPending {
		return false
	}
	if !g.Ordered() || g.set == nil {
		return true
	}
	return g.order <= g.set.LowestOrder()
}

// Complete reports the goal as reached.
func (g *Goal) Complete() bool {
	if g.set == nil {
		if g.state != GoalPending {
			return false
		}
		g.state = GoalCompleted
		return true
	}
	return g.set.Complete(g)
}

// Fail reports the goal as failed.
func (g *Goal) Fail() bool {
	if g.set == nil {
		if g.state != GoalPending {
			return false
		}
		g.state = GoalFailed
		return true
	}
	return g.set.Fail(g)
}

// Reset returns the goal to pending.
func (g *Goal) Reset() {
	g.state = GoalPending
	if g.Kind != nil {
		g.Kind.Reset(g.Env)
	}
}

// Awake records the goal's entity.
func (g *Goal) Awake(e *Entity) error {
	g.id = e.ID
	return nil
}

// Tick checks the goal while the level runs. Reaching an ordered goal
// before every lower-ordered goal is complete fails it.
func (g *Goal) Tick(_ *Entity, sc *Scope) error {
	if !sc.Running || g.state != GoalPending || g.Kind == nil {
		return nil
	}
	if !g.Kind.Reached(g.Env, sc) {
		return nil
	}
	if g.Ordered() && !g.Available() {
		g.Fail()
		return nil
	}
	g.Complete()
	return nil
}

var (
	goalColorPending   = color.RGBA{R: 255, G: 255, B: 255, A: 220}
	goalColorLocked    = color.RGBA{R: 150, G: 150, B: 150, A: 160}
	goalColorCompleted = color.RGBA{R: 80, G: 200, B: 110, A: 230}
	goalColorFailed    = color.RGBA{R: 220, G: 70, B: 60, A: 230}
	goalColorOutline   = color.RGBA{R: 20, G: 20, B: 20, A: 255}
)

func (g *Goal) fillColor() color.RGBA {
	switch {
	case g.state == GoalCompleted:
		return goalColorCompleted
	case g.state == GoalFailed:
		return goalColorFailed
	case !g.Available():
		return goalColorLocked
	default:
		return goalColorPending
	}
}

// Draw renders the goal's hit area and order label.
func (g *Goal) Draw(_ *Entity, sc *Scope, dst *ebiten.Image) error {
	if g.Kind == nil {
		return nil
	}
	fill := g.fillColor()
	ppu := float32(sc.PixelsPerUnit())
	var label Vec2
	switch s := g.Kind.Shape().(type) {
	case HitRect:
		x, y := sc.WorldToScreen(Vec2{s.Rect.X, s.Rect.Y + s.Rect.Height})
		w, h := float32(s.Rect.Width)*ppu, float32(s.Rect.Height)*ppu
		vector.DrawFilledRect(dst, float32(x), float32(y), w, h, fill, true)
		vector.StrokeRect(dst, float32(x), float32(y), w, h, 2, goalColorOutline, true)
		label = s.Rect.Center()
	case HitCircle:
		x, y := sc.WorldToScreen(Vec2{s.Circle.X, s.Circle.Y})
		r := float32(s.Circle.Radius) * ppu
		vector.DrawFilledCircle(dst, float32(x), float32(y), r, fill, true)
		vector.StrokeCircle(dst, float32(x), float32(y), r, 2, goalColorOutline, true)
		label = Vec2{s.Circle.X, s.Circle.Y}
	case HitPolygon:
		n := len(s.Points)
		for i := range s.Points {
			ax, ay := sc.WorldToScreen(s.Points[i])
			bx, by := sc.WorldToScreen(s.Points[(i+1)%n])
			vector.StrokeLine(dst, float32(ax), float32(ay), float32(bx), float32(by), 3, fill, true)
		}
		if n > 0 {
			label = s.Points[0]
		}
	}
	if g.Ordered() {
		x, y := sc.WorldToScreen(label)
		ebitenutil.DebugPrintAt(dst, g.order, int(x)-3, int(y)-8)
	}
	return nil
}

// --- Goal set ---

// GoalSet tracks every goal of a level and turns individual completions
// and failures into level state. All transitions are synchronous.
type GoalSet struct {
	// Sounds receives the cue for every transition. May be nil.
	Sounds SoundPlayer
	// OnGoalCompleted is called after a goal completes.
	OnGoalCompleted func(g *Goal)
	// OnGoalFailed is called once per failure with the goals the failure
	// cascaded to.
	OnGoalFailed func(g *Goal, cascaded []*Goal)
	// OnLevelCompleted is called once when every goal is completed.
	OnLevelCompleted func()

	goals     []*Goal
	lowest    string
	completed bool
}

// NewGoalSet creates an empty set.
func NewGoalSet(sounds SoundPlayer) *GoalSet {
	return &GoalSet{Sounds: sounds, lowest: OrderSentinel}
}

// Add registers g with the set.
func (gs *GoalSet) Add(g *Goal) {
	g.set = gs
	gs.goals = append(gs.goals, g)
}

// Goals returns the registered goals. The returned slice MUST NOT be mutated.
func (gs *GoalSet) Goals() []*Goal { return gs.goals }

// Len returns the number of goals.
func (gs *GoalSet) Len() int { return len(gs.goals) }

// Completed reports whether every goal has been completed this run.
func (gs *GoalSet) Completed() bool { return gs.completed }

// LowestOrder returns the cached minimum order among non-completed ordered
// goals, or OrderSentinel.
func (gs *GoalSet) LowestOrder() string { return gs.lowest }

// RefreshLowestOrder recomputes and returns the lowest order.
func (gs *GoalSet) RefreshLowestOrder() string {
	lowest := OrderSentinel
	for _, g := range gs.goals {
		if g.Ordered() && g.state != GoalCompleted && g.order < lowest {
			lowest = g.order
		}
	}
	gs.lowest = lowest
	return lowest
}

// Complete transitions g to completed. It returns false, doing nothing,
// when g is not pending. The level completes, and OnLevelCompleted fires,
// the first time every goal is completed.
func (gs *GoalSet) Complete(g *Goal) bool {
	if g.state != GoalPending {
		return false
	}
	g.state = GoalCompleted
	gs.RefreshLowestOrder()
	gs.play(SoundGoalSuccess)
	if gs.OnGoalCompleted != nil {
		gs.OnGoalCompleted(g)
	}
	if gs.completed {
		return true
	}
	for _, other := range gs.goals {
		if other.state != GoalCompleted {
			return true
		}
	}
	gs.completed = true
	if gs.OnLevelCompleted != nil {
		gs.OnLevelCompleted()
	}
	gs.play(SoundLevelSuccess)
	return true
}

// Fail transitions g to failed. When g is ordered, every other ordered goal
// that is not completed fails with it; unordered goals are left alone. One
// failure cue plays per call. Returns false when g is not pending.
func (gs *GoalSet) Fail(g *Goal) bool {
	if g.state != GoalPending {
		return false
	}
	g.state = GoalFailed
	var cascaded []*Goal
	if g.Ordered() {
		for _, other := range gs.goals {
			if other == g || !other.Ordered() || other.state == GoalCompleted {
				continue
			}
			if other.state != GoalFailed {
				other.state = GoalFailed
				cascaded = append(cascaded, other)
			}
		}
	}
	gs.play(SoundGoalFail)
	if gs.OnGoalFailed != nil {
		gs.OnGoalFailed(g, cascaded)
	}
	return true
}

// Reset returns every goal to pending, clears level completion and
// refreshes the lowest order.
func (gs *GoalSet) Reset() {
	for _, g := range gs.goals {
		g.Reset()
	}
	gs.completed = false
	gs.RefreshLowestOrder()
}

// Count returns how many goals are in state s.
func (gs *GoalSet) Count(s GoalState) int {
	n := 0
	for _, g := range gs.goals {
		if g.state == s {
			n++
		}
	}
	return n
}

func (gs *GoalSet) play(name string) {
	if gs.Sounds != nil {
		gs.Sounds.Play(name)
	}
}
