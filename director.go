package sinerider

import (
	"fmt"
	"math"
	"sort"
)

// DirectorEnv is what a camera director can see of its level.
type DirectorEnv struct {
	Scene  *Scene
	Camera *Camera
	// Tracked returns the level's tracked entities.
	Tracked func() []EntityID
	// Lookup resolves an entity by name among the level's descendants.
	Lookup func(name string) (EntityID, bool)
}

// DirectorFactory builds a director behaviour from its datum.
type DirectorFactory func(d DirectorDatum, env *DirectorEnv) (Behavior, error)

// DirectorKinds maps director kind tags to constructors.
var DirectorKinds = map[string]DirectorFactory{
	"tracking": newTrackingDirector,
	"waypoint": newWaypointDirector,
	"lerp":     newLerpDirector,
}

const defaultDirectorKind = "tracking"

func lookupDirectorKind(tag string) (DirectorFactory, bool) {
	if tag == "" {
		tag = defaultDirectorKind
	}
	f, ok := DirectorKinds[tag]
	return f, ok
}

// DirectorKindNames returns the registered director kind tags, sorted.
func DirectorKindNames() []string {
	names := make([]string, 0, len(DirectorKinds))
	for n := range DirectorKinds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewDirector builds the director named by d.Type.
func NewDirector(d DirectorDatum, env *DirectorEnv) (Behavior, error) {
	f, ok := lookupDirectorKind(d.Type)
	if !ok {
		return nil, fmt.Errorf("director kind %q: %w", d.Type, ErrUnknownKind)
	}
	return f(d, env)
}

// --- tracking ---

// trackingMargin is the world-unit padding kept around tracked entities.
const trackingMargin = 2

// TrackingDirector keeps every tracked entity in view, easing the camera
// toward the centre of their bounding box and widening the field of view
// when they spread apart. The camera's field of view when tracking starts
// is the minimum unless the datum names one.
type TrackingDirector struct {
	env  *DirectorEnv
	lerp float64
	fov  float64
}

func newTrackingDirector(d DirectorDatum, env *DirectorEnv) (Behavior, error) {
	lerp := d.Lerp
	if lerp <= 0 {
		lerp = 0.1
	}
	return &TrackingDirector{env: env, lerp: lerp, fov: d.FOV}, nil
}

// Framing returns the world rectangle covering every tracked entity, and
// false when nothing is tracked.
func (t *TrackingDirector) Framing() (Rect, bool) {
	if t.env == nil || t.env.Tracked == nil {
		return Rect{}, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	n := 0
	for _, id := range t.env.Tracked() {
		e := t.env.Scene.get(id)
		if e == nil {
			continue
		}
		p := e.WorldPosition()
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		n++
	}
	if n == 0 {
		return Rect{}, false
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

func (t *TrackingDirector) Tick(_ *Entity, _ *Scope) error {
	cam := t.env.Camera
	if cam == nil || cam.Scrolling() {
		return nil
	}
	r, ok := t.Framing()
	if !ok {
		return nil
	}
	c := r.Center()
	cam.X += (c.X - cam.X) * t.lerp
	cam.Y += (c.Y - cam.Y) * t.lerp

	if t.fov <= 0 {
		t.fov = cam.fov
	}
	fov := math.Max(math.Max(r.Width, r.Height)+2*trackingMargin, t.fov)
	cur := cam.FOV()
	if cur > 0 && !math.IsInf(cur, 0) {
		cam.SetFOV(cur + (fov-cur)*t.lerp)
	}
	cam.MarkDirty()
	return nil
}

// --- waypoint ---

// WaypointDirector scrolls the camera through its waypoints in order, one
// after another, and then holds at the last.
type WaypointDirector struct {
	env       *DirectorEnv
	waypoints []WaypointDatum
	next      int
}

func newWaypointDirector(d DirectorDatum, env *DirectorEnv) (Behavior, error) {
	return &WaypointDirector{env: env, waypoints: d.Waypoints}, nil
}

// Current returns the index of the waypoint being approached, or the
// number of waypoints once all have been visited.
func (w *WaypointDirector) Current() int { return w.next }

// Restart returns to the first waypoint.
func (w *WaypointDirector) Restart() { w.next = 0 }

func (w *WaypointDirector) Tick(_ *Entity, _ *Scope) error {
	cam := w.env.Camera
	if cam == nil || cam.Scrolling() || w.next >= len(w.waypoints) {
		return nil
	}
	wp := w.waypoints[w.next]
	w.next++
	zoom := 0.0
	if wp.FOV > 0 {
		side := math.Min(cam.Viewport.Width, cam.Viewport.Height)
		zoom = side / wp.FOV
	}
	dur := wp.Duration
	if dur <= 0 {
		dur = 1
	}
	cam.ScrollTo(wp.X, wp.Y, zoom, float32(dur), nil)
	return nil
}

// --- lerp ---

// LerpDirector follows one named entity, or the player when no target is
// named, through Camera.Follow.
type LerpDirector struct {
	env    *DirectorEnv
	target string
	offset Vec2
	lerp   float64
	fov    float64
}

func newLerpDirector(d DirectorDatum, env *DirectorEnv) (Behavior, error) {
	lerp := d.Lerp
	if lerp <= 0 || lerp > 1 {
		lerp = 0.05
	}
	return &LerpDirector{env: env, target: d.Target, offset: d.Offset.Vec2(), lerp: lerp, fov: d.FOV}, nil
}

func (l *LerpDirector) Start(_ *Entity) error {
	cam := l.env.Camera
	if cam == nil {
		return nil
	}
	if l.fov > 0 {
		cam.SetFOV(l.fov)
	}
	if l.target == "" || l.env.Lookup == nil {
		return nil
	}
	id, ok := l.env.Lookup(l.target)
	if !ok {
		return fmt.Errorf("lerp director target %q: %w", l.target, ErrUnknownEntity)
	}
	cam.Follow(id, l.offset, l.lerp)
	return nil
}

func (l *LerpDirector) Tick(_ *Entity, sc *Scope) error {
	cam := l.env.Camera
	if cam == nil || !cam.Following().IsZero() {
		return nil
	}
	p := sc.Player.Add(l.offset)
	cam.X += (p.X - cam.X) * l.lerp
	cam.Y += (p.Y - cam.Y) * l.lerp
	cam.MarkDirty()
	return nil
}
