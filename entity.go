package sinerider

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// EntityID is a stable handle to an entity in a Scene. Handles of destroyed
// entities never resolve again, even after their slot is reused.
type EntityID struct {
	index uint32
	gen   uint32
}

// NoEntity is the zero handle. It never resolves to an entity.
var NoEntity EntityID

// IsZero reports whether id is the zero handle.
func (id EntityID) IsZero() bool { return id.gen == 0 }

func (id EntityID) String() string {
	if id.IsZero() {
		return "entity(none)"
	}
	return fmt.Sprintf("entity(%d.%d)", id.index, id.gen)
}

// --- Lifecycle hooks ---

// Behavior is the per-kind logic attached to an entity. A behavior
// implements whichever of Awaker, Starter, Ticker, Drawer, Resizer and
// Destroyer it needs; missing hooks cost nothing.
type Behavior any

// Awaker is called once per entity, parents before children, before any
// Start in the same batch.
type Awaker interface {
	Awake(e *Entity) error
}

// Starter is called once per entity after every pending Awake has run.
type Starter interface {
	Start(e *Entity) error
}

// Ticker is called every frame in subtree order.
type Ticker interface {
	Tick(e *Entity, sc *Scope) error
}

// Drawer is called every frame after all ticks, in ascending draw order.
// dst is the primary surface or the entity's render buffer.
type Drawer interface {
	Draw(e *Entity, sc *Scope, dst *ebiten.Image) error
}

// Resizer is called when the surface dimensions change.
type Resizer interface {
	Resize(e *Entity, width, height int) error
}

// Destroyer is called once when the entity is destroyed, after its
// children have been destroyed.
type Destroyer interface {
	Destroy(e *Entity) error
}

type phase uint8

const (
	phaseConstructed phase = iota
	phaseAwake
	phaseStarted
	phaseDestroyed
)

// --- Entity ---

// Entity is a node in the scene's ownership tree.
type Entity struct {
	// Identity
	ID   EntityID
	Name string
	Kind string

	// Transform relative to the parent.
	Transform Transform

	// Visible hides the entity and its subtree from the draw pass. Ticks
	// still run.
	Visible bool

	// Behavior receives lifecycle hooks.
	Behavior Behavior

	// UserData is free for the owner's use.
	UserData any

	order  Layer
	seq    uint64
	phase  phase
	scene  *Scene
	world  [6]float64
	target *RenderBuffer

	// Hierarchy
	parent         EntityID
	children       []EntityID
	childrenSorted bool
	sortedChildren []EntityID // reused buffer for draw-order traversal

	buffers []*RenderBuffer // render buffers owned by this entity
}

// DrawOrder returns the entity's draw layer. It never changes.
func (e *Entity) DrawOrder() Layer { return e.order }

// Parent returns the owning entity's handle, or NoEntity for the root.
func (e *Entity) Parent() EntityID { return e.parent }

// Children returns child handles in insertion order. The returned slice
// MUST NOT be mutated.
func (e *Entity) Children() []EntityID { return e.children }

// Scene returns the scene that owns the entity.
func (e *Entity) Scene() *Scene { return e.scene }

// Target returns the render buffer this entity draws into, or nil for the
// primary surface.
func (e *Entity) Target() *RenderBuffer { return e.target }

// SetTarget redirects the entity's draw output into buf. Pass nil to draw
// to the primary surface.
func (e *Entity) SetTarget(buf *RenderBuffer) { e.target = buf }

// Destroyed reports whether the entity has been destroyed.
func (e *Entity) Destroyed() bool { return e.phase == phaseDestroyed }

// IsAwake reports whether the awake hook has run.
func (e *Entity) IsAwake() bool { return e.phase >= phaseAwake && e.phase != phaseDestroyed }

// IsStarted reports whether the start hook has run.
func (e *Entity) IsStarted() bool { return e.phase == phaseStarted }

// Descendants appends every descendant handle (pre-order) to buf.
func (e *Entity) Descendants(buf []EntityID) []EntityID {
	for _, c := range e.children {
		buf = append(buf, c)
		if ce := e.scene.get(c); ce != nil {
			buf = ce.Descendants(buf)
		}
	}
	return buf
}

// --- Arena ---

type slot struct {
	gen uint32
	e   *Entity
}

// get resolves a handle. Returns nil for stale or zero handles.
func (s *Scene) get(id EntityID) *Entity {
	if id.IsZero() || int(id.index) >= len(s.slots) {
		return nil
	}
	sl := &s.slots[id.index]
	if sl.gen != id.gen || sl.e == nil {
		return nil
	}
	return sl.e
}

// Get resolves a handle to its entity.
func (s *Scene) Get(id EntityID) (*Entity, bool) {
	e := s.get(id)
	return e, e != nil
}

// Alive reports whether id refers to a live entity.
func (s *Scene) Alive(id EntityID) bool {
	return s.get(id) != nil
}

// Len returns the number of live entities, including the root.
func (s *Scene) Len() int {
	return s.live
}

// alloc claims a slot for e and returns its handle.
func (s *Scene) alloc(e *Entity) EntityID {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}
	sl := &s.slots[idx]
	sl.gen++
	sl.e = e
	s.live++
	return EntityID{index: idx, gen: sl.gen}
}

// release frees the slot held by id. Its generation stays bumped so the
// stale handle never resolves again.
func (s *Scene) release(id EntityID) {
	sl := &s.slots[id.index]
	sl.e = nil
	s.free = append(s.free, id.index)
	s.live--
}

// --- Construction ---

// Spawn constructs an entity under parent (NoEntity attaches it to the
// scene root) and returns its handle. No hooks run until the next Update
// or Activate. Panics if parent is stale.
func (s *Scene) Spawn(parent EntityID, name string, order Layer, t Transform, b Behavior) EntityID {
	if parent.IsZero() {
		parent = s.root
	}
	pe := s.get(parent)
	if pe == nil {
		panic(fmt.Sprintf("sinerider: spawn %q under stale parent %v", name, parent))
	}
	s.nextSeq++
	e := &Entity{
		Name:      name,
		Transform: t.normalized(),
		Visible:   true,
		Behavior:  b,
		order:     order,
		seq:       s.nextSeq,
		scene:     s,
		parent:    parent,
	}
	e.ID = s.alloc(e)
	e.world = multiplyAffine(pe.world, computeLocalTransform(e.Transform))
	pe.children = append(pe.children, e.ID)
	pe.childrenSorted = false
	s.pending++
	if s.debug {
		debugCheckTreeDepth(s, e)
		debugCheckChildCount(s, pe)
	}
	return e.ID
}

// --- Teardown ---

// Destroy destroys the entity and all of its descendants, children first.
// Destroyer hooks run, owned render buffers are released, and every handle
// in the subtree stops resolving. Destroying a stale handle is a no-op.
// The scene root cannot be destroyed.
func (s *Scene) Destroy(id EntityID) {
	e := s.get(id)
	if e == nil || id == s.root {
		return
	}
	if pe := s.get(e.parent); pe != nil {
		pe.removeChild(id)
	}
	s.destroy(e)
}

func (s *Scene) destroy(e *Entity) {
	if e.phase == phaseDestroyed {
		return
	}
	if e.phase == phaseConstructed {
		s.pending--
	}
	e.phase = phaseDestroyed
	children := e.children
	e.children = nil
	for _, c := range children {
		if ce := s.get(c); ce != nil {
			s.destroy(ce)
		}
	}
	if d, ok := e.Behavior.(Destroyer); ok {
		s.invoke(e, "destroy", func() error { return d.Destroy(e) })
	}
	for _, buf := range e.buffers {
		s.removeBuffer(buf)
		buf.Dispose()
	}
	e.buffers = nil
	e.sortedChildren = nil
	e.target = nil
	s.release(e.ID)
}

// removeChild removes child from e.children, preserving order.
func (e *Entity) removeChild(child EntityID) {
	for i, c := range e.children {
		if c == child {
			copy(e.children[i:], e.children[i+1:])
			e.children = e.children[:len(e.children)-1]
			e.childrenSorted = false
			return
		}
	}
}

// rebuildSortedChildren rebuilds the draw-order sorted child list.
// Uses insertion sort: zero allocations, stable, and optimal for the typical
// case of few children that are nearly sorted (O(n) when already sorted).
func (s *Scene) rebuildSortedChildren(e *Entity) {
	nc := len(e.children)
	if cap(e.sortedChildren) < nc {
		e.sortedChildren = make([]EntityID, nc)
	}
	e.sortedChildren = e.sortedChildren[:nc]
	copy(e.sortedChildren, e.children)
	for i := 1; i < nc; i++ {
		key := e.sortedChildren[i]
		keyOrder := s.orderOf(key)
		j := i - 1
		for j >= 0 && s.orderOf(e.sortedChildren[j]) > keyOrder {
			e.sortedChildren[j+1] = e.sortedChildren[j]
			j--
		}
		e.sortedChildren[j+1] = key
	}
	e.childrenSorted = true
}

// SortedChildren returns the children ordered by draw order, ties in
// insertion order. The returned slice MUST NOT be mutated.
func (e *Entity) SortedChildren() []EntityID {
	if !e.childrenSorted {
		e.scene.rebuildSortedChildren(e)
	}
	return e.sortedChildren
}

func (s *Scene) orderOf(id EntityID) Layer {
	if e := s.get(id); e != nil {
		return e.order
	}
	return 0
}
