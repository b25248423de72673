package sinerider

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

const defaultDrawCap = 256

// maxActivationPasses bounds how many times Activate re-runs when Awake or
// Start hooks keep spawning new entities.
const maxActivationPasses = 8

// Scene owns the entity arena, the shared Scope, and the render buffers.
// All methods must be called from the frame loop goroutine.
type Scene struct {
	// Arena
	slots   []slot
	free    []uint32
	live    int
	root    EntityID
	nextSeq uint64
	pending int

	scope Scope
	log   *zap.Logger
	debug bool

	width, height int

	// Per-frame scratch
	drawList  []drawEntry
	sortBuf   []drawEntry
	walkBuf   []EntityID
	activeBuf []EntityID

	buffers []*RenderBuffer

	hookFailures int
	lastHookErr  error

	// ScreenshotDir is the directory queued screenshots are written to.
	ScreenshotDir   string
	screenshotQueue []string
}

// NewScene creates a scene containing only its root entity.
func NewScene() *Scene {
	s := &Scene{
		log:           zap.NewNop(),
		drawList:      make([]drawEntry, 0, defaultDrawCap),
		sortBuf:       make([]drawEntry, 0, defaultDrawCap),
		ScreenshotDir: "screenshots",
	}
	root := &Entity{Name: "root", Visible: true, scene: s, phase: phaseStarted}
	root.Transform = root.Transform.normalized()
	root.world = identityTransform
	root.ID = s.alloc(root)
	s.root = root.ID
	return s
}

// Root returns the handle of the scene root. Entities spawned with
// NoEntity as parent attach here.
func (s *Scene) Root() EntityID { return s.root }

// Scope returns the scene's shared per-frame state.
func (s *Scene) Scope() *Scope { return &s.scope }

// SetLogger replaces the scene logger. A nil logger disables logging.
func (s *Scene) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	s.log = log
}

// Logger returns the scene logger.
func (s *Scene) Logger() *zap.Logger { return s.log }

// SetDebugMode enables per-frame timing logs and tree sanity warnings.
func (s *Scene) SetDebugMode(enabled bool) { s.debug = enabled }

// HookFailures returns how many lifecycle hooks have failed or panicked.
func (s *Scene) HookFailures() int { return s.hookFailures }

// LastHookError returns the most recent hook failure, or nil.
func (s *Scene) LastHookError() error { return s.lastHookErr }

// Size returns the primary surface dimensions last passed to Resize.
func (s *Scene) Size() (width, height int) { return s.width, s.height }

// --- Lifecycle ---

// Activate runs Awake on every pending entity, parents first, and then
// Start on the same batch. Entities spawned by those hooks are activated in
// a following pass. Update calls Activate before ticking.
func (s *Scene) Activate() {
	for pass := 0; s.pending > 0 && pass < maxActivationPasses; pass++ {
		s.activeBuf = s.collectPending(s.activeBuf[:0], s.root)
		for _, id := range s.activeBuf {
			e := s.get(id)
			if e == nil || e.phase != phaseConstructed {
				continue
			}
			e.phase = phaseAwake
			s.pending--
			if a, ok := e.Behavior.(Awaker); ok {
				s.invoke(e, "awake", func() error { return a.Awake(e) })
			}
		}
		for _, id := range s.activeBuf {
			e := s.get(id)
			if e == nil || e.phase != phaseAwake {
				continue
			}
			e.phase = phaseStarted
			if st, ok := e.Behavior.(Starter); ok {
				s.invoke(e, "start", func() error { return st.Start(e) })
			}
		}
	}
}

// collectPending appends constructed entities under id in pre-order.
func (s *Scene) collectPending(buf []EntityID, id EntityID) []EntityID {
	e := s.get(id)
	if e == nil {
		return buf
	}
	if e.phase == phaseConstructed {
		buf = append(buf, id)
	}
	for _, c := range e.children {
		buf = s.collectPending(buf, c)
	}
	return buf
}

// preorder appends id and its descendants in pre-order.
func (s *Scene) preorder(buf []EntityID, id EntityID) []EntityID {
	e := s.get(id)
	if e == nil {
		return buf
	}
	buf = append(buf, id)
	for _, c := range e.children {
		buf = s.preorder(buf, c)
	}
	return buf
}

// Update activates pending entities, refreshes world transforms and ticks
// every started entity in pre-order. Entities spawned during the tick are
// activated on the next Update.
func (s *Scene) Update() {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	tps := ebiten.TPS()
	if tps <= 0 {
		tps = 60
	}
	s.scope.DT = 1.0 / float64(tps)
	s.scope.Frame++

	s.Activate()
	s.updateWorldTransforms(s.root, identityTransform)

	s.walkBuf = s.preorder(s.walkBuf[:0], s.root)
	for _, id := range s.walkBuf {
		e := s.get(id)
		if e == nil || e.phase != phaseStarted {
			continue
		}
		if t, ok := e.Behavior.(Ticker); ok {
			s.invoke(e, "tick", func() error { return t.Tick(e, &s.scope) })
		}
	}
	s.updateWorldTransforms(s.root, identityTransform)

	if s.debug {
		s.log.Debug("update",
			zap.Uint64("frame", s.scope.Frame),
			zap.Int("entities", s.live),
			zap.Duration("tick", time.Since(t0)))
	}
}

// Draw clears every render buffer, draws started and visible entities in
// ascending draw order, and composites each buffer onto screen at its
// owner's draw slot. Queued screenshots are captured last.
func (s *Scene) Draw(screen *ebiten.Image) {
	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	for _, b := range s.buffers {
		b.clear()
	}

	s.drawList = s.drawList[:0]
	s.collectDraws(s.root)
	if s.debug {
		stats.collectTime = time.Since(t0)
		t0 = time.Now()
	}

	s.mergeSort()
	if s.debug {
		stats.sortTime = time.Since(t0)
		t0 = time.Now()
	}

	for _, d := range s.drawList {
		e := s.get(d.id)
		if e == nil {
			continue
		}
		if dr, ok := e.Behavior.(Drawer); ok {
			dst := screen
			if e.target != nil {
				if e.target.Usable() {
					dst = e.target.image
				} else {
					stats.unbuffered++
				}
			}
			s.invoke(e, "draw", func() error { return dr.Draw(e, &s.scope, dst) })
			stats.drawCalls++
		}
		for _, b := range e.buffers {
			s.compositeBuffer(e, b, screen)
		}
	}

	if s.debug {
		stats.drawTime = time.Since(t0)
		stats.entryCount = len(s.drawList)
		s.debugLog(stats)
	}

	s.flushScreenshots(screen)
}

// collectDraws appends the started, visible descendants of id to the draw
// list. Hidden entities hide their whole subtree.
func (s *Scene) collectDraws(id EntityID) {
	e := s.get(id)
	if e == nil || !e.Visible {
		return
	}
	if id != s.root && e.phase == phaseStarted {
		s.drawList = append(s.drawList, drawEntry{id: id, order: e.order, seq: e.seq})
	}
	for _, c := range e.SortedChildren() {
		s.collectDraws(c)
	}
}

// Resize records the new surface size, reallocates every render buffer and
// forwards the dimensions to every Resizer in pre-order.
func (s *Scene) Resize(width, height int) {
	s.width, s.height = width, height
	s.scope.Width, s.scope.Height = width, height
	for _, b := range s.buffers {
		if err := b.Resize(width, height); err != nil {
			s.log.Error("render buffer resize failed",
				zap.String("buffer", b.Name),
				zap.Int("width", width),
				zap.Int("height", height),
				zap.Error(err))
		}
	}
	s.walkBuf = s.preorder(s.walkBuf[:0], s.root)
	for _, id := range s.walkBuf {
		e := s.get(id)
		if e == nil || e.phase == phaseDestroyed {
			continue
		}
		if r, ok := e.Behavior.(Resizer); ok {
			s.invoke(e, "resize", func() error { return r.Resize(e, width, height) })
		}
	}
}

// invoke runs one hook on e, converting panics into errors. Failures are
// logged and counted; they never stop the caller's iteration.
func (s *Scene) invoke(e *Entity, hook string, fn func() error) bool {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}()
	if err == nil {
		return true
	}
	herr := &HookError{Hook: hook, Entity: e.Name, ID: e.ID, Err: err}
	s.hookFailures++
	s.lastHookErr = herr
	s.log.Error("entity hook failed",
		zap.String("hook", hook),
		zap.String("entity", e.Name),
		zap.Stringer("id", e.ID),
		zap.Error(err))
	return false
}
