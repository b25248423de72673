package sinerider

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// ConstantLakeName is the name of the sunset level with the vector field
// editor and darkness effect.
const ConstantLakeName = "Constant Lake"

// Constant Lake editor hysteresis, in world units along x.
const (
	editorShowX = 18.5
	editorHideX = 17.5
)

const (
	editorSlide         = 60
	editorSlideDuration = 1700 * time.Millisecond
	defaultCameraFOV    = 10
	speechOffsetY       = 2.5
)

// LevelConfig carries a level's collaborators. Every field is optional.
type LevelConfig struct {
	// BubbleLevel builds a preview level: no sounds, text bubbles, hint
	// graph or sky shader.
	BubbleLevel bool
	// UI is the editor surface. Nil uses an in-memory Panel owned by the
	// level.
	UI       UI
	Sounds   SoundPlayer
	Compiler ExpressionCompiler
	Assets   Assets
	Logger   *zap.Logger
	Events   EventSink
	// OnLevelCompleted is called once each time every goal completes.
	OnLevelCompleted func()
}

// Level builds a scene subtree from a LevelDatum and runs it: it owns the
// camera, graph, darkness buffer, goals and every actor, and aggregates goal
// state into level completion.
type Level struct {
	scene   *Scene
	datum   *LevelDatum
	cfg     LevelConfig
	log     *zap.Logger
	ui      UI
	session uuid.UUID

	id       EntityID
	camera   *Camera
	axes     EntityID
	graph    *Graph
	hint     *Graph
	slider   *SliderDatum
	darkness *Darkness
	buffer   *RenderBuffer
	shader   *ShaderSky
	goals    *GoalSet
	goalEnv  *GoalEnv

	sledders   []*Sledder
	sledderIDs []EntityID
	walkers    []*Walker
	walkerIDs  []EntityID
	speech     []EntityID
	walkerTree []EntityID
	goalIDs    []EntityID
	bubbles    []*TextBubble
	bubbleIDs  []EntityID
	emitters   []*SoundEmitter
	directors  []Behavior

	running      bool
	hasBeenRun   bool
	editorActive bool
	currentExpr  string
	destroyed    bool
	trackedBuf   []EntityID
}

// NewLevel validates datum and instantiates every sub-entity under a new
// level entity in scene. Unknown goal or director kinds fail with a
// *DatumError wrapping ErrUnknownKind and leave the scene unchanged.
func NewLevel(scene *Scene, datum *LevelDatum, cfg LevelConfig) (*Level, error) {
	if datum == nil {
		return nil, errors.New("new level: nil datum")
	}
	if err := datum.Validate(); err != nil {
		return nil, err
	}
	if cfg.Compiler == nil {
		cfg.Compiler = ExprCompiler{}
	}
	log := cfg.Logger
	if log == nil {
		log = scene.Logger()
	}
	l := &Level{
		scene:       scene,
		datum:       datum,
		cfg:         cfg,
		ui:          cfg.UI,
		session:     uuid.New(),
		currentExpr: datum.DefaultExpression,
	}
	l.log = log.With(zap.String("level", datum.Name), zap.Stringer("session", l.session))

	l.id = scene.Spawn(NoEntity, "level", LayerLevel, At(0, 0), &levelEntity{l: l})
	prevCamera := scene.Scope().Camera
	if err := l.build(); err != nil {
		scene.Destroy(l.id)
		scene.Scope().Camera = prevCamera
		return nil, err
	}
	l.log.Info("level loaded",
		zap.Int("goals", l.goals.Len()),
		zap.Int("sledders", len(l.sledders)),
		zap.Int("walkers", len(l.walkers)),
		zap.Bool("bubble", cfg.BubbleLevel))
	return l, nil
}

func (l *Level) build() error {
	d := l.datum
	s := l.scene

	if l.ui == nil {
		l.ui = NewPanel()
	}
	if _, ok := l.ui.(Ticker); ok {
		s.Spawn(l.id, "ui", LayerNavigator, Transform{}, l.ui)
	}
	if d.FlashMathField {
		l.ui.AddClass(ElemExpressionEnvelope, ClassFlashShadow)
	} else {
		l.ui.RemoveClass(ElemExpressionEnvelope, ClassFlashShadow)
	}
	if d.FlashRunButton {
		l.ui.AddClass(ElemRunButton, ClassFlashShadow)
	} else {
		l.ui.RemoveClass(ElemRunButton, ClassFlashShadow)
	}

	w, h := s.Size()
	fov := d.Camera.FOV
	if fov <= 0 {
		fov = defaultCameraFOV
	}
	l.camera = NewCamera(d.Camera.X, d.Camera.Y, fov, Rect{Width: float64(w), Height: float64(h)})
	s.Spawn(l.id, "camera", LayerLevel, Transform{}, l.camera)
	s.Scope().Camera = l.camera

	l.axes = s.Spawn(l.id, "axes", LayerAxes, At(0, 0), &Axes{})

	l.darkness = NewDarkness()
	lighting := s.Spawn(l.id, "lighting", LayerLighting, Transform{}, l.darkness)
	buf, err := s.NewRenderBuffer(lighting, "darken", l.darkness.PostProcess)
	if err != nil {
		l.log.Warn("darken buffer degraded", zap.Error(err))
	}
	l.buffer = buf

	l.graph = NewGraph(l.cfg.Compiler, d.DefaultExpression)
	l.spawnBuffered(l.id, "graph", LayerGraph, Transform{}, l.graph)

	l.goals = NewGoalSet(l.cfg.Sounds)
	l.goals.OnGoalCompleted = func(g *Goal) {
		l.publish(EventGoalCompleted, func(ev *LevelEvent) { ev.Goal, ev.Order = g.Name, g.Order() })
	}
	l.goals.OnGoalFailed = func(g *Goal, cascaded []*Goal) {
		l.publish(EventGoalFailed, func(ev *LevelEvent) {
			ev.Goal, ev.Order, ev.Cascaded = g.Name, g.Order(), len(cascaded)
		})
	}
	l.goals.OnLevelCompleted = func() {
		l.log.Info("level completed", zap.Float64("t", s.Scope().T))
		l.publish(EventLevelCompleted, nil)
		if l.cfg.OnLevelCompleted != nil {
			l.cfg.OnLevelCompleted()
		}
	}
	l.goalEnv = &GoalEnv{Scene: s, Graph: l.graph, Sledders: l.sledderPositions}

	return l.loadDatum()
}

// loadDatum instantiates the datum's collections in a fixed order.
func (l *Level) loadDatum() error {
	d := l.datum
	s := l.scene
	bubble := l.cfg.BubbleLevel

	if !bubble {
		for _, sd := range d.Sounds {
			l.addSound(sd)
		}
	}
	for i, sp := range d.Sprites {
		layer := LayerBackSprites
		if sp.Front {
			layer = LayerForeSprites
		}
		if _, ok := lookupImage(l.cfg.Assets, sp.Asset); !ok {
			l.log.Warn("sprite asset missing", zap.String("asset", sp.Asset))
		}
		l.spawnBuffered(l.id, fmt.Sprintf("Sprite %d", i), layer, At(sp.X, sp.Y),
			&Sprite{Asset: sp.Asset, Size: sp.Size, Flip: sp.Flip, assets: l.cfg.Assets})
	}
	for _, wd := range d.Walkers {
		l.addWalker(wd)
	}
	for _, sd := range d.Sledders {
		l.addSledder(sd)
	}
	for i, gd := range d.Goals {
		if err := l.addGoal(i, gd); err != nil {
			return err
		}
	}
	for i, td := range d.Texts {
		c := ColorBlack
		if td.Color != "" {
			c, _ = ParseHexColor(td.Color)
		}
		s.Spawn(l.id, fmt.Sprintf("Text %d", i), LayerText, At(td.X, td.Y), &Text{Value: td.Value, Color: c})
	}
	directors := d.Directors
	if len(directors) == 0 {
		directors = []DirectorDatum{{}}
	}
	env := &DirectorEnv{Scene: s, Camera: l.camera, Tracked: l.TrackedEntities, Lookup: l.lookup}
	for i, dd := range directors {
		b, err := NewDirector(dd, env)
		if err != nil {
			return &DatumError{Collection: "directors", Index: i, Value: dd.Type, Err: err}
		}
		l.directors = append(l.directors, b)
		s.Spawn(l.id, fmt.Sprintf("Director %d", i), LayerLevel, Transform{}, b)
	}
	if !bubble {
		for i, bd := range d.TextBubbles {
			b := NewTextBubble(bd)
			l.bubbles = append(l.bubbles, b)
			l.bubbleIDs = append(l.bubbleIDs, s.Spawn(l.id, fmt.Sprintf("Bubble %d", i), LayerLevelBubbles, Transform{}, b))
		}
	}
	if d.Clouds != nil {
		l.spawnBuffered(l.id, "clouds", LayerClouds, Transform{}, NewCloudRow(*d.Clouds))
	}
	if !bubble && d.IsConstantLake() {
		l.shader = NewShaderSky(l.cfg.Compiler)
		s.Spawn(l.id, "shader", LayerSky, Transform{}, l.shader)
	}
	if d.Sky != nil {
		l.spawnBuffered(l.id, "sky", LayerBackground, Transform{}, &Sky{Asset: d.Sky.Asset, assets: l.cfg.Assets})
	} else if l.shader == nil {
		sky := &Sky{}
		if d.Colors != nil && len(d.Colors.Sky) > 0 {
			stops, err := ParseSkyColors(d.Colors.Sky)
			if err != nil {
				return &DatumError{Collection: "colors.sky", Index: 0, Value: d.Colors.Sky[0].Color, Err: err}
			}
			sky.Stops = stops
		}
		s.Spawn(l.id, "sky gradient", LayerSky, Transform{}, sky)
	}
	if d.Snow != nil {
		l.spawnBuffered(l.id, "snow", LayerSnow, Transform{}, NewSnowFall(*d.Snow))
	}
	if d.Slider != nil && !bubble {
		l.slider = d.Slider
		l.hint = NewGraph(l.cfg.Compiler, d.Slider.Expression)
		l.hint.Dashed = true
		l.hint.LineWidth = 2
		l.hint.Color = Color{R: 0, G: 0, B: 0, A: 0.4}
		l.hint.Param = d.Slider.Value
		s.Spawn(l.id, "hint graph", LayerHintGraph, Transform{}, l.hint)
	}
	return nil
}

// spawnBuffered spawns an entity that draws into the darken buffer.
func (l *Level) spawnBuffered(parent EntityID, name string, order Layer, t Transform, b Behavior) EntityID {
	id := l.scene.Spawn(parent, name, order, t, b)
	if e := l.scene.get(id); e != nil && l.buffer != nil {
		e.SetTarget(l.buffer)
	}
	return id
}

type volumeSetter interface {
	SetVolume(name string, v float64)
}

func (l *Level) addSound(d SoundDatum) {
	if vs, ok := l.cfg.Sounds.(volumeSetter); ok && d.Volume > 0 {
		vs.SetVolume(d.Asset, d.Volume)
	}
	em := &SoundEmitter{Asset: d.Asset, Domain: d.Domain, Loop: d.Loop, sounds: l.cfg.Sounds}
	l.emitters = append(l.emitters, em)
	l.scene.Spawn(l.id, "Sound "+d.Asset, LayerLevel, Transform{}, em)
}

func (l *Level) addWalker(d WalkerDatum) {
	name := d.Name
	if name == "" {
		name = fmt.Sprintf("Walker %d", len(l.walkers))
	}
	id, w := l.spawnWalker(l.id, name, d, At(d.X, d.Y))
	l.walkers = append(l.walkers, w)
	l.walkerIDs = append(l.walkerIDs, id)
	l.walkerTree = append(l.walkerTree, id)
	if e := l.scene.get(id); e != nil {
		l.walkerTree = e.Descendants(l.walkerTree)
	}
}

func (l *Level) spawnWalker(parent EntityID, name string, d WalkerDatum, t Transform) (EntityID, *Walker) {
	w := NewWalker(name, d.Speed, d.Range, l.cfg.Assets)
	w.Asset = d.Asset
	w.HasDarkMode = l.datum.IsConstantLake()
	id := l.spawnBuffered(parent, name, LayerWalkers, t, w)
	for i, fd := range d.Followers {
		fname := fd.Name
		if fname == "" {
			fname = fmt.Sprintf("%s follower %d", name, i)
		}
		offset := Vec2{-followerSpacing * float64(i+1), fd.Y}
		_, f := l.spawnWalker(id, fname, WalkerDatum{Asset: fd.Asset, Lantern: fd.Lantern, Speech: fd.Speech}, At(offset.X, offset.Y))
		w.Followers = append(w.Followers, f)
	}
	for i, sd := range d.Speech {
		l.spawnSpeech(id, fmt.Sprintf("%s speech %d", name, i), sd)
	}
	if d.Lantern != nil {
		l.darkness.AddLight(lanternLight(id, *d.Lantern))
	}
	return id, w
}

func lanternLight(target EntityID, d LightDatum) *Light {
	intensity := d.Intensity
	if intensity <= 0 {
		intensity = 1
	}
	var c Color
	if d.Color != "" {
		c, _ = ParseHexColor(d.Color)
	}
	return &Light{
		Target:    target,
		Position:  d.Offset.Vec2(),
		Radius:    d.Radius,
		Intensity: intensity,
		Enabled:   true,
		Color:     c,
	}
}

func (l *Level) spawnSpeech(parent EntityID, name string, d SpeechDatum) EntityID {
	off := d.Offset.Vec2()
	if off == (Vec2{}) {
		off = Vec2{0, speechOffsetY}
	}
	return l.scene.Spawn(parent, name, LayerSpeech, At(off.X, off.Y), NewSpeech(d))
}

func (l *Level) addSledder(d SledderDatum) {
	name := d.Name
	if name == "" {
		name = fmt.Sprintf("Sledder %d", len(l.sledders))
	}
	sl := NewSledder(name, d.X, l.graph, l.cfg.Assets)
	sl.Asset = d.Asset
	id := l.spawnBuffered(l.id, name, LayerSledders, At(d.X, 0), sl)
	for i, sd := range d.Speech {
		l.speech = append(l.speech, l.spawnSpeech(id, fmt.Sprintf("%s speech %d", name, i), sd))
	}
	l.sledders = append(l.sledders, sl)
	l.sledderIDs = append(l.sledderIDs, id)
}

func (l *Level) addGoal(i int, d GoalDatum) error {
	kind, err := NewGoalKind(d)
	if err != nil {
		return &DatumError{Collection: "goals", Index: i, Value: d.Type, Err: err}
	}
	g := NewGoal(fmt.Sprintf("Goal %d", i), d.Order, kind)
	g.Env = l.goalEnv
	l.goals.Add(g)
	l.goalIDs = append(l.goalIDs, l.scene.Spawn(l.id, g.Name, LayerGoals, Transform{}, g))
	return nil
}

// sledderPositions returns every sledder's current world position.
func (l *Level) sledderPositions() []Vec2 {
	out := make([]Vec2, 0, len(l.sledderIDs))
	for _, id := range l.sledderIDs {
		if e := l.scene.get(id); e != nil {
			out = append(out, e.WorldPosition())
		}
	}
	return out
}

// lookup finds a level descendant by name.
func (l *Level) lookup(name string) (EntityID, bool) {
	e := l.scene.get(l.id)
	if e == nil {
		return NoEntity, false
	}
	for _, id := range e.Descendants(nil) {
		if c := l.scene.get(id); c != nil && c.Name == name {
			return id, true
		}
	}
	return NoEntity, false
}

// --- Level entity ---

// levelEntity carries the level's own lifecycle hooks.
type levelEntity struct {
	l *Level
}

func (le *levelEntity) Awake(*Entity) error {
	l := le.l
	l.goals.RefreshLowestOrder()
	l.assignPlayerPosition()
	if l.datum.IsConstantLake() {
		l.ui.AddClass(ElemExpressionEnvelope, ClassHidden)
		l.ui.SetText(ElemMathFieldLabel, "V=")
		l.ui.SetText(ElemMathField, DefaultFieldExpression)
		l.ui.SetText(ElemMathFieldStatic, DefaultFieldExpression)
	} else {
		l.ui.RemoveClass(ElemExpressionEnvelope, ClassHidden)
		l.ui.SetText(ElemMathFieldLabel, "Y=")
		l.ui.SetText(ElemMathField, l.datum.DefaultExpression)
		l.ui.SetText(ElemMathFieldStatic, l.datum.DefaultExpression)
	}
	return nil
}

func (le *levelEntity) Tick(_ *Entity, sc *Scope) error {
	l := le.l
	if l.running {
		sc.T += sc.DT
	}
	t := FormatRunTime(sc.T, l.running)
	l.ui.SetText(ElemRunButtonText, t)
	l.ui.SetText(ElemStopButtonText, t)

	l.assignPlayerPosition()

	if l.datum.IsConstantLake() && len(l.walkerIDs) > 0 {
		if e := l.scene.get(l.walkerIDs[0]); e != nil {
			l.updateConstantLake(e.WorldPosition().X)
		}
	}
	return nil
}

// FormatRunTime renders the run button label: "T=" and the time rounded
// to one decimal, always showing the decimal while running.
func FormatRunTime(t float64, running bool) string {
	s := strconv.FormatFloat(math.Round(t*10)/10, 'f', -1, 64)
	if running && !strings.Contains(s, ".") {
		s += ".0"
	}
	return "T=" + s
}

// assignPlayerPosition sets Scope.Player from the first walker, else the
// first sledder, else the axes.
func (l *Level) assignPlayerPosition() {
	id := l.axes
	switch {
	case len(l.walkerIDs) > 0:
		id = l.walkerIDs[0]
	case len(l.sledderIDs) > 0:
		id = l.sledderIDs[0]
	}
	if e := l.scene.get(id); e != nil {
		l.scene.scope.Player = e.WorldPosition()
	}
}

// updateConstantLake drives the editor, darkness and walker silhouettes
// from the lead walker's x.
func (l *Level) updateConstantLake(x float64) {
	l.updateEditor(x)
	opacity := DarknessOpacity(x)
	l.darkness.SetOpacity(opacity)
	dark := WalkerDarkOpacity(opacity)
	for _, w := range l.walkers {
		w.DarkModeOpacity = dark
		for _, f := range w.Followers {
			if f.HasDarkMode {
				f.DarkModeOpacity = dark
			}
		}
	}
	if l.shader != nil {
		l.shader.SetSunset(opacity / 0.9)
	}
}

// updateEditor shows the expression editor once x passes editorShowX and
// hides it again below editorHideX.
func (l *Level) updateEditor(x float64) {
	switch {
	case x > editorShowX && !l.editorActive:
		l.editorActive = true
		l.ui.RemoveClass(ElemExpressionEnvelope, ClassHidden)
		l.ui.Animate(ElemExpressionEnvelope, []Keyframe{
			{OffsetY: editorSlide, Opacity: 0},
			{OffsetY: 0, Opacity: 1},
		}, AnimationOptions{Duration: editorSlideDuration, Easing: ease.OutQuad, Fill: true})
	case x < editorHideX && l.editorActive:
		l.editorActive = false
		anim := l.ui.Animate(ElemExpressionEnvelope, []Keyframe{
			{OffsetY: 0, Opacity: 1},
			{OffsetY: editorSlide, Opacity: 0},
		}, AnimationOptions{Duration: editorSlideDuration, Easing: ease.OutQuad})
		anim.OnFinish(func() {
			if !l.editorActive {
				l.ui.AddClass(ElemExpressionEnvelope, ClassHidden)
			}
		})
	}
}

// EditorActive reports whether the Constant Lake editor is shown.
func (l *Level) EditorActive() bool { return l.editorActive }

// --- Operations ---

// StartRunning starts the simulation clock. Run music plays on the first
// run only.
func (l *Level) StartRunning() {
	if l.running {
		return
	}
	l.ui.RemoveClass(ElemRunButton, ClassFlashShadow)
	l.ui.SetText(ElemMathFieldStatic, l.currentExpr)
	if !l.hasBeenRun {
		if l.datum.RunMusic != "" && l.cfg.Sounds != nil {
			l.cfg.Sounds.Play(l.datum.RunMusic)
		}
		l.hasBeenRun = true
	}
	l.running = true
	sc := l.scene.Scope()
	sc.Running = true
	sc.T = 0
	l.goals.RefreshLowestOrder()
	l.publish(EventRunStarted, nil)
}

// StopRunning stops the clock, returns every goal and sledder to its start
// state, toggles the text bubbles and clears level completion.
func (l *Level) StopRunning() {
	l.running = false
	sc := l.scene.Scope()
	sc.Running = false
	sc.T = 0
	l.goals.Reset()
	for _, sl := range l.sledders {
		sl.Reset()
	}
	for _, b := range l.bubbles {
		b.ToggleVisible()
	}
	l.publish(EventRunStopped, nil)
}

// Reset restores the default expression and returns every sledder and goal
// to its start state, clearing level completion.
func (l *Level) Reset() {
	def := l.datum.DefaultExpression
	l.ui.SetText(ElemMathField, def)
	l.SetGraphExpression(def, def)
	for _, sl := range l.sledders {
		sl.Reset()
	}
	l.goals.Reset()
	l.publish(EventLevelReset, nil)
}

// SetGraphExpression sets the curve from text and shows display in the
// static editor. Sledders and goals are reset. In Constant Lake the
// expression drives the sky's flow field instead. Reports validity.
func (l *Level) SetGraphExpression(text, display string) bool {
	l.ui.SetText(ElemMathFieldStatic, display)
	var valid bool
	if l.datum.IsConstantLake() && l.shader != nil {
		valid = l.shader.SetExpression(text)
	} else {
		valid = l.graph.SetExpression(text)
		l.currentExpr = display
		l.ui.SetAttr(ElemExpressionEnvelope, AttrValid, strconv.FormatBool(valid))
		for _, sl := range l.sledders {
			sl.Reset()
		}
		l.goals.Reset()
	}
	l.publish(EventExpressionChanged, func(ev *LevelEvent) {
		ev.Expression, ev.Valid = text, valid
	})
	return valid
}

// SetHintParam moves the hint graph's slider, clamped to its range.
func (l *Level) SetHintParam(v float64) {
	if l.hint == nil || l.slider == nil {
		return
	}
	if l.slider.Max > l.slider.Min {
		v = max(l.slider.Min, min(l.slider.Max, v))
	}
	l.hint.Param = v
}

// MathFieldFocused clears the editor's attention flash.
func (l *Level) MathFieldFocused() {
	l.ui.RemoveClass(ElemExpressionEnvelope, ClassFlashShadow)
}

// PlayOpenMusic plays the level's opening track, if any.
func (l *Level) PlayOpenMusic() {
	if l.datum.OpenMusic != "" && l.cfg.Sounds != nil {
		l.cfg.Sounds.Play(l.datum.OpenMusic)
	}
}

// Resize resizes the scene: the darken buffer, graph rasters and camera.
func (l *Level) Resize(width, height int) {
	l.scene.Resize(width, height)
}

// Destroy releases the text bubbles and then the level subtree. It is
// idempotent.
func (l *Level) Destroy() {
	if l.destroyed {
		return
	}
	for _, id := range l.bubbleIDs {
		l.scene.Destroy(id)
	}
	l.bubbleIDs, l.bubbles = nil, nil
	l.scene.Destroy(l.id)
	if l.scene.scope.Camera == l.camera {
		l.scene.scope.Camera = nil
	}
	l.destroyed = true
	l.log.Debug("level destroyed")
}

// Update ticks the scene.
func (l *Level) Update() { l.scene.Update() }

// Draw draws the scene onto screen.
func (l *Level) Draw(screen *ebiten.Image) { l.scene.Draw(screen) }

// --- Accessors ---

// Completed reports whether every goal has been completed this run.
func (l *Level) Completed() bool { return l.goals.Completed() }

// Running reports whether the simulation clock is running.
func (l *Level) Running() bool { return l.running }

// HasBeenRun reports whether the level has been run at least once.
func (l *Level) HasBeenRun() bool { return l.hasBeenRun }

// Destroyed reports whether Destroy has been called.
func (l *Level) Destroyed() bool { return l.destroyed }

// Datum returns the level's datum.
func (l *Level) Datum() *LevelDatum { return l.datum }

// SessionID identifies this level instance in events and logs.
func (l *Level) SessionID() uuid.UUID { return l.session }

// Entity returns the level entity's handle.
func (l *Level) Entity() EntityID { return l.id }

// Scene returns the scene the level lives in.
func (l *Level) Scene() *Scene { return l.scene }

// UI returns the level's editor surface.
func (l *Level) UI() UI { return l.ui }

func (l *Level) Camera() *Camera        { return l.camera }
func (l *Level) Graph() *Graph          { return l.graph }
func (l *Level) HintGraph() *Graph      { return l.hint }
func (l *Level) Goals() *GoalSet        { return l.goals }
func (l *Level) Darkness() *Darkness    { return l.darkness }
func (l *Level) Buffer() *RenderBuffer  { return l.buffer }
func (l *Level) ShaderSky() *ShaderSky  { return l.shader }
func (l *Level) Sledders() []*Sledder   { return l.sledders }
func (l *Level) Walkers() []*Walker     { return l.walkers }
func (l *Level) Bubbles() []*TextBubble { return l.bubbles }

// SoundEmitters returns the level's positional sounds.
func (l *Level) SoundEmitters() []*SoundEmitter { return l.emitters }

// Directors returns the camera director behaviours.
func (l *Level) Directors() []Behavior { return l.directors }

// TrackedEntities returns the axes, sledder speech, sledders, walkers with
// their descendants, and goals, in that order. Destroyed entities are
// skipped. The returned slice is reused by the next call.
func (l *Level) TrackedEntities() []EntityID {
	buf := l.trackedBuf[:0]
	add := func(ids ...EntityID) {
		for _, id := range ids {
			if l.scene.Alive(id) {
				buf = append(buf, id)
			}
		}
	}
	add(l.axes)
	add(l.speech...)
	add(l.sledderIDs...)
	add(l.walkerTree...)
	add(l.goalIDs...)
	l.trackedBuf = buf
	return buf
}

func (l *Level) publish(kind EventKind, fill func(ev *LevelEvent)) {
	if l.cfg.Events == nil {
		return
	}
	sc := l.scene.Scope()
	ev := LevelEvent{
		Kind:    kind,
		Session: l.session,
		Level:   l.datum.Name,
		T:       sc.T,
		Frame:   sc.Frame,
	}
	if fill != nil {
		fill(&ev)
	}
	l.cfg.Events.Publish(ev)
}
