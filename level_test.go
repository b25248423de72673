package sinerider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hillsDatum() *LevelDatum {
	return &LevelDatum{
		Name:              "Hills",
		DefaultExpression: "0",
		RunMusic:          "run",
		Sledders:          []SledderDatum{{Name: "Ada", X: 5}},
		Goals: []GoalDatum{
			{X: 5, Order: "A"},
			{X: 40, Order: "B"},
			{X: 60, Order: "C"},
		},
		TextBubbles: []TextBubbleDatum{{Content: "Press run"}},
		Slider:      &SliderDatum{Expression: "-x/a", Min: 1, Max: 8, Value: 4},
	}
}

type eventLog []LevelEvent

func (e *eventLog) Publish(ev LevelEvent) { *e = append(*e, ev) }

func (e eventLog) kinds() []EventKind {
	out := make([]EventKind, len(e))
	for i, ev := range e {
		out[i] = ev.Kind
	}
	return out
}

func (e eventLog) count(k EventKind) int {
	n := 0
	for _, ev := range e {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

func newTestLevel(t *testing.T, d *LevelDatum, cfg LevelConfig) *Level {
	t.Helper()
	s := NewScene()
	s.Resize(320, 240)
	l, err := NewLevel(s, d, cfg)
	require.NoError(t, err)
	l.Update()
	return l
}

func TestLevelStopThenResetLeavesGoalsPending(t *testing.T) {
	l := newTestLevel(t, hillsDatum(), LevelConfig{})
	l.StartRunning()
	goals := l.Goals().Goals()
	require.True(t, goals[0].Complete())
	require.True(t, goals[2].Fail())

	l.StopRunning()
	l.Reset()
	for _, g := range goals {
		assert.Equal(t, GoalPending, g.State(), g.Name)
	}
	assert.False(t, l.Completed())
	assert.Equal(t, "A", l.Goals().LowestOrder())
}

func TestLevelCompletesByRiding(t *testing.T) {
	d := &LevelDatum{
		Name:              "Flat",
		DefaultExpression: "0",
		Sledders:          []SledderDatum{{X: 5}},
		Goals:             []GoalDatum{{X: 5}},
	}
	completions := 0
	var events eventLog
	l := newTestLevel(t, d, LevelConfig{Events: &events, OnLevelCompleted: func() { completions++ }})

	l.StartRunning()
	for i := 0; i < 5; i++ {
		l.Update()
	}
	assert.True(t, l.Completed())
	assert.Equal(t, 1, completions)
	assert.Equal(t, []EventKind{EventRunStarted, EventGoalCompleted, EventLevelCompleted}, events.kinds())
	for _, ev := range events {
		assert.Equal(t, l.SessionID(), ev.Session)
		assert.Equal(t, "Flat", ev.Level)
	}
}

func TestLevelResetAfterCompletion(t *testing.T) {
	d := &LevelDatum{
		Name:              "Flat",
		DefaultExpression: "0",
		Sledders:          []SledderDatum{{X: 5}},
		Goals:             []GoalDatum{{X: 5}},
	}
	completions := 0
	var events eventLog
	l := newTestLevel(t, d, LevelConfig{Events: &events, OnLevelCompleted: func() { completions++ }})

	l.StartRunning()
	for i := 0; i < 5; i++ {
		l.Update()
	}
	require.True(t, l.Completed())

	l.Reset()
	assert.False(t, l.Completed())
	assert.Equal(t, 1, l.Goals().Count(GoalPending))
	assert.True(t, l.Running(), "reset does not stop the clock")

	for i := 0; i < 5; i++ {
		l.Update()
	}
	assert.True(t, l.Completed())
	assert.Equal(t, 2, completions)
	assert.Equal(t, 2, events.count(EventLevelCompleted))
}

func TestConstantLakeResetClearsGoals(t *testing.T) {
	d := &LevelDatum{Name: ConstantLakeName, DefaultExpression: "0", Goals: []GoalDatum{{X: 100}}}
	l := newTestLevel(t, d, LevelConfig{})
	require.True(t, l.Goals().Goals()[0].Complete())
	require.True(t, l.Completed())

	l.Reset()
	assert.False(t, l.Completed())
	assert.Equal(t, GoalPending, l.Goals().Goals()[0].State())
}

func TestLevelUnknownGoalKind(t *testing.T) {
	s := NewScene()
	d := &LevelDatum{Name: "Bad", DefaultExpression: "0", Goals: []GoalDatum{{X: 1}, {Type: "teleport"}}}
	_, err := NewLevel(s, d, LevelConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKind)

	var derr *DatumError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "goals", derr.Collection)
	assert.Equal(t, 1, derr.Index)
	assert.Equal(t, "teleport", derr.Value)
	assert.Equal(t, 1, s.Len(), "failed load leaves only the root")
}

func TestLevelUnknownDirectorKind(t *testing.T) {
	s := NewScene()
	d := &LevelDatum{Name: "Bad", DefaultExpression: "0", Directors: []DirectorDatum{{Type: "drone"}}}
	_, err := NewLevel(s, d, LevelConfig{})
	var derr *DatumError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "directors", derr.Collection)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestLevelBadGoalShapeRollsBack(t *testing.T) {
	s := NewScene()
	d := &LevelDatum{Name: "Bad", DefaultExpression: "0", Goals: []GoalDatum{{Shape: "hexagon"}}}
	_, err := NewLevel(s, d, LevelConfig{})
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, 1, s.Len())
	assert.Nil(t, s.Scope().Camera)
}

func TestFormatRunTime(t *testing.T) {
	tests := []struct {
		t       float64
		running bool
		want    string
	}{
		{0, false, "T=0"},
		{0, true, "T=0.0"},
		{1.25, true, "T=1.3"},
		{2.04, false, "T=2"},
		{2.04, true, "T=2.0"},
		{12.36, false, "T=12.4"},
	}
	for _, tt := range tests {
		if got := FormatRunTime(tt.t, tt.running); got != tt.want {
			t.Errorf("FormatRunTime(%v, %v) = %q, want %q", tt.t, tt.running, got, tt.want)
		}
	}
}

func TestLevelRunClockAndText(t *testing.T) {
	l := newTestLevel(t, hillsDatum(), LevelConfig{})
	panel := l.UI().(*Panel)
	assert.Equal(t, "T=0", panel.Element(ElemRunButtonText).Text)

	l.StartRunning()
	for i := 0; i < 60; i++ {
		l.Update()
	}
	assert.InDelta(t, 1.0, l.Scene().Scope().T, 1e-9)
	assert.Equal(t, "T=1.0", panel.Element(ElemRunButtonText).Text)

	l.StopRunning()
	assert.Zero(t, l.Scene().Scope().T)
	assert.False(t, l.Scene().Scope().Running)
}

func TestLevelRunMusicPlaysOnce(t *testing.T) {
	snd := &countingSounds{}
	l := newTestLevel(t, hillsDatum(), LevelConfig{Sounds: snd})
	l.StartRunning()
	l.StartRunning()
	l.StopRunning()
	l.StartRunning()
	assert.Equal(t, 1, snd.plays["run"])
	assert.True(t, l.HasBeenRun())
}

func TestLevelStopTogglesBubbles(t *testing.T) {
	l := newTestLevel(t, hillsDatum(), LevelConfig{})
	require.Len(t, l.Bubbles(), 1)
	b := l.Bubbles()[0]
	assert.False(t, b.Shown())
	l.StopRunning()
	assert.True(t, b.Shown())
	l.StopRunning()
	assert.False(t, b.Shown())
}

func TestBubbleLevelSkipsBubblesSoundsAndHint(t *testing.T) {
	d := hillsDatum()
	d.Sounds = []SoundDatum{{Asset: "wind"}}
	l := newTestLevel(t, d, LevelConfig{BubbleLevel: true})
	assert.Empty(t, l.Bubbles())
	assert.Empty(t, l.SoundEmitters())
	assert.Nil(t, l.HintGraph())
}

func TestLevelSetGraphExpression(t *testing.T) {
	var events eventLog
	l := newTestLevel(t, hillsDatum(), LevelConfig{Events: &events})
	panel := l.UI().(*Panel)

	assert.True(t, l.SetGraphExpression("sin(x)", "sin(x)"))
	assert.Equal(t, "sin(x)", l.Graph().Expression())
	assert.Equal(t, "true", panel.Element(ElemExpressionEnvelope).Attrs[AttrValid])

	assert.False(t, l.SetGraphExpression("sin(", "sin("))
	assert.Equal(t, "false", panel.Element(ElemExpressionEnvelope).Attrs[AttrValid])
	assert.Equal(t, "sin(", panel.Element(ElemMathFieldStatic).Text)

	last := events[len(events)-1]
	assert.Equal(t, EventExpressionChanged, last.Kind)
	assert.False(t, last.Valid)

	l.Reset()
	assert.Equal(t, "0", l.Graph().Expression())
	assert.Equal(t, "0", panel.Element(ElemMathField).Text)
}

func TestLevelSetHintParamClamps(t *testing.T) {
	l := newTestLevel(t, hillsDatum(), LevelConfig{})
	l.SetHintParam(100)
	assert.Equal(t, 8.0, l.HintGraph().Param)
	l.SetHintParam(-3)
	assert.Equal(t, 1.0, l.HintGraph().Param)
}

func TestLevelPlayerPosition(t *testing.T) {
	l := newTestLevel(t, hillsDatum(), LevelConfig{})
	assert.Equal(t, Vec2{5, 0}, l.Scene().Scope().Player, "first sledder without walkers")

	d := hillsDatum()
	d.Walkers = []WalkerDatum{{Name: "Jack", X: -3}}
	l = newTestLevel(t, d, LevelConfig{})
	assert.Equal(t, Vec2{-3, 0}, l.Scene().Scope().Player, "walkers win over sledders")

	l = newTestLevel(t, &LevelDatum{Name: "Empty", DefaultExpression: "0"}, LevelConfig{})
	assert.Equal(t, Vec2{}, l.Scene().Scope().Player, "axes anchor")
}

func TestLevelEditorFlags(t *testing.T) {
	d := hillsDatum()
	d.FlashMathField = true
	d.FlashRunButton = true
	l := newTestLevel(t, d, LevelConfig{})
	panel := l.UI().(*Panel)
	assert.True(t, panel.Element(ElemExpressionEnvelope).HasClass(ClassFlashShadow))
	assert.Equal(t, "Y=", panel.Element(ElemMathFieldLabel).Text)

	l.MathFieldFocused()
	assert.False(t, panel.Element(ElemExpressionEnvelope).HasClass(ClassFlashShadow))
	l.StartRunning()
	assert.False(t, panel.Element(ElemRunButton).HasClass(ClassFlashShadow))
}

func TestLevelResizePropagates(t *testing.T) {
	l := newTestLevel(t, hillsDatum(), LevelConfig{})
	fov := l.Camera().FOV()
	l.Resize(640, 480)
	l.Resize(640, 480)
	buf := l.Buffer()
	require.NotNil(t, buf)
	assert.Equal(t, 640, buf.Width())
	assert.Equal(t, 480, buf.Height())
	assert.Equal(t, 2, buf.Allocations(), "one at load, one for the new size")
	assert.InDelta(t, fov, l.Camera().FOV(), 1e-9, "resize keeps the field of view")
}

func TestLevelDestroy(t *testing.T) {
	l := newTestLevel(t, hillsDatum(), LevelConfig{})
	s := l.Scene()
	bubble := l.bubbleIDs[0]
	l.Destroy()
	assert.True(t, l.Destroyed())
	assert.False(t, s.Alive(bubble))
	assert.False(t, s.Alive(l.Entity()))
	assert.Equal(t, 1, s.Len())
	assert.Nil(t, s.Scope().Camera)
	assert.NotPanics(t, l.Destroy)
}

func TestLevelTrackedEntities(t *testing.T) {
	d := hillsDatum()
	d.Walkers = []WalkerDatum{{Name: "Jack", Followers: []WalkerDatum{{Name: "Jill"}}}}
	l := newTestLevel(t, d, LevelConfig{})
	tracked := l.TrackedEntities()
	// axes, one sledder, two walkers, three goals
	assert.Len(t, tracked, 7)
	assert.Equal(t, l.axes, tracked[0])

	id, ok := l.lookup("Jill")
	require.True(t, ok)
	assert.Contains(t, tracked, id)
}

func TestConstantLakeEditorHysteresis(t *testing.T) {
	d := &LevelDatum{
		Name:              ConstantLakeName,
		DefaultExpression: "0",
		Walkers:           []WalkerDatum{{Name: "Ada", X: 0}},
	}
	l := newTestLevel(t, d, LevelConfig{})
	panel := l.UI().(*Panel)
	env := panel.Element(ElemExpressionEnvelope)
	walker, ok := l.Scene().Get(l.walkerIDs[0])
	require.True(t, ok)
	moveTo := func(x float64) {
		walker.SetPosition(Vec2{x, 0})
		l.Update()
	}

	assert.True(t, env.HasClass(ClassHidden))
	assert.Equal(t, "V=", panel.Element(ElemMathFieldLabel).Text)

	moveTo(18)
	assert.False(t, l.EditorActive(), "between thresholds from below")

	moveTo(19)
	assert.True(t, l.EditorActive())
	assert.False(t, env.HasClass(ClassHidden))
	assert.Equal(t, 1, panel.Animating())

	moveTo(18)
	assert.True(t, l.EditorActive(), "between thresholds from above")
	moveTo(19)
	assert.Equal(t, 1, panel.Animating(), "no second show animation")

	moveTo(17)
	assert.False(t, l.EditorActive())
	assert.False(t, env.HasClass(ClassHidden), "hidden only after the slide")
	for i := 0; i < 120; i++ {
		l.Update()
	}
	assert.True(t, env.HasClass(ClassHidden))
	assert.Zero(t, panel.Animating())
}

func TestConstantLakeReshowDuringHide(t *testing.T) {
	d := &LevelDatum{Name: ConstantLakeName, DefaultExpression: "0", Walkers: []WalkerDatum{{X: 0}}}
	l := newTestLevel(t, d, LevelConfig{})
	panel := l.UI().(*Panel)
	walker, _ := l.Scene().Get(l.walkerIDs[0])

	walker.SetPosition(Vec2{19, 0})
	l.Update()
	walker.SetPosition(Vec2{17, 0})
	l.Update()
	walker.SetPosition(Vec2{19, 0})
	l.Update()
	for i := 0; i < 240; i++ {
		l.Update()
	}
	assert.True(t, l.EditorActive())
	assert.False(t, panel.Element(ElemExpressionEnvelope).HasClass(ClassHidden))
}

func TestConstantLakeDarkness(t *testing.T) {
	d := &LevelDatum{Name: ConstantLakeName, DefaultExpression: "0", Walkers: []WalkerDatum{{X: 10}}}
	l := newTestLevel(t, d, LevelConfig{})
	l.Update()
	assert.InDelta(t, 0.25, l.Darkness().Opacity(), 1e-9)
	assert.InDelta(t, 0.25/0.9, l.ShaderSky().Sunset(), 1e-9)
	assert.InDelta(t, WalkerDarkOpacity(0.25), l.Walkers()[0].DarkModeOpacity, 1e-12)

	assert.True(t, l.SetGraphExpression("cos(x)", "cos(x)"))
	assert.Equal(t, "cos(x)", l.ShaderSky().Expression())
	assert.Equal(t, "0", l.Graph().Expression(), "the lake graph keeps its curve")
}

func TestDarknessCurves(t *testing.T) {
	assert.InDelta(t, 0.0, DarknessOpacity(0), 1e-12)
	assert.InDelta(t, 0.25, DarknessOpacity(10), 1e-12)
	assert.InDelta(t, 0.9, DarknessOpacity(100), 1e-12)
	assert.InDelta(t, 0.9*0.9*0.9*0.9*0.9, WalkerDarkOpacity(0.9), 1e-12)
}
