package sinerider

import (
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

func TestParseSkyColorsSortsAndClamps(t *testing.T) {
	stops, err := ParseSkyColors(SkyColors{{1.5, "#ffffff"}, {0, "#000000"}})
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.Equal(t, 0.0, stops[0].Offset)
	assert.Equal(t, 1.0, stops[1].Offset)

	_, err = ParseSkyColors(SkyColors{{0, "sky blue"}})
	assert.Error(t, err)
}

func TestSkyColorAt(t *testing.T) {
	stops, err := ParseSkyColors(SkyColors{{0, "#000000"}, {1, "#ffffff"}})
	require.NoError(t, err)
	s := &Sky{Stops: stops}
	assert.Equal(t, Color{0, 0, 0, 1}, s.ColorAt(-1))
	assert.Equal(t, Color{1, 1, 1, 1}, s.ColorAt(2))
	mid := s.ColorAt(0.5)
	assert.InDelta(t, 0.5, mid.R, 1e-9)
	assert.InDelta(t, 0.5, mid.B, 1e-9)

	single := &Sky{Stops: []SkyStop{{Offset: 0, Color: ColorWhite}}}
	assert.Equal(t, ColorWhite, single.ColorAt(0.7))

	def := &Sky{}
	assert.Equal(t, DefaultSkyStops[0].Color, def.ColorAt(0))
}

func TestTextBubbleToggle(t *testing.T) {
	b := NewTextBubble(TextBubbleDatum{Content: "hi"})
	assert.Equal(t, "top-right", b.Place)
	assert.False(t, b.Shown())
	b.ToggleVisible()
	assert.True(t, b.Shown())
	require.NoError(t, b.Destroy(nil))
	assert.False(t, b.Shown())
}

func TestTextBubbleAnchor(t *testing.T) {
	tests := []struct {
		place string
		x, y  float64
	}{
		{"top-left", 160, 80},
		{"top", 400, 80},
		{"top-right", 640, 80},
		{"left", 160, 300},
		{"center", 400, 300},
		{"right", 640, 300},
		{"bottom-left", 160, 520},
		{"bottom", 400, 520},
		{"bottom-right", 640, 520},
	}
	for _, tt := range tests {
		b := NewTextBubble(TextBubbleDatum{Place: tt.place})
		x, y := b.anchor(800, 600)
		assert.Equal(t, tt.x, x, tt.place)
		assert.Equal(t, tt.y, y, tt.place)
	}
}

func TestSnowFallSpawnsAndExpires(t *testing.T) {
	s := NewSnowFall(SnowDatum{Density: 2, Velocity: PointDatum{Y: -2}})
	view := Rect{X: 0, Y: 0, Width: 10, Height: 4}
	s.update(1, view)
	assert.Equal(t, 20, s.AliveCount())
	for i := 0; i < 20; i++ {
		f := s.flakes[i]
		assert.True(t, f.x >= 0 && f.x <= 10)
		assert.Equal(t, 4.0, f.y)
	}

	s.Density = 0
	s.update(10, view)
	assert.Zero(t, s.AliveCount())
}

func TestSnowFallMaxHeightAndPool(t *testing.T) {
	s := NewSnowFall(SnowDatum{Density: 1000, MaxHeight: 2})
	assert.Equal(t, Vec2{0, -1}, s.Velocity)
	s.update(1, Rect{Width: 10, Height: 4})
	assert.Equal(t, defaultMaxFlakes, s.AliveCount())
	assert.Equal(t, 2.0, s.flakes[0].y)
	s.Reset()
	assert.Zero(t, s.AliveCount())
}

func TestCloudRowDrifts(t *testing.T) {
	c := NewCloudRow(CloudsDatum{Velocity: 3, Heights: []float64{2, 4}})
	sc := &Scope{DT: 0.5}
	require.NoError(t, c.Tick(nil, sc))
	require.NoError(t, c.Tick(nil, sc))
	assert.Equal(t, 3.0, c.offset)
}

func TestSoundEmitterDomain(t *testing.T) {
	snd := &countingSounds{}
	always := &SoundEmitter{Asset: "wind", sounds: snd}
	require.NoError(t, always.Start(nil))
	assert.Equal(t, 1, snd.plays["wind"])

	once := &SoundEmitter{Asset: "shore", Domain: [2]float64{5, 10}, sounds: snd}
	looped := &SoundEmitter{Asset: "bell", Domain: [2]float64{5, 10}, Loop: true, sounds: snd}
	require.NoError(t, once.Start(nil))
	sc := &Scope{}
	for _, x := range []float64{0, 6, 7, 12, 8} {
		sc.Player = Vec2{x, 0}
		require.NoError(t, once.Tick(nil, sc))
		require.NoError(t, looped.Tick(nil, sc))
	}
	assert.Equal(t, 1, once.Plays())
	assert.Equal(t, 2, looped.Plays())
	assert.Equal(t, 2, snd.plays["bell"])
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "goal_failed", EventGoalFailed.String())
	assert.Equal(t, "expression_changed", EventExpressionChanged.String())
	assert.Equal(t, "EventKind(0)", EventKind(0).String())
	assert.Equal(t, "EventKind(99)", EventKind(99).String())
}

func TestEventSinkFunc(t *testing.T) {
	var got []EventKind
	var sink EventSink = EventSinkFunc(func(ev LevelEvent) { got = append(got, ev.Kind) })
	sink.Publish(LevelEvent{Kind: EventRunStarted})
	assert.Equal(t, []EventKind{EventRunStarted}, got)
}

func TestPanelElements(t *testing.T) {
	p := NewPanel()
	e := p.Element("x")
	assert.True(t, e.Visible)
	assert.Equal(t, 1.0, e.Opacity)

	p.AddClass("x", ClassHidden)
	assert.True(t, e.HasClass(ClassHidden))
	p.RemoveClass("x", ClassHidden)
	assert.False(t, e.HasClass(ClassHidden))
	p.SetAttr("x", AttrValid, "true")
	p.SetText("x", "hello")
	p.SetVisible("x", false)
	assert.Equal(t, "hello", e.Text)
	assert.False(t, e.Visible)
	assert.Equal(t, "true", e.Attrs[AttrValid])
	assert.Same(t, e, p.Element("x"))
}

func TestPanelAnimate(t *testing.T) {
	frames := []Keyframe{{OffsetY: 60, Opacity: 0}, {OffsetY: 0, Opacity: 1}}

	p := NewPanel()
	filled := p.Animate("a", frames, AnimationOptions{Duration: time.Second, Easing: ease.Linear, Fill: true})
	finished := 0
	filled.OnFinish(func() { finished++ })
	assert.Equal(t, 1, p.Animating())

	p.Update(0.5)
	a := p.Element("a")
	assert.InDelta(t, 30, a.OffsetY, 1e-3)
	assert.InDelta(t, 0.5, a.Opacity, 1e-3)

	p.Update(0.6)
	p.Update(0.01)
	assert.True(t, filled.Done())
	assert.Equal(t, 1, finished)
	assert.Zero(t, p.Animating())
	assert.InDelta(t, 0, a.OffsetY, 1e-6)

	hide := []Keyframe{{OffsetY: 0, Opacity: 1}, {OffsetY: 60, Opacity: 0}}
	p.Animate("b", hide, AnimationOptions{Duration: time.Second, Easing: ease.Linear})
	for i := 0; i < 4; i++ {
		p.Update(0.5)
	}
	b := p.Element("b")
	assert.Equal(t, 0.0, b.OffsetY, "unfilled animations return to rest")
	assert.Equal(t, 1.0, b.Opacity)
}

func TestPanelDrawSharesWhitePixel(t *testing.T) {
	px := whitePixel()
	assert.Same(t, px, whitePixel())
	assert.Equal(t, 1, px.Bounds().Dx())
	assert.Equal(t, 1, px.Bounds().Dy())

	p := NewPanel()
	p.SetText(ElemMathField, "sin(x)")
	p.SetAttr(ElemExpressionEnvelope, AttrValid, "false")
	dst := ebiten.NewImage(320, 240)
	sc := &Scope{}
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Draw(nil, sc, dst))
	}
	assert.Same(t, px, whitePixel())
}
