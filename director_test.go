package sinerider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directorEnv(s *Scene, tracked ...EntityID) *DirectorEnv {
	return &DirectorEnv{
		Scene:   s,
		Camera:  NewCamera(0, 0, 10, Rect{Width: 800, Height: 600}),
		Tracked: func() []EntityID { return tracked },
		Lookup: func(name string) (EntityID, bool) {
			for _, id := range tracked {
				if e, ok := s.Get(id); ok && e.Name == name {
					return id, true
				}
			}
			return NoEntity, false
		},
	}
}

func TestNewDirectorKinds(t *testing.T) {
	env := directorEnv(NewScene())
	b, err := NewDirector(DirectorDatum{}, env)
	require.NoError(t, err)
	assert.IsType(t, &TrackingDirector{}, b)

	b, err = NewDirector(DirectorDatum{Type: "waypoint"}, env)
	require.NoError(t, err)
	assert.IsType(t, &WaypointDirector{}, b)

	_, err = NewDirector(DirectorDatum{Type: "dolly"}, env)
	assert.ErrorIs(t, err, ErrUnknownKind)

	assert.Equal(t, []string{"lerp", "tracking", "waypoint"}, DirectorKindNames())
}

func TestTrackingDirectorFramesEverything(t *testing.T) {
	s := NewScene()
	a := s.Spawn(NoEntity, "a", LayerSledders, At(0, 0), nil)
	b := s.Spawn(NoEntity, "b", LayerGoals, At(10, 4), nil)
	env := directorEnv(s, a, b)

	d, err := NewDirector(DirectorDatum{Lerp: 1}, env)
	require.NoError(t, err)
	td := d.(*TrackingDirector)

	r, ok := td.Framing()
	require.True(t, ok)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 10, Height: 4}, r)

	require.NoError(t, td.Tick(nil, s.Scope()))
	cam := env.Camera
	assert.InDelta(t, 5, cam.X, 1e-9)
	assert.InDelta(t, 2, cam.Y, 1e-9)
	assert.InDelta(t, 10+2*trackingMargin, cam.FOV(), 1e-9)
}

func TestTrackingDirectorKeepsMinimumFOV(t *testing.T) {
	s := NewScene()
	a := s.Spawn(NoEntity, "a", LayerSledders, At(1, 1), nil)
	env := directorEnv(s, a)
	d, _ := NewDirector(DirectorDatum{Lerp: 1}, env)
	require.NoError(t, d.(Ticker).Tick(nil, s.Scope()))
	assert.InDelta(t, 10, env.Camera.FOV(), 1e-9)
	assert.InDelta(t, 1, env.Camera.X, 1e-9)
}

func TestTrackingDirectorSkipsDeadAndEmpty(t *testing.T) {
	s := NewScene()
	a := s.Spawn(NoEntity, "a", LayerSledders, At(3, 3), nil)
	s.Destroy(a)
	env := directorEnv(s, a)
	d, _ := NewDirector(DirectorDatum{}, env)
	_, ok := d.(*TrackingDirector).Framing()
	assert.False(t, ok)
	require.NoError(t, d.(Ticker).Tick(nil, s.Scope()))
	assert.Zero(t, env.Camera.X)
}

func TestWaypointDirectorAdvances(t *testing.T) {
	s := NewScene()
	env := directorEnv(s)
	d, err := NewDirector(DirectorDatum{Type: "waypoint", Waypoints: []WaypointDatum{
		{X: 4, Y: 0, Duration: 0.1},
		{X: 8, Y: 2, FOV: 20, Duration: 0.1},
	}}, env)
	require.NoError(t, err)
	wd := d.(*WaypointDirector)
	cam := env.Camera
	sc := s.Scope()
	sc.DT = 1.0 / 60

	require.NoError(t, wd.Tick(nil, sc))
	assert.Equal(t, 1, wd.Current())
	assert.True(t, cam.Scrolling())

	// no advance while scrolling
	require.NoError(t, wd.Tick(nil, sc))
	assert.Equal(t, 1, wd.Current())

	for i := 0; i < 10 && cam.Scrolling(); i++ {
		cam.update(s, sc.DT)
	}
	require.False(t, cam.Scrolling())
	assert.InDelta(t, 4, cam.X, 1e-4)

	require.NoError(t, wd.Tick(nil, sc))
	assert.Equal(t, 2, wd.Current())
	for i := 0; i < 10 && cam.Scrolling(); i++ {
		cam.update(s, sc.DT)
	}
	assert.InDelta(t, 8, cam.X, 1e-4)
	assert.InDelta(t, 2, cam.Y, 1e-4)
	assert.InDelta(t, 20, cam.FOV(), 1e-3)

	require.NoError(t, wd.Tick(nil, sc))
	assert.Equal(t, 2, wd.Current(), "holds at the last waypoint")
	wd.Restart()
	assert.Zero(t, wd.Current())
}

func TestLerpDirectorFollowsTarget(t *testing.T) {
	s := NewScene()
	ada := s.Spawn(NoEntity, "Ada", LayerWalkers, At(6, 2), nil)
	env := directorEnv(s, ada)
	d, err := NewDirector(DirectorDatum{Type: "lerp", Target: "Ada", Lerp: 1, FOV: 14, Offset: PointDatum{X: 1}}, env)
	require.NoError(t, err)
	ld := d.(*LerpDirector)

	require.NoError(t, ld.Start(nil))
	cam := env.Camera
	assert.Equal(t, ada, cam.Following())
	assert.InDelta(t, 14, cam.FOV(), 1e-9)

	cam.update(s, 1.0/60)
	assert.InDelta(t, 7, cam.X, 1e-9)
	assert.InDelta(t, 2, cam.Y, 1e-9)
}

func TestLerpDirectorMissingTarget(t *testing.T) {
	s := NewScene()
	env := directorEnv(s)
	d, _ := NewDirector(DirectorDatum{Type: "lerp", Target: "Nobody"}, env)
	err := d.(*LerpDirector).Start(nil)
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestLerpDirectorFollowsPlayerWithoutTarget(t *testing.T) {
	s := NewScene()
	env := directorEnv(s)
	d, _ := NewDirector(DirectorDatum{Type: "lerp", Lerp: 0.5}, env)
	ld := d.(*LerpDirector)
	require.NoError(t, ld.Start(nil))

	sc := s.Scope()
	sc.Player = Vec2{10, -4}
	require.NoError(t, ld.Tick(nil, sc))
	assert.InDelta(t, 5, env.Camera.X, 1e-9)
	assert.InDelta(t, -2, env.Camera.Y, 1e-9)
}
