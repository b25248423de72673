package sinerider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSounds struct{ plays map[string]int }

func (c *countingSounds) Play(name string) {
	if c.plays == nil {
		c.plays = make(map[string]int)
	}
	c.plays[name]++
}

func orderedSet(orders ...string) (*GoalSet, []*Goal, *countingSounds) {
	snd := &countingSounds{}
	gs := NewGoalSet(snd)
	goals := make([]*Goal, len(orders))
	for i, o := range orders {
		goals[i] = NewGoal(o, o, nil)
		gs.Add(goals[i])
	}
	gs.RefreshLowestOrder()
	return gs, goals, snd
}

func TestGoalSetLowestOrder(t *testing.T) {
	gs, g, _ := orderedSet("A", "B", "C")
	assert.Equal(t, "A", gs.LowestOrder())

	require.True(t, g[0].Complete())
	assert.Equal(t, "B", gs.LowestOrder())
	require.True(t, g[1].Complete())
	assert.Equal(t, "C", gs.LowestOrder())
	assert.False(t, gs.Completed())
}

func TestGoalSetCompletesOnce(t *testing.T) {
	gs, g, snd := orderedSet("A", "B", "C")
	fired := 0
	gs.OnLevelCompleted = func() { fired++ }

	for _, goal := range g {
		require.True(t, goal.Complete())
	}
	assert.True(t, gs.Completed())
	assert.Equal(t, OrderSentinel, gs.LowestOrder())
	assert.Equal(t, 1, fired)

	assert.False(t, g[2].Complete(), "second completion of the same goal")
	assert.False(t, gs.Complete(g[0]))
	assert.Equal(t, 1, fired)
	assert.Equal(t, 3, snd.plays[SoundGoalSuccess])
	assert.Equal(t, 1, snd.plays[SoundLevelSuccess])
}

func TestGoalSetFailCascade(t *testing.T) {
	snd := &countingSounds{}
	gs := NewGoalSet(snd)
	a, b, c := NewGoal("a", "A", nil), NewGoal("b", "B", nil), NewGoal("c", "C", nil)
	free := NewGoal("free", "", nil)
	for _, g := range []*Goal{a, b, c, free} {
		gs.Add(g)
	}

	var cascaded []*Goal
	gs.OnGoalFailed = func(_ *Goal, cs []*Goal) { cascaded = cs }
	require.True(t, b.Fail())

	assert.Equal(t, GoalFailed, a.State())
	assert.Equal(t, GoalFailed, b.State())
	assert.Equal(t, GoalFailed, c.State())
	assert.Equal(t, GoalPending, free.State())
	assert.ElementsMatch(t, []*Goal{a, c}, cascaded)
	assert.Equal(t, 1, snd.plays[SoundGoalFail])
}

func TestGoalSetFailSparesCompleted(t *testing.T) {
	gs, g, _ := orderedSet("A", "B", "C")
	require.True(t, g[0].Complete())
	require.True(t, g[2].Fail())
	assert.Equal(t, GoalCompleted, g[0].State())
	assert.Equal(t, GoalFailed, g[1].State())
	assert.False(t, gs.Completed())
}

func TestUnorderedFailDoesNotCascade(t *testing.T) {
	gs := NewGoalSet(nil)
	a, free := NewGoal("a", "A", nil), NewGoal("free", "", nil)
	gs.Add(a)
	gs.Add(free)
	require.True(t, free.Fail())
	assert.Equal(t, GoalPending, a.State())
}

func TestGoalSetReset(t *testing.T) {
	gs, g, _ := orderedSet("A", "B")
	g[0].Complete()
	g[1].Complete()
	require.True(t, gs.Completed())

	gs.Reset()
	assert.False(t, gs.Completed())
	assert.Equal(t, 2, gs.Count(GoalPending))
	assert.Equal(t, "A", gs.LowestOrder())
}

func TestGoalAvailable(t *testing.T) {
	_, g, _ := orderedSet("A", "B")
	assert.True(t, g[0].Available())
	assert.False(t, g[1].Available())
	g[0].Complete()
	assert.True(t, g[1].Available())
	assert.False(t, g[0].Available())
}

type alwaysReached struct{}

func (alwaysReached) Name() string                  { return "always" }
func (alwaysReached) Shape() HitShape               { return HitRect{} }
func (alwaysReached) Reached(*GoalEnv, *Scope) bool { return true }
func (alwaysReached) Reset(*GoalEnv)                {}

func TestGoalTickOutOfOrderFails(t *testing.T) {
	gs := NewGoalSet(nil)
	a := NewGoal("a", "A", nil)
	b := NewGoal("b", "B", alwaysReached{})
	gs.Add(a)
	gs.Add(b)
	gs.RefreshLowestOrder()

	require.NoError(t, b.Tick(nil, &Scope{Running: false}))
	assert.Equal(t, GoalPending, b.State(), "goals only check while running")

	require.NoError(t, b.Tick(nil, &Scope{Running: true}))
	assert.Equal(t, GoalFailed, b.State())
	assert.Equal(t, GoalFailed, a.State())
}

func TestFixedGoalKinds(t *testing.T) {
	k, err := NewGoalKind(GoalDatum{X: 2, Y: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, "fixed", k.Name())
	env := &GoalEnv{Sledders: func() []Vec2 { return []Vec2{{2.5, 2.5}} }}
	assert.True(t, k.Reached(env, &Scope{}))

	_, err = NewGoalKind(GoalDatum{Type: "warp"})
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = NewGoalKind(GoalDatum{Shape: "hexagon"})
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, []string{"dynamic", "fixed", "path"}, GoalKindNames())
}
