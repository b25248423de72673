package sinerider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tanema/gween/ease"
)

func TestTweenReachesTarget(t *testing.T) {
	var a Animator
	var got float64
	a.Tween(0, 10, 1, ease.Linear, func(v float64) { got = v })
	for i := 0; i < 70; i++ {
		a.Update(1.0 / 60)
	}
	assert.InDelta(t, 10, got, 1e-4)
	assert.Equal(t, 0, a.Len())
}

func TestTweenAppliesStartImmediately(t *testing.T) {
	var a Animator
	got := -1.0
	a.Tween(3, 10, 1, nil, func(v float64) { got = v })
	assert.Equal(t, 3.0, got)
}

func TestTweenKeyframes(t *testing.T) {
	var a Animator
	tw := a.Animate([][]float64{{0, 1}, {10, 0}, {0, 1}}, 2, ease.Linear, nil)
	for i := 0; i < 60; i++ {
		a.Update(1.0 / 60)
	}
	mid := tw.Values()
	assert.InDelta(t, 10, mid[0], 0.5)
	assert.InDelta(t, 0, mid[1], 0.1)
	for i := 0; i < 70; i++ {
		a.Update(1.0 / 60)
	}
	assert.True(t, tw.Done())
	assert.InDelta(t, 0, tw.Values()[0], 1e-4)
}

func TestOnFinishDeferredToUpdate(t *testing.T) {
	var a Animator
	tw := a.Tween(0, 1, 0.1, nil, nil)
	calls := 0
	tw.OnFinish(func() { calls++ })
	for i := 0; i < 10; i++ {
		a.Update(0.05)
	}
	assert.Equal(t, 1, calls)

	late := 0
	tw.OnFinish(func() { late++ })
	assert.Equal(t, 0, late, "registration after completion never runs synchronously")
	a.Update(0.05)
	assert.Equal(t, 1, late)
}

func TestTweenCancel(t *testing.T) {
	var a Animator
	tw := a.Tween(0, 1, 1, nil, nil)
	fired := false
	tw.OnFinish(func() { fired = true })
	tw.Cancel()
	a.Update(2)
	assert.False(t, fired)
	assert.True(t, tw.Done())
	assert.Equal(t, 0, a.Len())
}

func TestAnimatorClear(t *testing.T) {
	var a Animator
	a.Tween(0, 1, 1, nil, nil)
	a.Tween(0, 1, 1, nil, nil)
	ran := false
	a.Defer(func() { ran = true })
	a.Clear()
	a.Update(0.1)
	assert.Equal(t, 0, a.Len())
	assert.False(t, ran)
}

func TestTweenEasingsDiffer(t *testing.T) {
	var a Animator
	lin := a.Tween(0, 1, 1, ease.Linear, nil)
	quad := a.Tween(0, 1, 1, ease.InQuad, nil)
	a.Update(0.5)
	assert.Greater(t, lin.Values()[0], quad.Values()[0])
}
