package sinerider

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates a small vector of float64 values through one or more
// keyed segments. Values are written through the apply callback on every
// Animator update. Completion callbacks run from Animator.Update, never
// from the call that started the tween.
type Tween struct {
	frames   [][]float64
	seg      int
	segDur   float32
	fn       ease.TweenFunc
	tweens   []*gween.Tween
	vals     []float64
	apply    func(vals []float64)
	onFinish []func()
	done     bool
	cancel   bool
	anim     *Animator
}

// OnFinish registers fn to run when the tween completes. If the tween has
// already completed, fn runs on the next Animator update.
func (t *Tween) OnFinish(fn func()) {
	switch {
	case t.cancel:
	case t.done && t.anim != nil:
		t.anim.Defer(fn)
	default:
		t.onFinish = append(t.onFinish, fn)
	}
}

// Done reports whether the tween has completed or been cancelled.
func (t *Tween) Done() bool { return t.done }

// Cancel stops the tween without running its completion callbacks.
func (t *Tween) Cancel() {
	t.done = true
	t.cancel = true
	t.onFinish = nil
}

// Values returns the most recently applied values.
func (t *Tween) Values() []float64 { return t.vals }

func (t *Tween) startSegment() {
	from, to := t.frames[t.seg], t.frames[t.seg+1]
	if t.tweens == nil {
		t.tweens = make([]*gween.Tween, len(from))
	}
	for i := range from {
		t.tweens[i] = gween.New(float32(from[i]), float32(to[i]), t.segDur, t.fn)
	}
}

// update advances the tween by dt seconds and reports whether it finished.
func (t *Tween) update(dt float32) bool {
	if t.done {
		return true
	}
	allDone := true
	for i, tw := range t.tweens {
		val, finished := tw.Update(dt)
		t.vals[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	if allDone && t.seg+2 < len(t.frames) {
		t.seg++
		t.startSegment()
		allDone = false
	}
	if t.apply != nil {
		t.apply(t.vals)
	}
	return allDone
}

// Animator owns running tweens. The owner calls Update once per tick.
//
// There is no global animation manager; each level owns one.
type Animator struct {
	active  []*Tween
	pending []func()
}

// Animate starts a tween through frames (at least two, all the same
// length) over duration seconds. A nil easing function means linear.
func (a *Animator) Animate(frames [][]float64, duration float32, fn ease.TweenFunc, apply func(vals []float64)) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	if len(frames) == 1 {
		frames = append(frames, frames[0])
	}
	t := &Tween{
		frames: frames,
		fn:     fn,
		apply:  apply,
		anim:   a,
	}
	if len(frames) == 0 {
		t.done = true
		return t
	}
	t.segDur = duration / float32(len(frames)-1)
	t.vals = append([]float64(nil), frames[0]...)
	t.startSegment()
	if apply != nil {
		apply(t.vals)
	}
	a.active = append(a.active, t)
	return t
}

// Tween is a convenience for a single-value tween.
func (a *Animator) Tween(from, to float64, duration float32, fn ease.TweenFunc, apply func(v float64)) *Tween {
	return a.Animate([][]float64{{from}, {to}}, duration, fn, func(vals []float64) {
		if apply != nil {
			apply(vals[0])
		}
	})
}

// Defer schedules fn to run on the next Update.
func (a *Animator) Defer(fn func()) {
	a.pending = append(a.pending, fn)
}

// Update advances every active tween by dt seconds. Tweens that finish are
// removed and their completion callbacks run, in start order, after all
// tweens have advanced.
func (a *Animator) Update(dt float32) {
	callbacks := a.pending
	a.pending = nil

	n := 0
	for _, t := range a.active {
		if t.cancel {
			continue
		}
		if t.update(dt) {
			t.done = true
			callbacks = append(callbacks, t.onFinish...)
			t.onFinish = nil
			continue
		}
		a.active[n] = t
		n++
	}
	clear(a.active[n:])
	a.active = a.active[:n]

	for _, fn := range callbacks {
		fn()
	}
}

// Len returns the number of running tweens.
func (a *Animator) Len() int { return len(a.active) }

// Clear cancels every running tween and drops deferred callbacks.
func (a *Animator) Clear() {
	for _, t := range a.active {
		t.Cancel()
	}
	a.active = a.active[:0]
	a.pending = nil
}
