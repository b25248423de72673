package sinerider

import (
	"encoding/json"
	"fmt"
	"os"
)

// scriptStep is a single action in a session script.
type scriptStep struct {
	Action     string  `json:"action"`
	Label      string  `json:"label,omitempty"`
	Expression string  `json:"expression,omitempty"`
	Display    string  `json:"display,omitempty"`
	Frames     int     `json:"frames,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Param      float64 `json:"param,omitempty"`
}

// script is the top-level JSON structure of a session script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// Script actions.
const (
	StepRun        = "run"
	StepStop       = "stop"
	StepReset      = "reset"
	StepExpression = "expression"
	StepWait       = "wait"
	StepScreenshot = "screenshot"
	StepResize     = "resize"
	StepHint       = "hint"
	StepWalk       = "walk"
)

// Script drives a level across frames: running, stopping, editing the
// expression and capturing screenshots. Attach it to the runner and call
// Step once per Update, before the level updates.
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	walk      float64
	done      bool
}

// LoadScript parses a JSON session script.
func LoadScript(data []byte) (*Script, error) {
	var s script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: %w", ErrNoSteps)
	}
	for i, st := range s.Steps {
		switch st.Action {
		case StepRun, StepStop, StepReset, StepExpression, StepWait, StepScreenshot, StepResize, StepHint, StepWalk:
		default:
			return nil, fmt.Errorf("parse script: step %d action %q: %w", i, st.Action, ErrUnknownKind)
		}
	}
	return &Script{steps: s.Steps}, nil
}

// LoadScriptFile reads and parses a session script file.
func LoadScriptFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return LoadScript(data)
}

// Done reports whether every step has been executed and the last wait has
// elapsed.
func (r *Script) Done() bool { return r.done }

// Step advances the script by one frame against l.
func (r *Script) Step(l *Level) {
	if r.done {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		if r.walk != 0 && len(l.walkers) > 0 {
			l.walkers[0].Nudge(r.walk)
		}
		return
	}
	r.walk = 0
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case StepRun:
		l.StartRunning()
	case StepStop:
		l.StopRunning()
	case StepReset:
		l.Reset()
	case StepExpression:
		display := st.Display
		if display == "" {
			display = st.Expression
		}
		l.ui.SetText(ElemMathField, st.Expression)
		l.SetGraphExpression(st.Expression, display)
	case StepScreenshot:
		l.scene.Screenshot(st.Label)
	case StepResize:
		l.Resize(st.Width, st.Height)
	case StepHint:
		l.SetHintParam(st.Param)
	case StepWalk:
		r.walk = max(-1, min(1, st.Param))
		if len(l.walkers) > 0 {
			l.walkers[0].Nudge(r.walk)
		}
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	case StepWait:
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}
