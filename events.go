package sinerider

import (
	"fmt"

	"github.com/google/uuid"
)

// EventKind identifies a level event.
type EventKind uint8

const (
	EventRunStarted EventKind = iota + 1
	EventRunStopped
	EventGoalCompleted
	EventGoalFailed
	EventLevelCompleted
	EventLevelReset
	EventExpressionChanged
)

var eventKindNames = [...]string{
	EventRunStarted:        "run_started",
	EventRunStopped:        "run_stopped",
	EventGoalCompleted:     "goal_completed",
	EventGoalFailed:        "goal_failed",
	EventLevelCompleted:    "level_completed",
	EventLevelReset:        "level_reset",
	EventExpressionChanged: "expression_changed",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) && eventKindNames[k] != "" {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// LevelEvent is published by a level on every state change.
type LevelEvent struct {
	Kind    EventKind
	Session uuid.UUID
	Level   string
	// Goal and Order name the goal for goal events.
	Goal  string
	Order string
	// Cascaded counts goals that failed along with Goal.
	Cascaded int
	// Expression is set for expression changes.
	Expression string
	Valid      bool
	T          float64
	Frame      uint64
}

// EventSink receives level events synchronously on the frame loop.
type EventSink interface {
	Publish(ev LevelEvent)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ev LevelEvent)

// Publish implements EventSink.
func (f EventSinkFunc) Publish(ev LevelEvent) { f(ev) }
