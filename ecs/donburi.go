package ecs

import (
	"github.com/phanxgames/sinerider"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// LevelEventType is the Donburi event type for level events. Subscribe to
// it in ECS systems and drain it with ProcessEvents.
var LevelEventType = events.NewEventType[sinerider.LevelEvent]()

// LevelStats accumulates level events as they are published.
type LevelStats struct {
	Runs            int
	GoalsCompleted  int
	GoalsFailed     int
	Cascaded        int
	LevelsCompleted int
	Last            sinerider.EventKind
}

// LevelStatsComponent holds the sink's running totals.
var LevelStatsComponent = donburi.NewComponentType[LevelStats]()

type donburiSink struct {
	world donburi.World
	stats donburi.Entity
}

// NewDonburiSink creates an EventSink backed by a Donburi world. It creates
// one entity carrying LevelStatsComponent.
func NewDonburiSink(world donburi.World) sinerider.EventSink {
	return &donburiSink{world: world, stats: world.Create(LevelStatsComponent)}
}

func (s *donburiSink) Publish(ev sinerider.LevelEvent) {
	LevelEventType.Publish(s.world, ev)
	if !s.world.Valid(s.stats) {
		return
	}
	st := LevelStatsComponent.Get(s.world.Entry(s.stats))
	st.Last = ev.Kind
	switch ev.Kind {
	case sinerider.EventRunStarted:
		st.Runs++
	case sinerider.EventGoalCompleted:
		st.GoalsCompleted++
	case sinerider.EventGoalFailed:
		st.GoalsFailed++
		st.Cascaded += ev.Cascaded
	case sinerider.EventLevelCompleted:
		st.LevelsCompleted++
	}
}

// Stats returns the first LevelStats in world.
func Stats(world donburi.World) (*LevelStats, bool) {
	entry, ok := LevelStatsComponent.First(world)
	if !ok {
		return nil, false
	}
	return LevelStatsComponent.Get(entry), true
}
