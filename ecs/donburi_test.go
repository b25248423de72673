package ecs

import (
	"testing"

	"github.com/phanxgames/sinerider"

	"github.com/yohamta/donburi"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
	if _, ok := Stats(world); !ok {
		t.Fatal("expected a LevelStats entity")
	}
}

func TestDonburiSink_Publish(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []sinerider.LevelEvent
	LevelEventType.Subscribe(world, func(w donburi.World, e sinerider.LevelEvent) {
		received = append(received, e)
	})

	sink.Publish(sinerider.LevelEvent{Kind: sinerider.EventRunStarted, Level: "Hills"})
	sink.Publish(sinerider.LevelEvent{Kind: sinerider.EventGoalFailed, Goal: "Goal 0", Order: "A", Cascaded: 2})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatalf("expected no events before processing, got %d", len(received))
	}
	LevelEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[0].Kind != sinerider.EventRunStarted || received[0].Level != "Hills" {
		t.Errorf("event 0: %+v", received[0])
	}
	if received[1].Kind != sinerider.EventGoalFailed || received[1].Cascaded != 2 {
		t.Errorf("event 1: %+v", received[1])
	}
}

func TestDonburiSink_Stats(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	for _, ev := range []sinerider.LevelEvent{
		{Kind: sinerider.EventRunStarted},
		{Kind: sinerider.EventGoalCompleted},
		{Kind: sinerider.EventGoalCompleted},
		{Kind: sinerider.EventGoalFailed, Cascaded: 1},
		{Kind: sinerider.EventLevelCompleted},
	} {
		sink.Publish(ev)
	}

	st, ok := Stats(world)
	if !ok {
		t.Fatal("stats missing")
	}
	if st.Runs != 1 || st.GoalsCompleted != 2 || st.GoalsFailed != 1 || st.Cascaded != 1 || st.LevelsCompleted != 1 {
		t.Errorf("stats = %+v", *st)
	}
	if st.Last != sinerider.EventLevelCompleted {
		t.Errorf("Last = %v, want %v", st.Last, sinerider.EventLevelCompleted)
	}
}

func TestDonburiSink_WithLevel(t *testing.T) {
	world := donburi.NewWorld()
	scene := sinerider.NewScene()
	datum := &sinerider.LevelDatum{
		Name:              "Hills",
		DefaultExpression: "0",
		Goals:             []sinerider.GoalDatum{{X: 5}},
	}
	lvl, err := sinerider.NewLevel(scene, datum, sinerider.LevelConfig{Events: NewDonburiSink(world)})
	if err != nil {
		t.Fatal(err)
	}
	lvl.StartRunning()
	lvl.Goals().Goals()[0].Complete()

	var kinds []sinerider.EventKind
	LevelEventType.Subscribe(world, func(w donburi.World, e sinerider.LevelEvent) {
		if e.Session != lvl.SessionID() {
			t.Errorf("event session %v, want %v", e.Session, lvl.SessionID())
		}
		kinds = append(kinds, e.Kind)
	})
	LevelEventType.ProcessEvents(world)

	want := []sinerider.EventKind{sinerider.EventRunStarted, sinerider.EventGoalCompleted, sinerider.EventLevelCompleted}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}
