package sinerider

import "testing"

func TestLayerOrdering(t *testing.T) {
	ordered := []Layer{
		LayerSky, LayerBackground, LayerAxes, LayerBackSprites, LayerSledders,
		LayerWalkers, LayerForeSprites, LayerSnow, LayerGraph, LayerHintGraph,
		LayerClouds, LayerLighting, LayerGoals, LayerText, LayerNavigator,
		LayerSpeech, LayerMap, LayerArrows, LayerLevelBubbles, LayerLevel,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Errorf("layer %d (%d) not below layer %d (%d)", i-1, ordered[i-1], i, ordered[i])
		}
	}
	if LayerBackground != -90 || LayerGoals != 80 {
		t.Errorf("background = %d, goals = %d, want -90 and 80", LayerBackground, LayerGoals)
	}
}

func TestLayerByName(t *testing.T) {
	for name, want := range map[string]Layer{"sky": LayerSky, "goals": LayerGoals, "levelBubbles": LayerLevelBubbles} {
		got, ok := LayerByName(name)
		if !ok || got != want {
			t.Errorf("LayerByName(%q) = %d, %v; want %d", name, got, ok, want)
		}
	}
	if _, ok := LayerByName("nope"); ok {
		t.Error("LayerByName(nope) = ok")
	}
}
