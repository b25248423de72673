package sinerider

// Layer is a draw-order value. Entities are drawn in ascending Layer order;
// equal layers draw in insertion order.
type Layer int

// Named draw layers.
const (
	LayerSky          Layer = -100
	LayerBackground   Layer = -90
	LayerAxes         Layer = -80
	LayerBackSprites  Layer = -10
	LayerSledders     Layer = 0
	LayerWalkers      Layer = 1
	LayerForeSprites  Layer = 10
	LayerSnow         Layer = 20
	LayerGraph        Layer = 30
	LayerHintGraph    Layer = 40
	LayerClouds       Layer = 60
	LayerLighting     Layer = 70
	LayerGoals        Layer = 80
	LayerText         Layer = 90
	LayerNavigator    Layer = 100
	LayerDarkness     Layer = 100
	LayerSpeech       Layer = 110
	LayerMap          Layer = 150
	LayerArrows       Layer = 160
	LayerLevelBubbles Layer = 170
	LayerLevel        Layer = 10000
)

var layerNames = map[string]Layer{
	"sky":          LayerSky,
	"background":   LayerBackground,
	"axes":         LayerAxes,
	"backSprites":  LayerBackSprites,
	"sledders":     LayerSledders,
	"walkers":      LayerWalkers,
	"foreSprites":  LayerForeSprites,
	"snow":         LayerSnow,
	"graph":        LayerGraph,
	"hintGraph":    LayerHintGraph,
	"clouds":       LayerClouds,
	"lighting":     LayerLighting,
	"goals":        LayerGoals,
	"text":         LayerText,
	"navigator":    LayerNavigator,
	"speech":       LayerSpeech,
	"map":          LayerMap,
	"arrows":       LayerArrows,
	"levelBubbles": LayerLevelBubbles,
	"darkness":     LayerDarkness,
	"level":        LayerLevel,
}

// LayerByName returns the layer registered under name.
func LayerByName(name string) (Layer, bool) {
	l, ok := layerNames[name]
	return l, ok
}
