// Package ecs bridges level events into a Donburi world.
//
// [NewDonburiSink] publishes every [sinerider.LevelEvent] as a typed
// Donburi event and keeps running totals in a [LevelStats] component.
//
// Usage:
//
//	world := donburi.NewWorld()
//	cfg := sinerider.LevelConfig{Events: ecs.NewDonburiSink(world)}
//	...
//	ecs.LevelEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
