// Package sinerider is the level runtime of a math-driven sledding game on
// [Ebitengine]. The player types an expression y = f(x, t), presses run,
// and sledders ride the curve toward goals.
//
// # Quick start
//
// Load a level file, build it in a scene and hand it to [Run]:
//
//	datum, err := sinerider.LoadLevelFile("levels/hills.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	level, err := sinerider.NewLevel(sinerider.NewScene(), datum, sinerider.LevelConfig{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	sinerider.Run(sinerider.NewGame(level), sinerider.RunConfig{Width: 1280, Height: 720})
//
// For full control, call [Level.Update], [Level.Draw] and [Level.Resize]
// from your own [ebiten.Game].
//
// # Entities
//
// A [Scene] is an arena of entities addressed by [EntityID] handles. Each
// entity carries a [Transform], a draw [Layer] and a behaviour value whose
// optional hooks ([Awaker], [Starter], [Ticker], [Drawer], [Resizer],
// [Destroyer]) run in a fixed order every frame. A failing hook is logged
// and skipped; the rest of the frame continues.
//
//	id := scene.Spawn(scene.Root(), "marker", sinerider.LayerText, sinerider.At(2, 3),
//		&sinerider.Text{Value: "here"})
//
// Entities that set a [RenderBuffer] target draw into it instead of the
// screen. The level routes its world into one buffer so [Darkness] can
// composite lights over it.
//
// # Levels
//
// [LevelDatum] is the declarative level description, read from YAML or
// JSON. [NewLevel] turns it into entities: camera, axes, graph, sledders,
// walkers, goals, decorations, sounds and camera directors. Goals and
// directors are looked up by kind tag in [GoalKinds] and [DirectorKinds];
// an unknown tag fails the load with [ErrUnknownKind].
//
// Goals may be ordered. A goal with a later order letter cannot complete
// before every earlier one, and reaching it out of order fails it along
// with every other ordered goal that has not completed.
//
// Level state changes are published as [LevelEvent] values to the
// configured [EventSink]; package ecs forwards them into a [Donburi] world.
//
// Expressions are compiled with [expr]; curves are rasterized with [gg];
// tweens use [gween].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
// [expr]: https://github.com/expr-lang/expr
// [gg]: https://github.com/gogpu/gg
package sinerider
