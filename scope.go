package sinerider

// Scope is the per-frame shared state. The level writes it once per tick
// and every entity reads it during the same frame's tick and draw.
type Scope struct {
	// T is the simulation time in seconds since the level started running.
	T float64
	// DT is the fixed tick duration in seconds.
	DT float64
	// Running is true between StartRunning and StopRunning.
	Running bool
	// Player is the world position of the level's primary actor.
	Player Vec2
	// Frame counts Update calls since the scene was created.
	Frame uint64
	// Width and Height are the primary surface dimensions in pixels.
	Width, Height int
	// Camera projects world coordinates onto the primary surface. Nil means
	// world units are pixels with the origin at the top-left.
	Camera *Camera
}

// WorldToScreen projects a world point through the scope's camera.
func (sc *Scope) WorldToScreen(p Vec2) (float64, float64) {
	if sc.Camera == nil {
		return p.X, p.Y
	}
	return sc.Camera.WorldToScreen(p.X, p.Y)
}

// PixelsPerUnit returns the camera's world-to-pixel scale.
func (sc *Scope) PixelsPerUnit() float64 {
	if sc.Camera == nil {
		return 1
	}
	return sc.Camera.Zoom
}
