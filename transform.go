package sinerider

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// Transform is an entity's placement relative to its parent.
type Transform struct {
	Position Vec2
	Rotation float64 // radians, counter-clockwise in world space
	ScaleX   float64
	ScaleY   float64
}

// At returns a Transform positioned at (x, y) with unit scale.
func At(x, y float64) Transform {
	return Transform{Position: Vec2{x, y}, ScaleX: 1, ScaleY: 1}
}

// normalized fills in a unit scale for a zero-value Transform.
func (t Transform) normalized() Transform {
	if t.ScaleX == 0 && t.ScaleY == 0 {
		t.ScaleX, t.ScaleY = 1, 1
	}
	return t
}

// computeLocalTransform computes the local affine matrix from the
// transform. Returns [a, b, c, d, tx, ty].
//
// Composition order: Scale -> Rotate -> Translate(X, Y)
func computeLocalTransform(t Transform) [6]float64 {
	sin, cos := math.Sincos(t.Rotation)
	sx, sy := t.ScaleX, t.ScaleY
	return [6]float64{
		cos * sx, sin * sx,
		-sin * sy, cos * sy,
		t.Position.X, t.Position.Y,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// updateWorldTransforms recomputes world matrices for id and its subtree.
func (s *Scene) updateWorldTransforms(id EntityID, parent [6]float64) {
	e := s.get(id)
	if e == nil {
		return
	}
	e.world = multiplyAffine(parent, computeLocalTransform(e.Transform))
	for _, child := range e.children {
		s.updateWorldTransforms(child, e.world)
	}
}

// WorldPosition returns the entity's origin in world space as of the most
// recent transform update.
func (e *Entity) WorldPosition() Vec2 {
	return Vec2{e.world[4], e.world[5]}
}

// LocalToWorld converts a point in the entity's local space to world space.
func (e *Entity) LocalToWorld(p Vec2) Vec2 {
	x, y := transformPoint(e.world, p.X, p.Y)
	return Vec2{x, y}
}

// WorldToLocal converts a world-space point to the entity's local space.
func (e *Entity) WorldToLocal(p Vec2) Vec2 {
	x, y := transformPoint(invertAffine(e.world), p.X, p.Y)
	return Vec2{x, y}
}

// SetPosition sets the local position and refreshes the cached world
// matrix against the parent's last known matrix.
func (e *Entity) SetPosition(p Vec2) {
	e.Transform.Position = p
	parent := identityTransform
	if pe := e.scene.get(e.parent); pe != nil {
		parent = pe.world
	}
	e.scene.updateWorldTransforms(e.ID, parent)
}
