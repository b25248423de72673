package sinerider

import "math"

// PointInCircle reports whether p lies inside c. Points exactly on the
// circumference count only when inclusive is true.
func PointInCircle(p Vec2, c Circle, inclusive bool) bool {
	dx := p.X - c.X
	dy := p.Y - c.Y
	distance := math.Sqrt(dx*dx + dy*dy)
	if inclusive {
		return distance <= c.Radius
	}
	return distance < c.Radius
}

// PointInRect reports whether p lies strictly inside r. When inclusive is
// true, points lying on one of the four edges also count. The edge test is
// exact coordinate equality; callers quantize floating-point input first.
func PointInRect(p Vec2, r Rect, inclusive bool) bool {
	left, right := r.X, r.X+r.Width
	bottom, top := r.Y, r.Y+r.Height

	withinX := p.X > left && p.X < right
	withinY := p.Y > bottom && p.Y < top
	if withinX && withinY {
		return true
	}
	if !inclusive {
		return false
	}

	spanX := p.X >= left && p.X <= right
	spanY := p.Y >= bottom && p.Y <= top
	onEdgeX := (p.X == left || p.X == right) && spanY
	onEdgeY := (p.Y == bottom || p.Y == top) && spanX
	return onEdgeX || onEdgeY
}

// PointInPolygon reports whether p lies inside the simple polygon described
// by vertices, using an even-odd ray cast toward +X.
//
// inclusive is accepted for symmetry with the other tests and has no effect.
// Boundary points follow the half-open rule of the crossing test: for an
// axis-aligned square, points on the bottom and left edges are inside and
// points on the top and right edges are outside. Self-intersecting polygons
// have no defined result.
func PointInPolygon(p Vec2, vertices []Vec2, inclusive bool) bool {
	_ = inclusive
	inside := false
	n := len(vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := vertices[i].X, vertices[i].Y
		xj, yj := vertices[j].X, vertices[j].Y
		if (yi > p.Y) != (yj > p.Y) &&
			p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// --- Hit shapes ---

// HitShape is a region that can be tested against world-space points.
type HitShape interface {
	Contains(p Vec2) bool
}

// HitRect is an axis-aligned rectangular hit area. Edges count as hits.
type HitRect struct {
	Rect Rect
}

// Contains reports whether p lies inside or on the rectangle.
func (r HitRect) Contains(p Vec2) bool {
	return PointInRect(p, r.Rect, true)
}

// HitCircle is a circular hit area. The circumference counts as a hit.
type HitCircle struct {
	Circle Circle
}

// Contains reports whether p lies inside or on the circle.
func (c HitCircle) Contains(p Vec2) bool {
	return PointInCircle(p, c.Circle, true)
}

// HitPolygon is a simple (possibly non-convex) polygon hit area.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether p lies inside the polygon.
func (h HitPolygon) Contains(p Vec2) bool {
	if len(h.Points) < 3 {
		return false
	}
	return PointInPolygon(p, h.Points, true)
}

// translateShape returns a copy of s offset by d.
func translateShape(s HitShape, d Vec2) HitShape {
	switch v := s.(type) {
	case HitRect:
		v.Rect.X += d.X
		v.Rect.Y += d.Y
		return v
	case HitCircle:
		v.Circle.X += d.X
		v.Circle.Y += d.Y
		return v
	case HitPolygon:
		pts := make([]Vec2, len(v.Points))
		for i, pt := range v.Points {
			pts[i] = pt.Add(d)
		}
		return HitPolygon{Points: pts}
	default:
		return s
	}
}
