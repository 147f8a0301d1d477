// Package physics is the per-tick simulation core of the race: axis-aligned
// boxes, overlap detection, least-penetration push-out and the body
// integrator (input, friction, gravity, platform contact, screen limits).
//
// Coordinates use a top-left origin with y growing downward.
package physics

// AABB is an axis-aligned bounding box in world units.
type AABB struct {
	X, Y float64 // Top-left corner
	W, H float64 // Width and height, both > 0 for a valid box
}

// NewAABB creates a box with the given position and dimensions.
func NewAABB(x, y, w, h float64) AABB {
	return AABB{X: x, Y: y, W: w, H: h}
}

// Valid reports whether the box has positive width and height.
func (b AABB) Valid() bool {
	return b.W > 0 && b.H > 0
}

// Right returns the x-coordinate of the right edge.
func (b AABB) Right() float64 {
	return b.X + b.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (b AABB) Bottom() float64 {
	return b.Y + b.H
}

// Center returns the center point of the box.
func (b AABB) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// At returns a copy of the box moved to (x, y).
func (b AABB) At(x, y float64) AABB {
	b.X, b.Y = x, y
	return b
}
