package physics

import "math"

// Side classifies which part of the moving box touched the other shape.
type Side int

const (
	SideNone   Side = iota // no overlap
	SideTop                // moving box hit the underside of the other shape
	SideBottom             // moving box landed on top of the other shape
	SideLeft               // moving box was pushed out to the other's right
	SideRight              // moving box was pushed out to the other's left
)

// String returns the side name.
func (s Side) String() string {
	switch s {
	case SideNone:
		return "none"
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// Vertical reports whether the side is resolved along the y axis.
func (s Side) Vertical() bool {
	return s == SideTop || s == SideBottom
}

// Penetration is how deep two overlapping boxes intersect on each axis.
type Penetration struct {
	X, Y float64
}

// Overlap reports whether the interiors of a and b intersect.
// Boxes that only share an edge do not overlap.
func Overlap(a, b AABB) bool {
	side, _ := OverlapSide(a, b)
	return side != SideNone
}

// OverlapSide classifies the contact between a and b without changing either.
//
// The side is picked on the axis of least penetration: when the horizontal
// penetration is greater than or equal to the vertical one, the contact is
// vertical (top/bottom), otherwise horizontal (left/right).
func OverlapSide(a, b AABB) (Side, Penetration) {
	ax, ay := a.Center()
	bx, by := b.Center()
	vX := ax - bx
	vY := ay - by
	hWidths := a.W/2 + b.W/2
	hHeights := a.H/2 + b.H/2

	if math.Abs(vX) >= hWidths || math.Abs(vY) >= hHeights {
		return SideNone, Penetration{}
	}

	pen := Penetration{
		X: hWidths - math.Abs(vX),
		Y: hHeights - math.Abs(vY),
	}

	if pen.X >= pen.Y {
		if vY > 0 {
			return SideTop, pen
		}
		return SideBottom, pen
	}
	if vX > 0 {
		return SideLeft, pen
	}
	return SideRight, pen
}

// PushOut moves the body out of a contact found by OverlapSide and zeroes
// its velocity along the resolved axis.
func PushOut(body *Body, side Side, pen Penetration) {
	switch side {
	case SideTop:
		body.Box.Y += pen.Y
		body.VelY = 0
	case SideBottom:
		body.Box.Y -= pen.Y
		body.VelY = 0
	case SideLeft:
		body.Box.X += pen.X
		body.VelX = 0
	case SideRight:
		body.Box.X -= pen.X
		body.VelX = 0
	}
}

// Resolve treats other as solid: when the body overlaps it, the body is
// pushed out along the axis of least penetration. Only the body is mutated.
// Returns SideNone when the boxes do not overlap.
func Resolve(body *Body, other AABB) Side {
	side, pen := OverlapSide(body.Box, other)
	PushOut(body, side, pen)
	return side
}
