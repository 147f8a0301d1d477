package physics

import "github.com/vovakirdan/tower-race/internal/core"

// Default world constants.
const (
	DefaultWorldWidth  = 800.0
	DefaultWorldHeight = 600.0
	DefaultGravity     = 0.5
	DefaultFriction    = 0.8
)

// World holds the constants shared by every body in a match.
type World struct {
	Width    float64 // Screen width; bodies are clamped into [0, Width-w]
	Height   float64 // Screen height; acts as a failsafe floor
	Gravity  float64 // Added to vertical velocity every tick
	Friction float64 // Horizontal velocity multiplier applied every tick
}

// DefaultWorld returns the classic 800x600 world.
func DefaultWorld() World {
	return World{
		Width:    DefaultWorldWidth,
		Height:   DefaultWorldHeight,
		Gravity:  DefaultGravity,
		Friction: DefaultFriction,
	}
}

// Contact records the side a body touched on one platform during a tick.
type Contact struct {
	Platform int // Index into the platform slice
	Side     Side
}

// Integrate advances one body by one tick.
//
// Steps, in order: horizontal input, jump, friction and gravity, position
// update, grounded reset, platform contact, horizontal screen clamp, floor
// failsafe. Grounded is only true afterwards if the body landed on a platform
// or the floor during this tick.
//
// Returns the platform contacts made this tick (nil if none).
func Integrate(body *Body, in core.InputState, keys core.Bindings, platforms []AABB, world World) []Contact {
	t := body.Tuning

	// Both directions may apply in the same tick.
	if in.Pressed(keys.Left) && body.VelX > -t.MaxSpeed {
		body.VelX -= t.Accel
	}
	if in.Pressed(keys.Right) && body.VelX < t.MaxSpeed {
		body.VelX += t.Accel
	}

	if in.Pressed(keys.Up) && body.Grounded {
		body.VelY = -t.JumpStrength
		body.Grounded = false
	}

	body.VelX *= world.Friction
	body.VelY += world.Gravity

	body.Box.X += body.VelX
	body.Box.Y += body.VelY

	body.Grounded = false

	var contacts []Contact
	for i, p := range platforms {
		side := Resolve(body, p)
		if side == SideNone {
			continue
		}
		if side == SideBottom {
			body.Grounded = true
		}
		contacts = append(contacts, Contact{Platform: i, Side: side})
	}

	if body.Box.X < 0 {
		body.Box.X = 0
	}
	if body.Box.X+body.Box.W > world.Width {
		body.Box.X = world.Width - body.Box.W
	}

	// Failsafe floor
	if body.Box.Y+body.Box.H > world.Height {
		body.Box.Y = world.Height - body.Box.H
		body.Grounded = true
		body.VelY = 0
	}

	return contacts
}
