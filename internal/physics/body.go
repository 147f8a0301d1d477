package physics

// Default racer tuning, in world units per tick.
const (
	DefaultBodySize     = 30.0
	DefaultMaxSpeed     = 5.0
	DefaultJumpStrength = 12.0
	DefaultAccel        = 1.0
)

// Tuning holds the per-racer movement constants.
type Tuning struct {
	MaxSpeed     float64 // Horizontal input stops accelerating past this speed
	JumpStrength float64 // Upward velocity set by a jump
	Accel        float64 // Horizontal velocity change per tick while a direction is held
}

// DefaultTuning returns the classic racer tuning.
func DefaultTuning() Tuning {
	return Tuning{
		MaxSpeed:     DefaultMaxSpeed,
		JumpStrength: DefaultJumpStrength,
		Accel:        DefaultAccel,
	}
}

// Body is a dynamic box moved by the integrator.
type Body struct {
	Box      AABB
	VelX     float64
	VelY     float64
	Grounded bool
	Tuning   Tuning
}

// NewBody creates a body at rest in the given box.
func NewBody(box AABB, tuning Tuning) Body {
	return Body{Box: box, Tuning: tuning}
}

// Reset places the body at (x, y) with zero velocity.
// Grounded is left for the next tick to re-evaluate.
func (b *Body) Reset(x, y float64) {
	b.Box.X = x
	b.Box.Y = y
	b.VelX = 0
	b.VelY = 0
}
