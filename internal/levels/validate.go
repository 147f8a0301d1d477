package levels

import (
	"fmt"

	"github.com/vovakirdan/tower-race/internal/levels/formats"
	"github.com/vovakirdan/tower-race/internal/physics"
	"github.com/vovakirdan/tower-race/internal/race"
)

// Validation error codes.
const (
	CodeMissingID     = "MISSING_ID"
	CodeDegenerateBox = "DEGENERATE_BOX"
	CodeMissingGoal   = "MISSING_GOAL"
	CodeSpawnCount    = "SPAWN_COUNT"
	CodeOutOfWorld    = "OUT_OF_WORLD"
)

// ValidationError contains details about validation failure.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap lets errors.Is match race.ErrDegenerateBox.
func (e ValidationError) Unwrap() error {
	if e.Code == CodeDegenerateBox {
		return race.ErrDegenerateBox
	}
	return nil
}

// Validate checks a parsed level and returns the first problem found.
// Checks, in order:
//   - the level has an ID
//   - a goal is present and every box has positive size
//   - exactly two spawns are given
//   - every box and spawn lies inside the world
func Validate(l formats.Level) error {
	if l.ID == "" {
		return ValidationError{Code: CodeMissingID, Message: "level has no id"}
	}

	if l.Goal == nil {
		return ValidationError{Code: CodeMissingGoal, Message: "level has no goal"}
	}

	for i, p := range l.Platforms {
		if !p.Valid() {
			return ValidationError{
				Code:    CodeDegenerateBox,
				Message: fmt.Sprintf("platform %d has size %gx%g", i, p.W, p.H),
			}
		}
	}
	if !l.Goal.Valid() {
		return ValidationError{
			Code:    CodeDegenerateBox,
			Message: fmt.Sprintf("goal has size %gx%g", l.Goal.W, l.Goal.H),
		}
	}

	if len(l.Spawns) != 2 {
		return ValidationError{
			Code:    CodeSpawnCount,
			Message: fmt.Sprintf("expected 2 spawns, got %d", len(l.Spawns)),
		}
	}

	w, h := worldSize(l)
	for i, p := range l.Platforms {
		if !inside(p, w, h) {
			return ValidationError{
				Code:    CodeOutOfWorld,
				Message: fmt.Sprintf("platform %d (%g,%g %gx%g) leaves the %gx%g world", i, p.X, p.Y, p.W, p.H, w, h),
			}
		}
	}
	if !inside(*l.Goal, w, h) {
		return ValidationError{
			Code:    CodeOutOfWorld,
			Message: fmt.Sprintf("goal leaves the %gx%g world", w, h),
		}
	}
	for i, s := range l.Spawns {
		if s.X < 0 || s.Y < 0 || s.X >= w || s.Y >= h {
			return ValidationError{
				Code:    CodeOutOfWorld,
				Message: fmt.Sprintf("spawn %d (%g,%g) is outside the %gx%g world", i+1, s.X, s.Y, w, h),
			}
		}
	}

	return nil
}

func worldSize(l formats.Level) (float64, float64) {
	w, h := l.Width, l.Height
	if w <= 0 {
		w = physics.DefaultWorldWidth
	}
	if h <= 0 {
		h = physics.DefaultWorldHeight
	}
	return w, h
}

func inside(b physics.AABB, w, h float64) bool {
	return b.X >= 0 && b.Y >= 0 && b.Right() <= w && b.Bottom() <= h
}
