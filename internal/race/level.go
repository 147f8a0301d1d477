// Package race owns one two-player race: the static level, the goal, both
// racers, and the per-tick controller that integrates bodies, detects a goal
// touch, announces the winner and resets the racers.
package race

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/physics"
)

// ErrDegenerateBox is returned when a level contains a box with a
// non-positive width or height.
var ErrDegenerateBox = errors.New("degenerate box")

// Spawn is a racer's starting top-left position.
type Spawn struct {
	X, Y float64
}

// Level is static race configuration: platforms, the goal, spawn points and
// control bindings. It is never mutated by a running match.
type Level struct {
	ID        string
	Name      string
	Width     float64 // World width; 0 means use the match world
	Height    float64 // World height; 0 means use the match world
	Platforms []physics.AABB
	Goal      physics.AABB
	Spawns    [2]Spawn
	Bindings  [2]core.Bindings
}

// Validate checks that every box of the level is non-degenerate.
func (l Level) Validate() error {
	for i, p := range l.Platforms {
		if !p.Valid() {
			return fmt.Errorf("level %q: platform %d (%gx%g): %w", l.ID, i, p.W, p.H, ErrDegenerateBox)
		}
	}
	if !l.Goal.Valid() {
		return fmt.Errorf("level %q: goal (%gx%g): %w", l.ID, l.Goal.W, l.Goal.H, ErrDegenerateBox)
	}
	return nil
}

// Towers returns the symmetric-tower layout: a ground floor, side ledges,
// a shared middle step, two islands, a pre-final step and the summit that
// carries the goal. Player 1 starts bottom-left, Player 2 bottom-right.
func Towers() Level {
	return Level{
		ID:     "towers",
		Name:   "Symmetric Towers",
		Width:  physics.DefaultWorldWidth,
		Height: physics.DefaultWorldHeight,
		Platforms: []physics.AABB{
			physics.NewAABB(0, 580, 800, 20),   // ground
			physics.NewAABB(0, 480, 250, 20),   // left ledge
			physics.NewAABB(550, 480, 250, 20), // right ledge
			physics.NewAABB(300, 380, 200, 20), // shared middle
			physics.NewAABB(100, 280, 150, 20), // left island
			physics.NewAABB(550, 280, 150, 20), // right island
			physics.NewAABB(320, 170, 160, 20), // pre-final step
			physics.NewAABB(370, 90, 60, 10),   // summit
		},
		Goal:   physics.NewAABB(380, 50, 40, 40),
		Spawns: [2]Spawn{{X: 20, Y: 540}, {X: 750, Y: 540}},
		Bindings: [2]core.Bindings{
			core.DefaultBindings(core.Player1),
			core.DefaultBindings(core.Player2),
		},
	}
}
