package core

import "fmt"

// PlayerID identifies one of the two racers in a match.
// The zero value means "no player" and is used for "no winner this tick".
type PlayerID int

const (
	PlayerNone PlayerID = iota
	Player1
	Player2
)

// Players lists both racers in evaluation order.
var Players = [2]PlayerID{Player1, Player2}

// Index returns the zero-based slot of the player (Player1 -> 0, Player2 -> 1).
// Returns -1 for PlayerNone or unknown values.
func (p PlayerID) Index() int {
	switch p {
	case Player1:
		return 0
	case Player2:
		return 1
	default:
		return -1
	}
}

// Valid reports whether p refers to an actual racer.
func (p PlayerID) Valid() bool {
	return p.Index() >= 0
}

// String returns a human-readable name for the player.
func (p PlayerID) String() string {
	switch p {
	case PlayerNone:
		return "none"
	case Player1, Player2:
		return fmt.Sprintf("Player %d", int(p))
	default:
		return "unknown"
	}
}
