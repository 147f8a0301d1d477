// Package multiplayer runs races between remote sessions: matchmaking
// (a quick-match queue and private lobby codes), the authoritative fixed-rate
// race loop, and the events exchanged with sessions. It knows nothing about
// SSH or Bubble Tea.
package multiplayer

import "github.com/vovakirdan/tower-race/internal/core"

// PlayerID is an alias to core.PlayerID for convenience.
type PlayerID = core.PlayerID

// Re-export player constants for convenience.
const (
	Player1 = core.Player1
	Player2 = core.Player2
)

// SessionID uniquely identifies a player's session (e.g., SSH connection).
type SessionID string

// MatchID uniquely identifies an online match.
type MatchID string

// MatchMode records how a race was played.
type MatchMode int

const (
	// MatchModeLocal is two players sharing one keyboard.
	MatchModeLocal MatchMode = iota

	// MatchModeVsBot is a player against a scripted racer.
	MatchModeVsBot

	// MatchModeOnline is two sessions racing over SSH.
	MatchModeOnline

	// MatchModeHeadless is a simulated race with no terminal.
	MatchModeHeadless
)

// String returns a human-readable name for the match mode.
func (m MatchMode) String() string {
	switch m {
	case MatchModeLocal:
		return "Local"
	case MatchModeVsBot:
		return "vs Bot"
	case MatchModeOnline:
		return "Online"
	case MatchModeHeadless:
		return "Headless"
	default:
		return "Unknown"
	}
}

// Key returns the stable identifier stored with results.
func (m MatchMode) Key() string {
	switch m {
	case MatchModeLocal:
		return "local"
	case MatchModeVsBot:
		return "bot"
	case MatchModeOnline:
		return "online"
	case MatchModeHeadless:
		return "sim"
	default:
		return "unknown"
	}
}

// Action is a logical racer control sent by a remote session. The server
// maps it onto the racer's bindings.
type Action int

const (
	ActionUp Action = iota
	ActionLeft
	ActionRight
)

// Control returns the control bound to the action.
func (a Action) Control(keys core.Bindings) core.Control {
	switch a {
	case ActionUp:
		return keys.Up
	case ActionLeft:
		return keys.Left
	case ActionRight:
		return keys.Right
	default:
		return ""
	}
}

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	default:
		return "unknown"
	}
}
