package multiplayer

import "github.com/vovakirdan/tower-race/internal/race"

// SessionEvent represents an event sent from the coordinator to a session.
type SessionEvent interface {
	sessionEvent()
}

// QueuedEvent is sent when a session enters the quick-match queue.
type QueuedEvent struct {
	LevelID string
}

func (QueuedEvent) sessionEvent() {}

// LobbyCreatedEvent is sent when a private lobby is created.
type LobbyCreatedEvent struct {
	Code    string
	LevelID string
}

func (LobbyCreatedEvent) sessionEvent() {}

// LobbyErrorEvent is sent when a queue or lobby operation fails.
type LobbyErrorEvent struct {
	Message string
}

func (LobbyErrorEvent) sessionEvent() {}

// MatchStartedEvent is sent to both sessions when a race begins.
// Level carries the static geometry; snapshots only carry the racers.
type MatchStartedEvent struct {
	MatchID     MatchID
	Side        PlayerID
	Level       race.Level
	Names       [2]string
	RoundsToWin int
}

func (MatchStartedEvent) sessionEvent() {}

// SnapshotEvent carries the racer state after a tick.
type SnapshotEvent struct {
	MatchID  MatchID
	Snapshot race.Snapshot
}

func (SnapshotEvent) sessionEvent() {}

// RoundWonEvent is sent when a racer touches the goal.
type RoundWonEvent struct {
	MatchID MatchID
	Win     race.WinEvent
	Wins    [2]int
}

func (RoundWonEvent) sessionEvent() {}

// MatchEndedEvent is sent when the match ends.
type MatchEndedEvent struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  PlayerID // PlayerNone if nobody won
	Wins    [2]int
}

func (MatchEndedEvent) sessionEvent() {}

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // A racer reached the round target
	MatchEndReasonDisconnect                       // Opponent disconnected
	MatchEndReasonCancelled                        // Match was stopped by the server
	MatchEndReasonHostLeft                         // Host left the lobby
	MatchEndReasonForfeit                          // Opponent left the match
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "Match completed"
	case MatchEndReasonDisconnect:
		return "Opponent disconnected"
	case MatchEndReasonCancelled:
		return "Match cancelled"
	case MatchEndReasonHostLeft:
		return "Host left"
	case MatchEndReasonForfeit:
		return "Opponent left"
	default:
		return "Unknown"
	}
}

// Key returns the stable identifier stored with results.
func (r MatchEndReason) Key() string {
	switch r {
	case MatchEndReasonCompleted:
		return "completed"
	case MatchEndReasonDisconnect:
		return "disconnect"
	case MatchEndReasonCancelled:
		return "cancelled"
	case MatchEndReasonHostLeft:
		return "host_left"
	case MatchEndReasonForfeit:
		return "forfeit"
	default:
		return "unknown"
	}
}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// JoinQueueMsg asks to be paired with the next session queued for the level.
type JoinQueueMsg struct {
	SessionID SessionID
	Name      string
	LevelID   string
}

func (JoinQueueMsg) coordinatorMessage() {}

// LeaveQueueMsg removes a session from the queue.
type LeaveQueueMsg struct {
	SessionID SessionID
}

func (LeaveQueueMsg) coordinatorMessage() {}

// CreateLobbyMsg requests a private lobby.
type CreateLobbyMsg struct {
	SessionID SessionID
	Name      string
	LevelID   string
}

func (CreateLobbyMsg) coordinatorMessage() {}

// JoinLobbyMsg requests joining a private lobby by code.
type JoinLobbyMsg struct {
	SessionID SessionID
	Name      string
	Code      string
}

func (JoinLobbyMsg) coordinatorMessage() {}

// LeaveLobbyMsg leaves or closes a lobby.
type LeaveLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (LeaveLobbyMsg) coordinatorMessage() {}

// LeaveMatchMsg forfeits an active match.
type LeaveMatchMsg struct {
	SessionID SessionID
	MatchID   MatchID
}

func (LeaveMatchMsg) coordinatorMessage() {}

// PlayerInputMsg reports a key press from a session.
type PlayerInputMsg struct {
	MatchID MatchID
	Player  PlayerID
	Action  Action
}

func (PlayerInputMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
