package multiplayer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/tower-race/internal/race"
)

type savedResults struct {
	mu      sync.Mutex
	results []MatchResultData
}

func (s *savedResults) SaveMatchResult(r MatchResultData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return nil
}

func (s *savedResults) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func testResolver(id string) (race.Level, error) {
	if id == "towers" {
		return race.Towers(), nil
	}
	return race.Level{}, fmt.Errorf("unknown level %q", id)
}

func newTestCoordinator(t *testing.T) (*Coordinator, *SessionRegistry) {
	t.Helper()
	cfg := DefaultCoordinatorConfig()
	cfg.Match.TickRate = 200
	reg := NewSessionRegistry()
	c := NewCoordinator(cfg, testResolver, reg)
	c.Start()
	t.Cleanup(c.Stop)
	return c, reg
}

func newSession(reg *SessionRegistry, id SessionID) *ChannelSession {
	s := NewChannelSession(id, 4096)
	reg.Register(s)
	return s
}

// waitFor reads events until one satisfies match or the timeout expires.
func waitFor[T SessionEvent](t *testing.T, s *ChannelSession, match func(T) bool) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-s.Events():
			if e, ok := evt.(T); ok && (match == nil || match(e)) {
				return e
			}
		case <-deadline:
			var zero T
			t.Fatalf("session %s: timed out waiting for %T", s.ID(), zero)
			return zero
		}
	}
}

func TestQueuePairsSessions(t *testing.T) {
	c, reg := newTestCoordinator(t)
	saver := &savedResults{}
	c.SetResultSaver(saver)

	s1 := newSession(reg, "s1")
	s2 := newSession(reg, "s2")

	c.Send(JoinQueueMsg{SessionID: "s1", Name: "alice"})
	waitFor[QueuedEvent](t, s1, nil)

	c.Send(JoinQueueMsg{SessionID: "s2", Name: "bob", LevelID: "towers"})

	start1 := waitFor[MatchStartedEvent](t, s1, nil)
	start2 := waitFor[MatchStartedEvent](t, s2, nil)

	if start1.Side != Player1 || start2.Side != Player2 {
		t.Errorf("sides = %v, %v; expected Player 1, Player 2", start1.Side, start2.Side)
	}
	if start1.Names != [2]string{"alice", "bob"} {
		t.Errorf("Names = %v, expected [alice bob]", start1.Names)
	}
	if start1.Level.ID != "towers" || start1.RoundsToWin != 3 {
		t.Errorf("started on %s first to %d, expected towers first to 3", start1.Level.ID, start1.RoundsToWin)
	}
	if c.QueueLength() != 0 || c.MatchCount() != 1 {
		t.Errorf("queue = %d, matches = %d; expected 0 and 1", c.QueueLength(), c.MatchCount())
	}

	waitFor[SnapshotEvent](t, s2, nil)

	c.Send(SessionDisconnectedMsg{SessionID: "s2"})
	end := waitFor[MatchEndedEvent](t, s1, nil)
	if end.Reason != MatchEndReasonDisconnect || end.Winner != Player1 {
		t.Errorf("end = %v won by %v, expected disconnect won by Player 1", end.Reason, end.Winner)
	}

	deadline := time.Now().Add(2 * time.Second)
	for saver.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if saver.count() != 1 {
		t.Fatalf("saved %d results, expected 1", saver.count())
	}
	saved := saver.results[0]
	if saved.WinnerSession != "s1" || saved.EndReason != "disconnect" || saved.LevelID != "towers" {
		t.Errorf("saved = %+v", saved)
	}
	if c.MatchCount() != 0 {
		t.Errorf("MatchCount() = %d after end, expected 0", c.MatchCount())
	}
}

func TestQueueRejectsUnknownLevelAndDuplicates(t *testing.T) {
	c, reg := newTestCoordinator(t)
	s1 := newSession(reg, "s1")

	c.Send(JoinQueueMsg{SessionID: "s1", LevelID: "moon"})
	if e := waitFor[LobbyErrorEvent](t, s1, nil); e.Message == "" {
		t.Error("expected an error message for unknown level")
	}

	c.Send(JoinQueueMsg{SessionID: "s1"})
	waitFor[QueuedEvent](t, s1, nil)
	c.Send(JoinQueueMsg{SessionID: "s1"})
	waitFor[LobbyErrorEvent](t, s1, nil)

	c.Send(LeaveQueueMsg{SessionID: "s1"})
	c.Send(JoinQueueMsg{SessionID: "s1"})
	waitFor[QueuedEvent](t, s1, nil)
	if c.QueueLength() != 1 {
		t.Errorf("QueueLength() = %d, expected 1", c.QueueLength())
	}
}

func TestLobbyCodeStartsMatch(t *testing.T) {
	c, reg := newTestCoordinator(t)
	host := newSession(reg, "host")
	guest := newSession(reg, "guest")

	c.Send(CreateLobbyMsg{SessionID: "host", Name: "h"})
	created := waitFor[LobbyCreatedEvent](t, host, nil)
	if len(created.Code) != 6 {
		t.Fatalf("Code = %q, expected 6 characters", created.Code)
	}
	if _, ok := c.GetLobby(created.Code); !ok {
		t.Error("GetLobby() did not find the new lobby")
	}

	c.Send(JoinLobbyMsg{SessionID: "host", Code: created.Code})
	waitFor[LobbyErrorEvent](t, host, nil)

	c.Send(JoinLobbyMsg{SessionID: "guest", Name: "g", Code: created.Code})
	started := waitFor[MatchStartedEvent](t, guest, nil)
	if started.Side != Player2 {
		t.Errorf("guest Side = %v, expected Player 2", started.Side)
	}
	waitFor[MatchStartedEvent](t, host, nil)

	if c.LobbyCount() != 0 {
		t.Errorf("LobbyCount() = %d, expected 0", c.LobbyCount())
	}

	c.Send(LeaveMatchMsg{SessionID: "guest", MatchID: started.MatchID})
	end := waitFor[MatchEndedEvent](t, host, nil)
	if end.Reason != MatchEndReasonForfeit || end.Winner != Player1 {
		t.Errorf("end = %v won by %v, expected forfeit won by Player 1", end.Reason, end.Winner)
	}
}

func TestJoinLobbyUnknownCode(t *testing.T) {
	c, reg := newTestCoordinator(t)
	s := newSession(reg, "s")

	c.Send(JoinLobbyMsg{SessionID: "s", Code: "nope00"})
	if e := waitFor[LobbyErrorEvent](t, s, nil); e.Message != "Lobby not found" {
		t.Errorf("Message = %q, expected %q", e.Message, "Lobby not found")
	}
}

func TestInputReachesMatch(t *testing.T) {
	c, reg := newTestCoordinator(t)
	s1 := newSession(reg, "s1")
	s2 := newSession(reg, "s2")

	c.Send(JoinQueueMsg{SessionID: "s1"})
	c.Send(JoinQueueMsg{SessionID: "s2"})
	started := waitFor[MatchStartedEvent](t, s1, nil)
	waitFor[MatchStartedEvent](t, s2, nil)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.Send(PlayerInputMsg{MatchID: started.MatchID, Player: Player1, Action: ActionRight})
		snap := waitFor[SnapshotEvent](t, s1, nil)
		if snap.Snapshot.Racers[0].VelX > 0 {
			return
		}
	}
	t.Error("Player 1 never moved right")
}
