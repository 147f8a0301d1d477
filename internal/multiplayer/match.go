package multiplayer

import (
	"fmt"
	"sync"
	"time"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/race"
)

// MatchConfig holds the settings of one online match.
type MatchConfig struct {
	TickRate    int // Simulation ticks per second
	RoundsToWin int // Rounds needed to win the match; 0 races forever
	HoldTicks   int // How long a remote key press counts as held
}

// DefaultMatchConfig returns first-to-three at 60 ticks per second.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		TickRate:    60,
		RoundsToWin: 3,
		HoldTicks:   core.DefaultHoldTicks,
	}
}

// RoundResult records one goal touch.
type RoundResult struct {
	Winner PlayerID
	Name   string
	Tick   uint64
}

// MatchResult contains the outcome of a finished match.
type MatchResult struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  PlayerID
	Wins    [2]int
	Rounds  []RoundResult
	Ticks   uint64
}

// OnlineMatch runs an authoritative race between two sessions.
type OnlineMatch struct {
	id    MatchID
	code  string
	level race.Level
	race  *race.Match
	cfg   MatchConfig

	sessions [2]SessionHandle

	// Input handling. Only the Run goroutine touches held.
	inputChan chan playerInput
	held      [2]*core.HeldKeys

	rounds   []RoundResult
	done     chan struct{}
	doneOnce sync.Once

	// Disconnect handling
	leaveChan chan leaveRequest
}

type playerInput struct {
	player PlayerID
	action Action
}

type leaveRequest struct {
	session SessionID
	reason  MatchEndReason
}

// NewOnlineMatch creates a match on level. Remote sessions send actions,
// so both racers always use the default bindings.
func NewOnlineMatch(
	id MatchID,
	code string,
	level race.Level,
	opts race.Options,
	sessions [2]SessionHandle,
	cfg MatchConfig,
) (*OnlineMatch, error) {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	level.Bindings = [2]core.Bindings{
		core.DefaultBindings(Player1),
		core.DefaultBindings(Player2),
	}
	opts.Announcer = nil

	rm, err := race.New(level, opts)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", id, err)
	}

	return &OnlineMatch{
		id:        id,
		code:      code,
		level:     level,
		race:      rm,
		cfg:       cfg,
		sessions:  sessions,
		inputChan: make(chan playerInput, 64),
		held:      [2]*core.HeldKeys{core.NewHeldKeys(cfg.HoldTicks), core.NewHeldKeys(cfg.HoldTicks)},
		done:      make(chan struct{}),
		leaveChan: make(chan leaveRequest, 2),
	}, nil
}

// ID returns the match identifier.
func (m *OnlineMatch) ID() MatchID {
	return m.id
}

// Code returns the lobby code, empty for quick matches.
func (m *OnlineMatch) Code() string {
	return m.code
}

// Level returns the level being raced, with the bindings in effect.
func (m *OnlineMatch) Level() race.Level {
	return m.level
}

// Session returns the session playing p.
func (m *OnlineMatch) Session(p PlayerID) SessionHandle {
	if !p.Valid() {
		return nil
	}
	return m.sessions[p.Index()]
}

// Names returns the racer names.
func (m *OnlineMatch) Names() [2]string {
	r := m.race.Racers()
	return [2]string{r[0].Name, r[1].Name}
}

// SendInput queues a key press. Non-blocking; input is dropped when the
// queue is full.
func (m *OnlineMatch) SendInput(player PlayerID, action Action) {
	select {
	case m.inputChan <- playerInput{player: player, action: action}:
	default:
		// Channel full, drop input (rare under normal conditions)
	}
}

// PlayerDisconnected signals that a session dropped.
func (m *OnlineMatch) PlayerDisconnected(sessionID SessionID) {
	m.leave(sessionID, MatchEndReasonDisconnect)
}

// PlayerLeft signals that a session forfeited.
func (m *OnlineMatch) PlayerLeft(sessionID SessionID) {
	m.leave(sessionID, MatchEndReasonForfeit)
}

func (m *OnlineMatch) leave(sessionID SessionID, reason MatchEndReason) {
	select {
	case m.leaveChan <- leaveRequest{session: sessionID, reason: reason}:
	default:
	}
}

// Run starts the authoritative match loop and blocks until the match ends.
// The callback is called with the result unless the match was stopped.
func (m *OnlineMatch) Run(onComplete func(MatchResult)) {
	defer m.Stop()

	ticker := time.NewTicker(time.Second / time.Duration(m.cfg.TickRate))
	defer ticker.Stop()

	// Monitor session disconnects
	go m.monitorSessions()

	for {
		select {
		case <-ticker.C:
			result, done := m.runTick()
			if done {
				if onComplete != nil {
					onComplete(result)
				}
				return
			}

		case req := <-m.leaveChan:
			result := m.handleLeave(req)
			if onComplete != nil {
				onComplete(result)
			}
			return

		case <-m.done:
			return
		}
	}
}

func (m *OnlineMatch) runTick() (MatchResult, bool) {
	now := m.race.TickCount()
	m.drainInputs(now)

	in := core.NewInputState()
	for _, h := range m.held {
		in.Merge(h.State(now))
	}

	res := m.race.Tick(in)
	m.broadcast(SnapshotEvent{MatchID: m.id, Snapshot: m.race.Snapshot()})

	if res.Winner == core.PlayerNone {
		return MatchResult{}, false
	}

	winner := m.race.Racer(res.Winner)
	m.rounds = append(m.rounds, RoundResult{Winner: winner.ID, Name: winner.Name, Tick: res.Tick})
	m.broadcast(RoundWonEvent{
		MatchID: m.id,
		Win:     race.WinEvent{Winner: winner.ID, Name: winner.Name, Tick: res.Tick},
		Wins:    m.wins(),
	})

	// Keys held across the reset would launch racers off their spawns.
	for _, h := range m.held {
		h.Clear()
	}

	if m.cfg.RoundsToWin > 0 && winner.Wins >= m.cfg.RoundsToWin {
		return m.result(MatchEndReasonCompleted, winner.ID), true
	}
	return MatchResult{}, false
}

func (m *OnlineMatch) drainInputs(now uint64) {
	for {
		select {
		case pi := <-m.inputChan:
			r := m.race.Racer(pi.player)
			if r == nil {
				continue
			}
			m.held[pi.player.Index()].Press(pi.action.Control(r.Bindings), now)
		default:
			return
		}
	}
}

func (m *OnlineMatch) handleLeave(req leaveRequest) MatchResult {
	winner := Player1
	if req.session == m.sessions[0].ID() {
		winner = Player2
	}
	return m.result(req.reason, winner)
}

func (m *OnlineMatch) result(reason MatchEndReason, winner PlayerID) MatchResult {
	return MatchResult{
		MatchID: m.id,
		Reason:  reason,
		Winner:  winner,
		Wins:    m.wins(),
		Rounds:  append([]RoundResult(nil), m.rounds...),
		Ticks:   m.race.TickCount(),
	}
}

func (m *OnlineMatch) wins() [2]int {
	return [2]int{m.race.Wins(Player1), m.race.Wins(Player2)}
}

func (m *OnlineMatch) broadcast(evt SessionEvent) {
	for _, s := range m.sessions {
		s.Send(evt)
	}
}

func (m *OnlineMatch) monitorSessions() {
	select {
	case <-m.sessions[0].Done():
		m.PlayerDisconnected(m.sessions[0].ID())
	case <-m.sessions[1].Done():
		m.PlayerDisconnected(m.sessions[1].ID())
	case <-m.done:
	}
}

// Stop ends the match loop without a result.
func (m *OnlineMatch) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}
