package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tower-race/internal/race"
)

// Lobby is a private waiting room joined by code.
type Lobby struct {
	Code      string
	LevelID   string
	Host      Entrant
	Joiner    *Entrant
	CreatedAt time.Time
}

// Entrant is a session waiting for a match.
type Entrant struct {
	Session SessionHandle
	Name    string
	LevelID string
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	LobbyTimeout  time.Duration // How long before an unjoined lobby expires
	CleanupPeriod time.Duration // How often to clean up expired lobbies
	DefaultLevel  string        // Level used when a request names none
	Match         MatchConfig
	Options       race.Options
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:  2 * time.Minute,
		CleanupPeriod: 30 * time.Second,
		DefaultLevel:  "towers",
		Match:         DefaultMatchConfig(),
		Options:       race.DefaultOptions(),
	}
}

// LevelResolver looks up a level by ID.
type LevelResolver func(id string) (race.Level, error)

// MatchResultSaver is an interface for saving match results.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID        string
	LevelID        string
	Player1Session string
	Player2Session string
	Names          [2]string
	Wins           [2]int
	Winner         PlayerID
	WinnerSession  string
	EndReason      string
	Ticks          uint64
	DurationSecs   int
	Rounds         []RoundResult
}

// Coordinator pairs sessions into matches and routes their messages.
type Coordinator struct {
	config       CoordinatorConfig
	resolveLevel LevelResolver
	sessions     *SessionRegistry
	resultSaver  MatchResultSaver // Optional, can be nil
	logger       *log.Logger

	mu      sync.RWMutex
	queue   []Entrant
	lobbies map[string]*Lobby        // code -> lobby
	matches map[MatchID]*OnlineMatch // matchID -> match

	// Track which session is queued or in which lobby/match
	sessionQueued map[SessionID]bool
	sessionLobby  map[SessionID]string  // sessionID -> lobby code
	sessionMatch  map[SessionID]MatchID // sessionID -> matchID

	// Message channel for async processing
	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg CoordinatorConfig, resolve LevelResolver, sessions *SessionRegistry) *Coordinator {
	return &Coordinator{
		config:        cfg,
		resolveLevel:  resolve,
		sessions:      sessions,
		logger:        log.New(io.Discard),
		lobbies:       make(map[string]*Lobby),
		matches:       make(map[MatchID]*OnlineMatch),
		sessionQueued: make(map[SessionID]bool),
		sessionLobby:  make(map[SessionID]string),
		sessionMatch:  make(map[SessionID]MatchID),
		msgChan:       make(chan CoordinatorMessage, 256),
		done:          make(chan struct{}),
	}
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// SetLogger replaces the default discarding logger.
func (c *Coordinator) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator and every running match.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		defer c.mu.Unlock()
		for _, m := range c.matches {
			m.Stop()
		}
	})
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// processMessages handles incoming messages.
func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case JoinQueueMsg:
		c.handleJoinQueue(m)
	case LeaveQueueMsg:
		c.handleLeaveQueue(m)
	case CreateLobbyMsg:
		c.handleCreateLobby(m)
	case JoinLobbyMsg:
		c.handleJoinLobby(m)
	case LeaveLobbyMsg:
		c.handleLeaveLobby(m)
	case LeaveMatchMsg:
		c.handleLeaveMatch(m)
	case PlayerInputMsg:
		c.handlePlayerInput(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	}
}

// busy reports whether the session is already queued, in a lobby or racing.
// Must be called with lock held.
func (c *Coordinator) busy(id SessionID) bool {
	_, inLobby := c.sessionLobby[id]
	_, inMatch := c.sessionMatch[id]
	return c.sessionQueued[id] || inLobby || inMatch
}

func (c *Coordinator) levelID(id string) string {
	if id == "" {
		return c.config.DefaultLevel
	}
	return id
}

func (c *Coordinator) handleJoinQueue(msg JoinQueueMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	levelID := c.levelID(msg.LevelID)
	if _, err := c.resolveLevel(levelID); err != nil {
		session.Send(LobbyErrorEvent{Message: fmt.Sprintf("Unknown level %q", levelID)})
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(msg.SessionID) {
		session.Send(LobbyErrorEvent{Message: "Already queued or playing"})
		return
	}

	entrant := Entrant{Session: session, Name: msg.Name, LevelID: levelID}

	// Pair with the longest-waiting session for the same level
	for i, waiting := range c.queue {
		if waiting.LevelID != levelID {
			continue
		}
		c.queue = append(c.queue[:i], c.queue[i+1:]...)
		delete(c.sessionQueued, waiting.Session.ID())
		c.startMatch("", levelID, waiting, entrant)
		return
	}

	c.queue = append(c.queue, entrant)
	c.sessionQueued[msg.SessionID] = true
	session.Send(QueuedEvent{LevelID: levelID})
	c.logger.Debug("session queued", "session", msg.SessionID, "level", levelID)
}

func (c *Coordinator) handleLeaveQueue(msg LeaveQueueMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dequeue(msg.SessionID)
}

// dequeue must be called with lock held.
func (c *Coordinator) dequeue(id SessionID) {
	if !c.sessionQueued[id] {
		return
	}
	for i, e := range c.queue {
		if e.Session.ID() == id {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			break
		}
	}
	delete(c.sessionQueued, id)
}

func (c *Coordinator) handleCreateLobby(msg CreateLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	levelID := c.levelID(msg.LevelID)
	if _, err := c.resolveLevel(levelID); err != nil {
		session.Send(LobbyErrorEvent{Message: fmt.Sprintf("Unknown level %q", levelID)})
		return
	}

	c.mu.Lock()
	if c.busy(msg.SessionID) {
		c.mu.Unlock()
		session.Send(LobbyErrorEvent{Message: "Already queued or playing"})
		return
	}

	code := c.generateUniqueCode()
	c.lobbies[code] = &Lobby{
		Code:      code,
		LevelID:   levelID,
		Host:      Entrant{Session: session, Name: msg.Name, LevelID: levelID},
		CreatedAt: time.Now(),
	}
	c.sessionLobby[msg.SessionID] = code
	c.mu.Unlock()

	session.Send(LobbyCreatedEvent{Code: code, LevelID: levelID})
}

func (c *Coordinator) handleJoinLobby(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(msg.SessionID) {
		session.Send(LobbyErrorEvent{Message: "Already queued or playing"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(msg.Code))
	lobby, exists := c.lobbies[code]
	switch {
	case !exists:
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	case lobby.Joiner != nil:
		session.Send(LobbyErrorEvent{Message: "Lobby is full"})
		return
	case lobby.Host.Session.ID() == msg.SessionID:
		session.Send(LobbyErrorEvent{Message: "Cannot join your own lobby"})
		return
	}

	joiner := Entrant{Session: session, Name: msg.Name, LevelID: lobby.LevelID}
	lobby.Joiner = &joiner

	delete(c.lobbies, code)
	delete(c.sessionLobby, lobby.Host.Session.ID())
	c.startMatch(code, lobby.LevelID, lobby.Host, joiner)
}

// startMatch must be called with lock held. p1 is the session that waited.
func (c *Coordinator) startMatch(code, levelID string, p1, p2 Entrant) {
	fail := func(err error) {
		c.logger.Error("cannot start match", "level", levelID, "err", err)
		p1.Session.Send(LobbyErrorEvent{Message: "Failed to create race"})
		p2.Session.Send(LobbyErrorEvent{Message: "Failed to create race"})
	}

	level, err := c.resolveLevel(levelID)
	if err != nil {
		fail(err)
		return
	}

	matchID := MatchID(fmt.Sprintf("match-%s-%d", levelID, time.Now().UnixNano()))
	if code != "" {
		matchID = MatchID(fmt.Sprintf("match-%s-%d", code, time.Now().UnixNano()))
	}

	opts := c.config.Options
	opts.Names = [2]string{p1.Name, p2.Name}

	match, err := NewOnlineMatch(matchID, code, level, opts,
		[2]SessionHandle{p1.Session, p2.Session}, c.config.Match)
	if err != nil {
		fail(err)
		return
	}

	c.matches[matchID] = match
	c.sessionMatch[p1.Session.ID()] = matchID
	c.sessionMatch[p2.Session.ID()] = matchID

	names := match.Names()
	for _, side := range []PlayerID{Player1, Player2} {
		match.Session(side).Send(MatchStartedEvent{
			MatchID:     matchID,
			Side:        side,
			Level:       match.Level(),
			Names:       names,
			RoundsToWin: c.config.Match.RoundsToWin,
		})
	}

	c.logger.Info("match started", "match", matchID, "level", levelID,
		"p1", p1.Session.ID(), "p2", p2.Session.ID())

	go match.Run(func(result MatchResult) {
		c.handleMatchEnded(matchID, result)
	})
}

func (c *Coordinator) handleMatchEnded(matchID MatchID, result MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	match, exists := c.matches[matchID]
	if !exists {
		return
	}

	p1, p2 := match.Session(Player1), match.Session(Player2)

	c.logger.Info("match ended", "match", matchID, "reason", result.Reason.Key(),
		"winner", result.Winner, "wins", fmt.Sprintf("%d-%d", result.Wins[0], result.Wins[1]))

	if c.resultSaver != nil {
		winnerSession := ""
		if s := match.Session(result.Winner); s != nil {
			winnerSession = string(s.ID())
		}

		tickRate := max(1, c.config.Match.TickRate)
		data := MatchResultData{
			MatchID:        string(matchID),
			LevelID:        match.Level().ID,
			Player1Session: string(p1.ID()),
			Player2Session: string(p2.ID()),
			Names:          match.Names(),
			Wins:           result.Wins,
			Winner:         result.Winner,
			WinnerSession:  winnerSession,
			EndReason:      result.Reason.Key(),
			Ticks:          result.Ticks,
			DurationSecs:   int(result.Ticks / uint64(tickRate)), //nolint:gosec // tickRate is clamped positive
			Rounds:         result.Rounds,
		}
		// Best effort save, don't block on error
		go func() {
			if err := c.resultSaver.SaveMatchResult(data); err != nil {
				c.logger.Warn("cannot save match result", "match", matchID, "err", err)
			}
		}()
	}

	delete(c.sessionMatch, p1.ID())
	delete(c.sessionMatch, p2.ID())
	delete(c.matches, matchID)

	endEvent := MatchEndedEvent{
		MatchID: matchID,
		Reason:  result.Reason,
		Winner:  result.Winner,
		Wins:    result.Wins,
	}
	p1.Send(endEvent)
	p2.Send(endEvent)
}

func (c *Coordinator) handleLeaveLobby(msg LeaveLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[strings.ToUpper(msg.Code)]
	if !exists || lobby.Host.Session.ID() != msg.SessionID {
		return
	}
	delete(c.lobbies, lobby.Code)
	delete(c.sessionLobby, msg.SessionID)
}

func (c *Coordinator) handleLeaveMatch(msg LeaveMatchMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if !exists {
		return
	}
	match.PlayerLeft(msg.SessionID)
}

func (c *Coordinator) handlePlayerInput(msg PlayerInputMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if !exists {
		return
	}
	match.SendInput(msg.Player, msg.Action)
}

func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dequeue(msg.SessionID)

	// A host leaving closes its lobby
	if code, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		delete(c.lobbies, code)
		delete(c.sessionLobby, msg.SessionID)
	}

	if matchID, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		if match, exists := c.matches[matchID]; exists {
			match.PlayerDisconnected(msg.SessionID)
		}
	}
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpiredLobbies()
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupExpiredLobbies() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for code, lobby := range c.lobbies {
		if now.Sub(lobby.CreatedAt) > c.config.LobbyTimeout {
			lobby.Host.Session.Send(LobbyErrorEvent{Message: "Lobby expired"})
			delete(c.sessionLobby, lobby.Host.Session.ID())
			delete(c.lobbies, code)
		}
	}
}

// generateUniqueCode must be called with lock held.
func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase alphanumeric code.
func generateJoinCode() string {
	b := make([]byte, 4) // 4 bytes = 32 bits, base32 encodes to 8 chars, we take 6
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return base32.StdEncoding.EncodeToString(b)[:6]
}

// GetLobby returns a lobby by code (for testing/debug).
func (c *Coordinator) GetLobby(code string) (*Lobby, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lobbies[strings.ToUpper(code)]
	return l, ok
}

// GetMatch returns a match by ID (for testing/debug).
func (c *Coordinator) GetMatch(id MatchID) (*OnlineMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[id]
	return m, ok
}

// QueueLength returns the number of sessions waiting for a quick match.
func (c *Coordinator) QueueLength() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.queue)
}

// LobbyCount returns the number of open lobbies.
func (c *Coordinator) LobbyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lobbies)
}

// MatchCount returns the number of active matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}
