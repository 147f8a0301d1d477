package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/multiplayer"
	"github.com/vovakirdan/tower-race/internal/physics"
	"github.com/vovakirdan/tower-race/internal/race"
)

// OnlineState represents the current state of the online flow.
type OnlineState int

const (
	OnlineStateChooseMode    OnlineState = iota // Quick match, host or join
	OnlineStateQueued                           // Waiting in the quick-match queue
	OnlineStateHostWaiting                      // Hosting, waiting for joiner
	OnlineStateJoinEnterCode                    // Entering join code
	OnlineStateJoinWaiting                      // Waiting to connect to host
	OnlineStateInMatch                          // Racing
	OnlineStateMatchEnded                       // Match has ended
)

// codeLength is the length of lobby join codes.
const codeLength = 6

// Sender delivers messages to the coordinator.
type Sender interface {
	Send(msg multiplayer.CoordinatorMessage)
}

// OnlineModel is one SSH session's view of the online race: matchmaking
// first, then the race itself, drawn from server snapshots.
type OnlineModel struct {
	state       OnlineState
	width       int
	height      int
	sessionID   multiplayer.SessionID
	name        string
	levelID     string
	bannerTicks int
	coordinator Sender
	events      <-chan multiplayer.SessionEvent
	screen      *core.Screen

	lobbyCode     string
	joinCodeInput string
	lobbyError    string

	matchID     multiplayer.MatchID
	side        core.PlayerID
	level       race.Level
	names       [2]string
	roundsToWin int
	snapshot    race.Snapshot
	wins        [2]int
	banner      string
	bannerLeft  int

	endReason multiplayer.MatchEndReason
	winner    core.PlayerID

	quitting bool
}

// NewOnlineModel creates the online flow for one session.
func NewOnlineModel(
	sessionID multiplayer.SessionID,
	name, levelID string,
	coordinator Sender,
	events <-chan multiplayer.SessionEvent,
	width, height int,
) OnlineModel {
	return OnlineModel{
		state:       OnlineStateChooseMode,
		width:       width,
		height:      height,
		sessionID:   sessionID,
		name:        name,
		levelID:     levelID,
		bannerTicks: 120,
		coordinator: coordinator,
		events:      events,
		screen:      core.NewScreen(width, height),
	}
}

// SetBannerTicks sets how many snapshots a win banner stays up.
func (m *OnlineModel) SetBannerTicks(n int) {
	m.bannerTicks = n
}

// Init starts listening for coordinator events.
func (m OnlineModel) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent returns a command that waits for coordinator events.
func (m OnlineModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		if m.events == nil {
			return nil
		}
		evt, ok := <-m.events
		if !ok {
			return nil
		}
		return evt
	}
}

// Update handles messages.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case multiplayer.QueuedEvent:
		m.state = OnlineStateQueued
		return m, m.waitForEvent()

	case multiplayer.LobbyCreatedEvent:
		m.lobbyCode = msg.Code
		m.state = OnlineStateHostWaiting
		return m, m.waitForEvent()

	case multiplayer.LobbyErrorEvent:
		m.lobbyError = msg.Message
		switch m.state {
		case OnlineStateJoinWaiting:
			m.state = OnlineStateJoinEnterCode
		case OnlineStateQueued, OnlineStateHostWaiting:
			m.state = OnlineStateChooseMode
		}
		return m, m.waitForEvent()

	case multiplayer.MatchStartedEvent:
		m.state = OnlineStateInMatch
		m.matchID = msg.MatchID
		m.side = msg.Side
		m.level = msg.Level
		m.names = msg.Names
		m.roundsToWin = msg.RoundsToWin
		m.wins = [2]int{}
		m.banner = ""
		m.lobbyError = ""
		return m, m.waitForEvent()

	case multiplayer.SnapshotEvent:
		if msg.MatchID == m.matchID {
			m.snapshot = msg.Snapshot
			if m.bannerLeft > 0 {
				m.bannerLeft--
				if m.bannerLeft == 0 {
					m.banner = ""
				}
			}
		}
		return m, m.waitForEvent()

	case multiplayer.RoundWonEvent:
		if msg.MatchID == m.matchID {
			m.wins = msg.Wins
			m.banner = msg.Win.Message()
			m.bannerLeft = m.bannerTicks
		}
		return m, m.waitForEvent()

	case multiplayer.MatchEndedEvent:
		if msg.MatchID == m.matchID {
			m.state = OnlineStateMatchEnded
			m.endReason = msg.Reason
			m.winner = msg.Winner
			m.wins = msg.Wins
		}
		return m, m.waitForEvent()
	}

	return m, nil
}

func (m OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch m.state {
	case OnlineStateChooseMode:
		return m.handleChooseModeKey(msg)
	case OnlineStateQueued, OnlineStateHostWaiting, OnlineStateJoinWaiting:
		return m.handleWaitingKey(msg)
	case OnlineStateJoinEnterCode:
		return m.handleJoinCodeKey(msg)
	case OnlineStateInMatch:
		return m.handleMatchKey(msg)
	case OnlineStateMatchEnded:
		return m.handleEndedKey(msg)
	}

	return m, nil
}

// quit leaves whatever the session is in before exiting.
func (m OnlineModel) quit() (tea.Model, tea.Cmd) {
	m.leave()
	m.quitting = true
	return m, tea.Quit
}

func (m *OnlineModel) leave() {
	switch m.state {
	case OnlineStateQueued:
		m.coordinator.Send(multiplayer.LeaveQueueMsg{SessionID: m.sessionID})
	case OnlineStateHostWaiting:
		m.coordinator.Send(multiplayer.LeaveLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
	case OnlineStateJoinWaiting:
		m.coordinator.Send(multiplayer.LeaveLobbyMsg{SessionID: m.sessionID, Code: m.joinCodeInput})
	case OnlineStateInMatch:
		m.coordinator.Send(multiplayer.LeaveMatchMsg{SessionID: m.sessionID, MatchID: m.matchID})
	}
}

func (m OnlineModel) handleChooseModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "1", "r":
		m.lobbyError = ""
		m.coordinator.Send(multiplayer.JoinQueueMsg{
			SessionID: m.sessionID,
			Name:      m.name,
			LevelID:   m.levelID,
		})
	case "h", "H", "2":
		m.lobbyError = ""
		m.coordinator.Send(multiplayer.CreateLobbyMsg{
			SessionID: m.sessionID,
			Name:      m.name,
			LevelID:   m.levelID,
		})
	case "j", "J", "3":
		m.state = OnlineStateJoinEnterCode
		m.joinCodeInput = ""
		m.lobbyError = ""
	case "q", "esc":
		return m.quit()
	}
	return m, nil
}

func (m OnlineModel) handleWaitingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		m.leave()
		if m.state == OnlineStateJoinWaiting {
			m.state = OnlineStateJoinEnterCode
		} else {
			m.state = OnlineStateChooseMode
		}
	case "q":
		return m.quit()
	}
	return m, nil
}

func (m OnlineModel) handleJoinCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = OnlineStateChooseMode
	case "enter":
		if len(m.joinCodeInput) == codeLength {
			m.state = OnlineStateJoinWaiting
			m.lobbyError = ""
			m.coordinator.Send(multiplayer.JoinLobbyMsg{
				SessionID: m.sessionID,
				Name:      m.name,
				Code:      m.joinCodeInput,
			})
		}
	case "backspace":
		if m.joinCodeInput != "" {
			m.joinCodeInput = m.joinCodeInput[:len(m.joinCodeInput)-1]
		}
	default:
		key := msg.String()
		if len(key) == 1 && len(m.joinCodeInput) < codeLength {
			c := strings.ToUpper(key)
			if (c[0] >= 'A' && c[0] <= 'Z') || (c[0] >= '0' && c[0] <= '9') {
				m.joinCodeInput += c
			}
		}
	}
	return m, nil
}

func (m OnlineModel) handleMatchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if action, ok := ActionForKey(msg); ok {
		m.coordinator.Send(multiplayer.PlayerInputMsg{
			MatchID: m.matchID,
			Player:  m.side,
			Action:  action,
		})
		return m, nil
	}
	switch msg.String() {
	case "esc", "q":
		return m.quit()
	}
	return m, nil
}

func (m OnlineModel) handleEndedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "r":
		m.state = OnlineStateChooseMode
		m.matchID = ""
		m.snapshot = race.Snapshot{}
	case "q", "esc":
		return m.quit()
	}
	return m, nil
}

// View renders the current state.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case OnlineStateChooseMode:
		return m.viewLines("ONLINE RACE",
			fmt.Sprintf("Racing as %s on %s", m.name, m.levelID),
			"",
			"[Enter] Quick match",
			"[H] Host a private race",
			"[J] Join with a code",
			"",
			m.errorLine(),
			"Q: Quit")
	case OnlineStateQueued:
		return m.viewLines("QUICK MATCH",
			"Waiting for an opponent...",
			"",
			"Esc: Cancel")
	case OnlineStateHostWaiting:
		return m.viewLines("HOSTING RACE",
			"Share this code with your opponent:",
			"",
			fmt.Sprintf("[ %s ]", m.lobbyCode),
			"",
			"Waiting for player to join...",
			"",
			"Esc: Cancel")
	case OnlineStateJoinEnterCode:
		code := m.joinCodeInput
		if len(code) < codeLength {
			code += "_" + strings.Repeat(" ", codeLength-1-len(code))
		}
		return m.viewLines("JOIN RACE",
			"Enter the race code:",
			"",
			fmt.Sprintf("[ %s ]", code),
			"",
			m.errorLine(),
			"Enter: Connect  |  Esc: Back")
	case OnlineStateJoinWaiting:
		return m.viewLines("CONNECTING",
			fmt.Sprintf("Joining race: %s", m.joinCodeInput),
			"",
			"Esc: Cancel")
	case OnlineStateInMatch:
		return m.viewMatch()
	case OnlineStateMatchEnded:
		return m.viewEnded()
	}
	return ""
}

func (m OnlineModel) errorLine() string {
	if m.lobbyError == "" {
		return ""
	}
	return "Error: " + m.lobbyError
}

func (m OnlineModel) viewLines(title string, lines ...string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render(title), m.width))
	b.WriteString("\n\n")
	for _, line := range lines {
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m OnlineModel) viewMatch() string {
	var b strings.Builder

	you := fmt.Sprintf("You are %s", m.names[m.side.Index()])
	score := fmt.Sprintf("%s %d - %d %s",
		colorStyles[core.ColorRed].Render(m.names[0]), m.wins[0],
		m.wins[1], colorStyles[core.ColorBlue].Render(m.names[1]))
	b.WriteString(statusStyle.Render(score))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  first to %d  %s", m.roundsToWin, you)))
	b.WriteString("\n")

	fieldH := max(m.height-2, 1)
	m.screen.Resize(m.width, fieldH)
	m.screen.Clear()
	view := m.level.View(physics.DefaultWorld(), m.snapshot)
	DrawView(m.screen, core.NewRect(0, 0, m.width, fieldH), view)
	DrawBanner(m.screen, m.banner)
	b.WriteString(RenderScreen(m.screen))

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("WASD/arrows: race  |  Esc: Forfeit"))
	return b.String()
}

func (m OnlineModel) viewEnded() string {
	headline := "DRAW"
	switch {
	case m.winner == m.side:
		headline = "YOU WIN!"
	case m.winner.Valid():
		headline = "YOU LOSE"
	}
	return m.viewLines(headline,
		m.endReason.String(),
		fmt.Sprintf("%s %d - %d %s", m.names[0], m.wins[0], m.wins[1], m.names[1]),
		"",
		"Enter: Race again  |  Q: Quit")
}

// State returns the current online state.
func (m OnlineModel) State() OnlineState {
	return m.state
}

// Side returns which racer this session controls.
func (m OnlineModel) Side() core.PlayerID {
	return m.side
}

// MatchID returns the current match, if any.
func (m OnlineModel) MatchID() multiplayer.MatchID {
	return m.matchID
}

// LobbyCode returns the code of the hosted lobby.
func (m OnlineModel) LobbyCode() string {
	return m.lobbyCode
}

// IsQuitting returns true if the user wants to leave.
func (m OnlineModel) IsQuitting() bool {
	return m.quitting
}
