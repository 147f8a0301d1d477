package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tower-race/internal/bot"
	"github.com/vovakirdan/tower-race/internal/config"
	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/multiplayer"
	"github.com/vovakirdan/tower-race/internal/race"
	"github.com/vovakirdan/tower-race/internal/storage"
)

// ResultSaver persists finished rounds. *storage.Store implements it.
type ResultSaver interface {
	SaveResult(r storage.RaceResult) (int64, error)
}

// BotFactory builds the scripted racer for a level.
type BotFactory func(level race.Level) (*bot.Bot, error)

// Options configures a local race.
type Options struct {
	Config   config.RaceConfig
	Level    race.Level
	TickRate int
	Width    int // Initial terminal size
	Height   int

	Bot    BotFactory  // Optional CPU racer
	Store  ResultSaver // Optional
	Logger *log.Logger // Optional

	// Changes delivers paths of edited level files; Reload fetches the
	// level again when one arrives. Both are optional.
	Changes <-chan string
	Reload  func() (race.Level, error)
}

// WinAnnouncedMsg carries a win event once its announcement delay is over.
type WinAnnouncedMsg race.WinEvent

// LevelChangedMsg reports that a watched level file was written.
type LevelChangedMsg string

// Model is the Bubble Tea model for a local race on one keyboard.
type Model struct {
	opts      Options
	logger    *log.Logger
	match     *race.Match
	bot       *bot.Bot
	announcer *race.DeferredAnnouncer
	wins      chan race.WinEvent
	held      *core.HeldKeys
	screen    *core.Screen
	keys      KeyMap
	help      help.Model

	mode       multiplayer.MatchMode
	roundStart uint64
	banner     string
	bannerLeft int
	status     string
	paused     bool
	quitting   bool
	width      int
	height     int
}

// NewModel creates a local race model.
func NewModel(opts Options) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 80, 24
	}

	m := Model{
		opts:   opts,
		logger: logger,
		wins:   make(chan race.WinEvent, 4),
		held:   core.NewHeldKeys(opts.Config.Controls.HoldTicks),
		screen: core.NewScreen(opts.Width, opts.Height),
		help:   help.New(),
		mode:   multiplayer.MatchModeLocal,
		width:  opts.Width,
		height: opts.Height,
	}
	m.announcer = race.NewDeferredAnnouncer(opts.Config.AnnounceDelay(), m.deliver)

	if err := m.load(opts.Level); err != nil {
		return Model{}, err
	}
	return m, nil
}

// deliver runs on the announcer's timer goroutine.
func (m Model) deliver(evt race.WinEvent) {
	select {
	case m.wins <- evt:
	default:
	}
}

// load builds the match (and bot) for a level.
func (m *Model) load(level race.Level) error {
	level = m.opts.Config.ApplyLevel(level)

	opts := m.opts.Config.MatchOptions()
	opts.Announcer = m.announcer

	var b *bot.Bot
	if m.opts.Bot != nil {
		var err error
		b, err = m.opts.Bot(level)
		if err != nil {
			return fmt.Errorf("bot: %w", err)
		}
		opts.Names[b.ID().Index()] = "CPU"
		m.mode = multiplayer.MatchModeVsBot
	}

	match, err := race.New(level, opts)
	if err != nil {
		return fmt.Errorf("level %s: %w", level.ID, err)
	}

	m.match = match
	m.bot = b
	m.roundStart = 0
	m.held.Clear()

	var names [2]string
	var keys [2]core.Bindings
	for i, r := range match.Racers() {
		names[i] = r.Name
		keys[i] = r.Bindings
	}
	m.keys = DefaultKeyMap(names, keys)
	return nil
}

// Init starts the tick loop and the event listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.opts.TickRate),
		m.waitForWin(),
		m.waitForChange(),
	)
}

func (m Model) waitForWin() tea.Cmd {
	return func() tea.Msg {
		return WinAnnouncedMsg(<-m.wins)
	}
}

func (m Model) waitForChange() tea.Cmd {
	if m.opts.Changes == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-m.opts.Changes
		if !ok {
			return nil
		}
		return LevelChangedMsg(path)
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()

	case WinAnnouncedMsg:
		m.banner = race.WinEvent(msg).Message()
		m.bannerLeft = m.opts.Config.Announce.BannerTicks
		return m, m.waitForWin()

	case LevelChangedMsg:
		return m.handleLevelChanged(string(msg))
	}

	return m, nil
}

// handleKey processes keyboard input. Racing controls take precedence over
// screen keys so any binding layout works.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	if c := ControlForKey(msg); c != "" && m.bound(c) {
		m.held.Press(c, m.match.TickCount())
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
		return m.quit()
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		m.held.Clear()
	case key.Matches(msg, m.keys.Restart):
		m.match.Reset()
		m.held.Clear()
		m.roundStart = m.match.TickCount()
		m.banner = ""
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.announcer.Stop()
	return m, tea.Quit
}

// bound reports whether c drives a human racer.
func (m Model) bound(c core.Control) bool {
	for _, r := range m.match.Racers() {
		if m.bot != nil && r.ID == m.bot.ID() {
			continue
		}
		if r.Bindings.Up == c || r.Bindings.Left == c || r.Bindings.Right == c {
			return true
		}
	}
	return false
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	if m.paused {
		return m, tickCmd(m.opts.TickRate)
	}

	in := m.held.State(m.match.TickCount())
	if m.bot != nil {
		if err := m.bot.Step(m.match.Snapshot(), in); err != nil {
			// The CPU racer stands still from here on.
			m.logger.Warn("bot disabled", "error", err)
			m.status = "CPU script error"
			m.bot = nil
		}
	}

	res := m.match.Tick(in)
	if res.Winner != core.PlayerNone {
		m.held.Clear()
		m.saveRound(res)
	}

	if m.bannerLeft > 0 {
		m.bannerLeft--
		if m.bannerLeft == 0 {
			m.banner = ""
		}
	}

	return m, tickCmd(m.opts.TickRate)
}

// saveRound records a win. Storage is best effort.
func (m *Model) saveRound(res race.TickResult) {
	winner := m.match.Racer(res.Winner)
	ticks := res.Tick - m.roundStart
	m.roundStart = res.Tick

	m.logger.Info("race won", "winner", winner.Name, "level", m.match.Level().ID, "ticks", ticks)

	if m.opts.Store == nil {
		return
	}
	_, err := m.opts.Store.SaveResult(storage.RaceResult{
		LevelID:    m.match.Level().ID,
		Mode:       m.mode.Key(),
		Winner:     winner.ID,
		WinnerName: winner.Name,
		Ticks:      ticks,
	})
	if err != nil {
		m.logger.Warn("could not save result", "error", err)
	}
}

func (m Model) handleLevelChanged(path string) (tea.Model, tea.Cmd) {
	if m.opts.Reload == nil {
		return m, m.waitForChange()
	}

	level, err := m.opts.Reload()
	if err == nil {
		err = m.load(level)
	}
	if err != nil {
		m.logger.Warn("level reload failed", "path", path, "error", err)
		m.status = "reload failed: " + err.Error()
		return m, m.waitForChange()
	}

	m.logger.Info("level reloaded", "path", path, "level", level.ID)
	m.status = "reloaded " + level.ID
	m.banner = ""
	return m, m.waitForChange()
}

var (
	statusStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	helpView := m.help.View(m.keys)
	helpRows := lipgloss.Height(helpView)
	fieldH := max(m.height-1-helpRows, 1)

	m.screen.Resize(m.width, fieldH)
	m.screen.Clear()
	DrawView(m.screen, core.NewRect(0, 0, m.width, fieldH), m.match.View())
	switch {
	case m.paused:
		DrawBanner(m.screen, "PAUSED")
	case m.banner != "":
		DrawBanner(m.screen, m.banner)
	}
	b.WriteString(RenderScreen(m.screen))

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(helpView))
	return b.String()
}

func (m Model) statusLine() string {
	racers := m.match.Racers()
	score := fmt.Sprintf("%s %d - %d %s",
		colorStyles[racers[0].Color].Render(racers[0].Name), racers[0].Wins,
		racers[1].Wins, colorStyles[racers[1].Color].Render(racers[1].Name))

	line := statusStyle.Render(score) + dimStyle.Render("  "+m.match.Level().Name)
	if m.status != "" {
		line += dimStyle.Render("  " + m.status)
	}
	return line
}

// Match returns the running match.
func (m Model) Match() *race.Match {
	return m.match
}

// IsQuitting returns true if the user asked to leave.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// Run starts a local race in the terminal and blocks until the user quits.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}
	defer model.announcer.Stop()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
