package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tower-race/internal/bot"
	"github.com/vovakirdan/tower-race/internal/config"
	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/multiplayer"
	"github.com/vovakirdan/tower-race/internal/physics"
	"github.com/vovakirdan/tower-race/internal/race"
	"github.com/vovakirdan/tower-race/internal/storage"
)

type savedResults struct {
	results []storage.RaceResult
	err     error
}

func (s *savedResults) SaveResult(r storage.RaceResult) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.results = append(s.results, r)
	return int64(len(s.results)), nil
}

// goalAtSpawn puts the goal over Player 1's spawn so the first tick wins.
func goalAtSpawn() race.Level {
	l := race.Towers()
	l.ID = "instant"
	l.Goal = physics.NewAABB(0, 500, 100, 80)
	return l
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Config.World.Width == 0 {
		opts.Config = config.DefaultRaceConfig()
	}
	if opts.Level.ID == "" {
		opts.Level = race.Towers()
	}
	m, err := NewModel(opts)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	t.Cleanup(m.announcer.Stop)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, expected Model", next)
	}
	return model
}

func tick(t *testing.T, m Model) Model {
	t.Helper()
	return update(t, m, TickMsg(time.Now()))
}

func TestModelHeldKeyMovesRacer(t *testing.T) {
	m := newTestModel(t, Options{})

	m = update(t, m, runeKey("d"))
	for i := 0; i < 5; i++ {
		m = tick(t, m)
	}

	p1 := m.Match().Racer(core.Player1)
	if p1.Body.Box.X <= 20 {
		t.Errorf("Player 1 X = %v, expected > 20 after holding d", p1.Body.Box.X)
	}
	p2 := m.Match().Racer(core.Player2)
	if p2.Body.Box.X != 750 {
		t.Errorf("Player 2 X = %v, expected 750", p2.Body.Box.X)
	}
}

func TestModelHeldKeyExpires(t *testing.T) {
	cfg := config.DefaultRaceConfig()
	cfg.Controls.HoldTicks = 2
	m := newTestModel(t, Options{Config: cfg})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	for i := 0; i < 40; i++ {
		m = tick(t, m)
	}

	p2 := m.Match().Racer(core.Player2)
	if p2.Body.VelX < -0.01 || p2.Body.VelX > 0.01 {
		t.Errorf("Player 2 VelX = %v, expected friction to stop the racer", p2.Body.VelX)
	}
	if p2.Body.Box.X >= 750 {
		t.Errorf("Player 2 X = %v, expected the racer to have moved left", p2.Body.Box.X)
	}
	if in := m.held.State(m.Match().TickCount()); len(in) != 0 {
		t.Errorf("held keys = %v, expected none", in)
	}
}

func TestModelWinSavesResult(t *testing.T) {
	store := &savedResults{}
	m := newTestModel(t, Options{Level: goalAtSpawn(), Store: store})

	m = tick(t, m)

	if len(store.results) != 1 {
		t.Fatalf("saved %d results, expected 1", len(store.results))
	}
	r := store.results[0]
	if r.Winner != core.Player1 || r.WinnerName != "Player 1" {
		t.Errorf("winner = %v %q, expected Player 1", r.Winner, r.WinnerName)
	}
	if r.Ticks != 1 {
		t.Errorf("Ticks = %d, expected 1", r.Ticks)
	}
	if r.Mode != multiplayer.MatchModeLocal.Key() {
		t.Errorf("Mode = %q, expected %q", r.Mode, multiplayer.MatchModeLocal.Key())
	}
	if r.LevelID != "instant" {
		t.Errorf("LevelID = %q, expected %q", r.LevelID, "instant")
	}

	// Second round is timed from the previous win.
	m = tick(t, m)
	if len(store.results) != 2 || store.results[1].Ticks != 1 {
		t.Errorf("second round = %+v, expected 1 tick", store.results)
	}
	if m.Match().Wins(core.Player1) != 2 {
		t.Errorf("Wins(Player1) = %d, expected 2", m.Match().Wins(core.Player1))
	}
}

func TestModelWinStoreErrorKeepsRacing(t *testing.T) {
	store := &savedResults{err: errors.New("disk full")}
	m := newTestModel(t, Options{Level: goalAtSpawn(), Store: store})

	m = tick(t, m)
	m = tick(t, m)
	if m.Match().TickCount() != 2 {
		t.Errorf("TickCount() = %d, expected 2", m.Match().TickCount())
	}
}

func TestModelAnnouncesWinAfterDelay(t *testing.T) {
	cfg := config.DefaultRaceConfig()
	cfg.Announce.BannerTicks = 3
	m := newTestModel(t, Options{Config: cfg, Level: goalAtSpawn()})

	m = tick(t, m)

	select {
	case evt := <-m.wins:
		if evt.Winner != core.Player1 {
			t.Errorf("announced winner = %v, expected %v", evt.Winner, core.Player1)
		}
		m = update(t, m, WinAnnouncedMsg(evt))
	case <-time.After(time.Second):
		t.Fatal("win was never announced")
	}

	if m.banner != "Player 1 wins!" {
		t.Errorf("banner = %q, expected %q", m.banner, "Player 1 wins!")
	}
	if !strings.Contains(m.View(), "Player 1 wins!") {
		t.Error("View() should show the win banner")
	}

	// The banner clears after BannerTicks.
	for i := 0; i < m.opts.Config.Announce.BannerTicks; i++ {
		m = tick(t, m)
	}
	if m.banner != "" {
		t.Errorf("banner = %q, expected it cleared", m.banner)
	}
}

func TestModelPause(t *testing.T) {
	m := newTestModel(t, Options{})

	m = update(t, m, runeKey("p"))
	m = tick(t, m)
	if m.Match().TickCount() != 0 {
		t.Errorf("TickCount() while paused = %d, expected 0", m.Match().TickCount())
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("View() should show PAUSED")
	}

	m = update(t, m, runeKey("p"))
	m = tick(t, m)
	if m.Match().TickCount() != 1 {
		t.Errorf("TickCount() after resume = %d, expected 1", m.Match().TickCount())
	}
}

func TestModelRestart(t *testing.T) {
	m := newTestModel(t, Options{})

	m = update(t, m, runeKey("d"))
	for i := 0; i < 10; i++ {
		m = tick(t, m)
	}
	m = update(t, m, runeKey("r"))

	p1 := m.Match().Racer(core.Player1)
	if p1.Body.Box.X != 20 || p1.Body.Box.Y != 540 {
		t.Errorf("Player 1 after restart = (%v, %v), expected (20, 540)", p1.Body.Box.X, p1.Body.Box.Y)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, Options{})

	next, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Error("quit should return a command")
	}
	if !next.(Model).IsQuitting() {
		t.Error("IsQuitting() = false, expected true")
	}
	if next.(Model).View() != "" {
		t.Error("View() after quit should be empty")
	}
}

func TestModelWithBot(t *testing.T) {
	store := &savedResults{}
	m := newTestModel(t, Options{
		Level: goalAtSpawn(),
		Store: store,
		Bot: func(l race.Level) (*bot.Bot, error) {
			return bot.NewDefault(core.Player2, l)
		},
	})

	if name := m.Match().Racer(core.Player2).Name; name != "CPU" {
		t.Errorf("Player 2 name = %q, expected %q", name, "CPU")
	}
	if m.bound("ArrowLeft") {
		t.Error("CPU racer's controls should not be bound to the keyboard")
	}
	if !m.bound("a") {
		t.Error("Player 1 controls should stay bound")
	}

	m = tick(t, m)
	if len(store.results) != 1 || store.results[0].Mode != multiplayer.MatchModeVsBot.Key() {
		t.Errorf("results = %+v, expected one %q round", store.results, multiplayer.MatchModeVsBot.Key())
	}
}

func TestModelBotErrorDisablesBot(t *testing.T) {
	m := newTestModel(t, Options{
		Bot: func(l race.Level) (*bot.Bot, error) {
			return bot.New([]byte(`left = 1 / int(tick)`), core.Player2, l)
		},
	})

	m = tick(t, m)
	if m.bot != nil {
		t.Error("bot should be disabled after a script error")
	}
	if m.status == "" {
		t.Error("status should report the script error")
	}
}

func TestModelBotFactoryError(t *testing.T) {
	_, err := NewModel(Options{
		Config: config.DefaultRaceConfig(),
		Level:  race.Towers(),
		Bot: func(l race.Level) (*bot.Bot, error) {
			return bot.New([]byte(`this is not tengo`), core.Player2, l)
		},
	})
	if err == nil {
		t.Error("NewModel() with a broken bot script should fail")
	}
}

func TestModelLevelReload(t *testing.T) {
	changes := make(chan string, 1)
	reloaded := goalAtSpawn()
	m := newTestModel(t, Options{
		Changes: changes,
		Reload:  func() (race.Level, error) { return reloaded, nil },
	})

	m = update(t, m, LevelChangedMsg("levels/instant.yaml"))
	if id := m.Match().Level().ID; id != "instant" {
		t.Errorf("level after reload = %q, expected %q", id, "instant")
	}
	if m.status != "reloaded instant" {
		t.Errorf("status = %q, expected %q", m.status, "reloaded instant")
	}
}

func TestModelLevelReloadFailureKeepsLevel(t *testing.T) {
	m := newTestModel(t, Options{
		Changes: make(chan string),
		Reload:  func() (race.Level, error) { return race.Level{}, errors.New("bad yaml") },
	})

	m = update(t, m, LevelChangedMsg("levels/towers.yaml"))
	if id := m.Match().Level().ID; id != "towers" {
		t.Errorf("level after failed reload = %q, expected %q", id, "towers")
	}
	if !strings.HasPrefix(m.status, "reload failed") {
		t.Errorf("status = %q, expected a reload failure", m.status)
	}
}

func TestNewModelRejectsDegenerateLevel(t *testing.T) {
	l := race.Towers()
	l.Goal.W = 0
	_, err := NewModel(Options{Config: config.DefaultRaceConfig(), Level: l})
	if !errors.Is(err, race.ErrDegenerateBox) {
		t.Errorf("NewModel() error = %v, expected %v", err, race.ErrDegenerateBox)
	}
}
