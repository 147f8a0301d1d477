package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tower-race/internal/multiplayer"
	"github.com/vovakirdan/tower-race/internal/storage"
)

var testItems = []MenuItem{
	{LevelID: "ladder", Name: "Ladder", Source: "built-in"},
	{LevelID: "towers", Name: "Symmetric Towers", Source: "built-in"},
	{LevelID: "mine", Name: "My Level", Source: "levels/mine.yaml"},
}

func menuUpdate(t *testing.T, m MenuModel, msg tea.Msg) MenuModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(MenuModel)
}

func TestMenuSelect(t *testing.T) {
	m := NewMenuModel(testItems, 80, 24)

	m = menuUpdate(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = menuUpdate(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = menuUpdate(t, m, tea.KeyMsg{Type: tea.KeyDown}) // Stays on the last item
	m = menuUpdate(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = menuUpdate(t, m, runeKey("m"))
	m = menuUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Selected() == nil || m.Selected().LevelID != "towers" {
		t.Errorf("Selected() = %+v, expected towers", m.Selected())
	}
	if m.Mode() != multiplayer.MatchModeVsBot {
		t.Errorf("Mode() = %v, expected %v", m.Mode(), multiplayer.MatchModeVsBot)
	}
}

func TestMenuModeCycles(t *testing.T) {
	m := NewMenuModel(testItems, 80, 24)
	for range menuModes {
		m = menuUpdate(t, m, runeKey("m"))
	}
	if m.Mode() != multiplayer.MatchModeLocal {
		t.Errorf("Mode() = %v, expected %v", m.Mode(), multiplayer.MatchModeLocal)
	}
}

func TestMenuResultsAndQuit(t *testing.T) {
	m := menuUpdate(t, NewMenuModel(testItems, 80, 24), tea.KeyMsg{Type: tea.KeyTab})
	if !m.WantsResults() {
		t.Error("WantsResults() = false, expected true")
	}

	m = menuUpdate(t, NewMenuModel(testItems, 80, 24), runeKey("q"))
	if !m.IsQuitting() {
		t.Error("IsQuitting() = false, expected true")
	}
}

func TestMenuView(t *testing.T) {
	view := NewMenuModel(testItems, 80, 24).View()
	for _, want := range []string{"Ladder", "Symmetric Towers", "My Level (file)", "Mode: < Local"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	empty := NewMenuModel(nil, 80, 24)
	if !strings.Contains(empty.View(), "No levels found.") {
		t.Error("empty menu should say no levels were found")
	}
	empty = menuUpdate(t, empty, tea.KeyMsg{Type: tea.KeyEnter})
	if empty.Selected() != nil {
		t.Error("empty menu should not select anything")
	}
}

type fakeResults struct {
	byLevel map[string][]storage.RaceResult
	err     error
}

func (f fakeResults) ResultsByLevel(levelID string, limit int) ([]storage.RaceResult, error) {
	return f.byLevel[levelID], f.err
}

func (f fakeResults) WinCounts(levelID string) ([]storage.WinCount, error) {
	counts := map[string]int{}
	var order []string
	for _, r := range f.byLevel[levelID] {
		if counts[r.WinnerName] == 0 {
			order = append(order, r.WinnerName)
		}
		counts[r.WinnerName]++
	}
	out := make([]storage.WinCount, 0, len(order))
	for _, name := range order {
		out = append(out, storage.WinCount{Name: name, Wins: counts[name]})
	}
	return out, f.err
}

func TestResultsModelSwitchesLevels(t *testing.T) {
	src := fakeResults{byLevel: map[string][]storage.RaceResult{
		"ladder": {{WinnerName: "Red", Ticks: 400, Mode: "local"}},
		"towers": {
			{WinnerName: "Blue", Ticks: 300, Mode: "online"},
			{WinnerName: "Blue", Ticks: 350, Mode: "online"},
		},
	}}

	m := NewResultsModel(src, testItems, 100, 30)
	if m.Level() != "ladder" || len(m.results) != 1 {
		t.Errorf("initial level = %q with %d rows, expected ladder with 1", m.Level(), len(m.results))
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(ResultsModel)
	if m.Level() != "towers" || len(m.results) != 2 {
		t.Errorf("next level = %q with %d rows, expected towers with 2", m.Level(), len(m.results))
	}
	if len(m.counts) != 1 || m.counts[0].Wins != 2 {
		t.Errorf("counts = %+v, expected Blue with 2", m.counts)
	}
	if !strings.Contains(m.View(), "Blue") {
		t.Error("View() should list the winner")
	}

	// Wraps backwards past the first level.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(ResultsModel)
	if m.Level() != "mine" {
		t.Errorf("level after wrap = %q, expected %q", m.Level(), "mine")
	}
	if !strings.Contains(m.View(), "No rounds recorded yet.") {
		t.Error("empty level should say no rounds were recorded")
	}
}

func TestResultsModelLoadError(t *testing.T) {
	m := NewResultsModel(fakeResults{err: errors.New("locked")}, testItems, 60, 20)
	if !strings.Contains(m.View(), "locked") {
		t.Error("View() should show the load error")
	}
}

func TestResultsModelBack(t *testing.T) {
	next, _ := NewResultsModel(nil, testItems, 80, 24).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(ResultsModel).IsGoingBack() {
		t.Error("IsGoingBack() = false, expected true")
	}
}
