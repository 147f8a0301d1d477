package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tower-race/internal/multiplayer"
)

// MenuItem is a selectable level.
type MenuItem struct {
	LevelID string
	Name    string
	Source  string // "built-in" or a file path
}

// menuModes are the local modes the menu cycles through.
var menuModes = []multiplayer.MatchMode{
	multiplayer.MatchModeLocal,
	multiplayer.MatchModeVsBot,
}

// MenuModel is the Bubble Tea model for the level picker.
type MenuModel struct {
	items       []MenuItem
	cursor      int
	mode        int // Index into menuModes
	width       int
	height      int
	quitting    bool
	selected    *MenuItem
	openResults bool
}

// NewMenuModel creates a level picker.
func NewMenuModel(items []MenuItem, width, height int) MenuModel {
	return MenuModel{
		items:  items,
		width:  width,
		height: height,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionMode:
		m.mode = (m.mode + 1) % len(menuModes)

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}

	case MenuActionResults:
		m.openResults = true
		return m, tea.Quit
	}

	return m, nil
}

var (
	menuTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
	menuCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
)

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render("T O W E R   R A C E"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("Mode: < %s >", m.Mode()), m.width))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(centerText(dimStyle.Render("No levels found."), m.width))
		b.WriteString("\n")
	}

	for i, item := range m.items {
		line := "  " + item.Name
		if item.Source != "" && item.Source != "built-in" {
			line += dimStyle.Render(" (file)")
		}
		if i == m.cursor {
			line = menuCursorStyle.Render("> " + item.Name)
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Level  |  M: Mode  |  Enter: Race  |  Tab: Results  |  Q: Quit"
	b.WriteString(centerText(dimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Mode returns the currently chosen mode.
func (m MenuModel) Mode() multiplayer.MatchMode {
	return menuModes[m.mode]
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsResults returns true if user asked for the results table.
func (m MenuModel) WantsResults() bool {
	return m.openResults
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	LevelID      string
	Mode         multiplayer.MatchMode
	WantsResults bool
	Quit         bool
}

// RunMenu runs the level picker and returns the selection.
func RunMenu(items []MenuItem, width, height int) (MenuResult, error) {
	model := NewMenuModel(items, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Quit: true}, nil
	}

	result := MenuResult{Mode: m.Mode()}

	switch {
	case m.WantsResults():
		result.WantsResults = true
	case m.IsQuitting() || m.Selected() == nil:
		result.Quit = true
	default:
		result.LevelID = m.Selected().LevelID
	}

	return result, nil
}
