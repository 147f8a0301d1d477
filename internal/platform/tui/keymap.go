package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/multiplayer"
)

// ControlForKey translates a key message into the control identifier that
// bindings use: arrow keys become "ArrowUp", "ArrowLeft" and so on, single
// characters are lowercased. Returns "" for keys no binding can name.
func ControlForKey(msg tea.KeyMsg) core.Control {
	switch msg.Type {
	case tea.KeyUp:
		return "ArrowUp"
	case tea.KeyDown:
		return "ArrowDown"
	case tea.KeyLeft:
		return "ArrowLeft"
	case tea.KeyRight:
		return "ArrowRight"
	case tea.KeySpace:
		return " "
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			return core.Control(strings.ToLower(string(msg.Runes)))
		}
	}
	return ""
}

// ActionForKey maps a key to a remote racer action. Online racers may use
// either WASD or the arrow keys.
func ActionForKey(msg tea.KeyMsg) (multiplayer.Action, bool) {
	switch ControlForKey(msg) {
	case "w", "ArrowUp", " ":
		return multiplayer.ActionUp, true
	case "a", "ArrowLeft":
		return multiplayer.ActionLeft, true
	case "d", "ArrowRight":
		return multiplayer.ActionRight, true
	}
	return 0, false
}

// KeyMap defines the non-racing keys of a race screen.
type KeyMap struct {
	Quit    key.Binding
	Pause   key.Binding
	Restart key.Binding
	Back    key.Binding
	Help    key.Binding

	// Racing keys, shown in the full help only.
	Racers [2][]key.Binding
}

// DefaultKeyMap returns the race screen keys with help entries for both
// racers' bindings.
func DefaultKeyMap(names [2]string, keys [2]core.Bindings) KeyMap {
	km := KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "controls"),
		),
	}
	for i := range keys {
		km.Racers[i] = racerBindings(names[i], keys[i])
	}
	return km
}

// racerBindings builds help-only bindings for one racer.
func racerBindings(name string, keys core.Bindings) []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys(string(keys.Up)), key.WithHelp(keyLabel(keys.Up), name+" jump")),
		key.NewBinding(key.WithKeys(string(keys.Left)), key.WithHelp(keyLabel(keys.Left), name+" left")),
		key.NewBinding(key.WithKeys(string(keys.Right)), key.WithHelp(keyLabel(keys.Right), name+" right")),
	}
}

// keyLabel returns a short display name for a control.
func keyLabel(c core.Control) string {
	switch c {
	case "ArrowUp":
		return "↑"
	case "ArrowDown":
		return "↓"
	case "ArrowLeft":
		return "←"
	case "ArrowRight":
		return "→"
	case " ":
		return "space"
	case "":
		return "-"
	}
	return string(c)
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Restart, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.Racers[0],
		k.Racers[1],
		{k.Pause, k.Restart, k.Help, k.Quit},
	}
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
	MenuActionMode
	MenuActionResults
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "m", "left", "right":
		return MenuActionMode
	case "tab":
		return MenuActionResults
	}
	return MenuActionNone
}
