package core

import "sync"

// Control is a control identifier, the name of a physical key as the input
// source reports it (e.g. "w", "a", "ArrowUp"). Bindings map racers to controls.
type Control string

// Bindings are the three controls a racer responds to.
type Bindings struct {
	Up    Control `yaml:"up"`
	Left  Control `yaml:"left"`
	Right Control `yaml:"right"`
}

// DefaultBindings returns the classic two-player keyboard layout:
// WASD for Player 1 and the arrow keys for Player 2.
func DefaultBindings(p PlayerID) Bindings {
	if p == Player2 {
		return Bindings{Up: "ArrowUp", Left: "ArrowLeft", Right: "ArrowRight"}
	}
	return Bindings{Up: "w", Left: "a", Right: "d"}
}

// IsZero reports whether no control is bound at all.
func (b Bindings) IsZero() bool {
	return b.Up == "" && b.Left == "" && b.Right == ""
}

// InputState maps control identifiers to their pressed state.
// It is read-only from the simulation's point of view; a control that was
// never set (or is bound to "") reads as not pressed.
type InputState map[Control]bool

// NewInputState creates an empty input state.
func NewInputState() InputState {
	return make(InputState)
}

// Pressed returns whether the control is currently held.
func (s InputState) Pressed(c Control) bool {
	if s == nil || c == "" {
		return false
	}
	return s[c]
}

// Press marks a control as held.
func (s InputState) Press(c Control) {
	if c == "" {
		return
	}
	s[c] = true
}

// Release marks a control as not held.
func (s InputState) Release(c Control) {
	delete(s, c)
}

// Clone returns an independent copy of the state.
func (s InputState) Clone() InputState {
	clone := make(InputState, len(s))
	for k, v := range s {
		if v {
			clone[k] = true
		}
	}
	return clone
}

// Merge copies every pressed control of other into s.
func (s InputState) Merge(other InputState) {
	for k, v := range other {
		if v {
			s[k] = true
		}
	}
}

// SyncInput guards an InputState written by one goroutine (the input source)
// and read once per tick by another (the simulation).
type SyncInput struct {
	mu    sync.Mutex
	state InputState
}

// NewSyncInput creates an empty guarded input state.
func NewSyncInput() *SyncInput {
	return &SyncInput{state: NewInputState()}
}

// Set updates the pressed state of a control.
func (s *SyncInput) Set(c Control, pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pressed {
		s.state.Press(c)
	} else {
		s.state.Release(c)
	}
}

// Snapshot returns a copy of the current state for one tick.
func (s *SyncInput) Snapshot() InputState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}
