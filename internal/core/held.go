package core

// DefaultHoldTicks is how long a key stays held after its last press event.
// Terminal auto-repeat fires roughly every 30-50ms, so this bridges the gap
// between repeats at 60 ticks per second.
const DefaultHoldTicks = 8

// HeldKeys turns press events into a held state for input sources that
// never report releases. Each press keeps the control held for a fixed
// number of ticks.
type HeldKeys struct {
	hold  uint64
	until map[Control]uint64
}

// NewHeldKeys creates a tracker. A non-positive hold uses DefaultHoldTicks.
func NewHeldKeys(hold int) *HeldKeys {
	if hold <= 0 {
		hold = DefaultHoldTicks
	}
	return &HeldKeys{
		hold:  uint64(hold),
		until: make(map[Control]uint64),
	}
}

// Press records a press of c at tick now.
func (h *HeldKeys) Press(c Control, now uint64) {
	if c == "" {
		return
	}
	h.until[c] = now + h.hold
}

// Release drops c immediately.
func (h *HeldKeys) Release(c Control) {
	delete(h.until, c)
}

// Clear drops every control.
func (h *HeldKeys) Clear() {
	for c := range h.until {
		delete(h.until, c)
	}
}

// State returns the controls held at tick now and forgets expired ones.
func (h *HeldKeys) State(now uint64) InputState {
	in := make(InputState, len(h.until))
	for c, until := range h.until {
		if now >= until {
			delete(h.until, c)
			continue
		}
		in[c] = true
	}
	return in
}
