package race

import (
	"fmt"
	"sync"
	"time"

	"github.com/vovakirdan/tower-race/internal/core"
)

// DefaultAnnounceDelay lets one more frame render before the win is shown.
const DefaultAnnounceDelay = 50 * time.Millisecond

// WinEvent is emitted when a racer touches the goal.
type WinEvent struct {
	Winner core.PlayerID
	Name   string
	Tick   uint64
}

// Message returns the text shown to players.
func (e WinEvent) Message() string {
	return fmt.Sprintf("%s wins!", e.Name)
}

// Announcer presents win events. Announce must not block the simulation.
type Announcer interface {
	Announce(evt WinEvent)
}

// AnnouncerFunc adapts a function to the Announcer interface.
type AnnouncerFunc func(WinEvent)

// Announce calls f(evt).
func (f AnnouncerFunc) Announce(evt WinEvent) {
	f(evt)
}

// DeferredAnnouncer hands events to a sink after a fixed delay, on a timer
// goroutine. The match keeps ticking while an announcement is pending.
type DeferredAnnouncer struct {
	delay time.Duration
	sink  func(WinEvent)

	mu      sync.Mutex
	pending map[*time.Timer]struct{}
}

// NewDeferredAnnouncer creates an announcer that calls sink after delay.
// A non-positive delay uses DefaultAnnounceDelay.
func NewDeferredAnnouncer(delay time.Duration, sink func(WinEvent)) *DeferredAnnouncer {
	if delay <= 0 {
		delay = DefaultAnnounceDelay
	}
	return &DeferredAnnouncer{
		delay:   delay,
		sink:    sink,
		pending: make(map[*time.Timer]struct{}),
	}
}

// Announce schedules delivery of evt and returns immediately.
func (a *DeferredAnnouncer) Announce(evt WinEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var t *time.Timer
	t = time.AfterFunc(a.delay, func() {
		a.mu.Lock()
		_, live := a.pending[t]
		delete(a.pending, t)
		a.mu.Unlock()
		if live && a.sink != nil {
			a.sink(evt)
		}
	})
	a.pending[t] = struct{}{}
}

// Pending returns the number of announcements not yet delivered.
func (a *DeferredAnnouncer) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Stop cancels every pending announcement.
func (a *DeferredAnnouncer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for t := range a.pending {
		t.Stop()
		delete(a.pending, t)
	}
}
