package race

import (
	"testing"
	"time"

	"github.com/vovakirdan/tower-race/internal/core"
)

func TestDeferredAnnouncerDelivers(t *testing.T) {
	got := make(chan WinEvent, 1)
	a := NewDeferredAnnouncer(10*time.Millisecond, func(evt WinEvent) {
		got <- evt
	})

	a.Announce(WinEvent{Winner: core.Player2, Name: "Player 2", Tick: 7})
	if a.Pending() != 1 {
		t.Errorf("Pending() = %d, expected 1", a.Pending())
	}

	select {
	case evt := <-got:
		if evt.Winner != core.Player2 || evt.Tick != 7 {
			t.Errorf("delivered %+v, expected Player 2 at tick 7", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("announcement was not delivered")
	}
}

func TestDeferredAnnouncerStop(t *testing.T) {
	got := make(chan WinEvent, 1)
	a := NewDeferredAnnouncer(time.Hour, func(evt WinEvent) {
		got <- evt
	})

	a.Announce(WinEvent{Winner: core.Player1})
	a.Stop()

	if a.Pending() != 0 {
		t.Errorf("Pending() = %d, expected 0 after Stop", a.Pending())
	}
	select {
	case evt := <-got:
		t.Errorf("delivered %+v after Stop", evt)
	default:
	}
}

func TestDeferredAnnouncerDefaultDelay(t *testing.T) {
	a := NewDeferredAnnouncer(0, nil)
	if a.delay != DefaultAnnounceDelay {
		t.Errorf("delay = %v, expected %v", a.delay, DefaultAnnounceDelay)
	}
}

func TestAnnouncerFunc(t *testing.T) {
	var got WinEvent
	var a Announcer = AnnouncerFunc(func(evt WinEvent) { got = evt })
	a.Announce(WinEvent{Name: "Player 1"})
	if got.Name != "Player 1" {
		t.Errorf("AnnouncerFunc received %q, expected %q", got.Name, "Player 1")
	}
}
