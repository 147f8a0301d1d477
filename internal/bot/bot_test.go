package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/d5/tengo/v2"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/levels"
	"github.com/vovakirdan/tower-race/internal/physics"
	"github.com/vovakirdan/tower-race/internal/race"
)

func snapshotWith(id core.PlayerID, box physics.AABB, grounded bool) race.Snapshot {
	var snap race.Snapshot
	snap.Racers[id.Index()] = race.RacerState{Box: box, Grounded: grounded}
	return snap
}

func TestStepMapsDecisionToBindings(t *testing.T) {
	src := []byte(`
right = true
jump = self.grounded
`)
	b, err := New(src, core.Player2, race.Towers())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	in := core.InputState{"ArrowLeft": true, "w": true}
	snap := snapshotWith(core.Player2, physics.NewAABB(750, 550, 30, 30), true)
	if err := b.Step(snap, in); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	expected := map[core.Control]bool{
		"ArrowRight": true,
		"ArrowUp":    true,
		"ArrowLeft":  false,
		"w":          true, // Player 1 keys are untouched
	}
	for c, want := range expected {
		if got := in.Pressed(c); got != want {
			t.Errorf("Pressed(%s) = %v, expected %v", c, got, want)
		}
	}
}

func TestDecideResetsOutputsEachTick(t *testing.T) {
	src := []byte(`
if tick == 1 { left = true }
`)
	b, err := New(src, core.Player1, race.Towers())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	snap := snapshotWith(core.Player1, physics.NewAABB(0, 0, 30, 30), false)
	snap.Tick = 1
	d, err := b.Decide(snap)
	if err != nil || !d.Left {
		t.Fatalf("Decide(tick 1) = %+v, %v; expected left", d, err)
	}

	snap.Tick = 2
	d, err = b.Decide(snap)
	if err != nil || d.Left {
		t.Errorf("Decide(tick 2) = %+v, %v; expected no input", d, err)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New([]byte("left = ("), core.Player1, race.Towers()); err == nil {
		t.Error("New() with a syntax error should fail")
	}
	if _, err := NewDefault(core.PlayerNone, race.Towers()); err == nil {
		t.Error("NewDefault(PlayerNone) should fail")
	}
}

func TestDecideRuntimeErrors(t *testing.T) {
	b, err := New([]byte("x := 1 / int(tick)"), core.Player1, race.Towers())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := b.Decide(race.Snapshot{}); err == nil {
		t.Error("Decide() with division by zero should fail")
	}

	b, err = New([]byte("for { }"), core.Player1, race.Towers())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	b.budget = 10 * time.Millisecond
	_, err = b.Decide(race.Snapshot{})
	if err == nil || !strings.Contains(err.Error(), "bot: run") {
		t.Errorf("Decide() with an endless loop error = %v, expected a run error", err)
	}
}

func TestDefaultScriptDecisions(t *testing.T) {
	tests := []struct {
		name     string
		box      physics.AABB
		grounded bool
		expected Decision
	}{
		{
			// Under the left ledge with the wall behind: walk out to the right.
			name:     "walk out from under ledge",
			box:      physics.NewAABB(20, 550, 30, 30),
			grounded: true,
			expected: Decision{Right: true},
		},
		{
			name:     "jump toward ledge",
			box:      physics.NewAABB(265, 550, 30, 30),
			grounded: true,
			expected: Decision{Left: true, Jump: true},
		},
		{
			// No platform picked yet: drift toward the goal column.
			name:     "airborne without a target",
			box:      physics.NewAABB(265, 520, 30, 30),
			grounded: false,
			expected: Decision{Right: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewDefault(core.Player1, race.Towers())
			if err != nil {
				t.Fatalf("NewDefault() error = %v", err)
			}
			got, err := b.Decide(snapshotWith(core.Player1, tt.box, tt.grounded))
			if err != nil {
				t.Fatalf("Decide() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Decide() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestDefaultScriptWinsBuiltinLevels(t *testing.T) {
	const maxTicks = 3600

	for _, lvl := range levels.Builtins() {
		for _, id := range core.Players {
			t.Run(lvl.ID+"/"+id.String(), func(t *testing.T) {
				m, err := race.New(lvl.Level, race.DefaultOptions())
				if err != nil {
					t.Fatalf("race.New() error = %v", err)
				}
				b, err := NewDefault(id, lvl.Level)
				if err != nil {
					t.Fatalf("NewDefault() error = %v", err)
				}

				minY := m.Racer(id).Body.Box.Y
				for tick := 1; tick <= maxTicks; tick++ {
					in := core.NewInputState()
					if err := b.Step(m.Snapshot(), in); err != nil {
						t.Fatalf("Step() error = %v", err)
					}
					if res := m.Tick(in); res.Winner == id {
						return
					}
					minY = min(minY, m.Racer(id).Body.Box.Y)
				}
				t.Errorf("no win in %d ticks, highest Y = %.1f", maxTicks, minY)
			})
		}
	}
}

func TestDeclareRejectsUnsupportedGlobal(t *testing.T) {
	script := tengo.NewScript([]byte("x := 1"))
	err := declare(script, []global{
		{"ok", 1},
		{"bad", make(chan int)},
		{"never", 2},
	})
	if err == nil || !strings.Contains(err.Error(), "global bad") {
		t.Errorf("declare() error = %v, expected it to name the bad global", err)
	}
}
