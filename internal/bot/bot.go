// Package bot drives a racer from a Tengo script. The script is compiled
// once and run every tick with the racer, goal and platforms as globals;
// it answers by setting the globals left, right and jump.
package bot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/physics"
	"github.com/vovakirdan/tower-race/internal/race"
)

// DefaultBudget bounds a single script run.
const DefaultBudget = 20 * time.Millisecond

// Decision is what the script asked for this tick.
type Decision struct {
	Left  bool
	Right bool
	Jump  bool
}

// Bot is a scripted controller for one racer. It is not safe for
// concurrent use.
type Bot struct {
	id       core.PlayerID
	keys     core.Bindings
	compiled *tengo.Compiled
	budget   time.Duration
}

// New compiles src for the racer id on level. Output is mapped onto the
// level's bindings for that racer (or the defaults if unset).
//
// The script also sees a memory map that keeps its contents between runs.
func New(src []byte, id core.PlayerID, level race.Level) (*Bot, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("bot: invalid player %v", id)
	}

	if level.Width <= 0 {
		level.Width = physics.DefaultWorldWidth
	}
	if level.Height <= 0 {
		level.Height = physics.DefaultWorldHeight
	}

	script := tengo.NewScript(src)
	err := declare(script, []global{
		{"self", racerMap(race.RacerState{})},
		{"goal", boxMap(level.Goal)},
		{"platforms", platformList(level.Platforms)},
		{"world", map[string]interface{}{"w": level.Width, "h": level.Height}},
		{"memory", map[string]interface{}{"support": -1, "target": -1}},
		{"tick", 0},
		{"left", false},
		{"right", false},
		{"jump", false},
	})
	if err != nil {
		return nil, fmt.Errorf("bot: compile: %w", err)
	}

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("bot: compile: %w", err)
	}

	keys := level.Bindings[id.Index()]
	if keys.IsZero() {
		keys = core.DefaultBindings(id)
	}

	return &Bot{
		id:       id,
		keys:     keys,
		compiled: compiled,
		budget:   DefaultBudget,
	}, nil
}

// NewDefault builds a bot running DefaultScript.
func NewDefault(id core.PlayerID, level race.Level) (*Bot, error) {
	return New([]byte(DefaultScript), id, level)
}

// LoadScript reads a script file.
func LoadScript(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bot: read script %s: %w", path, err)
	}
	return data, nil
}

// ID returns the racer this bot controls.
func (b *Bot) ID() core.PlayerID {
	return b.id
}

// Decide runs the script against the snapshot.
func (b *Bot) Decide(snap race.Snapshot) (Decision, error) {
	c := b.compiled
	if err := c.Set("self", racerMap(snap.Racers[b.id.Index()])); err != nil {
		return Decision{}, err
	}
	if err := c.Set("tick", int64(snap.Tick)); err != nil {
		return Decision{}, err
	}
	for _, name := range []string{"left", "right", "jump"} {
		if err := c.Set(name, false); err != nil {
			return Decision{}, err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.budget)
	defer cancel()
	if err := c.RunContext(ctx); err != nil {
		return Decision{}, fmt.Errorf("bot: run: %w", err)
	}

	return Decision{
		Left:  c.Get("left").Bool(),
		Right: c.Get("right").Bool(),
		Jump:  c.Get("jump").Bool(),
	}, nil
}

// Step runs the script and writes the decision into in using the racer's
// bindings. Other controls in in are left alone.
func (b *Bot) Step(snap race.Snapshot, in core.InputState) error {
	d, err := b.Decide(snap)
	if err != nil {
		return err
	}
	set(in, b.keys.Left, d.Left)
	set(in, b.keys.Right, d.Right)
	set(in, b.keys.Up, d.Jump)
	return nil
}

// global is a variable made visible to the script.
type global struct {
	name  string
	value interface{}
}

// declare adds vars to script and stops at the first one tengo rejects.
func declare(script *tengo.Script, vars []global) error {
	for _, v := range vars {
		if err := script.Add(v.name, v.value); err != nil {
			return fmt.Errorf("global %s: %w", v.name, err)
		}
	}
	return nil
}

func set(in core.InputState, c core.Control, pressed bool) {
	if pressed {
		in.Press(c)
	} else {
		in.Release(c)
	}
}

func racerMap(r race.RacerState) map[string]interface{} {
	return map[string]interface{}{
		"x":        r.Box.X,
		"y":        r.Box.Y,
		"w":        r.Box.W,
		"h":        r.Box.H,
		"vx":       r.VelX,
		"vy":       r.VelY,
		"grounded": r.Grounded,
	}
}

func boxMap(b physics.AABB) map[string]interface{} {
	return map[string]interface{}{"x": b.X, "y": b.Y, "w": b.W, "h": b.H}
}

func platformList(boxes []physics.AABB) []interface{} {
	out := make([]interface{}, len(boxes))
	for i, b := range boxes {
		out[i] = boxMap(b)
	}
	return out
}
