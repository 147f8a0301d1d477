package race

import (
	"fmt"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/physics"
)

// Options configures a match.
type Options struct {
	World     physics.World
	Tuning    physics.Tuning
	BodyW     float64
	BodyH     float64
	Names     [2]string
	Announcer Announcer

	// FreezeTicks is the number of ticks skipped after a win while the
	// announcement is on screen. Zero keeps the simulation running.
	FreezeTicks int
}

// DefaultOptions returns the classic world, tuning and 30x30 racers.
func DefaultOptions() Options {
	return Options{
		World:  physics.DefaultWorld(),
		Tuning: physics.DefaultTuning(),
		BodyW:  physics.DefaultBodySize,
		BodyH:  physics.DefaultBodySize,
		Names:  [2]string{core.Player1.String(), core.Player2.String()},
	}
}

// Racer is one player-controlled body.
type Racer struct {
	ID       core.PlayerID
	Name     string
	Color    core.Color
	Spawn    physics.AABB
	Body     physics.Body
	Bindings core.Bindings
	Wins     int
}

// reset puts the racer back at its spawn, at rest.
func (r *Racer) reset() {
	r.Body.Reset(r.Spawn.X, r.Spawn.Y)
}

// TickResult reports what happened during one tick.
type TickResult struct {
	Tick     uint64
	Winner   core.PlayerID   // PlayerNone if nobody touched the goal
	Winners  []core.PlayerID // Every racer overlapping the goal this tick
	Grounded [2]bool
	Frozen   bool
}

// Match is the race controller. It is not safe for concurrent use; hosts
// that read input from several goroutines pass a snapshot to Tick.
type Match struct {
	level     Level
	opts      Options
	world     physics.World
	platforms []physics.AABB
	racers    [2]*Racer
	tick      uint64
	frozen    int
}

// New creates a match on the given level. The level is validated and
// copied; racers start at their spawns.
func New(level Level, opts Options) (*Match, error) {
	if err := level.Validate(); err != nil {
		return nil, err
	}
	if opts.BodyW <= 0 || opts.BodyH <= 0 {
		return nil, fmt.Errorf("racer body %gx%g: %w", opts.BodyW, opts.BodyH, ErrDegenerateBox)
	}
	if opts.FreezeTicks < 0 {
		opts.FreezeTicks = 0
	}

	world := opts.World
	if level.Width > 0 {
		world.Width = level.Width
	}
	if level.Height > 0 {
		world.Height = level.Height
	}

	m := &Match{
		level:     level,
		opts:      opts,
		world:     world,
		platforms: append([]physics.AABB(nil), level.Platforms...),
	}

	for i, id := range core.Players {
		keys := level.Bindings[i]
		if keys.IsZero() {
			keys = core.DefaultBindings(id)
		}
		name := opts.Names[i]
		if name == "" {
			name = id.String()
		}
		spawn := physics.NewAABB(level.Spawns[i].X, level.Spawns[i].Y, opts.BodyW, opts.BodyH)
		m.racers[i] = &Racer{
			ID:       id,
			Name:     name,
			Color:    core.PlayerColor(id),
			Spawn:    spawn,
			Body:     physics.NewBody(spawn, opts.Tuning),
			Bindings: keys,
		}
	}

	return m, nil
}

// Tick advances the match by one frame.
//
// Both racers are integrated, then each is tested against the goal. On a
// win the announcer is notified and both racers are reset before Tick
// returns. If both racers reach the goal on the same tick Player 1 wins.
func (m *Match) Tick(in core.InputState) TickResult {
	m.tick++
	res := TickResult{Tick: m.tick}

	if m.frozen > 0 {
		m.frozen--
		res.Frozen = true
		res.Grounded = m.grounded()
		return res
	}

	for _, r := range m.racers {
		physics.Integrate(&r.Body, in, r.Bindings, m.platforms, m.world)
	}
	res.Grounded = m.grounded()

	for _, r := range m.racers {
		if physics.Overlap(r.Body.Box, m.level.Goal) {
			res.Winners = append(res.Winners, r.ID)
		}
	}
	if len(res.Winners) == 0 {
		return res
	}

	res.Winner = res.Winners[0]
	winner := m.racers[res.Winner.Index()]
	winner.Wins++

	if m.opts.Announcer != nil {
		m.opts.Announcer.Announce(WinEvent{
			Winner: winner.ID,
			Name:   winner.Name,
			Tick:   m.tick,
		})
	}

	m.Reset()
	m.frozen = m.opts.FreezeTicks

	return res
}

func (m *Match) grounded() [2]bool {
	return [2]bool{m.racers[0].Body.Grounded, m.racers[1].Body.Grounded}
}

// Reset returns both racers to their spawns with zero velocity.
// Win tallies are kept.
func (m *Match) Reset() {
	for _, r := range m.racers {
		r.reset()
	}
}

// Racers returns both racers in player order.
func (m *Match) Racers() [2]*Racer {
	return m.racers
}

// Racer returns the racer for id, or nil.
func (m *Match) Racer(id core.PlayerID) *Racer {
	if !id.Valid() {
		return nil
	}
	return m.racers[id.Index()]
}

// Platforms returns a copy of the static platform boxes.
func (m *Match) Platforms() []physics.AABB {
	return append([]physics.AABB(nil), m.platforms...)
}

// Goal returns the goal box.
func (m *Match) Goal() physics.AABB {
	return m.level.Goal
}

// Level returns the level the match was created with.
func (m *Match) Level() Level {
	return m.level
}

// World returns the effective world constants.
func (m *Match) World() physics.World {
	return m.world
}

// Wins returns the number of rounds won by id in this match.
func (m *Match) Wins(id core.PlayerID) int {
	if r := m.Racer(id); r != nil {
		return r.Wins
	}
	return 0
}

// TickCount returns the number of ticks processed.
func (m *Match) TickCount() uint64 {
	return m.tick
}

// Frozen reports whether the next tick will be skipped.
func (m *Match) Frozen() bool {
	return m.frozen > 0
}
