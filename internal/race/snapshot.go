package race

import "github.com/vovakirdan/tower-race/internal/physics"

// RacerState is the broadcastable state of one racer.
type RacerState struct {
	Name     string
	Box      physics.AABB
	VelX     float64
	VelY     float64
	Grounded bool
	Wins     int
}

// Snapshot is a flat copy of the dynamic match state.
type Snapshot struct {
	Tick    uint64
	LevelID string
	Frozen  bool
	Racers  [2]RacerState
}

// Snapshot returns a copy of the current state.
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		Tick:    m.tick,
		LevelID: m.level.ID,
		Frozen:  m.frozen > 0,
	}
	for i, r := range m.racers {
		s.Racers[i] = RacerState{
			Name:     r.Name,
			Box:      r.Body.Box,
			VelX:     r.Body.VelX,
			VelY:     r.Body.VelY,
			Grounded: r.Body.Grounded,
			Wins:     r.Wins,
		}
	}
	return s
}
