package config

import (
	_ "embed"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/physics"
)

//go:embed defaults/race.yaml
var defaultRaceYAML []byte

// DefaultRaceConfig returns the classic configuration.
func DefaultRaceConfig() RaceConfig {
	return RaceConfig{
		World: WorldConfig{
			Width:    physics.DefaultWorldWidth,
			Height:   physics.DefaultWorldHeight,
			Gravity:  physics.DefaultGravity,
			Friction: physics.DefaultFriction,
		},
		Player: PlayerConfig{
			Width:        physics.DefaultBodySize,
			Height:       physics.DefaultBodySize,
			MaxSpeed:     physics.DefaultMaxSpeed,
			JumpStrength: physics.DefaultJumpStrength,
			Accel:        physics.DefaultAccel,
			Names:        []string{"Player 1", "Player 2"},
		},
		Announce: AnnounceConfig{
			DelayMS:     50,
			FreezeTicks: 0,
			BannerTicks: 120,
		},
		Controls: ControlsConfig{
			Player1:   core.DefaultBindings(core.Player1),
			Player2:   core.DefaultBindings(core.Player2),
			HoldTicks: 8,
		},
		Online: OnlineConfig{
			RoundsToWin: 3,
			TickRate:    60,
		},
	}
}
