// Package config provides YAML-based race configuration loading and
// tuning presets.
package config

import (
	"time"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/physics"
	"github.com/vovakirdan/tower-race/internal/race"
)

// RaceConfig contains all configuration for a race.
type RaceConfig struct {
	World    WorldConfig    `yaml:"world"`
	Player   PlayerConfig   `yaml:"player"`
	Announce AnnounceConfig `yaml:"announce"`
	Controls ControlsConfig `yaml:"controls"`
	Online   OnlineConfig   `yaml:"online"`
}

// WorldConfig defines the world size and the forces applied every tick.
type WorldConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Gravity  float64 `yaml:"gravity"`
	Friction float64 `yaml:"friction"` // Horizontal velocity multiplier per tick
}

// PlayerConfig defines racer size and movement.
type PlayerConfig struct {
	Width        float64  `yaml:"width"`
	Height       float64  `yaml:"height"`
	MaxSpeed     float64  `yaml:"max_speed"`
	JumpStrength float64  `yaml:"jump_strength"`
	Accel        float64  `yaml:"accel"`
	Names        []string `yaml:"names"`
}

// AnnounceConfig defines how wins are announced.
type AnnounceConfig struct {
	DelayMS     int `yaml:"delay_ms"`
	FreezeTicks int `yaml:"freeze_ticks"` // Ticks skipped after a win; 0 keeps racing
	BannerTicks int `yaml:"banner_ticks"` // How long the TUI keeps the banner up
}

// ControlsConfig defines key bindings.
type ControlsConfig struct {
	Player1 core.Bindings `yaml:"player1"`
	Player2 core.Bindings `yaml:"player2"`

	// HoldTicks is how long a key counts as held after its last press event.
	// Terminals report presses and auto-repeat, never releases.
	HoldTicks int `yaml:"hold_ticks"`
}

// OnlineConfig defines SSH race parameters.
type OnlineConfig struct {
	RoundsToWin int `yaml:"rounds_to_win"`
	TickRate    int `yaml:"tick_rate"`
}

// PhysicsWorld converts the world section.
func (c RaceConfig) PhysicsWorld() physics.World {
	return physics.World{
		Width:    c.World.Width,
		Height:   c.World.Height,
		Gravity:  c.World.Gravity,
		Friction: c.World.Friction,
	}
}

// Tuning converts the movement part of the player section.
func (c RaceConfig) Tuning() physics.Tuning {
	return physics.Tuning{
		MaxSpeed:     c.Player.MaxSpeed,
		JumpStrength: c.Player.JumpStrength,
		Accel:        c.Player.Accel,
	}
}

// Bindings returns the configured bindings for both players. Unset
// bindings fall back to the defaults.
func (c RaceConfig) Bindings() [2]core.Bindings {
	b := [2]core.Bindings{c.Controls.Player1, c.Controls.Player2}
	for i, id := range core.Players {
		if b[i].IsZero() {
			b[i] = core.DefaultBindings(id)
		}
	}
	return b
}

// AnnounceDelay returns the win announcement delay.
func (c RaceConfig) AnnounceDelay() time.Duration {
	if c.Announce.DelayMS <= 0 {
		return race.DefaultAnnounceDelay
	}
	return time.Duration(c.Announce.DelayMS) * time.Millisecond
}

// MatchOptions builds match options. The announcer is left for the caller.
func (c RaceConfig) MatchOptions() race.Options {
	opts := race.Options{
		World:       c.PhysicsWorld(),
		Tuning:      c.Tuning(),
		BodyW:       c.Player.Width,
		BodyH:       c.Player.Height,
		FreezeTicks: c.Announce.FreezeTicks,
	}
	for i := 0; i < len(opts.Names) && i < len(c.Player.Names); i++ {
		opts.Names[i] = c.Player.Names[i]
	}
	return opts
}

// ApplyLevel fills the level's unset world size and bindings from the config.
func (c RaceConfig) ApplyLevel(l race.Level) race.Level {
	if l.Width <= 0 {
		l.Width = c.World.Width
	}
	if l.Height <= 0 {
		l.Height = c.World.Height
	}
	keys := c.Bindings()
	for i := range l.Bindings {
		if l.Bindings[i].IsZero() {
			l.Bindings[i] = keys[i]
		}
	}
	return l
}
