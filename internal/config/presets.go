package config

import (
	"fmt"
	"strings"
)

// Preset represents a named tuning preset.
type Preset string

const (
	PresetClassic Preset = "classic"
	PresetFloaty  Preset = "floaty"
	PresetSlick   Preset = "slick"
)

// Presets lists the known presets.
var Presets = []Preset{PresetClassic, PresetFloaty, PresetSlick}

// ParsePreset resolves a preset name, case-insensitively.
func ParsePreset(name string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Presets {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown preset %q (expected classic, floaty or slick)", name)
}

// ApplyPreset modifies the world and player sections for a preset.
// Classic restores the stock constants.
func ApplyPreset(cfg *RaceConfig, preset Preset) {
	def := DefaultRaceConfig()
	switch preset {
	case PresetClassic:
		cfg.World.Gravity = def.World.Gravity
		cfg.World.Friction = def.World.Friction
		cfg.Player.JumpStrength = def.Player.JumpStrength
		cfg.Player.MaxSpeed = def.Player.MaxSpeed
	case PresetFloaty:
		// Lower gravity with a weaker jump: a similar apex, reached slowly.
		cfg.World.Gravity = 0.3
		cfg.World.Friction = def.World.Friction
		cfg.Player.JumpStrength = 9.5
		cfg.Player.MaxSpeed = def.Player.MaxSpeed
	case PresetSlick:
		cfg.World.Gravity = def.World.Gravity
		cfg.World.Friction = 0.95
		cfg.Player.JumpStrength = def.Player.JumpStrength
		cfg.Player.MaxSpeed = 4
	}
}
