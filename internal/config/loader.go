package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the race config file name in the search directories.
const ConfigFile = "race.yaml"

// LoadRace loads the race configuration.
// Search order: customPath -> ~/.towerrace/configs/race.yaml -> ./configs/race.yaml -> embedded default
//
// Files are decoded over the defaults, so a partial file only overrides
// the keys it sets.
func LoadRace(customPath string) (RaceConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return RaceConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parseRace(data)
		if err != nil {
			return RaceConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(ConfigFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parseRace(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", ConfigFile)); err == nil {
		if cfg, err := parseRace(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parseRace(defaultRaceYAML)
	if err != nil {
		return DefaultRaceConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// parseRace decodes data on top of the hardcoded defaults.
func parseRace(data []byte) (RaceConfig, error) {
	cfg := DefaultRaceConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RaceConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return RaceConfig{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the simulation cannot run.
func (c RaceConfig) Validate() error {
	switch {
	case c.World.Width <= 0 || c.World.Height <= 0:
		return fmt.Errorf("world size %gx%g must be positive", c.World.Width, c.World.Height)
	case c.Player.Width <= 0 || c.Player.Height <= 0:
		return fmt.Errorf("player size %gx%g must be positive", c.Player.Width, c.Player.Height)
	case c.World.Friction < 0 || c.World.Friction > 1:
		return fmt.Errorf("friction %g must be within [0, 1]", c.World.Friction)
	case c.Online.RoundsToWin < 0:
		return fmt.Errorf("rounds_to_win %d must not be negative", c.Online.RoundsToWin)
	}
	return nil
}

// Marshal encodes the config as YAML.
func (c RaceConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".towerrace", "configs", filename)
}
