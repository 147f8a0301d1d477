// Package formats provides pluggable level file format parsers.
package formats

import (
	"fmt"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/physics"
	"github.com/vovakirdan/tower-race/internal/race"
	"gopkg.in/yaml.v3"
)

// YAMLLevel represents the YAML structure for a level file.
type YAMLLevel struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name"`
	World     *YAMLSize         `yaml:"world,omitempty"`
	Platforms []YAMLBox         `yaml:"platforms"`
	Goal      *YAMLBox          `yaml:"goal,omitempty"`
	Spawns    []YAMLPoint       `yaml:"spawns"`
	Controls  []core.Bindings   `yaml:"controls,omitempty"`
	Metadata  map[string]string `yaml:"metadata,omitempty"`
}

// YAMLSize represents world dimensions.
type YAMLSize struct {
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// YAMLBox represents a rectangle in YAML format.
type YAMLBox struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// YAMLPoint represents a spawn position.
type YAMLPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Level represents a parsed level before validation. Goal is nil when the
// file has none; Spawns and Bindings keep whatever count the file has.
type Level struct {
	ID        string
	Name      string
	Width     float64
	Height    float64
	Platforms []physics.AABB
	Goal      *physics.AABB
	Spawns    []race.Spawn
	Bindings  []core.Bindings
	Metadata  map[string]string
}

// ParseYAML parses a YAML level file.
func ParseYAML(data []byte) (Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	level := Level{
		ID:        yl.ID,
		Name:      yl.Name,
		Platforms: make([]physics.AABB, 0, len(yl.Platforms)),
		Spawns:    make([]race.Spawn, 0, len(yl.Spawns)),
		Bindings:  yl.Controls,
		Metadata:  yl.Metadata,
	}
	if yl.World != nil {
		level.Width = yl.World.W
		level.Height = yl.World.H
	}
	for _, p := range yl.Platforms {
		level.Platforms = append(level.Platforms, physics.NewAABB(p.X, p.Y, p.W, p.H))
	}
	if yl.Goal != nil {
		goal := physics.NewAABB(yl.Goal.X, yl.Goal.Y, yl.Goal.W, yl.Goal.H)
		level.Goal = &goal
	}
	for _, s := range yl.Spawns {
		level.Spawns = append(level.Spawns, race.Spawn{X: s.X, Y: s.Y})
	}

	return level, nil
}

// EncodeYAML writes a level in the format ParseYAML reads.
func EncodeYAML(l Level) ([]byte, error) {
	yl := YAMLLevel{
		ID:       l.ID,
		Name:     l.Name,
		Controls: l.Bindings,
		Metadata: l.Metadata,
	}
	if l.Width > 0 || l.Height > 0 {
		yl.World = &YAMLSize{W: l.Width, H: l.Height}
	}
	for _, p := range l.Platforms {
		yl.Platforms = append(yl.Platforms, YAMLBox{X: p.X, Y: p.Y, W: p.W, H: p.H})
	}
	if l.Goal != nil {
		yl.Goal = &YAMLBox{X: l.Goal.X, Y: l.Goal.Y, W: l.Goal.W, H: l.Goal.H}
	}
	for _, s := range l.Spawns {
		yl.Spawns = append(yl.Spawns, YAMLPoint{X: s.X, Y: s.Y})
	}

	data, err := yaml.Marshal(yl)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// FromRace converts a race level for encoding.
func FromRace(l race.Level) Level {
	goal := l.Goal
	out := Level{
		ID:        l.ID,
		Name:      l.Name,
		Width:     l.Width,
		Height:    l.Height,
		Platforms: append([]physics.AABB(nil), l.Platforms...),
		Goal:      &goal,
		Spawns:    l.Spawns[:],
	}
	for _, b := range l.Bindings {
		if !b.IsZero() {
			out.Bindings = l.Bindings[:]
			break
		}
	}
	return out
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
