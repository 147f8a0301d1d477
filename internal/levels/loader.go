// Package levels provides level loading, validation, built-in layouts and
// file watching. This package depends on race but race does not depend on
// levels.
package levels

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/tower-race/internal/levels/formats"
	"github.com/vovakirdan/tower-race/internal/race"
)

// Level is a validated race level together with where it came from.
type Level struct {
	race.Level
	Metadata map[string]string
	FilePath string // Empty for built-in levels
}

// Source describes where the level was loaded from.
func (l Level) Source() string {
	if l.FilePath == "" {
		return "built-in"
	}
	return l.FilePath
}

// FromFormat validates a parsed level and converts it.
func FromFormat(parsed formats.Level, path string) (Level, error) {
	if err := Validate(parsed); err != nil {
		return Level{}, err
	}

	lvl := Level{
		Level: race.Level{
			ID:        parsed.ID,
			Name:      parsed.Name,
			Width:     parsed.Width,
			Height:    parsed.Height,
			Platforms: parsed.Platforms,
			Goal:      *parsed.Goal,
			Spawns:    [2]race.Spawn{parsed.Spawns[0], parsed.Spawns[1]},
		},
		Metadata: parsed.Metadata,
		FilePath: path,
	}
	if lvl.Name == "" {
		lvl.Name = lvl.ID
	}
	copy(lvl.Bindings[:], parsed.Bindings)

	return lvl, nil
}

// Loader handles loading levels from a directory.
type Loader struct {
	Root string
}

// NewLoader creates a new level loader.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// LoadAll recursively scans and loads all level files.
// Invalid files are skipped. Returns levels sorted by ID for deterministic
// ordering.
func (l *Loader) LoadAll() ([]Level, error) {
	var levels []Level

	err := l.walk(func(path string) {
		level, err := l.LoadFile(path)
		if err != nil {
			// Skip invalid files
			return
		}
		levels = append(levels, level)
	})
	if err != nil {
		return nil, err
	}

	// Sort by ID for determinism
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})

	return levels, nil
}

// FileReport is the outcome of checking one level file.
type FileReport struct {
	Path string
	ID   string
	Err  error
}

// Check loads every level file and reports each one, valid or not, sorted
// by path.
func (l *Loader) Check() ([]FileReport, error) {
	var reports []FileReport

	err := l.walk(func(path string) {
		level, err := l.LoadFile(path)
		reports = append(reports, FileReport{Path: path, ID: level.ID, Err: err})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Path < reports[j].Path
	})
	return reports, nil
}

// LoadFile loads and validates a single level file.
func (l *Loader) LoadFile(path string) (Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	parsed, err := parseByExtension(data, ext)
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", path, err)
	}

	lvl, err := FromFormat(parsed, path)
	if err != nil {
		return Level{}, fmt.Errorf("validating file %s: %w", path, err)
	}
	return lvl, nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}

	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}

	return Level{}, fmt.Errorf("level not found: %s", id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

func (l *Loader) walk(fn func(path string)) error {
	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !IsLevelFile(path) {
			return nil
		}
		fn(path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking directory %s: %w", l.Root, err)
	}
	return nil
}

// IsLevelFile reports whether path has a supported level extension.
func IsLevelFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parseByExtension routes to the correct parser.
func parseByExtension(data []byte, ext string) (formats.Level, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	default:
		return formats.Level{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}
