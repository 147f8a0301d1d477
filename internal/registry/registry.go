// Package registry provides a global registry of named race levels.
// Built-in layouts register themselves in init() functions, allowing the
// commands to discover and instantiate levels without hardcoded lists.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tower-race/internal/race"
)

// LevelInfo contains metadata about a registered level.
type LevelInfo struct {
	ID        string
	Name      string
	Platforms int
}

// Factory returns a fresh copy of a level.
type Factory func() race.Level

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]LevelInfo)
	mu        sync.RWMutex
)

// Register adds a level factory to the registry.
// Typically called from an init() function.
// Panics if a level with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: level %q already registered", id))
	}

	factories[id] = f

	// Get the name by building a temporary instance
	l := f()
	infos[id] = LevelInfo{
		ID:        id,
		Name:      l.Name,
		Platforms: len(l.Platforms),
	}
}

// List returns information about all registered levels, sorted by ID.
func List() []LevelInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]LevelInfo, 0, len(factories))
	for id := range factories {
		result = append(result, infos[id])
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create builds a level by its ID.
// Returns an error if the level ID is not registered.
func Create(id string) (race.Level, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return race.Level{}, fmt.Errorf("registry: unknown level %q", id)
	}

	return f(), nil
}

// Exists checks if a level with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
