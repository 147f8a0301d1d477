package levels

import (
	"testing"

	"github.com/vovakirdan/tower-race/internal/race"
	"github.com/vovakirdan/tower-race/internal/registry"
)

func TestBuiltins(t *testing.T) {
	lvls := Builtins()

	expected := []string{"ladder", "towers", "towers-mirror"}
	if len(lvls) != len(expected) {
		t.Fatalf("len(Builtins()) = %d, expected %d", len(lvls), len(expected))
	}
	for i, id := range expected {
		if lvls[i].ID != id {
			t.Errorf("Builtins()[%d].ID = %s, expected %s", i, lvls[i].ID, id)
		}
		if !registry.Exists(id) {
			t.Errorf("registry.Exists(%s) = false, expected true", id)
		}
		if lvls[i].Source() != "built-in" {
			t.Errorf("Source() = %s, expected built-in", lvls[i].Source())
		}
	}
}

func TestBuiltinTowersMatchesClassicLayout(t *testing.T) {
	got, err := registry.Create("towers")
	if err != nil {
		t.Fatalf("registry.Create(towers) error = %v", err)
	}
	want := race.Towers()

	if len(got.Platforms) != len(want.Platforms) {
		t.Fatalf("len(Platforms) = %d, expected %d", len(got.Platforms), len(want.Platforms))
	}
	for i := range want.Platforms {
		if got.Platforms[i] != want.Platforms[i] {
			t.Errorf("Platforms[%d] = %+v, expected %+v", i, got.Platforms[i], want.Platforms[i])
		}
	}
	if got.Goal != want.Goal {
		t.Errorf("Goal = %+v, expected %+v", got.Goal, want.Goal)
	}
	if got.Spawns != want.Spawns {
		t.Errorf("Spawns = %+v, expected %+v", got.Spawns, want.Spawns)
	}
}

func TestBuiltinsAreIndependentCopies(t *testing.T) {
	a := Builtins()
	a[0].Platforms[0].X = 123

	b := Builtins()
	if b[0].Platforms[0].X == 123 {
		t.Error("Builtins() shares platform slices between calls")
	}
}

func TestBuiltinsBuildMatches(t *testing.T) {
	for _, lvl := range Builtins() {
		if _, err := race.New(lvl.Level, race.DefaultOptions()); err != nil {
			t.Errorf("race.New(%s) error = %v", lvl.ID, err)
		}
	}
}

func TestResolveFilesShadowBuiltins(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "towers.yaml", levelFile("towers"))
	writeLevel(t, dir, "extra.yaml", levelFile("extra"))

	lvl, err := Resolve("towers", dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(lvl.Platforms) != 1 {
		t.Errorf("Resolve(towers) from dir has %d platforms, expected 1", len(lvl.Platforms))
	}

	lvl, err = Resolve("ladder", dir)
	if err != nil || lvl.Source() != "built-in" {
		t.Errorf("Resolve(ladder) = %s, %v; expected built-in", lvl.Source(), err)
	}

	if _, err := Resolve("nowhere", dir); err == nil {
		t.Error("Resolve(nowhere) should fail")
	}

	cat, err := Catalog(dir)
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if len(cat) != 4 || cat[3].ID != "extra" {
		ids := make([]string, len(cat))
		for i, l := range cat {
			ids[i] = l.ID
		}
		t.Errorf("Catalog() = %v, expected 3 built-ins then extra", ids)
	}
}
