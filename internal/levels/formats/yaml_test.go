package formats

import (
	"testing"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/race"
)

const sampleYAML = `
id: tiny
name: Tiny
world: {w: 400, h: 300}
platforms:
  - {x: 0, y: 280, w: 400, h: 20}
  - {x: 150, y: 200, w: 100, h: 10}
goal: {x: 180, y: 150, w: 40, h: 40}
spawns:
  - {x: 10, y: 250}
  - {x: 360, y: 250}
controls:
  - {up: w, left: a, right: d}
  - {up: i, left: j, right: l}
metadata:
  author: tests
`

func TestParseYAML(t *testing.T) {
	l, err := ParseYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}

	if l.ID != "tiny" || l.Name != "Tiny" {
		t.Errorf("ID/Name = %q/%q, expected tiny/Tiny", l.ID, l.Name)
	}
	if l.Width != 400 || l.Height != 300 {
		t.Errorf("size = %vx%v, expected 400x300", l.Width, l.Height)
	}
	if len(l.Platforms) != 2 || l.Platforms[1].W != 100 {
		t.Errorf("Platforms = %+v", l.Platforms)
	}
	if l.Goal == nil || l.Goal.X != 180 {
		t.Errorf("Goal = %+v, expected x=180", l.Goal)
	}
	if len(l.Spawns) != 2 || l.Spawns[1] != (race.Spawn{X: 360, Y: 250}) {
		t.Errorf("Spawns = %+v", l.Spawns)
	}
	if len(l.Bindings) != 2 || l.Bindings[1].Left != core.Control("j") {
		t.Errorf("Bindings = %+v", l.Bindings)
	}
	if l.Metadata["author"] != "tests" {
		t.Errorf("Metadata = %v", l.Metadata)
	}
}

func TestParseYAMLMissingGoal(t *testing.T) {
	l, err := ParseYAML([]byte("id: nogoal\nplatforms: []\n"))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	if l.Goal != nil {
		t.Errorf("Goal = %+v, expected nil", l.Goal)
	}
}

func TestParseYAMLInvalid(t *testing.T) {
	if _, err := ParseYAML([]byte("platforms: {not: [a list")); err == nil {
		t.Error("ParseYAML(broken) should fail")
	}
}

func TestEncodeTowersRoundTrip(t *testing.T) {
	towers := race.Towers()

	data, err := EncodeYAML(FromRace(towers))
	if err != nil {
		t.Fatalf("EncodeYAML() error = %v", err)
	}
	got, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}

	if len(got.Platforms) != len(towers.Platforms) {
		t.Fatalf("len(Platforms) = %d, expected %d", len(got.Platforms), len(towers.Platforms))
	}
	for i := range towers.Platforms {
		if got.Platforms[i] != towers.Platforms[i] {
			t.Errorf("Platforms[%d] = %+v, expected %+v", i, got.Platforms[i], towers.Platforms[i])
		}
	}
	if *got.Goal != towers.Goal {
		t.Errorf("Goal = %+v, expected %+v", *got.Goal, towers.Goal)
	}
	if got.Spawns[0] != towers.Spawns[0] || got.Spawns[1] != towers.Spawns[1] {
		t.Errorf("Spawns = %+v, expected %+v", got.Spawns, towers.Spawns)
	}
}
