package levels

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const validFile = `id: %s
name: Test %s
platforms:
  - {x: 0, y: 580, w: 800, h: 20}
goal: {x: 380, y: 50, w: 40, h: 40}
spawns:
  - {x: 20, y: 540}
  - {x: 750, y: 540}
`

func writeLevel(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func levelFile(id string) string {
	return fmt.Sprintf(validFile, id, id)
}

func TestLoaderLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "b.yaml", levelFile("bravo"))
	writeLevel(t, dir, "nested/a.yml", levelFile("alpha"))
	writeLevel(t, dir, "broken.yaml", "id: broken\nplatforms: [")
	writeLevel(t, dir, "notes.txt", "not a level")

	lvls, err := NewLoader(dir).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	if len(lvls) != 2 {
		t.Fatalf("len(LoadAll()) = %d, expected 2", len(lvls))
	}
	if lvls[0].ID != "alpha" || lvls[1].ID != "bravo" {
		t.Errorf("LoadAll() IDs = %s, %s; expected alpha, bravo", lvls[0].ID, lvls[1].ID)
	}
	if lvls[0].Name != "Test alpha" {
		t.Errorf("Name = %q, expected %q", lvls[0].Name, "Test alpha")
	}
	if lvls[0].Source() == "built-in" {
		t.Error("file level reports built-in source")
	}
}

func TestLoaderCheckReportsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "a.yaml", levelFile("alpha"))
	writeLevel(t, dir, "b.yaml", "id: nogoal\nspawns: [{x: 1, y: 1}, {x: 2, y: 2}]\n")

	reports, err := NewLoader(dir).Check()
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("len(Check()) = %d, expected 2", len(reports))
	}
	if reports[0].Err != nil {
		t.Errorf("a.yaml error = %v, expected nil", reports[0].Err)
	}

	var ve ValidationError
	if !errors.As(reports[1].Err, &ve) || ve.Code != CodeMissingGoal {
		t.Errorf("b.yaml error = %v, expected %s", reports[1].Err, CodeMissingGoal)
	}
}

func TestLoaderLoadByID(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "a.yaml", levelFile("alpha"))

	loader := NewLoader(dir)
	lvl, err := loader.LoadByID("alpha")
	if err != nil {
		t.Fatalf("LoadByID() error = %v", err)
	}
	if lvl.Goal.W != 40 || lvl.Spawns[1].X != 750 {
		t.Errorf("LoadByID() = %+v", lvl.Level)
	}

	if _, err := loader.LoadByID("missing"); err == nil {
		t.Error("LoadByID(missing) should fail")
	}

	ids, err := loader.ListIDs()
	if err != nil || len(ids) != 1 || ids[0] != "alpha" {
		t.Errorf("ListIDs() = %v, %v", ids, err)
	}
}

func TestLoaderMissingRoot(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "nope")).LoadAll(); err == nil {
		t.Error("LoadAll() on a missing directory should fail")
	}
}
