package storage

import (
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/multiplayer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "results.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	// Migrations must be idempotent.
	if err := store.migrate(); err != nil {
		t.Errorf("migrate() second run error = %v", err)
	}
}

func TestSaveAndRecentResults(t *testing.T) {
	store := openTestStore(t)

	results := []RaceResult{
		{LevelID: "towers", Mode: "local", Winner: core.Player1, WinnerName: "Red", Ticks: 400},
		{LevelID: "towers", Mode: "local", Winner: core.Player2, WinnerName: "Blue", Ticks: 350},
		{LevelID: "ladder", Mode: "bot", Winner: core.Player2, WinnerName: "Bot", Ticks: 900},
	}
	for _, r := range results {
		id, err := store.SaveResult(r)
		if err != nil {
			t.Fatalf("SaveResult() error = %v", err)
		}
		if id <= 0 {
			t.Errorf("SaveResult() id = %d, expected positive", id)
		}
	}

	recent, err := store.RecentResults(10)
	if err != nil {
		t.Fatalf("RecentResults() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("RecentResults() returned %d rows, expected 3", len(recent))
	}
	if recent[0].WinnerName != "Bot" {
		t.Errorf("RecentResults()[0].WinnerName = %q, expected %q", recent[0].WinnerName, "Bot")
	}
	if recent[0].Winner != core.Player2 {
		t.Errorf("RecentResults()[0].Winner = %v, expected %v", recent[0].Winner, core.Player2)
	}
	if recent[0].Ticks != 900 {
		t.Errorf("RecentResults()[0].Ticks = %d, expected 900", recent[0].Ticks)
	}
	if recent[0].CreatedAt.IsZero() {
		t.Error("RecentResults()[0].CreatedAt should be set")
	}

	limited, err := store.RecentResults(2)
	if err != nil {
		t.Fatalf("RecentResults() error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("RecentResults(2) returned %d rows, expected 2", len(limited))
	}
}

func TestResultsByLevelAndFastest(t *testing.T) {
	store := openTestStore(t)

	for _, ticks := range []uint64{500, 300, 700} {
		if _, err := store.SaveResult(RaceResult{LevelID: "towers", Mode: "local", WinnerName: "Red", Ticks: ticks}); err != nil {
			t.Fatalf("SaveResult() error = %v", err)
		}
	}
	if _, err := store.SaveResult(RaceResult{LevelID: "ladder", Mode: "local", WinnerName: "Red", Ticks: 100}); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	byLevel, err := store.ResultsByLevel("towers", 0)
	if err != nil {
		t.Fatalf("ResultsByLevel() error = %v", err)
	}
	if len(byLevel) != 3 {
		t.Errorf("ResultsByLevel() returned %d rows, expected 3", len(byLevel))
	}

	fastest, err := store.FastestWins("towers", 2)
	if err != nil {
		t.Fatalf("FastestWins() error = %v", err)
	}
	if len(fastest) != 2 {
		t.Fatalf("FastestWins() returned %d rows, expected 2", len(fastest))
	}
	if fastest[0].Ticks != 300 || fastest[1].Ticks != 500 {
		t.Errorf("FastestWins() ticks = %d, %d, expected 300, 500", fastest[0].Ticks, fastest[1].Ticks)
	}
}

func TestWinCounts(t *testing.T) {
	store := openTestStore(t)

	winners := []struct {
		level string
		name  string
	}{
		{"towers", "Red"},
		{"towers", "Blue"},
		{"towers", "Red"},
		{"ladder", "Blue"},
		{"ladder", "Blue"},
	}
	for _, w := range winners {
		if _, err := store.SaveResult(RaceResult{LevelID: w.level, Mode: "local", WinnerName: w.name, Ticks: 1}); err != nil {
			t.Fatalf("SaveResult() error = %v", err)
		}
	}

	tests := []struct {
		level    string
		expected []WinCount
	}{
		{"towers", []WinCount{{"Red", 2}, {"Blue", 1}}},
		{"ladder", []WinCount{{"Blue", 2}}},
		{"", []WinCount{{"Blue", 3}, {"Red", 2}}},
		{"missing", nil},
	}

	for _, tt := range tests {
		counts, err := store.WinCounts(tt.level)
		if err != nil {
			t.Fatalf("WinCounts(%q) error = %v", tt.level, err)
		}
		if len(counts) != len(tt.expected) {
			t.Errorf("WinCounts(%q) = %v, expected %v", tt.level, counts, tt.expected)
			continue
		}
		for i := range counts {
			if counts[i] != tt.expected[i] {
				t.Errorf("WinCounts(%q)[%d] = %v, expected %v", tt.level, i, counts[i], tt.expected[i])
			}
		}
	}
}

func TestClearResults(t *testing.T) {
	store := openTestStore(t)

	store.SaveResult(RaceResult{LevelID: "towers", Mode: "local", WinnerName: "Red", Ticks: 10})
	store.SaveResult(RaceResult{LevelID: "ladder", Mode: "local", WinnerName: "Red", Ticks: 10})

	if err := store.ClearResults("towers"); err != nil {
		t.Fatalf("ClearResults() error = %v", err)
	}

	towers, _ := store.ResultsByLevel("towers", 10)
	if len(towers) != 0 {
		t.Errorf("ResultsByLevel(towers) after clear = %d rows, expected 0", len(towers))
	}
	ladder, _ := store.ResultsByLevel("ladder", 10)
	if len(ladder) != 1 {
		t.Errorf("ResultsByLevel(ladder) after clear = %d rows, expected 1", len(ladder))
	}
}

func TestGetLevelStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.GetLevelStats("towers")
	if err != nil {
		t.Fatalf("GetLevelStats() error = %v", err)
	}
	if empty.Rounds != 0 || empty.FastestTicks != 0 {
		t.Errorf("GetLevelStats() on empty level = %+v, expected zero rounds", empty)
	}

	for _, ticks := range []uint64{200, 400} {
		store.SaveResult(RaceResult{LevelID: "towers", Mode: "local", WinnerName: "Red", Ticks: ticks})
	}

	stats, err := store.GetLevelStats("towers")
	if err != nil {
		t.Fatalf("GetLevelStats() error = %v", err)
	}
	if stats.Rounds != 2 {
		t.Errorf("Rounds = %d, expected 2", stats.Rounds)
	}
	if stats.FastestTicks != 200 {
		t.Errorf("FastestTicks = %d, expected 200", stats.FastestTicks)
	}
	if stats.AvgTicks != 300 {
		t.Errorf("AvgTicks = %v, expected 300", stats.AvgTicks)
	}
}

func TestSaveMatchResult(t *testing.T) {
	store := openTestStore(t)

	data := multiplayer.MatchResultData{
		MatchID:        "match-1",
		LevelID:        "towers",
		Player1Session: "s1",
		Player2Session: "s2",
		Names:          [2]string{"alice", "bob"},
		Wins:           [2]int{2, 1},
		Winner:         multiplayer.Player1,
		WinnerSession:  "s1",
		EndReason:      multiplayer.MatchEndReasonCompleted.Key(),
		Ticks:          900,
		DurationSecs:   15,
		Rounds: []multiplayer.RoundResult{
			{Winner: multiplayer.Player1, Name: "alice", Tick: 300},
			{Winner: multiplayer.Player2, Name: "bob", Tick: 500},
			{Winner: multiplayer.Player1, Name: "alice", Tick: 900},
		},
	}

	if err := store.SaveMatchResult(data); err != nil {
		t.Fatalf("SaveMatchResult() error = %v", err)
	}

	match, err := store.OnlineMatchByID("match-1")
	if err != nil {
		t.Fatalf("OnlineMatchByID() error = %v", err)
	}
	if match == nil {
		t.Fatal("OnlineMatchByID() returned nil")
	}
	if match.Wins1 != 2 || match.Wins2 != 1 {
		t.Errorf("wins = %d-%d, expected 2-1", match.Wins1, match.Wins2)
	}
	if match.WinnerSession != "s1" {
		t.Errorf("WinnerSession = %q, expected %q", match.WinnerSession, "s1")
	}
	if match.Player2Name != "bob" {
		t.Errorf("Player2Name = %q, expected %q", match.Player2Name, "bob")
	}

	rounds, err := store.ResultsByLevel("towers", 10)
	if err != nil {
		t.Fatalf("ResultsByLevel() error = %v", err)
	}
	if len(rounds) != 3 {
		t.Fatalf("ResultsByLevel() returned %d rows, expected 3", len(rounds))
	}
	// Newest first; ticks are per round.
	expectedTicks := []uint64{400, 200, 300}
	for i, r := range rounds {
		if r.Ticks != expectedTicks[i] {
			t.Errorf("round %d ticks = %d, expected %d", i, r.Ticks, expectedTicks[i])
		}
		if r.MatchID != "match-1" {
			t.Errorf("round %d MatchID = %q, expected %q", i, r.MatchID, "match-1")
		}
		if r.Mode != multiplayer.MatchModeOnline.Key() {
			t.Errorf("round %d Mode = %q, expected %q", i, r.Mode, multiplayer.MatchModeOnline.Key())
		}
	}

	// A duplicate match ID rolls the whole transaction back.
	if err := store.SaveMatchResult(data); err == nil {
		t.Error("SaveMatchResult() with duplicate match ID should fail")
	}
	rounds, _ = store.ResultsByLevel("towers", 10)
	if len(rounds) != 3 {
		t.Errorf("rounds after failed save = %d, expected 3", len(rounds))
	}
}

func TestOnlineMatchQueries(t *testing.T) {
	store := openTestStore(t)

	missing, err := store.OnlineMatchByID("nope")
	if err != nil {
		t.Fatalf("OnlineMatchByID() error = %v", err)
	}
	if missing != nil {
		t.Errorf("OnlineMatchByID(nope) = %+v, expected nil", missing)
	}

	for _, id := range []string{"m1", "m2", "m3"} {
		_, err := store.SaveOnlineMatch(OnlineMatchResult{
			MatchID:        id,
			LevelID:        "towers",
			Player1Session: "a",
			Player2Session: "b",
			EndReason:      "disconnect",
		})
		if err != nil {
			t.Fatalf("SaveOnlineMatch() error = %v", err)
		}
	}

	recent, err := store.RecentOnlineMatches(2)
	if err != nil {
		t.Fatalf("RecentOnlineMatches() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("RecentOnlineMatches(2) returned %d rows, expected 2", len(recent))
	}
	if recent[0].MatchID != "m3" {
		t.Errorf("RecentOnlineMatches()[0].MatchID = %q, expected %q", recent[0].MatchID, "m3")
	}
	if recent[0].WinnerSession != "" {
		t.Errorf("WinnerSession = %q, expected empty", recent[0].WinnerSession)
	}
}
