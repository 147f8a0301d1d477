// Package storage provides SQLite-based persistence for finished races.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/multiplayer"
)

// Store manages the SQLite database connection for race results.
type Store struct {
	db *sql.DB
}

// RaceResult is one finished round: somebody touched the goal.
type RaceResult struct {
	ID         int64
	MatchID    string // Empty for local rounds
	LevelID    string
	Mode       string // multiplayer.MatchMode key
	Winner     core.PlayerID
	WinnerName string
	Ticks      uint64 // Ticks from round start to the goal touch
	CreatedAt  time.Time
}

// OnlineMatchResult is the summary of an online match.
type OnlineMatchResult struct {
	ID             int64
	MatchID        string
	LevelID        string
	Player1Session string
	Player2Session string
	Player1Name    string
	Player2Name    string
	Wins1          int
	Wins2          int
	WinnerSession  string // Empty if nobody won
	EndReason      string // multiplayer.MatchEndReason key
	Duration       int    // Seconds
	CreatedAt      time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS race_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL DEFAULT '',
			level_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			winner INTEGER NOT NULL,
			winner_name TEXT NOT NULL,
			ticks INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_race_results_level ON race_results(level_id);
		CREATE INDEX IF NOT EXISTS idx_race_results_fastest ON race_results(level_id, ticks ASC);

		CREATE TABLE IF NOT EXISTS online_matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			level_id TEXT NOT NULL,
			player1_session TEXT NOT NULL,
			player2_session TEXT NOT NULL,
			player1_name TEXT NOT NULL DEFAULT '',
			player2_name TEXT NOT NULL DEFAULT '',
			wins1 INTEGER NOT NULL DEFAULT 0,
			wins2 INTEGER NOT NULL DEFAULT 0,
			winner_session TEXT,
			end_reason TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_online_matches_level ON online_matches(level_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// SaveResult records a finished round.
// Returns the ID of the inserted record.
func (s *Store) SaveResult(r RaceResult) (int64, error) {
	return insertResult(s.db, r)
}

func insertResult(db execer, r RaceResult) (int64, error) {
	result, err := db.Exec(
		`INSERT INTO race_results (match_id, level_id, mode, winner, winner_name, ticks)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.MatchID, r.LevelID, r.Mode, int(r.Winner), r.WinnerName, int64(r.Ticks), //nolint:gosec // tick counts fit in int64
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save result: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const resultColumns = `id, match_id, level_id, mode, winner, winner_name, ticks, created_at`

// RecentResults retrieves the newest rounds across all levels.
func (s *Store) RecentResults(limit int) ([]RaceResult, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryResults(
		`SELECT `+resultColumns+` FROM race_results ORDER BY id DESC LIMIT ?`,
		limit,
	)
}

// ResultsByLevel retrieves the newest rounds on one level.
func (s *Store) ResultsByLevel(levelID string, limit int) ([]RaceResult, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryResults(
		`SELECT `+resultColumns+` FROM race_results WHERE level_id = ? ORDER BY id DESC LIMIT ?`,
		levelID, limit,
	)
}

// FastestWins retrieves the quickest goal touches on a level.
func (s *Store) FastestWins(levelID string, limit int) ([]RaceResult, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryResults(
		`SELECT `+resultColumns+` FROM race_results WHERE level_id = ? ORDER BY ticks ASC, id ASC LIMIT ?`,
		levelID, limit,
	)
}

func (s *Store) queryResults(query string, args ...any) ([]RaceResult, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	var results []RaceResult
	for rows.Next() {
		var r RaceResult
		var winner int
		var ticks int64
		var createdAt any
		if err := rows.Scan(&r.ID, &r.MatchID, &r.LevelID, &r.Mode, &winner, &r.WinnerName, &ticks, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Winner = core.PlayerID(winner)
		r.Ticks = uint64(ticks) //nolint:gosec // stored from a uint64
		r.CreatedAt = parseTime(createdAt)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// WinCount is the number of rounds a racer name has won.
type WinCount struct {
	Name string
	Wins int
}

// WinCounts tallies round wins per racer name, most wins first. An empty
// levelID counts every level.
func (s *Store) WinCounts(levelID string) ([]WinCount, error) {
	rows, err := s.db.Query(
		`SELECT winner_name, COUNT(*) AS wins
		 FROM race_results
		 WHERE ? = '' OR level_id = ?
		 GROUP BY winner_name
		 ORDER BY wins DESC, winner_name ASC`,
		levelID, levelID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot count wins: %w", err)
	}
	defer rows.Close()

	var counts []WinCount
	for rows.Next() {
		var c WinCount
		if err := rows.Scan(&c.Name, &c.Wins); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return counts, nil
}

// ClearResults deletes every round on a level.
func (s *Store) ClearResults(levelID string) error {
	if _, err := s.db.Exec("DELETE FROM race_results WHERE level_id = ?", levelID); err != nil {
		return fmt.Errorf("storage: cannot clear results: %w", err)
	}
	return nil
}

// LevelStats contains aggregated statistics for a level.
type LevelStats struct {
	LevelID      string
	Rounds       int
	FastestTicks uint64
	AvgTicks     float64
	LastPlayed   time.Time
}

// GetLevelStats retrieves aggregated statistics for a level.
func (s *Store) GetLevelStats(levelID string) (*LevelStats, error) {
	stats := &LevelStats{LevelID: levelID}

	var fastest int64
	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MIN(ticks), 0), COALESCE(AVG(ticks), 0), MAX(created_at)
		 FROM race_results WHERE level_id = ?`,
		levelID,
	).Scan(&stats.Rounds, &fastest, &stats.AvgTicks, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}
	stats.FastestTicks = uint64(fastest) //nolint:gosec // stored from a uint64
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// SaveOnlineMatch records the summary of an online match.
// Returns the ID of the inserted record.
func (s *Store) SaveOnlineMatch(result OnlineMatchResult) (int64, error) {
	return insertOnlineMatch(s.db, result)
}

func insertOnlineMatch(db execer, result OnlineMatchResult) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO online_matches
		 (match_id, level_id, player1_session, player2_session, player1_name, player2_name,
		  wins1, wins2, winner_session, end_reason, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.MatchID,
		result.LevelID,
		result.Player1Session,
		result.Player2Session,
		result.Player1Name,
		result.Player2Name,
		result.Wins1,
		result.Wins2,
		result.WinnerSession,
		result.EndReason,
		result.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save online match: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const onlineColumns = `id, match_id, level_id, player1_session, player2_session, player1_name, player2_name,
	wins1, wins2, winner_session, end_reason, duration_secs, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOnlineMatch(row scanner) (OnlineMatchResult, error) {
	var result OnlineMatchResult
	var createdAt any
	var winnerSession sql.NullString

	err := row.Scan(
		&result.ID,
		&result.MatchID,
		&result.LevelID,
		&result.Player1Session,
		&result.Player2Session,
		&result.Player1Name,
		&result.Player2Name,
		&result.Wins1,
		&result.Wins2,
		&winnerSession,
		&result.EndReason,
		&result.Duration,
		&createdAt,
	)
	if err != nil {
		return result, err
	}
	if winnerSession.Valid {
		result.WinnerSession = winnerSession.String
	}
	result.CreatedAt = parseTime(createdAt)
	return result, nil
}

// OnlineMatchByID retrieves an online match by its match ID.
// Returns nil, nil if there is none.
func (s *Store) OnlineMatchByID(matchID string) (*OnlineMatchResult, error) {
	result, err := scanOnlineMatch(s.db.QueryRow(
		`SELECT `+onlineColumns+` FROM online_matches WHERE match_id = ?`,
		matchID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query online match: %w", err)
	}
	return &result, nil
}

// RecentOnlineMatches retrieves the most recent online matches.
func (s *Store) RecentOnlineMatches(limit int) ([]OnlineMatchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+onlineColumns+` FROM online_matches ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query online matches: %w", err)
	}
	defer rows.Close()

	var results []OnlineMatchResult
	for rows.Next() {
		result, err := scanOnlineMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
// The match summary and each of its rounds are written in one transaction.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	_, err = insertOnlineMatch(tx, OnlineMatchResult{
		MatchID:        data.MatchID,
		LevelID:        data.LevelID,
		Player1Session: data.Player1Session,
		Player2Session: data.Player2Session,
		Player1Name:    data.Names[0],
		Player2Name:    data.Names[1],
		Wins1:          data.Wins[0],
		Wins2:          data.Wins[1],
		WinnerSession:  data.WinnerSession,
		EndReason:      data.EndReason,
		Duration:       data.DurationSecs,
	})
	if err != nil {
		return err
	}

	// Round ticks are stored relative to the previous goal touch.
	var prev uint64
	for _, round := range data.Rounds {
		_, err := insertResult(tx, RaceResult{
			MatchID:    data.MatchID,
			LevelID:    data.LevelID,
			Mode:       multiplayer.MatchModeOnline.Key(),
			Winner:     round.Winner,
			WinnerName: round.Name,
			Ticks:      round.Tick - prev,
		})
		if err != nil {
			return err
		}
		prev = round.Tick
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit match result: %w", err)
	}
	return nil
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)

// parseTime handles both time.Time and string datetimes.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
