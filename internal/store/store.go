package store

import (
	"database/sql"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite session/score database.
type Store struct {
	conn *sql.DB
}

// SessionRow represents one survival run.
type SessionRow struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
	Duration  float64   `json:"duration"` // seconds
	Kills     int       `json:"kills"`
	Score     int       `json:"score"`
	Unlocks   int       `json:"unlocks"`
	PartsLost int       `json:"partsLost"`
	Ticks     int64     `json:"ticks"`
}

// KillRow records a single zombie kill within a session.
type KillRow struct {
	SessionID  int64
	Tick       int64
	ZombieType string
	Source     string
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// migrate creates tables if they don't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		ended_at DATETIME,
		duration REAL NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		score INTEGER NOT NULL DEFAULT 0,
		unlocks INTEGER NOT NULL DEFAULT 0,
		parts_lost INTEGER NOT NULL DEFAULT 0,
		ticks INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS kills (
		session_id INTEGER NOT NULL REFERENCES sessions(id),
		tick INTEGER NOT NULL,
		zombie_type TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_kills_session ON kills(session_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_score ON sessions(score);
	`
	_, err := s.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// StartSession creates a new session row and returns its ID.
func (s *Store) StartSession() (int64, error) {
	res, err := s.conn.Exec("INSERT INTO sessions DEFAULT VALUES")
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishSession writes the final counters for a session.
func (s *Store) FinishSession(id int64, duration float64, kills, score, unlocks, partsLost int, ticks int64) error {
	_, err := s.conn.Exec(`
		UPDATE sessions SET
			ended_at = CURRENT_TIMESTAMP,
			duration = ?,
			kills = ?,
			score = ?,
			unlocks = ?,
			parts_lost = ?,
			ticks = ?
		WHERE id = ?`,
		duration, kills, score, unlocks, partsLost, ticks, id,
	)
	return err
}

// RecordKill appends a kill event for a session.
func (s *Store) RecordKill(sessionID, tick int64, zombieType, source string) error {
	_, err := s.conn.Exec(
		"INSERT INTO kills (session_id, tick, zombie_type, source) VALUES (?, ?, ?, ?)",
		sessionID, tick, zombieType, source,
	)
	return err
}

// TopSessions returns the highest scoring finished sessions.
func (s *Store) TopSessions(limit int) ([]SessionRow, error) {
	rows, err := s.conn.Query(`
		SELECT id, started_at, IFNULL(ended_at, started_at), duration, kills, score, unlocks, parts_lost, ticks
		FROM sessions
		WHERE ended_at IS NOT NULL
		ORDER BY score DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.EndedAt, &r.Duration, &r.Kills, &r.Score, &r.Unlocks, &r.PartsLost, &r.Ticks); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// KillCountByType returns per-type kill totals for a session.
func (s *Store) KillCountByType(sessionID int64) (map[string]int, error) {
	rows, err := s.conn.Query(
		"SELECT zombie_type, COUNT(*) FROM kills WHERE session_id = ? GROUP BY zombie_type",
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		result[t] = n
	}
	return result, rows.Err()
}
