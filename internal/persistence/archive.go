// Package persistence provides the optional SQLite archive for finished
// sessions. Live sessions exist only in memory; the archive is a
// write-only export an operator can trigger, never a session backend.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mindfold/biaslab/internal/engine"
	"github.com/mindfold/biaslab/internal/session"
)

// Archive wraps a SQLite connection for session exports.
type Archive struct {
	conn *sqlx.DB
}

// Open opens or creates the archive database at the given path.
func Open(path string) (*Archive, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	a := &Archive{conn: conn}
	if err := a.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.conn.Close()
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		scenario_id TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		turns INTEGER NOT NULL,
		state_json TEXT NOT NULL,
		history_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		archived_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS archive_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_scenario ON sessions(scenario_id);
	`
	_, err := a.conn.Exec(schema)
	return err
}

// SaveSession writes one session snapshot. Re-archiving the same id
// replaces the earlier row.
func (a *Archive) SaveSession(snap *session.Session) error {
	stateJSON, err := json.Marshal(snap.State.Vars(snap.RuleSet))
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	historyJSON, err := json.Marshal(snap.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	_, err = a.conn.Exec(`INSERT OR REPLACE INTO sessions
		(id, scenario_id, difficulty, turns, state_json, history_json, created_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.ScenarioID, engine.DifficultyName(snap.Difficulty),
		len(snap.History), string(stateJSON), string(historyJSON),
		snap.CreatedAt.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", snap.ID, err)
	}
	return nil
}

// Count returns the number of archived sessions.
func (a *Archive) Count() (int, error) {
	var n int
	if err := a.conn.Get(&n, "SELECT COUNT(*) FROM sessions"); err != nil {
		return 0, err
	}
	return n, nil
}

// SetMeta stores an operator note in the meta table.
func (a *Archive) SetMeta(key, value string) error {
	_, err := a.conn.Exec(
		"INSERT OR REPLACE INTO archive_meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// GetMeta reads an operator note.
func (a *Archive) GetMeta(key string) (string, error) {
	var v string
	if err := a.conn.Get(&v, "SELECT value FROM archive_meta WHERE key = ?", key); err != nil {
		return "", err
	}
	return v, nil
}
