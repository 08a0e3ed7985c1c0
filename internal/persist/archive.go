package persist

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ensureArchiveSchema creates the secondary archival tables, mirroring the
// teacher's idempotent CREATE-TABLE-IF-NOT-EXISTS migration style. These
// tables hold history that the document file deliberately does not carry
// (an append-only event log and periodic world-health snapshots) so the
// document stays a pure current-state snapshot.
func ensureArchiveSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		tick        INTEGER NOT NULL,
		category    TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stats_history (
		tick           INTEGER PRIMARY KEY,
		room_count     INTEGER NOT NULL,
		player_count   INTEGER NOT NULL,
		npc_count      INTEGER NOT NULL,
		health_score   REAL NOT NULL,
		issue_count    INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`)
	return err
}

// Event is one archived world occurrence (door opened, NPC died, trade
// completed, and the like). The document itself never stores history —
// only current state — so callers wanting an audit trail log through
// here.
type Event struct {
	Tick        uint64 `db:"tick" json:"tick"`
	Category    string `db:"category" json:"category"`
	Description string `db:"description" json:"description"`
}

// LogEvent appends one event to the archive. Best-effort: errors are
// returned for the caller to log, never propagated into gameplay.
func (s *Store) LogEvent(tick uint64, category, description string) error {
	_, err := s.archive.Exec(
		"INSERT INTO events (tick, category, description) VALUES (?, ?, ?)",
		tick, category, description,
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// RecentEvents returns the most recently logged events, newest first.
func (s *Store) RecentEvents(limit int) ([]Event, error) {
	var events []Event
	err := s.archive.Select(&events,
		"SELECT tick, category, description FROM events ORDER BY id DESC LIMIT ?", limit)
	return events, err
}

// StatsSnapshot is one periodic world-health sample, taken by the world
// tick scheduler once per simulated day (the startup integrity audit
// records none).
type StatsSnapshot struct {
	Tick        uint64  `db:"tick" json:"tick"`
	RoomCount   int     `db:"room_count" json:"room_count"`
	PlayerCount int     `db:"player_count" json:"player_count"`
	NPCCount    int     `db:"npc_count" json:"npc_count"`
	HealthScore float64 `db:"health_score" json:"health_score"`
	IssueCount  int     `db:"issue_count" json:"issue_count"`
}

// SaveStatsSnapshot records one stats_history row, replacing any existing
// row for the same tick.
func (s *Store) SaveStatsSnapshot(row StatsSnapshot) error {
	_, err := s.archive.Exec(
		`INSERT OR REPLACE INTO stats_history
		(tick, room_count, player_count, npc_count, health_score, issue_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		row.Tick, row.RoomCount, row.PlayerCount, row.NPCCount, row.HealthScore, row.IssueCount,
	)
	if err != nil {
		return fmt.Errorf("save stats snapshot: %w", err)
	}
	return nil
}

// LoadStatsHistory returns the most recent stats_history rows, newest
// first.
func (s *Store) LoadStatsHistory(limit int) ([]StatsSnapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	var rows []StatsSnapshot
	err := s.archive.Select(&rows,
		`SELECT tick, room_count, player_count, npc_count, health_score, issue_count
		 FROM stats_history ORDER BY tick DESC LIMIT ?`, limit)
	return rows, err
}
