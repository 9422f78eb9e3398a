package memory

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// StateDB keeps a local rolling log of plan adjustments per user, so the
// assistant tooling can recall recent changes without a round trip to the
// main database.
type StateDB struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite memory database at dir/memory.db.
func Open(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating memory dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "memory.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening memory db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS adjustments (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		plan_id    TEXT NOT NULL,
		summary    TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating adjustments table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Entry is one remembered adjustment.
type Entry struct {
	PlanID    string    `json:"planId"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecordAdjustment appends one adjustment summary for a user.
func (s *StateDB) RecordAdjustment(userID string, planID uuid.UUID, summary string) error {
	_, err := s.db.Exec(
		`INSERT INTO adjustments (user_id, plan_id, summary) VALUES (?, ?, ?)`,
		userID, planID.String(), summary,
	)
	return err
}

// RecentAdjustments returns up to limit entries for a user, newest first.
func (s *StateDB) RecentAdjustments(userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT plan_id, summary, created_at FROM adjustments
		 WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.PlanID, &e.Summary, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the memory database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
