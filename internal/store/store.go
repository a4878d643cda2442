// Package store keeps a queryable SQLite archive of completed session
// summaries, used by the results API and the export command.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opetrenko/vivavoce/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS summaries (
		session_id TEXT PRIMARY KEY,
		student_name TEXT NOT NULL,
		student_email TEXT NOT NULL,
		score REAL NOT NULL,
		completed_at DATETIME NOT NULL,
		transcript TEXT NOT NULL DEFAULT '[]'
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSummary inserts or replaces the archived record for a session.
func (s *Store) SaveSummary(sum *model.Summary) error {
	transcript, err := json.Marshal(sum.ConversationHistory)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO summaries (session_id, student_name, student_email, score, completed_at, transcript)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		 	student_name = ?, student_email = ?, score = ?, completed_at = ?, transcript = ?`,
		sum.SessionID, sum.StudentName, sum.StudentEmail, sum.Score, sum.Timestamp, string(transcript),
		sum.StudentName, sum.StudentEmail, sum.Score, sum.Timestamp, string(transcript),
	)
	return err
}

// GetSummary returns the archived summary for a session, or nil when the
// session is unknown.
func (s *Store) GetSummary(sessionID string) (*model.Summary, error) {
	var (
		sum        model.Summary
		completed  time.Time
		transcript string
	)
	err := s.db.QueryRow(
		`SELECT session_id, student_name, student_email, score, completed_at, transcript
		 FROM summaries WHERE session_id = ?`, sessionID,
	).Scan(&sum.SessionID, &sum.StudentName, &sum.StudentEmail, &sum.Score, &completed, &transcript)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sum.Timestamp = completed
	if err := json.Unmarshal([]byte(transcript), &sum.ConversationHistory); err != nil {
		return nil, fmt.Errorf("unmarshal transcript for %s: %w", sessionID, err)
	}
	return &sum, nil
}

// ListSummaries returns all archived summaries, newest first.
func (s *Store) ListSummaries() ([]model.Summary, error) {
	rows, err := s.db.Query(
		`SELECT session_id, student_name, student_email, score, completed_at, transcript
		 FROM summaries ORDER BY completed_at DESC, session_id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.Summary
	for rows.Next() {
		var (
			sum        model.Summary
			completed  time.Time
			transcript string
		)
		if err := rows.Scan(&sum.SessionID, &sum.StudentName, &sum.StudentEmail, &sum.Score, &completed, &transcript); err != nil {
			return nil, err
		}
		sum.Timestamp = completed
		if err := json.Unmarshal([]byte(transcript), &sum.ConversationHistory); err != nil {
			return nil, fmt.Errorf("unmarshal transcript for %s: %w", sum.SessionID, err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// SummaryCount returns the number of archived summaries.
func (s *Store) SummaryCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM summaries`).Scan(&count)
	return count, err
}
