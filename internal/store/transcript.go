package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TranscriptEntry is one persisted confirmed token.
type TranscriptEntry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptRepository provides access to session transcripts.
type TranscriptRepository struct {
	db *sql.DB
}

// Transcripts returns the transcript repository for this store.
func (s *Store) Transcripts() *TranscriptRepository {
	return &TranscriptRepository{db: s.db}
}

// Record appends a token to a session's transcript.
func (r *TranscriptRepository) Record(sessionID, text string, at time.Time) error {
	_, err := r.db.Exec(
		`INSERT INTO transcripts (id, session_id, seq, text, created_at)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM transcripts WHERE session_id = ?), ?, ?)`,
		uuid.New().String(), sessionID, sessionID, text, at,
	)
	return err
}

// List returns a session's transcript, oldest first. A positive limit keeps
// only the most recent entries.
func (r *TranscriptRepository) List(sessionID string, limit int) ([]TranscriptEntry, error) {
	query := `SELECT id, session_id, seq, text, created_at FROM (
			SELECT id, session_id, seq, text, created_at FROM transcripts
			WHERE session_id = ? ORDER BY seq DESC LIMIT ?
		) ORDER BY seq`
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TranscriptEntry
	for rows.Next() {
		var e TranscriptEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &e.Text, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// DeleteBySession removes a session's transcript.
func (r *TranscriptRepository) DeleteBySession(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM transcripts WHERE session_id = ?`, sessionID)
	return err
}
