package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Sample is one captured hand stored under a label.
type Sample struct {
	ID          int64     `json:"id"`
	Label       string    `json:"label"`
	SampleIndex int       `json:"sample_index"`
	Data        []float64 `json:"data"`
	CreatedAt   time.Time `json:"created_at"`
}

// SampleRepository provides access to captured samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// NormalizeLabel trims and upper-cases a capture label.
func NormalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// Create stores one flattened hand under label and returns its index
// within the label and the label's new sample total.
func (r *SampleRepository) Create(label string, data []float64) (index int, total int, err error) {
	label = NormalizeLabel(label)
	if label == "" {
		return 0, 0, fmt.Errorf("label is required")
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return 0, 0, fmt.Errorf("encode sample: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	if err := tx.QueryRow(`SELECT COUNT(*) FROM samples WHERE label = ?`, label).Scan(&index); err != nil {
		return 0, 0, err
	}

	if _, err := tx.Exec(
		`INSERT INTO samples (label, sample_index, data, created_at) VALUES (?, ?, ?, ?)`,
		label, index, string(encoded), time.Now(),
	); err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return index, index + 1, nil
}

// ListByLabel retrieves all samples for a label in capture order.
func (r *SampleRepository) ListByLabel(label string) ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT id, label, sample_index, data, created_at
		 FROM samples
		 WHERE label = ?
		 ORDER BY sample_index`,
		NormalizeLabel(label),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var data string
		if err := rows.Scan(&s.ID, &s.Label, &s.SampleIndex, &data, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &s.Data); err != nil {
			return nil, fmt.Errorf("decode sample %d: %w", s.ID, err)
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// Labels returns every label with at least one sample, sorted.
func (r *SampleRepository) Labels() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT label FROM samples ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}

	return labels, rows.Err()
}

// DeleteByLabel removes all samples for a label.
func (r *SampleRepository) DeleteByLabel(label string) error {
	result, err := r.db.Exec(`DELETE FROM samples WHERE label = ?`, NormalizeLabel(label))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
