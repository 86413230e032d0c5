package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// timeLayout is RFC3339 with fixed-width nanoseconds. Timestamps are stored
// as text and compared lexicographically in SQL (ORDER BY, retention cutoff),
// which requires every value to have the same width; RFC3339Nano trims
// trailing zeros and can misorder values within the same second.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SaveModel atomically replaces the owner's model slot. The upsert runs as a
// single SQLite statement, so a concurrent reader sees either the previous
// record or the new one, never a mix.
func (s *SQLiteStore) SaveModel(rec ModelRecord) error {
	if !s.enabled || s.db == nil {
		return fmt.Errorf("model store unavailable")
	}

	if rec.Owner == "" {
		rec.Owner = DefaultOwner
	}
	if rec.TrainedAt.IsZero() {
		rec.TrainedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO trained_models (owner, version, trained_at, params)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			version = excluded.version,
			trained_at = excluded.trained_at,
			params = excluded.params
	`
	if _, err := s.db.Exec(query, rec.Owner, rec.Version, rec.TrainedAt.UTC().Format(timeLayout), rec.Params); err != nil {
		return fmt.Errorf("failed to save model for %s: %w", rec.Owner, err)
	}

	return nil
}

// LoadModel retrieves the model for an owner. A disabled store behaves like
// an empty one: prediction falls back rather than failing.
func (s *SQLiteStore) LoadModel(owner string) (*ModelRecord, error) {
	if !s.enabled || s.db == nil {
		return nil, ErrNoModel
	}

	if owner == "" {
		owner = DefaultOwner
	}

	query := `
		SELECT owner, version, trained_at, params
		FROM trained_models
		WHERE owner = ?
	`
	row := s.db.QueryRow(query, owner)

	var rec ModelRecord
	var trainedAt string
	if err := row.Scan(&rec.Owner, &rec.Version, &trainedAt, &rec.Params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoModel
		}
		return nil, fmt.Errorf("failed to load model for %s: %w", owner, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, trainedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trained_at for %s: %w", owner, err)
	}
	rec.TrainedAt = ts

	return &rec, nil
}

// ListModels returns metadata for all stored models, newest first.
func (s *SQLiteStore) ListModels() ([]ModelInfo, error) {
	if !s.enabled || s.db == nil {
		return []ModelInfo{}, nil
	}

	query := `
		SELECT owner, version, trained_at, length(params)
		FROM trained_models
		ORDER BY trained_at DESC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var infos []ModelInfo
	for rows.Next() {
		var info ModelInfo
		var trainedAt string
		if err := rows.Scan(&info.Owner, &info.Version, &trainedAt, &info.SizeBytes); err != nil {
			return nil, fmt.Errorf("failed to scan model row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, trainedAt); err == nil {
			info.TrainedAt = ts
		}
		infos = append(infos, info)
	}

	return infos, rows.Err()
}

// Cleanup removes models older than the retention period.
func (s *SQLiteStore) Cleanup(retention time.Duration) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-retention).Format(timeLayout)
	if _, err := s.db.Exec("DELETE FROM trained_models WHERE trained_at < ?", cutoff); err != nil {
		return fmt.Errorf("failed to cleanup old models: %w", err)
	}

	return nil
}
