package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotlens/internal/models"
	"github.com/desertthunder/spotlens/internal/shared"
)

// ErrRunNotFound is returned when no run record matches.
var ErrRunNotFound = errors.New("run not found")

// RunRepository records every report written to disk.
type RunRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db, now: time.Now}
}

// Create inserts run with a generated ID, sequence and creation time.
func (r *RunRepository) Create(run *models.RunRecord) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "report_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.ID = shared.GenerateID()
	run.Sequence = sequence
	run.CreatedAt = r.now().UTC()

	query := `
		INSERT INTO report_runs (id, sequence, kind, path, fingerprint, song_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, run.ID, run.Sequence, run.Kind, run.Path, run.Fingerprint, run.SongCount, run.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(id string) (*models.RunRecord, error) {
	row := r.db.QueryRow(`
		SELECT id, sequence, kind, path, fingerprint, song_count, created_at
		FROM report_runs WHERE id = ?`, id)
	return scanRun(row)
}

// Latest returns the most recent run of kind.
func (r *RunRepository) Latest(kind string) (*models.RunRecord, error) {
	row := r.db.QueryRow(`
		SELECT id, sequence, kind, path, fingerprint, song_count, created_at
		FROM report_runs WHERE kind = ? ORDER BY sequence DESC LIMIT 1`, kind)
	return scanRun(row)
}

// List returns runs newest first. A kind of "" matches every run; limit <= 0 means no limit.
func (r *RunRepository) List(kind string, limit int) ([]*models.RunRecord, error) {
	query := `
		SELECT id, sequence, kind, path, fingerprint, song_count, created_at
		FROM report_runs
	`
	args := []any{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY sequence DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.RunRecord, error) {
	var run models.RunRecord
	err := s.Scan(&run.ID, &run.Sequence, &run.Kind, &run.Path, &run.Fingerprint, &run.SongCount, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &run, nil
}
