package models

import (
	"fmt"
	"time"
)

// RunRecord is a ledger entry for a written report.
type RunRecord struct {
	ID          string    `json:"id"`
	Sequence    int       `json:"sequence"`
	Kind        string    `json:"kind"`
	Path        string    `json:"path"`
	Fingerprint string    `json:"fingerprint"`
	SongCount   int       `json:"song_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the fields required before the record is stored.
func (r *RunRecord) Validate() error {
	if r.Kind == "" {
		return fmt.Errorf("run record kind is required")
	}
	if r.Path == "" {
		return fmt.Errorf("run record path is required")
	}
	if r.Fingerprint == "" {
		return fmt.Errorf("run record fingerprint is required")
	}
	return nil
}
