package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// GenreRepository stores artist genres in the artist_genres table.
//
// Unlike the JSON genre file, Put writes a single row, so persisting a miss costs the same regardless of store size.
type GenreRepository struct {
	db *sql.DB
}

// NewGenreRepository creates a new GenreRepository with the given database connection
func NewGenreRepository(db *sql.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// Load returns every persisted artist→genres mapping.
func (r *GenreRepository) Load() (map[string][]string, error) {
	rows, err := r.db.Query("SELECT artist_id, genres FROM artist_genres")
	if err != nil {
		return nil, fmt.Errorf("failed to query artist genres: %w", err)
	}
	defer rows.Close()

	entries := make(map[string][]string)
	for rows.Next() {
		var (
			artistID string
			raw      string
		)
		if err := rows.Scan(&artistID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan artist genres: %w", err)
		}

		var genres []string
		if err := json.Unmarshal([]byte(raw), &genres); err != nil {
			return nil, fmt.Errorf("failed to decode genres for %s: %w", artistID, err)
		}
		if genres == nil {
			genres = []string{}
		}
		entries[artistID] = genres
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// Put inserts or replaces the genres for artistID.
func (r *GenreRepository) Put(artistID string, genres []string) error {
	if artistID == "" {
		return fmt.Errorf("artist id is required")
	}
	if genres == nil {
		genres = []string{}
	}

	encoded, err := json.Marshal(genres)
	if err != nil {
		return fmt.Errorf("failed to encode genres: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT OR REPLACE INTO artist_genres (artist_id, genres, updated_at) VALUES (?, ?, ?)`,
		artistID, string(encoded), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert artist genres: %w", err)
	}
	return nil
}

// Count returns the number of artists with stored genres.
func (r *GenreRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM artist_genres").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count artist genres: %w", err)
	}
	return n, nil
}
