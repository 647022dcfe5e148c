// Package cache persists raw Spotify page data as one JSON file per key.
//
// A [Store] answers one question for the page fetchers: does the cached list already cover
// the window [offset, offset+limit)? If it does, no remote call is needed. If it doesn't, the
// fetched batch replaces the tail of the list from offset onward and the whole file is rewritten.
//
// Files are written to a temporary name in the same directory and renamed over the target,
// so a failed write never leaves a truncated cache behind. There is no locking; two processes
// sharing a cache directory will overwrite each other.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/spotlens/internal/shared"
	"github.com/spf13/afero"
)

const fileExt = ".json"

// Store is a directory of JSON cache files.
type Store struct {
	dir string
	fs  afero.Fs
}

// Option configures a [Store].
type Option func(*Store)

// WithFs sets the filesystem. Tests use [afero.NewMemMapFs].
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// Open returns a Store rooted at dir. The directory is created on the first write.
func Open(dir string, options ...Option) *Store {
	s := &Store{dir: dir, fs: afero.NewOsFs()}
	for _, option := range options {
		option(s)
	}
	return s
}

// SavedTracksKey is the cache key for a user's liked tracks.
func SavedTracksKey(userID string) string {
	return userID + "_user_saved_tracks"
}

// PlaylistTracksKey is the cache key for a playlist's track items.
func PlaylistTracksKey(playlistID string) string {
	return playlistID + "_saved_tracks"
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// Load returns the list stored under key, or an empty list when no file exists.
func (s *Store) Load(key string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	found, err := s.LoadObject(key, &items)
	if err != nil {
		return nil, err
	}
	if !found || items == nil {
		return []json.RawMessage{}, nil
	}
	return items, nil
}

// LoadObject decodes the file stored under key into v. It reports false when no file exists.
func (s *Store) LoadObject(key string, v any) (bool, error) {
	data, err := afero.ReadFile(s.fs, s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, shared.NewCacheIOError("load", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, shared.NewCacheIOError("load", key, fmt.Errorf("failed to parse cache file: %w", err))
	}
	return true, nil
}

// Save replaces the file for key with data encoded as indented JSON.
func (s *Store) Save(key string, data any) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return shared.NewCacheIOError("save", key, fmt.Errorf("failed to marshal: %w", err))
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return shared.NewCacheIOError("save", key, fmt.Errorf("failed to create cache directory: %w", err))
	}

	tmp, err := afero.TempFile(s.fs, s.dir, key+fileExt+".tmp-*")
	if err != nil {
		return shared.NewCacheIOError("save", key, fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(encoded)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		s.fs.Remove(tmpName)
		return shared.NewCacheIOError("save", key, fmt.Errorf("failed to write temp file: %w", err))
	}

	if err := s.fs.Rename(tmpName, s.Path(key)); err != nil {
		s.fs.Remove(tmpName)
		return shared.NewCacheIOError("save", key, fmt.Errorf("failed to replace cache file: %w", err))
	}
	return nil
}

// Covers reports whether a cached list of length n satisfies [offset, offset+limit).
func Covers(n, offset, limit int) bool {
	return n >= offset+limit
}

// UpdateIfNeeded merges batch into current at offset.
//
// When current already covers [offset, offset+limit) it is returned unchanged and nothing is written.
// Otherwise the result keeps current[:offset], appends batch, and is persisted before being returned.
func (s *Store) UpdateIfNeeded(key string, current []json.RawMessage, offset, limit int, batch []json.RawMessage) ([]json.RawMessage, error) {
	if Covers(len(current), offset, limit) {
		return current, nil
	}

	keep := min(offset, len(current))
	updated := make([]json.RawMessage, 0, keep+len(batch))
	updated = append(updated, current[:keep]...)
	updated = append(updated, batch...)

	if err := s.Save(key, updated); err != nil {
		return nil, fmt.Errorf("failed to update cache at offset %d: %w", offset, err)
	}
	return updated, nil
}

// Stats summarizes the files in the cache directory.
type Stats struct {
	Files int
	Bytes int64
}

// Stats counts cache files and their total size. A missing directory is an empty cache.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return st, nil
		}
		return st, shared.NewCacheIOError("stat", s.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		st.Files++
		st.Bytes += e.Size()
	}
	return st, nil
}

// Clear removes every cache file, leaving the directory in place.
func (s *Store) Clear() (int, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return 0, nil
		}
		return 0, shared.NewCacheIOError("clear", s.dir, err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.Contains(e.Name(), fileExt) {
			continue
		}
		if err := s.fs.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return removed, shared.NewCacheIOError("clear", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}
