package cache

import (
	"maps"
	"slices"
)

// ArtistGenresKey is the cache key of the artist→genres mapping.
const ArtistGenresKey = "artist_genres"

// GenreFile keeps the persistent artist→genres mapping in a single JSON object.
//
// Every Put rewrites the whole file, so resolving n unseen artists costs O(n²) bytes written.
// Use the sqlite store when that matters.
type GenreFile struct {
	store   *Store
	entries map[string][]string
}

// NewGenreFile returns a genre store persisted under [ArtistGenresKey] in store.
func NewGenreFile(store *Store) *GenreFile {
	return &GenreFile{store: store}
}

// Load returns a copy of every persisted mapping.
func (g *GenreFile) Load() (map[string][]string, error) {
	if err := g.ensureLoaded(); err != nil {
		return nil, err
	}
	return maps.Clone(g.entries), nil
}

// Put records genres for artistID and rewrites the file.
func (g *GenreFile) Put(artistID string, genres []string) error {
	if err := g.ensureLoaded(); err != nil {
		return err
	}
	if genres == nil {
		genres = []string{}
	}
	g.entries[artistID] = slices.Clone(genres)
	return g.store.Save(ArtistGenresKey, g.entries)
}

func (g *GenreFile) ensureLoaded() error {
	if g.entries != nil {
		return nil
	}
	entries := map[string][]string{}
	if _, err := g.store.LoadObject(ArtistGenresKey, &entries); err != nil {
		return err
	}
	if entries == nil {
		entries = map[string][]string{}
	}
	g.entries = entries
	return nil
}
