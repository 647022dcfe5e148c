// Package genres resolves artist identifiers to genre tags through a tiered cache.
//
// Lookups consult, in order: the call-scope map owned by a single fetch, the resolver's process-scope map
// (loaded lazily from a [Store] on first use), and finally the remote [ArtistLookup]. A remote answer is
// written to all three tiers before it is returned, so an artist is fetched at most once per run.
//
// Resolution never fails outward. Remote and storage failures are logged and the artist resolves to no genres.
package genres

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlens/internal/services"
)

// ArtistLookup fetches a single artist from the remote service.
type ArtistLookup interface {
	Artist(ctx context.Context, artistID string) (*services.SpotifyArtist, error)
}

// Store is the persistent artist→genres mapping.
type Store interface {
	Load() (map[string][]string, error)
	Put(artistID string, genres []string) error
}

// CallScope is the genre map owned by one fetch operation.
type CallScope map[string][]string

// NewCallScope returns an empty call-scope map.
func NewCallScope() CallScope {
	return CallScope{}
}

// Stats counts where resolutions were answered.
type Stats struct {
	CallHits    int
	ProcessHits int
	RemoteCalls int
	Failures    int
}

// Resolver owns the process-scope genre map for one run.
type Resolver struct {
	lookup  ArtistLookup
	store   Store
	logger  *log.Logger
	process map[string][]string
	stats   Stats
}

// NewResolver creates a Resolver. The store is not read until the first resolution.
func NewResolver(lookup ArtistLookup, store Store, logger *log.Logger) *Resolver {
	return &Resolver{lookup: lookup, store: store, logger: logger}
}

// lookupResult is either [resolved] or [notFound].
type lookupResult interface {
	isLookupResult()
}

type resolved struct {
	genres []string
}

type notFound struct {
	err error
}

func (resolved) isLookupResult() {}
func (notFound) isLookupResult() {}

// Resolve returns the genres for artistID. The result is empty when the artist is unknown or any lookup fails.
func (r *Resolver) Resolve(ctx context.Context, scope CallScope, artistID string) []string {
	if artistID == "" {
		return []string{}
	}

	switch res := r.lookupGenres(ctx, scope, artistID).(type) {
	case resolved:
		return slices.Clone(res.genres)
	case notFound:
		r.stats.Failures++
		r.logger.Warn("genre resolution failed", "artist_id", artistID, "error", res.err)
		return []string{}
	default:
		panic("genres: unexpected lookup result")
	}
}

// Stats returns the resolution counters accumulated so far.
func (r *Resolver) Stats() Stats {
	return r.stats
}

func (r *Resolver) lookupGenres(ctx context.Context, scope CallScope, artistID string) lookupResult {
	if genres, ok := scope[artistID]; ok {
		r.stats.CallHits++
		return resolved{genres: genres}
	}

	r.ensureLoaded()
	if genres, ok := r.process[artistID]; ok {
		r.stats.ProcessHits++
		if scope != nil {
			scope[artistID] = genres
		}
		return resolved{genres: genres}
	}

	r.stats.RemoteCalls++
	r.logger.Info("Getting artist music genres", "artist_id", artistID)
	artist, err := r.lookup.Artist(ctx, artistID)
	if err != nil {
		return notFound{err: err}
	}

	genres := slices.Clone(artist.Genres)
	if genres == nil {
		genres = []string{}
	}

	if scope != nil {
		scope[artistID] = genres
	}
	r.process[artistID] = genres
	if err := r.store.Put(artistID, genres); err != nil {
		r.logger.Warn("failed to persist artist genres", "artist_id", artistID, "error", err)
	}
	return resolved{genres: genres}
}

// ensureLoaded fills the process-scope map from the store once. A failed load leaves it empty.
func (r *Resolver) ensureLoaded() {
	if r.process != nil {
		return
	}

	entries, err := r.store.Load()
	if err != nil {
		r.logger.Warn("failed to load genre store", "error", err)
		entries = nil
	}
	if entries == nil {
		entries = map[string][]string{}
	}
	r.process = entries
	r.logger.Debug("loaded genre store", "artists", len(r.process))
}
