package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlens/internal/cache"
	"github.com/desertthunder/spotlens/internal/genres"
	"github.com/desertthunder/spotlens/internal/models"
	"github.com/desertthunder/spotlens/internal/services"
	"github.com/desertthunder/spotlens/internal/shared"
)

const (
	savedTracksLimit     = 50
	playlistsLimit       = 50
	playlistTracksLimit  = 100
	followedArtistsLimit = 50
)

var jsonNull = []byte("null")

// LibraryFetcher reads songs from the user's library through the page cache and genre resolver.
type LibraryFetcher struct {
	library  services.Library
	store    *cache.Store
	resolver *genres.Resolver
	pacer    *Pacer
	logger   *log.Logger
}

// NewLibraryFetcher wires a fetcher. All fetch paths share pacer, so remote page requests are spaced across paths.
func NewLibraryFetcher(library services.Library, store *cache.Store, resolver *genres.Resolver, pacer *Pacer, logger *log.Logger) *LibraryFetcher {
	return &LibraryFetcher{library: library, store: store, resolver: resolver, pacer: pacer, logger: logger}
}

// GenreStats returns the resolver's counters for this run.
func (f *LibraryFetcher) GenreStats() genres.Stats {
	return f.resolver.Stats()
}

// songCollector turns raw tracks into songs, skipping tracks without an ID and repeats within one fetch path.
type songCollector struct {
	resolver *genres.Resolver
	scope    genres.CallScope
	seen     map[string]struct{}
	songs    []models.Song
}

func newSongCollector(resolver *genres.Resolver) *songCollector {
	return &songCollector{
		resolver: resolver,
		scope:    genres.NewCallScope(),
		seen:     map[string]struct{}{},
	}
}

func (c *songCollector) add(ctx context.Context, track *services.SpotifyTrack) {
	if track == nil || track.ID == "" {
		return
	}
	if _, ok := c.seen[track.ID]; ok {
		return
	}
	c.seen[track.ID] = struct{}{}

	artist := track.PrimaryArtist()
	tags := c.resolver.Resolve(ctx, c.scope, artist.ID)
	c.songs = append(c.songs, models.NewSong(track.ID, track.Name, artist.Name, 1, tags))
}

// FetchSavedTracks returns the user's liked tracks.
//
// The raw track records are cached under the user's saved-tracks key; null tracks are kept as JSON null
// so cache indices stay aligned with remote offsets.
func (f *LibraryFetcher) FetchSavedTracks(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Song, error) {
	f.logger.Info("Getting current user id")
	user, err := f.library.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user saved tracks: %w", shared.NewRemoteCallError("current user", err, "me"))
	}

	collector := newSongCollector(f.resolver)
	pager := &OffsetPager[json.RawMessage]{
		Op:     "Getting user's saved tracks",
		Limit:  savedTracksLimit,
		Cache:  NewRawPageCache(f.store, cache.SavedTracksKey(user.ID)),
		Pacer:  f.pacer,
		Logger: f.logger,
		Fetch: func(ctx context.Context, offset, limit int) ([]json.RawMessage, bool, error) {
			page, err := f.library.SavedTracks(ctx, offset, limit)
			if err != nil {
				return nil, false, err
			}
			tracks := make([]json.RawMessage, 0, len(page.Items))
			for _, raw := range page.Items {
				var item services.SpotifySavedTrack
				if err := json.Unmarshal(raw, &item); err != nil {
					return nil, false, fmt.Errorf("failed to decode saved track: %w", err)
				}
				if len(item.Track) == 0 {
					item.Track = jsonNull
				}
				tracks = append(tracks, item.Track)
			}
			return tracks, page.HasNext(), nil
		},
	}

	stats, err := pager.Run(ctx, func(batch []json.RawMessage) error {
		for _, raw := range batch {
			if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
				continue
			}
			var track services.SpotifyTrack
			if err := json.Unmarshal(raw, &track); err != nil {
				return fmt.Errorf("failed to decode track: %w", err)
			}
			collector.add(ctx, &track)
		}
		sendProgress(progress, savedTracksUpdate(len(collector.songs)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user saved tracks: %w", err)
	}

	f.logger.Debug("saved tracks fetched", "songs", len(collector.songs), "pages", stats.Pages, "cached", stats.CachedPages)
	return collector.songs, nil
}

// FetchPlaylists returns every playlist of the current user.
func (f *LibraryFetcher) FetchPlaylists(ctx context.Context) ([]services.SpotifySimplePlaylist, error) {
	var playlists []services.SpotifySimplePlaylist
	pager := &OffsetPager[services.SpotifySimplePlaylist]{
		Op:     "Getting user's current playlists",
		Limit:  playlistsLimit,
		Pacer:  f.pacer,
		Logger: f.logger,
		Fetch: func(ctx context.Context, offset, limit int) ([]services.SpotifySimplePlaylist, bool, error) {
			page, err := f.library.UserPlaylists(ctx, offset, limit)
			if err != nil {
				return nil, false, err
			}
			return page.Items, page.HasNext(), nil
		},
	}

	_, err := pager.Run(ctx, func(batch []services.SpotifySimplePlaylist) error {
		playlists = append(playlists, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return playlists, nil
}

// FetchPlaylistSongs returns the distinct songs across all of the user's playlists.
//
// A playlist whose cached item list is at least as long as its reported total is read from cache without
// any remote call. Otherwise all of its pages are fetched and the cache file is replaced.
func (f *LibraryFetcher) FetchPlaylistSongs(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Song, error) {
	playlists, err := f.FetchPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching playlist songs: %w", err)
	}

	collector := newSongCollector(f.resolver)
	for i, pl := range playlists {
		sendProgress(progress, playlistTracksUpdate(i+1, len(playlists), pl.Name))

		items, err := f.playlistItems(ctx, pl)
		if err != nil {
			return nil, fmt.Errorf("error fetching playlist songs: %w", err)
		}

		for _, raw := range items {
			var item services.SpotifyPlaylistTrack
			if err := json.Unmarshal(raw, &item); err != nil {
				return nil, fmt.Errorf("error fetching playlist songs: %w", shared.NewCacheIOError("decode", cache.PlaylistTracksKey(pl.ID), err))
			}
			collector.add(ctx, item.Track)
		}
	}

	return collector.songs, nil
}

func (f *LibraryFetcher) playlistItems(ctx context.Context, pl services.SpotifySimplePlaylist) ([]json.RawMessage, error) {
	key := cache.PlaylistTracksKey(pl.ID)

	cached, err := f.store.Load(key)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 && len(cached) >= pl.Tracks.Total {
		f.logger.Debug("playlist served from cache", "playlist_id", pl.ID, "items", len(cached))
		return cached, nil
	}

	var items []json.RawMessage
	pager := &OffsetPager[json.RawMessage]{
		Op:     "Getting playlists tracks",
		Limit:  playlistTracksLimit,
		Pacer:  f.pacer,
		Logger: f.logger.With("playlist_id", pl.ID),
		Fetch: func(ctx context.Context, offset, limit int) ([]json.RawMessage, bool, error) {
			page, err := f.library.PlaylistTracks(ctx, pl.ID, offset, limit)
			if err != nil {
				return nil, false, err
			}
			return page.Items, page.HasNext(), nil
		},
	}
	if _, err := pager.Run(ctx, func(batch []json.RawMessage) error {
		items = append(items, batch...)
		return nil
	}); err != nil {
		return nil, err
	}

	if items == nil {
		items = []json.RawMessage{}
	}
	if err := f.store.Save(key, items); err != nil {
		return nil, err
	}
	return items, nil
}

// FetchFollowedArtists returns the artists the user follows, sorted by name case-insensitively.
func (f *LibraryFetcher) FetchFollowedArtists(ctx context.Context) ([]models.FollowedArtist, error) {
	var artists []models.FollowedArtist
	pager := &CursorPager[services.SpotifyArtist]{
		Op:     "Getting user followed artists",
		Pacer:  f.pacer,
		Logger: f.logger,
		Fetch: func(ctx context.Context, cursor string) ([]services.SpotifyArtist, string, error) {
			page, err := f.library.FollowedArtists(ctx, cursor, followedArtistsLimit)
			if err != nil {
				return nil, "", err
			}
			return page.Items, page.After, nil
		},
	}

	_, err := pager.Run(ctx, func(batch []services.SpotifyArtist) error {
		for _, a := range batch {
			tags := a.Genres
			if tags == nil {
				tags = []string{}
			}
			artists = append(artists, models.FollowedArtist{
				Name:      a.Name,
				SpotifyID: a.ID,
				Genres:    tags,
				URL:       a.URL(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unexpected error fetching followed artists: %w", err)
	}

	slices.SortStableFunc(artists, func(a, b models.FollowedArtist) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return artists, nil
}
