package services

import (
	"context"
	"encoding/json"

	"github.com/desertthunder/spotlens/internal/models"
)

// Library is the read-only view of a Spotify account used to build reports.
//
// Every method issues exactly one remote request.
type Library interface {
	// CurrentUser returns the authenticated user's profile.
	CurrentUser(ctx context.Context) (*SpotifyUser, error)

	// SavedTracks returns one page of the user's liked tracks.
	SavedTracks(ctx context.Context, offset, limit int) (*Page, error)

	// UserPlaylists returns one page of the user's playlists.
	UserPlaylists(ctx context.Context, offset, limit int) (*PlaylistPage, error)

	// PlaylistTracks returns one page of a playlist's track items.
	PlaylistTracks(ctx context.Context, playlistID string, offset, limit int) (*Page, error)

	// FollowedArtists returns the artists after the given cursor. An empty next cursor marks the last page.
	FollowedArtists(ctx context.Context, after string, limit int) (*ArtistCursorPage, error)

	// TopArtists returns the user's top artists over timeRange.
	TopArtists(ctx context.Context, limit int, timeRange models.TimeRange) ([]SpotifyArtist, error)

	// TopTracks returns the user's top tracks over timeRange.
	TopTracks(ctx context.Context, limit int, timeRange models.TimeRange) ([]SpotifyTrack, error)

	// Artist looks up a single artist, including its genres.
	Artist(ctx context.Context, artistID string) (*SpotifyArtist, error)
}

// Page is one window of an offset-paginated collection with its items left undecoded.
type Page struct {
	Items  []json.RawMessage `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Next   *string           `json:"next"`
}

// HasNext reports whether the API advertised a following page.
func (p *Page) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// PlaylistPage is one window of the user's playlists.
type PlaylistPage struct {
	Items  []SpotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

// HasNext reports whether the API advertised a following page.
func (p *PlaylistPage) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// ArtistCursorPage is one window of a cursor-paginated artist collection.
type ArtistCursorPage struct {
	Items []SpotifyArtist
	After string
}
