// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/spotlens/internal/models"
	"github.com/desertthunder/spotlens/internal/services"
)

// FakeLibrary is an in-memory [services.Library] that counts calls per method.
//
// Saved holds raw track records; SavedTracks wraps them in saved-track items. PlaylistItems holds raw playlist
// items keyed by playlist ID. FollowedPages are served in order: the page after cursor c is the one following
// the page whose After is c.
type FakeLibrary struct {
	User            services.SpotifyUser
	Saved           []json.RawMessage
	Playlists       []services.SpotifySimplePlaylist
	PlaylistItems   map[string][]json.RawMessage
	FollowedPages   []services.ArtistCursorPage
	TopArtistItems  []services.SpotifyArtist
	TopTrackItems   []services.SpotifyTrack
	Artists         map[string]services.SpotifyArtist
	Errors          map[string]error
	Calls           map[string]int
	LastTimeRange   models.TimeRange
	LastFollowAfter []string
}

// NewFakeLibrary returns an empty FakeLibrary for user "user1".
func NewFakeLibrary() *FakeLibrary {
	return &FakeLibrary{
		User:          services.SpotifyUser{ID: "user1", DisplayName: "Test User"},
		PlaylistItems: map[string][]json.RawMessage{},
		Artists:       map[string]services.SpotifyArtist{},
		Errors:        map[string]error{},
		Calls:         map[string]int{},
	}
}

func (f *FakeLibrary) call(op string) error {
	if f.Calls == nil {
		f.Calls = map[string]int{}
	}
	f.Calls[op]++
	return f.Errors[op]
}

// TotalCalls sums calls across every method.
func (f *FakeLibrary) TotalCalls() int {
	n := 0
	for _, c := range f.Calls {
		n += c
	}
	return n
}

func (f *FakeLibrary) CurrentUser(ctx context.Context) (*services.SpotifyUser, error) {
	if err := f.call("CurrentUser"); err != nil {
		return nil, err
	}
	u := f.User
	return &u, nil
}

func (f *FakeLibrary) SavedTracks(ctx context.Context, offset, limit int) (*services.Page, error) {
	if err := f.call("SavedTracks"); err != nil {
		return nil, err
	}
	window := pageWindow(f.Saved, offset, limit)
	items := make([]json.RawMessage, len(window))
	for i, track := range window {
		items[i] = SavedItem(track)
	}
	return newPage(items, len(f.Saved), offset, limit), nil
}

func (f *FakeLibrary) UserPlaylists(ctx context.Context, offset, limit int) (*services.PlaylistPage, error) {
	if err := f.call("UserPlaylists"); err != nil {
		return nil, err
	}
	page := &services.PlaylistPage{
		Items:  pageWindow(f.Playlists, offset, limit),
		Total:  len(f.Playlists),
		Limit:  limit,
		Offset: offset,
	}
	if offset+limit < len(f.Playlists) {
		next := fmt.Sprintf("playlists?offset=%d", offset+limit)
		page.Next = &next
	}
	return page, nil
}

func (f *FakeLibrary) PlaylistTracks(ctx context.Context, playlistID string, offset, limit int) (*services.Page, error) {
	if err := f.call("PlaylistTracks"); err != nil {
		return nil, err
	}
	all := f.PlaylistItems[playlistID]
	return newPage(pageWindow(all, offset, limit), len(all), offset, limit), nil
}

func (f *FakeLibrary) FollowedArtists(ctx context.Context, after string, limit int) (*services.ArtistCursorPage, error) {
	f.LastFollowAfter = append(f.LastFollowAfter, after)
	if err := f.call("FollowedArtists"); err != nil {
		return nil, err
	}

	idx := 0
	if after != "" {
		idx = -1
		for i, p := range f.FollowedPages {
			if p.After == after {
				idx = i + 1
				break
			}
		}
	}
	if idx < 0 || idx >= len(f.FollowedPages) {
		return &services.ArtistCursorPage{}, nil
	}
	p := f.FollowedPages[idx]
	return &p, nil
}

func (f *FakeLibrary) TopArtists(ctx context.Context, limit int, timeRange models.TimeRange) ([]services.SpotifyArtist, error) {
	f.LastTimeRange = timeRange
	if err := f.call("TopArtists"); err != nil {
		return nil, err
	}
	return pageWindow(f.TopArtistItems, 0, limit), nil
}

func (f *FakeLibrary) TopTracks(ctx context.Context, limit int, timeRange models.TimeRange) ([]services.SpotifyTrack, error) {
	if err := f.call("TopTracks"); err != nil {
		return nil, err
	}
	return pageWindow(f.TopTrackItems, 0, limit), nil
}

func (f *FakeLibrary) Artist(ctx context.Context, artistID string) (*services.SpotifyArtist, error) {
	if err := f.call("Artist"); err != nil {
		return nil, err
	}
	a, ok := f.Artists[artistID]
	if !ok {
		return nil, fmt.Errorf("artist %s: not found", artistID)
	}
	return &a, nil
}

func pageWindow[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	return all[offset:min(offset+limit, len(all))]
}

func newPage(items []json.RawMessage, total, offset, limit int) *services.Page {
	page := &services.Page{Items: items, Total: total, Limit: limit, Offset: offset}
	if offset+limit < total {
		next := fmt.Sprintf("next?offset=%d", offset+limit)
		page.Next = &next
	}
	return page
}

// TrackJSON returns a raw track record credited to one artist.
func TrackJSON(id, name, artistID, artistName string) json.RawMessage {
	track := services.SpotifyTrack{
		ID:      id,
		Name:    name,
		Artists: []services.SpotifyArtist{{ID: artistID, Name: artistName}},
	}
	data, err := json.Marshal(track)
	if err != nil {
		panic(err)
	}
	return data
}

// SavedItem wraps a raw track in a saved-track item.
func SavedItem(track json.RawMessage) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"added_at":"2024-01-01T00:00:00Z","track":%s}`, track))
}

// PlaylistItem wraps a raw track in a playlist item. A nil track produces a null entry.
func PlaylistItem(track json.RawMessage) json.RawMessage {
	if track == nil {
		track = json.RawMessage("null")
	}
	return json.RawMessage(fmt.Sprintf(`{"added_at":"2024-01-01T00:00:00Z","track":%s}`, track))
}

// Tracks returns n raw tracks t<start>..t<start+n-1> all by artist a1.
func Tracks(start, n int) []json.RawMessage {
	out := make([]json.RawMessage, n)
	for i := range out {
		id := fmt.Sprintf("t%d", start+i)
		out[i] = TrackJSON(id, "Song "+id, "a1", "Artist One")
	}
	return out
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
