package models

import (
	"encoding/json"
	"slices"
	"strings"
)

// Song is a track resolved from the remote library.
//
// Songs are immutable: fields are only set by [NewSong] and the genre slice is copied in and out.
type Song struct {
	id        string
	title     string
	artist    string
	playCount int
	genres    []string
}

// NewSong creates a Song. id may be empty for local or unavailable tracks.
//
// Genre tags form a set: repeated tags are dropped, keeping first-seen order.
func NewSong(id, title, artist string, playCount int, genres []string) Song {
	return Song{
		id:        id,
		title:     title,
		artist:    artist,
		playCount: playCount,
		genres:    uniqueGenres(genres),
	}
}

func uniqueGenres(genres []string) []string {
	if genres == nil {
		return nil
	}
	out := make([]string, 0, len(genres))
	seen := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

func (s Song) ID() string     { return s.id }
func (s Song) Title() string  { return s.title }
func (s Song) Artist() string { return s.artist }

// PlayCount returns the play-count proxy: a literal tally for library songs, a popularity score for history songs.
func (s Song) PlayCount() int { return s.playCount }

// Genres returns a copy of the song's genre tags.
func (s Song) Genres() []string { return slices.Clone(s.genres) }

// GenreCount returns the number of genre tags without copying them.
func (s Song) GenreCount() int { return len(s.genres) }

// FallbackKey is the identity used when the song has no ID: the lowercased title and artist.
func (s Song) FallbackKey() [2]string {
	return [2]string{strings.ToLower(s.title), strings.ToLower(s.artist)}
}

type songJSON struct {
	SpotifyID string   `json:"spotify_id"`
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	PlayCount int      `json:"play_count"`
	Genres    []string `json:"genres"`
}

// MarshalJSON implements [json.Marshaler].
func (s Song) MarshalJSON() ([]byte, error) {
	genres := s.genres
	if genres == nil {
		genres = []string{}
	}
	return json.Marshal(songJSON{
		SpotifyID: s.id,
		Title:     s.title,
		Artist:    s.artist,
		PlayCount: s.playCount,
		Genres:    genres,
	})
}

// UnmarshalJSON implements [json.Unmarshaler] so written reports can be read back.
func (s *Song) UnmarshalJSON(data []byte) error {
	var v songJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = NewSong(v.SpotifyID, v.Title, v.Artist, v.PlayCount, v.Genres)
	return nil
}

// FollowedArtist is an artist the user follows.
type FollowedArtist struct {
	Name      string   `json:"name"`
	SpotifyID string   `json:"spotify_id"`
	Genres    []string `json:"genres"`
	URL       string   `json:"url"`
}
