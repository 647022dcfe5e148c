package models

import "time"

// ArtistSummary aggregates the songs attributed to one artist.
type ArtistSummary struct {
	Name           string `json:"name"`
	SongCount      int    `json:"song_count"`
	TotalPlayCount int    `json:"total_play_count"`
}

// ArtistWeight is an artist's summed play-count contribution within one genre.
type ArtistWeight struct {
	Name           string `json:"name"`
	TotalPlayCount int    `json:"total_play_count"`
}

// GenreSummary aggregates every song carrying one genre tag.
type GenreSummary struct {
	Name           string         `json:"name"`
	SongCount      int            `json:"song_count"`
	TotalPlayCount int            `json:"total_play_count"`
	TopArtists     []ArtistWeight `json:"top_artists"`
	TopSongs       []Song         `json:"top_songs"`
}

// ArtistPlayCount is a top artist from listening history with popularity as its play count.
type ArtistPlayCount struct {
	Name      string   `json:"name"`
	PlayCount int      `json:"play_count"`
	TopTracks []string `json:"top_tracks"`
}

// GenrePlayCount is a genre's popularity-weighted total across top artists.
type GenrePlayCount struct {
	Genre     string `json:"genre"`
	PlayCount int    `json:"play_count"`
}

// ListeningReport is built from the user's top artists and tracks.
type ListeningReport struct {
	TimeRange         TimeRange         `json:"time_range"`
	GeneratedAt       time.Time         `json:"generated_at"`
	TopArtists        []ArtistPlayCount `json:"top_artists"`
	GenreDistribution []GenrePlayCount  `json:"genre_distribution"`
}

// LibraryReport is built from saved tracks, playlists and followed artists.
type LibraryReport struct {
	GeneratedAt        time.Time        `json:"generated_at"`
	Songs              []Song           `json:"songs"`
	TopSongs           []Song           `json:"top_songs"`
	ArtistDistribution []ArtistSummary  `json:"artist_distribution"`
	TopArtists         []ArtistSummary  `json:"top_artists"`
	GenreSummaries     []GenreSummary   `json:"genre_summaries"`
	FollowedArtists    []FollowedArtist `json:"followed_artists"`
}

// Report is the tagged result of a report build: exactly one of Library or Listening is set, matching Kind.
type Report struct {
	Kind      ReportKind
	Library   *LibraryReport
	Listening *ListeningReport
}

// Payload returns the populated report entity.
func (r Report) Payload() any {
	switch r.Kind {
	case ReportLibrary:
		return r.Library
	case ReportHistory:
		return r.Listening
	default:
		return nil
	}
}

// SongCount returns the number of songs in a library report and the number of top artists in a history report.
func (r Report) SongCount() int {
	switch {
	case r.Library != nil:
		return len(r.Library.Songs)
	case r.Listening != nil:
		return len(r.Listening.TopArtists)
	default:
		return 0
	}
}
