// Package models defines the domain entities produced by the spotlens pipeline.
//
// The package contains two categories of types:
//
// 1. Library entities built while fetching:
//   - [Song] : an immutable track with its primary artist, play-count proxy and genre set
//   - [FollowedArtist] : an artist the user follows
//
// 2. Report entities built by aggregation. These are plain data with no behavior:
//   - [ArtistSummary], [GenreSummary] : per-artist and per-genre aggregates of a song collection
//   - [ArtistPlayCount], [GenrePlayCount] : listening-history aggregates keyed on popularity
//   - [LibraryReport], [ListeningReport] : the containers written to disk
//
// [ReportKind] selects which report the engine builds.
package models
