// Package tasks builds spotlens reports from a user's Spotify library with real-time progress reporting.
//
// # Pipeline
//
// A library report runs these steps in order, on one goroutine:
//
//  1. [LibraryFetcher.FetchSavedTracks] : liked tracks, paged 50 at a time through the page cache
//  2. [LibraryFetcher.FetchPlaylistSongs] : every playlist's tracks, each playlist cached as a whole
//  3. [Merge] : deduplicates the two paths by track ID, falling back to (title, artist)
//  4. [GroupByArtist], [GroupByGenre], [TopN], [TopArtists] : summaries
//  5. [LibraryFetcher.FetchFollowedArtists] : cursor-paginated followed artists
//
// A history report reads the user's top artists and tracks and groups them with [GroupTopTracksByArtist]
// and [GroupArtistsAndGenres].
//
// # Pagination
//
// [OffsetPager] checks its [PageCache] before each request: a window the cache already covers costs no remote
// call. [CursorPager] follows opaque cursors until an empty one. Both share a [Pacer] that spaces remote
// requests by a fixed delay; it is not a backoff and ignores rate-limit responses.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters and a message.
// Updates use select with default to prevent blocking.
//
// # Errors
//
// Remote failures surface as [shared.RemoteCallError] naming the operation and offset or cursor, and cache
// failures as [shared.CacheIOError]. Either aborts the report. Genre lookups are the exception: the resolver
// degrades them to an empty genre list.
package tasks
