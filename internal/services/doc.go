// Package services defines the [Library] capability the report pipeline reads from and implements it for the Spotify Web API.
//
// # Library Interface
//
// The pipeline only needs read access to a user's library and listening history, so [Library] exposes the
// paginated endpoints one page at a time. Pagination, caching and request pacing live in the tasks package.
//
// Offset-paginated endpoints (saved tracks, playlist tracks) return a [Page] of raw JSON items so the caller can
// persist them unchanged. Playlists and artists are decoded into typed records.
//
// # Spotify Implementation
//
// [SpotifyService] authenticates in one of two modes:
//   - user: OAuth2 authorization code flow. A stored token is wrapped in an [oauth2.TokenSource] so expired access
//     tokens are refreshed transparently; [SpotifyService.Token] returns the current token for persisting.
//   - client: OAuth2 client credentials. Only endpoints that need no user context (artist lookup) succeed.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no token source configured
//   - [shared.ErrTokenExpired] : the API answered 401, reauthorization needed
//   - [shared.ErrAPIRequest] : transport failure or any other non-2xx status
package services
