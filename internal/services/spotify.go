// Spotify API implementation of [Library]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/spotlens/internal/models"
	"github.com/desertthunder/spotlens/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultRedirectURI = "http://127.0.0.1:3000/callback"
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"` // premium, free, etc.
	Followers   followers `json:"followers"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// PrimaryArtist returns the first credited artist, or a zero value when none is listed.
func (t SpotifyTrack) PrimaryArtist() SpotifyArtist {
	if len(t.Artists) == 0 {
		return SpotifyArtist{}
	}
	return t.Artists[0]
}

// SpotifyArtist represents a Spotify artist.
//
// Popularity is a pointer because simplified artist objects omit it.
type SpotifyArtist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Genres       []string     `json:"genres"`
	Popularity   *int         `json:"popularity,omitempty"`
	ExternalURLs externalURLs `json:"external_urls"`
	URI          string       `json:"uri"`
}

// URL returns the artist's Spotify web link.
func (a SpotifyArtist) URL() string {
	return a.ExternalURLs.Spotify
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyPlaylistTrack represents a track within a playlist context. Track is nil for removed or local items.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifySavedTrack represents a track saved in the user's library.
type SpotifySavedTrack struct {
	AddedAt string          `json:"added_at"`
	Track   json.RawMessage `json:"track"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Owner       Owner               `json:"owner"`
	Public      bool                `json:"public"`
	Tracks      simplePlaylistTrack `json:"tracks"`
	URI         string              `json:"uri"`
}

type followedArtistsResponse struct {
	Artists struct {
		Items   []SpotifyArtist `json:"items"`
		Cursors struct {
			After *string `json:"after"`
		} `json:"cursors"`
	} `json:"artists"`
}

// SpotifyService implements [Library] over the Spotify Web API.
// Uses [oauth2] for authentication; a user token is refreshed by its token source.
type SpotifyService struct {
	config      *oauth2.Config
	tokenSource oauth2.TokenSource
	httpClient  *http.Client
	baseURL     string
}

// Option configures a [SpotifyService].
type Option func(*SpotifyService)

// WithBaseURL points API requests at baseURL instead of the public Web API.
func WithBaseURL(baseURL string) Option {
	return func(s *SpotifyService) {
		s.baseURL = baseURL
	}
}

// WithEndpoint overrides the OAuth2 authorize and token URLs.
func WithEndpoint(authURL, tokenURL string) Option {
	return func(s *SpotifyService) {
		s.config.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	}
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, options ...Option) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-library-read",
			"playlist-read-private",
			"playlist-read-collaborative",
			"user-follow-read",
			"user-top-read",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	s := &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// SetToken authenticates with a previously issued user token. Expired tokens are refreshed on first use.
func (s *SpotifyService) SetToken(ctx context.Context, token *oauth2.Token) error {
	if token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return fmt.Errorf("%w: empty token", shared.ErrNotAuthenticated)
	}
	s.tokenSource = s.config.TokenSource(ctx, token)
	s.httpClient = oauth2.NewClient(ctx, s.tokenSource)
	return nil
}

// AuthenticateClient switches to the client credentials flow and fetches the first app token.
func (s *SpotifyService) AuthenticateClient(ctx context.Context) error {
	cc := &clientcredentials.Config{
		ClientID:     s.config.ClientID,
		ClientSecret: s.config.ClientSecret,
		TokenURL:     s.config.Endpoint.TokenURL,
	}

	ts := cc.TokenSource(ctx)
	if _, err := ts.Token(); err != nil {
		return fmt.Errorf("%w: client credentials: %w", shared.ErrAuthFailed, err)
	}

	s.tokenSource = ts
	s.httpClient = oauth2.NewClient(ctx, ts)
	return nil
}

// Token returns the current token, refreshing it first if it has expired.
func (s *SpotifyService) Token() (*oauth2.Token, error) {
	if s.tokenSource == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s.tokenSource.Token()
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 configuration for the callback server.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated GET against the Spotify API and decodes the JSON body into result.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	if s.tokenSource == nil {
		return fmt.Errorf("%w: call SetToken or AuthenticateClient first", shared.ErrNotAuthenticated)
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s: status %d", shared.ErrTokenExpired, endpoint, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: status %d: %s", shared.ErrAPIRequest, endpoint, resp.StatusCode, body)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %w", shared.ErrAPIRequest, err)
		}
	}
	return nil
}

func pageQuery(offset, limit int) url.Values {
	return url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SavedTracks retrieves one page of the user's saved tracks. The API caps limit at 50.
func (s *SpotifyService) SavedTracks(ctx context.Context, offset, limit int) (*Page, error) {
	var page Page
	if err := s.doRequest(ctx, "/me/tracks", pageQuery(offset, clampLimit(limit, 50)), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UserPlaylists retrieves one page of the current user's playlists. The API caps limit at 50.
func (s *SpotifyService) UserPlaylists(ctx context.Context, offset, limit int) (*PlaylistPage, error) {
	var page PlaylistPage
	if err := s.doRequest(ctx, "/me/playlists", pageQuery(offset, clampLimit(limit, 50)), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PlaylistTracks retrieves one page of a playlist's items. The API caps limit at 100.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, offset, limit int) (*Page, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	var page Page
	endpoint := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	if err := s.doRequest(ctx, endpoint, pageQuery(offset, clampLimit(limit, 100)), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FollowedArtists retrieves the followed artists after the given cursor.
func (s *SpotifyService) FollowedArtists(ctx context.Context, after string, limit int) (*ArtistCursorPage, error) {
	query := url.Values{
		"type":  {"artist"},
		"limit": {strconv.Itoa(clampLimit(limit, 50))},
	}
	if after != "" {
		query.Set("after", after)
	}

	var response followedArtistsResponse
	if err := s.doRequest(ctx, "/me/following", query, &response); err != nil {
		return nil, err
	}

	page := &ArtistCursorPage{Items: response.Artists.Items}
	if response.Artists.Cursors.After != nil {
		page.After = *response.Artists.Cursors.After
	}
	return page, nil
}

// TopArtists retrieves the user's top artists.
func (s *SpotifyService) TopArtists(ctx context.Context, limit int, timeRange models.TimeRange) ([]SpotifyArtist, error) {
	var response struct {
		Items []SpotifyArtist `json:"items"`
	}
	if err := s.doRequest(ctx, "/me/top/artists", topQuery(limit, timeRange), &response); err != nil {
		return nil, err
	}
	return response.Items, nil
}

// TopTracks retrieves the user's top tracks.
func (s *SpotifyService) TopTracks(ctx context.Context, limit int, timeRange models.TimeRange) ([]SpotifyTrack, error) {
	var response struct {
		Items []SpotifyTrack `json:"items"`
	}
	if err := s.doRequest(ctx, "/me/top/tracks", topQuery(limit, timeRange), &response); err != nil {
		return nil, err
	}
	return response.Items, nil
}

// Artist retrieves an artist by ID.
func (s *SpotifyService) Artist(ctx context.Context, artistID string) (*SpotifyArtist, error) {
	if artistID == "" {
		return nil, fmt.Errorf("%w: artist id", shared.ErrMissingArgument)
	}

	var artist SpotifyArtist
	if err := s.doRequest(ctx, "/artists/"+url.PathEscape(artistID), nil, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

func topQuery(limit int, timeRange models.TimeRange) url.Values {
	if timeRange == "" {
		timeRange = models.MediumTerm
	}
	return url.Values{
		"limit":      {strconv.Itoa(clampLimit(limit, 50))},
		"time_range": {string(timeRange)},
	}
}

func clampLimit(limit, ceiling int) int {
	if limit <= 0 {
		return 20
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}
