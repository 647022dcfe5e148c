package shared

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Auth modes understood by [AuthConfig].
const (
	AuthModeUser   = "user"
	AuthModeClient = "client"
)

// Genre store backends understood by [CacheConfig].
const (
	GenreStoreJSON   = "json"
	GenreStoreSQLite = "sqlite"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Auth        AuthConfig        `toml:"auth"`
	Cache       CacheConfig       `toml:"cache"`
	Reports     ReportsConfig     `toml:"reports"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and the last issued user token.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	TokenExpiry  time.Time `toml:"token_expiry"`
}

// AuthConfig selects how the Spotify client authenticates: "user" or "client".
type AuthConfig struct {
	Mode string `toml:"mode"`
}

// CacheConfig controls the on-disk page cache and genre store.
type CacheConfig struct {
	Dir         string `toml:"dir"`
	GenreStore  string `toml:"genre_store"`
	PageDelayMS int    `toml:"page_delay_ms"`
}

// ReportsConfig controls where and how reports are written.
type ReportsConfig struct {
	Dir    string `toml:"dir"`
	Format string `toml:"format"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Map returns the credentials in the form accepted by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// Token returns the stored user token, or nil when none has been saved.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" && s.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Expiry:       s.TokenExpiry,
		TokenType:    "Bearer",
	}
}

// Update stores token on the config. Refresh tokens are kept when the new token omits one.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidInput)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenExpiry = token.Expiry
	return nil
}

// PageDelay returns the fixed delay between remote page requests.
func (c CacheConfig) PageDelay() time.Duration {
	if c.PageDelayMS < 0 {
		return 0
	}
	return time.Duration(c.PageDelayMS) * time.Millisecond
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeUser, AuthModeClient:
	default:
		return NewValidationError("auth mode", c.Auth.Mode)
	}
	switch c.Cache.GenreStore {
	case GenreStoreJSON, GenreStoreSQLite:
	default:
		return NewValidationError("genre store", c.Cache.GenreStore)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML. The file holds tokens, so it is written 0600.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveToken stores token in the config file at path. Everything else is written back exactly as
// it was read from disk, so values that came from .env or the environment never reach the file.
func SaveToken(path string, token *oauth2.Token) error {
	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return err
		}
		config = loaded
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat config: %w", err)
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return err
	}
	return SaveConfig(path, config)
}

// ApplyEnv loads the given .env files (default ".env") and lets SPOTIPY_CLIENT_ID,
// SPOTIPY_CLIENT_SECRET, SPOTIPY_REDIRECT_URI and SPOTLENS_AUTH_MODE override the config.
//
// Missing .env files are not an error; variables already set in the environment win.
func ApplyEnv(config *Config, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	overrides := map[string]*string{
		"SPOTIPY_CLIENT_ID":     &config.Credentials.Spotify.ClientID,
		"SPOTIPY_CLIENT_SECRET": &config.Credentials.Spotify.ClientSecret,
		"SPOTIPY_REDIRECT_URI":  &config.Credentials.Spotify.RedirectURI,
		"SPOTLENS_AUTH_MODE":    &config.Auth.Mode,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*field = v
		}
	}
	return nil
}
