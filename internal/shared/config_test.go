package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./spotlens.db" {
			t.Errorf("expected database path ./spotlens.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Auth.Mode != AuthModeUser {
			t.Errorf("expected auth mode %q, got %q", AuthModeUser, config.Auth.Mode)
		}

		if config.Cache.Dir != "./cache" {
			t.Errorf("expected cache dir ./cache, got %s", config.Cache.Dir)
		}

		if config.Cache.PageDelay() != 100*time.Millisecond {
			t.Errorf("expected page delay 100ms, got %v", config.Cache.PageDelay())
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Reports.Dir != DefaultConfig().Reports.Dir {
			t.Errorf("created config reports dir doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[cache]
dir = "/tmp/spotlens-cache"
genre_store = "sqlite"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Cache.Dir != "/tmp/spotlens-cache" {
			t.Errorf("expected cache dir /tmp/spotlens-cache, got %s", config.Cache.Dir)
		}
		if config.Cache.GenreStore != GenreStoreSQLite {
			t.Errorf("expected sqlite genre store, got %s", config.Cache.GenreStore)
		}
		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected missing values to keep defaults, got port %d", config.Server.Port)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
			field  string
		}{
			{name: "unknown auth mode", mutate: func(c *Config) { c.Auth.Mode = "none" }, field: "auth mode"},
			{name: "unknown genre store", mutate: func(c *Config) { c.Cache.GenreStore = "redis" }, field: "genre store"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)

				err := config.Validate()
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if ve.Field != tt.field {
					t.Errorf("expected field %q, got %q", tt.field, ve.Field)
				}
				if !errors.Is(err, ErrInvalidArgument) {
					t.Error("expected ValidationError to match ErrInvalidArgument")
				}
			})
		}
	})

	t.Run("SaveConfig round trip with token", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()

		expiry := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
		err := config.Credentials.Spotify.Update(&oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Expiry:       expiry,
		})
		if err != nil {
			t.Fatalf("failed to update token: %v", err)
		}

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}

		token := loaded.Credentials.Spotify.Token()
		if token == nil {
			t.Fatal("expected stored token")
		}
		if token.AccessToken != "access" || token.RefreshToken != "refresh" {
			t.Errorf("unexpected token %+v", token)
		}
		if !token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, token.Expiry)
		}
	})

	t.Run("Update keeps refresh token", func(t *testing.T) {
		sc := SpotifyConfig{RefreshToken: "keep"}
		if err := sc.Update(&oauth2.Token{AccessToken: "new"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sc.RefreshToken != "keep" {
			t.Errorf("expected refresh token to be kept, got %q", sc.RefreshToken)
		}
		if err := sc.Update(nil); err == nil {
			t.Error("expected error for nil token")
		}
	})

	t.Run("Token empty", func(t *testing.T) {
		if (SpotifyConfig{}).Token() != nil {
			t.Error("expected nil token when none stored")
		}
	})
}

func TestSaveToken(t *testing.T) {
	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)}

	t.Run("keeps values stored on disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := "[credentials.spotify]\nclient_id = \"disk-id\"\nclient_secret = \"\"\n\n[reports]\nformat = \"csv\"\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		if err := SaveToken(path, token); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to reload: %v", err)
		}
		spotify := config.Credentials.Spotify
		if spotify.ClientID != "disk-id" || spotify.ClientSecret != "" {
			t.Errorf("credentials changed: %+v", spotify)
		}
		if spotify.AccessToken != "access" || spotify.RefreshToken != "refresh" || !spotify.TokenExpiry.Equal(token.Expiry) {
			t.Errorf("token not stored: %+v", spotify)
		}
		if config.Reports.Format != "csv" {
			t.Errorf("expected reports format csv, got %s", config.Reports.Format)
		}
	})

	t.Run("creates missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := SaveToken(path, token); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to reload: %v", err)
		}
		if config.Credentials.Spotify.AccessToken != "access" {
			t.Errorf("expected access token, got %q", config.Credentials.Spotify.AccessToken)
		}
	})

	t.Run("rejects empty token", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := SaveToken(path, &oauth2.Token{}); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Error("expected no file after a rejected token")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Run("dotenv file overrides credentials", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		content := "SPOTIPY_CLIENT_ID=from_env\nSPOTIPY_CLIENT_SECRET=secret_env\n"
		if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Cleanup(func() {
			os.Unsetenv("SPOTIPY_CLIENT_ID")
			os.Unsetenv("SPOTIPY_CLIENT_SECRET")
		})

		config := DefaultConfig()
		if err := ApplyEnv(config, envPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "from_env" {
			t.Errorf("expected client id from_env, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "secret_env" {
			t.Errorf("expected client secret secret_env, got %s", config.Credentials.Spotify.ClientSecret)
		}
	})

	t.Run("environment variable wins", func(t *testing.T) {
		t.Setenv("SPOTLENS_AUTH_MODE", AuthModeClient)

		config := DefaultConfig()
		if err := ApplyEnv(config, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("missing env file should not fail: %v", err)
		}
		if config.Auth.Mode != AuthModeClient {
			t.Errorf("expected auth mode client, got %s", config.Auth.Mode)
		}
	})
}
