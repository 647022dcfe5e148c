package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotlens/internal/server"
	"github.com/desertthunder/spotlens/internal/services"
	"github.com/desertthunder/spotlens/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization code flow.
//
// Starts a local HTTP server, opens the browser for user authorization, and saves the issued token to the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig()
	if err != nil {
		return err
	}

	spotify, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s or .env", err, r.configFile())
	}

	token, err := r.doOAuth(ctx, config, spotify)
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if err := shared.SaveToken(r.configFile(), token); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", r.configFile())
	r.writePlain("You can now run: spotlens report library\n")
	return nil
}

// doOAuth runs the callback server and waits for the browser to come back with a code.
func (r *Runner) doOAuth(ctx context.Context, config *shared.Config, spotify *services.SpotifyService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := spotify.GetAuthURL(state)
	handler := server.NewOAuthHandler(spotify.GetOAuthConfig(), state)
	callback := &server.CallbackServer{
		Addr:   fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Logger: r.logger,
	}

	return callback.Await(ctx, handler, func(addr string) {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
		r.writePlain("→ Waiting for authorization (%s timeout)...\n", server.DefaultCallbackTimeout)
	})
}

// AuthStatus reports the auth mode and whether a user token is stored. It makes no remote calls.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig()
	if err != nil {
		return err
	}

	creds := config.Credentials.Spotify
	r.writePlain("Mode: %s\n", config.Auth.Mode)
	if creds.ClientID == "" || creds.ClientSecret == "" {
		r.writePlain("Credentials: ✗ missing client_id or client_secret\n")
	} else {
		r.writePlain("Credentials: ✓ configured\n")
	}

	if token := creds.Token(); token != nil {
		r.writePlain("Token: ✓ stored (expires %s)\n", token.Expiry.Format("2006-01-02 15:04"))
	} else {
		r.writePlain("Token: ✗ none, run `spotlens auth login`\n")
	}
	return nil
}

// connect returns the Spotify library for the configured auth mode.
func (r *Runner) connect(ctx context.Context) (services.Library, error) {
	if r.library != nil {
		return r.library, nil
	}

	config, err := r.loadConfig()
	if err != nil {
		return nil, err
	}

	spotify, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}

	switch config.Auth.Mode {
	case shared.AuthModeUser:
		token := config.Credentials.Spotify.Token()
		if token == nil {
			return nil, fmt.Errorf("%w: run `spotlens auth login` first", shared.ErrNotAuthenticated)
		}
		if err := spotify.SetToken(ctx, token); err != nil {
			return nil, err
		}
	case shared.AuthModeClient:
		if err := spotify.AuthenticateClient(ctx); err != nil {
			return nil, err
		}
	default:
		return nil, shared.NewValidationError("auth mode", config.Auth.Mode)
	}

	r.logger.Debug("connected to Spotify", "mode", config.Auth.Mode)
	r.spotify = spotify
	r.library = spotify
	return spotify, nil
}

// persistToken writes a refreshed user token back to the config file.
func (r *Runner) persistToken() {
	if r.spotify == nil || r.config == nil || r.config.Auth.Mode != shared.AuthModeUser {
		return
	}

	token, err := r.spotify.Token()
	if err != nil || token.AccessToken == r.config.Credentials.Spotify.AccessToken {
		return
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		r.logger.Warn("failed to update refreshed token", "error", err)
		return
	}
	if err := shared.SaveToken(r.configFile(), token); err != nil {
		r.logger.Warn("failed to save refreshed token", "error", err)
		return
	}
	r.logger.Debug("saved refreshed token", "path", r.configFile())
}

func (r *Runner) configFile() string {
	if r.configPath == "" {
		return defaultConfigPath
	}
	return r.configPath
}
