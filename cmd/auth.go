package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/server"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/services"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/shared"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/ui"
	"github.com/urfave/cli/v3"
)

// authTimeout bounds how long the callback server waits for the user to
// finish the browser flow.
const authTimeout = 5 * time.Minute

// AuthLogin runs the OAuth2 authorization-code flow against a local callback
// server and persists the resulting token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	oauthSvc, err := r.oauthService()
	if err != nil {
		return err
	}

	state := shared.GenerateState()
	handler := server.NewOAuthHandler(oauthSvc.GetOAuthConfig(), state)

	srv := &http.Server{Addr: r.config.Server.Addr(), Handler: handler.Mux()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Errorf("callback server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := oauthSvc.GetAuthURL(state)
	r.writePlain("Opening browser for Spotify authorization...\n")
	r.writePlain("If the browser does not open, visit:\n%s\n", authURL)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser: %v", err)
	}

	var result server.OAuthResult
	select {
	case result = <-handler.Result():
	case <-time.After(authTimeout):
		return fmt.Errorf("%w: no callback received within %s", shared.ErrTimeout, authTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := result.Error(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := oauthSvc.OAuthenticate(ctx, result.Token); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if r.repos != nil {
		if err := r.repos.Tokens.Save(result.Token); err != nil {
			r.logger.Warnf("failed to persist token, you will need to re-authenticate next run: %v", err)
		}
	}

	user, err := r.spotify.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%w: authenticated but profile fetch failed: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Authenticated as %s", user.DisplayName)))
}

// AuthStatus reports whether a stored session exists and whether it is expired.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.repos == nil {
		return r.writePlain("Token cache unavailable\n")
	}

	token, err := r.repos.Tokens.Load()
	if err != nil {
		if errors.Is(err, shared.ErrNoStoredToken) {
			return r.writePlain("✗ Not authenticated. Run 'spotify-cleaner auth login'.\n")
		}
		return err
	}

	r.writePlain("✓ Session stored\n")
	if token.Expiry.IsZero() {
		return r.writePlain("Expiry: unknown\n")
	}
	if time.Now().After(token.Expiry) {
		return r.writePlain("Access token expired at %s (will refresh on next use)\n", token.Expiry.Format(time.RFC3339))
	}
	return r.writePlain("Access token valid until %s\n", token.Expiry.Format(time.RFC3339))
}

// AuthLogout clears the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.repos == nil {
		return r.writePlain("Token cache unavailable, nothing to clear\n")
	}
	if err := r.repos.Tokens.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Session cleared\n")
}

// oauthService returns the Spotify service as an OAuth-capable service, or an
// actionable error when credentials are missing.
func (r *Runner) oauthService() (services.OAuthService, error) {
	if r.spotify == nil {
		if err := r.config.Validate(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	oauthSvc, ok := r.spotify.(services.OAuthService)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not support OAuth login", shared.ErrServiceUnavailable, r.spotify.Name())
	}
	return oauthSvc, nil
}
