package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spotifire/spotifire/internal/server"
	"github.com/spotifire/spotifire/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthURL prints the Spotify authorize link for a user.
//
// The link carries the user's ID as the OAuth state so the callback
// listener can store the exchanged token under the right key.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	userID := cmd.String("user")
	if userID == "" {
		return fmt.Errorf("%w: --user", shared.ErrMissingArgument)
	}

	url := r.tokens.AuthorizeURL(userID)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warnf("failed to open browser: %v", err)
		}
	}

	return r.writePlain("Authenticate with Spotify by visiting:\n%s\n", url)
}

// AuthStatus reports whether a user has a credential and whether it is current.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	userID := cmd.String("user")
	if userID == "" {
		return fmt.Errorf("%w: --user", shared.ErrMissingArgument)
	}

	cred, err := r.creds.Get(userID)
	if errors.Is(err, shared.ErrNoCredential) {
		return r.writePlain("✗ No credential on record for %s\n", userID)
	}
	if err != nil {
		return err
	}

	if cred.Expired(time.Now()) {
		return r.writePlain("⚠ Credential for %s expired at %s (will refresh on next use)\n", userID, cred.ExpiresAt.Format(time.RFC3339))
	}
	return r.writePlain("✓ Credential for %s valid until %s\n", userID, cred.ExpiresAt.Format(time.RFC3339))
}

// AuthRevoke deletes a user's stored credential.
func (r *Runner) AuthRevoke(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	userID := cmd.String("user")
	if userID == "" {
		return fmt.Errorf("%w: --user", shared.ErrMissingArgument)
	}

	if err := r.creds.Delete(userID); err != nil {
		return err
	}

	r.logger.Info("credential revoked", "user_id", userID)
	return r.writePlain("✓ Credential revoked for %s\n", userID)
}

// Serve runs the long-lived OAuth callback listener.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(server.NewCallbackHandler(r.music, r.tokens, r.logger))
	router.Handler(server.HealthHandler{})

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	r.logger.Info("callback listener started", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("callback listener failed: %w", err)
	}

	return nil
}
