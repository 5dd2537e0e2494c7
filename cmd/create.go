package main

import (
	"context"
	"fmt"

	"github.com/spotifire/spotifire/internal/shared"
	"github.com/spotifire/spotifire/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Create runs one playlist assembly for a user and a free-text theme.
//
// Progress updates stream to the output while the run executes; the final
// message is either the playlist link or one of the two user-visible
// failure messages.
func (r *Runner) Create(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	if r.engine == nil {
		return fmt.Errorf("%w: generator not configured", shared.ErrMissingCredentials)
	}

	userID := cmd.String("user")
	prompt := cmd.StringArg("prompt")
	if userID == "" {
		return fmt.Errorf("%w: --user", shared.ErrMissingArgument)
	}
	if prompt == "" {
		return fmt.Errorf("%w: prompt", shared.ErrMissingArgument)
	}

	r.writePlain("Working on it, hold on...\n")

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	result, err := r.engine.Run(ctx, userID, prompt, progress)
	close(progress)
	<-done

	if err != nil {
		if tasks.IsNoAuth(err) {
			r.writePlain("You need to authenticate first! Visit:\n%s\n", r.tokens.AuthorizeURL(userID))
			return err
		}
		r.writePlain("Can't complete your request right now\n")
		return err
	}

	r.writePlain("%q is now in your playlists library, check it out!\n", result.Name)
	if result.PlaylistURL != "" {
		r.writePlain("%s\n", result.PlaylistURL)
	}
	r.writePlain("Songs: %d of %d candidates matched", result.ResolvedCount, result.GeneratedCount)
	if !result.ArtworkAttached {
		r.writePlain(" (no cover art)")
	}
	return r.writePlain("\n")
}
