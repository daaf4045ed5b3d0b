package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/flix/internal/favorites"
	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// favoriteChange is the --json shape of add, remove and toggle.
type favoriteChange struct {
	ID        models.MovieID         `json:"id"`
	Favorite  bool                   `json:"favorite"`
	Favorites []models.FavoriteEntry `json:"favorites"`
}

// loadFavorites signs the controller's set in from the server.
//
// Signed out, it prints the login hint and returns [shared.ErrNotAuthenticated].
func (r *Runner) loadFavorites(ctx context.Context) (*favorites.Controller, error) {
	if err := r.connect(); err != nil {
		return nil, err
	}
	if !r.session.IsAuthenticated() {
		return nil, r.check(fmt.Errorf("%w: favorites need a signed-in user", shared.ErrNotAuthenticated))
	}

	ctrl := r.favoritesController(nil, false)
	ctrl.Refetch(ctx)
	if err := ctrl.State().Err; err != nil {
		ctrl.Close()
		return nil, r.check(err)
	}
	return ctrl, nil
}

// FavoritesList prints the signed-in user's favorites.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.loadFavorites(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	entries := ctrl.State().Favorites
	if len(entries) == 0 && !cmd.Bool("json") {
		return r.writePlain("No favorites yet. Add one with `flix favorites add <id>`.\n")
	}
	return r.movieList(cmd, "Favorites", entries, formatter.FromFavorites(entries))
}

// FavoritesAdd adds a movie to the favorites.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	return r.changeFavorite(ctx, cmd, (*favorites.Controller).Add)
}

// FavoritesRemove removes a movie from the favorites.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	return r.changeFavorite(ctx, cmd, (*favorites.Controller).Remove)
}

// FavoritesToggle adds a movie when it is missing and removes it otherwise.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	return r.changeFavorite(ctx, cmd, (*favorites.Controller).Toggle)
}

func (r *Runner) changeFavorite(
	ctx context.Context,
	cmd *cli.Command,
	op func(*favorites.Controller, context.Context, models.MovieID) error,
) error {
	id, err := idArgument(cmd)
	if err != nil {
		return err
	}

	ctrl, err := r.loadFavorites(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := op(ctrl, ctx, id); err != nil {
		r.logger.Error("favorite update failed", "id", id, "error", err)
		return r.check(err)
	}

	state := ctrl.State()
	if state.Err != nil {
		r.logger.Warn("favorites could not be reloaded", "error", state.Err)
	}

	change := favoriteChange{ID: id, Favorite: ctrl.IsFavorite(id), Favorites: state.Favorites}
	if cmd.Bool("json") {
		return r.writeJSON(change, cmd.Bool("pretty"))
	}

	if change.Favorite {
		return r.writePlain("♥ #%s is a favorite (%d total)\n", id, len(change.Favorites))
	}
	return r.writePlain("♡ #%s is not a favorite (%d total)\n", id, len(change.Favorites))
}

// exportOpts merges the export flags over the [export] config section.
func (r *Runner) exportOpts(cmd *cli.Command) (tasks.ExportOpts, error) {
	c := r.config.Export
	opts := tasks.ExportOpts{
		OutputDir:   c.OutputDir,
		NumWorkers:  c.Workers,
		RateLimit:   c.RateLimit,
		WithPosters: cmd.Bool("posters"),
	}

	name := c.Format
	if v := cmd.String("format"); v != "" {
		name = v
	}
	if name != "" {
		f, err := formatter.ParseFormat(name)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}

	if v := cmd.String("output"); v != "" {
		opts.OutputDir = v
	}
	if v := int(cmd.Int("workers")); v > 0 {
		opts.NumWorkers = v
	}
	if v := cmd.Float("rate"); v > 0 {
		opts.RateLimit = v
	}
	return opts, nil
}

// FavoritesExport writes the full record of every favorite and a manifest to disk.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	opts, err := r.exportOpts(cmd)
	if err != nil {
		return err
	}

	ctrl, err := r.loadFavorites(ctx)
	if err != nil {
		return err
	}
	entries := ctrl.State().Favorites
	ctrl.Close()

	if len(entries) == 0 {
		return r.writePlain("No favorites to export.\n")
	}

	ids := make([]models.MovieID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	r.logger.Info("exporting favorites", "count", len(ids), "format", opts.Format)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchDetails:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.WriteExport:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := r.feed().ExportFavorites(ctx, progressCh, ids, opts)
	close(progressCh)
	<-done

	if err != nil {
		return r.check(err)
	}

	m := result.Manifest
	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Directory: %s\n", m.Directory)
	r.writePlain("Exported: %d/%d\n", m.Successful, m.Total)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if m.Failed > 0 {
		r.writePlain("\nFailed to export %d movies:\n", m.Failed)
		for _, entry := range m.Entries {
			if entry.Error != "" {
				r.writePlain("  - #%s: %s\n", entry.ID, entry.Error)
			}
		}
	}
	return nil
}
