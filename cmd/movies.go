package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// movieList renders movies in the --format chosen on cmd.
func (r *Runner) movieList(cmd *cli.Command, heading string, data any, movies []models.Movie) error {
	if cmd.Bool("json") {
		return r.writeJSON(data, cmd.Bool("pretty"))
	}

	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var out []byte
	switch f {
	case formatter.FormatCSV:
		if out, err = formatter.MoviesToCSV(movies); err != nil {
			return err
		}
	case formatter.FormatMarkdown:
		out = formatter.MoviesToMarkdown(heading, movies)
	case formatter.FormatJSON:
		return r.writeJSON(data, cmd.Bool("pretty"))
	default:
		if len(movies) == 0 {
			return r.writePlain("No movies found.\n")
		}
		out = formatter.MoviesToText(movies)
	}

	return r.render(cmd, data, out)
}

func (r *Runner) moviePage(cmd *cli.Command, heading string, page *models.Page[models.Movie]) error {
	if err := r.movieList(cmd, heading, page, page.Data); err != nil {
		return err
	}
	if f, _ := formatter.ParseFormat(cmd.String("format")); cmd.Bool("json") || f != formatter.FormatText {
		return nil
	}
	p := page.Pagination
	if p.TotalPages > 0 {
		return r.writePlain("\nPage %d of %d (%d movies)\n", p.CurrentPage, p.TotalPages, p.TotalItems)
	}
	return nil
}

func idArgument(cmd *cli.Command) (models.MovieID, error) {
	id := models.ParseMovieID(cmd.StringArg("id"))
	if id.IsZero() {
		return "", fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	return id, nil
}

// MoviesHome fetches the three home sections concurrently.
func (r *Runner) MoviesHome(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.logger.Debug(update.Message, "phase", update.Phase)
		}
	}()

	result, err := r.feed().Home(ctx, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return r.check(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	for i, s := range result.Sections() {
		if i > 0 {
			r.writePlain("\n")
		}
		r.writePlainHeader(s.Name)
		if s.Err != nil {
			r.writePlain("✗ %v\n", s.Err)
			continue
		}
		if err := r.movieList(cmd, s.Name, s.Movies, s.Movies); err != nil {
			return err
		}
	}
	return nil
}

// MoviesTop lists the five most popular movies.
func (r *Runner) MoviesTop(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	movies, err := r.api.TopMovies(ctx)
	if err != nil {
		return r.check(err)
	}
	return r.movieList(cmd, "Top Movies", movies, movies)
}

// MoviesPopular lists one page of the most popular movies.
func (r *Runner) MoviesPopular(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	page, err := r.api.MostPopular(ctx, int(cmd.Int("page")), int(cmd.Int("limit")))
	if err != nil {
		return r.check(err)
	}
	return r.moviePage(cmd, "Most Popular", page)
}

// MoviesTopRated lists one page of the best rated movies.
func (r *Runner) MoviesTopRated(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	page, err := r.api.TopRated(ctx, int(cmd.Int("page")), int(cmd.Int("limit")))
	if err != nil {
		return r.check(err)
	}
	return r.moviePage(cmd, "Top Rated", page)
}

// MoviesSearch searches movies by title.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(cmd.StringArg("title"))
	if title == "" {
		return fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}
	if err := r.connect(); err != nil {
		return err
	}

	r.logger.Debug("searching movies", "title", title)

	page, err := r.api.SearchMovies(ctx, title, int(cmd.Int("page")), int(cmd.Int("limit")))
	if err != nil {
		return r.check(err)
	}
	return r.moviePage(cmd, fmt.Sprintf("Results for %q", title), page)
}

// MoviesShow prints the details of one movie.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := idArgument(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(); err != nil {
		return err
	}

	detail, err := r.api.MovieDetail(ctx, id)
	if err != nil {
		return r.check(err)
	}

	var out []byte
	if f, _ := formatter.ParseFormat(cmd.String("format")); f == formatter.FormatMarkdown {
		out = formatter.DetailToMarkdown(detail, "")
	} else {
		out = formatter.DetailToText(detail)
	}
	return r.render(cmd, detail, out)
}

// MoviesReviews prints one page of reviews for a movie.
func (r *Runner) MoviesReviews(ctx context.Context, cmd *cli.Command) error {
	id, err := idArgument(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(); err != nil {
		return err
	}

	sort := models.ReviewSort(strings.ToLower(cmd.String("sort")))
	page, err := r.api.MovieReviews(ctx, id, int(cmd.Int("page")), int(cmd.Int("limit")), sort)
	if err != nil {
		return r.check(err)
	}
	return r.render(cmd, page, formatter.ReviewsToText(page))
}

// PersonShow prints the details of one cast or crew member.
func (r *Runner) PersonShow(ctx context.Context, cmd *cli.Command) error {
	id, err := idArgument(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(); err != nil {
		return err
	}

	person, err := r.api.PersonDetail(ctx, id)
	if err != nil {
		return r.check(err)
	}
	return r.render(cmd, person, formatter.PersonToText(person))
}
