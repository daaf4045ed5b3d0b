// package tasks implements the operations that combine several API calls.
//
// The core abstraction is Feed, which loads the home screen and exports favorites.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/shared"
	"golang.org/x/sync/errgroup"
)

const defaultPageSize = 10

// Section is one list of the home screen.
type Section struct {
	Name   string
	Movies []models.Movie
	Err    error // Set when this list failed to load
}

// HomeResult holds the three lists of the home screen.
type HomeResult struct {
	Top      Section
	Popular  Section
	TopRated Section
}

// Sections returns the lists in display order.
func (h *HomeResult) Sections() []*Section {
	return []*Section{&h.Top, &h.Popular, &h.TopRated}
}

// Feed runs multi-request operations against the catalog.
type Feed struct {
	catalog  services.Catalog
	logger   *log.Logger
	PageSize int // Movies per list on the home screen (default: 10)
}

// NewFeed creates a feed over catalog. A nil logger discards output.
func NewFeed(catalog services.Catalog, logger *log.Logger) *Feed {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Feed{catalog: catalog, logger: logger, PageSize: defaultPageSize}
}

// sendProgress sends a progress update through the channel without blocking.
//
// If the channel is nil or full, the update is dropped.
func (f *Feed) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Home loads the top five, most popular and top rated lists in parallel.
//
// A list that fails keeps its error in [Section.Err]; Home itself only fails when
// every list failed or a request was cancelled. A cancelled request stops the other lists.
func (f *Feed) Home(ctx context.Context, progress chan<- ProgressUpdate) (*HomeResult, error) {
	if f.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	size := f.PageSize
	if size <= 0 {
		size = defaultPageSize
	}

	home := &HomeResult{
		Top:      Section{Name: "Top 5"},
		Popular:  Section{Name: "Most Popular"},
		TopRated: Section{Name: "Top Rated"},
	}

	loaders := []struct {
		phase   Phase
		section *Section
		load    func(ctx context.Context) ([]models.Movie, error)
	}{
		{FetchTop, &home.Top, f.catalog.TopMovies},
		{FetchPopular, &home.Popular, func(ctx context.Context) ([]models.Movie, error) {
			page, err := f.catalog.MostPopular(ctx, 1, size)
			if err != nil {
				return nil, err
			}
			return page.Data, nil
		}},
		{FetchTopRated, &home.TopRated, func(ctx context.Context) ([]models.Movie, error) {
			page, err := f.catalog.TopRated(ctx, 1, size)
			if err != nil {
				return nil, err
			}
			return page.Data, nil
		}},
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, l := range loaders {
		g.Go(func() error {
			movies, err := l.load(gctx)
			if err != nil {
				l.section.Err = err
				movies = []models.Movie{}
			}
			l.section.Movies = movies
			f.sendProgress(progress, sectionUpdate(l.phase, i+1, len(loaders), l.section))

			if isCancellation(err) {
				return err
			}
			if err != nil {
				f.logger.Warn("failed to load list", "list", l.section.Name, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return home, err
	}
	if err := ctx.Err(); err != nil {
		return home, err
	}
	if home.Top.Err != nil && home.Popular.Err != nil && home.TopRated.Err != nil {
		return home, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, home.Top.Err)
	}
	return home, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
