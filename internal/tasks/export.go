package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"golang.org/x/time/rate"
)

const manifestName = "export_manifest.json"

// ExportOpts contains configuration for favorites exports.
type ExportOpts struct {
	Format      formatter.Format // Export format: json, csv, markdown, txt
	OutputDir   string           // Base output directory (default: flix_export_{epoch})
	NumWorkers  int              // Concurrent workers (default: 4, max: 10)
	RateLimit   float64          // Detail requests per second (default: 5)
	WithPosters bool             // Download posters next to Markdown exports
}

// ExportResult is the outcome of [Feed.ExportFavorites].
type ExportResult struct {
	Manifest     formatter.ExportManifest
	ManifestPath string
}

type exportJob struct {
	index int
	id    models.MovieID
}

type exportItem struct {
	index int
	item  formatter.ManifestItem
}

// ExportFavorites writes the full record of every id to disk.
//
// Workers share one rate limiter for detail requests. A movie that cannot be fetched or
// written is recorded in the manifest and does not stop the others. The manifest lists
// entries in the order of ids.
func (f *Feed) ExportFavorites(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	ids []models.MovieID,
	opts ExportOpts,
) (*ExportResult, error) {
	if f.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("flix_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(ids))
	results := make(chan exportItem, len(ids))

	for i, id := range ids {
		jobs <- exportJob{index: i, id: id}
	}
	close(jobs)

	f.sendProgress(progress, fetchingDetailsUpdate(len(ids)))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go f.exportWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	manifest := formatter.ExportManifest{
		Format:     opts.Format,
		ExportedAt: time.Now().UTC(),
		Total:      len(ids),
		Directory:  opts.OutputDir,
	}

	collected := make([]exportItem, 0, len(ids))
	for res := range results {
		collected = append(collected, res)
		step := len(collected)

		if res.item.Error == "" {
			manifest.Successful++
			f.sendProgress(progress, exportCompletedUpdate(step, len(ids), res.item.Title, len(res.item.Files)))
		} else {
			manifest.Failed++
			f.sendProgress(progress, exportFailedUpdate(step, len(ids), res.item.ID, res.item.Error))
		}
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })
	manifest.Entries = make([]formatter.ManifestItem, 0, len(collected))
	for _, c := range collected {
		manifest.Entries = append(manifest.Entries, c.item)
	}

	result := &ExportResult{Manifest: manifest}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := formatter.WriteExportManifest(&result.Manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	f.sendProgress(progress, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker fetches and writes favorites from the jobs channel until it is drained or ctx ends.
func (f *Feed) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan exportJob,
	results chan<- exportItem,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		results <- exportItem{index: job.index, item: f.exportOne(ctx, job.id, opts)}
	}
}

func (f *Feed) exportOne(ctx context.Context, id models.MovieID, opts ExportOpts) formatter.ManifestItem {
	item := formatter.ManifestItem{ID: id}

	detail, err := f.catalog.MovieDetail(ctx, id)
	if err != nil {
		f.logger.Warn("failed to fetch movie", "id", id, "error", err)
		item.Error = fmt.Sprintf("failed to fetch movie: %v", err)
		return item
	}
	item.Title = detail.DisplayTitle()

	files, err := formatter.WriteDetailExport(detail, opts.Format, opts.OutputDir, opts.WithPosters)
	if err != nil {
		item.Error = fmt.Sprintf("%s export failed: %v", opts.Format, err)
		return item
	}
	item.Files = files
	return item
}
