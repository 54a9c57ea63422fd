package job

import (
	"context"
	"fmt"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/dltrack/dltrack/internal/config"
	"github.com/dltrack/dltrack/internal/history"
	"github.com/dltrack/dltrack/internal/metrics"
)

var log = logging.Logger("job")

// Fetcher returns the current download counts for a package.
type Fetcher interface {
	Fetch(ctx context.Context, pkg string) (history.CountRecord, error)
}

// Renderer writes the static report for a history store.
type Renderer interface {
	Render(store *history.Store, outDir string) error
}

// Job is one pipeline invocation: load the history, optionally fetch and
// persist the latest counts, render the report. It never retries; a failed
// invocation is simply repeated by the external scheduler on its next cadence.
type Job struct {
	cfg      *config.Config
	fetcher  Fetcher
	renderer Renderer
}

func New(cfg *config.Config, fetcher Fetcher, renderer Renderer) *Job {
	return &Job{
		cfg:      cfg,
		fetcher:  fetcher,
		renderer: renderer,
	}
}

// Run executes the pipeline once. With fetch disabled the report is rendered
// from the history already on disk. Any error aborts the run; the history
// file is only replaced by a complete, successful save.
func (j *Job) Run(ctx context.Context, doFetch bool) error {
	started := time.Now()

	store, err := history.Load(j.cfg.HistoryFile)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if doFetch {
		rec, err := j.fetcher.Fetch(ctx, j.cfg.Package)
		if err != nil {
			metrics.FetchFailures.Add(ctx, 1)
			return fmt.Errorf("fetching download counts: %w", err)
		}
		metrics.FetchesTotal.Add(ctx, 1)

		store.Upsert(rec)
		if err := store.Save(j.cfg.HistoryFile); err != nil {
			return fmt.Errorf("saving history: %w", err)
		}
		metrics.RecordsUpserted.Add(ctx, 1)

		log.Infof("History updated: %d records in %s", store.Len(), j.cfg.HistoryFile)
	}

	if err := j.renderer.Render(store, j.cfg.OutputDir); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	metrics.ReportsRendered.Add(ctx, 1)

	if j.cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(j.cfg.MetricsFile); err != nil {
			// the report is already published, don't fail the run over metrics
			log.Errorf("Writing metrics textfile: %v", err)
		}
	}

	log.Infof("Run completed in %s", time.Since(started))

	return nil
}
