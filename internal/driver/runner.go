package driver

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"selsim/domain/experiment"
	"selsim/internal"
	"selsim/internal/errors"
)

// Runner executes a pipeline over every replicate under a bounded worker
// budget. Replicates are independent, so scheduling order is free; results
// are written by replicate index, which keeps the series ordering
// deterministic no matter how the goroutines interleave.
type Runner struct {
	workers int64
	log     *internal.Logger
}

// NewRunner creates a runner. workers <= 0 uses one worker per CPU.
func NewRunner(workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		workers: int64(workers),
		log:     internal.DefaultLogger,
	}
}

// Run fits the pipeline to datasets 1..R and returns the ordered result
// series with a manifest tying it back to the run's seed. The first fit
// error aborts the run: fits are deterministic, so an error means the
// simulation is misconfigured, not that a retry would help.
func (r *Runner) Run(ctx context.Context, datasets []experiment.Dataset, pipeline Pipeline, seed int64) (experiment.ResultSeries, experiment.RunManifest, error) {
	manifest := experiment.RunManifest{
		RunID:      uuid.NewString(),
		Pipeline:   pipeline.Name(),
		Seed:       seed,
		Replicates: len(datasets),
		CreatedAt:  time.Now().UTC(),
	}

	if len(datasets) == 0 {
		return nil, manifest, errors.InvalidInput("no replicate datasets to run")
	}

	start := time.Now()
	r.log.Debug("run %s: pipeline=%s replicates=%d workers=%d",
		manifest.RunID, pipeline.Name(), len(datasets), r.workers)

	sem := semaphore.NewWeighted(r.workers)
	results := make(experiment.ResultSeries, len(datasets))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := range datasets {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, manifest, errors.Wrap(err, "replication run cancelled")
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer sem.Release(1)

			res, err := pipeline.Fit(&datasets[idx])
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = errors.Wrapf(err, "replicate %d failed", datasets[idx].ID)
				}
				mu.Unlock()
				return
			}
			results[idx] = res
		}(i)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, manifest, firstErr
	}

	r.log.Info("run %s: pipeline=%s completed %d replicates in %s",
		manifest.RunID, pipeline.Name(), len(datasets), time.Since(start).Round(time.Millisecond))
	return results, manifest, nil
}
