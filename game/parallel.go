package game

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/pthm-cable/ecosim/telemetry"
)

// Options controls how a batch of trials is executed.
type Options struct {
	Seed    int64 // base seed; each trial derives its own
	Workers int   // concurrent trials; 0 or 1 runs sequentially

	// OnTrial, when set, is called with each finished trial's metrics from
	// the calling goroutine, in trial order.
	OnTrial func(*telemetry.Metrics) error
}

// TrialSeed derives the seed of one trial from the batch seed so trials are
// independent yet reproducible.
func TrialSeed(base int64, trial int) int64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%d:%d", base, trial)
	return int64(h.Sum64())
}

// RunTrials runs n independent trials and returns one Metrics per trial, in
// trial order. Each trial has its own habitat, population, random source
// and recorder; results are collected only after every worker is done.
func RunTrials(ctx context.Context, n int, cfg TrialConfig, opts Options) ([]*telemetry.Metrics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]*telemetry.Metrics, n)
	errs := make([]error, n)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = runIndexed(ctx, cfg, i, TrialSeed(opts.Seed, i))
				if errs[i] != nil {
					cancel()
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := firstError(errs); err != nil {
		return results, err
	}
	for _, m := range results {
		if m == nil {
			// Never dispatched: the parent context ended first.
			return results, ctx.Err()
		}
	}

	if opts.OnTrial != nil {
		for _, m := range results {
			if err := opts.OnTrial(m); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

func runIndexed(ctx context.Context, cfg TrialConfig, index int, seed int64) (*telemetry.Metrics, error) {
	t, err := NewTrial(cfg, index, seed)
	if err != nil {
		return nil, err
	}
	return t.Run(ctx)
}

// firstError prefers a trial's own failure over the cancellations it caused
// in the other workers.
func firstError(errs []error) error {
	var cancelled error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, context.Canceled) {
			return err
		}
		if cancelled == nil {
			cancelled = err
		}
	}
	return cancelled
}
