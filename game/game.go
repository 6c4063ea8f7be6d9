// Package game drives trials: it wires configuration, the step rules and
// the metrics recorder together and runs the step loop.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// Trial holds the complete state of one independent trial.
// Nothing in a Trial is shared with other trials.
type Trial struct {
	index int
	seed  int64
	rng   *rand.Rand

	habitat   *systems.Habitat
	clock     *systems.Clock
	processor *systems.Processor
	metrics   *telemetry.Metrics
	perf      *telemetry.PerfCollector
	detector  *telemetry.BookmarkDetector
	bookmarks []telemetry.Bookmark

	extinct bool
}

// NewTrial creates a trial seeded with seed and populated with founders.
// Founders are age zero and alternate female/male so a non-trivial founding
// population always contains both sexes.
func NewTrial(cfg TrialConfig, index int, seed int64) (*Trial, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("trial %d: %w", index, err)
	}

	rng := rand.New(rand.NewSource(seed))
	metrics := telemetry.NewMetrics(index, seed, cfg.Habitat.Name, cfg.Species.Name)

	t := &Trial{
		index:     index,
		seed:      seed,
		rng:       rng,
		habitat:   systems.NewHabitat(cfg.Habitat, rng),
		clock:     systems.NewClock(cfg.DurationSteps),
		processor: systems.NewProcessor(rng, metrics),
		metrics:   metrics,
		perf:      telemetry.NewPerfCollector(components.MonthsPerYear),
		detector:  telemetry.NewBookmarkDetector(components.MonthsPerYear),
	}
	t.processor.Timer = t.perf

	for i := 0; i < cfg.InitialPopulation; i++ {
		sex := components.Female
		if i%2 == 1 {
			sex = components.Male
		}
		t.habitat.Add(systems.NewIndividual(cfg.Species, sex))
	}

	return t, nil
}

// Step advances the trial by one interval.
func (t *Trial) Step() (systems.StepResult, error) {
	tc, err := t.clock.Tick()
	if err != nil {
		return systems.StepResult{}, err
	}

	res, err := t.processor.Step(t.habitat, tc)
	if err != nil {
		return res, fmt.Errorf("trial %d: %w", t.index, err)
	}

	slog.Debug("step", "trial", t.index, "month", tc.Month(), "season", tc.Season().String(), "result", res)

	row := telemetry.StepStats{
		Trial:      t.index,
		Step:       res.Step,
		Year:       tc.Year(),
		Month:      tc.Month(),
		Season:     tc.Season().String(),
		Population: res.PopulationAfter,
		Births:     res.Births,
		Deaths:     res.TotalDeaths(),
	}
	for _, b := range t.detector.Check(row) {
		b.Log(t.index)
		t.bookmarks = append(t.bookmarks, b)
	}

	if !t.extinct && res.PopulationAfter == 0 {
		t.extinct = true
		slog.Info("population extinct",
			"trial", t.index,
			"step", res.Step,
			"year", tc.Year(),
			"month", tc.Month(),
		)
	}
	return res, nil
}

// Run steps the trial until the clock is done or ctx is cancelled.
func (t *Trial) Run(ctx context.Context) (*telemetry.Metrics, error) {
	slog.Info("trial started",
		"trial", t.index,
		"seed", t.seed,
		"habitat", t.metrics.Habitat,
		"species", t.metrics.Species,
		"steps", t.clock.Duration(),
		"founders", t.habitat.Population(),
	)

	for !t.clock.Done() {
		if err := ctx.Err(); err != nil {
			return t.metrics, err
		}
		if _, err := t.Step(); err != nil {
			return t.metrics, err
		}
	}

	slog.Info("trial finished", "report", t.metrics.Snapshot())
	slog.Debug("trial perf", "trial", t.index, "perf", t.perf.Stats())
	return t.metrics, nil
}

// Habitat returns the trial's habitat.
func (t *Trial) Habitat() *systems.Habitat { return t.habitat }

// Clock returns the trial's clock.
func (t *Trial) Clock() *systems.Clock { return t.clock }

// Metrics returns the trial's recorder.
func (t *Trial) Metrics() *telemetry.Metrics { return t.metrics }

// Perf returns the step timing collector.
func (t *Trial) Perf() *telemetry.PerfCollector { return t.perf }

// Bookmarks returns the notable moments detected so far.
func (t *Trial) Bookmarks() []telemetry.Bookmark { return t.bookmarks }

// Index returns the trial number within its batch.
func (t *Trial) Index() int { return t.index }

// RunTrial runs a single trial to completion and returns its metrics.
func RunTrial(ctx context.Context, cfg TrialConfig, seed int64) (*telemetry.Metrics, error) {
	t, err := NewTrial(cfg, 0, seed)
	if err != nil {
		return nil, err
	}
	return t.Run(ctx)
}
