package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/game"
	"github.com/pthm-cable/ecosim/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	speciesName := flag.String("species", "", "Species to simulate (empty = config default)")
	habitatName := flag.String("habitat", "", "Habitat to simulate in (empty = config default)")
	all := flag.Bool("all", false, "Run every species in every habitat")
	trials := flag.Int("trials", 0, "Number of trials (0 = use config)")
	years := flag.Int("years", 0, "Trial length in years (0 = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config, then time-based)")
	workers := flag.Int("workers", -1, "Concurrent trials (-1 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	dbPath := flag.String("db", "", "SQLite file to archive trial results in")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q\n", *logLevel)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *trials > 0 {
		cfg.Run.Trials = *trials
	}
	if *years > 0 {
		cfg.Run.Years = *years
	}
	if *workers >= 0 {
		cfg.Run.Workers = *workers
	}
	rngSeed := cfg.Run.Seed
	if *seed != 0 {
		rngSeed = *seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	cfg.Run.Seed = rngSeed

	// Build the trial configurations up front so bad names fail before any run
	var runs []game.TrialConfig
	if *all {
		pairs, err := game.AllTrialConfigs(cfg)
		if err != nil {
			slog.Error("invalid trial configuration", "error", err)
			os.Exit(1)
		}
		runs = pairs
	} else {
		tc, err := game.NewTrialConfig(cfg, *speciesName, *habitatName)
		if err != nil {
			slog.Error("invalid trial configuration", "error", err)
			os.Exit(1)
		}
		runs = []game.TrialConfig{tc}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, runs, *outputDir, *dbPath); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, runs []game.TrialConfig, outputDir, dbPath string) error {
	om, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		return err
	}

	var archive *telemetry.Archive
	var runID int64
	if dbPath != "" {
		archive, err = telemetry.OpenArchive(dbPath)
		if err != nil {
			return err
		}
		defer archive.Close()

		cfgYAML, err := cfg.YAML()
		if err != nil {
			return err
		}
		if runID, err = archive.BeginRun(string(cfgYAML)); err != nil {
			return err
		}
	}

	var snaps []telemetry.Snapshot
	for _, tc := range runs {
		opts := game.Options{
			Seed:    cfg.Run.Seed,
			Workers: cfg.Run.Workers,
			OnTrial: func(m *telemetry.Metrics) error {
				if err := om.WriteTrial(m); err != nil {
					return err
				}
				if archive != nil {
					return archive.SaveTrial(runID, m)
				}
				return nil
			},
		}

		results, err := game.RunTrials(ctx, cfg.Run.Trials, tc, opts)
		if err != nil {
			return fmt.Errorf("%s in %s: %w", tc.Species.Name, tc.Habitat.Name, err)
		}

		batch := make([]telemetry.Snapshot, len(results))
		for i, m := range results {
			batch[i] = m.Snapshot()
		}
		summary := telemetry.Summarize(batch)
		slog.Info("batch finished", "species", tc.Species.Name, "habitat", tc.Habitat.Name, "summary", summary)
		printReport(os.Stderr, tc, batch, summary)

		snaps = append(snaps, batch...)
	}

	return om.WriteSnapshots(snaps)
}

// printReport writes a human-readable report of one batch.
func printReport(w io.Writer, tc game.TrialConfig, snaps []telemetry.Snapshot, sum telemetry.Summary) {
	fmt.Fprintf(w, "\n%s in %s: %d trials of %d months\n",
		tc.Species.Name, tc.Habitat.Name, sum.Trials, tc.DurationSteps)

	for _, s := range snaps {
		fmt.Fprintf(w, "  trial %-3d avg %8.1f  max %8s  births %8s  deaths %8s  mortality %8s",
			s.Trial, s.AveragePopulation, humanize.Comma(int64(s.MaxPopulation)),
			humanize.Comma(int64(s.Births)), humanize.Comma(int64(s.Deaths)),
			telemetry.FormatRate(s.MortalityRate))
		if s.Extinct() {
			fmt.Fprintf(w, "  extinct at month %d", s.ExtinctStep)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "  mean average population %s, peak %s, %d/%d extinct, mortality %s\n",
		humanize.FormatFloat("#,###.#", sum.MeanAveragePopulation),
		humanize.Comma(int64(sum.PeakPopulation)),
		sum.Extinctions, sum.Trials,
		telemetry.FormatRate(sum.MortalityRate))

	causes := make([]components.Cause, 0, len(sum.Causes))
	for c := range sum.Causes {
		causes = append(causes, c)
	}
	sort.Slice(causes, func(i, j int) bool { return sum.Causes[causes[i]] > sum.Causes[causes[j]] })
	for _, c := range causes {
		fmt.Fprintf(w, "    died of %-10s %s\n", c, humanize.Comma(int64(sum.Causes[c])))
	}
}
